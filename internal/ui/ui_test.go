package ui

import (
	"context"
	"math"
	"testing"
	"testing/fstest"
	"time"

	"github.com/san-kum/arfall/internal/dynamo"
	"github.com/san-kum/arfall/internal/scene"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gonum.org/v1/gonum/spatial/r3"
)

type gravity struct{ m float64 }

func (g *gravity) GravityMagnitude() float64     { return g.m }
func (g *gravity) SetGravityMagnitude(m float64) { g.m = m }

type blockingLoader struct{ release chan struct{} }

func (b blockingLoader) Load(ctx context.Context, path string) (*Font, error) {
	<-b.release
	return EmbeddedLoader().Load(ctx, DefaultFontPath)
}

func testFont(t *testing.T) *Font {
	t.Helper()
	f, err := EmbeddedLoader().Load(context.Background(), DefaultFontPath)
	require.NoError(t, err)
	return f
}

func TestEmbeddedFont(t *testing.T) {
	f := testFont(t)
	assert.Equal(t, 1000, f.Resolution)
	assert.Equal(t, 772, f.Advance('9'))
	assert.Equal(t, 500, f.Advance('é'), "missing glyph takes half an em")
	assert.InDelta(t, (772+361+772)*0.2/1000, f.Measure("9.8", 0.2), 1e-12)
	assert.InDelta(t, f.Measure("abc", 1), f.Measure("ab\nabc\na", 1), 1e-12)
}

func TestFileLoaderErrors(t *testing.T) {
	fsys := fstest.MapFS{
		"bad.json":   {Data: []byte("{not json")},
		"empty.json": {Data: []byte(`{"resolution": 1000, "glyphs": {}}`)},
	}
	loader := FileLoader{FS: fsys}
	for _, path := range []string{"missing.json", "bad.json", "empty.json"} {
		_, err := loader.Load(context.Background(), path)
		assert.Error(t, err, path)
	}

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	_, err := EmbeddedLoader().Load(ctx, DefaultFontPath)
	assert.ErrorIs(t, err, context.Canceled)
}

func TestPreloaderSuccess(t *testing.T) {
	p := NewPreloader(nil)
	p.Preload(context.Background(), EmbeddedLoader(), DefaultFontPath)
	p.Preload(context.Background(), FileLoader{FS: fstest.MapFS{}}, "ignored")

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	f, err := p.Wait(ctx)
	require.NoError(t, err)
	assert.Equal(t, "Arfall Sans", f.FamilyName)
	assert.True(t, p.Ready())

	got, err := p.Result()
	require.NoError(t, err)
	assert.Same(t, f, got)
}

func TestPreloaderFailure(t *testing.T) {
	p := NewPreloader(nil)
	p.Preload(context.Background(), FileLoader{FS: fstest.MapFS{}}, "fonts/missing.json")
	<-p.Done()

	f, err := p.Result()
	assert.Error(t, err)
	assert.Nil(t, f)
}

func TestPreloaderNotReady(t *testing.T) {
	release := make(chan struct{})
	p := NewPreloader(nil)
	p.Preload(context.Background(), blockingLoader{release: release}, DefaultFontPath)

	_, err := p.Result()
	assert.ErrorIs(t, err, dynamo.ErrNotReady)
	assert.False(t, p.Ready())

	close(release)
	<-p.Done()
	_, err = p.Result()
	assert.NoError(t, err)
}

func TestPanelButtons(t *testing.T) {
	g := &gravity{m: 9.81}
	s := scene.New()
	p := Build(s, g, testFont(t), dynamo.Pose{Position: r3.Vec{Y: 1.5, Z: -3}, Orientation: dynamo.Identity})

	assert.Equal(t, "g = 9.8", p.Text())
	assert.Equal(t, 5, s.Len())

	p.Increase()
	assert.InDelta(t, 10.81, g.m, 1e-12)
	assert.Equal(t, "g = 10.8", p.Text())

	g.m = 1.5
	assert.True(t, p.Decrease())
	assert.InDelta(t, 0.5, g.m, 1e-12)
	assert.Equal(t, "g = 0.5", p.Text())
	assert.False(t, p.Decrease(), "minus stops at or below one")
	assert.InDelta(t, 0.5, g.m, 1e-12)

	g.m = 1
	assert.False(t, p.Decrease())
	assert.Equal(t, 1.0, g.m)
}

func TestPanelLayout(t *testing.T) {
	g := &gravity{m: 9.8}
	s := scene.New()
	p := Build(s, g, nil, dynamo.Pose{Position: r3.Vec{Y: 1.5, Z: -3}, Orientation: dynamo.Identity})

	assert.InDelta(t, 1.4, p.Plus.Position().X, 1e-12)
	assert.InDelta(t, -1.4, p.Minus.Position().X, 1e-12)
	assert.InDelta(t, -4, p.Tutorial.Position().X, 1e-12)
	assert.InDelta(t, -4, p.Tutorial.Position().Z, 1e-12)

	ray := dynamo.NewRay(r3.Vec{X: 1.4, Y: 1.5}, r3.Vec{Z: -1})
	hit, ok := s.Raycast(ray, 0, math.Inf(1))
	require.True(t, ok)
	require.Equal(t, "addButton", hit.Entity.Name)

	u, _ := hit.Entity.AsUIControl()
	u.OnClick(scene.ClickContext{Entity: hit.Entity, Point: hit.Point})
	assert.Equal(t, "g = 10.8", p.Text())

	p.Remove(s)
	assert.Equal(t, 0, s.Len())
}

func TestPanelFitsText(t *testing.T) {
	s := scene.New()
	p := Build(s, &gravity{m: 9.8}, testFont(t), dynamo.IdentityPose())
	tut, _ := p.Tutorial.AsUIControl()
	assert.GreaterOrEqual(t, tut.Size.X, 3.0)
	assert.GreaterOrEqual(t, tut.Size.X, testFont(t).Measure(TutorialText, 0.15))
}
