package storage

import (
	"bytes"
	"encoding/json"
	"os"
	"path/filepath"
	"testing"

	"github.com/san-kum/arfall/internal/config"
	"github.com/san-kum/arfall/internal/ground"
	"github.com/san-kum/arfall/internal/sim"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func sampleResult() *sim.Result {
	return &sim.Result{
		Times:   []float64{0, 0.016},
		Heights: [][]float64{{1, 1, 1}, {0.99749, 0.99749, 0.5}},
		Frames: []sim.FrameStats{
			{Index: 0, Time: 0, Integrated: 3},
			{Index: 1, Time: 0.016, Mode: ground.ModeDetected, Grabs: 1, Integrated: 2, Skipped: 1, Contacts: 1},
		},
		Metrics:    map[string]float64{"energy": 1.5},
		FramesRun:  2,
		FinalMode:  ground.ModeDetected,
		GrabsTotal: 1,
	}
}

func TestStoreSaveLoad(t *testing.T) {
	st := New(t.TempDir())
	require.NoError(t, st.Init())

	cfg := config.DefaultConfig()
	runID, err := st.Save("drop", cfg, sampleResult())
	require.NoError(t, err)
	require.NotEmpty(t, runID)

	meta, err := st.Load(runID)
	require.NoError(t, err)
	assert.Equal(t, runID, meta.ID)
	assert.Equal(t, "drop", meta.Name)
	assert.Equal(t, 2, meta.Frames)
	assert.Equal(t, 3, meta.Particles)
	assert.Equal(t, "detected", meta.FinalMode)
	assert.Equal(t, 1, meta.Grabs)
	assert.InDelta(t, 1.5, meta.Metrics["energy"], 1e-12)
	require.NotNil(t, meta.Config)
	assert.Equal(t, *cfg, *meta.Config)
}

func TestStoreFrames(t *testing.T) {
	st := New(t.TempDir())
	runID, err := st.Save("drop", nil, sampleResult())
	require.NoError(t, err)

	rows, err := st.LoadFrames(runID)
	require.NoError(t, err)
	require.Len(t, rows, 2)
	assert.Equal(t, "fixed", rows[0].Mode)
	assert.Equal(t, FrameRow{
		Index: 1, Time: 0.016, Mode: "detected", Grabs: 1,
		Integrated: 2, Skipped: 1, Contacts: 1,
	}, *rows[1])
	assert.FileExists(t, st.FramesPath(runID))
}

func TestStoreHeights(t *testing.T) {
	st := New(t.TempDir())
	runID, err := st.Save("drop", nil, sampleResult())
	require.NoError(t, err)

	heights, times, err := st.LoadHeights(runID)
	require.NoError(t, err)
	assert.Equal(t, []float64{0, 0.016}, times)
	require.Len(t, heights, 2)
	assert.Equal(t, []float64{0.99749, 0.99749, 0.5}, heights[1])
}

func TestStoreWithoutHeights(t *testing.T) {
	st := New(t.TempDir())
	res := sampleResult()
	res.Heights = nil

	runID, err := st.Save("drop", config.DefaultConfig(), res)
	require.NoError(t, err)

	meta, err := st.Load(runID)
	require.NoError(t, err)
	assert.Equal(t, 64, meta.Particles)

	_, _, err = st.LoadHeights(runID)
	assert.ErrorIs(t, err, os.ErrNotExist)

	data, err := st.Export(runID)
	require.NoError(t, err)
	assert.Empty(t, data.Heights)
}

func TestStoreList(t *testing.T) {
	dir := t.TempDir()
	st := New(dir)

	runs, err := st.List()
	require.NoError(t, err)
	assert.Empty(t, runs)

	first, err := st.Save("a", nil, sampleResult())
	require.NoError(t, err)
	second, err := st.Save("b", nil, sampleResult())
	require.NoError(t, err)
	require.NoError(t, os.MkdirAll(filepath.Join(dir, "not-a-run"), 0755))

	runs, err = st.List()
	require.NoError(t, err)
	require.Len(t, runs, 2)
	ids := []string{runs[0].ID, runs[1].ID}
	assert.ElementsMatch(t, []string{first, second}, ids)
}

func TestStoreListMissingDir(t *testing.T) {
	runs, err := New(filepath.Join(t.TempDir(), "nope")).List()
	require.NoError(t, err)
	assert.Empty(t, runs)
}

func TestExportJSON(t *testing.T) {
	st := New(t.TempDir())
	runID, err := st.Save("drop", nil, sampleResult())
	require.NoError(t, err)

	var buf bytes.Buffer
	require.NoError(t, st.ExportJSON(&buf, runID))

	var got ExportData
	require.NoError(t, json.Unmarshal(buf.Bytes(), &got))
	assert.Equal(t, runID, got.ID)
	assert.Len(t, got.Heights, 2)
	assert.Equal(t, []float64{0, 0.016}, got.Times)

	assert.Error(t, st.ExportJSON(&buf, "missing"))
}
