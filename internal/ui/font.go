package ui

import (
	"context"
	"embed"
	"encoding/json"
	"fmt"
	"io/fs"
)

//go:embed fonts/*.typeface.json
var embedded embed.FS

// DefaultFontPath names the typeface bundled with the binary.
const DefaultFontPath = "fonts/default.typeface.json"

// Glyph is one entry of a typeface file. Ha is the horizontal advance in
// font units; O is the outline command string.
type Glyph struct {
	Ha   int    `json:"ha"`
	XMin int    `json:"x_min"`
	XMax int    `json:"x_max"`
	O    string `json:"o"`
}

// Font is a parsed typeface JSON file.
type Font struct {
	FamilyName string           `json:"familyName"`
	Resolution int              `json:"resolution"`
	Glyphs     map[string]Glyph `json:"glyphs"`
}

// Advance returns the width of r in font units. Missing glyphs take half an
// em.
func (f *Font) Advance(r rune) int {
	if g, ok := f.Glyphs[string(r)]; ok {
		return g.Ha
	}
	return f.Resolution / 2
}

// Measure returns the width of the longest line of text at the given size
// in world units.
func (f *Font) Measure(text string, size float64) float64 {
	var widest, line int
	for _, r := range text {
		if r == '\n' {
			widest, line = max(widest, line), 0
			continue
		}
		line += f.Advance(r)
	}
	widest = max(widest, line)
	return float64(widest) * size / float64(f.Resolution)
}

func ParseFont(data []byte) (*Font, error) {
	var f Font
	if err := json.Unmarshal(data, &f); err != nil {
		return nil, fmt.Errorf("parse typeface: %w", err)
	}
	if f.Resolution <= 0 {
		return nil, fmt.Errorf("parse typeface: resolution %d", f.Resolution)
	}
	if len(f.Glyphs) == 0 {
		return nil, fmt.Errorf("parse typeface: no glyphs")
	}
	return &f, nil
}

// FontLoader fetches a typeface by path.
type FontLoader interface {
	Load(ctx context.Context, path string) (*Font, error)
}

// FileLoader reads typefaces from a file system.
type FileLoader struct {
	FS fs.FS
}

// EmbeddedLoader reads from the typefaces compiled into the binary.
func EmbeddedLoader() FileLoader {
	return FileLoader{FS: embedded}
}

func (l FileLoader) Load(ctx context.Context, path string) (*Font, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	data, err := fs.ReadFile(l.FS, path)
	if err != nil {
		return nil, fmt.Errorf("load typeface %s: %w", path, err)
	}
	f, err := ParseFont(data)
	if err != nil {
		return nil, fmt.Errorf("load typeface %s: %w", path, err)
	}
	return f, nil
}
