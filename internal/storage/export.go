package storage

import (
	"encoding/json"
	"errors"
	"io"
	"os"
	"path/filepath"
)

// ExportData is a self-contained copy of a stored run.
type ExportData struct {
	RunMetadata
	Times   []float64   `json:"times"`
	Heights [][]float64 `json:"heights"`
}

// Export gathers a run's metadata and heights. A run saved without heights
// exports with empty series.
func (s *Store) Export(runID string) (*ExportData, error) {
	meta, err := s.Load(runID)
	if err != nil {
		return nil, err
	}
	data := &ExportData{RunMetadata: *meta, Times: []float64{}, Heights: [][]float64{}}
	heights, times, err := s.LoadHeights(runID)
	switch {
	case err == nil:
		data.Heights, data.Times = heights, times
	case !errors.Is(err, os.ErrNotExist):
		return nil, err
	}
	return data, nil
}

func (s *Store) ExportJSON(w io.Writer, runID string) error {
	data, err := s.Export(runID)
	if err != nil {
		return err
	}
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(data)
}

// FramesPath is where frames.csv for runID lives.
func (s *Store) FramesPath(runID string) string {
	return filepath.Join(s.baseDir, runID, framesFile)
}
