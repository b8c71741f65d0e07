package storage

import (
	"encoding/csv"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strconv"
	"time"

	"github.com/gocarina/gocsv"
	"github.com/google/uuid"
	"github.com/san-kum/arfall/internal/config"
	"github.com/san-kum/arfall/internal/sim"
)

const (
	metadataFile = "metadata.json"
	framesFile   = "frames.csv"
	heightsFile  = "heights.csv"
)

type Store struct {
	baseDir string
}

func New(baseDir string) *Store {
	return &Store{baseDir: baseDir}
}

func (s *Store) Init() error {
	return os.MkdirAll(s.baseDir, 0755)
}

type RunMetadata struct {
	ID        string             `json:"id"`
	Name      string             `json:"name"`
	Timestamp time.Time          `json:"timestamp"`
	Frames    int                `json:"frames"`
	Particles int                `json:"particles"`
	FinalMode string             `json:"final_mode"`
	Grabs     int                `json:"grabs"`
	Metrics   map[string]float64 `json:"metrics"`
	Config    *config.Config     `json:"config,omitempty"`
}

// FrameRow is one line of frames.csv.
type FrameRow struct {
	Index         int     `csv:"index"`
	Time          float64 `csv:"time"`
	Mode          string  `csv:"mode"`
	Events        int     `csv:"events"`
	Grabs         int     `csv:"grabs"`
	Clicks        int     `csv:"clicks"`
	Dragging      int     `csv:"dragging"`
	Planes        int     `csv:"planes"`
	PlanesSkipped int     `csv:"planes_skipped"`
	Qualifying    int     `csv:"qualifying"`
	Integrated    int     `csv:"integrated"`
	Skipped       int     `csv:"skipped"`
	Contacts      int     `csv:"contacts"`
}

func frameRows(frames []sim.FrameStats) []*FrameRow {
	rows := make([]*FrameRow, len(frames))
	for i, f := range frames {
		rows[i] = &FrameRow{
			Index:         f.Index,
			Time:          f.Time,
			Mode:          f.Mode.String(),
			Events:        f.Events,
			Grabs:         f.Grabs,
			Clicks:        f.Clicks,
			Dragging:      f.Dragging,
			Planes:        f.Planes,
			PlanesSkipped: f.PlanesSkipped,
			Qualifying:    f.Qualifying,
			Integrated:    f.Integrated,
			Skipped:       f.Skipped,
			Contacts:      f.Contacts,
		}
	}
	return rows
}

// Save writes a run directory and returns its id. Heights are only written
// when the result recorded them.
func (s *Store) Save(name string, cfg *config.Config, result *sim.Result) (string, error) {
	runID := uuid.New().String()
	runDir := filepath.Join(s.baseDir, runID)
	if err := os.MkdirAll(runDir, 0755); err != nil {
		return "", err
	}

	particles := 0
	if len(result.Heights) > 0 {
		particles = len(result.Heights[0])
	} else if cfg != nil {
		particles = cfg.Grid.Rows * cfg.Grid.Cols
	}
	meta := RunMetadata{
		ID:        runID,
		Name:      name,
		Timestamp: time.Now(),
		Frames:    result.FramesRun,
		Particles: particles,
		FinalMode: result.FinalMode.String(),
		Grabs:     result.GrabsTotal,
		Metrics:   result.Metrics,
		Config:    cfg,
	}
	if err := writeJSON(filepath.Join(runDir, metadataFile), meta); err != nil {
		return "", err
	}
	if err := writeFrames(filepath.Join(runDir, framesFile), result.Frames); err != nil {
		return "", err
	}
	if len(result.Heights) > 0 {
		if err := writeHeights(filepath.Join(runDir, heightsFile), result.Times, result.Heights); err != nil {
			return "", err
		}
	}
	return runID, nil
}

func writeJSON(path string, v any) error {
	f, err := os.Create(path)
	if err != nil {
		return err
	}
	defer f.Close()

	enc := json.NewEncoder(f)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}

func writeFrames(path string, frames []sim.FrameStats) error {
	f, err := os.Create(path)
	if err != nil {
		return err
	}
	defer f.Close()
	return gocsv.MarshalFile(frameRows(frames), f)
}

func writeHeights(path string, times []float64, heights [][]float64) error {
	f, err := os.Create(path)
	if err != nil {
		return err
	}
	defer f.Close()

	w := csv.NewWriter(f)
	header := []string{"time"}
	for i := range heights[0] {
		header = append(header, fmt.Sprintf("p%d", i))
	}
	if err := w.Write(header); err != nil {
		return err
	}
	for i, row := range heights {
		rec := make([]string, 0, len(row)+1)
		rec = append(rec, strconv.FormatFloat(times[i], 'f', 6, 64))
		for _, y := range row {
			rec = append(rec, strconv.FormatFloat(y, 'f', 6, 64))
		}
		if err := w.Write(rec); err != nil {
			return err
		}
	}
	w.Flush()
	return w.Error()
}

// List returns every readable run, newest first.
func (s *Store) List() ([]RunMetadata, error) {
	entries, err := os.ReadDir(s.baseDir)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return []RunMetadata{}, nil
		}
		return nil, err
	}

	runs := make([]RunMetadata, 0)
	for _, entry := range entries {
		if !entry.IsDir() {
			continue
		}
		meta, err := s.Load(entry.Name())
		if err != nil {
			continue
		}
		runs = append(runs, *meta)
	}
	sort.SliceStable(runs, func(i, j int) bool { return runs[i].Timestamp.After(runs[j].Timestamp) })
	return runs, nil
}

func (s *Store) Load(runID string) (*RunMetadata, error) {
	data, err := os.ReadFile(filepath.Join(s.baseDir, runID, metadataFile))
	if err != nil {
		return nil, err
	}
	var meta RunMetadata
	if err := json.Unmarshal(data, &meta); err != nil {
		return nil, fmt.Errorf("run %s: %w", runID, err)
	}
	return &meta, nil
}

func (s *Store) LoadFrames(runID string) ([]*FrameRow, error) {
	f, err := os.Open(filepath.Join(s.baseDir, runID, framesFile))
	if err != nil {
		return nil, err
	}
	defer f.Close()

	rows := []*FrameRow{}
	if err := gocsv.UnmarshalFile(f, &rows); err != nil && !errors.Is(err, gocsv.ErrEmptyCSVFile) {
		return nil, fmt.Errorf("run %s frames: %w", runID, err)
	}
	return rows, nil
}

// LoadHeights returns the per-frame particle heights and frame times.
func (s *Store) LoadHeights(runID string) ([][]float64, []float64, error) {
	f, err := os.Open(filepath.Join(s.baseDir, runID, heightsFile))
	if err != nil {
		return nil, nil, err
	}
	defer f.Close()

	records, err := csv.NewReader(f).ReadAll()
	if err != nil {
		return nil, nil, fmt.Errorf("run %s heights: %w", runID, err)
	}
	if len(records) < 2 {
		return [][]float64{}, []float64{}, nil
	}

	times := make([]float64, 0, len(records)-1)
	heights := make([][]float64, 0, len(records)-1)
	for i, rec := range records[1:] {
		t, err := strconv.ParseFloat(rec[0], 64)
		if err != nil {
			return nil, nil, fmt.Errorf("run %s heights row %d: %w", runID, i+1, err)
		}
		row := make([]float64, len(rec)-1)
		for j, field := range rec[1:] {
			row[j], err = strconv.ParseFloat(field, 64)
			if err != nil {
				return nil, nil, fmt.Errorf("run %s heights row %d: %w", runID, i+1, err)
			}
		}
		times = append(times, t)
		heights = append(heights, row)
	}
	return heights, times, nil
}
