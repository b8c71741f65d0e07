package config

import (
	"errors"
	"fmt"
	"os"

	"github.com/san-kum/arfall/internal/dynamo"
	"github.com/san-kum/arfall/internal/ground"
	"github.com/san-kum/arfall/internal/physics"
	"gopkg.in/yaml.v3"
)

const (
	DefaultRows        = 8
	DefaultCols        = 8
	DefaultSpacing     = 0.7
	DefaultHeight      = 1.0
	DefaultCenterZ     = -2.55
	DefaultGravity     = -9.81
	DefaultDt          = 0.016
	DefaultFrames      = 600
	DefaultFOV         = 75.0
	DefaultWidth       = 800
	DefaultHeightPx    = 600
	DefaultRunsDir     = "runs"
	DefaultFrameSource = "static"
)

type Config struct {
	Grid    GridConfig    `yaml:"grid"`
	Physics PhysicsConfig `yaml:"physics"`
	Ground  GroundConfig  `yaml:"ground"`
	Camera  CameraConfig  `yaml:"camera"`
	Frames  FramesConfig  `yaml:"frames"`
	UI      UIConfig      `yaml:"ui"`
	Run     RunConfig     `yaml:"run"`
}

type GridConfig struct {
	Rows    int     `yaml:"rows"`
	Cols    int     `yaml:"cols"`
	Spacing float64 `yaml:"spacing"`
	Height  float64 `yaml:"height"`
	CenterX float64 `yaml:"center_x"`
	CenterZ float64 `yaml:"center_z"`
	Radius  float64 `yaml:"radius"`
}

type PhysicsConfig struct {
	Gravity     float64 `yaml:"gravity"`
	Dt          float64 `yaml:"dt"`
	Restitution float64 `yaml:"restitution"`
	Integrator  string  `yaml:"integrator"`
}

type GroundConfig struct {
	Mode        string  `yaml:"mode"`
	Query       string  `yaml:"query"`
	Overlap     string  `yaml:"overlap"`
	FixedHeight float64 `yaml:"fixed_height"`
	ResetHeight float64 `yaml:"reset_height"`
}

type CameraConfig struct {
	Position   [3]float64 `yaml:"position"`
	FOV        float64    `yaml:"fov"`
	Width      int        `yaml:"width"`
	Height     int        `yaml:"height"`
	PickRadius float64    `yaml:"pick_radius"`
	MaxReach   float64    `yaml:"max_reach"`
}

// FramesConfig selects the frame source. Script is only read by the
// "script" source; Seed, Jitter and Dropout only by "synthetic".
type FramesConfig struct {
	Source  string  `yaml:"source"`
	Script  string  `yaml:"script"`
	Seed    int64   `yaml:"seed"`
	Jitter  float64 `yaml:"jitter"`
	Dropout float64 `yaml:"dropout"`
}

type UIConfig struct {
	Enabled       bool       `yaml:"enabled"`
	Font          string     `yaml:"font"` // empty uses the embedded typeface
	PanelPosition [3]float64 `yaml:"panel_position"`
}

type RunConfig struct {
	Frames        int    `yaml:"frames"`
	RecordHeights bool   `yaml:"record_heights"`
	Dir           string `yaml:"dir"`
}

func DefaultConfig() *Config {
	return &Config{
		Grid: GridConfig{
			Rows:    DefaultRows,
			Cols:    DefaultCols,
			Spacing: DefaultSpacing,
			Height:  DefaultHeight,
			CenterZ: DefaultCenterZ,
			Radius:  physics.DefaultRadius,
		},
		Physics: PhysicsConfig{
			Gravity:     DefaultGravity,
			Dt:          DefaultDt,
			Restitution: physics.DefaultBounce,
			Integrator:  "semi_implicit",
		},
		Ground: GroundConfig{
			Mode:        ground.ModeFixed.String(),
			Query:       ground.Containment.String(),
			Overlap:     ground.First.String(),
			ResetHeight: DefaultHeight,
		},
		Camera: CameraConfig{
			Position: [3]float64{0, 1.6, 2},
			FOV:      DefaultFOV,
			Width:    DefaultWidth,
			Height:   DefaultHeightPx,
		},
		Frames: FramesConfig{
			Source: DefaultFrameSource,
		},
		UI: UIConfig{
			Enabled:       true,
			PanelPosition: [3]float64{0, 2.5, -6},
		},
		Run: RunConfig{
			Frames:        DefaultFrames,
			RecordHeights: true,
			Dir:           DefaultRunsDir,
		},
	}
}

// Load overlays the file at path on the defaults.
func Load(path string) (*Config, error) {
	cfg := DefaultConfig()
	if err := Overlay(cfg, path); err != nil {
		return nil, err
	}
	return cfg, nil
}

// Overlay reads the file at path on top of cfg. Keys missing from the file
// keep their current values.
func Overlay(cfg *Config, path string) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return err
	}
	if err := yaml.Unmarshal(data, cfg); err != nil {
		return fmt.Errorf("parse config %s: %w", path, err)
	}
	return nil
}

func Parse(data []byte) (*Config, error) {
	cfg := DefaultConfig()
	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("parse config: %w", err)
	}
	return cfg, nil
}

func Save(path string, cfg *Config) error {
	data, err := yaml.Marshal(cfg)
	if err != nil {
		return err
	}
	return os.WriteFile(path, data, 0644)
}

// Clone returns a deep copy. Config holds no pointers or slices, so a value
// copy is enough.
func (c *Config) Clone() *Config {
	out := *c
	return &out
}

func bounds(format string, args ...any) error {
	return fmt.Errorf("%w: %s", dynamo.ErrParameterBounds, fmt.Sprintf(format, args...))
}

// Validate joins every problem found, so one call reports them all.
func (c *Config) Validate() error {
	var errs []error
	if c.Grid.Rows <= 0 || c.Grid.Cols <= 0 {
		errs = append(errs, bounds("grid %dx%d", c.Grid.Rows, c.Grid.Cols))
	}
	if !dynamo.FiniteScalar(c.Grid.Spacing) || c.Grid.Spacing < 0 {
		errs = append(errs, bounds("grid spacing %v", c.Grid.Spacing))
	}
	if !dynamo.FiniteScalar(c.Grid.Radius) || c.Grid.Radius < 0 {
		errs = append(errs, bounds("particle radius %v", c.Grid.Radius))
	}
	if !dynamo.FiniteScalar(c.Physics.Dt) || c.Physics.Dt <= 0 {
		errs = append(errs, bounds("dt must be positive, got %v", c.Physics.Dt))
	}
	if !dynamo.FiniteScalar(c.Physics.Gravity) {
		errs = append(errs, bounds("gravity %v", c.Physics.Gravity))
	}
	if _, err := physics.NewRestitution(c.Physics.Restitution); err != nil {
		errs = append(errs, err)
	}
	if _, err := ground.ParseMode(c.Ground.Mode); err != nil {
		errs = append(errs, err)
	}
	if _, err := ground.ParseQueryMode(c.Ground.Query); err != nil {
		errs = append(errs, err)
	}
	if _, err := ground.ParseOverlap(c.Ground.Overlap); err != nil {
		errs = append(errs, err)
	}
	if c.Camera.FOV <= 0 || c.Camera.FOV >= 180 {
		errs = append(errs, bounds("camera fov %v not in (0, 180)", c.Camera.FOV))
	}
	if c.Camera.Width <= 0 || c.Camera.Height <= 0 {
		errs = append(errs, bounds("viewport %dx%d", c.Camera.Width, c.Camera.Height))
	}
	if c.Frames.Dropout < 0 || c.Frames.Dropout > 1 {
		errs = append(errs, bounds("dropout %v not in [0, 1]", c.Frames.Dropout))
	}
	if c.Frames.Jitter < 0 {
		errs = append(errs, bounds("jitter %v", c.Frames.Jitter))
	}
	if c.Run.Frames < 0 {
		errs = append(errs, bounds("run frames %d", c.Run.Frames))
	}
	return errors.Join(errs...)
}
