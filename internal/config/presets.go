package config

import "sort"

func preset(edit func(c *Config)) *Config {
	c := DefaultConfig()
	edit(c)
	return c
}

var Presets = map[string]*Config{
	"default": DefaultConfig(),
	"stick": preset(func(c *Config) {
		c.Physics.Restitution = 0
	}),
	"room": preset(func(c *Config) {
		c.Ground.Mode = "detected"
		c.Frames.Source = "synthetic"
		c.Frames.Seed = 7
		c.Frames.Jitter = 0.002
		c.Frames.Dropout = 0.05
	}),
	"room_lowest": preset(func(c *Config) {
		c.Ground.Mode = "detected"
		c.Ground.Query = "lowest"
		c.Frames.Source = "synthetic"
		c.Frames.Seed = 7
	}),
	"floaty": preset(func(c *Config) {
		c.Physics.Gravity = -1.62
		c.Physics.Restitution = -0.8
		c.Grid.Height = 2
		c.Ground.ResetHeight = 2
		c.Run.Frames = 1500
	}),
}

// GetPreset returns a copy of the named preset, or nil.
func GetPreset(name string) *Config {
	cfg, ok := Presets[name]
	if !ok {
		return nil
	}
	return cfg.Clone()
}

func ListPresets() []string {
	names := make([]string, 0, len(Presets))
	for name := range Presets {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}
