package config

import "sort"

// Presets are named starting points. Each is a complete config derived from
// the defaults; GetPreset hands out copies.
var Presets = map[string]*Config{
	"reference": DefaultConfig(),
	"noisy": with(func(c *Config) {
		c.Seed = 1
		c.Scenario.SteeringNoise = 0.1
		c.Scenario.DistanceNoise = 0.03
	}),
	"no_drift": with(func(c *Config) {
		c.Scenario.DriftDeg = 0
	}),
	"short_wheelbase": with(func(c *Config) {
		c.Scenario.Length = 5
	}),
	"long_horizon": with(func(c *Config) {
		c.Scenario.Steps = 300
	}),
}

func with(mutate func(*Config)) *Config {
	c := DefaultConfig()
	mutate(c)
	return c
}

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
