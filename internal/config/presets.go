package config

import "sort"

var Presets = map[string]func() *Config{
	"default": DefaultConfig,
	"doubling": func() *Config {
		cfg := DefaultConfig()
		cfg.SeedCount = 1
		return cfg
	},
	"coarse": func() *Config {
		cfg := DefaultConfig()
		cfg.Steps = 100
		return cfg
	},
	"fine": func() *Config {
		cfg := DefaultConfig()
		cfg.Steps = 10000
		return cfg
	},
	"rk4": func() *Config {
		cfg := DefaultConfig()
		cfg.Integrator = "rk4"
		return cfg
	},
	"crowded": func() *Config {
		cfg := DefaultConfig()
		cfg.SeedCount = 24
		cfg.End = 5
		cfg.Steps = 500
		cfg.Offsets = OffsetsConfig{Min: 5, Max: 20}
		return cfg
	},
}

// GetPreset returns a fresh copy of the named preset, or nil.
func GetPreset(name string) *Config {
	fn, ok := Presets[name]
	if !ok {
		return nil
	}
	return fn()
}

func ListPresets() []string {
	names := make([]string, 0, len(Presets))
	for name := range Presets {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}
