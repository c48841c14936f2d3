package config

import (
	"os"

	"gopkg.in/yaml.v3"

	"github.com/san-kum/bactsim/internal/culture"
)

const (
	DefaultIntegrator = "euler"
	DefaultRandSeed   = 0
)

var DefaultSweep = []int{10, 100, 1000, 10000}

type Config struct {
	SeedCount  int           `yaml:"seed_count"`
	GrowthRate float64       `yaml:"growth_rate"`
	Start      float64       `yaml:"start"`
	End        float64       `yaml:"end"`
	Steps      int           `yaml:"steps"`
	Integrator string        `yaml:"integrator"`
	RandSeed   int64         `yaml:"rand_seed"`
	Canvas     CanvasConfig  `yaml:"canvas"`
	Offsets    OffsetsConfig `yaml:"offsets"`
	Sweep      []int         `yaml:"sweep,omitempty"`
}

type CanvasConfig struct {
	Width  int `yaml:"width"`
	Height int `yaml:"height"`
}

type OffsetsConfig struct {
	Min int `yaml:"min"`
	Max int `yaml:"max"`
}

func DefaultConfig() *Config {
	return &Config{
		SeedCount:  culture.DefaultSeedCount,
		GrowthRate: culture.DefaultGrowthRate,
		Start:      culture.DefaultStart,
		End:        culture.DefaultEnd,
		Steps:      culture.DefaultSteps,
		Integrator: DefaultIntegrator,
		RandSeed:   DefaultRandSeed,
		Canvas: CanvasConfig{
			Width:  culture.DefaultWidth,
			Height: culture.DefaultHeight,
		},
		Offsets: OffsetsConfig{
			Min: culture.DefaultOffsetMin,
			Max: culture.DefaultOffsetMax,
		},
		Sweep: append([]int(nil), DefaultSweep...),
	}
}

// Load reads a YAML file on top of DefaultConfig, so omitted keys keep
// their defaults.
func Load(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	cfg := DefaultConfig()
	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, err
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

// Culture converts the file configuration into the model configuration.
func (c *Config) Culture() culture.Config {
	return culture.Config{
		SeedCount:  c.SeedCount,
		GrowthRate: c.GrowthRate,
		Start:      c.Start,
		End:        c.End,
		Steps:      c.Steps,
		Width:      c.Canvas.Width,
		Height:     c.Canvas.Height,
		Offsets:    culture.Offsets{Min: c.Offsets.Min, Max: c.Offsets.Max},
	}
}

// Validate checks the model fields; the integrator name is resolved later.
func (c *Config) Validate() error {
	return c.Culture().Validate()
}

func (c *Config) Clone() *Config {
	cp := *c
	cp.Sweep = append([]int(nil), c.Sweep...)
	return &cp
}
