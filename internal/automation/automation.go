package automation

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"

	"github.com/san-kum/bactsim/internal/config"
	"github.com/san-kum/bactsim/internal/experiment"
	"github.com/san-kum/bactsim/internal/sim"
	"gopkg.in/yaml.v3"
)

var ErrEmptyScenario = errors.New("automation: scenario has no runs")

// Scenario is a named batch of culture runs read from YAML.
type Scenario struct {
	Name        string        `yaml:"name"`
	Description string        `yaml:"description"`
	Runs        []ScenarioRun `yaml:"runs"`
}

// ScenarioRun starts from a preset (or the defaults) and overrides only the
// fields present in the file.
type ScenarioRun struct {
	Name       string   `yaml:"name"`
	Preset     string   `yaml:"preset"`
	Integrator string   `yaml:"integrator"`
	Steps      *int     `yaml:"steps"`
	SeedCount  *int     `yaml:"seed_count"`
	GrowthRate *float64 `yaml:"growth_rate"`
	End        *float64 `yaml:"end"`
	RandSeed   *int64   `yaml:"rand_seed"`
	Save       bool     `yaml:"save"`
}

type RunResult struct {
	Name   string
	Config *config.Config
	Result *sim.Result
	Save   bool
}

func LoadScenario(path string) (*Scenario, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}

	var scenario Scenario
	if err := yaml.Unmarshal(data, &scenario); err != nil {
		return nil, err
	}
	if len(scenario.Runs) == 0 {
		return nil, ErrEmptyScenario
	}

	return &scenario, nil
}

// Config resolves the run into a validated configuration.
func (r ScenarioRun) Config() (*config.Config, error) {
	cfg := config.DefaultConfig()
	if r.Preset != "" {
		cfg = config.GetPreset(r.Preset)
		if cfg == nil {
			return nil, fmt.Errorf("unknown preset: %s", r.Preset)
		}
	}

	if r.Integrator != "" {
		cfg.Integrator = r.Integrator
	}
	if r.Steps != nil {
		cfg.Steps = *r.Steps
	}
	if r.SeedCount != nil {
		cfg.SeedCount = *r.SeedCount
	}
	if r.GrowthRate != nil {
		cfg.GrowthRate = *r.GrowthRate
	}
	if r.End != nil {
		cfg.End = *r.End
	}
	if r.RandSeed != nil {
		cfg.RandSeed = *r.RandSeed
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// RunScenario executes every run in order and stops at the first failure,
// returning the results gathered so far.
func RunScenario(ctx context.Context, scenario *Scenario, registry *experiment.Registry, logger *slog.Logger) ([]RunResult, error) {
	if logger == nil {
		logger = slog.New(slog.DiscardHandler)
	}
	results := make([]RunResult, 0, len(scenario.Runs))

	for i, run := range scenario.Runs {
		name := run.Name
		if name == "" {
			name = fmt.Sprintf("run-%d", i+1)
		}
		logger.Info("scenario run", "scenario", scenario.Name, "index", i+1, "of", len(scenario.Runs), "name", name)

		cfg, err := run.Config()
		if err != nil {
			return results, fmt.Errorf("run %d (%s): %w", i+1, name, err)
		}

		exp, err := experiment.New(cfg, registry, logger.With("run", name))
		if err != nil {
			return results, fmt.Errorf("run %d (%s) setup: %w", i+1, name, err)
		}

		result, err := exp.Run(ctx)
		if err != nil {
			return results, fmt.Errorf("run %d (%s): %w", i+1, name, err)
		}

		results = append(results, RunResult{Name: name, Config: cfg, Result: result, Save: run.Save})
	}

	return results, nil
}
