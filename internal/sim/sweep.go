package sim

import (
	"context"
	"fmt"

	"github.com/san-kum/bactsim/internal/culture"
)

// SweepPoint is the outcome of one run in a step-count sweep.
type SweepPoint struct {
	Steps    int     `json:"steps"`
	Dt       float64 `json:"dt"`
	Final    Record  `json:"final"`
	Estimate float64 `json:"estimate"`
}

// Sweep reruns base once per step count, in order, and reports the final
// sample of each run. newSource is called once per run.
func Sweep(ctx context.Context, base culture.Config, stepCounts []int, newSource func(steps int) culture.Source, opts ...culture.Option) ([]SweepPoint, error) {
	points := make([]SweepPoint, 0, len(stepCounts))

	for _, n := range stepCounts {
		cfg := base
		cfg.Steps = n

		model, err := culture.NewModel(cfg, newSource(n), opts...)
		if err != nil {
			return nil, fmt.Errorf("sweep steps=%d: %w", n, err)
		}

		result, err := New(model, nil).Run(ctx)
		if err != nil {
			return nil, fmt.Errorf("sweep steps=%d: %w", n, err)
		}

		points = append(points, SweepPoint{
			Steps:    n,
			Dt:       model.Dt(),
			Final:    result.Last(),
			Estimate: result.Final.Estimate,
		})
	}

	return points, nil
}
