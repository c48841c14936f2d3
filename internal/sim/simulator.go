package sim

import (
	"context"
	"log/slog"

	"github.com/san-kum/bactsim/internal/culture"
)

type Simulator struct {
	model     *culture.Model
	metrics   []Metric
	observers []Observer
	logger    *slog.Logger
}

func New(model *culture.Model, logger *slog.Logger) *Simulator {
	if logger == nil {
		logger = slog.New(slog.DiscardHandler)
	}
	return &Simulator{
		model:     model,
		metrics:   make([]Metric, 0),
		observers: make([]Observer, 0),
		logger:    logger,
	}
}

func (s *Simulator) AddMetric(m Metric)     { s.metrics = append(s.metrics, m) }
func (s *Simulator) AddObserver(o Observer) { s.observers = append(s.observers, o) }

func (s *Simulator) Model() *culture.Model { return s.model }

// Run seeds a fresh culture and advances it through every sample time.
// Records holds the seed sample followed by one record per step; observers
// and metrics see only the stepped samples.
func (s *Simulator) Run(ctx context.Context) (*Result, error) {
	cfg := s.model.Config()
	result := &Result{
		Config:     cfg,
		Integrator: s.model.Integrator(),
		Records:    make([]Record, 0, cfg.Steps+1),
		Metrics:    make(map[string]float64),
	}

	for _, m := range s.metrics {
		m.Reset()
	}

	state := s.model.Seed()
	result.Final = state

	initial, err := NewRecord(state.Time, state.Env.Len(), s.model.Analytical(state.Time))
	if err != nil {
		return result, err
	}
	result.Records = append(result.Records, initial)

	s.logger.Info("culture seeded",
		"agents", state.Env.Len(),
		"rate", cfg.GrowthRate,
		"dt", s.model.Dt(),
		"steps", cfg.Steps,
		"integrator", result.Integrator,
	)

	err = s.advance(ctx, state, func(rec Record, positions []culture.Position) bool {
		for _, m := range s.metrics {
			m.Observe(rec)
		}
		for _, obs := range s.observers {
			obs.OnStep(rec, positions)
		}
		result.Records = append(result.Records, rec)
		result.StepsTaken++
		return true
	})

	for _, m := range s.metrics {
		result.Metrics[m.Name()] = m.Value()
	}

	if err != nil {
		return result, err
	}

	last := result.Last()
	s.logger.Info("run complete",
		"t", last.Time,
		"approx", last.Approx,
		"analytical", last.Analytical,
		"abs_error", last.AbsError,
		"rel_error", last.RelError,
	)
	return result, nil
}

// RunWithCallback streams each step to callback until it returns false or
// the run ends. Metrics and observers are not consulted.
func (s *Simulator) RunWithCallback(ctx context.Context, callback func(Record, []culture.Position) bool) error {
	return s.advance(ctx, s.model.Seed(), callback)
}

func (s *Simulator) advance(ctx context.Context, state *culture.State, emit func(Record, []culture.Position) bool) error {
	steps := s.model.Config().Steps
	for i := 0; i < steps; i++ {
		select {
		case <-ctx.Done():
			return ctx.Err()
		default:
		}

		snap, err := s.model.Step(state)
		if err != nil {
			return err
		}

		rec, err := NewRecord(snap.Time, snap.Count, s.model.Analytical(snap.Time))
		if err != nil {
			return &culture.SimulationError{Step: snap.Step, Time: snap.Time, Wrapped: err}
		}
		rec.Step = snap.Step

		s.logger.Debug("step",
			"step", rec.Step,
			"t", rec.Time,
			"approx", rec.Approx,
			"abs_error", rec.AbsError,
			"rel_error", rec.RelError,
		)

		if !emit(rec, snap.Positions) {
			return nil
		}
	}
	return nil
}
