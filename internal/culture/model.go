package culture

import (
	"math"

	"github.com/san-kum/bactsim/internal/integrators"
)

type Model struct {
	cfg     Config
	rng     Source
	stepper integrators.Stepper
	dt      float64
}

type Option func(*Model)

// WithStepper replaces the forward-Euler update of the population estimate.
func WithStepper(s integrators.Stepper) Option {
	return func(m *Model) {
		if s != nil {
			m.stepper = s
		}
	}
}

func NewModel(cfg Config, rng Source, opts ...Option) (*Model, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	if rng == nil {
		return nil, &ConfigError{Field: "source", Value: nil, Reason: "must not be nil"}
	}

	m := &Model{
		cfg:     cfg,
		rng:     rng,
		stepper: integrators.NewEuler(),
		dt:      cfg.Dt(),
	}
	for _, opt := range opts {
		opt(m)
	}
	return m, nil
}

func (m *Model) Config() Config { return m.cfg }

func (m *Model) Dt() float64 { return m.dt }

func (m *Model) Integrator() string { return m.stepper.Name() }

// Seed places the initial agents. A lone agent sits at the canvas center;
// several are scattered uniformly over the canvas.
func (m *Model) Seed() *State {
	env := NewEnvironment(m.expectedCapacity())
	if m.cfg.SeedCount == 1 {
		env.Add(Position{X: float64(m.cfg.Width) / 2, Y: float64(m.cfg.Height) / 2})
	} else {
		for i := 0; i < m.cfg.SeedCount; i++ {
			x := m.rng.IntRange(0, m.cfg.Width)
			y := m.rng.IntRange(0, m.cfg.Height)
			env.Add(Position{X: float64(x), Y: float64(y)})
		}
	}

	return &State{
		Estimate: float64(m.cfg.SeedCount),
		Env:      env,
		Time:     m.cfg.Start,
	}
}

// Step advances s by one time increment and materializes agents until the
// agent count equals floor(s.Estimate).
func (m *Model) Step(s *State) (Snapshot, error) {
	if s.Env == nil || s.Env.Len() == 0 {
		return Snapshot{}, &SimulationError{Step: s.Step, Time: s.Time, Wrapped: ErrEmptyEnvironment}
	}

	s.Estimate = m.stepper.Step(m.rate, s.Estimate, s.Time, m.dt)
	s.Step++
	s.Time = m.cfg.SampleTime(s.Step)

	if math.IsNaN(s.Estimate) || math.IsInf(s.Estimate, 0) {
		return Snapshot{}, &SimulationError{Step: s.Step, Time: s.Time, Wrapped: ErrDiverged}
	}

	target := int(math.Floor(s.Estimate))
	for s.Env.Len() < target {
		parent := m.rng.IntRange(0, s.Env.Len()-1)
		s.Env.Replicate(parent, m.rng, m.cfg.Offsets)
	}

	return Snapshot{
		Step:      s.Step,
		Time:      s.Time,
		Count:     s.Env.Len(),
		Estimate:  s.Estimate,
		Positions: s.Env.Positions(),
	}, nil
}

// Analytical evaluates the closed-form population at absolute time t.
func (m *Model) Analytical(t float64) float64 {
	return Analytical(m.cfg.SeedCount, m.cfg.GrowthRate, t-m.cfg.Start)
}

func (m *Model) rate(p, _ float64) float64 {
	return m.cfg.GrowthRate * p
}

func (m *Model) expectedCapacity() int {
	n := m.Analytical(m.cfg.End)
	if n > 1<<16 {
		return 1 << 16
	}
	return int(n) + 1
}
