package culture

import (
	"errors"
	"math"
	"testing"

	"github.com/san-kum/bactsim/internal/integrators"
)

type scriptedSource struct {
	vals  []int
	i     int
	calls [][2]int
}

func (s *scriptedSource) IntRange(lo, hi int) int {
	s.calls = append(s.calls, [2]int{lo, hi})
	v := s.vals[s.i%len(s.vals)]
	s.i++
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}

func runModel(t *testing.T, m *Model) (*State, Snapshot) {
	t.Helper()
	s := m.Seed()
	var snap Snapshot
	for i := 0; i < m.Config().Steps; i++ {
		var err error
		snap, err = m.Step(s)
		if err != nil {
			t.Fatalf("step %d failed: %v", i, err)
		}
	}
	return s, snap
}

func TestConfigValidate(t *testing.T) {
	tests := []struct {
		name   string
		mutate func(*Config)
		field  string
	}{
		{"zero seed", func(c *Config) { c.SeedCount = 0 }, "seed_count"},
		{"negative seed", func(c *Config) { c.SeedCount = -2 }, "seed_count"},
		{"zero rate", func(c *Config) { c.GrowthRate = 0 }, "growth_rate"},
		{"negative rate", func(c *Config) { c.GrowthRate = -0.1 }, "growth_rate"},
		{"nan rate", func(c *Config) { c.GrowthRate = math.NaN() }, "growth_rate"},
		{"end equals start", func(c *Config) { c.End = c.Start }, "end"},
		{"end before start", func(c *Config) { c.Start, c.End = 5, 1 }, "end"},
		{"zero steps", func(c *Config) { c.Steps = 0 }, "steps"},
		{"zero width", func(c *Config) { c.Width = 0 }, "width"},
		{"zero height", func(c *Config) { c.Height = 0 }, "height"},
		{"negative offset", func(c *Config) { c.Offsets.Min = -1 }, "offsets.min"},
		{"inverted offsets", func(c *Config) { c.Offsets = Offsets{Min: 60, Max: 30} }, "offsets.max"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := DefaultConfig()
			tt.mutate(&cfg)

			_, err := NewModel(cfg, NewRandSource(1))
			if !errors.Is(err, ErrInvalidConfig) {
				t.Fatalf("expected ErrInvalidConfig, got %v", err)
			}
			var cerr *ConfigError
			if !errors.As(err, &cerr) {
				t.Fatalf("expected *ConfigError, got %T", err)
			}
			if cerr.Field != tt.field {
				t.Errorf("expected field %s, got %s", tt.field, cerr.Field)
			}
		})
	}
}

func TestDefaultConfigIsValid(t *testing.T) {
	cfg := DefaultConfig()
	if err := cfg.Validate(); err != nil {
		t.Fatalf("default config rejected: %v", err)
	}
	if math.Abs(cfg.Dt()-0.01) > 1e-12 {
		t.Errorf("expected dt 0.01, got %f", cfg.Dt())
	}
}

func TestNewModelNilSource(t *testing.T) {
	if _, err := NewModel(DefaultConfig(), nil); !errors.Is(err, ErrInvalidConfig) {
		t.Errorf("expected ErrInvalidConfig, got %v", err)
	}
}

func TestSeedSingleAgentCentered(t *testing.T) {
	cfg := DefaultConfig()
	cfg.SeedCount = 1
	m, err := NewModel(cfg, NewRandSource(1))
	if err != nil {
		t.Fatal(err)
	}

	s := m.Seed()
	if s.Env.Len() != 1 {
		t.Fatalf("expected 1 agent, got %d", s.Env.Len())
	}
	if got := s.Env.At(0); got != (Position{X: 512, Y: 384}) {
		t.Errorf("expected centered agent, got %+v", got)
	}
	if s.Estimate != 1 {
		t.Errorf("expected estimate 1, got %f", s.Estimate)
	}
}

func TestSeedScattered(t *testing.T) {
	src := &scriptedSource{vals: []int{10, 20, 1024, 768, 0, 0}}
	m, err := NewModel(DefaultConfig(), src)
	if err != nil {
		t.Fatal(err)
	}

	s := m.Seed()
	want := []Position{{10, 20}, {1024, 768}, {0, 0}}
	if s.Env.Len() != len(want) {
		t.Fatalf("expected %d agents, got %d", len(want), s.Env.Len())
	}
	for i, p := range want {
		if s.Env.At(i) != p {
			t.Errorf("agent %d: expected %+v, got %+v", i, p, s.Env.At(i))
		}
	}
	if src.calls[0] != [2]int{0, 1024} || src.calls[1] != [2]int{0, 768} {
		t.Errorf("unexpected seed draw ranges: %v", src.calls[:2])
	}
}

func TestReplicate(t *testing.T) {
	tests := []struct {
		name string
		vals []int
		want Position
	}{
		{"positive x negative y", []int{1, 40, -1, 30}, Position{140, 170}},
		{"zero sign", []int{0, 55, 1, 60}, Position{100, 260}},
		{"both negative", []int{-1, 60, -1, 45}, Position{40, 155}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			env := NewEnvironment(2)
			env.Add(Position{100, 200})
			src := &scriptedSource{vals: tt.vals}

			env.Replicate(0, src, Offsets{Min: 30, Max: 60})

			if env.Len() != 2 {
				t.Fatalf("expected 2 agents, got %d", env.Len())
			}
			if env.At(1) != tt.want {
				t.Errorf("expected %+v, got %+v", tt.want, env.At(1))
			}
			if env.At(0) != (Position{100, 200}) {
				t.Error("parent moved")
			}
			wantCalls := [][2]int{{-1, 1}, {30, 60}, {-1, 1}, {30, 60}}
			for i, c := range wantCalls {
				if src.calls[i] != c {
					t.Errorf("draw %d: expected range %v, got %v", i, c, src.calls[i])
				}
			}
		})
	}
}

func TestEnvironmentPositionsIsCopy(t *testing.T) {
	env := NewEnvironment(1)
	env.Add(Position{1, 2})
	ps := env.Positions()
	ps[0].X = 99
	if env.At(0).X != 1 {
		t.Error("Positions did not return an independent copy")
	}
}

func TestStepCatchUp(t *testing.T) {
	m, err := NewModel(DefaultConfig(), NewRandSource(3))
	if err != nil {
		t.Fatal(err)
	}

	s := m.Seed()
	prev := s.Env.Len()
	for i := 0; i < m.Config().Steps; i++ {
		snap, err := m.Step(s)
		if err != nil {
			t.Fatalf("step %d: %v", i, err)
		}
		if snap.Count < prev {
			t.Fatalf("step %d: count decreased from %d to %d", i, prev, snap.Count)
		}
		if floor := int(math.Floor(s.Estimate)); snap.Count != floor {
			t.Fatalf("step %d: count %d != floor(estimate) %d", i, snap.Count, floor)
		}
		if len(snap.Positions) != snap.Count {
			t.Fatalf("step %d: %d positions for %d agents", i, len(snap.Positions), snap.Count)
		}
		prev = snap.Count
	}

	if math.Abs(s.Time-10) > 1e-9 {
		t.Errorf("expected final time 10, got %.12f", s.Time)
	}
	if s.Step != 1000 {
		t.Errorf("expected 1000 steps, got %d", s.Step)
	}
}

func TestStepEulerUpdate(t *testing.T) {
	m, err := NewModel(DefaultConfig(), NewRandSource(1))
	if err != nil {
		t.Fatal(err)
	}
	s := m.Seed()
	if _, err := m.Step(s); err != nil {
		t.Fatal(err)
	}
	want := 3 + DefaultGrowthRate*3*0.01
	if math.Abs(s.Estimate-want) > 1e-12 {
		t.Errorf("expected estimate %.12f, got %.12f", want, s.Estimate)
	}
}

func TestStepLargeDtMaterializesSeveral(t *testing.T) {
	cfg := DefaultConfig()
	cfg.Steps = 2
	m, err := NewModel(cfg, NewRandSource(5))
	if err != nil {
		t.Fatal(err)
	}
	s := m.Seed()
	snap, err := m.Step(s)
	if err != nil {
		t.Fatal(err)
	}
	// 3 + 0.693*3*5 = 13.39
	if snap.Count != 13 {
		t.Errorf("expected 13 agents after one coarse step, got %d", snap.Count)
	}
}

func TestStepEmptyEnvironment(t *testing.T) {
	m, err := NewModel(DefaultConfig(), NewRandSource(1))
	if err != nil {
		t.Fatal(err)
	}

	s := &State{Estimate: 3, Env: NewEnvironment(0)}
	_, err = m.Step(s)
	if !errors.Is(err, ErrEmptyEnvironment) {
		t.Fatalf("expected ErrEmptyEnvironment, got %v", err)
	}
	var serr *SimulationError
	if !errors.As(err, &serr) {
		t.Fatalf("expected *SimulationError, got %T", err)
	}
	if s.Estimate != 3 {
		t.Error("estimate advanced despite invariant violation")
	}
}

func TestStepDiverged(t *testing.T) {
	cfg := DefaultConfig()
	cfg.SeedCount = 1
	cfg.GrowthRate = math.MaxFloat64
	cfg.Steps = 1
	m, err := NewModel(cfg, NewRandSource(1))
	if err != nil {
		t.Fatal(err)
	}
	if _, err := m.Step(m.Seed()); !errors.Is(err, ErrDiverged) {
		t.Errorf("expected ErrDiverged, got %v", err)
	}
}

func TestAnalytical(t *testing.T) {
	tests := []struct {
		name string
		seed int
		t    float64
		want float64
	}{
		{"origin", 3, 0, 3},
		{"seed three", 3, 10, 3072},
		{"seed one", 1, 10, 1024},
		{"one doubling", 5, 1, 10},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := Analytical(tt.seed, DefaultGrowthRate, tt.t)
			if math.Abs(got-tt.want) > 1e-6*tt.want {
				t.Errorf("expected %f, got %f", tt.want, got)
			}
		})
	}
}

func TestAnalyticalIsPure(t *testing.T) {
	a := Analytical(3, DefaultGrowthRate, 7.3)
	for i := 0; i < 10; i++ {
		if b := Analytical(3, DefaultGrowthRate, 7.3); math.Float64bits(a) != math.Float64bits(b) {
			t.Fatalf("call %d returned %v, first returned %v", i, b, a)
		}
	}
}

func TestModelAnalyticalUsesElapsedTime(t *testing.T) {
	cfg := DefaultConfig()
	cfg.Start, cfg.End = 5, 15
	m, err := NewModel(cfg, NewRandSource(1))
	if err != nil {
		t.Fatal(err)
	}
	if got := m.Analytical(15); math.Abs(got-3072) > 1e-6 {
		t.Errorf("expected 3072 at end, got %f", got)
	}
	if got := m.Analytical(5); got != 3 {
		t.Errorf("expected seed count at start, got %f", got)
	}
}

func TestDeterminism(t *testing.T) {
	cfg := DefaultConfig()
	cfg.Steps = 300

	m1, _ := NewModel(cfg, NewRandSource(99))
	m2, _ := NewModel(cfg, NewRandSource(99))
	s1, snap1 := runModel(t, m1)
	s2, snap2 := runModel(t, m2)

	if snap1.Count != snap2.Count || s1.Estimate != s2.Estimate {
		t.Fatalf("runs diverged: %d/%f vs %d/%f", snap1.Count, s1.Estimate, snap2.Count, s2.Estimate)
	}
	for i := range snap1.Positions {
		if snap1.Positions[i] != snap2.Positions[i] {
			t.Fatalf("agent %d differs: %+v vs %+v", i, snap1.Positions[i], snap2.Positions[i])
		}
	}
}

func TestScenarioSeedThree(t *testing.T) {
	cfg := DefaultConfig()
	m, _ := NewModel(cfg, NewRandSource(1))
	s, snap := runModel(t, m)

	if snap.Count != int(math.Floor(s.Estimate)) {
		t.Errorf("count %d != floor(estimate %f)", snap.Count, s.Estimate)
	}
	coarseErr := math.Abs(m.Analytical(snap.Time) - float64(snap.Count))
	if coarseErr/3072 > 0.05 {
		t.Errorf("count %d not within 5%% of 3072", snap.Count)
	}

	cfg.Steps = 10000
	fine, _ := NewModel(cfg, NewRandSource(1))
	_, fineSnap := runModel(t, fine)
	fineErr := math.Abs(fine.Analytical(fineSnap.Time) - float64(fineSnap.Count))
	if fineErr >= coarseErr {
		t.Errorf("error did not shrink: steps=1000 %.3f, steps=10000 %.3f", coarseErr, fineErr)
	}
}

func TestWithStepper(t *testing.T) {
	m, err := NewModel(DefaultConfig(), NewRandSource(1), WithStepper(integrators.NewRK4()))
	if err != nil {
		t.Fatal(err)
	}
	if m.Integrator() != "rk4" {
		t.Errorf("expected rk4, got %s", m.Integrator())
	}
	_, snap := runModel(t, m)
	if snap.Count < 3070 || snap.Count > 3072 {
		t.Errorf("expected rk4 count near 3072, got %d", snap.Count)
	}
}
