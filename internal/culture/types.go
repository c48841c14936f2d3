package culture

import (
	"fmt"
	"math"
)

const (
	DefaultSeedCount  = 3
	DefaultGrowthRate = 0.69314718056 // 1 agent doubles to 1024 over 10 time units
	DefaultStart      = 0.0
	DefaultEnd        = 10.0
	DefaultSteps      = 1000
	DefaultWidth      = 1024
	DefaultHeight     = 768
	DefaultOffsetMin  = 30
	DefaultOffsetMax  = 60
)

// Position is the location of one agent on the canvas.
type Position struct {
	X float64 `json:"x"`
	Y float64 `json:"y"`
}

// Offsets bounds the magnitude of a replica's displacement on each axis.
type Offsets struct {
	Min int
	Max int
}

type Config struct {
	SeedCount  int
	GrowthRate float64
	Start      float64
	End        float64
	Steps      int
	Width      int
	Height     int
	Offsets    Offsets
}

func DefaultConfig() Config {
	return Config{
		SeedCount:  DefaultSeedCount,
		GrowthRate: DefaultGrowthRate,
		Start:      DefaultStart,
		End:        DefaultEnd,
		Steps:      DefaultSteps,
		Width:      DefaultWidth,
		Height:     DefaultHeight,
		Offsets:    Offsets{Min: DefaultOffsetMin, Max: DefaultOffsetMax},
	}
}

// Dt is the time increment of a single step.
func (c Config) Dt() float64 {
	return (c.End - c.Start) / float64(c.Steps)
}

// SampleTime returns the time reached after k steps.
func (c Config) SampleTime(k int) float64 {
	return c.Start + float64(k)*c.Dt()
}

func (c Config) Validate() error {
	switch {
	case c.SeedCount < 1:
		return &ConfigError{Field: "seed_count", Value: c.SeedCount, Reason: "must be at least 1"}
	case !(c.GrowthRate > 0) || math.IsInf(c.GrowthRate, 0):
		return &ConfigError{Field: "growth_rate", Value: c.GrowthRate, Reason: "must be positive and finite"}
	case math.IsNaN(c.Start) || math.IsInf(c.Start, 0):
		return &ConfigError{Field: "start", Value: c.Start, Reason: "must be finite"}
	case !(c.End > c.Start) || math.IsInf(c.End, 0):
		return &ConfigError{Field: "end", Value: c.End, Reason: fmt.Sprintf("must be finite and after start %v", c.Start)}
	case c.Steps <= 0:
		return &ConfigError{Field: "steps", Value: c.Steps, Reason: "must be positive"}
	case c.Width <= 0:
		return &ConfigError{Field: "width", Value: c.Width, Reason: "must be positive"}
	case c.Height <= 0:
		return &ConfigError{Field: "height", Value: c.Height, Reason: "must be positive"}
	case c.Offsets.Min < 0:
		return &ConfigError{Field: "offsets.min", Value: c.Offsets.Min, Reason: "must not be negative"}
	case c.Offsets.Max < c.Offsets.Min:
		return &ConfigError{Field: "offsets.max", Value: c.Offsets.Max, Reason: fmt.Sprintf("must be at least offsets.min %d", c.Offsets.Min)}
	}
	return nil
}

// Environment is the append-only arena of every agent materialized so far.
// Agents are addressed by index and hold no reference back to the arena.
type Environment struct {
	agents []Position
}

func NewEnvironment(capacity int) *Environment {
	return &Environment{agents: make([]Position, 0, capacity)}
}

func (e *Environment) Len() int { return len(e.agents) }

func (e *Environment) At(i int) Position { return e.agents[i] }

func (e *Environment) Add(p Position) {
	e.agents = append(e.agents, p)
}

// Positions returns a copy of every agent position in insertion order.
func (e *Environment) Positions() []Position {
	out := make([]Position, len(e.agents))
	copy(out, e.agents)
	return out
}

// Replicate appends a child of the agent at index parent, displaced on
// each axis by sign·magnitude with sign in {-1, 0, 1} and magnitude in
// [off.Min, off.Max]. Draws happen in the order sign-x, magnitude-x,
// sign-y, magnitude-y.
func (e *Environment) Replicate(parent int, rng Source, off Offsets) {
	p := e.agents[parent]
	dx := offset(rng, off)
	dy := offset(rng, off)
	e.agents = append(e.agents, Position{X: p.X + dx, Y: p.Y + dy})
}

func offset(rng Source, off Offsets) float64 {
	sign := rng.IntRange(-1, 1)
	mag := rng.IntRange(off.Min, off.Max)
	return float64(sign * mag)
}

// State is the mutable part of a simulation run.
type State struct {
	Estimate float64
	Env      *Environment
	Step     int
	Time     float64
}

// Snapshot is what a single step reports to its caller.
type Snapshot struct {
	Step      int
	Time      float64
	Count     int
	Estimate  float64
	Positions []Position
}
