package metrics

import (
	"math"

	"github.com/san-kum/bactsim/internal/sim"
)

// MaxAbsError tracks the largest |analytical - approx| seen during a run.
type MaxAbsError struct {
	name string
	max  float64
}

func NewMaxAbsError() *MaxAbsError {
	return &MaxAbsError{name: "max_abs_error"}
}

func (m *MaxAbsError) Name() string { return m.name }

func (m *MaxAbsError) Observe(rec sim.Record) {
	m.max = math.Max(m.max, rec.AbsError)
}

func (m *MaxAbsError) Value() float64 { return m.max }

func (m *MaxAbsError) Reset() { m.max = 0 }

type MeanRelError struct {
	name    string
	sum     float64
	samples int
}

func NewMeanRelError() *MeanRelError {
	return &MeanRelError{name: "mean_rel_error"}
}

func (m *MeanRelError) Name() string { return m.name }

func (m *MeanRelError) Observe(rec sim.Record) {
	m.sum += rec.RelError
	m.samples++
}

func (m *MeanRelError) Value() float64 {
	if m.samples == 0 {
		return 0
	}
	return m.sum / float64(m.samples)
}

func (m *MeanRelError) Reset() {
	m.sum = 0
	m.samples = 0
}

// FinalRelError reports the relative error of the last observed sample.
type FinalRelError struct {
	name string
	last float64
}

func NewFinalRelError() *FinalRelError {
	return &FinalRelError{name: "final_rel_error"}
}

func (f *FinalRelError) Name() string { return f.name }

func (f *FinalRelError) Observe(rec sim.Record) { f.last = rec.RelError }

func (f *FinalRelError) Value() float64 { return f.last }

func (f *FinalRelError) Reset() { f.last = 0 }
