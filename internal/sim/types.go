package sim

import (
	"errors"
	"fmt"
	"math"

	"github.com/san-kum/bactsim/internal/culture"
)

// ErrZeroPopulation indicates a relative error was requested for an empty culture.
var ErrZeroPopulation = errors.New("sim: relative error undefined for zero population")

// Record compares the approximate and analytical populations at one sample time.
type Record struct {
	Step       int     `json:"step"`
	Time       float64 `json:"time"`
	Approx     int     `json:"approx"`
	Analytical float64 `json:"analytical"`
	AbsError   float64 `json:"abs_error"`
	RelError   float64 `json:"rel_error"`
}

func NewRecord(t float64, approx int, analytical float64) (Record, error) {
	if approx == 0 {
		return Record{}, fmt.Errorf("t=%.4f: %w", t, ErrZeroPopulation)
	}
	abs := math.Abs(analytical - float64(approx))
	return Record{
		Time:       t,
		Approx:     approx,
		Analytical: analytical,
		AbsError:   abs,
		RelError:   abs / math.Abs(float64(approx)),
	}, nil
}

type Metric interface {
	Name() string
	Observe(rec Record)
	Value() float64
	Reset()
}

// Observer receives every step of a run. Positions must not be retained
// across calls unless copied.
type Observer interface {
	OnStep(rec Record, positions []culture.Position)
}

type ObserverFunc func(rec Record, positions []culture.Position)

func (f ObserverFunc) OnStep(rec Record, positions []culture.Position) { f(rec, positions) }

type Result struct {
	Config     culture.Config
	Integrator string
	Records    []Record
	Metrics    map[string]float64
	Final      *culture.State
	StepsTaken int
}

// Last returns the final record, or the zero record for an empty result.
func (r *Result) Last() Record {
	if len(r.Records) == 0 {
		return Record{}
	}
	return r.Records[len(r.Records)-1]
}

// Series splits the records into parallel time, approximate and analytical slices.
func (r *Result) Series() (times, approx, analytical []float64) {
	return Series(r.Records)
}

func Series(records []Record) (times, approx, analytical []float64) {
	times = make([]float64, len(records))
	approx = make([]float64, len(records))
	analytical = make([]float64, len(records))
	for i, rec := range records {
		times[i] = rec.Time
		approx[i] = float64(rec.Approx)
		analytical[i] = rec.Analytical
	}
	return times, approx, analytical
}
