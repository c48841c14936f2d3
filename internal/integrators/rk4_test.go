package integrators

import (
	"math"
	"testing"
)

func growth(r float64) Rate {
	return func(p, t float64) float64 { return r * p }
}

func integrate(s Stepper, f Rate, p0, duration float64, steps int) float64 {
	dt := duration / float64(steps)
	p := p0
	for i := 0; i < steps; i++ {
		p = s.Step(f, p, float64(i)*dt, dt)
	}
	return p
}

func TestEulerSingleStep(t *testing.T) {
	e := NewEuler()
	got := e.Step(growth(0.5), 4.0, 0, 0.1)
	if math.Abs(got-4.2) > 1e-12 {
		t.Errorf("expected 4.2, got %.12f", got)
	}
}

func TestEulerMatchesClosedForm(t *testing.T) {
	r, dt, steps := math.Ln2, 0.01, 1000
	got := integrate(NewEuler(), growth(r), 3, dt*float64(steps), steps)
	expected := 3 * math.Pow(1+r*dt, float64(steps))
	if math.Abs(got-expected) > 1e-6*expected {
		t.Errorf("expected %.6f, got %.6f", expected, got)
	}
}

func TestRK4Accuracy(t *testing.T) {
	r := math.Ln2
	got := integrate(NewRK4(), growth(r), 1, 10, 100)
	if math.Abs(got-1024) > 1e-2 {
		t.Errorf("expected ~1024, got %.6f", got)
	}
}

func TestRK4BeatsEuler(t *testing.T) {
	r := math.Ln2
	exact := 3 * math.Exp(r*10)
	eulerErr := math.Abs(integrate(NewEuler(), growth(r), 3, 10, 1000) - exact)
	rk4Err := math.Abs(integrate(NewRK4(), growth(r), 3, 10, 1000) - exact)
	if rk4Err >= eulerErr {
		t.Errorf("rk4 error %.6e should be below euler error %.6e", rk4Err, eulerErr)
	}
}
