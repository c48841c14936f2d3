package integrators

// Rate is the right-hand side of a scalar ODE dp/dt = f(p, t).
type Rate func(p, t float64) float64

// Stepper advances a scalar quantity by one timestep.
type Stepper interface {
	Name() string
	Step(f Rate, p, t, dt float64) float64
}

type Euler struct{}

func NewEuler() *Euler {
	return &Euler{}
}

func (e *Euler) Name() string { return "euler" }

// Step applies p + dt*f(p, t).
func (e *Euler) Step(f Rate, p, t, dt float64) float64 {
	return p + dt*f(p, t)
}
