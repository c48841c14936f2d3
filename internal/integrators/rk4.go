package integrators

type RK4 struct{}

func NewRK4() *RK4 {
	return &RK4{}
}

func (r *RK4) Name() string { return "rk4" }

func (r *RK4) Step(f Rate, p, t, dt float64) float64 {
	k1 := f(p, t)
	k2 := f(p+dt*0.5*k1, t+dt*0.5)
	k3 := f(p+dt*0.5*k2, t+dt*0.5)
	k4 := f(p+dt*k3, t+dt)

	return p + dt/6.0*(k1+2*k2+2*k3+k4)
}
