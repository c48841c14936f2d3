// Package culture models a growing bacterial culture.
//
// The culture is driven by a continuous population estimate advanced with
// a forward-Euler step of dP/dt = r·P. Whenever the floor of the estimate
// passes the number of materialized agents, randomly chosen agents
// replicate until the two agree:
//
//   - [Config]: seed count, growth rate, time span and canvas geometry
//   - [Environment]: append-only arena of agent positions
//   - [State]: estimate plus environment, owned by the caller
//   - [Model]: the step rule
//   - [Analytical]: closed-form reference seed·exp(r·t)
//
// # Example
//
//	m, err := culture.NewModel(culture.DefaultConfig(), culture.NewRandSource(42))
//	if err != nil {
//		return err
//	}
//	s := m.Seed()
//	for i := 0; i < m.Config().Steps; i++ {
//		snap, err := m.Step(s)
//		...
//	}
//
// # Randomness
//
// Parent selection and replica offsets are drawn from a [Source]. Tests
// substitute a scripted source to make trajectories reproducible.
package culture
