package culture

import "math"

// Analytical is the closed-form solution seed·exp(rate·t) of dP/dt = rate·P.
func Analytical(seed int, rate, t float64) float64 {
	return float64(seed) * math.Exp(rate*t)
}
