package culture

import "math/rand"

// Source supplies uniformly distributed integers in the closed range [lo, hi].
type Source interface {
	IntRange(lo, hi int) int
}

type RandSource struct {
	r *rand.Rand
}

func NewRandSource(seed int64) *RandSource {
	return &RandSource{r: rand.New(rand.NewSource(seed))}
}

func (s *RandSource) IntRange(lo, hi int) int {
	if hi <= lo {
		return lo
	}
	return lo + s.r.Intn(hi-lo+1)
}
