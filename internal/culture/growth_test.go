package culture_test

import (
	"math"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"

	"github.com/san-kum/bactsim/internal/culture"
)

func finalError(cfg culture.Config, seed int64) float64 {
	m, err := culture.NewModel(cfg, culture.NewRandSource(seed))
	Expect(err).NotTo(HaveOccurred())

	s := m.Seed()
	var snap culture.Snapshot
	for i := 0; i < cfg.Steps; i++ {
		snap, err = m.Step(s)
		Expect(err).NotTo(HaveOccurred())
	}
	return math.Abs(m.Analytical(snap.Time) - float64(snap.Count))
}

var _ = Describe("Model", func() {
	var (
		cfg culture.Config
		m   *culture.Model
		s   *culture.State
	)

	BeforeEach(func() {
		cfg = culture.DefaultConfig()
		var err error
		m, err = culture.NewModel(cfg, culture.NewRandSource(2024))
		Expect(err).NotTo(HaveOccurred())
		s = m.Seed()
	})

	It("starts with the seed agents and a matching estimate", func() {
		Expect(s.Env.Len()).To(Equal(cfg.SeedCount))
		Expect(s.Estimate).To(BeNumerically("==", cfg.SeedCount))
		for _, p := range s.Env.Positions() {
			Expect(p.X).To(BeNumerically(">=", 0))
			Expect(p.X).To(BeNumerically("<=", cfg.Width))
			Expect(p.Y).To(BeNumerically(">=", 0))
			Expect(p.Y).To(BeNumerically("<=", cfg.Height))
		}
	})

	It("never loses agents and never lags the estimate", func() {
		prev := s.Env.Len()
		prevEstimate := s.Estimate
		for i := 0; i < cfg.Steps; i++ {
			snap, err := m.Step(s)
			Expect(err).NotTo(HaveOccurred())
			Expect(snap.Count).To(BeNumerically(">=", prev))
			Expect(s.Estimate).To(BeNumerically(">", prevEstimate))
			Expect(snap.Count).To(Equal(int(math.Floor(s.Estimate))))
			prev, prevEstimate = snap.Count, s.Estimate
		}
	})

	It("keeps earlier agents in place as the culture grows", func() {
		before := s.Env.Positions()
		for i := 0; i < 200; i++ {
			_, err := m.Step(s)
			Expect(err).NotTo(HaveOccurred())
		}
		Expect(s.Env.Positions()[:len(before)]).To(Equal(before))
	})

	Context("with a fixed random source", func() {
		It("reproduces the same trajectory", func() {
			other, err := culture.NewModel(cfg, culture.NewRandSource(2024))
			Expect(err).NotTo(HaveOccurred())
			t := other.Seed()
			Expect(t.Env.Positions()).To(Equal(s.Env.Positions()))

			for i := 0; i < 400; i++ {
				a, err := m.Step(s)
				Expect(err).NotTo(HaveOccurred())
				b, err := other.Step(t)
				Expect(err).NotTo(HaveOccurred())
				Expect(b.Count).To(Equal(a.Count))
				Expect(b.Positions).To(Equal(a.Positions))
			}
		})
	})

	DescribeTable("converges on the analytical solution as dt shrinks",
		func(coarse, fine int) {
			c := cfg
			c.Steps = coarse
			f := cfg
			f.Steps = fine
			Expect(finalError(f, 1)).To(BeNumerically("<", finalError(c, 1)))
		},
		Entry("100 to 1000 steps", 100, 1000),
		Entry("1000 to 10000 steps", 1000, 10000),
	)

	It("lands within a few percent of 3072 for 1000 steps", func() {
		var snap culture.Snapshot
		for i := 0; i < cfg.Steps; i++ {
			var err error
			snap, err = m.Step(s)
			Expect(err).NotTo(HaveOccurred())
		}
		Expect(snap.Time).To(BeNumerically("~", 10, 1e-9))
		Expect(float64(snap.Count)).To(BeNumerically("~", 3072, 0.05*3072))
	})
})

var _ = Describe("Analytical", func() {
	It("gives 1024 at t=10 for a single seed agent", func() {
		Expect(culture.Analytical(1, culture.DefaultGrowthRate, 10)).To(BeNumerically("~", 1024, 1e-6))
	})

	It("is bit-identical across calls", func() {
		a := culture.Analytical(3, culture.DefaultGrowthRate, 4.2)
		Expect(math.Float64bits(culture.Analytical(3, culture.DefaultGrowthRate, 4.2))).To(Equal(math.Float64bits(a)))
	})
})
