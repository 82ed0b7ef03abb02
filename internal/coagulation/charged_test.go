package coagulation

import (
	"math"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"
	"github.com/san-kum/coagsim/internal/particle"
)

var _ = Describe("Coulomb enhancement", func() {
	It("is neutral without charge", func() {
		Expect(CoulombPotentialRatio(0, 3, 1e-7, roomTemperature)).To(BeZero())
		Expect(CoulombKineticLimit(0)).To(Equal(1.0))
		Expect(CoulombContinuumLimit(0)).To(Equal(1.0))
	})

	It("is repulsive for like charges", func() {
		phi := CoulombPotentialRatio(2, 2, 1e-8, roomTemperature)
		Expect(phi).To(BeNumerically("<", 0))
		Expect(CoulombKineticLimit(phi)).To(BeNumerically("<", 1))
		Expect(CoulombContinuumLimit(phi)).To(BeNumerically("<", 1))
	})

	It("is attractive for opposite charges", func() {
		phi := CoulombPotentialRatio(-2, 2, 1e-8, roomTemperature)
		Expect(phi).To(BeNumerically(">", 0))
		Expect(CoulombKineticLimit(phi)).To(Equal(1 + phi))
		Expect(CoulombContinuumLimit(phi)).To(BeNumerically(">", 1))
	})
})

var _ = Describe("Approximation", func() {
	It("tends to the continuum and free-molecular limits", func() {
		h, err := HardSphere.Eval(1e-4, 0)
		Expect(err).NotTo(HaveOccurred())
		Expect(h).To(BeNumerically("~", 4*math.Pi*1e-8, 4*math.Pi*1e-8*1e-3))

		h, err = HardSphere.Eval(1e4, 0)
		Expect(err).NotTo(HaveOccurred())
		want := math.Sqrt(8*math.Pi) * 1e4
		Expect(h).To(BeNumerically("~", want, want*1e-3))
	})

	DescribeTable("finite and positive",
		func(a Approximation, phi float64) {
			for _, kn := range []float64{0.01, 0.1, 1, 10} {
				h, err := a.Eval(kn, phi)
				Expect(err).NotTo(HaveOccurred())
				Expect(math.IsNaN(h) || math.IsInf(h, 0)).To(BeFalse())
				Expect(h).To(BeNumerically(">", 0))
			}
		},
		Entry(nil, HardSphere, 0.0),
		Entry(nil, Dyachkov2007, 1.0),
		Entry(nil, Gatti2008, 1.0),
		Entry(nil, Gopalakrishnan2012, 1.0),
		Entry(nil, Chahl2019, 1.0),
		Entry(nil, Gatti2008, -1.0),
		Entry(nil, Chahl2019, -1.0),
	)

	It("falls back to the hard sphere kernel for repulsion", func() {
		hs, err := HardSphere.Eval(0.5, 0)
		Expect(err).NotTo(HaveOccurred())
		for _, a := range []Approximation{Gatti2008, Gopalakrishnan2012, Chahl2019} {
			h, err := a.Eval(0.5, -2)
			Expect(err).NotTo(HaveOccurred())
			Expect(h).To(Equal(hs))
		}
	})

	It("rejects an invalid Knudsen number", func() {
		_, err := HardSphere.Eval(-1, 0)
		Expect(err).To(HaveOccurred())
		_, err = HardSphere.Eval(math.NaN(), 0)
		Expect(err).To(HaveOccurred())
	})

	It("parses names", func() {
		a, err := ParseApproximation("Chahl2019")
		Expect(err).NotTo(HaveOccurred())
		Expect(a).To(Equal(Chahl2019))
		_, err = ParseApproximation("fuchs")
		Expect(err).To(HaveOccurred())
	})
})

var _ = Describe("ChargedStrategy", func() {
	micron := func(charge float64) *particle.Representation {
		p, err := particle.New([]float64{1e-6, 2e-6}, []float64{1e9, 1e9}, 1000, charge)
		Expect(err).NotTo(HaveOccurred())
		return p
	}

	It("agrees with Brownian coagulation for neutral continuum particles", func() {
		s, err := NewCharged(Discrete, HardSphere)
		Expect(err).NotTo(HaveOccurred())
		charged, err := s.Kernel(micron(0), roomTemperature, seaLevel)
		Expect(err).NotTo(HaveOccurred())
		brownian, err := NewBrownian(Discrete).Kernel(micron(0), roomTemperature, seaLevel)
		Expect(err).NotTo(HaveOccurred())
		for i := 0; i < 2; i++ {
			for j := 0; j < 2; j++ {
				Expect(charged.At(i, j)).To(BeNumerically("~", brownian.At(i, j), brownian.At(i, j)*0.05))
			}
		}
	})

	It("slows coagulation of like-charged particles", func() {
		s, err := NewCharged(Discrete, HardSphere)
		Expect(err).NotTo(HaveOccurred())
		neutral, err := s.Kernel(micron(0), roomTemperature, seaLevel)
		Expect(err).NotTo(HaveOccurred())
		charged, err := s.Kernel(micron(20), roomTemperature, seaLevel)
		Expect(err).NotTo(HaveOccurred())
		Expect(charged.At(0, 0)).To(BeNumerically("<", neutral.At(0, 0)))
	})

	It("steps every approximation", func() {
		for _, a := range Approximations {
			s, err := NewCharged(Discrete, a, WithLogger(quietLogger()))
			Expect(err).NotTo(HaveOccurred())
			Expect(s.Approximation()).To(Equal(a))
			p := micron(1)
			_, err = s.Step(p, roomTemperature, seaLevel, 1)
			Expect(err).NotTo(HaveOccurred())
			Expect(p.TotalNumber()).To(BeNumerically("<", 2e9))
		}
	})

	It("stays finite for strongly repelling nanometre particles", func() {
		for _, charge := range []float64{5, 6, 10, 50} {
			p, err := particle.New([]float64{1e-9, 2e-9, 5e-9}, []float64{1e12, 1e12, 1e12}, 1000, charge)
			Expect(err).NotTo(HaveOccurred())
			for _, a := range Approximations {
				s, err := NewCharged(Discrete, a, WithLogger(quietLogger()))
				Expect(err).NotTo(HaveOccurred())
				k, err := s.Kernel(p, roomTemperature, seaLevel)
				Expect(err).NotTo(HaveOccurred(), "charge %g, %s", charge, a)
				for i := 0; i < 3; i++ {
					for j := 0; j < 3; j++ {
						v := k.At(i, j)
						Expect(math.IsNaN(v) || math.IsInf(v, 0)).To(BeFalse(), "charge %g, %s", charge, a)
						Expect(v).To(BeNumerically(">=", 0))
					}
				}
			}
		}
	})

	It("keeps the Knudsen number finite under strong repulsion", func() {
		for _, phi := range []float64{-5, -50, -800, -1e6} {
			kn := DiffusiveKnudsenNumber(298.15, 1e-24, 1e-15, 2e-9, phi)
			Expect(math.IsNaN(kn) || math.IsInf(kn, 0)).To(BeFalse())
			Expect(kn).To(BeNumerically(">", 0))
			Expect(DimensionalKernel(1, phi, 2e-9, 1e-24, 1e-15)).To(BeNumerically(">=", 0))
		}
		Expect(math.IsNaN(CoulombContinuumLimit(-800))).To(BeFalse())
	})

	It("rejects an unknown approximation", func() {
		_, err := NewCharged(Discrete, Approximation("fuchs"))
		Expect(err).To(HaveOccurred())
	})
})
