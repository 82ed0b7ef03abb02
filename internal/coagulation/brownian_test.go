package coagulation

import (
	"io"
	"math"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"
	"github.com/san-kum/coagsim/internal/gas"
	"github.com/san-kum/coagsim/internal/particle"
	"github.com/sirupsen/logrus"
	"github.com/sirupsen/logrus/hooks/test"
	"gonum.org/v1/gonum/floats"
)

const (
	roomTemperature = 298.15
	seaLevel        = 101325.0
)

func quietLogger() *logrus.Logger {
	l := logrus.New()
	l.SetOutput(io.Discard)
	return l
}

func metreScale() *particle.Representation {
	p, err := particle.New([]float64{1, 2, 3}, []float64{10, 20, 30}, 1, 1)
	Expect(err).NotTo(HaveOccurred())
	return p
}

// nanoScale is a dense sub-micron aerosol that coagulates noticeably in a
// few seconds.
func nanoScale() *particle.Representation {
	radii := make([]float64, 40)
	floats.LogSpan(radii, 10e-9, 1e-6)
	conc := make([]float64, len(radii))
	for i := range conc {
		conc[i] = 1e12
	}
	p, err := particle.New(radii, conc, 1000, 0)
	Expect(err).NotTo(HaveOccurred())
	return p
}

var _ = Describe("BrownianStrategy", func() {
	var s *BrownianStrategy

	BeforeEach(func() {
		s = NewBrownian(Discrete, WithLogger(quietLogger()))
	})

	It("reports its name and distribution type", func() {
		Expect(s.Name()).To(Equal("brownian"))
		Expect(s.DistributionType()).To(Equal(Discrete))
		Expect(s.MergePolicy()).To(Equal(Fractional))
	})

	Describe("Kernel", func() {
		It("is square, symmetric and non-negative", func() {
			p := metreScale()
			k, err := s.Kernel(p, roomTemperature, seaLevel)
			Expect(err).NotTo(HaveOccurred())
			Expect(k.SymmetricDim()).To(Equal(3))
			for i := 0; i < 3; i++ {
				for j := 0; j < 3; j++ {
					Expect(k.At(i, j)).To(BeNumerically(">=", 0))
					Expect(k.At(i, j)).To(Equal(k.At(j, i)))
				}
			}
		})

		It("is symmetric and non-negative over a sub-micron grid", func() {
			p := nanoScale()
			k, err := s.Kernel(p, roomTemperature, seaLevel)
			Expect(err).NotTo(HaveOccurred())
			n := p.Len()
			Expect(k.SymmetricDim()).To(Equal(n))
			for i := 0; i < n; i++ {
				for j := 0; j < n; j++ {
					Expect(k.At(i, j)).To(BeNumerically(">", 0))
					Expect(k.At(i, j)).To(Equal(k.At(j, i)))
				}
			}
		})

		It("does not modify the particles", func() {
			p := metreScale()
			_, err := s.Kernel(p, roomTemperature, seaLevel)
			Expect(err).NotTo(HaveOccurred())
			Expect(p.Concentration()).To(Equal([]float64{10, 20, 30}))
		})

		It("handles a single bin", func() {
			p, err := particle.New([]float64{1e-7}, []float64{1e10}, 1000, 0)
			Expect(err).NotTo(HaveOccurred())
			k, err := s.Kernel(p, roomTemperature, seaLevel)
			Expect(err).NotTo(HaveOccurred())
			Expect(k.SymmetricDim()).To(Equal(1))
			Expect(k.At(0, 0)).To(BeNumerically(">", 0))
		})

		It("approaches the continuum limit 8kT/3mu for equal large particles", func() {
			p, err := particle.New([]float64{50e-6}, []float64{1}, 1000, 0)
			Expect(err).NotTo(HaveOccurred())
			k, err := s.Kernel(p, roomTemperature, seaLevel)
			Expect(err).NotTo(HaveOccurred())
			mu := gas.DynamicViscosity(roomTemperature)
			want := 8 * gas.BoltzmannConstant * roomTemperature / (3 * mu)
			Expect(k.At(0, 0)).To(BeNumerically("~", want, want*0.01))
		})

		It("is smallest for equal sizes", func() {
			p, err := particle.New([]float64{10e-9, 1e-6}, []float64{1, 1}, 1000, 0)
			Expect(err).NotTo(HaveOccurred())
			k, err := s.Kernel(p, roomTemperature, seaLevel)
			Expect(err).NotTo(HaveOccurred())
			Expect(k.At(0, 1)).To(BeNumerically(">", k.At(0, 0)))
			Expect(k.At(0, 1)).To(BeNumerically(">", k.At(1, 1)))
		})

		DescribeTable("rejects invalid conditions",
			func(temperature, pressure float64) {
				_, err := s.Kernel(metreScale(), temperature, pressure)
				Expect(err).To(MatchError(ErrInvalidPhysicalState))
			},
			Entry("zero temperature", 0.0, seaLevel),
			Entry("negative temperature", -5.0, seaLevel),
			Entry("zero pressure", roomTemperature, 0.0),
			Entry("NaN pressure", roomTemperature, math.NaN()),
		)

		It("rejects an unknown distribution type", func() {
			bad := NewBrownian(DistributionType(7))
			_, err := bad.Kernel(metreScale(), roomTemperature, seaLevel)
			Expect(err).To(MatchError(ErrInvalidParticleState))
		})
	})

	Describe("Step", func() {
		It("changes the concentration of a metre-scale distribution", func() {
			p := metreScale()
			_, err := s.Step(p, roomTemperature, seaLevel, 1)
			Expect(err).NotTo(HaveOccurred())
			Expect(p.Concentration()).NotTo(Equal([]float64{10, 20, 30}))
			Expect(p.Len()).To(Equal(3))
		})

		It("leaves the concentration identical when dt is zero", func() {
			p := metreScale()
			report, err := s.Step(p, roomTemperature, seaLevel, 0)
			Expect(err).NotTo(HaveOccurred())
			Expect(report.Unstable()).To(BeFalse())
			Expect(p.Concentration()).To(Equal([]float64{10, 20, 30}))
		})

		It("rejects a negative time step without modifying particles", func() {
			p := metreScale()
			_, err := s.Step(p, roomTemperature, seaLevel, -1)
			Expect(err).To(HaveOccurred())
			Expect(p.Concentration()).To(Equal([]float64{10, 20, 30}))
		})

		It("leaves particles untouched on invalid conditions", func() {
			p := metreScale()
			_, err := s.Step(p, roomTemperature, -1, 1)
			Expect(err).To(MatchError(ErrInvalidPhysicalState))
			Expect(p.Concentration()).To(Equal([]float64{10, 20, 30}))
		})

		It("reduces the total number and conserves mass", func() {
			p := nanoScale()
			number := p.TotalNumber()
			mass := p.TotalMass()

			report, err := s.Step(p, roomTemperature, seaLevel, 1)
			Expect(err).NotTo(HaveOccurred())
			Expect(report.Unstable()).To(BeFalse())
			Expect(p.TotalNumber()).To(BeNumerically("<", number))
			Expect(p.TotalMass() + report.LostMass).To(BeNumerically("~", mass, mass*1e-9))
			Expect(p.MeanRadius()).To(BeNumerically(">", 0))
		})

		It("clamps and reports negative concentrations on an oversized step", func() {
			logger, hook := test.NewNullLogger()
			s := NewBrownian(Discrete, WithLogger(logger))
			p := nanoScale()

			report, err := s.Step(p, roomTemperature, seaLevel, 1e6)
			Expect(err).NotTo(HaveOccurred())
			Expect(report.Unstable()).To(BeTrue())
			for _, c := range p.Concentration() {
				Expect(c).To(BeNumerically(">=", 0))
			}
			Expect(hook.LastEntry()).NotTo(BeNil())
			Expect(hook.LastEntry().Level).To(Equal(logrus.WarnLevel))
			Expect(hook.LastEntry().Data).To(HaveKeyWithValue("strategy", "brownian"))
		})

		It("treats continuous concentrations as densities in radius", func() {
			discrete := nanoScale()
			widths := particle.BinWidths(discrete.Distribution())
			pdf := discrete.Concentration()
			floats.Div(pdf, widths)
			continuous, err := particle.New(discrete.Distribution(), pdf, discrete.Density(), 0)
			Expect(err).NotTo(HaveOccurred())

			_, err = s.Step(discrete, roomTemperature, seaLevel, 1)
			Expect(err).NotTo(HaveOccurred())
			c := NewBrownian(ContinuousPDF, WithLogger(quietLogger()))
			_, err = c.Step(continuous, roomTemperature, seaLevel, 1)
			Expect(err).NotTo(HaveOccurred())

			got := continuous.Concentration()
			floats.Mul(got, widths)
			want := discrete.Concentration()
			for i := range want {
				Expect(got[i]).To(BeNumerically("~", want[i], math.Max(want[i]*1e-9, 1e-6)))
			}
		})
	})

	Describe("Advance", func() {
		It("proposes a step without committing it", func() {
			p := nanoScale()
			before := p.Concentration()
			next, _, err := Advance(s, p, roomTemperature, seaLevel, 1)
			Expect(err).NotTo(HaveOccurred())
			Expect(p.Concentration()).To(Equal(before))
			Expect(next).NotTo(Equal(before))
		})
	})

	Describe("Rates", func() {
		It("agrees with a small Euler step", func() {
			p := nanoScale()
			before := p.Concentration()
			rates, err := Rates(s, p, roomTemperature, seaLevel)
			Expect(err).NotTo(HaveOccurred())
			next, _, err := Advance(s, p, roomTemperature, seaLevel, 1e-3)
			Expect(err).NotTo(HaveOccurred())
			for i := range rates {
				Expect(next[i]).To(BeNumerically("~", before[i]+1e-3*rates[i], 1))
			}
		})
	})
})

var _ = Describe("ParseDistributionType", func() {
	DescribeTable("accepted names",
		func(name string, want DistributionType) {
			got, err := ParseDistributionType(name)
			Expect(err).NotTo(HaveOccurred())
			Expect(got).To(Equal(want))
		},
		Entry(nil, "discrete", Discrete),
		Entry(nil, "continuous_pdf", ContinuousPDF),
		Entry(nil, "continuous", ContinuousPDF),
		Entry(nil, " Discrete ", Discrete),
	)

	It("rejects anything else", func() {
		_, err := ParseDistributionType("histogram")
		Expect(err).To(MatchError(ErrInvalidParticleState))
	})
})
