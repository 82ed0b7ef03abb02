package coagulation

import (
	"math"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"
	"github.com/san-kum/coagsim/internal/particle"
	"gonum.org/v1/gonum/floats"
)

var _ = Describe("TurbulentShearStrategy", func() {
	It("scales with the cube of the collision radius", func() {
		s, err := NewTurbulentShear(Discrete, 0.1, 1.2)
		Expect(err).NotTo(HaveOccurred())
		p, err := particle.New([]float64{1e-7, 2e-7}, []float64{1, 1}, 1000, 0)
		Expect(err).NotTo(HaveOccurred())

		k, err := s.Kernel(p, roomTemperature, seaLevel)
		Expect(err).NotTo(HaveOccurred())
		Expect(k.At(1, 1) / k.At(0, 0)).To(BeNumerically("~", 8, 1e-9))
		Expect(k.At(0, 1) / k.At(0, 0)).To(BeNumerically("~", 27.0/8, 1e-9))
	})

	It("matches the Saffman-Turner rate", func() {
		s, err := NewTurbulentShear(Discrete, 0.01, 1.2)
		Expect(err).NotTo(HaveOccurred())
		p, err := particle.New([]float64{1e-6}, []float64{1}, 1000, 0)
		Expect(err).NotTo(HaveOccurred())

		k, err := s.Kernel(p, roomTemperature, seaLevel)
		Expect(err).NotTo(HaveOccurred())
		nu := 1.8e-5 / 1.2
		want := math.Sqrt(8*math.Pi/15) * 8e-18 * math.Sqrt(0.01/nu)
		Expect(k.At(0, 0)).To(BeNumerically("~", want, want*0.05))
	})

	It("falls back to ideal-gas density", func() {
		s, err := NewTurbulentShear(Discrete, 0.01, 0)
		Expect(err).NotTo(HaveOccurred())
		k, err := s.Kernel(metreScale(), roomTemperature, seaLevel)
		Expect(err).NotTo(HaveOccurred())
		Expect(k.At(0, 0)).To(BeNumerically(">", 0))
	})

	It("leaves still air unchanged", func() {
		s, err := NewTurbulentShear(Discrete, 0, 0)
		Expect(err).NotTo(HaveOccurred())
		p := nanoScale()
		before := p.Concentration()
		_, err = s.Step(p, roomTemperature, seaLevel, 10)
		Expect(err).NotTo(HaveOccurred())
		Expect(p.Concentration()).To(Equal(before))
	})

	It("steps continuous densities like the equivalent counts", func() {
		discrete := nanoScale()
		widths := particle.BinWidths(discrete.Distribution())
		pdf := discrete.Concentration()
		floats.Div(pdf, widths)
		continuous, err := particle.New(discrete.Distribution(), pdf, discrete.Density(), 0)
		Expect(err).NotTo(HaveOccurred())

		d, err := NewTurbulentShear(Discrete, 0.1, 1.2, WithLogger(quietLogger()))
		Expect(err).NotTo(HaveOccurred())
		c, err := NewTurbulentShear(ContinuousPDF, 0.1, 1.2, WithLogger(quietLogger()))
		Expect(err).NotTo(HaveOccurred())
		Expect(c.DistributionType()).To(Equal(ContinuousPDF))

		before := discrete.Concentration()
		_, err = d.Step(discrete, roomTemperature, seaLevel, 10)
		Expect(err).NotTo(HaveOccurred())
		_, err = c.Step(continuous, roomTemperature, seaLevel, 10)
		Expect(err).NotTo(HaveOccurred())

		want := discrete.Concentration()
		Expect(want).NotTo(Equal(before))
		got := continuous.Concentration()
		floats.Mul(got, widths)
		for i := range want {
			Expect(got[i]).To(BeNumerically("~", want[i], math.Max(want[i]*1e-9, 1e-6)))
		}
	})

	It("rejects invalid parameters", func() {
		_, err := NewTurbulentShear(Discrete, -1, 1.2)
		Expect(err).To(HaveOccurred())
		_, err = NewTurbulentShear(Discrete, 0.1, math.Inf(1))
		Expect(err).To(HaveOccurred())
	})
})
