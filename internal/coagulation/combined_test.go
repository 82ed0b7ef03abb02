package coagulation

import (
	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"
)

var _ = Describe("CombinedStrategy", func() {
	It("sums member kernels", func() {
		b := NewBrownian(Discrete)
		t, err := NewTurbulentShear(Discrete, 0.1, 0)
		Expect(err).NotTo(HaveOccurred())
		c, err := NewCombined([]Strategy{b, t})
		Expect(err).NotTo(HaveOccurred())
		Expect(c.Name()).To(Equal("brownian+turbulent_shear"))
		Expect(c.Members()).To(HaveLen(2))

		p := nanoScale()
		kb, err := b.Kernel(p, roomTemperature, seaLevel)
		Expect(err).NotTo(HaveOccurred())
		kt, err := t.Kernel(p, roomTemperature, seaLevel)
		Expect(err).NotTo(HaveOccurred())
		kc, err := c.Kernel(p, roomTemperature, seaLevel)
		Expect(err).NotTo(HaveOccurred())

		n := p.Len()
		for i := 0; i < n; i++ {
			for j := 0; j < n; j++ {
				want := kb.At(i, j) + kt.At(i, j)
				Expect(kc.At(i, j)).To(BeNumerically("~", want, want*1e-12))
			}
		}
	})

	It("steps with the summed kernel", func() {
		c, err := NewCombined([]Strategy{NewBrownian(Discrete)}, WithLogger(quietLogger()))
		Expect(err).NotTo(HaveOccurred())
		p := nanoScale()
		q := p.Clone()
		_, err = c.Step(p, roomTemperature, seaLevel, 1)
		Expect(err).NotTo(HaveOccurred())
		_, err = NewBrownian(Discrete, WithLogger(quietLogger())).Step(q, roomTemperature, seaLevel, 1)
		Expect(err).NotTo(HaveOccurred())
		Expect(p.Concentration()).To(Equal(q.Concentration()))
	})

	It("rejects empty and mixed members", func() {
		_, err := NewCombined(nil)
		Expect(err).To(HaveOccurred())
		_, err = NewCombined([]Strategy{NewBrownian(Discrete), NewBrownian(ContinuousPDF)})
		Expect(err).To(MatchError(ErrInvalidParticleState))
	})
})
