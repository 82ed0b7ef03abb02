package coagulation

import (
	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"
)

var _ = Describe("MergePolicy", func() {
	masses := []float64{1, 2, 4}

	DescribeTable("Place",
		func(policy MergePolicy, merged float64, want Placement, ok bool) {
			got, placed := policy.Place(masses, merged)
			Expect(placed).To(Equal(ok))
			if ok {
				Expect(got.Lo).To(Equal(want.Lo))
				Expect(got.Hi).To(Equal(want.Hi))
				Expect(got.Frac).To(BeNumerically("~", want.Frac, 1e-12))
			}
		},
		Entry("fractional on a grid point", Fractional, 2.0, Placement{Lo: 1, Hi: 1}, true),
		Entry("fractional between bins", Fractional, 3.0, Placement{Lo: 1, Hi: 2, Frac: 0.5}, true),
		Entry("fractional on the last bin", Fractional, 4.0, Placement{Lo: 2, Hi: 2}, true),
		Entry("fractional past the grid", Fractional, 5.0, Placement{}, false),
		Entry("nearest rounds up by radius", Nearest, 3.0, Placement{Lo: 2, Hi: 2}, true),
		Entry("nearest rounds down by radius", Nearest, 2.2, Placement{Lo: 1, Hi: 1}, true),
		Entry("nearest past the grid", Nearest, 4.5, Placement{}, false),
	)

	It("conserves mass when splitting", func() {
		at, ok := Fractional.Place(masses, 3.5)
		Expect(ok).To(BeTrue())
		Expect((1-at.Frac)*masses[at.Lo] + at.Frac*masses[at.Hi]).To(BeNumerically("~", 3.5, 1e-12))
	})

	It("parses names", func() {
		for name, want := range map[string]MergePolicy{"": Fractional, "fractional": Fractional, "Nearest": Nearest} {
			got, err := ParseMergePolicy(name)
			Expect(err).NotTo(HaveOccurred())
			Expect(got).To(Equal(want))
		}
		_, err := ParseMergePolicy("random")
		Expect(err).To(HaveOccurred())
	})

	It("conserves number with the nearest policy", func() {
		s := NewBrownian(Discrete, WithMergePolicy(Nearest), WithLogger(quietLogger()))
		p := nanoScale()
		before := p.TotalNumber()
		report, err := s.Step(p, roomTemperature, seaLevel, 0.1)
		Expect(err).NotTo(HaveOccurred())
		Expect(report.Unstable()).To(BeFalse())
		// each collision removes two particles and adds at most one
		Expect(p.TotalNumber()).To(BeNumerically("<", before))
		Expect(p.TotalNumber()).To(BeNumerically(">", before/2))
	})
})
