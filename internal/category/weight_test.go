package category_test

import (
	"errors"
	"math"

	"github.com/frahmantamala/evaluation-criteria/internal/category"
	"github.com/google/go-cmp/cmp"
	"github.com/google/go-cmp/cmp/cmpopts"
	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"
)

var _ = Describe("Weight validation", func() {
	Describe("ValidateWeights", func() {
		DescribeTable("full distributions",
			func(pairs []category.WeightPair, want category.ValidationResult) {
				got := category.ValidateWeights(pairs)
				Expect(cmp.Diff(want, got, cmpopts.EquateEmpty())).To(BeEmpty())
			},
			Entry("exactly 100 passes",
				[]category.WeightPair{{CategoryID: 1, Weight: 50}, {CategoryID: 2, Weight: 25}, {CategoryID: 3, Weight: 25}},
				category.ValidationResult{Valid: true, Total: 100, Delta: 0},
			),
			Entry("rounding noise stays inside the tolerance",
				[]category.WeightPair{{CategoryID: 1, Weight: 33.333}, {CategoryID: 2, Weight: 33.333}, {CategoryID: 3, Weight: 33.334}},
				category.ValidationResult{Valid: true, Total: 100, Delta: 0},
			),
			Entry("off by one hundredth is tolerated",
				[]category.WeightPair{{CategoryID: 1, Weight: 60}, {CategoryID: 2, Weight: 39.99}},
				category.ValidationResult{Valid: true, Total: 99.99, Delta: -0.01},
			),
			Entry("off by two hundredths fails",
				[]category.WeightPair{{CategoryID: 1, Weight: 60}, {CategoryID: 2, Weight: 39.98}},
				category.ValidationResult{
					Valid: false, Total: 99.98, Delta: -0.02,
					Violations: []category.WeightViolation{{Weight: 99.98, Reason: category.ReasonSumMismatch}},
				},
			),
			Entry("over 100 reports the delta",
				[]category.WeightPair{{CategoryID: 1, Weight: 50}, {CategoryID: 2, Weight: 30}, {CategoryID: 3, Weight: 30}},
				category.ValidationResult{
					Valid: false, Total: 110, Delta: 10,
					Violations: []category.WeightViolation{{Weight: 110, Reason: category.ReasonSumMismatch}},
				},
			),
			Entry("negative weights are flagged even when the sum is 100",
				[]category.WeightPair{{CategoryID: 1, Weight: 110}, {CategoryID: 2, Weight: -10}},
				category.ValidationResult{
					Valid: false, Total: 100, Delta: 0,
					Violations: []category.WeightViolation{
						{CategoryID: 1, Weight: 110, Reason: category.ReasonExceedsMaximum},
						{CategoryID: 2, Weight: -10, Reason: category.ReasonNegativeWeight},
					},
				},
			),
			Entry("duplicate ids are rejected",
				[]category.WeightPair{{CategoryID: 1, Weight: 50}, {CategoryID: 1, Weight: 50}},
				category.ValidationResult{
					Valid: false, Total: 100, Delta: 0,
					Violations: []category.WeightViolation{{CategoryID: 1, Weight: 50, Reason: category.ReasonDuplicateCategory}},
				},
			),
			Entry("NaN is flagged and left out of the total",
				[]category.WeightPair{{CategoryID: 1, Weight: 100}, {CategoryID: 2, Weight: math.NaN()}},
				category.ValidationResult{
					Valid: false, Total: 100, Delta: 0,
					Violations: []category.WeightViolation{{CategoryID: 2, Reason: category.ReasonNonFiniteWeight}},
				},
			),
			Entry("infinities are flagged",
				[]category.WeightPair{{CategoryID: 1, Weight: math.Inf(1)}, {CategoryID: 2, Weight: math.Inf(-1)}},
				category.ValidationResult{
					Valid: false, Total: 0, Delta: -100,
					Violations: []category.WeightViolation{
						{CategoryID: 1, Reason: category.ReasonNonFiniteWeight},
						{CategoryID: 2, Reason: category.ReasonNonFiniteWeight},
						{Weight: 0, Reason: category.ReasonSumMismatch},
					},
				},
			),
			Entry("an empty set does not sum to 100",
				[]category.WeightPair{},
				category.ValidationResult{
					Valid: false, Total: 0, Delta: -100,
					Violations: []category.WeightViolation{{Weight: 0, Reason: category.ReasonSumMismatch}},
				},
			),
		)
	})

	Describe("CheckIncrement", func() {
		It("allows a total of exactly 100", func() {
			Expect(category.CheckIncrement(70, 30)).To(Succeed())
		})

		It("allows totals below 100", func() {
			Expect(category.CheckIncrement(10, 5)).To(Succeed())
		})

		It("reports the baseline and the proposed total when exceeding 100", func() {
			err := category.CheckIncrement(60, 45)

			var exceeded *category.WeightExceededError
			Expect(errors.As(err, &exceeded)).To(BeTrue())
			Expect(exceeded.CurrentTotal).To(Equal(60.0))
			Expect(exceeded.ProposedTotal).To(Equal(105.0))
		})

		It("fails at 101", func() {
			var exceeded *category.WeightExceededError
			Expect(errors.As(category.CheckIncrement(70, 31), &exceeded)).To(BeTrue())
			Expect(exceeded.ProposedTotal).To(Equal(101.0))
		})

		It("rejects weights outside [0, 100]", func() {
			var rangeErr *category.WeightRangeError
			Expect(errors.As(category.CheckIncrement(0, -1), &rangeErr)).To(BeTrue())
			Expect(errors.As(category.CheckIncrement(0, 100.5), &rangeErr)).To(BeTrue())
		})

		It("rejects non-finite weights", func() {
			var rangeErr *category.WeightRangeError
			Expect(errors.As(category.CheckIncrement(50, math.NaN()), &rangeErr)).To(BeTrue())
			Expect(errors.As(category.CheckIncrement(0, math.Inf(1)), &rangeErr)).To(BeTrue())
			Expect(rangeErr.Error()).To(ContainSubstring("finite"))
		})
	})

	Describe("RoundWeight", func() {
		It("rounds to two decimals", func() {
			Expect(category.RoundWeight(10.126)).To(BeNumerically("~", 10.13, 0.0001))
			Expect(category.RoundWeight(0.1 + 0.2)).To(Equal(0.3))
		})
	})
})
