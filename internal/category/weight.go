package category

import (
	"fmt"
	"math"
)

const (
	MaxTotalWeight  = 100.0
	WeightTolerance = 0.01
)

// Violation reasons reported by ValidateWeights.
const (
	ReasonNonFiniteWeight   = "non_finite_weight"
	ReasonNegativeWeight    = "negative_weight"
	ReasonExceedsMaximum    = "exceeds_maximum"
	ReasonDuplicateCategory = "duplicate_category"
	ReasonSumMismatch       = "sum_mismatch"
)

type WeightPair struct {
	CategoryID int64   `json:"category_id" yaml:"category_id"`
	Weight     float64 `json:"weight" yaml:"weight"`
}

type WeightViolation struct {
	CategoryID int64   `json:"category_id,omitempty" yaml:"category_id,omitempty"`
	Weight     float64 `json:"weight" yaml:"weight"`
	Reason     string  `json:"reason" yaml:"reason"`
}

type ValidationResult struct {
	Valid      bool              `json:"valid" yaml:"valid"`
	Total      float64           `json:"total" yaml:"total"`
	Delta      float64           `json:"delta" yaml:"delta"`
	Violations []WeightViolation `json:"violations,omitempty" yaml:"violations,omitempty"`
}

// RoundWeight rounds to the two decimals a weight is stored with.
func RoundWeight(w float64) float64 {
	return math.Round(w*100) / 100
}

// SumWeights adds weights and rounds the result to storage precision.
func SumWeights(weights ...float64) float64 {
	var total float64
	for _, w := range weights {
		total += w
	}
	return RoundWeight(total)
}

// ValidateWeights checks a complete proposed distribution: every weight a finite
// number within [0, 100], no category listed twice, and the total within
// WeightTolerance of 100. Non-finite weights are reported with weight 0 and left
// out of the total so the result stays encodable.
func ValidateWeights(pairs []WeightPair) ValidationResult {
	result := ValidationResult{Valid: true}
	seen := make(map[int64]struct{}, len(pairs))

	weights := make([]float64, 0, len(pairs))
	for _, p := range pairs {
		switch {
		case !isFinite(p.Weight):
			result.Violations = append(result.Violations, WeightViolation{CategoryID: p.CategoryID, Reason: ReasonNonFiniteWeight})
		case p.Weight < 0:
			result.Violations = append(result.Violations, WeightViolation{CategoryID: p.CategoryID, Weight: p.Weight, Reason: ReasonNegativeWeight})
		case p.Weight > MaxTotalWeight:
			result.Violations = append(result.Violations, WeightViolation{CategoryID: p.CategoryID, Weight: p.Weight, Reason: ReasonExceedsMaximum})
		}
		if isFinite(p.Weight) {
			weights = append(weights, p.Weight)
		}

		if _, dup := seen[p.CategoryID]; dup {
			result.Violations = append(result.Violations, WeightViolation{CategoryID: p.CategoryID, Weight: finiteOrZero(p.Weight), Reason: ReasonDuplicateCategory})
		}
		seen[p.CategoryID] = struct{}{}
	}

	result.Total = SumWeights(weights...)
	result.Delta = RoundWeight(result.Total - MaxTotalWeight)

	if math.Abs(result.Delta) > WeightTolerance {
		result.Violations = append(result.Violations, WeightViolation{Weight: result.Total, Reason: ReasonSumMismatch})
	}

	result.Valid = len(result.Violations) == 0
	return result
}

// CheckIncrement is the looser single-category rule: otherActiveTotal plus the
// new weight must not exceed 100. Totals below 100 are allowed.
func CheckIncrement(otherActiveTotal, newWeight float64) error {
	if err := CheckWeightRange(newWeight); err != nil {
		return err
	}

	current := RoundWeight(otherActiveTotal)
	proposed := SumWeights(current, newWeight)
	if proposed > MaxTotalWeight {
		return &WeightExceededError{CurrentTotal: current, ProposedTotal: proposed}
	}
	return nil
}

// CheckWeightRange rejects NaN, infinities and weights outside [0, 100].
func CheckWeightRange(w float64) error {
	if !isFinite(w) || w < 0 || w > MaxTotalWeight {
		return &WeightRangeError{Weight: w}
	}
	return nil
}

type WeightRangeError struct {
	Weight float64
}

func (e *WeightRangeError) Error() string {
	if !isFinite(e.Weight) {
		return fmt.Sprintf("weight must be a finite number between 0 and %.0f", MaxTotalWeight)
	}
	return fmt.Sprintf("weight %.2f must be between 0 and %.0f", e.Weight, MaxTotalWeight)
}

func isFinite(w float64) bool {
	return !math.IsNaN(w) && !math.IsInf(w, 0)
}

func finiteOrZero(w float64) float64 {
	if isFinite(w) {
		return w
	}
	return 0
}
