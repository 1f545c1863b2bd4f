package category

import (
	"errors"
	"fmt"
)

var ErrUnauthorized = errors.New("administrator capability required")

type WeightExceededError struct {
	CurrentTotal  float64
	ProposedTotal float64
}

func (e *WeightExceededError) Error() string {
	return fmt.Sprintf("total weight would exceed 100%%: current total %.2f, proposed total %.2f", e.CurrentTotal, e.ProposedTotal)
}

type WeightValidationError struct {
	Total      float64
	Delta      float64
	Violations []WeightViolation
}

func (e *WeightValidationError) Error() string {
	return fmt.Sprintf("category weights must sum to 100%%: total %.2f, delta %.2f", e.Total, e.Delta)
}

type CategoryNotFoundError struct {
	ID int64
}

func (e *CategoryNotFoundError) Error() string {
	return fmt.Sprintf("category %d not found", e.ID)
}

// InactiveCategoryError rejects a rebalance that lists a deactivated category.
type InactiveCategoryError struct {
	ID int64
}

func (e *InactiveCategoryError) Error() string {
	return fmt.Sprintf("category %d is inactive; reactivate it before assigning a weight", e.ID)
}

type HasDependentCriteriaError struct {
	CategoryID int64
	Count      int64
}

func (e *HasDependentCriteriaError) Error() string {
	return fmt.Sprintf("category %d has %d dependent criteria; use cascade deactivation instead", e.CategoryID, e.Count)
}

// TransactionError reports a persistence failure inside a transaction that was
// rolled back. The original error stays reachable through Unwrap.
type TransactionError struct {
	Op  string
	Err error
}

func (e *TransactionError) Error() string {
	return fmt.Sprintf("%s: transaction rolled back: %v", e.Op, e.Err)
}

func (e *TransactionError) Unwrap() error {
	return e.Err
}

// IsNotFound reports whether err is a CategoryNotFoundError.
func IsNotFound(err error) bool {
	var nf *CategoryNotFoundError
	return errors.As(err, &nf)
}
