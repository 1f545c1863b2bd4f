package category

import (
	"time"

	errors "github.com/frahmantamala/evaluation-criteria/internal"
	"github.com/frahmantamala/evaluation-criteria/internal/core/common/validation"
)

type CategoryResponse struct {
	ID          int64     `json:"id"`
	Name        string    `json:"name"`
	Description string    `json:"description"`
	Weight      float64   `json:"weight"`
	IsActive    bool      `json:"is_active"`
	UpdatedAt   time.Time `json:"updated_at"`
}

type CategoriesResponse struct {
	Categories []CategoryResponse `json:"categories"`
}

type CreateCategoryDTO struct {
	Name        string  `json:"name"`
	Description string  `json:"description"`
	Weight      float64 `json:"weight"`
}

func (dto CreateCategoryDTO) Validate() error {
	v := validation.NewValidator()
	v.Field("name", dto.Name).Required().MaxLength(100)
	v.Field("description", dto.Description).MaxLength(500)
	v.Field("weight", dto.Weight).
		MinFloat(0, errors.ErrCodeInvalidWeight).
		MaxFloat(MaxTotalWeight, errors.ErrCodeInvalidWeight)
	if err := v.Validate(); err != nil {
		return err
	}
	return nil
}

// UpdateCategoryDTO carries optional fields; nil means "leave unchanged".
type UpdateCategoryDTO struct {
	Name        *string  `json:"name,omitempty"`
	Description *string  `json:"description,omitempty"`
	Weight      *float64 `json:"weight,omitempty"`
}

func (dto UpdateCategoryDTO) Validate() error {
	v := validation.NewValidator()
	if dto.Name != nil {
		v.Field("name", dto.Name).Required().MaxLength(100)
	}
	v.Field("description", dto.Description).MaxLength(500)
	v.Field("weight", dto.Weight).
		MinFloat(0, errors.ErrCodeInvalidWeight).
		MaxFloat(MaxTotalWeight, errors.ErrCodeInvalidWeight)
	if err := v.Validate(); err != nil {
		return err
	}
	return nil
}

type RebalanceWeightsDTO struct {
	Weights []WeightPair `json:"weights"`
}

type WeightSummary struct {
	ActiveCount int64   `json:"active_count" db:"active_count"`
	ActiveTotal float64 `json:"active_total" db:"active_total"`
	Remaining   float64 `json:"remaining"`
	Balanced    bool    `json:"balanced"`
}
