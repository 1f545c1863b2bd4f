package criteria

import (
	"github.com/frahmantamala/evaluation-criteria/internal/core/common/validation"
)

type CreateCriteriaDTO struct {
	CategoryID      int64  `json:"category_id"`
	Name            string `json:"name"`
	BaseDescription string `json:"base_description"`
}

func (dto CreateCriteriaDTO) Validate() error {
	v := validation.NewValidator()
	v.Field("category_id", dto.CategoryID).Required()
	v.Field("name", dto.Name).Required().MaxLength(100)
	v.Field("base_description", dto.BaseDescription).MaxLength(2000)
	if err := v.Validate(); err != nil {
		return err
	}
	return nil
}

type UpdateCriteriaDTO struct {
	Name            *string `json:"name,omitempty"`
	BaseDescription *string `json:"base_description,omitempty"`
}

func (dto UpdateCriteriaDTO) Validate() error {
	v := validation.NewValidator()
	if dto.Name != nil {
		v.Field("name", dto.Name).Required().MaxLength(100)
	}
	v.Field("base_description", dto.BaseDescription).MaxLength(2000)
	if err := v.Validate(); err != nil {
		return err
	}
	return nil
}

type CriteriaListResponse struct {
	CategoryID int64       `json:"category_id"`
	Criteria   []*Criteria `json:"criteria"`
}
