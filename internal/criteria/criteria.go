package criteria

import (
	"time"

	criteriaDatamodel "github.com/frahmantamala/evaluation-criteria/internal/core/datamodel/criteria"
)

type Criteria struct {
	ID              int64     `json:"id"`
	CategoryID      int64     `json:"category_id"`
	Name            string    `json:"name"`
	BaseDescription string    `json:"base_description"`
	IsActive        bool      `json:"is_active"`
	CreatedAt       time.Time `json:"created_at"`
	UpdatedAt       time.Time `json:"updated_at"`
}

func NewCriteria(categoryID int64, name, baseDescription string) *Criteria {
	now := time.Now()
	return &Criteria{
		CategoryID:      categoryID,
		Name:            name,
		BaseDescription: baseDescription,
		IsActive:        true,
		CreatedAt:       now,
		UpdatedAt:       now,
	}
}

func (c *Criteria) Activate() {
	c.IsActive = true
	c.UpdatedAt = time.Now()
}

func (c *Criteria) Deactivate() {
	c.IsActive = false
	c.UpdatedAt = time.Now()
}

func ToDataModel(c *Criteria) *criteriaDatamodel.Criteria {
	return &criteriaDatamodel.Criteria{
		ID:              c.ID,
		CategoryID:      c.CategoryID,
		Name:            c.Name,
		BaseDescription: c.BaseDescription,
		IsActive:        c.IsActive,
		CreatedAt:       c.CreatedAt,
		UpdatedAt:       c.UpdatedAt,
	}
}

func FromDataModel(c *criteriaDatamodel.Criteria) *Criteria {
	return &Criteria{
		ID:              c.ID,
		CategoryID:      c.CategoryID,
		Name:            c.Name,
		BaseDescription: c.BaseDescription,
		IsActive:        c.IsActive,
		CreatedAt:       c.CreatedAt,
		UpdatedAt:       c.UpdatedAt,
	}
}
