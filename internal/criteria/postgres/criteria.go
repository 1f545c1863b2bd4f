package postgres

import (
	"context"
	"errors"

	criteriaDatamodel "github.com/frahmantamala/evaluation-criteria/internal/core/datamodel/criteria"
	"github.com/frahmantamala/evaluation-criteria/internal/criteria"
	"gorm.io/gorm"
)

type CriteriaRepository struct {
	db *gorm.DB
}

func NewCriteriaRepository(db *gorm.DB) criteria.RepositoryAPI {
	return &CriteriaRepository{db: db}
}

func (r *CriteriaRepository) GetByID(ctx context.Context, id int64) (*criteriaDatamodel.Criteria, error) {
	var cr criteriaDatamodel.Criteria
	err := r.db.WithContext(ctx).Where("id = ?", id).First(&cr).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return &cr, nil
}

func (r *CriteriaRepository) ListByCategory(ctx context.Context, categoryID int64, includeInactive bool) ([]*criteriaDatamodel.Criteria, error) {
	var rows []*criteriaDatamodel.Criteria
	query := r.db.WithContext(ctx).Where("category_id = ?", categoryID)
	if !includeInactive {
		query = query.Where("is_active = ?", true)
	}
	err := query.Order("id ASC").Find(&rows).Error
	return rows, err
}

func (r *CriteriaRepository) Create(ctx context.Context, cr *criteriaDatamodel.Criteria) error {
	return r.db.WithContext(ctx).Create(cr).Error
}

func (r *CriteriaRepository) Update(ctx context.Context, cr *criteriaDatamodel.Criteria) error {
	return r.db.WithContext(ctx).Save(cr).Error
}
