package postgres

import (
	"context"
	"errors"

	"github.com/frahmantamala/evaluation-criteria/internal/category"
	categoryDatamodel "github.com/frahmantamala/evaluation-criteria/internal/core/datamodel/category"
	criteriaDatamodel "github.com/frahmantamala/evaluation-criteria/internal/core/datamodel/criteria"
	"gorm.io/gorm"
)

type CategoryRepository struct {
	db *gorm.DB
}

func NewCategoryRepository(db *gorm.DB) category.RepositoryAPI {
	return &CategoryRepository{db: db}
}

func (r *CategoryRepository) GetAll(ctx context.Context) ([]*categoryDatamodel.Category, error) {
	var categories []*categoryDatamodel.Category
	err := r.db.WithContext(ctx).Order("name ASC").Find(&categories).Error
	return categories, err
}

func (r *CategoryRepository) GetActive(ctx context.Context) ([]*categoryDatamodel.Category, error) {
	var categories []*categoryDatamodel.Category
	err := r.db.WithContext(ctx).Where("is_active = ?", true).Order("name ASC").Find(&categories).Error
	return categories, err
}

func (r *CategoryRepository) GetByID(ctx context.Context, id int64) (*categoryDatamodel.Category, error) {
	var cat categoryDatamodel.Category
	err := r.db.WithContext(ctx).Where("id = ?", id).First(&cat).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return &cat, nil
}

func (r *CategoryRepository) SumActiveWeights(ctx context.Context, excludeID int64) (float64, error) {
	var total float64
	query := r.db.WithContext(ctx).
		Model(&categoryDatamodel.Category{}).
		Select("COALESCE(SUM(weight), 0)").
		Where("is_active = ?", true)
	if excludeID != 0 {
		query = query.Where("id <> ?", excludeID)
	}
	if err := query.Scan(&total).Error; err != nil {
		return 0, err
	}
	return category.RoundWeight(total), nil
}

func (r *CategoryRepository) Create(ctx context.Context, cat *categoryDatamodel.Category) error {
	return r.db.WithContext(ctx).Create(cat).Error
}

func (r *CategoryRepository) Update(ctx context.Context, cat *categoryDatamodel.Category) error {
	return r.db.WithContext(ctx).Save(cat).Error
}

func (r *CategoryRepository) Delete(ctx context.Context, id int64) error {
	return r.db.WithContext(ctx).Delete(&categoryDatamodel.Category{}, id).Error
}

func (r *CategoryRepository) GetCriteria(ctx context.Context, categoryID int64) ([]*criteriaDatamodel.Criteria, error) {
	var criteria []*criteriaDatamodel.Criteria
	err := r.db.WithContext(ctx).Where("category_id = ?", categoryID).Order("id ASC").Find(&criteria).Error
	return criteria, err
}

func (r *CategoryRepository) UpdateCriteria(ctx context.Context, cr *criteriaDatamodel.Criteria) error {
	return r.db.WithContext(ctx).Save(cr).Error
}

func (r *CategoryRepository) CountCriteria(ctx context.Context, categoryID int64) (int64, error) {
	var count int64
	err := r.db.WithContext(ctx).
		Model(&criteriaDatamodel.Criteria{}).
		Where("category_id = ?", categoryID).
		Count(&count).Error
	return count, err
}

func (r *CategoryRepository) WithTransaction(ctx context.Context, fn func(repo category.RepositoryAPI) error) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		return fn(&CategoryRepository{db: tx})
	})
}
