package criteria

import (
	"context"
	"log/slog"

	categoryDatamodel "github.com/frahmantamala/evaluation-criteria/internal/core/datamodel/category"
	criteriaDatamodel "github.com/frahmantamala/evaluation-criteria/internal/core/datamodel/criteria"
)

type RepositoryAPI interface {
	GetByID(ctx context.Context, id int64) (*criteriaDatamodel.Criteria, error)
	ListByCategory(ctx context.Context, categoryID int64, includeInactive bool) ([]*criteriaDatamodel.Criteria, error)
	Create(ctx context.Context, criteria *criteriaDatamodel.Criteria) error
	Update(ctx context.Context, criteria *criteriaDatamodel.Criteria) error
}

// CategoryReader is the slice of the category repository this service needs.
type CategoryReader interface {
	GetByID(ctx context.Context, id int64) (*categoryDatamodel.Category, error)
}

type Authorizer interface {
	IsAdmin(userPermissions []string) bool
}

type Service struct {
	repo       RepositoryAPI
	categories CategoryReader
	authorizer Authorizer
	logger     *slog.Logger
}

func NewService(repo RepositoryAPI, categories CategoryReader, authorizer Authorizer, logger *slog.Logger) *Service {
	return &Service{
		repo:       repo,
		categories: categories,
		authorizer: authorizer,
		logger:     logger,
	}
}

func (s *Service) CreateCriteria(ctx context.Context, dto CreateCriteriaDTO, userPermissions []string) (*Criteria, error) {
	if err := s.requireAdmin("create criteria", userPermissions); err != nil {
		return nil, err
	}
	if err := dto.Validate(); err != nil {
		s.logger.Warn("criteria validation failed", "error", err)
		return nil, err
	}
	if err := s.requireActiveCategory(ctx, dto.CategoryID); err != nil {
		return nil, err
	}

	c := NewCriteria(dto.CategoryID, dto.Name, dto.BaseDescription)
	dataCriteria := ToDataModel(c)
	if err := s.repo.Create(ctx, dataCriteria); err != nil {
		s.logger.Error("failed to create criteria", "error", err, "category_id", dto.CategoryID)
		return nil, err
	}

	s.logger.Info("criteria created", "criteria_id", dataCriteria.ID, "category_id", dto.CategoryID)
	return FromDataModel(dataCriteria), nil
}

// ListByCategory returns criteria ordered by id. Inactive rows are only
// included when asked for by an administrator, and an inactive category looks
// missing to everyone else.
func (s *Service) ListByCategory(ctx context.Context, categoryID int64, includeInactive bool, userPermissions []string) ([]*Criteria, error) {
	if includeInactive && !s.authorizer.IsAdmin(userPermissions) {
		includeInactive = false
	}

	cat, err := s.categories.GetByID(ctx, categoryID)
	if err != nil {
		s.logger.Error("failed to get category", "error", err, "category_id", categoryID)
		return nil, err
	}
	if cat == nil {
		return nil, ErrCategoryNotFound
	}
	if !cat.IsActive && !s.authorizer.IsAdmin(userPermissions) {
		s.logger.Debug("criteria listing hidden: category inactive", "category_id", categoryID)
		return nil, ErrCategoryNotFound
	}

	rows, err := s.repo.ListByCategory(ctx, categoryID, includeInactive)
	if err != nil {
		s.logger.Error("failed to list criteria", "error", err, "category_id", categoryID)
		return nil, err
	}

	result := make([]*Criteria, 0, len(rows))
	for _, row := range rows {
		result = append(result, FromDataModel(row))
	}
	return result, nil
}

func (s *Service) UpdateCriteria(ctx context.Context, id int64, dto UpdateCriteriaDTO, userPermissions []string) (*Criteria, error) {
	if err := s.requireAdmin("update criteria", userPermissions); err != nil {
		return nil, err
	}
	if err := dto.Validate(); err != nil {
		s.logger.Warn("criteria validation failed", "criteria_id", id, "error", err)
		return nil, err
	}

	c, err := s.load(ctx, id)
	if err != nil {
		return nil, err
	}
	if dto.Name != nil {
		c.Name = *dto.Name
	}
	if dto.BaseDescription != nil {
		c.BaseDescription = *dto.BaseDescription
	}

	if err := s.repo.Update(ctx, ToDataModel(c)); err != nil {
		s.logger.Error("failed to update criteria", "error", err, "criteria_id", id)
		return nil, err
	}
	return c, nil
}

func (s *Service) DeactivateCriteria(ctx context.Context, id int64, userPermissions []string) (*Criteria, error) {
	if err := s.requireAdmin("deactivate criteria", userPermissions); err != nil {
		return nil, err
	}

	c, err := s.load(ctx, id)
	if err != nil {
		return nil, err
	}
	c.Deactivate()

	if err := s.repo.Update(ctx, ToDataModel(c)); err != nil {
		s.logger.Error("failed to deactivate criteria", "error", err, "criteria_id", id)
		return nil, err
	}

	s.logger.Info("criteria deactivated", "criteria_id", id, "category_id", c.CategoryID)
	return c, nil
}

// ActivateCriteria is refused while the parent category is inactive.
func (s *Service) ActivateCriteria(ctx context.Context, id int64, userPermissions []string) (*Criteria, error) {
	if err := s.requireAdmin("activate criteria", userPermissions); err != nil {
		return nil, err
	}

	c, err := s.load(ctx, id)
	if err != nil {
		return nil, err
	}
	if err := s.requireActiveCategory(ctx, c.CategoryID); err != nil {
		return nil, err
	}
	c.Activate()

	if err := s.repo.Update(ctx, ToDataModel(c)); err != nil {
		s.logger.Error("failed to activate criteria", "error", err, "criteria_id", id)
		return nil, err
	}

	s.logger.Info("criteria activated", "criteria_id", id, "category_id", c.CategoryID)
	return c, nil
}

func (s *Service) requireAdmin(op string, userPermissions []string) error {
	if s.authorizer.IsAdmin(userPermissions) {
		return nil
	}
	s.logger.Warn("criteria operation denied: administrator required", "operation", op)
	return ErrUnauthorized
}

func (s *Service) requireActiveCategory(ctx context.Context, categoryID int64) error {
	cat, err := s.categories.GetByID(ctx, categoryID)
	if err != nil {
		s.logger.Error("failed to get category", "error", err, "category_id", categoryID)
		return err
	}
	if cat == nil {
		return ErrCategoryNotFound
	}
	if !cat.IsActive {
		s.logger.Warn("criteria change rejected: category inactive", "category_id", categoryID)
		return ErrCategoryInactive
	}
	return nil
}

func (s *Service) load(ctx context.Context, id int64) (*Criteria, error) {
	row, err := s.repo.GetByID(ctx, id)
	if err != nil {
		s.logger.Error("failed to get criteria", "error", err, "criteria_id", id)
		return nil, err
	}
	if row == nil {
		return nil, ErrCriteriaNotFound
	}
	return FromDataModel(row), nil
}
