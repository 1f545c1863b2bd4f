package category

import (
	"context"
	"errors"
	"log/slog"
	"math"

	categoryDatamodel "github.com/frahmantamala/evaluation-criteria/internal/core/datamodel/category"
	criteriaDatamodel "github.com/frahmantamala/evaluation-criteria/internal/core/datamodel/criteria"
	"github.com/frahmantamala/evaluation-criteria/internal/core/events"
)

type RepositoryAPI interface {
	GetAll(ctx context.Context) ([]*categoryDatamodel.Category, error)
	GetActive(ctx context.Context) ([]*categoryDatamodel.Category, error)
	GetByID(ctx context.Context, id int64) (*categoryDatamodel.Category, error)
	// SumActiveWeights totals active categories, leaving out excludeID (0 excludes none).
	SumActiveWeights(ctx context.Context, excludeID int64) (float64, error)
	Create(ctx context.Context, category *categoryDatamodel.Category) error
	Update(ctx context.Context, category *categoryDatamodel.Category) error
	Delete(ctx context.Context, id int64) error

	GetCriteria(ctx context.Context, categoryID int64) ([]*criteriaDatamodel.Criteria, error)
	UpdateCriteria(ctx context.Context, criteria *criteriaDatamodel.Criteria) error
	CountCriteria(ctx context.Context, categoryID int64) (int64, error)

	// WithTransaction runs fn against a repository bound to one transaction.
	// The transaction commits when fn returns nil and rolls back otherwise.
	WithTransaction(ctx context.Context, fn func(repo RepositoryAPI) error) error
}

type SummaryReader interface {
	WeightSummary(ctx context.Context) (*WeightSummary, error)
}

type Authorizer interface {
	IsAdmin(userPermissions []string) bool
}

type EventPublisher interface {
	Publish(ctx context.Context, event events.Event) error
}

type Service struct {
	repo       RepositoryAPI
	summary    SummaryReader
	authorizer Authorizer
	publisher  EventPublisher
	logger     *slog.Logger
}

// NewService wires the category service. summary and publisher may be nil.
func NewService(repo RepositoryAPI, summary SummaryReader, authorizer Authorizer, publisher EventPublisher, logger *slog.Logger) *Service {
	return &Service{
		repo:       repo,
		summary:    summary,
		authorizer: authorizer,
		publisher:  publisher,
		logger:     logger,
	}
}

func (s *Service) GetActiveCategories(ctx context.Context) ([]CategoryResponse, error) {
	dataCategories, err := s.repo.GetActive(ctx)
	if err != nil {
		s.logger.Error("failed to get active categories from repository", "error", err)
		return nil, err
	}

	responses := make([]CategoryResponse, 0, len(dataCategories))
	for _, dataCategory := range dataCategories {
		domainCategory := FromDataModel(dataCategory)
		if domainCategory.IsActiveCategory() {
			responses = append(responses, domainCategory.ToResponse())
		}
	}

	s.logger.Debug("retrieved active categories", "count", len(responses))
	return responses, nil
}

func (s *Service) GetAllCategories(ctx context.Context, userPermissions []string) ([]*Category, error) {
	if err := s.requireAdmin("list all categories", userPermissions); err != nil {
		return nil, err
	}

	dataCategories, err := s.repo.GetAll(ctx)
	if err != nil {
		s.logger.Error("failed to get categories from repository", "error", err)
		return nil, err
	}

	categories := make([]*Category, 0, len(dataCategories))
	for _, dataCategory := range dataCategories {
		categories = append(categories, FromDataModel(dataCategory))
	}
	return categories, nil
}

// GetCategory hides inactive categories from non-administrators.
func (s *Service) GetCategory(ctx context.Context, id int64, userPermissions []string) (*Category, error) {
	c, err := s.load(ctx, s.repo, id)
	if err != nil {
		return nil, err
	}
	if !c.IsActiveCategory() && !s.authorizer.IsAdmin(userPermissions) {
		return nil, &CategoryNotFoundError{ID: id}
	}
	return c, nil
}

func (s *Service) WeightSummary(ctx context.Context) (*WeightSummary, error) {
	var (
		summary *WeightSummary
		err     error
	)
	if s.summary != nil {
		summary, err = s.summary.WeightSummary(ctx)
	} else {
		summary, err = s.summaryFromRepository(ctx)
	}
	if err != nil {
		s.logger.Error("failed to compute weight summary", "error", err)
		return nil, err
	}

	summary.ActiveTotal = RoundWeight(summary.ActiveTotal)
	summary.Remaining = RoundWeight(MaxTotalWeight - summary.ActiveTotal)
	summary.Balanced = math.Abs(summary.Remaining) <= WeightTolerance
	return summary, nil
}

func (s *Service) summaryFromRepository(ctx context.Context) (*WeightSummary, error) {
	active, err := s.repo.GetActive(ctx)
	if err != nil {
		return nil, err
	}
	weights := make([]float64, 0, len(active))
	for _, c := range active {
		weights = append(weights, c.Weight)
	}
	return &WeightSummary{ActiveCount: int64(len(active)), ActiveTotal: SumWeights(weights...)}, nil
}

// ValidateWeights is the side-effect free full-set check exposed to callers.
func (s *Service) ValidateWeights(pairs []WeightPair) ValidationResult {
	return ValidateWeights(pairs)
}

// RebalanceWeights replaces the weights of the listed categories in one
// transaction. The set must sum to 100 and name only active categories;
// categories not listed are untouched.
func (s *Service) RebalanceWeights(ctx context.Context, pairs []WeightPair, userPermissions []string) error {
	if err := s.requireAdmin("rebalance weights", userPermissions); err != nil {
		return err
	}

	result := ValidateWeights(pairs)
	if !result.Valid {
		s.logger.Warn("weight rebalance rejected",
			"total", result.Total,
			"delta", result.Delta,
			"violations", len(result.Violations))
		return &WeightValidationError{Total: result.Total, Delta: result.Delta, Violations: result.Violations}
	}

	ids := make([]int64, 0, len(pairs))
	err := s.repo.WithTransaction(ctx, func(tx RepositoryAPI) error {
		for _, pair := range pairs {
			c, err := s.load(ctx, tx, pair.CategoryID)
			if err != nil {
				return err
			}
			if !c.IsActiveCategory() {
				return &InactiveCategoryError{ID: c.ID}
			}
			c.SetWeight(pair.Weight)
			if err := tx.Update(ctx, ToDataModel(c)); err != nil {
				return err
			}
			ids = append(ids, c.ID)
		}
		return nil
	})
	if err != nil {
		return s.transactionFailure("rebalance weights", err)
	}

	s.logger.Info("category weights rebalanced", "categories", ids, "total", result.Total)
	s.publish(ctx, events.NewCategoryEvent(events.EventTypeCategoryWeightsRebalanced, ids, map[string]interface{}{
		"total": result.Total,
	}))
	return nil
}

func (s *Service) CreateCategory(ctx context.Context, dto CreateCategoryDTO, userPermissions []string) (*Category, error) {
	if err := s.requireAdmin("create category", userPermissions); err != nil {
		return nil, err
	}
	if err := dto.Validate(); err != nil {
		s.logger.Warn("category validation failed", "error", err)
		return nil, err
	}

	currentTotal, err := s.repo.SumActiveWeights(ctx, 0)
	if err != nil {
		s.logger.Error("failed to sum active weights", "error", err)
		return nil, err
	}
	if err := CheckIncrement(currentTotal, dto.Weight); err != nil {
		s.logger.Warn("category creation rejected", "name", dto.Name, "current_total", currentTotal, "requested", dto.Weight, "error", err)
		return nil, err
	}

	c := NewCategory(dto.Name, dto.Description, dto.Weight)
	dataCategory := ToDataModel(c)
	if err := s.repo.Create(ctx, dataCategory); err != nil {
		s.logger.Error("failed to create category", "error", err, "name", dto.Name)
		return nil, err
	}
	c = FromDataModel(dataCategory)

	s.logger.Info("category created", "category_id", c.ID, "name", c.Name, "weight", c.Weight)
	s.publish(ctx, events.NewCategoryEvent(events.EventTypeCategoryCreated, []int64{c.ID}, map[string]interface{}{
		"name":   c.Name,
		"weight": c.Weight,
	}))
	return c, nil
}

// UpdateCategory applies the incremental ceiling check when the weight changes.
// The baseline excludes the category's own stored weight.
func (s *Service) UpdateCategory(ctx context.Context, id int64, dto UpdateCategoryDTO, userPermissions []string) (*Category, error) {
	if err := s.requireAdmin("update category", userPermissions); err != nil {
		return nil, err
	}
	if err := dto.Validate(); err != nil {
		s.logger.Warn("category validation failed", "category_id", id, "error", err)
		return nil, err
	}

	c, err := s.load(ctx, s.repo, id)
	if err != nil {
		return nil, err
	}

	if dto.Weight != nil && RoundWeight(*dto.Weight) != c.Weight {
		othersTotal, err := s.repo.SumActiveWeights(ctx, id)
		if err != nil {
			s.logger.Error("failed to sum active weights", "error", err, "category_id", id)
			return nil, err
		}
		if err := CheckIncrement(othersTotal, *dto.Weight); err != nil {
			s.logger.Warn("category weight update rejected",
				"category_id", id,
				"old_weight", c.Weight,
				"new_weight", *dto.Weight,
				"error", err)
			return nil, err
		}
		c.SetWeight(*dto.Weight)
	}
	if dto.Name != nil {
		c.Name = *dto.Name
	}
	if dto.Description != nil {
		c.Description = *dto.Description
	}

	dataCategory := ToDataModel(c)
	if err := s.repo.Update(ctx, dataCategory); err != nil {
		s.logger.Error("failed to update category", "error", err, "category_id", id)
		return nil, err
	}
	c = FromDataModel(dataCategory)

	s.logger.Info("category updated", "category_id", id, "weight", c.Weight)
	s.publish(ctx, events.NewCategoryEvent(events.EventTypeCategoryUpdated, []int64{id}, map[string]interface{}{
		"weight": c.Weight,
	}))
	return c, nil
}

// DeactivateCategory only flips the category; its criteria keep their state.
func (s *Service) DeactivateCategory(ctx context.Context, id int64, userPermissions []string) (*Category, error) {
	return s.setActive(ctx, id, false, userPermissions)
}

// ReactivateCategory does not reactivate criteria that were switched off by a
// cascade deactivation.
func (s *Service) ReactivateCategory(ctx context.Context, id int64, userPermissions []string) (*Category, error) {
	return s.setActive(ctx, id, true, userPermissions)
}

func (s *Service) setActive(ctx context.Context, id int64, active bool, userPermissions []string) (*Category, error) {
	op, eventType := "deactivate category", events.EventTypeCategoryDeactivated
	if active {
		op, eventType = "reactivate category", events.EventTypeCategoryReactivated
	}
	if err := s.requireAdmin(op, userPermissions); err != nil {
		return nil, err
	}

	c, err := s.load(ctx, s.repo, id)
	if err != nil {
		return nil, err
	}
	if active {
		c.Activate()
	} else {
		c.Deactivate()
	}

	if err := s.repo.Update(ctx, ToDataModel(c)); err != nil {
		s.logger.Error("failed to "+op, "error", err, "category_id", id)
		return nil, err
	}

	s.logger.Info("category state changed", "category_id", id, "is_active", active)
	s.publish(ctx, events.NewCategoryEvent(eventType, []int64{id}, nil))
	return c, nil
}

// CascadeDeactivate deactivates the category and every active criteria under it
// in one transaction.
func (s *Service) CascadeDeactivate(ctx context.Context, id int64, userPermissions []string) error {
	if err := s.requireAdmin("cascade deactivate category", userPermissions); err != nil {
		return err
	}

	var deactivated int
	err := s.repo.WithTransaction(ctx, func(tx RepositoryAPI) error {
		c, err := s.load(ctx, tx, id)
		if err != nil {
			return err
		}

		criteria, err := tx.GetCriteria(ctx, id)
		if err != nil {
			return err
		}
		for _, cr := range criteria {
			if !cr.IsActive {
				continue
			}
			cr.IsActive = false
			if err := tx.UpdateCriteria(ctx, cr); err != nil {
				return err
			}
			deactivated++
		}

		c.Deactivate()
		return tx.Update(ctx, ToDataModel(c))
	})
	if err != nil {
		return s.transactionFailure("cascade deactivate category", err)
	}

	s.logger.Info("category cascade deactivated", "category_id", id, "criteria_deactivated", deactivated)
	s.publish(ctx, events.NewCategoryEvent(events.EventTypeCategoryCascadeDeactivated, []int64{id}, map[string]interface{}{
		"criteria_deactivated": deactivated,
	}))
	return nil
}

// DeleteCategory removes the row only when no criteria, active or inactive,
// reference it.
func (s *Service) DeleteCategory(ctx context.Context, id int64, userPermissions []string) error {
	if err := s.requireAdmin("delete category", userPermissions); err != nil {
		return err
	}

	err := s.repo.WithTransaction(ctx, func(tx RepositoryAPI) error {
		if _, err := s.load(ctx, tx, id); err != nil {
			return err
		}

		count, err := tx.CountCriteria(ctx, id)
		if err != nil {
			return err
		}
		if count > 0 {
			return &HasDependentCriteriaError{CategoryID: id, Count: count}
		}
		return tx.Delete(ctx, id)
	})
	if err != nil {
		return s.transactionFailure("delete category", err)
	}

	s.logger.Info("category deleted", "category_id", id)
	s.publish(ctx, events.NewCategoryEvent(events.EventTypeCategoryDeleted, []int64{id}, nil))
	return nil
}

func (s *Service) requireAdmin(op string, userPermissions []string) error {
	if s.authorizer.IsAdmin(userPermissions) {
		return nil
	}
	s.logger.Warn("category operation denied: administrator required", "operation", op, "permissions", userPermissions)
	return ErrUnauthorized
}

func (s *Service) load(ctx context.Context, repo RepositoryAPI, id int64) (*Category, error) {
	dataCategory, err := repo.GetByID(ctx, id)
	if err != nil {
		s.logger.Error("failed to get category", "error", err, "category_id", id)
		return nil, err
	}
	if dataCategory == nil {
		return nil, &CategoryNotFoundError{ID: id}
	}
	return FromDataModel(dataCategory), nil
}

// transactionFailure passes domain rejections through and wraps persistence
// failures so callers can tell a rollback happened.
func (s *Service) transactionFailure(op string, err error) error {
	var (
		notFound  *CategoryNotFoundError
		inactive  *InactiveCategoryError
		dependent *HasDependentCriteriaError
	)
	switch {
	case errors.As(err, &notFound):
		s.logger.Warn(op+" rejected: category not found", "category_id", notFound.ID)
		return err
	case errors.As(err, &inactive):
		s.logger.Warn(op+" rejected: category is inactive", "category_id", inactive.ID)
		return err
	case errors.As(err, &dependent):
		s.logger.Warn(op+" rejected: category has dependent criteria", "category_id", dependent.CategoryID, "count", dependent.Count)
		return err
	}

	s.logger.Error("failed to "+op+", transaction rolled back", "error", err)
	return &TransactionError{Op: op, Err: err}
}

func (s *Service) publish(ctx context.Context, event events.Event) {
	if s.publisher == nil {
		return
	}
	if err := s.publisher.Publish(ctx, event); err != nil {
		s.logger.Warn("failed to publish category event", "event_type", event.EventType(), "error", err)
	}
}
