package category

import (
	"context"
	stderrors "errors"
	"fmt"
	"net/http"

	errors "github.com/frahmantamala/evaluation-criteria/internal"
	"github.com/frahmantamala/evaluation-criteria/internal/transport"
)

type ServiceAPI interface {
	GetActiveCategories(ctx context.Context) ([]CategoryResponse, error)
	GetAllCategories(ctx context.Context, userPermissions []string) ([]*Category, error)
	GetCategory(ctx context.Context, id int64, userPermissions []string) (*Category, error)
	WeightSummary(ctx context.Context) (*WeightSummary, error)
	ValidateWeights(pairs []WeightPair) ValidationResult
	RebalanceWeights(ctx context.Context, pairs []WeightPair, userPermissions []string) error
	CreateCategory(ctx context.Context, dto CreateCategoryDTO, userPermissions []string) (*Category, error)
	UpdateCategory(ctx context.Context, id int64, dto UpdateCategoryDTO, userPermissions []string) (*Category, error)
	DeactivateCategory(ctx context.Context, id int64, userPermissions []string) (*Category, error)
	CascadeDeactivate(ctx context.Context, id int64, userPermissions []string) error
	ReactivateCategory(ctx context.Context, id int64, userPermissions []string) (*Category, error)
	DeleteCategory(ctx context.Context, id int64, userPermissions []string) error
}

type Handler struct {
	*transport.BaseHandler
	Service ServiceAPI
}

func NewHandler(baseHandler *transport.BaseHandler, service ServiceAPI) *Handler {
	return &Handler{
		BaseHandler: baseHandler,
		Service:     service,
	}
}

func (h *Handler) GetCategories(w http.ResponseWriter, r *http.Request) {
	categories, err := h.Service.GetActiveCategories(r.Context())
	if err != nil {
		h.Logger.Error("GetCategories: failed to get categories", "error", err)
		h.WriteError(w, http.StatusInternalServerError, "failed to get categories")
		return
	}

	h.WriteJSON(w, http.StatusOK, CategoriesResponse{
		Categories: categories,
	})
}

func (h *Handler) GetAllCategories(w http.ResponseWriter, r *http.Request) {
	categories, err := h.Service.GetAllCategories(r.Context(), errors.PermissionsFromContext(r.Context()))
	if err != nil {
		h.HandleServiceError(w, ToAppError(err))
		return
	}

	h.WriteJSON(w, http.StatusOK, CategoriesResponse{
		Categories: ToResponses(categories),
	})
}

func (h *Handler) GetCategory(w http.ResponseWriter, r *http.Request) {
	id, err := h.IDParam(r, "id")
	if err != nil {
		h.HandleServiceError(w, err)
		return
	}

	c, err := h.Service.GetCategory(r.Context(), id, errors.PermissionsFromContext(r.Context()))
	if err != nil {
		h.HandleServiceError(w, ToAppError(err))
		return
	}

	h.WriteJSON(w, http.StatusOK, c.ToResponse())
}

func (h *Handler) GetWeightSummary(w http.ResponseWriter, r *http.Request) {
	summary, err := h.Service.WeightSummary(r.Context())
	if err != nil {
		h.Logger.Error("GetWeightSummary: failed to compute summary", "error", err)
		h.WriteError(w, http.StatusInternalServerError, "failed to compute weight summary")
		return
	}

	h.WriteJSON(w, http.StatusOK, summary)
}

func (h *Handler) CreateCategory(w http.ResponseWriter, r *http.Request) {
	var dto CreateCategoryDTO
	if err := h.DecodeJSON(r, &dto); err != nil {
		h.HandleServiceError(w, err)
		return
	}

	c, err := h.Service.CreateCategory(r.Context(), dto, errors.PermissionsFromContext(r.Context()))
	if err != nil {
		h.HandleServiceError(w, ToAppError(err))
		return
	}

	h.WriteJSON(w, http.StatusCreated, c.ToResponse())
}

func (h *Handler) UpdateCategory(w http.ResponseWriter, r *http.Request) {
	id, err := h.IDParam(r, "id")
	if err != nil {
		h.HandleServiceError(w, err)
		return
	}

	var dto UpdateCategoryDTO
	if err := h.DecodeJSON(r, &dto); err != nil {
		h.HandleServiceError(w, err)
		return
	}

	c, err := h.Service.UpdateCategory(r.Context(), id, dto, errors.PermissionsFromContext(r.Context()))
	if err != nil {
		h.HandleServiceError(w, ToAppError(err))
		return
	}

	h.WriteJSON(w, http.StatusOK, c.ToResponse())
}

// ValidateWeights is a dry run of a rebalance and always answers 200.
func (h *Handler) ValidateWeights(w http.ResponseWriter, r *http.Request) {
	var dto RebalanceWeightsDTO
	if err := h.DecodeJSON(r, &dto); err != nil {
		h.HandleServiceError(w, err)
		return
	}

	h.WriteJSON(w, http.StatusOK, h.Service.ValidateWeights(dto.Weights))
}

func (h *Handler) RebalanceWeights(w http.ResponseWriter, r *http.Request) {
	var dto RebalanceWeightsDTO
	if err := h.DecodeJSON(r, &dto); err != nil {
		h.HandleServiceError(w, err)
		return
	}

	if err := h.Service.RebalanceWeights(r.Context(), dto.Weights, errors.PermissionsFromContext(r.Context())); err != nil {
		h.HandleServiceError(w, ToAppError(err))
		return
	}

	h.WriteJSON(w, http.StatusOK, map[string]interface{}{
		"message": "category weights rebalanced",
		"weights": dto.Weights,
	})
}

func (h *Handler) DeactivateCategory(w http.ResponseWriter, r *http.Request) {
	h.changeState(w, r, h.Service.DeactivateCategory)
}

func (h *Handler) ReactivateCategory(w http.ResponseWriter, r *http.Request) {
	h.changeState(w, r, h.Service.ReactivateCategory)
}

func (h *Handler) changeState(w http.ResponseWriter, r *http.Request, fn func(context.Context, int64, []string) (*Category, error)) {
	id, err := h.IDParam(r, "id")
	if err != nil {
		h.HandleServiceError(w, err)
		return
	}

	c, err := fn(r.Context(), id, errors.PermissionsFromContext(r.Context()))
	if err != nil {
		h.HandleServiceError(w, ToAppError(err))
		return
	}

	h.WriteJSON(w, http.StatusOK, c.ToResponse())
}

func (h *Handler) CascadeDeactivate(w http.ResponseWriter, r *http.Request) {
	id, err := h.IDParam(r, "id")
	if err != nil {
		h.HandleServiceError(w, err)
		return
	}

	if err := h.Service.CascadeDeactivate(r.Context(), id, errors.PermissionsFromContext(r.Context())); err != nil {
		h.HandleServiceError(w, ToAppError(err))
		return
	}

	h.WriteJSON(w, http.StatusOK, map[string]interface{}{
		"message":     "category and its criteria deactivated",
		"category_id": id,
	})
}

func (h *Handler) DeleteCategory(w http.ResponseWriter, r *http.Request) {
	id, err := h.IDParam(r, "id")
	if err != nil {
		h.HandleServiceError(w, err)
		return
	}

	if err := h.Service.DeleteCategory(r.Context(), id, errors.PermissionsFromContext(r.Context())); err != nil {
		h.HandleServiceError(w, ToAppError(err))
		return
	}

	w.WriteHeader(http.StatusNoContent)
}

// ToAppError maps category errors onto the HTTP error envelope.
func ToAppError(err error) error {
	var (
		exceeded   *WeightExceededError
		invalid    *WeightValidationError
		outOfRange *WeightRangeError
		notFound   *CategoryNotFoundError
		inactive   *InactiveCategoryError
		dependent  *HasDependentCriteriaError
		txErr      *TransactionError
	)

	switch {
	case err == nil:
		return nil
	case stderrors.Is(err, ErrUnauthorized):
		return errors.ErrUnauthorizedAccess
	case stderrors.As(err, &exceeded):
		return errors.NewUnprocessableError(exceeded.Error(), errors.ErrCodeWeightExceeded).
			WithDetails(map[string]float64{
				"current_total":  exceeded.CurrentTotal,
				"proposed_total": exceeded.ProposedTotal,
			})
	case stderrors.As(err, &invalid):
		return errors.NewUnprocessableError(invalid.Error(), errors.ErrCodeWeightValidationFailed).
			WithDetails(ValidationResult{Total: invalid.Total, Delta: invalid.Delta, Violations: invalid.Violations})
	case stderrors.As(err, &outOfRange):
		return errors.NewValidationFieldError("weight", outOfRange.Error(), errors.ErrCodeInvalidWeight)
	case stderrors.As(err, &notFound):
		return errors.NewNotFoundError(notFound.Error(), errors.ErrCodeCategoryNotFound)
	case stderrors.As(err, &inactive):
		return errors.NewUnprocessableError(inactive.Error(), errors.ErrCodeCategoryInactive).
			WithDetails(map[string]int64{"category_id": inactive.ID})
	case stderrors.As(err, &dependent):
		return errors.NewConflictError(dependent.Error(), errors.ErrCodeHasDependentCriteria).
			WithDetails(map[string]int64{"criteria_count": dependent.Count})
	case stderrors.As(err, &txErr):
		appErr := errors.NewInternalError(fmt.Sprintf("%s failed, no changes were applied", txErr.Op), txErr)
		appErr.Code = errors.ErrCodeTransactionFailed
		return appErr
	}

	if _, ok := errors.IsAppError(err); ok {
		return err
	}
	return errors.NewInternalError("internal server error", err)
}
