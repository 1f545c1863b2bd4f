package criteria

import (
	"context"
	stderrors "errors"
	"net/http"

	errors "github.com/frahmantamala/evaluation-criteria/internal"
	"github.com/frahmantamala/evaluation-criteria/internal/transport"
)

type ServiceAPI interface {
	CreateCriteria(ctx context.Context, dto CreateCriteriaDTO, userPermissions []string) (*Criteria, error)
	ListByCategory(ctx context.Context, categoryID int64, includeInactive bool, userPermissions []string) ([]*Criteria, error)
	UpdateCriteria(ctx context.Context, id int64, dto UpdateCriteriaDTO, userPermissions []string) (*Criteria, error)
	DeactivateCriteria(ctx context.Context, id int64, userPermissions []string) (*Criteria, error)
	ActivateCriteria(ctx context.Context, id int64, userPermissions []string) (*Criteria, error)
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

func (h *Handler) ListCriteria(w http.ResponseWriter, r *http.Request) {
	categoryID, err := h.IDParam(r, "id")
	if err != nil {
		h.HandleServiceError(w, err)
		return
	}
	includeInactive := r.URL.Query().Get("include_inactive") == "true"

	list, err := h.Service.ListByCategory(r.Context(), categoryID, includeInactive, errors.PermissionsFromContext(r.Context()))
	if err != nil {
		h.HandleServiceError(w, ToAppError(err))
		return
	}

	h.WriteJSON(w, http.StatusOK, CriteriaListResponse{CategoryID: categoryID, Criteria: list})
}

func (h *Handler) CreateCriteria(w http.ResponseWriter, r *http.Request) {
	categoryID, err := h.IDParam(r, "id")
	if err != nil {
		h.HandleServiceError(w, err)
		return
	}

	var dto CreateCriteriaDTO
	if err := h.DecodeJSON(r, &dto); err != nil {
		h.HandleServiceError(w, err)
		return
	}
	dto.CategoryID = categoryID

	c, err := h.Service.CreateCriteria(r.Context(), dto, errors.PermissionsFromContext(r.Context()))
	if err != nil {
		h.HandleServiceError(w, ToAppError(err))
		return
	}

	h.WriteJSON(w, http.StatusCreated, c)
}

func (h *Handler) UpdateCriteria(w http.ResponseWriter, r *http.Request) {
	id, err := h.IDParam(r, "id")
	if err != nil {
		h.HandleServiceError(w, err)
		return
	}

	var dto UpdateCriteriaDTO
	if err := h.DecodeJSON(r, &dto); err != nil {
		h.HandleServiceError(w, err)
		return
	}

	c, err := h.Service.UpdateCriteria(r.Context(), id, dto, errors.PermissionsFromContext(r.Context()))
	if err != nil {
		h.HandleServiceError(w, ToAppError(err))
		return
	}

	h.WriteJSON(w, http.StatusOK, c)
}

func (h *Handler) DeactivateCriteria(w http.ResponseWriter, r *http.Request) {
	h.changeState(w, r, h.Service.DeactivateCriteria)
}

func (h *Handler) ActivateCriteria(w http.ResponseWriter, r *http.Request) {
	h.changeState(w, r, h.Service.ActivateCriteria)
}

func (h *Handler) changeState(w http.ResponseWriter, r *http.Request, fn func(context.Context, int64, []string) (*Criteria, error)) {
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

	h.WriteJSON(w, http.StatusOK, c)
}

func ToAppError(err error) error {
	switch {
	case err == nil:
		return nil
	case stderrors.Is(err, ErrUnauthorized):
		return errors.ErrUnauthorizedAccess
	case stderrors.Is(err, ErrCriteriaNotFound):
		return errors.NewNotFoundError(err.Error(), errors.ErrCodeCriteriaNotFound)
	case stderrors.Is(err, ErrCategoryNotFound):
		return errors.NewNotFoundError(err.Error(), errors.ErrCodeCategoryNotFound)
	case stderrors.Is(err, ErrCategoryInactive):
		return errors.NewConflictError("the parent category is inactive; reactivate it first", errors.ErrCodeCategoryInactive)
	}

	if _, ok := errors.IsAppError(err); ok {
		return err
	}
	return errors.NewInternalError("internal server error", err)
}
