package leave

import (
	"context"
	"fmt"
	"net/http"
	"strconv"

	errors "github.com/frahmantamala/leave-management/internal"
	"github.com/frahmantamala/leave-management/internal/core/identity"
	"github.com/frahmantamala/leave-management/internal/transport"
	"github.com/frahmantamala/leave-management/pkg/logger"
	"github.com/go-chi/chi"
)

type ServiceAPI interface {
	Create(ctx context.Context, owner identity.Principal, dto CreateLeaveDTO) (*LeaveRequest, error)
	List(ctx context.Context, p identity.Principal) ([]*LeaveRequest, error)
	SetStatus(ctx context.Context, id int64, dto UpdateStatusDTO, actor identity.Principal) (*LeaveRequest, error)
}

type Handler struct {
	*transport.BaseHandler
	Service ServiceAPI
}

func NewHandler(service ServiceAPI) *Handler {
	return &Handler{
		BaseHandler: transport.NewBaseHandler(logger.LoggerWrapper()),
		Service:     service,
	}
}

// CreateLeave handles POST /leaves
func (h *Handler) CreateLeave(w http.ResponseWriter, r *http.Request) {
	principal, ok := errors.PrincipalFromContext(r.Context())
	if !ok {
		h.HandleServiceError(w, errors.ErrMissingToken)
		return
	}

	var dto CreateLeaveDTO
	if err := h.DecodeJSON(w, r, &dto); err != nil {
		h.HandleServiceError(w, err)
		return
	}

	lr, err := h.Service.Create(r.Context(), principal, dto)
	if err != nil {
		h.HandleServiceError(w, err)
		return
	}

	h.WriteJSON(w, http.StatusCreated, MutationResponse{
		Message:      "Leave request created successfully",
		LeaveRequest: lr,
	})
}

// ListLeaves handles GET /leaves
func (h *Handler) ListLeaves(w http.ResponseWriter, r *http.Request) {
	principal, ok := errors.PrincipalFromContext(r.Context())
	if !ok {
		h.HandleServiceError(w, errors.ErrMissingToken)
		return
	}

	requests, err := h.Service.List(r.Context(), principal)
	if err != nil {
		h.HandleServiceError(w, err)
		return
	}
	if requests == nil {
		requests = []*LeaveRequest{}
	}

	h.WriteJSON(w, http.StatusOK, ListResponse{LeaveRequests: requests})
}

// UpdateStatus handles PATCH /leaves/{id}/status
func (h *Handler) UpdateStatus(w http.ResponseWriter, r *http.Request) {
	principal, ok := errors.PrincipalFromContext(r.Context())
	if !ok {
		h.HandleServiceError(w, errors.ErrMissingToken)
		return
	}

	idParam := chi.URLParam(r, "id")
	id, err := strconv.ParseInt(idParam, 10, 64)
	if err != nil || id <= 0 {
		logger.From(r.Context()).Debug("UpdateStatus: invalid leave request id", "id", idParam)
		h.HandleServiceError(w, errors.ErrLeaveNotFound)
		return
	}

	var dto UpdateStatusDTO
	if err := h.DecodeJSON(w, r, &dto); err != nil {
		h.HandleServiceError(w, err)
		return
	}

	lr, err := h.Service.SetStatus(r.Context(), id, dto, principal)
	if err != nil {
		h.HandleServiceError(w, err)
		return
	}

	h.WriteJSON(w, http.StatusOK, MutationResponse{
		Message:      fmt.Sprintf("Leave request %s", lr.Status),
		LeaveRequest: lr,
	})
}
