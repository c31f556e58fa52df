package auth

import (
	"net/http"

	errors "github.com/frahmantamala/leave-management/internal"
	"github.com/frahmantamala/leave-management/internal/transport"
	"github.com/frahmantamala/leave-management/pkg/logger"
)

type Handler struct {
	*transport.BaseHandler
	Service ServiceAPI
}

func NewHandler(svc ServiceAPI) *Handler {
	return &Handler{
		BaseHandler: transport.NewBaseHandler(logger.LoggerWrapper()),
		Service:     svc,
	}
}

// Login handles POST /auth/login
func (h *Handler) Login(w http.ResponseWriter, r *http.Request) {
	var dto LoginDTO
	if err := h.DecodeJSON(w, r, &dto); err != nil {
		h.HandleServiceError(w, err)
		return
	}

	resp, err := h.Service.Login(r.Context(), dto)
	if err != nil {
		h.HandleServiceError(w, err)
		return
	}

	h.WriteJSON(w, http.StatusOK, resp)
}

// AuthMiddleware rejects requests without a valid bearer token and stores
// the resolved principal in the request context.
func (h *Handler) AuthMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		token := h.ExtractTokenFromHeader(r)
		if token == "" {
			h.HandleServiceError(w, errors.ErrMissingToken)
			return
		}

		principal, err := h.Service.Authenticate(r.Context(), token)
		if err != nil {
			h.Logger.Debug("token rejected", "error", err, "path", r.URL.Path)
			h.HandleServiceError(w, err)
			return
		}

		ctx := errors.ContextWithPrincipal(r.Context(), principal)
		ctx = logger.With(ctx, "user_id", principal.UserID, "role", principal.Role.String())
		next.ServeHTTP(w, r.WithContext(ctx))
	})
}

// Require guards a route with Authorize for the given action.
func (h *Handler) Require(action Action) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			principal, ok := errors.PrincipalFromContext(r.Context())
			if !ok {
				h.HandleServiceError(w, errors.ErrMissingToken)
				return
			}

			if !Authorize(principal, action) {
				logger.From(r.Context()).Warn("access denied", "action", string(action))
				h.HandleServiceError(w, DeniedError(action))
				return
			}

			next.ServeHTTP(w, r)
		})
	}
}
