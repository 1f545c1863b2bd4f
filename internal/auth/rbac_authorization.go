package auth

import (
	"log/slog"
	"net/http"

	"github.com/frahmantamala/evaluation-criteria/internal"
	"github.com/frahmantamala/evaluation-criteria/internal/transport"
	"github.com/frahmantamala/evaluation-criteria/pkg/logger"
)

type PermissionAuthorizer interface {
	IsAdmin(userPermissions []string) bool
}

type RBACAuthorization struct {
	*transport.BaseHandler
	authorizer PermissionAuthorizer
}

func NewRBACAuthorization(authorizer PermissionAuthorizer, logger *slog.Logger) *RBACAuthorization {
	return &RBACAuthorization{
		BaseHandler: transport.NewBaseHandler(logger),
		authorizer:  authorizer,
	}
}

// RequireAdmin must run after AuthMiddleware.
func (ra *RBACAuthorization) RequireAdmin() func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			lg := logger.From(r.Context())

			user, ok := internal.UserFromContext(r.Context())
			if !ok {
				lg.Warn("authorization check failed: user not found in context")
				ra.WriteAppError(w, internal.NewUnauthorizedError("authentication required", internal.ErrCodeInvalidToken))
				return
			}

			if !ra.authorizer.IsAdmin(user.Permissions) {
				lg.Warn("access denied: insufficient permissions",
					"user_id", user.ID,
					"user_permissions", user.Permissions)
				ra.WriteAppError(w, internal.ErrUnauthorizedAccess)
				return
			}

			next.ServeHTTP(w, r)
		})
	}
}
