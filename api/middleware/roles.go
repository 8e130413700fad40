package middleware

import (
	"net/http"

	"github.com/ducoin/boucherie-backend/api/responses"
	"github.com/ducoin/boucherie-backend/pkg/enums"
	pkgerrors "github.com/ducoin/boucherie-backend/pkg/errors"
	"github.com/ducoin/boucherie-backend/pkg/logger"
)

// RequireRole gates a route group to one user role. The role claim in the
// context is trusted because Auth verified the token signature earlier in
// the chain; an unknown or lesser role gets a 403, never a redirect.
func RequireRole(role enums.UserRole, logg *logger.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			actor := enums.UserRole(RoleFromContext(r.Context()))
			if actor != role {
				if logg != nil {
					ctx := logg.WithFields(r.Context(), map[string]any{
						"required_role": string(role),
						"actor_role":    string(actor),
					})
					logg.Warn(ctx, "authz.role_denied")
				}
				responses.WriteError(r.Context(), nil, w, pkgerrors.New(pkgerrors.CodeForbidden, "insufficient role"))
				return
			}
			next.ServeHTTP(w, r)
		})
	}
}
