package middleware

import (
	"context"
	"errors"
	"net/http"
	"strings"

	"github.com/swairua/medplus/application/port/inbound"
	"github.com/swairua/medplus/application/usecase/audit"
	"github.com/swairua/medplus/domain/entity"
	"github.com/swairua/medplus/infrastructure/http/response"
	"github.com/swairua/medplus/pkg/apperr"
)

type principalKey struct{}

// AuthMiddleware gates privileged routes. The principal is resolved fresh
// on every request: no caching across calls, so a revoked or downgraded
// role takes effect immediately.
type AuthMiddleware struct {
	authorizer inbound.Authorizer
	recorder   *audit.Recorder
}

func NewAuthMiddleware(authorizer inbound.Authorizer, recorder *audit.Recorder) *AuthMiddleware {
	return &AuthMiddleware{authorizer: authorizer, recorder: recorder}
}

// RequireRole rejects requests whose caller does not hold exactly the
// required role. A valid caller with the wrong role gets 403 and a
// "denied" audit record; a missing or invalid credential gets 401.
func (m *AuthMiddleware) RequireRole(required entity.Role, entityType string, next http.HandlerFunc) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		credential, ok := bearerToken(r)
		if !ok {
			response.Unauthorized(w, "Unauthorized")
			return
		}

		principal, err := m.authorizer.Authorize(r.Context(), credential, required)
		if err != nil {
			if errors.Is(err, apperr.ErrForbidden) {
				m.recorder.Record(r.Context(), principal, entity.AuditActionDenied, entityType, "", "", map[string]interface{}{
					"required_role": string(required),
					"path":          r.URL.Path,
					"method":        r.Method,
				})
				response.Forbidden(w, apperr.Message(err))
				return
			}
			response.Unauthorized(w, apperr.Message(err))
			return
		}

		ctx := context.WithValue(r.Context(), principalKey{}, principal)
		next.ServeHTTP(w, r.WithContext(ctx))
	}
}

func bearerToken(r *http.Request) (string, bool) {
	header := r.Header.Get("Authorization")
	if header == "" {
		return "", false
	}
	parts := strings.SplitN(header, " ", 2)
	if len(parts) != 2 || parts[0] != "Bearer" || parts[1] == "" {
		return "", false
	}
	return parts[1], true
}

// GetPrincipal returns the authenticated caller stored by RequireRole.
func GetPrincipal(ctx context.Context) *entity.Principal {
	if p, ok := ctx.Value(principalKey{}).(*entity.Principal); ok {
		return p
	}
	return nil
}
