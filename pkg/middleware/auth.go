package middleware

import (
	"context"
	"net/http"
	"strings"

	apperrors "mediq/pkg/errors"
	apphttp "mediq/pkg/http"
	"mediq/pkg/logger"
	"mediq/pkg/model"
	"mediq/pkg/token"

	"github.com/julienschmidt/httprouter"
)

const UserKey contextKey = "authenticated_user"

// TokenVerifier parses and verifies a raw access token.
type TokenVerifier interface {
	VerifyAccess(raw string) (*token.Claims, error)
}

// UserResolver loads the current account for an authenticated subject.
// Roles read from storage here, not from the token payload, so revocations
// and grants apply to requests made with older tokens.
type UserResolver interface {
	FindByID(ctx context.Context, id string) (*model.User, error)
}

// AuthGuard authenticates requests from the Authorization header and
// attaches the resolved user to the request context.
type AuthGuard struct {
	verifier TokenVerifier
	users    UserResolver
	log      *logger.Logger
}

func NewAuthGuard(verifier TokenVerifier, users UserResolver, log *logger.Logger) *AuthGuard {
	return &AuthGuard{
		verifier: verifier,
		users:    users,
		log:      log,
	}
}

// Authenticate rejects requests without a bearer token with 401 and
// requests whose token cannot be verified, or whose subject no longer
// exists, with 403.
func (g *AuthGuard) Authenticate(next httprouter.Handle) httprouter.Handle {
	return func(w http.ResponseWriter, r *http.Request, ps httprouter.Params) {
		raw := extractBearerToken(r)
		if raw == "" {
			writeAuthErr(w, g.log, r, apperrors.Unauthorized("Access denied: No token provided."))
			return
		}

		claims, err := g.verifier.VerifyAccess(raw)
		if err != nil {
			g.log.Warn("Access token rejected",
				"request_id", RequestID(r.Context()),
				"path", r.URL.Path,
				"error", err,
			)
			writeAuthErr(w, g.log, r, apperrors.Forbidden("Access denied: Invalid or expired token."))
			return
		}

		user, err := g.users.FindByID(r.Context(), claims.UserID)
		if err != nil {
			g.log.Warn("Token subject could not be resolved",
				"request_id", RequestID(r.Context()),
				"user_id", claims.UserID,
				"error", err,
			)
			writeAuthErr(w, g.log, r, apperrors.Forbidden("Access denied: Invalid or expired token."))
			return
		}

		ctx := context.WithValue(r.Context(), UserKey, user)
		next(w, r.WithContext(ctx), ps)
	}
}

// RequireRole allows the request through when the authenticated user holds
// at least one of the required roles. Must run after Authenticate.
func (g *AuthGuard) RequireRole(required ...model.Role) func(httprouter.Handle) httprouter.Handle {
	return func(next httprouter.Handle) httprouter.Handle {
		return func(w http.ResponseWriter, r *http.Request, ps httprouter.Params) {
			user, ok := UserFromContext(r.Context())
			if !ok {
				writeAuthErr(w, g.log, r, apperrors.Forbidden("You are not authorised"))
				return
			}

			if !model.HasAnyRole(user.Roles, required...) {
				g.log.Warn("Role check failed",
					"request_id", RequestID(r.Context()),
					"user_id", user.ID,
					"roles", user.Roles,
					"path", r.URL.Path,
				)
				writeAuthErr(w, g.log, r, apperrors.Forbidden("You are not authorised"))
				return
			}

			next(w, r, ps)
		}
	}
}

// Protect is Authenticate followed by RequireRole in one step.
func (g *AuthGuard) Protect(next httprouter.Handle, required ...model.Role) httprouter.Handle {
	if len(required) == 0 {
		return g.Authenticate(next)
	}
	return g.Authenticate(g.RequireRole(required...)(next))
}

// UserFromContext returns the user attached by Authenticate.
func UserFromContext(ctx context.Context) (*model.User, bool) {
	user, ok := ctx.Value(UserKey).(*model.User)
	return user, ok
}

func extractBearerToken(r *http.Request) string {
	header := r.Header.Get("Authorization")
	if header == "" {
		return ""
	}

	parts := strings.SplitN(header, " ", 2)
	if len(parts) != 2 || !strings.EqualFold(parts[0], "Bearer") {
		return ""
	}

	return strings.TrimSpace(parts[1])
}

func writeAuthErr(w http.ResponseWriter, log *logger.Logger, r *http.Request, err *apperrors.AppError) {
	if werr := apphttp.WriteError(w, err); werr != nil {
		log.Error("Failed to write auth error response",
			"request_id", RequestID(r.Context()),
			"error", werr,
		)
	}
}
