package web

import (
	"context"
	"net/http"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"classroom-subscription/internal/domain"
	"classroom-subscription/internal/infra/logging"
	"classroom-subscription/internal/usecase"
)

type claimsCtxKey struct{}

// reqLog returns the server logger enriched with the request-scoped ids
// stamped by requestID and authenticate.
func (s *Server) reqLog(ctx context.Context) *zerolog.Logger {
	return logging.With(ctx, s.log)
}

func claimsFrom(ctx context.Context) *usecase.Claims {
	c, _ := ctx.Value(claimsCtxKey{}).(*usecase.Claims)
	return c
}

// requestID stamps every request with a correlation id carried through the
// logger context.
func (s *Server) requestID(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		id := r.Header.Get("X-Request-Id")
		if id == "" {
			id = uuid.NewString()
		}
		w.Header().Set("X-Request-Id", id)
		next.ServeHTTP(w, r.WithContext(logging.WithRequestID(r.Context(), id)))
	})
}

// authenticate validates the bearer token and stores its claims in the
// request context. role restricts who gets through: "student", "admin", or
// "" for any authenticated caller. Admin tokens pass student gates.
func (s *Server) authenticate(role string) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			header := r.Header.Get("Authorization")
			parts := strings.SplitN(header, " ", 2)
			if len(parts) != 2 || !strings.EqualFold(parts[0], "bearer") {
				writeJSON(w, http.StatusUnauthorized, errorResponse{Error: "missing bearer token"})
				return
			}

			claims, err := s.authUC.ParseToken(parts[1])
			if err != nil {
				writeJSON(w, http.StatusUnauthorized, errorResponse{Error: "invalid token"})
				return
			}

			isAdmin := claims.Role == "admin" || claims.Role == "super-admin"
			switch role {
			case "admin":
				if !isAdmin {
					writeJSON(w, http.StatusForbidden, errorResponse{Error: "admin only"})
					return
				}
			case "student":
				if claims.Role != "student" && !isAdmin {
					writeJSON(w, http.StatusForbidden, errorResponse{Error: "forbidden"})
					return
				}
			}

			ctx := context.WithValue(r.Context(), claimsCtxKey{}, claims)
			ctx = logging.WithAccountID(ctx, claims.Subject)
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}

// allow consults the fixed-window limiter. A nil limiter (tests, single-node
// dev) disables the check; a limiter outage fails open with a warning.
func (s *Server) allow(ctx context.Context, key string, limit int, window time.Duration) error {
	if s.limiter == nil {
		return nil
	}
	allowed, err := s.limiter.Allow(ctx, key, limit, window)
	if err != nil {
		s.reqLog(ctx).Warn().Err(err).Msg("rate limiter unavailable, letting request through")
		return nil
	}
	if !allowed {
		return domain.ErrRateLimited
	}
	return nil
}
