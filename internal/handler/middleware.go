package handler

import (
	"context"
	"net/http"
	"strings"

	"github.com/boddenberg/lessence-studio-bfa/internal/domain"
	"github.com/boddenberg/lessence-studio-bfa/internal/service"

	"go.uber.org/zap"
)

type contextKey string

const (
	principalKey contextKey = "principal"
	claimsKey    contextKey = "sessionClaims"
)

// SessionMiddleware validates Bearer session tokens and injects the admin
// principal into the request context.
func SessionMiddleware(access *service.AccessControl, logger *zap.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			authHeader := r.Header.Get("Authorization")
			if authHeader == "" {
				logger.Warn("auth: missing token",
					zap.String("path", r.URL.Path),
					zap.String("remote_addr", r.RemoteAddr),
				)
				writeError(w, http.StatusUnauthorized, "Token de autenticação não fornecido")
				return
			}

			parts := strings.SplitN(authHeader, " ", 2)
			if len(parts) != 2 || !strings.EqualFold(parts[0], "Bearer") {
				logger.Warn("auth: invalid token format",
					zap.String("path", r.URL.Path),
					zap.String("remote_addr", r.RemoteAddr),
				)
				writeError(w, http.StatusUnauthorized, "Formato de token inválido")
				return
			}

			principal, claims, err := access.Authenticate(r.Context(), parts[1])
			if err != nil {
				logger.Warn("auth: rejected session token",
					zap.String("path", r.URL.Path),
					zap.String("remote_addr", r.RemoteAddr),
					zap.Error(err),
				)
				writeError(w, http.StatusUnauthorized, err.Error())
				return
			}

			ctx := context.WithValue(r.Context(), principalKey, principal)
			ctx = context.WithValue(ctx, claimsKey, claims)
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}

// PrincipalFromContext returns the authenticated admin, or nil.
func PrincipalFromContext(ctx context.Context) *domain.Principal {
	p, _ := ctx.Value(principalKey).(*domain.Principal)
	return p
}

func claimsFromContext(ctx context.Context) *service.SessionClaims {
	c, _ := ctx.Value(claimsKey).(*service.SessionClaims)
	return c
}
