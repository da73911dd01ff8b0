package fixture

import (
	"context"
	"log/slog"
	"net/http"
	"strings"

	"golang.org/x/time/rate"

	"github.com/telecomplus/contratos/internal/lib/sl"
	"github.com/telecomplus/contratos/internal/lib/token"
)

type ctxKey string

// ctxUserID carries the authenticated user id through the request context.
const ctxUserID ctxKey = "user_id"

// authMiddleware verifies the bearer token and stores the user id in the
// request context. Missing or invalid tokens yield a 401 envelope.
func authMiddleware(maker *token.Maker, log *slog.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			authHeader := r.Header.Get("Authorization")
			if !strings.HasPrefix(authHeader, "Bearer ") {
				fail(w, r, http.StatusUnauthorized, "falta el token de autorización")
				return
			}
			claims, err := maker.Parse(strings.TrimPrefix(authHeader, "Bearer "))
			if err != nil {
				log.Info("rejected token", sl.Err(err))
				fail(w, r, http.StatusUnauthorized, "token inválido o expirado")
				return
			}
			ctx := context.WithValue(r.Context(), ctxUserID, claims.ID)
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}

// rateLimitMiddleware applies one shared limiter to every request.
func rateLimitMiddleware(limiter *rate.Limiter, log *slog.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if !limiter.Allow() {
				log.Warn("too many requests")
				fail(w, r, http.StatusTooManyRequests, "demasiadas solicitudes")
				return
			}
			next.ServeHTTP(w, r)
		})
	}
}

func userID(r *http.Request) string {
	id, _ := r.Context().Value(ctxUserID).(string)
	return id
}
