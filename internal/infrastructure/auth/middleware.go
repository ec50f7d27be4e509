package auth

import (
	"context"
	"log/slog"
	"net/http"
	"strings"

	"github.com/honeynil/raffle-service/internal/infrastructure/redis"
)

type contextKey string

const adminKey contextKey = "admin"

// WithAdmin attaches an authenticated admin subject to ctx.
func WithAdmin(ctx context.Context, subject string) context.Context {
	return context.WithValue(ctx, adminKey, subject)
}

// AdminFromContext returns the admin subject set by AuthMiddleware.
func AdminFromContext(ctx context.Context) (string, bool) {
	sub, ok := ctx.Value(adminKey).(string)
	return sub, ok
}

func AuthMiddleware(redisClient redis.RedisClient, jwtSecret string) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			authHeader := r.Header.Get("Authorization")
			if authHeader == "" {
				http.Error(w, "authorization header missing", http.StatusUnauthorized)
				return
			}

			parts := strings.Split(authHeader, " ")
			if len(parts) != 2 || parts[0] != "Bearer" {
				http.Error(w, "invalid authorization header", http.StatusUnauthorized)
				return
			}

			tokenStr := parts[1]
			subject, err := ValidateJWT([]byte(jwtSecret), tokenStr)
			if err != nil {
				http.Error(w, "invalid token", http.StatusUnauthorized)
				return
			}

			// Check token in Redis
			storedToken, err := redisClient.Get(r.Context(), TokenKey(subject))
			if err != nil || storedToken != tokenStr {
				slog.Error("invalid or revoked token", "admin", subject, "error", err)
				http.Error(w, "invalid or revoked token", http.StatusUnauthorized)
				return
			}

			next.ServeHTTP(w, r.WithContext(WithAdmin(r.Context(), subject)))
		})
	}
}
