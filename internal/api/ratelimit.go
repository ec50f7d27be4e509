package api

import (
	"encoding/json"
	"fmt"
	"log/slog"
	"net"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/gorilla/mux"
	"github.com/honeynil/raffle-service/internal/infrastructure/redis"
	pkgerrors "github.com/honeynil/raffle-service/pkg/errors"
)

// RateLimitMiddleware allows limit requests per client IP per window. Redis
// failures let the request through.
func RateLimitMiddleware(redisClient redis.RedisClient, limit int, window time.Duration) mux.MiddlewareFunc {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			ip := clientIP(r)
			count, err := redisClient.Incr(r.Context(), fmt.Sprintf("ratelimit:search:%s", ip), window)
			if err != nil {
				slog.Error("rate limiter unavailable", "ip", ip, "error", err)
				next.ServeHTTP(w, r)
				return
			}
			if count > int64(limit) {
				slog.Warn("search rate limit exceeded", "ip", ip, "count", count)
				w.Header().Set("Retry-After", strconv.Itoa(int(window.Seconds())))
				w.Header().Set("Content-Type", "application/json")
				w.WriteHeader(http.StatusTooManyRequests)
				json.NewEncoder(w).Encode(map[string]string{"error": pkgerrors.ErrRateLimited.Error()})
				return
			}
			next.ServeHTTP(w, r)
		})
	}
}

func clientIP(r *http.Request) string {
	if fwd := r.Header.Get("X-Forwarded-For"); fwd != "" {
		return strings.TrimSpace(strings.Split(fwd, ",")[0])
	}
	host, _, err := net.SplitHostPort(r.RemoteAddr)
	if err != nil {
		return r.RemoteAddr
	}
	return host
}
