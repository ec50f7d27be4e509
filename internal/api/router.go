package api

import (
	"fmt"
	"net/http"
	"time"

	"github.com/gorilla/mux"
	"github.com/honeynil/raffle-service/internal/handler"
	"github.com/honeynil/raffle-service/internal/infrastructure/auth"
	"github.com/honeynil/raffle-service/internal/infrastructure/redis"
	service "github.com/honeynil/raffle-service/internal/services"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

var (
	RequestCounter = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "http_requests_total",
			Help: "Total number of HTTP requests",
		},
		[]string{"method", "endpoint", "status"},
	)
	RequestDuration = prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "http_request_duration_seconds",
			Help:    "Duration of HTTP requests in seconds",
			Buckets: prometheus.DefBuckets,
		},
		[]string{"method", "endpoint"},
	)
)

func init() {
	prometheus.MustRegister(RequestCounter, RequestDuration)
}

type RouterConfig struct {
	JWTSecret        string
	SearchRateLimit  int
	SearchRateWindow time.Duration
}

func SetupRouter(svc service.RaffleService, redisClient redis.RedisClient, cfg RouterConfig) *mux.Router {
	r := mux.NewRouter()
	r.Use(metricsMiddleware)

	h := handler.NewHandler(svc)
	h.RegisterPublicRoutes(r)

	search := r.PathPrefix("/purchases").Subrouter()
	search.Use(RateLimitMiddleware(redisClient, cfg.SearchRateLimit, cfg.SearchRateWindow))
	h.RegisterSearchRoutes(search)

	admin := r.PathPrefix("/admin").Subrouter()
	admin.Use(auth.AuthMiddleware(redisClient, cfg.JWTSecret))
	h.RegisterAdminRoutes(admin)

	r.Handle("/metrics", promhttp.Handler()).Methods("GET")
	return r
}

// metricsMiddleware labels requests by route template to keep cardinality bounded.
func metricsMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		endpoint := r.URL.Path
		if route := mux.CurrentRoute(r); route != nil {
			if tpl, err := route.GetPathTemplate(); err == nil {
				endpoint = tpl
			}
		}

		recorder := &statusRecorder{ResponseWriter: w}
		next.ServeHTTP(recorder, r)
		if recorder.status == 0 {
			recorder.status = http.StatusOK
		}

		status := fmt.Sprintf("%d", recorder.status)
		RequestCounter.WithLabelValues(r.Method, endpoint, status).Inc()
		RequestDuration.WithLabelValues(r.Method, endpoint).Observe(time.Since(start).Seconds())
	})
}

type statusRecorder struct {
	http.ResponseWriter
	status int
}

func (r *statusRecorder) WriteHeader(status int) {
	r.status = status
	r.ResponseWriter.WriteHeader(status)
}

func (r *statusRecorder) Write(b []byte) (int, error) {
	if r.status == 0 {
		r.status = http.StatusOK
	}
	return r.ResponseWriter.Write(b)
}
