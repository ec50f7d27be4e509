package api

import (
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/golang/mock/gomock"
	"github.com/honeynil/raffle-service/internal/infrastructure/auth"
	redismocks "github.com/honeynil/raffle-service/internal/infrastructure/redis/mocks"
	"github.com/honeynil/raffle-service/internal/models"
	servicemocks "github.com/honeynil/raffle-service/internal/services/mocks"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRouter(t *testing.T) {
	ctrl := gomock.NewController(t)
	defer ctrl.Finish()

	svc := servicemocks.NewMockRaffleService(ctrl)
	redisClient := redismocks.NewMockRedisClient(ctrl)
	router := SetupRouter(svc, redisClient, RouterConfig{
		JWTSecret:        "secret",
		SearchRateLimit:  2,
		SearchRateWindow: time.Minute,
	})

	t.Run("search is rate limited per client", func(t *testing.T) {
		key := "ratelimit:search:10.0.0.1"
		gomock.InOrder(
			redisClient.EXPECT().Incr(gomock.Any(), key, time.Minute).Return(int64(1), nil),
			redisClient.EXPECT().Incr(gomock.Any(), key, time.Minute).Return(int64(2), nil),
			redisClient.EXPECT().Incr(gomock.Any(), key, time.Minute).Return(int64(3), nil),
		)
		svc.EXPECT().SearchPurchases(gomock.Any(), gomock.Any()).Return([]models.TicketLookup{}, nil).Times(2)

		for i, want := range []int{http.StatusOK, http.StatusOK, http.StatusTooManyRequests} {
			req := httptest.NewRequest(http.MethodGet, "/purchases/search?ticket=471001", nil)
			req.RemoteAddr = "10.0.0.1:5555"
			rec := httptest.NewRecorder()
			router.ServeHTTP(rec, req)
			assert.Equal(t, want, rec.Code, "request %d", i)
		}
	})

	t.Run("rate limiter failure lets requests through", func(t *testing.T) {
		redisClient.EXPECT().Incr(gomock.Any(), "ratelimit:search:10.0.0.2", time.Minute).Return(int64(0), errors.New("redis down"))
		svc.EXPECT().SearchPurchases(gomock.Any(), gomock.Any()).Return([]models.TicketLookup{}, nil)

		req := httptest.NewRequest(http.MethodGet, "/purchases/search?ticket=471001", nil)
		req.RemoteAddr = "10.0.0.2:5555"
		rec := httptest.NewRecorder()
		router.ServeHTTP(rec, req)
		assert.Equal(t, http.StatusOK, rec.Code)
	})

	t.Run("admin routes require a token", func(t *testing.T) {
		req := httptest.NewRequest(http.MethodGet, "/admin/purchases", nil)
		rec := httptest.NewRecorder()
		router.ServeHTTP(rec, req)
		assert.Equal(t, http.StatusUnauthorized, rec.Code)
	})

	t.Run("admin routes accept a stored token", func(t *testing.T) {
		token, err := auth.GenerateJWT([]byte("secret"), "admin", time.Hour)
		require.NoError(t, err)
		redisClient.EXPECT().Get(gomock.Any(), "admin:admin:token").Return(token, nil)
		svc.EXPECT().ListPurchases(gomock.Any()).Return([]models.PurchaseSummary{}, nil)

		req := httptest.NewRequest(http.MethodGet, "/admin/purchases", nil)
		req.Header.Set("Authorization", "Bearer "+token)
		rec := httptest.NewRecorder()
		router.ServeHTTP(rec, req)
		assert.Equal(t, http.StatusOK, rec.Code)
	})

	t.Run("revoked token is refused", func(t *testing.T) {
		token, err := auth.GenerateJWT([]byte("secret"), "admin", time.Hour)
		require.NoError(t, err)
		redisClient.EXPECT().Get(gomock.Any(), "admin:admin:token").Return("other", nil)

		req := httptest.NewRequest(http.MethodGet, "/admin/purchases", nil)
		req.Header.Set("Authorization", "Bearer "+token)
		rec := httptest.NewRecorder()
		router.ServeHTTP(rec, req)
		assert.Equal(t, http.StatusUnauthorized, rec.Code)
	})

	t.Run("login stays public", func(t *testing.T) {
		svc.EXPECT().Login(gomock.Any(), "admin", "pw").Return("tok", nil)

		req := httptest.NewRequest(http.MethodPost, "/admin/login", strings.NewReader(`{"username":"admin","password":"pw"}`))
		rec := httptest.NewRecorder()
		router.ServeHTTP(rec, req)
		assert.Equal(t, http.StatusOK, rec.Code)
	})

	t.Run("metrics endpoint", func(t *testing.T) {
		req := httptest.NewRequest(http.MethodGet, "/metrics", nil)
		rec := httptest.NewRecorder()
		router.ServeHTTP(rec, req)
		assert.Equal(t, http.StatusOK, rec.Code)
		assert.Contains(t, rec.Body.String(), "http_requests_total")
	})
}
