package handler

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/golang/mock/gomock"
	"github.com/gorilla/mux"
	"github.com/honeynil/raffle-service/internal/models"
	servicemocks "github.com/honeynil/raffle-service/internal/services/mocks"
	pkgerrors "github.com/honeynil/raffle-service/pkg/errors"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestRouter(t *testing.T) (*mux.Router, *servicemocks.MockRaffleService) {
	ctrl := gomock.NewController(t)
	t.Cleanup(ctrl.Finish)

	svc := servicemocks.NewMockRaffleService(ctrl)
	h := NewHandler(svc)
	r := mux.NewRouter()
	h.RegisterPublicRoutes(r)
	h.RegisterSearchRoutes(r.PathPrefix("/purchases").Subrouter())
	h.RegisterAdminRoutes(r.PathPrefix("/admin").Subrouter())
	return r, svc
}

func doJSON(r http.Handler, method, path string, body interface{}) *httptest.ResponseRecorder {
	var buf bytes.Buffer
	if body != nil {
		json.NewEncoder(&buf).Encode(body)
	}
	req := httptest.NewRequest(method, path, &buf)
	rec := httptest.NewRecorder()
	r.ServeHTTP(rec, req)
	return rec
}

func validPurchaseBody() map[string]interface{} {
	return map[string]interface{}{
		"name":            "  juan perez ",
		"nationalId":      "45678912",
		"phone":           "912345678",
		"email":           "juan@example.com",
		"quantity":        2,
		"operationNumber": " OP-0017 ",
		"referralCode":    "ANA10",
	}
}

func TestHandler_CreatePurchase(t *testing.T) {
	t.Run("created", func(t *testing.T) {
		r, svc := newTestRouter(t)
		code := "ANA10"
		svc.EXPECT().CreatePurchase(gomock.Any(), models.PurchaseRequest{
			RaffleID:        3,
			Name:            "JUAN PEREZ",
			NationalID:      "45678912",
			Phone:           "912345678",
			Email:           "juan@example.com",
			Quantity:        2,
			OperationNumber: "OP-0017",
			ReferralCode:    "ANA10",
		}).Return(&models.PurchaseResult{
			PurchaseID:   11,
			Tickets:      []string{"471001", "471002"},
			Subtotal:     decimal.NewFromInt(50),
			Discount:     decimal.NewFromInt(6),
			Amount:       decimal.NewFromInt(44),
			ReferralCode: &code,
		}, nil)

		rec := doJSON(r, http.MethodPost, "/raffles/3/purchase", validPurchaseBody())
		require.Equal(t, http.StatusCreated, rec.Code)

		var resp purchaseResultResponse
		require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
		assert.Equal(t, int64(11), resp.PurchaseID)
		assert.Equal(t, 44.0, resp.Amount)
		assert.Equal(t, 6.0, resp.Discount)
		assert.Equal(t, "PENDING", resp.Status)
	})

	t.Run("shape validation", func(t *testing.T) {
		cases := map[string]interface{}{
			"nationalId":      "1234",
			"phone":           "12345",
			"email":           "nope",
			"quantity":        0,
			"operationNumber": "  ",
			"name":            "",
		}
		for field, value := range cases {
			t.Run(field, func(t *testing.T) {
				r, _ := newTestRouter(t)
				body := validPurchaseBody()
				body[field] = value

				rec := doJSON(r, http.MethodPost, "/raffles/3/purchase", body)
				assert.Equal(t, http.StatusBadRequest, rec.Code)
				var resp errorResponse
				require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
				assert.Equal(t, field, resp.Field)
			})
		}
	})

	errorCases := []struct {
		name   string
		err    error
		status int
		field  string
	}{
		{"duplicate operation number", pkgerrors.NewFieldError("operationNumber", pkgerrors.ErrDuplicateOperationNumber), http.StatusConflict, "operationNumber"},
		{"expired referral", pkgerrors.NewFieldError("referralCode", pkgerrors.ErrReferralExpired), http.StatusBadRequest, "referralCode"},
		{"sold out", pkgerrors.ErrInsufficientInventory, http.StatusBadRequest, ""},
		{"raffle not found", pkgerrors.ErrRaffleNotFound, http.StatusNotFound, ""},
		{"conflict", fmt.Errorf("%w: 40001", pkgerrors.ErrTransactionConflict), http.StatusServiceUnavailable, ""},
		{"timeout", pkgerrors.ErrTransactionTimeout, http.StatusServiceUnavailable, ""},
		{"unexpected", errors.New("disk on fire"), http.StatusInternalServerError, ""},
	}
	for _, tc := range errorCases {
		t.Run(tc.name, func(t *testing.T) {
			r, svc := newTestRouter(t)
			svc.EXPECT().CreatePurchase(gomock.Any(), gomock.Any()).Return(nil, tc.err)

			rec := doJSON(r, http.MethodPost, "/raffles/3/purchase", validPurchaseBody())
			assert.Equal(t, tc.status, rec.Code)
			var resp errorResponse
			require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
			assert.Equal(t, tc.field, resp.Field)
			if tc.status == http.StatusInternalServerError {
				assert.NotContains(t, resp.Error, "disk")
			}
		})
	}

	t.Run("malformed body", func(t *testing.T) {
		r, _ := newTestRouter(t)
		req := httptest.NewRequest(http.MethodPost, "/raffles/3/purchase", bytes.NewBufferString("{"))
		rec := httptest.NewRecorder()
		r.ServeHTTP(rec, req)
		assert.Equal(t, http.StatusBadRequest, rec.Code)
	})
}

func TestHandler_GetRaffle(t *testing.T) {
	r, svc := newTestRouter(t)
	svc.EXPECT().GetRaffle(gomock.Any(), int64(5)).Return(&models.RaffleDetails{
		Raffle:           models.Raffle{ID: 5, Title: "Moto", TicketPrice: decimal.RequireFromString("12.50"), TotalTickets: 100, SoldTickets: 4},
		ConfirmedTickets: 4,
	}, nil)

	rec := doJSON(r, http.MethodGet, "/raffles/5", nil)
	require.Equal(t, http.StatusOK, rec.Code)

	var resp raffleResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	assert.Equal(t, 12.5, resp.TicketPrice)
	require.NotNil(t, resp.ConfirmedTickets)
	assert.Equal(t, 4, *resp.ConfirmedTickets)
}

func TestHandler_Decisions(t *testing.T) {
	purchase := &models.Purchase{ID: 9, RaffleID: 1, Quantity: 2, Amount: decimal.NewFromInt(50), Status: models.StatusPaid}

	t.Run("confirm", func(t *testing.T) {
		r, svc := newTestRouter(t)
		svc.EXPECT().ConfirmPurchase(gomock.Any(), int64(9)).Return(&models.Decision{Purchase: purchase, Changed: true, BuyerNotified: true, DecidedBy: "admin"}, nil)

		rec := doJSON(r, http.MethodPatch, "/admin/purchases/9/pay", nil)
		require.Equal(t, http.StatusOK, rec.Code)
		var resp decisionResponse
		require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
		assert.True(t, resp.Changed)
		assert.Equal(t, "PAID", resp.Purchase.Status)
		assert.Equal(t, 50.0, resp.Purchase.Amount)
		assert.Equal(t, "admin", resp.DecidedBy)
	})

	t.Run("invalid transition", func(t *testing.T) {
		r, svc := newTestRouter(t)
		svc.EXPECT().ConfirmPurchase(gomock.Any(), int64(9)).Return(nil, pkgerrors.ErrInvalidTransition)

		rec := doJSON(r, http.MethodPatch, "/admin/purchases/9/pay", nil)
		assert.Equal(t, http.StatusBadRequest, rec.Code)
	})

	t.Run("reject unknown purchase", func(t *testing.T) {
		r, svc := newTestRouter(t)
		svc.EXPECT().RejectPurchase(gomock.Any(), int64(9)).Return(nil, pkgerrors.ErrPurchaseNotFound)

		rec := doJSON(r, http.MethodPatch, "/admin/purchases/9/reject", nil)
		assert.Equal(t, http.StatusNotFound, rec.Code)
	})
}

func TestHandler_SearchPurchases(t *testing.T) {
	r, svc := newTestRouter(t)
	svc.EXPECT().SearchPurchases(gomock.Any(), models.PurchaseFilter{NationalID: "45678912"}).Return([]models.TicketLookup{
		{BuyerName: "JUAN PEREZ", Ticket: "471001", Status: models.StatusPending, StatusText: "Pending verification"},
	}, nil)

	rec := doJSON(r, http.MethodGet, "/purchases/search?nationalId=45678912", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	var rows []models.TicketLookup
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &rows))
	require.Len(t, rows, 1)
	assert.Equal(t, "471001", rows[0].Ticket)
}

func TestHandler_ValidateReferral(t *testing.T) {
	r, svc := newTestRouter(t)
	svc.EXPECT().ValidateReferral(gomock.Any(), "OLD").Return(&models.ReferralCheck{Valid: false, Reason: "expired"}, nil)

	rec := doJSON(r, http.MethodGet, "/referrals/OLD", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.JSONEq(t, `{"valid":false,"reason":"expired"}`, rec.Body.String())
}

func TestHandler_Login(t *testing.T) {
	t.Run("success", func(t *testing.T) {
		r, svc := newTestRouter(t)
		svc.EXPECT().Login(gomock.Any(), "admin", "pw").Return("token", nil)

		rec := doJSON(r, http.MethodPost, "/admin/login", map[string]string{"username": "admin", "password": "pw"})
		require.Equal(t, http.StatusOK, rec.Code)
		assert.JSONEq(t, `{"token":"token"}`, rec.Body.String())
	})

	t.Run("invalid credentials", func(t *testing.T) {
		r, svc := newTestRouter(t)
		svc.EXPECT().Login(gomock.Any(), "admin", "bad").Return("", pkgerrors.ErrInvalidCredentials)

		rec := doJSON(r, http.MethodPost, "/admin/login", map[string]string{"username": "admin", "password": "bad"})
		assert.Equal(t, http.StatusUnauthorized, rec.Code)
	})
}

func TestHandler_CreateRaffle(t *testing.T) {
	r, svc := newTestRouter(t)
	svc.EXPECT().CreateRaffle(gomock.Any(), gomock.Any()).DoAndReturn(
		func(_ interface{}, raffle *models.Raffle) (int64, error) {
			assert.True(t, raffle.TicketPrice.Equal(decimal.RequireFromString("12.5")))
			assert.Equal(t, 300, raffle.TotalTickets)
			return 4, nil
		})

	rec := doJSON(r, http.MethodPost, "/admin/raffles", map[string]interface{}{
		"title": "Moto", "ticketPrice": 12.5, "totalTickets": 300,
	})
	require.Equal(t, http.StatusCreated, rec.Code)
	assert.JSONEq(t, `{"id":4}`, rec.Body.String())
}
