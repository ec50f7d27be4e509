package handler

import (
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"
	"strconv"

	"github.com/gorilla/mux"
	"github.com/honeynil/raffle-service/internal/models"
	service "github.com/honeynil/raffle-service/internal/services"
	pkgerrors "github.com/honeynil/raffle-service/pkg/errors"
)

type Handler struct {
	service service.RaffleService
}

func NewHandler(s service.RaffleService) *Handler {
	return &Handler{service: s}
}

type errorResponse struct {
	Error string `json:"error"`
	Field string `json:"field,omitempty"`
}

func (h *Handler) writeJSON(w http.ResponseWriter, status int, v interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		slog.Error("failed to encode response", "error", err)
	}
}

func (h *Handler) writeError(w http.ResponseWriter, err error) {
	status := statusFor(err)
	msg := err.Error()
	if status == http.StatusInternalServerError {
		msg = "internal server error"
	}
	h.writeJSON(w, status, errorResponse{Error: msg, Field: pkgerrors.Field(err)})
}

// statusFor maps service errors onto HTTP status codes.
func statusFor(err error) int {
	switch {
	case errors.Is(err, pkgerrors.ErrNotFound):
		return http.StatusNotFound
	case errors.Is(err, pkgerrors.ErrDuplicateOperationNumber),
		errors.Is(err, pkgerrors.ErrReferralExists):
		return http.StatusConflict
	case errors.Is(err, pkgerrors.ErrInvalidReferral),
		errors.Is(err, pkgerrors.ErrInsufficientInventory),
		errors.Is(err, pkgerrors.ErrValidationFailed),
		errors.Is(err, pkgerrors.ErrInvalidTransition):
		return http.StatusBadRequest
	case errors.Is(err, pkgerrors.ErrInvalidCredentials):
		return http.StatusUnauthorized
	case errors.Is(err, pkgerrors.ErrRateLimited):
		return http.StatusTooManyRequests
	case pkgerrors.IsRetryable(err):
		return http.StatusServiceUnavailable
	}
	return http.StatusInternalServerError
}

func (h *Handler) decode(w http.ResponseWriter, r *http.Request, v interface{}) bool {
	if err := json.NewDecoder(r.Body).Decode(v); err != nil {
		h.writeJSON(w, http.StatusBadRequest, errorResponse{Error: "invalid request body"})
		return false
	}
	return true
}

func pathID(r *http.Request) (int64, error) {
	id, err := strconv.ParseInt(mux.Vars(r)["id"], 10, 64)
	if err != nil || id <= 0 {
		return 0, pkgerrors.NewFieldError("id", pkgerrors.ErrValidationFailed)
	}
	return id, nil
}

func (h *Handler) RegisterPublicRoutes(r *mux.Router) {
	r.HandleFunc("/raffles", h.ListRaffles).Methods("GET")
	r.HandleFunc("/raffles/{id:[0-9]+}", h.GetRaffle).Methods("GET")
	r.HandleFunc("/raffles/{id:[0-9]+}/purchase", h.CreatePurchase).Methods("POST")
	r.HandleFunc("/referrals/{code}", h.ValidateReferral).Methods("GET")
	r.HandleFunc("/admin/login", h.Login).Methods("POST")
}

// RegisterSearchRoutes expects a router mounted under /purchases, kept apart
// so it can be rate limited.
func (h *Handler) RegisterSearchRoutes(r *mux.Router) {
	r.HandleFunc("/search", h.SearchPurchases).Methods("GET")
}

// RegisterAdminRoutes expects a router already mounted under /admin.
func (h *Handler) RegisterAdminRoutes(r *mux.Router) {
	r.HandleFunc("/raffles", h.CreateRaffle).Methods("POST")
	r.HandleFunc("/referrals", h.CreateReferral).Methods("POST")
	r.HandleFunc("/purchases", h.ListPurchases).Methods("GET")
	r.HandleFunc("/purchases/{id:[0-9]+}/pay", h.ConfirmPurchase).Methods("PATCH")
	r.HandleFunc("/purchases/{id:[0-9]+}/reject", h.RejectPurchase).Methods("PATCH")
}

func (h *Handler) ListRaffles(w http.ResponseWriter, r *http.Request) {
	raffles, err := h.service.ListRaffles(r.Context())
	if err != nil {
		h.writeError(w, err)
		return
	}

	resp := make([]raffleResponse, 0, len(raffles))
	for _, raffle := range raffles {
		resp = append(resp, toRaffleResponse(raffle))
	}
	h.writeJSON(w, http.StatusOK, resp)
}

func (h *Handler) GetRaffle(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r)
	if err != nil {
		h.writeError(w, err)
		return
	}

	details, err := h.service.GetRaffle(r.Context(), id)
	if err != nil {
		h.writeError(w, err)
		return
	}

	resp := toRaffleResponse(details.Raffle)
	resp.ConfirmedTickets = &details.ConfirmedTickets
	h.writeJSON(w, http.StatusOK, resp)
}

func (h *Handler) CreatePurchase(w http.ResponseWriter, r *http.Request) {
	raffleID, err := pathID(r)
	if err != nil {
		h.writeError(w, err)
		return
	}

	var req purchaseRequest
	if !h.decode(w, r, &req) {
		return
	}
	purchase, err := validatePurchase(raffleID, req)
	if err != nil {
		h.writeError(w, err)
		return
	}

	result, err := h.service.CreatePurchase(r.Context(), purchase)
	if err != nil {
		h.writeError(w, err)
		return
	}

	h.writeJSON(w, http.StatusCreated, purchaseResultResponse{
		PurchaseID:   result.PurchaseID,
		Tickets:      result.Tickets,
		Subtotal:     result.Subtotal.InexactFloat64(),
		Discount:     result.Discount.InexactFloat64(),
		Amount:       result.Amount.InexactFloat64(),
		ReferralCode: result.ReferralCode,
		Status:       string(models.StatusPending),
	})
}

func (h *Handler) ValidateReferral(w http.ResponseWriter, r *http.Request) {
	check, err := h.service.ValidateReferral(r.Context(), mux.Vars(r)["code"])
	if err != nil {
		h.writeError(w, err)
		return
	}
	h.writeJSON(w, http.StatusOK, check)
}

func (h *Handler) SearchPurchases(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	filter := models.PurchaseFilter{
		NationalID:      q.Get("nationalId"),
		OperationNumber: q.Get("operationNumber"),
		Ticket:          q.Get("ticket"),
	}

	rows, err := h.service.SearchPurchases(r.Context(), filter)
	if err != nil {
		h.writeError(w, err)
		return
	}
	h.writeJSON(w, http.StatusOK, rows)
}

func (h *Handler) Login(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Username string `json:"username"`
		Password string `json:"password"`
	}
	if !h.decode(w, r, &req) {
		return
	}

	token, err := h.service.Login(r.Context(), req.Username, req.Password)
	if err != nil {
		h.writeError(w, err)
		return
	}
	h.writeJSON(w, http.StatusOK, map[string]string{"token": token})
}

func (h *Handler) CreateRaffle(w http.ResponseWriter, r *http.Request) {
	var req raffleRequest
	if !h.decode(w, r, &req) {
		return
	}

	raffle := &models.Raffle{
		Title:        req.Title,
		Description:  req.Description,
		TicketPrice:  req.TicketPrice,
		TotalTickets: req.TotalTickets,
		StartAt:      req.StartAt,
		EndAt:        req.EndAt,
	}
	id, err := h.service.CreateRaffle(r.Context(), raffle)
	if err != nil {
		h.writeError(w, err)
		return
	}
	h.writeJSON(w, http.StatusCreated, map[string]int64{"id": id})
}

func (h *Handler) CreateReferral(w http.ResponseWriter, r *http.Request) {
	var req referralRequest
	if !h.decode(w, r, &req) {
		return
	}

	referral := &models.Referral{
		Name:        req.Name,
		NationalID:  req.NationalID,
		Phone:       req.Phone,
		Email:       req.Email,
		Code:        req.Code,
		ActiveFrom:  req.ActiveFrom,
		ActiveUntil: req.ActiveUntil,
	}
	id, err := h.service.CreateReferral(r.Context(), referral)
	if err != nil {
		h.writeError(w, err)
		return
	}
	h.writeJSON(w, http.StatusCreated, map[string]int64{"id": id})
}

func (h *Handler) ListPurchases(w http.ResponseWriter, r *http.Request) {
	purchases, err := h.service.ListPurchases(r.Context())
	if err != nil {
		h.writeError(w, err)
		return
	}

	resp := make([]purchaseResponse, 0, len(purchases))
	for _, p := range purchases {
		resp = append(resp, toSummaryResponse(p))
	}
	h.writeJSON(w, http.StatusOK, resp)
}

func (h *Handler) ConfirmPurchase(w http.ResponseWriter, r *http.Request) {
	h.decide(w, r, h.service.ConfirmPurchase)
}

func (h *Handler) RejectPurchase(w http.ResponseWriter, r *http.Request) {
	h.decide(w, r, h.service.RejectPurchase)
}

func (h *Handler) decide(w http.ResponseWriter, r *http.Request, transition func(ctx context.Context, id int64) (*models.Decision, error)) {
	id, err := pathID(r)
	if err != nil {
		h.writeError(w, err)
		return
	}

	decision, err := transition(r.Context(), id)
	if err != nil {
		h.writeError(w, err)
		return
	}
	h.writeJSON(w, http.StatusOK, toDecisionResponse(decision))
}
