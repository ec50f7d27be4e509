package handler

import (
	"time"

	"github.com/honeynil/raffle-service/internal/models"
	"github.com/shopspring/decimal"
)

type purchaseRequest struct {
	Name            string `json:"name"`
	NationalID      string `json:"nationalId"`
	Phone           string `json:"phone"`
	Email           string `json:"email"`
	Quantity        int    `json:"quantity"`
	OperationNumber string `json:"operationNumber"`
	ReferralCode    string `json:"referralCode"`
}

type raffleRequest struct {
	Title        string          `json:"title"`
	Description  string          `json:"description"`
	TicketPrice  decimal.Decimal `json:"ticketPrice"`
	TotalTickets int             `json:"totalTickets"`
	StartAt      *time.Time      `json:"startAt"`
	EndAt        *time.Time      `json:"endAt"`
}

type referralRequest struct {
	Name        string     `json:"name"`
	NationalID  string     `json:"nationalId"`
	Phone       string     `json:"phone"`
	Email       string     `json:"email"`
	Code        string     `json:"code"`
	ActiveFrom  *time.Time `json:"activeFrom"`
	ActiveUntil *time.Time `json:"activeUntil"`
}

type raffleResponse struct {
	ID               int64      `json:"id"`
	Title            string     `json:"title"`
	Description      string     `json:"description"`
	TicketPrice      float64    `json:"ticketPrice"`
	TotalTickets     int        `json:"totalTickets"`
	SoldTickets      int        `json:"soldTickets"`
	ConfirmedTickets *int       `json:"confirmedTickets,omitempty"`
	StartAt          *time.Time `json:"startAt,omitempty"`
	EndAt            *time.Time `json:"endAt,omitempty"`
	CreatedAt        time.Time  `json:"createdAt"`
}

func toRaffleResponse(r models.Raffle) raffleResponse {
	return raffleResponse{
		ID:           r.ID,
		Title:        r.Title,
		Description:  r.Description,
		TicketPrice:  r.TicketPrice.InexactFloat64(),
		TotalTickets: r.TotalTickets,
		SoldTickets:  r.SoldTickets,
		StartAt:      r.StartAt,
		EndAt:        r.EndAt,
		CreatedAt:    r.CreatedAt,
	}
}

type purchaseResultResponse struct {
	PurchaseID   int64    `json:"purchaseId"`
	Tickets      []string `json:"tickets"`
	Subtotal     float64  `json:"subtotal"`
	Discount     float64  `json:"discount"`
	Amount       float64  `json:"amount"`
	ReferralCode *string  `json:"referralCode"`
	Status       string   `json:"status"`
}

type purchaseResponse struct {
	ID              int64     `json:"id"`
	RaffleID        int64     `json:"raffleId"`
	RaffleTitle     string    `json:"raffleTitle,omitempty"`
	Name            string    `json:"name"`
	NationalID      string    `json:"nationalId"`
	Phone           string    `json:"phone"`
	Email           string    `json:"email"`
	Quantity        int       `json:"quantity"`
	Amount          float64   `json:"amount"`
	Tickets         []string  `json:"tickets"`
	Method          string    `json:"method"`
	Status          string    `json:"status"`
	OperationNumber string    `json:"operationNumber"`
	ReferralCode    *string   `json:"referralCode"`
	ReferralName    *string   `json:"referralName,omitempty"`
	ReferralEmail   *string   `json:"referralEmail,omitempty"`
	CreatedAt       time.Time `json:"createdAt"`
}

func toPurchaseResponse(p models.Purchase) purchaseResponse {
	return purchaseResponse{
		ID:              p.ID,
		RaffleID:        p.RaffleID,
		Name:            p.Name,
		NationalID:      p.NationalID,
		Phone:           p.Phone,
		Email:           p.Email,
		Quantity:        p.Quantity,
		Amount:          p.Amount.InexactFloat64(),
		Tickets:         p.Tickets,
		Method:          p.Method,
		Status:          string(p.Status),
		OperationNumber: p.OperationNumber,
		ReferralCode:    p.ReferralCode,
		CreatedAt:       p.CreatedAt,
	}
}

func toSummaryResponse(s models.PurchaseSummary) purchaseResponse {
	resp := toPurchaseResponse(s.Purchase)
	resp.RaffleTitle = s.RaffleTitle
	resp.ReferralName = s.ReferralName
	resp.ReferralEmail = s.ReferralEmail
	return resp
}

type decisionResponse struct {
	Purchase         purchaseResponse `json:"purchase"`
	Changed          bool             `json:"changed"`
	BuyerMessage     string           `json:"buyerMessage"`
	ReferralMessage  *string          `json:"referralMessage"`
	BuyerNotified    bool             `json:"buyerNotified"`
	BuyerError       string           `json:"buyerError,omitempty"`
	ReferralNotified *bool            `json:"referralNotified"`
	ReferralError    string           `json:"referralError,omitempty"`
	DecidedBy        string           `json:"decidedBy,omitempty"`
}

func toDecisionResponse(d *models.Decision) decisionResponse {
	return decisionResponse{
		Purchase:         toPurchaseResponse(*d.Purchase),
		Changed:          d.Changed,
		BuyerMessage:     d.BuyerMessage,
		ReferralMessage:  d.ReferralMessage,
		BuyerNotified:    d.BuyerNotified,
		BuyerError:       d.BuyerError,
		ReferralNotified: d.ReferralNotified,
		ReferralError:    d.ReferralError,
		DecidedBy:        d.DecidedBy,
	}
}
