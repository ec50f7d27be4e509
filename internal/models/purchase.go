package models

import (
	"time"

	"github.com/shopspring/decimal"
)

type Purchase struct {
	ID              int64           `json:"id"`
	RaffleID        int64           `json:"raffleId"`
	Name            string          `json:"name"`
	NationalID      string          `json:"nationalId"`
	Phone           string          `json:"phone"`
	Email           string          `json:"email"`
	Quantity        int             `json:"quantity"`
	Amount          decimal.Decimal `json:"amount"`
	Tickets         []string        `json:"tickets"`
	Method          string          `json:"method"`
	Status          PurchaseStatus  `json:"status"`
	OperationNumber string          `json:"operationNumber"`
	ReferralCode    *string         `json:"referralCode"`
	CreatedAt       time.Time       `json:"createdAt"`
	UpdatedAt       time.Time       `json:"updatedAt"`
}

type PurchaseStatus string

const (
	StatusPending PurchaseStatus = "PENDING"
	StatusPaid    PurchaseStatus = "PAID"
	StatusFailed  PurchaseStatus = "FAILED"
)

func (s PurchaseStatus) Valid() bool {
	switch s {
	case StatusPending, StatusPaid, StatusFailed:
		return true
	}
	return false
}

// PaymentMethodYape is the only payment channel accepted.
const PaymentMethodYape = "yape"

// PurchaseRequest is an already shape-validated purchase attempt.
type PurchaseRequest struct {
	RaffleID        int64
	Name            string
	NationalID      string
	Phone           string
	Email           string
	Quantity        int
	OperationNumber string
	ReferralCode    string
}

type PurchaseResult struct {
	PurchaseID   int64           `json:"purchaseId"`
	Tickets      []string        `json:"tickets"`
	Subtotal     decimal.Decimal `json:"subtotal"`
	Discount     decimal.Decimal `json:"discount"`
	Amount       decimal.Decimal `json:"amount"`
	ReferralCode *string         `json:"referralCode"`
}

// Decision is the outcome of an admin confirm or reject.
type Decision struct {
	Purchase        *Purchase `json:"purchase"`
	Changed         bool      `json:"changed"`
	BuyerMessage    string    `json:"buyerMessage"`
	ReferralMessage *string   `json:"referralMessage"`
	BuyerNotified   bool      `json:"buyerNotified"`
	BuyerError      string    `json:"buyerError,omitempty"`
	// ReferralNotified stays nil when the purchase carries no referral owner to notify.
	ReferralNotified *bool  `json:"referralNotified"`
	ReferralError    string `json:"referralError,omitempty"`
	// DecidedBy is the admin subject that issued the decision.
	DecidedBy string `json:"decidedBy,omitempty"`
}

// PurchaseSummary is the admin listing row.
type PurchaseSummary struct {
	Purchase
	RaffleTitle   string  `json:"raffleTitle"`
	ReferralName  *string `json:"referralName"`
	ReferralEmail *string `json:"referralEmail"`
}

type PurchaseFilter struct {
	NationalID      string
	OperationNumber string
	Ticket          string
}

func (f PurchaseFilter) Empty() bool {
	return f.NationalID == "" && f.OperationNumber == "" && f.Ticket == ""
}

// TicketLookup is one public search row, one per ticket.
type TicketLookup struct {
	BuyerName       string         `json:"buyerName"`
	Ticket          string         `json:"ticket"`
	OperationNumber string         `json:"operationNumber"`
	PurchasedAt     time.Time      `json:"purchasedAt"`
	Status          PurchaseStatus `json:"status"`
	StatusText      string         `json:"statusText"`
	RaffleTitle     string         `json:"raffleTitle"`
}
