package models

import (
	"time"

	"github.com/shopspring/decimal"
)

type Raffle struct {
	ID           int64           `json:"id"`
	Title        string          `json:"title"`
	Description  string          `json:"description"`
	TicketPrice  decimal.Decimal `json:"ticketPrice"`
	TotalTickets int             `json:"totalTickets"`
	SoldTickets  int             `json:"soldTickets"`
	// IssuedTickets counts every ticket ever handed out, failed purchases included.
	IssuedTickets int        `json:"-"`
	StartAt       *time.Time `json:"startAt,omitempty"`
	EndAt         *time.Time `json:"endAt,omitempty"`
	CreatedAt     time.Time  `json:"createdAt"`
}

// RaffleDetails adds the tickets counted against the ceiling.
type RaffleDetails struct {
	Raffle
	ConfirmedTickets int `json:"confirmedTickets"`
}
