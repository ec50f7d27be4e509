package repository

import (
	"context"

	"github.com/honeynil/raffle-service/internal/models"
)

//go:generate mockgen -destination=mocks/mock_repository.go -package=mocks github.com/honeynil/raffle-service/internal/repository PurchaseRepository,RaffleRepository,ReferralRepository,TxManager

// Tx is the unit of work seen by purchase creation and the confirm/reject
// transitions. Inventory counters are only reachable through atomic
// increment/decrement methods, never through a read-then-write pair.
type Tx interface {
	// LockRaffle loads the raffle and holds its row until the transaction ends.
	LockRaffle(ctx context.Context, raffleID int64) (*models.Raffle, error)
	OperationNumberExists(ctx context.Context, operationNumber string) (bool, error)
	GetReferralByCode(ctx context.Context, code string) (*models.Referral, error)
	// ConfirmedTickets sums the quantity of PAID purchases of the raffle.
	ConfirmedTickets(ctx context.Context, raffleID int64) (int, error)
	// ReserveIssuance adds quantity to the raffle's issuance counter and returns
	// the value it had before.
	ReserveIssuance(ctx context.Context, raffleID int64, quantity int) (int, error)
	InsertPurchase(ctx context.Context, purchase *models.Purchase) error

	LockPurchase(ctx context.Context, id int64) (*models.Purchase, error)
	SetPurchaseStatus(ctx context.Context, id int64, status models.PurchaseStatus) error
	// AddSoldTickets fails with ErrInsufficientInventory instead of passing total_tickets.
	AddSoldTickets(ctx context.Context, raffleID int64, quantity int) (int, error)
	// ReleaseSoldTickets never drives the counter below zero.
	ReleaseSoldTickets(ctx context.Context, raffleID int64, quantity int) (int, error)
}

// TxManager runs fn inside one isolated transaction. A nil return from fn
// commits; any error rolls everything back. Storage conflicts surface as
// ErrTransactionConflict so callers may retry.
type TxManager interface {
	WithinTx(ctx context.Context, fn func(ctx context.Context, tx Tx) error) error
}
