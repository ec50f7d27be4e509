package service

import (
	"context"
	"testing"
	"time"

	"github.com/cenkalti/backoff/v4"
	"github.com/honeynil/raffle-service/internal/models"
	"github.com/honeynil/raffle-service/internal/notify"
	"github.com/honeynil/raffle-service/internal/repository"
	"github.com/honeynil/raffle-service/internal/repository/memory"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/require"
)

var testNow = time.Date(2025, 6, 15, 12, 0, 0, 0, time.UTC)

type discardNotifier struct{}

func (discardNotifier) Publish(ctx context.Context, n models.Notification) error { return nil }

func newMemoryService(t *testing.T, notifier notify.Notifier) (*raffleService, *memory.Store) {
	t.Helper()
	if notifier == nil {
		notifier = discardNotifier{}
	}
	store := memory.NewStore()
	svc := NewRaffleService(store, store.Referrals(), store.Purchases(), store, notifier, nil, Options{
		TxTimeout:    time.Second,
		TxMaxRetries: 3,
		Templates:    notify.NewTemplates("Rifas Test", "WhatsApp 999 999 999"),
	})
	svc.now = func() time.Time { return testNow }
	svc.newBackOff = func() backoff.BackOff { return &backoff.ZeroBackOff{} }
	return svc, store
}

// storedPurchase reads a purchase back through a read-only unit of work.
func storedPurchase(ctx context.Context, store *memory.Store, id int64) (*models.Purchase, error) {
	var p *models.Purchase
	err := store.WithinTx(ctx, func(ctx context.Context, tx repository.Tx) error {
		var err error
		p, err = tx.LockPurchase(ctx, id)
		return err
	})
	return p, err
}

func seedRaffle(t *testing.T, store *memory.Store, total int, price string) int64 {
	t.Helper()
	id, err := store.Create(context.Background(), &models.Raffle{
		Title:        "Honda Wave 2025",
		TicketPrice:  decimal.RequireFromString(price),
		TotalTickets: total,
	})
	require.NoError(t, err)
	return id
}

func seedReferral(t *testing.T, store *memory.Store, code string, from, until *time.Time) {
	t.Helper()
	_, err := store.Referrals().Create(context.Background(), &models.Referral{
		Name:        "ANA TORRES",
		NationalID:  "40111222",
		Phone:       "987654321",
		Email:       "ana@example.com",
		Code:        code,
		ActiveFrom:  from,
		ActiveUntil: until,
	})
	require.NoError(t, err)
}

func purchaseRequest(raffleID int64, op string, quantity int) models.PurchaseRequest {
	return models.PurchaseRequest{
		RaffleID:        raffleID,
		Name:            "JUAN PEREZ",
		NationalID:      "45678912",
		Phone:           "912345678",
		Email:           "juan@example.com",
		Quantity:        quantity,
		OperationNumber: op,
	}
}
