package service

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"testing"
	"time"

	"github.com/golang/mock/gomock"
	"github.com/honeynil/raffle-service/internal/models"
	"github.com/honeynil/raffle-service/internal/repository"
	repositorymocks "github.com/honeynil/raffle-service/internal/repository/mocks"
	pkgerrors "github.com/honeynil/raffle-service/pkg/errors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRaffleService_CreatePurchase(t *testing.T) {
	ctx := context.Background()

	t.Run("successful purchase", func(t *testing.T) {
		svc, store := newMemoryService(t, nil)
		raffleID := seedRaffle(t, store, 100, "25")

		result, err := svc.CreatePurchase(ctx, purchaseRequest(raffleID, "OP-0017", 2))
		require.NoError(t, err)
		assert.Equal(t, []string{"471001", "471002"}, result.Tickets)
		assert.Equal(t, "50.00", result.Subtotal.StringFixed(2))
		assert.Equal(t, "0.00", result.Discount.StringFixed(2))
		assert.Equal(t, "50.00", result.Amount.StringFixed(2))
		assert.Nil(t, result.ReferralCode)

		p, err := storedPurchase(ctx, store, result.PurchaseID)
		require.NoError(t, err)
		assert.Equal(t, models.StatusPending, p.Status)
		assert.Equal(t, models.PaymentMethodYape, p.Method)
		assert.Equal(t, 2, p.Quantity)

		raffle, err := store.GetByID(ctx, raffleID)
		require.NoError(t, err)
		assert.Equal(t, 0, raffle.SoldTickets)
		assert.Equal(t, 2, raffle.IssuedTickets)
	})

	t.Run("referral discount", func(t *testing.T) {
		svc, store := newMemoryService(t, nil)
		raffleID := seedRaffle(t, store, 100, "25")
		seedReferral(t, store, "ANA10", nil, nil)

		req := purchaseRequest(raffleID, "OP-1", 2)
		req.ReferralCode = " ANA10 "
		result, err := svc.CreatePurchase(ctx, req)
		require.NoError(t, err)
		assert.Equal(t, "6.00", result.Discount.StringFixed(2))
		assert.Equal(t, "44.00", result.Amount.StringFixed(2))
		require.NotNil(t, result.ReferralCode)
		assert.Equal(t, "ANA10", *result.ReferralCode)
	})

	t.Run("expired referral rejects the purchase", func(t *testing.T) {
		svc, store := newMemoryService(t, nil)
		raffleID := seedRaffle(t, store, 100, "25")
		yesterday := testNow.Add(-24 * time.Hour)
		seedReferral(t, store, "OLD", nil, &yesterday)

		req := purchaseRequest(raffleID, "OP-2", 1)
		req.ReferralCode = "OLD"
		_, err := svc.CreatePurchase(ctx, req)
		assert.ErrorIs(t, err, pkgerrors.ErrInvalidReferral)
		assert.ErrorIs(t, err, pkgerrors.ErrReferralExpired)
		assert.Equal(t, "referralCode", pkgerrors.Field(err))

		purchases, err := store.Purchases().List(ctx)
		require.NoError(t, err)
		assert.Empty(t, purchases)
	})

	t.Run("duplicate operation number has no side effects", func(t *testing.T) {
		svc, store := newMemoryService(t, nil)
		raffleID := seedRaffle(t, store, 100, "25")

		_, err := svc.CreatePurchase(ctx, purchaseRequest(raffleID, "OP-DUP", 3))
		require.NoError(t, err)
		before, err := store.GetByID(ctx, raffleID)
		require.NoError(t, err)

		_, err = svc.CreatePurchase(ctx, purchaseRequest(raffleID, "OP-DUP", 2))
		assert.ErrorIs(t, err, pkgerrors.ErrDuplicateOperationNumber)
		assert.Equal(t, "operationNumber", pkgerrors.Field(err))
		assert.False(t, pkgerrors.IsRetryable(err))

		after, err := store.GetByID(ctx, raffleID)
		require.NoError(t, err)
		assert.Equal(t, before.IssuedTickets, after.IssuedTickets)
		assert.Equal(t, before.SoldTickets, after.SoldTickets)

		purchases, err := store.Purchases().List(ctx)
		require.NoError(t, err)
		assert.Len(t, purchases, 1)
	})

	t.Run("insufficient inventory counts only confirmed tickets", func(t *testing.T) {
		svc, store := newMemoryService(t, nil)
		raffleID := seedRaffle(t, store, 3, "10")

		first, err := svc.CreatePurchase(ctx, purchaseRequest(raffleID, "OP-A", 2))
		require.NoError(t, err)

		// pending purchases do not hold inventory
		_, err = svc.CreatePurchase(ctx, purchaseRequest(raffleID, "OP-B", 3))
		require.NoError(t, err)

		_, err = svc.ConfirmPurchase(ctx, first.PurchaseID)
		require.NoError(t, err)

		_, err = svc.CreatePurchase(ctx, purchaseRequest(raffleID, "OP-C", 2))
		assert.ErrorIs(t, err, pkgerrors.ErrInsufficientInventory)

		_, err = svc.CreatePurchase(ctx, purchaseRequest(raffleID, "OP-D", 1))
		assert.NoError(t, err)
	})

	t.Run("issuance gaps are never reused", func(t *testing.T) {
		svc, store := newMemoryService(t, nil)
		raffleID := seedRaffle(t, store, 100, "10")

		first, err := svc.CreatePurchase(ctx, purchaseRequest(raffleID, "OP-10", 2))
		require.NoError(t, err)
		_, err = svc.RejectPurchase(ctx, first.PurchaseID)
		require.NoError(t, err)

		second, err := svc.CreatePurchase(ctx, purchaseRequest(raffleID, "OP-11", 1))
		require.NoError(t, err)
		assert.Equal(t, []string{"411003"}, second.Tickets)
	})

	t.Run("unknown raffle", func(t *testing.T) {
		svc, _ := newMemoryService(t, nil)
		_, err := svc.CreatePurchase(ctx, purchaseRequest(42, "OP-X", 1))
		assert.ErrorIs(t, err, pkgerrors.ErrRaffleNotFound)
		assert.ErrorIs(t, err, pkgerrors.ErrNotFound)
	})

	t.Run("validation", func(t *testing.T) {
		svc, store := newMemoryService(t, nil)
		raffleID := seedRaffle(t, store, 10, "10")

		_, err := svc.CreatePurchase(ctx, purchaseRequest(raffleID, "OP-V", 0))
		assert.ErrorIs(t, err, pkgerrors.ErrValidationFailed)
		assert.Equal(t, "quantity", pkgerrors.Field(err))

		_, err = svc.CreatePurchase(ctx, purchaseRequest(raffleID, "  ", 1))
		assert.ErrorIs(t, err, pkgerrors.ErrValidationFailed)
		assert.Equal(t, "operationNumber", pkgerrors.Field(err))
	})
}

func TestRaffleService_CreatePurchase_Concurrent(t *testing.T) {
	ctx := context.Background()
	svc, store := newMemoryService(t, nil)
	raffleID := seedRaffle(t, store, 1000, "5")

	const buyers = 25
	var wg sync.WaitGroup
	results := make([]*models.PurchaseResult, buyers)
	errs := make([]error, buyers)
	for i := 0; i < buyers; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			req := purchaseRequest(raffleID, fmt.Sprintf("OP-%03d", i), 1+i%4)
			results[i], errs[i] = svc.CreatePurchase(ctx, req)
		}(i)
	}
	wg.Wait()

	seen := map[string]bool{}
	issued := 0
	for i := 0; i < buyers; i++ {
		require.NoError(t, errs[i])
		assert.Len(t, results[i].Tickets, 1+i%4)
		issued += len(results[i].Tickets)
		for _, code := range results[i].Tickets {
			// codes differ in prefix, so compare correlatives
			suffix := code[2:]
			assert.False(t, seen[suffix], "correlative %s issued twice", suffix)
			seen[suffix] = true
		}
	}

	raffle, err := store.GetByID(ctx, raffleID)
	require.NoError(t, err)
	assert.Equal(t, issued, raffle.IssuedTickets)
}

func TestRaffleService_LastTicketRace(t *testing.T) {
	ctx := context.Background()
	svc, store := newMemoryService(t, nil)
	raffleID := seedRaffle(t, store, 1, "25")

	var wg sync.WaitGroup
	errs := make([]error, 2)
	for i := 0; i < 2; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			result, err := svc.CreatePurchase(ctx, purchaseRequest(raffleID, fmt.Sprintf("LAST-%d", i), 1))
			if err != nil {
				errs[i] = err
				return
			}
			_, errs[i] = svc.ConfirmPurchase(ctx, result.PurchaseID)
		}(i)
	}
	wg.Wait()

	succeeded := 0
	for _, err := range errs {
		if err == nil {
			succeeded++
			continue
		}
		assert.True(t, errors.Is(err, pkgerrors.ErrInsufficientInventory) || errors.Is(err, pkgerrors.ErrTransactionConflict), err)
	}
	assert.Equal(t, 1, succeeded)

	raffle, err := store.GetByID(ctx, raffleID)
	require.NoError(t, err)
	assert.Equal(t, 1, raffle.SoldTickets)
	confirmed, err := store.ConfirmedTickets(ctx, raffleID)
	require.NoError(t, err)
	assert.Equal(t, 1, confirmed)
}

func TestRaffleService_RunInTx_Retries(t *testing.T) {
	ctx := context.Background()
	conflict := fmt.Errorf("%w: could not serialize access", pkgerrors.ErrTransactionConflict)

	t.Run("retries conflicts then succeeds", func(t *testing.T) {
		ctrl := gomock.NewController(t)
		defer ctrl.Finish()

		svc, store := newMemoryService(t, nil)
		raffleID := seedRaffle(t, store, 10, "25")
		txManager := repositorymocks.NewMockTxManager(ctrl)
		svc.txManager = txManager

		gomock.InOrder(
			txManager.EXPECT().WithinTx(gomock.Any(), gomock.Any()).Return(conflict).Times(2),
			txManager.EXPECT().WithinTx(gomock.Any(), gomock.Any()).DoAndReturn(
				func(ctx context.Context, fn func(context.Context, repository.Tx) error) error {
					return store.WithinTx(ctx, fn)
				}),
		)

		result, err := svc.CreatePurchase(ctx, purchaseRequest(raffleID, "OP-R", 1))
		require.NoError(t, err)
		assert.Len(t, result.Tickets, 1)
	})

	t.Run("gives up after max retries", func(t *testing.T) {
		ctrl := gomock.NewController(t)
		defer ctrl.Finish()

		svc, _ := newMemoryService(t, nil)
		txManager := repositorymocks.NewMockTxManager(ctrl)
		svc.txManager = txManager
		txManager.EXPECT().WithinTx(gomock.Any(), gomock.Any()).Return(conflict).Times(svc.opts.TxMaxRetries + 1)

		_, err := svc.CreatePurchase(ctx, purchaseRequest(1, "OP-R", 1))
		assert.ErrorIs(t, err, pkgerrors.ErrTransactionConflict)
		assert.True(t, pkgerrors.IsRetryable(err))
	})

	t.Run("does not retry business errors", func(t *testing.T) {
		ctrl := gomock.NewController(t)
		defer ctrl.Finish()

		svc, _ := newMemoryService(t, nil)
		txManager := repositorymocks.NewMockTxManager(ctrl)
		svc.txManager = txManager
		txManager.EXPECT().WithinTx(gomock.Any(), gomock.Any()).Return(pkgerrors.ErrInsufficientInventory).Times(1)

		_, err := svc.CreatePurchase(ctx, purchaseRequest(1, "OP-R", 1))
		assert.ErrorIs(t, err, pkgerrors.ErrInsufficientInventory)
	})

	t.Run("attempt timeout surfaces as retryable timeout", func(t *testing.T) {
		ctrl := gomock.NewController(t)
		defer ctrl.Finish()

		svc, _ := newMemoryService(t, nil)
		svc.opts.TxTimeout = 10 * time.Millisecond
		svc.opts.TxMaxRetries = 1
		txManager := repositorymocks.NewMockTxManager(ctrl)
		svc.txManager = txManager
		txManager.EXPECT().WithinTx(gomock.Any(), gomock.Any()).DoAndReturn(
			func(ctx context.Context, fn func(context.Context, repository.Tx) error) error {
				<-ctx.Done()
				return ctx.Err()
			}).Times(2)

		_, err := svc.CreatePurchase(ctx, purchaseRequest(1, "OP-T", 1))
		assert.ErrorIs(t, err, pkgerrors.ErrTransactionTimeout)
	})
}
