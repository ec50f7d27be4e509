package service

import (
	"context"
	stderrors "errors"
	"fmt"
	"strings"

	"github.com/honeynil/raffle-service/internal/infrastructure/observability"
	"github.com/honeynil/raffle-service/internal/models"
	"github.com/honeynil/raffle-service/internal/repository"
	pkgerrors "github.com/honeynil/raffle-service/pkg/errors"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
)

// CreatePurchase records a PENDING purchase and issues its ticket codes.
// Sold inventory is untouched until an admin confirms the payment.
func (s *raffleService) CreatePurchase(ctx context.Context, req models.PurchaseRequest) (*models.PurchaseResult, error) {
	tracer := otel.Tracer(tracerName)
	ctx, span := tracer.Start(ctx, "CreatePurchase")
	span.SetAttributes(
		attribute.Int64("raffle_id", req.RaffleID),
		attribute.Int("quantity", req.Quantity),
	)
	defer span.End()

	req.OperationNumber = strings.TrimSpace(req.OperationNumber)
	req.NationalID = strings.TrimSpace(req.NationalID)
	switch {
	case req.Quantity < 1:
		return nil, s.purchaseFailed(pkgerrors.NewFieldError("quantity", pkgerrors.ErrValidationFailed))
	case req.OperationNumber == "":
		return nil, s.purchaseFailed(pkgerrors.NewFieldError("operationNumber", pkgerrors.ErrValidationFailed))
	case req.NationalID == "":
		return nil, s.purchaseFailed(pkgerrors.NewFieldError("nationalId", pkgerrors.ErrValidationFailed))
	}

	var result *models.PurchaseResult
	err := s.runInTx(ctx, "create_purchase", func(ctx context.Context, tx repository.Tx) error {
		raffle, err := tx.LockRaffle(ctx, req.RaffleID)
		if err != nil {
			return err
		}

		exists, err := tx.OperationNumberExists(ctx, req.OperationNumber)
		if err != nil {
			return err
		}
		if exists {
			return pkgerrors.NewFieldError("operationNumber", pkgerrors.ErrDuplicateOperationNumber)
		}

		code, err := ResolveReferral(ctx, tx.GetReferralByCode, req.ReferralCode, s.now())
		if err != nil {
			if stderrors.Is(err, pkgerrors.ErrInvalidReferral) {
				return pkgerrors.NewFieldError("referralCode", err)
			}
			return err
		}

		confirmed, err := tx.ConfirmedTickets(ctx, raffle.ID)
		if err != nil {
			return err
		}
		if confirmed+req.Quantity > raffle.TotalTickets {
			return pkgerrors.NewFieldError("quantity", pkgerrors.ErrInsufficientInventory)
		}

		issuedBefore, err := tx.ReserveIssuance(ctx, raffle.ID, req.Quantity)
		if err != nil {
			return err
		}
		tickets, err := TicketCodes(req.NationalID, req.OperationNumber, issuedBefore, req.Quantity)
		if err != nil {
			return err
		}

		quote := PriceTickets(req.Quantity, raffle.TicketPrice, code != "")
		purchase := &models.Purchase{
			RaffleID:        raffle.ID,
			Name:            req.Name,
			NationalID:      req.NationalID,
			Phone:           req.Phone,
			Email:           req.Email,
			Quantity:        req.Quantity,
			Amount:          quote.Total,
			Tickets:         tickets,
			Method:          models.PaymentMethodYape,
			Status:          models.StatusPending,
			OperationNumber: req.OperationNumber,
		}
		if code != "" {
			purchase.ReferralCode = &code
		}
		if err := tx.InsertPurchase(ctx, purchase); err != nil {
			return err
		}

		result = &models.PurchaseResult{
			PurchaseID:   purchase.ID,
			Tickets:      tickets,
			Subtotal:     quote.Subtotal,
			Discount:     quote.Discount,
			Amount:       quote.Total,
			ReferralCode: purchase.ReferralCode,
		}
		return nil
	})
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, "purchase failed")
		observability.WithContext(ctx).Error("failed to create purchase",
			"raffle_id", req.RaffleID,
			"operation_number", req.OperationNumber,
			"quantity", req.Quantity,
			"error", err)
		return nil, s.purchaseFailed(err)
	}

	observability.PurchasesTotal.WithLabelValues("created").Inc()
	observability.WithContext(ctx).Info("purchase created",
		"purchase_id", result.PurchaseID,
		"raffle_id", req.RaffleID,
		"tickets", len(result.Tickets),
		"amount", result.Amount.StringFixed(2))
	return result, nil
}

func (s *raffleService) purchaseFailed(err error) error {
	observability.PurchasesTotal.WithLabelValues(purchaseOutcome(err)).Inc()
	return err
}

func purchaseOutcome(err error) string {
	switch {
	case stderrors.Is(err, pkgerrors.ErrValidationFailed):
		return "invalid"
	case stderrors.Is(err, pkgerrors.ErrNotFound):
		return "not_found"
	case stderrors.Is(err, pkgerrors.ErrDuplicateOperationNumber):
		return "duplicate"
	case stderrors.Is(err, pkgerrors.ErrInvalidReferral):
		return "invalid_referral"
	case stderrors.Is(err, pkgerrors.ErrInsufficientInventory):
		return "sold_out"
	case pkgerrors.IsRetryable(err):
		return "conflict"
	}
	return "error"
}

// describeTransition is used for invalid transition errors.
func describeTransition(from, to models.PurchaseStatus) error {
	return fmt.Errorf("%w: %s -> %s", pkgerrors.ErrInvalidTransition, from, to)
}
