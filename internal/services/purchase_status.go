package service

import (
	"context"
	"log/slog"

	"github.com/honeynil/raffle-service/internal/infrastructure/auth"
	"github.com/honeynil/raffle-service/internal/models"
	"github.com/honeynil/raffle-service/internal/repository"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
)

// ConfirmPurchase marks a payment as verified. Confirming a PAID purchase
// changes nothing; a FAILED purchase can never become PAID.
func (s *raffleService) ConfirmPurchase(ctx context.Context, id int64) (*models.Decision, error) {
	tracer := otel.Tracer(tracerName)
	ctx, span := tracer.Start(ctx, "ConfirmPurchase")
	span.SetAttributes(attribute.Int64("purchase_id", id))
	defer span.End()

	var (
		purchase *models.Purchase
		changed  bool
	)
	err := s.runInTx(ctx, "confirm_purchase", func(ctx context.Context, tx repository.Tx) error {
		p, err := tx.LockPurchase(ctx, id)
		if err != nil {
			return err
		}
		purchase, changed = p, false

		switch p.Status {
		case models.StatusPaid:
			return nil
		case models.StatusFailed:
			return describeTransition(p.Status, models.StatusPaid)
		}

		if _, err := tx.AddSoldTickets(ctx, p.RaffleID, p.Quantity); err != nil {
			return err
		}
		if err := tx.SetPurchaseStatus(ctx, p.ID, models.StatusPaid); err != nil {
			return err
		}
		p.Status = models.StatusPaid
		changed = true
		return nil
	})
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, "confirm failed")
		slog.Error("failed to confirm purchase", "purchase_id", id, "admin", adminOf(ctx), "error", err)
		return nil, err
	}

	if changed {
		s.invalidateRaffle(ctx, purchase.RaffleID)
		slog.Info("purchase confirmed", "purchase_id", id, "raffle_id", purchase.RaffleID, "quantity", purchase.Quantity, "admin", adminOf(ctx))
	}

	title, referral := s.notificationContext(ctx, purchase)
	buyer, owner := s.opts.Templates.Confirmed(purchase, title, referral)
	return s.publishDecision(ctx, purchase, changed, buyer, owner), nil
}

// RejectPurchase marks a payment as not verified. Rejecting a PAID purchase
// returns its tickets to the sold counter; rejecting a FAILED one is a no-op.
func (s *raffleService) RejectPurchase(ctx context.Context, id int64) (*models.Decision, error) {
	tracer := otel.Tracer(tracerName)
	ctx, span := tracer.Start(ctx, "RejectPurchase")
	span.SetAttributes(attribute.Int64("purchase_id", id))
	defer span.End()

	var (
		purchase *models.Purchase
		changed  bool
	)
	err := s.runInTx(ctx, "reject_purchase", func(ctx context.Context, tx repository.Tx) error {
		p, err := tx.LockPurchase(ctx, id)
		if err != nil {
			return err
		}
		purchase, changed = p, false

		switch p.Status {
		case models.StatusFailed:
			return nil
		case models.StatusPaid:
			if _, err := tx.ReleaseSoldTickets(ctx, p.RaffleID, p.Quantity); err != nil {
				return err
			}
		}

		if err := tx.SetPurchaseStatus(ctx, p.ID, models.StatusFailed); err != nil {
			return err
		}
		p.Status = models.StatusFailed
		changed = true
		return nil
	})
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, "reject failed")
		slog.Error("failed to reject purchase", "purchase_id", id, "admin", adminOf(ctx), "error", err)
		return nil, err
	}

	if changed {
		s.invalidateRaffle(ctx, purchase.RaffleID)
		slog.Info("purchase rejected", "purchase_id", id, "raffle_id", purchase.RaffleID, "admin", adminOf(ctx))
	}

	title, referral := s.notificationContext(ctx, purchase)
	buyer, owner := s.opts.Templates.Rejected(purchase, title, referral)
	return s.publishDecision(ctx, purchase, changed, buyer, owner), nil
}

// notificationContext loads what the message templates need. Lookup failures
// only degrade the message.
func (s *raffleService) notificationContext(ctx context.Context, p *models.Purchase) (string, *models.Referral) {
	var title string
	if raffle, err := s.raffles.GetByID(ctx, p.RaffleID); err != nil {
		slog.Error("failed to load raffle for notification", "raffle_id", p.RaffleID, "error", err)
	} else {
		title = raffle.Title
	}

	if p.ReferralCode == nil {
		return title, nil
	}
	referral, err := s.referrals.GetByCode(ctx, *p.ReferralCode)
	if err != nil {
		slog.Error("failed to load referral for notification", "code", *p.ReferralCode, "error", err)
		return title, nil
	}
	if referral.Email == "" {
		return title, nil
	}
	return title, referral
}

func (s *raffleService) publishDecision(ctx context.Context, p *models.Purchase, changed bool, buyer models.Notification, owner *models.Notification) *models.Decision {
	decision := &models.Decision{
		Purchase:     p,
		Changed:      changed,
		BuyerMessage: buyer.Body,
		DecidedBy:    adminOf(ctx),
	}

	if err := s.notifier.Publish(ctx, buyer); err != nil {
		slog.Error("failed to notify buyer", "purchase_id", p.ID, "kind", buyer.Kind, "error", err)
		decision.BuyerError = err.Error()
	} else {
		decision.BuyerNotified = true
	}

	if owner != nil {
		message := owner.Body
		decision.ReferralMessage = &message
		notified := true
		if err := s.notifier.Publish(ctx, *owner); err != nil {
			slog.Error("failed to notify referral owner", "purchase_id", p.ID, "kind", owner.Kind, "error", err)
			decision.ReferralError = err.Error()
			notified = false
		}
		decision.ReferralNotified = &notified
	}
	return decision
}

func adminOf(ctx context.Context) string {
	subject, _ := auth.AdminFromContext(ctx)
	return subject
}
