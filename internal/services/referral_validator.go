package service

import (
	"context"
	stderrors "errors"
	"fmt"
	"strings"
	"time"

	"github.com/honeynil/raffle-service/internal/models"
	pkgerrors "github.com/honeynil/raffle-service/pkg/errors"
)

// ReferralLookup fetches a referral by its exact code.
type ReferralLookup func(ctx context.Context, code string) (*models.Referral, error)

// ResolveReferral turns a raw, possibly blank, referral code into the stored
// code it names. A blank code means no referral and is not an error.
func ResolveReferral(ctx context.Context, lookup ReferralLookup, raw string, now time.Time) (string, error) {
	code := strings.TrimSpace(raw)
	if code == "" {
		return "", nil
	}

	referral, err := lookup(ctx, code)
	if stderrors.Is(err, pkgerrors.ErrReferralNotFound) || (err == nil && referral == nil) {
		return "", pkgerrors.ErrReferralNotFound
	}
	if err != nil {
		return "", fmt.Errorf("failed to look up referral: %w", err)
	}
	if err := checkReferralWindow(referral, now); err != nil {
		return "", err
	}
	return referral.Code, nil
}

func checkReferralWindow(referral *models.Referral, now time.Time) error {
	if referral.ActiveFrom != nil && now.Before(*referral.ActiveFrom) {
		return pkgerrors.ErrReferralNotYetActive
	}
	if referral.ActiveUntil != nil && now.After(*referral.ActiveUntil) {
		return pkgerrors.ErrReferralExpired
	}
	return nil
}

// referralReason renders an invalid-referral error for the public lookup.
func referralReason(err error) string {
	switch {
	case stderrors.Is(err, pkgerrors.ErrReferralNotFound):
		return "not_found"
	case stderrors.Is(err, pkgerrors.ErrReferralNotYetActive):
		return "not_active_yet"
	case stderrors.Is(err, pkgerrors.ErrReferralExpired):
		return "expired"
	}
	return "invalid"
}
