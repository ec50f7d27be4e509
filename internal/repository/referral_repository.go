package repository

import (
	"context"

	"github.com/honeynil/raffle-service/internal/models"
)

type ReferralRepository interface {
	Create(ctx context.Context, referral *models.Referral) (int64, error)
	GetByCode(ctx context.Context, code string) (*models.Referral, error)
}
