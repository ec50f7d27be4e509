package repository

import (
	"context"

	"github.com/honeynil/raffle-service/internal/models"
)

type PurchaseRepository interface {
	List(ctx context.Context) ([]models.PurchaseSummary, error)
	Search(ctx context.Context, filter models.PurchaseFilter) ([]models.PurchaseSummary, error)
}
