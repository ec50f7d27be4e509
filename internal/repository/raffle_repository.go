package repository

import (
	"context"

	"github.com/honeynil/raffle-service/internal/models"
)

type RaffleRepository interface {
	Create(ctx context.Context, raffle *models.Raffle) (int64, error)
	GetByID(ctx context.Context, id int64) (*models.Raffle, error)
	List(ctx context.Context) ([]models.Raffle, error)
	ConfirmedTickets(ctx context.Context, raffleID int64) (int, error)
}
