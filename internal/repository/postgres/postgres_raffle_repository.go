package repository

import (
	"context"
	"database/sql"
	stderrors "errors"
	"fmt"
	"log/slog"

	"github.com/honeynil/raffle-service/internal/models"
	pkgerrors "github.com/honeynil/raffle-service/pkg/errors"
	"go.opentelemetry.io/otel/attribute"
)

const raffleTracer = "raffle-repository"

type PostgresRaffleRepository struct {
	db *sql.DB
}

func NewPostgresRaffleRepository(db *sql.DB) *PostgresRaffleRepository {
	return &PostgresRaffleRepository{db: db}
}

func (r *PostgresRaffleRepository) Create(ctx context.Context, raffle *models.Raffle) (int64, error) {
	var err error
	ctx, c := startCall(ctx, raffleTracer, "CreateRaffle")
	defer func() { c.end(err) }()

	if raffle == nil {
		err = pkgerrors.ErrNilRaffle
		slog.Error("failed to create raffle", "method", "Create", "error", err)
		return 0, err
	}
	if raffle.Title == "" || raffle.TotalTickets <= 0 || !raffle.TicketPrice.IsPositive() {
		err = fmt.Errorf("%w: title, positive ticket price and total tickets are required", pkgerrors.ErrValidationFailed)
		slog.Error("invalid raffle", "method", "Create", "error", err)
		return 0, err
	}

	query := `INSERT INTO raffles (title, description, ticket_price, total_tickets, start_at, end_at) VALUES ($1, $2, $3, $4, $5, $6) RETURNING id, created_at`
	err = r.db.QueryRowContext(ctx, query, raffle.Title, raffle.Description, raffle.TicketPrice, raffle.TotalTickets, raffle.StartAt, raffle.EndAt).
		Scan(&raffle.ID, &raffle.CreatedAt)
	if err != nil {
		slog.Error("failed to create raffle", "method", "Create", "title", raffle.Title, "error", err)
		return 0, fmt.Errorf("failed to create raffle: %w", classifyError(err))
	}

	slog.Info("raffle created", "method", "Create", "id", raffle.ID, "total_tickets", raffle.TotalTickets)
	return raffle.ID, nil
}

func (r *PostgresRaffleRepository) GetByID(ctx context.Context, id int64) (*models.Raffle, error) {
	var err error
	ctx, c := startCall(ctx, raffleTracer, "GetRaffleByID")
	c.span.SetAttributes(attribute.Int64("raffle_id", id))
	defer func() { c.end(err) }()

	query := `SELECT ` + raffleColumns + ` FROM raffles WHERE id = $1`
	raffle, err := scanRaffle(r.db.QueryRowContext(ctx, query, id))
	if stderrors.Is(err, sql.ErrNoRows) {
		err = pkgerrors.ErrRaffleNotFound
		return nil, err
	}
	if err != nil {
		slog.Error("failed to get raffle by id", "method", "GetByID", "raffle_id", id, "error", err)
		return nil, fmt.Errorf("failed to get raffle by id: %w", classifyError(err))
	}
	return raffle, nil
}

func (r *PostgresRaffleRepository) List(ctx context.Context) ([]models.Raffle, error) {
	var err error
	ctx, c := startCall(ctx, raffleTracer, "ListRaffles")
	defer func() { c.end(err) }()

	query := `SELECT ` + raffleColumns + ` FROM raffles ORDER BY created_at DESC`
	rows, err := r.db.QueryContext(ctx, query)
	if err != nil {
		slog.Error("failed to list raffles", "method", "List", "error", err)
		return nil, fmt.Errorf("failed to list raffles: %w", classifyError(err))
	}
	defer rows.Close()

	raffles := []models.Raffle{}
	for rows.Next() {
		raffle, scanErr := scanRaffle(rows)
		if scanErr != nil {
			err = scanErr
			return nil, fmt.Errorf("failed to scan raffle: %w", classifyError(err))
		}
		raffles = append(raffles, *raffle)
	}
	if err = rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to list raffles: %w", classifyError(err))
	}
	return raffles, nil
}

func (r *PostgresRaffleRepository) ConfirmedTickets(ctx context.Context, raffleID int64) (int, error) {
	var err error
	ctx, c := startCall(ctx, raffleTracer, "ConfirmedTickets")
	defer func() { c.end(err) }()

	var confirmed int
	if err = r.db.QueryRowContext(ctx, confirmedTicketsQuery, raffleID).Scan(&confirmed); err != nil {
		slog.Error("failed to count confirmed tickets", "method", "ConfirmedTickets", "raffle_id", raffleID, "error", err)
		return 0, fmt.Errorf("failed to count confirmed tickets: %w", classifyError(err))
	}
	return confirmed, nil
}
