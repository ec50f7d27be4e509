package repository

import (
	"context"
	"database/sql"
	stderrors "errors"
	"fmt"
	"log/slog"

	"github.com/honeynil/raffle-service/internal/models"
	"github.com/honeynil/raffle-service/internal/repository"
	pkgerrors "github.com/honeynil/raffle-service/pkg/errors"
	"github.com/lib/pq"
	"go.opentelemetry.io/otel/attribute"
)

const txTracer = "tx-manager"

// PostgresTxManager runs units of work at SERIALIZABLE isolation.
type PostgresTxManager struct {
	db *sql.DB
}

func NewPostgresTxManager(db *sql.DB) *PostgresTxManager {
	return &PostgresTxManager{db: db}
}

func (m *PostgresTxManager) WithinTx(ctx context.Context, fn func(ctx context.Context, tx repository.Tx) error) error {
	var err error
	ctx, c := startCall(ctx, txTracer, "WithinTx")
	defer func() { c.end(err) }()

	dbTx, err := m.db.BeginTx(ctx, &sql.TxOptions{Isolation: sql.LevelSerializable})
	if err != nil {
		err = fmt.Errorf("failed to begin transaction: %w", classifyError(err))
		slog.Error("failed to begin transaction", "method", "WithinTx", "error", err)
		return err
	}

	if err = fn(ctx, &postgresTx{tx: dbTx}); err != nil {
		if rbErr := dbTx.Rollback(); rbErr != nil && !stderrors.Is(rbErr, sql.ErrTxDone) {
			slog.Error("rollback failed", "method", "WithinTx", "error", rbErr)
			err = fmt.Errorf("rollback failed: %v; original error: %w", rbErr, err)
		}
		return err
	}

	if err = dbTx.Commit(); err != nil {
		err = fmt.Errorf("failed to commit transaction: %w", classifyError(err))
		slog.Error("failed to commit transaction", "method", "WithinTx", "error", err)
		return err
	}
	return nil
}

type postgresTx struct {
	tx *sql.Tx
}

func (t *postgresTx) LockRaffle(ctx context.Context, raffleID int64) (*models.Raffle, error) {
	var err error
	ctx, c := startCall(ctx, txTracer, "LockRaffle")
	c.span.SetAttributes(attribute.Int64("raffle_id", raffleID))
	defer func() { c.end(err) }()

	query := `SELECT id, title, description, ticket_price, total_tickets, sold_tickets, issued_tickets, start_at, end_at, created_at FROM raffles WHERE id = $1 FOR UPDATE`
	raffle, err := scanRaffle(t.tx.QueryRowContext(ctx, query, raffleID))
	if stderrors.Is(err, sql.ErrNoRows) {
		err = pkgerrors.ErrRaffleNotFound
		return nil, err
	}
	if err != nil {
		err = classifyError(err)
		return nil, fmt.Errorf("failed to lock raffle: %w", err)
	}
	return raffle, nil
}

func (t *postgresTx) OperationNumberExists(ctx context.Context, operationNumber string) (bool, error) {
	var err error
	ctx, c := startCall(ctx, txTracer, "OperationNumberExists")
	defer func() { c.end(err) }()

	var exists bool
	query := `SELECT EXISTS (SELECT 1 FROM purchases WHERE operation_number = $1)`
	if err = t.tx.QueryRowContext(ctx, query, operationNumber).Scan(&exists); err != nil {
		err = classifyError(err)
		return false, fmt.Errorf("failed to check operation number: %w", err)
	}
	return exists, nil
}

func (t *postgresTx) GetReferralByCode(ctx context.Context, code string) (*models.Referral, error) {
	var err error
	ctx, c := startCall(ctx, txTracer, "GetReferralByCode")
	defer func() { c.end(err) }()

	referral, err := scanReferral(t.tx.QueryRowContext(ctx, referralByCodeQuery, code))
	if stderrors.Is(err, sql.ErrNoRows) {
		err = pkgerrors.ErrReferralNotFound
		return nil, err
	}
	if err != nil {
		err = classifyError(err)
		return nil, fmt.Errorf("failed to get referral: %w", err)
	}
	return referral, nil
}

func (t *postgresTx) ConfirmedTickets(ctx context.Context, raffleID int64) (int, error) {
	var err error
	ctx, c := startCall(ctx, txTracer, "ConfirmedTickets")
	defer func() { c.end(err) }()

	var confirmed int
	if err = t.tx.QueryRowContext(ctx, confirmedTicketsQuery, raffleID).Scan(&confirmed); err != nil {
		err = classifyError(err)
		return 0, fmt.Errorf("failed to count confirmed tickets: %w", err)
	}
	return confirmed, nil
}

func (t *postgresTx) ReserveIssuance(ctx context.Context, raffleID int64, quantity int) (int, error) {
	var err error
	ctx, c := startCall(ctx, txTracer, "ReserveIssuance")
	c.span.SetAttributes(attribute.Int64("raffle_id", raffleID), attribute.Int("quantity", quantity))
	defer func() { c.end(err) }()

	var issued int
	query := `UPDATE raffles SET issued_tickets = issued_tickets + $1 WHERE id = $2 RETURNING issued_tickets`
	err = t.tx.QueryRowContext(ctx, query, quantity, raffleID).Scan(&issued)
	if stderrors.Is(err, sql.ErrNoRows) {
		err = pkgerrors.ErrRaffleNotFound
		return 0, err
	}
	if err != nil {
		err = classifyError(err)
		return 0, fmt.Errorf("failed to reserve issuance: %w", err)
	}
	return issued - quantity, nil
}

func (t *postgresTx) InsertPurchase(ctx context.Context, p *models.Purchase) error {
	var err error
	ctx, c := startCall(ctx, txTracer, "InsertPurchase")
	defer func() { c.end(err) }()

	if p == nil {
		err = pkgerrors.ErrNilPurchase
		return err
	}
	if !p.Status.Valid() {
		err = pkgerrors.ErrInvalidPurchaseStatus
		return err
	}

	query := `INSERT INTO purchases (raffle_id, name, national_id, phone, email, quantity, amount, tickets, method, status, operation_number, referral_code) VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12) RETURNING id, created_at, updated_at`
	err = t.tx.QueryRowContext(ctx, query,
		p.RaffleID, p.Name, p.NationalID, p.Phone, p.Email, p.Quantity, p.Amount,
		pq.Array(p.Tickets), p.Method, p.Status, p.OperationNumber, p.ReferralCode,
	).Scan(&p.ID, &p.CreatedAt, &p.UpdatedAt)
	if err != nil {
		err = classifyError(err)
		slog.Error("failed to insert purchase", "method", "InsertPurchase", "raffle_id", p.RaffleID, "operation_number", p.OperationNumber, "error", err)
		return fmt.Errorf("failed to insert purchase: %w", err)
	}
	return nil
}

func (t *postgresTx) LockPurchase(ctx context.Context, id int64) (*models.Purchase, error) {
	var err error
	ctx, c := startCall(ctx, txTracer, "LockPurchase")
	c.span.SetAttributes(attribute.Int64("purchase_id", id))
	defer func() { c.end(err) }()

	query := `SELECT ` + purchaseColumns + ` FROM purchases WHERE id = $1 FOR UPDATE`
	p, err := scanPurchase(t.tx.QueryRowContext(ctx, query, id))
	if stderrors.Is(err, sql.ErrNoRows) {
		err = pkgerrors.ErrPurchaseNotFound
		return nil, err
	}
	if err != nil {
		err = classifyError(err)
		return nil, fmt.Errorf("failed to lock purchase: %w", err)
	}
	return p, nil
}

func (t *postgresTx) SetPurchaseStatus(ctx context.Context, id int64, status models.PurchaseStatus) error {
	var err error
	ctx, c := startCall(ctx, txTracer, "SetPurchaseStatus")
	c.span.SetAttributes(attribute.Int64("purchase_id", id), attribute.String("status", string(status)))
	defer func() { c.end(err) }()

	if !status.Valid() {
		err = pkgerrors.ErrInvalidPurchaseStatus
		return err
	}

	query := `UPDATE purchases SET status = $1, updated_at = NOW() WHERE id = $2`
	res, err := t.tx.ExecContext(ctx, query, status, id)
	if err != nil {
		err = classifyError(err)
		return fmt.Errorf("failed to update purchase status: %w", err)
	}
	affected, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to update purchase status: %w", err)
	}
	if affected == 0 {
		err = pkgerrors.ErrPurchaseNotFound
		return err
	}
	return nil
}

func (t *postgresTx) AddSoldTickets(ctx context.Context, raffleID int64, quantity int) (int, error) {
	var err error
	ctx, c := startCall(ctx, txTracer, "AddSoldTickets")
	c.span.SetAttributes(attribute.Int64("raffle_id", raffleID), attribute.Int("quantity", quantity))
	defer func() { c.end(err) }()

	var sold int
	query := `UPDATE raffles SET sold_tickets = sold_tickets + $1 WHERE id = $2 AND sold_tickets + $1 <= total_tickets RETURNING sold_tickets`
	err = t.tx.QueryRowContext(ctx, query, quantity, raffleID).Scan(&sold)
	if stderrors.Is(err, sql.ErrNoRows) {
		err = pkgerrors.ErrInsufficientInventory
		return 0, err
	}
	if err != nil {
		err = classifyError(err)
		return 0, fmt.Errorf("failed to add sold tickets: %w", err)
	}
	return sold, nil
}

func (t *postgresTx) ReleaseSoldTickets(ctx context.Context, raffleID int64, quantity int) (int, error) {
	var err error
	ctx, c := startCall(ctx, txTracer, "ReleaseSoldTickets")
	c.span.SetAttributes(attribute.Int64("raffle_id", raffleID), attribute.Int("quantity", quantity))
	defer func() { c.end(err) }()

	var sold int
	query := `UPDATE raffles SET sold_tickets = GREATEST(sold_tickets - $1, 0) WHERE id = $2 RETURNING sold_tickets`
	err = t.tx.QueryRowContext(ctx, query, quantity, raffleID).Scan(&sold)
	if stderrors.Is(err, sql.ErrNoRows) {
		err = pkgerrors.ErrRaffleNotFound
		return 0, err
	}
	if err != nil {
		err = classifyError(err)
		return 0, fmt.Errorf("failed to release sold tickets: %w", err)
	}
	return sold, nil
}
