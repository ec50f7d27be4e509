package repository

import (
	"context"
	"database/sql"
	"fmt"
	"log/slog"
	"strings"

	"github.com/honeynil/raffle-service/internal/models"
	pkgerrors "github.com/honeynil/raffle-service/pkg/errors"
)

const purchaseTracer = "purchase-repository"

const summaryQuery = `
	SELECT p.id, p.raffle_id, p.name, p.national_id, p.phone, p.email, p.quantity, p.amount, p.tickets,
		p.method, p.status, p.operation_number, p.referral_code, p.created_at, p.updated_at,
		COALESCE(r.title, ''), ref.name, ref.email
	FROM purchases p
	LEFT JOIN raffles r ON r.id = p.raffle_id
	LEFT JOIN referrals ref ON ref.code = p.referral_code`

type PostgresPurchaseRepository struct {
	db *sql.DB
}

func NewPostgresPurchaseRepository(db *sql.DB) *PostgresPurchaseRepository {
	return &PostgresPurchaseRepository{db: db}
}

func (r *PostgresPurchaseRepository) List(ctx context.Context) ([]models.PurchaseSummary, error) {
	var err error
	ctx, c := startCall(ctx, purchaseTracer, "ListPurchases")
	defer func() { c.end(err) }()

	var summaries []models.PurchaseSummary
	summaries, err = r.query(ctx, summaryQuery+` ORDER BY p.created_at DESC`)
	if err != nil {
		slog.Error("failed to list purchases", "method", "List", "error", err)
		return nil, fmt.Errorf("failed to list purchases: %w", classifyError(err))
	}
	return summaries, nil
}

func (r *PostgresPurchaseRepository) Search(ctx context.Context, filter models.PurchaseFilter) ([]models.PurchaseSummary, error) {
	var err error
	ctx, c := startCall(ctx, purchaseTracer, "SearchPurchases")
	defer func() { c.end(err) }()

	if filter.Empty() {
		err = fmt.Errorf("%w: at least one search criterion is required", pkgerrors.ErrValidationFailed)
		return nil, err
	}

	var conds []string
	var args []any
	add := func(cond string, arg any) {
		args = append(args, arg)
		conds = append(conds, fmt.Sprintf(cond, len(args)))
	}
	if filter.NationalID != "" {
		add("p.national_id = $%d", filter.NationalID)
	}
	if filter.OperationNumber != "" {
		add("p.operation_number = $%d", filter.OperationNumber)
	}
	if filter.Ticket != "" {
		add("$%d = ANY(p.tickets)", filter.Ticket)
	}

	query := summaryQuery + ` WHERE ` + strings.Join(conds, " AND ") + ` ORDER BY p.created_at DESC`
	var summaries []models.PurchaseSummary
	summaries, err = r.query(ctx, query, args...)
	if err != nil {
		slog.Error("failed to search purchases", "method", "Search", "error", err)
		return nil, fmt.Errorf("failed to search purchases: %w", classifyError(err))
	}
	return summaries, nil
}

func (r *PostgresPurchaseRepository) query(ctx context.Context, query string, args ...any) ([]models.PurchaseSummary, error) {
	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	summaries := []models.PurchaseSummary{}
	for rows.Next() {
		s, err := scanSummary(rows)
		if err != nil {
			return nil, err
		}
		summaries = append(summaries, *s)
	}
	return summaries, rows.Err()
}
