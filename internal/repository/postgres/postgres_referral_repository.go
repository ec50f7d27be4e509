package repository

import (
	"context"
	"database/sql"
	stderrors "errors"
	"fmt"
	"log/slog"

	"github.com/honeynil/raffle-service/internal/models"
	pkgerrors "github.com/honeynil/raffle-service/pkg/errors"
)

const referralTracer = "referral-repository"

type PostgresReferralRepository struct {
	db *sql.DB
}

func NewPostgresReferralRepository(db *sql.DB) *PostgresReferralRepository {
	return &PostgresReferralRepository{db: db}
}

func (r *PostgresReferralRepository) Create(ctx context.Context, referral *models.Referral) (int64, error) {
	var err error
	ctx, c := startCall(ctx, referralTracer, "CreateReferral")
	defer func() { c.end(err) }()

	if referral == nil {
		err = pkgerrors.ErrNilReferral
		return 0, err
	}
	if referral.Code == "" || referral.Name == "" || referral.Email == "" {
		err = fmt.Errorf("%w: code, name and email are required", pkgerrors.ErrValidationFailed)
		return 0, err
	}

	query := `INSERT INTO referrals (name, national_id, phone, email, code, active_from, active_until) VALUES ($1, $2, $3, $4, $5, $6, $7) RETURNING id, created_at`
	err = r.db.QueryRowContext(ctx, query, referral.Name, referral.NationalID, referral.Phone, referral.Email, referral.Code, referral.ActiveFrom, referral.ActiveUntil).
		Scan(&referral.ID, &referral.CreatedAt)
	if err != nil {
		err = classifyError(err)
		slog.Error("failed to create referral", "method", "Create", "code", referral.Code, "error", err)
		return 0, fmt.Errorf("failed to create referral: %w", err)
	}

	slog.Info("referral created", "method", "Create", "id", referral.ID, "code", referral.Code)
	return referral.ID, nil
}

func (r *PostgresReferralRepository) GetByCode(ctx context.Context, code string) (*models.Referral, error) {
	var err error
	ctx, c := startCall(ctx, referralTracer, "GetReferralByCode")
	defer func() { c.end(err) }()

	referral, err := scanReferral(r.db.QueryRowContext(ctx, referralByCodeQuery, code))
	if stderrors.Is(err, sql.ErrNoRows) {
		err = pkgerrors.ErrReferralNotFound
		return nil, err
	}
	if err != nil {
		slog.Error("failed to get referral", "method", "GetByCode", "code", code, "error", err)
		return nil, fmt.Errorf("failed to get referral: %w", classifyError(err))
	}
	return referral, nil
}
