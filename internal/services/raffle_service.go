package service

import (
	"context"
	"encoding/json"
	stderrors "errors"
	"fmt"
	"log/slog"
	"net/mail"
	"strings"
	"time"

	"github.com/cenkalti/backoff/v4"
	"github.com/honeynil/raffle-service/internal/infrastructure/auth"
	"github.com/honeynil/raffle-service/internal/infrastructure/observability"
	"github.com/honeynil/raffle-service/internal/infrastructure/redis"
	"github.com/honeynil/raffle-service/internal/models"
	"github.com/honeynil/raffle-service/internal/notify"
	"github.com/honeynil/raffle-service/internal/repository"
	pkgerrors "github.com/honeynil/raffle-service/pkg/errors"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"golang.org/x/crypto/bcrypt"
)

//go:generate mockgen -source=raffle_service.go -destination=mocks/mock_raffle_service.go -package=mocks

const tracerName = "raffle-service"

type RaffleService interface {
	CreateRaffle(ctx context.Context, raffle *models.Raffle) (int64, error)
	ListRaffles(ctx context.Context) ([]models.Raffle, error)
	GetRaffle(ctx context.Context, id int64) (*models.RaffleDetails, error)

	CreateReferral(ctx context.Context, referral *models.Referral) (int64, error)
	ValidateReferral(ctx context.Context, code string) (*models.ReferralCheck, error)

	CreatePurchase(ctx context.Context, req models.PurchaseRequest) (*models.PurchaseResult, error)
	ConfirmPurchase(ctx context.Context, id int64) (*models.Decision, error)
	RejectPurchase(ctx context.Context, id int64) (*models.Decision, error)
	ListPurchases(ctx context.Context) ([]models.PurchaseSummary, error)
	SearchPurchases(ctx context.Context, filter models.PurchaseFilter) ([]models.TicketLookup, error)

	Login(ctx context.Context, username, password string) (string, error)
}

type Options struct {
	TxTimeout      time.Duration
	TxMaxRetries   int
	RaffleCacheTTL time.Duration

	JWTSecret         string
	AdminUsername     string
	AdminPasswordHash string
	AdminTokenTTL     time.Duration

	Templates notify.Templates
}

type raffleService struct {
	raffles     repository.RaffleRepository
	referrals   repository.ReferralRepository
	purchases   repository.PurchaseRepository
	txManager   repository.TxManager
	notifier    notify.Notifier
	redisClient redis.RedisClient
	opts        Options

	now        func() time.Time
	newBackOff func() backoff.BackOff
}

// NewRaffleService wires the service. redisClient may be nil, in which case
// raffle details are never cached and Login is unavailable.
func NewRaffleService(
	raffles repository.RaffleRepository,
	referrals repository.ReferralRepository,
	purchases repository.PurchaseRepository,
	txManager repository.TxManager,
	notifier notify.Notifier,
	redisClient redis.RedisClient,
	opts Options,
) *raffleService {
	return &raffleService{
		raffles:     raffles,
		referrals:   referrals,
		purchases:   purchases,
		txManager:   txManager,
		notifier:    notifier,
		redisClient: redisClient,
		opts:        opts,
		now:         time.Now,
		newBackOff:  defaultBackOff,
	}
}

func defaultBackOff() backoff.BackOff {
	b := backoff.NewExponentialBackOff()
	b.InitialInterval = 20 * time.Millisecond
	b.MaxInterval = 500 * time.Millisecond
	b.MaxElapsedTime = 0
	return b
}

// runInTx runs fn in a fresh transaction per attempt, retrying conflicts and
// per-attempt timeouts up to TxMaxRetries times.
func (s *raffleService) runInTx(ctx context.Context, operation string, fn func(ctx context.Context, tx repository.Tx) error) error {
	attempt := 0
	op := func() error {
		if attempt > 0 {
			observability.TransactionRetries.WithLabelValues(operation).Inc()
		}
		attempt++

		txCtx, cancel := ctx, context.CancelFunc(func() {})
		if s.opts.TxTimeout > 0 {
			txCtx, cancel = context.WithTimeout(ctx, s.opts.TxTimeout)
		}
		defer cancel()

		err := s.txManager.WithinTx(txCtx, fn)
		if err == nil {
			return nil
		}
		if ctx.Err() == nil && stderrors.Is(txCtx.Err(), context.DeadlineExceeded) && !stderrors.Is(err, pkgerrors.ErrTransactionTimeout) {
			err = fmt.Errorf("%w: %v", pkgerrors.ErrTransactionTimeout, err)
		}
		if pkgerrors.IsRetryable(err) {
			slog.Warn("transaction attempt failed, retrying",
				"operation", operation,
				"attempt", attempt,
				"error", err)
			return err
		}
		return backoff.Permanent(err)
	}

	retries := s.opts.TxMaxRetries
	if retries < 0 {
		retries = 0
	}
	policy := backoff.WithContext(backoff.WithMaxRetries(s.newBackOff(), uint64(retries)), ctx)
	return backoff.Retry(op, policy)
}

func (s *raffleService) CreateRaffle(ctx context.Context, raffle *models.Raffle) (int64, error) {
	tracer := otel.Tracer(tracerName)
	ctx, span := tracer.Start(ctx, "CreateRaffle")
	defer span.End()

	if raffle == nil {
		return 0, pkgerrors.ErrNilRaffle
	}
	raffle.Title = strings.TrimSpace(raffle.Title)
	switch {
	case raffle.Title == "":
		return 0, pkgerrors.NewFieldError("title", pkgerrors.ErrValidationFailed)
	case !raffle.TicketPrice.IsPositive():
		return 0, pkgerrors.NewFieldError("ticketPrice", pkgerrors.ErrValidationFailed)
	case raffle.TotalTickets < 1:
		return 0, pkgerrors.NewFieldError("totalTickets", pkgerrors.ErrValidationFailed)
	case raffle.StartAt != nil && raffle.EndAt != nil && raffle.EndAt.Before(*raffle.StartAt):
		return 0, pkgerrors.NewFieldError("endAt", pkgerrors.ErrValidationFailed)
	}

	id, err := s.raffles.Create(ctx, raffle)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, "raffle creation failed")
		slog.Error("failed to create raffle", "title", raffle.Title, "error", err)
		return 0, err
	}

	slog.Info("raffle created", "raffle_id", id, "title", raffle.Title, "total_tickets", raffle.TotalTickets)
	return id, nil
}

func (s *raffleService) ListRaffles(ctx context.Context) ([]models.Raffle, error) {
	tracer := otel.Tracer(tracerName)
	ctx, span := tracer.Start(ctx, "ListRaffles")
	defer span.End()

	raffles, err := s.raffles.List(ctx)
	if err != nil {
		span.RecordError(err)
		slog.Error("failed to list raffles", "error", err)
		return nil, err
	}
	return raffles, nil
}

func raffleCacheKey(id int64) string {
	return fmt.Sprintf("raffle:%d", id)
}

func (s *raffleService) GetRaffle(ctx context.Context, id int64) (*models.RaffleDetails, error) {
	tracer := otel.Tracer(tracerName)
	ctx, span := tracer.Start(ctx, "GetRaffle")
	span.SetAttributes(attribute.Int64("raffle_id", id))
	defer span.End()

	key := raffleCacheKey(id)
	if s.redisClient != nil {
		cached, err := s.redisClient.Get(ctx, key)
		switch {
		case err == nil:
			var details models.RaffleDetails
			if err := json.Unmarshal([]byte(cached), &details); err == nil {
				return &details, nil
			}
			slog.Warn("dropping unreadable cached raffle", "raffle_id", id)
		case !stderrors.Is(err, redis.ErrKeyNotFound):
			slog.Error("failed to read raffle from Redis", "raffle_id", id, "error", err)
		}
	}

	raffle, err := s.raffles.GetByID(ctx, id)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, "raffle lookup failed")
		return nil, err
	}
	confirmed, err := s.raffles.ConfirmedTickets(ctx, id)
	if err != nil {
		span.RecordError(err)
		slog.Error("failed to count confirmed tickets", "raffle_id", id, "error", err)
		return nil, err
	}
	details := &models.RaffleDetails{Raffle: *raffle, ConfirmedTickets: confirmed}

	if s.redisClient != nil && s.opts.RaffleCacheTTL > 0 {
		if payload, err := json.Marshal(details); err == nil {
			if err := s.redisClient.Set(ctx, key, string(payload), s.opts.RaffleCacheTTL); err != nil {
				slog.Error("failed to cache raffle", "raffle_id", id, "error", err)
			}
		}
	}
	return details, nil
}

func (s *raffleService) invalidateRaffle(ctx context.Context, id int64) {
	if s.redisClient == nil {
		return
	}
	if err := s.redisClient.Del(ctx, raffleCacheKey(id)); err != nil {
		slog.Error("failed to invalidate cached raffle", "raffle_id", id, "error", err)
	}
}

func (s *raffleService) CreateReferral(ctx context.Context, referral *models.Referral) (int64, error) {
	tracer := otel.Tracer(tracerName)
	ctx, span := tracer.Start(ctx, "CreateReferral")
	defer span.End()

	if referral == nil {
		return 0, pkgerrors.ErrNilReferral
	}
	referral.Code = strings.TrimSpace(referral.Code)
	referral.Name = strings.TrimSpace(referral.Name)
	switch {
	case referral.Name == "":
		return 0, pkgerrors.NewFieldError("name", pkgerrors.ErrValidationFailed)
	case referral.Code == "":
		return 0, pkgerrors.NewFieldError("code", pkgerrors.ErrValidationFailed)
	case !validEmail(referral.Email):
		return 0, pkgerrors.NewFieldError("email", pkgerrors.ErrValidationFailed)
	case referral.ActiveFrom != nil && referral.ActiveUntil != nil && referral.ActiveUntil.Before(*referral.ActiveFrom):
		return 0, pkgerrors.NewFieldError("activeUntil", pkgerrors.ErrValidationFailed)
	}

	id, err := s.referrals.Create(ctx, referral)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, "referral creation failed")
		slog.Error("failed to create referral", "code", referral.Code, "error", err)
		return 0, err
	}

	slog.Info("referral created", "referral_id", id, "code", referral.Code)
	return id, nil
}

func validEmail(addr string) bool {
	parsed, err := mail.ParseAddress(addr)
	return err == nil && parsed.Address == addr
}

func (s *raffleService) ValidateReferral(ctx context.Context, code string) (*models.ReferralCheck, error) {
	tracer := otel.Tracer(tracerName)
	ctx, span := tracer.Start(ctx, "ValidateReferral")
	defer span.End()

	if strings.TrimSpace(code) == "" {
		return nil, pkgerrors.NewFieldError("code", pkgerrors.ErrValidationFailed)
	}
	_, err := ResolveReferral(ctx, s.referrals.GetByCode, code, s.now())
	if stderrors.Is(err, pkgerrors.ErrInvalidReferral) {
		return &models.ReferralCheck{Valid: false, Reason: referralReason(err)}, nil
	}
	if err != nil {
		span.RecordError(err)
		slog.Error("failed to validate referral", "code", code, "error", err)
		return nil, err
	}
	return &models.ReferralCheck{Valid: true}, nil
}

func (s *raffleService) ListPurchases(ctx context.Context) ([]models.PurchaseSummary, error) {
	tracer := otel.Tracer(tracerName)
	ctx, span := tracer.Start(ctx, "ListPurchases")
	defer span.End()

	purchases, err := s.purchases.List(ctx)
	if err != nil {
		span.RecordError(err)
		slog.Error("failed to list purchases", "error", err)
		return nil, err
	}
	return purchases, nil
}

var statusText = map[models.PurchaseStatus]string{
	models.StatusPending: "Pending verification",
	models.StatusPaid:    "Confirmed",
	models.StatusFailed:  "Rejected",
}

// publicName keeps the first name and first surname only.
func publicName(full string) string {
	parts := strings.Fields(full)
	if len(parts) > 2 {
		parts = parts[:2]
	}
	return strings.Join(parts, " ")
}

// SearchPurchases returns one row per ticket of every matching purchase.
func (s *raffleService) SearchPurchases(ctx context.Context, filter models.PurchaseFilter) ([]models.TicketLookup, error) {
	tracer := otel.Tracer(tracerName)
	ctx, span := tracer.Start(ctx, "SearchPurchases")
	defer span.End()

	filter.NationalID = strings.TrimSpace(filter.NationalID)
	filter.OperationNumber = strings.TrimSpace(filter.OperationNumber)
	filter.Ticket = strings.ToUpper(strings.TrimSpace(filter.Ticket))
	if filter.Empty() {
		return nil, pkgerrors.NewFieldError("query", pkgerrors.ErrValidationFailed)
	}

	found, err := s.purchases.Search(ctx, filter)
	if err != nil {
		span.RecordError(err)
		slog.Error("failed to search purchases", "error", err)
		return nil, err
	}

	rows := make([]models.TicketLookup, 0, len(found))
	for _, p := range found {
		for _, ticket := range p.Tickets {
			if filter.Ticket != "" && ticket != filter.Ticket {
				continue
			}
			rows = append(rows, models.TicketLookup{
				BuyerName:       publicName(p.Name),
				Ticket:          ticket,
				OperationNumber: p.OperationNumber,
				PurchasedAt:     p.CreatedAt,
				Status:          p.Status,
				StatusText:      statusText[p.Status],
				RaffleTitle:     p.RaffleTitle,
			})
		}
	}
	return rows, nil
}

func (s *raffleService) Login(ctx context.Context, username, password string) (string, error) {
	tracer := otel.Tracer(tracerName)
	ctx, span := tracer.Start(ctx, "Login")
	defer span.End()

	if s.opts.AdminPasswordHash == "" || username != s.opts.AdminUsername {
		slog.Error("failed to login", "username", username)
		return "", pkgerrors.ErrInvalidCredentials
	}
	if err := bcrypt.CompareHashAndPassword([]byte(s.opts.AdminPasswordHash), []byte(password)); err != nil {
		slog.Error("invalid password", "username", username)
		return "", pkgerrors.ErrInvalidCredentials
	}
	if s.redisClient == nil {
		return "", fmt.Errorf("token store not configured")
	}

	token, err := auth.GenerateJWT([]byte(s.opts.JWTSecret), username, s.opts.AdminTokenTTL)
	if err != nil {
		slog.Error("failed to generate JWT", "error", err)
		return "", fmt.Errorf("failed to generate token: %w", err)
	}
	if err := s.redisClient.Set(ctx, auth.TokenKey(username), token, s.opts.AdminTokenTTL); err != nil {
		span.RecordError(err)
		slog.Error("failed to store JWT", "username", username, "error", err)
		return "", fmt.Errorf("failed to store token: %w", err)
	}

	slog.Info("admin logged in", "username", username)
	return token, nil
}
