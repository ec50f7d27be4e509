// Package memory keeps raffles, referrals and purchases in process memory.
// Transactions are serialized by a single mutex and applied copy-on-write, so
// a failed unit of work leaves no trace. It backs the service and concurrency
// tests.
package memory

import (
	"context"
	stderrors "errors"
	"fmt"
	"sort"
	"sync"
	"time"

	"github.com/honeynil/raffle-service/internal/models"
	"github.com/honeynil/raffle-service/internal/repository"
	pkgerrors "github.com/honeynil/raffle-service/pkg/errors"
)

type state struct {
	raffles   map[int64]models.Raffle
	referrals map[string]models.Referral
	purchases map[int64]models.Purchase
	opNumbers map[string]int64

	nextRaffleID   int64
	nextReferralID int64
	nextPurchaseID int64
}

func newState() *state {
	return &state{
		raffles:   make(map[int64]models.Raffle),
		referrals: make(map[string]models.Referral),
		purchases: make(map[int64]models.Purchase),
		opNumbers: make(map[string]int64),
	}
}

// clone copies the maps; stored values are replaced, never mutated in place.
func (s *state) clone() *state {
	c := &state{
		raffles:        make(map[int64]models.Raffle, len(s.raffles)),
		referrals:      make(map[string]models.Referral, len(s.referrals)),
		purchases:      make(map[int64]models.Purchase, len(s.purchases)),
		opNumbers:      make(map[string]int64, len(s.opNumbers)),
		nextRaffleID:   s.nextRaffleID,
		nextReferralID: s.nextReferralID,
		nextPurchaseID: s.nextPurchaseID,
	}
	for k, v := range s.raffles {
		c.raffles[k] = v
	}
	for k, v := range s.referrals {
		c.referrals[k] = v
	}
	for k, v := range s.purchases {
		c.purchases[k] = v
	}
	for k, v := range s.opNumbers {
		c.opNumbers[k] = v
	}
	return c
}

type Store struct {
	mu    sync.Mutex
	state *state
	now   func() time.Time
}

func NewStore() *Store {
	return &Store{state: newState(), now: time.Now}
}

func (s *Store) WithinTx(ctx context.Context, fn func(ctx context.Context, tx repository.Tx) error) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if err := ctxError(ctx); err != nil {
		return err
	}
	work := s.state.clone()
	if err := fn(ctx, &memoryTx{st: work, now: s.now}); err != nil {
		return err
	}
	if err := ctxError(ctx); err != nil {
		return err
	}
	s.state = work
	return nil
}

func ctxError(ctx context.Context) error {
	err := ctx.Err()
	if err == nil {
		return nil
	}
	if stderrors.Is(err, context.DeadlineExceeded) {
		return fmt.Errorf("%w: %v", pkgerrors.ErrTransactionTimeout, err)
	}
	return err
}

// Raffles

func (s *Store) Create(ctx context.Context, raffle *models.Raffle) (int64, error) {
	if raffle == nil {
		return 0, pkgerrors.ErrNilRaffle
	}
	if raffle.Title == "" || raffle.TotalTickets <= 0 || !raffle.TicketPrice.IsPositive() {
		return 0, fmt.Errorf("%w: title, positive ticket price and total tickets are required", pkgerrors.ErrValidationFailed)
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	s.state.nextRaffleID++
	raffle.ID = s.state.nextRaffleID
	raffle.SoldTickets = 0
	raffle.IssuedTickets = 0
	raffle.CreatedAt = s.now()
	s.state.raffles[raffle.ID] = *raffle
	return raffle.ID, nil
}

func (s *Store) GetByID(ctx context.Context, id int64) (*models.Raffle, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	raffle, ok := s.state.raffles[id]
	if !ok {
		return nil, pkgerrors.ErrRaffleNotFound
	}
	return &raffle, nil
}

func (s *Store) List(ctx context.Context) ([]models.Raffle, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	raffles := make([]models.Raffle, 0, len(s.state.raffles))
	for _, r := range s.state.raffles {
		raffles = append(raffles, r)
	}
	sort.Slice(raffles, func(i, j int) bool { return raffles[i].ID > raffles[j].ID })
	return raffles, nil
}

func (s *Store) ConfirmedTickets(ctx context.Context, raffleID int64) (int, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.state.confirmed(raffleID), nil
}

func (s *state) confirmed(raffleID int64) int {
	total := 0
	for _, p := range s.purchases {
		if p.RaffleID == raffleID && p.Status == models.StatusPaid {
			total += p.Quantity
		}
	}
	return total
}

// Referrals

type ReferralStore struct{ *Store }

func (s *Store) Referrals() ReferralStore { return ReferralStore{s} }

func (r ReferralStore) Create(ctx context.Context, referral *models.Referral) (int64, error) {
	if referral == nil {
		return 0, pkgerrors.ErrNilReferral
	}
	if referral.Code == "" || referral.Name == "" || referral.Email == "" {
		return 0, fmt.Errorf("%w: code, name and email are required", pkgerrors.ErrValidationFailed)
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	if _, ok := r.state.referrals[referral.Code]; ok {
		return 0, pkgerrors.NewFieldError("code", pkgerrors.ErrReferralExists)
	}
	r.state.nextReferralID++
	referral.ID = r.state.nextReferralID
	referral.CreatedAt = r.now()
	r.state.referrals[referral.Code] = *referral
	return referral.ID, nil
}

func (r ReferralStore) GetByCode(ctx context.Context, code string) (*models.Referral, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	ref, ok := r.state.referrals[code]
	if !ok {
		return nil, pkgerrors.ErrReferralNotFound
	}
	return &ref, nil
}

// Purchases

type PurchaseStore struct{ *Store }

func (s *Store) Purchases() PurchaseStore { return PurchaseStore{s} }

func (p PurchaseStore) List(ctx context.Context) ([]models.PurchaseSummary, error) {
	return p.collect(func(models.Purchase) bool { return true }), nil
}

func (p PurchaseStore) Search(ctx context.Context, filter models.PurchaseFilter) ([]models.PurchaseSummary, error) {
	if filter.Empty() {
		return nil, fmt.Errorf("%w: at least one search criterion is required", pkgerrors.ErrValidationFailed)
	}
	return p.collect(func(pu models.Purchase) bool {
		if filter.NationalID != "" && pu.NationalID != filter.NationalID {
			return false
		}
		if filter.OperationNumber != "" && pu.OperationNumber != filter.OperationNumber {
			return false
		}
		if filter.Ticket != "" && !contains(pu.Tickets, filter.Ticket) {
			return false
		}
		return true
	}), nil
}

func (p PurchaseStore) collect(match func(models.Purchase) bool) []models.PurchaseSummary {
	p.mu.Lock()
	defer p.mu.Unlock()

	summaries := []models.PurchaseSummary{}
	for _, pu := range p.state.purchases {
		if !match(pu) {
			continue
		}
		s := models.PurchaseSummary{Purchase: *copyPurchase(pu)}
		if r, ok := p.state.raffles[pu.RaffleID]; ok {
			s.RaffleTitle = r.Title
		}
		if pu.ReferralCode != nil {
			if ref, ok := p.state.referrals[*pu.ReferralCode]; ok {
				name, email := ref.Name, ref.Email
				s.ReferralName, s.ReferralEmail = &name, &email
			}
		}
		summaries = append(summaries, s)
	}
	sort.Slice(summaries, func(i, j int) bool { return summaries[i].ID > summaries[j].ID })
	return summaries
}

func contains(list []string, v string) bool {
	for _, item := range list {
		if item == v {
			return true
		}
	}
	return false
}

func copyPurchase(p models.Purchase) *models.Purchase {
	p.Tickets = append([]string(nil), p.Tickets...)
	if p.ReferralCode != nil {
		code := *p.ReferralCode
		p.ReferralCode = &code
	}
	return &p
}

type memoryTx struct {
	st  *state
	now func() time.Time
}

func (t *memoryTx) LockRaffle(ctx context.Context, raffleID int64) (*models.Raffle, error) {
	raffle, ok := t.st.raffles[raffleID]
	if !ok {
		return nil, pkgerrors.ErrRaffleNotFound
	}
	return &raffle, nil
}

func (t *memoryTx) OperationNumberExists(ctx context.Context, operationNumber string) (bool, error) {
	_, ok := t.st.opNumbers[operationNumber]
	return ok, nil
}

func (t *memoryTx) GetReferralByCode(ctx context.Context, code string) (*models.Referral, error) {
	ref, ok := t.st.referrals[code]
	if !ok {
		return nil, pkgerrors.ErrReferralNotFound
	}
	return &ref, nil
}

func (t *memoryTx) ConfirmedTickets(ctx context.Context, raffleID int64) (int, error) {
	return t.st.confirmed(raffleID), nil
}

func (t *memoryTx) ReserveIssuance(ctx context.Context, raffleID int64, quantity int) (int, error) {
	raffle, ok := t.st.raffles[raffleID]
	if !ok {
		return 0, pkgerrors.ErrRaffleNotFound
	}
	before := raffle.IssuedTickets
	raffle.IssuedTickets += quantity
	t.st.raffles[raffleID] = raffle
	return before, nil
}

func (t *memoryTx) InsertPurchase(ctx context.Context, p *models.Purchase) error {
	if p == nil {
		return pkgerrors.ErrNilPurchase
	}
	if !p.Status.Valid() {
		return pkgerrors.ErrInvalidPurchaseStatus
	}
	if _, ok := t.st.opNumbers[p.OperationNumber]; ok {
		return pkgerrors.NewFieldError("operationNumber", pkgerrors.ErrDuplicateOperationNumber)
	}
	if _, ok := t.st.raffles[p.RaffleID]; !ok {
		return pkgerrors.ErrRaffleNotFound
	}

	t.st.nextPurchaseID++
	p.ID = t.st.nextPurchaseID
	p.CreatedAt = t.now()
	p.UpdatedAt = p.CreatedAt
	t.st.purchases[p.ID] = *copyPurchase(*p)
	t.st.opNumbers[p.OperationNumber] = p.ID
	return nil
}

func (t *memoryTx) LockPurchase(ctx context.Context, id int64) (*models.Purchase, error) {
	p, ok := t.st.purchases[id]
	if !ok {
		return nil, pkgerrors.ErrPurchaseNotFound
	}
	return copyPurchase(p), nil
}

func (t *memoryTx) SetPurchaseStatus(ctx context.Context, id int64, status models.PurchaseStatus) error {
	if !status.Valid() {
		return pkgerrors.ErrInvalidPurchaseStatus
	}
	p, ok := t.st.purchases[id]
	if !ok {
		return pkgerrors.ErrPurchaseNotFound
	}
	p.Status = status
	p.UpdatedAt = t.now()
	t.st.purchases[id] = p
	return nil
}

func (t *memoryTx) AddSoldTickets(ctx context.Context, raffleID int64, quantity int) (int, error) {
	raffle, ok := t.st.raffles[raffleID]
	if !ok {
		return 0, pkgerrors.ErrRaffleNotFound
	}
	if raffle.SoldTickets+quantity > raffle.TotalTickets {
		return 0, pkgerrors.ErrInsufficientInventory
	}
	raffle.SoldTickets += quantity
	t.st.raffles[raffleID] = raffle
	return raffle.SoldTickets, nil
}

func (t *memoryTx) ReleaseSoldTickets(ctx context.Context, raffleID int64, quantity int) (int, error) {
	raffle, ok := t.st.raffles[raffleID]
	if !ok {
		return 0, pkgerrors.ErrRaffleNotFound
	}
	raffle.SoldTickets -= quantity
	if raffle.SoldTickets < 0 {
		raffle.SoldTickets = 0
	}
	t.st.raffles[raffleID] = raffle
	return raffle.SoldTickets, nil
}
