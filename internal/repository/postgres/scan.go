package repository

import (
	"database/sql"

	"github.com/honeynil/raffle-service/internal/models"
	"github.com/lib/pq"
)

const (
	raffleColumns   = `id, title, description, ticket_price, total_tickets, sold_tickets, issued_tickets, start_at, end_at, created_at`
	referralColumns = `id, name, national_id, phone, email, code, active_from, active_until, created_at`
	purchaseColumns = `id, raffle_id, name, national_id, phone, email, quantity, amount, tickets, method, status, operation_number, referral_code, created_at, updated_at`

	referralByCodeQuery   = `SELECT ` + referralColumns + ` FROM referrals WHERE code = $1`
	confirmedTicketsQuery = `SELECT COALESCE(SUM(quantity), 0) FROM purchases WHERE raffle_id = $1 AND status = 'PAID'`
)

type rowScanner interface {
	Scan(dest ...any) error
}

func scanRaffle(row rowScanner) (*models.Raffle, error) {
	var r models.Raffle
	var startAt, endAt sql.NullTime
	err := row.Scan(&r.ID, &r.Title, &r.Description, &r.TicketPrice, &r.TotalTickets, &r.SoldTickets, &r.IssuedTickets, &startAt, &endAt, &r.CreatedAt)
	if err != nil {
		return nil, err
	}
	r.StartAt = nullTime(startAt)
	r.EndAt = nullTime(endAt)
	return &r, nil
}

func scanReferral(row rowScanner) (*models.Referral, error) {
	var r models.Referral
	var from, until sql.NullTime
	err := row.Scan(&r.ID, &r.Name, &r.NationalID, &r.Phone, &r.Email, &r.Code, &from, &until, &r.CreatedAt)
	if err != nil {
		return nil, err
	}
	r.ActiveFrom = nullTime(from)
	r.ActiveUntil = nullTime(until)
	return &r, nil
}

func purchaseDest(p *models.Purchase, code *sql.NullString) []any {
	return []any{
		&p.ID, &p.RaffleID, &p.Name, &p.NationalID, &p.Phone, &p.Email, &p.Quantity, &p.Amount,
		pq.Array(&p.Tickets), &p.Method, &p.Status, &p.OperationNumber, code, &p.CreatedAt, &p.UpdatedAt,
	}
}

func scanPurchase(row rowScanner) (*models.Purchase, error) {
	var p models.Purchase
	var code sql.NullString
	if err := row.Scan(purchaseDest(&p, &code)...); err != nil {
		return nil, err
	}
	p.ReferralCode = nullString(code)
	return &p, nil
}

func scanSummary(row rowScanner) (*models.PurchaseSummary, error) {
	var s models.PurchaseSummary
	var code, refName, refEmail sql.NullString
	dest := append(purchaseDest(&s.Purchase, &code), &s.RaffleTitle, &refName, &refEmail)
	if err := row.Scan(dest...); err != nil {
		return nil, err
	}
	s.ReferralCode = nullString(code)
	s.ReferralName = nullString(refName)
	s.ReferralEmail = nullString(refEmail)
	return &s, nil
}
