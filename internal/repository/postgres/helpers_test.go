package repository_test

import (
	"time"

	"github.com/DATA-DOG/go-sqlmock"
)

var (
	fixedTime = time.Date(2025, 6, 15, 12, 0, 0, 0, time.UTC)

	raffleCols   = []string{"id", "title", "description", "ticket_price", "total_tickets", "sold_tickets", "issued_tickets", "start_at", "end_at", "created_at"}
	referralCols = []string{"id", "name", "national_id", "phone", "email", "code", "active_from", "active_until", "created_at"}
	purchaseCols = []string{"id", "raffle_id", "name", "national_id", "phone", "email", "quantity", "amount", "tickets", "method", "status", "operation_number", "referral_code", "created_at", "updated_at"}
	summaryCols  = append(append([]string{}, purchaseCols...), "title", "ref_name", "ref_email")
)

func raffleRow(id int64, total, sold, issued int) *sqlmock.Rows {
	return sqlmock.NewRows(raffleCols).
		AddRow(id, "Honda Wave 2025", "125cc", "25.00", total, sold, issued, nil, nil, fixedTime)
}

func purchaseRow(id int64, status string, code interface{}) *sqlmock.Rows {
	return sqlmock.NewRows(purchaseCols).
		AddRow(id, 1, "JUAN PEREZ", "45678912", "912345678", "juan@example.com", 2, "50.00", "{471001,471002}", "yape", status, "OP-0017", code, fixedTime, fixedTime)
}
