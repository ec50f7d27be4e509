package repository

import (
	"context"
	"database/sql"
	"fmt"
	"log/slog"
)

const schema = `
CREATE TABLE IF NOT EXISTS raffles (
	id             BIGSERIAL PRIMARY KEY,
	title          TEXT NOT NULL,
	description    TEXT NOT NULL DEFAULT '',
	ticket_price   NUMERIC(12, 2) NOT NULL CHECK (ticket_price > 0),
	total_tickets  INTEGER NOT NULL CHECK (total_tickets > 0),
	sold_tickets   INTEGER NOT NULL DEFAULT 0 CHECK (sold_tickets >= 0 AND sold_tickets <= total_tickets),
	issued_tickets INTEGER NOT NULL DEFAULT 0 CHECK (issued_tickets >= 0),
	start_at       TIMESTAMPTZ,
	end_at         TIMESTAMPTZ,
	created_at     TIMESTAMPTZ NOT NULL DEFAULT NOW()
);

CREATE TABLE IF NOT EXISTS referrals (
	id           BIGSERIAL PRIMARY KEY,
	name         TEXT NOT NULL,
	national_id  TEXT NOT NULL DEFAULT '',
	phone        TEXT NOT NULL DEFAULT '',
	email        TEXT NOT NULL,
	code         TEXT NOT NULL,
	active_from  TIMESTAMPTZ,
	active_until TIMESTAMPTZ,
	created_at   TIMESTAMPTZ NOT NULL DEFAULT NOW(),
	CONSTRAINT referrals_code_key UNIQUE (code)
);

CREATE TABLE IF NOT EXISTS purchases (
	id               BIGSERIAL PRIMARY KEY,
	raffle_id        BIGINT NOT NULL REFERENCES raffles (id),
	name             TEXT NOT NULL,
	national_id      TEXT NOT NULL,
	phone            TEXT NOT NULL,
	email            TEXT NOT NULL,
	quantity         INTEGER NOT NULL CHECK (quantity > 0),
	amount           NUMERIC(12, 2) NOT NULL CHECK (amount >= 0),
	tickets          TEXT[] NOT NULL,
	method           TEXT NOT NULL,
	status           TEXT NOT NULL DEFAULT 'PENDING' CHECK (status IN ('PENDING', 'PAID', 'FAILED')),
	operation_number TEXT NOT NULL,
	referral_code    TEXT,
	created_at       TIMESTAMPTZ NOT NULL DEFAULT NOW(),
	updated_at       TIMESTAMPTZ NOT NULL DEFAULT NOW(),
	CONSTRAINT purchases_operation_number_key UNIQUE (operation_number)
);

CREATE INDEX IF NOT EXISTS purchases_raffle_status_idx ON purchases (raffle_id, status);
CREATE INDEX IF NOT EXISTS purchases_national_id_idx ON purchases (national_id);
CREATE INDEX IF NOT EXISTS purchases_tickets_idx ON purchases USING GIN (tickets);
`

// Migrate creates the tables when they do not exist yet.
func Migrate(ctx context.Context, db *sql.DB) error {
	if _, err := db.ExecContext(ctx, schema); err != nil {
		slog.Error("failed to apply schema", "error", err)
		return fmt.Errorf("failed to apply schema: %w", classifyError(err))
	}
	slog.Info("schema applied")
	return nil
}
