package sqlstore

import (
	"context"
	"fmt"
)

// schema uses only types both PostgreSQL and SQLite understand. Timestamps
// are always written in UTC.
var schema = []string{
	`CREATE TABLE IF NOT EXISTS organizations (
		id                    TEXT PRIMARY KEY,
		name                  TEXT NOT NULL,
		slug                  TEXT NOT NULL UNIQUE,
		default_split_percent NUMERIC(5,2) NOT NULL,
		currency              TEXT NOT NULL,
		created_at            TIMESTAMP NOT NULL
	)`,
	`CREATE TABLE IF NOT EXISTS app_users (
		username        TEXT PRIMARY KEY,
		password        TEXT NOT NULL,
		role            TEXT NOT NULL CHECK (role IN ('admin', 'staff')),
		organization_id TEXT NOT NULL REFERENCES organizations(id),
		active          BOOLEAN NOT NULL DEFAULT TRUE,
		created_at      TIMESTAMP NOT NULL,
		updated_at      TIMESTAMP NOT NULL
	)`,
	`CREATE TABLE IF NOT EXISTS consignors (
		id              TEXT PRIMARY KEY,
		organization_id TEXT NOT NULL REFERENCES organizations(id),
		number          TEXT NOT NULL,
		name            TEXT NOT NULL,
		email           TEXT NOT NULL DEFAULT '',
		phone           TEXT NOT NULL DEFAULT '',
		split_percent   NUMERIC(5,2) NOT NULL,
		status          TEXT NOT NULL CHECK (status IN ('active', 'inactive')),
		notes           TEXT NOT NULL DEFAULT '',
		created_at      TIMESTAMP NOT NULL,
		updated_at      TIMESTAMP NOT NULL,
		UNIQUE (organization_id, number)
	)`,
	`CREATE TABLE IF NOT EXISTS items (
		id              TEXT PRIMARY KEY,
		organization_id TEXT NOT NULL REFERENCES organizations(id),
		consignor_id    TEXT NOT NULL REFERENCES consignors(id),
		sku             TEXT NOT NULL,
		title           TEXT NOT NULL,
		description     TEXT NOT NULL DEFAULT '',
		category        TEXT NOT NULL,
		price           NUMERIC(12,2) NOT NULL CHECK (price >= 0),
		status          TEXT NOT NULL CHECK (status IN ('Available', 'Sold', 'Removed')),
		created_at      TIMESTAMP NOT NULL,
		updated_at      TIMESTAMP NOT NULL,
		sold_at         TIMESTAMP,
		removed_at      TIMESTAMP,
		UNIQUE (organization_id, sku)
	)`,
	`CREATE TABLE IF NOT EXISTS payouts (
		id                TEXT PRIMARY KEY,
		organization_id   TEXT NOT NULL REFERENCES organizations(id),
		consignor_id      TEXT NOT NULL REFERENCES consignors(id),
		number            TEXT NOT NULL,
		amount            NUMERIC(12,2) NOT NULL,
		method            TEXT NOT NULL DEFAULT '',
		reference         TEXT NOT NULL DEFAULT '',
		notes             TEXT NOT NULL DEFAULT '',
		transaction_count INTEGER NOT NULL DEFAULT 0,
		created_at        TIMESTAMP NOT NULL,
		paid_at           TIMESTAMP,
		UNIQUE (organization_id, number)
	)`,
	`CREATE TABLE IF NOT EXISTS transactions (
		id               TEXT PRIMARY KEY,
		organization_id  TEXT NOT NULL REFERENCES organizations(id),
		item_id          TEXT NOT NULL REFERENCES items(id),
		consignor_id     TEXT NOT NULL REFERENCES consignors(id),
		sale_date        TIMESTAMP NOT NULL,
		sale_price       NUMERIC(12,2) NOT NULL,
		consignor_amount NUMERIC(12,2) NOT NULL,
		shop_amount      NUMERIC(12,2) NOT NULL,
		payment_method   TEXT NOT NULL,
		payout_id        TEXT REFERENCES payouts(id),
		status           TEXT NOT NULL CHECK (status IN ('completed', 'voided')),
		void_reason      TEXT NOT NULL DEFAULT '',
		created_at       TIMESTAMP NOT NULL
	)`,
	`CREATE TABLE IF NOT EXISTS audit_logs (
		id              TEXT PRIMARY KEY,
		organization_id TEXT NOT NULL,
		actor_username  TEXT NOT NULL,
		actor_role      TEXT NOT NULL,
		action          TEXT NOT NULL,
		entity_type     TEXT NOT NULL,
		entity_id       TEXT NOT NULL,
		detail          TEXT NOT NULL DEFAULT '',
		created_at      TIMESTAMP NOT NULL
	)`,
}

// migrations run in order after schema creation. Each one must be
// idempotent; append new statements at the end.
var migrations = []string{
	`CREATE INDEX IF NOT EXISTS idx_items_org_consignor ON items (organization_id, consignor_id)`,
	`CREATE INDEX IF NOT EXISTS idx_items_org_status ON items (organization_id, status)`,
	`CREATE INDEX IF NOT EXISTS idx_transactions_org_consignor_date ON transactions (organization_id, consignor_id, sale_date)`,
	`CREATE INDEX IF NOT EXISTS idx_transactions_payout ON transactions (payout_id)`,
	`CREATE INDEX IF NOT EXISTS idx_payouts_org_consignor ON payouts (organization_id, consignor_id)`,
	`CREATE INDEX IF NOT EXISTS idx_audit_logs_org_created ON audit_logs (organization_id, created_at)`,
}

// Migrate creates the schema and applies pending migrations.
func (s *Store) Migrate(ctx context.Context) error {
	for i, stmt := range schema {
		if _, err := s.db.ExecContext(ctx, stmt); err != nil {
			return fmt.Errorf("creating schema (statement %d): %w", i+1, err)
		}
	}
	for i, m := range migrations {
		if _, err := s.db.ExecContext(ctx, m); err != nil {
			return fmt.Errorf("running migration %d: %w", i+1, err)
		}
	}
	return nil
}
