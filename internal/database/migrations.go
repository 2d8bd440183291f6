package database

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5/pgxpool"
)

// RunMigrations creates the database schema.
func RunMigrations(ctx context.Context, pool *pgxpool.Pool) error {
	migrations := []string{
		`CREATE TABLE IF NOT EXISTS members (
			id UUID PRIMARY KEY,
			name TEXT NOT NULL,
			email TEXT,
			created_at TIMESTAMPTZ NOT NULL DEFAULT NOW(),
			updated_at TIMESTAMPTZ NOT NULL DEFAULT NOW()
		)`,

		`CREATE TABLE IF NOT EXISTS expenses (
			id SERIAL PRIMARY KEY,
			member_id UUID NOT NULL REFERENCES members(id),
			amount DECIMAL(12, 2) NOT NULL CHECK (amount >= 0),
			category TEXT NOT NULL,
			spent_on DATE NOT NULL,
			description TEXT NOT NULL,
			is_recurring BOOLEAN NOT NULL DEFAULT FALSE,
			payment_method TEXT NOT NULL DEFAULT '',
			created_at TIMESTAMPTZ NOT NULL DEFAULT NOW(),
			updated_at TIMESTAMPTZ NOT NULL DEFAULT NOW()
		)`,

		`CREATE INDEX IF NOT EXISTS idx_expenses_member_id ON expenses(member_id)`,
		`CREATE INDEX IF NOT EXISTS idx_expenses_category ON expenses(member_id, category)`,

		`CREATE TABLE IF NOT EXISTS groups (
			id UUID PRIMARY KEY,
			name TEXT NOT NULL,
			description TEXT NOT NULL DEFAULT '',
			category TEXT NOT NULL,
			total_amount DECIMAL(12, 2) NOT NULL CHECK (total_amount > 0),
			occurred_on DATE NOT NULL,
			settled BOOLEAN NOT NULL DEFAULT FALSE,
			version INTEGER NOT NULL DEFAULT 1,
			created_at TIMESTAMPTZ NOT NULL DEFAULT NOW(),
			updated_at TIMESTAMPTZ NOT NULL DEFAULT NOW()
		)`,

		`CREATE TABLE IF NOT EXISTS group_members (
			id SERIAL PRIMARY KEY,
			group_id UUID NOT NULL REFERENCES groups(id) ON DELETE CASCADE,
			member_id UUID NOT NULL REFERENCES members(id),
			owed_amount DECIMAL(12, 2) NOT NULL CHECK (owed_amount >= 0),
			paid BOOLEAN NOT NULL DEFAULT FALSE,
			paid_at TIMESTAMPTZ,
			payment_method TEXT NOT NULL DEFAULT '',
			position INTEGER NOT NULL,
			UNIQUE (group_id, member_id)
		)`,

		`CREATE INDEX IF NOT EXISTS idx_group_members_member_id ON group_members(member_id)`,

		`CREATE TABLE IF NOT EXISTS payment_events (
			id SERIAL PRIMARY KEY,
			group_id UUID NOT NULL REFERENCES groups(id) ON DELETE CASCADE,
			member_id UUID NOT NULL REFERENCES members(id),
			paid_at TIMESTAMPTZ NOT NULL,
			on_time BOOLEAN NOT NULL,
			created_at TIMESTAMPTZ NOT NULL DEFAULT NOW()
		)`,

		`CREATE INDEX IF NOT EXISTS idx_payment_events_member_id ON payment_events(member_id)`,

		`CREATE TABLE IF NOT EXISTS budgets (
			id SERIAL PRIMARY KEY,
			member_id UUID NOT NULL REFERENCES members(id),
			category TEXT NOT NULL,
			amount DECIMAL(12, 2) NOT NULL CHECK (amount > 0),
			created_at TIMESTAMPTZ NOT NULL DEFAULT NOW(),
			updated_at TIMESTAMPTZ NOT NULL DEFAULT NOW(),
			UNIQUE (member_id, category)
		)`,
	}

	for i, migration := range migrations {
		if _, err := pool.Exec(ctx, migration); err != nil {
			return fmt.Errorf("migration %d failed: %w", i+1, err)
		}
	}

	return nil
}
