package db

import (
	"context"
	"database/sql"
	"fmt"

	_ "github.com/lib/pq"
)

func InitDB(dsn string) (*sql.DB, error) {
	db, err := sql.Open("postgres", dsn)
	if err != nil {
		return nil, fmt.Errorf("error opening database: %v", err)
	}

	if err = db.Ping(); err != nil {
		return nil, fmt.Errorf("error connecting to the database: %v", err)
	}

	if err = Apply(context.Background(), db); err != nil {
		return nil, fmt.Errorf("error applying migrations: %v", err)
	}

	return db, nil
}

// migrations run in order at startup; each statement must be idempotent.
// The schema enforces the ledger invariants directly: non-negative balances,
// one response per (user, survey), one pending withdrawal per user.
var migrations = []string{
	`CREATE TABLE IF NOT EXISTS users (
		id SERIAL PRIMARY KEY,
		email VARCHAR(255) UNIQUE NOT NULL,
		password_hash VARCHAR(255) NOT NULL,
		first_name VARCHAR(255) NOT NULL DEFAULT '',
		last_name VARCHAR(255) NOT NULL DEFAULT '',
		gem_balance BIGINT NOT NULL DEFAULT 0 CHECK (gem_balance >= 0),
		status VARCHAR(20) NOT NULL DEFAULT 'active'
			CHECK (status IN ('active', 'banned', 'suspended')),
		is_admin BOOLEAN NOT NULL DEFAULT FALSE,
		email_verified BOOLEAN NOT NULL DEFAULT FALSE,
		created_at TIMESTAMPTZ NOT NULL DEFAULT NOW(),
		updated_at TIMESTAMPTZ NOT NULL DEFAULT NOW()
	)`,

	`CREATE TABLE IF NOT EXISTS surveys (
		id SERIAL PRIMARY KEY,
		title VARCHAR(255) NOT NULL,
		description TEXT NOT NULL DEFAULT '',
		duration_minutes INTEGER NOT NULL DEFAULT 0,
		reward BIGINT NOT NULL CHECK (reward >= 0),
		questions JSONB NOT NULL DEFAULT '[]',
		is_active BOOLEAN NOT NULL DEFAULT TRUE,
		participant_count BIGINT NOT NULL DEFAULT 0,
		created_at TIMESTAMPTZ NOT NULL DEFAULT NOW()
	)`,

	`CREATE TABLE IF NOT EXISTS survey_responses (
		id SERIAL PRIMARY KEY,
		user_id INTEGER NOT NULL REFERENCES users(id) ON DELETE CASCADE,
		survey_id INTEGER NOT NULL REFERENCES surveys(id) ON DELETE CASCADE,
		answers JSONB NOT NULL DEFAULT '{}',
		gems_awarded BIGINT NOT NULL DEFAULT 0,
		completed_at TIMESTAMPTZ NOT NULL DEFAULT NOW(),
		CONSTRAINT one_response_per_survey UNIQUE (user_id, survey_id)
	)`,

	`CREATE TABLE IF NOT EXISTS withdrawal_requests (
		id SERIAL PRIMARY KEY,
		user_id INTEGER NOT NULL REFERENCES users(id) ON DELETE CASCADE,
		amount BIGINT NOT NULL CHECK (amount > 0),
		wallet_address TEXT NOT NULL,
		status VARCHAR(20) NOT NULL DEFAULT 'pending'
			CHECK (status IN ('pending', 'approved', 'rejected')),
		admin_notes TEXT NOT NULL DEFAULT '',
		requested_at TIMESTAMPTZ NOT NULL DEFAULT NOW(),
		processed_at TIMESTAMPTZ,
		processed_by INTEGER REFERENCES users(id)
	)`,

	`CREATE UNIQUE INDEX IF NOT EXISTS one_pending_withdrawal_per_user
		ON withdrawal_requests (user_id) WHERE status = 'pending'`,

	`CREATE TABLE IF NOT EXISTS transactions (
		id SERIAL PRIMARY KEY,
		user_id INTEGER NOT NULL REFERENCES users(id) ON DELETE CASCADE,
		type VARCHAR(30) NOT NULL CHECK (type IN (
			'survey_reward', 'offerwall_reward', 'withdrawal_request',
			'withdrawal_approved', 'withdrawal_rejected'
		)),
		amount BIGINT NOT NULL,
		description TEXT NOT NULL DEFAULT '',
		survey_id INTEGER REFERENCES surveys(id),
		withdrawal_id INTEGER REFERENCES withdrawal_requests(id),
		provider VARCHAR(100) NOT NULL DEFAULT '',
		offer_id VARCHAR(255) NOT NULL DEFAULT '',
		created_at TIMESTAMPTZ NOT NULL DEFAULT NOW()
	)`,

	`CREATE INDEX IF NOT EXISTS idx_transactions_user_created
		ON transactions (user_id, created_at DESC)`,

	`CREATE TABLE IF NOT EXISTS security_logs (
		id UUID PRIMARY KEY,
		user_id INTEGER REFERENCES users(id) ON DELETE SET NULL,
		action VARCHAR(100) NOT NULL,
		details JSONB NOT NULL DEFAULT '{}',
		ip_address VARCHAR(45) NOT NULL DEFAULT '',
		user_agent TEXT NOT NULL DEFAULT '',
		created_at TIMESTAMPTZ NOT NULL DEFAULT NOW()
	)`,
}

// Apply executes every migration statement in order.
func Apply(ctx context.Context, db *sql.DB) error {
	for _, stmt := range migrations {
		if _, err := db.ExecContext(ctx, stmt); err != nil {
			return fmt.Errorf("migration failed: %v", err)
		}
	}
	return nil
}
