package storage

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/google/uuid"
	_ "github.com/lib/pq"
	"github.com/shopspring/decimal"

	"coinledger/internal/domain/model"
	"coinledger/internal/domain/port"
)

type PostgresAdapter struct {
	db *sql.DB
}

func NewPostgresAdapter(connStr string) (*PostgresAdapter, error) {
	db, err := sql.Open("postgres", connStr)
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}

	if err := db.Ping(); err != nil {
		return nil, fmt.Errorf("failed to ping database: %w", err)
	}

	return &PostgresAdapter{db: db}, nil
}

func (a *PostgresAdapter) InitSchema(ctx context.Context) error {
	query := `
	CREATE TABLE IF NOT EXISTS ledger_entries (
		id UUID PRIMARY KEY,
		amount NUMERIC(20,8) NOT NULL CHECK (amount > 0),
		direction VARCHAR(6) NOT NULL CHECK (direction IN ('credit', 'debit')),
		category VARCHAR(20) NOT NULL,
		created_at TIMESTAMPTZ NOT NULL
	);
	CREATE INDEX IF NOT EXISTS idx_ledger_entries_created_at ON ledger_entries(created_at DESC);
	`
	_, err := a.db.ExecContext(ctx, query)
	return err
}

func (a *PostgresAdapter) Append(ctx context.Context, entry model.Entry) error {
	_, err := a.db.ExecContext(ctx,
		`INSERT INTO ledger_entries (id, amount, direction, category, created_at)
		 VALUES ($1, $2, $3, $4, $5)`,
		entry.ID, entry.Amount.String(), string(entry.Direction), string(entry.Category), entry.CreatedAt,
	)
	if err != nil {
		return fmt.Errorf("failed to insert ledger entry: %w", err)
	}
	return nil
}

func (a *PostgresAdapter) Query(ctx context.Context, offset, limit int) ([]model.Entry, error) {
	rows, err := a.db.QueryContext(ctx,
		`SELECT id, amount, direction, category, created_at
		 FROM ledger_entries
		 ORDER BY created_at DESC
		 OFFSET $1 LIMIT $2`,
		offset, limit,
	)
	if err != nil {
		return nil, fmt.Errorf("failed to query ledger entries: %w", err)
	}
	defer rows.Close()

	var entries []model.Entry
	for rows.Next() {
		var (
			id        uuid.UUID
			amount    string
			direction string
			category  string
			e         model.Entry
		)
		if err := rows.Scan(&id, &amount, &direction, &category, &e.CreatedAt); err != nil {
			return nil, fmt.Errorf("failed to scan ledger entry: %w", err)
		}
		e.ID = id
		e.Amount, err = decimal.NewFromString(amount)
		if err != nil {
			return nil, fmt.Errorf("failed to parse entry amount %q: %w", amount, err)
		}
		e.Direction = model.Direction(direction)
		e.Category = model.Category(category)
		entries = append(entries, e)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate ledger entries: %w", err)
	}
	return entries, nil
}

func (a *PostgresAdapter) SumAll(ctx context.Context) (decimal.Decimal, error) {
	var total string
	err := a.db.QueryRowContext(ctx,
		`SELECT COALESCE(SUM(CASE WHEN direction = 'credit' THEN amount ELSE -amount END), 0)
		 FROM ledger_entries`,
	).Scan(&total)
	if err != nil {
		return decimal.Zero, fmt.Errorf("failed to sum ledger entries: %w", err)
	}

	sum, err := decimal.NewFromString(total)
	if err != nil {
		return decimal.Zero, fmt.Errorf("failed to parse ledger total %q: %w", total, err)
	}
	return sum, nil
}

func (a *PostgresAdapter) Ping(ctx context.Context) error {
	return a.db.PingContext(ctx)
}

func (a *PostgresAdapter) Close() error {
	return a.db.Close()
}

var _ port.EntryStore = (*PostgresAdapter)(nil)
