package audit

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/odyssey-erp/orderdesk/internal/orders"
	"github.com/odyssey-erp/orderdesk/internal/platform/db"
)

var schema = []string{
	`CREATE TABLE IF NOT EXISTS order_edits (
		id BIGSERIAL PRIMARY KEY,
		kind TEXT NOT NULL,
		order_id TEXT NOT NULL,
		order_number TEXT NOT NULL,
		before JSONB NOT NULL,
		after JSONB NOT NULL,
		occurred_at TIMESTAMPTZ NOT NULL DEFAULT NOW()
	)`,
	`CREATE INDEX IF NOT EXISTS order_edits_order_id_idx ON order_edits (order_id, occurred_at DESC)`,
}

// Execer is the subset of pgxpool.Pool the logger needs.
type Execer interface {
	Exec(ctx context.Context, sql string, args ...any) (pgconn.CommandTag, error)
}

// Logger writes reconciled edits into order_edits.
type Logger struct {
	db Execer
}

// NewLogger returns a new Logger.
func NewLogger(db Execer) *Logger {
	return &Logger{db: db}
}

// EnsureSchema creates the edit trail table when missing.
func EnsureSchema(ctx context.Context, pool *pgxpool.Pool) error {
	return db.WithTx(ctx, pool, func(tx pgx.Tx) error {
		for _, stmt := range schema {
			if _, err := tx.Exec(ctx, stmt); err != nil {
				return fmt.Errorf("audit: ensure schema: %w", err)
			}
		}
		return nil
	})
}

// Record persists one edit.
func (l *Logger) Record(ctx context.Context, rec orders.EditRecord) error {
	if l == nil || l.db == nil {
		return errors.New("audit logger not initialised")
	}
	if rec.Kind == "" || rec.OrderID == "" {
		return errors.New("audit record requires kind and order id")
	}
	before, err := json.Marshal(rec.Before)
	if err != nil {
		return err
	}
	after, err := json.Marshal(rec.After)
	if err != nil {
		return err
	}
	var at *time.Time
	if !rec.At.IsZero() {
		t := rec.At.UTC()
		at = &t
	}
	_, err = l.db.Exec(ctx,
		`INSERT INTO order_edits (kind, order_id, order_number, before, after, occurred_at) VALUES ($1, $2, $3, $4, $5, COALESCE($6, NOW()))`,
		rec.Kind, rec.OrderID, rec.After.OrderNumber, before, after, at,
	)
	if err != nil {
		return fmt.Errorf("audit: insert edit: %w", err)
	}
	return nil
}
