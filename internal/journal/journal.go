// Package journal provides an optional append-only SQLite audit trail of
// submitted orders. It is write-only from the simulator's point of view: the
// ledger never reads it back, so restarting the process still starts from a
// clean slate.
package journal

import (
	"context"
	"database/sql"

	_ "modernc.org/sqlite" // Pure-Go SQLite driver.

	"alpacasim/internal/domain"
)

const schema = `
CREATE TABLE IF NOT EXISTS orders (
	id               TEXT PRIMARY KEY,
	client_order_id  TEXT NOT NULL,
	symbol           TEXT NOT NULL,
	side             TEXT NOT NULL,
	type             TEXT NOT NULL,
	qty              TEXT NOT NULL,
	status           TEXT NOT NULL,
	filled_avg_price TEXT,
	submitted_at     TEXT NOT NULL
);`

// Recorder appends submitted orders to a SQLite database.
type Recorder struct {
	db *sql.DB
}

// Open opens (or creates) the journal database at dbPath and ensures the
// orders table exists.
func Open(dbPath string) (*Recorder, error) {
	db, err := sql.Open("sqlite", dbPath)
	if err != nil {
		return nil, err
	}
	if _, err := db.Exec(schema); err != nil {
		db.Close()
		return nil, err
	}
	return &Recorder{db: db}, nil
}

// Record writes one order to the journal. Re-recording the same order id
// replaces the previous row, so the journal holds the terminal state of each
// order.
func (r *Recorder) Record(ctx context.Context, o domain.Order) error {
	var fillPrice sql.NullString
	if o.FilledAvgPrice != nil {
		fillPrice = sql.NullString{String: o.FilledAvgPrice.String(), Valid: true}
	}
	_, err := r.db.ExecContext(ctx,
		`INSERT OR REPLACE INTO orders
		 (id, client_order_id, symbol, side, type, qty, status, filled_avg_price, submitted_at)
		 VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		o.ID, o.ClientOrderID, o.Symbol, string(o.Side), string(o.Type),
		o.Qty.String(), string(o.Status), fillPrice, o.SubmittedAt.String(),
	)
	return err
}

// Count returns the number of journaled orders.
func (r *Recorder) Count(ctx context.Context) (int, error) {
	var n int
	err := r.db.QueryRowContext(ctx, `SELECT COUNT(*) FROM orders`).Scan(&n)
	return n, err
}

// Close closes the underlying database connection.
func (r *Recorder) Close() error {
	return r.db.Close()
}
