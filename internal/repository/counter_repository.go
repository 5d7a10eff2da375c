package repository

import (
	"context"
	"database/sql"
	"fmt"
)

// counterFloor is the value a counter row is created at; the first allocation
// therefore returns counterFloor+1.
const counterFloor = 10000

// URLCounter is the counter name used for short-code allocation.
const URLCounter = "urlId"

// CounterRepository issues strictly increasing integers per counter name.
type CounterRepository interface {
	Next(ctx context.Context, name string) (int64, error)
}

type counterRepository struct {
	db *sql.DB
}

// NewCounterRepository creates a new counter repository
func NewCounterRepository(db *sql.DB) CounterRepository {
	return &counterRepository{db: db}
}

// Next atomically increments and returns the named counter, creating it at
// the floor value on first use. The single upsert statement is the
// correctness mechanism: concurrent callers serialize on the row and can
// never observe the same value. On any store error no ID is fabricated.
func (r *counterRepository) Next(ctx context.Context, name string) (int64, error) {
	query := `
		INSERT INTO counters (seq, counter)
		VALUES ($1, $2 + 1)
		ON CONFLICT (seq) DO UPDATE SET counter = counters.counter + 1
		RETURNING counter
	`

	var value int64
	err := r.db.QueryRowContext(ctx, query, name, counterFloor).Scan(&value)
	if err != nil {
		return 0, fmt.Errorf("failed to allocate next id for %q: %w", name, err)
	}

	return value, nil
}
