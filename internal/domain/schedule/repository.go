package schedule

import (
	"context"
	"errors"
)

// ErrEntryNotFound lo devuelven los adapters cuando (maleID, date) no
// existe; el service lo traduce a su taxonomía.
var ErrEntryNotFound = errors.New("schedule entry not found")

type Repository interface {
	// PutBatch guarda todas las celdas o ninguna.
	PutBatch(ctx context.Context, entries []Entry) error
	Get(ctx context.Context, maleID, date string) (Entry, error)
	ListByMale(ctx context.Context, maleID string) ([]Entry, error)
	// ListByDateRange devuelve celdas con from <= Date <= to (YYYY-MM-DD,
	// el orden lexicográfico coincide con el cronológico).
	ListByDateRange(ctx context.Context, from, to string) ([]Entry, error)
	DeleteBatch(ctx context.Context, keys []string) error
	DeleteByMale(ctx context.Context, maleID string) error
}
