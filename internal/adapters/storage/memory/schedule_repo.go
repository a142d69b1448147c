package memory

import (
	"context"
	"errors"
	"sort"
	"sync"

	"cattery-breeding/internal/domain/schedule"
)

type scheduleRepo struct {
	mu    sync.RWMutex
	byKey map[string]schedule.Entry
}

func NewScheduleRepo() schedule.Repository {
	return &scheduleRepo{
		byKey: make(map[string]schedule.Entry),
	}
}

// PutBatch escribe todas las celdas o ninguna: valida antes de tocar el
// map.
func (r *scheduleRepo) PutBatch(ctx context.Context, entries []schedule.Entry) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	for _, e := range entries {
		if e.MaleID == "" || e.Date == "" {
			return errors.New("entry key required")
		}
	}
	for _, e := range entries {
		r.byKey[schedule.Key(e.MaleID, e.Date)] = e
	}
	return nil
}

func (r *scheduleRepo) Get(ctx context.Context, maleID, date string) (schedule.Entry, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	e, ok := r.byKey[schedule.Key(maleID, date)]
	if !ok {
		return schedule.Entry{}, schedule.ErrEntryNotFound
	}
	return e, nil
}

func (r *scheduleRepo) ListByMale(ctx context.Context, maleID string) ([]schedule.Entry, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	out := make([]schedule.Entry, 0)
	for _, e := range r.byKey {
		if e.MaleID == maleID {
			out = append(out, e)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Date < out[j].Date })
	return out, nil
}

func (r *scheduleRepo) ListByDateRange(ctx context.Context, from, to string) ([]schedule.Entry, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	out := make([]schedule.Entry, 0)
	for _, e := range r.byKey {
		if e.Date >= from && e.Date <= to {
			out = append(out, e)
		}
	}
	// Orden estable: fecha asc, macho como desempate.
	sort.Slice(out, func(i, j int) bool {
		if out[i].Date != out[j].Date {
			return out[i].Date < out[j].Date
		}
		return out[i].MaleID < out[j].MaleID
	})
	return out, nil
}

func (r *scheduleRepo) DeleteBatch(ctx context.Context, keys []string) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	for _, k := range keys {
		delete(r.byKey, k)
	}
	return nil
}

func (r *scheduleRepo) DeleteByMale(ctx context.Context, maleID string) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	for k, e := range r.byKey {
		if e.MaleID == maleID {
			delete(r.byKey, k)
		}
	}
	return nil
}
