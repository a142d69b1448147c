package memory

import (
	"context"
	"sync"

	"cattery-breeding/internal/domain/schedule"
)

// ledgerRepo guarda los conteos de chequeo como clave opaca → entero.
// Las claves nunca expiran; borrar celdas del calendario no las toca.
type ledgerRepo struct {
	mu     sync.RWMutex
	counts map[string]int
}

func NewLedgerRepo() schedule.LedgerRepository {
	return &ledgerRepo{
		counts: make(map[string]int),
	}
}

func (r *ledgerRepo) Get(ctx context.Context, key string) (int, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return r.counts[key], nil
}

// Increment es atómico bajo el lock de escritura: no hay ventana entre
// leer el conteo y escribir el siguiente.
func (r *ledgerRepo) Increment(ctx context.Context, key string) (int, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.counts[key]++
	return r.counts[key], nil
}
