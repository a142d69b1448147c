package memory

import (
	"context"
	"sync"
)

// WeightsRepo guarda el último peso conocido por gato. El dato ausente
// se reporta como desconocido, nunca como cero.
type WeightsRepo struct {
	mu    sync.RWMutex
	grams map[string]int
}

func NewWeightsRepo() *WeightsRepo {
	return &WeightsRepo{
		grams: make(map[string]int),
	}
}

func (r *WeightsRepo) Record(ctx context.Context, catID string, grams int) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.grams[catID] = grams
	return nil
}

func (r *WeightsRepo) LatestGrams(ctx context.Context, catID string) (int, bool, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	g, ok := r.grams[catID]
	return g, ok, nil
}
