package memory

import (
	"context"
	"errors"
	"sort"
	"strings"
	"sync"

	"cattery-breeding/internal/ports/cats"
)

// CatsRepo es el directorio de gatos en memoria. En dev arranca vacío y
// se siembra con Put; en producción el directorio vive en Postgres.
type CatsRepo struct {
	mu   sync.RWMutex
	byID map[string]cats.Cat
}

func NewCatsRepo() *CatsRepo {
	return &CatsRepo{
		byID: make(map[string]cats.Cat),
	}
}

// Put alta o reemplaza un gato del catálogo.
func (r *CatsRepo) Put(ctx context.Context, c cats.Cat) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if strings.TrimSpace(c.ID) == "" {
		return errors.New("cat id required")
	}
	r.byID[c.ID] = c
	return nil
}

func (r *CatsRepo) Get(ctx context.Context, id string) (cats.Cat, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	c, ok := r.byID[id]
	if !ok {
		return cats.Cat{}, cats.ErrNotFound
	}
	return c, nil
}

func (r *CatsRepo) List(ctx context.Context) ([]cats.Cat, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	out := make([]cats.Cat, 0, len(r.byID))
	for _, c := range r.byID {
		out = append(out, c)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Name < out[j].Name })
	return out, nil
}

func (r *CatsRepo) KittensOf(ctx context.Context, motherID string) ([]cats.Cat, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	out := make([]cats.Cat, 0)
	for _, c := range r.byID {
		if c.MotherID == motherID {
			out = append(out, c)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Name < out[j].Name })
	return out, nil
}
