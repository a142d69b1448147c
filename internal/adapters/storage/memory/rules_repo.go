package memory

import (
	"context"
	"errors"
	"strings"
	"sync"

	"cattery-breeding/internal/domain/pairing"
)

type rulesRepo struct {
	mu    sync.RWMutex
	byID  map[string]pairing.Rule
	order []string
}

func NewRulesRepo() pairing.Repository {
	return &rulesRepo{
		byID: make(map[string]pairing.Rule),
	}
}

func (r *rulesRepo) Create(ctx context.Context, rule pairing.Rule) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if strings.TrimSpace(rule.ID) == "" {
		return errors.New("rule id required")
	}
	if _, exists := r.byID[rule.ID]; exists {
		return errors.New("rule already exists")
	}
	r.byID[rule.ID] = rule
	r.order = append(r.order, rule.ID)
	return nil
}

func (r *rulesRepo) GetByID(ctx context.Context, id string) (pairing.Rule, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	rule, ok := r.byID[id]
	if !ok {
		return pairing.Rule{}, pairing.ErrNotFound
	}
	return rule, nil
}

// List preserva el orden de creación: el motor evalúa en ese orden.
func (r *rulesRepo) List(ctx context.Context) ([]pairing.Rule, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	out := make([]pairing.Rule, 0, len(r.order))
	for _, id := range r.order {
		if rule, ok := r.byID[id]; ok {
			out = append(out, rule)
		}
	}
	return out, nil
}

func (r *rulesRepo) SetActive(ctx context.Context, id string, active bool) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	rule, ok := r.byID[id]
	if !ok {
		return pairing.ErrNotFound
	}
	rule.Active = active
	r.byID[id] = rule
	return nil
}

func (r *rulesRepo) Delete(ctx context.Context, id string) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if _, ok := r.byID[id]; !ok {
		return pairing.ErrNotFound
	}
	delete(r.byID, id)
	for i, rid := range r.order {
		if rid == id {
			r.order = append(r.order[:i], r.order[i+1:]...)
			break
		}
	}
	return nil
}
