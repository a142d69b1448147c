package memory

import (
	"context"
	"errors"
	"sort"
	"strings"
	"sync"

	"cattery-breeding/internal/domain/birth"
)

var ErrNotFound = errors.New("not found")

type birthRepo struct {
	mu           sync.RWMutex
	plans        map[string]birth.Plan
	planOrder    []string
	dispositions []birth.Disposition
	checks       map[string]birth.Check
	checkOrder   []string
}

func NewBirthRepo() birth.Repository {
	return &birthRepo{
		plans:  make(map[string]birth.Plan),
		checks: make(map[string]birth.Check),
	}
}

func (r *birthRepo) CreatePlan(ctx context.Context, p birth.Plan) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if strings.TrimSpace(p.ID) == "" {
		return errors.New("plan id required")
	}
	if _, exists := r.plans[p.ID]; exists {
		return errors.New("plan already exists")
	}
	r.plans[p.ID] = p
	r.planOrder = append(r.planOrder, p.ID)
	return nil
}

func (r *birthRepo) GetPlan(ctx context.Context, id string) (birth.Plan, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	p, ok := r.plans[id]
	if !ok {
		return birth.Plan{}, ErrNotFound
	}
	return p, nil
}

func (r *birthRepo) ListPlans(ctx context.Context) ([]birth.Plan, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	out := make([]birth.Plan, 0, len(r.planOrder))
	for _, id := range r.planOrder {
		out = append(out, r.plans[id])
	}
	return out, nil
}

func (r *birthRepo) ListPlansByMother(ctx context.Context, motherID string) ([]birth.Plan, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	out := make([]birth.Plan, 0)
	for _, id := range r.planOrder {
		if r.plans[id].MotherID == motherID {
			out = append(out, r.plans[id])
		}
	}
	return out, nil
}

func (r *birthRepo) UpdatePlan(ctx context.Context, p birth.Plan) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if _, ok := r.plans[p.ID]; !ok {
		return ErrNotFound
	}
	r.plans[p.ID] = p
	return nil
}

func (r *birthRepo) CreateDisposition(ctx context.Context, d birth.Disposition) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if strings.TrimSpace(d.ID) == "" {
		return errors.New("disposition id required")
	}
	r.dispositions = append(r.dispositions, d)
	return nil
}

func (r *birthRepo) ListDispositions(ctx context.Context, planID string) ([]birth.Disposition, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	out := make([]birth.Disposition, 0)
	for _, d := range r.dispositions {
		if d.BirthRecordID == planID {
			out = append(out, d)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].CreatedAt.Before(out[j].CreatedAt) })
	return out, nil
}

func (r *birthRepo) CreateCheck(ctx context.Context, c birth.Check) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if strings.TrimSpace(c.ID) == "" {
		return errors.New("check id required")
	}
	r.checks[c.ID] = c
	r.checkOrder = append(r.checkOrder, c.ID)
	return nil
}

func (r *birthRepo) GetCheck(ctx context.Context, id string) (birth.Check, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	c, ok := r.checks[id]
	if !ok {
		return birth.Check{}, ErrNotFound
	}
	return c, nil
}

func (r *birthRepo) ListChecks(ctx context.Context) ([]birth.Check, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	out := make([]birth.Check, 0, len(r.checkOrder))
	for _, id := range r.checkOrder {
		if c, ok := r.checks[id]; ok {
			out = append(out, c)
		}
	}
	return out, nil
}

func (r *birthRepo) DeleteCheck(ctx context.Context, id string) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if _, ok := r.checks[id]; !ok {
		return ErrNotFound
	}
	delete(r.checks, id)
	return nil
}
