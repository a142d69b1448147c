package pairing

import (
	"context"
	"errors"
	"testing"
)

// -------------------------
// Test repo (in-memory)
// -------------------------

type testRepo struct {
	order []string
	byID  map[string]Rule
}

func newTestRepo() *testRepo {
	return &testRepo{byID: map[string]Rule{}}
}

func (r *testRepo) Create(ctx context.Context, rule Rule) error {
	if rule.ID == "" {
		return errors.New("repo: id required")
	}
	if _, ok := r.byID[rule.ID]; ok {
		return errors.New("repo: already exists")
	}
	r.byID[rule.ID] = rule
	r.order = append(r.order, rule.ID)
	return nil
}

func (r *testRepo) GetByID(ctx context.Context, id string) (Rule, error) {
	rule, ok := r.byID[id]
	if !ok {
		return Rule{}, ErrNotFound
	}
	return rule, nil
}

func (r *testRepo) List(ctx context.Context) ([]Rule, error) {
	out := make([]Rule, 0, len(r.order))
	for _, id := range r.order {
		out = append(out, r.byID[id])
	}
	return out, nil
}

func (r *testRepo) SetActive(ctx context.Context, id string, active bool) error {
	rule, ok := r.byID[id]
	if !ok {
		return ErrNotFound
	}
	rule.Active = active
	r.byID[id] = rule
	return nil
}

func (r *testRepo) Delete(ctx context.Context, id string) error {
	if _, ok := r.byID[id]; !ok {
		return ErrNotFound
	}
	delete(r.byID, id)
	for i, v := range r.order {
		if v == id {
			r.order = append(r.order[:i], r.order[i+1:]...)
			break
		}
	}
	return nil
}

// -------------------------
// Tests
// -------------------------

func TestService_Create_ValidatesPayloadByType(t *testing.T) {
	svc := NewService(newTestRepo(), nil)
	ctx := context.Background()

	// TAG_COMBINATION sin condiciones de hembra => inválido.
	_, err := svc.Create(ctx, CreateInput{
		Name:           "incomplete",
		Type:           RuleTagCombination,
		MaleConditions: []string{"A"},
	})
	if !errors.Is(err, ErrInvalidInput) {
		t.Fatalf("expected ErrInvalidInput, got %v", err)
	}

	// INDIVIDUAL_PROHIBITION sin nombres => inválido.
	_, err = svc.Create(ctx, CreateInput{
		Name:      "incomplete",
		Type:      RuleIndividualProhibition,
		MaleNames: []string{"Leo"},
	})
	if !errors.Is(err, ErrInvalidInput) {
		t.Fatalf("expected ErrInvalidInput, got %v", err)
	}

	// Tipo desconocido => inválido.
	_, err = svc.Create(ctx, CreateInput{Name: "x", Type: RuleType("WEIRD")})
	if !errors.Is(err, ErrInvalidInput) {
		t.Fatalf("expected ErrInvalidInput for unknown type, got %v", err)
	}

	// Completa => ok, activa por default.
	rule, err := svc.Create(ctx, CreateInput{
		Name:             "ok",
		Type:             RuleTagCombination,
		MaleConditions:   []string{"A"},
		FemaleConditions: []string{"B"},
	})
	if err != nil {
		t.Fatal(err)
	}
	if !rule.Active || rule.ID == "" {
		t.Fatalf("expected active rule with id, got %+v", rule)
	}
}

func TestService_Evaluate_UsesCollectionOrder(t *testing.T) {
	repo := newTestRepo()
	svc := NewService(repo, nil)
	ctx := context.Background()

	first, err := svc.Create(ctx, CreateInput{
		Name:             "first",
		Type:             RuleTagCombination,
		MaleConditions:   []string{"A"},
		FemaleConditions: []string{"B"},
	})
	if err != nil {
		t.Fatal(err)
	}
	if _, err := svc.Create(ctx, CreateInput{
		Name:             "second",
		Type:             RuleTagCombination,
		MaleConditions:   []string{"A"},
		FemaleConditions: []string{"B"},
	}); err != nil {
		t.Fatal(err)
	}

	male := Candidate{ID: "m1", Name: "Leo", Tags: []string{"A"}}
	female := Candidate{ID: "f1", Name: "Mimi", Tags: []string{"B"}}

	rule, prohibited, err := svc.Evaluate(ctx, male, female)
	if err != nil {
		t.Fatal(err)
	}
	if !prohibited || rule.ID != first.ID {
		t.Fatalf("expected first rule %s, got %s (prohibited=%v)", first.ID, rule.ID, prohibited)
	}
}

func TestService_SetActive_Revokes(t *testing.T) {
	repo := newTestRepo()
	svc := NewService(repo, nil)
	ctx := context.Background()

	rule, err := svc.Create(ctx, CreateInput{
		Name:             "toggle",
		Type:             RuleTagCombination,
		MaleConditions:   []string{"A"},
		FemaleConditions: []string{"B"},
	})
	if err != nil {
		t.Fatal(err)
	}

	male := Candidate{ID: "m1", Name: "Leo", Tags: []string{"A"}}
	female := Candidate{ID: "f1", Name: "Mimi", Tags: []string{"B"}}

	if _, prohibited, _ := svc.Evaluate(ctx, male, female); !prohibited {
		t.Fatal("expected prohibited while active")
	}

	updated, err := svc.SetActive(ctx, rule.ID, false)
	if err != nil {
		t.Fatal(err)
	}
	if updated.Active {
		t.Fatal("expected rule inactive after toggle")
	}

	if _, prohibited, _ := svc.Evaluate(ctx, male, female); prohibited {
		t.Fatal("revoked rule must not prohibit")
	}
}

func TestService_Delete_UnknownRule(t *testing.T) {
	svc := NewService(newTestRepo(), nil)
	if err := svc.Delete(context.Background(), "nope"); !errors.Is(err, ErrNotFound) {
		t.Fatalf("expected ErrNotFound, got %v", err)
	}
}
