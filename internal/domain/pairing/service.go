package pairing

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/google/uuid"
)

var (
	ErrInvalidInput = errors.New("invalid input")
	ErrNotFound     = errors.New("rule not found")
)

// Service administra reglas NG y expone la evaluación de parejas.
type Service struct {
	repo   Repository
	engine *Engine
	now    func() time.Time
}

func NewService(repo Repository, engine *Engine) *Service {
	if engine == nil {
		engine = NewEngine()
	}
	return &Service{
		repo:   repo,
		engine: engine,
		now:    time.Now,
	}
}

type CreateInput struct {
	Name             string
	Type             RuleType
	MaleConditions   []string
	FemaleConditions []string
	MaleNames        []string
	FemaleNames      []string
	GenerationLimit  int
	Description      string
}

func (s *Service) Create(ctx context.Context, in CreateInput) (Rule, error) {
	name := strings.TrimSpace(in.Name)
	if name == "" {
		return Rule{}, ErrInvalidInput
	}
	if !in.Type.Valid() {
		return Rule{}, ErrInvalidInput
	}

	// Payload mínimo según tipo.
	switch in.Type {
	case RuleTagCombination:
		if len(in.MaleConditions) == 0 || len(in.FemaleConditions) == 0 {
			return Rule{}, ErrInvalidInput
		}
	case RuleIndividualProhibition:
		if len(in.MaleNames) == 0 || len(in.FemaleNames) == 0 {
			return Rule{}, ErrInvalidInput
		}
	case RuleGenerationLimit:
		if in.GenerationLimit < 1 {
			return Rule{}, ErrInvalidInput
		}
	}

	now := s.now()
	r := Rule{
		ID:               uuid.NewString(),
		Name:             name,
		Type:             in.Type,
		MaleConditions:   cleanList(in.MaleConditions),
		FemaleConditions: cleanList(in.FemaleConditions),
		MaleNames:        cleanList(in.MaleNames),
		FemaleNames:      cleanList(in.FemaleNames),
		GenerationLimit:  in.GenerationLimit,
		Description:      strings.TrimSpace(in.Description),
		Active:           true,
		CreatedAt:        now,
		UpdatedAt:        now,
	}

	if err := s.repo.Create(ctx, r); err != nil {
		return Rule{}, err
	}
	return r, nil
}

func (s *Service) List(ctx context.Context) ([]Rule, error) {
	return s.repo.List(ctx)
}

// SetActive habilita o revoca una regla sin borrarla.
func (s *Service) SetActive(ctx context.Context, id string, active bool) (Rule, error) {
	id = strings.TrimSpace(id)
	if id == "" {
		return Rule{}, ErrInvalidInput
	}
	if err := s.repo.SetActive(ctx, id, active); err != nil {
		return Rule{}, err
	}
	return s.repo.GetByID(ctx, id)
}

func (s *Service) Delete(ctx context.Context, id string) error {
	id = strings.TrimSpace(id)
	if id == "" {
		return ErrInvalidInput
	}
	return s.repo.Delete(ctx, id)
}

// Evaluate corre el motor sobre la colección completa de reglas.
// No bloquea nada: la decisión de frenar un placeMating la toma el caller.
func (s *Service) Evaluate(ctx context.Context, male, female Candidate) (Rule, bool, error) {
	rules, err := s.repo.List(ctx)
	if err != nil {
		return Rule{}, false, err
	}
	rule, prohibited := s.engine.MatchingRule(male, female, rules)
	return rule, prohibited, nil
}

func cleanList(in []string) []string {
	out := make([]string, 0, len(in))
	for _, v := range in {
		v = strings.TrimSpace(v)
		if v == "" {
			continue
		}
		out = append(out, v)
	}
	return out
}
