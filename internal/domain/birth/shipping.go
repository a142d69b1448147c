package birth

import (
	"context"
	"sort"
	"time"

	"cattery-breeding/internal/platform/calendar"
	"cattery-breeding/internal/ports/cats"
	"cattery-breeding/internal/ports/weights"
)

// EligibilityInput parametriza la corrida; los ceros toman los valores
// configurados del evaluador.
type EligibilityInput struct {
	MinWeightGrams int
	AgeLimitDays   int
}

// EligibleKitten es un cachorro listo para envío.
type EligibleKitten struct {
	PlanID      string
	KittenID    string
	KittenName  string
	MotherID    string
	MotherName  string
	BirthDate   string // YYYY-MM-DD
	AgeInDays   int
	WeightGrams int
}

// Eligibility evalúa qué cachorros de camadas abiertas están listos para
// envío. A diferencia del motor de reglas NG, aquí el dato faltante
// excluye: sin peso conocido no se embarca.
type Eligibility struct {
	repo      Repository
	directory cats.Directory
	weights   weights.Lookup
	minGrams  int
	ageLimit  int
	now       func() time.Time
}

func NewEligibility(repo Repository, directory cats.Directory, lookup weights.Lookup, minGrams, ageLimitDays int) *Eligibility {
	if minGrams <= 0 {
		minGrams = 500
	}
	if ageLimitDays <= 0 {
		ageLimitDays = 90
	}
	return &Eligibility{
		repo:      repo,
		directory: directory,
		weights:   lookup,
		minGrams:  minGrams,
		ageLimit:  ageLimitDays,
		now:       time.Now,
	}
}

// EligibleKittens recorre los planes BORN sin cerrar y devuelve, por
// madre y nombre de cachorro, los que cumplen edad, peso y ausencia de
// disposición vigente.
func (e *Eligibility) EligibleKittens(ctx context.Context, in EligibilityInput) ([]EligibleKitten, error) {
	minGrams := in.MinWeightGrams
	if minGrams <= 0 {
		minGrams = e.minGrams
	}
	ageLimit := in.AgeLimitDays
	if ageLimit <= 0 {
		ageLimit = e.ageLimit
	}

	plans, err := e.repo.ListPlans(ctx)
	if err != nil {
		return nil, err
	}

	now := e.now()
	out := make([]EligibleKitten, 0)
	for _, plan := range plans {
		if plan.Status != StatusBorn || plan.Sealed() {
			continue
		}

		mother, err := e.directory.Get(ctx, plan.MotherID)
		if err != nil {
			// Madre fuera del directorio: la camada no es evaluable.
			continue
		}

		kittens, err := e.directory.KittensOf(ctx, plan.MotherID)
		if err != nil {
			return nil, err
		}

		records, err := e.repo.ListDispositions(ctx, plan.ID)
		if err != nil {
			return nil, err
		}
		current := CurrentDispositions(records)

		for _, k := range kittens {
			if k.BirthDate == nil {
				continue
			}
			age := calendar.AgeInDays(*k.BirthDate, now)
			if age > ageLimit {
				continue
			}
			if _, assigned := current[k.ID]; assigned {
				continue
			}

			grams, ok, err := e.weights.LatestGrams(ctx, k.ID)
			if err != nil || !ok || grams < minGrams {
				// Peso desconocido o insuficiente: excluido.
				continue
			}

			out = append(out, EligibleKitten{
				PlanID:      plan.ID,
				KittenID:    k.ID,
				KittenName:  k.Name,
				MotherID:    mother.ID,
				MotherName:  mother.Name,
				BirthDate:   k.BirthDate.Format(calendar.DateLayout),
				AgeInDays:   age,
				WeightGrams: grams,
			})
		}
	}

	sort.Slice(out, func(i, j int) bool {
		if out[i].MotherName != out[j].MotherName {
			return out[i].MotherName < out[j].MotherName
		}
		return out[i].KittenName < out[j].KittenName
	})
	return out, nil
}
