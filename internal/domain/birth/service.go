package birth

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"

	"cattery-breeding/internal/platform/calendar"
	"cattery-breeding/internal/platform/keyedmutex"
	"cattery-breeding/internal/ports/cats"
)

var (
	ErrInvalidInput           = errors.New("invalid input")
	ErrUnknownEntity          = errors.New("unknown entity")
	ErrDuplicateActivePlan    = errors.New("mother already has an active plan")
	ErrInvalidCount           = errors.New("invalid kitten count")
	ErrIncompleteDispositions = errors.New("kittens without disposition")
	ErrPlanSealed             = errors.New("plan already completed")
	ErrBadState               = errors.New("invalid state for transition")
)

// Días de gestación y de espera hasta el chequeo, contados desde el
// apareamiento.
const (
	gestationDays      = 63
	pregnancyCheckDays = 21
)

// Service gobierna el ciclo embarazo → parto → disposiciones → cierre.
// Serializa por madre las creaciones y por plan las transiciones; cada
// transición es todo-o-nada.
type Service struct {
	repo         Repository
	directory    cats.Directory
	locks        *keyedmutex.KeyedMutex
	ageLimitDays int
	now          func() time.Time
}

func NewService(repo Repository, directory cats.Directory, ageLimitDays int) *Service {
	if ageLimitDays <= 0 {
		ageLimitDays = 90
	}
	return &Service{
		repo:         repo,
		directory:    directory,
		locks:        keyedmutex.New(),
		ageLimitDays: ageLimitDays,
		now:          time.Now,
	}
}

// SuspectPregnancy abre un chequeo SUSPECTED tras un apareamiento
// exitoso. La fecha de chequeo se programa a partir del apareamiento.
func (s *Service) SuspectPregnancy(ctx context.Context, motherID, fatherID, matingDate string) (Check, error) {
	if strings.TrimSpace(motherID) == "" || strings.TrimSpace(fatherID) == "" {
		return Check{}, ErrInvalidInput
	}
	mated, err := calendar.ParseDate(matingDate)
	if err != nil {
		return Check{}, err
	}

	c := Check{
		ID:         uuid.NewString(),
		MotherID:   motherID,
		FatherID:   fatherID,
		MatingDate: matingDate,
		CheckDate:  mated.AddDate(0, 0, pregnancyCheckDays).Format(calendar.DateLayout),
		Status:     CheckSuspected,
		CreatedAt:  s.now().UTC(),
	}
	if err := s.repo.CreateCheck(ctx, c); err != nil {
		return Check{}, err
	}
	return c, nil
}

func (s *Service) ListChecks(ctx context.Context) ([]Check, error) {
	checks, err := s.repo.ListChecks(ctx)
	if err != nil {
		return nil, err
	}
	if checks == nil {
		checks = []Check{}
	}
	return checks, nil
}

// ResolveCheck cierra un chequeo: positivo confirma el embarazo (crea el
// plan) y retira el chequeo; negativo solo lo retira.
func (s *Service) ResolveCheck(ctx context.Context, checkID string, positive bool, notes string) (*Plan, error) {
	c, err := s.repo.GetCheck(ctx, checkID)
	if err != nil {
		return nil, fmt.Errorf("%w: check %s", ErrUnknownEntity, checkID)
	}

	if !positive {
		if err := s.repo.DeleteCheck(ctx, checkID); err != nil {
			return nil, err
		}
		return nil, nil
	}

	plan, err := s.ConfirmPregnancy(ctx, ConfirmInput{
		MotherID:   c.MotherID,
		FatherID:   c.FatherID,
		MatingDate: c.MatingDate,
		Notes:      notes,
	})
	if err != nil {
		return nil, err
	}
	if err := s.repo.DeleteCheck(ctx, checkID); err != nil {
		return nil, err
	}
	return &plan, nil
}

type ConfirmInput struct {
	MotherID          string
	FatherID          string
	MatingDate        string // YYYY-MM-DD
	ExpectedBirthDate string // opcional; por defecto matingDate + gestación
	Notes             string
}

// ConfirmPregnancy abre un plan EXPECTED para la madre. Una madre solo
// puede tener un plan activo (EXPECTED, o BORN sin cerrar) a la vez.
func (s *Service) ConfirmPregnancy(ctx context.Context, in ConfirmInput) (Plan, error) {
	if strings.TrimSpace(in.MotherID) == "" || strings.TrimSpace(in.FatherID) == "" {
		return Plan{}, ErrInvalidInput
	}
	mated, err := calendar.ParseDate(in.MatingDate)
	if err != nil {
		return Plan{}, err
	}

	mother, err := s.directory.Get(ctx, in.MotherID)
	if err != nil {
		return Plan{}, fmt.Errorf("%w: mother %s", ErrUnknownEntity, in.MotherID)
	}
	if mother.Gender != cats.GenderFemale {
		return Plan{}, ErrInvalidInput
	}
	if _, err := s.directory.Get(ctx, in.FatherID); err != nil {
		return Plan{}, fmt.Errorf("%w: father %s", ErrUnknownEntity, in.FatherID)
	}

	expected := in.ExpectedBirthDate
	if expected == "" {
		expected = mated.AddDate(0, 0, gestationDays).Format(calendar.DateLayout)
	} else if _, err := calendar.ParseDate(expected); err != nil {
		return Plan{}, err
	}

	unlock := s.locks.Lock("mother:" + in.MotherID)
	defer unlock()

	existing, err := s.repo.ListPlansByMother(ctx, in.MotherID)
	if err != nil {
		return Plan{}, err
	}
	for _, p := range existing {
		if p.Active() {
			return Plan{}, fmt.Errorf("%w: %s", ErrDuplicateActivePlan, in.MotherID)
		}
	}

	now := s.now().UTC()
	plan := Plan{
		ID:                uuid.NewString(),
		MotherID:          in.MotherID,
		FatherID:          in.FatherID,
		MatingDate:        in.MatingDate,
		ExpectedBirthDate: expected,
		Status:            StatusExpected,
		Notes:             strings.TrimSpace(in.Notes),
		CreatedAt:         now,
		UpdatedAt:         now,
	}
	if err := s.repo.CreatePlan(ctx, plan); err != nil {
		return Plan{}, err
	}
	return plan, nil
}

// DeclinePregnancy descarta un plan aún en gestación.
func (s *Service) DeclinePregnancy(ctx context.Context, planID string) (Plan, error) {
	unlock := s.locks.Lock("plan:" + planID)
	defer unlock()

	plan, err := s.getPlan(ctx, planID)
	if err != nil {
		return Plan{}, err
	}
	if plan.Sealed() {
		return Plan{}, ErrPlanSealed
	}
	if plan.Status != StatusExpected {
		return Plan{}, fmt.Errorf("%w: %s is %s", ErrBadState, planID, plan.Status)
	}

	plan.Status = StatusCancelled
	plan.UpdatedAt = s.now().UTC()
	if err := s.repo.UpdatePlan(ctx, plan); err != nil {
		return Plan{}, err
	}
	return plan, nil
}

// RecordBirth registra el parto: EXPECTED → BORN con los conteos de la
// camada.
func (s *Service) RecordBirth(ctx context.Context, planID, birthDate string, born, dead int) (Plan, error) {
	if _, err := calendar.ParseDate(birthDate); err != nil {
		return Plan{}, err
	}
	if born < 0 || dead < 0 || born-dead < 0 {
		return Plan{}, ErrInvalidCount
	}

	unlock := s.locks.Lock("plan:" + planID)
	defer unlock()

	plan, err := s.getPlan(ctx, planID)
	if err != nil {
		return Plan{}, err
	}
	if plan.Sealed() {
		return Plan{}, ErrPlanSealed
	}
	if plan.Status != StatusExpected {
		return Plan{}, fmt.Errorf("%w: %s is %s", ErrBadState, planID, plan.Status)
	}

	plan.Status = StatusBorn
	plan.ActualBirthDate = birthDate
	plan.ActualKittens = born
	plan.DeadKittens = dead
	plan.UpdatedAt = s.now().UTC()
	if err := s.repo.UpdatePlan(ctx, plan); err != nil {
		return Plan{}, err
	}
	return plan, nil
}

type AssignInput struct {
	KittenID          string
	Type              DispositionType
	TrainingStartDate string
	SaleInfo          *SaleInfo
	DeathDate         string
}

// AssignDisposition registra el destino de un cachorro. Reasignar crea
// un registro nuevo; el vigente es siempre el más reciente.
func (s *Service) AssignDisposition(ctx context.Context, planID string, in AssignInput) (Disposition, error) {
	if strings.TrimSpace(in.KittenID) == "" || !in.Type.Valid() {
		return Disposition{}, ErrInvalidInput
	}
	switch in.Type {
	case DispositionTraining:
		if in.TrainingStartDate != "" {
			if _, err := calendar.ParseDate(in.TrainingStartDate); err != nil {
				return Disposition{}, err
			}
		}
	case DispositionSale:
		if in.SaleInfo == nil || strings.TrimSpace(in.SaleInfo.Buyer) == "" {
			return Disposition{}, ErrInvalidInput
		}
		if in.SaleInfo.SaleDate != "" {
			if _, err := calendar.ParseDate(in.SaleInfo.SaleDate); err != nil {
				return Disposition{}, err
			}
		}
	case DispositionDeceased:
		if in.DeathDate != "" {
			if _, err := calendar.ParseDate(in.DeathDate); err != nil {
				return Disposition{}, err
			}
		}
	}

	unlock := s.locks.Lock("plan:" + planID)
	defer unlock()

	plan, err := s.getPlan(ctx, planID)
	if err != nil {
		return Disposition{}, err
	}
	if plan.Sealed() {
		return Disposition{}, ErrPlanSealed
	}
	if plan.Status != StatusBorn {
		return Disposition{}, fmt.Errorf("%w: %s is %s", ErrBadState, planID, plan.Status)
	}

	d := Disposition{
		ID:                uuid.NewString(),
		BirthRecordID:     plan.ID,
		KittenID:          in.KittenID,
		Type:              in.Type,
		TrainingStartDate: in.TrainingStartDate,
		SaleInfo:          in.SaleInfo,
		DeathDate:         in.DeathDate,
		CreatedAt:         s.now().UTC(),
	}
	if err := s.repo.CreateDisposition(ctx, d); err != nil {
		return Disposition{}, err
	}
	return d, nil
}

// Complete sella el plan. Exige que cada cachorro vigente de la madre
// (según el directorio, dentro del límite de edad) tenga disposición.
func (s *Service) Complete(ctx context.Context, planID string) (Plan, error) {
	unlock := s.locks.Lock("plan:" + planID)
	defer unlock()

	plan, err := s.getPlan(ctx, planID)
	if err != nil {
		return Plan{}, err
	}
	if plan.Sealed() {
		return Plan{}, ErrPlanSealed
	}
	if plan.Status != StatusBorn {
		return Plan{}, fmt.Errorf("%w: %s is %s", ErrBadState, planID, plan.Status)
	}

	kittens, err := s.planKittens(ctx, plan)
	if err != nil {
		return Plan{}, err
	}

	records, err := s.repo.ListDispositions(ctx, planID)
	if err != nil {
		return Plan{}, err
	}
	current := CurrentDispositions(records)

	missing := make([]string, 0)
	for _, k := range kittens {
		if _, ok := current[k.ID]; !ok {
			missing = append(missing, k.Name)
		}
	}
	if len(missing) > 0 {
		return Plan{}, fmt.Errorf("%w: %s", ErrIncompleteDispositions, strings.Join(missing, ", "))
	}

	now := s.now().UTC()
	plan.CompletedAt = &now
	plan.UpdatedAt = now
	if err := s.repo.UpdatePlan(ctx, plan); err != nil {
		return Plan{}, err
	}
	return plan, nil
}

func (s *Service) Plan(ctx context.Context, planID string) (Plan, error) {
	return s.getPlan(ctx, planID)
}

func (s *Service) ListPlans(ctx context.Context) ([]Plan, error) {
	plans, err := s.repo.ListPlans(ctx)
	if err != nil {
		return nil, err
	}
	if plans == nil {
		plans = []Plan{}
	}
	return plans, nil
}

// Dispositions devuelve los registros del plan y el vigente por cachorro.
func (s *Service) Dispositions(ctx context.Context, planID string) ([]Disposition, map[string]Disposition, error) {
	if _, err := s.getPlan(ctx, planID); err != nil {
		return nil, nil, err
	}
	records, err := s.repo.ListDispositions(ctx, planID)
	if err != nil {
		return nil, nil, err
	}
	if records == nil {
		records = []Disposition{}
	}
	return records, CurrentDispositions(records), nil
}

func (s *Service) getPlan(ctx context.Context, planID string) (Plan, error) {
	plan, err := s.repo.GetPlan(ctx, planID)
	if err != nil {
		return Plan{}, fmt.Errorf("%w: plan %s", ErrUnknownEntity, planID)
	}
	return plan, nil
}

// planKittens son los cachorros de la madre relevantes para el plan:
// registrados en el directorio con su MotherID y dentro del límite de
// edad desde el nacimiento de la camada.
func (s *Service) planKittens(ctx context.Context, plan Plan) ([]cats.Cat, error) {
	kittens, err := s.directory.KittensOf(ctx, plan.MotherID)
	if err != nil {
		return nil, err
	}

	now := s.now()
	out := make([]cats.Cat, 0, len(kittens))
	for _, k := range kittens {
		if k.BirthDate == nil {
			continue
		}
		if calendar.AgeInDays(*k.BirthDate, now) > s.ageLimitDays {
			continue
		}
		out = append(out, k)
	}
	return out, nil
}
