package schedule

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"cattery-breeding/internal/platform/calendar"
	"cattery-breeding/internal/platform/keyedmutex"
	"cattery-breeding/internal/ports/cats"
)

var (
	ErrInvalidInput  = errors.New("invalid input")
	ErrSlotOccupied  = errors.New("slot occupied")
	ErrUnknownEntity = errors.New("unknown entity")
)

// Service es el dueño del calendario de apareamientos y del ledger de
// checks. Las mutaciones van serializadas por macho: un lock por macho
// subsume la clave (macho, mes) — un tramo puede cruzar de mes.
type Service struct {
	repo      Repository
	ledger    *Ledger
	directory cats.Directory
	locks     *keyedmutex.KeyedMutex
	now       func() time.Time
}

func NewService(repo Repository, ledger *Ledger, directory cats.Directory) *Service {
	return &Service{
		repo:      repo,
		ledger:    ledger,
		directory: directory,
		locks:     keyedmutex.New(),
		now:       time.Now,
	}
}

func (s *Service) Ledger() *Ledger {
	return s.ledger
}

type PlaceInput struct {
	MaleID    string
	FemaleID  string
	StartDate string // YYYY-MM-DD
	Duration  int
}

// PlaceMating reserva un tramo de `duration` días para la pareja.
// Falla con ErrSlotOccupied si alguna fecha del tramo ya tiene una celda
// activa del macho. Todo-o-nada: si falla, no queda ninguna celda escrita.
func (s *Service) PlaceMating(ctx context.Context, in PlaceInput) ([]Entry, error) {
	if strings.TrimSpace(in.MaleID) == "" || strings.TrimSpace(in.FemaleID) == "" {
		return nil, ErrInvalidInput
	}

	span, err := calendar.ExpandSpan(in.StartDate, in.Duration)
	if err != nil {
		return nil, err
	}

	male, err := s.directory.Get(ctx, in.MaleID)
	if err != nil {
		return nil, fmt.Errorf("%w: male %s", ErrUnknownEntity, in.MaleID)
	}
	female, err := s.directory.Get(ctx, in.FemaleID)
	if err != nil {
		return nil, fmt.Errorf("%w: female %s", ErrUnknownEntity, in.FemaleID)
	}
	if male.Gender != cats.GenderMale || female.Gender != cats.GenderFemale {
		return nil, ErrInvalidInput
	}

	unlock := s.locks.Lock(in.MaleID)
	defer unlock()

	// Validar todo el tramo antes de escribir nada.
	for _, day := range span {
		existing, err := s.repo.Get(ctx, in.MaleID, day.Date)
		if err != nil {
			if errors.Is(err, ErrEntryNotFound) {
				continue
			}
			return nil, err
		}
		if !existing.IsHistory {
			return nil, fmt.Errorf("%w: %s %s", ErrSlotOccupied, in.MaleID, day.Date)
		}
	}

	entries := make([]Entry, 0, len(span))
	for _, day := range span {
		entries = append(entries, Entry{
			MaleID:     male.ID,
			MaleName:   male.Name,
			FemaleID:   female.ID,
			FemaleName: female.Name,
			Date:       day.Date,
			Duration:   in.Duration,
			DayIndex:   day.DayIndex,
		})
	}

	if err := s.repo.PutBatch(ctx, entries); err != nil {
		return nil, err
	}
	return entries, nil
}

// RecordResult cierra el tramo activo de (male, female) que cubre `date`:
// todas sus celdas pasan a histórico y solo la celda terminal queda
// estampada con el resultado. No crea planes de nacimiento — eso es del
// ciclo de vida, invocado por el caller.
func (s *Service) RecordResult(ctx context.Context, maleID, femaleID, date string, result Result) ([]Entry, error) {
	if !result.Valid() {
		return nil, ErrInvalidInput
	}

	unlock := s.locks.Lock(maleID)
	defer unlock()

	anchor, err := s.repo.Get(ctx, maleID, date)
	if err != nil {
		if errors.Is(err, ErrEntryNotFound) {
			return nil, fmt.Errorf("%w: no entry for %s on %s", ErrUnknownEntity, maleID, date)
		}
		return nil, err
	}
	if anchor.IsHistory || anchor.FemaleID != femaleID {
		return nil, fmt.Errorf("%w: no active span for %s/%s on %s", ErrUnknownEntity, maleID, femaleID, date)
	}

	span, err := s.spanEntries(ctx, anchor)
	if err != nil {
		return nil, err
	}

	updated := make([]Entry, 0, len(span))
	for _, e := range span {
		e.IsHistory = true
		if e.DayIndex == e.Duration-1 {
			e.Result = result
		}
		updated = append(updated, e)
	}

	if err := s.repo.PutBatch(ctx, updated); err != nil {
		return nil, err
	}
	return updated, nil
}

// RemoveSpan borra el tramo activo que cubre (maleID, date); es la vía
// para reemplazar una selección (borrar y volver a colocar).
func (s *Service) RemoveSpan(ctx context.Context, maleID, date string) error {
	unlock := s.locks.Lock(maleID)
	defer unlock()

	anchor, err := s.repo.Get(ctx, maleID, date)
	if err != nil {
		if errors.Is(err, ErrEntryNotFound) {
			return fmt.Errorf("%w: no entry for %s on %s", ErrUnknownEntity, maleID, date)
		}
		return err
	}
	if anchor.IsHistory {
		return fmt.Errorf("%w: span already closed", ErrUnknownEntity)
	}

	span, err := s.spanEntries(ctx, anchor)
	if err != nil {
		return err
	}

	keys := make([]string, 0, len(span))
	for _, e := range span {
		keys = append(keys, Key(e.MaleID, e.Date))
	}
	return s.repo.DeleteBatch(ctx, keys)
}

// RemoveMale borra todas las celdas del macho (activas e históricas).
// El ledger de checks no se toca: sus claves no dependen del roster.
func (s *Service) RemoveMale(ctx context.Context, maleID string) error {
	if strings.TrimSpace(maleID) == "" {
		return ErrInvalidInput
	}

	unlock := s.locks.Lock(maleID)
	defer unlock()

	return s.repo.DeleteByMale(ctx, maleID)
}

// MaleHistory lista todas las celdas del macho, activas e históricas,
// en orden cronológico.
func (s *Service) MaleHistory(ctx context.Context, maleID string) ([]Entry, error) {
	if strings.TrimSpace(maleID) == "" {
		return nil, ErrInvalidInput
	}
	return s.repo.ListByMale(ctx, maleID)
}

// MonthSnapshot arma la vista mensual: días, celdas y conteos de checks.
func (s *Service) MonthSnapshot(ctx context.Context, year, month int) (Snapshot, error) {
	days, err := calendar.DaysInMonth(year, month)
	if err != nil {
		return Snapshot{}, err
	}

	entries, err := s.repo.ListByDateRange(ctx, days[0].Date, days[len(days)-1].Date)
	if err != nil {
		return Snapshot{}, err
	}

	checks := make(map[string]int)
	for _, e := range entries {
		key := CheckKey(e.MaleID, e.FemaleID, e.Date)
		if _, seen := checks[key]; seen {
			continue
		}
		n, err := s.ledger.Count(ctx, e.MaleID, e.FemaleID, e.Date)
		if err != nil {
			return Snapshot{}, err
		}
		if n > 0 {
			checks[key] = n
		}
	}

	return Snapshot{
		Year:    year,
		Month:   month,
		Days:    days,
		Entries: entries,
		Checks:  checks,
	}, nil
}

// spanEntries recolecta las celdas contiguas del tramo al que pertenece
// `anchor`, a partir de su DayIndex.
func (s *Service) spanEntries(ctx context.Context, anchor Entry) ([]Entry, error) {
	start, err := calendar.ParseDate(anchor.Date)
	if err != nil {
		return nil, err
	}
	start = start.AddDate(0, 0, -anchor.DayIndex)

	out := make([]Entry, 0, anchor.Duration)
	for i := 0; i < anchor.Duration; i++ {
		date := start.AddDate(0, 0, i).Format(calendar.DateLayout)
		e, err := s.repo.Get(ctx, anchor.MaleID, date)
		if err != nil {
			if errors.Is(err, ErrEntryNotFound) {
				// Tramo parcialmente borrado; seguimos con lo que hay.
				continue
			}
			return nil, err
		}
		if e.FemaleID != anchor.FemaleID || e.IsHistory != anchor.IsHistory {
			continue
		}
		out = append(out, e)
	}
	return out, nil
}
