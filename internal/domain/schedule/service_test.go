package schedule

import (
	"context"
	"errors"
	"sort"
	"sync"
	"testing"
	"time"

	"cattery-breeding/internal/ports/cats"
)

// -------------------------
// Test repo (in-memory)
// -------------------------

type testRepo struct {
	byKey map[string]Entry
}

func newTestRepo() *testRepo {
	return &testRepo{byKey: map[string]Entry{}}
}

func (r *testRepo) PutBatch(ctx context.Context, entries []Entry) error {
	for _, e := range entries {
		if e.MaleID == "" || e.Date == "" {
			return errors.New("repo: key required")
		}
	}
	for _, e := range entries {
		r.byKey[Key(e.MaleID, e.Date)] = e
	}
	return nil
}

func (r *testRepo) Get(ctx context.Context, maleID, date string) (Entry, error) {
	e, ok := r.byKey[Key(maleID, date)]
	if !ok {
		return Entry{}, ErrEntryNotFound
	}
	return e, nil
}

func (r *testRepo) ListByMale(ctx context.Context, maleID string) ([]Entry, error) {
	out := make([]Entry, 0)
	for _, e := range r.byKey {
		if e.MaleID == maleID {
			out = append(out, e)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Date < out[j].Date })
	return out, nil
}

func (r *testRepo) ListByDateRange(ctx context.Context, from, to string) ([]Entry, error) {
	out := make([]Entry, 0)
	for _, e := range r.byKey {
		if e.Date >= from && e.Date <= to {
			out = append(out, e)
		}
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].Date != out[j].Date {
			return out[i].Date < out[j].Date
		}
		return out[i].MaleID < out[j].MaleID
	})
	return out, nil
}

func (r *testRepo) DeleteBatch(ctx context.Context, keys []string) error {
	for _, k := range keys {
		delete(r.byKey, k)
	}
	return nil
}

func (r *testRepo) DeleteByMale(ctx context.Context, maleID string) error {
	for k, e := range r.byKey {
		if e.MaleID == maleID {
			delete(r.byKey, k)
		}
	}
	return nil
}

type testLedgerRepo struct {
	mu     sync.Mutex
	counts map[string]int
}

func newTestLedgerRepo() *testLedgerRepo {
	return &testLedgerRepo{counts: map[string]int{}}
}

func (r *testLedgerRepo) Get(ctx context.Context, key string) (int, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.counts[key], nil
}

func (r *testLedgerRepo) Increment(ctx context.Context, key string) (int, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.counts[key]++
	return r.counts[key], nil
}

// testDirectory es un directorio de gatos fijo para tests.
type testDirectory struct {
	byID map[string]cats.Cat
}

func newTestDirectory(list ...cats.Cat) *testDirectory {
	d := &testDirectory{byID: map[string]cats.Cat{}}
	for _, c := range list {
		d.byID[c.ID] = c
	}
	return d
}

func (d *testDirectory) Get(ctx context.Context, id string) (cats.Cat, error) {
	c, ok := d.byID[id]
	if !ok {
		return cats.Cat{}, cats.ErrNotFound
	}
	return c, nil
}

func (d *testDirectory) List(ctx context.Context) ([]cats.Cat, error) {
	out := make([]cats.Cat, 0, len(d.byID))
	for _, c := range d.byID {
		out = append(out, c)
	}
	return out, nil
}

func (d *testDirectory) KittensOf(ctx context.Context, motherID string) ([]cats.Cat, error) {
	out := make([]cats.Cat, 0)
	for _, c := range d.byID {
		if c.MotherID == motherID {
			out = append(out, c)
		}
	}
	return out, nil
}

func newTestService() (*Service, *testRepo, *testLedgerRepo) {
	repo := newTestRepo()
	ledgerRepo := newTestLedgerRepo()
	dir := newTestDirectory(
		cats.Cat{ID: "m1", Name: "Leo", Gender: cats.GenderMale},
		cats.Cat{ID: "m2", Name: "Max", Gender: cats.GenderMale},
		cats.Cat{ID: "f1", Name: "Mimi", Gender: cats.GenderFemale},
		cats.Cat{ID: "f2", Name: "Luna", Gender: cats.GenderFemale},
	)
	svc := NewService(repo, NewLedger(ledgerRepo), dir)
	svc.now = func() time.Time { return time.Date(2025, 6, 10, 12, 0, 0, 0, time.UTC) }
	return svc, repo, ledgerRepo
}

// -------------------------
// Tests
// -------------------------

func TestPlaceMating_SpawnsSpan(t *testing.T) {
	svc, _, _ := newTestService()
	ctx := context.Background()

	entries, err := svc.PlaceMating(ctx, PlaceInput{
		MaleID: "m1", FemaleID: "f1", StartDate: "2025-06-10", Duration: 3,
	})
	if err != nil {
		t.Fatal(err)
	}
	if len(entries) != 3 {
		t.Fatalf("expected 3 entries, got %d", len(entries))
	}

	wantDates := []string{"2025-06-10", "2025-06-11", "2025-06-12"}
	for i, e := range entries {
		if e.Date != wantDates[i] || e.DayIndex != i {
			t.Fatalf("entry %d: got {%s %d}", i, e.Date, e.DayIndex)
		}
		if e.IsHistory || e.Result != "" {
			t.Fatalf("new entry must be active without result: %+v", e)
		}
		if e.MaleName != "Leo" || e.FemaleName != "Mimi" {
			t.Fatalf("names not resolved from directory: %+v", e)
		}
	}
}

func TestPlaceMating_SlotOccupied(t *testing.T) {
	svc, repo, _ := newTestService()
	ctx := context.Background()

	if _, err := svc.PlaceMating(ctx, PlaceInput{
		MaleID: "m1", FemaleID: "f1", StartDate: "2025-06-10", Duration: 3,
	}); err != nil {
		t.Fatal(err)
	}
	before := len(repo.byKey)

	// Solapa el último día del tramo existente.
	_, err := svc.PlaceMating(ctx, PlaceInput{
		MaleID: "m1", FemaleID: "f2", StartDate: "2025-06-12", Duration: 2,
	})
	if !errors.Is(err, ErrSlotOccupied) {
		t.Fatalf("expected ErrSlotOccupied, got %v", err)
	}
	// Todo-o-nada: no deben quedar celdas del intento fallido.
	if len(repo.byKey) != before {
		t.Fatalf("failed placement must not write entries: %d != %d", len(repo.byKey), before)
	}

	// Fecha disjunta => ok.
	if _, err := svc.PlaceMating(ctx, PlaceInput{
		MaleID: "m1", FemaleID: "f2", StartDate: "2025-06-20", Duration: 2,
	}); err != nil {
		t.Fatalf("disjoint placement must succeed: %v", err)
	}

	// Otro macho puede ocupar las mismas fechas.
	if _, err := svc.PlaceMating(ctx, PlaceInput{
		MaleID: "m2", FemaleID: "f2", StartDate: "2025-06-10", Duration: 2,
	}); err != nil {
		t.Fatalf("other male must not collide: %v", err)
	}
}

func TestPlaceMating_HistoryCellDoesNotBlock(t *testing.T) {
	svc, _, _ := newTestService()
	ctx := context.Background()

	if _, err := svc.PlaceMating(ctx, PlaceInput{
		MaleID: "m1", FemaleID: "f1", StartDate: "2025-06-10", Duration: 2,
	}); err != nil {
		t.Fatal(err)
	}
	if _, err := svc.RecordResult(ctx, "m1", "f1", "2025-06-11", ResultFailure); err != nil {
		t.Fatal(err)
	}

	// La celda histórica queda, pero no bloquea una nueva selección.
	if _, err := svc.PlaceMating(ctx, PlaceInput{
		MaleID: "m1", FemaleID: "f2", StartDate: "2025-06-10", Duration: 2,
	}); err != nil {
		t.Fatalf("history cells must not occupy the slot: %v", err)
	}
}

func TestPlaceMating_Validation(t *testing.T) {
	svc, _, _ := newTestService()
	ctx := context.Background()

	if _, err := svc.PlaceMating(ctx, PlaceInput{
		MaleID: "m1", FemaleID: "f1", StartDate: "2025-06-10", Duration: 0,
	}); err == nil {
		t.Fatal("expected error for duration < 1")
	}

	if _, err := svc.PlaceMating(ctx, PlaceInput{
		MaleID: "ghost", FemaleID: "f1", StartDate: "2025-06-10", Duration: 1,
	}); !errors.Is(err, ErrUnknownEntity) {
		t.Fatal("expected ErrUnknownEntity for ghost male")
	}

	// Dos machos no forman pareja.
	if _, err := svc.PlaceMating(ctx, PlaceInput{
		MaleID: "m1", FemaleID: "m2", StartDate: "2025-06-10", Duration: 1,
	}); !errors.Is(err, ErrInvalidInput) {
		t.Fatal("expected ErrInvalidInput for male/male pair")
	}
}

func TestRecordResult_ArchivesSpanAndStampsTerminalDay(t *testing.T) {
	svc, _, _ := newTestService()
	ctx := context.Background()

	if _, err := svc.PlaceMating(ctx, PlaceInput{
		MaleID: "m1", FemaleID: "f1", StartDate: "2025-06-10", Duration: 3,
	}); err != nil {
		t.Fatal(err)
	}

	// Cerrar usando una fecha intermedia del tramo.
	updated, err := svc.RecordResult(ctx, "m1", "f1", "2025-06-11", ResultSuccess)
	if err != nil {
		t.Fatal(err)
	}
	if len(updated) != 3 {
		t.Fatalf("expected 3 archived entries, got %d", len(updated))
	}

	stamped := 0
	for _, e := range updated {
		if !e.IsHistory {
			t.Fatalf("entry %s must be history", e.Date)
		}
		if e.Result != "" {
			stamped++
			if e.DayIndex != e.Duration-1 {
				t.Fatalf("result stamped on day %d, want terminal day", e.DayIndex)
			}
			if e.Result != ResultSuccess {
				t.Fatalf("expected success, got %s", e.Result)
			}
		}
	}
	if stamped != 1 {
		t.Fatalf("exactly one entry must carry the result, got %d", stamped)
	}
}

func TestRecordResult_NoActiveSpan(t *testing.T) {
	svc, _, _ := newTestService()
	ctx := context.Background()

	if _, err := svc.RecordResult(ctx, "m1", "f1", "2025-06-10", ResultSuccess); !errors.Is(err, ErrUnknownEntity) {
		t.Fatalf("expected ErrUnknownEntity, got %v", err)
	}

	// Tramo ya cerrado tampoco acepta otro resultado.
	if _, err := svc.PlaceMating(ctx, PlaceInput{
		MaleID: "m1", FemaleID: "f1", StartDate: "2025-06-10", Duration: 1,
	}); err != nil {
		t.Fatal(err)
	}
	if _, err := svc.RecordResult(ctx, "m1", "f1", "2025-06-10", ResultFailure); err != nil {
		t.Fatal(err)
	}
	if _, err := svc.RecordResult(ctx, "m1", "f1", "2025-06-10", ResultSuccess); !errors.Is(err, ErrUnknownEntity) {
		t.Fatalf("expected ErrUnknownEntity on closed span, got %v", err)
	}
}

func TestRemoveMale_DeletesEntriesKeepsLedger(t *testing.T) {
	svc, repo, ledgerRepo := newTestService()
	ctx := context.Background()

	if _, err := svc.PlaceMating(ctx, PlaceInput{
		MaleID: "m1", FemaleID: "f1", StartDate: "2025-06-10", Duration: 2,
	}); err != nil {
		t.Fatal(err)
	}
	if _, err := svc.Ledger().Increment(ctx, "m1", "f1", "2025-06-10"); err != nil {
		t.Fatal(err)
	}

	if err := svc.RemoveMale(ctx, "m1"); err != nil {
		t.Fatal(err)
	}

	if got, _ := repo.ListByMale(ctx, "m1"); len(got) != 0 {
		t.Fatalf("expected no entries after RemoveMale, got %d", len(got))
	}

	// El ledger sigue direccionable por clave.
	n, err := svc.Ledger().Count(ctx, "m1", "f1", "2025-06-10")
	if err != nil {
		t.Fatal(err)
	}
	if n != 1 {
		t.Fatalf("ledger count must survive RemoveMale, got %d", n)
	}
	if len(ledgerRepo.counts) != 1 {
		t.Fatalf("ledger keys must not be deleted")
	}
}

func TestRemoveSpan(t *testing.T) {
	svc, repo, _ := newTestService()
	ctx := context.Background()

	if _, err := svc.PlaceMating(ctx, PlaceInput{
		MaleID: "m1", FemaleID: "f1", StartDate: "2025-06-10", Duration: 3,
	}); err != nil {
		t.Fatal(err)
	}

	if err := svc.RemoveSpan(ctx, "m1", "2025-06-11"); err != nil {
		t.Fatal(err)
	}
	if len(repo.byKey) != 0 {
		t.Fatalf("expected empty schedule after RemoveSpan, got %d entries", len(repo.byKey))
	}
}

func TestMaleHistory(t *testing.T) {
	svc, _, _ := newTestService()
	ctx := context.Background()

	if _, err := svc.PlaceMating(ctx, PlaceInput{
		MaleID: "m1", FemaleID: "f1", StartDate: "2025-06-10", Duration: 2,
	}); err != nil {
		t.Fatal(err)
	}
	if _, err := svc.RecordResult(ctx, "m1", "f1", "2025-06-10", ResultFailure); err != nil {
		t.Fatal(err)
	}
	if _, err := svc.PlaceMating(ctx, PlaceInput{
		MaleID: "m1", FemaleID: "f2", StartDate: "2025-06-20", Duration: 1,
	}); err != nil {
		t.Fatal(err)
	}
	if _, err := svc.PlaceMating(ctx, PlaceInput{
		MaleID: "m2", FemaleID: "f1", StartDate: "2025-06-10", Duration: 1,
	}); err != nil {
		t.Fatal(err)
	}

	got, err := svc.MaleHistory(ctx, "m1")
	if err != nil {
		t.Fatal(err)
	}
	if len(got) != 3 {
		t.Fatalf("expected the archived span plus the active cell, got %d", len(got))
	}
	for i := 1; i < len(got); i++ {
		if got[i-1].Date > got[i].Date {
			t.Fatalf("history must come ordered by date: %s > %s", got[i-1].Date, got[i].Date)
		}
	}
	if !got[0].IsHistory || !got[1].IsHistory || got[2].IsHistory {
		t.Fatalf("unexpected history flags: %+v", got)
	}

	if _, err := svc.MaleHistory(ctx, "  "); !errors.Is(err, ErrInvalidInput) {
		t.Fatalf("blank male must be rejected, got %v", err)
	}
}

func TestMonthSnapshot(t *testing.T) {
	svc, _, _ := newTestService()
	ctx := context.Background()

	// Tramo que cruza de junio a julio: el snapshot de junio solo ve
	// los días de junio.
	if _, err := svc.PlaceMating(ctx, PlaceInput{
		MaleID: "m1", FemaleID: "f1", StartDate: "2025-06-29", Duration: 4,
	}); err != nil {
		t.Fatal(err)
	}
	if _, err := svc.Ledger().Increment(ctx, "m1", "f1", "2025-06-29"); err != nil {
		t.Fatal(err)
	}
	if _, err := svc.Ledger().Increment(ctx, "m1", "f1", "2025-06-29"); err != nil {
		t.Fatal(err)
	}

	snap, err := svc.MonthSnapshot(ctx, 2025, 6)
	if err != nil {
		t.Fatal(err)
	}
	if len(snap.Days) != 30 {
		t.Fatalf("june has 30 days, got %d", len(snap.Days))
	}
	if len(snap.Entries) != 2 {
		t.Fatalf("expected 2 june entries, got %d", len(snap.Entries))
	}
	if snap.Checks[CheckKey("m1", "f1", "2025-06-29")] != 2 {
		t.Fatalf("expected check count 2 in snapshot, got %+v", snap.Checks)
	}

	july, err := svc.MonthSnapshot(ctx, 2025, 7)
	if err != nil {
		t.Fatal(err)
	}
	if len(july.Entries) != 2 {
		t.Fatalf("expected 2 july entries, got %d", len(july.Entries))
	}
}

func TestIsContinuation(t *testing.T) {
	a := Entry{FemaleName: "Mimi"}
	b := Entry{FemaleName: "Mimi"}

	if !IsContinuation(a, b) {
		t.Fatal("same female, both active: continuation")
	}

	b.IsHistory = true
	if IsContinuation(a, b) {
		t.Fatal("history cell breaks the visual span")
	}

	b.IsHistory = false
	b.FemaleName = "Luna"
	if IsContinuation(a, b) {
		t.Fatal("different female breaks the visual span")
	}
}
