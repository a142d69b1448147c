package schedule

import (
	"context"
	"strings"
)

// CheckKey construye la clave canónica del ledger de checks:
// male|female|date. No depende del roster: sigue siendo direccionable
// después de archivar el tramo o quitar al macho.
func CheckKey(maleID, femaleID, date string) string {
	return maleID + "|" + femaleID + "|" + date
}

// LedgerRepository es la superficie clave-valor donde persisten los
// conteos. El core no impone esquema: clave opaca → entero. Increment
// debe ser atómico en el adapter: dos taps concurrentes no pueden
// perder un evento.
type LedgerRepository interface {
	Get(ctx context.Context, key string) (int, error)
	Increment(ctx context.Context, key string) (int, error)
}

// Ledger cuenta eventos de confirmación de apareamiento por
// (macho, hembra, fecha). Monotónico: nunca decrementa, las claves no
// expiran.
type Ledger struct {
	repo LedgerRepository
}

func NewLedger(repo LedgerRepository) *Ledger {
	return &Ledger{repo: repo}
}

// Count devuelve el conteo actual; 0 para claves desconocidas.
func (l *Ledger) Count(ctx context.Context, maleID, femaleID, date string) (int, error) {
	if strings.TrimSpace(maleID) == "" || strings.TrimSpace(femaleID) == "" || strings.TrimSpace(date) == "" {
		return 0, ErrInvalidInput
	}
	return l.repo.Get(ctx, CheckKey(maleID, femaleID, date))
}

// Increment suma 1 y devuelve el nuevo conteo.
func (l *Ledger) Increment(ctx context.Context, maleID, femaleID, date string) (int, error) {
	if strings.TrimSpace(maleID) == "" || strings.TrimSpace(femaleID) == "" || strings.TrimSpace(date) == "" {
		return 0, ErrInvalidInput
	}
	return l.repo.Increment(ctx, CheckKey(maleID, femaleID, date))
}
