package schedule

import "cattery-breeding/internal/platform/calendar"

// Result es el desenlace de un tramo de apareamiento.
type Result string

const (
	ResultSuccess Result = "success"
	ResultFailure Result = "failure"
)

func (r Result) Valid() bool {
	return r == ResultSuccess || r == ResultFailure
}

// Entry es una celda del calendario de cría: un día de un intento de
// apareamiento, activo o histórico. Identidad: (MaleID, Date) — como mucho
// una entrada activa por macho y día.
type Entry struct {
	MaleID     string
	MaleName   string
	FemaleID   string
	FemaleName string

	Date     string // YYYY-MM-DD
	Duration int    // días totales del tramo, >= 1
	DayIndex int    // 0..Duration-1

	IsHistory bool
	Result    Result // solo la celda terminal de un tramo cerrado la lleva
}

// Key es la clave canónica de una celda.
func Key(maleID, date string) string {
	return maleID + "|" + date
}

// IsContinuation decide si dos celdas pertenecen al mismo tramo visual:
// misma hembra (por nombre) y ninguna es histórica. Es un predicado puro;
// el dibujo de bordes es asunto de la UI.
func IsContinuation(a, b Entry) bool {
	return a.FemaleName == b.FemaleName && !a.IsHistory && !b.IsHistory
}

// Snapshot es la vista mensual que consume la UI: días del calendario,
// celdas del mes y conteos de checks de apareamiento.
type Snapshot struct {
	Year    int
	Month   int
	Days    []calendar.MonthDay
	Entries []Entry
	// Checks va keyed por la clave canónica del ledger (male|female|date).
	Checks map[string]int
}
