package calendar

import (
	"errors"
	"fmt"
	"time"
)

// DateLayout es el formato de fecha que usa todo el core (YYYY-MM-DD).
const DateLayout = "2006-01-02"

var (
	ErrInvalidMonth    = errors.New("invalid month")
	ErrInvalidDate     = errors.New("invalid date")
	ErrInvalidDuration = errors.New("invalid duration")
)

// MonthDay es una celda del calendario mensual.
type MonthDay struct {
	Day     int    // 1..31
	Date    string // YYYY-MM-DD
	Weekday int    // 0=domingo .. 6=sábado
}

// SpanDay es un día dentro de un tramo de apareamiento.
type SpanDay struct {
	Date     string // YYYY-MM-DD
	DayIndex int    // 0..duration-1
}

// DaysInMonth genera la lista ordenada de días para (year, month).
// El conteo de días (incl. bisiestos) lo resuelve time.Date con day=0
// del mes siguiente; no se reimplementa la regla del calendario.
func DaysInMonth(year, month int) ([]MonthDay, error) {
	if month < 1 || month > 12 {
		return nil, fmt.Errorf("%w: %d", ErrInvalidMonth, month)
	}

	last := time.Date(year, time.Month(month)+1, 0, 0, 0, 0, 0, time.UTC)
	total := last.Day()

	out := make([]MonthDay, 0, total)
	for day := 1; day <= total; day++ {
		d := time.Date(year, time.Month(month), day, 0, 0, 0, 0, time.UTC)
		out = append(out, MonthDay{
			Day:     day,
			Date:    d.Format(DateLayout),
			Weekday: int(d.Weekday()),
		})
	}
	return out, nil
}

// ExpandSpan expande una fecha inicial y una duración en días consecutivos
// con DayIndex 0..duration-1.
func ExpandSpan(startDate string, duration int) ([]SpanDay, error) {
	if duration < 1 {
		return nil, fmt.Errorf("%w: %d", ErrInvalidDuration, duration)
	}

	start, err := ParseDate(startDate)
	if err != nil {
		return nil, err
	}

	out := make([]SpanDay, 0, duration)
	for i := 0; i < duration; i++ {
		out = append(out, SpanDay{
			Date:     start.AddDate(0, 0, i).Format(DateLayout),
			DayIndex: i,
		})
	}
	return out, nil
}

// ParseDate valida y parsea YYYY-MM-DD en UTC.
func ParseDate(s string) (time.Time, error) {
	t, err := time.ParseInLocation(DateLayout, s, time.UTC)
	if err != nil {
		return time.Time{}, fmt.Errorf("%w: %q", ErrInvalidDate, s)
	}
	return t, nil
}

// AgeInDays calcula la edad en días tratando el día de nacimiento como día 0.
// Nunca es negativa.
func AgeInDays(birthDate, now time.Time) int {
	b := time.Date(birthDate.Year(), birthDate.Month(), birthDate.Day(), 0, 0, 0, 0, time.UTC)
	n := time.Date(now.Year(), now.Month(), now.Day(), 0, 0, 0, 0, time.UTC)

	days := int(n.Sub(b).Hours() / 24)
	if days < 0 {
		return 0
	}
	return days
}
