package schedule

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"strconv"
	"strings"

	"cattery-breeding/internal/middleware"
	"cattery-breeding/internal/platform/calendar"
	"cattery-breeding/internal/platform/logger"

	"github.com/go-chi/chi/v5"
	chimw "github.com/go-chi/chi/v5/middleware"
)

// PregnancyIntake evita importar el paquete birth (rompe ciclos): cuando
// un tramo cierra con éxito, el caller registra la sospecha de embarazo.
type PregnancyIntake interface {
	SuspectPregnancy(ctx context.Context, motherID, fatherID, matingDate string) error
}

func RegisterRoutes(r chi.Router, svc *Service, intake PregnancyIntake, log logger.Logger) {
	if log == nil {
		log = logger.NewFromEnv()
	}
	r.Route("/breeding/schedule", func(sr chi.Router) {
		sr.Get("/", monthSnapshotHandler(svc))
		sr.Post("/", placeMatingHandler(svc))
		sr.Post("/result", recordResultHandler(svc, intake, log))
		sr.Get("/males/{maleID}", maleHistoryHandler(svc))
		sr.Delete("/span", removeSpanHandler(svc))
		sr.Delete("/males/{maleID}", removeMaleHandler(svc))

		sr.Post("/checks", incrementCheckHandler(svc))
		sr.Get("/checks", countCheckHandler(svc))
	})
}

type placeMatingRequest struct {
	MaleID    string `json:"male_id"`
	FemaleID  string `json:"female_id"`
	StartDate string `json:"start_date"` // YYYY-MM-DD
	Duration  int    `json:"duration"`
}

type recordResultRequest struct {
	MaleID   string `json:"male_id"`
	FemaleID string `json:"female_id"`
	Date     string `json:"date"`
	Result   string `json:"result"` // success|failure
}

type checkRequest struct {
	MaleID   string `json:"male_id"`
	FemaleID string `json:"female_id"`
	Date     string `json:"date"`
}

type entryResponse struct {
	MaleID     string `json:"male_id"`
	MaleName   string `json:"male_name"`
	FemaleID   string `json:"female_id"`
	FemaleName string `json:"female_name"`
	Date       string `json:"date"`
	Duration   int    `json:"duration"`
	DayIndex   int    `json:"day_index"`
	IsHistory  bool   `json:"is_history"`
	Result     string `json:"result,omitempty"`
}

type snapshotResponse struct {
	Year    int                 `json:"year"`
	Month   int                 `json:"month"`
	Days    []calendar.MonthDay `json:"days"`
	Entries []entryResponse     `json:"entries"`
	Checks  map[string]int      `json:"checks"`
}

func monthSnapshotHandler(svc *Service) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		year, err1 := strconv.Atoi(r.URL.Query().Get("year"))
		month, err2 := strconv.Atoi(r.URL.Query().Get("month"))
		if err1 != nil || err2 != nil {
			http.Error(w, "year and month are required", http.StatusBadRequest)
			return
		}

		snap, err := svc.MonthSnapshot(r.Context(), year, month)
		if err != nil {
			if errors.Is(err, calendar.ErrInvalidMonth) {
				http.Error(w, err.Error(), http.StatusBadRequest)
				return
			}
			http.Error(w, "internal error", http.StatusInternalServerError)
			return
		}

		out := snapshotResponse{
			Year:    snap.Year,
			Month:   snap.Month,
			Days:    snap.Days,
			Entries: make([]entryResponse, 0, len(snap.Entries)),
			Checks:  snap.Checks,
		}
		for _, e := range snap.Entries {
			out.Entries = append(out.Entries, toEntryResponse(e))
		}
		writeJSON(w, http.StatusOK, out)
	}
}

func placeMatingHandler(svc *Service) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		claims, ok := middleware.GetClaims(r.Context())
		if !ok || strings.TrimSpace(claims.UserID) == "" {
			http.Error(w, "unauthorized", http.StatusUnauthorized)
			return
		}

		var req placeMatingRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			http.Error(w, "invalid json", http.StatusBadRequest)
			return
		}

		entries, err := svc.PlaceMating(r.Context(), PlaceInput{
			MaleID:    req.MaleID,
			FemaleID:  req.FemaleID,
			StartDate: req.StartDate,
			Duration:  req.Duration,
		})
		if err != nil {
			writeScheduleError(w, err)
			return
		}

		out := make([]entryResponse, 0, len(entries))
		for _, e := range entries {
			out = append(out, toEntryResponse(e))
		}
		writeJSON(w, http.StatusCreated, out)
	}
}

func recordResultHandler(svc *Service, intake PregnancyIntake, log logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		claims, ok := middleware.GetClaims(r.Context())
		if !ok || strings.TrimSpace(claims.UserID) == "" {
			http.Error(w, "unauthorized", http.StatusUnauthorized)
			return
		}

		var req recordResultRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			http.Error(w, "invalid json", http.StatusBadRequest)
			return
		}

		entries, err := svc.RecordResult(r.Context(), req.MaleID, req.FemaleID, req.Date, Result(req.Result))
		if err != nil {
			writeScheduleError(w, err)
			return
		}

		// Éxito => sospecha de embarazo, anclada al primer día del tramo:
		// el resultado puede registrarse en cualquier celda, pero la fecha
		// de apareamiento del check es la del DayIndex 0. Mejor esfuerzo:
		// el tramo ya quedó cerrado; si el intake falla, la UI puede
		// registrar el check a mano.
		if Result(req.Result) == ResultSuccess && intake != nil {
			matingDate := req.Date
			for _, e := range entries {
				if e.DayIndex == 0 {
					matingDate = e.Date
					break
				}
			}
			if err := intake.SuspectPregnancy(r.Context(), req.FemaleID, req.MaleID, matingDate); err != nil {
				log.Warn("pregnancy_intake_failed", map[string]any{
					"request_id":  chimw.GetReqID(r.Context()),
					"male_id":     req.MaleID,
					"female_id":   req.FemaleID,
					"mating_date": matingDate,
					"error":       err.Error(),
				})
			}
		}

		out := make([]entryResponse, 0, len(entries))
		for _, e := range entries {
			out = append(out, toEntryResponse(e))
		}
		writeJSON(w, http.StatusOK, out)
	}
}

func maleHistoryHandler(svc *Service) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		entries, err := svc.MaleHistory(r.Context(), chi.URLParam(r, "maleID"))
		if err != nil {
			writeScheduleError(w, err)
			return
		}

		out := make([]entryResponse, 0, len(entries))
		for _, e := range entries {
			out = append(out, toEntryResponse(e))
		}
		writeJSON(w, http.StatusOK, out)
	}
}

func removeSpanHandler(svc *Service) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		claims, ok := middleware.GetClaims(r.Context())
		if !ok || strings.TrimSpace(claims.UserID) == "" {
			http.Error(w, "unauthorized", http.StatusUnauthorized)
			return
		}

		maleID := strings.TrimSpace(r.URL.Query().Get("male"))
		date := strings.TrimSpace(r.URL.Query().Get("date"))
		if maleID == "" || date == "" {
			http.Error(w, "male and date are required", http.StatusBadRequest)
			return
		}

		if err := svc.RemoveSpan(r.Context(), maleID, date); err != nil {
			writeScheduleError(w, err)
			return
		}
		writeJSON(w, http.StatusOK, map[string]bool{"deleted": true})
	}
}

func removeMaleHandler(svc *Service) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		claims, ok := middleware.GetClaims(r.Context())
		if !ok || strings.TrimSpace(claims.UserID) == "" {
			http.Error(w, "unauthorized", http.StatusUnauthorized)
			return
		}

		if err := svc.RemoveMale(r.Context(), chi.URLParam(r, "maleID")); err != nil {
			writeScheduleError(w, err)
			return
		}
		writeJSON(w, http.StatusOK, map[string]bool{"deleted": true})
	}
}

func incrementCheckHandler(svc *Service) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		claims, ok := middleware.GetClaims(r.Context())
		if !ok || strings.TrimSpace(claims.UserID) == "" {
			http.Error(w, "unauthorized", http.StatusUnauthorized)
			return
		}

		var req checkRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			http.Error(w, "invalid json", http.StatusBadRequest)
			return
		}

		count, err := svc.Ledger().Increment(r.Context(), req.MaleID, req.FemaleID, req.Date)
		if err != nil {
			writeScheduleError(w, err)
			return
		}
		writeJSON(w, http.StatusOK, map[string]int{"count": count})
	}
}

func countCheckHandler(svc *Service) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		q := r.URL.Query()
		count, err := svc.Ledger().Count(r.Context(), q.Get("male"), q.Get("female"), q.Get("date"))
		if err != nil {
			writeScheduleError(w, err)
			return
		}
		writeJSON(w, http.StatusOK, map[string]int{"count": count})
	}
}

func writeScheduleError(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, ErrSlotOccupied):
		http.Error(w, err.Error(), http.StatusConflict)
	case errors.Is(err, ErrUnknownEntity):
		http.Error(w, err.Error(), http.StatusNotFound)
	case errors.Is(err, ErrInvalidInput),
		errors.Is(err, calendar.ErrInvalidDate),
		errors.Is(err, calendar.ErrInvalidDuration):
		http.Error(w, err.Error(), http.StatusBadRequest)
	default:
		http.Error(w, "internal error", http.StatusInternalServerError)
	}
}

func toEntryResponse(e Entry) entryResponse {
	return entryResponse{
		MaleID:     e.MaleID,
		MaleName:   e.MaleName,
		FemaleID:   e.FemaleID,
		FemaleName: e.FemaleName,
		Date:       e.Date,
		Duration:   e.Duration,
		DayIndex:   e.DayIndex,
		IsHistory:  e.IsHistory,
		Result:     string(e.Result),
	}
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}
