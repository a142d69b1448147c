package birth

import (
	"encoding/json"
	"errors"
	"net/http"
	"strings"
	"time"

	"cattery-breeding/internal/middleware"
	"cattery-breeding/internal/platform/calendar"

	"github.com/go-chi/chi/v5"
)

func RegisterRoutes(r chi.Router, svc *Service, eligibility *Eligibility) {
	r.Route("/breeding/pregnancy-checks", func(cr chi.Router) {
		cr.Get("/", listChecksHandler(svc))
		cr.Post("/", createCheckHandler(svc))
		cr.Post("/{checkID}/resolve", resolveCheckHandler(svc))
	})

	r.Route("/breeding/birth-plans", func(pr chi.Router) {
		pr.Get("/", listPlansHandler(svc))
		pr.Post("/", confirmPregnancyHandler(svc))
		pr.Get("/{planID}", getPlanHandler(svc))
		pr.Post("/{planID}/decline", declineHandler(svc))
		pr.Post("/{planID}/birth", recordBirthHandler(svc))
		pr.Get("/{planID}/dispositions", listDispositionsHandler(svc))
		pr.Post("/{planID}/dispositions", assignDispositionHandler(svc))
		pr.Post("/{planID}/complete", completeHandler(svc))
	})

	r.Get("/breeding/shipping/eligible", eligibleHandler(eligibility))
}

type planResponse struct {
	ID                string     `json:"id"`
	MotherID          string     `json:"mother_id"`
	FatherID          string     `json:"father_id"`
	MatingDate        string     `json:"mating_date"`
	ExpectedBirthDate string     `json:"expected_birth_date"`
	ActualBirthDate   string     `json:"actual_birth_date,omitempty"`
	Status            Status     `json:"status"`
	ActualKittens     int        `json:"actual_kittens"`
	DeadKittens       int        `json:"dead_kittens"`
	AliveKittens      int        `json:"alive_kittens"`
	Notes             string     `json:"notes,omitempty"`
	CompletedAt       *time.Time `json:"completed_at,omitempty"`
	CreatedAt         time.Time  `json:"created_at"`
	UpdatedAt         time.Time  `json:"updated_at"`
}

func toPlanResponse(p Plan) planResponse {
	return planResponse{
		ID:                p.ID,
		MotherID:          p.MotherID,
		FatherID:          p.FatherID,
		MatingDate:        p.MatingDate,
		ExpectedBirthDate: p.ExpectedBirthDate,
		ActualBirthDate:   p.ActualBirthDate,
		Status:            p.Status,
		ActualKittens:     p.ActualKittens,
		DeadKittens:       p.DeadKittens,
		AliveKittens:      p.AliveKittens(),
		Notes:             p.Notes,
		CompletedAt:       p.CompletedAt,
		CreatedAt:         p.CreatedAt,
		UpdatedAt:         p.UpdatedAt,
	}
}

type checkResponse struct {
	ID         string      `json:"id"`
	MotherID   string      `json:"mother_id"`
	FatherID   string      `json:"father_id"`
	MatingDate string      `json:"mating_date"`
	CheckDate  string      `json:"check_date"`
	Status     CheckStatus `json:"status"`
	Notes      string      `json:"notes,omitempty"`
	CreatedAt  time.Time   `json:"created_at"`
}

func toCheckResponse(c Check) checkResponse {
	return checkResponse{
		ID:         c.ID,
		MotherID:   c.MotherID,
		FatherID:   c.FatherID,
		MatingDate: c.MatingDate,
		CheckDate:  c.CheckDate,
		Status:     c.Status,
		Notes:      c.Notes,
		CreatedAt:  c.CreatedAt,
	}
}

type saleInfoPayload struct {
	Buyer    string `json:"buyer"`
	PriceYen int    `json:"price_yen"`
	SaleDate string `json:"sale_date,omitempty"`
}

type dispositionResponse struct {
	ID                string           `json:"id"`
	BirthRecordID     string           `json:"birth_record_id"`
	KittenID          string           `json:"kitten_id"`
	Type              DispositionType  `json:"type"`
	TrainingStartDate string           `json:"training_start_date,omitempty"`
	SaleInfo          *saleInfoPayload `json:"sale_info,omitempty"`
	DeathDate         string           `json:"death_date,omitempty"`
	Current           bool             `json:"current"`
	CreatedAt         time.Time        `json:"created_at"`
}

func toDispositionResponse(d Disposition, current bool) dispositionResponse {
	out := dispositionResponse{
		ID:                d.ID,
		BirthRecordID:     d.BirthRecordID,
		KittenID:          d.KittenID,
		Type:              d.Type,
		TrainingStartDate: d.TrainingStartDate,
		DeathDate:         d.DeathDate,
		Current:           current,
		CreatedAt:         d.CreatedAt,
	}
	if d.SaleInfo != nil {
		out.SaleInfo = &saleInfoPayload{
			Buyer:    d.SaleInfo.Buyer,
			PriceYen: d.SaleInfo.PriceYen,
			SaleDate: d.SaleInfo.SaleDate,
		}
	}
	return out
}

func listChecksHandler(svc *Service) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		checks, err := svc.ListChecks(r.Context())
		if err != nil {
			http.Error(w, "internal error", http.StatusInternalServerError)
			return
		}
		out := make([]checkResponse, 0, len(checks))
		for _, c := range checks {
			out = append(out, toCheckResponse(c))
		}
		writeJSON(w, http.StatusOK, out)
	}
}

type createCheckRequest struct {
	MotherID   string `json:"mother_id"`
	FatherID   string `json:"father_id"`
	MatingDate string `json:"mating_date"`
}

func createCheckHandler(svc *Service) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		claims, ok := middleware.GetClaims(r.Context())
		if !ok || strings.TrimSpace(claims.UserID) == "" {
			http.Error(w, "unauthorized", http.StatusUnauthorized)
			return
		}

		var req createCheckRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			http.Error(w, "invalid json", http.StatusBadRequest)
			return
		}

		c, err := svc.SuspectPregnancy(r.Context(), req.MotherID, req.FatherID, req.MatingDate)
		if err != nil {
			writeBirthError(w, err)
			return
		}
		writeJSON(w, http.StatusCreated, toCheckResponse(c))
	}
}

type resolveCheckRequest struct {
	Positive bool   `json:"positive"`
	Notes    string `json:"notes"`
}

type resolveCheckResponse struct {
	Plan *planResponse `json:"plan,omitempty"`
}

func resolveCheckHandler(svc *Service) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		claims, ok := middleware.GetClaims(r.Context())
		if !ok || strings.TrimSpace(claims.UserID) == "" {
			http.Error(w, "unauthorized", http.StatusUnauthorized)
			return
		}

		var req resolveCheckRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			http.Error(w, "invalid json", http.StatusBadRequest)
			return
		}

		plan, err := svc.ResolveCheck(r.Context(), chi.URLParam(r, "checkID"), req.Positive, req.Notes)
		if err != nil {
			writeBirthError(w, err)
			return
		}

		var resp resolveCheckResponse
		if plan != nil {
			pr := toPlanResponse(*plan)
			resp.Plan = &pr
		}
		writeJSON(w, http.StatusOK, resp)
	}
}

func listPlansHandler(svc *Service) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		plans, err := svc.ListPlans(r.Context())
		if err != nil {
			http.Error(w, "internal error", http.StatusInternalServerError)
			return
		}
		out := make([]planResponse, 0, len(plans))
		for _, p := range plans {
			out = append(out, toPlanResponse(p))
		}
		writeJSON(w, http.StatusOK, out)
	}
}

func getPlanHandler(svc *Service) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		plan, err := svc.Plan(r.Context(), chi.URLParam(r, "planID"))
		if err != nil {
			writeBirthError(w, err)
			return
		}
		writeJSON(w, http.StatusOK, toPlanResponse(plan))
	}
}

type confirmRequest struct {
	MotherID          string `json:"mother_id"`
	FatherID          string `json:"father_id"`
	MatingDate        string `json:"mating_date"`
	ExpectedBirthDate string `json:"expected_birth_date"`
	Notes             string `json:"notes"`
}

func confirmPregnancyHandler(svc *Service) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		claims, ok := middleware.GetClaims(r.Context())
		if !ok || strings.TrimSpace(claims.UserID) == "" {
			http.Error(w, "unauthorized", http.StatusUnauthorized)
			return
		}

		var req confirmRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			http.Error(w, "invalid json", http.StatusBadRequest)
			return
		}

		plan, err := svc.ConfirmPregnancy(r.Context(), ConfirmInput{
			MotherID:          req.MotherID,
			FatherID:          req.FatherID,
			MatingDate:        req.MatingDate,
			ExpectedBirthDate: req.ExpectedBirthDate,
			Notes:             req.Notes,
		})
		if err != nil {
			writeBirthError(w, err)
			return
		}
		writeJSON(w, http.StatusCreated, toPlanResponse(plan))
	}
}

func declineHandler(svc *Service) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		claims, ok := middleware.GetClaims(r.Context())
		if !ok || strings.TrimSpace(claims.UserID) == "" {
			http.Error(w, "unauthorized", http.StatusUnauthorized)
			return
		}

		plan, err := svc.DeclinePregnancy(r.Context(), chi.URLParam(r, "planID"))
		if err != nil {
			writeBirthError(w, err)
			return
		}
		writeJSON(w, http.StatusOK, toPlanResponse(plan))
	}
}

type recordBirthRequest struct {
	BirthDate string `json:"birth_date"`
	Born      int    `json:"born"`
	Dead      int    `json:"dead"`
}

func recordBirthHandler(svc *Service) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		claims, ok := middleware.GetClaims(r.Context())
		if !ok || strings.TrimSpace(claims.UserID) == "" {
			http.Error(w, "unauthorized", http.StatusUnauthorized)
			return
		}

		var req recordBirthRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			http.Error(w, "invalid json", http.StatusBadRequest)
			return
		}

		plan, err := svc.RecordBirth(r.Context(), chi.URLParam(r, "planID"), req.BirthDate, req.Born, req.Dead)
		if err != nil {
			writeBirthError(w, err)
			return
		}
		writeJSON(w, http.StatusOK, toPlanResponse(plan))
	}
}

func listDispositionsHandler(svc *Service) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		records, current, err := svc.Dispositions(r.Context(), chi.URLParam(r, "planID"))
		if err != nil {
			writeBirthError(w, err)
			return
		}

		out := make([]dispositionResponse, 0, len(records))
		for _, d := range records {
			out = append(out, toDispositionResponse(d, current[d.KittenID].ID == d.ID))
		}
		writeJSON(w, http.StatusOK, out)
	}
}

type assignRequest struct {
	KittenID          string           `json:"kitten_id"`
	Type              string           `json:"type"`
	TrainingStartDate string           `json:"training_start_date"`
	SaleInfo          *saleInfoPayload `json:"sale_info"`
	DeathDate         string           `json:"death_date"`
}

func assignDispositionHandler(svc *Service) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		claims, ok := middleware.GetClaims(r.Context())
		if !ok || strings.TrimSpace(claims.UserID) == "" {
			http.Error(w, "unauthorized", http.StatusUnauthorized)
			return
		}

		var req assignRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			http.Error(w, "invalid json", http.StatusBadRequest)
			return
		}

		in := AssignInput{
			KittenID:          req.KittenID,
			Type:              DispositionType(strings.TrimSpace(req.Type)),
			TrainingStartDate: req.TrainingStartDate,
			DeathDate:         req.DeathDate,
		}
		if req.SaleInfo != nil {
			in.SaleInfo = &SaleInfo{
				Buyer:    req.SaleInfo.Buyer,
				PriceYen: req.SaleInfo.PriceYen,
				SaleDate: req.SaleInfo.SaleDate,
			}
		}

		d, err := svc.AssignDisposition(r.Context(), chi.URLParam(r, "planID"), in)
		if err != nil {
			writeBirthError(w, err)
			return
		}
		writeJSON(w, http.StatusCreated, toDispositionResponse(d, true))
	}
}

func completeHandler(svc *Service) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		claims, ok := middleware.GetClaims(r.Context())
		if !ok || strings.TrimSpace(claims.UserID) == "" {
			http.Error(w, "unauthorized", http.StatusUnauthorized)
			return
		}

		plan, err := svc.Complete(r.Context(), chi.URLParam(r, "planID"))
		if err != nil {
			writeBirthError(w, err)
			return
		}
		writeJSON(w, http.StatusOK, toPlanResponse(plan))
	}
}

type eligibleKittenResponse struct {
	PlanID      string `json:"plan_id"`
	KittenID    string `json:"kitten_id"`
	KittenName  string `json:"kitten_name"`
	MotherID    string `json:"mother_id"`
	MotherName  string `json:"mother_name"`
	BirthDate   string `json:"birth_date"`
	AgeInDays   int    `json:"age_in_days"`
	WeightGrams int    `json:"weight_grams"`
}

func eligibleHandler(eligibility *Eligibility) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		kittens, err := eligibility.EligibleKittens(r.Context(), EligibilityInput{})
		if err != nil {
			http.Error(w, "internal error", http.StatusInternalServerError)
			return
		}

		out := make([]eligibleKittenResponse, 0, len(kittens))
		for _, k := range kittens {
			out = append(out, eligibleKittenResponse{
				PlanID:      k.PlanID,
				KittenID:    k.KittenID,
				KittenName:  k.KittenName,
				MotherID:    k.MotherID,
				MotherName:  k.MotherName,
				BirthDate:   k.BirthDate,
				AgeInDays:   k.AgeInDays,
				WeightGrams: k.WeightGrams,
			})
		}
		writeJSON(w, http.StatusOK, out)
	}
}

// writeBirthError traduce los errores de negocio del ciclo de vida a
// códigos HTTP: entrada inválida 400, entidad desconocida 404 y
// conflicto de estado 409.
func writeBirthError(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, ErrInvalidInput),
		errors.Is(err, ErrInvalidCount),
		errors.Is(err, calendar.ErrInvalidDate),
		errors.Is(err, calendar.ErrInvalidDuration):
		http.Error(w, err.Error(), http.StatusBadRequest)
	case errors.Is(err, ErrUnknownEntity):
		http.Error(w, err.Error(), http.StatusNotFound)
	case errors.Is(err, ErrDuplicateActivePlan),
		errors.Is(err, ErrPlanSealed),
		errors.Is(err, ErrBadState),
		errors.Is(err, ErrIncompleteDispositions):
		http.Error(w, err.Error(), http.StatusConflict)
	default:
		http.Error(w, "internal error", http.StatusInternalServerError)
	}
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}
