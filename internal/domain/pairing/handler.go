package pairing

import (
	"encoding/json"
	"errors"
	"net/http"
	"strings"
	"time"

	"cattery-breeding/internal/middleware"
	"cattery-breeding/internal/ports/cats"

	"github.com/go-chi/chi/v5"
)

func RegisterRoutes(r chi.Router, svc *Service, directory cats.Directory) {
	r.Route("/breeding/ng-rules", func(nr chi.Router) {
		nr.Get("/", listRulesHandler(svc))
		nr.Post("/", createRuleHandler(svc))

		// Evaluación de pareja candidata: solo advierte, nunca bloquea.
		nr.Get("/evaluate", evaluateHandler(svc, directory))

		nr.Patch("/{ruleID}/active", setActiveHandler(svc))
		nr.Delete("/{ruleID}", deleteRuleHandler(svc))
	})
}

type createRuleRequest struct {
	Name             string   `json:"name"`
	Type             string   `json:"type"`
	MaleConditions   []string `json:"male_conditions"`
	FemaleConditions []string `json:"female_conditions"`
	MaleNames        []string `json:"male_names"`
	FemaleNames      []string `json:"female_names"`
	GenerationLimit  int      `json:"generation_limit"`
	Description      string   `json:"description"`
}

type ruleResponse struct {
	ID               string    `json:"id"`
	Name             string    `json:"name"`
	Type             RuleType  `json:"type"`
	MaleConditions   []string  `json:"male_conditions,omitempty"`
	FemaleConditions []string  `json:"female_conditions,omitempty"`
	MaleNames        []string  `json:"male_names,omitempty"`
	FemaleNames      []string  `json:"female_names,omitempty"`
	GenerationLimit  int       `json:"generation_limit,omitempty"`
	Description      string    `json:"description,omitempty"`
	Active           bool      `json:"active"`
	CreatedAt        time.Time `json:"created_at"`
	UpdatedAt        time.Time `json:"updated_at"`
}

type evaluateResponse struct {
	Prohibited   bool          `json:"prohibited"`
	MatchingRule *ruleResponse `json:"matching_rule,omitempty"`
}

func listRulesHandler(svc *Service) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		rules, err := svc.List(r.Context())
		if err != nil {
			http.Error(w, "internal error", http.StatusInternalServerError)
			return
		}

		out := make([]ruleResponse, 0, len(rules))
		for _, rule := range rules {
			out = append(out, toRuleResponse(rule))
		}
		writeJSON(w, http.StatusOK, out)
	}
}

func createRuleHandler(svc *Service) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		claims, ok := middleware.GetClaims(r.Context())
		if !ok || strings.TrimSpace(claims.UserID) == "" {
			http.Error(w, "unauthorized", http.StatusUnauthorized)
			return
		}

		var req createRuleRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			http.Error(w, "invalid json", http.StatusBadRequest)
			return
		}

		rule, err := svc.Create(r.Context(), CreateInput{
			Name:             req.Name,
			Type:             RuleType(strings.TrimSpace(req.Type)),
			MaleConditions:   req.MaleConditions,
			FemaleConditions: req.FemaleConditions,
			MaleNames:        req.MaleNames,
			FemaleNames:      req.FemaleNames,
			GenerationLimit:  req.GenerationLimit,
			Description:      req.Description,
		})
		if err != nil {
			if errors.Is(err, ErrInvalidInput) {
				http.Error(w, err.Error(), http.StatusBadRequest)
				return
			}
			http.Error(w, "internal error", http.StatusInternalServerError)
			return
		}

		writeJSON(w, http.StatusCreated, toRuleResponse(rule))
	}
}

func setActiveHandler(svc *Service) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		claims, ok := middleware.GetClaims(r.Context())
		if !ok || strings.TrimSpace(claims.UserID) == "" {
			http.Error(w, "unauthorized", http.StatusUnauthorized)
			return
		}

		var req struct {
			Active bool `json:"active"`
		}
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			http.Error(w, "invalid json", http.StatusBadRequest)
			return
		}

		rule, err := svc.SetActive(r.Context(), chi.URLParam(r, "ruleID"), req.Active)
		if err != nil {
			if errors.Is(err, ErrNotFound) {
				http.Error(w, "rule not found", http.StatusNotFound)
				return
			}
			if errors.Is(err, ErrInvalidInput) {
				http.Error(w, err.Error(), http.StatusBadRequest)
				return
			}
			http.Error(w, "internal error", http.StatusInternalServerError)
			return
		}

		writeJSON(w, http.StatusOK, toRuleResponse(rule))
	}
}

func deleteRuleHandler(svc *Service) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		claims, ok := middleware.GetClaims(r.Context())
		if !ok || strings.TrimSpace(claims.UserID) == "" {
			http.Error(w, "unauthorized", http.StatusUnauthorized)
			return
		}

		err := svc.Delete(r.Context(), chi.URLParam(r, "ruleID"))
		if err != nil {
			if errors.Is(err, ErrNotFound) {
				http.Error(w, "rule not found", http.StatusNotFound)
				return
			}
			http.Error(w, "internal error", http.StatusInternalServerError)
			return
		}

		writeJSON(w, http.StatusOK, map[string]bool{"deleted": true})
	}
}

func evaluateHandler(svc *Service, directory cats.Directory) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		maleID := strings.TrimSpace(r.URL.Query().Get("male"))
		femaleID := strings.TrimSpace(r.URL.Query().Get("female"))
		if maleID == "" || femaleID == "" {
			http.Error(w, "male and female are required", http.StatusBadRequest)
			return
		}

		// Gatos ausentes no son error aquí: el motor aplica su política
		// de candidato desconocido (fail-open por default).
		var male, female Candidate
		if c, err := directory.Get(r.Context(), maleID); err == nil {
			male = CandidateFromCat(c)
		}
		if c, err := directory.Get(r.Context(), femaleID); err == nil {
			female = CandidateFromCat(c)
		}

		rule, prohibited, err := svc.Evaluate(r.Context(), male, female)
		if err != nil {
			http.Error(w, "internal error", http.StatusInternalServerError)
			return
		}

		resp := evaluateResponse{Prohibited: prohibited}
		if prohibited && rule.ID != "" {
			rr := toRuleResponse(rule)
			resp.MatchingRule = &rr
		}
		writeJSON(w, http.StatusOK, resp)
	}
}

func toRuleResponse(r Rule) ruleResponse {
	return ruleResponse{
		ID:               r.ID,
		Name:             r.Name,
		Type:             r.Type,
		MaleConditions:   r.MaleConditions,
		FemaleConditions: r.FemaleConditions,
		MaleNames:        r.MaleNames,
		FemaleNames:      r.FemaleNames,
		GenerationLimit:  r.GenerationLimit,
		Description:      r.Description,
		Active:           r.Active,
		CreatedAt:        r.CreatedAt,
		UpdatedAt:        r.UpdatedAt,
	}
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}
