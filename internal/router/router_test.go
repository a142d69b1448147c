package router_test

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	mem "cattery-breeding/internal/adapters/storage/memory"
	"cattery-breeding/internal/platform/calendar"
	"cattery-breeding/internal/ports/cats"
	"cattery-breeding/internal/router"
)

// seedDirectory arma un catálogo pequeño: pareja reproductora y dos
// cachorros recientes de la madre.
func seedDirectory(t *testing.T) (cats.Directory, string) {
	t.Helper()
	ctx := context.Background()

	dir := mem.NewCatsRepo()
	kittenBirth := time.Now().AddDate(0, 0, -20)

	for _, c := range []cats.Cat{
		{ID: "leo", Name: "Leo", Gender: cats.GenderMale, Tags: []string{"A"}, InHouse: true},
		{ID: "mimi", Name: "Mimi", Gender: cats.GenderFemale, Tags: []string{"B"}, InHouse: true},
		{ID: "k1", Name: "Kit Uno", Gender: cats.GenderMale, MotherID: "mimi", BirthDate: &kittenBirth, InHouse: true},
		{ID: "k2", Name: "Kit Dos", Gender: cats.GenderFemale, MotherID: "mimi", BirthDate: &kittenBirth, InHouse: true},
	} {
		if err := dir.Put(ctx, c); err != nil {
			t.Fatal(err)
		}
	}
	return dir, kittenBirth.Format(calendar.DateLayout)
}

func TestHTTP_EndToEnd_BreedingCycle(t *testing.T) {
	dir, _ := seedDirectory(t)
	weightsRepo := mem.NewWeightsRepo()
	_ = weightsRepo.Record(context.Background(), "k1", 620)
	_ = weightsRepo.Record(context.Background(), "k2", 430)

	ts := httptest.NewServer(router.NewRouter(router.Options{
		Cats:    dir,
		Weights: weightsRepo,
	}))
	defer ts.Close()

	userID := "breeder-1"
	matingDate := time.Now().AddDate(0, 0, -83).Format(calendar.DateLayout)

	// 1) Sin claims, los comandos cortan con 401.
	{
		st, _ := doReq(t, ts.URL, "POST", "/breeding/schedule", "", map[string]any{
			"male_id": "leo", "female_id": "mimi", "start_date": matingDate, "duration": 3,
		})
		if st != http.StatusUnauthorized {
			t.Fatalf("expected 401 without claims, got %d", st)
		}
	}

	// 2) Colocar un tramo de 3 días.
	{
		st, body := doReq(t, ts.URL, "POST", "/breeding/schedule", userID, map[string]any{
			"male_id": "leo", "female_id": "mimi", "start_date": matingDate, "duration": 3,
		})
		if st != http.StatusCreated {
			t.Fatalf("expected 201 place mating, got %d body=%s", st, string(body))
		}
	}

	// 3) Solapar el mismo macho => 409.
	{
		st, _ := doReq(t, ts.URL, "POST", "/breeding/schedule", userID, map[string]any{
			"male_id": "leo", "female_id": "mimi", "start_date": matingDate, "duration": 2,
		})
		if st != http.StatusConflict {
			t.Fatalf("expected 409 on overlap, got %d", st)
		}
	}

	// 4) Ledger de chequeos: incrementar dos veces y leer.
	{
		for i := 0; i < 2; i++ {
			st, body := doReq(t, ts.URL, "POST", "/breeding/schedule/checks", userID, map[string]any{
				"male_id": "leo", "female_id": "mimi", "date": matingDate,
			})
			if st != http.StatusOK {
				t.Fatalf("expected 200 increment check, got %d body=%s", st, string(body))
			}
		}
		st, body := doReq(t, ts.URL, "GET", "/breeding/schedule/checks?male=leo&female=mimi&date="+matingDate, "", nil)
		if st != http.StatusOK {
			t.Fatalf("expected 200 count check, got %d", st)
		}
		var out struct {
			Count int `json:"count"`
		}
		_ = json.Unmarshal(body, &out)
		if out.Count != 2 {
			t.Fatalf("expected count 2, got %d body=%s", out.Count, string(body))
		}
	}

	// 5) Resultado exitoso: archiva el tramo y abre el chequeo de embarazo.
	// Se registra en la celda terminal del tramo; el chequeo igual queda
	// anclado al primer día.
	{
		terminalDate := time.Now().AddDate(0, 0, -81).Format(calendar.DateLayout)
		st, body := doReq(t, ts.URL, "POST", "/breeding/schedule/result", userID, map[string]any{
			"male_id": "leo", "female_id": "mimi", "date": terminalDate, "result": "success",
		})
		if st != http.StatusOK {
			t.Fatalf("expected 200 record result, got %d body=%s", st, string(body))
		}
	}

	checkID := ""
	{
		st, body := doReq(t, ts.URL, "GET", "/breeding/pregnancy-checks", "", nil)
		if st != http.StatusOK {
			t.Fatalf("expected 200 list checks, got %d", st)
		}
		var checks []struct {
			ID         string `json:"id"`
			Status     string `json:"status"`
			MatingDate string `json:"mating_date"`
			CheckDate  string `json:"check_date"`
		}
		_ = json.Unmarshal(body, &checks)
		if len(checks) != 1 || checks[0].Status != "SUSPECTED" {
			t.Fatalf("expected one SUSPECTED check, body=%s", string(body))
		}
		if checks[0].MatingDate != matingDate {
			t.Fatalf("check must anchor on the span start %s, got %s", matingDate, checks[0].MatingDate)
		}
		wantCheckDate := time.Now().AddDate(0, 0, -83+21).Format(calendar.DateLayout)
		if checks[0].CheckDate != wantCheckDate {
			t.Fatalf("expected check date %s, got %s", wantCheckDate, checks[0].CheckDate)
		}
		checkID = checks[0].ID
	}

	// 6) Resolver positivo => plan EXPECTED con fecha de parto estimada.
	planID := ""
	{
		st, body := doReq(t, ts.URL, "POST", "/breeding/pregnancy-checks/"+checkID+"/resolve", userID, map[string]any{
			"positive": true,
		})
		if st != http.StatusOK {
			t.Fatalf("expected 200 resolve check, got %d body=%s", st, string(body))
		}
		var out struct {
			Plan *struct {
				ID     string `json:"id"`
				Status string `json:"status"`
			} `json:"plan"`
		}
		_ = json.Unmarshal(body, &out)
		if out.Plan == nil || out.Plan.Status != "EXPECTED" {
			t.Fatalf("expected EXPECTED plan, body=%s", string(body))
		}
		planID = out.Plan.ID
	}

	// 7) La madre ya tiene plan activo => 409 al confirmar otro.
	{
		st, _ := doReq(t, ts.URL, "POST", "/breeding/birth-plans", userID, map[string]any{
			"mother_id": "mimi", "father_id": "leo", "mating_date": matingDate,
		})
		if st != http.StatusConflict {
			t.Fatalf("expected 409 duplicate active plan, got %d", st)
		}
	}

	// 8) Registrar el parto.
	birthDate := time.Now().AddDate(0, 0, -20).Format(calendar.DateLayout)
	{
		st, body := doReq(t, ts.URL, "POST", "/breeding/birth-plans/"+planID+"/birth", userID, map[string]any{
			"birth_date": birthDate, "born": 2, "dead": 0,
		})
		if st != http.StatusOK {
			t.Fatalf("expected 200 record birth, got %d body=%s", st, string(body))
		}
	}

	// 9) Solo k1 pesa arriba del umbral: elegible único.
	{
		st, body := doReq(t, ts.URL, "GET", "/breeding/shipping/eligible", "", nil)
		if st != http.StatusOK {
			t.Fatalf("expected 200 eligible, got %d", st)
		}
		var out []struct {
			KittenID string `json:"kitten_id"`
		}
		_ = json.Unmarshal(body, &out)
		if len(out) != 1 || out[0].KittenID != "k1" {
			t.Fatalf("expected only k1 eligible, body=%s", string(body))
		}
	}

	// 10) Cerrar sin destinos => 409; con destinos => sellado.
	{
		st, _ := doReq(t, ts.URL, "POST", "/breeding/birth-plans/"+planID+"/complete", userID, nil)
		if st != http.StatusConflict {
			t.Fatalf("expected 409 incomplete dispositions, got %d", st)
		}

		for _, kitten := range []string{"k1", "k2"} {
			st, body := doReq(t, ts.URL, "POST", "/breeding/birth-plans/"+planID+"/dispositions", userID, map[string]any{
				"kitten_id": kitten, "type": "TRAINING",
			})
			if st != http.StatusCreated {
				t.Fatalf("expected 201 assign disposition, got %d body=%s", st, string(body))
			}
		}

		st, body := doReq(t, ts.URL, "POST", "/breeding/birth-plans/"+planID+"/complete", userID, nil)
		if st != http.StatusOK {
			t.Fatalf("expected 200 complete, got %d body=%s", st, string(body))
		}

		// Sellado: cualquier mutación posterior => 409.
		st, _ = doReq(t, ts.URL, "POST", "/breeding/birth-plans/"+planID+"/dispositions", userID, map[string]any{
			"kitten_id": "k1", "type": "SALE", "sale_info": map[string]any{"buyer": "Tanaka", "price_yen": 100000},
		})
		if st != http.StatusConflict {
			t.Fatalf("expected 409 on sealed plan, got %d", st)
		}
	}

	// 11) Con destino asignado, nadie queda elegible.
	{
		st, body := doReq(t, ts.URL, "GET", "/breeding/shipping/eligible", "", nil)
		if st != http.StatusOK {
			t.Fatalf("expected 200 eligible, got %d", st)
		}
		var out []any
		_ = json.Unmarshal(body, &out)
		if len(out) != 0 {
			t.Fatalf("expected no eligible kittens, body=%s", string(body))
		}
	}
}

func TestHTTP_NGRulesAndEvaluate(t *testing.T) {
	dir, _ := seedDirectory(t)
	ts := httptest.NewServer(router.NewRouter(router.Options{Cats: dir}))
	defer ts.Close()

	userID := "breeder-1"

	// Regla por tags: leo tiene A, mimi tiene B.
	ruleID := ""
	{
		st, body := doReq(t, ts.URL, "POST", "/breeding/ng-rules", userID, map[string]any{
			"name":              "A x B prohibido",
			"type":              "TAG_COMBINATION",
			"male_conditions":   []string{"A"},
			"female_conditions": []string{"B"},
		})
		if st != http.StatusCreated {
			t.Fatalf("expected 201 create rule, got %d body=%s", st, string(body))
		}
		var out struct {
			ID string `json:"id"`
		}
		_ = json.Unmarshal(body, &out)
		ruleID = out.ID
	}

	{
		st, body := doReq(t, ts.URL, "GET", "/breeding/ng-rules/evaluate?male=leo&female=mimi", "", nil)
		if st != http.StatusOK {
			t.Fatalf("expected 200 evaluate, got %d", st)
		}
		var out struct {
			Prohibited bool `json:"prohibited"`
		}
		_ = json.Unmarshal(body, &out)
		if !out.Prohibited {
			t.Fatalf("expected prohibited pair, body=%s", string(body))
		}
	}

	// Desactivar la regla la saca del camino.
	{
		st, _ := doReq(t, ts.URL, "PATCH", "/breeding/ng-rules/"+ruleID+"/active", userID, map[string]any{"active": false})
		if st != http.StatusOK {
			t.Fatalf("expected 200 set active, got %d", st)
		}

		st, body := doReq(t, ts.URL, "GET", "/breeding/ng-rules/evaluate?male=leo&female=mimi", "", nil)
		if st != http.StatusOK {
			t.Fatalf("expected 200 evaluate, got %d", st)
		}
		var out struct {
			Prohibited bool `json:"prohibited"`
		}
		_ = json.Unmarshal(body, &out)
		if out.Prohibited {
			t.Fatalf("inactive rule must not prohibit, body=%s", string(body))
		}
	}
}

func TestHTTP_HealthAndMetrics(t *testing.T) {
	dir, _ := seedDirectory(t)
	ts := httptest.NewServer(router.NewRouter(router.Options{Cats: dir}))
	defer ts.Close()

	st, body := doReq(t, ts.URL, "GET", "/health", "", nil)
	if st != http.StatusOK || string(body) != "ok" {
		t.Fatalf("expected 200 ok from /health, got %d body=%s", st, string(body))
	}

	st, body = doReq(t, ts.URL, "GET", "/metrics", "", nil)
	if st != http.StatusOK {
		t.Fatalf("expected 200 from /metrics, got %d", st)
	}
	if !bytes.Contains(body, []byte("http_requests_total")) {
		t.Fatalf("expected http_requests_total in metrics output")
	}
}

func doReq(t *testing.T, baseURL, method, path, debugUserID string, body any) (int, []byte) {
	t.Helper()

	var rdr io.Reader
	if body != nil {
		b, err := json.Marshal(body)
		if err != nil {
			t.Fatalf("json marshal: %v", err)
		}
		rdr = bytes.NewReader(b)
	}

	req, err := http.NewRequest(method, baseURL+path, rdr)
	if err != nil {
		t.Fatalf("new request: %v", err)
	}
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if debugUserID != "" {
		req.Header.Set("X-Debug-User-ID", debugUserID)
	}

	res, err := http.DefaultClient.Do(req)
	if err != nil {
		t.Fatalf("do request: %v", err)
	}
	defer res.Body.Close()

	respBody, _ := io.ReadAll(res.Body)
	return res.StatusCode, respBody
}
