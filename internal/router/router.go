package router

import (
	"context"
	"database/sql"
	"net/http"
	"os"
	"time"

	mem "cattery-breeding/internal/adapters/storage/memory"
	pg "cattery-breeding/internal/adapters/storage/postgres"
	"cattery-breeding/internal/adapters/weights/weightsvc"
	"cattery-breeding/internal/domain/birth"
	"cattery-breeding/internal/domain/pairing"
	"cattery-breeding/internal/domain/schedule"
	"cattery-breeding/internal/middleware"
	"cattery-breeding/internal/platform/config"
	"cattery-breeding/internal/platform/logger"
	"cattery-breeding/internal/ports/auth"
	"cattery-breeding/internal/ports/cats"
	"cattery-breeding/internal/ports/weights"

	"github.com/go-chi/chi/v5"
	chimw "github.com/go-chi/chi/v5/middleware"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

type Options struct {
	Config *config.Config

	AuthVerifier auth.AuthVerifier // nil => modo dev (X-Debug-User-ID)
	Log          logger.Logger

	// Opcional: si viene, usa Postgres. Si no, in-memory.
	DB *sql.DB

	// Overrides para tests y dev: directorio de gatos y lookup de pesos.
	Cats    cats.Directory
	Weights weights.Lookup
}

func NewRouter(opts Options) http.Handler {
	cfg := opts.Config
	if cfg == nil {
		cfg = config.Default()
	}
	log := opts.Log
	if log == nil {
		log = logger.NewFromEnv()
	}

	r := chi.NewRouter()

	r.Use(chimw.RequestID)
	r.Use(chimw.RealIP)
	r.Use(chimw.Recoverer)
	r.Use(middleware.RequestLog(log))

	// Registry propio: permite instanciar varios routers (tests) sin
	// chocar registros.
	reg := prometheus.NewRegistry()
	metrics := middleware.NewMetrics(reg)
	r.Use(metrics.Handler)

	r.Use(middleware.AuthContext(opts.AuthVerifier))

	r.Get("/health", func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte("ok"))
	})
	r.Method(http.MethodGet, "/metrics", promhttp.HandlerFor(reg, promhttp.HandlerOpts{}))

	var (
		scheduleRepo schedule.Repository
		ledgerRepo   schedule.LedgerRepository
		rulesRepo    pairing.Repository
		birthRepo    birth.Repository
		directory    cats.Directory
		weightLookup weights.Lookup
	)

	// Sin DB explícita, intenta por config/env (dev/handoff).
	db := opts.DB
	if db == nil {
		dsn := cfg.DBDSN
		if dsn == "" {
			dsn = os.Getenv("DB_DSN")
		}
		if dsn != "" {
			opened, err := pg.Open(dsn)
			if err != nil {
				log.Warn("postgres unavailable, falling back to memory", map[string]any{"error": err.Error()})
			} else {
				db = opened
			}
		}
	}

	if db != nil {
		scheduleRepo = pg.NewScheduleRepo(db)
		ledgerRepo = pg.NewLedgerRepo(db)
		rulesRepo = pg.NewRulesRepo(db)
		birthRepo = pg.NewBirthRepo(db)
		directory = pg.NewCatsRepo(db)
		weightLookup = pg.NewWeightsRepo(db)
	} else {
		scheduleRepo = mem.NewScheduleRepo()
		ledgerRepo = mem.NewLedgerRepo()
		rulesRepo = mem.NewRulesRepo()
		birthRepo = mem.NewBirthRepo()
		directory = mem.NewCatsRepo()
		weightLookup = mem.NewWeightsRepo()
	}

	if opts.Cats != nil {
		directory = opts.Cats
	}
	if opts.Weights != nil {
		weightLookup = opts.Weights
	} else if cfg.WeightServiceURL != "" {
		client, err := weightsvc.NewClient(weightsvc.Config{
			BaseURL: cfg.WeightServiceURL,
			APIKey:  os.Getenv("WEIGHT_SERVICE_API_KEY"),
			Timeout: 5 * time.Second,
		})
		if err != nil {
			log.Warn("weight service misconfigured, using storage lookup", map[string]any{"error": err.Error()})
		} else {
			weightLookup = client
		}
	}

	// Services por módulo
	pairingSvc := pairing.NewService(rulesRepo, pairing.NewEngine())
	scheduleSvc := schedule.NewService(scheduleRepo, schedule.NewLedger(ledgerRepo), directory)
	birthSvc := birth.NewService(birthRepo, directory, cfg.KittenAgeLimitDays)
	eligibility := birth.NewEligibility(birthRepo, directory, weightLookup, cfg.ShippingWeightGrams, cfg.KittenAgeLimitDays)

	// Rutas por módulo
	pairing.RegisterRoutes(r, pairingSvc, directory)
	schedule.RegisterRoutes(r, scheduleSvc, pregnancyIntake{svc: birthSvc}, log)
	birth.RegisterRoutes(r, birthSvc, eligibility)

	return r
}

// pregnancyIntake conecta el cierre exitoso de un tramo del calendario
// con la apertura del chequeo de embarazo.
type pregnancyIntake struct {
	svc *birth.Service
}

func (p pregnancyIntake) SuspectPregnancy(ctx context.Context, motherID, fatherID, matingDate string) error {
	_, err := p.svc.SuspectPregnancy(ctx, motherID, fatherID, matingDate)
	return err
}
