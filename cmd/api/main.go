package main

import (
	"net/http"
	"os"
	"time"

	"cattery-breeding/internal/adapters/auth/tokensvc"
	"cattery-breeding/internal/platform/config"
	"cattery-breeding/internal/platform/logger"
	"cattery-breeding/internal/ports/auth"
	"cattery-breeding/internal/router"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		// logger todavía no existe: salida directa.
		os.Stderr.WriteString("config: " + err.Error() + "\n")
		os.Exit(1)
	}

	log := logger.New(logger.Options{
		Level:  logger.ParseLevel(cfg.LogLevel),
		Format: logger.ParseFormat(cfg.LogFormat),
		App:    cfg.AppName,
	})

	// Sin AUTH_URL el verifier queda nil y el middleware corre en modo
	// dev (X-Debug-User-ID).
	var verifier auth.AuthVerifier
	if authURL := os.Getenv("AUTH_URL"); authURL != "" {
		v, err := tokensvc.NewVerifier(tokensvc.Config{
			BaseURL: authURL,
			APIKey:  os.Getenv("AUTH_API_KEY"),
		})
		if err != nil {
			log.Error("auth verifier init failed", map[string]any{"error": err.Error()})
			os.Exit(1)
		}
		verifier = v
	}

	r := router.NewRouter(router.Options{
		Config:       cfg,
		AuthVerifier: verifier,
		Log:          log,
	})

	srv := &http.Server{
		Addr:         ":" + cfg.Port,
		Handler:      r,
		ReadTimeout:  5 * time.Second,
		WriteTimeout: 10 * time.Second,
	}

	log.Info("starting server", map[string]any{"addr": srv.Addr, "app": cfg.AppName})
	if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
		log.Error("server error", map[string]any{"error": err.Error()})
		os.Exit(1)
	}
}
