package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"

	"github.com/joho/godotenv"
)

// Defaults del dominio. El umbral de peso y la ventana de edad son
// configurables porque el algoritmo no debe tenerlos cableados.
const (
	DefaultShippingWeightGrams = 500
	DefaultKittenAgeLimitDays  = 90
)

// Config agrupa toda la configuración de la app.
type Config struct {
	Port    string
	DBDSN   string
	AppName string

	LogLevel  string
	LogFormat string

	// Colaborador externo de registros de peso (opcional; si está vacío
	// se usa el lookup in-memory).
	WeightServiceURL string

	ShippingWeightGrams int
	KittenAgeLimitDays  int
}

// Default es la config sin entorno: puerto 8080, repos in-memory y los
// umbrales de dominio por defecto.
func Default() *Config {
	return &Config{
		Port:                "8080",
		AppName:             "cattery-breeding",
		ShippingWeightGrams: DefaultShippingWeightGrams,
		KittenAgeLimitDays:  DefaultKittenAgeLimitDays,
	}
}

// Load lee config de env vars, con .env opcional (no pisa vars existentes).
func Load() (*Config, error) {
	_ = godotenv.Load()

	cfg := &Config{
		Port:             strings.TrimSpace(os.Getenv("PORT")),
		DBDSN:            strings.TrimSpace(os.Getenv("DB_DSN")),
		AppName:          strings.TrimSpace(os.Getenv("APP_NAME")),
		LogLevel:         strings.TrimSpace(os.Getenv("LOG_LEVEL")),
		LogFormat:        strings.TrimSpace(os.Getenv("LOG_FORMAT")),
		WeightServiceURL: strings.TrimSpace(os.Getenv("WEIGHT_SERVICE_URL")),
	}

	if cfg.Port == "" {
		cfg.Port = "8080"
	}
	if cfg.AppName == "" {
		cfg.AppName = "cattery-breeding"
	}

	var err error
	cfg.ShippingWeightGrams, err = intFromEnv("SHIPPING_WEIGHT_THRESHOLD_GRAMS", DefaultShippingWeightGrams)
	if err != nil {
		return nil, err
	}
	cfg.KittenAgeLimitDays, err = intFromEnv("KITTEN_AGE_LIMIT_DAYS", DefaultKittenAgeLimitDays)
	if err != nil {
		return nil, err
	}

	if cfg.ShippingWeightGrams < 0 {
		return nil, fmt.Errorf("SHIPPING_WEIGHT_THRESHOLD_GRAMS must be >= 0, got %d", cfg.ShippingWeightGrams)
	}
	if cfg.KittenAgeLimitDays < 1 {
		return nil, fmt.Errorf("KITTEN_AGE_LIMIT_DAYS must be >= 1, got %d", cfg.KittenAgeLimitDays)
	}

	return cfg, nil
}

func intFromEnv(key string, def int) (int, error) {
	raw := strings.TrimSpace(os.Getenv(key))
	if raw == "" {
		return def, nil
	}
	v, err := strconv.Atoi(raw)
	if err != nil {
		return 0, fmt.Errorf("invalid %s: %w", key, err)
	}
	return v, nil
}
