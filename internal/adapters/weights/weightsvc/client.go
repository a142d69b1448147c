// Package weightsvc implementa el port de pesos contra el servicio
// externo de registros de peso, vía HTTP.
package weightsvc

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"strings"
	"time"

	"cattery-breeding/internal/platform/httpclient"
)

var (
	ErrNotConfigured = errors.New("weightsvc: client not configured")
	ErrUpstream      = errors.New("weightsvc: upstream error")
)

// Config del cliente de pesos. BaseURL y APIKey vienen de env vars en
// quien lo instancia.
type Config struct {
	BaseURL string
	APIKey  string

	// Header de la API key; "X-Api-Key" si queda vacío.
	APIKeyHeader string

	Timeout time.Duration
}

type Client struct {
	http         *httpclient.Client
	apiKey       string
	apiKeyHeader string
}

func NewClient(cfg Config) (*Client, error) {
	header := strings.TrimSpace(cfg.APIKeyHeader)
	if header == "" {
		header = "X-Api-Key"
	}
	timeout := cfg.Timeout
	if timeout <= 0 {
		timeout = 5 * time.Second
	}

	hc, err := httpclient.NewWithBaseURL(strings.TrimSpace(cfg.BaseURL), timeout)
	if err != nil {
		return nil, err
	}

	return &Client{
		http:         hc,
		apiKey:       strings.TrimSpace(cfg.APIKey),
		apiKeyHeader: header,
	}, nil
}

func (c *Client) IsConfigured() bool {
	return c != nil && c.http != nil
}

// LatestGrams consulta el último peso registrado del gato. 404 upstream
// es "sin dato", no error: la elegibilidad decide qué hacer con eso.
func (c *Client) LatestGrams(ctx context.Context, catID string) (int, bool, error) {
	if !c.IsConfigured() {
		return 0, false, ErrNotConfigured
	}
	catID = strings.TrimSpace(catID)
	if catID == "" {
		return 0, false, nil
	}

	var out struct {
		CatID      string `json:"cat_id"`
		Grams      int    `json:"grams"`
		MeasuredAt string `json:"measured_at"`
	}

	headers := map[string]string{}
	if c.apiKey != "" {
		headers[c.apiKeyHeader] = c.apiKey
	}

	err := c.http.DoJSON(ctx, http.MethodGet, "/v1/cats/"+catID+"/weights/latest", headers, nil, &out)
	if err != nil {
		var httpErr *httpclient.HTTPError
		if errors.As(err, &httpErr) && httpErr.StatusCode == http.StatusNotFound {
			return 0, false, nil
		}
		return 0, false, fmt.Errorf("%w: %v", ErrUpstream, err)
	}

	if out.Grams <= 0 {
		return 0, false, nil
	}
	return out.Grams, true, nil
}
