// Package lookup sugere um material do catálogo a partir de uma descrição
// livre. A busca é opcional: qualquer falha vira "nenhum resultado".
package lookup

import (
	"context"
	"log"
	"strings"
	"time"

	"sondalog-backend/internal/metrics"
	"sondalog-backend/internal/models"
)

type Match struct {
	SKU       string `json:"sku"`
	Reasoning string `json:"reasoning"`
}

// Provider responde com o material mais provável ou nil.
type Provider interface {
	Name() string
	Find(ctx context.Context, query string, catalog []models.Material) (*Match, error)
}

type Assistant struct {
	provider Provider
	timeout  time.Duration
}

func NewAssistant(p Provider, timeout time.Duration) *Assistant {
	if p == nil {
		p = Disabled{}
	}
	return &Assistant{provider: p, timeout: timeout}
}

func (a *Assistant) ProviderName() string {
	return a.provider.Name()
}

// Find nunca devolve erro. Respostas com SKU fora do catálogo são
// descartadas.
func (a *Assistant) Find(ctx context.Context, query string, catalog []models.Material) *Match {
	query = strings.TrimSpace(query)
	if query == "" || len(catalog) == 0 {
		return nil
	}

	if a.timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, a.timeout)
		defer cancel()
	}

	start := time.Now()
	m, err := a.provider.Find(ctx, query, catalog)
	metrics.LookupDuration.Observe(time.Since(start).Seconds())

	outcome := "match"
	switch {
	case err != nil:
		outcome = "error"
		log.Printf("[WARN] Busca assistida (%s) falhou para %q: %v", a.provider.Name(), query, err)
		m = nil
	case m == nil || m.SKU == "":
		outcome = "no_match"
		m = nil
	case !inCatalog(catalog, m.SKU):
		outcome = "unknown_sku"
		log.Printf("[WARN] Busca assistida (%s) sugeriu SKU fora do catálogo: %s", a.provider.Name(), m.SKU)
		m = nil
	}
	metrics.Lookups.WithLabelValues(a.provider.Name(), outcome).Inc()
	return m
}

func inCatalog(catalog []models.Material, sku string) bool {
	for _, m := range catalog {
		if m.SKU == sku {
			return true
		}
	}
	return false
}

// Disabled é usado quando nenhum provedor está configurado.
type Disabled struct{}

func (Disabled) Name() string { return "disabled" }

func (Disabled) Find(context.Context, string, []models.Material) (*Match, error) {
	return nil, nil
}
