// Package metrics registra os contadores Prometheus do serviço.
package metrics

import (
	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/adaptor"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

var (
	RequestsCreated = prometheus.NewCounter(
		prometheus.CounterOpts{
			Name: "sondalog_requests_created_total",
			Help: "Solicitações de material criadas",
		},
	)

	Transitions = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "sondalog_request_transitions_total",
			Help: "Decisões de supervisores por tipo (approve, reject, restore, purge)",
		},
		[]string{"transition"},
	)

	Exports = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "sondalog_exports_total",
			Help: "Arquivos de exportação gerados",
		},
		[]string{"format"},
	)

	ExportRows = prometheus.NewCounter(
		prometheus.CounterOpts{
			Name: "sondalog_export_rows_total",
			Help: "Linhas de item exportadas",
		},
	)

	Lookups = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "sondalog_lookups_total",
			Help: "Buscas assistidas de material por provedor e resultado",
		},
		[]string{"provider", "outcome"},
	)

	LookupDuration = prometheus.NewHistogram(
		prometheus.HistogramOpts{
			Name:    "sondalog_lookup_duration_seconds",
			Help:    "Tempo de resposta do provedor de busca",
			Buckets: prometheus.DefBuckets,
		},
	)

	Logins = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "sondalog_logins_total",
			Help: "Tentativas de login por tipo e resultado",
		},
		[]string{"kind", "outcome"},
	)
)

func init() {
	prometheus.MustRegister(RequestsCreated, Transitions, Exports, ExportRows, Lookups, LookupDuration, Logins)
}

// Handler expõe o registro padrão em formato Prometheus.
func Handler() fiber.Handler {
	return adaptor.HTTPHandler(promhttp.Handler())
}

// Outcome converte um erro no rótulo usado pelos contadores.
func Outcome(err error) string {
	if err != nil {
		return "failure"
	}
	return "success"
}
