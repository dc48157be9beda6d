// Package api exposes the HTTP surface: a service banner, health check,
// static table listing, natural-language query and raw SQL execution.
package api

import (
	"context"
	"encoding/json"
	"log/slog"
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/acmesales/nlapi/internal/config"
	"github.com/acmesales/nlapi/internal/gateway"
	"github.com/acmesales/nlapi/internal/observability"
	"github.com/acmesales/nlapi/internal/schema"
)

// DatabaseGateway is the slice of the gateway the handlers need.
type DatabaseGateway interface {
	Ping(ctx context.Context) error
	Execute(ctx context.Context, sqlText string) ([]gateway.Row, error)
}

// SQLGenerator produces SQL from questions and prose from results.
type SQLGenerator interface {
	GenerateSQL(ctx context.Context, question string) (string, error)
	Summarize(ctx context.Context, question, sqlText string, rows []gateway.Row) (string, error)
}

type Dependencies struct {
	Logger        *slog.Logger
	Gateway       DatabaseGateway
	Generator     SQLGenerator
	HealthTimeout time.Duration
}

func NewHandler(cfg config.Config, deps Dependencies) http.Handler {
	mux := http.NewServeMux()

	mux.HandleFunc("GET /{$}", func(w http.ResponseWriter, _ *http.Request) {
		writeJSON(w, http.StatusOK, map[string]any{
			"servicio": cfg.Service.Name,
			"status":   "ACME NL API funcionando correctamente",
			"endpoints": map[string]string{
				"GET  /health":   "Verifica conexion con la BD",
				"GET  /tablas":   "Lista tablas disponibles",
				"POST /consulta": "Consulta en lenguaje natural",
				"POST /sql":      "Ejecuta SQL directo (solo SELECT)",
				"GET  /metrics":  "Metricas Prometheus",
			},
		})
	})

	mux.HandleFunc("GET /health", func(w http.ResponseWriter, r *http.Request) {
		if deps.Gateway == nil {
			writeError(r.Context(), w, http.StatusInternalServerError, "DATABASE_NOT_CONFIGURED", "database gateway is not configured", false, nil)
			return
		}
		timeout := deps.HealthTimeout
		if timeout <= 0 {
			timeout = 2 * time.Second
		}
		ctx, cancel := context.WithTimeout(r.Context(), timeout)
		defer cancel()
		if err := deps.Gateway.Ping(ctx); err != nil {
			writeError(r.Context(), w, http.StatusInternalServerError, "DATABASE_ERROR", err.Error(), true, nil)
			return
		}
		writeJSON(w, http.StatusOK, map[string]any{
			"estado":        "ok",
			"base_de_datos": "conectada",
		})
	})

	// Static by design: the table list never consults the database.
	mux.HandleFunc("GET /tablas", func(w http.ResponseWriter, _ *http.Request) {
		writeJSON(w, http.StatusOK, map[string]any{
			"tablas":      schema.TableNames(),
			"descripcion": schema.DatabaseDescription,
		})
	})

	mux.HandleFunc("POST /consulta", func(w http.ResponseWriter, r *http.Request) {
		handleConsulta(deps, w, r)
	})
	mux.HandleFunc("POST /sql", func(w http.ResponseWriter, r *http.Request) {
		handleRawSQL(deps, w, r)
	})

	mux.Handle("GET /metrics", promhttp.Handler())

	middlewares := []func(http.Handler) http.Handler{
		observability.TraceMiddleware,
		observability.CORSMiddleware,
		observability.MetricsMiddleware,
	}
	if deps.Logger != nil {
		middlewares = append(middlewares, observability.LoggingMiddleware(deps.Logger))
	}
	return chain(mux, middlewares...)
}

func chain(base http.Handler, middlewares ...func(http.Handler) http.Handler) http.Handler {
	wrapped := base
	for i := len(middlewares) - 1; i >= 0; i-- {
		wrapped = middlewares[i](wrapped)
	}
	return wrapped
}

func writeJSON(w http.ResponseWriter, status int, payload any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(payload)
}

func writeError(ctx context.Context, w http.ResponseWriter, status int, code, message string, retryable bool, extra map[string]any) {
	writeJSON(w, status, map[string]any{
		"error_code": code,
		"message":    message,
		"retryable":  retryable,
		"context":    extra,
		"trace_id":   observability.TraceIDFromContext(ctx),
	})
}
