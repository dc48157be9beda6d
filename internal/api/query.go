package api

import (
	"encoding/json"
	"log/slog"
	"net/http"
	"strings"
	"time"

	"github.com/acmesales/nlapi/internal/observability"
)

type consultaRequest struct {
	Pregunta string `json:"pregunta"`
}

type consultaResponse struct {
	Pregunta    string `json:"pregunta"`
	SQLGenerado string `json:"sql_generado"`
	Total       int    `json:"total"`
	Resultado   any    `json:"resultado"`
	Resumen     string `json:"resumen"`
}

type rawSQLRequest struct {
	SQL string `json:"sql"`
}

type rawSQLResponse struct {
	SQL            string `json:"sql"`
	TotalRegistros int    `json:"total_registros"`
	Resultado      any    `json:"resultado"`
}

// handleConsulta runs the three-step pipeline: generate SQL, execute it,
// summarize the result. The steps are strictly sequential and fail-fast;
// a failure at any stage aborts the remainder with no partial response.
func handleConsulta(deps Dependencies, w http.ResponseWriter, r *http.Request) {
	if deps.Gateway == nil || deps.Generator == nil {
		writeError(r.Context(), w, http.StatusInternalServerError, "CONSULTA_NOT_CONFIGURED", "consulta dependencies are not configured", false, nil)
		return
	}

	var request consultaRequest
	decoder := json.NewDecoder(r.Body)
	decoder.DisallowUnknownFields()
	if err := decoder.Decode(&request); err != nil {
		writeError(r.Context(), w, http.StatusBadRequest, "INVALID_JSON", "invalid consulta request body", false, map[string]any{"details": err.Error()})
		return
	}
	if strings.TrimSpace(request.Pregunta) == "" {
		writeError(r.Context(), w, http.StatusBadRequest, "PREGUNTA_REQUIRED", "pregunta is required", false, nil)
		return
	}

	observability.IncrementConsultaRequests()

	generateStart := time.Now()
	sqlText, err := deps.Generator.GenerateSQL(r.Context(), request.Pregunta)
	observability.ObserveModelCall("sql_generation", time.Since(generateStart))
	if err != nil {
		observability.IncrementConsultaFailure("generate")
		writeError(r.Context(), w, http.StatusInternalServerError, "MODEL_ERROR", err.Error(), true, nil)
		return
	}

	// The generated statement runs as-is. Nothing checks that the model
	// actually produced read-only SQL; the prompt rules are the only gate.
	// Known weakness, kept to match the documented design.
	executeStart := time.Now()
	rows, err := deps.Gateway.Execute(r.Context(), sqlText)
	if err != nil {
		observability.IncrementConsultaFailure("execute")
		writeError(r.Context(), w, http.StatusInternalServerError, "DATABASE_ERROR", err.Error(), false, map[string]any{"sql_generado": sqlText})
		return
	}
	observability.ObserveQuery(len(rows), time.Since(executeStart))

	summaryStart := time.Now()
	resumen, err := deps.Generator.Summarize(r.Context(), request.Pregunta, sqlText, rows)
	observability.ObserveModelCall("summary", time.Since(summaryStart))
	if err != nil {
		observability.IncrementConsultaFailure("summarize")
		writeError(r.Context(), w, http.StatusInternalServerError, "MODEL_ERROR", err.Error(), true, nil)
		return
	}

	if deps.Logger != nil {
		deps.Logger.InfoContext(r.Context(), "consulta_completed",
			slog.String("sql_generado", sqlText),
			slog.Int("total", len(rows)),
		)
	}
	writeJSON(w, http.StatusOK, consultaResponse{
		Pregunta:    request.Pregunta,
		SQLGenerado: sqlText,
		Total:       len(rows),
		Resultado:   rows,
		Resumen:     resumen,
	})
}

// handleRawSQL executes caller-supplied SQL behind the read-only gate: the
// trimmed, case-folded statement must start with "select" or nothing runs.
func handleRawSQL(deps Dependencies, w http.ResponseWriter, r *http.Request) {
	if deps.Gateway == nil {
		writeError(r.Context(), w, http.StatusInternalServerError, "DATABASE_NOT_CONFIGURED", "database gateway is not configured", false, nil)
		return
	}

	var request rawSQLRequest
	decoder := json.NewDecoder(r.Body)
	decoder.DisallowUnknownFields()
	if err := decoder.Decode(&request); err != nil {
		writeError(r.Context(), w, http.StatusBadRequest, "INVALID_JSON", "invalid sql request body", false, map[string]any{"details": err.Error()})
		return
	}
	if strings.TrimSpace(request.SQL) == "" {
		writeError(r.Context(), w, http.StatusBadRequest, "SQL_REQUIRED", "sql is required", false, nil)
		return
	}
	if !isSelectStatement(request.SQL) {
		observability.IncrementRejectedSQL()
		writeError(r.Context(), w, http.StatusBadRequest, "SQL_NOT_ALLOWED", "Solo se permiten consultas SELECT", false, nil)
		return
	}

	executeStart := time.Now()
	rows, err := deps.Gateway.Execute(r.Context(), request.SQL)
	if err != nil {
		writeError(r.Context(), w, http.StatusBadRequest, "DATABASE_ERROR", err.Error(), false, nil)
		return
	}
	observability.ObserveQuery(len(rows), time.Since(executeStart))

	writeJSON(w, http.StatusOK, rawSQLResponse{
		SQL:            request.SQL,
		TotalRegistros: len(rows),
		Resultado:      rows,
	})
}

// isSelectStatement is a literal prefix check, nothing more. CTEs starting
// with WITH are rejected on purpose; that matches the deployed behavior.
func isSelectStatement(sqlText string) bool {
	return strings.HasPrefix(strings.ToLower(strings.TrimSpace(sqlText)), "select")
}
