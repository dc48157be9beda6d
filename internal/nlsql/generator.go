// Package nlsql turns natural-language questions into SQL and result sets
// into prose summaries by prompting a completion API.
package nlsql

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"

	"github.com/acmesales/nlapi/internal/gateway"
)

// summarySampleSize caps how many rows are shown to the model when
// summarizing; larger result sets are annotated as truncated.
const summarySampleSize = 10

// Completer is the black-box completion API: one prompt string in, one
// generated text out. No retries, no streaming, no tool use.
type Completer interface {
	Complete(ctx context.Context, prompt string, maxTokens int) (string, error)
}

type Generator struct {
	completer        Completer
	schemaText       string
	sqlMaxTokens     int
	summaryMaxTokens int
}

func NewGenerator(completer Completer, schemaText string, sqlMaxTokens, summaryMaxTokens int) *Generator {
	if sqlMaxTokens <= 0 {
		sqlMaxTokens = 500
	}
	if summaryMaxTokens <= 0 {
		summaryMaxTokens = 300
	}
	return &Generator{
		completer:        completer,
		schemaText:       schemaText,
		sqlMaxTokens:     sqlMaxTokens,
		summaryMaxTokens: summaryMaxTokens,
	}
}

// GenerateSQL asks the model for a single bare SELECT statement answering
// the question. The SELECT-only and LIMIT rules live in the prompt; the
// output is not parsed or validated here beyond fence stripping.
func (g *Generator) GenerateSQL(ctx context.Context, question string) (string, error) {
	prompt := buildSQLPrompt(g.schemaText, question)
	raw, err := g.completer.Complete(ctx, prompt, g.sqlMaxTokens)
	if err != nil {
		return "", fmt.Errorf("generate sql: %w", err)
	}
	sqlText := stripMarkdownFences(raw)
	if sqlText == "" {
		return "", fmt.Errorf("model returned empty SQL")
	}
	return sqlText, nil
}

// Summarize asks the model for an executive summary of the result set,
// showing it at most the first summarySampleSize rows.
func (g *Generator) Summarize(ctx context.Context, question, sqlText string, rows []gateway.Row) (string, error) {
	prompt, err := buildSummaryPrompt(question, sqlText, rows)
	if err != nil {
		return "", err
	}
	raw, err := g.completer.Complete(ctx, prompt, g.summaryMaxTokens)
	if err != nil {
		return "", fmt.Errorf("generate summary: %w", err)
	}
	summary := strings.TrimSpace(raw)
	if summary == "" {
		return "", fmt.Errorf("model returned empty summary")
	}
	return summary, nil
}

func buildSQLPrompt(schemaText, question string) string {
	return fmt.Sprintf(`Eres un experto en SQL para MySQL.
Dado este esquema:

%s

Genera UNICAMENTE el SQL para responder: "%s"

Reglas:
- Solo SQL puro, sin explicaciones, sin markdown, sin `+"```"+`
- Solo SELECT (nunca INSERT, UPDATE, DELETE, DROP)
- Usa LIMIT 50 si no se especifica cantidad
- Respeta los nombres exactos de columnas del esquema
`, schemaText, strings.TrimSpace(question))
}

func buildSummaryPrompt(question, sqlText string, rows []gateway.Row) (string, error) {
	sample := rows
	extra := ""
	if len(rows) > summarySampleSize {
		sample = rows[:summarySampleSize]
		extra = fmt.Sprintf(" (mostrando %d de %d)", summarySampleSize, len(rows))
	}
	sampleJSON, err := json.Marshal(sample)
	if err != nil {
		return "", fmt.Errorf("marshal result sample: %w", err)
	}
	return fmt.Sprintf(`Eres analista de negocio de ACME.
Pregunta: "%s"
SQL: %s
Resultados%s: %s

Escribe un resumen ejecutivo en espanol, maximo 3 oraciones.`,
		strings.TrimSpace(question), sqlText, extra, string(sampleJSON)), nil
}

// Models wrap code in fences no matter how firmly the prompt forbids it,
// so the wrapper is stripped rather than trusted away.
func stripMarkdownFences(value string) string {
	trimmed := strings.TrimSpace(value)
	if strings.HasPrefix(trimmed, "```") {
		trimmed = strings.TrimPrefix(trimmed, "```sql")
		trimmed = strings.TrimPrefix(trimmed, "```")
		trimmed = strings.TrimSuffix(trimmed, "```")
		return strings.TrimSpace(trimmed)
	}
	return trimmed
}
