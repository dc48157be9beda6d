package nlsql

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"testing"

	"github.com/acmesales/nlapi/internal/gateway"
)

type fakeCompleter struct {
	response  string
	err       error
	prompts   []string
	maxTokens []int
}

func (f *fakeCompleter) Complete(_ context.Context, prompt string, maxTokens int) (string, error) {
	f.prompts = append(f.prompts, prompt)
	f.maxTokens = append(f.maxTokens, maxTokens)
	if f.err != nil {
		return "", f.err
	}
	return f.response, nil
}

func TestGenerateSQLBuildsPromptFromSchemaAndQuestion(t *testing.T) {
	completer := &fakeCompleter{response: "SELECT Empresa FROM clientes LIMIT 50"}
	g := NewGenerator(completer, "esquema de prueba", 500, 300)

	sqlText, err := g.GenerateSQL(context.Background(), "¿Cuántos clientes hay?")
	if err != nil {
		t.Fatalf("GenerateSQL() error = %v", err)
	}
	if sqlText != "SELECT Empresa FROM clientes LIMIT 50" {
		t.Fatalf("GenerateSQL() = %q", sqlText)
	}
	if len(completer.prompts) != 1 {
		t.Fatalf("prompt count = %d", len(completer.prompts))
	}
	prompt := completer.prompts[0]
	for _, fragment := range []string{
		"esquema de prueba",
		"¿Cuántos clientes hay?",
		"Solo SELECT (nunca INSERT, UPDATE, DELETE, DROP)",
		"Usa LIMIT 50 si no se especifica cantidad",
	} {
		if !strings.Contains(prompt, fragment) {
			t.Fatalf("prompt is missing %q:\n%s", fragment, prompt)
		}
	}
	if completer.maxTokens[0] != 500 {
		t.Fatalf("maxTokens = %d", completer.maxTokens[0])
	}
}

func TestGenerateSQLStripsMarkdownFences(t *testing.T) {
	completer := &fakeCompleter{response: "```sql\nSELECT 1\n```"}
	g := NewGenerator(completer, "esquema", 0, 0)

	sqlText, err := g.GenerateSQL(context.Background(), "pregunta")
	if err != nil {
		t.Fatalf("GenerateSQL() error = %v", err)
	}
	if sqlText != "SELECT 1" {
		t.Fatalf("GenerateSQL() = %q", sqlText)
	}
}

func TestGenerateSQLRejectsEmptyModelOutput(t *testing.T) {
	completer := &fakeCompleter{response: "```\n\n```"}
	g := NewGenerator(completer, "esquema", 0, 0)

	if _, err := g.GenerateSQL(context.Background(), "pregunta"); err == nil {
		t.Fatal("GenerateSQL() should reject empty output")
	}
}

func TestGenerateSQLWrapsCompleterError(t *testing.T) {
	apiErr := errors.New("completion failed status=429")
	g := NewGenerator(&fakeCompleter{err: apiErr}, "esquema", 0, 0)

	_, err := g.GenerateSQL(context.Background(), "pregunta")
	if err == nil || !errors.Is(err, apiErr) {
		t.Fatalf("GenerateSQL() error = %v, want wrapped %v", err, apiErr)
	}
}

func TestSummarizeSamplesFirstTenRows(t *testing.T) {
	completer := &fakeCompleter{response: "Resumen de prueba."}
	g := NewGenerator(completer, "esquema", 500, 300)

	rows := make([]gateway.Row, 0, 15)
	for i := 0; i < 15; i++ {
		rows = append(rows, gateway.Row{
			Columns: []string{"Empresa"},
			Values:  []any{fmt.Sprintf("Empresa %02d", i)},
		})
	}

	summary, err := g.Summarize(context.Background(), "pregunta", "SELECT Empresa FROM clientes", rows)
	if err != nil {
		t.Fatalf("Summarize() error = %v", err)
	}
	if summary != "Resumen de prueba." {
		t.Fatalf("Summarize() = %q", summary)
	}

	prompt := completer.prompts[0]
	if !strings.Contains(prompt, "(mostrando 10 de 15)") {
		t.Fatalf("prompt is missing truncation note:\n%s", prompt)
	}
	if !strings.Contains(prompt, "Empresa 09") {
		t.Fatal("prompt should include the tenth row")
	}
	if strings.Contains(prompt, "Empresa 10") {
		t.Fatal("prompt should not include rows past the sample")
	}
	if completer.maxTokens[0] != 300 {
		t.Fatalf("maxTokens = %d", completer.maxTokens[0])
	}
}

func TestSummarizeOmitsTruncationNoteForSmallResults(t *testing.T) {
	completer := &fakeCompleter{response: "Resumen corto."}
	g := NewGenerator(completer, "esquema", 0, 0)

	rows := []gateway.Row{{Columns: []string{"total"}, Values: []any{int64(3)}}}
	if _, err := g.Summarize(context.Background(), "pregunta", "SELECT COUNT(*) AS total FROM clientes", rows); err != nil {
		t.Fatalf("Summarize() error = %v", err)
	}
	if strings.Contains(completer.prompts[0], "mostrando") {
		t.Fatal("prompt should not claim truncation for small results")
	}
}

func TestSummarizePromptCarriesQuestionAndSQL(t *testing.T) {
	completer := &fakeCompleter{response: "Resumen."}
	g := NewGenerator(completer, "esquema", 0, 0)

	_, err := g.Summarize(context.Background(), "¿Quién vende más?", "SELECT Nombre FROM repventas", nil)
	if err != nil {
		t.Fatalf("Summarize() error = %v", err)
	}
	prompt := completer.prompts[0]
	if !strings.Contains(prompt, "¿Quién vende más?") || !strings.Contains(prompt, "SELECT Nombre FROM repventas") {
		t.Fatalf("prompt missing question or sql:\n%s", prompt)
	}
	if !strings.Contains(prompt, "maximo 3 oraciones") {
		t.Fatal("prompt should constrain summary length")
	}
}

func TestSummarizeRejectsEmptyModelOutput(t *testing.T) {
	g := NewGenerator(&fakeCompleter{response: "   "}, "esquema", 0, 0)
	if _, err := g.Summarize(context.Background(), "pregunta", "SELECT 1", nil); err == nil {
		t.Fatal("Summarize() should reject empty output")
	}
}

func TestStripMarkdownFences(t *testing.T) {
	got := stripMarkdownFences("```sql\nSELECT 1;\n```")
	if got != "SELECT 1;" {
		t.Fatalf("stripMarkdownFences() = %q", got)
	}
	if got := stripMarkdownFences("  SELECT 2  "); got != "SELECT 2" {
		t.Fatalf("stripMarkdownFences() = %q", got)
	}
}
