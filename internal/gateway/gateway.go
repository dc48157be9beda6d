// Package gateway owns the single database connection pool and turns SQL
// text into ordered rows. It performs no statement-kind filtering; callers
// decide what is safe to run.
package gateway

import (
	"bytes"
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"net/url"
	"strings"
	"time"

	_ "github.com/go-sql-driver/mysql"
	_ "github.com/jackc/pgx/v5/stdlib"
)

type Config struct {
	URL             string
	MaxOpenConns    int
	MaxIdleConns    int
	ConnMaxIdleTime time.Duration
	ConnMaxLifetime time.Duration
	QueryTimeout    time.Duration
}

// Row is one result record as an ordered column/value sequence. The shape
// is whatever the executed statement projected; there is no fixed schema.
type Row struct {
	Columns []string
	Values  []any
}

// MarshalJSON emits a JSON object with keys in projection order, so
// responses read like the statement's SELECT list.
func (r Row) MarshalJSON() ([]byte, error) {
	var buf bytes.Buffer
	buf.WriteByte('{')
	for i, column := range r.Columns {
		if i > 0 {
			buf.WriteByte(',')
		}
		key, err := json.Marshal(column)
		if err != nil {
			return nil, err
		}
		buf.Write(key)
		buf.WriteByte(':')
		var value any
		if i < len(r.Values) {
			value = r.Values[i]
		}
		encoded, err := json.Marshal(value)
		if err != nil {
			return nil, fmt.Errorf("marshal column %s: %w", column, err)
		}
		buf.Write(encoded)
	}
	buf.WriteByte('}')
	return buf.Bytes(), nil
}

type Gateway struct {
	db           *sql.DB
	queryTimeout time.Duration
}

func Open(ctx context.Context, cfg Config) (*Gateway, error) {
	if strings.TrimSpace(cfg.URL) == "" {
		return nil, fmt.Errorf("database url is required")
	}

	driver, dsn, err := driverForURL(cfg.URL)
	if err != nil {
		return nil, err
	}

	db, err := sql.Open(driver, dsn)
	if err != nil {
		return nil, fmt.Errorf("open database: %w", err)
	}

	if cfg.MaxOpenConns > 0 {
		db.SetMaxOpenConns(cfg.MaxOpenConns)
	}
	if cfg.MaxIdleConns > 0 {
		db.SetMaxIdleConns(cfg.MaxIdleConns)
	}
	if cfg.ConnMaxIdleTime > 0 {
		db.SetConnMaxIdleTime(cfg.ConnMaxIdleTime)
	}
	if cfg.ConnMaxLifetime > 0 {
		db.SetConnMaxLifetime(cfg.ConnMaxLifetime)
	}

	pingCtx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()
	if err := db.PingContext(pingCtx); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("ping database: %w", err)
	}

	return New(db, cfg.QueryTimeout), nil
}

// New wraps an existing pool. Used by Open and by tests that substitute a
// mocked *sql.DB.
func New(db *sql.DB, queryTimeout time.Duration) *Gateway {
	return &Gateway{db: db, queryTimeout: queryTimeout}
}

func (g *Gateway) Close() error {
	return g.db.Close()
}

// Ping runs a trivial statement to prove the connection is usable.
func (g *Gateway) Ping(ctx context.Context) error {
	ctx, cancel := g.boundedContext(ctx)
	defer cancel()
	var one int
	if err := g.db.QueryRowContext(ctx, "SELECT 1").Scan(&one); err != nil {
		return fmt.Errorf("database ping: %w", err)
	}
	return nil
}

// Execute runs sqlText and returns every row in result order.
func (g *Gateway) Execute(ctx context.Context, sqlText string) ([]Row, error) {
	ctx, cancel := g.boundedContext(ctx)
	defer cancel()

	rows, err := g.db.QueryContext(ctx, sqlText)
	if err != nil {
		return nil, fmt.Errorf("execute statement: %w", err)
	}
	defer func() { _ = rows.Close() }()

	columns, err := rows.Columns()
	if err != nil {
		return nil, fmt.Errorf("read result columns: %w", err)
	}

	result := make([]Row, 0)
	for rows.Next() {
		holders := make([]any, len(columns))
		for i := range holders {
			holders[i] = new(any)
		}
		if err := rows.Scan(holders...); err != nil {
			return nil, fmt.Errorf("scan result row: %w", err)
		}
		values := make([]any, len(columns))
		for i, holder := range holders {
			values[i] = normalizeValue(*(holder.(*any)))
		}
		result = append(result, Row{Columns: columns, Values: values})
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate result rows: %w", err)
	}
	return result, nil
}

func (g *Gateway) boundedContext(ctx context.Context) (context.Context, context.CancelFunc) {
	if g.queryTimeout <= 0 {
		return ctx, func() {}
	}
	return context.WithTimeout(ctx, g.queryTimeout)
}

// The MySQL driver reports text and decimal columns as []byte; surface
// them as strings so JSON output stays readable.
func normalizeValue(value any) any {
	switch typed := value.(type) {
	case []byte:
		return string(typed)
	default:
		return value
	}
}

func driverForURL(raw string) (driver string, dsn string, err error) {
	parsed, err := url.Parse(strings.TrimSpace(raw))
	if err != nil {
		return "", "", fmt.Errorf("parse database url: %w", err)
	}
	switch strings.ToLower(parsed.Scheme) {
	case "mysql":
		dsn, err := mysqlDSN(parsed)
		if err != nil {
			return "", "", err
		}
		return "mysql", dsn, nil
	case "postgres", "postgresql":
		return "pgx", raw, nil
	default:
		return "", "", fmt.Errorf("unsupported database url scheme %q", parsed.Scheme)
	}
}

// go-sql-driver does not accept URL-form DSNs, so mysql:// URLs are
// rewritten to its user:pass@tcp(host)/db form. parseTime is forced on so
// DATE/DATETIME columns scan as time.Time instead of raw bytes.
func mysqlDSN(parsed *url.URL) (string, error) {
	host := parsed.Host
	if host == "" {
		return "", fmt.Errorf("mysql url is missing a host")
	}
	if parsed.Port() == "" {
		host += ":3306"
	}

	var builder strings.Builder
	if parsed.User != nil {
		builder.WriteString(parsed.User.Username())
		if password, ok := parsed.User.Password(); ok {
			builder.WriteByte(':')
			builder.WriteString(password)
		}
		builder.WriteByte('@')
	}
	builder.WriteString("tcp(")
	builder.WriteString(host)
	builder.WriteString(")/")
	builder.WriteString(strings.TrimPrefix(parsed.Path, "/"))

	params := parsed.Query()
	if params.Get("parseTime") == "" {
		params.Set("parseTime", "true")
	}
	builder.WriteByte('?')
	builder.WriteString(params.Encode())
	return builder.String(), nil
}
