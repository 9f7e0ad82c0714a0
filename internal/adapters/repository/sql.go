package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"reflect"
	"strconv"
	"strings"

	_ "github.com/lib/pq"  // postgres driver
	_ "modernc.org/sqlite" // pure Go sqlite driver

	"github.com/okian/lineups/internal/domain/derive"
	"github.com/okian/lineups/internal/domain/interval"
	"github.com/okian/lineups/pkg/logger"
	"github.com/okian/lineups/pkg/metrics"
)

const (
	summaryTable     = "lineup_summary"
	progressionTable = "lineup_progression"

	sqlitePrefix = "sqlite:"
	timeLayout   = "2006-01-02T15:04:05.000000000Z"
)

type dialect int

const (
	dialectSQLite dialect = iota
	dialectPostgres
)

func (d dialect) placeholder(n int) string {
	if d == dialectPostgres {
		return "$" + strconv.Itoa(n)
	}
	return "?"
}

func (d dialect) String() string {
	if d == dialectPostgres {
		return "postgres"
	}
	return "sqlite"
}

// SQLStore writes reports to lineup_summary and lineup_progression tables.
type SQLStore struct {
	db               *sql.DB
	dialect          dialect
	summaryTable     string
	progressionTable string
	logger           logger.Logger
}

// Open connects to dsn and creates the tables if needed. Supported forms are
// "sqlite:<path>" and "postgres://..." (or "postgresql://...").
func Open(ctx context.Context, dsn string, opts ...SQLOption) (*SQLStore, error) {
	s := &SQLStore{
		summaryTable:     summaryTable,
		progressionTable: progressionTable,
		logger:           logger.Nop(),
	}
	for _, opt := range opts {
		opt(s)
	}

	var driver, source string
	switch {
	case strings.HasPrefix(dsn, sqlitePrefix):
		path := strings.TrimPrefix(dsn, sqlitePrefix)
		if path == "" {
			return nil, fmt.Errorf("%w: empty sqlite path", ErrUnsupportedDSN)
		}
		if path != ":memory:" {
			if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
				return nil, fmt.Errorf("failed to create database directory: %w", err)
			}
		}
		driver, source, s.dialect = "sqlite", path, dialectSQLite
	case strings.HasPrefix(dsn, "postgres://"), strings.HasPrefix(dsn, "postgresql://"):
		driver, source, s.dialect = "postgres", dsn, dialectPostgres
	default:
		return nil, fmt.Errorf("%w: %q", ErrUnsupportedDSN, redact(dsn))
	}

	db, err := sql.Open(driver, source)
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}
	if s.dialect == dialectSQLite {
		db.SetMaxOpenConns(1)
	}
	if err := db.PingContext(ctx); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("failed to ping database: %w", err)
	}
	s.db = db

	if err := s.migrate(ctx); err != nil {
		_ = db.Close()
		return nil, err
	}
	return s, nil
}

// Close closes the database connection.
func (s *SQLStore) Close() error {
	return s.db.Close()
}

func (s *SQLStore) migrate(ctx context.Context) error {
	for _, t := range []struct {
		name string
		cols []column
	}{
		{s.summaryTable, lineupColumns},
		{s.progressionTable, progressionColumns},
	} {
		defs := []string{"run_id TEXT NOT NULL", "generated_at TEXT NOT NULL", "row_num INTEGER NOT NULL"}
		for _, c := range t.cols {
			defs = append(defs, quote(c.name)+" "+sqlType(c.kind))
		}
		defs = append(defs, "PRIMARY KEY (run_id, row_num)")
		q := fmt.Sprintf("CREATE TABLE IF NOT EXISTS %s (%s)", t.name, strings.Join(defs, ", "))
		if _, err := s.db.ExecContext(ctx, q); err != nil {
			return fmt.Errorf("create table %s: %w", t.name, err)
		}
	}
	return nil
}

// Save inserts both tables of r in a single transaction.
func (s *SQLStore) Save(ctx context.Context, r Report) (err error) {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin: %w", err)
	}
	defer func() {
		if err != nil {
			_ = tx.Rollback()
		}
	}()

	at := r.GeneratedAt.UTC().Format(timeLayout)
	if err = s.insert(ctx, tx, s.summaryTable, lineupColumns, r.RunID, at, reflect.ValueOf(r.Lineups)); err != nil {
		return err
	}
	if err = s.insert(ctx, tx, s.progressionTable, progressionColumns, r.RunID, at, reflect.ValueOf(r.Progression)); err != nil {
		return err
	}
	if err = tx.Commit(); err != nil {
		return fmt.Errorf("commit: %w", err)
	}

	metrics.RecordRowsWritten(s.dialect.String(), len(r.Lineups)+len(r.Progression))
	s.logger.Info(ctx, "report stored",
		logger.String("run_id", r.RunID),
		logger.String("dialect", s.dialect.String()),
		logger.Int("lineups", len(r.Lineups)),
		logger.Int("progression", len(r.Progression)),
	)
	return nil
}

func (s *SQLStore) insert(ctx context.Context, tx *sql.Tx, table string, cols []column, runID, at string, rows reflect.Value) error {
	names := []string{"run_id", "generated_at", "row_num"}
	for _, c := range cols {
		names = append(names, quote(c.name))
	}
	marks := make([]string, len(names))
	for i := range marks {
		marks[i] = s.dialect.placeholder(i + 1)
	}
	q := fmt.Sprintf("INSERT INTO %s (%s) VALUES (%s)", table, strings.Join(names, ", "), strings.Join(marks, ", "))

	stmt, err := tx.PrepareContext(ctx, q)
	if err != nil {
		return fmt.Errorf("prepare insert %s: %w", table, err)
	}
	defer stmt.Close()

	for i := 0; i < rows.Len(); i++ {
		row := rows.Index(i)
		args := make([]any, 0, len(names))
		args = append(args, runID, at, i)
		for _, c := range cols {
			args = append(args, row.FieldByIndex(c.index).Interface())
		}
		if _, err := stmt.ExecContext(ctx, args...); err != nil {
			return fmt.Errorf("insert %s row %d: %w", table, i, err)
		}
	}
	return nil
}

// LatestRunID returns the most recently generated run id, or ErrNoReport.
func (s *SQLStore) LatestRunID(ctx context.Context) (string, error) {
	q := fmt.Sprintf("SELECT run_id FROM %s ORDER BY generated_at DESC LIMIT 1", s.summaryTable)
	var id string
	err := s.db.QueryRowContext(ctx, q).Scan(&id)
	if errors.Is(err, sql.ErrNoRows) {
		return "", ErrNoReport
	}
	if err != nil {
		return "", fmt.Errorf("latest run: %w", err)
	}
	return id, nil
}

// Lineups reads back the lineup table of one run in its stored order.
func (s *SQLStore) Lineups(ctx context.Context, runID string) ([]derive.Row, error) {
	var out []derive.Row
	err := s.scan(ctx, s.summaryTable, lineupColumns, runID, func(dest func(reflect.Value) []any) []any {
		out = append(out, derive.Row{})
		return dest(reflect.ValueOf(&out[len(out)-1]).Elem())
	})
	return out, err
}

// Progression reads back the progression table of one run in its stored order.
func (s *SQLStore) Progression(ctx context.Context, runID string) ([]interval.Row, error) {
	var out []interval.Row
	err := s.scan(ctx, s.progressionTable, progressionColumns, runID, func(dest func(reflect.Value) []any) []any {
		out = append(out, interval.Row{})
		return dest(reflect.ValueOf(&out[len(out)-1]).Elem())
	})
	return out, err
}

func (s *SQLStore) scan(ctx context.Context, table string, cols []column, runID string, next func(func(reflect.Value) []any) []any) error {
	names := make([]string, len(cols))
	for i, c := range cols {
		names[i] = quote(c.name)
	}
	q := fmt.Sprintf("SELECT %s FROM %s WHERE run_id = %s ORDER BY row_num",
		strings.Join(names, ", "), table, s.dialect.placeholder(1))

	rows, err := s.db.QueryContext(ctx, q, runID)
	if err != nil {
		return fmt.Errorf("query %s: %w", table, err)
	}
	defer rows.Close()

	dest := func(v reflect.Value) []any {
		ptrs := make([]any, len(cols))
		for i, c := range cols {
			ptrs[i] = v.FieldByIndex(c.index).Addr().Interface()
		}
		return ptrs
	}
	for rows.Next() {
		if err := rows.Scan(next(dest)...); err != nil {
			return fmt.Errorf("scan %s: %w", table, err)
		}
	}
	return rows.Err()
}

func quote(name string) string {
	return `"` + strings.ReplaceAll(name, `"`, `""`) + `"`
}

func sqlType(k reflect.Kind) string {
	switch k {
	case reflect.Int:
		return "INTEGER"
	case reflect.Float64:
		return "DOUBLE PRECISION"
	default:
		return "TEXT"
	}
}

// redact drops everything after the scheme so credentials never reach logs.
func redact(dsn string) string {
	if i := strings.Index(dsn, "://"); i >= 0 {
		return dsn[:i+3] + "..."
	}
	if i := strings.Index(dsn, ":"); i >= 0 {
		return dsn[:i+1] + "..."
	}
	return dsn
}
