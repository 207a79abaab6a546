package db

import (
	"context"
	"database/sql"
	"database/sql/driver"
	"errors"
	"fmt"
	"math"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/charmbracelet/log"

	"github.com/thesavant42/renewables-explorer/internal/models"

	sqlite "modernc.org/sqlite"
)

func init() {
	// SQLite's LOWER only folds ASCII; fold() lowers accented letters too.
	_ = sqlite.RegisterDeterministicScalarFunction("fold", 1, foldFunc)
	_ = sqlite.RegisterDeterministicScalarFunction("as_year", 1, asYearFunc)
}

func foldFunc(_ *sqlite.FunctionContext, args []driver.Value) (driver.Value, error) {
	switch v := args[0].(type) {
	case nil:
		return nil, nil
	case string:
		return strings.ToLower(v), nil
	case []byte:
		return strings.ToLower(string(v)), nil
	default:
		return strings.ToLower(fmt.Sprint(v)), nil
	}
}

// asYearFunc returns NULL for cells that hold no finite number, so text such
// as "n/a" fails every year bound instead of casting to 0.
func asYearFunc(_ *sqlite.FunctionContext, args []driver.Value) (driver.Value, error) {
	switch v := args[0].(type) {
	case int64:
		return v, nil
	case float64:
		if math.IsNaN(v) || math.IsInf(v, 0) {
			return nil, nil
		}
		return int64(v), nil
	case string:
		return yearFromText(v), nil
	case []byte:
		return yearFromText(string(v)), nil
	}
	return nil, nil
}

func yearFromText(s string) driver.Value {
	s = strings.TrimSpace(s)
	if n, err := strconv.ParseInt(s, 10, 64); err == nil {
		return n
	}
	if f, ok := parseReal(s); ok {
		return int64(f)
	}
	return nil
}

// ErrUnknownSource is returned when a source has not been imported.
var ErrUnknownSource = errors.New("unknown source")

const tablePrefix = "data_"

// Store wraps the SQLite database holding the imported sources
type Store struct {
	conn   *sql.DB
	logger *log.Logger
}

// Open creates a database connection and initializes the schema.
// logger may be nil.
func Open(dbPath string, logger *log.Logger) (*Store, error) {
	dir := filepath.Dir(dbPath)
	if dir != "." && dir != "" {
		if err := os.MkdirAll(dir, 0755); err != nil {
			return nil, fmt.Errorf("failed to create database directory: %w", err)
		}
	}

	conn, err := sql.Open("sqlite", dbPath)
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}

	if _, err := conn.Exec(createSourcesTable); err != nil {
		conn.Close()
		return nil, fmt.Errorf("failed to create sources schema: %w", err)
	}

	return &Store{conn: conn, logger: logger}, nil
}

// Close closes the database connection
func (s *Store) Close() error {
	return s.conn.Close()
}

// ListSources returns the imported source names, sorted
func (s *Store) ListSources(ctx context.Context) ([]string, error) {
	rows, err := s.conn.QueryContext(ctx, selectSourceNames)
	if err != nil {
		return nil, fmt.Errorf("failed to query sources: %w", err)
	}
	defer rows.Close()

	sources := []string{}
	for rows.Next() {
		var name string
		if err := rows.Scan(&name); err != nil {
			return nil, fmt.Errorf("failed to scan source: %w", err)
		}
		sources = append(sources, name)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to read sources: %w", err)
	}
	return sources, nil
}

// QueryOptions filters the rows returned by Query.
// Nil years and blank strings are ignored.
type QueryOptions struct {
	Limit     int
	StartYear *int
	EndYear   *int
	Country   string
	Query     string
}

// Query returns the rows of a source in import order
func (s *Store) Query(ctx context.Context, source string, opts QueryOptions) (models.Records, error) {
	table, err := s.tableFor(ctx, source)
	if err != nil {
		return nil, err
	}

	columns, err := s.columns(ctx, table)
	if err != nil {
		return nil, err
	}

	query, args := buildQuery(table, columns, opts)
	s.debug("Query", "source", source, "sql", query, "args", args)

	rows, err := s.conn.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to query %s: %w", source, err)
	}
	defer rows.Close()

	return scanRecords(rows)
}

// DropSource removes a source and its rows. Unknown sources are not an error.
func (s *Store) DropSource(ctx context.Context, source string) error {
	table, err := s.tableFor(ctx, source)
	if errors.Is(err, ErrUnknownSource) {
		return nil
	}
	if err != nil {
		return err
	}

	tx, err := s.conn.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback()

	if _, err := tx.ExecContext(ctx, "DROP TABLE IF EXISTS "+quoteIdent(table)); err != nil {
		return fmt.Errorf("failed to drop table for %s: %w", source, err)
	}
	if _, err := tx.ExecContext(ctx, deleteSource, source); err != nil {
		return fmt.Errorf("failed to delete source %s: %w", source, err)
	}
	if err := tx.Commit(); err != nil {
		return fmt.Errorf("failed to commit transaction: %w", err)
	}
	s.info("Dropped source", "source", source)
	return nil
}

// Import replaces the rows of a source with the contents of t and returns
// the number of rows written.
func (s *Store) Import(ctx context.Context, source string, t *Table) (int, error) {
	if strings.TrimSpace(source) == "" {
		return 0, errors.New("source name is required")
	}
	if len(t.Columns) == 0 {
		return 0, errors.New("table has no columns")
	}
	table := tablePrefix + source

	tx, err := s.conn.BeginTx(ctx, nil)
	if err != nil {
		return 0, fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback()

	if _, err := tx.ExecContext(ctx, "DROP TABLE IF EXISTS "+quoteIdent(table)); err != nil {
		return 0, fmt.Errorf("failed to drop previous table: %w", err)
	}
	if _, err := tx.ExecContext(ctx, createTableSQL(table, t)); err != nil {
		return 0, fmt.Errorf("failed to create table for %s: %w", source, err)
	}

	stmt, err := tx.PrepareContext(ctx, insertSQL(table, t.Columns))
	if err != nil {
		return 0, fmt.Errorf("failed to prepare statement: %w", err)
	}
	defer stmt.Close()

	for i, row := range t.Rows {
		if _, err := stmt.ExecContext(ctx, row...); err != nil {
			return 0, fmt.Errorf("failed to insert row %d: %w", i+1, err)
		}
	}

	if _, err := tx.ExecContext(ctx, upsertSource, source, table, len(t.Rows)); err != nil {
		return 0, fmt.Errorf("failed to register source %s: %w", source, err)
	}

	if err := tx.Commit(); err != nil {
		return 0, fmt.Errorf("failed to commit transaction: %w", err)
	}

	s.info("Imported source", "source", source, "rows", len(t.Rows), "columns", len(t.Columns))
	return len(t.Rows), nil
}

func (s *Store) tableFor(ctx context.Context, source string) (string, error) {
	var table string
	err := s.conn.QueryRowContext(ctx, selectSourceTable, source).Scan(&table)
	if err == sql.ErrNoRows {
		return "", fmt.Errorf("%w: %s", ErrUnknownSource, source)
	}
	if err != nil {
		return "", fmt.Errorf("failed to look up source %s: %w", source, err)
	}
	return table, nil
}

func (s *Store) columns(ctx context.Context, table string) ([]string, error) {
	rows, err := s.conn.QueryContext(ctx, "PRAGMA table_info("+quoteIdent(table)+")")
	if err != nil {
		return nil, fmt.Errorf("failed to read columns of %s: %w", table, err)
	}
	defer rows.Close()

	var columns []string
	for rows.Next() {
		var (
			cid     int
			name    string
			ctype   string
			notNull int
			dflt    any
			pk      int
		)
		if err := rows.Scan(&cid, &name, &ctype, &notNull, &dflt, &pk); err != nil {
			return nil, fmt.Errorf("failed to scan column: %w", err)
		}
		columns = append(columns, name)
	}
	return columns, rows.Err()
}

// buildQuery assembles the SELECT for a source table. Filters whose column is
// absent from the table are skipped.
func buildQuery(table string, columns []string, opts QueryOptions) (string, []any) {
	has := make(map[string]bool, len(columns))
	for _, c := range columns {
		has[c] = true
	}

	var where []string
	var args []any

	if has[yearColumn] {
		year := "as_year(" + quoteIdent(yearColumn) + ")"
		if opts.StartYear != nil {
			where = append(where, year+" >= ?")
			args = append(args, *opts.StartYear)
		}
		if opts.EndYear != nil {
			where = append(where, year+" <= ?")
			args = append(args, *opts.EndYear)
		}
	}

	if country := strings.TrimSpace(opts.Country); country != "" && has[countryColumn] {
		where = append(where, "fold("+quoteIdent(countryColumn)+") LIKE ?")
		args = append(args, likePattern(country))
	}

	if q := strings.TrimSpace(opts.Query); q != "" {
		var ors []string
		for _, c := range searchColumns {
			if has[c] {
				ors = append(ors, "fold("+quoteIdent(c)+") LIKE ?")
				args = append(args, likePattern(q))
			}
		}
		if len(ors) > 0 {
			where = append(where, "("+strings.Join(ors, " OR ")+")")
		}
	}

	var b strings.Builder
	b.WriteString("SELECT * FROM ")
	b.WriteString(quoteIdent(table))
	if len(where) > 0 {
		b.WriteString(" WHERE ")
		b.WriteString(strings.Join(where, " AND "))
	}
	b.WriteString(" ORDER BY rowid")
	if opts.Limit > 0 {
		b.WriteString(" LIMIT ?")
		args = append(args, opts.Limit)
	}
	return b.String(), args
}

func scanRecords(rows *sql.Rows) (models.Records, error) {
	columns, err := rows.Columns()
	if err != nil {
		return nil, fmt.Errorf("failed to read result columns: %w", err)
	}

	records := models.Records{}
	values := make([]any, len(columns))
	ptrs := make([]any, len(columns))
	for i := range values {
		ptrs[i] = &values[i]
	}

	for rows.Next() {
		if err := rows.Scan(ptrs...); err != nil {
			return nil, fmt.Errorf("failed to scan row: %w", err)
		}
		var r models.Record
		for i, col := range columns {
			v := values[i]
			if b, ok := v.([]byte); ok {
				v = string(b)
			}
			r.Set(col, v)
		}
		records = append(records, r)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to read rows: %w", err)
	}
	return records, nil
}

func createTableSQL(table string, t *Table) string {
	defs := make([]string, len(t.Columns))
	for i, c := range t.Columns {
		defs[i] = quoteIdent(c) + " " + string(t.Types[i])
	}
	return "CREATE TABLE " + quoteIdent(table) + " (" + strings.Join(defs, ", ") + ")"
}

func insertSQL(table string, columns []string) string {
	quoted := make([]string, len(columns))
	marks := make([]string, len(columns))
	for i, c := range columns {
		quoted[i] = quoteIdent(c)
		marks[i] = "?"
	}
	return "INSERT INTO " + quoteIdent(table) + " (" + strings.Join(quoted, ", ") + ") VALUES (" + strings.Join(marks, ", ") + ")"
}

func quoteIdent(name string) string {
	return `"` + strings.ReplaceAll(name, `"`, `""`) + `"`
}

func likePattern(s string) string {
	return "%" + strings.ToLower(s) + "%"
}

func (s *Store) info(msg string, kv ...any) {
	if s.logger != nil {
		s.logger.Info(msg, kv...)
	}
}

func (s *Store) debug(msg string, kv ...any) {
	if s.logger != nil {
		s.logger.Debug(msg, kv...)
	}
}
