package database

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strconv"
	"strings"

	"disasterresponse/internal/table"
)

// ErrTableNotFound is returned when reading a table that does not exist.
var ErrTableNotFound = errors.New("table not found")

// Store writes and reads whole tables.
type Store struct {
	DB      *sql.DB
	Dialect Dialect
}

func NewStore(db *sql.DB, dialect Dialect) *Store {
	return &Store{DB: db, Dialect: dialect}
}

// OpenStore opens the database described by cfg.
func OpenStore(cfg Config) (*Store, error) {
	db, err := Open(cfg)
	if err != nil {
		return nil, err
	}
	return NewStore(db, DialectFor(cfg.Driver)), nil
}

func (s *Store) Close() error {
	return s.DB.Close()
}

// ReplaceTable drops the named table if present, recreates it from t's columns
// and inserts every row, all in one transaction. On error the previous table
// is left in place.
func (s *Store) ReplaceTable(ctx context.Context, name string, t *table.Table) (err error) {
	tx, err := s.DB.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin: %w", err)
	}
	defer func() {
		if err != nil {
			_ = tx.Rollback()
		}
	}()

	if _, err = tx.ExecContext(ctx, `DROP TABLE IF EXISTS `+QuoteIdent(name)); err != nil {
		return fmt.Errorf("drop table %s: %w", name, err)
	}
	if _, err = tx.ExecContext(ctx, s.createSQL(name, t.Columns())); err != nil {
		return fmt.Errorf("create table %s: %w", name, err)
	}

	stmt, err := tx.PrepareContext(ctx, s.insertSQL(name, t.Columns()))
	if err != nil {
		return fmt.Errorf("prepare insert: %w", err)
	}
	defer stmt.Close()

	cols := t.Columns()
	args := make([]any, len(cols))
	for i := 0; i < t.Len(); i++ {
		row := t.Row(i)
		for j, c := range cols {
			args[j], err = bindValue(c.Kind, row[j])
			if err != nil {
				return fmt.Errorf("row %d column %q: %w", i, c.Name, err)
			}
		}
		if _, err = stmt.ExecContext(ctx, args...); err != nil {
			return fmt.Errorf("insert row %d: %w", i, err)
		}
	}

	if err = tx.Commit(); err != nil {
		return fmt.Errorf("commit: %w", err)
	}
	return nil
}

func (s *Store) createSQL(name string, cols []table.Column) string {
	defs := make([]string, len(cols))
	for i, c := range cols {
		defs[i] = QuoteIdent(c.Name) + " " + s.Dialect.ColumnType(c.Kind)
	}
	return `CREATE TABLE ` + QuoteIdent(name) + ` (` + strings.Join(defs, ", ") + `)`
}

func (s *Store) insertSQL(name string, cols []table.Column) string {
	names := make([]string, len(cols))
	for i, c := range cols {
		names[i] = QuoteIdent(c.Name)
	}
	return `INSERT INTO ` + QuoteIdent(name) + ` (` + strings.Join(names, ", ") + `) VALUES (` +
		s.Dialect.Placeholders(1, len(cols)) + `)`
}

// bindValue converts a cell to a driver argument. Null cells bind as NULL.
func bindValue(k table.Kind, cell string) (any, error) {
	if cell == "" {
		return nil, nil
	}
	if k == table.KindInteger {
		return strconv.ParseInt(cell, 10, 64)
	}
	return cell, nil
}

// TableExists reports whether the named table exists.
func (s *Store) TableExists(ctx context.Context, name string) (bool, error) {
	query := `SELECT COUNT(*) FROM sqlite_master WHERE type = 'table' AND name = ?`
	if s.Dialect.Name == DriverPostgres {
		query = `SELECT COUNT(*) FROM information_schema.tables WHERE table_schema = current_schema() AND table_name = $1`
	}

	var n int
	if err := s.DB.QueryRowContext(ctx, query, name).Scan(&n); err != nil {
		return false, fmt.Errorf("table exists: %w", err)
	}
	return n > 0, nil
}

// ReadTable loads the whole named table. Column kinds come from the declared
// column types and NULL reads back as the empty cell.
func (s *Store) ReadTable(ctx context.Context, name string) (*table.Table, error) {
	ok, err := s.TableExists(ctx, name)
	if err != nil {
		return nil, err
	}
	if !ok {
		return nil, fmt.Errorf("%w: %s", ErrTableNotFound, name)
	}

	rows, err := s.DB.QueryContext(ctx, `SELECT * FROM `+QuoteIdent(name)+s.Dialect.ReadOrder)
	if err != nil {
		return nil, fmt.Errorf("read %s: %w", name, err)
	}
	defer rows.Close()

	types, err := rows.ColumnTypes()
	if err != nil {
		return nil, fmt.Errorf("column types: %w", err)
	}
	cols := make([]table.Column, len(types))
	for i, ct := range types {
		cols[i] = table.Column{Name: ct.Name(), Kind: kindOf(ct.DatabaseTypeName())}
	}

	var out [][]string
	cells := make([]sql.NullString, len(cols))
	dest := make([]any, len(cols))
	for i := range cells {
		dest[i] = &cells[i]
	}
	for rows.Next() {
		if err := rows.Scan(dest...); err != nil {
			return nil, fmt.Errorf("scan %s: %w", name, err)
		}
		row := make([]string, len(cells))
		for i, c := range cells {
			row[i] = c.String
		}
		out = append(out, row)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("rows err: %w", err)
	}

	return table.New(cols, out)
}
