package messages

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"slices"
	"strconv"
	"strings"

	"disasterresponse/pkg/database"
	"disasterresponse/pkg/etl"
	"disasterresponse/pkg/models"
)

// ErrUnknownCategory is returned when a filter names a column that is not a
// category of the table.
var ErrUnknownCategory = errors.New("unknown category")

const (
	DefaultLimit = 20
	MaxLimit     = 100
)

// Repo reads messages from the table written by process-data.
type Repo struct {
	Store *database.Store
	Table string
}

type ListQuery struct {
	Q        string // substring of message, case-insensitive
	Genre    string
	Category string // only rows labelled 1 in this category
	Limit    int
	Offset   int
}

// Normalize applies the default and maximum page size.
func (q *ListQuery) Normalize() {
	if q.Limit <= 0 {
		q.Limit = DefaultLimit
	}
	if q.Limit > MaxLimit {
		q.Limit = MaxLimit
	}
	if q.Offset < 0 {
		q.Offset = 0
	}
}

func NewRepo(store *database.Store, tableName string) *Repo {
	if tableName == "" {
		tableName = etl.DefaultTableName
	}
	return &Repo{Store: store, Table: tableName}
}

// Categories lists the category columns in table order: every column except
// the message columns.
func (r *Repo) Categories(ctx context.Context) ([]string, error) {
	cols, err := r.columns(ctx)
	if err != nil {
		return nil, err
	}
	out := make([]string, 0, len(cols))
	for _, c := range cols {
		if !slices.Contains(etl.MessageColumns, c) {
			out = append(out, c)
		}
	}
	return out, nil
}

func (r *Repo) columns(ctx context.Context) ([]string, error) {
	ok, err := r.Store.TableExists(ctx, r.Table)
	if err != nil {
		return nil, err
	}
	if !ok {
		return nil, fmt.Errorf("%w: %s", database.ErrTableNotFound, r.Table)
	}

	rows, err := r.Store.DB.QueryContext(ctx, `SELECT * FROM `+database.QuoteIdent(r.Table)+` WHERE 1 = 0`)
	if err != nil {
		return nil, fmt.Errorf("columns query: %w", err)
	}
	defer rows.Close()
	return rows.Columns()
}

func (r *Repo) GetByID(ctx context.Context, id int64) (*models.DisasterMessage, error) {
	cats, err := r.Categories(ctx)
	if err != nil {
		return nil, err
	}

	query := `SELECT * FROM ` + database.QuoteIdent(r.Table) +
		` WHERE ` + database.QuoteIdent(etl.KeyColumn) + ` = ` + r.Store.Dialect.Placeholder(1) +
		r.Store.Dialect.ReadOrder + ` LIMIT 1`
	rows, err := r.Store.DB.QueryContext(ctx, query, id)
	if err != nil {
		return nil, fmt.Errorf("get query: %w", err)
	}
	defer rows.Close()

	out, err := scanMessages(rows, cats)
	if err != nil {
		return nil, err
	}
	if len(out) == 0 {
		return nil, nil
	}
	return &out[0], nil
}

func (r *Repo) Count(ctx context.Context, q ListQuery) (int, error) {
	cats, err := r.Categories(ctx)
	if err != nil {
		return 0, err
	}
	where, args, err := r.buildWhere(q, cats)
	if err != nil {
		return 0, err
	}

	var total int
	row := r.Store.DB.QueryRowContext(ctx, `SELECT COUNT(*) FROM `+database.QuoteIdent(r.Table)+where, args...)
	if err := row.Scan(&total); err != nil {
		return 0, fmt.Errorf("count scan: %w", err)
	}
	return total, nil
}

func (r *Repo) List(ctx context.Context, q ListQuery) ([]models.DisasterMessage, error) {
	q.Normalize()
	cats, err := r.Categories(ctx)
	if err != nil {
		return nil, err
	}
	where, args, err := r.buildWhere(q, cats)
	if err != nil {
		return nil, err
	}

	n := len(args)
	query := `SELECT * FROM ` + database.QuoteIdent(r.Table) + where +
		` ORDER BY ` + database.QuoteIdent(etl.KeyColumn) +
		` LIMIT ` + r.Store.Dialect.Placeholder(n+1) + ` OFFSET ` + r.Store.Dialect.Placeholder(n+2)
	args = append(args, q.Limit, q.Offset)

	rows, err := r.Store.DB.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("list query: %w", err)
	}
	defer rows.Close()
	return scanMessages(rows, cats)
}

// buildWhere returns the WHERE clause, with its leading space, and its args.
func (r *Repo) buildWhere(q ListQuery, cats []string) (string, []any, error) {
	var where []string
	var args []any
	next := func(v any) string {
		args = append(args, v)
		return r.Store.Dialect.Placeholder(len(args))
	}

	if kw := strings.TrimSpace(q.Q); kw != "" {
		where = append(where, `LOWER("message") LIKE `+next("%"+escapeLike(strings.ToLower(kw))+"%")+` ESCAPE '\'`)
	}
	if g := strings.TrimSpace(q.Genre); g != "" {
		where = append(where, `LOWER("genre") = `+next(strings.ToLower(g)))
	}
	if c := strings.TrimSpace(q.Category); c != "" {
		if !slices.Contains(cats, c) {
			return "", nil, fmt.Errorf("%w: %s", ErrUnknownCategory, c)
		}
		where = append(where, database.QuoteIdent(c)+` = 1`)
	}

	if len(where) == 0 {
		return "", nil, nil
	}
	return " WHERE " + strings.Join(where, " AND "), args, nil
}

var likeEscaper = strings.NewReplacer(`\`, `\\`, `%`, `\%`, `_`, `\_`)

// escapeLike makes s match literally inside a LIKE pattern with ESCAPE '\'.
func escapeLike(s string) string {
	return likeEscaper.Replace(s)
}

// GenreCounts counts rows per genre, ordered by genre.
func (r *Repo) GenreCounts(ctx context.Context) ([]models.GenreCount, error) {
	if _, err := r.columns(ctx); err != nil {
		return nil, err
	}

	rows, err := r.Store.DB.QueryContext(ctx,
		`SELECT "genre", COUNT(*) FROM `+database.QuoteIdent(r.Table)+` GROUP BY "genre" ORDER BY "genre"`)
	if err != nil {
		return nil, fmt.Errorf("genre query: %w", err)
	}
	defer rows.Close()

	out := []models.GenreCount{}
	for rows.Next() {
		var (
			genre sql.NullString
			n     int
		)
		if err := rows.Scan(&genre, &n); err != nil {
			return nil, fmt.Errorf("genre scan: %w", err)
		}
		out = append(out, models.GenreCount{Genre: genre.String, Count: n})
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("rows err: %w", err)
	}
	return out, nil
}

// CategoryCounts counts the positive labels of each category, in table order.
func (r *Repo) CategoryCounts(ctx context.Context) ([]models.CategoryCount, error) {
	cats, err := r.Categories(ctx)
	if err != nil {
		return nil, err
	}
	out := make([]models.CategoryCount, len(cats))
	if len(cats) == 0 {
		return out, nil
	}

	sums := make([]string, len(cats))
	for i, c := range cats {
		sums[i] = `SUM(` + database.QuoteIdent(c) + `)`
	}
	row := r.Store.DB.QueryRowContext(ctx, `SELECT `+strings.Join(sums, ", ")+` FROM `+database.QuoteIdent(r.Table))

	vals := make([]sql.NullInt64, len(cats))
	dest := make([]any, len(cats))
	for i := range vals {
		dest[i] = &vals[i]
	}
	if err := row.Scan(dest...); err != nil {
		return nil, fmt.Errorf("category scan: %w", err)
	}
	for i, c := range cats {
		out[i] = models.CategoryCount{Category: c, Count: int(vals[i].Int64)}
	}
	return out, nil
}

func scanMessages(rows *sql.Rows, cats []string) ([]models.DisasterMessage, error) {
	cols, err := rows.Columns()
	if err != nil {
		return nil, fmt.Errorf("columns: %w", err)
	}
	cells := make([]sql.NullString, len(cols))
	dest := make([]any, len(cols))
	for i := range cells {
		dest[i] = &cells[i]
	}

	out := []models.DisasterMessage{}
	for rows.Next() {
		if err := rows.Scan(dest...); err != nil {
			return nil, fmt.Errorf("scan: %w", err)
		}

		m := models.DisasterMessage{Categories: make(map[string]int, len(cats))}
		for i, name := range cols {
			v := cells[i].String
			switch {
			case name == etl.KeyColumn:
				m.ID, _ = strconv.ParseInt(v, 10, 64)
			case name == "message":
				m.Message = v
			case name == "original":
				m.Original = v
			case name == "genre":
				m.Genre = v
			case slices.Contains(cats, name):
				m.Categories[name], _ = strconv.Atoi(v)
			}
		}
		out = append(out, m)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("rows err: %w", err)
	}
	return out, nil
}
