package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"sort"
	"strings"

	"github.com/google/uuid"
	"github.com/johan-st/shopdash/internal/shop"
)

// ErrNotFound is returned when a record does not exist.
var ErrNotFound = errors.New("record not found")

// Table describes the SQL side of an entity.
type Table struct {
	Name string
	// Columns are the writable columns; id and timestamps are managed here.
	Columns []string
	// Search are the columns matched by PageQuery.Search.
	Search  []string
	OrderBy string
}

func (t Table) writable(col string) bool {
	for _, c := range t.Columns {
		if c == col {
			return true
		}
	}
	return false
}

// PageQuery selects one page of a collection.
type PageQuery struct {
	Page   int
	Limit  int
	Search string
}

// Normalize clamps page and limit to usable values.
func (q PageQuery) Normalize() PageQuery {
	if q.Page < 1 {
		q.Page = 1
	}
	if q.Limit <= 0 {
		q.Limit = 10
	}
	return q
}

// Page is one page of records and the size of the whole matching set.
type Page[T any] struct {
	Items []T
	Total int
}

// Repo reads and writes one table.
type Repo[T any] struct {
	conn  *Connection
	table Table
}

func newRepo[T any](conn *Connection, table Table) *Repo[T] {
	return &Repo[T]{conn: conn, table: table}
}

// Table returns the table description.
func (r *Repo[T]) Table() Table {
	return r.table
}

// All returns every record, including deactivated ones.
func (r *Repo[T]) All(ctx context.Context) ([]T, error) {
	items := []T{}
	q := fmt.Sprintf("SELECT * FROM %s ORDER BY %s", quoteIdentifier(r.table.Name), r.table.OrderBy)
	if err := r.conn.Select(ctx, &items, q); err != nil {
		return nil, fmt.Errorf("list %s: %w", r.table.Name, err)
	}
	return items, nil
}

// Page returns the records matching q.Search on page q.Page.
func (r *Repo[T]) Page(ctx context.Context, q PageQuery) (Page[T], error) {
	q = q.Normalize()
	where, args := r.searchClause(q.Search)
	name := quoteIdentifier(r.table.Name)

	var total int
	countQ := fmt.Sprintf("SELECT COUNT(*) FROM %s%s", name, where)
	if err := r.conn.Get(ctx, &total, countQ, args...); err != nil {
		return Page[T]{}, fmt.Errorf("count %s: %w", r.table.Name, err)
	}

	items := []T{}
	selectQ := fmt.Sprintf("SELECT * FROM %s%s ORDER BY %s LIMIT ? OFFSET ?", name, where, r.table.OrderBy)
	args = append(args, q.Limit, (q.Page-1)*q.Limit)
	if err := r.conn.Select(ctx, &items, selectQ, args...); err != nil {
		return Page[T]{}, fmt.Errorf("page %s: %w", r.table.Name, err)
	}
	return Page[T]{Items: items, Total: total}, nil
}

// searchClause builds a case-insensitive LIKE filter over the search
// columns, folding case the same way client-side filtering does.
func (r *Repo[T]) searchClause(search string) (string, []any) {
	search = strings.TrimSpace(search)
	if search == "" || len(r.table.Search) == 0 {
		return "", nil
	}
	pattern := "%" + escapeLike(strings.ToLower(search)) + "%"

	parts := make([]string, len(r.table.Search))
	args := make([]any, len(r.table.Search))
	for i, col := range r.table.Search {
		parts[i] = fmt.Sprintf("fold(COALESCE(CAST(%s AS TEXT), '')) LIKE ? ESCAPE '\\'", quoteIdentifier(col))
		args[i] = pattern
	}
	return " WHERE (" + strings.Join(parts, " OR ") + ")", args
}

// Count returns the number of records.
func (r *Repo[T]) Count(ctx context.Context) (int, error) {
	var n int
	q := fmt.Sprintf("SELECT COUNT(*) FROM %s", quoteIdentifier(r.table.Name))
	if err := r.conn.Get(ctx, &n, q); err != nil {
		return 0, fmt.Errorf("count %s: %w", r.table.Name, err)
	}
	return n, nil
}

// Get returns the record with id.
func (r *Repo[T]) Get(ctx context.Context, id string) (T, error) {
	var item T
	q := fmt.Sprintf("SELECT * FROM %s WHERE id = ?", quoteIdentifier(r.table.Name))
	if err := r.conn.Get(ctx, &item, q, id); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return item, fmt.Errorf("%s %s: %w", r.table.Name, id, ErrNotFound)
		}
		return item, fmt.Errorf("get %s %s: %w", r.table.Name, id, err)
	}
	return item, nil
}

// Create inserts a record built from values and returns its id.
func (r *Repo[T]) Create(ctx context.Context, values map[string]any) (string, error) {
	cols, err := r.columns(values)
	if err != nil {
		return "", err
	}

	id := uuid.NewString()
	now := shop.Now()
	arg := map[string]any{"id": id, "delete_flag": false, "created_at": now, "updated_at": now}
	for _, c := range cols {
		arg[c] = values[c]
	}

	all := append([]string{"id", "delete_flag", "created_at", "updated_at"}, cols...)
	quoted := make([]string, len(all))
	named := make([]string, len(all))
	for i, c := range all {
		quoted[i] = quoteIdentifier(c)
		named[i] = ":" + c
	}
	q := fmt.Sprintf("INSERT INTO %s (%s) VALUES (%s)",
		quoteIdentifier(r.table.Name), strings.Join(quoted, ", "), strings.Join(named, ", "))

	if _, err := r.conn.NamedExec(ctx, q, arg); err != nil {
		return "", fmt.Errorf("create %s: %w", r.table.Name, err)
	}
	return id, nil
}

// Update sets the given columns of record id.
func (r *Repo[T]) Update(ctx context.Context, id string, values map[string]any) error {
	cols, err := r.columns(values)
	if err != nil {
		return err
	}
	if len(cols) == 0 {
		return fmt.Errorf("update %s: no values", r.table.Name)
	}

	arg := map[string]any{"id": id, "updated_at": shop.Now()}
	sets := make([]string, 0, len(cols)+1)
	for _, c := range cols {
		sets = append(sets, fmt.Sprintf("%s = :%s", quoteIdentifier(c), c))
		arg[c] = values[c]
	}
	sets = append(sets, "updated_at = :updated_at")

	q := fmt.Sprintf("UPDATE %s SET %s WHERE id = :id", quoteIdentifier(r.table.Name), strings.Join(sets, ", "))
	res, err := r.conn.NamedExec(ctx, q, arg)
	if err != nil {
		return fmt.Errorf("update %s: %w", r.table.Name, err)
	}
	return r.affected(res, id)
}

// Delete removes record id.
func (r *Repo[T]) Delete(ctx context.Context, id string) error {
	q := fmt.Sprintf("DELETE FROM %s WHERE id = ?", quoteIdentifier(r.table.Name))
	res, err := r.conn.Exec(ctx, q, id)
	if err != nil {
		return fmt.Errorf("delete %s: %w", r.table.Name, err)
	}
	return r.affected(res, id)
}

// SetActive activates or deactivates record id through its delete flag.
func (r *Repo[T]) SetActive(ctx context.Context, id string, active bool) error {
	q := fmt.Sprintf("UPDATE %s SET delete_flag = ?, updated_at = ? WHERE id = ?", quoteIdentifier(r.table.Name))
	res, err := r.conn.Exec(ctx, q, !active, shop.Now(), id)
	if err != nil {
		return fmt.Errorf("set active %s: %w", r.table.Name, err)
	}
	return r.affected(res, id)
}

// DeactivateAll deactivates every active record and returns how many changed.
func (r *Repo[T]) DeactivateAll(ctx context.Context) (int64, error) {
	q := fmt.Sprintf("UPDATE %s SET delete_flag = 1, updated_at = ? WHERE delete_flag = 0", quoteIdentifier(r.table.Name))
	res, err := r.conn.Exec(ctx, q, shop.Now())
	if err != nil {
		return 0, fmt.Errorf("deactivate all %s: %w", r.table.Name, err)
	}
	return res.RowsAffected()
}

// columns returns the keys of values in a stable order, rejecting
// anything that is not a writable column.
func (r *Repo[T]) columns(values map[string]any) ([]string, error) {
	cols := make([]string, 0, len(values))
	for c := range values {
		if !r.table.writable(c) {
			return nil, fmt.Errorf("%s: unknown column %q", r.table.Name, c)
		}
		cols = append(cols, c)
	}
	sort.Strings(cols)
	return cols, nil
}

func (r *Repo[T]) affected(res sql.Result, id string) error {
	n, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if n == 0 {
		return fmt.Errorf("%s %s: %w", r.table.Name, id, ErrNotFound)
	}
	return nil
}

// quoteIdentifier quotes a SQL identifier.
func quoteIdentifier(name string) string {
	return `"` + strings.ReplaceAll(name, `"`, `""`) + `"`
}

func escapeLike(s string) string {
	r := strings.NewReplacer(`\`, `\\`, `%`, `\%`, `_`, `\_`)
	return r.Replace(s)
}
