// Package store persists the shop catalogue in SQLite.
package store

import (
	"context"
	"database/sql"
	"database/sql/driver"
	"fmt"
	"net/url"
	"strings"
	"sync"

	"github.com/jmoiron/sqlx"
	"modernc.org/sqlite"
)

const driverName = "sqlite"

func init() {
	sqlx.BindDriver(driverName, sqlx.QUESTION)
	// fold lower-cases text with Unicode rules; SQLite's LOWER only folds ASCII.
	sqlite.MustRegisterDeterministicScalarFunction("fold", 1, fold)
}

func fold(_ *sqlite.FunctionContext, args []driver.Value) (driver.Value, error) {
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

// Connection wraps the database handle. Statements are serialised because
// SQLite allows a single writer.
type Connection struct {
	DB       *sqlx.DB
	Path     string
	ReadOnly bool
	mu       sync.Mutex
}

// OpenOptions configures Connect.
type OpenOptions struct {
	ReadOnly    bool
	BusyTimeout int // milliseconds
}

func DefaultOpenOptions() OpenOptions {
	return OpenOptions{BusyTimeout: 5000}
}

// Connect opens the database at path.
func Connect(path string, opts OpenOptions) (*Connection, error) {
	mode := "rwc"
	if opts.ReadOnly {
		mode = "ro"
	}
	q := url.Values{}
	q.Set("mode", mode)
	q.Add("_pragma", fmt.Sprintf("busy_timeout(%d)", opts.BusyTimeout))
	q.Add("_pragma", "journal_mode(WAL)")
	q.Add("_pragma", "synchronous(NORMAL)")
	q.Add("_pragma", "foreign_keys(ON)")
	dsn := "file:" + path + "?" + q.Encode()

	db, err := sqlx.Open(driverName, dsn)
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}
	if err := db.Ping(); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to connect to database: %w", err)
	}

	db.SetMaxOpenConns(1)
	db.SetMaxIdleConns(1)
	db.SetConnMaxLifetime(0)

	return &Connection{DB: db, Path: path, ReadOnly: opts.ReadOnly}, nil
}

func (c *Connection) Close() error {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.DB != nil {
		return c.DB.Close()
	}
	return nil
}

// Select scans all rows of query into dest.
func (c *Connection) Select(ctx context.Context, dest any, query string, args ...any) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.DB.SelectContext(ctx, dest, query, args...)
}

// Get scans a single row into dest.
func (c *Connection) Get(ctx context.Context, dest any, query string, args ...any) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.DB.GetContext(ctx, dest, query, args...)
}

// Exec runs a statement.
func (c *Connection) Exec(ctx context.Context, query string, args ...any) (sql.Result, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.DB.ExecContext(ctx, query, args...)
}

// NamedExec runs a statement with :name parameters bound from arg.
func (c *Connection) NamedExec(ctx context.Context, query string, arg any) (sql.Result, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.DB.NamedExecContext(ctx, query, arg)
}

// WithTx runs fn in a transaction, rolling back on error or panic.
func (c *Connection) WithTx(ctx context.Context, fn func(*sqlx.Tx) error) error {
	c.mu.Lock()
	defer c.mu.Unlock()

	tx, err := c.DB.BeginTxx(ctx, nil)
	if err != nil {
		return err
	}
	defer func() {
		if p := recover(); p != nil {
			tx.Rollback()
			panic(p)
		}
	}()

	if err := fn(tx); err != nil {
		tx.Rollback()
		return err
	}
	return tx.Commit()
}
