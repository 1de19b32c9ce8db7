// Package database wraps a database/sql handle with a dialect and a fluent
// query builder.
//
//	conn, err := database.Open(ctx, database.Config{Driver: "sqlite", Name: "app.db"})
//	if err != nil {
//		return err
//	}
//	defer conn.Close()
//
//	row, err := conn.QueryBuilder().Table("users").Where("id", "=", 5).First(ctx)
package database

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/jmoiron/sqlx"

	"github.com/tunaaoguzhann/dataforge/dberr"
	"github.com/tunaaoguzhann/dataforge/dialect"
)

// Connection owns one database/sql handle and the dialect it speaks.
// It is not safe for concurrent use by multiple goroutines building
// statements against the same QueryBuilder.
type Connection struct {
	db      *sqlx.DB
	dialect dialect.Dialect
}

// Open validates cfg, opens the driver and pings the database.
func Open(ctx context.Context, cfg Config) (*Connection, error) {
	d, err := cfg.Dialect()
	if err != nil {
		return nil, &dberr.ConnectionError{Driver: cfg.Driver, Err: err}
	}
	driverName, err := cfg.SQLDriver()
	if err != nil {
		return nil, &dberr.ConnectionError{Driver: cfg.Driver, Err: err}
	}
	dsn, err := cfg.DSN()
	if err != nil {
		return nil, &dberr.ConnectionError{Driver: cfg.Driver, Err: err}
	}

	db, err := sqlx.Open(driverName, dsn)
	if err != nil {
		return nil, &dberr.ConnectionError{Driver: cfg.Driver, Err: err}
	}
	// One Connection is one session.
	db.SetMaxOpenConns(1)

	if err := db.PingContext(ctx); err != nil {
		db.Close()
		return nil, &dberr.ConnectionError{Driver: cfg.Driver, Err: fmt.Errorf("unable to ping database: %w", err)}
	}
	return &Connection{db: db, dialect: d}, nil
}

// NewWithDB wraps an already opened handle.
func NewWithDB(d dialect.Dialect, db *sql.DB) *Connection {
	return &Connection{db: sqlx.NewDb(db, d.String()), dialect: d}
}

// QueryBuilder returns a fresh builder bound to this connection.
func (c *Connection) QueryBuilder() *QueryBuilder {
	return &QueryBuilder{conn: c, selects: []string{"*"}}
}

// Dialect returns the dialect chosen at construction.
func (c *Connection) Dialect() dialect.Dialect { return c.dialect }

// DB returns the raw driver handle.
func (c *Connection) DB() *sql.DB { return c.db.DB }

func (c *Connection) Ping(ctx context.Context) error {
	if err := c.db.PingContext(ctx); err != nil {
		return &dberr.ConnectionError{Driver: string(c.dialect), Err: err}
	}
	return nil
}

func (c *Connection) Close() error { return c.db.Close() }

// ExecContext runs a statement written with `?` placeholders.
func (c *Connection) ExecContext(ctx context.Context, query string, args ...any) (sql.Result, error) {
	res, err := c.db.ExecContext(ctx, c.dialect.Rebind(query), args...)
	if err != nil {
		return nil, c.execError(query, err)
	}
	return res, nil
}

// QueryContext runs a query written with `?` placeholders.
func (c *Connection) QueryContext(ctx context.Context, query string, args ...any) (*sql.Rows, error) {
	rows, err := c.db.QueryContext(ctx, c.dialect.Rebind(query), args...)
	if err != nil {
		return nil, c.execError(query, err)
	}
	return rows, nil
}

// QueryxContext is QueryContext returning sqlx rows for map scanning.
func (c *Connection) QueryxContext(ctx context.Context, query string, args ...any) (*sqlx.Rows, error) {
	rows, err := c.db.QueryxContext(ctx, c.dialect.Rebind(query), args...)
	if err != nil {
		return nil, c.execError(query, err)
	}
	return rows, nil
}

func (c *Connection) execError(query string, err error) error {
	return &dberr.ExecutionError{Query: query, Code: errorCode(err), Err: err}
}
