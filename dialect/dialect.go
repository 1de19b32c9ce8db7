// Package dialect identifies the SQL engines dataforge knows about.
package dialect

import (
	"strings"

	"github.com/jmoiron/sqlx"

	"github.com/tunaaoguzhann/dataforge/dberr"
)

// Dialect is a SQL engine syntax variant.
type Dialect string

const (
	MySQL     Dialect = "mysql"
	Postgres  Dialect = "pgsql"
	SQLite    Dialect = "sqlite"
	SQLServer Dialect = "sqlsrv"
)

// All lists every supported dialect.
var All = []Dialect{MySQL, Postgres, SQLite, SQLServer}

// Parse validates a configuration driver value.
func Parse(s string) (Dialect, error) {
	d := Dialect(strings.ToLower(strings.TrimSpace(s)))
	if !d.Valid() {
		return "", &dberr.UnsupportedDialectError{Dialect: s}
	}
	return d, nil
}

// Valid reports whether d is one of the supported dialects.
func (d Dialect) Valid() bool {
	switch d {
	case MySQL, Postgres, SQLite, SQLServer:
		return true
	}
	return false
}

func (d Dialect) String() string { return string(d) }

// BindType is the sqlx placeholder style of the dialect.
func (d Dialect) BindType() int {
	switch d {
	case Postgres:
		return sqlx.DOLLAR
	case SQLServer:
		return sqlx.AT
	}
	return sqlx.QUESTION
}

// Rebind rewrites `?` placeholders into the dialect's native form. Every
// question mark is rewritten, including ones inside quoted literals, so
// literal values must be bound rather than inlined.
func (d Dialect) Rebind(query string) string {
	return sqlx.Rebind(d.BindType(), query)
}
