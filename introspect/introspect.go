// Package introspect reads live column metadata for a table.
package introspect

import (
	"context"
	"database/sql"
	"fmt"
	"strconv"
	"strings"

	"github.com/tunaaoguzhann/dataforge/dberr"
	"github.com/tunaaoguzhann/dataforge/dialect"
)

// Querier runs a query with `?` placeholders. *database.Connection satisfies it.
type Querier interface {
	QueryContext(ctx context.Context, query string, args ...any) (*sql.Rows, error)
}

// ColumnInfo is one column as reported by the database.
type ColumnInfo struct {
	Name     string
	Type     string
	Nullable bool
	Default  *string
	Key      string
	Extra    string
}

// AutoIncrement reports whether the database fills the column itself.
func (c ColumnInfo) AutoIncrement() bool {
	return strings.Contains(strings.ToUpper(c.Extra), "AUTO_INCREMENT")
}

// Definition rebuilds the column definition in MySQL syntax:
// `<type> [NOT NULL] [DEFAULT v] [EXTRA]`. MySQL 8 marks expression
// defaults with DEFAULT_GENERATED; those render unquoted and the marker
// is dropped.
func (c ColumnInfo) Definition() string {
	extra := strings.Fields(strings.ToUpper(c.Extra))
	generated := false
	kept := extra[:0]
	for _, f := range extra {
		if f == "DEFAULT_GENERATED" {
			generated = true
			continue
		}
		kept = append(kept, f)
	}

	def := c.Type
	if !c.Nullable {
		def += " NOT NULL"
	}
	if c.Default != nil {
		def += " DEFAULT " + defaultValue(*c.Default, generated)
	}
	if len(kept) > 0 {
		def += " " + strings.Join(kept, " ")
	}
	return def
}

func defaultValue(v string, generated bool) string {
	if generated {
		if strings.HasPrefix(strings.ToUpper(v), "CURRENT_TIMESTAMP") {
			return v
		}
		return "(" + v + ")"
	}
	if _, err := strconv.ParseFloat(v, 64); err == nil {
		return v
	}
	return "'" + strings.ReplaceAll(v, "'", "''") + "'"
}

// Inspector describes tables for one dialect.
type Inspector struct {
	q       Querier
	dialect dialect.Dialect
}

func New(q Querier, d dialect.Dialect) *Inspector {
	return &Inspector{q: q, dialect: d}
}

// Columns returns the table's columns in the order the database reports them.
func (i *Inspector) Columns(ctx context.Context, table string) ([]ColumnInfo, error) {
	switch i.dialect {
	case dialect.MySQL:
		return i.mysqlColumns(ctx, fmt.Sprintf("SHOW COLUMNS FROM %s", table))
	case dialect.Postgres:
		return i.postgresColumns(ctx, table)
	case dialect.SQLite:
		return i.sqliteColumns(ctx, table)
	case dialect.SQLServer:
		return i.sqlServerColumns(ctx, table)
	}
	return nil, &dberr.UnsupportedDialectError{Dialect: string(i.dialect), Operation: "column introspection"}
}

// Column describes a single column. It returns dberr.ErrColumnNotFound
// when the table has no such column.
func (i *Inspector) Column(ctx context.Context, table, name string) (*ColumnInfo, error) {
	var (
		cols []ColumnInfo
		err  error
	)
	if i.dialect == dialect.MySQL {
		cols, err = i.mysqlColumns(ctx, fmt.Sprintf("SHOW COLUMNS FROM %s WHERE Field = ?", table), name)
	} else {
		cols, err = i.Columns(ctx, table)
	}
	if err != nil {
		return nil, err
	}
	for _, c := range cols {
		if c.Name == name {
			return &c, nil
		}
	}
	return nil, fmt.Errorf("%s.%s: %w", table, name, dberr.ErrColumnNotFound)
}

func (i *Inspector) mysqlColumns(ctx context.Context, query string, args ...any) ([]ColumnInfo, error) {
	rows, err := i.q.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("querying columns: %w", err)
	}
	defer rows.Close()

	var columns []ColumnInfo
	for rows.Next() {
		var (
			col   ColumnInfo
			null  string
			key   sql.NullString
			def   sql.NullString
			extra sql.NullString
		)
		if err := rows.Scan(&col.Name, &col.Type, &null, &key, &def, &extra); err != nil {
			return nil, fmt.Errorf("scanning column: %w", err)
		}
		col.Nullable = strings.EqualFold(null, "YES")
		col.Key = key.String
		col.Extra = extra.String
		if def.Valid {
			col.Default = &def.String
		}
		columns = append(columns, col)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterating column rows: %w", err)
	}
	return columns, nil
}

func (i *Inspector) postgresColumns(ctx context.Context, table string) ([]ColumnInfo, error) {
	query := `SELECT column_name, data_type, is_nullable, column_default FROM information_schema.columns WHERE table_schema = current_schema() AND table_name = ? ORDER BY ordinal_position`
	rows, err := i.q.QueryContext(ctx, query, table)
	if err != nil {
		return nil, fmt.Errorf("querying columns: %w", err)
	}
	defer rows.Close()

	var columns []ColumnInfo
	for rows.Next() {
		var (
			col  ColumnInfo
			null string
			def  sql.NullString
		)
		if err := rows.Scan(&col.Name, &col.Type, &null, &def); err != nil {
			return nil, fmt.Errorf("scanning column: %w", err)
		}
		col.Nullable = strings.EqualFold(null, "YES")
		if def.Valid {
			col.Default = &def.String
			if strings.HasPrefix(def.String, "nextval(") {
				col.Extra = "auto_increment"
			}
		}
		columns = append(columns, col)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterating column rows: %w", err)
	}
	return columns, nil
}

func (i *Inspector) sqliteColumns(ctx context.Context, table string) ([]ColumnInfo, error) {
	rows, err := i.q.QueryContext(ctx, fmt.Sprintf("PRAGMA table_info(%s)", table))
	if err != nil {
		return nil, fmt.Errorf("querying columns: %w", err)
	}
	defer rows.Close()

	var columns []ColumnInfo
	for rows.Next() {
		var (
			cid     int
			col     ColumnInfo
			notNull int
			def     sql.NullString
			pk      int
		)
		if err := rows.Scan(&cid, &col.Name, &col.Type, &notNull, &def, &pk); err != nil {
			return nil, fmt.Errorf("scanning column: %w", err)
		}
		col.Nullable = notNull == 0
		if def.Valid {
			col.Default = &def.String
		}
		if pk > 0 {
			col.Key = "PRI"
			// An INTEGER PRIMARY KEY aliases the rowid and is filled automatically.
			if strings.EqualFold(col.Type, "INTEGER") {
				col.Extra = "auto_increment"
			}
		}
		columns = append(columns, col)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterating column rows: %w", err)
	}
	return columns, nil
}

func (i *Inspector) sqlServerColumns(ctx context.Context, table string) ([]ColumnInfo, error) {
	query := `SELECT COLUMN_NAME, DATA_TYPE, IS_NULLABLE, COLUMN_DEFAULT, COLUMNPROPERTY(OBJECT_ID(TABLE_SCHEMA + '.' + TABLE_NAME), COLUMN_NAME, 'IsIdentity') FROM INFORMATION_SCHEMA.COLUMNS WHERE TABLE_NAME = ? ORDER BY ORDINAL_POSITION`
	rows, err := i.q.QueryContext(ctx, query, table)
	if err != nil {
		return nil, fmt.Errorf("querying columns: %w", err)
	}
	defer rows.Close()

	var columns []ColumnInfo
	for rows.Next() {
		var (
			col      ColumnInfo
			null     string
			def      sql.NullString
			identity sql.NullInt64
		)
		if err := rows.Scan(&col.Name, &col.Type, &null, &def, &identity); err != nil {
			return nil, fmt.Errorf("scanning column: %w", err)
		}
		col.Nullable = strings.EqualFold(null, "YES")
		if def.Valid {
			col.Default = &def.String
		}
		if identity.Valid && identity.Int64 == 1 {
			col.Extra = "auto_increment"
		}
		columns = append(columns, col)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterating column rows: %w", err)
	}
	return columns, nil
}
