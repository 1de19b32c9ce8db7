package database

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/spf13/cast"

	"github.com/tunaaoguzhann/dataforge/dberr"
	"github.com/tunaaoguzhann/dataforge/generator"
	"github.com/tunaaoguzhann/dataforge/introspect"
	"github.com/tunaaoguzhann/dataforge/schema"
)

type whereClause struct {
	column   string
	operator string
	value    any
	values   []any // IN
	boolean  string
}

type joinClause struct {
	kind     string
	table    string
	left     string
	operator string
	right    string
}

type orderClause struct {
	column    string
	direction string
}

// QueryBuilder assembles one SQL statement. Setters mutate the builder and
// return it; terminal methods render and execute. A builder is meant for a
// single statement and is not safe for concurrent use.
type QueryBuilder struct {
	conn    *Connection
	table   string
	selects []string
	wheres  []whereClause
	joins   []joinClause
	orders  []orderClause
	limit   *int
	offset  *int
}

// Connection returns the connection the builder executes against.
func (qb *QueryBuilder) Connection() *Connection { return qb.conn }

func (qb *QueryBuilder) Table(name string) *QueryBuilder {
	qb.table = name
	return qb
}

// Select replaces the default `*` projection.
func (qb *QueryBuilder) Select(columns ...string) *QueryBuilder {
	if len(columns) == 0 {
		columns = []string{"*"}
	}
	qb.selects = append([]string(nil), columns...)
	return qb
}

func (qb *QueryBuilder) Where(column, operator string, value any) *QueryBuilder {
	qb.wheres = append(qb.wheres, whereClause{column: column, operator: operator, value: value, boolean: "AND"})
	return qb
}

func (qb *QueryBuilder) OrWhere(column, operator string, value any) *QueryBuilder {
	qb.wheres = append(qb.wheres, whereClause{column: column, operator: operator, value: value, boolean: "OR"})
	return qb
}

// WhereIn adds `column IN (?, ...)`. An empty value list renders `IN ()`,
// which most engines reject.
func (qb *QueryBuilder) WhereIn(column string, values ...any) *QueryBuilder {
	qb.wheres = append(qb.wheres, whereClause{column: column, operator: "IN", values: values, boolean: "AND"})
	return qb
}

func (qb *QueryBuilder) Join(table, left, operator, right string) *QueryBuilder {
	qb.joins = append(qb.joins, joinClause{kind: "INNER", table: table, left: left, operator: operator, right: right})
	return qb
}

func (qb *QueryBuilder) LeftJoin(table, left, operator, right string) *QueryBuilder {
	qb.joins = append(qb.joins, joinClause{kind: "LEFT", table: table, left: left, operator: operator, right: right})
	return qb
}

// OrderBy appends a sort key; direction is upper-cased and defaults to ASC.
func (qb *QueryBuilder) OrderBy(column string, direction ...string) *QueryBuilder {
	dir := "ASC"
	if len(direction) > 0 && direction[0] != "" {
		dir = strings.ToUpper(direction[0])
	}
	qb.orders = append(qb.orders, orderClause{column: column, direction: dir})
	return qb
}

// Limit and Offset render as LIMIT/OFFSET, which SQL Server does not accept.
func (qb *QueryBuilder) Limit(n int) *QueryBuilder {
	qb.limit = &n
	return qb
}

func (qb *QueryBuilder) Offset(n int) *QueryBuilder {
	qb.offset = &n
	return qb
}

// Get runs the SELECT and returns every row.
func (qb *QueryBuilder) Get(ctx context.Context) ([]Row, error) {
	if qb.table == "" {
		return nil, dberr.ErrNoTable
	}
	query, args := qb.ToSQL()
	rows, err := qb.conn.QueryxContext(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	return scanRows(rows)
}

// First limits the query to one row. It returns a nil Row when nothing matches.
func (qb *QueryBuilder) First(ctx context.Context) (Row, error) {
	qb.Limit(1)
	rows, err := qb.Get(ctx)
	if err != nil {
		return nil, err
	}
	if len(rows) == 0 {
		return nil, nil
	}
	return rows[0], nil
}

// Count replaces the projection with COUNT(*).
func (qb *QueryBuilder) Count(ctx context.Context) (int64, error) {
	qb.selects = []string{"COUNT(*) as count"}
	row, err := qb.First(ctx)
	if err != nil {
		return 0, err
	}
	if row == nil || row["count"] == nil {
		return 0, nil
	}
	n, err := cast.ToInt64E(row["count"])
	if err != nil {
		return 0, fmt.Errorf("reading count: %w", err)
	}
	return n, nil
}

func (qb *QueryBuilder) Insert(ctx context.Context, data Data) error {
	if qb.table == "" {
		return dberr.ErrNoTable
	}
	query, args := qb.insertSQL(data)
	_, err := qb.conn.ExecContext(ctx, query, args...)
	return err
}

// InsertMultiple writes all records in one statement. The first record's
// columns are canonical; columns missing from later records bind NULL.
func (qb *QueryBuilder) InsertMultiple(ctx context.Context, records []Data) error {
	if qb.table == "" {
		return dberr.ErrNoTable
	}
	if len(records) == 0 {
		return dberr.ErrEmptyRecords
	}
	query, args := qb.insertMultipleSQL(records)
	if _, err := qb.conn.ExecContext(ctx, query, args...); err != nil {
		return fmt.Errorf("bulk insert into %s: %w", qb.table, err)
	}
	return nil
}

// Update sets data on the rows matched by the where clauses built so far
// and returns the number of affected rows.
func (qb *QueryBuilder) Update(ctx context.Context, data Data) (int64, error) {
	if qb.table == "" {
		return 0, dberr.ErrNoTable
	}
	query, args := qb.updateSQL(data)
	res, err := qb.conn.ExecContext(ctx, query, args...)
	if err != nil {
		return 0, err
	}
	return affected(res)
}

// Delete removes the matched rows. Without where clauses it empties the table.
func (qb *QueryBuilder) Delete(ctx context.Context) (int64, error) {
	if qb.table == "" {
		return 0, dberr.ErrNoTable
	}
	query, args := qb.deleteSQL()
	res, err := qb.conn.ExecContext(ctx, query, args...)
	if err != nil {
		return 0, err
	}
	return affected(res)
}

// Create issues CREATE TABLE IF NOT EXISTS for columns in the connection's dialect.
func (qb *QueryBuilder) Create(ctx context.Context, table string, columns []*schema.Column) error {
	stmt, err := generator.New(qb.conn.Dialect()).CreateTable(table, columns)
	if err != nil {
		return err
	}
	return qb.Raw(ctx, stmt)
}

// QuickInsert pairs values positionally with the table's columns, skipping
// auto-increment columns and id/created_at/updated_at, and stamps
// created_at when the table has one. Pairing follows the column order the
// database reports.
func (qb *QueryBuilder) QuickInsert(ctx context.Context, values ...any) error {
	if qb.table == "" {
		return dberr.ErrNoTable
	}
	cols, err := introspect.New(qb.conn, qb.conn.Dialect()).Columns(ctx, qb.table)
	if err != nil {
		return fmt.Errorf("reading columns of %s: %w", qb.table, err)
	}

	var (
		targets    []string
		hasCreated bool
	)
	for _, c := range cols {
		if c.AutoIncrement() {
			continue
		}
		switch c.Name {
		case "created_at":
			hasCreated = true
			continue
		case "id", "updated_at":
			continue
		}
		targets = append(targets, c.Name)
	}
	if len(targets) != len(values) {
		return fmt.Errorf("%s expects %d values, got %d: %w", qb.table, len(targets), len(values), dberr.ErrValueCount)
	}

	data := make(Data, 0, len(targets)+1)
	for i, col := range targets {
		data = append(data, Field{Column: col, Value: values[i]})
	}
	if hasCreated {
		data = append(data, Field{Column: "created_at", Value: time.Now().Format(time.DateTime)})
	}
	return qb.Insert(ctx, data)
}

// Raw executes sql directly, ignoring any builder state.
func (qb *QueryBuilder) Raw(ctx context.Context, sql string, bindings ...any) error {
	_, err := qb.conn.ExecContext(ctx, sql, bindings...)
	return err
}

func affected(res interface{ RowsAffected() (int64, error) }) (int64, error) {
	n, err := res.RowsAffected()
	if err != nil {
		// Some drivers cannot report affected rows; the statement still succeeded.
		return 0, nil
	}
	return n, nil
}
