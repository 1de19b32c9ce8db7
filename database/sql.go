package database

import (
	"fmt"
	"strings"
)

// ToSQL renders the SELECT statement and its bindings without executing it.
// Bindings follow clause order: join clauses bind nothing, where values
// follow in declaration order with IN lists expanded.
func (qb *QueryBuilder) ToSQL() (string, []any) {
	var b strings.Builder
	fmt.Fprintf(&b, "SELECT %s FROM %s", strings.Join(qb.selects, ", "), qb.table)

	if len(qb.joins) > 0 {
		b.WriteString(" ")
		b.WriteString(qb.joinClause())
	}
	if len(qb.wheres) > 0 {
		b.WriteString(" ")
		b.WriteString(qb.whereClause())
	}
	if len(qb.orders) > 0 {
		b.WriteString(" ")
		b.WriteString(qb.orderClause())
	}
	if qb.limit != nil {
		fmt.Fprintf(&b, " LIMIT %d", *qb.limit)
	}
	if qb.offset != nil {
		fmt.Fprintf(&b, " OFFSET %d", *qb.offset)
	}
	return b.String(), qb.bindings()
}

func (qb *QueryBuilder) insertSQL(data Data) (string, []any) {
	query := fmt.Sprintf("INSERT INTO %s (%s) VALUES (%s)",
		qb.table,
		strings.Join(data.Columns(), ", "),
		placeholders(len(data)),
	)
	return query, data.Values()
}

func (qb *QueryBuilder) insertMultipleSQL(records []Data) (string, []any) {
	columns := records[0].Columns()
	group := "(" + placeholders(len(columns)) + ")"
	groups := make([]string, len(records))
	args := make([]any, 0, len(records)*len(columns))
	for i, rec := range records {
		groups[i] = group
		for _, col := range columns {
			v, _ := rec.Get(col)
			args = append(args, v)
		}
	}
	query := fmt.Sprintf("INSERT INTO %s (%s) VALUES %s",
		qb.table,
		strings.Join(columns, ", "),
		strings.Join(groups, ","),
	)
	return query, args
}

func (qb *QueryBuilder) updateSQL(data Data) (string, []any) {
	sets := make([]string, len(data))
	for i, f := range data {
		sets[i] = f.Column + " = ?"
	}
	query := fmt.Sprintf("UPDATE %s SET %s", qb.table, strings.Join(sets, ", "))
	if len(qb.wheres) > 0 {
		query += " " + qb.whereClause()
	}
	return query, append(data.Values(), qb.bindings()...)
}

func (qb *QueryBuilder) deleteSQL() (string, []any) {
	query := "DELETE FROM " + qb.table
	if len(qb.wheres) > 0 {
		query += " " + qb.whereClause()
	}
	return query, qb.bindings()
}

func (qb *QueryBuilder) joinClause() string {
	parts := make([]string, len(qb.joins))
	for i, j := range qb.joins {
		parts[i] = fmt.Sprintf("%s JOIN %s ON %s %s %s", j.kind, j.table, j.left, j.operator, j.right)
	}
	return strings.Join(parts, " ")
}

// whereClause renders the predicates; the first one always opens with WHERE.
func (qb *QueryBuilder) whereClause() string {
	parts := make([]string, len(qb.wheres))
	for i, w := range qb.wheres {
		boolean := w.boolean
		if i == 0 {
			boolean = "WHERE"
		}
		if w.operator == "IN" {
			parts[i] = fmt.Sprintf("%s %s IN (%s)", boolean, w.column, placeholders(len(w.values)))
			continue
		}
		parts[i] = fmt.Sprintf("%s %s %s ?", boolean, w.column, w.operator)
	}
	return strings.Join(parts, " ")
}

func (qb *QueryBuilder) orderClause() string {
	parts := make([]string, len(qb.orders))
	for i, o := range qb.orders {
		parts[i] = o.column + " " + o.direction
	}
	return "ORDER BY " + strings.Join(parts, ", ")
}

func (qb *QueryBuilder) bindings() []any {
	var args []any
	for _, w := range qb.wheres {
		if w.operator == "IN" {
			args = append(args, w.values...)
			continue
		}
		args = append(args, w.value)
	}
	return args
}

func placeholders(n int) string {
	if n <= 0 {
		return ""
	}
	return strings.TrimSuffix(strings.Repeat("?,", n), ",")
}
