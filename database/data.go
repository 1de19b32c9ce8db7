package database

import (
	"fmt"
	"sort"

	"github.com/jmoiron/sqlx"
)

// Field is one column/value pair.
type Field struct {
	Column string
	Value  any
}

// Data is an ordered list of column/value pairs. Its order decides the
// column order of rendered INSERT and UPDATE statements.
type Data []Field

// DataFromMap converts m into Data sorted by column name.
func DataFromMap(m map[string]any) Data {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	d := make(Data, 0, len(keys))
	for _, k := range keys {
		d = append(d, Field{Column: k, Value: m[k]})
	}
	return d
}

func (d Data) Columns() []string {
	cols := make([]string, len(d))
	for i, f := range d {
		cols[i] = f.Column
	}
	return cols
}

func (d Data) Values() []any {
	vals := make([]any, len(d))
	for i, f := range d {
		vals[i] = f.Value
	}
	return vals
}

// Get returns the value stored for column.
func (d Data) Get(column string) (any, bool) {
	for _, f := range d {
		if f.Column == column {
			return f.Value, true
		}
	}
	return nil, false
}

// Set replaces the value for column, appending it when absent.
func (d Data) Set(column string, value any) Data {
	for i, f := range d {
		if f.Column == column {
			d[i].Value = value
			return d
		}
	}
	return append(d, Field{Column: column, Value: value})
}

// Row is one result row keyed by column name.
type Row map[string]any

// scanRows reads every row of rs. Byte slices are returned as strings.
func scanRows(rs *sqlx.Rows) ([]Row, error) {
	defer rs.Close()
	var out []Row
	for rs.Next() {
		row := make(Row)
		if err := rs.MapScan(row); err != nil {
			return nil, fmt.Errorf("scanning row: %w", err)
		}
		for col, v := range row {
			if b, ok := v.([]byte); ok {
				row[col] = string(b)
			}
		}
		out = append(out, row)
	}
	if err := rs.Err(); err != nil {
		return nil, fmt.Errorf("iterating rows: %w", err)
	}
	return out, nil
}
