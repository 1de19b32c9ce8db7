package seeder

import (
	"context"
	"fmt"
	"sort"

	"github.com/tunaaoguzhann/dataforge/database"
)

// Definition builds one record from the generator.
type Definition func(g *Generator) database.Data

// Factory generates records and bulk-inserts them.
type Factory struct {
	conn *database.Connection
	gen  *Generator
}

// NewFactory returns a Factory using gen, or a time-seeded Generator when gen is nil.
func NewFactory(conn *database.Connection, gen *Generator) *Factory {
	if gen == nil {
		gen = NewGenerator()
	}
	return &Factory{conn: conn, gen: gen}
}

func (f *Factory) Generator() *Generator { return f.gen }

// Make calls def count times without touching the database.
func (f *Factory) Make(def Definition, count int) []database.Data {
	if count <= 0 {
		return nil
	}
	records := make([]database.Data, 0, count)
	for i := 0; i < count; i++ {
		records = append(records, def(f.gen))
	}
	return records
}

// Create inserts count generated records into table with a single
// statement. A count of zero or less does nothing.
func (f *Factory) Create(ctx context.Context, table string, def Definition, count int) error {
	if count <= 0 {
		return nil
	}
	return f.conn.QueryBuilder().Table(table).InsertMultiple(ctx, f.Make(def, count))
}

// KindDefinition returns a Definition filling each column with the fake
// kind mapped to it, in column name order. Kinds are checked up front.
func KindDefinition(fields map[string]string) (Definition, error) {
	columns := make([]string, 0, len(fields))
	for col := range fields {
		columns = append(columns, col)
	}
	sort.Strings(columns)

	check := NewGenerator()
	for _, col := range columns {
		if _, err := check.Fake(fields[col]); err != nil {
			return nil, fmt.Errorf("column %s: %w", col, err)
		}
	}

	return func(g *Generator) database.Data {
		data := make(database.Data, 0, len(columns))
		for _, col := range columns {
			v, _ := g.Fake(fields[col])
			data = append(data, database.Field{Column: col, Value: v})
		}
		return data
	}, nil
}
