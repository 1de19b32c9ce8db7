package runner

import (
	"context"
	"fmt"
	"strings"

	"github.com/tunaaoguzhann/dataforge/database"
	"github.com/tunaaoguzhann/dataforge/dberr"
	"github.com/tunaaoguzhann/dataforge/dialect"
	"github.com/tunaaoguzhann/dataforge/generator"
	"github.com/tunaaoguzhann/dataforge/introspect"
	"github.com/tunaaoguzhann/dataforge/schema"
)

// TableBuilder turns a Schema into DDL for one table and executes it.
// Only MySQL and PostgreSQL can alter tables.
type TableBuilder struct {
	table string
	conn  *database.Connection
	gen   *generator.Generator
}

func NewTableBuilder(table string, conn *database.Connection) (*TableBuilder, error) {
	d := conn.Dialect()
	if d != dialect.MySQL && d != dialect.Postgres {
		return nil, &dberr.UnsupportedDialectError{Dialect: string(d), Operation: "table building"}
	}
	return &TableBuilder{table: table, conn: conn, gen: generator.New(d)}, nil
}

func (tb *TableBuilder) Table() string { return tb.table }

// Build creates the table from the schema structure.
func (tb *TableBuilder) Build(ctx context.Context, s *schema.Schema) error {
	return tb.conn.QueryBuilder().Create(ctx, tb.table, s.Structure())
}

// CreateStatement renders the CREATE TABLE statement Build would run.
func (tb *TableBuilder) CreateStatement(s *schema.Schema) (string, error) {
	return tb.gen.CreateTable(tb.table, s.Structure())
}

// Modify applies each modification in order, stopping at the first failure.
func (tb *TableBuilder) Modify(ctx context.Context, mods []schema.Modification) error {
	for _, mod := range mods {
		if _, err := tb.Apply(ctx, mod); err != nil {
			return err
		}
	}
	return nil
}

// Apply renders and executes a single modification and returns the
// statements it ran.
func (tb *TableBuilder) Apply(ctx context.Context, mod schema.Modification) ([]string, error) {
	stmts, err := tb.statements(ctx, mod)
	if err != nil {
		return nil, err
	}
	for _, stmt := range stmts {
		if err := tb.conn.QueryBuilder().Raw(ctx, stmt); err != nil {
			return nil, fmt.Errorf("%s %s: %w", mod.Kind, target(mod), err)
		}
	}
	return stmts, nil
}

// Statements renders the modifications without executing them. A MySQL
// rename still reads the live column definition.
func (tb *TableBuilder) Statements(ctx context.Context, mods []schema.Modification) ([]string, error) {
	var out []string
	for _, mod := range mods {
		stmts, err := tb.statements(ctx, mod)
		if err != nil {
			return nil, err
		}
		out = append(out, stmts...)
	}
	return out, nil
}

func (tb *TableBuilder) statements(ctx context.Context, mod schema.Modification) ([]string, error) {
	switch mod.Kind {
	case schema.Add:
		stmt, err := tb.gen.AddColumn(tb.table, mod.Definition, mod.After)
		if err != nil {
			return nil, err
		}
		stmts := []string{stmt}
		if mod.Definition.ForeignKey != nil {
			stmts = append(stmts, tb.gen.AddForeignKey(tb.table, mod.Definition))
		}
		return stmts, nil
	case schema.Change:
		stmt, err := tb.gen.ModifyColumn(tb.table, mod.Definition, mod.After)
		if err != nil {
			return nil, err
		}
		return []string{stmt}, nil
	case schema.Drop:
		return []string{tb.gen.DropColumn(tb.table, mod.Column)}, nil
	case schema.Rename:
		stmt, err := tb.renameStatement(ctx, mod.From, mod.To)
		if err != nil {
			return nil, err
		}
		return []string{stmt}, nil
	case schema.Index:
		return []string{tb.gen.CreateIndex(tb.table, mod.Columns)}, nil
	}
	return nil, fmt.Errorf("unknown modification %q on %s", mod.Kind, tb.table)
}

func (tb *TableBuilder) renameStatement(ctx context.Context, from, to string) (string, error) {
	if tb.gen.Dialect() == dialect.Postgres {
		return tb.gen.RenameColumn(tb.table, from, to), nil
	}
	col, err := introspect.New(tb.conn, tb.gen.Dialect()).Column(ctx, tb.table, from)
	if err != nil {
		return "", fmt.Errorf("rename %s to %s: %w", from, to, err)
	}
	return tb.gen.ChangeColumn(tb.table, from, to, col.Definition()), nil
}

func target(mod schema.Modification) string {
	switch mod.Kind {
	case schema.Rename:
		return mod.From
	case schema.Index:
		return strings.Join(mod.Columns, ", ")
	}
	return mod.Column
}
