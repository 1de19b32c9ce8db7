// Package generator renders dialect specific DDL from schema definitions.
package generator

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/tunaaoguzhann/dataforge/dberr"
	"github.com/tunaaoguzhann/dataforge/dialect"
	"github.com/tunaaoguzhann/dataforge/schema"
)

// Generator renders DDL text for one dialect. It never talks to a database.
type Generator struct {
	dialect dialect.Dialect
}

func New(d dialect.Dialect) *Generator {
	return &Generator{dialect: d}
}

func (g *Generator) Dialect() dialect.Dialect { return g.dialect }

// ColumnType returns the native type spelling of c.
func (g *Generator) ColumnType(c *schema.Column) (string, error) {
	switch c.Type {
	case schema.Integer:
		if g.dialect == dialect.MySQL {
			return "INT", nil
		}
		return "INTEGER", nil
	case schema.Varchar:
		n := c.Length
		if n <= 0 {
			n = schema.DefaultStringLength
		}
		return fmt.Sprintf("VARCHAR(%d)", n), nil
	case schema.Text:
		if g.dialect == dialect.SQLServer {
			return "NVARCHAR(MAX)", nil
		}
		return "TEXT", nil
	case schema.Timestamp:
		if g.dialect == dialect.SQLServer {
			return "DATETIME2", nil
		}
		return "TIMESTAMP", nil
	case schema.Datetime:
		switch g.dialect {
		case dialect.Postgres:
			return "TIMESTAMP", nil
		case dialect.SQLServer:
			return "DATETIME2", nil
		}
		return "DATETIME", nil
	case schema.Date:
		return "DATE", nil
	case schema.Boolean:
		switch g.dialect {
		case dialect.MySQL:
			return "TINYINT(1)", nil
		case dialect.SQLServer:
			return "BIT", nil
		}
		return "BOOLEAN", nil
	case schema.Decimal:
		if c.Precision > 0 && c.Scale >= 0 {
			return fmt.Sprintf("DECIMAL(%d,%d)", c.Precision, c.Scale), nil
		}
		return fmt.Sprintf("DECIMAL(%d,%d)", schema.DefaultPrecision, schema.DefaultScale), nil
	case schema.JSON:
		switch g.dialect {
		case dialect.MySQL:
			return "JSON", nil
		case dialect.Postgres:
			return "JSONB", nil
		case dialect.SQLServer:
			return "NVARCHAR(MAX)", nil
		}
		return "TEXT", nil
	case schema.Enum:
		if g.dialect == dialect.MySQL && len(c.Values) > 0 {
			quoted := make([]string, len(c.Values))
			for i, v := range c.Values {
				quoted[i] = quoteString(v)
			}
			return "ENUM(" + strings.Join(quoted, ",") + ")", nil
		}
	}
	return "", &dberr.UnsupportedColumnTypeError{Column: c.Name, Type: string(c.Type), Dialect: string(g.dialect)}
}

// ColumnDefinition renders `name TYPE [constraints...]`.
func (g *Generator) ColumnDefinition(c *schema.Column) (string, error) {
	typ, err := g.ColumnType(c)
	if err != nil {
		return "", err
	}
	parts := []string{c.Name, typ}

	if c.PrimaryKey {
		if g.dialect == dialect.Postgres && c.AutoIncrement {
			return c.Name + " SERIAL PRIMARY KEY", nil
		}
		parts = append(parts, "PRIMARY KEY")
	}
	if c.AutoIncrement {
		switch g.dialect {
		case dialect.MySQL:
			parts = append(parts, "AUTO_INCREMENT")
		case dialect.SQLite:
			parts = append(parts, "AUTOINCREMENT")
		case dialect.SQLServer:
			parts = append(parts, "IDENTITY(1,1)")
		}
	}

	if c.Nullable {
		parts = append(parts, "NULL")
	} else {
		parts = append(parts, "NOT NULL")
	}

	if c.HasDefault {
		parts = append(parts, "DEFAULT "+g.literal(c.Default))
	}

	if c.Unique {
		parts = append(parts, "UNIQUE")
	}
	return strings.Join(parts, " "), nil
}

// CreateTable renders CREATE TABLE IF NOT EXISTS for the given columns.
// SQL Server has no IF NOT EXISTS and gets an OBJECT_ID guard instead.
// Foreign keys become table constraints after the column list.
func (g *Generator) CreateTable(table string, columns []*schema.Column) (string, error) {
	defs := make([]string, 0, len(columns))
	var constraints []string
	for _, c := range columns {
		def, err := g.ColumnDefinition(c)
		if err != nil {
			return "", err
		}
		defs = append(defs, def)
		if c.ForeignKey != nil {
			constraints = append(constraints, fmt.Sprintf("FOREIGN KEY (%s) REFERENCES %s (%s)",
				c.Name, c.ForeignKey.Table, c.ForeignKey.Column))
		}
	}
	defs = append(defs, constraints...)
	if g.dialect == dialect.SQLServer {
		return fmt.Sprintf("IF OBJECT_ID(N'%s', N'U') IS NULL CREATE TABLE %s (%s)", table, table, strings.Join(defs, ", ")), nil
	}
	return fmt.Sprintf("CREATE TABLE IF NOT EXISTS %s (%s)", table, strings.Join(defs, ", ")), nil
}

func (g *Generator) AddColumn(table string, c *schema.Column, after string) (string, error) {
	def, err := g.ColumnDefinition(c)
	if err != nil {
		return "", err
	}
	stmt := fmt.Sprintf("ALTER TABLE %s ADD COLUMN %s", table, def)
	if after != "" {
		stmt += " AFTER " + after
	}
	return stmt, nil
}

func (g *Generator) ModifyColumn(table string, c *schema.Column, after string) (string, error) {
	def, err := g.ColumnDefinition(c)
	if err != nil {
		return "", err
	}
	stmt := fmt.Sprintf("ALTER TABLE %s MODIFY COLUMN %s", table, def)
	if after != "" {
		stmt += " AFTER " + after
	}
	return stmt, nil
}

func (g *Generator) DropColumn(table, column string) string {
	return fmt.Sprintf("ALTER TABLE %s DROP COLUMN %s", table, column)
}

func (g *Generator) RenameColumn(table, from, to string) string {
	return fmt.Sprintf("ALTER TABLE %s RENAME COLUMN %s TO %s", table, from, to)
}

// ChangeColumn renders MySQL's CHANGE form, which needs the full column
// definition because MySQL has no rename-only syntax before 8.0.
func (g *Generator) ChangeColumn(table, from, to, definition string) string {
	return fmt.Sprintf("ALTER TABLE %s CHANGE %s %s %s", table, from, to, definition)
}

// IndexName is `<table>_<col1>_<col2>..._idx`.
func IndexName(table string, columns []string) string {
	return table + "_" + strings.Join(columns, "_") + "_idx"
}

func (g *Generator) CreateIndex(table string, columns []string) string {
	return fmt.Sprintf("CREATE INDEX %s ON %s (%s)", IndexName(table, columns), table, strings.Join(columns, ", "))
}

// ForeignKeyName is `fk_<table>_<column>`.
func ForeignKeyName(table, column string) string {
	return "fk_" + table + "_" + column
}

// AddForeignKey renders a named constraint for a column added after creation.
func (g *Generator) AddForeignKey(table string, c *schema.Column) string {
	return fmt.Sprintf("ALTER TABLE %s ADD CONSTRAINT %s FOREIGN KEY (%s) REFERENCES %s (%s)",
		table, ForeignKeyName(table, c.Name), c.Name, c.ForeignKey.Table, c.ForeignKey.Column)
}

func (g *Generator) literal(v any) string {
	switch v := v.(type) {
	case nil:
		return "NULL"
	case schema.Expr:
		return string(v)
	case string:
		return quoteString(v)
	case bool:
		if g.dialect == dialect.MySQL || g.dialect == dialect.SQLServer {
			if v {
				return "1"
			}
			return "0"
		}
		if v {
			return "TRUE"
		}
		return "FALSE"
	case float32:
		return strconv.FormatFloat(float64(v), 'f', -1, 32)
	case float64:
		return strconv.FormatFloat(v, 'f', -1, 64)
	default:
		return fmt.Sprintf("%v", v)
	}
}

func quoteString(s string) string {
	return "'" + strings.ReplaceAll(s, "'", "''") + "'"
}
