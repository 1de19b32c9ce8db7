// Package schema collects declarative table definitions for migrations.
//
// A Schema is filled by a migration's Up step:
//
//	s.Integer("id").PrimaryKey().AutoIncrement()
//	s.String("email", 191).Unique()
//	s.Text("bio").Nullable().After("email")
//	s.RenameColumn("old", "new")
//
// Column methods set the current column; modifiers apply to it.
package schema

import (
	"github.com/tunaaoguzhann/dataforge/dberr"
)

// Schema accumulates the structure of a table and the modifications
// queued against it.
type Schema struct {
	table         string
	columns       []*Column
	modifications []Modification
	current       *Column
	err           error
}

func New(table string) *Schema {
	return &Schema{table: table}
}

func (s *Schema) Table() string { return s.table }

// Structure returns the columns of the initial CREATE TABLE in declaration order.
func (s *Schema) Structure() []*Column { return s.columns }

// Column looks up a structure column by name.
func (s *Schema) Column(name string) (*Column, bool) {
	for _, c := range s.columns {
		if c.Name == name {
			return c, true
		}
	}
	return nil, false
}

func (s *Schema) Modifications() []Modification { return s.modifications }

// Err returns the first usage error recorded while building the schema.
func (s *Schema) Err() error { return s.err }

func (s *Schema) declare(c *Column) *Schema {
	for i, existing := range s.columns {
		if existing.Name == c.Name {
			s.columns[i] = c
			s.current = c
			return s
		}
	}
	s.columns = append(s.columns, c)
	s.current = c
	return s
}

// Declare adds a fully built column definition and makes it current.
func (s *Schema) Declare(c *Column) *Schema {
	return s.declare(c)
}

func (s *Schema) Integer(name string) *Schema {
	return s.declare(&Column{Name: name, Type: Integer})
}

// String declares a VARCHAR column, 255 characters unless a length is given.
func (s *Schema) String(name string, length ...int) *Schema {
	n := DefaultStringLength
	if len(length) > 0 && length[0] > 0 {
		n = length[0]
	}
	return s.declare(&Column{Name: name, Type: Varchar, Length: n})
}

func (s *Schema) Text(name string) *Schema {
	return s.declare(&Column{Name: name, Type: Text})
}

func (s *Schema) Timestamp(name string) *Schema {
	return s.declare(&Column{Name: name, Type: Timestamp})
}

func (s *Schema) Datetime(name string) *Schema {
	return s.declare(&Column{Name: name, Type: Datetime})
}

func (s *Schema) Date(name string) *Schema {
	return s.declare(&Column{Name: name, Type: Date})
}

// Decimal declares a DECIMAL column. Precision and scale default to 10 and 2.
func (s *Schema) Decimal(name string, precisionScale ...int) *Schema {
	c := &Column{Name: name, Type: Decimal, Precision: DefaultPrecision, Scale: DefaultScale}
	if len(precisionScale) > 0 {
		c.Precision = precisionScale[0]
	}
	if len(precisionScale) > 1 {
		c.Scale = precisionScale[1]
	}
	return s.declare(c)
}

func (s *Schema) Boolean(name string) *Schema {
	return s.declare(&Column{Name: name, Type: Boolean})
}

func (s *Schema) JSON(name string) *Schema {
	return s.declare(&Column{Name: name, Type: JSON})
}

func (s *Schema) Enum(name string, values ...string) *Schema {
	return s.declare(&Column{Name: name, Type: Enum, Values: append([]string(nil), values...)})
}

// modify runs fn against the current column, recording a usage error when
// no column has been declared yet.
func (s *Schema) modify(method string, fn func(c *Column)) *Schema {
	if s.current == nil {
		if s.err == nil {
			s.err = &dberr.SchemaUsageError{Table: s.table, Method: method}
		}
		return s
	}
	fn(s.current)
	return s
}

func (s *Schema) Nullable() *Schema {
	return s.modify("Nullable", func(c *Column) { c.Nullable = true })
}

func (s *Schema) Unique() *Schema {
	return s.modify("Unique", func(c *Column) { c.Unique = true })
}

func (s *Schema) Default(v any) *Schema {
	return s.modify("Default", func(c *Column) {
		c.Default = v
		c.HasDefault = true
	})
}

func (s *Schema) PrimaryKey() *Schema {
	return s.modify("PrimaryKey", func(c *Column) { c.PrimaryKey = true })
}

func (s *Schema) AutoIncrement() *Schema {
	return s.modify("AutoIncrement", func(c *Column) { c.AutoIncrement = true })
}

// ForeignKey references table(column); column defaults to "id".
func (s *Schema) ForeignKey(table string, column ...string) *Schema {
	ref := "id"
	if len(column) > 0 && column[0] != "" {
		ref = column[0]
	}
	return s.modify("ForeignKey", func(c *Column) {
		c.ForeignKey = &ForeignKey{Table: table, Column: ref}
	})
}

// After moves the current column out of the table structure and queues it
// as an ADD COLUMN positioned after the named column. The column stays
// current, so later modifiers still apply to the queued definition.
func (s *Schema) After(column string) *Schema {
	return s.modify("After", func(c *Column) {
		s.removeColumn(c.Name)
		s.modifications = append(s.modifications, Modification{
			Kind:       Add,
			Column:     c.Name,
			Definition: c,
			After:      column,
		})
	})
}

// Change queues a MODIFY COLUMN with a snapshot of the current definition.
// The column stays in the structure.
func (s *Schema) Change() *Schema {
	return s.modify("Change", func(c *Column) {
		s.modifications = append(s.modifications, Modification{
			Kind:       Change,
			Column:     c.Name,
			Definition: c.Clone(),
		})
	})
}

func (s *Schema) DropColumn(name string) *Schema {
	s.modifications = append(s.modifications, Modification{Kind: Drop, Column: name})
	return s
}

func (s *Schema) RenameColumn(from, to string) *Schema {
	s.modifications = append(s.modifications, Modification{Kind: Rename, From: from, To: to})
	return s
}

// Index queues a CREATE INDEX over one or more columns.
func (s *Schema) Index(columns ...string) *Schema {
	s.modifications = append(s.modifications, Modification{
		Kind:    Index,
		Columns: append([]string(nil), columns...),
	})
	return s
}

func (s *Schema) removeColumn(name string) {
	for i, c := range s.columns {
		if c.Name == name {
			s.columns = append(s.columns[:i], s.columns[i+1:]...)
			return
		}
	}
}
