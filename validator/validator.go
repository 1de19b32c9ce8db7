// Package validator checks migration definitions for a dialect without
// connecting to a database.
package validator

import (
	"fmt"
	"strings"

	"github.com/tunaaoguzhann/dataforge/dialect"
	"github.com/tunaaoguzhann/dataforge/generator"
	"github.com/tunaaoguzhann/dataforge/runner"
	"github.com/tunaaoguzhann/dataforge/schema"
)

// ValidationError represents a validation error with details
type ValidationError struct {
	Type     string `json:"type"`
	Table    string `json:"table,omitempty"`
	Column   string `json:"column,omitempty"`
	Index    string `json:"index,omitempty"`
	Message  string `json:"message"`
	Severity string `json:"severity"` // "error", "warning", "info"
}

// ValidationResult contains all validation results
type ValidationResult struct {
	Valid    bool              `json:"valid"`
	Errors   []ValidationError `json:"errors"`
	Warnings []ValidationError `json:"warnings"`
	Info     []ValidationError `json:"info"`
}

func (r *ValidationResult) addError(e ValidationError) {
	e.Severity = "error"
	r.Errors = append(r.Errors, e)
}

func (r *ValidationResult) addWarning(e ValidationError) {
	e.Severity = "warning"
	r.Warnings = append(r.Warnings, e)
}

func (r *ValidationResult) addInfo(e ValidationError) {
	e.Severity = "info"
	r.Info = append(r.Info, e)
}

// SchemaValidator validates migrations against the rules of one dialect.
type SchemaValidator struct {
	dialect dialect.Dialect
	gen     *generator.Generator
}

func NewSchemaValidator(d dialect.Dialect) *SchemaValidator {
	return &SchemaValidator{dialect: d, gen: generator.New(d)}
}

// table is what one migration declares after running its Up step.
type table struct {
	name    string
	schema  *schema.Schema
	columns map[string]*schema.Column
	order   []string
}

func (t *table) declare(c *schema.Column) {
	if _, ok := t.columns[c.Name]; !ok {
		t.order = append(t.order, c.Name)
	}
	t.columns[c.Name] = c
}

// Validate runs every migration's Up step and reports problems.
func (v *SchemaValidator) Validate(migrations []runner.Migration) *ValidationResult {
	result := &ValidationResult{
		Valid:    true,
		Errors:   []ValidationError{},
		Warnings: []ValidationError{},
		Info:     []ValidationError{},
	}

	if v.dialect != dialect.MySQL && v.dialect != dialect.Postgres {
		result.addError(ValidationError{
			Type:    "dialect",
			Message: fmt.Sprintf("Migrations cannot be applied on dialect '%s' (mysql and pgsql only)", v.dialect),
		})
	}

	tables := make([]*table, 0, len(migrations))
	for _, m := range migrations {
		t := &table{name: m.TableName(), schema: schema.New(m.TableName()), columns: map[string]*schema.Column{}}
		m.Up(t.schema)
		tables = append(tables, t)
		v.validateTable(t, result)
	}

	v.validateCrossTableConstraints(tables, result)

	result.Valid = len(result.Errors) == 0
	return result
}

func (v *SchemaValidator) validateTable(t *table, result *ValidationResult) {
	if err := v.validateIdentifier("table", t.name); err != nil {
		result.addError(ValidationError{Type: "table_name", Table: t.name, Message: err.Error()})
	}

	if err := t.schema.Err(); err != nil {
		result.addError(ValidationError{Type: "schema_usage", Table: t.name, Message: err.Error()})
	}

	structure := t.schema.Structure()
	mods := t.schema.Modifications()
	if len(structure) == 0 && len(mods) == 0 {
		result.addWarning(ValidationError{
			Type:    "empty_migration",
			Table:   t.name,
			Message: fmt.Sprintf("Migration for '%s' declares nothing", t.name),
		})
		return
	}

	v.validateColumns(t, structure, result)

	for _, mod := range mods {
		switch mod.Kind {
		case schema.Add:
			if _, dup := t.columns[mod.Column]; dup {
				result.addError(ValidationError{
					Type:    "duplicate_column",
					Table:   t.name,
					Column:  mod.Column,
					Message: fmt.Sprintf("Column '%s' is both created and added in table '%s'", mod.Column, t.name),
				})
				continue
			}
			v.validateColumn(t, mod.Definition, result)
			t.declare(mod.Definition)
		case schema.Change:
			v.validateColumn(t, mod.Definition, result)
		case schema.Rename:
			if v.dialect == dialect.MySQL {
				result.addInfo(ValidationError{
					Type:    "rename_introspection",
					Table:   t.name,
					Column:  mod.From,
					Message: fmt.Sprintf("Renaming '%s' reads its live definition from the database", mod.From),
				})
			}
			if err := v.validateIdentifier("column", mod.To); err != nil {
				result.addError(ValidationError{Type: "column_name", Table: t.name, Column: mod.To, Message: err.Error()})
			}
		case schema.Index:
			v.validateIndex(t, mod.Columns, result)
		}
	}
}

// validateColumns validates the columns of the initial CREATE TABLE
func (v *SchemaValidator) validateColumns(t *table, structure []*schema.Column, result *ValidationResult) {
	if len(structure) == 0 {
		return
	}

	hasPrimaryKey := false
	autoIncrement := 0
	for _, c := range structure {
		t.declare(c)
		v.validateColumn(t, c, result)

		if c.PrimaryKey {
			hasPrimaryKey = true
		}
		if c.AutoIncrement {
			autoIncrement++
		}
	}

	if !hasPrimaryKey {
		result.addWarning(ValidationError{
			Type:    "no_primary_key",
			Table:   t.name,
			Message: fmt.Sprintf("Table '%s' has no primary key defined", t.name),
		})
	}
	if autoIncrement > 1 {
		result.addError(ValidationError{
			Type:    "auto_increment",
			Table:   t.name,
			Message: fmt.Sprintf("Table '%s' has %d auto-increment columns, at most one is allowed", t.name, autoIncrement),
		})
	}
}

func (v *SchemaValidator) validateColumn(t *table, c *schema.Column, result *ValidationResult) {
	if err := v.validateIdentifier("column", c.Name); err != nil {
		result.addError(ValidationError{Type: "column_name", Table: t.name, Column: c.Name, Message: err.Error()})
	}

	if _, err := v.gen.ColumnDefinition(c); err != nil {
		result.addError(ValidationError{Type: "data_type", Table: t.name, Column: c.Name, Message: err.Error()})
	}

	if c.AutoIncrement && c.Type != schema.Integer {
		result.addError(ValidationError{
			Type:    "auto_increment",
			Table:   t.name,
			Column:  c.Name,
			Message: fmt.Sprintf("Auto-increment column '%s' must be an integer, got %s", c.Name, c.Type),
		})
	}

	if c.HasDefault {
		if err := v.validateDefaultValue(c); err != nil {
			result.addWarning(ValidationError{Type: "default_value", Table: t.name, Column: c.Name, Message: err.Error()})
		}
	}

	if c.Type == schema.Enum && len(c.Values) == 0 {
		result.addError(ValidationError{
			Type:    "enum_values",
			Table:   t.name,
			Column:  c.Name,
			Message: fmt.Sprintf("Enum column '%s' has no values", c.Name),
		})
	}
}

func (v *SchemaValidator) validateIndex(t *table, columns []string, result *ValidationResult) {
	name := generator.IndexName(t.name, columns)
	if len(columns) == 0 {
		result.addError(ValidationError{Type: "index", Table: t.name, Index: name, Message: "Index has no columns"})
		return
	}
	if limit := v.maxIdentifier(); len(name) > limit {
		result.addWarning(ValidationError{
			Type:    "index_name",
			Table:   t.name,
			Index:   name,
			Message: fmt.Sprintf("Index name '%s' is longer than %d characters", name, limit),
		})
	}
	for _, col := range columns {
		if _, ok := t.columns[col]; !ok {
			result.addInfo(ValidationError{
				Type:    "index_column",
				Table:   t.name,
				Column:  col,
				Index:   name,
				Message: fmt.Sprintf("Index column '%s' is not declared here and must already exist", col),
			})
		}
	}
}

// validateDefaultValue checks that a literal default fits the column type.
func (v *SchemaValidator) validateDefaultValue(c *schema.Column) error {
	if _, ok := c.Default.(schema.Expr); ok || c.Default == nil {
		return nil
	}
	switch c.Type {
	case schema.Boolean:
		if _, ok := c.Default.(bool); !ok {
			return fmt.Errorf("default for boolean column '%s' should be true or false", c.Name)
		}
	case schema.Integer:
		switch c.Default.(type) {
		case int, int8, int16, int32, int64, uint, uint8, uint16, uint32, uint64:
		default:
			return fmt.Errorf("default for integer column '%s' is not an integer", c.Name)
		}
	case schema.Text, schema.JSON:
		if v.dialect == dialect.MySQL {
			return fmt.Errorf("MySQL does not allow a literal default on %s column '%s'", c.Type, c.Name)
		}
	case schema.Enum:
		s, ok := c.Default.(string)
		if !ok || !contains(c.Values, s) {
			return fmt.Errorf("default for enum column '%s' is not one of %s", c.Name, strings.Join(c.Values, ", "))
		}
	}
	return nil
}

// validateCrossTableConstraints validates constraints across tables
func (v *SchemaValidator) validateCrossTableConstraints(tables []*table, result *ValidationResult) {
	byName := make(map[string]*table, len(tables))
	for _, t := range tables {
		byName[t.name] = t
	}

	for _, t := range tables {
		for _, name := range t.order {
			c := t.columns[name]
			fk := c.ForeignKey
			if fk == nil {
				continue
			}
			ref, ok := byName[fk.Table]
			if !ok {
				result.addWarning(ValidationError{
					Type:    "foreign_key_table_not_found",
					Table:   t.name,
					Column:  c.Name,
					Message: fmt.Sprintf("Foreign key references table '%s' which no migration declares", fk.Table),
				})
				continue
			}
			if _, ok := ref.columns[fk.Column]; !ok {
				result.addError(ValidationError{
					Type:    "foreign_key_column_not_found",
					Table:   t.name,
					Column:  c.Name,
					Message: fmt.Sprintf("Foreign key references non-existent column '%s' in table '%s'", fk.Column, fk.Table),
				})
			}
		}
	}
}

var reservedKeywords = []string{"user", "order", "group", "table", "index", "view", "schema", "select", "from", "where"}

func (v *SchemaValidator) validateIdentifier(kind, name string) error {
	if name == "" {
		return fmt.Errorf("%s name cannot be empty", kind)
	}
	if limit := v.maxIdentifier(); len(name) > limit {
		return fmt.Errorf("%s name '%s' is too long (max %d characters)", kind, name, limit)
	}
	for _, char := range name {
		if !((char >= 'a' && char <= 'z') || (char >= 'A' && char <= 'Z') || (char >= '0' && char <= '9') || char == '_') {
			return fmt.Errorf("%s name '%s' contains invalid character '%c'", kind, name, char)
		}
	}
	if contains(reservedKeywords, strings.ToLower(name)) {
		return fmt.Errorf("%s name '%s' is a reserved keyword", kind, name)
	}
	return nil
}

func (v *SchemaValidator) maxIdentifier() int {
	switch v.dialect {
	case dialect.MySQL:
		return 64
	case dialect.SQLServer:
		return 128
	}
	return 63
}

func contains(list []string, s string) bool {
	for _, item := range list {
		if item == s {
			return true
		}
	}
	return false
}
