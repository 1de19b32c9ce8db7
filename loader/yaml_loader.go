// Package loader reads migration and seed definitions from YAML files and
// tagged Go structs.
package loader

import (
	"context"
	"fmt"
	"os"
	"strings"

	"github.com/go-openapi/inflect"
	"gopkg.in/yaml.v3"

	"github.com/tunaaoguzhann/dataforge/database"
	"github.com/tunaaoguzhann/dataforge/runner"
	"github.com/tunaaoguzhann/dataforge/schema"
	"github.com/tunaaoguzhann/dataforge/seeder"
)

type migrationFile struct {
	Migrations []MigrationDef `yaml:"migrations"`
}

type seedFile struct {
	Seeds []SeedDef `yaml:"seeds"`
}

// MigrationDef is one table entry of a migrations file.
type MigrationDef struct {
	Table   string      `yaml:"table"`
	Model   string      `yaml:"model"`
	Columns []ColumnDef `yaml:"columns"`
	Drop    []string    `yaml:"drop"`
	Rename  []RenameDef `yaml:"rename"`
	Indexes [][]string  `yaml:"indexes"`
	Seed    *SeedDef    `yaml:"seed"`
}

type ColumnDef struct {
	Name          string   `yaml:"name"`
	Type          string   `yaml:"type"`
	Length        int      `yaml:"length"`
	Precision     int      `yaml:"precision"`
	Scale         int      `yaml:"scale"`
	Values        []string `yaml:"values"`
	Nullable      bool     `yaml:"nullable"`
	Unique        bool     `yaml:"unique"`
	Default       any      `yaml:"default"`
	DefaultExpr   string   `yaml:"default_expr"`
	PrimaryKey    bool     `yaml:"primary_key"`
	AutoIncrement bool     `yaml:"auto_increment"`
	References    string   `yaml:"references"` // table or table.column
	After         string   `yaml:"after"`
	Change        bool     `yaml:"change"`
}

type RenameDef struct {
	From string `yaml:"from"`
	To   string `yaml:"to"`
}

// SeedDef maps columns to fake kinds understood by seeder.Generator.Fake.
type SeedDef struct {
	Table  string            `yaml:"table"`
	Count  int               `yaml:"count"`
	Fields map[string]string `yaml:"fields"`
}

// TableName returns the explicit table, or the pluralized snake case of Model.
func (m MigrationDef) TableName() string {
	if m.Table != "" {
		return m.Table
	}
	return TableFromModel(m.Model)
}

// Up declares columns first, then drops, renames and indexes.
func (m MigrationDef) Up(s *schema.Schema) {
	for _, c := range m.Columns {
		s.Declare(c.Column())
		if c.After != "" {
			s.After(c.After)
		}
		if c.Change {
			s.Change()
		}
	}
	for _, name := range m.Drop {
		s.DropColumn(name)
	}
	for _, r := range m.Rename {
		s.RenameColumn(r.From, r.To)
	}
	for _, cols := range m.Indexes {
		s.Index(cols...)
	}
}

// Column converts the entry to a schema column. Unknown types are kept
// as written so DDL rendering reports them.
func (c ColumnDef) Column() *schema.Column {
	typ, err := ParseType(c.Type)
	if err != nil {
		typ = schema.Type(c.Type)
	}
	col := &schema.Column{
		Name:          c.Name,
		Type:          typ,
		Length:        c.Length,
		Precision:     c.Precision,
		Scale:         c.Scale,
		Nullable:      c.Nullable,
		Unique:        c.Unique,
		PrimaryKey:    c.PrimaryKey,
		AutoIncrement: c.AutoIncrement,
	}
	if typ == schema.Varchar && col.Length == 0 {
		col.Length = schema.DefaultStringLength
	}
	if typ == schema.Enum {
		col.Values = append([]string(nil), c.Values...)
	}
	switch {
	case c.DefaultExpr != "":
		col.Default, col.HasDefault = schema.Expr(c.DefaultExpr), true
	case c.Default != nil:
		col.Default, col.HasDefault = c.Default, true
	}
	if c.References != "" {
		table, ref, _ := strings.Cut(c.References, ".")
		if ref == "" {
			ref = "id"
		}
		col.ForeignKey = &schema.ForeignKey{Table: table, Column: ref}
	}
	return col
}

// ParseType maps a type name and its common aliases to a schema type.
func ParseType(name string) (schema.Type, error) {
	switch strings.ToLower(strings.TrimSpace(name)) {
	case "integer", "int", "bigint":
		return schema.Integer, nil
	case "string", "varchar":
		return schema.Varchar, nil
	case "text":
		return schema.Text, nil
	case "timestamp":
		return schema.Timestamp, nil
	case "datetime":
		return schema.Datetime, nil
	case "date":
		return schema.Date, nil
	case "decimal", "float", "numeric":
		return schema.Decimal, nil
	case "boolean", "bool":
		return schema.Boolean, nil
	case "json", "jsonb":
		return schema.JSON, nil
	case "enum":
		return schema.Enum, nil
	}
	return "", fmt.Errorf("unknown column type %q", name)
}

// TableFromModel turns a model name such as "BlogPost" into "blog_posts".
func TableFromModel(model string) string {
	return inflect.Pluralize(inflect.Underscore(model))
}

type seededMigration struct {
	MigrationDef
	def   seeder.Definition
	count int
}

func (m seededMigration) Seed(ctx context.Context, qb *database.QueryBuilder) error {
	return seeder.NewFactory(qb.Connection(), nil).Create(ctx, m.TableName(), m.def, m.count)
}

// LoadMigrations reads a migrations file. Entries with a seed block also
// implement runner.Seeder.
func LoadMigrations(filename string) ([]runner.Migration, error) {
	data, err := os.ReadFile(filename)
	if err != nil {
		return nil, fmt.Errorf("reading migrations file: %w", err)
	}
	defs, err := ParseMigrations(data)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", filename, err)
	}

	migrations := make([]runner.Migration, 0, len(defs))
	for _, d := range defs {
		if d.Seed == nil {
			migrations = append(migrations, d)
			continue
		}
		def, err := seeder.KindDefinition(d.Seed.Fields)
		if err != nil {
			return nil, fmt.Errorf("seed for %s: %w", d.TableName(), err)
		}
		migrations = append(migrations, seededMigration{MigrationDef: d, def: def, count: d.Seed.Count})
	}
	return migrations, nil
}

// ParseMigrations decodes migration definitions and checks that every
// entry names a table.
func ParseMigrations(data []byte) ([]MigrationDef, error) {
	var mf migrationFile
	if err := yaml.Unmarshal(data, &mf); err != nil {
		return nil, fmt.Errorf("unmarshalling YAML: %w", err)
	}
	for i, d := range mf.Migrations {
		if d.TableName() == "" {
			return nil, fmt.Errorf("migration #%d: table or model is required", i+1)
		}
	}
	return mf.Migrations, nil
}

type fileSeeder struct {
	seeder.Base
	table string
	def   seeder.Definition
	count int
}

func (s fileSeeder) Run(ctx context.Context) error {
	return s.Factory.Create(ctx, s.table, s.def, s.count)
}

// LoadSeeds reads a seeds file into seeders bound to conn.
func LoadSeeds(filename string, conn *database.Connection) ([]seeder.Seeder, error) {
	data, err := os.ReadFile(filename)
	if err != nil {
		return nil, fmt.Errorf("reading seeds file: %w", err)
	}
	var sf seedFile
	if err := yaml.Unmarshal(data, &sf); err != nil {
		return nil, fmt.Errorf("unmarshalling YAML: %w", err)
	}

	seeders := make([]seeder.Seeder, 0, len(sf.Seeds))
	for i, sd := range sf.Seeds {
		if sd.Table == "" {
			return nil, fmt.Errorf("seed #%d: table is required", i+1)
		}
		def, err := seeder.KindDefinition(sd.Fields)
		if err != nil {
			return nil, fmt.Errorf("seed for %s: %w", sd.Table, err)
		}
		seeders = append(seeders, fileSeeder{Base: seeder.NewBase(conn), table: sd.Table, def: def, count: sd.Count})
	}
	return seeders, nil
}
