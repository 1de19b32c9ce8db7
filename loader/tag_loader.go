package loader

import (
	"fmt"
	"reflect"
	"strings"
	"time"

	"github.com/go-openapi/inflect"
	"github.com/spf13/cast"

	"github.com/tunaaoguzhann/dataforge/runner"
)

var timeType = reflect.TypeOf(time.Time{})

// FromStruct builds a migration from a struct whose fields carry db tags.
// The table name is derived from the struct name. Untagged fields are skipped.
//
//	type User struct {
//		ID    int       `db:"id,primary,auto_increment"`
//		Email string    `db:"email,length:191,unique"`
//		Bio   *string   `db:"bio,type:text"`
//		Team  int       `db:"team_id,references:teams"`
//		Seen  time.Time `db:"seen_at,default_expr:CURRENT_TIMESTAMP"`
//	}
func FromStruct(model any) (MigrationDef, error) {
	t := reflect.TypeOf(model)
	for t != nil && t.Kind() == reflect.Pointer {
		t = t.Elem()
	}
	if t == nil || t.Kind() != reflect.Struct {
		return MigrationDef{}, fmt.Errorf("model must be a struct, got %T", model)
	}

	def := MigrationDef{Table: TableFromModel(t.Name())}
	for i := 0; i < t.NumField(); i++ {
		field := t.Field(i)
		tag, ok := field.Tag.Lookup("db")
		if !ok || tag == "-" || !field.IsExported() {
			continue
		}
		col, err := parseDBTag(field, tag)
		if err != nil {
			return MigrationDef{}, fmt.Errorf("error parsing tag on %s.%s: %w", t.Name(), field.Name, err)
		}
		def.Columns = append(def.Columns, col)
	}
	if len(def.Columns) == 0 {
		return MigrationDef{}, fmt.Errorf("%s has no db tagged fields", t.Name())
	}
	return def, nil
}

// FromStructs builds one migration per model, keeping the given order.
func FromStructs(models ...any) ([]runner.Migration, error) {
	migrations := make([]runner.Migration, 0, len(models))
	for _, model := range models {
		def, err := FromStruct(model)
		if err != nil {
			return nil, err
		}
		migrations = append(migrations, def)
	}
	return migrations, nil
}

func parseDBTag(field reflect.StructField, tag string) (ColumnDef, error) {
	parts := strings.Split(tag, ",")
	col := ColumnDef{Name: strings.TrimSpace(parts[0])}
	if col.Name == "" {
		col.Name = inflect.Underscore(field.Name)
	}

	ft := field.Type
	if ft.Kind() == reflect.Pointer {
		ft = ft.Elem()
		col.Nullable = true
	}
	col.Type = goType(ft)

	for _, part := range parts[1:] {
		part = strings.TrimSpace(part)
		key, val, hasVal := strings.Cut(part, ":")
		var err error
		switch key {
		case "primary", "primary_key":
			col.PrimaryKey = true
		case "auto_increment":
			col.AutoIncrement = true
		case "unique":
			col.Unique = true
		case "nullable":
			col.Nullable = true
		case "type":
			col.Type = val
		case "length":
			col.Length, err = cast.ToIntE(val)
		case "precision":
			col.Precision, err = cast.ToIntE(val)
		case "scale":
			col.Scale, err = cast.ToIntE(val)
		case "values":
			col.Values = strings.Split(val, "|")
		case "default":
			col.Default = val
		case "default_expr":
			col.DefaultExpr = val
		case "references":
			col.References = val
		case "":
			continue
		default:
			return col, fmt.Errorf("unknown option %q", part)
		}
		if err != nil {
			return col, fmt.Errorf("option %s: %w", key, err)
		}
		if !hasVal && (key == "type" || key == "length" || key == "default") {
			return col, fmt.Errorf("option %s needs a value", key)
		}
	}
	if _, err := ParseType(col.Type); err != nil {
		return col, err
	}
	return col, nil
}

func goType(t reflect.Type) string {
	if t == timeType {
		return "timestamp"
	}
	switch t.Kind() {
	case reflect.Int, reflect.Int8, reflect.Int16, reflect.Int32, reflect.Int64,
		reflect.Uint, reflect.Uint8, reflect.Uint16, reflect.Uint32, reflect.Uint64:
		return "integer"
	case reflect.String:
		return "string"
	case reflect.Bool:
		return "boolean"
	case reflect.Float32, reflect.Float64:
		return "decimal"
	case reflect.Map, reflect.Slice, reflect.Struct:
		return "json"
	}
	return t.Kind().String()
}
