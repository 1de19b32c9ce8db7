package schema

// Type is a logical column type.
type Type string

const (
	Integer   Type = "integer"
	Varchar   Type = "varchar"
	Text      Type = "text"
	Timestamp Type = "timestamp"
	Datetime  Type = "datetime"
	Date      Type = "date"
	Decimal   Type = "decimal"
	Boolean   Type = "boolean"
	JSON      Type = "json"
	Enum      Type = "enum"
)

const (
	DefaultStringLength = 255
	DefaultPrecision    = 10
	DefaultScale        = 2
)

// Expr is a default value rendered verbatim, e.g. Expr("CURRENT_TIMESTAMP").
type Expr string

type ForeignKey struct {
	Table  string
	Column string
}

// Column describes a single column definition.
type Column struct {
	Name          string
	Type          Type
	Length        int
	Precision     int
	Scale         int
	Nullable      bool
	Unique        bool
	Default       any
	HasDefault    bool
	PrimaryKey    bool
	AutoIncrement bool
	ForeignKey    *ForeignKey
	Values        []string // enum values
}

// Clone returns a deep copy of c.
func (c *Column) Clone() *Column {
	if c == nil {
		return nil
	}
	out := *c
	if c.ForeignKey != nil {
		fk := *c.ForeignKey
		out.ForeignKey = &fk
	}
	if c.Values != nil {
		out.Values = append([]string(nil), c.Values...)
	}
	return &out
}

type ModificationKind string

const (
	Add    ModificationKind = "add"
	Change ModificationKind = "change"
	Drop   ModificationKind = "drop"
	Rename ModificationKind = "rename"
	Index  ModificationKind = "index"
)

// Modification is one alteration queued against an existing table.
type Modification struct {
	Kind       ModificationKind
	Column     string  // add, change, drop
	Definition *Column // add, change
	After      string  // add, change
	From       string  // rename
	To         string  // rename
	Columns    []string
}
