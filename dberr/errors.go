// Package dberr holds the error types shared by the dataforge packages.
package dberr

import (
	"errors"
	"fmt"
	"strings"
)

var (
	// ErrNoTable is returned when a terminal query operation runs before Table was called.
	ErrNoTable = errors.New("dataforge: no table selected")

	// ErrEmptyRecords is returned by bulk inserts given no records.
	ErrEmptyRecords = errors.New("dataforge: no records to insert")

	// ErrColumnNotFound is returned when metadata lookup finds no such column.
	ErrColumnNotFound = errors.New("dataforge: column not found")

	// ErrNoCurrentColumn is returned when a schema modifier runs before any column method.
	ErrNoCurrentColumn = errors.New("dataforge: no current column")

	// ErrValueCount is returned when positional values do not match the target columns.
	ErrValueCount = errors.New("dataforge: value count does not match column count")
)

// ConnectionError reports a bad configuration or an unreachable database.
type ConnectionError struct {
	Driver string
	Err    error
}

func (e *ConnectionError) Error() string {
	return fmt.Sprintf("dataforge: connect %s: %v", e.Driver, e.Err)
}

func (e *ConnectionError) Unwrap() error { return e.Err }

// UnsupportedDialectError reports an operation attempted on a dialect the
// component does not branch for.
type UnsupportedDialectError struct {
	Dialect   string
	Operation string
}

func (e *UnsupportedDialectError) Error() string {
	if e.Operation == "" {
		return fmt.Sprintf("dataforge: unsupported dialect %q", e.Dialect)
	}
	return fmt.Sprintf("dataforge: %s is not supported for dialect %q", e.Operation, e.Dialect)
}

// UnsupportedColumnTypeError reports a column type with no mapping for a dialect.
type UnsupportedColumnTypeError struct {
	Column  string
	Type    string
	Dialect string
}

func (e *UnsupportedColumnTypeError) Error() string {
	return fmt.Sprintf("dataforge: unsupported column type %q for column %q (dialect %s)", e.Type, e.Column, e.Dialect)
}

// SchemaUsageError reports a schema modifier called without a current column.
type SchemaUsageError struct {
	Table  string
	Method string
}

func (e *SchemaUsageError) Error() string {
	return fmt.Sprintf("dataforge: schema %s: %s called before any column was declared", e.Table, e.Method)
}

func (e *SchemaUsageError) Unwrap() error { return ErrNoCurrentColumn }

// ExecutionError reports a statement rejected by the driver.
type ExecutionError struct {
	Query string
	// Code is the driver specific error code (SQLSTATE or vendor number), if known.
	Code string
	Err  error
}

func (e *ExecutionError) Error() string {
	var b strings.Builder
	b.WriteString("dataforge: exec")
	if e.Code != "" {
		b.WriteString(" [")
		b.WriteString(e.Code)
		b.WriteString("]")
	}
	if e.Query != "" {
		b.WriteString(" ")
		b.WriteString(e.Query)
	}
	b.WriteString(": ")
	b.WriteString(e.Err.Error())
	return b.String()
}

func (e *ExecutionError) Unwrap() error { return e.Err }

// IsConnection reports whether err is a ConnectionError.
func IsConnection(err error) bool {
	var e *ConnectionError
	return errors.As(err, &e)
}

// IsUnsupportedDialect reports whether err is an UnsupportedDialectError.
func IsUnsupportedDialect(err error) bool {
	var e *UnsupportedDialectError
	return errors.As(err, &e)
}

// IsUnsupportedColumnType reports whether err is an UnsupportedColumnTypeError.
func IsUnsupportedColumnType(err error) bool {
	var e *UnsupportedColumnTypeError
	return errors.As(err, &e)
}

// IsSchemaUsage reports whether err is a SchemaUsageError.
func IsSchemaUsage(err error) bool {
	var e *SchemaUsageError
	return errors.As(err, &e)
}

// IsExecution reports whether err is an ExecutionError.
func IsExecution(err error) bool {
	var e *ExecutionError
	return errors.As(err, &e)
}
