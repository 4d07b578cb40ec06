package schema

import (
	"fmt"
	"strings"

	"github.com/google/uuid"
	"github.com/jinzhu/now"
)

// Field is a plain (non-relationship) entity attribute backed by one column.
type Field struct {
	Name       string
	DBName     string
	DataType   DataType
	Size       int
	PrimaryKey bool
	Nullable   bool
	Unique     bool
	Index      bool
	Default    string
	HasDefault bool
	Check      string
	Entity     *Entity
	column     *Column
}

// FieldOption configures a declared field.
type FieldOption func(*Field)

// WithPrimaryKey marks the field as part of the primary key.
func WithPrimaryKey() FieldOption {
	return func(f *Field) { f.PrimaryKey = true }
}

// WithNullable allows NULL values for the field.
func WithNullable() FieldOption {
	return func(f *Field) { f.Nullable = true }
}

// WithUnique adds a unique constraint on the field.
func WithUnique() FieldOption {
	return func(f *Field) { f.Unique = true }
}

// WithIndex creates an index on the field.
func WithIndex() FieldOption {
	return func(f *Field) { f.Index = true }
}

// WithSize sets the column size.
func WithSize(size int) FieldOption {
	return func(f *Field) { f.Size = size }
}

// WithDefault sets the column default value.
func WithDefault(value string) FieldOption {
	return func(f *Field) {
		f.Default = value
		f.HasDefault = true
	}
}

// WithCheck attaches a CHECK expression to the field's column.
func WithCheck(expr string) FieldOption {
	return func(f *Field) { f.Check = expr }
}

// WithColumnName overrides the generated column name.
func WithColumnName(name string) FieldOption {
	return func(f *Field) { f.DBName = name }
}

// validateDefault rejects default values that cannot be represented in the
// field's data type. Parenthesized defaults are SQL expressions and are
// passed through untouched.
func (f *Field) validateDefault() error {
	if !f.HasDefault || strings.Contains(f.Default, "(") {
		return nil
	}

	switch f.DataType {
	case Time:
		if _, err := now.Parse(f.Default); err != nil {
			return fmt.Errorf("%w %q for time field %s.%s", ErrInvalidDefault, f.Default, f.Entity.Name, f.Name)
		}
	case UUID:
		if _, err := uuid.Parse(f.Default); err != nil {
			return fmt.Errorf("%w %q for uuid field %s.%s", ErrInvalidDefault, f.Default, f.Entity.Name, f.Name)
		}
	}
	return nil
}

// createColumn stages the field's column on its entity. Called once per
// field, in the primary-key pass for primary key fields and in the
// non-primary-key pass for the rest.
func (f *Field) createColumn() error {
	if f.column != nil {
		return nil
	}
	if !validDBName(f.DBName) {
		return fmt.Errorf("%w: column name %q for field %s.%s", ErrInvalidName, f.DBName, f.Entity.Name, f.Name)
	}
	if err := f.validateDefault(); err != nil {
		return err
	}

	f.column = &Column{
		Name:       f.DBName,
		DataType:   f.DataType,
		Size:       f.Size,
		PrimaryKey: f.PrimaryKey,
		Nullable:   f.Nullable && !f.PrimaryKey,
		Unique:     f.Unique,
		Index:      f.Index,
		Default:    f.Default,
		HasDefault: f.HasDefault,
	}
	f.Entity.AddColumn(f.column)

	if f.Check != "" {
		f.Entity.addCheck(&CheckConstraint{
			Name:       f.Entity.namer.CheckerName(f.Entity.TableName, f.DBName),
			Constraint: f.Check,
			Column:     f.DBName,
		})
	}
	return nil
}

// Column returns the materialized column of the field, or nil before the
// build phases ran.
func (f *Field) Column() *Column {
	return f.column
}
