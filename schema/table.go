package schema

import (
	"fmt"
	"strings"
)

// DataType relix data type
type DataType string

const (
	Bool   DataType = "bool"
	Int    DataType = "int"
	Uint   DataType = "uint"
	Float  DataType = "float"
	String DataType = "string"
	Time   DataType = "time"
	Bytes  DataType = "bytes"
	UUID   DataType = "uuid"
)

// Column is one materialized table column.
type Column struct {
	Name       string
	DataType   DataType
	Size       int
	PrimaryKey bool
	Nullable   bool
	Unique     bool
	Index      bool
	Default    string
	HasDefault bool
	Table      *Table
}

// FullName returns the column name qualified with its table name.
func (c *Column) FullName() string {
	if c.Table != nil {
		return c.Table.Name + "." + c.Name
	}
	return c.Name
}

// ForeignKeyRef is one `table.column` path referenced by a foreign key.
type ForeignKeyRef struct {
	Table  string
	Column string
}

func (ref ForeignKeyRef) String() string {
	return ref.Table + "." + ref.Column
}

// ParseForeignKeyRef splits a `table.column` path on its last separator.
func ParseForeignKeyRef(path string) (ForeignKeyRef, error) {
	idx := strings.LastIndex(path, ".")
	if idx <= 0 || idx == len(path)-1 {
		return ForeignKeyRef{}, fmt.Errorf("invalid foreign key reference %q", path)
	}
	return ForeignKeyRef{Table: path[:idx], Column: path[idx+1:]}, nil
}

// ForeignKeyConstraint groups the foreign key columns of one relationship.
// Columns and References are index-paired and keep creation order.
type ForeignKeyConstraint struct {
	Name       string
	Columns    []string
	References []ForeignKeyRef
	OnDelete   string
	OnUpdate   string
	UseAlter   bool
}

// ReferencesTable reports whether every referenced column belongs to table.
func (fk *ForeignKeyConstraint) ReferencesTable(table *Table) bool {
	if len(fk.References) == 0 {
		return false
	}
	for _, ref := range fk.References {
		if ref.Table != table.Name {
			return false
		}
	}
	return true
}

// CheckConstraint is a named CHECK expression on one column.
type CheckConstraint struct {
	Name       string
	Constraint string // length(phone) >= 10
	Column     string
}

// Table is the materialized form of an entity or join table.
type Table struct {
	Name        string
	Columns     []*Column
	ForeignKeys []*ForeignKeyConstraint
	Checks      []*CheckConstraint
	columnIndex map[string]*Column
}

// NewTable builds a table and binds the given columns to it.
func NewTable(name string, columns []*Column, foreignKeys []*ForeignKeyConstraint) *Table {
	table := &Table{
		Name:        name,
		ForeignKeys: foreignKeys,
		columnIndex: make(map[string]*Column, len(columns)),
	}
	for _, col := range columns {
		table.AddColumn(col)
	}
	return table
}

// AddColumn appends a column and claims ownership of it.
func (t *Table) AddColumn(col *Column) {
	if t.columnIndex == nil {
		t.columnIndex = map[string]*Column{}
	}
	col.Table = t
	t.Columns = append(t.Columns, col)
	t.columnIndex[col.Name] = col
}

// Column returns the named column or nil.
func (t *Table) Column(name string) *Column {
	if t.columnIndex == nil {
		return nil
	}
	return t.columnIndex[name]
}

// PrimaryKeyColumns returns the primary key columns in declaration order.
func (t *Table) PrimaryKeyColumns() []*Column {
	var pks []*Column
	for _, col := range t.Columns {
		if col.PrimaryKey {
			pks = append(pks, col)
		}
	}
	return pks
}
