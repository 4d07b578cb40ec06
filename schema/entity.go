package schema

import (
	"fmt"
	"strings"
)

// Entity is one declared row type. Columns and constraints are staged on
// the entity while the build phases run and only become a Table when the
// whole registry finalizes, because primary keys must be settled before
// foreign keys referencing them can be typed.
type Entity struct {
	Name      string
	TableName string
	Scope     string
	Autoload  bool

	registry *Registry
	namer    Namer

	fields       []*Field
	fieldsByName map[string]*Field

	Relationships Relationships

	stagedColumns []*Column
	stagedIndex   map[string]*Column
	foreignKeys   []*ForeignKeyConstraint
	checks        []*CheckConstraint
	properties    map[string]*Property

	table *Table

	pkBuilding bool
	pkDone     bool
}

// Relationships holds an entity's declared relationship descriptors, both
// by kind and in declaration order.
type Relationships struct {
	BelongsTo []*Relationship
	HasOne    []*Relationship
	HasMany   []*Relationship
	Many2Many []*Relationship
	Relations map[string]*Relationship
	order     []*Relationship
}

// EntityOption configures a new entity.
type EntityOption func(*Entity)

// WithTableName overrides the generated table name.
func WithTableName(name string) EntityOption {
	return func(e *Entity) { e.TableName = name }
}

// WithAutoload marks the entity's table as reflected from an existing
// schema instead of created by the build.
func WithAutoload() EntityOption {
	return func(e *Entity) { e.Autoload = true }
}

func (e *Entity) String() string {
	return e.Scope + "." + e.Name
}

// Field declares a plain attribute backed by one column.
func (e *Entity) Field(name string, dataType DataType, opts ...FieldOption) *Field {
	field := &Field{
		Name:     name,
		DataType: dataType,
		Entity:   e,
	}
	for _, opt := range opts {
		opt(field)
	}
	if field.DBName == "" {
		field.DBName = e.namer.ColumnName(e.TableName, name)
	}

	e.fields = append(e.fields, field)
	e.fieldsByName[field.Name] = field
	return field
}

func (e *Entity) addRelationship(rel *Relationship) {
	e.Relationships.Relations[rel.Name] = rel
	e.Relationships.order = append(e.Relationships.order, rel)
	switch rel.Type {
	case BelongsTo:
		e.Relationships.BelongsTo = append(e.Relationships.BelongsTo, rel)
	case HasOne:
		e.Relationships.HasOne = append(e.Relationships.HasOne, rel)
	case HasMany:
		e.Relationships.HasMany = append(e.Relationships.HasMany, rel)
	case Many2Many:
		e.Relationships.Many2Many = append(e.Relationships.Many2Many, rel)
	}
}

// LookupRelationship returns the named relationship descriptor or nil.
func (e *Entity) LookupRelationship(name string) *Relationship {
	return e.Relationships.Relations[name]
}

// AddColumn stages a column for the entity's table.
func (e *Entity) AddColumn(col *Column) {
	e.stagedColumns = append(e.stagedColumns, col)
	e.stagedIndex[col.Name] = col
}

// AddForeignKey stages a foreign key constraint for the entity's table.
func (e *Entity) AddForeignKey(fk *ForeignKeyConstraint) {
	e.foreignKeys = append(e.foreignKeys, fk)
}

func (e *Entity) addCheck(chk *CheckConstraint) {
	e.checks = append(e.checks, chk)
}

// EnsurePrimaryKeys runs the entity's primary-key pass: primary key field
// columns first, then every relationship's primary-key-affecting columns.
// Safe to call more than once; reentering while the pass is still running
// means two entities depend on each other's primary keys, which cannot be
// satisfied.
func (e *Entity) EnsurePrimaryKeys() error {
	if e.pkDone {
		return nil
	}
	if e.pkBuilding {
		return fmt.Errorf("%w involving entity %s", ErrCyclicPrimaryKey, e)
	}
	e.pkBuilding = true
	defer func() { e.pkBuilding = false }()

	if e.Autoload {
		if err := e.bindReflectedTable(); err != nil {
			return err
		}
		e.pkDone = true
		return nil
	}

	for _, field := range e.fields {
		if field.PrimaryKey {
			if err := field.createColumn(); err != nil {
				return err
			}
		}
	}
	for _, rel := range e.Relationships.order {
		if err := rel.createKeys(true); err != nil {
			return err
		}
	}

	e.pkDone = true
	return nil
}

// createNonPrimaryKeys runs the non-primary-key pass.
func (e *Entity) createNonPrimaryKeys() error {
	if e.Autoload {
		// reflected columns already exist; relationships may still need
		// their join clauses resolved
		for _, rel := range e.Relationships.order {
			if err := rel.createKeys(false); err != nil {
				return err
			}
		}
		return nil
	}

	for _, field := range e.fields {
		if !field.PrimaryKey {
			if err := field.createColumn(); err != nil {
				return err
			}
		}
	}
	for _, rel := range e.Relationships.order {
		if err := rel.createKeys(false); err != nil {
			return err
		}
	}
	return nil
}

func (e *Entity) bindReflectedTable() error {
	if e.table != nil {
		return nil
	}
	table := e.registry.ReflectedTable(e.TableName)
	if table == nil {
		return fmt.Errorf("%w: no reflected table %q for entity %s", ErrReflectionMismatch, e.TableName, e)
	}
	e.table = table
	return nil
}

// finalizeTable turns the staged columns and constraints into the
// entity's Table.
func (e *Entity) finalizeTable() error {
	if e.Autoload {
		return e.bindReflectedTable()
	}
	if e.table != nil {
		return nil
	}
	e.table = NewTable(e.TableName, e.stagedColumns, e.foreignKeys)
	e.table.Checks = e.checks
	return nil
}

// Table returns the materialized table, or nil before finalization.
func (e *Entity) Table() *Table {
	return e.table
}

// PrimaryKeyColumns returns the entity's primary key columns in
// declaration order.
func (e *Entity) PrimaryKeyColumns() []*Column {
	if e.Autoload && e.table != nil {
		return e.table.PrimaryKeyColumns()
	}
	var pks []*Column
	for _, col := range e.stagedColumns {
		if col.PrimaryKey {
			pks = append(pks, col)
		}
	}
	return pks
}

// LookupColumn finds a column by field name or column name.
func (e *Entity) LookupColumn(name string) *Column {
	if field, ok := e.fieldsByName[name]; ok && field.column != nil {
		return field.column
	}
	if e.stagedIndex != nil {
		if col, ok := e.stagedIndex[name]; ok {
			return col
		}
	}
	if e.table != nil {
		return e.table.Column(name)
	}
	return nil
}

// TranslateOrderBy resolves order_by field names into column references.
// A minus prefix selects descending order.
func (e *Entity) TranslateOrderBy(fields ...string) ([]OrderByColumn, error) {
	ordering := make([]OrderByColumn, 0, len(fields))
	for _, name := range fields {
		desc := strings.HasPrefix(name, "-")
		name = strings.TrimPrefix(name, "-")

		col := e.LookupColumn(name)
		if col == nil {
			return nil, fmt.Errorf("%w %q in order_by for entity %s", ErrUnknownColumn, name, e)
		}
		ordering = append(ordering, OrderByColumn{Column: col, Desc: desc})
	}
	return ordering, nil
}

func (e *Entity) addProperty(name string, prop *Property) {
	e.properties[name] = prop
}

// Property returns the materialized object-relation property for the
// named relationship, if this side built one.
func (e *Entity) Property(name string) *Property {
	return e.properties[name]
}
