package schema

import (
	"context"
	"fmt"
	"strings"

	"github.com/go-relix/relix/logger"
)

// Registry holds every declared entity, keyed by the scope it was
// declared in, plus the catalog of reflected tables and the join tables
// created during the build.
type Registry struct {
	namer  Namer
	logger logger.Interface

	scopes   map[string]map[string]*Entity
	entities []*Entity

	reflected      map[string]*Table
	joinTables     map[string]*Table
	joinTableOrder []*Table

	built bool
}

// NewRegistry creates an empty registry.
func NewRegistry(namer Namer, log logger.Interface) *Registry {
	if namer == nil {
		namer = NamingStrategy{}
	}
	if log == nil {
		log = logger.Default
	}
	return &Registry{
		namer:      namer,
		logger:     log,
		scopes:     map[string]map[string]*Entity{},
		reflected:  map[string]*Table{},
		joinTables: map[string]*Table{},
	}
}

// Namer returns the registry's naming strategy.
func (reg *Registry) Namer() Namer {
	return reg.namer
}

// NewEntity declares an entity in the given scope.
func (reg *Registry) NewEntity(name, scope string, opts ...EntityOption) (*Entity, error) {
	if _, ok := reg.scopes[scope][name]; ok {
		return nil, fmt.Errorf("%w: %s in scope %q", ErrDuplicateEntity, name, scope)
	}

	entity := &Entity{
		Name:         name,
		Scope:        scope,
		registry:     reg,
		namer:        reg.namer,
		fieldsByName: map[string]*Field{},
		stagedIndex:  map[string]*Column{},
		properties:   map[string]*Property{},
		Relationships: Relationships{
			Relations: map[string]*Relationship{},
		},
	}
	for _, opt := range opts {
		opt(entity)
	}
	if entity.TableName == "" {
		entity.TableName = reg.namer.TableName(name)
	} else if !validDBName(entity.TableName) {
		return nil, fmt.Errorf("%w: table name %q for entity %s.%s", ErrInvalidName, entity.TableName, scope, name)
	}

	if reg.scopes[scope] == nil {
		reg.scopes[scope] = map[string]*Entity{}
	}
	reg.scopes[scope][name] = entity
	reg.entities = append(reg.entities, entity)
	return entity, nil
}

// ResolveNameInScope looks up an unqualified entity name in the scope it
// was declared from.
func (reg *Registry) ResolveNameInScope(scope, name string) *Entity {
	return reg.scopes[scope][name]
}

// ResolveQualifiedName looks up a `scope.Name` qualified entity name,
// splitting on the last separator.
func (reg *Registry) ResolveQualifiedName(qualified string) *Entity {
	idx := strings.LastIndex(qualified, ".")
	if idx < 0 {
		return nil
	}
	return reg.scopes[qualified[:idx]][qualified[idx+1:]]
}

// ReflectTable preloads an existing table structure so autoloaded
// entities and join tables can bind to it instead of being created.
func (reg *Registry) ReflectTable(table *Table) {
	reg.reflected[table.Name] = table
}

// ReflectedTable returns a preloaded table structure or nil.
func (reg *Registry) ReflectedTable(name string) *Table {
	return reg.reflected[name]
}

// createJoinTable builds and registers a join table, or returns the
// already-registered table of the same name. Idempotence makes join
// table construction independent of which relationship side runs first.
func (reg *Registry) createJoinTable(name string, columns []*Column, foreignKeys []*ForeignKeyConstraint) *Table {
	if table, ok := reg.joinTables[name]; ok {
		return table
	}
	table := NewTable(name, columns, foreignKeys)
	reg.joinTables[name] = table
	reg.joinTableOrder = append(reg.joinTableOrder, table)
	return table
}

// Entities returns every registered entity in registration order.
func (reg *Registry) Entities() []*Entity {
	return reg.entities
}

// JoinTables returns the join tables created by the build, in creation
// order.
func (reg *Registry) JoinTables() []*Table {
	return reg.joinTableOrder
}

// Tables returns every materialized table: entity tables in registration
// order, then join tables in creation order. Only meaningful after Build.
func (reg *Registry) Tables() []*Table {
	tables := make([]*Table, 0, len(reg.entities)+len(reg.joinTableOrder))
	for _, entity := range reg.entities {
		if !entity.Autoload && entity.table != nil {
			tables = append(tables, entity.table)
		}
	}
	return append(tables, reg.joinTableOrder...)
}

// Build derives the relational schema for the whole entity set. The
// phases run in strict order across all entities: primary-key-affecting
// columns, remaining columns, join tables, table finalization, then the
// object-relation properties. Any failure aborts the build; a partially
// derived schema is never usable.
func (reg *Registry) Build(ctx context.Context) error {
	if reg.built {
		return nil
	}
	reg.logger.Info(ctx, "deriving schema for %d entities", len(reg.entities))

	for _, entity := range reg.entities {
		if err := entity.EnsurePrimaryKeys(); err != nil {
			return reg.fail(ctx, err)
		}
	}
	for _, entity := range reg.entities {
		if err := entity.createNonPrimaryKeys(); err != nil {
			return reg.fail(ctx, err)
		}
	}
	for _, entity := range reg.entities {
		for _, rel := range entity.Relationships.order {
			if err := rel.createJoinTable(); err != nil {
				return reg.fail(ctx, err)
			}
		}
	}
	for _, entity := range reg.entities {
		if err := entity.finalizeTable(); err != nil {
			return reg.fail(ctx, err)
		}
	}
	for _, entity := range reg.entities {
		for _, rel := range entity.Relationships.order {
			if err := rel.createProperty(); err != nil {
				return reg.fail(ctx, err)
			}
		}
	}

	reg.built = true
	reg.logger.Info(ctx, "derived %d tables (%d join tables)", len(reg.Tables()), len(reg.joinTableOrder))
	return nil
}

func (reg *Registry) fail(ctx context.Context, err error) error {
	reg.logger.Error(ctx, "schema derivation failed: %v", err)
	return err
}
