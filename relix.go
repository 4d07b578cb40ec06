// Package relix is a declarative relationship-mapping layer: entities
// declare many-to-one, one-to-many, one-to-one and many-to-many
// association ends, and the build phase derives the relational schema
// behind them (foreign key columns, join tables, join predicates) and
// wires up bidirectional navigation properties.
//
//	reg := relix.New(&relix.Config{})
//	person, _ := reg.NewEntity("Person", "app")
//	person.Field("id", schema.Int, schema.WithPrimaryKey())
//	pet, _ := reg.NewEntity("Pet", "app")
//	pet.Field("id", schema.Int, schema.WithPrimaryKey())
//	relix.ManyToOne("Person").Attach(pet, "owner")
//	err := reg.Build(context.Background())
//
// Derivation runs once, fully, at build time; it either completes or
// fails permanently for that entity set.
package relix

import (
	"github.com/go-relix/relix/logger"
	"github.com/go-relix/relix/schema"
)

// Registry is the entity registry and build entry point.
type Registry = schema.Registry

// Config configures a registry.
type Config struct {
	// NamingStrategy generates table, column and constraint names.
	// Defaults to schema.NamingStrategy{}.
	NamingStrategy schema.Namer
	// Logger receives build progress and failures. Defaults to
	// logger.Default.
	Logger logger.Interface
}

// New creates a registry for declaring entities and relationships.
func New(config *Config) *Registry {
	if config == nil {
		config = &Config{}
	}
	return schema.NewRegistry(config.NamingStrategy, config.Logger)
}

// ManyToOne declares the child side of a parent-child association: the
// owner gets foreign key columns referencing the target's primary key.
func ManyToOne(target string, opts ...schema.RelationshipOption) *schema.Relationship {
	return schema.NewRelationship(schema.BelongsTo, target, opts...)
}

// OneToMany declares the parent side of a parent-child association with
// several children. It cannot exist without a corresponding ManyToOne on
// the target, which creates the foreign key.
func OneToMany(target string, opts ...schema.RelationshipOption) *schema.Relationship {
	return schema.NewRelationship(schema.HasMany, target, opts...)
}

// OneToOne declares the parent side of a parent-child association with a
// single child. Like OneToMany, it needs a ManyToOne counterpart.
func OneToOne(target string, opts ...schema.RelationshipOption) *schema.Relationship {
	return schema.NewRelationship(schema.HasOne, target, opts...)
}

// ManyToMany declares one end of a many-to-many association, backed by a
// join table shared with the inverse end.
func ManyToMany(target string, opts ...schema.RelationshipOption) *schema.Relationship {
	return schema.NewRelationship(schema.Many2Many, target, opts...)
}
