package schema

import (
	"fmt"
	"strings"
)

// RelationshipType relationship type
type RelationshipType string

const (
	BelongsTo RelationshipType = "belongs_to"   // many to one
	HasOne    RelationshipType = "has_one"      // one to one
	HasMany   RelationshipType = "has_many"     // one to many
	Many2Many RelationshipType = "many_to_many" // many to many
)

// inverseKinds is the kind-compatibility table: which relationship types
// can serve as the inverse of which.
var inverseKinds = map[RelationshipType]map[RelationshipType]bool{
	BelongsTo: {HasMany: true, HasOne: true},
	HasOne:    {BelongsTo: true},
	HasMany:   {BelongsTo: true},
	Many2Many: {Many2Many: true},
}

// ColumnOptions configures the foreign key columns a many-to-one
// relationship creates.
type ColumnOptions struct {
	Required   bool
	PrimaryKey bool
	NoIndex    bool
}

// ConstraintOptions configures the created foreign key constraint.
type ConstraintOptions struct {
	Name     string
	UseAlter bool
	OnDelete string
	OnUpdate string
}

// Relationship is one declared association end. The kind-specific state
// (foreign key columns for many-to-one, the join table for many-to-many)
// lives on the same struct; behavior dispatches on Type.
type Relationship struct {
	Name        string
	Type        RelationshipType
	Entity      *Entity
	TargetName  string
	InverseName string
	Options     map[string]interface{}

	// many-to-one
	ColumnNames       []string
	ColumnOptions     ColumnOptions
	ConstraintOptions ConstraintOptions
	ForeignKeyColumns []*Column
	PrimaryJoin       []JoinClause

	// many-to-many
	JoinTableName   string
	LocalSide       []string
	RemoteSide      []string
	JoinColumnNamer func(table, primaryKey, entity string) string
	JoinTable       *Table
	SecondaryJoin   []JoinClause

	OrderBy []string

	target   *Entity
	inverse  *Relationship
	property *Property
	backref  *Backref
}

// RelationshipOption configures a relationship declaration.
type RelationshipOption func(*Relationship)

// WithInverse names the counterpart relationship on the target entity,
// needed when matching is ambiguous.
func WithInverse(name string) RelationshipOption {
	return func(r *Relationship) { r.InverseName = name }
}

// WithColumns overrides the generated foreign key column names.
func WithColumns(names ...string) RelationshipOption {
	return func(r *Relationship) { r.ColumnNames = names }
}

// Required forbids NULL in the created foreign key columns.
func Required() RelationshipOption {
	return func(r *Relationship) { r.ColumnOptions.Required = true }
}

// AsPrimaryKey makes the created foreign key columns part of the owner's
// primary key.
func AsPrimaryKey() RelationshipOption {
	return func(r *Relationship) { r.ColumnOptions.PrimaryKey = true }
}

// WithoutIndex skips the index created on foreign key columns by default.
func WithoutIndex() RelationshipOption {
	return func(r *Relationship) { r.ColumnOptions.NoIndex = true }
}

// WithConstraintName overrides the generated foreign key constraint name.
func WithConstraintName(name string) RelationshipOption {
	return func(r *Relationship) { r.ConstraintOptions.Name = name }
}

// WithUseAlter defers the foreign key constraint to a separate ALTER
// statement, allowing circular table dependencies.
func WithUseAlter() RelationshipOption {
	return func(r *Relationship) { r.ConstraintOptions.UseAlter = true }
}

// OnDelete sets the constraint's ON DELETE rule.
func OnDelete(rule string) RelationshipOption {
	return func(r *Relationship) { r.ConstraintOptions.OnDelete = rule }
}

// OnUpdate sets the constraint's ON UPDATE rule.
func OnUpdate(rule string) RelationshipOption {
	return func(r *Relationship) { r.ConstraintOptions.OnUpdate = rule }
}

// WithJoinTable names the many-to-many join table explicitly.
func WithJoinTable(name string) RelationshipOption {
	return func(r *Relationship) { r.JoinTableName = name }
}

// WithLocalSide names the join table columns holding the local side of a
// self-referential reflected many-to-many.
func WithLocalSide(columns ...string) RelationshipOption {
	return func(r *Relationship) { r.LocalSide = columns }
}

// WithRemoteSide names the join table columns holding the remote side of
// a self-referential reflected many-to-many.
func WithRemoteSide(columns ...string) RelationshipOption {
	return func(r *Relationship) { r.RemoteSide = columns }
}

// WithJoinColumnNamer overrides the join table column naming scheme.
func WithJoinColumnNamer(namer func(table, primaryKey, entity string) string) RelationshipOption {
	return func(r *Relationship) { r.JoinColumnNamer = namer }
}

// WithOrderBy sorts the relation by the given target fields; a minus
// prefix selects descending order.
func WithOrderBy(fields ...string) RelationshipOption {
	return func(r *Relationship) { r.OrderBy = fields }
}

// WithOption passes an opaque keyword through to the underlying mapper.
func WithOption(key string, value interface{}) RelationshipOption {
	return func(r *Relationship) {
		if r.Options == nil {
			r.Options = map[string]interface{}{}
		}
		r.Options[key] = value
	}
}

// NewRelationship declares an association end of the given kind towards
// the named target entity. The target name may be qualified with a scope
// (`scope.Entity`); unqualified names resolve in the owner's scope.
func NewRelationship(kind RelationshipType, target string, opts ...RelationshipOption) *Relationship {
	rel := &Relationship{
		Type:       kind,
		TargetName: target,
	}
	for _, opt := range opts {
		opt(rel)
	}
	return rel
}

// Attach binds the relationship to its owning entity under the given
// attribute name.
func (r *Relationship) Attach(entity *Entity, name string) *Relationship {
	r.Entity = entity
	r.Name = name
	entity.addRelationship(r)
	return r
}

func (r *Relationship) String() string {
	return fmt.Sprintf("%s.%s", r.Entity.Name, r.Name)
}

// Target resolves the target entity, once, caching the result. Targets
// may be declared after the relationship, so resolution is deferred until
// the build phases need it.
func (r *Relationship) Target() (*Entity, error) {
	if r.target != nil {
		return r.target, nil
	}

	reg := r.Entity.registry
	var target *Entity
	if strings.Contains(r.TargetName, ".") {
		target = reg.ResolveQualifiedName(r.TargetName)
	} else {
		target = reg.ResolveNameInScope(r.Entity.Scope, r.TargetName)
	}
	if target == nil {
		return nil, fmt.Errorf("%w: %q for relationship %s of entity %s",
			ErrTargetNotFound, r.TargetName, r.Name, r.Entity)
	}

	r.target = target
	return target, nil
}

// Inverse resolves the counterpart relationship on the target entity.
// An explicit inverse name is looked up directly; otherwise the unique
// structurally-matching candidate is used. Returns nil when the
// relationship is one-directional. The result is cached symmetrically:
// once A resolves to B, B resolves to A.
func (r *Relationship) Inverse() (*Relationship, error) {
	if r.inverse != nil {
		return r.inverse, nil
	}

	target, err := r.Target()
	if err != nil {
		return nil, err
	}

	var inverse *Relationship
	if r.InverseName != "" {
		inverse = target.LookupRelationship(r.InverseName)
		if inverse == nil {
			return nil, fmt.Errorf("%w: no relationship named %q in entity %s for relationship %s of entity %s",
				ErrInverseNotFound, r.InverseName, target, r.Name, r.Entity)
		}
		if !r.matchKind(inverse) {
			return nil, fmt.Errorf("%w: relationship %q of entity %s is %s, which cannot be the inverse of the %s relationship %s of entity %s",
				ErrTypeMismatch, inverse.Name, target, inverse.Type, r.Type, r.Name, r.Entity)
		}
		// a matched pair is exclusive; a third relationship naming one of
		// its sides cannot steal it
		if inverse.inverse != nil && inverse.inverse != r {
			return nil, fmt.Errorf("%w: relationship %q of entity %s is already the inverse of %s and cannot also serve relationship %s of entity %s",
				ErrAmbiguousInverse, inverse.Name, target, inverse.inverse, r.Name, r.Entity)
		}
	} else {
		if inverse, err = findInverse(r, target); err != nil {
			return nil, err
		}
	}

	if inverse != nil {
		r.inverse = inverse
		inverse.inverse = r
	}
	return r.inverse, nil
}

// matchKind reports whether other's kind can serve as r's inverse.
func (r *Relationship) matchKind(other *Relationship) bool {
	return inverseKinds[r.Type][other.Type]
}

// isValidInverseOf reports whether other is a valid counterpart of r:
// distinct, kind-compatible, cross-referencing entities, consistent with
// any explicit inverse names, and not already claimed by a third
// relationship.
func (r *Relationship) isValidInverseOf(other *Relationship) (bool, error) {
	if other == r || !r.matchKind(other) {
		return false, nil
	}

	otherTarget, err := other.Target()
	if err != nil {
		return false, err
	}
	target, err := r.Target()
	if err != nil {
		return false, err
	}
	if r.Entity != otherTarget || other.Entity != target {
		return false, nil
	}

	if r.InverseName != "" && r.InverseName != other.Name {
		return false, nil
	}
	if other.InverseName != "" && other.InverseName != r.Name {
		return false, nil
	}
	if other.inverse != nil && other.inverse != r {
		return false, nil
	}

	// a shared join table must be agreed on by both sides
	if r.Type == Many2Many && r.JoinTableName != other.JoinTableName {
		return false, nil
	}
	return true, nil
}

// findInverse enumerates the target's relationships in declaration order
// and returns the unique valid counterpart. Zero candidates means the
// relationship is one-directional, which is valid; more than one is an
// error the caller must resolve with an explicit inverse name.
func findInverse(r *Relationship, target *Entity) (*Relationship, error) {
	var matches []*Relationship
	for _, candidate := range target.Relationships.order {
		ok, err := r.isValidInverseOf(candidate)
		if err != nil {
			return nil, err
		}
		if ok {
			matches = append(matches, candidate)
		}
	}

	switch len(matches) {
	case 0:
		return nil, nil
	case 1:
		return matches[0], nil
	default:
		names := make([]string, len(matches))
		for i, m := range matches {
			names[i] = m.Name
		}
		return nil, fmt.Errorf("%w: %d relationships of entity %s (%s) match %s of entity %s; disambiguate with an explicit inverse name",
			ErrAmbiguousInverse, len(matches), target, strings.Join(names, ", "), r.Name, r.Entity)
	}
}

// selfReferential reports whether the relationship targets its own owner.
func (r *Relationship) selfReferential() bool {
	target, err := r.Target()
	return err == nil && target == r.Entity
}

// createKeys creates the relationship's foreign key columns for one of
// the two column passes.
func (r *Relationship) createKeys(pkPass bool) error {
	switch r.Type {
	case BelongsTo:
		return r.createForeignKeys(pkPass)
	case HasOne, HasMany:
		return r.requireInverse()
	default:
		return nil
	}
}

// createJoinTable creates the many-to-many join table; a no-op for the
// other kinds.
func (r *Relationship) createJoinTable() error {
	if r.Type != Many2Many {
		return nil
	}
	return r.createSecondaryTable()
}

// relationConfig produces the property configuration for the kind.
func (r *Relationship) relationConfig() (RelationConfig, error) {
	switch r.Type {
	case BelongsTo:
		return r.belongsToConfig()
	case HasOne:
		return r.hasConfig(false)
	case HasMany:
		return r.hasConfig(true)
	default:
		return r.many2manyConfig()
	}
}

// createProperty materializes the object-relation property. Of a matched
// pair, whichever side runs first only records a deferred backref; the
// side that runs second builds the property and attaches the backref.
func (r *Relationship) createProperty() error {
	if r.property != nil || r.backref != nil {
		return nil
	}

	target, err := r.Target()
	if err != nil {
		return err
	}
	inverse, err := r.Inverse()
	if err != nil {
		return err
	}

	cfg, err := r.relationConfig()
	if err != nil {
		return err
	}

	if inverse != nil && inverse.backref == nil {
		// the mapper rejects a join table set on both the relation and
		// its backref, so it stays on the property side only
		cfg.Secondary = nil
		r.backref = &Backref{Name: r.Name, Config: cfg}
		return nil
	}

	r.property = &Property{
		Name:   r.Name,
		Entity: r.Entity,
		Target: target,
		Config: cfg,
	}
	if inverse != nil {
		r.property.Backref = inverse.backref
	}
	r.Entity.addProperty(r.Name, r.property)
	return nil
}

// Property returns the materialized property, if this side built one.
func (r *Relationship) Property() *Property {
	return r.property
}

// DeferredBackref returns the deferred backref spec, if this side of a
// matched pair left one for the other side.
func (r *Relationship) DeferredBackref() *Backref {
	return r.backref
}

// copyOptions clones the passthrough options for a property config.
func (r *Relationship) copyOptions() map[string]interface{} {
	if len(r.Options) == 0 {
		return nil
	}
	options := make(map[string]interface{}, len(r.Options))
	for k, v := range r.Options {
		options[k] = v
	}
	return options
}
