package schema

// JoinClause is one equality predicate between a local column and the
// remote column it references.
type JoinClause struct {
	Local  *Column
	Remote *Column
}

func (j JoinClause) String() string {
	return j.Local.FullName() + " = " + j.Remote.FullName()
}

// OrderByColumn is one resolved order_by entry.
type OrderByColumn struct {
	Column *Column
	Desc   bool
}

// RelationConfig is the keyword configuration handed to the underlying
// object-relational mapper for one relation property.
type RelationConfig struct {
	Uselist       bool
	RemoteSide    []*Column
	PrimaryJoin   []JoinClause
	SecondaryJoin []JoinClause
	Secondary     *Table
	OrderBy       []OrderByColumn
	Options       map[string]interface{}
}

// Backref is the deferred specification the first side of a matched pair
// leaves behind for the other side to consume. Exactly one side of a pair
// materializes a Property; the other is configured through the backref.
type Backref struct {
	Name   string
	Config RelationConfig
}

// Property is the materialized object-relation property of one
// relationship end.
type Property struct {
	Name    string
	Entity  *Entity
	Target  *Entity
	Config  RelationConfig
	Backref *Backref
}
