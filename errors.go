package relix

import (
	"github.com/go-relix/relix/schema"
)

var (
	// ErrTargetNotFound relationship names an entity that cannot be resolved
	ErrTargetNotFound = schema.ErrTargetNotFound
	// ErrInverseNotFound explicit inverse name doesn't exist on the target entity
	ErrInverseNotFound = schema.ErrInverseNotFound
	// ErrTypeMismatch explicit inverse is not a kind-compatible counterpart
	ErrTypeMismatch = schema.ErrTypeMismatch
	// ErrAmbiguousInverse more than one candidate inverse found without disambiguation
	ErrAmbiguousInverse = schema.ErrAmbiguousInverse
	// ErrMissingInverse one-to-one/one-to-many declared with no resolvable many-to-one counterpart
	ErrMissingInverse = schema.ErrMissingInverse
	// ErrPrimaryKeyMismatch explicit column name count disagrees with the target's primary key
	ErrPrimaryKeyMismatch = schema.ErrPrimaryKeyMismatch
	// ErrNoPrimaryKey target entity has no primary key to reference
	ErrNoPrimaryKey = schema.ErrNoPrimaryKey
	// ErrSelfReferentialAmbiguity self-referential relation without explicit side hints
	ErrSelfReferentialAmbiguity = schema.ErrSelfReferentialAmbiguity
	// ErrReflectionMismatch reflected table lacks an expected foreign key constraint
	ErrReflectionMismatch = schema.ErrReflectionMismatch
	// ErrAmbiguousJoin more than one foreign key constraint could fill a join slot
	ErrAmbiguousJoin = schema.ErrAmbiguousJoin
	// ErrCyclicPrimaryKey mutual primary-key dependency between entities
	ErrCyclicPrimaryKey = schema.ErrCyclicPrimaryKey
	// ErrReflectedTargetRequired reflected relationship points at a non-reflected entity
	ErrReflectedTargetRequired = schema.ErrReflectedTargetRequired
	// ErrUnknownColumn order_by or side hint names a column that doesn't exist
	ErrUnknownColumn = schema.ErrUnknownColumn
	// ErrDuplicateEntity an entity with the same name is already registered in the scope
	ErrDuplicateEntity = schema.ErrDuplicateEntity
	// ErrInvalidDefault a column default value doesn't parse for its data type
	ErrInvalidDefault = schema.ErrInvalidDefault
	// ErrInvalidName an explicit table or column name contains characters no database identifier accepts
	ErrInvalidName = schema.ErrInvalidName
)
