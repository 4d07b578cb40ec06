package schema

import (
	"errors"
)

var (
	// ErrTargetNotFound relationship names an entity that cannot be resolved
	ErrTargetNotFound = errors.New("target entity not found")
	// ErrInverseNotFound explicit inverse name doesn't exist on the target entity
	ErrInverseNotFound = errors.New("inverse relationship not found")
	// ErrTypeMismatch explicit inverse is not a kind-compatible counterpart
	ErrTypeMismatch = errors.New("inverse relationship type mismatch")
	// ErrAmbiguousInverse more than one candidate inverse found without disambiguation
	ErrAmbiguousInverse = errors.New("ambiguous inverse relationship")
	// ErrMissingInverse one-to-one/one-to-many declared with no resolvable many-to-one counterpart
	ErrMissingInverse = errors.New("missing inverse relationship")
	// ErrPrimaryKeyMismatch explicit column name count disagrees with the target's primary key
	ErrPrimaryKeyMismatch = errors.New("column count does not match target primary key")
	// ErrNoPrimaryKey target entity has no primary key to reference
	ErrNoPrimaryKey = errors.New("no primary key found in target")
	// ErrSelfReferentialAmbiguity self-referential relation without explicit side hints
	ErrSelfReferentialAmbiguity = errors.New("self-referential relationship requires side hints")
	// ErrReflectionMismatch reflected table lacks an expected foreign key constraint
	ErrReflectionMismatch = errors.New("reflected table missing expected foreign key")
	// ErrAmbiguousJoin more than one foreign key constraint could fill a join slot
	ErrAmbiguousJoin = errors.New("ambiguous join constraint")
	// ErrCyclicPrimaryKey mutual primary-key dependency between entities
	ErrCyclicPrimaryKey = errors.New("cyclic primary key dependency")
	// ErrReflectedTargetRequired many-to-many over a reflected table needs a reflected target
	ErrReflectedTargetRequired = errors.New("target entity must be reflected")
	// ErrUnknownColumn order_by or side hint names a column that doesn't exist
	ErrUnknownColumn = errors.New("unknown column")
	// ErrDuplicateEntity an entity with the same name is already registered in the scope
	ErrDuplicateEntity = errors.New("entity already registered")
	// ErrInvalidDefault a column default value doesn't parse for its data type
	ErrInvalidDefault = errors.New("invalid default value")
	// ErrInvalidName an explicit table or column name contains characters no database identifier accepts
	ErrInvalidName = errors.New("invalid identifier")
)
