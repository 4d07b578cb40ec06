package schema

import (
	"fmt"
	"sort"
	"strings"

	"github.com/go-relix/relix/utils"
)

// DeriveJoinClauses finds the foreign key constraints of local pointing
// at target and turns them into ordered equality predicates for up to
// two join slots.
//
// The primary slot takes the constraint whose (sorted) column names equal
// localCols; with no localCols it takes the single constraint NOT
// matching remoteCols. The secondary slot works symmetrically. A nil
// remoteCols means the secondary slot is unused; a non-nil empty
// remoteCols means "the complement of localCols". Any input pattern
// leaving more than one candidate for a slot is ambiguous and fails.
func DeriveJoinClauses(local *Table, localCols, remoteCols []string, target *Table) (primary, secondary []JoinClause, err error) {
	localKey := columnSetKey(localCols)
	remoteGiven := remoteCols != nil
	remoteKey := columnSetKey(remoteCols)

	constraints := map[string]*ForeignKeyConstraint{}
	var keys []string
	for _, fk := range local.ForeignKeys {
		// only constraints whose every referenced column belongs to the
		// target table can join towards it
		if !fk.ReferencesTable(target) {
			continue
		}
		key := columnSetKey(fk.Columns)
		if _, dup := constraints[key]; dup {
			return nil, nil, fmt.Errorf("%w: table %q has two foreign keys over columns %s towards %q",
				ErrAmbiguousJoin, local.Name, strings.Join(fk.Columns, ", "), target.Name)
		}
		constraints[key] = fk
		keys = append(keys, key)
	}
	sort.Strings(keys)

	primaryFK, err := assignSlot(local, target, constraints, keys, localCols, localKey, remoteCols, remoteGiven, remoteKey)
	if err != nil {
		return nil, nil, err
	}

	var secondaryFK *ForeignKeyConstraint
	if remoteGiven {
		secondaryFK, err = assignSlot(local, target, constraints, keys, remoteCols, remoteKey, localCols, true, localKey)
		if err != nil {
			return nil, nil, err
		}
		if secondaryFK == primaryFK {
			secondaryFK = nil
		}
	}

	if primaryFK != nil {
		if primary, err = constraintClauses(primaryFK, local, target); err != nil {
			return nil, nil, err
		}
	}
	if secondaryFK != nil {
		if secondary, err = constraintClauses(secondaryFK, local, target); err != nil {
			return nil, nil, err
		}
	}
	return primary, secondary, nil
}

// assignSlot picks the constraint for one join slot: an exact match on
// the slot's own columns, or the unique complement of the other slot's
// columns when the slot's own columns were not given.
func assignSlot(local, target *Table, constraints map[string]*ForeignKeyConstraint, keys []string,
	ownCols []string, ownKey string, otherCols []string, otherGiven bool, otherKey string) (*ForeignKeyConstraint, error) {

	if len(ownCols) > 0 {
		return constraints[ownKey], nil
	}

	// the complement rule only applies when the other slot is settled:
	// unused, empty, or explicitly matched
	if otherGiven && len(otherCols) > 0 && constraints[otherKey] == nil {
		return nil, nil
	}

	var candidates []string
	for _, key := range keys {
		if otherGiven && len(otherCols) > 0 && key == otherKey {
			continue
		}
		candidates = append(candidates, key)
	}

	switch len(candidates) {
	case 0:
		return nil, nil
	case 1:
		return constraints[candidates[0]], nil
	default:
		return nil, fmt.Errorf("%w: %d foreign keys of table %q towards %q could fill the join slot; give explicit columns",
			ErrAmbiguousJoin, len(candidates), local.Name, target.Name)
	}
}

// constraintClauses builds the equality predicates of one constraint,
// preserving its column-pairing order.
func constraintClauses(fk *ForeignKeyConstraint, local, target *Table) ([]JoinClause, error) {
	clauses := make([]JoinClause, 0, len(fk.Columns))
	for i, name := range fk.Columns {
		lcol := local.Column(name)
		if lcol == nil {
			return nil, fmt.Errorf("%w: constraint %q names column %q missing from table %q",
				ErrReflectionMismatch, fk.Name, name, local.Name)
		}
		ref := fk.References[i]
		rcol := target.Column(ref.Column)
		if rcol == nil {
			return nil, fmt.Errorf("%w: constraint %q references column %q missing from table %q",
				ErrReflectionMismatch, fk.Name, ref.Column, target.Name)
		}
		clauses = append(clauses, JoinClause{Local: lcol, Remote: rcol})
	}
	return clauses, nil
}

func columnSetKey(cols []string) string {
	return strings.Join(utils.SortedCopy(cols), "\x1f")
}
