package schema

import (
	"fmt"
	"strconv"
	"strings"
)

// createSecondaryTable materializes the join table of a many-to-many
// relationship. The table is shared with the inverse by construction:
// whichever side runs first creates it, and the other side adopts the
// same table with its join predicate lists swapped.
func (r *Relationship) createSecondaryTable() error {
	if r.JoinTable != nil {
		return nil
	}

	inverse, err := r.Inverse()
	if err != nil {
		return err
	}
	if inverse != nil && inverse.JoinTable != nil {
		r.JoinTable = inverse.JoinTable
		r.PrimaryJoin = inverse.SecondaryJoin
		r.SecondaryJoin = inverse.PrimaryJoin
		return nil
	}

	owner := r.Entity
	target, err := r.Target()
	if err != nil {
		return err
	}

	// The owner side uses the relationship name instead of its primary
	// key, so two many-to-many relations between the same entities don't
	// collide. The bare target table name is used when there is no
	// inverse, so one-directional relations still get a name.
	sourcePart := fmt.Sprintf("%s_%s", owner.TableName, toDBName(r.Name))
	targetPart := target.TableName
	if inverse != nil {
		targetPart = fmt.Sprintf("%s_%s", target.TableName, toDBName(inverse.Name))
	}

	tablename := r.JoinTableName
	if tablename == "" {
		// keep the name independent of which side is built first
		if inverse != nil && owner.TableName < target.TableName {
			tablename = fmt.Sprintf("%s__%s", targetPart, sourcePart)
		} else {
			tablename = fmt.Sprintf("%s__%s", sourcePart, targetPart)
		}
	}

	if owner.Autoload {
		return r.reflectSecondaryTable(tablename, target)
	}

	sourceFKName := sourcePart + "_fk"
	targetFKName := sourcePart + "_inverse_fk"
	if inverse != nil {
		targetFKName = targetPart + "_fk"
	}

	selfRef := owner == target
	var (
		columns     []*Column
		constraints []*ForeignKeyConstraint
	)
	joins := [2]*[]JoinClause{&r.PrimaryJoin, &r.SecondaryJoin}

	sides := []struct {
		num    int
		entity *Entity
		fkName string
		m2m    *Relationship
	}{
		{0, owner, sourceFKName, r},
		{1, target, targetFKName, inverse},
	}

	for _, side := range sides {
		pks := side.entity.PrimaryKeyColumns()
		if len(pks) == 0 {
			return fmt.Errorf("%w table %q for relationship %s of entity %s",
				ErrNoPrimaryKey, side.entity.TableName, r.Name, r.Entity)
		}

		fkColumns := make([]string, 0, len(pks))
		fkRefs := make([]ForeignKeyRef, 0, len(pks))

		for _, pk := range pks {
			namer := r.JoinColumnNamer
			if namer == nil {
				namer = owner.namer.JoinTableColumnName
			}
			colname := namer(side.entity.TableName, pk.Name, strings.ToLower(side.entity.Name))
			// a self-referential pair would produce the same column name
			// twice; the positional suffix keeps the two sides apart
			if selfRef {
				colname += strconv.Itoa(side.num + 1)
			}

			col := &Column{
				Name:       colname,
				DataType:   pk.DataType,
				Size:       pk.Size,
				PrimaryKey: true,
			}
			columns = append(columns, col)
			fkColumns = append(fkColumns, colname)
			fkRefs = append(fkRefs, ForeignKeyRef{Table: side.entity.TableName, Column: pk.Name})

			if selfRef {
				*joins[side.num] = append(*joins[side.num], JoinClause{Local: col, Remote: pk})
			}
		}

		var onDelete, onUpdate string
		if side.m2m != nil {
			onDelete = side.m2m.ConstraintOptions.OnDelete
			onUpdate = side.m2m.ConstraintOptions.OnUpdate
		}
		constraints = append(constraints, &ForeignKeyConstraint{
			Name:       side.fkName,
			Columns:    fkColumns,
			References: fkRefs,
			OnDelete:   onDelete,
			OnUpdate:   onUpdate,
		})
	}

	r.JoinTable = owner.registry.createJoinTable(tablename, columns, constraints)
	return nil
}

// reflectSecondaryTable binds an existing join table instead of creating
// one. Self-referential relations cannot infer their two join directions
// from a reflected table and need explicit side hints.
func (r *Relationship) reflectSecondaryTable(tablename string, target *Entity) error {
	if !target.Autoload {
		return fmt.Errorf("%w: entity %s is reflected but relationship %s points to entity %s, which is not",
			ErrReflectedTargetRequired, r.Entity, r.Name, target)
	}

	table := r.Entity.registry.ReflectedTable(tablename)
	if table == nil {
		return fmt.Errorf("%w: no reflected join table %q for relationship %s of entity %s",
			ErrReflectionMismatch, tablename, r.Name, r.Entity)
	}
	r.JoinTable = table

	if r.Entity != target {
		return nil
	}

	if len(r.LocalSide) == 0 && len(r.RemoteSide) == 0 {
		return fmt.Errorf("%w: self-referential many-to-many %s of reflected entity %s needs a local or remote side hint",
			ErrSelfReferentialAmbiguity, r.Name, r.Entity)
	}

	if err := r.Entity.bindReflectedTable(); err != nil {
		return err
	}

	remote := r.RemoteSide
	if remote == nil {
		remote = []string{}
	}
	var err error
	r.PrimaryJoin, r.SecondaryJoin, err = DeriveJoinClauses(table, r.LocalSide, remote, r.Entity.Table())
	return err
}

// many2manyConfig is the property configuration of a many-to-many end.
func (r *Relationship) many2manyConfig() (RelationConfig, error) {
	cfg := RelationConfig{
		Secondary: r.JoinTable,
		Uselist:   true,
		Options:   r.copyOptions(),
	}

	if r.selfReferential() {
		cfg.PrimaryJoin = r.PrimaryJoin
		cfg.SecondaryJoin = r.SecondaryJoin
	}

	if len(r.OrderBy) > 0 {
		target, err := r.Target()
		if err != nil {
			return cfg, err
		}
		if cfg.OrderBy, err = target.TranslateOrderBy(r.OrderBy...); err != nil {
			return cfg, err
		}
	}
	return cfg, nil
}
