package schema

import (
	"fmt"
	"strings"
)

// createForeignKeys finds all primary keys on the target and creates
// matching foreign key columns on the owner. Runs once: either in the
// primary-key pass or the non-primary-key pass, depending on whether the
// created columns are part of the owner's primary key.
func (r *Relationship) createForeignKeys(pkPass bool) error {
	if len(r.ForeignKeyColumns) > 0 || len(r.PrimaryJoin) > 0 {
		return nil
	}
	if r.ColumnOptions.PrimaryKey != pkPass {
		return nil
	}

	target, err := r.Target()
	if err != nil {
		return err
	}
	// the target's primary key must be settled before columns referencing
	// it can be typed
	if err := target.EnsurePrimaryKeys(); err != nil {
		return err
	}

	if r.Entity.Autoload {
		return r.resolveReflectedForeignKeys(target)
	}

	pks := target.PrimaryKeyColumns()
	if len(r.ColumnNames) > 0 && len(r.ColumnNames) != len(pks) {
		return fmt.Errorf("%w: %d column names given for relationship %s of entity %s, but the primary key of %s has %d columns",
			ErrPrimaryKeyMismatch, len(r.ColumnNames), r.Name, r.Entity, target.Name, len(pks))
	}
	if len(pks) == 0 {
		return fmt.Errorf("%w table %q for relationship %s of entity %s",
			ErrNoPrimaryKey, target.TableName, r.Name, r.Entity)
	}

	fkColumns := make([]string, 0, len(pks))
	fkRefs := make([]ForeignKeyRef, 0, len(pks))

	for i, pk := range pks {
		var colname string
		if len(r.ColumnNames) > 0 {
			colname = r.ColumnNames[i]
		} else {
			colname = r.Entity.namer.ForeignKeyColumnName(r.Name, pk.Name)
		}

		col := &Column{
			Name:       colname,
			DataType:   pk.DataType,
			Size:       pk.Size,
			PrimaryKey: r.ColumnOptions.PrimaryKey,
			Nullable:   !r.ColumnOptions.Required && !r.ColumnOptions.PrimaryKey,
			Index:      !r.ColumnOptions.NoIndex,
		}
		r.Entity.AddColumn(col)

		r.ForeignKeyColumns = append(r.ForeignKeyColumns, col)
		fkColumns = append(fkColumns, colname)
		fkRefs = append(fkRefs, ForeignKeyRef{Table: target.TableName, Column: pk.Name})

		// the primary join is needed when an entity declares several
		// many-to-one relationships towards the same target
		r.PrimaryJoin = append(r.PrimaryJoin, JoinClause{Local: col, Remote: pk})
	}

	name := r.ConstraintOptions.Name
	if name == "" {
		name = r.Entity.namer.ForeignKeyConstraintName(r.Entity.TableName, fkColumns)
	}
	r.Entity.AddForeignKey(&ForeignKeyConstraint{
		Name:       name,
		Columns:    fkColumns,
		References: fkRefs,
		OnDelete:   r.ConstraintOptions.OnDelete,
		OnUpdate:   r.ConstraintOptions.OnUpdate,
		UseAlter:   r.ConstraintOptions.UseAlter,
	})
	return nil
}

// resolveReflectedForeignKeys locates the existing foreign key constraint
// in the owner's reflected table instead of creating columns. Without
// explicit column names the underlying mapper infers the join itself.
func (r *Relationship) resolveReflectedForeignKeys(target *Entity) error {
	if len(r.ColumnNames) == 0 {
		return nil
	}

	if err := r.Entity.bindReflectedTable(); err != nil {
		return err
	}
	if target.Table() == nil {
		return fmt.Errorf("%w: relationship %s of reflected entity %s targets entity %s, whose table is not reflected",
			ErrReflectedTargetRequired, r.Name, r.Entity, target)
	}

	primary, _, err := DeriveJoinClauses(r.Entity.Table(), r.ColumnNames, nil, target.Table())
	if err != nil {
		return err
	}
	if len(primary) == 0 {
		return fmt.Errorf("%w: no foreign key constraint in table %q uses columns %s",
			ErrReflectionMismatch, r.Entity.TableName, strings.Join(r.ColumnNames, ", "))
	}
	r.PrimaryJoin = primary
	return nil
}

// belongsToConfig is the property configuration of a many-to-one end.
func (r *Relationship) belongsToConfig() (RelationConfig, error) {
	cfg := RelationConfig{
		Uselist: false,
		Options: r.copyOptions(),
	}

	if r.selfReferential() {
		target, err := r.Target()
		if err != nil {
			return cfg, err
		}
		cfg.RemoteSide = target.PrimaryKeyColumns()
	}

	if len(r.PrimaryJoin) > 0 {
		cfg.PrimaryJoin = r.PrimaryJoin
	}
	return cfg, nil
}
