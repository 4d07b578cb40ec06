package schema

import (
	"fmt"
)

// mustInverse resolves the many-to-one counterpart a one-to-one or
// one-to-many relationship cannot exist without: the other side owns the
// foreign key.
func (r *Relationship) mustInverse() (*Relationship, error) {
	inverse, err := r.Inverse()
	if err != nil {
		return nil, err
	}
	if inverse == nil {
		target, terr := r.Target()
		if terr != nil {
			return nil, terr
		}
		return nil, fmt.Errorf("%w: no relationship in entity %s matches as inverse of the %s relationship %s of entity %s; the foreign key must be created by a many-to-one on the other side",
			ErrMissingInverse, target, r.Type, r.Name, r.Entity)
	}
	return inverse, nil
}

func (r *Relationship) requireInverse() error {
	_, err := r.mustInverse()
	return err
}

// hasConfig is the property configuration of a one-to-one or one-to-many
// end, built entirely from the inverse's columns and join predicates.
func (r *Relationship) hasConfig(uselist bool) (RelationConfig, error) {
	cfg := RelationConfig{
		Uselist: uselist,
		Options: r.copyOptions(),
	}

	inverse, err := r.mustInverse()
	if err != nil {
		return cfg, err
	}

	if r.selfReferential() {
		cfg.RemoteSide = inverse.ForeignKeyColumns
	}
	if len(inverse.PrimaryJoin) > 0 {
		cfg.PrimaryJoin = inverse.PrimaryJoin
	}

	if uselist && len(r.OrderBy) > 0 {
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
