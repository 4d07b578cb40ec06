package schema_test

import (
	"errors"
	"testing"

	"github.com/go-relix/relix/schema"
)

func joinFixture() (local, target *schema.Table) {
	target = schema.NewTable("node", []*schema.Column{
		{Name: "id", DataType: schema.Int, PrimaryKey: true},
	}, nil)
	local = schema.NewTable("edge", []*schema.Column{
		{Name: "id", DataType: schema.Int, PrimaryKey: true},
		{Name: "from_id", DataType: schema.Int},
		{Name: "to_id", DataType: schema.Int},
	}, []*schema.ForeignKeyConstraint{
		{
			Name:       "edge_from_fk",
			Columns:    []string{"from_id"},
			References: []schema.ForeignKeyRef{{Table: "node", Column: "id"}},
		},
		{
			Name:       "edge_to_fk",
			Columns:    []string{"to_id"},
			References: []schema.ForeignKeyRef{{Table: "node", Column: "id"}},
		},
	})
	return local, target
}

func TestDeriveJoinClausesExactMatch(t *testing.T) {
	local, target := joinFixture()

	primary, secondary, err := schema.DeriveJoinClauses(local, []string{"from_id"}, nil, target)
	if err != nil {
		t.Fatal(err)
	}
	if len(primary) != 1 || primary[0].String() != "edge.from_id = node.id" {
		t.Fatalf("unexpected primary clauses %v", primary)
	}
	if secondary != nil {
		t.Fatalf("expected no secondary clauses, got %v", secondary)
	}
}

func TestDeriveJoinClausesComplement(t *testing.T) {
	local, target := joinFixture()

	primary, secondary, err := schema.DeriveJoinClauses(local, []string{"from_id"}, []string{}, target)
	if err != nil {
		t.Fatal(err)
	}
	if len(primary) != 1 || primary[0].Local.Name != "from_id" {
		t.Fatalf("unexpected primary clauses %v", primary)
	}
	if len(secondary) != 1 || secondary[0].Local.Name != "to_id" {
		t.Fatalf("expected the remaining constraint as secondary, got %v", secondary)
	}
}

func TestDeriveJoinClausesAmbiguousPrimary(t *testing.T) {
	local, target := joinFixture()

	_, _, err := schema.DeriveJoinClauses(local, nil, nil, target)
	if !errors.Is(err, schema.ErrAmbiguousJoin) {
		t.Fatalf("expected ambiguity with two candidate constraints, got %v", err)
	}
}

func TestDeriveJoinClausesSingleCandidate(t *testing.T) {
	target := schema.NewTable("person", []*schema.Column{
		{Name: "id", DataType: schema.Int, PrimaryKey: true},
	}, nil)
	local := schema.NewTable("pet", []*schema.Column{
		{Name: "id", DataType: schema.Int, PrimaryKey: true},
		{Name: "owner_id", DataType: schema.Int},
	}, []*schema.ForeignKeyConstraint{{
		Name:       "pet_owner_id_fk",
		Columns:    []string{"owner_id"},
		References: []schema.ForeignKeyRef{{Table: "person", Column: "id"}},
	}})

	primary, _, err := schema.DeriveJoinClauses(local, nil, nil, target)
	if err != nil {
		t.Fatal(err)
	}
	if len(primary) != 1 || primary[0].String() != "pet.owner_id = person.id" {
		t.Fatalf("expected the only constraint to fill the primary slot, got %v", primary)
	}
}

func TestDeriveJoinClausesIgnoresOtherTargets(t *testing.T) {
	person := schema.NewTable("person", []*schema.Column{
		{Name: "id", DataType: schema.Int, PrimaryKey: true},
	}, nil)
	local := schema.NewTable("pet", []*schema.Column{
		{Name: "id", DataType: schema.Int, PrimaryKey: true},
		{Name: "owner_id", DataType: schema.Int},
		{Name: "breed_id", DataType: schema.Int},
	}, []*schema.ForeignKeyConstraint{
		{
			Name:       "pet_owner_id_fk",
			Columns:    []string{"owner_id"},
			References: []schema.ForeignKeyRef{{Table: "person", Column: "id"}},
		},
		{
			Name:       "pet_breed_id_fk",
			Columns:    []string{"breed_id"},
			References: []schema.ForeignKeyRef{{Table: "breed", Column: "id"}},
		},
	})

	primary, _, err := schema.DeriveJoinClauses(local, nil, nil, person)
	if err != nil {
		t.Fatal(err)
	}
	if len(primary) != 1 || primary[0].Local.Name != "owner_id" {
		t.Fatalf("expected constraints towards other tables to be ignored, got %v", primary)
	}
}

func TestDeriveJoinClausesNoMatch(t *testing.T) {
	local, target := joinFixture()

	primary, secondary, err := schema.DeriveJoinClauses(local, []string{"weight"}, nil, target)
	if err != nil {
		t.Fatal(err)
	}
	if primary != nil || secondary != nil {
		t.Fatalf("expected no clauses for unknown columns, got %v / %v", primary, secondary)
	}
}

func TestDeriveJoinClausesCompositePairingOrder(t *testing.T) {
	target := schema.NewTable("region", []*schema.Column{
		{Name: "country", DataType: schema.String, PrimaryKey: true},
		{Name: "code", DataType: schema.String, PrimaryKey: true},
	}, nil)
	local := schema.NewTable("city", []*schema.Column{
		{Name: "id", DataType: schema.Int, PrimaryKey: true},
		{Name: "region_country", DataType: schema.String},
		{Name: "region_code", DataType: schema.String},
	}, []*schema.ForeignKeyConstraint{{
		Name:       "city_region_fk",
		Columns:    []string{"region_country", "region_code"},
		References: []schema.ForeignKeyRef{{Table: "region", Column: "country"}, {Table: "region", Column: "code"}},
	}})

	primary, _, err := schema.DeriveJoinClauses(local, nil, nil, target)
	if err != nil {
		t.Fatal(err)
	}
	if len(primary) != 2 {
		t.Fatalf("expected one clause per column pair, got %v", primary)
	}
	if primary[0].String() != "city.region_country = region.country" {
		t.Errorf("unexpected first clause %v", primary[0])
	}
	if primary[1].String() != "city.region_code = region.code" {
		t.Errorf("unexpected second clause %v", primary[1])
	}
}

func TestDeriveJoinClausesDuplicateColumnSets(t *testing.T) {
	target := schema.NewTable("node", []*schema.Column{
		{Name: "id", DataType: schema.Int, PrimaryKey: true},
	}, nil)
	local := schema.NewTable("edge", []*schema.Column{
		{Name: "peer_id", DataType: schema.Int},
	}, []*schema.ForeignKeyConstraint{
		{
			Name:       "edge_peer_fk",
			Columns:    []string{"peer_id"},
			References: []schema.ForeignKeyRef{{Table: "node", Column: "id"}},
		},
		{
			Name:       "edge_peer_fk2",
			Columns:    []string{"peer_id"},
			References: []schema.ForeignKeyRef{{Table: "node", Column: "id"}},
		},
	})

	_, _, err := schema.DeriveJoinClauses(local, []string{"peer_id"}, nil, target)
	if !errors.Is(err, schema.ErrAmbiguousJoin) {
		t.Fatalf("expected two constraints over the same columns to be ambiguous, got %v", err)
	}
}

func TestDeriveJoinClausesConstraintNamesMissingColumn(t *testing.T) {
	target := schema.NewTable("node", []*schema.Column{
		{Name: "id", DataType: schema.Int, PrimaryKey: true},
	}, nil)
	local := schema.NewTable("edge", []*schema.Column{
		{Name: "id", DataType: schema.Int, PrimaryKey: true},
	}, []*schema.ForeignKeyConstraint{{
		Name:       "edge_peer_fk",
		Columns:    []string{"peer_id"},
		References: []schema.ForeignKeyRef{{Table: "node", Column: "id"}},
	}})

	_, _, err := schema.DeriveJoinClauses(local, []string{"peer_id"}, nil, target)
	if !errors.Is(err, schema.ErrReflectionMismatch) {
		t.Fatalf("expected a constraint over a missing column to fail, got %v", err)
	}
}
