package schema_test

import (
	"context"
	"errors"
	"testing"

	"github.com/go-relix/relix/logger"
	"github.com/go-relix/relix/schema"
)

func newTestRegistry() *schema.Registry {
	return schema.NewRegistry(schema.NamingStrategy{SingularTable: true}, logger.Discard)
}

func mustEntity(t *testing.T, reg *schema.Registry, name string, opts ...schema.EntityOption) *schema.Entity {
	t.Helper()
	entity, err := reg.NewEntity(name, "test", opts...)
	if err != nil {
		t.Fatalf("failed to declare entity %s: %v", name, err)
	}
	return entity
}

func entityWithID(t *testing.T, reg *schema.Registry, name string, opts ...schema.EntityOption) *schema.Entity {
	t.Helper()
	entity := mustEntity(t, reg, name, opts...)
	entity.Field("id", schema.Int, schema.WithPrimaryKey())
	return entity
}

func mustBuild(t *testing.T, reg *schema.Registry) {
	t.Helper()
	if err := reg.Build(context.Background()); err != nil {
		t.Fatalf("build failed: %v", err)
	}
}

func expectBuildError(t *testing.T, reg *schema.Registry, want error) {
	t.Helper()
	err := reg.Build(context.Background())
	if err == nil {
		t.Fatalf("expected build to fail with %v", want)
	}
	if !errors.Is(err, want) {
		t.Errorf("expected error %v, got %v", want, err)
	}
}

func checkColumns(t *testing.T, table *schema.Table, names ...string) {
	t.Helper()
	if len(table.Columns) != len(names) {
		got := make([]string, 0, len(table.Columns))
		for _, col := range table.Columns {
			got = append(got, col.Name)
		}
		t.Fatalf("table %s: expected columns %v, got %v", table.Name, names, got)
	}
	for i, name := range names {
		if table.Columns[i].Name != name {
			t.Errorf("table %s: expected column %d to be %s, got %s", table.Name, i, name, table.Columns[i].Name)
		}
	}
}

func findForeignKey(table *schema.Table, name string) *schema.ForeignKeyConstraint {
	for _, fk := range table.ForeignKeys {
		if fk.Name == name {
			return fk
		}
	}
	return nil
}
