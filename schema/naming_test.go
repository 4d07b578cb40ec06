package schema_test

import (
	"strings"
	"testing"
	"unicode/utf8"

	"github.com/go-relix/relix/schema"
)

func TestTableName(t *testing.T) {
	var ns schema.NamingStrategy
	cases := map[string]string{
		"Person":      "people",
		"Article":     "articles",
		"OrderItem":   "order_items",
		"UserProfile": "user_profiles",
	}
	for entity, want := range cases {
		if got := ns.TableName(entity); got != want {
			t.Errorf("TableName(%q) = %q, want %q", entity, got, want)
		}
	}

	singular := schema.NamingStrategy{SingularTable: true}
	if got := singular.TableName("Person"); got != "person" {
		t.Errorf("singular TableName(Person) = %q", got)
	}

	prefixed := schema.NamingStrategy{TablePrefix: "app_", SingularTable: true}
	if got := prefixed.TableName("Person"); got != "app_person" {
		t.Errorf("prefixed TableName(Person) = %q", got)
	}
}

func TestColumnName(t *testing.T) {
	var ns schema.NamingStrategy
	cases := map[string]string{
		"Name":      "name",
		"CreatedAt": "created_at",
		"UserID":    "user_id",
		"HTTPCode":  "http_code",
		"uuid":      "uuid",
		"Type2":     "type2",
	}
	for column, want := range cases {
		if got := ns.ColumnName("", column); got != want {
			t.Errorf("ColumnName(%q) = %q, want %q", column, got, want)
		}
	}
}

func TestForeignKeyColumnName(t *testing.T) {
	var ns schema.NamingStrategy
	if got := ns.ForeignKeyColumnName("owner", "id"); got != "owner_id" {
		t.Errorf("ForeignKeyColumnName(owner, id) = %q", got)
	}
	if got := ns.ForeignKeyColumnName("ParentNode", "id"); got != "parent_node_id" {
		t.Errorf("ForeignKeyColumnName(ParentNode, id) = %q", got)
	}
	if got := ns.ForeignKeyColumnName("region", "country"); got != "region_country" {
		t.Errorf("ForeignKeyColumnName(region, country) = %q", got)
	}
}

func TestForeignKeyConstraintName(t *testing.T) {
	var ns schema.NamingStrategy
	if got := ns.ForeignKeyConstraintName("pet", []string{"owner_id"}); got != "pet_owner_id_fk" {
		t.Errorf("ForeignKeyConstraintName = %q", got)
	}
	if got := ns.ForeignKeyConstraintName("city", []string{"region_country", "region_code"}); got != "city_region_country_region_code_fk" {
		t.Errorf("composite ForeignKeyConstraintName = %q", got)
	}
}

func TestForeignKeyConstraintNameTruncation(t *testing.T) {
	var ns schema.NamingStrategy
	table := strings.Repeat("very_long_table_name_", 4)
	got := ns.ForeignKeyConstraintName(table, []string{"owner_id"})
	if utf8.RuneCountInString(got) != 64 {
		t.Fatalf("expected truncation to 64 characters, got %d (%q)", utf8.RuneCountInString(got), got)
	}
	if !strings.HasPrefix(got, table[:56]) {
		t.Errorf("expected the original prefix to survive, got %q", got)
	}
	if again := ns.ForeignKeyConstraintName(table, []string{"owner_id"}); again != got {
		t.Errorf("expected a stable hash suffix, got %q then %q", got, again)
	}
}

func TestJoinTableColumnName(t *testing.T) {
	var ns schema.NamingStrategy
	if got := ns.JoinTableColumnName("article", "id", "article"); got != "article_id" {
		t.Errorf("JoinTableColumnName = %q", got)
	}
	if got := ns.JoinTableColumnName("region", "country", "region"); got != "region_country" {
		t.Errorf("JoinTableColumnName = %q", got)
	}
}

func TestCheckerName(t *testing.T) {
	var ns schema.NamingStrategy
	if got := ns.CheckerName("person", "age"); got != "chk_person_age" {
		t.Errorf("CheckerName = %q", got)
	}
}

func TestIndexName(t *testing.T) {
	var ns schema.NamingStrategy
	if got := ns.IndexName("pet", "OwnerID"); got != "idx_pet_owner_id" {
		t.Errorf("IndexName = %q", got)
	}
}
