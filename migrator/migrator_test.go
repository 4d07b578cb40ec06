package migrator_test

import (
	"context"
	"testing"

	sqlmock "github.com/DATA-DOG/go-sqlmock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/go-relix/relix/logger"
	"github.com/go-relix/relix/migrator"
	"github.com/go-relix/relix/schema"
)

func buildTables(t *testing.T) []*schema.Table {
	t.Helper()
	reg := schema.NewRegistry(schema.NamingStrategy{SingularTable: true}, logger.Discard)

	pet, err := reg.NewEntity("Pet", "test")
	require.NoError(t, err)
	pet.Field("id", schema.Int, schema.WithPrimaryKey())
	schema.NewRelationship(schema.BelongsTo, "Person").Attach(pet, "owner")

	person, err := reg.NewEntity("Person", "test")
	require.NoError(t, err)
	person.Field("id", schema.Int, schema.WithPrimaryKey())
	person.Field("name", schema.String, schema.WithSize(60))

	require.NoError(t, reg.Build(context.Background()))
	return reg.Tables()
}

func TestCreateTablesOrdersByDependency(t *testing.T) {
	db, mock, err := sqlmock.New(sqlmock.QueryMatcherOption(sqlmock.QueryMatcherEqual))
	require.NoError(t, err)
	defer db.Close()

	// registration order puts the referrer first; creation must not
	mock.ExpectExec("CREATE TABLE person (id integer, name varchar(60) NOT NULL, PRIMARY KEY (id))").
		WillReturnResult(sqlmock.NewResult(0, 0))
	mock.ExpectExec("CREATE TABLE pet (id integer, owner_id integer, PRIMARY KEY (id), CONSTRAINT pet_owner_id_fk FOREIGN KEY (owner_id) REFERENCES person (id))").
		WillReturnResult(sqlmock.NewResult(0, 0))
	mock.ExpectExec("CREATE INDEX idx_pet_owner_id ON pet (owner_id)").
		WillReturnResult(sqlmock.NewResult(0, 0))

	m := migrator.New(db, logger.Discard)
	require.NoError(t, m.CreateTables(context.Background(), buildTables(t)...))
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestCreateTablesDefersAlterConstraints(t *testing.T) {
	reg := schema.NewRegistry(schema.NamingStrategy{SingularTable: true}, logger.Discard)

	invoice, err := reg.NewEntity("Invoice", "test")
	require.NoError(t, err)
	invoice.Field("id", schema.Int, schema.WithPrimaryKey())
	schema.NewRelationship(schema.BelongsTo, "Payment", schema.WithUseAlter(), schema.WithoutIndex()).Attach(invoice, "payment")

	payment, err := reg.NewEntity("Payment", "test")
	require.NoError(t, err)
	payment.Field("id", schema.Int, schema.WithPrimaryKey())
	schema.NewRelationship(schema.BelongsTo, "Invoice", schema.WithoutIndex()).Attach(payment, "invoice")

	require.NoError(t, reg.Build(context.Background()))

	db, mock, err := sqlmock.New(sqlmock.QueryMatcherOption(sqlmock.QueryMatcherEqual))
	require.NoError(t, err)
	defer db.Close()

	mock.ExpectExec("CREATE TABLE invoice (id integer, payment_id integer, PRIMARY KEY (id))").
		WillReturnResult(sqlmock.NewResult(0, 0))
	mock.ExpectExec("CREATE TABLE payment (id integer, invoice_id integer, PRIMARY KEY (id), CONSTRAINT payment_invoice_id_fk FOREIGN KEY (invoice_id) REFERENCES invoice (id))").
		WillReturnResult(sqlmock.NewResult(0, 0))
	mock.ExpectExec("ALTER TABLE invoice ADD CONSTRAINT invoice_payment_id_fk FOREIGN KEY (payment_id) REFERENCES payment (id)").
		WillReturnResult(sqlmock.NewResult(0, 0))

	m := migrator.New(db, logger.Discard)
	require.NoError(t, m.CreateTables(context.Background(), reg.Tables()...))
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestDisableForeignKeyConstraints(t *testing.T) {
	db, mock, err := sqlmock.New(sqlmock.QueryMatcherOption(sqlmock.QueryMatcherEqual))
	require.NoError(t, err)
	defer db.Close()

	mock.ExpectExec("CREATE TABLE person (id integer, name varchar(60) NOT NULL, PRIMARY KEY (id))").
		WillReturnResult(sqlmock.NewResult(0, 0))
	mock.ExpectExec("CREATE TABLE pet (id integer, owner_id integer, PRIMARY KEY (id))").
		WillReturnResult(sqlmock.NewResult(0, 0))
	mock.ExpectExec("CREATE INDEX idx_pet_owner_id ON pet (owner_id)").
		WillReturnResult(sqlmock.NewResult(0, 0))

	m := migrator.New(db, logger.Discard)
	m.DisableForeignKeyConstraints = true
	require.NoError(t, m.CreateTables(context.Background(), buildTables(t)...))
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestCreateTableDDL(t *testing.T) {
	table := schema.NewTable("person", []*schema.Column{
		{Name: "id", DataType: schema.Int, PrimaryKey: true},
		{Name: "name", DataType: schema.String, Size: 60},
		{Name: "email", DataType: schema.String, Unique: true, Nullable: true},
		{Name: "age", DataType: schema.Int, Nullable: true, Default: "0", HasDefault: true},
		{Name: "created_at", DataType: schema.Time, Nullable: true, Default: "now()", HasDefault: true},
	}, nil)
	table.Checks = []*schema.CheckConstraint{{Name: "chk_person_age", Constraint: "age >= 0", Column: "age"}}

	assert.Equal(t,
		"CREATE TABLE person (id integer, name varchar(60) NOT NULL, email text UNIQUE, "+
			"age integer DEFAULT 0, created_at timestamp DEFAULT now(), "+
			"PRIMARY KEY (id), CONSTRAINT chk_person_age CHECK (age >= 0))",
		migrator.CreateTableDDL(table))
}

func TestForeignKeyRules(t *testing.T) {
	table := schema.NewTable("pet", []*schema.Column{
		{Name: "owner_id", DataType: schema.Int, Nullable: true},
	}, []*schema.ForeignKeyConstraint{{
		Name:       "pet_owner_id_fk",
		Columns:    []string{"owner_id"},
		References: []schema.ForeignKeyRef{{Table: "person", Column: "id"}},
		OnDelete:   "cascade",
		OnUpdate:   "restrict",
	}})

	assert.Equal(t,
		"CREATE TABLE pet (owner_id integer, CONSTRAINT pet_owner_id_fk FOREIGN KEY (owner_id) "+
			"REFERENCES person (id) ON DELETE CASCADE ON UPDATE RESTRICT)",
		migrator.CreateTableDDL(table))
}

func TestAddConstraintDDL(t *testing.T) {
	table := schema.NewTable("invoice", nil, nil)
	fk := &schema.ForeignKeyConstraint{
		Name:       "invoice_payment_id_fk",
		Columns:    []string{"payment_id"},
		References: []schema.ForeignKeyRef{{Table: "payment", Column: "id"}},
		UseAlter:   true,
	}
	assert.Equal(t,
		"ALTER TABLE invoice ADD CONSTRAINT invoice_payment_id_fk FOREIGN KEY (payment_id) REFERENCES payment (id)",
		migrator.AddConstraintDDL(table, fk))
}

func TestSQLTypes(t *testing.T) {
	cases := map[schema.DataType]string{
		schema.Bool:   "boolean",
		schema.Int:    "integer",
		schema.Uint:   "integer",
		schema.Float:  "real",
		schema.String: "text",
		schema.Time:   "timestamp",
		schema.Bytes:  "blob",
		schema.UUID:   "uuid",
	}
	for dataType, want := range cases {
		table := schema.NewTable("t", []*schema.Column{{Name: "c", DataType: dataType, Nullable: true}}, nil)
		assert.Equal(t, "CREATE TABLE t (c "+want+")", migrator.CreateTableDDL(table))
	}
}

func TestStringDefaultQuoting(t *testing.T) {
	table := schema.NewTable("event", []*schema.Column{
		{Name: "kind", DataType: schema.String, Nullable: true, Default: "created", HasDefault: true},
	}, nil)
	assert.Equal(t, "CREATE TABLE event (kind text DEFAULT 'created')", migrator.CreateTableDDL(table))
}
