// Package migrator turns the tables materialized by a schema build into
// DDL and executes it. Tables are created in foreign-key dependency
// order; constraints marked use_alter are added afterwards in separate
// ALTER statements, which is what makes circular references buildable.
package migrator

import (
	"context"
	"database/sql"
	"fmt"
	"strings"
	"time"

	"github.com/go-relix/relix/logger"
	"github.com/go-relix/relix/schema"
)

// Migrator executes the DDL of materialized tables.
type Migrator struct {
	DB     *sql.DB
	Logger logger.Interface
	Namer  schema.Namer

	// DisableForeignKeyConstraints leaves every foreign key out of the
	// generated DDL, for databases or test setups that don't enforce them.
	DisableForeignKeyConstraints bool
}

// New creates a migrator bound to a database handle.
func New(db *sql.DB, log logger.Interface) *Migrator {
	if log == nil {
		log = logger.Default
	}
	return &Migrator{DB: db, Logger: log, Namer: schema.NamingStrategy{}}
}

// CreateTables creates every given table, its indexes, and the deferred
// constraints, in dependency order.
func (m *Migrator) CreateTables(ctx context.Context, tables ...*schema.Table) error {
	ordered := sortByDependency(tables)

	var deferred []string
	for _, table := range ordered {
		ddl := CreateTableDDL(table)
		if m.DisableForeignKeyConstraints {
			ddl = createTableDDL(table, false)
		}
		if err := m.exec(ctx, ddl); err != nil {
			return fmt.Errorf("creating table %q: %w", table.Name, err)
		}
		for _, col := range table.Columns {
			if col.Index && !col.PrimaryKey {
				deferred = append(deferred, CreateIndexDDL(m.Namer, table, col))
			}
		}
		if m.DisableForeignKeyConstraints {
			continue
		}
		for _, fk := range table.ForeignKeys {
			if fk.UseAlter {
				deferred = append(deferred, AddConstraintDDL(table, fk))
			}
		}
	}

	for _, stmt := range deferred {
		if err := m.exec(ctx, stmt); err != nil {
			return err
		}
	}
	return nil
}

func (m *Migrator) exec(ctx context.Context, stmt string) error {
	begin := time.Now()
	_, err := m.DB.ExecContext(ctx, stmt)
	m.Logger.Trace(ctx, begin, func() (string, int64) { return stmt, -1 }, err)
	return err
}

// sortByDependency orders tables so every foreign key target comes
// before its referrer. Self references and use_alter constraints don't
// constrain the order; unresolvable cycles keep their input order and
// are left for the deferred constraints to sort out.
func sortByDependency(tables []*schema.Table) []*schema.Table {
	byName := make(map[string]*schema.Table, len(tables))
	for _, t := range tables {
		byName[t.Name] = t
	}

	placed := make(map[string]bool, len(tables))
	ordered := make([]*schema.Table, 0, len(tables))
	pending := append([]*schema.Table(nil), tables...)

	for len(pending) > 0 {
		var next []*schema.Table
		progressed := false
		for _, t := range pending {
			if dependenciesPlaced(t, byName, placed) {
				ordered = append(ordered, t)
				placed[t.Name] = true
				progressed = true
			} else {
				next = append(next, t)
			}
		}
		if !progressed {
			return append(ordered, next...)
		}
		pending = next
	}
	return ordered
}

func dependenciesPlaced(t *schema.Table, byName map[string]*schema.Table, placed map[string]bool) bool {
	for _, fk := range t.ForeignKeys {
		if fk.UseAlter {
			continue
		}
		for _, ref := range fk.References {
			if ref.Table == t.Name {
				continue
			}
			if _, known := byName[ref.Table]; known && !placed[ref.Table] {
				return false
			}
		}
	}
	return true
}

// CreateTableDDL renders one CREATE TABLE statement.
func CreateTableDDL(t *schema.Table) string {
	return createTableDDL(t, true)
}

func createTableDDL(t *schema.Table, withForeignKeys bool) string {
	var defs []string
	var pks []string

	for _, col := range t.Columns {
		def := fmt.Sprintf("%s %s", col.Name, sqlType(col))
		if !col.Nullable && !col.PrimaryKey {
			def += " NOT NULL"
		}
		if col.Unique {
			def += " UNIQUE"
		}
		if col.HasDefault {
			def += " DEFAULT " + defaultLiteral(col)
		}
		defs = append(defs, def)

		if col.PrimaryKey {
			pks = append(pks, col.Name)
		}
	}

	if len(pks) > 0 {
		defs = append(defs, fmt.Sprintf("PRIMARY KEY (%s)", strings.Join(pks, ", ")))
	}
	for _, chk := range t.Checks {
		defs = append(defs, fmt.Sprintf("CONSTRAINT %s CHECK (%s)", chk.Name, chk.Constraint))
	}
	if withForeignKeys {
		for _, fk := range t.ForeignKeys {
			if !fk.UseAlter {
				defs = append(defs, foreignKeyDDL(fk))
			}
		}
	}

	return fmt.Sprintf("CREATE TABLE %s (%s)", t.Name, strings.Join(defs, ", "))
}

// AddConstraintDDL renders the deferred form of a foreign key.
func AddConstraintDDL(t *schema.Table, fk *schema.ForeignKeyConstraint) string {
	return fmt.Sprintf("ALTER TABLE %s ADD %s", t.Name, foreignKeyDDL(fk))
}

// CreateIndexDDL renders the index of one column.
func CreateIndexDDL(namer schema.Namer, t *schema.Table, col *schema.Column) string {
	return fmt.Sprintf("CREATE INDEX %s ON %s (%s)", namer.IndexName(t.Name, col.Name), t.Name, col.Name)
}

func foreignKeyDDL(fk *schema.ForeignKeyConstraint) string {
	refTable := fk.References[0].Table
	refCols := make([]string, len(fk.References))
	for i, ref := range fk.References {
		refCols[i] = ref.Column
	}

	ddl := fmt.Sprintf("CONSTRAINT %s FOREIGN KEY (%s) REFERENCES %s (%s)",
		fk.Name, strings.Join(fk.Columns, ", "), refTable, strings.Join(refCols, ", "))
	if fk.OnDelete != "" {
		ddl += " ON DELETE " + strings.ToUpper(fk.OnDelete)
	}
	if fk.OnUpdate != "" {
		ddl += " ON UPDATE " + strings.ToUpper(fk.OnUpdate)
	}
	return ddl
}

func sqlType(col *schema.Column) string {
	switch col.DataType {
	case schema.Bool:
		return "boolean"
	case schema.Int, schema.Uint:
		return "integer"
	case schema.Float:
		return "real"
	case schema.String:
		if col.Size > 0 {
			return fmt.Sprintf("varchar(%d)", col.Size)
		}
		return "text"
	case schema.Time:
		return "timestamp"
	case schema.Bytes:
		return "blob"
	case schema.UUID:
		return "uuid"
	default:
		return string(col.DataType)
	}
}

func defaultLiteral(col *schema.Column) string {
	switch col.DataType {
	case schema.String, schema.Time, schema.UUID:
		if strings.Contains(col.Default, "(") {
			return col.Default
		}
		return "'" + col.Default + "'"
	default:
		return col.Default
	}
}
