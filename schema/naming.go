package schema

import (
	"crypto/sha1"
	"encoding/hex"
	"fmt"
	"strings"
	"sync"
	"unicode/utf8"

	"github.com/jinzhu/inflection"
	"golang.org/x/text/cases"
	"golang.org/x/text/language"

	"github.com/go-relix/relix/utils"
)

// validDBName reports whether name can appear unquoted in DDL. Generated
// names always pass; explicit overrides are checked against it.
func validDBName(name string) bool {
	for _, c := range name {
		if utils.IsValidDBNameChar(c) {
			return false
		}
	}
	return name != ""
}

// Namer namer interface
type Namer interface {
	TableName(entity string) string
	ColumnName(table, column string) string
	ForeignKeyColumnName(relationship, primaryKey string) string
	ForeignKeyConstraintName(table string, columns []string) string
	JoinTableColumnName(table, primaryKey, entity string) string
	CheckerName(table, column string) string
	IndexName(table, column string) string
}

// NamingStrategy tables, columns naming strategy
type NamingStrategy struct {
	TablePrefix   string
	SingularTable bool
}

// TableName convert string to table name
func (ns NamingStrategy) TableName(str string) string {
	if ns.SingularTable {
		return ns.TablePrefix + toDBName(str)
	}
	return ns.TablePrefix + inflection.Plural(toDBName(str))
}

// ColumnName convert string to column name
func (ns NamingStrategy) ColumnName(table, column string) string {
	return toDBName(column)
}

// ForeignKeyColumnName generate the foreign key column name for one
// referenced primary key column, e.g. owner + id => owner_id.
func (ns NamingStrategy) ForeignKeyColumnName(relationship, primaryKey string) string {
	return fmt.Sprintf("%s_%s", toDBName(relationship), primaryKey)
}

// ForeignKeyConstraintName generate fk constraint name for relation.
// In some databases (at least MySQL) the constraint name needs to be
// unique for the whole database, instead of per table.
func (ns NamingStrategy) ForeignKeyConstraintName(table string, columns []string) string {
	return checkLength(fmt.Sprintf("%s_%s_fk", table, strings.Join(columns, "_")))
}

// JoinTableColumnName generate a join table column name from one side's
// table name and primary key column.
func (ns NamingStrategy) JoinTableColumnName(table, primaryKey, entity string) string {
	return fmt.Sprintf("%s_%s", table, primaryKey)
}

// CheckerName generate checker name
func (ns NamingStrategy) CheckerName(table, column string) string {
	return fmt.Sprintf("chk_%s_%s", table, column)
}

// IndexName generate index name
func (ns NamingStrategy) IndexName(table, column string) string {
	return checkLength(fmt.Sprintf("idx_%v_%v", table, toDBName(column)))
}

func checkLength(name string) string {
	if utf8.RuneCountInString(name) > 64 {
		h := sha1.New()
		h.Write([]byte(name))
		bs := h.Sum(nil)

		name = name[:56] + hex.EncodeToString(bs)[:8]
	}
	return name
}

var (
	smap sync.Map
	// https://github.com/golang/lint/blob/master/lint.go#L770
	commonInitialisms         = []string{"API", "ASCII", "CPU", "CSS", "DNS", "EOF", "GUID", "HTML", "HTTP", "HTTPS", "ID", "IP", "JSON", "LHS", "QPS", "RAM", "RHS", "RPC", "SLA", "SMTP", "SSH", "TLS", "TTL", "UID", "UI", "UUID", "URI", "URL", "UTF8", "VM", "XML", "XSRF", "XSS"}
	commonInitialismsReplacer *strings.Replacer
)

func init() {
	titleCaser := cases.Title(language.English)
	var commonInitialismsForReplacer []string
	for _, initialism := range commonInitialisms {
		commonInitialismsForReplacer = append(commonInitialismsForReplacer, initialism, titleCaser.String(strings.ToLower(initialism)))
	}
	commonInitialismsReplacer = strings.NewReplacer(commonInitialismsForReplacer...)
}

func toDBName(name string) string {
	if name == "" {
		return ""
	} else if v, ok := smap.Load(name); ok {
		return fmt.Sprint(v)
	}

	var (
		value                          = commonInitialismsReplacer.Replace(name)
		buf                            strings.Builder
		lastCase, nextCase, nextNumber bool // upper case == true
		curCase                        = value[0] <= 'Z' && value[0] >= 'A'
	)

	for i, v := range value[:len(value)-1] {
		nextCase = value[i+1] <= 'Z' && value[i+1] >= 'A'
		nextNumber = value[i+1] >= '0' && value[i+1] <= '9'

		if curCase {
			if lastCase && (nextCase || nextNumber) {
				buf.WriteRune(v + 32)
			} else {
				if i > 0 && value[i-1] != '_' && value[i+1] != '_' {
					buf.WriteByte('_')
				}
				buf.WriteRune(v + 32)
			}
		} else {
			buf.WriteRune(v)
		}

		lastCase = curCase
		curCase = nextCase
	}

	if curCase {
		if !lastCase && len(value) > 1 {
			buf.WriteByte('_')
		}
		buf.WriteByte(value[len(value)-1] + 32)
	} else {
		buf.WriteByte(value[len(value)-1])
	}

	dbName := buf.String()
	smap.Store(name, dbName)
	return dbName
}
