package store

import (
	"fmt"
	"strings"
)

// Every atom is one row of the statements table. The first two arguments of an
// atom, the subject and property of a triple or literal, are copied into their
// own columns when they are strings, so the lookups the ontology queries make
// (by subject, by subject and property, by property) hit an index instead of
// the JSON args.
const (
	colPredicate = "predicate"
	colHash      = "atom_hash"
	colSubject   = "subject"
	colProperty  = "property"
	colArgs      = "args"
)

// rowColumns is the insert order of a statement row.
var rowColumns = []string{colPredicate, colHash, colSubject, colProperty, colArgs}

// dialect covers what differs between the SQL backends.
type dialect interface {
	// schema returns the statements creating the table and its indexes.
	schema() []string
	// placeholder returns the n-th (1-based) bind parameter.
	placeholder(n int) string
	// argsValue wraps the placeholder of the JSON args on insert.
	argsValue(placeholder string) string
	// argsText selects the args column as JSON text.
	argsText() string
	// argEquals compares argument index of args with a one-element JSON array
	// bound at placeholder.
	argEquals(index int, placeholder string) string
	// onConflict ends an insert so that duplicates are skipped.
	onConflict() string
}

// insertSQL builds a multi-row INSERT for numRows statement rows.
func insertSQL(d dialect, numRows int) string {
	var sb strings.Builder
	sb.WriteString("INSERT INTO statements (" + strings.Join(rowColumns, ", ") + ") VALUES ")
	n := 1
	for i := 0; i < numRows; i++ {
		if i > 0 {
			sb.WriteString(", ")
		}
		sb.WriteString("(")
		for j := range rowColumns {
			if j > 0 {
				sb.WriteString(", ")
			}
			p := d.placeholder(n)
			if rowColumns[j] == colArgs {
				p = d.argsValue(p)
			}
			sb.WriteString(p)
			n++
		}
		sb.WriteString(")")
	}
	sb.WriteString(" " + d.onConflict())
	return sb.String()
}

func removeSQL(d dialect) string {
	return "DELETE FROM statements WHERE atom_hash = " + d.placeholder(1)
}

func containsSQL(d dialect) string {
	return "SELECT COUNT(*) FROM statements WHERE atom_hash = " + d.placeholder(1)
}

// statementIndexes are shared by both backends.
var statementIndexes = []string{
	`CREATE INDEX IF NOT EXISTS idx_statements_subject ON statements(predicate, subject, property)`,
	`CREATE INDEX IF NOT EXISTS idx_statements_property ON statements(predicate, property)`,
}

type sqliteDialect struct{}

func (sqliteDialect) schema() []string {
	table := `
		CREATE TABLE IF NOT EXISTS statements (
			predicate TEXT NOT NULL,
			atom_hash BIGINT NOT NULL PRIMARY KEY,
			subject TEXT NOT NULL,
			property TEXT NOT NULL,
			args BLOB NOT NULL
		) WITHOUT ROWID`
	return append([]string{table}, statementIndexes...)
}

func (sqliteDialect) placeholder(int) string { return "?" }

// jsonb() stores the args array in SQLite's binary JSON format.
func (sqliteDialect) argsValue(p string) string { return "jsonb(" + p + ")" }

func (sqliteDialect) argsText() string { return "json(args)" }

func (sqliteDialect) argEquals(index int, p string) string {
	// Both sides go through json_extract so strings compare with strings
	// and numbers with numbers.
	return fmt.Sprintf("json_extract(args, '$[%d]') = json_extract(%s, '$[0]')", index, p)
}

func (sqliteDialect) onConflict() string { return "ON CONFLICT DO NOTHING" }

type postgresDialect struct{}

func (postgresDialect) schema() []string {
	table := `
		CREATE TABLE IF NOT EXISTS statements (
			predicate TEXT NOT NULL,
			atom_hash BIGINT NOT NULL PRIMARY KEY,
			subject TEXT NOT NULL,
			property TEXT NOT NULL,
			args JSONB NOT NULL
		)`
	return append([]string{table}, statementIndexes...)
}

func (postgresDialect) placeholder(n int) string { return fmt.Sprintf("$%d", n) }

func (postgresDialect) argsValue(p string) string { return p + "::jsonb" }

func (postgresDialect) argsText() string { return "args::text" }

func (postgresDialect) argEquals(index int, p string) string {
	return fmt.Sprintf("(args -> %d) = (%s::jsonb -> 0)", index, p)
}

func (postgresDialect) onConflict() string { return "ON CONFLICT (atom_hash) DO NOTHING" }
