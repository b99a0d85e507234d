// Package store keeps RDF statements as mangle atoms in a SQL database.
//
// The ontology loader writes one atom per statement; the query side reads them back
// with GetFacts patterns in which variables act as wildcards. SQLite (modernc) and
// PostgreSQL (lib/pq) are supported through the dialect interface.
package store

import (
	"database/sql"
	"fmt"
	"hash/fnv"
	"sort"
	"strconv"
	"strings"
	"sync/atomic"

	"github.com/go-json-experiment/json"
	"github.com/google/mangle/ast"
	"github.com/google/mangle/factstore"
	"github.com/rs/zerolog"
)

// Counter for generating unique in-memory database names
var inMemoryDBCounter atomic.Uint64

// DB implements the mangle FactStoreWithRemove interface on top of a SQL database.
// Atoms live in one statements table: the predicate key, the subject and property
// columns used by lookups, and the JSON array of all arguments.
type DB struct {
	db *sql.DB
	// ownsDB is false when the connection was handed in by the caller.
	ownsDB bool
	// dialect handles SQL syntax differences between databases.
	dialect dialect
	log     zerolog.Logger

	addStmt      *sql.Stmt
	removeStmt   *sql.Stmt
	containsStmt *sql.Stmt
}

var _ factstore.FactStoreWithRemove = (*DB)(nil)

// Add adds a fact to the store and returns true if it didn't exist before.
func (s *DB) Add(atom ast.Atom) bool {
	row, err := atomToRow(atom)
	if err != nil {
		// Non-ground atoms or unsupported constant types are never stored.
		return false
	}

	// The primary key on atom_hash deduplicates.
	res, err := s.addStmt.Exec(row.params()...)
	if err != nil {
		s.log.Error().Err(err).Str("predicate", row.predicate).Msg("store add failed")
		return false
	}

	rowsAffected, err := res.RowsAffected()
	if err != nil {
		return false
	}

	return rowsAffected > 0
}

// Contains returns true if given atom is already present in store.
func (s *DB) Contains(atom ast.Atom) bool {
	row, err := atomToRow(atom)
	if err != nil {
		return false
	}

	var count int
	if err := s.containsStmt.QueryRow(row.hash).Scan(&count); err != nil {
		s.log.Error().Err(err).Msg("store contains failed")
		return false
	}

	return count > 0
}

// Remove removes a fact from the store and returns true if that fact was present.
func (s *DB) Remove(atom ast.Atom) bool {
	row, err := atomToRow(atom)
	if err != nil {
		return false
	}

	result, err := s.removeStmt.Exec(row.hash)
	if err != nil {
		s.log.Error().Err(err).Msg("store remove failed")
		return false
	}

	rowsAffected, err := result.RowsAffected()
	if err != nil {
		s.log.Error().Err(err).Msg("store remove: rows affected unavailable")
		return false
	}

	return rowsAffected > 0
}

// GetFacts calls callback for every stored fact that matches pattern.
// Constant arguments of the pattern filter; anything else is a wildcard. A string
// subject or property is matched on its indexed column.
func (s *DB) GetFacts(pattern ast.Atom, callback func(ast.Atom) error) error {
	params := []any{predicateToKey(pattern.Predicate)}
	next := func(v any) string {
		params = append(params, v)
		return s.dialect.placeholder(len(params))
	}

	var query strings.Builder
	query.WriteString("SELECT " + s.dialect.argsText() + " FROM statements WHERE predicate = " + s.dialect.placeholder(1))
	for i, arg := range pattern.Args {
		constant, ok := arg.(ast.Constant)
		if !ok {
			continue
		}
		if str, err := constant.StringValue(); err == nil && i < 2 {
			query.WriteString(" AND " + keyColumn(i) + " = " + next(str))
			continue
		}
		value, err := json.Marshal([]argValue{{constant}})
		if err != nil {
			return fmt.Errorf("failed to marshal pattern arg %d: %w", i, err)
		}
		query.WriteString(" AND " + s.dialect.argEquals(i, next(string(value))))
	}

	rows, err := s.db.Query(query.String(), params...)
	if err != nil {
		return fmt.Errorf("failed to query facts: %w", err)
	}
	defer rows.Close()

	for rows.Next() {
		var argsJSON string
		if err := rows.Scan(&argsJSON); err != nil {
			return fmt.Errorf("failed to scan row: %w", err)
		}

		fact, err := unmarshalAtom(pattern.Predicate, argsJSON)
		if err != nil {
			return fmt.Errorf("failed to unmarshal atom: %w", err)
		}
		if err := callback(fact); err != nil {
			return err
		}
	}

	return rows.Err()
}

// keyColumn is the column holding argument i, for i < 2.
func keyColumn(i int) string {
	if i == 0 {
		return colSubject
	}
	return colProperty
}

// ListPredicates lists predicates available in this store.
func (s *DB) ListPredicates() []ast.PredicateSym {
	rows, err := s.db.Query(`SELECT DISTINCT predicate FROM statements`)
	if err != nil {
		s.log.Error().Err(err).Msg("store failed to list predicates")
		return nil
	}
	defer rows.Close()

	var predicates []ast.PredicateSym
	for rows.Next() {
		var predicateKey string
		if err := rows.Scan(&predicateKey); err != nil {
			s.log.Error().Err(err).Msg("store failed to scan predicate row")
			continue
		}
		pred, err := keyToPredicate(predicateKey)
		if err != nil {
			s.log.Error().Err(err).Send()
			continue
		}
		predicates = append(predicates, pred)
	}
	if err := rows.Err(); err != nil {
		s.log.Error().Err(err).Msg("store error iterating predicate rows")
	}

	return predicates
}

// EstimateFactCount returns the number of facts in the store.
func (s *DB) EstimateFactCount() int {
	var count int
	if err := s.db.QueryRow("SELECT COUNT(*) FROM statements").Scan(&count); err != nil {
		s.log.Error().Err(err).Msg("store failed to count facts")
		return 0
	}
	return count
}

// Merge merges contents of given store into this store.
func (s *DB) Merge(other factstore.ReadOnlyFactStore) {
	var facts []ast.Atom
	for _, predicate := range other.ListPredicates() {
		_ = other.GetFacts(ast.NewQuery(predicate), func(atom ast.Atom) error {
			facts = append(facts, atom)
			return nil
		})
	}
	if err := s.AddAll(facts); err != nil {
		s.log.Error().Err(err).Msg("store merge failed")
	}
}

// AddAll inserts facts with multi-row INSERT statements inside one transaction.
// Facts that cannot be stored are skipped; duplicates are ignored.
func (s *DB) AddAll(facts []ast.Atom) error {
	// Keeps a batch under PostgreSQL's 65535 bind parameters.
	const batchSize = 500

	rows := make([]statementRow, 0, len(facts))
	for _, fact := range facts {
		row, err := atomToRow(fact)
		if err != nil {
			continue
		}
		rows = append(rows, row)
	}
	if len(rows) == 0 {
		return nil
	}

	tx, err := s.db.Begin()
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback()

	for i := 0; i < len(rows); i += batchSize {
		batch := rows[i:min(i+batchSize, len(rows))]
		params := make([]any, 0, len(batch)*len(rowColumns))
		for _, r := range batch {
			params = append(params, r.params()...)
		}
		if _, err := tx.Exec(insertSQL(s.dialect, len(batch)), params...); err != nil {
			return fmt.Errorf("failed to execute batch insert: %w", err)
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("failed to commit transaction: %w", err)
	}
	return nil
}

// Truncate removes every fact. A database file or server usually outlives one
// run, so the pipeline clears it before loading a new ontology.
func (s *DB) Truncate() error {
	if _, err := s.db.Exec("DELETE FROM statements"); err != nil {
		return fmt.Errorf("failed to truncate statements: %w", err)
	}
	return nil
}

// Close releases the prepared statements and, if the store opened it, the connection.
func (s *DB) Close() error {
	for _, stmt := range []*sql.Stmt{s.addStmt, s.removeStmt, s.containsStmt} {
		if stmt != nil {
			stmt.Close()
		}
	}
	if !s.ownsDB {
		return nil
	}
	return s.db.Close()
}

// initSchemaAndStatements creates the table, indexes, and prepared statements.
func (s *DB) initSchemaAndStatements() error {
	for _, stmt := range s.dialect.schema() {
		if _, err := s.db.Exec(stmt); err != nil {
			return fmt.Errorf("failed to create schema: %w", err)
		}
	}

	var err error
	if s.addStmt, err = s.db.Prepare(insertSQL(s.dialect, 1)); err != nil {
		return fmt.Errorf("failed to prepare add statement: %w", err)
	}
	if s.removeStmt, err = s.db.Prepare(removeSQL(s.dialect)); err != nil {
		return fmt.Errorf("failed to prepare remove statement: %w", err)
	}
	if s.containsStmt, err = s.db.Prepare(containsSQL(s.dialect)); err != nil {
		return fmt.Errorf("failed to prepare contains statement: %w", err)
	}
	return nil
}

// predicateToKey converts a PredicateSym to the database key format "symbol_arity".
// For example: PredicateSym{Symbol: "triple", Arity: 3} -> "triple_3"
func predicateToKey(p ast.PredicateSym) string {
	return p.Symbol + "_" + strconv.Itoa(p.Arity)
}

// keyToPredicate parses a database key in "symbol_arity" format back to PredicateSym.
func keyToPredicate(key string) (ast.PredicateSym, error) {
	lastUnderscore := strings.LastIndex(key, "_")
	if lastUnderscore == -1 {
		return ast.PredicateSym{}, fmt.Errorf("invalid predicate key format: %q", key)
	}
	arity, err := strconv.Atoi(key[lastUnderscore+1:])
	if err != nil {
		return ast.PredicateSym{}, fmt.Errorf("invalid arity in predicate key %q: %w", key, err)
	}
	return ast.PredicateSym{Symbol: key[:lastUnderscore], Arity: arity}, nil
}

// szudzikElegantPair implements Szudzik's elegant pairing function.
// See http://szudzik.com/ElegantPairing.pdf
func szudzikElegantPair(fst, snd uint64) uint64 {
	if fst >= snd {
		return fst*fst + fst + snd
	}
	return snd*snd + fst
}

// statementRow is an atom in its stored form.
type statementRow struct {
	predicate string
	hash      int64
	subject   string
	property  string
	args      string
}

// params returns the row's values in rowColumns order.
func (r statementRow) params() []any {
	return []any{r.predicate, r.hash, r.subject, r.property, r.args}
}

// atomToRow computes the stored form of a ground atom. Subject and property are
// the first two arguments when they are strings, empty otherwise.
func atomToRow(atom ast.Atom) (statementRow, error) {
	args, err := argValues(atom)
	if err != nil {
		return statementRow{}, err
	}

	h := fnv.New64a()
	h.Write([]byte(atom.Predicate.Symbol))
	hash := szudzikElegantPair(h.Sum64(), uint64(atom.Predicate.Arity))
	for _, a := range args {
		hash = szudzikElegantPair(hash, szudzikElegantPair(a.Hash(), uint64(a.Type)))
	}

	argsJSON, err := json.Marshal(args)
	if err != nil {
		return statementRow{}, fmt.Errorf("failed to marshal args: %w", err)
	}

	row := statementRow{
		predicate: predicateToKey(atom.Predicate),
		// BIGINT keeps the bit pattern.
		hash: int64(hash),
		args: string(argsJSON),
	}
	if len(args) > 0 {
		row.subject, _ = args[0].StringValue()
	}
	if len(args) > 1 {
		row.property, _ = args[1].StringValue()
	}
	return row, nil
}

// sortedPredicates returns the store's predicates ordered by symbol then arity.
func sortedPredicates(s factstore.ReadOnlyFactStore) []ast.PredicateSym {
	predicates := s.ListPredicates()
	sort.Slice(predicates, func(i, j int) bool {
		a, b := predicates[i], predicates[j]
		return a.Symbol < b.Symbol || (a.Symbol == b.Symbol && a.Arity < b.Arity)
	})
	return predicates
}
