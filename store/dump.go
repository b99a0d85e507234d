package store

import (
	"fmt"
	"io"
	"sort"

	"github.com/go-json-experiment/json"
	"github.com/go-json-experiment/json/jsontext"
	"github.com/google/mangle/ast"
	"github.com/google/mangle/factstore"
)

// Dump writes every fact of s to w as one JSON object per line, ordered by
// predicate and then by the serialized form of the fact. It works on any
// read-only fact store, so in-memory and SQL-backed loads produce identical output.
func Dump(w io.Writer, s factstore.ReadOnlyFactStore) (int, error) {
	written := 0
	for _, pred := range sortedPredicates(s) {
		var lines []string
		err := s.GetFacts(ast.NewQuery(pred), func(a ast.Atom) error {
			dumped, err := newAtomJSON(a)
			if err != nil {
				return fmt.Errorf("failed to dump %v: %w", a, err)
			}
			line, err := json.Marshal(dumped, jsontext.AllowInvalidUTF8(true))
			if err != nil {
				return fmt.Errorf("failed to marshal %v: %w", a, err)
			}
			lines = append(lines, string(line))
			return nil
		})
		if err != nil {
			return written, err
		}
		sort.Strings(lines)
		for _, line := range lines {
			if _, err := io.WriteString(w, line+"\n"); err != nil {
				return written, fmt.Errorf("failed to write fact: %w", err)
			}
			written++
		}
	}
	return written, nil
}
