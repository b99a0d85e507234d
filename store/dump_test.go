package store

import (
	"strings"
	"testing"

	"github.com/google/mangle/factstore"
)

func TestDump(t *testing.T) {
	mem := factstore.NewSimpleInMemoryStore()
	mem.Add(evalAtom(`triple("b", "type", "Class")`))
	mem.Add(evalAtom(`triple("a", "type", "Class")`))
	mem.Add(evalAtom(`literal("a", "label", "A", "string", "")`))

	var memOut strings.Builder
	n, err := Dump(&memOut, &mem)
	if err != nil {
		t.Fatalf("Dump: %v", err)
	}
	if n != 3 {
		t.Errorf("Dump wrote %d facts, want 3", n)
	}

	want := strings.Join([]string{
		`{"predicate":{"symbol":"literal","arity":5},"args":["a","label","A","string",""]}`,
		`{"predicate":{"symbol":"triple","arity":3},"args":["a","type","Class"]}`,
		`{"predicate":{"symbol":"triple","arity":3},"args":["b","type","Class"]}`,
	}, "\n") + "\n"
	if memOut.String() != want {
		t.Errorf("Dump output:\n%s\nwant:\n%s", memOut.String(), want)
	}

	db, err := NewSQLite(":memory:")
	if err != nil {
		t.Fatal(err)
	}
	t.Cleanup(func() { db.Close() })
	db.Merge(&mem)

	var dbOut strings.Builder
	if _, err := Dump(&dbOut, db); err != nil {
		t.Fatalf("Dump(sqlite): %v", err)
	}
	if dbOut.String() != want {
		t.Errorf("sqlite dump differs from in-memory dump:\n%s", dbOut.String())
	}
}
