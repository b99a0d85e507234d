package store

import (
	"fmt"
	"testing"

	"bitbucket.org/creachadair/stringset"
	"github.com/google/mangle/ast"
	"github.com/google/mangle/factstore"
	"github.com/google/mangle/functional"
	"github.com/google/mangle/parse"
)

// atom parses a string into an ast.Atom using Mangle's parser.
func atom(s string) ast.Atom {
	term, err := parse.Term(s)
	if err != nil {
		panic(fmt.Sprintf("failed to parse %q: %v", s, err))
	}
	return term.(ast.Atom)
}

// evalAtom parses and evaluates a string into a ground ast.Atom.
func evalAtom(s string) ast.Atom {
	eval, err := functional.EvalAtom(atom(s), nil)
	if err != nil {
		panic(fmt.Sprintf("failed to eval %q: %v", s, err))
	}
	return eval
}

func runAddContainsTest(t *testing.T, store factstore.FactStoreWithRemove) {
	tests := []ast.Atom{
		evalAtom(`triple("http://ex.org/A", "http://www.w3.org/1999/02/22-rdf-syntax-ns#type", "http://www.w3.org/2002/07/owl#Class")`),
		evalAtom(`triple("http://ex.org/A", "http://www.w3.org/2000/01/rdf-schema#subClassOf", "_:b0")`),
		evalAtom(`literal("http://ex.org/A", "http://www.w3.org/2000/01/rdf-schema#label", "Eine Klasse", "http://www.w3.org/1999/02/22-rdf-syntax-ns#langString", "de")`),
		evalAtom(`literal("http://ex.org/A", "http://www.w3.org/2000/01/rdf-schema#comment", "line one\nline two", "http://www.w3.org/2001/XMLSchema#string", "")`),
		evalAtom(`num(42)`),
		evalAtom(`num(-7)`),
		evalAtom(`uni("Größe €")`),
	}

	for _, testAtom := range tests {
		t.Run(testAtom.String(), func(t *testing.T) {
			if got := store.Add(testAtom); !got {
				t.Errorf("Add(%v)=%v want %v", testAtom, got, true)
			}
			if !store.Contains(testAtom) {
				t.Errorf("Contains(%v)=false want true", testAtom)
			}
			if got := store.Add(testAtom); got {
				t.Errorf("Add(%v)=%v want %v (second add)", testAtom, got, false)
			}
		})
	}

	if got, want := store.EstimateFactCount(), len(tests); got != want {
		t.Errorf("EstimateFactCount() = %d want %d", got, want)
	}
}

func runRemoveTest(t *testing.T, store factstore.FactStoreWithRemove) {
	fact := evalAtom(`triple("http://ex.org/A", "http://ex.org/p", "http://ex.org/B")`)
	other := evalAtom(`triple("http://ex.org/A", "http://ex.org/p", "http://ex.org/C")`)
	store.Add(fact)
	store.Add(other)

	if !store.Remove(fact) {
		t.Errorf("Remove(%v) = false want true", fact)
	}
	if store.Remove(fact) {
		t.Errorf("Remove(%v) second call = true want false", fact)
	}
	if store.Contains(fact) {
		t.Errorf("Contains(%v) after remove = true", fact)
	}
	if !store.Contains(other) {
		t.Errorf("Contains(%v) = false, unrelated fact was removed", other)
	}
}

func runGetFactsPatternMatchingTest(t *testing.T, store factstore.FactStoreWithRemove) {
	testFacts := []ast.Atom{
		evalAtom(`triple("a", "type", "Class")`),
		evalAtom(`triple("b", "type", "Class")`),
		evalAtom(`triple("p", "type", "ObjectProperty")`),
		evalAtom(`triple("p", "domain", "a")`),
		evalAtom(`triple("p", "range", "b")`),
		evalAtom(`literal("a", "label", "A", "langString", "en")`),
	}
	for _, f := range testFacts {
		store.Add(f)
	}

	tests := []struct {
		pattern string
		want    stringset.Set
	}{
		{
			pattern: `triple(S, "type", "Class")`,
			want:    stringset.New(`triple("a","type","Class")`, `triple("b","type","Class")`),
		},
		{
			pattern: `triple("p", P, O)`,
			want: stringset.New(
				`triple("p","type","ObjectProperty")`,
				`triple("p","domain","a")`,
				`triple("p","range","b")`,
			),
		},
		{
			pattern: `triple("p", "domain", X)`,
			want:    stringset.New(`triple("p","domain","a")`),
		},
		{
			pattern: `triple("zzz", P, O)`,
			want:    stringset.New(),
		},
		{
			pattern: `triple(S, P)`,
			want:    stringset.New(), // arity mismatch
		},
		{
			pattern: `literal("a", P, V, D, "en")`,
			want:    stringset.New(`literal("a","label","A","langString","en")`),
		},
	}

	for _, tt := range tests {
		t.Run(tt.pattern, func(t *testing.T) {
			got := stringset.New()
			err := store.GetFacts(atom(tt.pattern), func(fact ast.Atom) error {
				got.Add(fact.String())
				return nil
			})
			if err != nil {
				t.Fatalf("GetFacts(%q) error: %v", tt.pattern, err)
			}
			want := stringset.New()
			for _, w := range tt.want.Elements() {
				want.Add(atom(w).String())
			}
			if !got.Equals(want) {
				t.Errorf("GetFacts(%q) = %v want %v", tt.pattern, got, want)
			}
		})
	}
}

func runNonGroundedAtomsTest(t *testing.T, store factstore.FactStoreWithRemove) {
	tests := []ast.Atom{
		atom(`triple(X, "type", "Class")`),
		atom(`literal(S, P, V, D, L)`),
	}
	for _, testAtom := range tests {
		t.Run(testAtom.String(), func(t *testing.T) {
			if store.Add(testAtom) {
				t.Errorf("Add(%v)=true want false (should not add non-grounded)", testAtom)
			}
			if store.Contains(testAtom) {
				t.Errorf("Contains(%v)=true want false", testAtom)
			}
		})
	}
}

func runListPredicatesTest(t *testing.T, store factstore.FactStoreWithRemove) {
	if predicates := store.ListPredicates(); len(predicates) != 0 {
		t.Errorf("Expected 0 predicates, got %d", len(predicates))
	}

	store.Add(evalAtom(`triple("a", "type", "Class")`))
	store.Add(evalAtom(`triple("b", "type", "Class")`))
	store.Add(evalAtom(`literal("a", "label", "A", "string", "")`))

	predSet := stringset.New()
	for _, p := range store.ListPredicates() {
		predSet.Add(p.String())
	}
	want := stringset.New(
		ast.PredicateSym{Symbol: "triple", Arity: 3}.String(),
		ast.PredicateSym{Symbol: "literal", Arity: 5}.String(),
	)
	if !predSet.Equals(want) {
		t.Errorf("ListPredicates() = %v want %v", predSet, want)
	}
}

func runMergeTest(t *testing.T, newStore func() (factstore.FactStoreWithRemove, error)) {
	store1, err := newStore()
	if err != nil {
		t.Fatalf("Failed to create store1: %v", err)
	}
	defer store1.(interface{ Close() error }).Close()

	mem := factstore.NewSimpleInMemoryStore()
	store1.Add(evalAtom(`triple("a", "type", "Class")`))
	mem.Add(evalAtom(`triple("a", "type", "Class")`))
	mem.Add(evalAtom(`triple("b", "type", "Class")`))
	mem.Add(evalAtom(`literal("b", "label", "B", "string", "")`))

	store1.Merge(&mem)

	if got := store1.EstimateFactCount(); got != 3 {
		t.Errorf("EstimateFactCount() after merge = %d want 3", got)
	}
	if !store1.Contains(evalAtom(`literal("b", "label", "B", "string", "")`)) {
		t.Error("merged literal fact missing")
	}
}

// runSuite runs the shared behaviour tests against fresh stores from newStore.
func runSuite(t *testing.T, newStore func() (factstore.FactStoreWithRemove, error)) {
	fresh := func(t *testing.T) factstore.FactStoreWithRemove {
		t.Helper()
		s, err := newStore()
		if err != nil {
			t.Fatalf("Failed to create store: %v", err)
		}
		t.Cleanup(func() { s.(interface{ Close() error }).Close() })
		return s
	}

	t.Run("AddContains", func(t *testing.T) { runAddContainsTest(t, fresh(t)) })
	t.Run("Remove", func(t *testing.T) { runRemoveTest(t, fresh(t)) })
	t.Run("GetFactsPatternMatching", func(t *testing.T) { runGetFactsPatternMatchingTest(t, fresh(t)) })
	t.Run("NonGroundedAtoms", func(t *testing.T) { runNonGroundedAtomsTest(t, fresh(t)) })
	t.Run("ListPredicates", func(t *testing.T) { runListPredicatesTest(t, fresh(t)) })
	t.Run("Merge", func(t *testing.T) { runMergeTest(t, newStore) })
}
