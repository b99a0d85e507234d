package ontology

import (
	"fmt"
	"io"

	"github.com/google/mangle/ast"
	"github.com/google/mangle/factstore"
	"github.com/piprate/json-gold/ld"
)

const defaultGraph = "@default"

// ToDataset rebuilds an RDF dataset from the triple and literal atoms of facts.
// All statements land in the default graph.
func ToDataset(facts factstore.ReadOnlyFactStore) (*ld.RDFDataset, error) {
	dataset := ld.NewRDFDataset()
	add := func(a ast.Atom) error {
		quad, err := atomToQuad(a)
		if err != nil {
			return err
		}
		dataset.Graphs[defaultGraph] = append(dataset.Graphs[defaultGraph], quad)
		return nil
	}
	for _, pred := range []ast.PredicateSym{triplePred, literalPred} {
		if err := facts.GetFacts(ast.NewQuery(pred), add); err != nil {
			return nil, fmt.Errorf("failed to convert %s facts to RDF: %w", pred.Symbol, err)
		}
	}
	return dataset, nil
}

// WriteNQuads serializes the statements held by facts as N-Quads and returns
// how many statements were written.
func WriteNQuads(w io.Writer, facts factstore.ReadOnlyFactStore) (int, error) {
	dataset, err := ToDataset(facts)
	if err != nil {
		return 0, err
	}
	serializer := &ld.NQuadRDFSerializer{}
	out, err := serializer.Serialize(dataset)
	if err != nil {
		return 0, fmt.Errorf("failed to serialize N-Quads: %w", err)
	}
	text, ok := out.(string)
	if !ok {
		return 0, fmt.Errorf("unexpected N-Quads output %T", out)
	}
	if _, err := io.WriteString(w, text); err != nil {
		return 0, fmt.Errorf("failed to write N-Quads: %w", err)
	}
	return len(dataset.Graphs[defaultGraph]), nil
}

func atomToQuad(a ast.Atom) (*ld.Quad, error) {
	subject := resourceNode(argString(a, 0))
	predicate := ld.NewIRI(argString(a, 1))

	switch a.Predicate {
	case triplePred:
		return ld.NewQuad(subject, predicate, resourceNode(argString(a, 2)), defaultGraph), nil
	case literalPred:
		datatype := argString(a, 3)
		lang := argString(a, 4)
		switch {
		case lang != "":
			datatype = ld.RDFLangString
		case datatype == "":
			datatype = ld.XSDString
		}
		return ld.NewQuad(subject, predicate, ld.NewLiteral(argString(a, 2), datatype, lang), defaultGraph), nil
	default:
		return nil, fmt.Errorf("unexpected atom %v", a)
	}
}

func resourceNode(id string) ld.Node {
	if IsBlank(id) {
		return ld.NewBlankNode(id)
	}
	return ld.NewIRI(id)
}
