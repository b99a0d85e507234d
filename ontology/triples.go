package ontology

import (
	"fmt"
	"strings"

	"github.com/google/mangle/ast"
	"github.com/piprate/json-gold/ld"
)

// Predicates of the atoms that hold RDF statements.
//
//	triple(Subject, Predicate, Object)                      object is an IRI or blank node
//	literal(Subject, Predicate, Lexical, Datatype, Lang)    object is a literal
//
// Every argument is a string constant. Blank nodes keep their "_:label" form.
var (
	triplePred  = ast.PredicateSym{Symbol: "triple", Arity: 3}
	literalPred = ast.PredicateSym{Symbol: "literal", Arity: 5}
)

// Literal is an RDF literal object.
type Literal struct {
	Lexical  string
	Datatype string
	Lang     string
}

// Object is the object of a statement: either a resource (IRI or blank node) or a literal.
type Object struct {
	Resource string
	Literal  *Literal
}

// IsLiteral reports whether o is a literal.
func (o Object) IsLiteral() bool { return o.Literal != nil }

// IsBlank reports whether id names a blank node.
func IsBlank(id string) bool { return strings.HasPrefix(id, "_:") }

// datasetToAtoms flattens every graph of the dataset into triple and literal atoms.
// Graph names are dropped: the ontology is read as a single merged graph.
func datasetToAtoms(dataset *ld.RDFDataset) ([]ast.Atom, error) {
	var atoms []ast.Atom
	for graphName, quads := range dataset.Graphs {
		for _, quad := range quads {
			atom, err := quadToAtom(quad)
			if err != nil {
				return nil, fmt.Errorf("graph %s: %w", graphName, err)
			}
			atoms = append(atoms, atom)
		}
	}
	return atoms, nil
}

// quadToAtom converts one RDF quad into a triple or literal atom.
func quadToAtom(quad *ld.Quad) (ast.Atom, error) {
	subject, err := resourceID(quad.Subject)
	if err != nil {
		return ast.Atom{}, fmt.Errorf("subject: %w", err)
	}
	predicate, err := resourceID(quad.Predicate)
	if err != nil {
		return ast.Atom{}, fmt.Errorf("predicate: %w", err)
	}

	if lit, ok := quad.Object.(*ld.Literal); ok {
		return newLiteralAtom(subject, predicate, Literal{
			Lexical:  lit.Value,
			Datatype: lit.Datatype,
			Lang:     lit.Language,
		}), nil
	}

	object, err := resourceID(quad.Object)
	if err != nil {
		return ast.Atom{}, fmt.Errorf("object: %w", err)
	}
	return newTripleAtom(subject, predicate, object), nil
}

// resourceID returns the identifier of an IRI or blank node.
func resourceID(node ld.Node) (string, error) {
	switch {
	case node == nil:
		return "", fmt.Errorf("missing node")
	case ld.IsIRI(node):
		return node.GetValue(), nil
	case ld.IsBlankNode(node):
		label := node.GetValue()
		if !IsBlank(label) {
			label = "_:" + label
		}
		return label, nil
	default:
		return "", fmt.Errorf("unexpected RDF node %q", node.GetValue())
	}
}

func newTripleAtom(s, p, o string) ast.Atom {
	return ast.Atom{
		Predicate: triplePred,
		Args:      []ast.BaseTerm{ast.String(s), ast.String(p), ast.String(o)},
	}
}

func newLiteralAtom(s, p string, lit Literal) ast.Atom {
	return ast.Atom{
		Predicate: literalPred,
		Args: []ast.BaseTerm{
			ast.String(s), ast.String(p),
			ast.String(lit.Lexical), ast.String(lit.Datatype), ast.String(lit.Lang),
		},
	}
}

// argString returns the i-th argument of a stored atom as a Go string.
func argString(a ast.Atom, i int) string {
	c, ok := a.Args[i].(ast.Constant)
	if !ok {
		return ""
	}
	s, err := c.StringValue()
	if err != nil {
		return ""
	}
	return s
}
