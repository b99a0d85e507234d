package ontology

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"regexp"
	"strings"

	"github.com/antchfx/xmlquery"
	"github.com/google/mangle/ast"
	"github.com/knakk/rdf"
)

// turtlePrefix matches both "@prefix ex: <iri> ." and the SPARQL style
// "PREFIX ex: <iri>" declarations.
var turtlePrefix = regexp.MustCompile(`(?mi)^[ \t]*@?prefix[ \t]+([A-Za-z][\w.-]*)?:[ \t]*<([^>]*)>`)

// decodeTriples parses a Turtle or RDF/XML document into triple and literal
// atoms and returns the prefixes it declares. Relative IRIs resolve against base.
func decodeTriples(data []byte, format Format, base string) ([]ast.Atom, map[string]string, error) {
	prefixes := map[string]string{}
	var syntax rdf.Format
	switch format {
	case FormatTurtle:
		syntax = rdf.Turtle
		turtlePrefixes(data, prefixes)
	case FormatRDFXML:
		syntax = rdf.RDFXML
		if err := xmlnsPrefixes(data, prefixes); err != nil {
			return nil, nil, err
		}
	default:
		return nil, nil, fmt.Errorf("%w: %s", ErrUnsupportedFormat, format)
	}

	dec := rdf.NewTripleDecoder(bytes.NewReader(data), syntax)
	if iri, err := rdf.NewIRI(base); err == nil {
		if err := dec.SetOption(rdf.Base, iri); err != nil {
			return nil, nil, fmt.Errorf("failed to set base IRI: %w", err)
		}
	}

	var atoms []ast.Atom
	for {
		triple, err := dec.Decode()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			return nil, nil, err
		}
		atom, err := tripleToAtom(triple)
		if err != nil {
			return nil, nil, err
		}
		atoms = append(atoms, atom)
	}
	return atoms, prefixes, nil
}

func tripleToAtom(t rdf.Triple) (ast.Atom, error) {
	subject, err := termID(t.Subj)
	if err != nil {
		return ast.Atom{}, fmt.Errorf("subject: %w", err)
	}
	predicate, err := termID(t.Pred)
	if err != nil {
		return ast.Atom{}, fmt.Errorf("predicate: %w", err)
	}

	if lit, ok := t.Obj.(rdf.Literal); ok {
		return newLiteralAtom(subject, predicate, Literal{
			Lexical:  lit.String(),
			Datatype: lit.DataType.String(),
			Lang:     lit.Lang(),
		}), nil
	}
	object, err := termID(t.Obj)
	if err != nil {
		return ast.Atom{}, fmt.Errorf("object: %w", err)
	}
	return newTripleAtom(subject, predicate, object), nil
}

// termID returns the identifier of an IRI or blank node term.
func termID(term any) (string, error) {
	switch v := term.(type) {
	case rdf.IRI:
		return v.String(), nil
	case rdf.Blank:
		label := v.String()
		if !IsBlank(label) {
			label = "_:" + label
		}
		return label, nil
	default:
		return "", fmt.Errorf("unexpected RDF term %v", term)
	}
}

// turtlePrefixes collects the namespace declarations of a Turtle document.
// An empty prefix name declares the default namespace.
func turtlePrefixes(data []byte, into map[string]string) {
	for _, m := range turtlePrefix.FindAllSubmatch(data, -1) {
		into[string(m[1])] = string(m[2])
	}
}

// xmlnsPrefixes collects the namespace declarations on the root element of an
// RDF/XML document. Like JSON-LD context terms, only IRIs ending in '/' or '#'
// count as namespaces.
func xmlnsPrefixes(data []byte, into map[string]string) error {
	doc, err := xmlquery.Parse(bytes.NewReader(data))
	if err != nil {
		return fmt.Errorf("invalid XML: %w", err)
	}
	root := xmlquery.FindOne(doc, "/*")
	if root == nil {
		return nil
	}
	for _, attr := range root.Attr {
		iri := attr.Value
		if !strings.HasSuffix(iri, "/") && !strings.HasSuffix(iri, "#") {
			continue
		}
		switch {
		case attr.Name.Space == "xmlns":
			into[attr.Name.Local] = iri
		case attr.Name.Space == "" && attr.Name.Local == "xmlns":
			into[""] = iri
		}
	}
	return nil
}
