// Package ontology loads an OWL ontology into a mangle fact store and answers the
// structural queries needed to map it onto a logical model: declared classes and
// properties, their domains and ranges, subclass axioms, annotation assertions and
// the namespace prefix table.
//
// Every query result is sorted, so the traversal order does not depend on the
// fact store backend.
package ontology

import (
	"sort"

	"bitbucket.org/creachadair/stringset"
	"github.com/google/mangle/ast"
	"github.com/google/mangle/factstore"
	"github.com/rs/zerolog"
)

// Ontology is a loaded ontology backed by a fact store of triple atoms.
type Ontology struct {
	facts      factstore.ReadOnlyFactStore
	namespaces map[string]string
	log        zerolog.Logger

	annotationProps stringset.Set
}

// SubClassAxiom is one rdfs:subClassOf statement. Named is false when the
// superclass is an anonymous class expression.
type SubClassAxiom struct {
	Sub   string
	Super string
	Named bool
}

// Annotation is one annotation assertion on an IRI.
type Annotation struct {
	Property string
	Value    Object
}

// New wraps a fact store that already holds triple atoms.
func New(facts factstore.ReadOnlyFactStore, namespaces map[string]string, log zerolog.Logger) *Ontology {
	ns := make(map[string]string, len(namespaces))
	for k, v := range namespaces {
		ns[k] = v
	}
	o := &Ontology{facts: facts, namespaces: ns, log: log}
	o.annotationProps = stringset.New(builtinAnnotationProperties...)
	o.annotationProps.Add(o.subjectsOfType(OWLAnnotationProperty)...)
	return o
}

// Facts returns the underlying fact store.
func (o *Ontology) Facts() factstore.ReadOnlyFactStore { return o.facts }

// Namespaces returns a copy of the prefix table. The empty key is the default namespace.
func (o *Ontology) Namespaces() map[string]string {
	ns := make(map[string]string, len(o.namespaces))
	for k, v := range o.namespaces {
		ns[k] = v
	}
	return ns
}

// Classes returns the named classes of the ontology signature: everything typed
// owl:Class or rdfs:Class plus classes mentioned by subclass axioms, as the
// domain or range of an object property or as the domain of a data property.
func (o *Ontology) Classes() []string {
	classes := stringset.New(o.subjectsOfType(OWLClass)...)
	classes.Add(o.subjectsOfType(RDFSClass)...)

	o.each(newTripleAtom("", RDFSSubClassOf, ""), func(a ast.Atom) {
		classes.Add(argString(a, 0), argString(a, 2))
	})
	for _, p := range o.ObjectProperties() {
		classes.Add(o.Domains(p)...)
		classes.Add(o.Ranges(p)...)
	}
	for _, p := range o.DataProperties() {
		classes.Add(o.Domains(p)...)
	}
	return named(classes)
}

// DataProperties returns the IRIs typed owl:DatatypeProperty.
func (o *Ontology) DataProperties() []string {
	return named(stringset.New(o.subjectsOfType(OWLDatatypeProperty)...))
}

// ObjectProperties returns the IRIs typed owl:ObjectProperty.
func (o *Ontology) ObjectProperties() []string {
	return named(stringset.New(o.subjectsOfType(OWLObjectProperty)...))
}

// Domains returns the named classes in the rdfs:domain axioms of property.
// Union and intersection expressions contribute the classes they list.
func (o *Ontology) Domains(property string) []string {
	return o.classesOf(property, RDFSDomain)
}

// Ranges returns the named classes in the rdfs:range axioms of property.
func (o *Ontology) Ranges(property string) []string {
	return o.classesOf(property, RDFSRange)
}

// DataRanges returns the datatype IRIs of the rdfs:range axioms of a data property.
// Anonymous data ranges are skipped with a warning.
func (o *Ontology) DataRanges(property string) []string {
	var ranges []string
	for _, r := range o.objects(property, RDFSRange) {
		if IsBlank(r) {
			o.log.Warn().Str("property", property).Msg("ignoring anonymous data range")
			continue
		}
		ranges = append(ranges, r)
	}
	return ranges
}

// SuperClasses returns the rdfs:subClassOf axioms whose subclass is class.
func (o *Ontology) SuperClasses(class string) []SubClassAxiom {
	var axioms []SubClassAxiom
	for _, super := range o.objects(class, RDFSSubClassOf) {
		axioms = append(axioms, SubClassAxiom{Sub: class, Super: super, Named: !IsBlank(super)})
	}
	return axioms
}

// Annotations returns the annotation assertions on iri, ordered by property and value.
func (o *Ontology) Annotations(iri string) []Annotation {
	var anns []Annotation
	o.each(newTripleAtom(iri, "", ""), func(a ast.Atom) {
		if p := argString(a, 1); o.annotationProps.Contains(p) {
			anns = append(anns, Annotation{Property: p, Value: Object{Resource: argString(a, 2)}})
		}
	})
	o.each(newLiteralAtom(iri, "", Literal{}), func(a ast.Atom) {
		if p := argString(a, 1); o.annotationProps.Contains(p) {
			anns = append(anns, Annotation{Property: p, Value: Object{Literal: &Literal{
				Lexical:  argString(a, 2),
				Datatype: argString(a, 3),
				Lang:     argString(a, 4),
			}}})
		}
	})
	sort.SliceStable(anns, func(i, j int) bool {
		if anns[i].Property != anns[j].Property {
			return anns[i].Property < anns[j].Property
		}
		return sortKey(anns[i].Value) < sortKey(anns[j].Value)
	})
	return anns
}

// InSignature reports whether iri occurs as subject or object of any statement.
func (o *Ontology) InSignature(iri string) bool {
	found := false
	o.each(newTripleAtom(iri, "", ""), func(ast.Atom) { found = true })
	if !found {
		o.each(newTripleAtom("", "", iri), func(ast.Atom) { found = true })
	}
	if !found {
		o.each(newLiteralAtom(iri, "", Literal{}), func(ast.Atom) { found = true })
	}
	return found
}

// Imports returns the targets of owl:imports statements.
func (o *Ontology) Imports() []string {
	imports := stringset.New()
	o.each(newTripleAtom("", OWLImports, ""), func(a ast.Atom) {
		imports.Add(argString(a, 2))
	})
	return named(imports)
}

// classesOf collects the named classes of a property's domain or range axioms.
func (o *Ontology) classesOf(property, axiom string) []string {
	classes := stringset.New()
	for _, expr := range o.objects(property, axiom) {
		o.collectClasses(expr, classes, stringset.New())
	}
	return named(classes)
}

// collectClasses adds expr if it is named, or the classes of its union or
// intersection operands if it is a blank node. seen guards against cyclic lists.
func (o *Ontology) collectClasses(expr string, into, seen stringset.Set) {
	if !IsBlank(expr) {
		into.Add(expr)
		return
	}
	if seen.Contains(expr) {
		return
	}
	seen.Add(expr)

	operands := false
	for _, op := range []string{OWLUnionOf, OWLIntersectionOf} {
		for _, list := range o.objects(expr, op) {
			operands = true
			for _, member := range o.list(list) {
				o.collectClasses(member, into, seen)
			}
		}
	}
	if !operands {
		o.log.Debug().Str("expression", expr).Msg("ignoring class expression")
	}
}

// list returns the members of an RDF collection.
func (o *Ontology) list(head string) []string {
	var members []string
	seen := stringset.New()
	for node := head; node != "" && node != RDFNil && !seen.Contains(node); {
		seen.Add(node)
		if first := o.objects(node, RDFFirst); len(first) > 0 {
			members = append(members, first[0])
		}
		rest := o.objects(node, RDFRest)
		if len(rest) == 0 {
			break
		}
		node = rest[0]
	}
	return members
}

// objects returns the sorted resource objects of (subject, predicate, *).
func (o *Ontology) objects(subject, predicate string) []string {
	objs := stringset.New()
	o.each(newTripleAtom(subject, predicate, ""), func(a ast.Atom) {
		objs.Add(argString(a, 2))
	})
	return objs.Elements()
}

// subjectsOfType returns the subjects of rdf:type statements with the given class.
func (o *Ontology) subjectsOfType(class string) []string {
	var subjects []string
	o.each(newTripleAtom("", RDFType, class), func(a ast.Atom) {
		subjects = append(subjects, argString(a, 0))
	})
	return subjects
}

// each runs fn for every fact matching pattern. Empty string arguments of
// pattern are turned into variables.
func (o *Ontology) each(pattern ast.Atom, fn func(ast.Atom)) {
	query := ast.Atom{Predicate: pattern.Predicate, Args: make([]ast.BaseTerm, len(pattern.Args))}
	for i, arg := range pattern.Args {
		query.Args[i] = arg
		if c, ok := arg.(ast.Constant); ok {
			if s, err := c.StringValue(); err == nil && s == "" {
				query.Args[i] = ast.Variable{Symbol: string(rune('A' + i))}
			}
		}
	}
	err := o.facts.GetFacts(query, func(a ast.Atom) error {
		fn(a)
		return nil
	})
	if err != nil {
		o.log.Error().Err(err).Str("pattern", query.String()).Msg("fact store query failed")
	}
}

// named returns the sorted non-blank members of set.
func named(set stringset.Set) []string {
	var out []string
	for _, id := range set.Elements() {
		if id != "" && !IsBlank(id) {
			out = append(out, id)
		}
	}
	return out
}

func sortKey(obj Object) string {
	if obj.Literal == nil {
		return obj.Resource
	}
	return obj.Literal.Lexical + "\x00" + obj.Literal.Lang + "\x00" + obj.Literal.Datatype
}
