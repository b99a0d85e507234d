package builder

import (
	"sort"
	"testing"

	"github.com/reycs/OwlToUml/ontology"
	"github.com/reycs/OwlToUml/uml"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const ex = "http://example.org/ex#"

// fakeSource is an in-memory Source.
type fakeSource struct {
	namespaces  map[string]string
	classes     []string
	dataProps   []string
	objectProps []string
	domains     map[string][]string
	ranges      map[string][]string
	dataRanges  map[string][]string
	supers      map[string][]ontology.SubClassAxiom
	annotations map[string][]ontology.Annotation
}

func newFakeSource(namespaces map[string]string) *fakeSource {
	return &fakeSource{
		namespaces:  namespaces,
		domains:     map[string][]string{},
		ranges:      map[string][]string{},
		dataRanges:  map[string][]string{},
		supers:      map[string][]ontology.SubClassAxiom{},
		annotations: map[string][]ontology.Annotation{},
	}
}

func (f *fakeSource) Namespaces() map[string]string { return f.namespaces }
func (f *fakeSource) Classes() []string             { return sorted(f.classes) }
func (f *fakeSource) DataProperties() []string      { return sorted(f.dataProps) }
func (f *fakeSource) ObjectProperties() []string    { return sorted(f.objectProps) }
func (f *fakeSource) Domains(p string) []string     { return f.domains[p] }
func (f *fakeSource) Ranges(p string) []string      { return f.ranges[p] }
func (f *fakeSource) DataRanges(p string) []string  { return f.dataRanges[p] }
func (f *fakeSource) SuperClasses(c string) []ontology.SubClassAxiom {
	return f.supers[c]
}
func (f *fakeSource) Annotations(iri string) []ontology.Annotation { return f.annotations[iri] }
func (f *fakeSource) InSignature(iri string) bool {
	for _, c := range f.classes {
		if c == iri {
			return true
		}
	}
	return false
}

func (f *fakeSource) subClass(sub, super string) {
	f.supers[sub] = append(f.supers[sub], ontology.SubClassAxiom{Sub: sub, Super: super, Named: !ontology.IsBlank(super)})
}

func sorted(in []string) []string {
	out := append([]string(nil), in...)
	sort.Strings(out)
	return out
}

func packageNames(m *uml.Model) []string {
	var names []string
	for _, p := range m.Root.Packages {
		names = append(names, p.Name)
	}
	return names
}

func classNames(p *uml.Package) []string {
	var names []string
	for _, c := range p.Classes {
		names = append(names, c.Name)
	}
	return names
}

func findClass(t *testing.T, m *uml.Model, pkg, name string) *uml.Class {
	t.Helper()
	p := m.Root.Package(pkg)
	require.NotNil(t, p, "package %s", pkg)
	for _, c := range p.Classes {
		if c.Name == name {
			return c
		}
	}
	t.Fatalf("class %s not found in package %s", name, pkg)
	return nil
}

func TestBuildAnimalScenario(t *testing.T) {
	src := newFakeSource(map[string]string{"ex": ex})
	src.classes = []string{ex + "Animal"}
	src.dataProps = []string{ex + "name"}
	src.domains[ex+"name"] = []string{ex + "Animal"}
	src.dataRanges[ex+"name"] = []string{ontology.XSDString}

	m, report := Build(src, "zoo", zerolog.Nop())

	assert.Equal(t, "zoo-ontology", m.Root.Name)
	assert.Equal(t, []string{"ex", "owl"}, packageNames(m))
	assert.Equal(t, []string{"Animal"}, classNames(m.Root.Package("ex")))
	assert.Equal(t, []string{"Thing"}, classNames(m.Root.Package("owl")))

	animal := findClass(t, m, "ex", "Animal")
	thing := findClass(t, m, "owl", "Thing")
	require.Len(t, animal.Attributes, 1)
	assert.Equal(t, "ex:name", animal.Attributes[0].Name)
	assert.Equal(t, "xsd:string", animal.Attributes[0].Type)
	assert.Equal(t, 0, animal.Attributes[0].Lower)
	assert.Equal(t, 1, animal.Attributes[0].Upper)
	assert.Equal(t, []*uml.Class{thing}, animal.SuperClasses())
	assert.Empty(t, thing.Generalizations)

	assert.True(t, report.RootSynthesized)
	assert.Equal(t, uml.Stats{Packages: 2, Classes: 2, Attributes: 1, Generalizations: 1}, report.Stats)
}

func TestBuildObjectPropertyScenario(t *testing.T) {
	src := newFakeSource(map[string]string{"ex": ex})
	src.classes = []string{ex + "Person", ex + "Pet"}
	src.objectProps = []string{ex + "owns"}
	src.domains[ex+"owns"] = []string{ex + "Person"}
	src.ranges[ex+"owns"] = []string{ex + "Pet"}
	src.annotations[ex+"owns"] = []ontology.Annotation{{
		Property: ontology.RDFSComment,
		Value:    ontology.Object{Literal: &ontology.Literal{Lexical: "ownership", Datatype: ontology.XSDString}},
	}}

	m, _ := Build(src, "zoo", zerolog.Nop())

	assocs := m.Associations()
	require.Len(t, assocs, 1)
	assert.Equal(t, "Person", assocs[0].Source.Name)
	assert.Equal(t, "Pet", assocs[0].Target.Name)
	assert.Equal(t, "ex:owns", assocs[0].Role)
	assert.True(t, assocs[0].Navigable)
	assert.Equal(t, []string{`rdfs:comment : "ownership"`}, assocs[0].Notes)
	assert.Same(t, m.Root.Package("ex"), assocs[0].Source.Package)
}

func TestBuildDataPropertyWithoutDomain(t *testing.T) {
	src := newFakeSource(map[string]string{"ex": ex})
	src.dataProps = []string{ex + "id"}

	m, _ := Build(src, "zoo", zerolog.Nop())

	thing := findClass(t, m, "owl", "Thing")
	require.Len(t, thing.Attributes, 1)
	assert.Equal(t, "ex:id", thing.Attributes[0].Name)
	assert.Equal(t, DefaultDataType, thing.Attributes[0].Type)
}

func TestBuildCardinalities(t *testing.T) {
	src := newFakeSource(map[string]string{"ex": ex})
	src.classes = []string{ex + "A", ex + "B", ex + "C", ex + "D", ex + "E"}
	src.dataProps = []string{ex + "size"}
	src.domains[ex+"size"] = []string{ex + "A", ex + "B", ex + "C"}
	src.objectProps = []string{ex + "rel", ex + "free"}
	src.domains[ex+"rel"] = []string{ex + "A", ex + "B"}
	src.ranges[ex+"rel"] = []string{ex + "C", ex + "D", ex + "E"}

	m, report := Build(src, "zoo", zerolog.Nop())

	// N domains: N attributes; M x K associations; no domain or range: Thing -> Thing.
	assert.Equal(t, 3, report.Attributes)
	var rel, free int
	for _, a := range m.Associations() {
		switch a.Role {
		case "ex:rel":
			rel++
		case "ex:free":
			free++
			assert.Equal(t, "Thing", a.Source.Name)
			assert.Equal(t, "Thing", a.Target.Name)
		}
	}
	assert.Equal(t, 6, rel)
	assert.Equal(t, 1, free)

	// Every class without a superclass gets exactly one edge to the root class.
	thing := findClass(t, m, "owl", "Thing")
	for _, c := range m.Root.Package("ex").Classes {
		assert.Equal(t, []*uml.Class{thing}, c.SuperClasses(), c.Name)
	}
}

func TestBuildEmptyOntology(t *testing.T) {
	m, report := Build(newFakeSource(nil), "empty", zerolog.Nop())

	assert.Equal(t, "empty-ontology", m.Root.Name)
	assert.Equal(t, []string{"owl"}, packageNames(m))
	require.Len(t, m.Classes(), 1)
	assert.Equal(t, "Thing", m.Classes()[0].Name)
	assert.Empty(t, m.Classes()[0].Generalizations)
	assert.True(t, report.RootSynthesized)
}

func TestBuildDeclaredRootClass(t *testing.T) {
	src := newFakeSource(map[string]string{"ex": ex, "owl": ontology.OWLNamespace})
	src.classes = []string{ex + "A", ontology.OWLThing}
	src.subClass(ex+"A", ontology.OWLThing)
	src.annotations[ontology.OWLThing] = []ontology.Annotation{{
		Property: ontology.RDFSLabel,
		Value:    ontology.Object{Literal: &ontology.Literal{Lexical: "Thing", Lang: "en"}},
	}}

	m, report := Build(src, "zoo", zerolog.Nop())

	assert.False(t, report.RootSynthesized)
	assert.Equal(t, []string{"ex", "owl"}, packageNames(m))
	thing := findClass(t, m, "owl", "Thing")
	assert.Equal(t, []string{`rdfs:label : "Thing"@en`}, thing.Notes)
	assert.Empty(t, thing.Generalizations, "root class must not specialize itself")
	assert.Equal(t, []*uml.Class{thing}, findClass(t, m, "ex", "A").SuperClasses())
	assert.Equal(t, 1, report.Generalizations)
}

func TestBuildSubClassHierarchy(t *testing.T) {
	src := newFakeSource(map[string]string{"ex": ex})
	src.classes = []string{ex + "Animal", ex + "Dog", ex + "Cat", ex + "Robot", "http://foreign.org/Machine"}
	src.subClass(ex+"Dog", ex+"Animal")
	src.subClass(ex+"Cat", ex+"Animal")
	src.subClass(ex+"Cat", "_:restriction")
	// Only an anonymous superclass: no synthetic root edge.
	src.subClass(ex+"Robot", "_:r2")
	// Superclass without a declared namespace.
	src.subClass(ex+"Animal", "http://foreign.org/Machine")

	m, report := Build(src, "zoo", zerolog.Nop())

	animal := findClass(t, m, "ex", "Animal")
	assert.Equal(t, []*uml.Class{animal}, findClass(t, m, "ex", "Dog").SuperClasses())
	assert.Equal(t, []*uml.Class{animal}, findClass(t, m, "ex", "Cat").SuperClasses())
	assert.Empty(t, findClass(t, m, "ex", "Robot").Generalizations)
	assert.Empty(t, animal.Generalizations)

	assert.Equal(t, 1, report.SkippedClasses)
	assert.Equal(t, 1, report.SkippedReferences)
	assert.Equal(t, 2, report.Generalizations)
}

func TestBuildUnmappableIdentifiers(t *testing.T) {
	src := newFakeSource(map[string]string{"ex": ex})
	src.classes = []string{ex + "A", "http://foreign.org/B"}
	src.dataProps = []string{ex + "p", "http://foreign.org/q"}
	src.domains[ex+"p"] = []string{"http://foreign.org/B"}
	src.objectProps = []string{"http://foreign.org/r"}

	m, report := Build(src, "zoo", zerolog.Nop())

	assert.Equal(t, []string{"A"}, classNames(m.Root.Package("ex")))
	// The only domain was unmapped, so the attribute falls back to the root class.
	thing := findClass(t, m, "owl", "Thing")
	require.Len(t, thing.Attributes, 1)
	assert.Equal(t, "ex:p", thing.Attributes[0].Name)
	assert.Empty(t, m.Associations())

	assert.Equal(t, 1, report.SkippedClasses)
	assert.Equal(t, 2, report.SkippedProperties)
	assert.Equal(t, 1, report.SkippedReferences)
}

func TestBuildDefaultNamespace(t *testing.T) {
	src := newFakeSource(map[string]string{"": ex, "zoo": "http://example.org/zoo#"})
	src.classes = []string{ex + "A", "http://example.org/zoo#B"}
	src.dataProps = []string{ex + "p"}
	src.domains[ex+"p"] = []string{ex + "A"}
	src.dataRanges[ex+"p"] = []string{ontology.XSDNamespace + "int", ontology.XSDNamespace + "long"}
	src.annotations[ex] = []ontology.Annotation{{
		Property: ontology.RDFSComment,
		Value:    ontology.Object{Literal: &ontology.Literal{Lexical: "default namespace"}},
	}}

	m, _ := Build(src, "zoo", zerolog.Nop())

	// The default namespace and the "zoo" prefix share one package.
	assert.Equal(t, []string{"zoo", "owl"}, packageNames(m))
	assert.Equal(t, []string{"A", "B"}, classNames(m.Root.Package("zoo")))
	assert.Equal(t, []string{`rdfs:comment : "default namespace"`}, m.Root.Package("zoo").Notes)

	a := findClass(t, m, "zoo", "A")
	require.Len(t, a.Attributes, 1)
	assert.Equal(t, "zoo:p", a.Attributes[0].Name)
	// Last declared range wins.
	assert.Equal(t, "xsd:long", a.Attributes[0].Type)
}

func TestBuildNotes(t *testing.T) {
	src := newFakeSource(map[string]string{"ex": ex})
	src.classes = []string{ex + "A"}
	src.annotations[ex+"A"] = []ontology.Annotation{
		{Property: ontology.RDFSComment, Value: ontology.Object{Literal: &ontology.Literal{Lexical: "first"}}},
		{Property: ontology.RDFSSeeAlso, Value: ontology.Object{Resource: ex + "B"}},
	}

	m, _ := Build(src, "zoo", zerolog.Nop())

	assert.Equal(t, []string{`rdfs:comment : "first"`, `rdfs:seeAlso : ex:B`}, findClass(t, m, "ex", "A").Notes)
}

func TestBuildDeterministic(t *testing.T) {
	src := newFakeSource(map[string]string{"ex": ex, "b": "http://b.org/"})
	src.classes = []string{ex + "A", ex + "B", "http://b.org/C"}
	src.objectProps = []string{ex + "r"}
	src.domains[ex+"r"] = []string{ex + "A", "http://b.org/C"}

	m1, r1 := Build(src, "zoo", zerolog.Nop())
	m2, r2 := Build(src, "zoo", zerolog.Nop())

	assert.Equal(t, r1, r2)
	assert.Equal(t, packageNames(m1), packageNames(m2))
	for i, c := range m1.Classes() {
		assert.Equal(t, c.QualifiedName(), m2.Classes()[i].QualifiedName())
	}
}
