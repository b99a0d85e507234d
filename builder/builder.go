// Package builder maps an ontology onto a logical model in five passes:
// packages, classes, data properties, object properties and the subclass
// hierarchy. Nothing aborts a build: identifiers without a declared namespace
// and axioms that reference them are logged and skipped.
package builder

import (
	"github.com/reycs/OwlToUml/ontology"
	"github.com/reycs/OwlToUml/resolve"
	"github.com/reycs/OwlToUml/uml"
	"github.com/rs/zerolog"
)

// RootPackageSuffix is appended to the short name to name the root package.
const RootPackageSuffix = "-ontology"

// Root class location when the ontology does not map owl:Thing itself.
const (
	RootClassPackage = "owl"
	RootClassName    = "Thing"
)

// DefaultDataType is the attribute type of data properties without a range.
const DefaultDataType = "xsd:string"

// Source is the read side of a loaded ontology.
type Source interface {
	Namespaces() map[string]string
	Classes() []string
	DataProperties() []string
	ObjectProperties() []string
	Domains(property string) []string
	Ranges(property string) []string
	DataRanges(property string) []string
	SuperClasses(class string) []ontology.SubClassAxiom
	Annotations(iri string) []ontology.Annotation
	InSignature(iri string) bool
}

var _ Source = (*ontology.Ontology)(nil)

// Report summarizes a build.
type Report struct {
	uml.Stats
	// RootSynthesized is true when owl:Thing was created rather than mapped.
	RootSynthesized bool
	// SkippedClasses counts classes without a mappable identifier.
	SkippedClasses int
	// SkippedProperties counts data and object properties without a mappable identifier.
	SkippedProperties int
	// SkippedReferences counts domain, range and superclass references to classes
	// that were never mapped.
	SkippedReferences int
}

type builder struct {
	src      Source
	res      *resolve.Resolver
	log      zerolog.Logger
	model    *uml.Model
	packages map[string]*uml.Package
	classes  map[string]*uml.Class
	root     *uml.Class
	report   Report
}

// Build runs the five passes over src. short names the default namespace's
// package and prefixes the root package name.
func Build(src Source, short string, log zerolog.Logger) (*uml.Model, Report) {
	b := &builder{
		src:      src,
		res:      resolve.New(short, src.Namespaces(), log),
		log:      log,
		model:    uml.NewModel(short + RootPackageSuffix),
		packages: map[string]*uml.Package{},
		classes:  map[string]*uml.Class{},
	}

	b.processPrefixes()
	b.processClasses()
	b.processDataProperties()
	b.processObjectProperties()
	b.processSubClassOf()

	b.report.Stats = b.model.Stats()
	log.Info().
		Int("packages", b.report.Packages).
		Int("classes", b.report.Classes).
		Int("attributes", b.report.Attributes).
		Int("associations", b.report.Associations).
		Int("generalizations", b.report.Generalizations).
		Int("skipped_classes", b.report.SkippedClasses).
		Int("skipped_properties", b.report.SkippedProperties).
		Int("skipped_references", b.report.SkippedReferences).
		Msg("logical model built")
	return b.model, b.report
}

// processPrefixes creates one package per declared prefix. Annotations on the
// namespace IRI become package notes.
func (b *builder) processPrefixes() {
	for _, prefix := range b.res.Prefixes() {
		name := b.res.PackageName(prefix)
		if _, exists := b.packages[name]; exists {
			continue
		}
		pkg := b.model.Root.NestedPackage(name)
		b.packages[name] = pkg

		iri, _ := b.res.Namespace(prefix)
		for _, ann := range b.src.Annotations(iri) {
			pkg.AddNote(b.res.Note(ann))
		}
	}
}

// processClasses creates a class for every mappable class of the signature and
// makes sure the root class exists.
func (b *builder) processClasses() {
	for _, iri := range b.src.Classes() {
		pkgName, local, ok := b.res.Resolve(iri)
		if !ok {
			b.report.SkippedClasses++
			continue
		}
		cls := b.packages[pkgName].CreateClass(local)
		b.classes[iri] = cls
		b.annotate(iri, cls.AddNote)
	}

	if root, ok := b.classes[ontology.OWLThing]; ok {
		b.root = root
		return
	}
	pkg, ok := b.packages[RootClassPackage]
	if !ok {
		pkg = b.model.Root.NestedPackage(RootClassPackage)
		b.packages[RootClassPackage] = pkg
	}
	b.root = pkg.CreateClass(RootClassName)
	b.classes[ontology.OWLThing] = b.root
	b.report.RootSynthesized = true
}

// processDataProperties turns every data property into one attribute per domain class.
func (b *builder) processDataProperties() {
	for _, dp := range b.src.DataProperties() {
		name, ok := b.res.Prefixed(dp)
		if !ok {
			b.report.SkippedProperties++
			continue
		}

		// The last declared range wins.
		typeName := DefaultDataType
		for _, r := range b.src.DataRanges(dp) {
			typeName = b.res.Render(r)
		}

		for _, cls := range b.mappedClasses(b.src.Domains(dp)) {
			attr := cls.CreateAttribute(name, typeName, 0, 1)
			b.annotate(dp, attr.AddNote)
		}
	}
}

// processObjectProperties turns every object property into one association per
// (domain, range) pair.
func (b *builder) processObjectProperties() {
	for _, op := range b.src.ObjectProperties() {
		role, ok := b.res.Prefixed(op)
		if !ok {
			b.report.SkippedProperties++
			continue
		}

		ranges := b.mappedClasses(b.src.Ranges(op))
		for _, domain := range b.mappedClasses(b.src.Domains(op)) {
			for _, target := range ranges {
				assoc := domain.CreateAssociation(role, target)
				b.annotate(op, assoc.AddNote)
			}
		}
	}
}

// processSubClassOf adds a generalization per named subclass axiom between
// mapped classes. Classes without any subclass axiom specialize the root class.
func (b *builder) processSubClassOf() {
	for _, iri := range b.src.Classes() {
		cls, ok := b.classes[iri]
		if !ok {
			b.log.Warn().Str("class", iri).Msg("ignoring subClassOf for unmapped class")
			continue
		}

		axioms := b.src.SuperClasses(iri)
		for _, ax := range axioms {
			if !ax.Named {
				continue
			}
			parent, ok := b.classes[ax.Super]
			if !ok {
				b.report.SkippedReferences++
				// Unmappable superclasses were already reported by the resolver.
				if b.res.Mappable(ax.Super) {
					b.log.Warn().
						Str("class", iri).
						Str("superclass", ax.Super).
						Bool("in_signature", b.src.InSignature(ax.Super)).
						Msg("ignoring subClassOf to unmapped class")
				}
				continue
			}
			cls.AddSuperClass(parent)
		}

		if len(axioms) == 0 && cls != b.root {
			cls.AddSuperClass(b.root)
		}
	}
}

// mappedClasses returns the classes of iris that were mapped, or the root class
// when none were.
func (b *builder) mappedClasses(iris []string) []*uml.Class {
	var out []*uml.Class
	for _, iri := range iris {
		cls, ok := b.classes[iri]
		if !ok {
			b.report.SkippedReferences++
			b.log.Warn().Str("class", iri).Msg("ignoring axiom for unmapped class")
			continue
		}
		out = append(out, cls)
	}
	if len(out) == 0 {
		out = append(out, b.root)
	}
	return out
}

func (b *builder) annotate(iri string, addNote func(string)) {
	for _, ann := range b.src.Annotations(iri) {
		addNote(b.res.Note(ann))
	}
}
