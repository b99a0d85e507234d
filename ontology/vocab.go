package ontology

// W3C namespaces.
const (
	RDFNamespace  = "http://www.w3.org/1999/02/22-rdf-syntax-ns#"
	RDFSNamespace = "http://www.w3.org/2000/01/rdf-schema#"
	OWLNamespace  = "http://www.w3.org/2002/07/owl#"
	XSDNamespace  = "http://www.w3.org/2001/XMLSchema#"
	SKOSNamespace = "http://www.w3.org/2004/02/skos/core#"
	DCNamespace   = "http://purl.org/dc/elements/1.1/"
	DCTNamespace  = "http://purl.org/dc/terms/"
)

// RDF vocabulary.
const (
	RDFType       = RDFNamespace + "type"
	RDFFirst      = RDFNamespace + "first"
	RDFRest       = RDFNamespace + "rest"
	RDFNil        = RDFNamespace + "nil"
	RDFLangString = RDFNamespace + "langString"
)

// RDFS vocabulary.
const (
	RDFSClass       = RDFSNamespace + "Class"
	RDFSSubClassOf  = RDFSNamespace + "subClassOf"
	RDFSDomain      = RDFSNamespace + "domain"
	RDFSRange       = RDFSNamespace + "range"
	RDFSLabel       = RDFSNamespace + "label"
	RDFSComment     = RDFSNamespace + "comment"
	RDFSSeeAlso     = RDFSNamespace + "seeAlso"
	RDFSIsDefinedBy = RDFSNamespace + "isDefinedBy"
)

// OWL vocabulary.
const (
	OWLOntology           = OWLNamespace + "Ontology"
	OWLImports            = OWLNamespace + "imports"
	OWLClass              = OWLNamespace + "Class"
	OWLThing              = OWLNamespace + "Thing"
	OWLDatatypeProperty   = OWLNamespace + "DatatypeProperty"
	OWLObjectProperty     = OWLNamespace + "ObjectProperty"
	OWLAnnotationProperty = OWLNamespace + "AnnotationProperty"
	OWLUnionOf            = OWLNamespace + "unionOf"
	OWLIntersectionOf     = OWLNamespace + "intersectionOf"
	OWLVersionInfo        = OWLNamespace + "versionInfo"
	OWLDeprecated         = OWLNamespace + "deprecated"
)

// XSD datatypes.
const (
	XSDString = XSDNamespace + "string"
)

// builtinAnnotationProperties are treated as annotation properties whether or not
// the ontology declares them.
var builtinAnnotationProperties = []string{
	RDFSLabel,
	RDFSComment,
	RDFSSeeAlso,
	RDFSIsDefinedBy,
	OWLVersionInfo,
	OWLDeprecated,
	SKOSNamespace + "prefLabel",
	SKOSNamespace + "altLabel",
	SKOSNamespace + "hiddenLabel",
	SKOSNamespace + "definition",
	SKOSNamespace + "note",
	SKOSNamespace + "scopeNote",
	SKOSNamespace + "example",
	SKOSNamespace + "editorialNote",
	SKOSNamespace + "historyNote",
	SKOSNamespace + "changeNote",
	DCNamespace + "title",
	DCNamespace + "description",
	DCNamespace + "creator",
	DCNamespace + "contributor",
	DCNamespace + "date",
	DCNamespace + "source",
	DCNamespace + "rights",
	DCTNamespace + "title",
	DCTNamespace + "description",
	DCTNamespace + "creator",
	DCTNamespace + "contributor",
	DCTNamespace + "created",
	DCTNamespace + "modified",
	DCTNamespace + "source",
	DCTNamespace + "license",
	DCTNamespace + "rights",
}

// WellKnownPrefixes maps the standard prefixes to their namespaces. They are used
// for rendering only and never create packages.
var WellKnownPrefixes = map[string]string{
	"rdf":  RDFNamespace,
	"rdfs": RDFSNamespace,
	"owl":  OWLNamespace,
	"xsd":  XSDNamespace,
}
