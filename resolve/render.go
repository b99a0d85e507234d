package resolve

import (
	"strings"

	"github.com/reycs/OwlToUml/ontology"
)

var literalEscaper = strings.NewReplacer(`\`, `\\`, `"`, `\"`)

// Render returns iri as text: its prefixed form when a declared namespace
// matches, a standard W3C prefix for rdf, rdfs, owl and xsd terms, or <iri>.
// Blank node labels are returned unchanged.
func (r *Resolver) Render(iri string) string {
	if ontology.IsBlank(iri) {
		return iri
	}
	if prefix, local, ok := r.Compact(iri); ok {
		return r.PackageName(prefix) + ":" + local
	}
	for prefix, ns := range ontology.WellKnownPrefixes {
		if local, ok := strings.CutPrefix(iri, ns); ok && local != "" {
			return prefix + ":" + local
		}
	}
	return "<" + iri + ">"
}

// RenderLiteral returns lit as "text"@lang, "text" for plain strings, or
// "text"^^type for other datatypes.
func (r *Resolver) RenderLiteral(lit ontology.Literal) string {
	quoted := `"` + literalEscaper.Replace(lit.Lexical) + `"`
	switch {
	case lit.Lang != "":
		return quoted + "@" + lit.Lang
	case lit.Datatype == "" || lit.Datatype == ontology.XSDString:
		return quoted
	default:
		return quoted + "^^" + r.Render(lit.Datatype)
	}
}

// RenderObject renders a statement object.
func (r *Resolver) RenderObject(obj ontology.Object) string {
	if obj.IsLiteral() {
		return r.RenderLiteral(*obj.Literal)
	}
	return r.Render(obj.Resource)
}

// Note returns the note text for an annotation assertion: "<property> : <value>".
func (r *Resolver) Note(ann ontology.Annotation) string {
	return r.Render(ann.Property) + " : " + r.RenderObject(ann.Value)
}
