// Package resolve turns ontology IRIs into the namespace keys and local names used
// by the logical model, and renders IRIs and literals as text for notes and types.
package resolve

import (
	"sort"
	"strings"

	"github.com/rs/zerolog"
)

type namespace struct {
	prefix string
	iri    string
}

// Resolver maps IRIs onto declared namespace prefixes.
type Resolver struct {
	short      string
	namespaces []namespace
	log        zerolog.Logger
}

// New returns a Resolver for the prefix table. short names the default
// (empty) prefix in package and property names.
func New(short string, namespaces map[string]string, log zerolog.Logger) *Resolver {
	r := &Resolver{short: short, log: log}
	for prefix, iri := range namespaces {
		if iri == "" {
			continue
		}
		r.namespaces = append(r.namespaces, namespace{prefix: prefix, iri: iri})
	}
	// Longest namespace first; a non-empty prefix beats the default one for the
	// same namespace, then the smaller key wins.
	sort.Slice(r.namespaces, func(i, j int) bool {
		a, b := r.namespaces[i], r.namespaces[j]
		if len(a.iri) != len(b.iri) {
			return len(a.iri) > len(b.iri)
		}
		if (a.prefix == "") != (b.prefix == "") {
			return b.prefix == ""
		}
		return a.prefix < b.prefix
	})
	return r
}

// Prefixes returns the declared prefixes in sorted order.
func (r *Resolver) Prefixes() []string {
	prefixes := make([]string, 0, len(r.namespaces))
	for _, ns := range r.namespaces {
		prefixes = append(prefixes, ns.prefix)
	}
	sort.Strings(prefixes)
	return prefixes
}

// Namespace returns the namespace IRI of prefix.
func (r *Resolver) Namespace(prefix string) (string, bool) {
	for _, ns := range r.namespaces {
		if ns.prefix == prefix {
			return ns.iri, true
		}
	}
	return "", false
}

// PackageName returns the package a prefix maps to: the prefix itself, or the
// short name for the default namespace.
func (r *Resolver) PackageName(prefix string) string {
	if prefix == "" {
		return r.short
	}
	return prefix
}

// Compact returns the compact form of iri as a prefix and a local part.
// It reports false when no declared namespace matches or the local part is empty.
func (r *Resolver) Compact(iri string) (prefix, local string, ok bool) {
	for _, ns := range r.namespaces {
		if rest, found := strings.CutPrefix(iri, ns.iri); found && rest != "" {
			return ns.prefix, rest, true
		}
	}
	return "", "", false
}

// Resolve returns the package name and local name of iri. Unmappable
// identifiers are logged and reported with ok false.
func (r *Resolver) Resolve(iri string) (pkg, local string, ok bool) {
	prefix, local, ok := r.Compact(iri)
	if !ok {
		r.warn(iri)
		return "", "", false
	}
	return r.PackageName(prefix), local, true
}

// Prefixed returns iri in "prefix:local" form. Names in the default namespace
// get the short name as prefix.
func (r *Resolver) Prefixed(iri string) (string, bool) {
	prefix, local, ok := r.Compact(iri)
	if !ok {
		r.warn(iri)
		return "", false
	}
	return r.PackageName(prefix) + ":" + local, true
}

// Mappable reports whether iri has a compact form, logging a warning if not.
func (r *Resolver) Mappable(iri string) bool {
	_, _, ok := r.Compact(iri)
	if !ok {
		r.warn(iri)
	}
	return ok
}

func (r *Resolver) warn(iri string) {
	r.log.Warn().Str("iri", iri).Msg("ignoring axiom for unmappable identifier")
}
