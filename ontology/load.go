package ontology

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/go-json-experiment/json"
	"github.com/google/mangle/ast"
	"github.com/google/mangle/factstore"
	"github.com/piprate/json-gold/ld"
	"github.com/rs/zerolog"
)

// Format names a serialization the loader understands.
type Format string

const (
	FormatAuto   Format = ""
	FormatJSONLD Format = "jsonld"
	FormatNQuads Format = "nquads"
	FormatTurtle Format = "turtle"
	FormatRDFXML Format = "rdfxml"
)

// ErrUnsupportedFormat is returned when a document is in a serialization the
// loader cannot parse.
var ErrUnsupportedFormat = errors.New("unsupported ontology format")

// ParseFormat maps a user supplied format name to a Format.
func ParseFormat(name string) (Format, error) {
	switch strings.ToLower(name) {
	case "", "auto":
		return FormatAuto, nil
	case "jsonld", "json-ld":
		return FormatJSONLD, nil
	case "nquads", "n-quads", "ntriples", "n-triples", "nt", "nq":
		return FormatNQuads, nil
	case "turtle", "ttl":
		return FormatTurtle, nil
	case "rdfxml", "rdf/xml", "rdf", "owl":
		return FormatRDFXML, nil
	default:
		return "", fmt.Errorf("%w: %q", ErrUnsupportedFormat, name)
	}
}

// Options control Load.
type Options struct {
	// Format forces the document format; FormatAuto detects it.
	Format Format
	// Namespaces are merged over the prefixes declared by the document.
	Namespaces map[string]string
	// FollowImports loads owl:imports targets into the same store.
	FollowImports bool
	// Store receives the triple atoms. Nil means a fresh in-memory store.
	Store factstore.FactStore
	// HTTPClient fetches remote documents and JSON-LD contexts. Nil means a
	// client whose requests time out after Timeout.
	HTTPClient *http.Client
	// Timeout bounds each HTTP request of the default client; zero means none.
	Timeout time.Duration
	Logger  zerolog.Logger
}

// batchAdder is implemented by stores that insert many atoms at once.
type batchAdder interface {
	AddAll(facts []ast.Atom) error
}

// Load reads the ontology at locator (a file path, file:// URL or http(s) URL)
// into a fact store. A failure to read or parse the main document is returned;
// failures in imported documents are logged at debug level and ignored.
func Load(ctx context.Context, locator string, opts Options) (*Ontology, error) {
	if opts.Store == nil {
		mem := factstore.NewSimpleInMemoryStore()
		opts.Store = &mem
	}
	if opts.HTTPClient == nil {
		opts.HTTPClient = &http.Client{Timeout: opts.Timeout}
	}

	l := &loader{opts: opts, log: opts.Logger, visited: map[string]bool{}}
	prefixes, err := l.load(ctx, locator)
	if err != nil {
		return nil, err
	}

	namespaces := prefixes
	for prefix, iri := range opts.Namespaces {
		namespaces[prefix] = iri
	}

	o := New(opts.Store, namespaces, opts.Logger)
	if opts.FollowImports {
		l.followImports(ctx, o, namespaces)
		// Imported documents may declare annotation properties.
		o = New(opts.Store, namespaces, opts.Logger)
	}

	l.log.Info().
		Str("locator", locator).
		Int("facts", opts.Store.EstimateFactCount()).
		Int("namespaces", len(namespaces)).
		Msg("ontology loaded")
	return o, nil
}

type loader struct {
	opts    Options
	log     zerolog.Logger
	visited map[string]bool
}

// load parses one document into the store and returns its prefixes.
func (l *loader) load(ctx context.Context, locator string) (map[string]string, error) {
	l.visited[locator] = true

	data, err := l.fetch(ctx, locator)
	if err != nil {
		return nil, fmt.Errorf("failed to read ontology %s: %w", locator, err)
	}

	format := l.opts.Format
	if format == FormatAuto {
		format = detectFormat(locator, data)
	}

	var (
		atoms    []ast.Atom
		dataset  *ld.RDFDataset
		prefixes = map[string]string{}
	)
	switch format {
	case FormatJSONLD:
		dataset, prefixes, err = l.parseJSONLD(locator, data)
	case FormatNQuads:
		dataset, err = ld.ParseNQuads(string(data))
	case FormatTurtle, FormatRDFXML:
		atoms, prefixes, err = decodeTriples(data, format, baseIRI(locator))
	default:
		err = ErrUnsupportedFormat
	}
	if err != nil {
		return nil, fmt.Errorf("failed to parse ontology %s: %w", locator, err)
	}

	if dataset != nil {
		if atoms, err = datasetToAtoms(dataset); err != nil {
			return nil, fmt.Errorf("failed to convert ontology %s: %w", locator, err)
		}
	}
	if err := l.store(atoms); err != nil {
		return nil, fmt.Errorf("failed to store ontology %s: %w", locator, err)
	}

	l.log.Debug().Str("locator", locator).Str("format", string(format)).Int("statements", len(atoms)).Msg("document parsed")
	return prefixes, nil
}

func (l *loader) store(atoms []ast.Atom) error {
	if b, ok := l.opts.Store.(batchAdder); ok {
		return b.AddAll(atoms)
	}
	for _, a := range atoms {
		l.opts.Store.Add(a)
	}
	return nil
}

// followImports loads every owl:imports target once. Import prefixes never
// override ones already known.
func (l *loader) followImports(ctx context.Context, o *Ontology, namespaces map[string]string) {
	pending := o.Imports()
	for len(pending) > 0 {
		target := pending[0]
		pending = pending[1:]
		if l.visited[target] {
			continue
		}
		prefixes, err := l.load(ctx, target)
		if err != nil {
			l.log.Debug().Err(err).Str("import", target).Msg("ignoring missing import")
			continue
		}
		for prefix, iri := range prefixes {
			if _, ok := namespaces[prefix]; !ok {
				namespaces[prefix] = iri
			}
		}
		pending = append(pending, o.Imports()...)
	}
}

// fetch returns the raw bytes of the document at locator.
func (l *loader) fetch(ctx context.Context, locator string) ([]byte, error) {
	u, err := url.Parse(locator)
	if err != nil || u.Scheme == "" || len(u.Scheme) == 1 {
		// Plain path (a one-letter scheme is a Windows drive).
		return os.ReadFile(locator)
	}

	switch u.Scheme {
	case "file":
		return os.ReadFile(u.Path)
	case "http", "https":
		req, err := http.NewRequestWithContext(ctx, http.MethodGet, locator, nil)
		if err != nil {
			return nil, err
		}
		req.Header.Set("Accept", "text/turtle, application/rdf+xml, application/ld+json, application/n-quads;q=0.9, application/n-triples;q=0.9")
		resp, err := l.opts.HTTPClient.Do(req)
		if err != nil {
			return nil, err
		}
		defer resp.Body.Close()
		if resp.StatusCode != http.StatusOK {
			return nil, fmt.Errorf("unexpected status %s", resp.Status)
		}
		return io.ReadAll(resp.Body)
	default:
		return nil, fmt.Errorf("unsupported locator scheme %q", u.Scheme)
	}
}

// detectFormat guesses the format from the file extension, then from the content.
func detectFormat(locator string, data []byte) Format {
	if u, err := url.Parse(locator); err == nil && u.Path != "" {
		locator = u.Path
	}
	switch strings.ToLower(filepath.Ext(locator)) {
	case ".jsonld", ".json":
		return FormatJSONLD
	case ".nq", ".nt":
		return FormatNQuads
	case ".ttl":
		return FormatTurtle
	case ".owl", ".rdf":
		return FormatRDFXML
	}

	trimmed := bytes.TrimSpace(data)
	switch {
	case len(trimmed) == 0:
		return FormatNQuads
	case trimmed[0] == '{' || trimmed[0] == '[':
		return FormatJSONLD
	case bytes.HasPrefix(trimmed, []byte("<?xml")), bytes.HasPrefix(trimmed, []byte("<rdf:")):
		return FormatRDFXML
	case turtleDirective(trimmed):
		return FormatTurtle
	case trimmed[0] == '<' || trimmed[0] == '_' || trimmed[0] == '#':
		return FormatNQuads
	default:
		return FormatAuto
	}
}

// turtleDirective reports whether data starts with a Turtle prefix or base
// declaration.
func turtleDirective(data []byte) bool {
	for _, d := range []string{"@prefix", "@base", "prefix", "base"} {
		if len(data) >= len(d) && strings.EqualFold(string(data[:len(d)]), d) {
			return true
		}
	}
	return false
}

// parseJSONLD converts a JSON-LD document to an RDF dataset and extracts the
// namespace prefixes declared in its context.
func (l *loader) parseJSONLD(locator string, data []byte) (*ld.RDFDataset, map[string]string, error) {
	var doc any
	if err := json.Unmarshal(data, &doc); err != nil {
		return nil, nil, fmt.Errorf("invalid JSON: %w", err)
	}

	proc := ld.NewJsonLdProcessor()
	opts := ld.NewJsonLdOptions(baseIRI(locator))
	opts.DocumentLoader = ld.NewDefaultDocumentLoader(l.opts.HTTPClient)

	rdfDatasetRaw, err := proc.ToRDF(doc, opts)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to convert JSON-LD to RDF: %w", err)
	}
	dataset, ok := rdfDatasetRaw.(*ld.RDFDataset)
	if !ok {
		return nil, nil, fmt.Errorf("expected *ld.RDFDataset, got %T", rdfDatasetRaw)
	}

	prefixes := map[string]string{}
	contextPrefixes(doc, prefixes)
	return dataset, prefixes, nil
}

// baseIRI returns the document base for resolving relative IRIs.
func baseIRI(locator string) string {
	if u, err := url.Parse(locator); err == nil && u.Scheme != "" && len(u.Scheme) > 1 {
		return locator
	}
	if abs, err := filepath.Abs(locator); err == nil {
		return (&url.URL{Scheme: "file", Path: filepath.ToSlash(abs)}).String()
	}
	return ""
}

// contextPrefixes collects the namespace-like terms of every @context in doc.
// A term is a prefix when its IRI ends in '/' or '#'; @vocab is the default namespace.
func contextPrefixes(doc any, into map[string]string) {
	switch v := doc.(type) {
	case []any:
		for _, item := range v {
			contextPrefixes(item, into)
		}
	case map[string]any:
		if ctx, ok := v["@context"]; ok {
			contextTerms(ctx, into)
		}
		if graph, ok := v["@graph"]; ok {
			contextPrefixes(graph, into)
		}
	}
}

func contextTerms(ctx any, into map[string]string) {
	switch c := ctx.(type) {
	case []any:
		for _, item := range c {
			contextTerms(item, into)
		}
	case map[string]any:
		for term, def := range c {
			var iri string
			switch d := def.(type) {
			case string:
				iri = d
			case map[string]any:
				iri, _ = d["@id"].(string)
			}
			if !strings.HasSuffix(iri, "/") && !strings.HasSuffix(iri, "#") {
				continue
			}
			switch {
			case term == "@vocab":
				into[""] = iri
			case strings.HasPrefix(term, "@") || strings.Contains(term, ":"):
				// keywords and compact IRIs are not prefixes
			default:
				if _, exists := into[term]; !exists {
					into[term] = iri
				}
			}
		}
	}
}
