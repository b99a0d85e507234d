// Package eaxml writes a logical model as an Enterprise Architect native XML
// file: six tables of rows whose columns and foreign keys follow the tool's
// fixed schema.
//
// An export runs in strictly ordered steps. Each step indexes the rows it
// creates so that later steps can reference them by GUID and sequential ID:
//
//	EmitRoot -> EmitPackages -> EmitClasses -> EmitRelations -> Write
//
// Export runs all of them.
package eaxml

import (
	"encoding/xml"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"

	"github.com/reycs/OwlToUml/uml"
	"github.com/rs/zerolog"
)

// ErrOutOfOrder is returned when an export step runs before its predecessor.
var ErrOutOfOrder = errors.New("export step out of order")

type state int

const (
	stateInit state = iota
	stateRootEmitted
	statePackagesEmitted
	stateClassesEmitted
	stateRelationsEmitted
	stateWritten
)

func (s state) String() string {
	switch s {
	case stateInit:
		return "Init"
	case stateRootEmitted:
		return "RootEmitted"
	case statePackagesEmitted:
		return "PackagesEmitted"
	case stateClassesEmitted:
		return "ClassesAndAttributesEmitted"
	case stateRelationsEmitted:
		return "RelationsEmitted"
	case stateWritten:
		return "Written"
	default:
		return fmt.Sprintf("state(%d)", int(s))
	}
}

// ref points at an indexed row.
type ref struct {
	guid string
	id   string
}

// Option configures an Exporter.
type Option func(*Exporter)

// WithAllocator sets the identity source. By default each Exporter gets its own.
func WithAllocator(a *Allocator) Option {
	return func(e *Exporter) {
		e.alloc = a
	}
}

// WithDiagrams enables one logical diagram per package.
func WithDiagrams(enabled bool) Option {
	return func(e *Exporter) {
		e.diagrams = enabled
	}
}

// WithLogger sets the logger for dangling references and progress.
func WithLogger(log zerolog.Logger) Option {
	return func(e *Exporter) {
		e.log = log
	}
}

// Exporter turns one logical model into one document. It is not reusable.
type Exporter struct {
	model    *uml.Model
	alloc    *Allocator
	log      zerolog.Logger
	diagrams bool

	state    state
	doc      *Document
	tables   map[string]*Table
	// Rows by package path and by qualified class name.
	packages map[string]ref
	classes  map[string]ref
}

// NewExporter returns an exporter for model.
func NewExporter(model *uml.Model, opts ...Option) *Exporter {
	e := &Exporter{
		model:    model,
		log:      zerolog.Nop(),
		packages: map[string]ref{},
		classes:  map[string]ref{},
	}
	for _, opt := range opts {
		opt(e)
	}
	if e.alloc == nil {
		e.alloc = NewAllocator()
	}
	return e
}

// Document returns the document built so far, or nil before EmitRoot.
func (e *Exporter) Document() *Document { return e.doc }

func (e *Exporter) advance(step string, from state) error {
	if e.state != from {
		return fmt.Errorf("%w: %s needs state %s, exporter is in %s", ErrOutOfOrder, step, from, e.state)
	}
	e.state = from + 1
	return nil
}

// EmitRoot creates the six tables and the root package's package and object rows.
func (e *Exporter) EmitRoot() error {
	if err := e.advance("EmitRoot", stateInit); err != nil {
		return err
	}
	root := e.model.Root
	guid := e.alloc.GUID()
	e.doc = &Document{Name: root.Name, GUID: guid}
	e.tables = make(map[string]*Table, len(Tables))
	for _, name := range Tables {
		t := &Table{Name: name}
		e.doc.Tables = append(e.doc.Tables, t)
		e.tables[name] = t
	}

	pkgRow := e.tables[TablePackage].append(e.packageRow(root.Name, guid, "0", "", false))
	id := pkgRow.Value("Package_ID")
	e.tables[TableObject].append(e.packageObject(root.Name, guid, id, id, "", joinNotes(root.Notes), true))
	e.packages[root.Path()] = ref{guid: guid, id: id}
	return nil
}

// EmitPackages creates the package and object rows of every direct child of
// the root package.
func (e *Exporter) EmitPackages() error {
	if err := e.advance("EmitPackages", stateRootEmitted); err != nil {
		return err
	}
	for _, pkg := range e.model.Root.Packages {
		parent := e.packageRef(pkg.Parent())
		guid := e.alloc.GUID()
		pkgRow := e.tables[TablePackage].append(e.packageRow(pkg.Name, guid, parent.id, parent.guid, true))
		id := pkgRow.Value("Package_ID")
		e.tables[TableObject].append(e.packageObject(pkg.Name, guid, parent.id, id, parent.guid, joinNotes(pkg.Notes), false))
		e.packages[pkg.Path()] = ref{guid: guid, id: id}
	}
	return nil
}

// EmitClasses creates an object row per class and an attribute row per attribute.
// Classes are indexed by their qualified name (owning package path plus class
// name), so classes with the same name in different packages stay distinct
// when EmitRelations looks them up.
func (e *Exporter) EmitClasses() error {
	if err := e.advance("EmitClasses", statePackagesEmitted); err != nil {
		return err
	}
	for _, pkg := range e.model.Root.Packages {
		pkgRef := e.packageRef(pkg)
		for _, cls := range pkg.Classes {
			guid := e.alloc.GUID()
			row := e.tables[TableObject].append(e.classObject(cls.Name, guid, pkgRef.guid, joinNotes(cls.Notes)))
			e.classes[cls.QualifiedName()] = ref{guid: guid, id: row.Value("Object_ID")}

			for _, attr := range cls.Attributes {
				e.tables[TableAttribute].append(
					e.attributeRow(attr.Name, attr.Type, e.alloc.GUID(), guid, joinNotes(attr.Notes), attr.Lower, attr.Upper))
			}
		}
	}
	return nil
}

// EmitRelations creates a connector row per generalization and association,
// package by package, and the diagrams when enabled.
func (e *Exporter) EmitRelations() error {
	if err := e.advance("EmitRelations", stateClassesEmitted); err != nil {
		return err
	}
	connectors := e.tables[TableConnector]
	for _, pkg := range e.model.Root.Packages {
		for _, cls := range pkg.Classes {
			for _, g := range cls.Generalizations {
				connectors.append(e.connectorRow(ConnectorGeneralization, e.classRef(g.Child), e.classRef(g.Parent), "", ""))
			}
		}
		for _, a := range pkg.Associations {
			connectors.append(e.connectorRow(ConnectorAssociation, e.classRef(a.Source), e.classRef(a.Target), a.Role, joinNotes(a.Notes)))
		}
	}
	if e.diagrams {
		e.emitDiagrams()
	}
	return nil
}

// emitDiagrams lays out the classes of every non-empty package on a grid.
func (e *Exporter) emitDiagrams() {
	for _, pkg := range e.model.Root.Packages {
		if len(pkg.Classes) == 0 {
			continue
		}
		guid := e.alloc.GUID()
		e.tables[TableDiagram].append(e.diagramRow(pkg.Name, guid, e.packageRef(pkg).guid))
		for i, cls := range pkg.Classes {
			e.tables[TableDiagramObjects].append(diagramObjectRow(guid, e.classRef(cls).guid, gridCell(i)))
		}
	}
}

// Write serializes the document with an XML declaration and two-space indentation.
func (e *Exporter) Write(w io.Writer) error {
	if err := e.advance("Write", stateRelationsEmitted); err != nil {
		return err
	}
	return Encode(w, e.doc)
}

// Encode writes doc to w.
func Encode(w io.Writer, doc *Document) error {
	if _, err := io.WriteString(w, xml.Header); err != nil {
		return fmt.Errorf("failed to write header: %w", err)
	}
	enc := xml.NewEncoder(w)
	enc.Indent("", "  ")
	if err := enc.Encode(doc); err != nil {
		return fmt.Errorf("failed to encode document: %w", err)
	}
	if err := enc.Close(); err != nil {
		return fmt.Errorf("failed to flush document: %w", err)
	}
	_, err := io.WriteString(w, "\n")
	return err
}

// Export runs every step and writes the document to <dir>/<short>.xml,
// returning the file path.
func (e *Exporter) Export(dir, short string) (string, error) {
	steps := []func() error{e.EmitRoot, e.EmitPackages, e.EmitClasses, e.EmitRelations}
	for _, step := range steps {
		if err := step(); err != nil {
			return "", err
		}
	}

	path := filepath.Join(dir, short+".xml")
	f, err := os.Create(path)
	if err != nil {
		return "", fmt.Errorf("failed to create output file: %w", err)
	}
	if err := e.Write(f); err != nil {
		f.Close()
		return "", fmt.Errorf("failed to write %s: %w", path, err)
	}
	if err := f.Close(); err != nil {
		return "", fmt.Errorf("failed to close %s: %w", path, err)
	}

	ev := e.log.Info().Str("path", path)
	for _, t := range e.doc.Tables {
		ev = ev.Int(t.Name, len(t.Rows))
	}
	ev.Msg("interchange file written")
	return path, nil
}

func (e *Exporter) packageRef(pkg *uml.Package) ref {
	r, ok := e.packages[pkg.Path()]
	if !ok {
		e.log.Warn().Str("package", pkg.Path()).Msg("package not exported, writing empty reference")
	}
	return r
}

func (e *Exporter) classRef(cls *uml.Class) ref {
	r, ok := e.classes[cls.QualifiedName()]
	if !ok {
		e.log.Warn().Str("class", cls.QualifiedName()).Msg("class not exported, writing empty reference")
	}
	return r
}
