// Package uml holds the logical model built from an ontology: a tree of packages
// owning classes and associations, classes owning attributes and generalizations.
// It is a passive data structure; the builder fills it and the exporter reads it.
package uml

// Unbounded is the upper bound of a "many" association end.
const Unbounded = -1

// Model is the root of a logical model.
type Model struct {
	Root *Package
}

// NewModel returns a model with an empty root package.
func NewModel(rootName string) *Model {
	return &Model{Root: &Package{Name: rootName}}
}

// Package groups classes. Classes and associations appear in creation order.
type Package struct {
	Name         string
	Notes        []string
	Packages     []*Package
	Classes      []*Class
	Associations []*Association

	parent *Package
}

// Parent returns the owning package, or nil for the root.
func (p *Package) Parent() *Package { return p.parent }

// Path returns the names from the root down to p, joined by "::".
func (p *Package) Path() string {
	if p.parent == nil {
		return p.Name
	}
	return p.parent.Path() + "::" + p.Name
}

// NestedPackage creates a child package.
func (p *Package) NestedPackage(name string) *Package {
	child := &Package{Name: name, parent: p}
	p.Packages = append(p.Packages, child)
	return child
}

// Package returns the direct child package called name.
func (p *Package) Package(name string) *Package {
	for _, child := range p.Packages {
		if child.Name == name {
			return child
		}
	}
	return nil
}

// CreateClass creates a class owned by p.
func (p *Package) CreateClass(name string) *Class {
	c := &Class{Name: name, Package: p}
	p.Classes = append(p.Classes, c)
	return c
}

// AddNote appends a free-text note.
func (p *Package) AddNote(note string) { p.Notes = append(p.Notes, note) }

// Class is a UML class.
type Class struct {
	Name            string
	Package         *Package
	Notes           []string
	Attributes      []*Attribute
	Generalizations []*Generalization
}

// QualifiedName returns the package path and the class name.
func (c *Class) QualifiedName() string {
	return c.Package.Path() + "::" + c.Name
}

// AddNote appends a free-text note.
func (c *Class) AddNote(note string) { c.Notes = append(c.Notes, note) }

// CreateAttribute creates an attribute with multiplicity lower..upper.
func (c *Class) CreateAttribute(name, typeName string, lower, upper int) *Attribute {
	a := &Attribute{Name: name, Type: typeName, Lower: lower, Upper: upper, Owner: c}
	c.Attributes = append(c.Attributes, a)
	return a
}

// AddSuperClass records a generalization from c to parent.
func (c *Class) AddSuperClass(parent *Class) *Generalization {
	g := &Generalization{Child: c, Parent: parent}
	c.Generalizations = append(c.Generalizations, g)
	return g
}

// SuperClasses returns the parents of c in the order they were added.
func (c *Class) SuperClasses() []*Class {
	parents := make([]*Class, 0, len(c.Generalizations))
	for _, g := range c.Generalizations {
		parents = append(parents, g.Parent)
	}
	return parents
}

// CreateAssociation creates a directed association from c to target, owned by
// c's package. The role names the target end, which is navigable with
// multiplicity 0..1; the source end is 0..*.
func (c *Class) CreateAssociation(role string, target *Class) *Association {
	a := &Association{
		Source:      c,
		Target:      target,
		Role:        role,
		SourceLower: 0,
		SourceUpper: Unbounded,
		TargetLower: 0,
		TargetUpper: 1,
		Navigable:   true,
	}
	c.Package.Associations = append(c.Package.Associations, a)
	return a
}

// Attribute is a typed property owned by a class.
type Attribute struct {
	Name  string
	Type  string
	Lower int
	Upper int
	Notes []string
	Owner *Class
}

// AddNote appends a free-text note.
func (a *Attribute) AddNote(note string) { a.Notes = append(a.Notes, note) }

// Generalization is an inheritance edge from Child to Parent.
type Generalization struct {
	Child  *Class
	Parent *Class
}

// Association is a directed relationship navigable from Source to Target.
type Association struct {
	Source      *Class
	Target      *Class
	Role        string
	SourceLower int
	SourceUpper int
	TargetLower int
	TargetUpper int
	Navigable   bool
	Notes       []string
}

// AddNote appends a free-text note.
func (a *Association) AddNote(note string) { a.Notes = append(a.Notes, note) }
