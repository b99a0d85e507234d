package uml

// Packages returns every package below the root, depth first, in creation order.
func (m *Model) Packages() []*Package {
	var out []*Package
	var walk func(p *Package)
	walk = func(p *Package) {
		for _, child := range p.Packages {
			out = append(out, child)
			walk(child)
		}
	}
	walk(m.Root)
	return out
}

// Classes returns every class of the model, package by package.
func (m *Model) Classes() []*Class {
	out := append([]*Class(nil), m.Root.Classes...)
	for _, p := range m.Packages() {
		out = append(out, p.Classes...)
	}
	return out
}

// Associations returns every association of the model, package by package.
func (m *Model) Associations() []*Association {
	out := append([]*Association(nil), m.Root.Associations...)
	for _, p := range m.Packages() {
		out = append(out, p.Associations...)
	}
	return out
}

// Stats counts the elements of a model.
type Stats struct {
	Packages        int
	Classes         int
	Attributes      int
	Associations    int
	Generalizations int
}

// Stats returns element counts. The root package is not counted.
func (m *Model) Stats() Stats {
	s := Stats{Packages: len(m.Packages())}
	for _, c := range m.Classes() {
		s.Classes++
		s.Attributes += len(c.Attributes)
		s.Generalizations += len(c.Generalizations)
	}
	s.Associations = len(m.Associations())
	return s
}
