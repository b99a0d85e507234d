package eaxml

import (
	"encoding/xml"
	"maps"
	"slices"
)

// Table names, in document order.
const (
	TablePackage        = "t_package"
	TableObject         = "t_object"
	TableAttribute      = "t_attribute"
	TableConnector      = "t_connector"
	TableDiagram        = "t_diagram"
	TableDiagramObjects = "t_diagramobjects"
)

// Tables lists the table names in the order they appear in a document.
var Tables = []string{
	TablePackage,
	TableObject,
	TableAttribute,
	TableConnector,
	TableDiagram,
	TableDiagramObjects,
}

// Document is the root element of an interchange file.
type Document struct {
	XMLName xml.Name `xml:"Package"`
	Name    string   `xml:"name,attr"`
	GUID    string   `xml:"guid,attr"`
	Tables  []*Table `xml:"Table"`
}

// Table returns the table called name, or nil.
func (d *Document) Table(name string) *Table {
	for _, t := range d.Tables {
		if t.Name == name {
			return t
		}
	}
	return nil
}

// Table is a named list of rows.
type Table struct {
	Name string `xml:"name,attr"`
	Rows []*Row `xml:"Row"`
}

func (t *Table) append(r *Row) *Row {
	t.Rows = append(t.Rows, r)
	return r
}

// Row holds ordered columns followed by the foreign keys of its Extension.
type Row struct {
	Columns   []Column  `xml:"Column"`
	Extension Extension `xml:"Extension"`
}

// Value returns the value of the named column, or "" when the row has none.
func (r *Row) Value(name string) string {
	if r == nil {
		return ""
	}
	for _, c := range r.Columns {
		if c.Name == name {
			return c.Value
		}
	}
	return ""
}

func (r *Row) add(name, value string) {
	r.Columns = append(r.Columns, Column{Name: name, Value: value})
}

func (r *Row) addAll(cols []Column) {
	r.Columns = append(r.Columns, cols...)
}

// Column is one name/value pair of a row.
type Column struct {
	Name  string `xml:"name,attr"`
	Value string `xml:"value,attr"`
}

// Extension holds foreign-key references to other rows by GUID. It is always
// written, as an empty element when it has no attributes.
type Extension map[string]string

// MarshalXML writes the references as attributes sorted by name.
func (x Extension) MarshalXML(e *xml.Encoder, start xml.StartElement) error {
	for _, name := range slices.Sorted(maps.Keys(x)) {
		start.Attr = append(start.Attr, xml.Attr{Name: xml.Name{Local: name}, Value: x[name]})
	}
	if err := e.EncodeToken(start); err != nil {
		return err
	}
	return e.EncodeToken(start.End())
}
