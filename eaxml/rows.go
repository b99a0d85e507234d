package eaxml

import (
	"strconv"
	"strings"
)

// Author is written into every package object.
const Author = "OwlToUml"

var (
	objectFlags = []Column{
		{"Classifier", "0"},
		{"ParentID", "0"},
		{"IsRoot", "FALSE"},
		{"IsLeaf", "FALSE"},
		{"IsSpec", "FALSE"},
		{"IsActive", "FALSE"},
		{"Tagged", "0"},
		{"TPos", "0"},
		{"Effort", "0"},
		{"Backcolor", "-1"},
		{"BorderStyle", "0"},
		{"BorderWidth", "-1"},
		{"Fontcolor", "-1"},
		{"Bordercolor", "-1"},
	}

	packageObjectTail = []Column{
		{"Diagram_ID", "0"},
		{"Author", Author},
		{"Version", "1.0"},
		{"Complexity", "1"},
		{"Status", "proposed"},
		{"Abstract", "0"},
		{"GenType", "Java"},
		{"Phase", "1.0"},
		{"Scope", "Public"},
	}

	packageFlags = []Column{
		{"Protected", "FALSE"},
		{"UseDTD", "FALSE"},
		{"LogXML", "FALSE"},
		{"TPos", "0"},
		{"BatchSave", "0"},
		{"BatchLoad", "0"},
	}

	attributeFlags = []Column{
		{"Scope", "Public"},
		{"IsStatic", "0"},
		{"IsCollection", "0"},
		{"IsOrdered", "0"},
		{"AllowDuplicates", "0"},
	}

	attributeLayout = []Column{
		{"Pos", "0"},
		{"Length", "0"},
		{"Precision", "0"},
		{"Scale", "0"},
		{"Const", "0"},
	}

	connectorAggregation = []Column{
		{"SourceIsAggregate", "0"},
		{"SourceIsOrdered", "0"},
		{"DestIsAggregate", "0"},
		{"DestIsOrdered", "0"},
	}

	connectorStyle = []Column{
		{"Start_Edge", "0"},
		{"End_Edge", "0"},
		{"PtStartX", "0"},
		{"PtStartY", "0"},
		{"PtEndX", "0"},
		{"PtEndY", "0"},
		{"SeqNo", "0"},
		{"HeadStyle", "0"},
		{"LineStyle", "0"},
		{"RouteStyle", "0"},
		{"IsBold", "0"},
		{"LineColor", "0"},
		{"DiagramID", "0"},
		{"SourceIsNavigable", "FALSE"},
		{"DestIsNavigable", "FALSE"},
		{"IsRoot", "FALSE"},
		{"IsLeaf", "FALSE"},
		{"IsSpec", "FALSE"},
		{"IsSignal", "FALSE"},
		{"IsStimulus", "FALSE"},
		{"Target2", "0"},
	}
)

// Connector kinds.
const (
	ConnectorGeneralization = "Generalization"
	ConnectorAssociation    = "Association"
)

// Object kinds.
const (
	ObjectPackage = "Package"
	ObjectClass   = "Class"
)

// Direction is written on connectors that carry a destination role.
const Direction = "Source -> Destination"

// joinNotes concatenates notes, each followed by a blank line.
func joinNotes(notes []string) string {
	var b strings.Builder
	for _, n := range notes {
		b.WriteString(n)
		b.WriteString("\n\n")
	}
	return b.String()
}

// packageRow builds a t_package row. parentGUID is only referenced when the
// package has a parent.
func (e *Exporter) packageRow(name, guid, parentID, parentGUID string, hasParent bool) *Row {
	now := e.alloc.Date()
	r := &Row{Extension: Extension{}}
	r.add("Package_ID", e.alloc.ID())
	r.add("Name", name)
	r.add("Parent_ID", parentID)
	r.add("CreatedDate", now)
	r.add("ModifiedDate", now)
	r.add("ea_guid", guid)
	r.add("IsControlled", "FALSE")
	r.add("LastLoadDate", now)
	r.add("LastSaveDate", now)
	r.addAll(packageFlags)
	if hasParent {
		r.Extension["Parent_ID"] = parentGUID
	}
	return r
}

// objectRow builds the columns every t_object row starts with.
func (e *Exporter) objectRow(name, guid, kind string) *Row {
	now := e.alloc.Date()
	r := &Row{Extension: Extension{}}
	r.add("name", name)
	r.add("ea_guid", guid)
	r.add("Object_ID", e.alloc.ID())
	r.add("Object_type", kind)
	r.addAll(objectFlags)
	r.add("CreatedDate", now)
	r.add("ModifiedDate", now)
	r.add("NType", "0")
	return r
}

// packageObject builds the t_object row mirroring a package. packageID is the
// parent's Package_ID (the package's own for the root) and ownID its own.
func (e *Exporter) packageObject(name, guid, packageID, ownID, parentGUID, note string, isRoot bool) *Row {
	r := e.objectRow(name, guid, ObjectPackage)
	r.add("Package_ID", packageID)
	r.add("PDATA1", ownID)
	r.addAll(packageObjectTail)
	if note != "" {
		r.add("note", note)
	}
	if !isRoot {
		r.Extension["Package_ID"] = parentGUID
	}
	r.Extension["PDATA1"] = guid
	return r
}

func (e *Exporter) classObject(name, guid, packageGUID, note string) *Row {
	r := e.objectRow(name, guid, ObjectClass)
	if note != "" {
		r.add("note", note)
	}
	r.Extension["Package_ID"] = packageGUID
	return r
}

func (e *Exporter) attributeRow(name, typeName, guid, classGUID, note string, lower, upper int) *Row {
	r := &Row{Extension: Extension{}}
	r.add("Object_ID", e.alloc.ID())
	r.add("Name", name)
	r.addAll(attributeFlags)
	r.add("LowerBound", strconv.Itoa(lower))
	r.add("UpperBound", strconv.Itoa(upper))
	if note != "" {
		r.add("Notes", note)
	}
	r.addAll(attributeLayout)
	r.add("Type", typeName)
	r.add("ea_guid", guid)
	r.Extension["Object_ID"] = classGUID
	return r
}

// connectorRow builds a t_connector row from start to end. The role and
// direction columns are only written when destRole is set.
func (e *Exporter) connectorRow(kind string, start, end ref, destRole, note string) *Row {
	r := &Row{Extension: Extension{}}
	r.add("Connector_ID", e.alloc.ID())
	r.add("Connector_Type", kind)
	r.addAll(connectorAggregation)
	r.add("Start_Object_ID", start.id)
	r.add("End_Object_ID", end.id)
	r.addAll(connectorStyle)
	if destRole != "" {
		r.add("DestRole", destRole)
		r.add("Direction", Direction)
	}
	if note != "" {
		r.add("Notes", note)
	}
	r.Extension["Start_Object_ID"] = start.guid
	r.Extension["End_Object_ID"] = end.guid
	return r
}

func (e *Exporter) diagramRow(name, guid, packageGUID string) *Row {
	r := &Row{Extension: Extension{}}
	r.add("ea_guid", guid)
	r.add("AttPub", "TRUE")
	r.add("Diagram_ID", e.alloc.ID())
	r.add("Name", name)
	r.add("Diagram_Type", "Logical")
	r.Extension["Package_ID"] = packageGUID
	return r
}

func diagramObjectRow(diagramGUID, objectGUID string, b bounds) *Row {
	r := &Row{Extension: Extension{}}
	r.add("RectTop", strconv.Itoa(b.top))
	r.add("RectLeft", strconv.Itoa(b.left))
	r.add("RectRight", strconv.Itoa(b.right))
	r.add("RectBottom", strconv.Itoa(b.bottom))
	r.Extension["Diagram_ID"] = diagramGUID
	r.Extension["Object_ID"] = objectGUID
	return r
}

// Diagram grid geometry. Vertical coordinates grow downwards as negative values.
const (
	gridColumns = 4
	gridMargin  = 20
	boxWidth    = 160
	boxHeight   = 90
	gridGapX    = 40
	gridGapY    = 40
)

type bounds struct {
	top, left, right, bottom int
}

// gridCell returns the rectangle of the i-th element on a diagram.
func gridCell(i int) bounds {
	col, row := i%gridColumns, i/gridColumns
	left := gridMargin + col*(boxWidth+gridGapX)
	top := -(gridMargin + row*(boxHeight+gridGapY))
	return bounds{top: top, left: left, right: left + boxWidth, bottom: top - boxHeight}
}
