package hir

import (
	"nova/syntax"
	"nova/text"
)

// ItemKind identifies which per-kind slice of an ItemTree an Item's Index
// refers into.
type ItemKind int

const (
	ItemClass ItemKind = iota
	ItemInterface
	ItemEnum
	ItemRecord
	ItemAnnotation
)

// Item is a reference to one top-level or nested type declaration.
type Item struct {
	Kind  ItemKind
	Index uint32
}

// MemberKind identifies what a Member inside a type declaration refers to.
type MemberKind int

const (
	MemberMethod MemberKind = iota
	MemberField
	MemberNestedType
)

// Member is one entry in a declaration's member list: a method, a field, or
// a nested type declaration (itself an Item, recursively).
type Member struct {
	Kind   MemberKind
	Method MethodId
	Field  FieldId
	Nested Item
}

// ImportItem is one import declaration.
type ImportItem struct {
	Path     string
	Static   bool
	OnDemand bool // "import foo.bar.*;"
}

// ClassItem, InterfaceItem, EnumItem, RecordItem and AnnotationItem are the
// per-kind declaration records an Item of the matching ItemKind indexes
// into. TypeParams holds only the declared type-parameter names, and
// SuperClass/Interfaces keep the raw source text of each supertype rather
// than a fully structured generic AST — typeck resolves that text lazily and
// only for declarations actually queried, per the spine's demand-driven
// design (spec §4.12).

type ClassItem struct {
	Name       string
	Modifiers  []string
	TypeParams []string
	SuperClass string
	Interfaces []string
	Members    []Member
	AstId      AstId
}

type InterfaceItem struct {
	Name       string
	Modifiers  []string
	TypeParams []string
	Interfaces []string
	Members    []Member
	AstId      AstId
}

type EnumItem struct {
	Name       string
	Modifiers  []string
	Interfaces []string
	Constants  []string
	Members    []Member
	AstId      AstId
}

type RecordComponent struct {
	Name     string
	TypeText string
}

type RecordItem struct {
	Name       string
	Modifiers  []string
	Components []RecordComponent
	Interfaces []string
	Members    []Member
	AstId      AstId
}

type AnnotationItem struct {
	Name      string
	Modifiers []string
	Members   []Member
	AstId     AstId
}

// ParamItem is one formal parameter of a method. TypeSpan anchors TypeText
// back to its source range, so typeck can place an unresolved-type
// diagnostic on the exact identifier rather than guessing an offset.
type ParamItem struct {
	Name     string
	TypeText string
	TypeSpan text.Range
	Variadic bool
}

// MethodItem is a method or constructor declaration. The body is not
// lowered eagerly: BodyNode points at the CST block (nil for abstract/
// interface methods), and callers lower it on demand via LowerBody.
type MethodItem struct {
	Name           string
	Modifiers      []string
	TypeParams     []string
	ReturnType     string
	ReturnTypeSpan text.Range
	Params         []ParamItem
	Throws         []string
	AstId          AstId
	BodyNode       *syntax.Node
}

// FieldItem is a field declaration.
type FieldItem struct {
	Name      string
	TypeText  string
	TypeSpan  text.Range
	Modifiers []string
	AstId     AstId
}

// ItemTree is the shallow declaration-level view of one compilation unit.
type ItemTree struct {
	PackageName string
	Imports     []ImportItem
	Items       []Item

	Classes     []ClassItem
	Interfaces  []InterfaceItem
	Enums       []EnumItem
	Records     []RecordItem
	Annotations []AnnotationItem
	Methods     []MethodItem
	Fields      []FieldItem
}

func (t *ItemTree) Class(id ClassId) *ClassItem           { return &t.Classes[id] }
func (t *ItemTree) Interface(id InterfaceId) *InterfaceItem { return &t.Interfaces[id] }
func (t *ItemTree) Enum(id EnumId) *EnumItem               { return &t.Enums[id] }
func (t *ItemTree) Record(id RecordId) *RecordItem         { return &t.Records[id] }
func (t *ItemTree) Annotation(id AnnotationId) *AnnotationItem {
	return &t.Annotations[id]
}
func (t *ItemTree) Method(id MethodId) *MethodItem { return &t.Methods[id] }
func (t *ItemTree) Field(id FieldId) *FieldItem    { return &t.Fields[id] }

// Members returns the member list shared by every declaration kind an Item
// can point at.
func (t *ItemTree) Members(item Item) []Member {
	switch item.Kind {
	case ItemClass:
		return t.Classes[item.Index].Members
	case ItemInterface:
		return t.Interfaces[item.Index].Members
	case ItemEnum:
		return t.Enums[item.Index].Members
	case ItemRecord:
		return t.Records[item.Index].Members
	case ItemAnnotation:
		return t.Annotations[item.Index].Members
	}
	return nil
}

// Name returns the declared name shared by every declaration kind an Item
// can point at.
func (t *ItemTree) Name(item Item) string {
	switch item.Kind {
	case ItemClass:
		return t.Classes[item.Index].Name
	case ItemInterface:
		return t.Interfaces[item.Index].Name
	case ItemEnum:
		return t.Enums[item.Index].Name
	case ItemRecord:
		return t.Records[item.Index].Name
	case ItemAnnotation:
		return t.Annotations[item.Index].Name
	}
	return ""
}

// FindMethod performs a depth-first search (matching nested types) for a
// method by name, starting from the tree's top-level items. Used by tests
// and by single-method incremental re-lowering.
func (t *ItemTree) FindMethod(name string) (MethodId, bool) {
	for _, item := range t.Items {
		if id, ok := t.findMethodIn(item, name); ok {
			return id, true
		}
	}
	return 0, false
}

func (t *ItemTree) findMethodIn(item Item, name string) (MethodId, bool) {
	for _, m := range t.Members(item) {
		switch m.Kind {
		case MemberMethod:
			if t.Methods[m.Method].Name == name {
				return m.Method, true
			}
		case MemberNestedType:
			if id, ok := t.findMethodIn(m.Nested, name); ok {
				return id, true
			}
		}
	}
	return 0, false
}
