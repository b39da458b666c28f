package types

import (
	"strings"

	"nova/internal/logging"
	"nova/jdk"
)

// ClassDef is one interned class/interface/enum/record/annotation
// definition. Name is a dotted binary name: InternClass accepts the "/"- or
// "."-separated package form and normalizes the package separator to "."
// via dotted(), but keeps "$" as the nesting separator ("java.util.Map$Entry"),
// because format.go's writeClassName needs the last "." to find where the
// package ends before it renders "$" as ".".
type ClassDef struct {
	Name       string
	TypeParams []TypeVarId
	SuperClass *Type // nil only for java.lang.Object
	Interfaces []Type
	Methods    []MethodDef
	Fields     []FieldDef
}

// MethodDef is one declared method or constructor (constructors use the
// sentinel name "<init>", matching original_source's is_constructor_name
// convention so format.go's owner-name substitution logic ports unchanged).
type MethodDef struct {
	Name       string
	TypeParams []TypeVarId
	ReturnType Type
	Params     []Type
	IsVarargs  bool
	IsStatic   bool
}

// FieldDef is one declared field.
type FieldDef struct {
	Name string
	Type Type
	IsStatic bool
}

// ResolvedMethod is the outcome of overload resolution (overload.go):
// a specific MethodDef along with the owning class it was resolved on.
type ResolvedMethod struct {
	Owner      ClassId
	Name       string
	ReturnType Type
	Params     []Type
	IsVarargs  bool
}

const ConstructorName = "<init>"

// TypeParamDef is one interned type-parameter declaration.
type TypeParamDef struct {
	Name        string
	UpperBounds []Type
}

// WellKnown caches the ClassIds of types the subtype/overload/format logic
// needs to special-case (Object as every class's implicit superclass, the
// boxed primitive wrapper types for boxing conversions), plus the core
// collection interfaces.
type WellKnown struct {
	Object, String, Class, Enum, Record                       ClassId
	Throwable, Exception, RuntimeException, Error              ClassId
	Iterable, Number                                           ClassId
	BoxedBoolean, BoxedByte, BoxedShort, BoxedChar              ClassId
	BoxedInt, BoxedLong, BoxedFloat, BoxedDouble                ClassId
	Collection, List, Map, Set                                  ClassId
}

// TypeEnv is the read interface subtype.go/overload.go/format.go depend on,
// letting them run against either a Store backed by source-derived
// ClassDefs or, in a fuller build, one backed by classfile-derived defs —
// mirroring original_source's `dyn TypeEnv` trait object.
type TypeEnv interface {
	Class(id ClassId) (*ClassDef, bool)
	TypeParam(id TypeVarId) (*TypeParamDef, bool)
	WellKnown() WellKnown
}

// Store is Nova's concrete TypeEnv: an append-only interning table keyed by
// binary class name, so resolving the same class twice (once from two
// different files importing it) yields the same ClassId.
type Store struct {
	classes    []ClassDef
	byName     map[string]ClassId
	typeParams []TypeParamDef
	wellKnown  WellKnown
}

// NewStore builds an empty Store and interns the well-known JDK classes
// (jdk.WellKnownClasses) as stub ClassDefs, so WellKnown() is always valid
// even before a workspace's classpath has loaded any real classfiles.
func NewStore() *Store {
	s := &Store{byName: make(map[string]ClassId)}
	s.wellKnown.Object = s.internStub("java.lang.Object")
	s.wellKnown.String = s.internStub("java.lang.String")
	s.wellKnown.Class = s.internStub("java.lang.Class")
	s.wellKnown.Enum = s.internStub("java.lang.Enum")
	s.wellKnown.Record = s.internStub("java.lang.Record")
	s.wellKnown.Throwable = s.internStub("java.lang.Throwable")
	s.wellKnown.Exception = s.internStub("java.lang.Exception")
	s.wellKnown.RuntimeException = s.internStub("java.lang.RuntimeException")
	s.wellKnown.Error = s.internStub("java.lang.Error")
	s.wellKnown.Iterable = s.internStub("java.lang.Iterable")
	s.wellKnown.Number = s.internStub("java.lang.Number")
	s.wellKnown.BoxedBoolean = s.internStub("java.lang.Boolean")
	s.wellKnown.BoxedByte = s.internStub("java.lang.Byte")
	s.wellKnown.BoxedShort = s.internStub("java.lang.Short")
	s.wellKnown.BoxedChar = s.internStub("java.lang.Character")
	s.wellKnown.BoxedInt = s.internStub("java.lang.Integer")
	s.wellKnown.BoxedLong = s.internStub("java.lang.Long")
	s.wellKnown.BoxedFloat = s.internStub("java.lang.Float")
	s.wellKnown.BoxedDouble = s.internStub("java.lang.Double")
	s.wellKnown.Collection = s.internStub("java.util.Collection")
	s.wellKnown.List = s.internStub("java.util.List")
	s.wellKnown.Map = s.internStub("java.util.Map")
	s.wellKnown.Set = s.internStub("java.util.Set")
	return s
}

// internStub interns a well-known class with no known superclass/members
// yet; InternClass overwrites the entry in place once the class's real
// shape is known (e.g. once jdk/classpath has parsed its classfile).
func (s *Store) internStub(dottedName string) ClassId {
	if id, ok := s.byName[dottedName]; ok {
		return id
	}
	id := ClassId(len(s.classes))
	s.classes = append(s.classes, ClassDef{Name: dottedName})
	s.byName[dottedName] = id
	return id
}

// dotted normalizes classfile/jdk's slash-separated package form
// ("java/lang/Object") to the dotted package form resolve.Resolution and
// source-level names already use ("java.lang.Object"), while deliberately
// preserving "$" as the nested-class separator — format.go's
// writeClassName needs that distinction (it elides the package but keeps
// nested classes joined by "." at display time, so the stored key must
// still know where the package ends and the class name begins).
func dotted(name string) string {
	return strings.ReplaceAll(name, "/", ".")
}

// InternClass interns def under its (dot-normalized) name, replacing any
// existing stub, and returns its stable ClassId.
func (s *Store) InternClass(def ClassDef) ClassId {
	def.Name = dotted(def.Name)
	if id, ok := s.byName[def.Name]; ok {
		s.classes[id] = def
		return id
	}
	id := ClassId(len(s.classes))
	s.classes = append(s.classes, def)
	s.byName[def.Name] = id
	logging.Get(logging.CategoryTypes).Debug("interned class %s as #%d", def.Name, id)
	return id
}

// InternTypeParam interns one type-parameter declaration (fresh every call:
// unlike classes, two type parameters with the same name in different
// scopes are different TypeVarIds — no dedup by name).
func (s *Store) InternTypeParam(def TypeParamDef) TypeVarId {
	id := TypeVarId(len(s.typeParams))
	s.typeParams = append(s.typeParams, def)
	return id
}

// LookupClass finds an already-interned class by its dotted or $-nested
// binary name, without interning a stub if absent.
func (s *Store) LookupClass(name string) (ClassId, bool) {
	id, ok := s.byName[dotted(name)]
	return id, ok
}

func (s *Store) Class(id ClassId) (*ClassDef, bool) {
	if int(id) >= len(s.classes) {
		return nil, false
	}
	return &s.classes[id], true
}

func (s *Store) TypeParam(id TypeVarId) (*TypeParamDef, bool) {
	if int(id) >= len(s.typeParams) {
		return nil, false
	}
	return &s.typeParams[id], true
}

func (s *Store) WellKnown() WellKnown { return s.wellKnown }

// VerifyAgainstJDK is a sanity check mirroring jdk.VerifyWellKnown: every
// name jdk.WellKnownClasses lists should also resolve through this store's
// well-known table. NewStore guarantees this by construction; this is a
// second line of defense for a Store built some other way.
func (s *Store) VerifyAgainstJDK() []string {
	var missing []string
	for _, binaryName := range jdk.WellKnownClasses {
		if _, ok := s.LookupClass(binaryName); !ok {
			missing = append(missing, binaryName)
		}
	}
	return missing
}
