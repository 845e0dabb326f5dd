package types

import (
	"fmt"
	"strings"
)

// StructValue is an instance of a user-declared struct. Fields keep their
// declaration order. Struct instances are shared by reference.
type StructValue struct {
	TypeName string
	Type     *TypeValue // declaring type; nil for anonymous instances
	names    []string
	fields   []Value
}

// NewStruct creates an instance; names and vals are parallel slices
func NewStruct(typeName string, names []string, vals []Value) *StructValue {
	return &StructValue{TypeName: typeName, names: names, fields: vals}
}

func (s *StructValue) Kind() Kind     { return KindStruct }
func (s *StructValue) String() string { return s.Debug() }

// Debug renders Point { x: 1, y: 2 }
func (s *StructValue) Debug() string {
	if len(s.names) == 0 {
		return s.TypeName
	}
	parts := make([]string, len(s.names))
	for i, n := range s.names {
		parts[i] = n + ": " + s.fields[i].Debug()
	}
	return s.TypeName + " { " + strings.Join(parts, ", ") + " }"
}

func (s *StructValue) Equal(other Value) bool {
	o, ok := other.(*StructValue)
	return ok && o.TypeName == s.TypeName && (o == s || equalSlices(s.fields, o.fields))
}

// Field returns the named field
func (s *StructValue) Field(name string) (Value, bool) {
	for i, n := range s.names {
		if n == name {
			return s.fields[i], true
		}
	}
	return nil, false
}

// SetField replaces the named field; it reports false for unknown fields
func (s *StructValue) SetField(name string, v Value) bool {
	for i, n := range s.names {
		if n == name {
			s.fields[i] = v
			return true
		}
	}
	return false
}

// FieldNames returns the field names in declaration order
func (s *StructValue) FieldNames() []string {
	return s.names
}

// EnumValue is an enum variant, optionally carrying tuple fields.
// Index is the variant's declaration position and drives ordering.
type EnumValue struct {
	Enum    string
	Variant string
	Index   int
	Fields  []Value
	Type    *TypeValue // declaring type; nil for Option and Result
}

func (e EnumValue) Kind() Kind     { return KindEnum }
func (e EnumValue) String() string { return e.Debug() }

// Debug renders the variant the way #[derive(Debug)] does: Some(1), Red
func (e EnumValue) Debug() string {
	if len(e.Fields) == 0 {
		return e.Variant
	}
	return e.Variant + "(" + debugJoin(e.Fields) + ")"
}

func (e EnumValue) Equal(other Value) bool {
	o, ok := other.(EnumValue)
	return ok && o.Enum == e.Enum && o.Variant == e.Variant && equalSlices(e.Fields, o.Fields)
}

// Is reports whether e is the given variant of the given enum
func (e EnumValue) Is(enum, variant string) bool {
	return e.Enum == enum && e.Variant == variant
}

// Built-in Option and Result
var None = EnumValue{Enum: "Option", Variant: "None", Index: 0}

func NewSome(v Value) EnumValue {
	return EnumValue{Enum: "Option", Variant: "Some", Index: 1, Fields: []Value{v}}
}

func NewOk(v Value) EnumValue {
	return EnumValue{Enum: "Result", Variant: "Ok", Index: 0, Fields: []Value{v}}
}

func NewErrResult(v Value) EnumValue {
	return EnumValue{Enum: "Result", Variant: "Err", Index: 1, Fields: []Value{v}}
}

// OptionOf wraps v in Some, or returns None when v is nil
func OptionOf(v Value) EnumValue {
	if v == nil {
		return None
	}
	return NewSome(v)
}

// ModuleValue is a namespace created by mod or a file import
type ModuleValue struct {
	Name     string
	members  map[string]Value
	exported map[string]bool
}

// NewModule creates an empty module
func NewModule(name string) *ModuleValue {
	return &ModuleValue{Name: name, members: map[string]Value{}, exported: map[string]bool{}}
}

func (m *ModuleValue) Kind() Kind     { return KindModule }
func (m *ModuleValue) String() string { return m.Debug() }
func (m *ModuleValue) Debug() string  { return fmt.Sprintf("<module %s>", m.Name) }

func (m *ModuleValue) Equal(other Value) bool {
	o, ok := other.(*ModuleValue)
	return ok && o == m
}

// Define adds a member
func (m *ModuleValue) Define(name string, v Value, exported bool) {
	m.members[name] = v
	m.exported[name] = exported
}

// Member looks up a member and reports whether it is exported
func (m *ModuleValue) Member(name string) (v Value, exported, found bool) {
	v, found = m.members[name]
	return v, m.exported[name], found
}

// Exports returns the exported member names
func (m *ModuleValue) Exports() []string {
	var names []string
	for n, ok := range m.exported {
		if ok {
			names = append(names, n)
		}
	}
	return names
}

// VariantInfo describes one declared enum variant
type VariantInfo struct {
	Name  string
	Arity int
}

// TypeValue is a declared struct or enum. It is bound to the type's name
// and is the namespace for enum variants and impl functions.
type TypeValue struct {
	Name     string
	IsEnum   bool
	Fields   []string // struct fields in declaration order
	Variants []VariantInfo
	Methods  map[string]*FunctionValue
}

// NewStructType declares a struct type
func NewStructType(name string, fields []string) *TypeValue {
	return &TypeValue{Name: name, Fields: fields, Methods: map[string]*FunctionValue{}}
}

// NewEnumType declares an enum type
func NewEnumType(name string, variants []VariantInfo) *TypeValue {
	return &TypeValue{Name: name, IsEnum: true, Variants: variants, Methods: map[string]*FunctionValue{}}
}

func (t *TypeValue) Kind() Kind     { return KindType }
func (t *TypeValue) String() string { return t.Debug() }
func (t *TypeValue) Debug() string  { return "<type " + t.Name + ">" }

func (t *TypeValue) Equal(other Value) bool {
	o, ok := other.(*TypeValue)
	return ok && o == t
}

// Variant looks up a variant by name
func (t *TypeValue) Variant(name string) (index int, info VariantInfo, ok bool) {
	for i, v := range t.Variants {
		if v.Name == name {
			return i, v, true
		}
	}
	return 0, VariantInfo{}, false
}

// HasField reports whether a struct type declares the field
func (t *TypeValue) HasField(name string) bool {
	for _, f := range t.Fields {
		if f == name {
			return true
		}
	}
	return false
}

// NewVariant builds an instance of the named variant
func (t *TypeValue) NewVariant(index int, fields []Value) EnumValue {
	return EnumValue{Enum: t.Name, Variant: t.Variants[index].Name, Index: index, Fields: fields, Type: t}
}
