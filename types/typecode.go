package types

// Kind identifies the runtime shape of a value
type Kind int

const (
	KindUnit Kind = iota
	KindBool
	KindInt
	KindFloat
	KindChar
	KindString
	KindList
	KindMap
	KindSet
	KindTuple
	KindRange
	KindFunction
	KindBuiltin
	KindStruct
	KindEnum
	KindModule
	KindType
)

var kindNames = [...]string{
	KindUnit:     "unit",
	KindBool:     "bool",
	KindInt:      "int",
	KindFloat:    "float",
	KindChar:     "char",
	KindString:   "string",
	KindList:     "list",
	KindMap:      "map",
	KindSet:      "set",
	KindTuple:    "tuple",
	KindRange:    "range",
	KindFunction: "function",
	KindBuiltin:  "builtin",
	KindStruct:   "struct",
	KindEnum:     "enum",
	KindModule:   "module",
	KindType:     "type",
}

// String returns the lowercase kind name used in error messages
func (k Kind) String() string {
	if k >= 0 && int(k) < len(kindNames) {
		return kindNames[k]
	}
	return "unknown"
}

// IsPrimitive reports whether values of this kind print with Display
// formatting when passed to print
func (k Kind) IsPrimitive() bool {
	switch k {
	case KindBool, KindInt, KindFloat, KindChar, KindString:
		return true
	}
	return false
}

// TypeName returns the user-facing type of v: the declared name for
// struct and enum instances, the kind name otherwise.
func TypeName(v Value) string {
	switch v := v.(type) {
	case *StructValue:
		return v.TypeName
	case EnumValue:
		return v.Enum
	}
	return v.Kind().String()
}
