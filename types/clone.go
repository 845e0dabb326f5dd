package types

// DeepClone copies v and every reference-shared container reachable from
// it, matching Rust's derived Clone. Immutable values are returned as is.
func DeepClone(v Value) Value {
	switch v := v.(type) {
	case *ListValue:
		out := make([]Value, len(v.elems))
		for i, el := range v.elems {
			out[i] = DeepClone(el)
		}
		return NewList(out)
	case *MapValue:
		m := &MapValue{entries: make([]MapEntry, len(v.entries))}
		for i, e := range v.entries {
			m.entries[i] = MapEntry{Key: e.Key, Val: DeepClone(e.Val)}
		}
		return m
	case *SetValue:
		return &SetValue{elems: v.Elements()}
	case *StructValue:
		fields := make([]Value, len(v.fields))
		for i, f := range v.fields {
			fields[i] = DeepClone(f)
		}
		out := NewStruct(v.TypeName, v.names, fields)
		out.Type = v.Type
		return out
	case TupleValue:
		elems := make([]Value, len(v.Elems))
		for i, el := range v.Elems {
			elems[i] = DeepClone(el)
		}
		return TupleValue{Elems: elems}
	case EnumValue:
		if len(v.Fields) == 0 {
			return v
		}
		fields := make([]Value, len(v.Fields))
		for i, f := range v.Fields {
			fields[i] = DeepClone(f)
		}
		v.Fields = fields
		return v
	}
	return v
}
