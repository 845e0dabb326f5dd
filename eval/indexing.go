package eval

import (
	"strconv"
	"unicode/utf8"

	"ruchy/builtins"
	"ruchy/parser"
	"ruchy/types"
)

// evalIndex implements container[index]
// Lists take an int index (E_RANGE if out of bounds); maps take a key
// (E_KEY if missing). A range index slices.
func (i *Interpreter) evalIndex(node *parser.IndexExpr, env *Environment, ctx *types.TaskContext) types.Result {
	container := i.Eval(node.Expr, env, ctx)
	if !container.IsNormal() {
		return container
	}
	idx := i.Eval(node.Index, env, ctx)
	if !idx.IsNormal() {
		return idx
	}
	return indexValue(container.Val, idx.Val)
}

func indexValue(container, idx types.Value) types.Result {
	switch c := container.(type) {
	case *types.ListValue:
		if r, ok := idx.(types.RangeValue); ok && !r.Char {
			return sliceValue(c, r)
		}
		n, ok := idx.(types.IntValue)
		if !ok {
			return types.Err(types.E_TYPE, "list indices must be int, found %s", types.TypeName(idx))
		}
		if err := checkIndex(n.Val, c.Len()); err != nil {
			return types.Raise(err)
		}
		return types.Ok(c.Get(int(n.Val)))
	case *types.MapValue:
		if err := builtins.CheckKey(idx); err != nil {
			return types.Raise(err)
		}
		v, ok := c.Get(idx)
		if !ok {
			return types.Err(types.E_KEY, "key not found: %s", idx.Debug())
		}
		return types.Ok(v)
	case types.StrValue:
		if r, ok := idx.(types.RangeValue); ok && !r.Char {
			return sliceValue(c, r)
		}
		return types.Err(types.E_TYPE, "strings cannot be indexed by %s; use .chars()", types.TypeName(idx))
	}
	return types.Err(types.E_TYPE, "cannot index into a value of type %s", types.TypeName(container))
}

func checkIndex(n int64, length int) *types.RuntimeError {
	if n < 0 || n >= int64(length) {
		return types.NewError(types.E_RANGE, "index out of bounds: the len is %d but the index is %d", length, n)
	}
	return nil
}

// evalSlice implements container[start..end] and container[start..=end]
func (i *Interpreter) evalSlice(node *parser.SliceExpr, env *Environment, ctx *types.TaskContext) types.Result {
	container := i.Eval(node.Expr, env, ctx)
	if !container.IsNormal() {
		return container
	}
	r := types.RangeValue{Inclusive: node.Inclusive}
	for _, b := range []struct {
		expr parser.Expr
		val  *int64
		set  *bool
	}{{node.Start, &r.Start, &r.HasStart}, {node.End, &r.End, &r.HasEnd}} {
		if b.expr == nil {
			continue
		}
		res := i.Eval(b.expr, env, ctx)
		if !res.IsNormal() {
			return res
		}
		n, ok := res.Val.(types.IntValue)
		if !ok {
			return types.Err(types.E_TYPE, "slice bounds must be int, found %s", types.TypeName(res.Val))
		}
		*b.val, *b.set = n.Val, true
	}
	return sliceValue(container.Val, r)
}

// sliceValue copies part of a list, or of a string by byte offsets that
// must fall on character boundaries
func sliceValue(container types.Value, r types.RangeValue) types.Result {
	var length int
	switch c := container.(type) {
	case *types.ListValue:
		length = c.Len()
	case types.StrValue:
		length = len(c.Val)
	default:
		return types.Err(types.E_TYPE, "cannot slice a value of type %s", types.TypeName(container))
	}
	start, end := int64(0), int64(length)
	if r.HasStart {
		start = r.Start
	}
	if r.HasEnd {
		end = r.Last()
	}
	if start < 0 || end < 0 {
		return types.Err(types.E_RANGE, "slice index must not be negative")
	}
	if start > end {
		return types.Err(types.E_RANGE, "slice index starts at %d but ends at %d", start, end)
	}
	if end > int64(length) {
		return types.Err(types.E_RANGE, "range end index %d out of range for slice of length %d", end, length)
	}
	switch c := container.(type) {
	case *types.ListValue:
		return types.Ok(c.Slice(int(start), int(end)))
	case types.StrValue:
		for _, b := range []int64{start, end} {
			if b < int64(length) && !utf8.RuneStart(c.Val[b]) {
				return types.Err(types.E_RANGE, "byte index %d is not a char boundary", b)
			}
		}
		return types.Ok(types.NewStr(c.Val[start:end]))
	}
	return types.Ok(types.Unit)
}

// storeIndex implements container[index] = value. Assigning a missing
// map key inserts it.
func storeIndex(container, idx, val types.Value) types.Result {
	switch c := container.(type) {
	case *types.ListValue:
		n, ok := idx.(types.IntValue)
		if !ok {
			return types.Err(types.E_TYPE, "list indices must be int, found %s", types.TypeName(idx))
		}
		if err := checkIndex(n.Val, c.Len()); err != nil {
			return types.Raise(err)
		}
		c.Set(int(n.Val), val)
		return types.Ok(types.Unit)
	case *types.MapValue:
		if err := builtins.CheckKey(idx); err != nil {
			return types.Raise(err)
		}
		c.Set(idx, val)
		return types.Ok(types.Unit)
	}
	return types.Err(types.E_TYPE, "cannot assign through an index into %s", types.TypeName(container))
}

// evalField implements value.field for structs and value.N for tuples
func (i *Interpreter) evalField(node *parser.FieldExpr, env *Environment, ctx *types.TaskContext) types.Result {
	base := i.Eval(node.Expr, env, ctx)
	if !base.IsNormal() {
		return base
	}
	switch b := base.Val.(type) {
	case *types.StructValue:
		if v, ok := b.Field(node.Field); ok {
			return types.Ok(v)
		}
		return types.Err(types.E_TYPE, "no field `%s` on type `%s`", node.Field, b.TypeName)
	case types.TupleValue:
		n, err := tupleIndex(node.Field, len(b.Elems))
		if err != nil {
			return types.Raise(err)
		}
		return types.Ok(b.Elems[n])
	}
	return types.Err(types.E_TYPE, "no field `%s` on type %s", node.Field, types.TypeName(base.Val))
}

// tupleIndex parses a positional field name such as "0"
func tupleIndex(field string, size int) (int, *types.RuntimeError) {
	n, err := strconv.Atoi(field)
	if err != nil {
		return 0, types.NewError(types.E_TYPE, "no field `%s` on a tuple", field)
	}
	if n < 0 || n >= size {
		return 0, types.NewError(types.E_RANGE, "no field `%d` on a tuple of %d elements", n, size)
	}
	return n, nil
}
