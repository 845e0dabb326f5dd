package builtins

import (
	"ruchy/types"
)

// ============================================================================
// MAP AND SET METHODS
// ============================================================================

func (r *Registry) registerMapMethods() {
	r.method(RecvMap, "len", 0, -1, false, mapLen)
	r.method(RecvMap, "is_empty", 0, -1, false, mapIsEmpty)
	r.method(RecvMap, "contains_key", 1, -1, false, mapContainsKey)
	r.method(RecvMap, "get", 1, -1, false, mapGet)
	r.method(RecvMap, "insert", 2, -1, true, mapInsert)
	r.method(RecvMap, "remove", 1, -1, true, mapRemove)
	r.method(RecvMap, "keys", 0, -1, false, mapKeys)
	r.method(RecvMap, "values", 0, -1, false, mapValues)
	r.method(RecvMap, "items", 0, -1, false, mapItems)
	r.method(RecvMap, "clear", 0, -1, true, mapClear)
}

func (r *Registry) registerSetMethods() {
	r.method(RecvSet, "len", 0, -1, false, setLen)
	r.method(RecvSet, "is_empty", 0, -1, false, setIsEmpty)
	r.method(RecvSet, "contains", 1, -1, false, setContains)
	r.method(RecvSet, "insert", 1, -1, true, setAdd)
	r.method(RecvSet, "add", 1, -1, true, setAdd)
	r.method(RecvSet, "remove", 1, -1, true, setRemove)
	r.method(RecvSet, "union", 1, -1, false, setUnion)
	r.method(RecvSet, "intersection", 1, -1, false, setIntersection)
	r.method(RecvSet, "difference", 1, -1, false, setDifference)
	r.method(RecvSet, "to_list", 0, -1, false, setToList)
	r.method(RecvSet, "clear", 0, -1, true, setClear)
}

func mapOf(v types.Value) *types.MapValue {
	return v.(*types.MapValue)
}

// CheckKey rejects values that cannot be map keys or set elements
func CheckKey(v types.Value) *types.RuntimeError {
	if !types.IsHashable(v) {
		return types.NewError(types.E_TYPE, "%s cannot be used as a key", types.TypeName(v))
	}
	return nil
}

func mapLen(ctx *types.TaskContext, recv types.Value, args []types.Value) types.Result {
	return types.Ok(types.NewInt(int64(mapOf(recv).Len())))
}

func mapIsEmpty(ctx *types.TaskContext, recv types.Value, args []types.Value) types.Result {
	return types.Ok(types.NewBool(mapOf(recv).Len() == 0))
}

func mapContainsKey(ctx *types.TaskContext, recv types.Value, args []types.Value) types.Result {
	return types.Ok(types.NewBool(mapOf(recv).Has(args[0])))
}

// mapGet returns Some(value) or None
// map.get(key) -> Option
func mapGet(ctx *types.TaskContext, recv types.Value, args []types.Value) types.Result {
	v, ok := mapOf(recv).Get(args[0])
	if !ok {
		return types.Ok(types.None)
	}
	return types.Ok(types.NewSome(v))
}

// mapInsert stores a value and returns the previous one, if any
// map.insert(key, value) -> Option
func mapInsert(ctx *types.TaskContext, recv types.Value, args []types.Value) types.Result {
	if err := CheckKey(args[0]); err != nil {
		return types.Raise(err)
	}
	old, existed := mapOf(recv).Set(args[0], args[1])
	if !existed {
		return types.Ok(types.None)
	}
	return types.Ok(types.NewSome(old))
}

// map.remove(key) -> Option
func mapRemove(ctx *types.TaskContext, recv types.Value, args []types.Value) types.Result {
	old, existed := mapOf(recv).Delete(args[0])
	if !existed {
		return types.Ok(types.None)
	}
	return types.Ok(types.NewSome(old))
}

func mapKeys(ctx *types.TaskContext, recv types.Value, args []types.Value) types.Result {
	return types.Ok(types.NewList(mapOf(recv).Keys()))
}

func mapValues(ctx *types.TaskContext, recv types.Value, args []types.Value) types.Result {
	return types.Ok(types.NewList(mapOf(recv).Values()))
}

// mapItems returns (key, value) tuples in key order
// map.items() -> list
func mapItems(ctx *types.TaskContext, recv types.Value, args []types.Value) types.Result {
	entries := mapOf(recv).Entries()
	out := make([]types.Value, len(entries))
	for i, e := range entries {
		out[i] = types.NewTuple(e.Key, e.Val)
	}
	return types.Ok(types.NewList(out))
}

func mapClear(ctx *types.TaskContext, recv types.Value, args []types.Value) types.Result {
	mapOf(recv).Clear()
	return types.Ok(types.Unit)
}

func setOf(v types.Value) *types.SetValue {
	return v.(*types.SetValue)
}

func setArg(name string, args []types.Value) (*types.SetValue, *types.RuntimeError) {
	s, ok := args[0].(*types.SetValue)
	if !ok {
		return nil, types.NewError(types.E_TYPE, "%s expects a set argument, got %s", name, types.TypeName(args[0]))
	}
	return s, nil
}

func setLen(ctx *types.TaskContext, recv types.Value, args []types.Value) types.Result {
	return types.Ok(types.NewInt(int64(setOf(recv).Len())))
}

func setIsEmpty(ctx *types.TaskContext, recv types.Value, args []types.Value) types.Result {
	return types.Ok(types.NewBool(setOf(recv).Len() == 0))
}

func setContains(ctx *types.TaskContext, recv types.Value, args []types.Value) types.Result {
	return types.Ok(types.NewBool(setOf(recv).Contains(args[0])))
}

// setAdd reports whether the element was newly added
// set.insert(v) -> bool
func setAdd(ctx *types.TaskContext, recv types.Value, args []types.Value) types.Result {
	if err := CheckKey(args[0]); err != nil {
		return types.Raise(err)
	}
	return types.Ok(types.NewBool(setOf(recv).Add(args[0])))
}

func setRemove(ctx *types.TaskContext, recv types.Value, args []types.Value) types.Result {
	return types.Ok(types.NewBool(setOf(recv).Remove(args[0])))
}

// set.union(other) -> set
func setUnion(ctx *types.TaskContext, recv types.Value, args []types.Value) types.Result {
	other, err := setArg("union", args)
	if err != nil {
		return types.Raise(err)
	}
	out := types.NewSet(setOf(recv).Elements()...)
	for _, v := range other.Elements() {
		out.Add(v)
	}
	return types.Ok(out)
}

// set.intersection(other) -> set
func setIntersection(ctx *types.TaskContext, recv types.Value, args []types.Value) types.Result {
	other, err := setArg("intersection", args)
	if err != nil {
		return types.Raise(err)
	}
	out := types.NewSet()
	for _, v := range setOf(recv).Elements() {
		if other.Contains(v) {
			out.Add(v)
		}
	}
	return types.Ok(out)
}

// set.difference(other) -> set
func setDifference(ctx *types.TaskContext, recv types.Value, args []types.Value) types.Result {
	other, err := setArg("difference", args)
	if err != nil {
		return types.Raise(err)
	}
	out := types.NewSet()
	for _, v := range setOf(recv).Elements() {
		if !other.Contains(v) {
			out.Add(v)
		}
	}
	return types.Ok(out)
}

func setToList(ctx *types.TaskContext, recv types.Value, args []types.Value) types.Result {
	return types.Ok(types.NewList(setOf(recv).Elements()))
}

func setClear(ctx *types.TaskContext, recv types.Value, args []types.Value) types.Result {
	setOf(recv).Clear()
	return types.Ok(types.Unit)
}
