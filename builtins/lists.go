package builtins

import (
	"sort"
	"strings"

	"ruchy/types"
)

// ============================================================================
// LIST METHODS
// ============================================================================

func (r *Registry) registerListMethods() {
	r.method(RecvList, "len", 0, -1, false, listLen)
	r.method(RecvList, "is_empty", 0, -1, false, listIsEmpty)
	r.method(RecvList, "push", 1, -1, true, listPush)
	r.method(RecvList, "append", 1, -1, true, listPush)
	r.method(RecvList, "pop", 0, -1, true, listPop)
	r.method(RecvList, "insert", 2, -1, true, listInsert)
	r.method(RecvList, "remove", 1, -1, true, listRemove)
	r.method(RecvList, "clear", 0, -1, true, listClear)
	r.method(RecvList, "extend", 1, -1, true, listExtend)
	r.method(RecvList, "reverse", 0, -1, true, listReverse)
	r.method(RecvList, "sort", 0, -1, true, listSort)
	r.method(RecvList, "contains", 1, -1, false, listContains)
	r.method(RecvList, "first", 0, -1, false, listFirst)
	r.method(RecvList, "last", 0, -1, false, listLast)
	r.method(RecvList, "get", 1, -1, false, listGet)
	r.method(RecvList, "join", 1, -1, false, listJoin)
	r.method(RecvList, "map", 1, -1, false, seqMap)
	r.method(RecvList, "filter", 1, -1, false, seqFilter)
	r.method(RecvList, "fold", 2, -1, false, seqFold)
	r.method(RecvList, "any", 1, -1, false, seqAny)
	r.method(RecvList, "all", 1, -1, false, seqAll)
	r.method(RecvList, "find", 1, -1, false, seqFind)
	r.method(RecvList, "sum", 0, -1, false, seqSum)
	r.method(RecvList, "min", 0, -1, false, listMin)
	r.method(RecvList, "max", 0, -1, false, listMax)
}

func listOf(v types.Value) *types.ListValue {
	return v.(*types.ListValue)
}

// elements returns the values a list, set or range receiver iterates over
func elements(recv types.Value) ([]types.Value, *types.RuntimeError) {
	switch v := recv.(type) {
	case *types.ListValue:
		return v.Elements(), nil
	case *types.SetValue:
		return v.Elements(), nil
	case types.RangeValue:
		return RangeElements(v)
	}
	return nil, types.NewError(types.E_TYPE, "%s is not iterable", types.TypeName(recv))
}

// RangeElements expands a bounded range
func RangeElements(r types.RangeValue) ([]types.Value, *types.RuntimeError) {
	if !r.HasStart || !r.HasEnd {
		return nil, types.NewError(types.E_INVARG, "cannot collect the unbounded range %s", r.Debug())
	}
	out := make([]types.Value, 0, r.Len())
	for n := r.Start; n < r.Last(); n++ {
		out = append(out, r.Elem(n))
	}
	return out, nil
}

// listLen returns the number of elements
// list.len() -> int
func listLen(ctx *types.TaskContext, recv types.Value, args []types.Value) types.Result {
	return types.Ok(types.NewInt(int64(listOf(recv).Len())))
}

func listIsEmpty(ctx *types.TaskContext, recv types.Value, args []types.Value) types.Result {
	return types.Ok(types.NewBool(listOf(recv).Len() == 0))
}

// listPush appends in place
// list.push(value) -> ()
func listPush(ctx *types.TaskContext, recv types.Value, args []types.Value) types.Result {
	listOf(recv).Append(args[0])
	return types.Ok(types.Unit)
}

// listPop removes the last element
// list.pop() -> Option
func listPop(ctx *types.TaskContext, recv types.Value, args []types.Value) types.Result {
	v, _ := listOf(recv).Pop()
	return types.Ok(types.OptionOf(v))
}

// listInsert inserts before index i; i may equal len
// list.insert(i, value) -> ()
func listInsert(ctx *types.TaskContext, recv types.Value, args []types.Value) types.Result {
	i, err := intArg("insert", args, 0)
	if err != nil {
		return types.Raise(err)
	}
	l := listOf(recv)
	if !l.Insert(int(i), args[1]) {
		return types.Err(types.E_RANGE, "insertion index (is %d) should be <= len (is %d)", i, l.Len())
	}
	return types.Ok(types.Unit)
}

// listRemove deletes and returns the element at index i
// list.remove(i) -> value
func listRemove(ctx *types.TaskContext, recv types.Value, args []types.Value) types.Result {
	i, err := intArg("remove", args, 0)
	if err != nil {
		return types.Raise(err)
	}
	l := listOf(recv)
	v, ok := l.RemoveAt(int(i))
	if !ok {
		return types.Err(types.E_RANGE, "removal index (is %d) should be < len (is %d)", i, l.Len())
	}
	return types.Ok(v)
}

func listClear(ctx *types.TaskContext, recv types.Value, args []types.Value) types.Result {
	listOf(recv).Clear()
	return types.Ok(types.Unit)
}

// listExtend appends every element of another list
// list.extend(other) -> ()
func listExtend(ctx *types.TaskContext, recv types.Value, args []types.Value) types.Result {
	other, ok := args[0].(*types.ListValue)
	if !ok {
		return types.Err(types.E_TYPE, "extend expects a list, got %s", types.TypeName(args[0]))
	}
	listOf(recv).Append(other.Elements()...)
	return types.Ok(types.Unit)
}

func listReverse(ctx *types.TaskContext, recv types.Value, args []types.Value) types.Result {
	listOf(recv).Reverse()
	return types.Ok(types.Unit)
}

// listSort sorts in place, stably; every pair of elements must be ordered
// list.sort() -> ()
func listSort(ctx *types.TaskContext, recv types.Value, args []types.Value) types.Result {
	l := listOf(recv)
	elems := l.Elements()
	var bad *types.RuntimeError
	sort.SliceStable(elems, func(i, j int) bool {
		c, ok := types.Compare(elems[i], elems[j])
		if !ok && bad == nil {
			bad = types.NewError(types.E_TYPE, "cannot order %s and %s", elems[i].Debug(), elems[j].Debug())
		}
		return c < 0
	})
	if bad != nil {
		return types.Raise(bad)
	}
	l.Replace(elems)
	return types.Ok(types.Unit)
}

func listContains(ctx *types.TaskContext, recv types.Value, args []types.Value) types.Result {
	for _, el := range listOf(recv).Elements() {
		if el.Equal(args[0]) {
			return types.Ok(types.NewBool(true))
		}
	}
	return types.Ok(types.NewBool(false))
}

func listFirst(ctx *types.TaskContext, recv types.Value, args []types.Value) types.Result {
	return types.Ok(types.OptionOf(listOf(recv).Get(0)))
}

func listLast(ctx *types.TaskContext, recv types.Value, args []types.Value) types.Result {
	l := listOf(recv)
	return types.Ok(types.OptionOf(l.Get(l.Len() - 1)))
}

// listGet is the non-panicking index
// list.get(i) -> Option
func listGet(ctx *types.TaskContext, recv types.Value, args []types.Value) types.Result {
	i, err := intArg("get", args, 0)
	if err != nil {
		return types.Raise(err)
	}
	return types.Ok(types.OptionOf(listOf(recv).Get(int(i))))
}

// listJoin concatenates string elements with a separator
// list.join(sep) -> string
func listJoin(ctx *types.TaskContext, recv types.Value, args []types.Value) types.Result {
	sep, err := strArg("join", args, 0)
	if err != nil {
		return types.Raise(err)
	}
	elems := listOf(recv).Elements()
	parts := make([]string, len(elems))
	for i, el := range elems {
		s, ok := el.(types.StrValue)
		if !ok {
			return types.Err(types.E_TYPE, "join requires a list of strings, found %s", types.TypeName(el))
		}
		parts[i] = s.Val
	}
	return types.Ok(types.NewStr(strings.Join(parts, sep)))
}

// seqMap applies fn to every element
// seq.map(fn) -> list
func seqMap(ctx *types.TaskContext, recv types.Value, args []types.Value) types.Result {
	elems, err := elements(recv)
	if err != nil {
		return types.Raise(err)
	}
	out := make([]types.Value, len(elems))
	for i, el := range elems {
		res := call(ctx, args[0], el)
		if !res.IsNormal() {
			return res
		}
		out[i] = res.Val
	}
	return types.Ok(types.NewList(out))
}

// seqFilter keeps the elements for which fn returns true
// seq.filter(fn) -> list
func seqFilter(ctx *types.TaskContext, recv types.Value, args []types.Value) types.Result {
	elems, err := elements(recv)
	if err != nil {
		return types.Raise(err)
	}
	out := []types.Value{}
	for _, el := range elems {
		keep, res := predicate(ctx, "filter", args[0], el)
		if !res.IsNormal() {
			return res
		}
		if keep {
			out = append(out, el)
		}
	}
	return types.Ok(types.NewList(out))
}

// seqFold threads an accumulator through fn
// seq.fold(init, fn) -> value
func seqFold(ctx *types.TaskContext, recv types.Value, args []types.Value) types.Result {
	elems, err := elements(recv)
	if err != nil {
		return types.Raise(err)
	}
	acc := args[0]
	for _, el := range elems {
		res := call(ctx, args[1], acc, el)
		if !res.IsNormal() {
			return res
		}
		acc = res.Val
	}
	return types.Ok(acc)
}

func seqAny(ctx *types.TaskContext, recv types.Value, args []types.Value) types.Result {
	elems, err := elements(recv)
	if err != nil {
		return types.Raise(err)
	}
	for _, el := range elems {
		ok, res := predicate(ctx, "any", args[0], el)
		if !res.IsNormal() {
			return res
		}
		if ok {
			return types.Ok(types.NewBool(true))
		}
	}
	return types.Ok(types.NewBool(false))
}

func seqAll(ctx *types.TaskContext, recv types.Value, args []types.Value) types.Result {
	elems, err := elements(recv)
	if err != nil {
		return types.Raise(err)
	}
	for _, el := range elems {
		ok, res := predicate(ctx, "all", args[0], el)
		if !res.IsNormal() {
			return res
		}
		if !ok {
			return types.Ok(types.NewBool(false))
		}
	}
	return types.Ok(types.NewBool(true))
}

// seqFind returns the first element satisfying fn
// seq.find(fn) -> Option
func seqFind(ctx *types.TaskContext, recv types.Value, args []types.Value) types.Result {
	elems, err := elements(recv)
	if err != nil {
		return types.Raise(err)
	}
	for _, el := range elems {
		ok, res := predicate(ctx, "find", args[0], el)
		if !res.IsNormal() {
			return res
		}
		if ok {
			return types.Ok(types.NewSome(el))
		}
	}
	return types.Ok(types.None)
}

// seqSum adds numeric elements with overflow checking; an empty
// sequence sums to 0
// seq.sum() -> int|float
func seqSum(ctx *types.TaskContext, recv types.Value, args []types.Value) types.Result {
	elems, err := elements(recv)
	if err != nil {
		return types.Raise(err)
	}
	if len(elems) == 0 {
		return types.Ok(types.NewInt(0))
	}
	switch elems[0].(type) {
	case types.IntValue:
		var total int64
		for _, el := range elems {
			n, ok := el.(types.IntValue)
			if !ok {
				return types.Err(types.E_TYPE, "sum over mixed int and %s elements", types.TypeName(el))
			}
			sum, ok := types.AddInt(total, n.Val)
			if !ok {
				return types.Err(types.E_OVERFLOW, "attempt to add with overflow")
			}
			total = sum
		}
		return types.Ok(types.NewInt(total))
	case types.FloatValue:
		total := 0.0
		for _, el := range elems {
			f, ok := el.(types.FloatValue)
			if !ok {
				return types.Err(types.E_TYPE, "sum over mixed float and %s elements", types.TypeName(el))
			}
			total += f.Val
		}
		return types.Ok(types.NewFloat(total))
	}
	return types.Err(types.E_TYPE, "cannot sum %s elements", types.TypeName(elems[0]))
}

func listMin(ctx *types.TaskContext, recv types.Value, args []types.Value) types.Result {
	return extreme("min", listOf(recv).Elements(), func(c int) bool { return c < 0 })
}

func listMax(ctx *types.TaskContext, recv types.Value, args []types.Value) types.Result {
	return extreme("max", listOf(recv).Elements(), func(c int) bool { return c >= 0 })
}

// extreme picks the min or max element as Iterator::min/max do: the first
// minimum and the last maximum. Floats are rejected because f64 has no
// total order.
func extreme(name string, elems []types.Value, better func(int) bool) types.Result {
	if len(elems) == 0 {
		return types.Ok(types.None)
	}
	best := elems[0]
	for _, el := range elems {
		if el.Kind() == types.KindFloat {
			return types.Err(types.E_TYPE, "%s requires totally ordered elements, found float", name)
		}
	}
	for _, el := range elems[1:] {
		c, ok := types.Compare(el, best)
		if !ok {
			return types.Err(types.E_TYPE, "cannot order %s and %s", el.Debug(), best.Debug())
		}
		if better(c) {
			best = el
		}
	}
	return types.Ok(types.NewSome(best))
}

// ============================================================================
// RANGE METHODS
// ============================================================================

func (r *Registry) registerRangeMethods() {
	r.method(RecvRange, "contains", 1, -1, false, rangeContains)
	r.method(RecvRange, "rev", 0, -1, false, rangeRev)
	r.method(RecvRange, "collect", 0, -1, false, rangeCollect)
	r.method(RecvRange, "sum", 0, -1, false, seqSum)
	r.method(RecvRange, "map", 1, -1, false, seqMap)
	r.method(RecvRange, "filter", 1, -1, false, seqFilter)
}

func rangeContains(ctx *types.TaskContext, recv types.Value, args []types.Value) types.Result {
	rv := recv.(types.RangeValue)
	switch v := args[0].(type) {
	case types.IntValue:
		return types.Ok(types.NewBool(!rv.Char && rv.Contains(v.Val)))
	case types.CharValue:
		return types.Ok(types.NewBool(rv.Char && rv.Contains(int64(v.Val))))
	}
	return types.Err(types.E_TYPE, "range.contains expects an int or char, got %s", types.TypeName(args[0]))
}

// rangeRev returns the range's elements in reverse order
// range.rev() -> list
func rangeRev(ctx *types.TaskContext, recv types.Value, args []types.Value) types.Result {
	elems, err := RangeElements(recv.(types.RangeValue))
	if err != nil {
		return types.Raise(err)
	}
	l := types.NewList(elems)
	l.Reverse()
	return types.Ok(l)
}

func rangeCollect(ctx *types.TaskContext, recv types.Value, args []types.Value) types.Result {
	elems, err := RangeElements(recv.(types.RangeValue))
	if err != nil {
		return types.Raise(err)
	}
	return types.Ok(types.NewList(elems))
}
