package builtins

import (
	"math"

	"ruchy/types"
)

// ============================================================================
// NUMBER METHODS
// ============================================================================

func (r *Registry) registerNumberMethods() {
	r.method(RecvInt, "abs", 0, -1, false, intAbs)
	r.method(RecvInt, "pow", 1, -1, false, intPow)
	r.method(RecvInt, "min", 1, -1, false, intMin)
	r.method(RecvInt, "max", 1, -1, false, intMax)
	r.method(RecvInt, "signum", 0, -1, false, intSignum)

	r.method(RecvFloat, "abs", 0, -1, false, floatUnary(math.Abs))
	r.method(RecvFloat, "sqrt", 0, -1, false, floatUnary(math.Sqrt))
	r.method(RecvFloat, "floor", 0, -1, false, floatUnary(math.Floor))
	r.method(RecvFloat, "ceil", 0, -1, false, floatUnary(math.Ceil))
	r.method(RecvFloat, "round", 0, -1, false, floatUnary(math.Round))
	r.method(RecvFloat, "trunc", 0, -1, false, floatUnary(math.Trunc))
	r.method(RecvFloat, "sin", 0, -1, false, floatUnary(math.Sin))
	r.method(RecvFloat, "cos", 0, -1, false, floatUnary(math.Cos))
	r.method(RecvFloat, "tan", 0, -1, false, floatUnary(math.Tan))
	r.method(RecvFloat, "ln", 0, -1, false, floatUnary(math.Log))
	r.method(RecvFloat, "log10", 0, -1, false, floatUnary(math.Log10))
	r.method(RecvFloat, "exp", 0, -1, false, floatUnary(math.Exp))
	r.method(RecvFloat, "powf", 1, -1, false, floatPowf)
	r.method(RecvFloat, "powi", 1, -1, false, floatPowi)
	r.method(RecvFloat, "min", 1, -1, false, floatBinary("min", floatMin))
	r.method(RecvFloat, "max", 1, -1, false, floatBinary("max", floatMax))
	r.method(RecvFloat, "is_nan", 0, -1, false, floatIsNaN)
}

func intOf(v types.Value) int64 {
	return v.(types.IntValue).Val
}

func floatOf(v types.Value) float64 {
	return v.(types.FloatValue).Val
}

// intAbs fails on i64::MIN, whose absolute value does not fit
// int.abs() -> int
func intAbs(ctx *types.TaskContext, recv types.Value, args []types.Value) types.Result {
	n := intOf(recv)
	if n >= 0 {
		return types.Ok(recv)
	}
	neg, ok := types.NegInt(n)
	if !ok {
		return types.Err(types.E_OVERFLOW, "attempt to negate with overflow")
	}
	return types.Ok(types.NewInt(neg))
}

// intPow raises to a non-negative power with overflow checking
// int.pow(exp) -> int
func intPow(ctx *types.TaskContext, recv types.Value, args []types.Value) types.Result {
	exp, err := intArg("pow", args, 0)
	if err != nil {
		return types.Raise(err)
	}
	return PowInt(intOf(recv), exp)
}

// PowInt implements integer exponentiation, shared with the `**` operator
func PowInt(base, exp int64) types.Result {
	if exp < 0 || exp > math.MaxUint32 {
		return types.Err(types.E_OVERFLOW, "exponent %d out of range", exp)
	}
	n, ok := types.PowInt(base, exp)
	if !ok {
		return types.Err(types.E_OVERFLOW, "attempt to multiply with overflow")
	}
	return types.Ok(types.NewInt(n))
}

func intMin(ctx *types.TaskContext, recv types.Value, args []types.Value) types.Result {
	other, err := intArg("min", args, 0)
	if err != nil {
		return types.Raise(err)
	}
	return types.Ok(types.NewInt(min(intOf(recv), other)))
}

func intMax(ctx *types.TaskContext, recv types.Value, args []types.Value) types.Result {
	other, err := intArg("max", args, 0)
	if err != nil {
		return types.Raise(err)
	}
	return types.Ok(types.NewInt(max(intOf(recv), other)))
}

func intSignum(ctx *types.TaskContext, recv types.Value, args []types.Value) types.Result {
	n := intOf(recv)
	switch {
	case n > 0:
		return types.Ok(types.NewInt(1))
	case n < 0:
		return types.Ok(types.NewInt(-1))
	}
	return types.Ok(types.NewInt(0))
}

func floatUnary(fn func(float64) float64) MethodFunc {
	return func(ctx *types.TaskContext, recv types.Value, args []types.Value) types.Result {
		return types.Ok(types.NewFloat(fn(floatOf(recv))))
	}
}

// floatArg accepts only a float; ints are not promoted
func floatArg(name string, args []types.Value, i int) (float64, *types.RuntimeError) {
	f, ok := args[i].(types.FloatValue)
	if !ok {
		return 0, types.NewError(types.E_TYPE, "%s expects a float argument, got %s", name, types.TypeName(args[i]))
	}
	return f.Val, nil
}

func floatBinary(name string, fn func(a, b float64) float64) MethodFunc {
	return func(ctx *types.TaskContext, recv types.Value, args []types.Value) types.Result {
		other, err := floatArg(name, args, 0)
		if err != nil {
			return types.Raise(err)
		}
		return types.Ok(types.NewFloat(fn(floatOf(recv), other)))
	}
}

func floatPowf(ctx *types.TaskContext, recv types.Value, args []types.Value) types.Result {
	exp, err := floatArg("powf", args, 0)
	if err != nil {
		return types.Raise(err)
	}
	return types.Ok(types.NewFloat(math.Pow(floatOf(recv), exp)))
}

func floatPowi(ctx *types.TaskContext, recv types.Value, args []types.Value) types.Result {
	exp, err := intArg("powi", args, 0)
	if err != nil {
		return types.Raise(err)
	}
	if exp < math.MinInt32 || exp > math.MaxInt32 {
		return types.Err(types.E_OVERFLOW, "powi exponent %d does not fit in i32", exp)
	}
	return types.Ok(types.NewFloat(math.Pow(floatOf(recv), float64(exp))))
}

func floatIsNaN(ctx *types.TaskContext, recv types.Value, args []types.Value) types.Result {
	return types.Ok(types.NewBool(math.IsNaN(floatOf(recv))))
}

// ============================================================================
// OPTION AND RESULT METHODS
// ============================================================================

func (r *Registry) registerOptionMethods() {
	r.method(RecvOption, "is_some", 0, -1, false, variantIs("Some"))
	r.method(RecvOption, "is_none", 0, -1, false, variantIs("None"))
	r.method(RecvOption, "unwrap", 0, -1, false, unwrap)
	r.method(RecvOption, "unwrap_or", 1, -1, false, unwrapOr)
	r.method(RecvOption, "expect", 1, -1, false, expect)

	r.method(RecvResult, "is_ok", 0, -1, false, variantIs("Ok"))
	r.method(RecvResult, "is_err", 0, -1, false, variantIs("Err"))
	r.method(RecvResult, "unwrap", 0, -1, false, unwrap)
	r.method(RecvResult, "unwrap_or", 1, -1, false, unwrapOr)
	r.method(RecvResult, "expect", 1, -1, false, expect)
}

func variantIs(variant string) MethodFunc {
	return func(ctx *types.TaskContext, recv types.Value, args []types.Value) types.Result {
		return types.Ok(types.NewBool(recv.(types.EnumValue).Variant == variant))
	}
}

// payload returns the Some/Ok value, or false for None/Err
func payload(e types.EnumValue) (types.Value, bool) {
	if e.Variant == "Some" || e.Variant == "Ok" {
		return e.Fields[0], true
	}
	return nil, false
}

// unwrap panics with the same messages Rust uses
func unwrap(ctx *types.TaskContext, recv types.Value, args []types.Value) types.Result {
	e := recv.(types.EnumValue)
	if v, ok := payload(e); ok {
		return types.Ok(v)
	}
	if e.Enum == "Option" {
		return types.Err(types.E_PANIC, "called `Option::unwrap()` on a `None` value")
	}
	return types.Err(types.E_PANIC, "called `Result::unwrap()` on an `Err` value: %s", e.Fields[0].Debug())
}

func unwrapOr(ctx *types.TaskContext, recv types.Value, args []types.Value) types.Result {
	if v, ok := payload(recv.(types.EnumValue)); ok {
		return types.Ok(v)
	}
	return types.Ok(args[0])
}

func expect(ctx *types.TaskContext, recv types.Value, args []types.Value) types.Result {
	e := recv.(types.EnumValue)
	if v, ok := payload(e); ok {
		return types.Ok(v)
	}
	msg, err := strArg("expect", args, 0)
	if err != nil {
		return types.Raise(err)
	}
	if e.Enum == "Result" {
		return types.Err(types.E_PANIC, "%s: %s", msg, e.Fields[0].Debug())
	}
	return types.Err(types.E_PANIC, "%s", msg)
}
