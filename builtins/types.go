package builtins

import (
	"math"
	"strconv"
	"strings"

	"ruchy/types"
)

// ============================================================================
// TYPE CONVERSIONS
// ============================================================================

// IntTypes maps integer type names accepted by `as` to their bit width;
// the sign is given by the leading letter
var IntTypes = map[string]int{
	"i8": 8, "i16": 16, "i32": 32, "i64": 64, "i128": 64, "isize": 64,
	"u8": 8, "u16": 16, "u32": 32, "u64": 64, "u128": 64, "usize": 64,
	"int": 64,
}

// FloatTypes are the float type names accepted by `as`
var FloatTypes = map[string]bool{"f32": true, "f64": true, "float": true}

func oneArg(name string, args []types.Value) *types.RuntimeError {
	if len(args) != 1 {
		return types.NewError(types.E_ARGS, "%s takes 1 argument, got %d", name, len(args))
	}
	return nil
}

func conversionError(target string, v types.Value) types.Result {
	return types.Err(types.E_TYPE, "cannot convert %s to %s", types.TypeName(v), target)
}

// builtinInt converts to an integer
// int(int|float|bool|char|string) -> int
func builtinInt(ctx *types.TaskContext, args []types.Value) types.Result {
	if err := oneArg("int", args); err != nil {
		return types.Raise(err)
	}
	switch v := args[0].(type) {
	case types.IntValue:
		return types.Ok(v)
	case types.FloatValue:
		return types.Ok(types.NewInt(saturate(v.Val)))
	case types.BoolValue:
		if v.Val {
			return types.Ok(types.NewInt(1))
		}
		return types.Ok(types.NewInt(0))
	case types.CharValue:
		return types.Ok(types.NewInt(int64(v.Val)))
	case types.StrValue:
		n, err := strconv.ParseInt(v.Val, 10, 64)
		if err != nil {
			return types.Err(types.E_INVARG, "cannot parse %s as int", v.Debug())
		}
		return types.Ok(types.NewInt(n))
	}
	return conversionError("int", args[0])
}

// builtinFloat converts to a float
// float(int|float|string) -> float
func builtinFloat(ctx *types.TaskContext, args []types.Value) types.Result {
	if err := oneArg("float", args); err != nil {
		return types.Raise(err)
	}
	switch v := args[0].(type) {
	case types.IntValue:
		return types.Ok(types.NewFloat(float64(v.Val)))
	case types.FloatValue:
		return types.Ok(v)
	case types.StrValue:
		f, err := parseFloat(v.Val)
		if err != nil {
			return types.Err(types.E_INVARG, "cannot parse %s as float", v.Debug())
		}
		return types.Ok(types.NewFloat(f))
	}
	return conversionError("float", args[0])
}

// parseFloat accepts what Rust's f64::from_str accepts: decimal and
// exponent forms, inf, infinity and nan (any case), with an optional sign
func parseFloat(s string) (float64, error) {
	body := strings.TrimLeft(s, "+-")
	if strings.ContainsAny(body, "_xXpP") || strings.HasPrefix(strings.ToLower(body), "0x") {
		return 0, strconv.ErrSyntax
	}
	return strconv.ParseFloat(s, 64)
}

// builtinStr renders a value with Display (Debug for compound values)
// str(value) -> string
func builtinStr(ctx *types.TaskContext, args []types.Value) types.Result {
	if err := oneArg("str", args); err != nil {
		return types.Raise(err)
	}
	return types.Ok(types.NewStr(types.Display(args[0])))
}

// builtinBool converts to a bool
// bool(bool|int|string) -> bool
func builtinBool(ctx *types.TaskContext, args []types.Value) types.Result {
	if err := oneArg("bool", args); err != nil {
		return types.Raise(err)
	}
	switch v := args[0].(type) {
	case types.BoolValue:
		return types.Ok(v)
	case types.IntValue:
		return types.Ok(types.NewBool(v.Val != 0))
	case types.StrValue:
		switch v.Val {
		case "true":
			return types.Ok(types.NewBool(true))
		case "false":
			return types.Ok(types.NewBool(false))
		}
		return types.Err(types.E_INVARG, "cannot parse %s as bool", v.Debug())
	}
	return conversionError("bool", args[0])
}

// builtinChar converts a code point to a char
// char(int|char) -> char
func builtinChar(ctx *types.TaskContext, args []types.Value) types.Result {
	if err := oneArg("char", args); err != nil {
		return types.Raise(err)
	}
	switch v := args[0].(type) {
	case types.CharValue:
		return types.Ok(v)
	case types.IntValue:
		if !validScalar(v.Val) {
			return types.Err(types.E_INVARG, "%d is not a valid char", v.Val)
		}
		return types.Ok(types.NewChar(rune(v.Val)))
	}
	return conversionError("char", args[0])
}

func validScalar(n int64) bool {
	return n >= 0 && n <= 0x10FFFF && (n < 0xD800 || n > 0xDFFF)
}

// saturate converts a float to int64 the way Rust's `as` does: NaN becomes
// 0 and out-of-range values clamp
func saturate(f float64) int64 {
	switch {
	case math.IsNaN(f):
		return 0
	case f >= math.MaxInt64:
		return math.MaxInt64
	case f <= math.MinInt64:
		return math.MinInt64
	}
	return int64(f)
}

// wrapInt truncates n to the given integer type, as Rust's `as` does
func wrapInt(n int64, typeName string) (int64, *types.RuntimeError) {
	switch typeName {
	case "i8":
		return int64(int8(n)), nil
	case "i16":
		return int64(int16(n)), nil
	case "i32":
		return int64(int32(n)), nil
	case "u8":
		return int64(uint8(n)), nil
	case "u16":
		return int64(uint16(n)), nil
	case "u32":
		return int64(uint32(n)), nil
	case "u64", "u128", "usize":
		if n < 0 {
			return 0, types.NewError(types.E_OVERFLOW, "%d as %s does not fit in i64", n, typeName)
		}
	}
	return n, nil
}

// Cast implements `value as T` for primitive targets
func Cast(v types.Value, typeName string) types.Result {
	if _, ok := IntTypes[typeName]; ok {
		var n int64
		switch v := v.(type) {
		case types.IntValue:
			n = v.Val
		case types.FloatValue:
			n = saturate(v.Val)
		case types.BoolValue:
			if v.Val {
				n = 1
			}
		case types.CharValue:
			n = int64(v.Val)
		default:
			return types.Err(types.E_TYPE, "cannot cast %s as %s", types.TypeName(v), typeName)
		}
		wrapped, err := wrapInt(n, typeName)
		if err != nil {
			return types.Raise(err)
		}
		return types.Ok(types.NewInt(wrapped))
	}
	if FloatTypes[typeName] {
		var f float64
		switch v := v.(type) {
		case types.IntValue:
			f = float64(v.Val)
		case types.FloatValue:
			f = v.Val
		default:
			return types.Err(types.E_TYPE, "cannot cast %s as %s", types.TypeName(v), typeName)
		}
		if typeName == "f32" {
			f = float64(float32(f))
		}
		return types.Ok(types.NewFloat(f))
	}
	switch typeName {
	case "char":
		switch v := v.(type) {
		case types.CharValue:
			return types.Ok(v)
		case types.IntValue:
			return types.Ok(types.NewChar(rune(uint8(v.Val))))
		}
	case "bool":
		if b, ok := v.(types.BoolValue); ok {
			return types.Ok(b)
		}
	}
	return types.Err(types.E_TYPE, "cannot cast %s as %s", types.TypeName(v), typeName)
}

// ============================================================================
// GENERIC HELPERS
// ============================================================================

// builtinLen returns the length of a string (in bytes), list, map or set
// len(value) -> int
func builtinLen(ctx *types.TaskContext, args []types.Value) types.Result {
	if err := oneArg("len", args); err != nil {
		return types.Raise(err)
	}
	switch v := args[0].(type) {
	case types.StrValue:
		return types.Ok(types.NewInt(int64(v.Len())))
	case *types.ListValue:
		return types.Ok(types.NewInt(int64(v.Len())))
	case *types.MapValue:
		return types.Ok(types.NewInt(int64(v.Len())))
	case *types.SetValue:
		return types.Ok(types.NewInt(int64(v.Len())))
	}
	return types.Err(types.E_TYPE, "len is not defined for %s", types.TypeName(args[0]))
}

// floatMin follows f64::min: a NaN operand yields the other operand
func floatMin(a, b float64) float64 {
	if math.IsNaN(a) {
		return b
	}
	if math.IsNaN(b) {
		return a
	}
	return math.Min(a, b)
}

func floatMax(a, b float64) float64 {
	if math.IsNaN(a) {
		return b
	}
	if math.IsNaN(b) {
		return a
	}
	return math.Max(a, b)
}

// builtinMin returns the smaller of two comparable values
// min(a, b) -> value
func builtinMin(ctx *types.TaskContext, args []types.Value) types.Result {
	return pick("min", args, func(c int) bool { return c <= 0 })
}

// builtinMax returns the larger of two comparable values; ties pick the
// second argument, as std::cmp::max does
func builtinMax(ctx *types.TaskContext, args []types.Value) types.Result {
	return pick("max", args, func(c int) bool { return c > 0 })
}

func pick(name string, args []types.Value, first func(int) bool) types.Result {
	if len(args) != 2 {
		return types.Err(types.E_ARGS, "%s takes 2 arguments, got %d", name, len(args))
	}
	if args[0].Kind() != args[1].Kind() {
		return types.Err(types.E_TYPE, "%s requires two values of the same type, got %s and %s",
			name, types.TypeName(args[0]), types.TypeName(args[1]))
	}
	if a, ok := args[0].(types.FloatValue); ok {
		b := args[1].(types.FloatValue)
		if name == "min" {
			return types.Ok(types.NewFloat(floatMin(a.Val, b.Val)))
		}
		return types.Ok(types.NewFloat(floatMax(a.Val, b.Val)))
	}
	c, ok := types.Compare(args[0], args[1])
	if !ok {
		return types.Err(types.E_TYPE, "%s: %s values are not ordered", name, types.TypeName(args[0]))
	}
	if first(c) {
		return types.Ok(args[0])
	}
	return types.Ok(args[1])
}

func builtinSome(ctx *types.TaskContext, args []types.Value) types.Result {
	if err := oneArg("Some", args); err != nil {
		return types.Raise(err)
	}
	return types.Ok(types.NewSome(args[0]))
}

func builtinOk(ctx *types.TaskContext, args []types.Value) types.Result {
	if err := oneArg("Ok", args); err != nil {
		return types.Raise(err)
	}
	return types.Ok(types.NewOk(args[0]))
}

func builtinErr(ctx *types.TaskContext, args []types.Value) types.Result {
	if err := oneArg("Err", args); err != nil {
		return types.Raise(err)
	}
	return types.Ok(types.NewErrResult(args[0]))
}
