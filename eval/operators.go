package eval

import (
	"math"

	"ruchy/builtins"
	"ruchy/parser"
	"ruchy/types"
)

// ============================================================================
// UNARY OPERATORS
// ============================================================================

// evalUnary implements -x, !x, &x and &mut x
func (i *Interpreter) evalUnary(node *parser.UnaryExpr, env *Environment, ctx *types.TaskContext) types.Result {
	res := i.Eval(node.Operand, env, ctx)
	if !res.IsNormal() {
		return res
	}
	switch node.Operator {
	case parser.TOKEN_MINUS:
		return evalNegate(res.Val)
	case parser.TOKEN_NOT:
		return evalNot(res.Val)
	case parser.TOKEN_AMP:
		// references are transparent at runtime
		return res
	}
	return types.Err(types.E_TYPE, "unsupported unary operator %s", parser.OperatorText(node.Operator))
}

// evalNegate implements unary negation: -x
// Raises E_OVERFLOW for -i64::MIN
func evalNegate(operand types.Value) types.Result {
	switch v := operand.(type) {
	case types.IntValue:
		n, ok := types.NegInt(v.Val)
		if !ok {
			return types.Err(types.E_OVERFLOW, "attempt to negate with overflow")
		}
		return types.Ok(types.NewInt(n))
	case types.FloatValue:
		return types.Ok(types.NewFloat(-v.Val))
	}
	return types.Err(types.E_TYPE, "cannot apply unary operator `-` to type `%s`", types.TypeName(operand))
}

// evalNot implements logical NOT on bools and bitwise NOT on ints
func evalNot(operand types.Value) types.Result {
	switch v := operand.(type) {
	case types.BoolValue:
		return types.Ok(types.NewBool(!v.Val))
	case types.IntValue:
		return types.Ok(types.NewInt(^v.Val))
	}
	return types.Err(types.E_TYPE, "cannot apply unary operator `!` to type `%s`", types.TypeName(operand))
}

// ============================================================================
// BINARY OPERATORS
// ============================================================================

// evalBinary evaluates both operands, short-circuiting && and ||
func (i *Interpreter) evalBinary(node *parser.BinaryExpr, env *Environment, ctx *types.TaskContext) types.Result {
	if node.Operator == parser.TOKEN_AND || node.Operator == parser.TOKEN_OR {
		return i.evalLogical(node, env, ctx)
	}
	left := i.Eval(node.Left, env, ctx)
	if !left.IsNormal() {
		return left
	}
	right := i.Eval(node.Right, env, ctx)
	if !right.IsNormal() {
		return right
	}
	return binaryOp(node.Operator, left.Val, right.Val)
}

// evalLogical implements && and ||; both operands must be bool
func (i *Interpreter) evalLogical(node *parser.BinaryExpr, env *Environment, ctx *types.TaskContext) types.Result {
	op := parser.OperatorText(node.Operator)
	left := i.Eval(node.Left, env, ctx)
	if !left.IsNormal() {
		return left
	}
	l, ok := left.Val.(types.BoolValue)
	if !ok {
		return types.Err(types.E_TYPE, "`%s` expects bool operands, found %s", op, types.TypeName(left.Val))
	}
	if (node.Operator == parser.TOKEN_AND && !l.Val) || (node.Operator == parser.TOKEN_OR && l.Val) {
		return left
	}
	right := i.Eval(node.Right, env, ctx)
	if !right.IsNormal() {
		return right
	}
	if _, ok := right.Val.(types.BoolValue); !ok {
		return types.Err(types.E_TYPE, "`%s` expects bool operands, found %s", op, types.TypeName(right.Val))
	}
	return right
}

// binaryOp applies a non-short-circuit binary operator. Compound
// assignment reuses it.
func binaryOp(op parser.TokenType, left, right types.Value) types.Result {
	switch op {
	case parser.TOKEN_PLUS, parser.TOKEN_MINUS, parser.TOKEN_STAR, parser.TOKEN_SLASH, parser.TOKEN_PERCENT:
		return evalArithmetic(op, left, right)
	case parser.TOKEN_POWER:
		return evalPower(left, right)
	case parser.TOKEN_EQ, parser.TOKEN_NE:
		return evalEquality(op, left, right)
	case parser.TOKEN_LT, parser.TOKEN_GT, parser.TOKEN_LE, parser.TOKEN_GE:
		return evalComparison(op, left, right)
	case parser.TOKEN_AMP, parser.TOKEN_PIPE, parser.TOKEN_CARET:
		return evalBitwise(op, left, right)
	case parser.TOKEN_LSHIFT, parser.TOKEN_RSHIFT:
		return evalShift(op, left, right)
	}
	return types.Err(types.E_TYPE, "unsupported binary operator %s", parser.OperatorText(op))
}

func mismatch(op parser.TokenType, left, right types.Value) types.Result {
	return types.Err(types.E_TYPE, "cannot apply `%s` to %s and %s", parser.OperatorText(op), types.TypeName(left), types.TypeName(right))
}

// ============================================================================
// ARITHMETIC OPERATORS
// ============================================================================

// evalArithmetic implements + - * / %
// Integer arithmetic is checked; float arithmetic follows IEEE 754.
// String + string concatenates and string * int repeats.
func evalArithmetic(op parser.TokenType, left, right types.Value) types.Result {
	switch l := left.(type) {
	case types.IntValue:
		r, ok := right.(types.IntValue)
		if !ok {
			return mismatch(op, left, right)
		}
		return intArithmetic(op, l.Val, r.Val)
	case types.FloatValue:
		r, ok := right.(types.FloatValue)
		if !ok {
			return mismatch(op, left, right)
		}
		return types.Ok(types.NewFloat(floatArithmetic(op, l.Val, r.Val)))
	case types.StrValue:
		switch r := right.(type) {
		case types.StrValue:
			if op == parser.TOKEN_PLUS {
				return types.Ok(types.NewStr(l.Val + r.Val))
			}
		case types.IntValue:
			if op == parser.TOKEN_STAR {
				return builtins.Repeat(l.Val, r.Val)
			}
		}
	}
	return mismatch(op, left, right)
}

func intArithmetic(op parser.TokenType, a, b int64) types.Result {
	var (
		n  int64
		ok = true
	)
	switch op {
	case parser.TOKEN_PLUS:
		n, ok = types.AddInt(a, b)
		if !ok {
			return types.Err(types.E_OVERFLOW, "attempt to add with overflow")
		}
	case parser.TOKEN_MINUS:
		n, ok = types.SubInt(a, b)
		if !ok {
			return types.Err(types.E_OVERFLOW, "attempt to subtract with overflow")
		}
	case parser.TOKEN_STAR:
		n, ok = types.MulInt(a, b)
		if !ok {
			return types.Err(types.E_OVERFLOW, "attempt to multiply with overflow")
		}
	case parser.TOKEN_SLASH:
		if b == 0 {
			return types.Err(types.E_DIV, "attempt to divide by zero")
		}
		if a == math.MinInt64 && b == -1 {
			return types.Err(types.E_OVERFLOW, "attempt to divide with overflow")
		}
		n = a / b
	case parser.TOKEN_PERCENT:
		if b == 0 {
			return types.Err(types.E_DIV, "attempt to calculate the remainder with a divisor of zero")
		}
		if a == math.MinInt64 && b == -1 {
			return types.Err(types.E_OVERFLOW, "attempt to calculate the remainder with overflow")
		}
		n = a % b
	}
	return types.Ok(types.NewInt(n))
}

func floatArithmetic(op parser.TokenType, a, b float64) float64 {
	switch op {
	case parser.TOKEN_PLUS:
		return a + b
	case parser.TOKEN_MINUS:
		return a - b
	case parser.TOKEN_STAR:
		return a * b
	case parser.TOKEN_SLASH:
		return a / b
	}
	return math.Mod(a, b)
}

// evalPower implements left ** right on two ints or two floats
func evalPower(left, right types.Value) types.Result {
	switch l := left.(type) {
	case types.IntValue:
		if r, ok := right.(types.IntValue); ok {
			return builtins.PowInt(l.Val, r.Val)
		}
	case types.FloatValue:
		if r, ok := right.(types.FloatValue); ok {
			return types.Ok(types.NewFloat(math.Pow(l.Val, r.Val)))
		}
	}
	return mismatch(parser.TOKEN_POWER, left, right)
}

// ============================================================================
// COMPARISON OPERATORS
// ============================================================================

// evalEquality implements == and !=
// Comparing two primitives of different kinds is a type error.
func evalEquality(op parser.TokenType, left, right types.Value) types.Result {
	if left.Kind() != right.Kind() && left.Kind().IsPrimitive() && right.Kind().IsPrimitive() {
		return mismatch(op, left, right)
	}
	eq := left.Equal(right)
	if l, ok := left.(types.FloatValue); ok {
		if r, ok := right.(types.FloatValue); ok {
			eq = l.Val == r.Val
		}
	}
	if op == parser.TOKEN_NE {
		eq = !eq
	}
	return types.Ok(types.NewBool(eq))
}

// evalComparison implements < > <= >=
// Floats compare directly so that NaN compares false; all other values
// use the total ordering of types.Compare.
func evalComparison(op parser.TokenType, left, right types.Value) types.Result {
	if l, ok := left.(types.FloatValue); ok {
		r, ok := right.(types.FloatValue)
		if !ok {
			return mismatch(op, left, right)
		}
		var b bool
		switch op {
		case parser.TOKEN_LT:
			b = l.Val < r.Val
		case parser.TOKEN_GT:
			b = l.Val > r.Val
		case parser.TOKEN_LE:
			b = l.Val <= r.Val
		default:
			b = l.Val >= r.Val
		}
		return types.Ok(types.NewBool(b))
	}
	c, ok := types.Compare(left, right)
	if !ok {
		return mismatch(op, left, right)
	}
	var b bool
	switch op {
	case parser.TOKEN_LT:
		b = c < 0
	case parser.TOKEN_GT:
		b = c > 0
	case parser.TOKEN_LE:
		b = c <= 0
	default:
		b = c >= 0
	}
	return types.Ok(types.NewBool(b))
}

// ============================================================================
// BITWISE OPERATORS
// ============================================================================

// evalBitwise implements & | ^ on ints and on bools
func evalBitwise(op parser.TokenType, left, right types.Value) types.Result {
	switch l := left.(type) {
	case types.IntValue:
		r, ok := right.(types.IntValue)
		if !ok {
			return mismatch(op, left, right)
		}
		switch op {
		case parser.TOKEN_AMP:
			return types.Ok(types.NewInt(l.Val & r.Val))
		case parser.TOKEN_PIPE:
			return types.Ok(types.NewInt(l.Val | r.Val))
		}
		return types.Ok(types.NewInt(l.Val ^ r.Val))
	case types.BoolValue:
		r, ok := right.(types.BoolValue)
		if !ok {
			return mismatch(op, left, right)
		}
		switch op {
		case parser.TOKEN_AMP:
			return types.Ok(types.NewBool(l.Val && r.Val))
		case parser.TOKEN_PIPE:
			return types.Ok(types.NewBool(l.Val || r.Val))
		}
		return types.Ok(types.NewBool(l.Val != r.Val))
	}
	return mismatch(op, left, right)
}

// evalShift implements << and >>; the shift amount must be in 0..64
func evalShift(op parser.TokenType, left, right types.Value) types.Result {
	l, lok := left.(types.IntValue)
	r, rok := right.(types.IntValue)
	if !lok || !rok {
		return mismatch(op, left, right)
	}
	if r.Val < 0 || r.Val > 63 {
		if op == parser.TOKEN_LSHIFT {
			return types.Err(types.E_OVERFLOW, "attempt to shift left with overflow")
		}
		return types.Err(types.E_OVERFLOW, "attempt to shift right with overflow")
	}
	if op == parser.TOKEN_LSHIFT {
		return types.Ok(types.NewInt(l.Val << uint(r.Val)))
	}
	return types.Ok(types.NewInt(l.Val >> uint(r.Val)))
}

// ============================================================================
// CASTS AND PIPELINES
// ============================================================================

// evalCast implements `expr as Type` for primitive targets
func (i *Interpreter) evalCast(node *parser.CastExpr, env *Environment, ctx *types.TaskContext) types.Result {
	res := i.Eval(node.Expr, env, ctx)
	if !res.IsNormal() {
		return res
	}
	named, ok := node.Type.(*parser.NamedType)
	if !ok || len(named.Args) > 0 {
		return types.Err(types.E_TYPE, "non-primitive cast to `%s`", parser.Dump(node.Type))
	}
	return builtins.Cast(res.Val, named.Name)
}

// evalPipeline implements left |> right. A call on the right receives
// left as its first argument; any other callee is called with left alone.
func (i *Interpreter) evalPipeline(node *parser.PipelineExpr, env *Environment, ctx *types.TaskContext) types.Result {
	if call, ok := node.Right.(*parser.CallExpr); ok {
		args := append([]parser.Expr{node.Left}, call.Args...)
		return i.evalCall(&parser.CallExpr{Pos: call.Pos, Callee: call.Callee, Args: args}, env, ctx)
	}
	return i.evalCall(&parser.CallExpr{Pos: node.Pos, Callee: node.Right, Args: []parser.Expr{node.Left}}, env, ctx)
}
