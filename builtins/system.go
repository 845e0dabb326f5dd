package builtins

import (
	"fmt"
	"io"
	"strconv"
	"strings"

	"ruchy/types"
)

// ============================================================================
// OUTPUT, ASSERTIONS AND PANICS
// ============================================================================

// JoinDisplay renders print arguments separated by spaces: Display for
// primitives, Debug for compound values
func JoinDisplay(args []types.Value) string {
	parts := make([]string, len(args))
	for i, a := range args {
		parts[i] = types.Display(a)
	}
	return strings.Join(parts, " ")
}

// Placeholder is one {...} hole of a format string
type Placeholder struct {
	Debug     bool
	Precision int // -1 when absent
}

// CountPlaceholders returns the number of holes in a format string, or -1
// when the string is not a valid format string (unbalanced braces or an
// unsupported spec)
func CountPlaceholders(format string) int {
	_, holes, err := splitFormat(format)
	if err != nil {
		return -1
	}
	return len(holes)
}

// splitFormat splits a format string into literal pieces and holes;
// len(pieces) == len(holes)+1
func splitFormat(format string) ([]string, []Placeholder, error) {
	var pieces []string
	var holes []Placeholder
	var cur strings.Builder
	for i := 0; i < len(format); i++ {
		c := format[i]
		switch {
		case c == '{' && i+1 < len(format) && format[i+1] == '{':
			cur.WriteByte('{')
			i++
		case c == '}' && i+1 < len(format) && format[i+1] == '}':
			cur.WriteByte('}')
			i++
		case c == '{':
			end := strings.IndexByte(format[i:], '}')
			if end < 0 {
				return nil, nil, fmt.Errorf("unterminated '{' in format string")
			}
			ph, err := ParsePlaceholder(format[i+1 : i+end])
			if err != nil {
				return nil, nil, err
			}
			pieces = append(pieces, cur.String())
			cur.Reset()
			holes = append(holes, ph)
			i += end
		case c == '}':
			return nil, nil, fmt.Errorf("unmatched '}' in format string")
		default:
			cur.WriteByte(c)
		}
	}
	return append(pieces, cur.String()), holes, nil
}

// ParsePlaceholder parses the text between braces: "", ":?", ":.2"
func ParsePlaceholder(spec string) (Placeholder, error) {
	ph := Placeholder{Precision: -1}
	if spec == "" {
		return ph, nil
	}
	if !strings.HasPrefix(spec, ":") {
		return ph, fmt.Errorf("unsupported format placeholder {%s}", spec)
	}
	spec = spec[1:]
	if strings.HasSuffix(spec, "?") {
		ph.Debug = true
		spec = strings.TrimSuffix(spec, "?")
	}
	if spec == "" {
		return ph, nil
	}
	if !strings.HasPrefix(spec, ".") {
		return ph, fmt.Errorf("unsupported format spec :%s", spec)
	}
	n, err := strconv.Atoi(spec[1:])
	if err != nil || n < 0 {
		return ph, fmt.Errorf("invalid precision in format spec :%s", spec)
	}
	ph.Precision = n
	return ph, nil
}

// FormatValue renders one value for a placeholder
func FormatValue(v types.Value, ph Placeholder) string {
	if ph.Precision >= 0 {
		switch v := v.(type) {
		case types.FloatValue:
			return v.Fixed(ph.Precision)
		case types.StrValue:
			if !ph.Debug {
				runes := []rune(v.Val)
				if len(runes) > ph.Precision {
					return string(runes[:ph.Precision])
				}
				return v.Val
			}
		}
	}
	if ph.Debug {
		return v.Debug()
	}
	return types.Display(v)
}

// FormatString substitutes args into a format string with {}, {:?} and
// {:.N} placeholders
func FormatString(format string, args []types.Value) (string, *types.RuntimeError) {
	pieces, holes, err := splitFormat(format)
	if err != nil {
		return "", types.NewError(types.E_INVARG, "%v", err)
	}
	if len(holes) != len(args) {
		return "", types.NewError(types.E_ARGS, "format string has %d placeholder(s) but %d argument(s) were given", len(holes), len(args))
	}
	var b strings.Builder
	for i, h := range holes {
		b.WriteString(pieces[i])
		b.WriteString(FormatValue(args[i], h))
	}
	b.WriteString(pieces[len(pieces)-1])
	return b.String(), nil
}

// IsFormatLiteral reports whether a literal first argument to a print
// builtin is used as a format string rather than printed as is
func IsFormatLiteral(s string) bool {
	return strings.ContainsAny(s, "{}")
}

// builtinFormat renders a format string to a new string
// format(fmt, args...) -> string
func builtinFormat(ctx *types.TaskContext, args []types.Value) types.Result {
	if len(args) == 0 {
		return types.Err(types.E_ARGS, "format takes at least 1 argument, got 0")
	}
	f, err := strArg("format", args, 0)
	if err != nil {
		return types.Raise(err)
	}
	out, err := FormatString(f, args[1:])
	if err != nil {
		return types.Raise(err)
	}
	return types.Ok(types.NewStr(out))
}

// Emit writes text for one of the print builtins to the right stream
func Emit(ctx *types.TaskContext, name, text string) types.Result {
	var w io.Writer = ctx.Out
	if strings.HasPrefix(name, "e") {
		w = ctx.ErrOut
	}
	if strings.HasSuffix(name, "ln") {
		text += "\n"
	}
	if _, err := io.WriteString(w, text); err != nil {
		return types.Err(types.E_INVARG, "%s: %v", name, err)
	}
	return types.Ok(types.Unit)
}

// builtinPrint writes its arguments without a trailing newline
// print(args...) -> ()
func builtinPrint(ctx *types.TaskContext, args []types.Value) types.Result {
	return Emit(ctx, "print", JoinDisplay(args))
}

// builtinPrintln writes its arguments followed by a newline
// println(args...) -> ()
func builtinPrintln(ctx *types.TaskContext, args []types.Value) types.Result {
	return Emit(ctx, "println", JoinDisplay(args))
}

func builtinEprint(ctx *types.TaskContext, args []types.Value) types.Result {
	return Emit(ctx, "eprint", JoinDisplay(args))
}

func builtinEprintln(ctx *types.TaskContext, args []types.Value) types.Result {
	return Emit(ctx, "eprintln", JoinDisplay(args))
}

// builtinAssert panics unless its first argument is true
// assert(cond [, message]) -> ()
func builtinAssert(ctx *types.TaskContext, args []types.Value) types.Result {
	if len(args) < 1 || len(args) > 2 {
		return types.Err(types.E_ARGS, "assert takes 1 or 2 arguments, got %d", len(args))
	}
	cond, ok := args[0].(types.BoolValue)
	if !ok {
		return types.Err(types.E_TYPE, "assert condition must be bool, got %s", types.TypeName(args[0]))
	}
	if cond.Val {
		return types.Ok(types.Unit)
	}
	if len(args) == 2 {
		return types.Err(types.E_PANIC, "%s", types.Display(args[1]))
	}
	return types.Err(types.E_PANIC, "assertion failed")
}

// builtinAssertEq panics unless both arguments are equal
// assert_eq(left, right) -> ()
func builtinAssertEq(ctx *types.TaskContext, args []types.Value) types.Result {
	if len(args) != 2 {
		return types.Err(types.E_ARGS, "assert_eq takes 2 arguments, got %d", len(args))
	}
	if args[0].Equal(args[1]) {
		return types.Ok(types.Unit)
	}
	return types.Err(types.E_PANIC, "assertion `left == right` failed\n  left: %s\n right: %s", args[0].Debug(), args[1].Debug())
}

// builtinPanic aborts evaluation with a message
// panic([message]) -> !
func builtinPanic(ctx *types.TaskContext, args []types.Value) types.Result {
	if len(args) == 0 {
		return types.Err(types.E_PANIC, "explicit panic")
	}
	return types.Err(types.E_PANIC, "%s", JoinDisplay(args))
}
