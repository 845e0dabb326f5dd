package builtins

import (
	"strings"
	"unicode"

	"ruchy/types"
)

// ============================================================================
// STRING METHODS
// ============================================================================

func (r *Registry) registerStringMethods() {
	r.method(RecvString, "len", 0, -1, false, strLen)
	r.method(RecvString, "is_empty", 0, -1, false, strIsEmpty)
	r.method(RecvString, "upper", 0, -1, false, strUpper)
	r.method(RecvString, "to_uppercase", 0, -1, false, strUpper)
	r.method(RecvString, "lower", 0, -1, false, strLower)
	r.method(RecvString, "to_lowercase", 0, -1, false, strLower)
	r.method(RecvString, "strip", 0, -1, false, strTrim)
	r.method(RecvString, "trim", 0, -1, false, strTrim)
	r.method(RecvString, "trim_start", 0, -1, false, strTrimStart)
	r.method(RecvString, "trim_end", 0, -1, false, strTrimEnd)
	r.method(RecvString, "split", 1, -1, false, strSplit)
	r.method(RecvString, "split_whitespace", 0, -1, false, strSplitWhitespace)
	r.method(RecvString, "lines", 0, -1, false, strLines)
	r.method(RecvString, "chars", 0, -1, false, strChars)
	r.method(RecvString, "contains", 1, -1, false, strContains)
	r.method(RecvString, "starts_with", 1, -1, false, strStartsWith)
	r.method(RecvString, "ends_with", 1, -1, false, strEndsWith)
	r.method(RecvString, "find", 1, -1, false, strFind)
	r.method(RecvString, "replace", 2, -1, false, strReplace)
	r.method(RecvString, "repeat", 1, -1, false, strRepeat)

	r.method(RecvChar, "is_alphabetic", 0, -1, false, charPredicate(unicode.IsLetter))
	r.method(RecvChar, "is_numeric", 0, -1, false, charPredicate(unicode.IsNumber))
	r.method(RecvChar, "is_alphanumeric", 0, -1, false, charPredicate(func(c rune) bool {
		return unicode.IsLetter(c) || unicode.IsNumber(c)
	}))
	r.method(RecvChar, "is_whitespace", 0, -1, false, charPredicate(unicode.IsSpace))
	r.method(RecvChar, "is_uppercase", 0, -1, false, charPredicate(unicode.IsUpper))
	r.method(RecvChar, "is_lowercase", 0, -1, false, charPredicate(unicode.IsLower))
	r.method(RecvChar, "is_ascii_digit", 0, -1, false, charPredicate(func(c rune) bool {
		return c >= '0' && c <= '9'
	}))
	r.method(RecvChar, "to_ascii_uppercase", 0, -1, false, charMap(func(c rune) rune {
		if c >= 'a' && c <= 'z' {
			return c - 'a' + 'A'
		}
		return c
	}))
	r.method(RecvChar, "to_ascii_lowercase", 0, -1, false, charMap(func(c rune) rune {
		if c >= 'A' && c <= 'Z' {
			return c - 'A' + 'a'
		}
		return c
	}))
}

func strOf(v types.Value) string {
	return v.(types.StrValue).Val
}

func strResult(s string) types.Result {
	return types.Ok(types.NewStr(s))
}

func strList(parts []string) types.Result {
	out := make([]types.Value, len(parts))
	for i, p := range parts {
		out[i] = types.NewStr(p)
	}
	return types.Ok(types.NewList(out))
}

// pattern accepts a string or char argument, as Rust's Pattern does
func pattern(name string, args []types.Value, i int) (string, *types.RuntimeError) {
	if c, ok := args[i].(types.CharValue); ok {
		return string(c.Val), nil
	}
	return strArg(name, args, i)
}

// strLen returns the length in bytes
// string.len() -> int
func strLen(ctx *types.TaskContext, recv types.Value, args []types.Value) types.Result {
	return types.Ok(types.NewInt(int64(len(strOf(recv)))))
}

func strIsEmpty(ctx *types.TaskContext, recv types.Value, args []types.Value) types.Result {
	return types.Ok(types.NewBool(strOf(recv) == ""))
}

func strUpper(ctx *types.TaskContext, recv types.Value, args []types.Value) types.Result {
	return strResult(strings.ToUpper(strOf(recv)))
}

func strLower(ctx *types.TaskContext, recv types.Value, args []types.Value) types.Result {
	return strResult(strings.ToLower(strOf(recv)))
}

func strTrim(ctx *types.TaskContext, recv types.Value, args []types.Value) types.Result {
	return strResult(strings.TrimSpace(strOf(recv)))
}

func strTrimStart(ctx *types.TaskContext, recv types.Value, args []types.Value) types.Result {
	return strResult(strings.TrimLeftFunc(strOf(recv), unicode.IsSpace))
}

func strTrimEnd(ctx *types.TaskContext, recv types.Value, args []types.Value) types.Result {
	return strResult(strings.TrimRightFunc(strOf(recv), unicode.IsSpace))
}

// strSplit splits on every occurrence of sep. An empty separator yields
// an empty string at each end, as str::split does.
// string.split(sep) -> list
func strSplit(ctx *types.TaskContext, recv types.Value, args []types.Value) types.Result {
	sep, err := pattern("split", args, 0)
	if err != nil {
		return types.Raise(err)
	}
	s := strOf(recv)
	if sep == "" {
		parts := []string{""}
		for _, c := range s {
			parts = append(parts, string(c))
		}
		return strList(append(parts, ""))
	}
	return strList(strings.Split(s, sep))
}

func strSplitWhitespace(ctx *types.TaskContext, recv types.Value, args []types.Value) types.Result {
	return strList(strings.Fields(strOf(recv)))
}

// strLines splits on \n, dropping a final empty line and any \r before
// each \n
// string.lines() -> list
func strLines(ctx *types.TaskContext, recv types.Value, args []types.Value) types.Result {
	s := strOf(recv)
	if s == "" {
		return strList(nil)
	}
	parts := strings.Split(strings.TrimSuffix(s, "\n"), "\n")
	for i, p := range parts {
		parts[i] = strings.TrimSuffix(p, "\r")
	}
	return strList(parts)
}

// strChars returns the characters of the string
// string.chars() -> list
func strChars(ctx *types.TaskContext, recv types.Value, args []types.Value) types.Result {
	var out []types.Value
	for _, c := range strOf(recv) {
		out = append(out, types.NewChar(c))
	}
	return types.Ok(types.NewList(out))
}

func strContains(ctx *types.TaskContext, recv types.Value, args []types.Value) types.Result {
	sub, err := pattern("contains", args, 0)
	if err != nil {
		return types.Raise(err)
	}
	return types.Ok(types.NewBool(strings.Contains(strOf(recv), sub)))
}

func strStartsWith(ctx *types.TaskContext, recv types.Value, args []types.Value) types.Result {
	prefix, err := pattern("starts_with", args, 0)
	if err != nil {
		return types.Raise(err)
	}
	return types.Ok(types.NewBool(strings.HasPrefix(strOf(recv), prefix)))
}

func strEndsWith(ctx *types.TaskContext, recv types.Value, args []types.Value) types.Result {
	suffix, err := pattern("ends_with", args, 0)
	if err != nil {
		return types.Raise(err)
	}
	return types.Ok(types.NewBool(strings.HasSuffix(strOf(recv), suffix)))
}

// strFind returns the byte offset of the first match
// string.find(sub) -> Option
func strFind(ctx *types.TaskContext, recv types.Value, args []types.Value) types.Result {
	sub, err := pattern("find", args, 0)
	if err != nil {
		return types.Raise(err)
	}
	i := strings.Index(strOf(recv), sub)
	if i < 0 {
		return types.Ok(types.None)
	}
	return types.Ok(types.NewSome(types.NewInt(int64(i))))
}

func strReplace(ctx *types.TaskContext, recv types.Value, args []types.Value) types.Result {
	from, err := pattern("replace", args, 0)
	if err != nil {
		return types.Raise(err)
	}
	to, err := strArg("replace", args, 1)
	if err != nil {
		return types.Raise(err)
	}
	return strResult(strings.ReplaceAll(strOf(recv), from, to))
}

func strRepeat(ctx *types.TaskContext, recv types.Value, args []types.Value) types.Result {
	n, err := intArg("repeat", args, 0)
	if err != nil {
		return types.Raise(err)
	}
	return Repeat(strOf(recv), n)
}

// Repeat implements string repetition, shared with the `*` operator
func Repeat(s string, n int64) types.Result {
	if n < 0 {
		return types.Err(types.E_INVARG, "cannot repeat a string a negative number of times")
	}
	if n > 0 && int64(len(s))*n > 1<<28 {
		return types.Err(types.E_INVARG, "repeated string would be too large")
	}
	return strResult(strings.Repeat(s, int(n)))
}

func charPredicate(pred func(rune) bool) MethodFunc {
	return func(ctx *types.TaskContext, recv types.Value, args []types.Value) types.Result {
		return types.Ok(types.NewBool(pred(recv.(types.CharValue).Val)))
	}
}

func charMap(fn func(rune) rune) MethodFunc {
	return func(ctx *types.TaskContext, recv types.Value, args []types.Value) types.Result {
		return types.Ok(types.NewChar(fn(recv.(types.CharValue).Val)))
	}
}
