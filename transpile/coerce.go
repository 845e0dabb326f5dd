package transpile

import (
	"ruchy/builtins"
	"ruchy/parser"
)

// convert lowers int(x), float(x), str(x), bool(x) and char(x). Pairs the
// interpreter rejects fail here; an operand of unknown type goes through a
// prelude trait implemented only for the accepted pairs.
func (l *Lowerer) convert(e *parser.CallExpr, name string) (string, *Type) {
	code, t := l.operand(e.Args[0])
	code, t = derefCopy(code, t)
	src := t.deref().Kind
	unknown := src == KUnknown || src == KParam
	bad := func() (string, *Type) {
		l.fail(e, "cannot convert %s to %s", t.Rust(), name)
		return "", nil
	}
	viaTrait := func(trait, method string, result *Type) (string, *Type) {
		l.needs[trait] = true
		return trait + "::" + method + "(&" + code + ")", result
	}

	switch name {
	case "int":
		switch {
		case src == KInt && t.deref().Rust() == "i64":
			return code, tInt
		case src == KInt, src == KFloat, src == KBool, src == KChar:
			return "(" + code + " as i64)", tInt
		case src == KString:
			return code + ".parse::<i64>().unwrap()", tInt
		case unknown:
			return viaTrait("RuchyToInt", "to_int", tInt)
		}
	case "float":
		switch {
		case src == KFloat && t.deref().Rust() == "f64":
			return code, tFloat
		case src == KInt, src == KFloat:
			return "(" + code + " as f64)", tFloat
		case src == KString:
			return code + ".parse::<f64>().unwrap()", tFloat
		case unknown:
			return viaTrait("RuchyToFloat", "to_float", tFloat)
		}
	case "str":
		if t.deref().isPrimitive() {
			return code + ".to_string()", tString
		}
		if unknown {
			return "format!(\"{}\", " + code + ")", tString
		}
		return "format!(\"{:?}\", " + code + ")", tString
	case "bool":
		switch {
		case src == KBool:
			return code, tBool
		case src == KInt:
			return "(" + code + " != 0)", tBool
		case src == KString:
			return code + ".parse::<bool>().unwrap()", tBool
		case unknown:
			return viaTrait("RuchyToBool", "to_bool", tBool)
		}
	case "char":
		switch {
		case src == KChar:
			return code, tChar
		case src == KInt:
			return "char::from_u32(" + code + " as u32).unwrap()", tChar
		case unknown:
			return viaTrait("RuchyToChar", "to_char", tChar)
		}
	}
	return bad()
}

// lowerCast lowers `x as T` for primitive targets
func (l *Lowerer) lowerCast(e *parser.CastExpr) (string, *Type) {
	target, ok := e.Type.(*parser.NamedType)
	if !ok || len(target.Args) > 0 {
		l.fail(e.Type, "non-primitive cast to %s", parser.Dump(e.Type))
	}
	code, t := l.operand(e.Expr)
	code, t = derefCopy(code, t)
	src := t.deref().Kind
	unknown := src == KUnknown || src == KParam
	name := target.Name

	// a narrowing cast truncates and widens back, the value stays an i64
	// or f64 as it does in the interpreter
	if _, ok := builtins.IntTypes[name]; ok {
		switch src {
		case KInt, KFloat, KBool, KChar, KUnknown, KParam:
			wide := code
			if src != KInt {
				wide += " as i64"
			}
			switch name {
			case "i8", "i16", "i32", "u8", "u16", "u32":
				return "(" + wide + " as " + name + " as i64)", tInt
			case "u64", "u128", "usize":
				return "(u64::try_from(" + wide + ").unwrap() as i64)", tInt
			}
			return "(" + code + " as i64)", tInt
		}
	} else if builtins.FloatTypes[name] {
		if src == KInt || src == KFloat || unknown {
			if name == "f32" {
				return "(" + code + " as f32 as f64)", tFloat
			}
			return "(" + code + " as f64)", tFloat
		}
	} else {
		switch name {
		case "char":
			switch {
			case src == KChar:
				return code, tChar
			case src == KInt || unknown:
				return "(" + code + " as u8 as char)", tChar
			}
		case "bool":
			if src == KBool || unknown {
				return code, tBool
			}
		}
	}
	l.fail(e, "cannot cast %s as %s", t.Rust(), name)
	return "", nil
}
