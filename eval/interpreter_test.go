package eval

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"strings"
	"sync"
	"testing"

	"github.com/nalgeon/be"
	"ruchy/parser"
	"ruchy/trace"
	"ruchy/types"
)

func TestEvaluateStatementPersists(t *testing.T) {
	var out bytes.Buffer
	interp := New(WithOutput(&out))
	ctx := context.Background()

	_, env, err := interp.EvaluateStatement(ctx, "let x = 10", nil)
	be.Err(t, err, nil)
	be.True(t, env == interp.Global())

	_, _, err = interp.EvaluateStatement(ctx, "fun double(n) { n * 2 }", env)
	be.Err(t, err, nil)

	v, _, err := interp.EvaluateStatement(ctx, "double(x)", env)
	be.Err(t, err, nil)
	be.Equal(t, v.Debug(), "20")

	// a failed fragment keeps earlier bindings
	_, _, err = interp.EvaluateStatement(ctx, "let y = 1\nmissing", env)
	be.True(t, err != nil)
	v, _, err = interp.EvaluateStatement(ctx, "x + y", env)
	be.Err(t, err, nil)
	be.Equal(t, v.Debug(), "11")

	_, _, err = interp.EvaluateStatement(ctx, "println(x)", env)
	be.Err(t, err, nil)
	be.Equal(t, out.String(), "10\n")
}

func TestEvaluateStatementParseError(t *testing.T) {
	interp := New()
	_, _, err := interp.EvaluateStatement(context.Background(), "let = 1", nil)
	be.True(t, err != nil)
	var diags parser.Diagnostics
	be.True(t, errors.As(err, &diags))
}

func TestTraceback(t *testing.T) {
	src := "fun inner(x) {\n    x / 0\n}\nfun outer() {\n    inner(1)\n}\nouter()"
	_, _, err := run(t, src)
	var rerr *types.RuntimeError
	be.True(t, errors.As(err, &rerr))
	be.Equal(t, rerr.Code, types.E_DIV)
	be.Equal(t, rerr.Pos.Line, 2)

	var names []string
	var lines []int
	for _, f := range rerr.Traceback {
		names = append(names, f.Function)
		lines = append(lines, f.Pos.Line)
	}
	be.Equal(t, names, []string{"inner", "outer", "<main>"})
	be.Equal(t, lines, []int{2, 5, 7})

	rendered := rerr.FormatTraceback()
	be.True(t, strings.Contains(rendered, "in inner at 2:"))
	be.True(t, strings.Contains(rendered, "called from outer at 5:"))
}

func TestLimits(t *testing.T) {
	t.Run("recursion", func(t *testing.T) {
		_, _, err := run(t, "fun f(n) { f(n + 1) }\nf(0)", WithMaxDepth(50))
		be.Equal(t, errCode(t, err), types.E_MAXREC)
	})
	t.Run("steps", func(t *testing.T) {
		_, _, err := run(t, "loop { }", WithMaxSteps(1000))
		be.Equal(t, errCode(t, err), types.E_STEPS)
	})
	t.Run("unlimited steps", func(t *testing.T) {
		_, got, err := run(t, "let mut i = 0\nwhile i < 5000 { i += 1 }\ni", WithMaxSteps(0))
		be.Err(t, err, nil)
		be.Equal(t, got, "5000")
	})
	t.Run("depth resets between runs", func(t *testing.T) {
		interp := New(WithMaxDepth(20))
		prog, err := parser.Parse("fun f(n) { if n == 0 { 0 } else { f(n - 1) } }\nf(15)")
		be.Err(t, err, nil)
		for k := 0; k < 3; k++ {
			_, err := interp.Evaluate(context.Background(), prog)
			be.Err(t, err, nil)
		}
	})
}

func TestCancellation(t *testing.T) {
	prog, err := parser.Parse("loop { }")
	be.Err(t, err, nil)
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	_, err = New(WithMaxSteps(0)).Evaluate(ctx, prog)
	be.Equal(t, errCode(t, err), types.E_CANCELLED)
}

func TestInstancesAreIsolated(t *testing.T) {
	prog, err := parser.Parse("let mut s = 0\nfor i in 0..1000 { s += i }\nprintln(s)")
	be.Err(t, err, nil)

	const n = 8
	outs := make([]bytes.Buffer, n)
	errs := make([]error, n)
	var wg sync.WaitGroup
	for k := 0; k < n; k++ {
		wg.Add(1)
		go func(k int) {
			defer wg.Done()
			_, errs[k] = New(WithOutput(&outs[k])).Evaluate(context.Background(), prog)
		}(k)
	}
	wg.Wait()
	for k := 0; k < n; k++ {
		be.Err(t, errs[k], nil)
		be.Equal(t, outs[k].String(), "499500\n")
	}

	a, b := New(), New()
	_, _, err = a.EvaluateStatement(context.Background(), "let only = 1", nil)
	be.Err(t, err, nil)
	_, _, err = b.EvaluateStatement(context.Background(), "only", nil)
	be.Equal(t, errCode(t, err), types.E_VARNF)
}

func TestTracer(t *testing.T) {
	var log bytes.Buffer
	tr := trace.New(true, []string{"sq*"}, &log)
	_, got, err := run(t, "fun square(x) { x * x }\nfun other() { 0 }\nother()\nsquare(3)", WithTracer(tr))
	be.Err(t, err, nil)
	be.Equal(t, got, "9")
	be.Equal(t, log.String(), "[TRACE] CALL square(3) depth=1\n[TRACE] RETURN square => 9\n")
}

func TestBuiltinCallbacksUseUserFunctions(t *testing.T) {
	src := "fun even(x) { x % 2 == 0 }\n[1, 2, 3, 4].filter(even)"
	_, got, err := run(t, src)
	be.Err(t, err, nil)
	be.Equal(t, got, "[2, 4]")

	_, _, err = run(t, "[1, 2].map(|x| x / 0)")
	be.Equal(t, errCode(t, err), types.E_DIV)
}

func ExampleInterpreter_Evaluate() {
	prog, _ := parser.Parse("let xs = [3, 1, 2]\nxs.sort()\nprintln(\"{:?}\", xs)")
	var out bytes.Buffer
	_, err := New(WithOutput(&out)).Evaluate(context.Background(), prog)
	fmt.Print(out.String(), err)
	// Output:
	// [1, 2, 3]
	// <nil>
}
