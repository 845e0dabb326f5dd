package types

import (
	"context"
	"testing"

	"github.com/nalgeon/be"

	"ruchy/parser"
)

func parserPos(line, col int) parser.Position {
	return parser.Position{Line: line, Column: col}
}

func TestResultConstructors(t *testing.T) {
	t.Run("Ok", func(t *testing.T) {
		r := Ok(NewInt(42))
		be.True(t, r.IsNormal())
		be.Equal(t, r.Val, Value(NewInt(42)))
	})

	t.Run("Err", func(t *testing.T) {
		r := Err(E_TYPE, "cannot add %s and %s", "int", "string")
		be.True(t, r.IsError())
		be.Equal(t, r.Error.Code, E_TYPE)
		be.Equal(t, r.Error.Error(), "TypeMismatch: cannot add int and string")
	})

	t.Run("Return", func(t *testing.T) {
		r := Return(NewInt(1))
		be.True(t, r.IsReturn())
		be.True(t, !r.IsNormal())
	})

	t.Run("Break", func(t *testing.T) {
		r := Break(NewStr("done"))
		be.True(t, r.IsBreak())
		be.Equal(t, r.Val, Value(NewStr("done")))
	})

	t.Run("Continue", func(t *testing.T) {
		be.True(t, Continue().IsContinue())
	})
}

func TestErrorCodeNames(t *testing.T) {
	for code := E_VARNF; code <= E_PERM; code++ {
		back, ok := ParseErrorCode(code.String())
		be.True(t, ok)
		be.Equal(t, back, code)
	}
	_, ok := ParseErrorCode("Nope")
	be.True(t, !ok)
}

func TestRuntimeErrorPosition(t *testing.T) {
	err := NewError(E_DIV, "division by zero")
	err.At(parserPos(2, 5)).At(parserPos(9, 9))
	be.Equal(t, err.Error(), "DivisionByZero at 2:5: division by zero")
}

func TestRuntimeErrorRender(t *testing.T) {
	err := NewError(E_VARNF, "unbound name 'y'")
	err.Pos = parserPos(2, 7)
	err.Traceback = []Frame{{Function: "f", Pos: parserPos(2, 7)}, {Function: "<main>", Pos: parserPos(3, 1)}}
	got := err.Render("t.ruchy", "fun f() {\n  1 + y\n}\nf()")
	want := "runtime error in t.ruchy at 2:7: UnboundName: unbound name 'y'\n\n" +
		"   1 | fun f() {\n" +
		"   2 |   1 + y\n" +
		"     |       ^\n" +
		"  in f at 2:7\n" +
		"  called from <main> at 3:1\n"
	be.Equal(t, got, want)
}

func TestTaskContextSteps(t *testing.T) {
	ctx := NewTaskContext(context.Background())
	ctx.StepsRemaining = 3
	be.True(t, ctx.Checkpoint() == nil)
	be.True(t, ctx.Checkpoint() == nil)
	err := ctx.Checkpoint()
	be.Equal(t, err.Code, E_STEPS)

	unlimited := NewTaskContext(context.Background())
	unlimited.StepsRemaining = -1
	for i := 0; i < 100; i++ {
		be.True(t, unlimited.ConsumeTick())
	}
}

func TestTaskContextCancellation(t *testing.T) {
	cctx, cancel := context.WithCancel(context.Background())
	ctx := NewTaskContext(cctx)
	cancel()
	err := ctx.Checkpoint()
	be.Equal(t, err.Code, E_CANCELLED)
}

func TestTaskContextDepth(t *testing.T) {
	ctx := NewTaskContext(context.Background())
	ctx.MaxDepth = 2
	be.True(t, ctx.EnterCall() == nil)
	be.True(t, ctx.EnterCall() == nil)
	be.Equal(t, ctx.EnterCall().Code, E_MAXREC)
	ctx.LeaveCall()
	be.True(t, ctx.EnterCall() == nil)
}
