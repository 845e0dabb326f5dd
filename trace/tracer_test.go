package trace

import (
	"bytes"
	"testing"

	"github.com/nalgeon/be"
	"ruchy/types"
)

func TestTracerEvents(t *testing.T) {
	var buf bytes.Buffer
	tr := New(true, nil, &buf)

	tr.Call("fib", []types.Value{types.NewInt(3), types.NewStr("x")}, 1)
	tr.Return("fib", types.NewInt(2))
	tr.Return("main", nil)
	tr.Error("boom", types.NewError(types.E_PANIC, "explicit panic"))

	want := "[TRACE] CALL fib(3, \"x\") depth=1\n" +
		"[TRACE] RETURN fib => 2\n" +
		"[TRACE] RETURN main => ()\n" +
		"[TRACE] ERROR boom Panic: explicit panic\n"
	be.Equal(t, buf.String(), want)
}

func TestTracerFilters(t *testing.T) {
	var buf bytes.Buffer
	tr := New(true, []string{"fib*", "main"}, &buf)

	tr.Call("fib_memo", nil, 0)
	tr.Call("helper", nil, 0)
	tr.Call("main", nil, 0)

	be.Equal(t, buf.String(), "[TRACE] CALL fib_memo() depth=0\n[TRACE] CALL main() depth=0\n")
}

func TestTracerDisabled(t *testing.T) {
	var buf bytes.Buffer
	New(false, nil, &buf).Call("f", nil, 0)
	be.Equal(t, buf.Len(), 0)

	var nilTracer *Tracer
	be.True(t, !nilTracer.IsEnabled())
	nilTracer.Call("f", nil, 0)
}

func TestTruncate(t *testing.T) {
	long := bytes.Repeat([]byte("a"), 100)
	be.Equal(t, len(truncate(string(long))), 60)
	be.Equal(t, truncate("short"), "short")
}
