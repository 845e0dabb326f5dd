package trace

import (
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"
	"sync"

	"ruchy/types"
)

// Tracer writes function call, return and error events for one
// interpreter instance
type Tracer struct {
	enabled bool
	filters []string
	writer  io.Writer
	mu      sync.Mutex
}

// New creates a tracer. filters are glob patterns on function names; an
// empty filter list traces every function.
func New(enabled bool, filters []string, writer io.Writer) *Tracer {
	if writer == nil {
		writer = os.Stderr
	}
	return &Tracer{
		enabled: enabled,
		filters: filters,
		writer:  writer,
	}
}

// IsEnabled reports whether tracing is on; a nil tracer is disabled
func (t *Tracer) IsEnabled() bool {
	return t != nil && t.enabled
}

// matchesFilter checks if a function name matches any of the filter patterns
func (t *Tracer) matchesFilter(name string) bool {
	if len(t.filters) == 0 {
		return true
	}

	for _, pattern := range t.filters {
		if matched, _ := filepath.Match(pattern, name); matched {
			return true
		}
	}
	return false
}

func (t *Tracer) active(name string) bool {
	return t.IsEnabled() && t.matchesFilter(name)
}

// Call logs a function call
func (t *Tracer) Call(name string, args []types.Value, depth int) {
	if !t.active(name) {
		return
	}

	t.mu.Lock()
	defer t.mu.Unlock()

	argStrs := make([]string, len(args))
	for i, arg := range args {
		argStrs[i] = truncate(arg.Debug())
	}

	fmt.Fprintf(t.writer, "[TRACE] CALL %s(%s) depth=%d\n", name, strings.Join(argStrs, ", "), depth)
}

// Return logs a function's return value
func (t *Tracer) Return(name string, result types.Value) {
	if !t.active(name) {
		return
	}

	t.mu.Lock()
	defer t.mu.Unlock()

	resultStr := "()"
	if result != nil {
		resultStr = truncate(result.Debug())
	}

	fmt.Fprintf(t.writer, "[TRACE] RETURN %s => %s\n", name, resultStr)
}

// Error logs a runtime error leaving a function
func (t *Tracer) Error(name string, err *types.RuntimeError) {
	if !t.active(name) {
		return
	}

	t.mu.Lock()
	defer t.mu.Unlock()

	fmt.Fprintf(t.writer, "[TRACE] ERROR %s %s: %s\n", name, err.Code, truncate(err.Message))
}

// truncate shortens long values for readability
func truncate(s string) string {
	if len(s) > 60 {
		return s[:57] + "..."
	}
	return s
}
