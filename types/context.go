package types

import (
	"context"
	"io"
	"os"
)

// Default limits for a task
const (
	DefaultMaxSteps = 10_000_000
	DefaultMaxDepth = 512
)

// CallFunc invokes a callable value; the interpreter installs it so that
// built-in methods such as map and filter can call back into user code
type CallFunc func(fn Value, args []Value) Result

// TaskContext holds the execution context of one evaluation.
// It is passed through all evaluator methods to track:
// - the step budget (infinite loop protection)
// - call depth (recursion protection)
// - cancellation from the embedding program
type TaskContext struct {
	Ctx            context.Context
	StepsRemaining int64 // negative means unlimited
	Depth          int
	MaxDepth       int
	Out            io.Writer
	ErrOut         io.Writer
	Call           CallFunc
}

// NewTaskContext creates a task context with default limits writing to
// the process's standard streams
func NewTaskContext(ctx context.Context) *TaskContext {
	if ctx == nil {
		ctx = context.Background()
	}
	return &TaskContext{
		Ctx:            ctx,
		StepsRemaining: DefaultMaxSteps,
		MaxDepth:       DefaultMaxDepth,
		Out:            os.Stdout,
		ErrOut:         os.Stderr,
	}
}

// ConsumeTick decrements the step budget and returns true if steps remain
func (ctx *TaskContext) ConsumeTick() bool {
	if ctx.StepsRemaining < 0 {
		return true
	}
	ctx.StepsRemaining--
	return ctx.StepsRemaining > 0
}

// Checkpoint is called at loop iterations and calls. It charges one step
// and polls for cancellation.
func (ctx *TaskContext) Checkpoint() *RuntimeError {
	if !ctx.ConsumeTick() {
		return NewError(E_STEPS, "step limit exceeded")
	}
	select {
	case <-ctx.Ctx.Done():
		return NewError(E_CANCELLED, "evaluation cancelled: %v", ctx.Ctx.Err())
	default:
	}
	return nil
}

// EnterCall increases the call depth, failing past MaxDepth
func (ctx *TaskContext) EnterCall() *RuntimeError {
	if ctx.Depth >= ctx.MaxDepth {
		return NewError(E_MAXREC, "maximum call depth of %d exceeded", ctx.MaxDepth)
	}
	ctx.Depth++
	return nil
}

// LeaveCall undoes EnterCall
func (ctx *TaskContext) LeaveCall() {
	ctx.Depth--
}
