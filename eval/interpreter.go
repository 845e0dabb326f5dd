package eval

import (
	"context"
	"io"
	"os"

	"ruchy/builtins"
	"ruchy/parser"
	"ruchy/trace"
	"ruchy/types"
)

// callFrame is one active function call; pos is the call site
type callFrame struct {
	name string
	pos  parser.Position
}

// Interpreter evaluates programs by walking their AST. Each instance owns
// its global environment, builtin registry, output writers and tracer;
// instances share nothing. An Interpreter is not safe for concurrent use.
type Interpreter struct {
	builtins  *builtins.Registry
	global    *Environment
	out       io.Writer
	errOut    io.Writer
	maxSteps  int64
	maxDepth  int
	tracer    *trace.Tracer
	stack     []callFrame
	scriptEnv *Environment // top-level scope where assignment may declare
}

// Option configures an Interpreter
type Option func(*Interpreter)

// WithOutput sets the writer for print and println
func WithOutput(w io.Writer) Option {
	return func(i *Interpreter) { i.out = w }
}

// WithErrorOutput sets the writer for eprint and eprintln
func WithErrorOutput(w io.Writer) Option {
	return func(i *Interpreter) { i.errOut = w }
}

// WithMaxSteps sets the step budget per evaluation; n <= 0 disables it
func WithMaxSteps(n int64) Option {
	return func(i *Interpreter) {
		if n <= 0 {
			n = -1
		}
		i.maxSteps = n
	}
}

// WithMaxDepth sets the maximum call depth
func WithMaxDepth(n int) Option {
	return func(i *Interpreter) { i.maxDepth = n }
}

// WithTracer enables call tracing
func WithTracer(t *trace.Tracer) Option {
	return func(i *Interpreter) { i.tracer = t }
}

// New creates an interpreter with an empty global environment
func New(opts ...Option) *Interpreter {
	i := &Interpreter{
		builtins: builtins.NewRegistry(),
		global:   NewEnvironment(),
		out:      os.Stdout,
		errOut:   os.Stderr,
		maxSteps: types.DefaultMaxSteps,
		maxDepth: types.DefaultMaxDepth,
	}
	for _, opt := range opts {
		opt(i)
	}
	return i
}

// Global returns the environment that persists across evaluations
func (i *Interpreter) Global() *Environment {
	return i.global
}

// newTask prepares the context for one evaluation
func (i *Interpreter) newTask(ctx context.Context) *types.TaskContext {
	tc := types.NewTaskContext(ctx)
	tc.StepsRemaining = i.maxSteps
	tc.MaxDepth = i.maxDepth
	tc.Out = i.out
	tc.ErrOut = i.errOut
	tc.Call = func(fn types.Value, args []types.Value) types.Result {
		return i.callValue(fn, args, parser.Position{}, tc)
	}
	i.stack = []callFrame{{name: "<main>"}}
	return tc
}

// Evaluate runs a program in the global environment. Items are declared
// first, then top-level statements run in order; if the program declares
// a parameterless main, it is called afterwards and its value returned.
// Errors are *types.RuntimeError.
func (i *Interpreter) Evaluate(ctx context.Context, prog *parser.Program) (types.Value, error) {
	tc := i.newTask(ctx)
	res := i.evalTopLevel(prog.Stmts, i.global, tc)
	if res.IsNormal() && declaresMain(prog) {
		if fn, ok := i.global.Get("main"); ok {
			res = i.callValue(fn, nil, prog.Pos, tc)
		}
	}
	return i.finish(res)
}

// EvaluateStatement parses and runs a REPL fragment in env (the global
// environment when env is nil). Bindings made before a runtime error are
// kept, so a session survives failed fragments.
func (i *Interpreter) EvaluateStatement(ctx context.Context, fragment string, env *Environment) (types.Value, *Environment, error) {
	if env == nil {
		env = i.global
	}
	prog, err := parser.Parse(fragment)
	if err != nil {
		return nil, env, err
	}
	tc := i.newTask(ctx)
	v, err := i.finish(i.evalTopLevel(prog.Stmts, env, tc))
	return v, env, err
}

func declaresMain(prog *parser.Program) bool {
	for _, s := range prog.Stmts {
		s, _ = parser.Unexport(s)
		if f, ok := s.(*parser.FunDecl); ok && f.Name == "main" && len(f.Params) == 0 {
			return true
		}
	}
	return false
}

// finish converts a top-level result into a value or error
func (i *Interpreter) finish(res types.Result) (types.Value, error) {
	switch res.Flow {
	case types.FlowError:
		if res.Error.Traceback == nil {
			res.Error.Traceback = i.traceback(res.Error.Pos)
		}
		return nil, res.Error
	case types.FlowBreak, types.FlowContinue:
		return nil, types.NewError(types.E_INVARG, "`break` or `continue` outside of a loop")
	}
	if res.Val == nil {
		return types.Unit, nil
	}
	return res.Val, nil
}

// traceback snapshots the call stack, innermost call first. Only the
// innermost maxTraceFrames calls are kept.
func (i *Interpreter) traceback(pos parser.Position) []types.Frame {
	frames := make([]types.Frame, 0, len(i.stack))
	at := pos
	for k := len(i.stack) - 1; k >= 0 && len(frames) < maxTraceFrames; k-- {
		frames = append(frames, types.Frame{Function: i.stack[k].name, Pos: at})
		at = i.stack[k].pos
	}
	return frames
}
