package types

// ControlFlow represents the control flow state of evaluation
type ControlFlow int

const (
	FlowNormal   ControlFlow = iota // Normal execution
	FlowReturn                      // return statement
	FlowBreak                       // break, Val holds the loop value
	FlowContinue                    // continue statement
	FlowError                       // runtime error being raised
)

// Result represents the outcome of evaluating an expression or statement.
// This unifies normal values, control flow (return/break/continue) and errors.
type Result struct {
	Val   Value         // The value (if Flow == FlowNormal, FlowReturn or FlowBreak)
	Flow  ControlFlow   // Control flow state
	Error *RuntimeError // Only set when Flow == FlowError
}

// Ok creates a Result for normal execution with a value
func Ok(v Value) Result {
	return Result{Val: v, Flow: FlowNormal}
}

// Return creates a Result for a return statement
func Return(v Value) Result {
	return Result{Val: v, Flow: FlowReturn}
}

// Break creates a Result for a break statement
// The value, if non-nil, becomes the value of the enclosing loop
func Break(val Value) Result {
	return Result{Flow: FlowBreak, Val: val}
}

// Continue creates a Result for a continue statement
func Continue() Result {
	return Result{Flow: FlowContinue}
}

// Err creates an error Result with a formatted message
func Err(code ErrorCode, format string, args ...interface{}) Result {
	return Result{Flow: FlowError, Error: NewError(code, format, args...)}
}

// Raise wraps an existing RuntimeError
func Raise(err *RuntimeError) Result {
	return Result{Flow: FlowError, Error: err}
}

// IsNormal returns true if this is normal execution
func (r Result) IsNormal() bool {
	return r.Flow == FlowNormal
}

// IsError returns true if this is a runtime error
func (r Result) IsError() bool {
	return r.Flow == FlowError
}

// IsReturn returns true if this is a return statement
func (r Result) IsReturn() bool {
	return r.Flow == FlowReturn
}

// IsBreak returns true if this is a break statement
func (r Result) IsBreak() bool {
	return r.Flow == FlowBreak
}

// IsContinue returns true if this is a continue statement
func (r Result) IsContinue() bool {
	return r.Flow == FlowContinue
}
