package conformance

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"os"
	"os/exec"
	"path/filepath"
	"strings"
	"time"

	"ruchy/driver"
	"ruchy/parser"
	"ruchy/transpile"
	"ruchy/types"
)

// RustTimeout bounds compiling and running one lowered program
const RustTimeout = 60 * time.Second

// TestResult represents the outcome of running a single test
type TestResult struct {
	Test       LoadedTest
	Passed     bool
	Skipped    bool
	SkipReason string
	Error      error
}

// Runner executes conformance tests through the interpreter and the
// transpiler. When rustc is available, lowered programs are also built
// and run, and their output must equal the interpreter's.
type Runner struct {
	cfg   driver.Config
	rustc string
	work  string
}

// NewRunner creates a runner that uses rustc from PATH when present
func NewRunner() *Runner {
	rustc, _ := exec.LookPath("rustc")
	return NewRunnerWithRustc(rustc)
}

// NewRunnerWithRustc creates a runner with an explicit compiler; an empty
// path disables differential runs
func NewRunnerWithRustc(rustc string) *Runner {
	cfg := driver.DefaultConfig()
	cfg.Provenance = false
	cfg.MaxSteps = 1_000_000
	return &Runner{cfg: cfg, rustc: rustc}
}

// Differential reports whether lowered programs are compiled and run
func (r *Runner) Differential() bool {
	return r.rustc != ""
}

// Close removes the runner's scratch directory
func (r *Runner) Close() error {
	if r.work == "" {
		return nil
	}
	return os.RemoveAll(r.work)
}

// Run executes a single test case
func (r *Runner) Run(test LoadedTest) TestResult {
	if skipped, reason := test.Test.IsSkipped(); skipped {
		return TestResult{Test: test, Skipped: true, SkipReason: reason}
	}
	if test.Test.Code == "" {
		return TestResult{Test: test, Skipped: true, SkipReason: "no code"}
	}
	if !test.Test.Expect.HasExpectation() {
		return TestResult{Test: test, Error: fmt.Errorf("no expectation specified")}
	}

	err := r.run(test)
	return TestResult{Test: test, Passed: err == nil, Error: err}
}

func (r *Runner) run(test LoadedTest) error {
	expect := test.Test.Expect
	var out bytes.Buffer
	d := driver.New(r.cfg, driver.WithOutput(&out), driver.WithErrorOutput(&bytes.Buffer{}))

	u, err := d.LoadSource(test.Test.Name, test.Test.Code, ".")
	if err != nil {
		var diags parser.Diagnostics
		if expect.Error == ParseError && errors.As(err, &diags) {
			return nil
		}
		return fmt.Errorf("load: %w", err)
	}
	if expect.Error == ParseError {
		return fmt.Errorf("expected a parse error, program parsed")
	}

	v, runErr := d.Run(context.Background(), u)
	if err := checkRun(expect, out.String(), v, runErr); err != nil {
		return err
	}

	code, lowerErr := d.Transpile(u)
	if err := checkLowering(expect, code, lowerErr); err != nil {
		return err
	}
	if lowerErr != nil || !r.Differential() {
		return nil
	}
	return r.differential(code, out.String(), runErr != nil)
}

// checkRun compares the interpreter's observable behavior with expect
func checkRun(expect Expectation, output string, v types.Value, runErr error) error {
	if expect.Error != "" {
		if _, ok := types.ParseErrorCode(expect.Error); !ok {
			return fmt.Errorf("unknown error code: %s", expect.Error)
		}
		var rerr *types.RuntimeError
		if !errors.As(runErr, &rerr) {
			return fmt.Errorf("expected error %s, got value %s", expect.Error, debugOf(v))
		}
		if rerr.Code.String() != expect.Error {
			return fmt.Errorf("expected error %s, got %s", expect.Error, rerr)
		}
	} else if runErr != nil {
		return fmt.Errorf("unexpected error: %w", runErr)
	}

	if expect.Output != nil && output != *expect.Output {
		return fmt.Errorf("output mismatch\n  want: %q\n  got:  %q", *expect.Output, output)
	}
	if expect.Value != nil && runErr == nil && debugOf(v) != *expect.Value {
		return fmt.Errorf("expected value %s, got %s", *expect.Value, debugOf(v))
	}
	return nil
}

// checkLowering compares the transpiler's result with expect
func checkLowering(expect Expectation, code string, lowerErr error) error {
	if expect.LowerError != "" {
		var lerr *transpile.LoweringError
		if !errors.As(lowerErr, &lerr) {
			return fmt.Errorf("expected lowering error %q, program lowered", expect.LowerError)
		}
		if !strings.Contains(lerr.Message, expect.LowerError) {
			return fmt.Errorf("expected lowering error %q, got %q", expect.LowerError, lerr.Message)
		}
		return nil
	}
	if lowerErr != nil {
		return fmt.Errorf("lowering failed: %w", lowerErr)
	}
	for _, want := range expect.RustContains {
		if !strings.Contains(code, want) {
			return fmt.Errorf("lowered program does not contain %q", want)
		}
	}
	return nil
}

// differential builds and runs the lowered program. Its stdout must equal
// the interpreter's; a runtime error must surface as a failing exit.
func (r *Runner) differential(code, want string, wantFailure bool) error {
	if r.work == "" {
		dir, err := os.MkdirTemp("", "ruchy-conformance-")
		if err != nil {
			return fmt.Errorf("scratch dir: %w", err)
		}
		r.work = dir
	}
	src := filepath.Join(r.work, "main.rs")
	bin := filepath.Join(r.work, "main")
	if err := os.WriteFile(src, []byte(code), 0o644); err != nil {
		return fmt.Errorf("write rust source: %w", err)
	}

	ctx, cancel := context.WithTimeout(context.Background(), RustTimeout)
	defer cancel()

	var diag bytes.Buffer
	build := exec.CommandContext(ctx, r.rustc, "--edition", "2021", "-o", bin, src)
	build.Stderr = &diag
	if err := build.Run(); err != nil {
		return fmt.Errorf("rustc: %w\n%s", err, diag.String())
	}

	var stdout bytes.Buffer
	run := exec.CommandContext(ctx, bin)
	run.Stdout = &stdout
	run.Stderr = &bytes.Buffer{}
	err := run.Run()
	var exitErr *exec.ExitError
	switch {
	case wantFailure && err == nil:
		return fmt.Errorf("lowered program exited successfully, interpreter failed")
	case !wantFailure && err != nil:
		return fmt.Errorf("lowered program failed: %w", err)
	case err != nil && !errors.As(err, &exitErr):
		return fmt.Errorf("run lowered program: %w", err)
	}
	if got := stdout.String(); got != want {
		return fmt.Errorf("differential output mismatch\n  interpreter: %q\n  rust:        %q", want, got)
	}
	return nil
}

func debugOf(v types.Value) string {
	if v == nil {
		return "()"
	}
	return v.Debug()
}

// RunAll executes all loaded tests
func (r *Runner) RunAll(tests []LoadedTest) []TestResult {
	results := make([]TestResult, len(tests))
	for i, test := range tests {
		results[i] = r.Run(test)
	}
	return results
}

// SummaryStats computes statistics from test results
type SummaryStats struct {
	Total   int
	Passed  int
	Failed  int
	Skipped int
}

// ComputeStats generates statistics from test results
func ComputeStats(results []TestResult) SummaryStats {
	stats := SummaryStats{Total: len(results)}
	for _, r := range results {
		if r.Skipped {
			stats.Skipped++
		} else if r.Passed {
			stats.Passed++
		} else {
			stats.Failed++
		}
	}
	return stats
}

// FormatStats returns a human-readable summary
func FormatStats(stats SummaryStats) string {
	return fmt.Sprintf("%d passed, %d failed, %d skipped (%d total)",
		stats.Passed, stats.Failed, stats.Skipped, stats.Total)
}
