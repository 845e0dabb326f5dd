// Package driver ties the front end, the transpiler and the interpreter
// together for whole files: it loads configuration, splices file modules,
// stamps generated Rust with the digest of its sources and runs programs.
package driver

import (
	"context"
	"encoding/hex"
	"fmt"
	"io"
	"os"
	"strings"

	"golang.org/x/crypto/blake2b"
	"ruchy/eval"
	"ruchy/trace"
	"ruchy/transpile"
	"ruchy/types"
)

// Driver runs whole programs under one configuration
type Driver struct {
	cfg      Config
	out      io.Writer
	errOut   io.Writer
	traceOut io.Writer
}

// Option configures a Driver
type Option func(*Driver)

// WithOutput sets where programs print
func WithOutput(w io.Writer) Option {
	return func(d *Driver) { d.out = w }
}

// WithErrorOutput sets where programs print with eprint and eprintln
func WithErrorOutput(w io.Writer) Option {
	return func(d *Driver) { d.errOut = w }
}

// WithTraceOutput sets where call traces go when tracing is enabled
func WithTraceOutput(w io.Writer) Option {
	return func(d *Driver) { d.traceOut = w }
}

// New creates a driver
func New(cfg Config, opts ...Option) *Driver {
	d := &Driver{cfg: cfg, out: os.Stdout, errOut: os.Stderr, traceOut: os.Stderr}
	for _, opt := range opts {
		opt(d)
	}
	return d
}

// Config returns the driver's configuration
func (d *Driver) Config() Config {
	return d.cfg
}

// NewInterpreter creates an interpreter configured like the ones Run uses
func (d *Driver) NewInterpreter() *eval.Interpreter {
	opts := []eval.Option{
		eval.WithOutput(d.out),
		eval.WithErrorOutput(d.errOut),
		eval.WithMaxSteps(d.cfg.MaxSteps),
	}
	if d.cfg.MaxDepth > 0 {
		opts = append(opts, eval.WithMaxDepth(d.cfg.MaxDepth))
	}
	if d.cfg.Trace {
		opts = append(opts, eval.WithTracer(trace.New(true, d.cfg.TraceFilter, d.traceOut)))
	}
	return eval.New(opts...)
}

// Run interprets the unit and returns the program's value
func (d *Driver) Run(ctx context.Context, u *Unit) (types.Value, error) {
	v, err := d.NewInterpreter().Evaluate(ctx, u.Program)
	if err != nil {
		return nil, &SourceError{Name: u.Name, Source: u.Source, Err: err}
	}
	return v, nil
}

// Transpile lowers the unit to Rust. With provenance enabled the output
// starts with a comment naming the sources and their digest.
func (d *Driver) Transpile(u *Unit) (string, error) {
	var opts transpile.Options
	if d.cfg.Provenance {
		opts.Header = Provenance(u)
	}
	code, err := transpile.Lower(u.Program, opts)
	if err != nil {
		return "", &SourceError{Name: u.Name, Source: u.Source, Err: err}
	}
	return code, nil
}

// Check parses and lowers the unit without producing output
func (d *Driver) Check(u *Unit) error {
	_, err := transpile.Lower(u.Program, transpile.Options{})
	if err != nil {
		return &SourceError{Name: u.Name, Source: u.Source, Err: err}
	}
	return nil
}

// Digest returns the hex BLAKE2b-256 digest of the unit's sources. Each
// file contributes its module name and text, so renaming a module changes
// the digest.
func Digest(u *Unit) string {
	h, err := blake2b.New256(nil)
	if err != nil {
		// only a key longer than 64 bytes fails
		panic(err)
	}
	for _, f := range u.Files {
		io.WriteString(h, f.Name)
		h.Write([]byte{0})
		io.WriteString(h, f.Source)
		h.Write([]byte{0})
	}
	return hex.EncodeToString(h.Sum(nil))
}

// Provenance renders the header placed above generated Rust
func Provenance(u *Unit) string {
	var b strings.Builder
	fmt.Fprintf(&b, "Generated by ruchy from %s. Do not edit.\n", u.Name)
	for _, f := range u.Files[1:] {
		fmt.Fprintf(&b, "module %s: %s\n", f.Name, f.Path)
	}
	fmt.Fprintf(&b, "blake2b-256: %s\n", Digest(u))
	return b.String()
}
