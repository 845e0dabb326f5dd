package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"io"
	"log"
	"os"
	"os/signal"
	"path/filepath"
	"strings"

	"ruchy/driver"
	"ruchy/parser"
	"ruchy/types"
)

const usageText = `usage: ruchy <command> [flags] [file]

Commands:
  run FILE         Interpret a program
  transpile FILE   Lower a program to Rust (-o to write a file)
  parse FILE       Print the syntax tree and any diagnostics
  fmt FILE         Print the program in canonical layout (-w to rewrite)
  check FILE       Parse and lower a program, reporting problems
  repl             Start an interactive session

Run 'ruchy <command> -h' for the flags of a command.
`

// errUsage marks a command line problem; it exits with status 2
var errUsage = errors.New("usage error")

func main() {
	log.SetFlags(0)
	log.SetPrefix("ruchy: ")

	if len(os.Args) < 2 {
		fmt.Fprint(os.Stderr, usageText)
		os.Exit(2)
	}

	var err error
	cmd, args := os.Args[1], os.Args[2:]
	switch cmd {
	case "run":
		err = cmdRun(args)
	case "transpile":
		err = cmdTranspile(args)
	case "parse":
		err = cmdParse(args)
	case "fmt":
		err = cmdFmt(args)
	case "check":
		err = cmdCheck(args)
	case "repl":
		err = cmdRepl(args)
	case "-h", "--help", "help":
		fmt.Print(usageText)
		return
	default:
		log.Printf("unknown command %q", cmd)
		fmt.Fprint(os.Stderr, usageText)
		os.Exit(2)
	}
	os.Exit(exitCode(err))
}

// exitCode reports err and maps it to the process status
func exitCode(err error) int {
	switch {
	case err == nil:
		return 0
	case errors.Is(err, flag.ErrHelp):
		return 0
	case errors.Is(err, errUsage):
		log.Print(err)
		return 2
	}
	fmt.Fprint(os.Stderr, driver.Render(err))
	return 1
}

// settings are the flags shared by the commands that run or lower code
type settings struct {
	fs          *flag.FlagSet
	config      string
	maxSteps    int64
	maxDepth    int
	trace       bool
	traceFilter string
}

func newSettings(name string) *settings {
	s := &settings{fs: flag.NewFlagSet(name, flag.ContinueOnError)}
	s.fs.StringVar(&s.config, "config", "", "config file (default: nearest "+driver.ConfigFile+")")
	s.fs.Int64Var(&s.maxSteps, "max-steps", 0, "evaluation step limit, 0 for none")
	s.fs.IntVar(&s.maxDepth, "max-depth", 0, "call depth limit")
	s.fs.BoolVar(&s.trace, "trace", false, "trace function calls to stderr")
	s.fs.StringVar(&s.traceFilter, "trace-filter", "", "comma-separated function names to trace")
	return s
}

// parse parses args and returns the single positional file argument
func (s *settings) parse(args []string) (string, error) {
	if err := s.fs.Parse(args); err != nil {
		if errors.Is(err, flag.ErrHelp) {
			return "", err
		}
		return "", fmt.Errorf("%w: %v", errUsage, err)
	}
	if s.fs.NArg() != 1 {
		return "", fmt.Errorf("%w: %s expects exactly one file", errUsage, s.fs.Name())
	}
	return s.fs.Arg(0), nil
}

// load resolves the configuration for a program in dir. Flags given on
// the command line override the file.
func (s *settings) load(dir string) (driver.Config, error) {
	path := s.config
	if path == "" {
		path = driver.FindConfig(dir)
	}
	cfg := driver.DefaultConfig()
	if path != "" {
		var err error
		if cfg, err = driver.LoadConfig(path); err != nil {
			return cfg, err
		}
	}
	s.fs.Visit(func(f *flag.Flag) {
		switch f.Name {
		case "max-steps":
			cfg.MaxSteps = s.maxSteps
		case "max-depth":
			cfg.MaxDepth = s.maxDepth
		case "trace":
			cfg.Trace = s.trace
		case "trace-filter":
			cfg.Trace = true
			cfg.TraceFilter = splitList(s.traceFilter)
		}
	})
	return cfg, nil
}

func splitList(s string) []string {
	var out []string
	for _, part := range strings.Split(s, ",") {
		if part = strings.TrimSpace(part); part != "" {
			out = append(out, part)
		}
	}
	return out
}

func loadUnit(s *settings, file string) (*driver.Driver, *driver.Unit, error) {
	cfg, err := s.load(filepath.Dir(file))
	if err != nil {
		return nil, nil, err
	}
	d := driver.New(cfg)
	u, err := d.LoadFile(file)
	if err != nil {
		return nil, nil, err
	}
	return d, u, nil
}

func cmdRun(args []string) error {
	s := newSettings("run")
	file, err := s.parse(args)
	if err != nil {
		return err
	}
	d, u, err := loadUnit(s, file)
	if err != nil {
		return err
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()
	v, err := d.Run(ctx, u)
	if err != nil {
		return err
	}
	// a main returning Err(..) fails the process the way a Rust main does
	if r, ok := v.(types.EnumValue); ok && r.Enum == "Result" && r.Variant == "Err" {
		return fmt.Errorf("main returned Err(%s)", r.Fields[0].Debug())
	}
	return nil
}

func cmdTranspile(args []string) error {
	s := newSettings("transpile")
	out := s.fs.String("o", "", "write Rust to this file instead of stdout")
	noHeader := s.fs.Bool("no-provenance", false, "omit the provenance header")
	file, err := s.parse(args)
	if err != nil {
		return err
	}
	cfg, err := s.load(filepath.Dir(file))
	if err != nil {
		return err
	}
	if *noHeader {
		cfg.Provenance = false
	}
	d := driver.New(cfg)
	u, err := d.LoadFile(file)
	if err != nil {
		return err
	}
	code, err := d.Transpile(u)
	if err != nil {
		return err
	}
	if *out == "" {
		_, err = io.WriteString(os.Stdout, code)
		return err
	}
	if err := os.WriteFile(*out, []byte(code), 0o644); err != nil {
		return err
	}
	log.Printf("wrote %s", *out)
	return nil
}

func cmdParse(args []string) error {
	s := newSettings("parse")
	file, err := s.parse(args)
	if err != nil {
		return err
	}
	cfg, err := s.load(filepath.Dir(file))
	if err != nil {
		return err
	}
	src, err := os.ReadFile(file)
	if err != nil {
		return err
	}
	prog, err := parser.Parse(string(src), parser.WithMaxDepth(cfg.MaxParseDepth))
	// the partial tree is still worth showing next to the diagnostics
	if prog != nil && len(prog.Stmts) > 0 {
		fmt.Println(parser.Dump(prog))
	}
	if err != nil {
		return &driver.SourceError{Name: file, Source: string(src), Err: err}
	}
	return nil
}

func cmdFmt(args []string) error {
	s := newSettings("fmt")
	write := s.fs.Bool("w", false, "rewrite the file in place")
	check := s.fs.Bool("check", false, "fail if the file is not formatted")
	file, err := s.parse(args)
	if err != nil {
		return err
	}
	src, err := os.ReadFile(file)
	if err != nil {
		return err
	}
	prog, err := parser.Parse(string(src))
	if err != nil {
		return &driver.SourceError{Name: file, Source: string(src), Err: err}
	}
	formatted := parser.Format(prog)

	switch {
	case *check:
		if formatted != string(src) {
			return fmt.Errorf("%s is not formatted", file)
		}
		return nil
	case *write:
		if formatted == string(src) {
			return nil
		}
		return os.WriteFile(file, []byte(formatted), 0o644)
	}
	_, err = io.WriteString(os.Stdout, formatted)
	return err
}

func cmdCheck(args []string) error {
	s := newSettings("check")
	file, err := s.parse(args)
	if err != nil {
		return err
	}
	d, u, err := loadUnit(s, file)
	if err != nil {
		return err
	}
	if err := d.Check(u); err != nil {
		return err
	}
	log.Printf("%s: ok", file)
	return nil
}
