package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"io"
	"os"
	"os/signal"
	"path/filepath"
	"strings"

	"github.com/peterh/liner"
	"ruchy/driver"
	"ruchy/eval"
	"ruchy/parser"
	"ruchy/types"
)

const (
	historyFile = ".ruchy_history"
	promptMain  = "ruchy> "
	promptCont  = "...... "
)

// session is one interactive session; bindings persist between inputs
type session struct {
	interp *eval.Interpreter
	env    *eval.Environment
	out    io.Writer
	errOut io.Writer
}

func newSession(d *driver.Driver, out, errOut io.Writer) *session {
	interp := d.NewInterpreter()
	return &session{interp: interp, env: interp.Global(), out: out, errOut: errOut}
}

// incomplete reports whether src needs more lines before it can be run
func incomplete(src string) bool {
	_, err := parser.Parse(src)
	var diags parser.Diagnostics
	return errors.As(err, &diags) && diags.Incomplete(src)
}

// eval runs one input. It returns false when the session should end.
func (s *session) eval(ctx context.Context, input string) bool {
	trimmed := strings.TrimSpace(input)
	switch {
	case trimmed == "":
		return true
	case strings.HasPrefix(trimmed, ":"):
		return s.command(trimmed)
	}

	v, env, err := s.interp.EvaluateStatement(ctx, input, s.env)
	s.env = env
	if err != nil {
		fmt.Fprint(s.errOut, driver.Render(&driver.SourceError{Name: "<repl>", Source: input, Err: err}))
		return true
	}
	if v.Kind() != types.KindUnit {
		fmt.Fprintln(s.out, v.Debug())
	}
	return true
}

func (s *session) command(cmd string) bool {
	switch cmd {
	case ":quit", ":q":
		return false
	case ":env":
		for _, name := range s.env.Names() {
			v, _ := s.env.Get(name)
			fmt.Fprintf(s.out, "%s = %s\n", name, v.Debug())
		}
	case ":help":
		fmt.Fprintln(s.out, ":env    list bindings\n:quit   leave the session")
	default:
		fmt.Fprintf(s.errOut, "unknown command %s, try :help\n", cmd)
	}
	return true
}

func cmdRepl(args []string) error {
	s := newSettings("repl")
	if err := s.fs.Parse(args); err != nil {
		if errors.Is(err, flag.ErrHelp) {
			return err
		}
		return fmt.Errorf("%w: %v", errUsage, err)
	}
	if s.fs.NArg() != 0 {
		return fmt.Errorf("%w: repl takes no arguments", errUsage)
	}
	cfg, err := s.load(".")
	if err != nil {
		return err
	}
	sess := newSession(driver.New(cfg), os.Stdout, os.Stderr)

	ln := liner.NewLiner()
	defer ln.Close()
	ln.SetCtrlCAborts(true)
	ln.SetMultiLineMode(true)

	histPath := ""
	if home, err := os.UserHomeDir(); err == nil {
		histPath = filepath.Join(home, historyFile)
		if f, err := os.Open(histPath); err == nil {
			ln.ReadHistory(f)
			f.Close()
		}
	}
	defer func() {
		if histPath == "" {
			return
		}
		if f, err := os.Create(histPath); err == nil {
			ln.WriteHistory(f)
			f.Close()
		}
	}()

	for {
		input, ok := readInput(ln)
		if !ok {
			fmt.Println()
			return nil
		}
		if strings.TrimSpace(input) != "" {
			ln.AppendHistory(strings.ReplaceAll(input, "\n", " "))
		}

		// Ctrl-C during evaluation cancels the input, not the session
		ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
		more := sess.eval(ctx, input)
		stop()
		if !more {
			return nil
		}
	}
}

// readInput reads lines until they form a complete input. Ctrl-C drops
// the pending lines; end of input ends the session.
func readInput(ln *liner.State) (string, bool) {
	var b strings.Builder
	for {
		prompt := promptMain
		if b.Len() > 0 {
			prompt = promptCont
		}
		line, err := ln.Prompt(prompt)
		switch {
		case errors.Is(err, liner.ErrPromptAborted):
			return "", true
		case err != nil:
			return "", false
		}

		if b.Len() > 0 {
			b.WriteByte('\n')
		}
		b.WriteString(line)
		if src := b.String(); !incomplete(src) {
			return src, true
		}
	}
}
