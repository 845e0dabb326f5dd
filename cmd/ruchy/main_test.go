package main

import (
	"bytes"
	"context"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/nalgeon/be"
	"ruchy/driver"
)

func newTestSession(t *testing.T) (*session, *bytes.Buffer, *bytes.Buffer) {
	t.Helper()
	var out, errOut bytes.Buffer
	d := driver.New(driver.DefaultConfig(), driver.WithOutput(&out))
	return newSession(d, &out, &errOut), &out, &errOut
}

func TestSessionKeepsBindings(t *testing.T) {
	sess, out, errOut := newTestSession(t)
	ctx := context.Background()

	be.True(t, sess.eval(ctx, "let x = 40"))
	be.True(t, sess.eval(ctx, "fun add(a, b) { a + b }"))
	be.True(t, sess.eval(ctx, "add(x, 2)"))
	be.True(t, sess.eval(ctx, `println("hi")`))
	be.Equal(t, out.String(), "42\nhi\n")
	be.Equal(t, errOut.String(), "")
}

func TestSessionSurvivesErrors(t *testing.T) {
	sess, out, errOut := newTestSession(t)
	ctx := context.Background()

	be.True(t, sess.eval(ctx, "let n = 1"))
	be.True(t, sess.eval(ctx, "n / 0"))
	be.True(t, strings.Contains(errOut.String(), "runtime error in <repl>"))

	be.True(t, sess.eval(ctx, "let = 2"))
	be.True(t, strings.Contains(errOut.String(), "parse error in <repl>"))

	be.True(t, sess.eval(ctx, "n + 1"))
	be.Equal(t, out.String(), "2\n")
}

func TestSessionCommands(t *testing.T) {
	sess, out, errOut := newTestSession(t)
	ctx := context.Background()

	be.True(t, sess.eval(ctx, "let b = \"two\""))
	be.True(t, sess.eval(ctx, "let a = 1"))
	be.True(t, sess.eval(ctx, ":env"))
	be.Equal(t, out.String(), "a = 1\nb = \"two\"\n")

	be.True(t, sess.eval(ctx, ":nope"))
	be.True(t, strings.Contains(errOut.String(), "unknown command :nope"))

	be.True(t, !sess.eval(ctx, " :quit "))
}

func TestIncompleteInput(t *testing.T) {
	be.True(t, incomplete("fun f() {"))
	be.True(t, incomplete("let xs = [1,\n2,"))
	be.True(t, !incomplete("fun f() {\n1\n}"))
	be.True(t, !incomplete("let = 1"))
	be.True(t, !incomplete(":env"))
}

func TestSettingsFlagsOverrideConfig(t *testing.T) {
	dir := t.TempDir()
	cfgPath := filepath.Join(dir, driver.ConfigFile)
	err := os.WriteFile(cfgPath, []byte("max_steps: 100\nmax_depth: 20\n"), 0o644)
	be.Err(t, err, nil)

	s := newSettings("run")
	file, err := s.parse([]string{"-max-steps", "5", "-trace-filter", "f, g", "prog.ruchy"})
	be.Err(t, err, nil)
	be.Equal(t, file, "prog.ruchy")

	cfg, err := s.load(dir)
	be.Err(t, err, nil)
	be.Equal(t, cfg.MaxSteps, int64(5))
	be.Equal(t, cfg.MaxDepth, 20)
	be.True(t, cfg.Trace)
	be.Equal(t, cfg.TraceFilter, []string{"f", "g"})
}

func TestSettingsUsageErrors(t *testing.T) {
	s := newSettings("run")
	s.fs.SetOutput(&bytes.Buffer{})
	_, err := s.parse(nil)
	be.True(t, errors.Is(err, errUsage))
	be.Equal(t, exitCode(err), 2)

	s = newSettings("run")
	s.fs.SetOutput(&bytes.Buffer{})
	_, err = s.parse([]string{"-bogus", "x.ruchy"})
	be.True(t, errors.Is(err, errUsage))
}
