package driver

import (
	"bytes"
	"context"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/nalgeon/be"
	"ruchy/parser"
	"ruchy/transpile"
	"ruchy/types"
)

func writeFiles(t *testing.T, files map[string]string) string {
	t.Helper()
	dir := t.TempDir()
	for name, src := range files {
		path := filepath.Join(dir, name)
		be.Err(t, os.MkdirAll(filepath.Dir(path), 0o755), nil)
		be.Err(t, os.WriteFile(path, []byte(src), 0o644), nil)
	}
	return dir
}

func TestLoadConfig(t *testing.T) {
	dir := writeFiles(t, map[string]string{
		"ruchy.yaml": "max_steps: 500\ntrace: true\ntrace_filter: [\"fib*\"]\nmodule_paths: [lib]\n",
	})
	cfg, err := LoadConfig(filepath.Join(dir, ConfigFile))
	be.Err(t, err, nil)
	be.Equal(t, cfg.MaxSteps, int64(500))
	be.Equal(t, cfg.Trace, true)
	be.Equal(t, cfg.TraceFilter, []string{"fib*"})
	// unset keys keep their defaults
	be.Equal(t, cfg.MaxDepth, types.DefaultMaxDepth)
	be.Equal(t, cfg.MaxParseDepth, parser.DefaultMaxDepth)
	be.Equal(t, cfg.Provenance, true)
	be.Equal(t, cfg.modulePaths(), []string{filepath.Join(cfg.dir, "lib")})
}

func TestLoadConfigErrors(t *testing.T) {
	dir := writeFiles(t, map[string]string{
		"unknown.yaml": "max_stepz: 1\n",
		"empty.yaml":   "",
	})
	_, err := LoadConfig(filepath.Join(dir, "unknown.yaml"))
	be.Err(t, err, "max_stepz")

	cfg, err := LoadConfig(filepath.Join(dir, "empty.yaml"))
	be.Err(t, err, nil)
	be.Equal(t, cfg.MaxSteps, int64(types.DefaultMaxSteps))

	_, err = LoadConfig(filepath.Join(dir, "missing.yaml"))
	be.True(t, errors.Is(err, os.ErrNotExist))
}

func TestFindConfig(t *testing.T) {
	dir := writeFiles(t, map[string]string{
		"ruchy.yaml":       "trace: false\n",
		"src/deep/a.ruchy": "println(1)\n",
	})
	found := FindConfig(filepath.Join(dir, "src", "deep"))
	want, _ := filepath.Abs(filepath.Join(dir, ConfigFile))
	be.Equal(t, found, want)
}

func TestRunFile(t *testing.T) {
	dir := writeFiles(t, map[string]string{
		"main.ruchy": "import util\nprintln(util::double(21))\n",
		"util.ruchy": "pub fun double(n: i64) -> i64 { n * 2 }\n",
	})
	var out bytes.Buffer
	d := New(DefaultConfig(), WithOutput(&out))
	u, err := d.LoadFile(filepath.Join(dir, "main.ruchy"))
	be.Err(t, err, nil)
	be.Equal(t, len(u.Files), 2)
	be.Equal(t, u.Files[1].Name, "util")

	_, err = d.Run(context.Background(), u)
	be.Err(t, err, nil)
	be.Equal(t, out.String(), "42\n")
}

func TestModulePathsAndCycles(t *testing.T) {
	dir := writeFiles(t, map[string]string{
		"app/main.ruchy": "import a\nprintln(a::f())\n",
		"lib/a.ruchy":    "import b\npub fun f() -> i64 { 1 }\n",
		"lib/b.ruchy":    "import a\npub fun g() -> i64 { 2 }\n",
	})
	cfg := DefaultConfig()
	cfg.ModulePaths = []string{filepath.Join(dir, "lib")}
	d := New(cfg)
	u, err := d.LoadFile(filepath.Join(dir, "app", "main.ruchy"))
	be.Err(t, err, nil)

	// each file once, dependencies first
	var names []string
	for _, f := range u.Files[1:] {
		names = append(names, f.Name)
	}
	be.Equal(t, names, []string{"b", "a"})
}

func TestModuleWithStatements(t *testing.T) {
	dir := writeFiles(t, map[string]string{
		"main.ruchy": "import util\n",
		"util.ruchy": "pub fun f() { }\nprintln(1)\n",
	})
	_, err := New(DefaultConfig()).LoadFile(filepath.Join(dir, "main.ruchy"))
	be.Err(t, err, "may only contain items")
	be.True(t, strings.Contains(Render(err), "help: move top-level statements into a function"))
}

func TestTranspileProvenance(t *testing.T) {
	d := New(DefaultConfig())
	u, err := d.LoadSource("hello.ruchy", "println(1)\n", ".")
	be.Err(t, err, nil)

	code, err := d.Transpile(u)
	be.Err(t, err, nil)
	be.True(t, strings.HasPrefix(code, "// Generated by ruchy from hello.ruchy. Do not edit.\n"))
	be.True(t, strings.Contains(code, "// blake2b-256: "+Digest(u)+"\n"))
	be.Equal(t, len(Digest(u)), 64)

	other, err := d.LoadSource("hello.ruchy", "println(2)\n", ".")
	be.Err(t, err, nil)
	be.True(t, Digest(other) != Digest(u))

	cfg := DefaultConfig()
	cfg.Provenance = false
	code, err = New(cfg).Transpile(u)
	be.Err(t, err, nil)
	be.True(t, strings.HasPrefix(code, "#![allow("))
}

func TestErrorsCarrySource(t *testing.T) {
	d := New(DefaultConfig(), WithOutput(&bytes.Buffer{}))

	t.Run("parse", func(t *testing.T) {
		_, err := d.LoadSource("bad.ruchy", "let = 1\n", ".")
		var diags parser.Diagnostics
		be.True(t, errors.As(err, &diags))
		be.True(t, strings.Contains(Render(err), "bad.ruchy"))
	})

	t.Run("lowering", func(t *testing.T) {
		u, err := d.LoadSource("low.ruchy", "let a = 1 + 1.5\n", ".")
		be.Err(t, err, nil)
		err = d.Check(u)
		var lerr *transpile.LoweringError
		be.True(t, errors.As(err, &lerr))
		be.True(t, strings.Contains(Render(err), "lowering error in low.ruchy at 1:9"))
	})

	t.Run("runtime", func(t *testing.T) {
		u, err := d.LoadSource("div.ruchy", "let z = 0\nprintln(1 / z)\n", ".")
		be.Err(t, err, nil)
		_, err = d.Run(context.Background(), u)
		var rerr *types.RuntimeError
		be.True(t, errors.As(err, &rerr))
		be.Equal(t, rerr.Code, types.E_DIV)
		be.True(t, strings.Contains(Render(err), "runtime error in div.ruchy"))
	})
}

func TestStepLimitFromConfig(t *testing.T) {
	cfg := DefaultConfig()
	cfg.MaxSteps = 100
	d := New(cfg, WithOutput(&bytes.Buffer{}))
	u, err := d.LoadSource("spin.ruchy", "loop { }\n", ".")
	be.Err(t, err, nil)
	_, err = d.Run(context.Background(), u)
	var rerr *types.RuntimeError
	be.True(t, errors.As(err, &rerr))
	be.Equal(t, rerr.Code, types.E_STEPS)
}

func TestTraceOutput(t *testing.T) {
	cfg := DefaultConfig()
	cfg.Trace = true
	var out, tr bytes.Buffer
	d := New(cfg, WithOutput(&out), WithTraceOutput(&tr))
	u, err := d.LoadSource("t.ruchy", "fun sq(n: i64) -> i64 { n * n }\nprintln(sq(3))\n", ".")
	be.Err(t, err, nil)
	_, err = d.Run(context.Background(), u)
	be.Err(t, err, nil)
	be.Equal(t, out.String(), "9\n")
	be.True(t, strings.Contains(tr.String(), "[TRACE] CALL sq"))
}
