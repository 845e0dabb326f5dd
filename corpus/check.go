package corpus

import (
	"bytes"
	"context"
	"fmt"
	"strings"

	"ruchy/driver"
	"ruchy/parser"
)

// result caches what one test's program produced
type result struct {
	loadErr  error
	unit     *driver.Unit
	output   string
	runErr   error
	ran      bool
	rust     string
	lowerErr error
	lowered  bool
}

// Check runs the test's program as its assertions require and returns
// one error per failed assertion
func Check(tc TestCase, cfg driver.Config) []error {
	var out bytes.Buffer
	d := driver.New(cfg, driver.WithOutput(&out), driver.WithErrorOutput(&bytes.Buffer{}))
	res := &result{}
	res.unit, res.loadErr = d.LoadSource(tc.Name, tc.Input, ".")

	run := func() {
		if res.ran || res.loadErr != nil {
			return
		}
		res.ran = true
		_, res.runErr = d.Run(context.Background(), res.unit)
		res.output = out.String()
	}
	lower := func() {
		if res.lowered || res.loadErr != nil {
			return
		}
		res.lowered = true
		res.rust, res.lowerErr = d.Transpile(res.unit)
	}

	var errs []error
	fail := func(a Assertion, format string, args ...interface{}) {
		errs = append(errs, fmt.Errorf("line %d: %s: %s", a.Line, a.Type, fmt.Sprintf(format, args...)))
	}

	for _, a := range tc.Assertions {
		switch a.Type {
		case AssertAST:
			prog, err := parser.Parse(tc.Input)
			if err != nil {
				fail(a, "parse failed: %v", err)
				continue
			}
			if got := parser.Dump(prog); got != a.Content {
				fail(a, "got\n%s\nwant\n%s", got, a.Content)
			}

		case AssertOutput:
			if res.loadErr != nil {
				fail(a, "program did not parse: %v", res.loadErr)
				continue
			}
			run()
			if res.output != a.Content {
				fail(a, "got %q, want %q", res.output, a.Content)
			}

		case AssertRust:
			lower()
			if res.loadErr != nil || res.lowerErr != nil {
				fail(a, "program did not lower: %v", firstErr(res.loadErr, res.lowerErr))
				continue
			}
			for _, want := range strings.Split(a.Content, "\n") {
				if want = strings.TrimSpace(want); want != "" && !strings.Contains(res.rust, want) {
					fail(a, "lowered program does not contain %q", want)
				}
			}

		case AssertError:
			run()
			lower()
			var rendered []string
			for _, err := range []error{res.loadErr, res.runErr, res.lowerErr} {
				if err != nil {
					rendered = append(rendered, driver.Render(err))
				}
			}
			if len(rendered) == 0 {
				fail(a, "program succeeded")
				continue
			}
			if !strings.Contains(strings.Join(rendered, "\n"), a.Content) {
				fail(a, "no error contains %q:\n%s", a.Content, strings.Join(rendered, "\n"))
			}
		}
	}
	return errs
}

func firstErr(errs ...error) error {
	for _, err := range errs {
		if err != nil {
			return err
		}
	}
	return nil
}
