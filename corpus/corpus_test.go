package corpus

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/nalgeon/be"
	"ruchy/driver"
)

func TestCorpus(t *testing.T) {
	files, err := filepath.Glob(filepath.Join("testdata", "*.md"))
	be.Err(t, err, nil)
	be.True(t, len(files) > 0)

	cfg := driver.DefaultConfig()
	cfg.Provenance = false
	for _, file := range files {
		t.Run(filepath.Base(file), func(t *testing.T) {
			content, err := os.ReadFile(file)
			be.Err(t, err, nil)
			cases, err := ExtractTestCases(string(content))
			be.Err(t, err, nil)

			for _, tc := range cases {
				t.Run(tc.Name, func(t *testing.T) {
					for _, err := range Check(tc, cfg) {
						t.Error(err)
					}
				})
			}
		})
	}
}

func TestExtractTestCases(t *testing.T) {
	doc := "# Title\n\nprose\n\n```\nplain block\n```\n\n" +
		"## Test: first\n\n```ruchy\nprintln(1)\n```\n\n```output\n1\n```\n\n" +
		"### Test: second\n\n```ruchy\n1 + 1\n```\n\n```ast\n(+ (int 1) (int 1))\n```\n\n```rust\nfn main\n```\n"

	cases, err := ExtractTestCases(doc)
	be.Err(t, err, nil)
	be.Equal(t, len(cases), 2)

	be.Equal(t, cases[0].Name, "first")
	be.Equal(t, cases[0].Input, "println(1)\n")
	be.Equal(t, cases[0].Assertions[0].Type, AssertOutput)
	be.Equal(t, cases[0].Assertions[0].Content, "1\n")

	be.Equal(t, cases[1].Name, "second")
	be.Equal(t, len(cases[1].Assertions), 2)
	be.Equal(t, cases[1].Assertions[0].Content, "(+ (int 1) (int 1))")
	be.Equal(t, cases[1].Assertions[1].Type, AssertRust)
}

func TestExtractTestCasesErrors(t *testing.T) {
	tests := []struct {
		name string
		doc  string
		want string
	}{
		{"fence outside test", "```ruchy\n1\n```\n", "outside of a test"},
		{"unknown language", "## Test: a\n\n```ruchy\n1\n```\n\n```python\nx\n```\n", "unknown fence language 'python'"},
		{"two inputs", "## Test: a\n\n```ruchy\n1\n```\n\n```ruchy\n2\n```\n", "multiple input fences"},
		{"no input", "## Test: a\n\n```output\n1\n```\n", "has no ruchy fence"},
		{"no assertion", "## Test: a\n\n```ruchy\n1\n```\n", "has no assertion fences"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := ExtractTestCases(tt.doc)
			be.Err(t, err, tt.want)
		})
	}
}

func TestCheckReportsFailures(t *testing.T) {
	tc := TestCase{
		Name:  "bad",
		Input: "println(1)\n",
		Assertions: []Assertion{
			{Type: AssertOutput, Content: "2\n", Line: 3},
			{Type: AssertError, Content: "anything", Line: 7},
		},
	}
	errs := Check(tc, driver.DefaultConfig())
	be.Equal(t, len(errs), 2)
	be.Err(t, errs[0], "line 3: output")
	be.Err(t, errs[1], "program succeeded")
}
