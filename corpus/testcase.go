// Package corpus reads executable documentation: Markdown files whose
// "Test: name" headings are followed by a ruchy input fence and one or
// more assertion fences.
package corpus

import (
	"bytes"
	"fmt"
	"strings"

	"github.com/yuin/goldmark"
	"github.com/yuin/goldmark/ast"
	"github.com/yuin/goldmark/text"
)

// InputLanguage is the fence language of a test's program
const InputLanguage = "ruchy"

// AssertionType is the fence language of an assertion
type AssertionType string

const (
	AssertAST    AssertionType = "ast"    // parser.Dump of the program
	AssertOutput AssertionType = "output" // exact interpreter stdout
	AssertRust   AssertionType = "rust"   // each line occurs in the lowered program
	AssertError  AssertionType = "error"  // occurs in the rendered error
)

// Assertion is one assertion fence
type Assertion struct {
	Type    AssertionType
	Content string
	Line    int
}

// TestCase is one "Test:" section
type TestCase struct {
	Name       string
	Input      string
	Line       int
	Assertions []Assertion
}

// ExtractTestCases parses a Markdown document and returns its test cases.
// Fences with an unknown language are an error; fences without a language
// are prose and ignored.
func ExtractTestCases(markdown string) ([]TestCase, error) {
	source := []byte(markdown)
	doc := goldmark.New().Parser().Parse(text.NewReader(source))

	var cases []TestCase
	var current *TestCase

	err := ast.Walk(doc, func(node ast.Node, entering bool) (ast.WalkStatus, error) {
		if !entering {
			return ast.WalkContinue, nil
		}

		switch n := node.(type) {
		case *ast.Heading:
			heading := nodeText(n, source)
			if !strings.HasPrefix(heading, "Test: ") {
				return ast.WalkContinue, nil
			}
			if current != nil {
				if err := validate(current); err != nil {
					return ast.WalkStop, err
				}
				cases = append(cases, *current)
			}
			current = &TestCase{Name: strings.TrimPrefix(heading, "Test: ")}

		case *ast.FencedCodeBlock:
			language := string(n.Language(source))
			if language == "" {
				return ast.WalkContinue, nil
			}
			line := lineOf(n, source)
			if current == nil {
				return ast.WalkStop, fmt.Errorf("line %d: %s fence found outside of a test", line, language)
			}
			content := fenceContent(n, source)
			switch {
			case language == InputLanguage:
				if current.Input != "" {
					return ast.WalkStop, fmt.Errorf("line %d: multiple input fences in test '%s'", line, current.Name)
				}
				current.Input = content
				current.Line = line
			case isAssertion(language):
				if language != string(AssertOutput) {
					content = strings.TrimRight(content, "\n")
				}
				current.Assertions = append(current.Assertions, Assertion{
					Type:    AssertionType(language),
					Content: content,
					Line:    line,
				})
			default:
				return ast.WalkStop, fmt.Errorf("line %d: unknown fence language '%s' in test '%s'", line, language, current.Name)
			}
		}
		return ast.WalkContinue, nil
	})
	if err != nil {
		return nil, err
	}

	if current != nil {
		if err := validate(current); err != nil {
			return nil, err
		}
		cases = append(cases, *current)
	}
	return cases, nil
}

func isAssertion(language string) bool {
	switch AssertionType(language) {
	case AssertAST, AssertOutput, AssertRust, AssertError:
		return true
	}
	return false
}

func validate(tc *TestCase) error {
	if tc.Input == "" {
		return fmt.Errorf("test '%s' has no %s fence", tc.Name, InputLanguage)
	}
	if len(tc.Assertions) == 0 {
		return fmt.Errorf("test '%s' has no assertion fences", tc.Name)
	}
	return nil
}

// nodeText concatenates the text segments under node
func nodeText(node ast.Node, source []byte) string {
	var buf bytes.Buffer
	ast.Walk(node, func(n ast.Node, entering bool) (ast.WalkStatus, error) {
		if t, ok := n.(*ast.Text); ok && entering {
			buf.Write(t.Segment.Value(source))
		}
		return ast.WalkContinue, nil
	})
	return buf.String()
}

func fenceContent(block *ast.FencedCodeBlock, source []byte) string {
	var buf bytes.Buffer
	for i := 0; i < block.Lines().Len(); i++ {
		line := block.Lines().At(i)
		buf.Write(line.Value(source))
	}
	return buf.String()
}

// lineOf returns the 1-based line of the fence's first content line
func lineOf(node ast.Node, source []byte) int {
	if node.Lines().Len() == 0 {
		return 1
	}
	start := node.Lines().At(0).Start
	return bytes.Count(source[:start], []byte("\n")) + 1
}
