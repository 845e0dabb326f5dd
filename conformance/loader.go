package conformance

import (
	"fmt"
	"os"
	"path/filepath"

	"gopkg.in/yaml.v3"
)

// TestPath is the directory holding the bundled suites, relative to this
// package
const TestPath = "testdata"

// LoadedTest represents a test with its source file path
type LoadedTest struct {
	File  string
	Suite TestSuite
	Test  TestCase
}

// LoadAllTests walks dir and loads every test case of every .yaml file.
// A file that fails to parse fails the whole load.
func LoadAllTests(dir string) ([]LoadedTest, error) {
	var loaded []LoadedTest

	err := filepath.Walk(dir, func(path string, info os.FileInfo, err error) error {
		if err != nil {
			return err
		}
		if info.IsDir() || filepath.Ext(path) != ".yaml" {
			return nil
		}

		tests, err := loadTestFile(path)
		if err != nil {
			return err
		}

		// relative paths keep test names short
		relPath, _ := filepath.Rel(dir, path)
		for _, test := range tests {
			test.File = filepath.ToSlash(relPath)
			loaded = append(loaded, test)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	return loaded, nil
}

// loadTestFile decodes one suite. Unknown keys and repeated test names
// are errors, so a misspelled expectation cannot silently pass.
func loadTestFile(path string) ([]LoadedTest, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()

	var suite TestSuite
	dec := yaml.NewDecoder(f)
	dec.KnownFields(true)
	if err := dec.Decode(&suite); err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}

	seen := make(map[string]bool, len(suite.Tests))
	tests := make([]LoadedTest, 0, len(suite.Tests))
	for _, test := range suite.Tests {
		if seen[test.Name] {
			return nil, fmt.Errorf("%s: duplicate test %q", path, test.Name)
		}
		seen[test.Name] = true
		tests = append(tests, LoadedTest{Suite: suite, Test: test})
	}
	return tests, nil
}
