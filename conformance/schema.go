package conformance

// TestSuite represents a complete YAML test file
type TestSuite struct {
	Name        string     `yaml:"name"`
	Description string     `yaml:"description,omitempty"`
	Tests       []TestCase `yaml:"tests"`
}

// TestCase represents a single program and what running it must produce
type TestCase struct {
	Name        string      `yaml:"name"`
	Description string      `yaml:"description,omitempty"`
	Skip        interface{} `yaml:"skip,omitempty"` // bool or string
	Code        string      `yaml:"code"`
	Expect      Expectation `yaml:"expect"`
}

// Expectation defines what a test must observe. Output, Value and Error
// are checked against the interpreter; RustContains and LowerError
// against the transpiler.
type Expectation struct {
	Output       *string  `yaml:"output,omitempty"`        // exact stdout
	Value        *string  `yaml:"value,omitempty"`         // Debug rendering of the program value
	Error        string   `yaml:"error,omitempty"`         // runtime error code, or ParseError
	RustContains []string `yaml:"rust_contains,omitempty"` // substrings of the lowered program
	LowerError   string   `yaml:"lower_error,omitempty"`   // substring of the lowering error
}

// ParseError is the Error expectation for programs that must not parse
const ParseError = "ParseError"

// IsSkipped returns true if this test should be skipped
func (tc *TestCase) IsSkipped() (bool, string) {
	if tc.Skip == nil {
		return false, ""
	}

	switch v := tc.Skip.(type) {
	case bool:
		if v {
			return true, "skipped"
		}
		return false, ""
	case string:
		return true, v
	default:
		return false, ""
	}
}

// HasExpectation reports whether the test checks anything
func (e Expectation) HasExpectation() bool {
	return e.Output != nil || e.Value != nil || e.Error != "" || len(e.RustContains) > 0 || e.LowerError != ""
}
