package conformance

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/nalgeon/be"
)

func TestConformance(t *testing.T) {
	tests, err := LoadAllTests(TestPath)
	if err != nil {
		t.Fatalf("Failed to load tests: %v", err)
	}
	if len(tests) == 0 {
		t.Fatal("No tests loaded")
	}

	// compiling every case with rustc is slow; opt in with RUCHY_DIFFERENTIAL=1
	runner := NewRunnerWithRustc("")
	if os.Getenv("RUCHY_DIFFERENTIAL") != "" {
		runner = NewRunner()
	}
	defer runner.Close()
	if !runner.Differential() {
		t.Log("differential runs disabled; lowered programs are checked but not run")
	}

	results := runner.RunAll(tests)
	stats := ComputeStats(results)

	// Group results by file for organized output
	fileGroups := make(map[string][]TestResult)
	for _, result := range results {
		fileGroups[result.Test.File] = append(fileGroups[result.Test.File], result)
	}

	for file, fileResults := range fileGroups {
		t.Run(file, func(t *testing.T) {
			for _, result := range fileResults {
				t.Run(result.Test.Test.Name, func(t *testing.T) {
					if result.Skipped {
						t.Skipf("Skipped: %s", result.SkipReason)
					} else if !result.Passed {
						t.Errorf("Test failed: %v", result.Error)
					}
				})
			}
		})
	}

	t.Logf("\n=== Summary ===\n%s", FormatStats(stats))
}

func TestSuitesAreWellFormed(t *testing.T) {
	tests, err := LoadAllTests(TestPath)
	be.Err(t, err, nil)

	seen := make(map[string]bool)
	for _, test := range tests {
		key := test.File + "/" + test.Test.Name
		be.True(t, test.Test.Name != "")
		be.True(t, !seen[key])
		seen[key] = true
		be.True(t, test.Test.Code != "")
		be.True(t, test.Test.Expect.HasExpectation())
	}
}

func TestRunnerReportsMismatch(t *testing.T) {
	dir := t.TempDir()
	suite := `name: broken
tests:
  - name: wrong_output
    code: println(1)
    expect:
      output: "2\n"
  - name: unknown_code
    code: println(1)
    expect:
      error: Oops
  - name: skipped
    skip: not yet
    code: println(1)
    expect:
      output: "1\n"
`
	be.Err(t, os.WriteFile(filepath.Join(dir, "broken.yaml"), []byte(suite), 0o644), nil)

	tests, err := LoadAllTests(dir)
	be.Err(t, err, nil)
	be.Equal(t, len(tests), 3)
	be.Equal(t, tests[0].File, "broken.yaml")

	runner := NewRunnerWithRustc("")
	results := runner.RunAll(tests)
	be.Err(t, results[0].Error, "output mismatch")
	be.Err(t, results[1].Error, "unknown error code: Oops")
	be.True(t, results[2].Skipped)
	be.Equal(t, results[2].SkipReason, "not yet")

	stats := ComputeStats(results)
	be.Equal(t, stats, SummaryStats{Total: 3, Failed: 2, Skipped: 1})
	be.Equal(t, FormatStats(stats), "0 passed, 2 failed, 1 skipped (3 total)")
}

func TestLoadRejectsMalformedYAML(t *testing.T) {
	dir := t.TempDir()
	be.Err(t, os.WriteFile(filepath.Join(dir, "bad.yaml"), []byte("tests: [\n"), 0o644), nil)
	_, err := LoadAllTests(dir)
	be.Err(t, err, "bad.yaml")
}

func TestLoadRejectsUnknownKeys(t *testing.T) {
	dir := t.TempDir()
	suite := "name: typo\ntests:\n  - name: one\n    code: print(1)\n    expect:\n      outptu: \"1\"\n"
	be.Err(t, os.WriteFile(filepath.Join(dir, "typo.yaml"), []byte(suite), 0o644), nil)
	_, err := LoadAllTests(dir)
	be.Err(t, err, "outptu")
}

func TestLoadRejectsDuplicateNames(t *testing.T) {
	dir := t.TempDir()
	suite := "name: dup\ntests:\n  - name: one\n    code: print(1)\n  - name: one\n    code: print(2)\n"
	be.Err(t, os.WriteFile(filepath.Join(dir, "dup.yaml"), []byte(suite), 0o644), nil)
	_, err := LoadAllTests(dir)
	be.Err(t, err, `duplicate test "one"`)
}
