package testing

import "github.com/hypersequent/qas-cli/internal/errors"

// TestStatus is the status of a test case as understood by QA Sphere.
type TestStatus int

const (
	TestStatusPassed TestStatus = iota
	TestStatusFailed
	// TestStatusBlocked represents "error" semantics, e.g. a broken setup or an expected failure.
	TestStatusBlocked
	TestStatusSkipped
)

// String returns the wire representation of a status.
func (s TestStatus) String() string {
	switch s {
	case TestStatusFailed:
		return "failed"
	case TestStatusBlocked:
		return "blocked"
	case TestStatusSkipped:
		return "skipped"
	case TestStatusPassed:
		fallthrough
	default:
		return "passed"
	}
}

// IsPassed is true for passing results. Only those are subject to the output-skip policy.
func (s TestStatus) IsPassed() bool {
	return s == TestStatusPassed
}

// MarshalText implements encoding.TextMarshaler
func (s TestStatus) MarshalText() ([]byte, error) {
	return []byte(s.String()), nil
}

// UnmarshalText implements encoding.TextUnmarshaler
func (s *TestStatus) UnmarshalText(text []byte) error {
	switch string(text) {
	case "passed":
		*s = TestStatusPassed
	case "failed":
		*s = TestStatusFailed
	case "blocked":
		*s = TestStatusBlocked
	case "skipped":
		*s = TestStatusSkipped
	default:
		return errors.NewInputError("unknown test status %q", string(text))
	}

	return nil
}
