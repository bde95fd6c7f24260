package testing

import "github.com/hypersequent/qas-cli/internal/errors"

// SkipOutputPolicy decides whether output (stdout, stderr & informational details) is dropped from the message.
type SkipOutputPolicy string

const (
	// SkipNever always includes the output.
	SkipNever SkipOutputPolicy = "never"
	// SkipOnSuccess drops the output of passing results.
	SkipOnSuccess SkipOutputPolicy = "on-success"
)

// ParseSkipOutputPolicy validates a user-provided policy. The empty string means SkipNever.
func ParseSkipOutputPolicy(value string) (SkipOutputPolicy, error) {
	switch SkipOutputPolicy(value) {
	case "", SkipNever:
		return SkipNever, nil
	case SkipOnSuccess:
		return SkipOnSuccess, nil
	default:
		return "", errors.NewConfigurationError("invalid output policy %q, expected %q or %q", value, SkipOnSuccess, SkipNever)
	}
}

// ParserOptions is passed to every report parser.
type ParserOptions struct {
	SkipStdout SkipOutputPolicy
	SkipStderr SkipOutputPolicy
}

// IncludeStdout reports whether stdout-like details belong in the message of a result with the given status.
// Failing, blocked & skipped results always include everything.
func (o ParserOptions) IncludeStdout(status TestStatus) bool {
	return !status.IsPassed() || o.SkipStdout != SkipOnSuccess
}

// IncludeStderr reports whether stderr belongs in the message of a result with the given status.
func (o ParserOptions) IncludeStderr(status TestStatus) bool {
	return !status.IsPassed() || o.SkipStderr != SkipOnSuccess
}
