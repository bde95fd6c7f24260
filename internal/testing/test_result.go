// Package testing holds the canonical result model every report format is normalized into.
package testing

// Attachment is a file referenced by a test result. Exactly one of Buffer and Err is set: attachments that could not
// be read stay in the list and carry the reason.
type Attachment struct {
	Filename string
	Buffer   []byte
	Err      error
}

// TestCaseResult is a single normalized test execution.
type TestCaseResult struct {
	// Name is the raw test name. It may embed a project-code marker such as "PRJ-012".
	Name   string
	Folder string
	Status TestStatus
	// Message is an HTML fragment. All free text in it is escaped.
	Message string
	// TimeTaken is in milliseconds. nil means unknown.
	TimeTaken   *int64
	Attachments []Attachment
}

// Milliseconds is a small helper to build a TimeTaken value.
func Milliseconds(ms int64) *int64 {
	return &ms
}
