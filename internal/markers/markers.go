// Package markers recovers the identity of a QA Sphere test case ("project code + sequence number") from free-form
// test names. Markers are written as `PRJ-012` anywhere in a name. Test runners that derive names from function
// identifiers (JUnit flavored reports) may also use hyphen-less forms such as `test_prj012_login`, `TestPRJ012Login`
// or `testLoginPRJ012`.
package markers

import (
	"fmt"
	"regexp"
	"strconv"
	"strings"
)

// Flavor is the report format that drives the parser. It decides which naming conventions are recognized.
type Flavor string

const (
	FlavorJUnit      Flavor = "junit-upload"
	FlavorPlaywright Flavor = "playwright-json-upload"
	FlavorAllure     Flavor = "allure-upload"
	FlavorXCResult   Flavor = "xcresult-upload"
)

// Marker is the identity of a test case inside a project.
type Marker struct {
	ProjectCode string
	Seq         int
}

// String returns the canonical textual form, e.g. "PRJ-007".
func (m Marker) String() string {
	return FormatMarker(m.ProjectCode, m.Seq)
}

// Prefix prepends the marker to a test name, e.g. "PRJ-007: logs in".
func (m Marker) Prefix(name string) string {
	return fmt.Sprintf("%s: %s", m, name)
}

// FormatMarker returns "{code}-{seq}" with seq zero-padded to at least three digits.
func FormatMarker(code string, seq int) string {
	return fmt.Sprintf("%s-%03d", code, seq)
}

var (
	hyphenatedAtStart  = regexp.MustCompile(`^([A-Za-z0-9]{1,5})-(\d{3,})(?:\D|$)`)
	hyphenatedAtEnd    = regexp.MustCompile(`(?:^|[^A-Za-z0-9])([A-Za-z0-9]{1,5})-(\d{3,})$`)
	hyphenatedAnywhere = regexp.MustCompile(`(?:^|[^A-Za-z0-9])([A-Za-z0-9]{1,5})-(\d{3,})(?:\D|$)`)
	hyphenatedExact    = regexp.MustCompile(`^([A-Za-z0-9]{1,5})-(\d{3,})$`)

	// Hyphen-less codes are letters only: with digits in the code there is no way to tell where it ends.
	separatorBounded = regexp.MustCompile(`_([A-Za-z]{1,5})(\d{3,})(?:_|$)`)
	camelCaseStart   = regexp.MustCompile(`^(?i:test)([A-Z]{1,5})(\d{3,})(?:\D|$)`)
	camelCaseEnd     = regexp.MustCompile(`[a-z]([A-Z]{1,5})(\d{3,})$`)

	testFunctionName = regexp.MustCompile(`^(?i:test)`)
)

// Parser detects markers in test names. The zero value only recognizes hyphenated markers.
type Parser struct {
	Flavor Flavor
}

// NewParser returns a parser for the given report flavor.
func NewParser(flavor Flavor) Parser {
	return Parser{Flavor: flavor}
}

// allowsHyphenless is true for report formats whose names are shaped like test functions.
func (p Parser) allowsHyphenless(name string) bool {
	return p.Flavor == FlavorJUnit && testFunctionName.MatchString(name)
}

// DetectProjectCode returns the project code of the first marker found in name. Hyphenated markers are tried at the
// start, then at the end, then anywhere in the name and are returned with their original casing. Hyphen-less codes are
// returned upper-cased.
func (p Parser) DetectProjectCode(name string) (string, bool) {
	if code, ok := DetectHyphenatedProjectCode(name); ok {
		return code, true
	}

	if !p.allowsHyphenless(name) {
		return "", false
	}

	for _, pattern := range []*regexp.Regexp{separatorBounded, camelCaseStart, camelCaseEnd} {
		if match := pattern.FindStringSubmatch(name); match != nil {
			return strings.ToUpper(match[1]), true
		}
	}

	return "", false
}

// DetectHyphenatedProjectCode only considers markers of the form `CODE-123`.
func DetectHyphenatedProjectCode(name string) (string, bool) {
	for _, pattern := range []*regexp.Regexp{hyphenatedAtStart, hyphenatedAtEnd, hyphenatedAnywhere} {
		if match := pattern.FindStringSubmatch(name); match != nil {
			return match[1], true
		}
	}

	return "", false
}

// ExtractSeq returns the sequence number of the marker for the known project code.
func (p Parser) ExtractSeq(name, code string) (int, bool) {
	if code == "" {
		return 0, false
	}

	ci := caseInsensitive(code)
	patterns := []string{
		`^` + ci + `-(\d{3,})`,
		`(?:^|[^A-Za-z0-9])` + ci + `-(\d{3,})$`,
		`(?:^|[^A-Za-z0-9])` + ci + `-(\d{3,})`,
	}

	if p.allowsHyphenless(name) {
		patterns = append(patterns,
			`_`+ci+`(\d{3,})(?:_|$)`,
			`^(?i:test)`+ci+`(\d{3,})`,
			`[a-z]`+ci+`(\d{3,})$`,
		)
	}

	for _, pattern := range patterns {
		match := regexp.MustCompile(pattern).FindStringSubmatch(name)
		if match == nil {
			continue
		}

		seq, err := strconv.Atoi(match[1])
		if err != nil || seq < 1 {
			continue
		}

		return seq, true
	}

	return 0, false
}

// NameMatchesTCase reports whether name carries the marker of the given test case.
func (p Parser) NameMatchesTCase(name, code string, seq int) bool {
	if code == "" || seq < 1 {
		return false
	}

	if containsMarker(strings.ToLower(name), strings.ToLower(FormatMarker(code, seq))) {
		return true
	}

	if !p.allowsHyphenless(name) {
		return false
	}

	ci := caseInsensitive(code)
	padded := fmt.Sprintf("%03d", seq)
	for _, pattern := range []string{
		`_` + ci + padded + `(?:_|$)`,
		`^(?i:test)` + ci + padded + `(?:\D|$)`,
		`[a-z]` + ci + padded + `$`,
	} {
		if regexp.MustCompile(pattern).MatchString(name) {
			return true
		}
	}

	return false
}

// containsMarker is a substring search that refuses matches glued to surrounding alphanumerics, so that "PRJ-123" does
// not match inside "PRJ-1234" and "RJ-123" does not match inside "PRJ-123".
func containsMarker(name, marker string) bool {
	for offset := 0; offset <= len(name)-len(marker); {
		idx := strings.Index(name[offset:], marker)
		if idx < 0 {
			return false
		}

		start := offset + idx
		end := start + len(marker)
		if (start == 0 || !isAlphanumeric(name[start-1])) && (end == len(name) || !isDigit(name[end])) {
			return true
		}

		offset += idx + 1
	}

	return false
}

// caseInsensitive expands a code into a regexp that matches it regardless of casing, e.g. "PRJ" -> "[pP][rR][jJ]".
func caseInsensitive(code string) string {
	var b strings.Builder
	for _, r := range code {
		lower, upper := strings.ToLower(string(r)), strings.ToUpper(string(r))
		if lower == upper {
			b.WriteString(regexp.QuoteMeta(string(r)))
			continue
		}

		fmt.Fprintf(&b, "[%s%s]", lower, upper)
	}

	return b.String()
}

func isDigit(b byte) bool {
	return b >= '0' && b <= '9'
}

func isAlphanumeric(b byte) bool {
	return isDigit(b) || (b >= 'a' && b <= 'z') || (b >= 'A' && b <= 'Z')
}

// ParseMarker parses a string that consists of a marker only, e.g. the display name of an Allure link.
func ParseMarker(text string) (Marker, bool) {
	match := hyphenatedExact.FindStringSubmatch(strings.TrimSpace(text))
	if match == nil {
		return Marker{}, false
	}

	seq, err := strconv.Atoi(match[2])
	if err != nil || seq < 1 {
		return Marker{}, false
	}

	return Marker{ProjectCode: match[1], Seq: seq}, true
}
