package parsing

import (
	"html"
	"regexp"
	"strings"
)

var ansiEscapeRegexp = regexp.MustCompile(`\x1b\[[0-9;?]*[ -/]*[@-~]|\x1b[@-Z\\-_]`)

// stripANSI removes terminal color codes and cursor movements.
func stripANSI(text string) string {
	return ansiEscapeRegexp.ReplaceAllString(text, "")
}

// codeBlock escapes text and wraps it as preformatted code. Blank text yields an empty string.
func codeBlock(text string) string {
	if strings.TrimSpace(text) == "" {
		return ""
	}

	return "<pre><code>" + html.EscapeString(text) + "</code></pre>"
}

// paragraph escapes text and wraps it as a paragraph. Blank text yields an empty string.
func paragraph(text string) string {
	if strings.TrimSpace(text) == "" {
		return ""
	}

	return "<p>" + html.EscapeString(text) + "</p>"
}
