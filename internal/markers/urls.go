package markers

import (
	"net/url"
	"regexp"
	"strconv"
	"strings"
)

var (
	tcasePathRegexp = regexp.MustCompile(`/project/([A-Za-z0-9]+)/tcase/(\d+)/?$`)
	runPathRegexp   = regexp.MustCompile(`/project/([A-Za-z0-9]+)/run/(\d+)(?:/.*)?$`)
)

// RunRef identifies an existing test run on a QA Sphere instance.
type RunRef struct {
	BaseURL     string
	ProjectCode string
	RunID       int
}

// ParseTCaseURL extracts the marker from a test case URL such as
// https://acme.eu1.qasphere.com/project/PRJ/tcase/12
func ParseTCaseURL(rawURL string) (Marker, bool) {
	u, err := url.Parse(strings.TrimSpace(rawURL))
	if err != nil || u.Host == "" {
		return Marker{}, false
	}

	match := tcasePathRegexp.FindStringSubmatch(u.Path)
	if match == nil {
		return Marker{}, false
	}

	seq, err := strconv.Atoi(match[2])
	if err != nil || seq < 1 {
		return Marker{}, false
	}

	return Marker{ProjectCode: match[1], Seq: seq}, true
}

// ParseRunURL parses a run URL such as https://acme.eu1.qasphere.com/project/PRJ/run/23
func ParseRunURL(rawURL string) (RunRef, bool) {
	u, err := url.Parse(strings.TrimSpace(rawURL))
	if err != nil || u.Host == "" || (u.Scheme != "http" && u.Scheme != "https") {
		return RunRef{}, false
	}

	match := runPathRegexp.FindStringSubmatch(u.Path)
	if match == nil {
		return RunRef{}, false
	}

	runID, err := strconv.Atoi(match[2])
	if err != nil || runID < 1 {
		return RunRef{}, false
	}

	return RunRef{
		BaseURL:     u.Scheme + "://" + u.Host,
		ProjectCode: match[1],
		RunID:       runID,
	}, true
}
