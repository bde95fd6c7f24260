package api

import "regexp"

const (
	apiPrefix = "/api/public/v0"

	contentTypeJSON   = "application/json"
	headerContentType = "Content-Type"
	headerRequestID   = "X-Request-Id"

	// DefaultPageLimit is the page size used when listing test cases & folders.
	DefaultPageLimit = 1000
)

var (
	apiKeyRegexp          = regexp.MustCompile(`ApiKey.*`)
	setCookieHeaderRegexp = regexp.MustCompile(`Set-Cookie:.*`)
)
