package api

import (
	"net/url"
	"strings"

	"go.uber.org/zap"

	"github.com/hypersequent/qas-cli/internal/errors"
)

// ClientConfig is the configuration object for the QA Sphere API client
type ClientConfig struct {
	Debug bool
	// URL is the base URL of the QA Sphere instance, e.g. https://acme.eu1.qasphere.com
	URL   string
	Log   *zap.SugaredLogger
	Token string
}

// Validate checks the configuration for errors
func (cc ClientConfig) Validate() error {
	if cc.Log == nil {
		return errors.NewInternalError("missing logger")
	}

	if cc.Token == "" {
		return errors.NewConfigurationError("missing API token")
	}

	if cc.URL == "" {
		return errors.NewConfigurationError("missing QA Sphere URL")
	}

	u, err := url.Parse(cc.URL)
	if err != nil || u.Host == "" {
		return errors.NewConfigurationError("invalid QA Sphere URL %q", cc.URL)
	}

	if u.Scheme != "http" && u.Scheme != "https" {
		return errors.NewConfigurationError("invalid QA Sphere URL %q, expected an http(s) URL", cc.URL)
	}

	return nil
}

// WithDefaults returns a copy of the configuration with defaults applied where necessary.
func (cc ClientConfig) WithDefaults() ClientConfig {
	cc.URL = strings.TrimRight(strings.TrimSpace(cc.URL), "/")

	if cc.URL != "" && !strings.Contains(cc.URL, "://") {
		cc.URL = "https://" + cc.URL
	}

	return cc
}

// BaseURL returns the parsed base URL. The configuration needs to be valid.
func (cc ClientConfig) BaseURL() *url.URL {
	u, err := url.Parse(cc.URL)
	if err != nil {
		return &url.URL{}
	}

	return u
}
