// Package api holds the client for the public QA Sphere API & its supporting types. This is a fairly transparent
// package, mapping HTTP calls to Go methods.
package api

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/http/httputil"
	"net/url"
	"path"

	"github.com/google/uuid"

	"github.com/hypersequent/qas-cli/internal/errors"
)

// Client is the main client for the QA Sphere API.
type Client struct {
	ClientConfig
	RoundTrip func(*http.Request) (*http.Response, error)
}

// NewClient is the preferred constructor for the API client. It makes sure that the configuration is valid & necessary
// defaults are applied.
func NewClient(cfg ClientConfig) (Client, error) {
	cfg = cfg.WithDefaults()

	if err := cfg.Validate(); err != nil {
		return Client{}, err
	}

	client := &http.Client{}
	baseURL := cfg.BaseURL()

	roundTrip := func(req *http.Request) (*http.Response, error) {
		req.URL.Scheme = baseURL.Scheme
		req.URL.Host = baseURL.Host
		req.URL.Path = path.Join("/", baseURL.Path, req.URL.Path)

		req.Header.Set("Authorization", fmt.Sprintf("ApiKey %s", cfg.Token))
		req.Header.Set(headerRequestID, uuid.NewString())

		if cfg.Debug {
			hasBody := req.Body != nil && req.Header.Get(headerContentType) == contentTypeJSON
			dump, _ := httputil.DumpRequest(req, hasBody)
			sanitizedDump := apiKeyRegexp.ReplaceAll(dump, []byte("<redacted>"))
			cfg.Log.Debugf("Executing following HTTP request:\n\n%s\n", sanitizedDump)
		}

		resp, err := client.Do(req)
		if err != nil {
			return resp, errors.NewSystemError("unable to perform HTTP request to %q: %s", req.URL, err)
		}

		if cfg.Debug {
			dump, _ := httputil.DumpResponse(resp, true)
			sanitizedDump := setCookieHeaderRegexp.ReplaceAll(dump, []byte("Set-Cookie: <redacted>"))
			cfg.Log.Debugf("Received following response:\n\n%s\n", sanitizedDump)
		}

		return resp, nil
	}

	return Client{cfg, roundTrip}, nil
}

func (c Client) do(
	ctx context.Context,
	method, endpoint string,
	query url.Values,
	body io.Reader,
	contentType string,
) (*http.Response, error) {
	req, err := http.NewRequestWithContext(ctx, method, apiPrefix+endpoint, body)
	if err != nil {
		return nil, errors.NewInternalError("unable to construct HTTP request: %s", err)
	}

	if len(query) > 0 {
		req.URL.RawQuery = query.Encode()
	}

	if contentType != "" {
		req.Header.Set(headerContentType, contentType)
	}

	return c.RoundTrip(req)
}

// request sends an optional JSON body and decodes a JSON response into `result` unless it is nil.
func (c Client) request(
	ctx context.Context,
	method, endpoint string,
	query url.Values,
	body any,
	result any,
) error {
	var (
		reader      io.Reader
		contentType string
	)

	if body != nil {
		encodedBody, err := json.Marshal(body)
		if err != nil {
			return errors.NewInternalError("unable to construct JSON object for request: %s", err)
		}

		reader = bytes.NewBuffer(encodedBody)
		contentType = contentTypeJSON
	}

	resp, err := c.do(ctx, method, endpoint, query, reader, contentType)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	return decodeResponse(endpoint, resp, result)
}

func decodeResponse(endpoint string, resp *http.Response, result any) error {
	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return remoteError(endpoint, resp)
	}

	if result == nil {
		return nil
	}

	if err := json.NewDecoder(resp.Body).Decode(result); err != nil {
		return errors.NewInternalError(
			"unable to parse the response body. Endpoint was %q, Content-Type %q. Original Error: %s",
			endpoint,
			resp.Header.Get(headerContentType),
			err,
		)
	}

	return nil
}

// remoteError turns an unsuccessful response into a RemoteError. QA Sphere reports errors as {"message": "..."}.
func remoteError(endpoint string, resp *http.Response) error {
	respBody := struct {
		Message string `json:"message"`
	}{}

	if resp.Body != nil {
		_ = json.NewDecoder(resp.Body).Decode(&respBody)
	}

	return errors.WithStack(errors.NewRemoteError(endpoint, resp.StatusCode, respBody.Message))
}
