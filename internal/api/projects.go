package api

import (
	"context"
	"fmt"
	"net/http"
	"net/url"
)

// ProjectExists checks whether a project with the given code is accessible with the configured token.
func (c Client) ProjectExists(ctx context.Context, projectCode string) (bool, error) {
	endpoint := fmt.Sprintf("/project/%s", url.PathEscape(projectCode))

	resp, err := c.do(ctx, http.MethodGet, endpoint, nil, nil, "")
	if err != nil {
		return false, err
	}
	defer resp.Body.Close()

	if resp.StatusCode == http.StatusNotFound {
		return false, nil
	}

	if err := decodeResponse(endpoint, resp, nil); err != nil {
		return false, err
	}

	return true, nil
}
