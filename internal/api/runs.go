package api

import (
	"context"
	"fmt"
	"net/http"
	"net/url"
)

// CreateRun creates a new test run and returns its ID.
func (c Client) CreateRun(ctx context.Context, projectCode string, reqBody CreateRunRequest) (int, error) {
	endpoint := fmt.Sprintf("/project/%s/run", url.PathEscape(projectCode))

	if reqBody.Type == "" {
		reqBody.Type = RunTypeStatic
	}

	respBody := struct {
		ID int `json:"id"`
	}{}

	if err := c.request(ctx, http.MethodPost, endpoint, nil, reqBody, &respBody); err != nil {
		return 0, err
	}

	return respBody.ID, nil
}

// SubmitResult records the result of a single test case in a run.
func (c Client) SubmitResult(
	ctx context.Context,
	projectCode string,
	runID int,
	testCaseID string,
	reqBody SubmitResultRequest,
) error {
	endpoint := fmt.Sprintf(
		"/project/%s/run/%d/tcase/%s/result",
		url.PathEscape(projectCode),
		runID,
		url.PathEscape(testCaseID),
	)

	return c.request(ctx, http.MethodPost, endpoint, nil, reqBody, nil)
}
