package api

import (
	"context"
	"fmt"
	"net/http"
	"net/url"
	"strconv"
	"strings"
)

// GetRunTestCases returns all test cases that are part of a run.
func (c Client) GetRunTestCases(ctx context.Context, projectCode string, runID int) ([]TestCase, error) {
	endpoint := fmt.Sprintf("/project/%s/run/%d/tcase", url.PathEscape(projectCode), runID)

	respBody := struct {
		TestCases []TestCase `json:"tcases"`
	}{}

	if err := c.request(ctx, http.MethodGet, endpoint, nil, nil, &respBody); err != nil {
		return nil, err
	}

	return respBody.TestCases, nil
}

// GetTestCasesBySequence looks up test cases of a project by their sequence numbers.
func (c Client) GetTestCasesBySequence(
	ctx context.Context,
	projectCode string,
	seqs []int,
	page, limit int,
) (Paginated[TestCase], error) {
	endpoint := fmt.Sprintf("/project/%s/tcase", url.PathEscape(projectCode))

	seqIDs := make([]string, len(seqs))
	for i, seq := range seqs {
		seqIDs[i] = strconv.Itoa(seq)
	}

	query := pageQuery(page, limit)
	query.Set("seqIds", strings.Join(seqIDs, ","))

	var respBody Paginated[TestCase]
	if err := c.request(ctx, http.MethodGet, endpoint, query, nil, &respBody); err != nil {
		return Paginated[TestCase]{}, err
	}

	return respBody, nil
}

// GetTestCasesInFolder lists the test cases directly inside a folder.
func (c Client) GetTestCasesInFolder(
	ctx context.Context,
	projectCode string,
	folderID int,
	page, limit int,
) (Paginated[TestCase], error) {
	endpoint := fmt.Sprintf("/project/%s/tcase", url.PathEscape(projectCode))

	query := pageQuery(page, limit)
	query.Set("folders", strconv.Itoa(folderID))

	var respBody Paginated[TestCase]
	if err := c.request(ctx, http.MethodGet, endpoint, query, nil, &respBody); err != nil {
		return Paginated[TestCase]{}, err
	}

	return respBody, nil
}

// CreateTestCases creates test cases in bulk. The folder path is created if it doesn't exist yet.
func (c Client) CreateTestCases(
	ctx context.Context,
	projectCode string,
	reqBody CreateTestCasesRequest,
) ([]CreatedTestCase, error) {
	endpoint := fmt.Sprintf("/project/%s/tcase/bulk", url.PathEscape(projectCode))

	respBody := struct {
		TestCases []CreatedTestCase `json:"tcases"`
	}{}

	if err := c.request(ctx, http.MethodPost, endpoint, nil, reqBody, &respBody); err != nil {
		return nil, err
	}

	return respBody.TestCases, nil
}

// GetFolders lists the test case folders of a project.
func (c Client) GetFolders(ctx context.Context, projectCode string, folderQuery FolderQuery) (Paginated[Folder], error) {
	endpoint := fmt.Sprintf("/project/%s/tcase/folders", url.PathEscape(projectCode))

	query := pageQuery(folderQuery.Page, folderQuery.Limit)
	if folderQuery.Search != "" {
		query.Set("search", folderQuery.Search)
	}

	var respBody Paginated[Folder]
	if err := c.request(ctx, http.MethodGet, endpoint, query, nil, &respBody); err != nil {
		return Paginated[Folder]{}, err
	}

	return respBody, nil
}

func pageQuery(page, limit int) url.Values {
	if page < 1 {
		page = 1
	}

	if limit < 1 {
		limit = DefaultPageLimit
	}

	return url.Values{
		"page":  []string{strconv.Itoa(page)},
		"limit": []string{strconv.Itoa(limit)},
	}
}
