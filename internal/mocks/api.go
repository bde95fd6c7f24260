package mocks

import (
	"context"

	"github.com/hypersequent/qas-cli/internal/api"
	"github.com/hypersequent/qas-cli/internal/errors"
)

// API is a mocked implementation of 'api.Client'.
type API struct {
	MockProjectExists          func(ctx context.Context, projectCode string) (bool, error)
	MockGetRunTestCases        func(ctx context.Context, projectCode string, runID int) ([]api.TestCase, error)
	MockGetTestCasesBySequence func(
		ctx context.Context, projectCode string, seqs []int, page, limit int,
	) (api.Paginated[api.TestCase], error)
	MockGetTestCasesInFolder func(
		ctx context.Context, projectCode string, folderID int, page, limit int,
	) (api.Paginated[api.TestCase], error)
	MockCreateRun       func(ctx context.Context, projectCode string, req api.CreateRunRequest) (int, error)
	MockCreateTestCases func(
		ctx context.Context, projectCode string, req api.CreateTestCasesRequest,
	) ([]api.CreatedTestCase, error)
	MockGetFolders   func(ctx context.Context, projectCode string, query api.FolderQuery) (api.Paginated[api.Folder], error)
	MockUploadFile   func(ctx context.Context, content []byte, filename string) (api.UploadedFile, error)
	MockSubmitResult func(
		ctx context.Context, projectCode string, runID int, testCaseID string, req api.SubmitResultRequest,
	) error
}

// ProjectExists either calls the configured mock of itself or returns an error if that doesn't exist.
func (a *API) ProjectExists(ctx context.Context, projectCode string) (bool, error) {
	if a.MockProjectExists != nil {
		return a.MockProjectExists(ctx, projectCode)
	}

	return false, errors.NewConfigurationError("MockProjectExists was not configured")
}

// GetRunTestCases either calls the configured mock of itself or returns an error if that doesn't exist.
func (a *API) GetRunTestCases(ctx context.Context, projectCode string, runID int) ([]api.TestCase, error) {
	if a.MockGetRunTestCases != nil {
		return a.MockGetRunTestCases(ctx, projectCode, runID)
	}

	return nil, errors.NewConfigurationError("MockGetRunTestCases was not configured")
}

// GetTestCasesBySequence either calls the configured mock of itself or returns an error if that doesn't exist.
func (a *API) GetTestCasesBySequence(
	ctx context.Context,
	projectCode string,
	seqs []int,
	page, limit int,
) (api.Paginated[api.TestCase], error) {
	if a.MockGetTestCasesBySequence != nil {
		return a.MockGetTestCasesBySequence(ctx, projectCode, seqs, page, limit)
	}

	return api.Paginated[api.TestCase]{}, errors.NewConfigurationError("MockGetTestCasesBySequence was not configured")
}

// GetTestCasesInFolder either calls the configured mock of itself or returns an error if that doesn't exist.
func (a *API) GetTestCasesInFolder(
	ctx context.Context,
	projectCode string,
	folderID int,
	page, limit int,
) (api.Paginated[api.TestCase], error) {
	if a.MockGetTestCasesInFolder != nil {
		return a.MockGetTestCasesInFolder(ctx, projectCode, folderID, page, limit)
	}

	return api.Paginated[api.TestCase]{}, errors.NewConfigurationError("MockGetTestCasesInFolder was not configured")
}

// CreateRun either calls the configured mock of itself or returns an error if that doesn't exist.
func (a *API) CreateRun(ctx context.Context, projectCode string, req api.CreateRunRequest) (int, error) {
	if a.MockCreateRun != nil {
		return a.MockCreateRun(ctx, projectCode, req)
	}

	return 0, errors.NewConfigurationError("MockCreateRun was not configured")
}

// CreateTestCases either calls the configured mock of itself or returns an error if that doesn't exist.
func (a *API) CreateTestCases(
	ctx context.Context,
	projectCode string,
	req api.CreateTestCasesRequest,
) ([]api.CreatedTestCase, error) {
	if a.MockCreateTestCases != nil {
		return a.MockCreateTestCases(ctx, projectCode, req)
	}

	return nil, errors.NewConfigurationError("MockCreateTestCases was not configured")
}

// GetFolders either calls the configured mock of itself or returns an error if that doesn't exist.
func (a *API) GetFolders(
	ctx context.Context,
	projectCode string,
	query api.FolderQuery,
) (api.Paginated[api.Folder], error) {
	if a.MockGetFolders != nil {
		return a.MockGetFolders(ctx, projectCode, query)
	}

	return api.Paginated[api.Folder]{}, errors.NewConfigurationError("MockGetFolders was not configured")
}

// UploadFile either calls the configured mock of itself or returns an error if that doesn't exist.
func (a *API) UploadFile(ctx context.Context, content []byte, filename string) (api.UploadedFile, error) {
	if a.MockUploadFile != nil {
		return a.MockUploadFile(ctx, content, filename)
	}

	return api.UploadedFile{}, errors.NewConfigurationError("MockUploadFile was not configured")
}

// SubmitResult either calls the configured mock of itself or returns an error if that doesn't exist.
func (a *API) SubmitResult(
	ctx context.Context,
	projectCode string,
	runID int,
	testCaseID string,
	req api.SubmitResultRequest,
) error {
	if a.MockSubmitResult != nil {
		return a.MockSubmitResult(ctx, projectCode, runID, testCaseID, req)
	}

	return errors.NewConfigurationError("MockSubmitResult was not configured")
}
