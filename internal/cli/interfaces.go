package cli

import (
	"context"

	"github.com/hypersequent/qas-cli/internal/api"
)

// APIClient is the interface of our API layer.
type APIClient interface {
	ProjectExists(ctx context.Context, projectCode string) (bool, error)
	GetRunTestCases(ctx context.Context, projectCode string, runID int) ([]api.TestCase, error)
	GetTestCasesBySequence(
		ctx context.Context, projectCode string, seqs []int, page, limit int,
	) (api.Paginated[api.TestCase], error)
	GetTestCasesInFolder(
		ctx context.Context, projectCode string, folderID int, page, limit int,
	) (api.Paginated[api.TestCase], error)
	CreateRun(ctx context.Context, projectCode string, req api.CreateRunRequest) (int, error)
	CreateTestCases(ctx context.Context, projectCode string, req api.CreateTestCasesRequest) ([]api.CreatedTestCase, error)
	GetFolders(ctx context.Context, projectCode string, query api.FolderQuery) (api.Paginated[api.Folder], error)
	UploadFile(ctx context.Context, content []byte, filename string) (api.UploadedFile, error)
	SubmitResult(
		ctx context.Context, projectCode string, runID int, testCaseID string, req api.SubmitResultRequest,
	) error
}
