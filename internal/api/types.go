package api

import (
	"github.com/hypersequent/qas-cli/internal/testing"
)

// TestCase is a test case as stored on QA Sphere.
type TestCase struct {
	ID       string `json:"id"`
	Seq      int    `json:"seq"`
	Title    string `json:"title"`
	FolderID int    `json:"folderId,omitempty"`
}

// Paginated is a single page of a listing endpoint.
type Paginated[T any] struct {
	Data  []T `json:"data"`
	Total int `json:"total"`
	Page  int `json:"page"`
	Limit int `json:"limit"`
}

// Folder is a test case folder.
type Folder struct {
	ID       int    `json:"id"`
	Title    string `json:"title"`
	ParentID int    `json:"parentId,omitempty"`
}

// FolderQuery filters the folder listing.
type FolderQuery struct {
	Search string
	Page   int
	Limit  int
}

// RunType is the kind of test run created on QA Sphere.
type RunType string

const RunTypeStatic RunType = "static_struct"

// QueryPlan selects the test cases of a run.
type QueryPlan struct {
	TestCaseIDs []string `json:"tcaseIds"`
}

// CreateRunRequest is the body of the run creation endpoint.
type CreateRunRequest struct {
	Title       string      `json:"title"`
	Description string      `json:"description"`
	Type        RunType     `json:"type"`
	QueryPlans  []QueryPlan `json:"queryPlans"`
}

// NewTestCase is a test case to be created.
type NewTestCase struct {
	Title string   `json:"title"`
	Tags  []string `json:"tags"`
}

// CreateTestCasesRequest creates test cases in bulk inside the folder identified by its path.
type CreateTestCasesRequest struct {
	FolderPath []string      `json:"folderPath"`
	TestCases  []NewTestCase `json:"tcases"`
}

// CreatedTestCase is returned for every test case created in bulk, in request order.
type CreatedTestCase struct {
	ID  string `json:"id"`
	Seq int    `json:"seq"`
}

// UploadedFile is a file stored on QA Sphere that can be linked from result comments.
type UploadedFile struct {
	ID  string `json:"id"`
	URL string `json:"url"`
}

// SubmitResultRequest records the outcome of a test case in a run.
type SubmitResultRequest struct {
	Status  testing.TestStatus `json:"status"`
	Comment string             `json:"comment"`
	// TimeTaken is in milliseconds.
	TimeTaken *int64 `json:"timeTaken,omitempty"`
}
