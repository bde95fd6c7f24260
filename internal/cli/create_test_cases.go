package cli

import (
	"context"
	"fmt"
	"path/filepath"
	"strings"

	"github.com/hypersequent/qas-cli/internal/api"
	"github.com/hypersequent/qas-cli/internal/errors"
	"github.com/hypersequent/qas-cli/internal/markers"
	"github.com/hypersequent/qas-cli/internal/testing"
)

// createMissingTestCases makes sure every named result has a test case. Results without one are grouped by name;
// test cases with the same title in the import folder are reused, all others are created. The marker of each test
// case is prefixed onto the names of its results so they match like any other result.
func (s Service) createMissingTestCases(
	ctx context.Context,
	cfg UploadConfig,
	parser markers.Parser,
	projectCode string,
	testCases []api.TestCase,
	reports []parsedReport,
) ([]api.TestCase, error) {
	groups := make(map[string][]*testing.TestCaseResult)
	titles := make([]string, 0)

	for i := range reports {
		for j := range reports[i].Results {
			result := &reports[i].Results[j]

			if strings.TrimSpace(result.Name) == "" {
				continue
			}

			if _, ok := findTestCase(parser, projectCode, testCases, result.Name); ok {
				continue
			}

			if _, ok := groups[result.Name]; !ok {
				titles = append(titles, result.Name)
			}

			groups[result.Name] = append(groups[result.Name], result)
		}
	}

	if len(titles) == 0 {
		return nil, nil
	}

	existing, err := s.importedTestCases(ctx, cfg.Import.Folder, projectCode)
	if err != nil {
		return nil, err
	}

	byTitle := make(map[string]api.TestCase, len(titles))
	newTitles := make([]string, 0, len(titles))

	for _, title := range titles {
		if testCase, ok := existing[title]; ok {
			s.Log.Debugf("Reusing test case %s for %q", markers.FormatMarker(projectCode, testCase.Seq), title)
			byTitle[title] = testCase
			continue
		}

		newTitles = append(newTitles, title)
	}

	if len(newTitles) > 0 {
		req := api.CreateTestCasesRequest{
			FolderPath: []string{cfg.Import.Folder},
			TestCases:  make([]api.NewTestCase, len(newTitles)),
		}

		for i, title := range newTitles {
			req.TestCases[i] = api.NewTestCase{Title: title, Tags: []string{cfg.Import.Tag}}
		}

		created, err := s.API.CreateTestCases(ctx, projectCode, req)
		if err != nil {
			return nil, errors.Wrap(err, "unable to create test cases")
		}

		if len(created) != len(newTitles) {
			return nil, errors.NewInternalError("requested %d new test cases but %d were created", len(newTitles), len(created))
		}

		for i, title := range newTitles {
			byTitle[title] = api.TestCase{ID: created[i].ID, Seq: created[i].Seq, Title: title}
		}

		s.Log.Infof("Created %d test cases in folder %q", len(created), cfg.Import.Folder)
	}

	mapped := make([]api.TestCase, 0, len(titles))
	mapping := make([]string, 0, len(titles))

	for _, title := range titles {
		testCase := byTitle[title]
		marker := markers.Marker{ProjectCode: projectCode, Seq: testCase.Seq}

		for _, result := range groups[title] {
			result.Name = marker.Prefix(result.Name)
		}

		mapped = append(mapped, testCase)
		mapping = append(mapping, fmt.Sprintf("%s: %s", marker, title))
	}

	s.writeMappingFile(cfg, mapping)

	return mapped, nil
}

// importedTestCases returns the test cases of the import folder by title. A missing folder yields no test cases.
func (s Service) importedTestCases(ctx context.Context, folder, projectCode string) (map[string]api.TestCase, error) {
	testCases := make(map[string]api.TestCase)

	folderID, err := s.importFolderID(ctx, folder, projectCode)
	if err != nil {
		return nil, err
	}

	if folderID == 0 {
		return testCases, nil
	}

	fetched := 0
	for page := 1; ; page++ {
		resp, err := s.API.GetTestCasesInFolder(ctx, projectCode, folderID, page, api.DefaultPageLimit)
		if err != nil {
			return nil, errors.Wrapf(err, "unable to fetch the test cases in folder %q", folder)
		}

		for _, testCase := range resp.Data {
			if _, ok := testCases[testCase.Title]; !ok {
				testCases[testCase.Title] = testCase
			}
		}

		fetched += len(resp.Data)
		if len(resp.Data) == 0 || fetched >= resp.Total {
			break
		}
	}

	return testCases, nil
}

// importFolderID searches the top-level folder with the given title. 0 means it does not exist yet.
func (s Service) importFolderID(ctx context.Context, folder, projectCode string) (int, error) {
	fetched := 0
	for page := 1; ; page++ {
		folders, err := s.API.GetFolders(ctx, projectCode, api.FolderQuery{
			Search: folder,
			Page:   page,
			Limit:  api.DefaultPageLimit,
		})
		if err != nil {
			return 0, errors.Wrap(err, "unable to fetch folders")
		}

		for _, candidate := range folders.Data {
			if candidate.Title == folder && candidate.ParentID == 0 {
				return candidate.ID, nil
			}
		}

		fetched += len(folders.Data)
		if len(folders.Data) == 0 || fetched >= folders.Total {
			return 0, nil
		}
	}
}

func (s Service) writeMappingFile(cfg UploadConfig, mapping []string) {
	wd, err := s.FileSystem.Getwd()
	if err != nil {
		s.Log.Warnf("Unable to determine the working directory: %s", err)
		return
	}

	path := filepath.Join(wd, cfg.Import.MappingFilePrefix+s.now().Format("20060102-150405")+".txt")

	if err := s.FileSystem.WriteFile(path, []byte(strings.Join(mapping, "\n")+"\n")); err != nil {
		s.Log.Warnf("Unable to write the test case mapping to %q: %s", path, err)
		return
	}

	s.Log.Infof("Wrote the markers of the new test cases to %q. Add them to your test names to match them directly.", path)
}
