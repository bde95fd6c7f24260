package parsing

import (
	"context"
	"database/sql"
	"net/url"
	"path/filepath"
	"strings"

	// registers the "sqlite" driver
	_ "modernc.org/sqlite"

	"github.com/hypersequent/qas-cli/internal/errors"
)

// xcresultDatabase reads the relational database Xcode stores inside result bundles.
type xcresultDatabase struct {
	db *sql.DB
}

type xcresultRun struct {
	ID       int64
	Name     string
	SuiteID  sql.NullInt64
	Result   string
	Duration sql.NullFloat64 // seconds
}

type xcresultIssue struct {
	CompactDescription  string
	DetailedDescription string
	Frames              []xcresultFrame
}

type xcresultFrame struct {
	Symbol     string
	FilePath   string
	LineNumber int64
}

type xcresultExpectedFailure struct {
	FailureReason string
	Issue         *xcresultIssue
}

type xcresultAttachment struct {
	Name     string
	RefID    string
	Filename string
}

// xcresultSuite is a node of the suite arena. Parents are referenced by id.
type xcresultSuite struct {
	Name     string
	ParentID sql.NullInt64
}

// xcresultSuites resolves the `Parent › Child` path of suites and memoizes it.
type xcresultSuites struct {
	nodes map[int64]xcresultSuite
	paths map[int64]string
}

func openXCResultDatabase(path string) (*xcresultDatabase, error) {
	absolute, err := filepath.Abs(path)
	if err != nil {
		return nil, errors.WithStack(err)
	}

	dsn := (&url.URL{Scheme: "file", Path: absolute, RawQuery: "mode=ro"}).String()

	db, err := sql.Open("sqlite", dsn)
	if err != nil {
		return nil, errors.NewInputError("Unable to open XCResult database %q: %s", path, err)
	}

	return &xcresultDatabase{db: db}, nil
}

func (d *xcresultDatabase) Close() error {
	return errors.WithStack(d.db.Close())
}

func (d *xcresultDatabase) suites(ctx context.Context) (*xcresultSuites, error) {
	rows, err := d.db.QueryContext(ctx, `SELECT rowid, name, parentSuite_fk FROM TestSuites`)
	if err != nil {
		return nil, errors.WithStack(err)
	}
	defer rows.Close()

	suites := &xcresultSuites{nodes: make(map[int64]xcresultSuite), paths: make(map[int64]string)}
	for rows.Next() {
		var id int64
		var name sql.NullString
		var suite xcresultSuite

		if err := rows.Scan(&id, &name, &suite.ParentID); err != nil {
			return nil, errors.WithStack(err)
		}

		suite.Name = name.String
		suites.nodes[id] = suite
	}

	return suites, errors.WithStack(rows.Err())
}

// Path returns the names of the suite and all its ancestors, outermost first.
func (s *xcresultSuites) Path(id int64) string {
	if path, ok := s.paths[id]; ok {
		return path
	}

	names := make([]string, 0)
	visited := make(map[int64]struct{})
	for current, ok := id, true; ok; {
		if _, seen := visited[current]; seen {
			break
		}
		visited[current] = struct{}{}

		suite, found := s.nodes[current]
		if !found {
			break
		}

		if suite.Name != "" {
			names = append([]string{suite.Name}, names...)
		}
		current, ok = suite.ParentID.Int64, suite.ParentID.Valid
	}

	path := strings.Join(names, playwrightTitleSeparator)
	s.paths[id] = path

	return path
}

// runs returns the last run of every test case.
func (d *xcresultDatabase) runs(ctx context.Context) ([]xcresultRun, error) {
	rows, err := d.db.QueryContext(ctx, `
		SELECT r.rowid, c.name, c.testSuite_fk, r.result, r.duration
		FROM TestCaseRuns r
		JOIN TestCases c ON c.rowid = r.testCase_fk
		WHERE r.rowid IN (SELECT MAX(rowid) FROM TestCaseRuns GROUP BY testCase_fk)
		ORDER BY c.rowid`)
	if err != nil {
		return nil, errors.WithStack(err)
	}
	defer rows.Close()

	runs := make([]xcresultRun, 0)
	for rows.Next() {
		var run xcresultRun
		var name, result sql.NullString

		if err := rows.Scan(&run.ID, &name, &run.SuiteID, &result, &run.Duration); err != nil {
			return nil, errors.WithStack(err)
		}

		run.Name = name.String
		run.Result = result.String
		runs = append(runs, run)
	}

	return runs, errors.WithStack(rows.Err())
}

func (d *xcresultDatabase) skipNotices(ctx context.Context, runID int64) ([]string, error) {
	return d.strings(ctx, `SELECT message FROM SkipNotices WHERE testCaseRun_fk = ? ORDER BY rowid`, runID)
}

func (d *xcresultDatabase) expectedFailures(ctx context.Context, runID int64) ([]xcresultExpectedFailure, error) {
	rows, err := d.db.QueryContext(ctx, `
		SELECT ef.failureReason, i.rowid, i.compactDescription, i.detailedDescription, i.sourceCodeContext_fk
		FROM ExpectedFailures ef
		LEFT JOIN TestIssues i ON i.rowid = ef.issue_fk
		WHERE ef.testCaseRun_fk = ?
		ORDER BY ef.rowid`, runID)
	if err != nil {
		return nil, errors.WithStack(err)
	}

	type row struct {
		reason    sql.NullString
		issueID   sql.NullInt64
		compact   sql.NullString
		detailed  sql.NullString
		contextID sql.NullInt64
	}

	scanned := make([]row, 0)
	for rows.Next() {
		var r row
		if err := rows.Scan(&r.reason, &r.issueID, &r.compact, &r.detailed, &r.contextID); err != nil {
			rows.Close()
			return nil, errors.WithStack(err)
		}
		scanned = append(scanned, r)
	}
	if err := rows.Close(); err != nil {
		return nil, errors.WithStack(err)
	}

	failures := make([]xcresultExpectedFailure, 0, len(scanned))
	for _, r := range scanned {
		failure := xcresultExpectedFailure{FailureReason: r.reason.String}

		if r.issueID.Valid {
			issue := xcresultIssue{CompactDescription: r.compact.String, DetailedDescription: r.detailed.String}
			if r.contextID.Valid {
				if issue.Frames, err = d.frames(ctx, r.contextID.Int64); err != nil {
					return nil, err
				}
			}
			failure.Issue = &issue
		}

		failures = append(failures, failure)
	}

	return failures, nil
}

// issues returns the issues of a run that are not part of an expected failure.
func (d *xcresultDatabase) issues(ctx context.Context, runID int64) ([]xcresultIssue, error) {
	rows, err := d.db.QueryContext(ctx, `
		SELECT compactDescription, detailedDescription, sourceCodeContext_fk
		FROM TestIssues
		WHERE testCaseRun_fk = ?
			AND rowid NOT IN (SELECT issue_fk FROM ExpectedFailures WHERE issue_fk IS NOT NULL)
		ORDER BY rowid`, runID)
	if err != nil {
		return nil, errors.WithStack(err)
	}

	issues := make([]xcresultIssue, 0)
	contexts := make([]sql.NullInt64, 0)
	for rows.Next() {
		var compact, detailed sql.NullString
		var contextID sql.NullInt64

		if err := rows.Scan(&compact, &detailed, &contextID); err != nil {
			rows.Close()
			return nil, errors.WithStack(err)
		}

		issues = append(issues, xcresultIssue{CompactDescription: compact.String, DetailedDescription: detailed.String})
		contexts = append(contexts, contextID)
	}
	if err := rows.Close(); err != nil {
		return nil, errors.WithStack(err)
	}

	for i, contextID := range contexts {
		if !contextID.Valid {
			continue
		}

		if issues[i].Frames, err = d.frames(ctx, contextID.Int64); err != nil {
			return nil, err
		}
	}

	return issues, nil
}

// frames returns the symbolicated stack frames of a source code context.
func (d *xcresultDatabase) frames(ctx context.Context, contextID int64) ([]xcresultFrame, error) {
	rows, err := d.db.QueryContext(ctx, `
		SELECT si.symbolName, l.filePath, l.lineNumber
		FROM SourceCodeFrames f
		LEFT JOIN SourceCodeSymbolInfos si ON si.rowid = f.symbolInfo_fk
		LEFT JOIN SourceCodeLocations l ON l.rowid = si.location_fk
		WHERE f.context_fk = ?
		ORDER BY f.orderInContext`, contextID)
	if err != nil {
		return nil, errors.WithStack(err)
	}
	defer rows.Close()

	frames := make([]xcresultFrame, 0)
	for rows.Next() {
		var symbol, filePath sql.NullString
		var lineNumber sql.NullInt64

		if err := rows.Scan(&symbol, &filePath, &lineNumber); err != nil {
			return nil, errors.WithStack(err)
		}

		if !symbol.Valid && !filePath.Valid {
			continue
		}

		frames = append(frames, xcresultFrame{
			Symbol:     symbol.String,
			FilePath:   filePath.String,
			LineNumber: lineNumber.Int64,
		})
	}

	return frames, errors.WithStack(rows.Err())
}

func (d *xcresultDatabase) attachments(ctx context.Context, runID int64) ([]xcresultAttachment, error) {
	rows, err := d.db.QueryContext(ctx, `
		SELECT a.name, a.filenameOverride, a.xcResultKitPayloadRefId
		FROM Attachments a
		JOIN Activities act ON act.rowid = a.activity_fk
		WHERE act.testCaseRun_fk = ?
		ORDER BY a.rowid`, runID)
	if err != nil {
		return nil, errors.WithStack(err)
	}
	defer rows.Close()

	attachments := make([]xcresultAttachment, 0)
	for rows.Next() {
		var name, filenameOverride, refID sql.NullString

		if err := rows.Scan(&name, &filenameOverride, &refID); err != nil {
			return nil, errors.WithStack(err)
		}

		if !refID.Valid || refID.String == "" {
			continue
		}

		filename := filenameOverride.String
		if filename == "" {
			filename = name.String
		}

		attachments = append(attachments, xcresultAttachment{Name: name.String, RefID: refID.String, Filename: filename})
	}

	return attachments, errors.WithStack(rows.Err())
}

func (d *xcresultDatabase) strings(ctx context.Context, query string, args ...any) ([]string, error) {
	rows, err := d.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, errors.WithStack(err)
	}
	defer rows.Close()

	values := make([]string, 0)
	for rows.Next() {
		var value sql.NullString
		if err := rows.Scan(&value); err != nil {
			return nil, errors.WithStack(err)
		}

		if value.String != "" {
			values = append(values, value.String)
		}
	}

	return values, errors.WithStack(rows.Err())
}
