package parsing

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"math"
	"os"
	"path/filepath"
	"strings"

	"github.com/kballard/go-shellquote"
	"github.com/klauspost/compress/zstd"
	"go.uber.org/zap"

	"github.com/hypersequent/qas-cli/internal/errors"
	"github.com/hypersequent/qas-cli/internal/exec"
	"github.com/hypersequent/qas-cli/internal/fs"
	"github.com/hypersequent/qas-cli/internal/testing"
)

// XCResultParser parses Xcode result bundles (`*.xcresult`) through the SQLite database stored inside them. Bundles
// without a database get one generated by `xcresulttool`.
type XCResultParser struct {
	FileSystem fs.FileSystem
	Log        *zap.SugaredLogger
	TaskRunner TaskRunner
}

const (
	xcresultDatabaseName = "database.sqlite3"
	xcresultDataDir      = "Data"
)

var (
	zstdMagic = []byte{0x28, 0xB5, 0x2F, 0xFD}

	// xcresultIgnoredAttachmentPrefixes mark attachments Xcode creates on its own.
	xcresultIgnoredAttachmentPrefixes = []string{"SynthesizedEvent_", "kXCTAttachment"}
)

func (p XCResultParser) Parse(
	ctx context.Context,
	input string,
	_ string,
	_ testing.ParserOptions,
) ([]testing.TestCaseResult, error) {
	if info, err := p.FileSystem.Stat(input); err != nil || !info.IsDir() {
		return nil, errors.NewInputError("%q is not an XCResult bundle", input)
	}

	databasePath := filepath.Join(input, xcresultDatabaseName)
	if err := p.ensureDatabase(ctx, input, databasePath); err != nil {
		return nil, err
	}

	db, err := openXCResultDatabase(databasePath)
	if err != nil {
		return nil, err
	}
	defer db.Close()

	results, refs, err := p.readResults(ctx, db)
	if err != nil {
		return nil, errors.NewInputError("Unable to read XCResult database %q: %s", databasePath, err)
	}

	decoder, err := zstd.NewReader(nil)
	if err != nil {
		return nil, errors.NewInternalError("unable to create zstd decoder: %s", err)
	}
	defer decoder.Close()

	paths := make([][]string, len(refs))
	for i, resultRefs := range refs {
		paths[i] = make([]string, len(resultRefs))
		for j, ref := range resultRefs {
			paths[i][j] = filepath.Join(xcresultDataDir, "data."+ref.RefID)
		}
	}

	for i, resolved := range resolveAttachments(ctx, p.FileSystem, paths, input) {
		for j := range resolved {
			resolved[j].Filename = refs[i][j].Filename
			resolved[j] = p.decompress(decoder, resolved[j])
		}
		results[i].Attachments = resolved
	}

	return results, nil
}

// ensureDatabase runs `xcresulttool` once if the bundle does not contain a database yet.
func (p XCResultParser) ensureDatabase(ctx context.Context, bundle, databasePath string) error {
	_, err := p.FileSystem.Stat(databasePath)
	if err == nil {
		return nil
	}
	if !errors.Is(err, os.ErrNotExist) {
		return errors.NewInputError("Unable to access %q: %s", databasePath, err)
	}

	if p.TaskRunner == nil {
		return errors.NewInputError("%q does not contain a database and xcresulttool is not available", bundle)
	}

	cfg := exec.CommandConfig{
		Name:   "xcrun",
		Args:   []string{"xcresulttool", "get", "test-results", "summary", "--path", bundle},
		Stdout: io.Discard,
	}
	p.Log.Debugf("Generating XCResult database: %s", shellquote.Join(cfg.Argv()...))

	if err := exec.Run(ctx, p.TaskRunner, cfg); err != nil {
		return errors.NewInputError("Unable to generate the database of %q: %s", bundle, err)
	}

	if _, err := p.FileSystem.Stat(databasePath); err != nil {
		return errors.NewInputError("xcresulttool did not generate a database for %q", bundle)
	}

	return nil
}

func (p XCResultParser) readResults(
	ctx context.Context,
	db *xcresultDatabase,
) ([]testing.TestCaseResult, [][]xcresultAttachment, error) {
	suites, err := db.suites(ctx)
	if err != nil {
		return nil, nil, err
	}

	runs, err := db.runs(ctx)
	if err != nil {
		return nil, nil, err
	}

	results := make([]testing.TestCaseResult, 0, len(runs))
	refs := make([][]xcresultAttachment, 0, len(runs))

	for _, run := range runs {
		status := p.status(run.Result)

		message, err := p.message(ctx, db, run.ID, status)
		if err != nil {
			return nil, nil, err
		}

		attachments, err := db.attachments(ctx, run.ID)
		if err != nil {
			return nil, nil, err
		}

		folder := ""
		if run.SuiteID.Valid {
			folder = suites.Path(run.SuiteID.Int64)
		}

		var timeTaken *int64
		if run.Duration.Valid && run.Duration.Float64 >= 0 && !math.IsInf(run.Duration.Float64, 0) {
			timeTaken = testing.Milliseconds(int64(math.Round(run.Duration.Float64 * 1000)))
		}

		results = append(results, testing.TestCaseResult{
			Name:        run.Name,
			Folder:      folder,
			Status:      status,
			Message:     message,
			TimeTaken:   timeTaken,
			Attachments: make([]testing.Attachment, 0),
		})
		refs = append(refs, p.userAttachments(attachments))
	}

	return results, refs, nil
}

func (p XCResultParser) status(result string) testing.TestStatus {
	switch result {
	case "success":
		return testing.TestStatusPassed
	case "failure":
		return testing.TestStatusFailed
	case "expected failure":
		return testing.TestStatusBlocked
	default:
		// skipped and anything we do not recognize
		return testing.TestStatusSkipped
	}
}

func (p XCResultParser) message(
	ctx context.Context,
	db *xcresultDatabase,
	runID int64,
	status testing.TestStatus,
) (string, error) {
	var message strings.Builder

	switch status {
	case testing.TestStatusSkipped:
		notices, err := db.skipNotices(ctx, runID)
		if err != nil {
			return "", err
		}

		for _, notice := range notices {
			message.WriteString(codeBlock(notice))
		}
	case testing.TestStatusBlocked:
		failures, err := db.expectedFailures(ctx, runID)
		if err != nil {
			return "", err
		}

		for _, failure := range failures {
			message.WriteString(paragraph(failure.FailureReason))
			if failure.Issue != nil {
				message.WriteString(codeBlock(failure.Issue.text()))
			}
		}
	case testing.TestStatusFailed:
		issues, err := db.issues(ctx, runID)
		if err != nil {
			return "", err
		}

		for _, issue := range issues {
			message.WriteString(codeBlock(issue.text()))
		}
	case testing.TestStatusPassed:
		// nothing to add for passing tests
	}

	return message.String(), nil
}

func (p XCResultParser) userAttachments(attachments []xcresultAttachment) []xcresultAttachment {
	filtered := make([]xcresultAttachment, 0, len(attachments))

outer:
	for _, attachment := range attachments {
		for _, prefix := range xcresultIgnoredAttachmentPrefixes {
			if strings.HasPrefix(attachment.Filename, prefix) || strings.HasPrefix(attachment.Name, prefix) {
				continue outer
			}
		}

		filtered = append(filtered, attachment)
	}

	return filtered
}

// decompress inflates Zstandard compressed payloads. Other payloads are returned unchanged.
func (p XCResultParser) decompress(decoder *zstd.Decoder, attachment testing.Attachment) testing.Attachment {
	if attachment.Err != nil || !bytes.HasPrefix(attachment.Buffer, zstdMagic) {
		return attachment
	}

	decompressed, err := decoder.DecodeAll(attachment.Buffer, nil)
	if err != nil {
		return testing.Attachment{
			Filename: attachment.Filename,
			Err: errors.NewAttachmentError(
				attachment.Filename, "Unable to decompress attachment %s: %s", attachment.Filename, err,
			),
		}
	}

	return testing.Attachment{Filename: attachment.Filename, Buffer: decompressed}
}

// text renders the issue with its stack frames as `symbol (file:line)`.
func (i xcresultIssue) text() string {
	description := i.DetailedDescription
	if description == "" {
		description = i.CompactDescription
	}

	lines := []string{description}
	for _, frame := range i.Frames {
		switch {
		case frame.FilePath != "" && frame.Symbol != "":
			lines = append(lines, fmt.Sprintf("%s (%s:%d)", frame.Symbol, frame.FilePath, frame.LineNumber))
		case frame.FilePath != "":
			lines = append(lines, fmt.Sprintf("%s:%d", frame.FilePath, frame.LineNumber))
		default:
			lines = append(lines, frame.Symbol)
		}
	}

	return strings.Join(lines, "\n")
}
