package cli

import (
	"context"
	"fmt"
	"html"
	"io"
	"strings"

	"github.com/fatih/color"
	"github.com/schollz/progressbar/v3"

	"github.com/hypersequent/qas-cli/internal/api"
	"github.com/hypersequent/qas-cli/internal/errors"
	"github.com/hypersequent/qas-cli/internal/testing"
)

type uploadedAttachment struct {
	Name string
	URL  string
}

// uploadResults submits the matched results one after the other. The first failure aborts the remaining uploads.
func (s Service) uploadResults(ctx context.Context, cfg UploadConfig, target runTarget, matches []match) error {
	bar := s.progressBar(len(matches))

	for i, match := range matches {
		bar.Describe(color.CyanString("Uploading %d of %d", i+1, len(matches)))

		comment := match.Result.Message

		if cfg.Attachments {
			attachments, err := s.uploadAttachments(ctx, match.Result)
			if err != nil {
				_ = bar.Clear()
				return errors.Wrapf(err, "unable to upload the attachments of %q", match.Result.Name)
			}

			comment += attachmentList(attachments)
		}

		err := s.API.SubmitResult(ctx, target.ProjectCode, target.RunID, match.TestCase.ID, api.SubmitResultRequest{
			Status:    match.Result.Status,
			Comment:   comment,
			TimeTaken: match.Result.TimeTaken,
		})
		if err != nil {
			_ = bar.Clear()
			return errors.Wrapf(err, "unable to submit the result of %q", match.Result.Name)
		}

		_ = bar.Add(1)
	}

	_ = bar.Finish()

	return nil
}

// checkAttachments fails on the first attachment that could not be read. It runs before a run is created or any
// result is submitted.
func (s Service) checkAttachments(matches []match) error {
	var firstErr error

	for _, match := range matches {
		for _, attachment := range match.Result.Attachments {
			if attachment.Err == nil {
				continue
			}

			s.Log.Errorf("Attachment %q of %q: %s", attachment.Filename, match.Result.Name, attachment.Err)

			if firstErr == nil {
				firstErr = attachment.Err
			}
		}
	}

	if firstErr == nil {
		return nil
	}

	if _, ok := errors.AsAttachmentError(firstErr); !ok {
		firstErr = errors.NewAttachmentError("", "%s", firstErr)
	}

	return errors.WithGuidance(
		firstErr,
		"Some attachments could not be read and strict attachment mode is enabled.",
		"Make sure the attachment paths exist relative to --attachment-base-dir or upload anyway with --force.",
	)
}

func (s Service) uploadAttachments(ctx context.Context, result testing.TestCaseResult) ([]uploadedAttachment, error) {
	uploaded := make([]uploadedAttachment, 0, len(result.Attachments))

	for _, attachment := range result.Attachments {
		if attachment.Err != nil {
			s.Log.Warnf("Skipping attachment %q of %q: %s", attachment.Filename, result.Name, attachment.Err)
			continue
		}

		if attachment.Buffer == nil {
			continue
		}

		file, err := s.API.UploadFile(ctx, attachment.Buffer, attachment.Filename)
		if err != nil {
			return nil, errors.Wrapf(err, "unable to upload %q", attachment.Filename)
		}

		uploaded = append(uploaded, uploadedAttachment{Name: attachment.Filename, URL: file.URL})
	}

	return uploaded, nil
}

// attachmentList renders links to the uploaded attachments, to be appended to a result comment.
func attachmentList(attachments []uploadedAttachment) string {
	if len(attachments) == 0 {
		return ""
	}

	var builder strings.Builder

	builder.WriteString("<p>Attachments:</p><ul>")
	for _, attachment := range attachments {
		fmt.Fprintf(
			&builder,
			`<li><a href="%s">%s</a></li>`,
			html.EscapeString(attachment.URL),
			html.EscapeString(attachment.Name),
		)
	}
	builder.WriteString("</ul>")

	return builder.String()
}

func (s Service) progressBar(count int) *progressbar.ProgressBar {
	writer := s.Progress
	if writer == nil {
		writer = io.Discard
	}

	return progressbar.NewOptions(count,
		progressbar.OptionSetWriter(writer),
		progressbar.OptionSetDescription(color.CyanString("Uploading 0 of %d", count)),
		progressbar.OptionSetWidth(30),
		progressbar.OptionSetTheme(progressbar.Theme{
			Saucer:        color.CyanString("█"),
			SaucerHead:    color.CyanString("█"),
			SaucerPadding: "░",
			BarStart:      "│",
			BarEnd:        "│",
		}),
		progressbar.OptionEnableColorCodes(true),
		progressbar.OptionClearOnFinish(),
		progressbar.OptionSetRenderBlankState(true),
	)
}
