package api

import (
	"bytes"
	"context"
	"mime/multipart"
	"net/http"

	"github.com/hypersequent/qas-cli/internal/errors"
)

// UploadFile stores a file on QA Sphere. The returned URL can be linked from result comments.
func (c Client) UploadFile(ctx context.Context, content []byte, filename string) (UploadedFile, error) {
	endpoint := "/file"

	body := new(bytes.Buffer)
	writer := multipart.NewWriter(body)

	part, err := writer.CreateFormFile("file", filename)
	if err != nil {
		return UploadedFile{}, errors.NewInternalError("unable to construct multipart request: %s", err)
	}

	if _, err := part.Write(content); err != nil {
		return UploadedFile{}, errors.NewInternalError("unable to construct multipart request: %s", err)
	}

	if err := writer.Close(); err != nil {
		return UploadedFile{}, errors.NewInternalError("unable to construct multipart request: %s", err)
	}

	resp, err := c.do(ctx, http.MethodPost, endpoint, nil, body, writer.FormDataContentType())
	if err != nil {
		return UploadedFile{}, err
	}
	defer resp.Body.Close()

	var uploaded UploadedFile
	if err := decodeResponse(endpoint, resp, &uploaded); err != nil {
		return UploadedFile{}, err
	}

	return uploaded, nil
}
