package handler

import (
	"errors"
	"mime/multipart"
	"net/http"

	"github.com/labstack/echo/v4"
)

// ImageStore saves uploads and canonicalizes stored paths.
type ImageStore interface {
	Save(fh *multipart.FileHeader) (string, error)
	Canonical(path string) (string, error)
}

// ImageReleaser deletes an image once nothing references it.
type ImageReleaser interface {
	ReleaseAsync(path, excludeID string)
}

// upload stores the optional multipart "image" field.  It returns "" when
// the request carries no file.
func upload(c echo.Context, files ImageStore) (string, error) {
	fh, err := c.FormFile("image")
	if errors.Is(err, http.ErrMissingFile) || errors.Is(err, http.ErrNotMultipart) {
		return "", nil
	}
	if err != nil {
		return "", err
	}
	return files.Save(fh)
}
