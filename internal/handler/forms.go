package handler

import (
	"errors"
	"net/http"

	"github.com/abotl/abotl-web/internal/model"
	"github.com/abotl/abotl-web/internal/service"
	"github.com/gin-gonic/gin"
)

// optionalFile returns the uploaded file under field, or nil when the
// visitor picked none.
func optionalFile(c *gin.Context, field string) (*model.FilePart, error) {
	fh, err := c.FormFile(field)
	switch {
	case errors.Is(err, http.ErrMissingFile), errors.Is(err, http.ErrNotMultipart):
		return nil, nil
	case err != nil:
		return nil, err
	}
	return model.FileFromHeader(fh), nil
}

// fileErrorMessage maps a rejected image onto the message shown under the
// file input.
func fileErrorMessage(err error) (string, bool) {
	switch {
	case errors.Is(err, service.ErrUnsupportedFileType):
		return "Please select a valid image file", true
	case errors.Is(err, service.ErrFileTooLarge):
		return "The selected image is too large", true
	}
	return "", false
}
