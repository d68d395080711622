package model

import (
	"bytes"
	"io"
	"mime/multipart"
)

// FilePart is a file to be forwarded as one part of a multipart request.
type FilePart struct {
	Filename    string
	ContentType string
	Size        int64
	Open        func() (io.ReadCloser, error)
}

// FileFromHeader wraps an uploaded form file.
func FileFromHeader(h *multipart.FileHeader) *FilePart {
	if h == nil {
		return nil
	}
	return &FilePart{
		Filename:    h.Filename,
		ContentType: h.Header.Get("Content-Type"),
		Size:        h.Size,
		Open: func() (io.ReadCloser, error) {
			return h.Open()
		},
	}
}

// FileFromBytes builds a FilePart over an in-memory payload.
func FileFromBytes(filename, contentType string, b []byte) *FilePart {
	return &FilePart{
		Filename:    filename,
		ContentType: contentType,
		Size:        int64(len(b)),
		Open: func() (io.ReadCloser, error) {
			return io.NopCloser(bytes.NewReader(b)), nil
		},
	}
}
