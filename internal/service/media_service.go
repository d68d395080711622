package service

import (
	"errors"
	"fmt"
	"strings"

	"github.com/abotl/abotl-web/internal/config"
	"github.com/abotl/abotl-web/internal/model"
	"github.com/gabriel-vasile/mimetype"
)

// Sentinel errors for media checks.
var (
	ErrUnsupportedFileType = errors.New("unsupported file type")
	ErrFileTooLarge        = errors.New("file too large")
)

// MediaService checks files before they are forwarded to the backend. The
// declared Content-Type is not trusted; the first bytes are sniffed.
type MediaService struct {
	maxImageBytes int64
	maxVideoBytes int64
}

// NewMediaService creates a new MediaService.
func NewMediaService(cfg *config.Config) *MediaService {
	return &MediaService{
		maxImageBytes: cfg.MaxImageBytes,
		maxVideoBytes: cfg.MaxVideoBytes,
	}
}

// CheckImage accepts any image/* file within the image size limit.
func (s *MediaService) CheckImage(f *model.FilePart) error {
	return s.check(f, "image/", s.maxImageBytes)
}

// CheckThumbnail accepts any image/* file. Thumbnails carry no size limit of
// their own; the backend enforces one.
func (s *MediaService) CheckThumbnail(f *model.FilePart) error {
	return s.check(f, "image/", 0)
}

// CheckVideo accepts any video/* file strictly under the video size limit.
func (s *MediaService) CheckVideo(f *model.FilePart) error {
	if err := s.check(f, "video/", 0); err != nil {
		return err
	}
	if s.maxVideoBytes > 0 && f.Size >= s.maxVideoBytes {
		return fmt.Errorf("%w: %d bytes (max: %d)", ErrFileTooLarge, f.Size, s.maxVideoBytes)
	}
	return nil
}

func (s *MediaService) check(f *model.FilePart, family string, maxBytes int64) error {
	if maxBytes > 0 && f.Size > maxBytes {
		return fmt.Errorf("%w: %d bytes (max: %d)", ErrFileTooLarge, f.Size, maxBytes)
	}

	mime, err := sniff(f)
	if err != nil {
		return err
	}
	if !strings.HasPrefix(mime, family) {
		return fmt.Errorf("%w: %s (expected %s*)", ErrUnsupportedFileType, mime, family)
	}

	// Forward the sniffed type rather than whatever the browser declared.
	f.ContentType = mime
	return nil
}

func sniff(f *model.FilePart) (string, error) {
	src, err := f.Open()
	if err != nil {
		return "", fmt.Errorf("open %s: %w", f.Filename, err)
	}
	defer src.Close()

	m, err := mimetype.DetectReader(src)
	if err != nil {
		return "", fmt.Errorf("detect %s: %w", f.Filename, err)
	}
	mime, _, _ := strings.Cut(m.String(), ";")
	return mime, nil
}
