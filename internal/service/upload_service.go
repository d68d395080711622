package service

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"strings"

	"github.com/abotl/abotl-web/internal/guard"
	"github.com/abotl/abotl-web/internal/model"
	"github.com/abotl/abotl-web/internal/session"
	"github.com/rs/zerolog"
)

// Upload validation errors. They are detected before any network call.
var (
	ErrTitleRequired     = errors.New("title is required")
	ErrVideoRequired     = errors.New("video file is required")
	ErrThumbnailRequired = errors.New("thumbnail image is required")
	ErrInvalidThumbnail  = errors.New("thumbnail is not an image")
	ErrInvalidVideo      = errors.New("video is not a video file under the size limit")
)

// UploadService drives the video upload flow and reports its progress.
type UploadService struct {
	backend Backend
	creds   *CredentialService
	media   *MediaService
	hub     *ProgressHub
	log     zerolog.Logger
}

// NewUploadService creates a new UploadService.
func NewUploadService(backend Backend, creds *CredentialService, media *MediaService, hub *ProgressHub, log zerolog.Logger) *UploadService {
	return &UploadService{
		backend: backend,
		creds:   creds,
		media:   media,
		hub:     hub,
		log:     log.With().Str("component", "upload_service").Logger(),
	}
}

// Begin marks the visitor as picking files, unless an upload is running.
func (s *UploadService) Begin(visitorID string) {
	if s.hub.Status(visitorID).State == UploadUploading {
		return
	}
	s.hub.Publish(visitorID, UploadStatus{State: UploadSelectingFiles})
}

// Validate checks the form in the order the visitor sees it: title, video,
// thumbnail, then the content of each file.
func (s *UploadService) Validate(up *model.VideoUpload) error {
	up.Title = strings.TrimSpace(up.Title)
	switch {
	case up.Title == "":
		return ErrTitleRequired
	case up.Video == nil:
		return ErrVideoRequired
	case up.Thumbnail == nil:
		return ErrThumbnailRequired
	}

	if err := s.media.CheckThumbnail(up.Thumbnail); err != nil {
		return fmt.Errorf("%w: %v", ErrInvalidThumbnail, err)
	}
	if err := s.media.CheckVideo(up.Video); err != nil {
		return fmt.Errorf("%w: %v", ErrInvalidVideo, err)
	}
	return nil
}

// Upload validates and sends the video. On success it returns the
// uploader's dashboard, or "/" when the session carries no id. Any failure
// puts the flow back to selecting files with the progress reset.
func (s *UploadService) Upload(ctx context.Context, visitorID string, sess session.Session, up model.VideoUpload) (string, error) {
	s.hub.Publish(visitorID, UploadStatus{State: UploadValidating})
	if err := s.Validate(&up); err != nil {
		s.hub.Publish(visitorID, UploadStatus{State: UploadSelectingFiles, Message: err.Error()})
		return "", err
	}

	s.hub.Publish(visitorID, UploadStatus{State: UploadUploading})
	log := s.log.With().Str("visitor_id", visitorID).Str("title", up.Title).Logger()
	log.Info().Int64("video_bytes", up.Video.Size).Msg("Upload started")

	err := s.creds.Run(ctx, visitorID, func(jar http.CookieJar) error {
		return s.backend.UploadVideo(ctx, jar, up, func(pct int) {
			s.hub.Publish(visitorID, UploadStatus{State: UploadUploading, Progress: pct})
		})
	})
	if err != nil {
		log.Warn().Err(err).Msg("Upload failed")
		s.hub.Publish(visitorID, UploadStatus{State: UploadFailed, Message: err.Error()})
		s.hub.Publish(visitorID, UploadStatus{State: UploadSelectingFiles})
		return "", fmt.Errorf("upload video: %w", err)
	}

	log.Info().Msg("Upload finished")
	s.hub.Publish(visitorID, UploadStatus{State: UploadSuccess, Progress: 100})

	if loc, ok := guard.DashboardPath(sess); ok {
		return loc, nil
	}
	return guard.HomePath, nil
}
