package service

import (
	"context"
	"fmt"
	"net/http"
	"strings"

	"github.com/abotl/abotl-web/internal/model"
	"github.com/rs/zerolog"
)

// VideoFilter narrows the explore grid.
type VideoFilter struct {
	Query    string
	Category string
}

// VideoService lists and deletes videos.
type VideoService struct {
	backend Backend
	creds   *CredentialService
	log     zerolog.Logger
}

// NewVideoService creates a new VideoService.
func NewVideoService(backend Backend, creds *CredentialService, log zerolog.Logger) *VideoService {
	return &VideoService{
		backend: backend,
		creds:   creds,
		log:     log.With().Str("component", "video_service").Logger(),
	}
}

// List returns the public videos matching the filter.
func (s *VideoService) List(ctx context.Context, visitorID string, filter VideoFilter) ([]model.Video, error) {
	var videos []model.Video
	err := s.creds.Run(ctx, visitorID, func(jar http.CookieJar) error {
		var err error
		videos, err = s.backend.ListVideos(ctx, jar)
		return err
	})
	if err != nil {
		return nil, fmt.Errorf("list videos: %w", err)
	}
	return FilterVideos(videos, filter), nil
}

// MyVideos returns the signed-in teacher's uploads.
func (s *VideoService) MyVideos(ctx context.Context, visitorID string) ([]model.Video, error) {
	var videos []model.Video
	err := s.creds.Run(ctx, visitorID, func(jar http.CookieJar) error {
		var err error
		videos, err = s.backend.MyVideos(ctx, jar)
		return err
	})
	if err != nil {
		return nil, fmt.Errorf("my videos: %w", err)
	}
	return videos, nil
}

// Delete removes one of the teacher's videos once confirmed.
func (s *VideoService) Delete(ctx context.Context, visitorID, videoID string, confirmed bool) error {
	if !confirmed {
		return ErrConfirmationRequired
	}
	err := s.creds.Run(ctx, visitorID, func(jar http.CookieJar) error {
		return s.backend.DeleteVideo(ctx, jar, videoID)
	})
	if err != nil {
		return fmt.Errorf("delete video: %w", err)
	}

	s.log.Info().Str("video_id", videoID).Msg("Video deleted")
	return nil
}

// FilterVideos keeps videos whose title or description contains the query
// (case-insensitive) and whose category matches, "All" or empty matching any.
func FilterVideos(videos []model.Video, f VideoFilter) []model.Video {
	query := strings.ToLower(strings.TrimSpace(f.Query))
	out := make([]model.Video, 0, len(videos))
	for _, v := range videos {
		if f.Category != "" && f.Category != model.CategoryAll && v.Category != f.Category {
			continue
		}
		if query != "" &&
			!strings.Contains(strings.ToLower(v.Title), query) &&
			!strings.Contains(strings.ToLower(v.Description), query) {
			continue
		}
		out = append(out, v)
	}
	return out
}
