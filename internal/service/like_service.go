package service

import (
	"context"
	"fmt"
	"net/http"
	"sync"
	"time"

	"github.com/abotl/abotl-web/internal/model"
	"github.com/rs/zerolog"
	"golang.org/x/sync/singleflight"
)

// LikeResult is the state after a toggle. Likes is the backend's count.
type LikeResult struct {
	VideoID string `json:"videoId"`
	Liked   bool   `json:"liked"`
	Likes   int    `json:"likes"`
}

type visitorLikes struct {
	liked   map[string]bool
	touched time.Time
}

// LikeService keeps each visitor's liked/not-liked view of the explore grid
// in memory only. The backend count is always taken as-is.
type LikeService struct {
	backend Backend
	creds   *CredentialService
	log     zerolog.Logger

	mu       sync.Mutex
	visitors map[string]*visitorLikes
	ttl      time.Duration
	now      func() time.Time

	inflight singleflight.Group
}

// NewLikeService creates a new LikeService. State of a visitor idle for
// longer than ttl is forgotten.
func NewLikeService(backend Backend, creds *CredentialService, ttl time.Duration, log zerolog.Logger) *LikeService {
	return &LikeService{
		backend:  backend,
		creds:    creds,
		log:      log.With().Str("component", "like_service").Logger(),
		visitors: make(map[string]*visitorLikes),
		ttl:      ttl,
		now:      time.Now,
	}
}

// Liked returns the ids among videos the visitor currently likes.
func (s *LikeService) Liked(visitorID string, videos []model.Video) map[string]bool {
	s.mu.Lock()
	defer s.mu.Unlock()

	out := make(map[string]bool)
	v := s.visitor(visitorID)
	for _, video := range videos {
		if v.liked[video.ID] {
			out[video.ID] = true
		}
	}
	return out
}

// Toggle likes a not-liked video or unlikes a liked one. Concurrent toggles
// of the same video by the same visitor share one backend request. On
// failure the state is left as it was.
func (s *LikeService) Toggle(ctx context.Context, visitorID, videoID string) (LikeResult, error) {
	key := visitorID + "\x00" + videoID
	res, err, shared := s.inflight.Do(key, func() (any, error) {
		return s.toggle(ctx, visitorID, videoID)
	})
	if shared {
		s.log.Debug().Str("video_id", videoID).Msg("Joined in-flight like toggle")
	}
	if err != nil {
		return LikeResult{}, err
	}
	return res.(LikeResult), nil
}

func (s *LikeService) toggle(ctx context.Context, visitorID, videoID string) (LikeResult, error) {
	s.mu.Lock()
	liked := s.visitor(visitorID).liked[videoID]
	s.mu.Unlock()

	action := model.ActionLike
	if liked {
		action = model.ActionUnlike
	}

	var likes int
	err := s.creds.Run(ctx, visitorID, func(jar http.CookieJar) error {
		var err error
		likes, err = s.backend.ToggleLike(ctx, jar, videoID, action)
		return err
	})
	if err != nil {
		return LikeResult{}, fmt.Errorf("%s video: %w", action, err)
	}

	s.mu.Lock()
	v := s.visitor(visitorID)
	if liked {
		delete(v.liked, videoID)
	} else {
		v.liked[videoID] = true
	}
	s.mu.Unlock()

	return LikeResult{VideoID: videoID, Liked: !liked, Likes: likes}, nil
}

// Forget drops everything known about the visitor. A nil service is a
// no-op.
func (s *LikeService) Forget(visitorID string) {
	if s == nil {
		return
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.visitors, visitorID)
}

// Sweep forgets visitors idle for longer than the TTL and reports how many.
func (s *LikeService) Sweep() int {
	s.mu.Lock()
	defer s.mu.Unlock()

	now := s.now()
	n := 0
	for id, v := range s.visitors {
		if s.idle(v, now) {
			delete(s.visitors, id)
			n++
		}
	}
	return n
}

func (s *LikeService) idle(v *visitorLikes, now time.Time) bool {
	return s.ttl > 0 && now.Sub(v.touched) > s.ttl
}

// visitor returns the visitor's state, starting afresh when it went idle.
// Caller holds mu.
func (s *LikeService) visitor(visitorID string) *visitorLikes {
	now := s.now()
	v, ok := s.visitors[visitorID]
	if !ok || s.idle(v, now) {
		v = &visitorLikes{liked: make(map[string]bool)}
		s.visitors[visitorID] = v
	}
	v.touched = now
	return v
}
