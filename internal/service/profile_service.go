package service

import (
	"context"
	"fmt"
	"net/http"
	"slices"

	"github.com/abotl/abotl-web/internal/model"
	"github.com/abotl/abotl-web/internal/session"
	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog"
)

// ProfileService reads and edits the signed-in visitor's profile.
type ProfileService struct {
	backend Backend
	store   session.Store
	creds   *CredentialService
	media   *MediaService
	log     zerolog.Logger
}

// NewProfileService creates a new ProfileService.
func NewProfileService(backend Backend, store session.Store, creds *CredentialService, media *MediaService, log zerolog.Logger) *ProfileService {
	return &ProfileService{
		backend: backend,
		store:   store,
		creds:   creds,
		media:   media,
		log:     log.With().Str("component", "profile_service").Logger(),
	}
}

// Fetch loads the profile. The password is never part of it.
func (s *ProfileService) Fetch(ctx context.Context, visitorID string, role session.Role) (*model.Profile, error) {
	var p *model.Profile
	err := s.creds.Run(ctx, visitorID, func(jar http.CookieJar) error {
		var err error
		p, err = s.backend.FetchProfile(ctx, jar, role)
		return err
	})
	if err != nil {
		return nil, fmt.Errorf("fetch profile: %w", err)
	}
	return p, nil
}

// Update saves the edits. Subjects outside the catalogue are dropped, and a
// response carrying a user id refreshes the stored user.
func (s *ProfileService) Update(c *gin.Context, role session.Role, upd model.ProfileUpdate) (*model.Profile, error) {
	if role == session.RoleTeacher {
		upd.Subjects = KnownSubjects(upd.Subjects)
	} else {
		upd.Subjects = nil
	}
	if upd.ProfileImage != nil {
		if err := s.media.CheckImage(upd.ProfileImage); err != nil {
			return nil, err
		}
	}

	var p *model.Profile
	err := s.creds.Run(c.Request.Context(), s.store.ID(c), func(jar http.CookieJar) error {
		var err error
		p, err = s.backend.UpdateProfile(c.Request.Context(), jar, role, upd)
		return err
	})
	if err != nil {
		return nil, fmt.Errorf("update profile: %w", err)
	}

	if p.ID != "" {
		user := session.User{
			ID:       p.ID,
			Username: p.Username,
			Email:    p.Email,
			ImageURL: p.ProfileImage,
		}
		if err := s.store.Set(c, role, user); err != nil {
			s.log.Warn().Err(err).Msg("Failed to refresh stored user")
		}
	}
	return p, nil
}

// KnownSubjects keeps the picked subjects found in a catalogue, in the
// order picked and without duplicates.
func KnownSubjects(picked []string) []string {
	out := make([]string, 0, len(picked))
	for _, subject := range picked {
		if model.IsKnownSubject(subject) && !slices.Contains(out, subject) {
			out = append(out, subject)
		}
	}
	return out
}
