package service

import (
	"context"
	"net/http"
	"time"

	"github.com/abotl/abotl-web/internal/api"
	"github.com/abotl/abotl-web/internal/model"
	"github.com/abotl/abotl-web/internal/repository"
	"github.com/golang-jwt/jwt/v5"
	"github.com/rs/zerolog"
)

// CredentialService relays the backend's session cookies for each visitor.
type CredentialService struct {
	repo repository.CredentialRepository
	ttl  time.Duration
	log  zerolog.Logger
	now  func() time.Time
}

// NewCredentialService creates a new CredentialService. ttl caps how long a
// visitor's cookies are kept.
func NewCredentialService(repo repository.CredentialRepository, ttl time.Duration, log zerolog.Logger) *CredentialService {
	return &CredentialService{
		repo: repo,
		ttl:  ttl,
		log:  log.With().Str("component", "credential_service").Logger(),
		now:  time.Now,
	}
}

// Open loads the visitor's cookies into a jar. A store failure yields an
// empty jar; the backend then treats the request as signed out.
func (s *CredentialService) Open(ctx context.Context, visitorID string) *api.Jar {
	stored, err := s.repo.Load(ctx, visitorID)
	if err != nil {
		s.log.Warn().Err(err).Str("visitor_id", visitorID).Msg("Failed to load credentials")
	}
	return api.NewJar(stored)
}

// Persist writes the jar back when a backend response changed it.
func (s *CredentialService) Persist(ctx context.Context, visitorID string, jar *api.Jar) error {
	if !jar.Changed() {
		return nil
	}
	cookies := jar.Stored()
	return s.repo.Save(ctx, visitorID, cookies, s.expiry(cookies))
}

// Forget drops every cookie kept for the visitor.
func (s *CredentialService) Forget(ctx context.Context, visitorID string) error {
	return s.repo.Delete(ctx, visitorID)
}

// Run opens the visitor's jar, calls fn with it and persists whatever the
// backend set, also when fn fails.
func (s *CredentialService) Run(ctx context.Context, visitorID string, fn func(jar http.CookieJar) error) error {
	jar := s.Open(ctx, visitorID)
	err := fn(jar)
	if perr := s.Persist(context.WithoutCancel(ctx), visitorID, jar); perr != nil {
		s.log.Error().Err(perr).Str("visitor_id", visitorID).Msg("Failed to persist credentials")
	}
	return err
}

// expiry is the earliest of the configured TTL, any cookie expiry and the
// exp claim of any JWT-shaped cookie value.
func (s *CredentialService) expiry(cookies []model.StoredCookie) time.Duration {
	now := s.now()
	ttl := s.ttl

	for _, c := range cookies {
		if !c.Expires.IsZero() {
			ttl = min(ttl, c.Expires.Sub(now))
		}
		if exp, ok := tokenExpiry(c.Value); ok {
			ttl = min(ttl, exp.Sub(now))
		}
	}
	return ttl
}

// tokenExpiry reads the exp claim without verifying the signature; the
// backend owns the key and remains the only verifier.
func tokenExpiry(value string) (time.Time, bool) {
	var claims jwt.RegisteredClaims
	if _, _, err := jwt.NewParser().ParseUnverified(value, &claims); err != nil {
		return time.Time{}, false
	}
	if claims.ExpiresAt == nil {
		return time.Time{}, false
	}
	return claims.ExpiresAt.Time, true
}
