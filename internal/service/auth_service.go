package service

import (
	"errors"
	"fmt"
	"net/http"

	"github.com/abotl/abotl-web/internal/api"
	"github.com/abotl/abotl-web/internal/guard"
	"github.com/abotl/abotl-web/internal/model"
	"github.com/abotl/abotl-web/internal/session"
	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog"
)

// Common auth errors.
var (
	// ErrNoSession means the backend accepted the request but returned no
	// user with an id, so nothing was stored.
	ErrNoSession = errors.New("backend returned no user")
	// ErrConfirmationRequired means the destructive action was not confirmed.
	ErrConfirmationRequired = errors.New("confirmation required")
)

// AuthOutcome is the result of a login or registration.
type AuthOutcome struct {
	// Location is where the visitor goes next.
	Location string
	// Message is the backend's own message, if any.
	Message string
}

// AuthService signs visitors in and out. It is the only writer of the
// session store.
type AuthService struct {
	backend Backend
	store   session.Store
	creds   *CredentialService
	media   *MediaService
	likes   *LikeService
	log     zerolog.Logger
}

// NewAuthService creates a new AuthService. The visitor's like state is
// dropped whenever the signed-in user changes, since it belongs to the user
// and not to the browser.
func NewAuthService(backend Backend, store session.Store, creds *CredentialService, media *MediaService, likes *LikeService, log zerolog.Logger) *AuthService {
	return &AuthService{
		backend: backend,
		store:   store,
		creds:   creds,
		media:   media,
		likes:   likes,
		log:     log.With().Str("component", "auth_service").Logger(),
	}
}

// Login authenticates against the backend and stores the returned user.
func (s *AuthService) Login(c *gin.Context, role session.Role, req model.LoginRequest) (*AuthOutcome, error) {
	var res *api.AuthResult
	err := s.creds.Run(c.Request.Context(), s.store.ID(c), func(jar http.CookieJar) error {
		var err error
		res, err = s.backend.Login(c.Request.Context(), jar, role, req)
		return err
	})
	if err != nil {
		return nil, fmt.Errorf("login: %w", err)
	}
	return s.establish(c, role, res)
}

// Register creates an account and signs the visitor in when the backend
// returns the new user.
func (s *AuthService) Register(c *gin.Context, role session.Role, req model.RegisterRequest) (*AuthOutcome, error) {
	if role == session.RoleTeacher {
		req.Subjects = KnownSubjects(req.Subjects)
	} else {
		req.Subjects = nil
	}
	if req.ProfilePicture != nil {
		if err := s.media.CheckImage(req.ProfilePicture); err != nil {
			return nil, err
		}
	}

	var res *api.AuthResult
	err := s.creds.Run(c.Request.Context(), s.store.ID(c), func(jar http.CookieJar) error {
		var err error
		res, err = s.backend.Register(c.Request.Context(), jar, role, req)
		return err
	})
	if err != nil {
		return nil, fmt.Errorf("register: %w", err)
	}
	return s.establish(c, role, res)
}

func (s *AuthService) establish(c *gin.Context, role session.Role, res *api.AuthResult) (*AuthOutcome, error) {
	out := &AuthOutcome{Location: guard.HomePath, Message: res.Message}
	if res.User == nil {
		return out, ErrNoSession
	}

	if err := s.store.Set(c, role, *res.User); err != nil {
		return nil, fmt.Errorf("store session: %w", err)
	}
	s.likes.Forget(s.store.ID(c))
	if loc, ok := guard.DashboardPath(session.Session{Role: role, User: res.User}); ok {
		out.Location = loc
	}

	s.log.Info().
		Str("role", string(role)).
		Str("user_id", res.User.ID).
		Msg("Visitor signed in")
	return out, nil
}

// Logout ends the backend session and always clears local state, even when
// the backend call fails.
func (s *AuthService) Logout(c *gin.Context, role session.Role) error {
	visitorID := s.store.ID(c)
	err := s.creds.Run(c.Request.Context(), visitorID, func(jar http.CookieJar) error {
		return s.backend.Logout(c.Request.Context(), jar, role)
	})
	if err != nil {
		s.log.Warn().Err(err).Str("visitor_id", visitorID).Msg("Backend logout failed, clearing locally")
	}
	return s.clear(c, visitorID)
}

// DeleteAccount removes the account once the visitor has typed the exact
// confirmation phrase. The session is kept when the backend refuses.
func (s *AuthService) DeleteAccount(c *gin.Context, role session.Role, form model.DeleteAccountForm) error {
	if !form.Confirm || form.Confirmation != model.DeleteConfirmation {
		return ErrConfirmationRequired
	}

	visitorID := s.store.ID(c)
	err := s.creds.Run(c.Request.Context(), visitorID, func(jar http.CookieJar) error {
		return s.backend.DeleteAccount(c.Request.Context(), jar, role)
	})
	if err != nil {
		return fmt.Errorf("delete account: %w", err)
	}

	s.log.Info().Str("role", string(role)).Str("visitor_id", visitorID).Msg("Account deleted")
	return s.clear(c, visitorID)
}

func (s *AuthService) clear(c *gin.Context, visitorID string) error {
	if err := s.creds.Forget(c.Request.Context(), visitorID); err != nil {
		s.log.Warn().Err(err).Str("visitor_id", visitorID).Msg("Failed to drop credentials")
	}
	s.likes.Forget(visitorID)
	if err := s.store.Clear(c); err != nil {
		return fmt.Errorf("clear session: %w", err)
	}
	return nil
}
