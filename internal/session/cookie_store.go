package session

import (
	"encoding/gob"
	"encoding/json"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/gorilla/sessions"
	"github.com/rs/zerolog"
)

// CookieName is the name of the signed cookie carrying the session.
const CookieName = "abotl-session"

const keyVisitor = "visitor_id"

func init() {
	gob.Register(Flash{})
}

// CookieOptions configures the session cookie.
type CookieOptions struct {
	HashKey       []byte
	EncryptionKey []byte
	Secure        bool
	MaxAge        int
}

// CookieStore keeps the session in a signed, encrypted cookie so that, like
// browser local storage, it lives entirely on the visitor's side.
type CookieStore struct {
	store *sessions.CookieStore
	log   zerolog.Logger
}

// NewCookieStore creates a CookieStore. An empty EncryptionKey leaves the
// cookie signed but not encrypted.
func NewCookieStore(opts CookieOptions, log zerolog.Logger) *CookieStore {
	keys := [][]byte{opts.HashKey}
	if len(opts.EncryptionKey) > 0 {
		keys = append(keys, opts.EncryptionKey)
	}

	cs := sessions.NewCookieStore(keys...)
	cs.Options = &sessions.Options{
		Path:     "/",
		MaxAge:   opts.MaxAge,
		HttpOnly: true,
		Secure:   opts.Secure,
		SameSite: http.SameSiteLaxMode,
	}

	return &CookieStore{
		store: cs,
		log:   log.With().Str("component", "session_store").Logger(),
	}
}

// raw returns the gorilla session for the request. A cookie that fails
// verification yields a fresh, empty session.
func (s *CookieStore) raw(c *gin.Context) *sessions.Session {
	sess, err := s.store.Get(c.Request, CookieName)
	if err != nil {
		s.log.Debug().Err(err).Msg("Discarding unreadable session cookie")
	}
	return sess
}

func (s *CookieStore) save(c *gin.Context, sess *sessions.Session) error {
	return sess.Save(c.Request, c.Writer)
}

// Get implements Store.
func (s *CookieStore) Get(c *gin.Context) Session {
	sess := s.raw(c)
	rawRole, _ := sess.Values[KeyRole].(string)
	rawUser, _ := sess.Values[KeyUser].(string)

	out, err := decode(rawRole, rawUser)
	if err != nil {
		s.log.Debug().Err(err).Msg("Stored user is not valid JSON")
	}
	return out
}

// Set implements Store.
func (s *CookieStore) Set(c *gin.Context, role Role, user User) error {
	if err := validate(role, user); err != nil {
		return err
	}

	encoded, err := json.Marshal(user)
	if err != nil {
		return err
	}

	sess := s.raw(c)
	sess.Values[KeyRole] = string(role)
	sess.Values[KeyUser] = string(encoded)
	return s.save(c, sess)
}

// Clear implements Store.
func (s *CookieStore) Clear(c *gin.Context) error {
	sess := s.raw(c)
	delete(sess.Values, KeyRole)
	delete(sess.Values, KeyUser)
	return s.save(c, sess)
}

// ID implements Store.
func (s *CookieStore) ID(c *gin.Context) string {
	sess := s.raw(c)
	if id, ok := sess.Values[keyVisitor].(string); ok && id != "" {
		return id
	}

	id := uuid.New().String()
	sess.Values[keyVisitor] = id
	if err := s.save(c, sess); err != nil {
		s.log.Error().Err(err).Msg("Failed to persist visitor id")
	}
	return id
}

// AddFlash implements Store.
func (s *CookieStore) AddFlash(c *gin.Context, f Flash) {
	sess := s.raw(c)
	sess.AddFlash(f)
	if err := s.save(c, sess); err != nil {
		s.log.Error().Err(err).Msg("Failed to save flash")
	}
}

// Flashes implements Store.
func (s *CookieStore) Flashes(c *gin.Context) []Flash {
	sess := s.raw(c)
	raw := sess.Flashes()
	if len(raw) == 0 {
		return nil
	}

	out := make([]Flash, 0, len(raw))
	for _, v := range raw {
		if f, ok := v.(Flash); ok {
			out = append(out, f)
		}
	}
	if err := s.save(c, sess); err != nil {
		s.log.Error().Err(err).Msg("Failed to consume flashes")
	}
	return out
}
