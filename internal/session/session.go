// Package session holds the visitor's cached belief about who is logged in.
//
// The values mirror what the browser app kept in local storage: a plain
// "role" string and a JSON-encoded "user" object. They are trusted only for
// deciding what to render; the remote backend authorizes every request on
// its own.
package session

import (
	"encoding/json"
	"errors"

	"github.com/gin-gonic/gin"
)

// Storage keys.
const (
	KeyRole = "role"
	KeyUser = "user"
)

// ErrInvalidSession is returned by Set when the role is unknown or the user
// carries no id.
var ErrInvalidSession = errors.New("session requires a known role and a user id")

// Role selects the dashboard and API namespace a visitor uses.
type Role string

const (
	RoleStudent Role = "student"
	RoleTeacher Role = "teacher"
)

// Valid reports whether r is one of the known roles.
func (r Role) Valid() bool {
	return r == RoleStudent || r == RoleTeacher
}

// ParseRole returns the role named by s, or "" when s is not a known role.
func ParseRole(s string) Role {
	r := Role(s)
	if !r.Valid() {
		return ""
	}
	return r
}

// User is the canonical user object returned by the backend on login,
// registration and profile update.
type User struct {
	ID       string `json:"id"`
	Username string `json:"username,omitempty"`
	Email    string `json:"email,omitempty"`
	ImageURL string `json:"imageURL,omitempty"`
}

// UnmarshalJSON accepts the backend's "_id" as well as "id".
func (u *User) UnmarshalJSON(data []byte) error {
	var raw struct {
		MongoID  string `json:"_id"`
		ID       string `json:"id"`
		Username string `json:"username"`
		Email    string `json:"email"`
		ImageURL string `json:"imageURL"`
	}
	if err := json.Unmarshal(data, &raw); err != nil {
		return err
	}

	u.ID = raw.MongoID
	if u.ID == "" {
		u.ID = raw.ID
	}
	u.Username = raw.Username
	u.Email = raw.Email
	u.ImageURL = raw.ImageURL
	return nil
}

// DisplayName is what the dashboards greet the visitor with.
func (u *User) DisplayName(fallback string) string {
	switch {
	case u == nil:
		return fallback
	case u.Username != "":
		return u.Username
	case u.Email != "":
		return u.Email
	default:
		return fallback
	}
}

// Session is the decoded pair of stored keys. The zero value is "no session".
type Session struct {
	Role Role
	User *User
}

// IsAuthenticated is true iff a role is present.
func (s Session) IsAuthenticated() bool {
	return s.Role != ""
}

// UserID returns the stored user's id, or "" when there is none.
func (s Session) UserID() string {
	if s.User == nil {
		return ""
	}
	return s.User.ID
}

// FlashKind classifies a transient notification.
type FlashKind string

const (
	FlashSuccess FlashKind = "success"
	FlashError   FlashKind = "error"
	FlashInfo    FlashKind = "info"
)

// Flash is a one-shot user-facing notification shown on the next page.
type Flash struct {
	Kind    FlashKind `json:"kind"`
	Message string    `json:"message"`
}

// Store reads and writes the session of the visitor behind a request.
type Store interface {
	// Get never fails: anything absent or unreadable is "no session".
	Get(c *gin.Context) Session
	// Set writes role and user together.
	Set(c *gin.Context, role Role, user User) error
	// Clear removes both keys.
	Clear(c *gin.Context) error
	// ID returns the visitor id, creating one if needed.
	ID(c *gin.Context) string
	AddFlash(c *gin.Context, f Flash)
	Flashes(c *gin.Context) []Flash
}

func validate(role Role, user User) error {
	if !role.Valid() || user.ID == "" {
		return ErrInvalidSession
	}
	return nil
}

// decode turns the raw stored strings into a Session, collapsing anything
// inconsistent to the empty session.
func decode(rawRole, rawUser string) (Session, error) {
	role := ParseRole(rawRole)
	if role == "" || rawUser == "" {
		return Session{}, nil
	}

	var u User
	if err := json.Unmarshal([]byte(rawUser), &u); err != nil {
		return Session{}, err
	}
	if u.ID == "" {
		return Session{}, nil
	}
	return Session{Role: role, User: &u}, nil
}
