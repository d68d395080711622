package model

import (
	"net/http"
	"time"
)

// StoredCookie is one backend cookie relayed on a visitor's behalf.
type StoredCookie struct {
	Name     string    `json:"name"`
	Value    string    `json:"value"`
	Path     string    `json:"path,omitempty"`
	Expires  time.Time `json:"expires,omitempty"`
	Secure   bool      `json:"secure,omitempty"`
	HttpOnly bool      `json:"httpOnly,omitempty"`
}

// Expired reports whether the cookie has an expiry at or before now.
func (s StoredCookie) Expired(now time.Time) bool {
	return !s.Expires.IsZero() && !s.Expires.After(now)
}

// HTTPCookie converts the stored form back into a request cookie.
func (s StoredCookie) HTTPCookie() *http.Cookie {
	return &http.Cookie{Name: s.Name, Value: s.Value}
}
