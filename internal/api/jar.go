package api

import (
	"net/http"
	"net/url"
	"strings"
	"sync"
	"time"

	"github.com/abotl/abotl-web/internal/model"
)

// Jar is an http.CookieJar for one visitor talking to one backend origin.
// It is loaded from and saved back to the credential relay around each
// page request.
type Jar struct {
	mu      sync.Mutex
	cookies map[string]model.StoredCookie
	changed bool
	now     func() time.Time
}

// NewJar builds a jar over previously stored cookies.
func NewJar(stored []model.StoredCookie) *Jar {
	j := &Jar{
		cookies: make(map[string]model.StoredCookie, len(stored)),
		now:     time.Now,
	}
	for _, c := range stored {
		j.cookies[c.Name] = c
	}
	return j
}

// SetCookies records cookies from a backend response. A cookie the backend
// expires is removed.
func (j *Jar) SetCookies(_ *url.URL, cookies []*http.Cookie) {
	j.mu.Lock()
	defer j.mu.Unlock()

	now := j.now()
	for _, c := range cookies {
		if c.Name == "" {
			continue
		}
		sc := model.StoredCookie{
			Name:     c.Name,
			Value:    c.Value,
			Path:     c.Path,
			Secure:   c.Secure,
			HttpOnly: c.HttpOnly,
		}
		switch {
		case c.MaxAge < 0:
			sc.Expires = now
		case c.MaxAge > 0:
			sc.Expires = now.Add(time.Duration(c.MaxAge) * time.Second)
		case !c.Expires.IsZero():
			sc.Expires = c.Expires
		}

		if sc.Expired(now) {
			if _, ok := j.cookies[c.Name]; ok {
				delete(j.cookies, c.Name)
				j.changed = true
			}
			continue
		}
		j.cookies[c.Name] = sc
		j.changed = true
	}
}

// Cookies returns the cookies to send to u.
func (j *Jar) Cookies(u *url.URL) []*http.Cookie {
	j.mu.Lock()
	defer j.mu.Unlock()

	now := j.now()
	var out []*http.Cookie
	for _, c := range j.cookies {
		if c.Expired(now) {
			continue
		}
		if c.Secure && u.Scheme != "https" {
			continue
		}
		if !pathMatch(u.Path, c.Path) {
			continue
		}
		out = append(out, c.HTTPCookie())
	}
	return out
}

// Stored returns the live cookies in their persisted form.
func (j *Jar) Stored() []model.StoredCookie {
	j.mu.Lock()
	defer j.mu.Unlock()

	now := j.now()
	out := make([]model.StoredCookie, 0, len(j.cookies))
	for _, c := range j.cookies {
		if !c.Expired(now) {
			out = append(out, c)
		}
	}
	return out
}

// Changed reports whether any response modified the jar.
func (j *Jar) Changed() bool {
	j.mu.Lock()
	defer j.mu.Unlock()
	return j.changed
}

func pathMatch(reqPath, cookiePath string) bool {
	if cookiePath == "" || cookiePath == "/" {
		return true
	}
	if reqPath == "" {
		reqPath = "/"
	}
	if reqPath == cookiePath {
		return true
	}
	if !strings.HasPrefix(reqPath, cookiePath) {
		return false
	}
	return strings.HasSuffix(cookiePath, "/") || reqPath[len(cookiePath)] == '/'
}
