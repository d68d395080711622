package middleware

import (
	"net/http"

	"github.com/abotl/abotl-web/internal/guard"
	"github.com/abotl/abotl-web/internal/response"
	"github.com/abotl/abotl-web/internal/session"
	"github.com/gin-gonic/gin"
)

// Context keys set by the guard for downstream handlers.
const (
	ContextKeySession = "session"
	ContextKeyPage    = "page"
)

// Guard applies the route guard to page requests. A redirect decision
// ends the request with 303 See Other; a render decision stores the session
// and page for the handler.
func Guard(store session.Store) gin.HandlerFunc {
	return func(c *gin.Context) {
		s := store.Get(c)
		d := guard.Decide(c.Request.URL.Path, s)

		if d.Action != guard.Render {
			c.Redirect(http.StatusSeeOther, d.Location)
			c.Abort()
			return
		}

		c.Set(ContextKeySession, s)
		c.Set(ContextKeyPage, d.Page)
		c.Next()
	}
}

// GetSession returns the session the guard decided on, or the empty session.
func GetSession(c *gin.Context) session.Session {
	if v, exists := c.Get(ContextKeySession); exists {
		if s, ok := v.(session.Session); ok {
			return s
		}
	}
	return session.Session{}
}

// GetPage returns the page the guard decided to render.
func GetPage(c *gin.Context) guard.Page {
	if v, exists := c.Get(ContextKeyPage); exists {
		if p, ok := v.(guard.Page); ok {
			return p
		}
	}
	return guard.PageNone
}

// RequireSession rejects non-page endpoints (websocket, JSON) for visitors
// without a session.
func RequireSession(store session.Store) gin.HandlerFunc {
	return func(c *gin.Context) {
		s := store.Get(c)
		if !s.IsAuthenticated() {
			response.AbortFail(c, http.StatusUnauthorized, response.ErrAuthRequired)
			return
		}
		c.Set(ContextKeySession, s)
		c.Next()
	}
}
