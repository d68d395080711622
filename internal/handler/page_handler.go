package handler

import (
	"net/http"

	"github.com/abotl/abotl-web/internal/guard"
	"github.com/abotl/abotl-web/internal/middleware"
	"github.com/abotl/abotl-web/internal/session"
	"github.com/gin-gonic/gin"
)

// PageHandler serves the pages that only read the session.
type PageHandler struct {
	store session.Store
	views *Renderer
}

// NewPageHandler creates a new PageHandler.
func NewPageHandler(store session.Store, views *Renderer) *PageHandler {
	return &PageHandler{store: store, views: views}
}

// Home godoc
// GET /
// Public landing page.
func (h *PageHandler) Home(c *gin.Context) {
	h.views.HTML(c, http.StatusOK, "home", newView(c, h.store, ""))
}

type dashboardPage struct {
	Role         session.Role
	Name         string
	ImageURL     string
	LogoutAction string
	CanUpload    bool
}

// Dashboard godoc
// GET /{role}/page/:id
// Greets the visitor and links to the rest of the site.
func (h *PageHandler) Dashboard(c *gin.Context) {
	s := middleware.GetSession(c)
	v := newView(c, h.store, roleTitle(s.Role)+" dashboard")

	page := dashboardPage{
		Role:      s.Role,
		Name:      s.User.DisplayName(string(s.Role)),
		CanUpload: s.Role == session.RoleTeacher,
	}
	if loc, ok := guard.DashboardPath(s); ok {
		page.LogoutAction = loc + "/logout"
	}
	if s.User != nil {
		page.ImageURL = s.User.ImageURL
	}
	v.Data = page

	h.views.HTML(c, http.StatusOK, "dashboard", v)
}

// Chat godoc
// GET /chat
// Placeholder that sends the visitor back home after two seconds.
func (h *PageHandler) Chat(c *gin.Context) {
	h.views.HTML(c, http.StatusOK, "chat", newView(c, h.store, "Chat"))
}
