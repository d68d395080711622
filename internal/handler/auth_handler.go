package handler

import (
	"errors"
	"net/http"

	"github.com/abotl/abotl-web/internal/api"
	"github.com/abotl/abotl-web/internal/guard"
	"github.com/abotl/abotl-web/internal/middleware"
	"github.com/abotl/abotl-web/internal/model"
	"github.com/abotl/abotl-web/internal/service"
	"github.com/abotl/abotl-web/internal/session"
	"github.com/abotl/abotl-web/internal/validator"
	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog"
)

// Form fields that carry files.
const (
	fieldProfilePicture = "profilePicture"
	fieldProfileImage   = "profileImage"
)

// AuthHandler serves the login, signup and logout forms of both roles.
type AuthHandler struct {
	authService *service.AuthService
	store       session.Store
	views       *Renderer
	log         zerolog.Logger
}

// NewAuthHandler creates a new AuthHandler.
func NewAuthHandler(authService *service.AuthService, store session.Store, views *Renderer, log zerolog.Logger) *AuthHandler {
	return &AuthHandler{
		authService: authService,
		store:       store,
		views:       views,
		log:         log.With().Str("component", "auth_handler").Logger(),
	}
}

type authPage struct {
	Role     session.Role
	Subjects []string
}

func roleTitle(role session.Role) string {
	if role == session.RoleTeacher {
		return "Teacher"
	}
	return "Student"
}

func (h *AuthHandler) renderLogin(c *gin.Context, status int, role session.Role, v View) {
	v.Title = roleTitle(role) + " login"
	v.Data = authPage{Role: role}
	h.views.HTML(c, status, "login", v)
}

func (h *AuthHandler) renderRegister(c *gin.Context, status int, role session.Role, v View) {
	v.Title = roleTitle(role) + " sign up"
	page := authPage{Role: role}
	if role == session.RoleTeacher {
		page.Subjects = model.TeacherSubjects
	}
	v.Data = page
	h.views.HTML(c, status, "register", v)
}

// LoginPage godoc
// GET /{role}/login
// Shows the login form.
func (h *AuthHandler) LoginPage(role session.Role) gin.HandlerFunc {
	return func(c *gin.Context) {
		v := newView(c, h.store, "")
		v.Form = model.LoginRequest{}
		h.renderLogin(c, http.StatusOK, role, v)
	}
}

// Login godoc
// POST /{role}/login
// Signs the visitor in and sends them to their dashboard.
func (h *AuthHandler) Login(role session.Role) gin.HandlerFunc {
	return func(c *gin.Context) {
		var form model.LoginRequest
		errs := validator.Bind(c, &form)
		// Passwords are never echoed back into the page.
		echo := model.LoginRequest{Email: form.Email}

		if errs != nil {
			v := newView(c, h.store, "")
			v.Form = echo
			v.Errors = errs
			h.renderLogin(c, http.StatusUnprocessableEntity, role, v)
			return
		}

		out, err := h.authService.Login(c, role, form)
		h.finishAuth(c, out, err, "Login successful", func(msg string) {
			v := newView(c, h.store, "")
			v.Form = echo
			v.Flashes = append(v.Flashes, session.Flash{Kind: session.FlashError, Message: msg})
			h.renderLogin(c, http.StatusOK, role, v)
		})
	}
}

// RegisterPage godoc
// GET /{role}/register
// Shows the signup form. Teachers also pick the subjects they teach.
func (h *AuthHandler) RegisterPage(role session.Role) gin.HandlerFunc {
	return func(c *gin.Context) {
		v := newView(c, h.store, "")
		v.Form = model.RegisterForm{}
		h.renderRegister(c, http.StatusOK, role, v)
	}
}

// Register godoc
// POST /{role}/register
// Creates the account and signs the visitor in when the backend allows it.
func (h *AuthHandler) Register(role session.Role) gin.HandlerFunc {
	return func(c *gin.Context) {
		var form model.RegisterForm
		errs := validator.Bind(c, &form)
		echo := form
		echo.Password = ""

		rerender := func(status int, errs map[string]string, flash string) {
			v := newView(c, h.store, "")
			v.Form = echo
			v.Errors = errs
			if flash != "" {
				v.Flashes = append(v.Flashes, session.Flash{Kind: session.FlashError, Message: flash})
			}
			h.renderRegister(c, status, role, v)
		}

		if errs != nil {
			rerender(http.StatusUnprocessableEntity, errs, "")
			return
		}

		picture, err := optionalFile(c, fieldProfilePicture)
		if err != nil {
			rerender(http.StatusBadRequest, map[string]string{fieldProfilePicture: "could not read the uploaded file"}, "")
			return
		}

		out, err := h.authService.Register(c, role, model.RegisterRequest{
			Username:       form.Username,
			Email:          form.Email,
			Password:       form.Password,
			Subjects:       form.Subjects,
			ProfilePicture: picture,
		})
		if msg, ok := fileErrorMessage(err); ok {
			rerender(http.StatusUnprocessableEntity, map[string]string{fieldProfilePicture: msg}, "")
			return
		}
		h.finishAuth(c, out, err, "Account created", func(msg string) {
			rerender(http.StatusOK, nil, msg)
		})
	}
}

// finishAuth turns the outcome of a login or signup into a redirect, or
// hands a failure message to fail.
func (h *AuthHandler) finishAuth(c *gin.Context, out *service.AuthOutcome, err error, fallback string, fail func(msg string)) {
	switch {
	case errors.Is(err, service.ErrNoSession):
		msg := fallback
		if out != nil && out.Message != "" {
			msg = out.Message
		}
		redirectWithFlash(c, h.store, session.FlashInfo, msg, guard.HomePath)
	case err != nil:
		fail(api.Message(err, "Something went wrong, please try again"))
	default:
		msg := out.Message
		if msg == "" {
			msg = fallback
		}
		redirectWithFlash(c, h.store, session.FlashSuccess, msg, out.Location)
	}
}

type confirmForm struct {
	Confirm bool `form:"confirm"`
}

// Logout godoc
// POST /{role}/page/:id/logout
// Logs the visitor out once they tick the confirmation box.
func (h *AuthHandler) Logout(role session.Role) gin.HandlerFunc {
	return func(c *gin.Context) {
		var form confirmForm
		_ = validator.Bind(c, &form)
		if !form.Confirm {
			loc, ok := guard.DashboardPath(middleware.GetSession(c))
			if !ok {
				loc = guard.HomePath
			}
			redirectWithFlash(c, h.store, session.FlashInfo, "Logout cancelled", loc)
			return
		}

		if err := h.authService.Logout(c, role); err != nil {
			h.log.Error().Err(err).Msg("Failed to clear session on logout")
		}
		redirectWithFlash(c, h.store, session.FlashSuccess, "Logged out successfully!", guard.HomePath)
	}
}
