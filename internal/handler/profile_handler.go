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

const (
	profilePath        = "/profile"
	unreachableMessage = "could not reach the server"
)

// ProfileHandler serves the profile page: edit, account deletion and, for
// teachers, their uploaded videos.
type ProfileHandler struct {
	profileService *service.ProfileService
	videoService   *service.VideoService
	authService    *service.AuthService
	store          session.Store
	views          *Renderer
	log            zerolog.Logger
}

// NewProfileHandler creates a new ProfileHandler.
func NewProfileHandler(
	profileService *service.ProfileService,
	videoService *service.VideoService,
	authService *service.AuthService,
	store session.Store,
	views *Renderer,
	log zerolog.Logger,
) *ProfileHandler {
	return &ProfileHandler{
		profileService: profileService,
		videoService:   videoService,
		authService:    authService,
		store:          store,
		views:          views,
		log:            log.With().Str("component", "profile_handler").Logger(),
	}
}

type profilePage struct {
	Role      session.Role
	Name      string
	ImageURL  string
	IsTeacher bool
	Subjects  []string
	Videos    []model.Video
}

// render fills in the page data shared by every profile response and, for
// teachers, loads their videos.
func (h *ProfileHandler) render(c *gin.Context, status int, v View, imageURL string) {
	s := middleware.GetSession(c)
	page := profilePage{
		Role:      s.Role,
		Name:      s.User.DisplayName(string(s.Role)),
		ImageURL:  imageURL,
		IsTeacher: s.Role == session.RoleTeacher,
	}

	if page.IsTeacher {
		page.Subjects = model.ProfileSubjects
		videos, err := h.videoService.MyVideos(c.Request.Context(), h.store.ID(c))
		if err != nil {
			h.log.Warn().Err(err).Msg("Failed to load teacher videos")
			v.Flashes = append(v.Flashes, session.Flash{Kind: session.FlashError, Message: "Failed to load videos"})
		}
		page.Videos = videos
	}

	v.Title = "My profile"
	v.Data = page
	h.views.HTML(c, status, "profile", v)
}

// Show godoc
// GET /profile
// Loads the profile from the backend into the edit form.
func (h *ProfileHandler) Show(c *gin.Context) {
	s := middleware.GetSession(c)
	v := newView(c, h.store, "")

	form := model.ProfileForm{}
	imageURL := ""
	if s.User != nil {
		form.Username = s.User.Username
		form.Email = s.User.Email
		imageURL = s.User.ImageURL
	}

	p, err := h.profileService.Fetch(c.Request.Context(), h.store.ID(c), s.Role)
	if err != nil {
		v.Flashes = append(v.Flashes, session.Flash{
			Kind:    session.FlashError,
			Message: "Error loading profile: " + api.Message(err, unreachableMessage),
		})
	} else {
		form.Username = p.Username
		form.Email = p.Email
		form.Subjects = p.Subjects
		if p.ProfileImage != "" {
			imageURL = p.ProfileImage
		}
	}
	v.Form = form

	h.render(c, http.StatusOK, v, imageURL)
}

// Update godoc
// POST /profile
// Saves the edited profile. A blank password keeps the current one.
func (h *ProfileHandler) Update(c *gin.Context) {
	s := middleware.GetSession(c)

	var form model.ProfileForm
	errs := validator.Bind(c, &form)
	echo := form
	echo.Password = ""

	rerender := func(status int, errs map[string]string) {
		v := newView(c, h.store, "")
		v.Form = echo
		v.Errors = errs
		imageURL := ""
		if s.User != nil {
			imageURL = s.User.ImageURL
		}
		h.render(c, status, v, imageURL)
	}

	if errs != nil {
		rerender(http.StatusUnprocessableEntity, errs)
		return
	}

	image, err := optionalFile(c, fieldProfileImage)
	if err != nil {
		rerender(http.StatusBadRequest, map[string]string{fieldProfileImage: "could not read the uploaded file"})
		return
	}

	_, err = h.profileService.Update(c, s.Role, model.ProfileUpdate{
		Username:     form.Username,
		Email:        form.Email,
		Password:     form.Password,
		Subjects:     form.Subjects,
		ProfileImage: image,
	})
	if msg, ok := fileErrorMessage(err); ok {
		rerender(http.StatusUnprocessableEntity, map[string]string{fieldProfileImage: msg})
		return
	}
	if err != nil {
		redirectWithFlash(c, h.store, session.FlashError, "Error saving profile: "+api.Message(err, unreachableMessage), profilePath)
		return
	}

	redirectWithFlash(c, h.store, session.FlashSuccess, "Profile updated successfully!", profilePath)
}

// Delete godoc
// POST /profile/delete
// Deletes the account after the visitor typed DELETE and ticked the box.
func (h *ProfileHandler) Delete(c *gin.Context) {
	s := middleware.GetSession(c)

	var form model.DeleteAccountForm
	_ = validator.Bind(c, &form)

	err := h.authService.DeleteAccount(c, s.Role, form)
	switch {
	case errors.Is(err, service.ErrConfirmationRequired):
		redirectWithFlash(c, h.store, session.FlashInfo, "Account deletion cancelled", profilePath)
	case err != nil:
		redirectWithFlash(c, h.store, session.FlashError, "Error deleting account: "+api.Message(err, unreachableMessage), profilePath)
	default:
		redirectWithFlash(c, h.store, session.FlashSuccess, "Account deleted successfully", guard.HomePath)
	}
}

// DeleteVideo godoc
// POST /profile/videos/:id/delete
// Deletes one of the teacher's videos once confirmed.
func (h *ProfileHandler) DeleteVideo(c *gin.Context) {
	videoID := c.Param("id")
	if videoID == "" {
		redirectWithFlash(c, h.store, session.FlashError, "Unknown video", profilePath)
		return
	}

	var form confirmForm
	_ = validator.Bind(c, &form)

	err := h.videoService.Delete(c.Request.Context(), h.store.ID(c), videoID, form.Confirm)
	switch {
	case errors.Is(err, service.ErrConfirmationRequired):
		redirectWithFlash(c, h.store, session.FlashInfo, "Video deletion cancelled", profilePath)
	case err != nil:
		redirectWithFlash(c, h.store, session.FlashError, "Error deleting video: "+api.Message(err, unreachableMessage), profilePath)
	default:
		redirectWithFlash(c, h.store, session.FlashSuccess, "Video deleted successfully", profilePath)
	}
}
