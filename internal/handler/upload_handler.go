package handler

import (
	"errors"
	"fmt"
	"net/http"

	"github.com/abotl/abotl-web/internal/api"
	"github.com/abotl/abotl-web/internal/middleware"
	"github.com/abotl/abotl-web/internal/model"
	"github.com/abotl/abotl-web/internal/service"
	"github.com/abotl/abotl-web/internal/session"
	"github.com/abotl/abotl-web/internal/validator"
	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog"
)

// UploadHandler serves the video upload form.
type UploadHandler struct {
	uploadService *service.UploadService
	store         session.Store
	views         *Renderer
	maxVideoMB    int64
	log           zerolog.Logger
}

// NewUploadHandler creates a new UploadHandler. maxVideoBytes is only used
// for the messages shown to the visitor.
func NewUploadHandler(uploadService *service.UploadService, store session.Store, views *Renderer, maxVideoBytes int64, log zerolog.Logger) *UploadHandler {
	return &UploadHandler{
		uploadService: uploadService,
		store:         store,
		views:         views,
		maxVideoMB:    maxVideoBytes >> 20,
		log:           log.With().Str("component", "upload_handler").Logger(),
	}
}

type uploadPage struct {
	Categories   []string
	Visibilities []model.Visibility
	MaxVideoMB   int64
}

func (h *UploadHandler) render(c *gin.Context, status int, v View) {
	v.Title = "Upload a video"
	v.Data = uploadPage{
		Categories:   model.VideoCategories,
		Visibilities: []model.Visibility{model.VisibilityPublic, model.VisibilityUnlisted, model.VisibilityPrivate},
		MaxVideoMB:   h.maxVideoMB,
	}
	h.views.HTML(c, status, "video", v)
}

// UploadPage godoc
// GET /video
// Shows the upload form and resets the visitor's upload flow.
func (h *UploadHandler) UploadPage(c *gin.Context) {
	v := newView(c, h.store, "")
	h.uploadService.Begin(h.store.ID(c))
	v.Form = model.VideoUploadForm{
		Category:   model.VideoCategories[0],
		Visibility: model.VisibilityPublic,
	}
	h.render(c, http.StatusOK, v)
}

// Upload godoc
// POST /video
// Validates the form and streams both files to the backend.
func (h *UploadHandler) Upload(c *gin.Context) {
	var form model.VideoUploadForm
	errs := validator.Bind(c, &form)

	rerender := func(status int, errs map[string]string, flash string) {
		v := newView(c, h.store, "")
		v.Form = form
		v.Errors = errs
		if flash != "" {
			v.Flashes = append(v.Flashes, session.Flash{Kind: session.FlashError, Message: flash})
		}
		h.render(c, status, v)
	}

	if errs != nil {
		rerender(http.StatusUnprocessableEntity, errs, "")
		return
	}

	thumbnail, err := optionalFile(c, "thumbnail")
	if err != nil {
		rerender(http.StatusBadRequest, map[string]string{"thumbnail": "could not read the uploaded file"}, "")
		return
	}
	video, err := optionalFile(c, "video")
	if err != nil {
		rerender(http.StatusBadRequest, map[string]string{"video": "could not read the uploaded file"}, "")
		return
	}

	loc, err := h.uploadService.Upload(c.Request.Context(), h.store.ID(c), middleware.GetSession(c), model.VideoUpload{
		Title:       form.Title,
		Description: form.Description,
		Category:    form.Category,
		Visibility:  form.Visibility,
		Thumbnail:   thumbnail,
		Video:       video,
	})
	if field, msg, ok := h.validationMessage(err); ok {
		rerender(http.StatusUnprocessableEntity, map[string]string{field: msg}, "")
		return
	}
	if err != nil {
		rerender(http.StatusOK, nil, "Upload failed: "+api.Message(err, unreachableMessage))
		return
	}

	redirectWithFlash(c, h.store, session.FlashSuccess, "Video uploaded successfully!", loc)
}

// validationMessage maps an upload validation error onto the form field
// it belongs to.
func (h *UploadHandler) validationMessage(err error) (field, msg string, ok bool) {
	switch {
	case errors.Is(err, service.ErrTitleRequired):
		return "title", "Title is required", true
	case errors.Is(err, service.ErrVideoRequired):
		return "video", "Please select a video file", true
	case errors.Is(err, service.ErrThumbnailRequired):
		return "thumbnail", "Please select a thumbnail image", true
	case errors.Is(err, service.ErrInvalidThumbnail):
		return "thumbnail", "Please select a valid image file for thumbnail", true
	case errors.Is(err, service.ErrInvalidVideo):
		return "video", fmt.Sprintf("Please select a video file under %dMB", h.maxVideoMB), true
	}
	return "", "", false
}
