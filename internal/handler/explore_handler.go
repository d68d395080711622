package handler

import (
	"errors"
	"net/http"
	"net/url"

	"github.com/abotl/abotl-web/internal/api"
	"github.com/abotl/abotl-web/internal/model"
	"github.com/abotl/abotl-web/internal/response"
	"github.com/abotl/abotl-web/internal/service"
	"github.com/abotl/abotl-web/internal/session"
	"github.com/abotl/abotl-web/internal/validator"
	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog"
)

const explorePath = "/explore"

// ExploreHandler serves the video grid and its like buttons.
type ExploreHandler struct {
	videoService *service.VideoService
	likeService  *service.LikeService
	store        session.Store
	views        *Renderer
	log          zerolog.Logger
}

// NewExploreHandler creates a new ExploreHandler.
func NewExploreHandler(videoService *service.VideoService, likeService *service.LikeService, store session.Store, views *Renderer, log zerolog.Logger) *ExploreHandler {
	return &ExploreHandler{
		videoService: videoService,
		likeService:  likeService,
		store:        store,
		views:        views,
		log:          log.With().Str("component", "explore_handler").Logger(),
	}
}

type exploreFilter struct {
	Query    string `form:"q" binding:"max=200"`
	Category string `form:"category" binding:"max=60"`
}

func (f exploreFilter) location() string {
	q := url.Values{}
	if f.Query != "" {
		q.Set("q", f.Query)
	}
	if f.Category != "" && f.Category != model.CategoryAll {
		q.Set("category", f.Category)
	}
	if len(q) == 0 {
		return explorePath
	}
	return explorePath + "?" + q.Encode()
}

type explorePage struct {
	Query      string
	Category   string
	Categories []string
	Videos     []model.Video
	Liked      map[string]bool
}

// List godoc
// GET /explore?q=&category=
// Shows the videos matching the search term and category.
func (h *ExploreHandler) List(c *gin.Context) {
	var f exploreFilter
	v := newView(c, h.store, "Explore")
	if errs := validator.Bind(c, &f); errs != nil {
		v.Errors = errs
		f = exploreFilter{}
	}
	if f.Category == "" {
		f.Category = model.CategoryAll
	}

	visitorID := h.store.ID(c)
	videos, err := h.videoService.List(c.Request.Context(), visitorID, service.VideoFilter{
		Query:    f.Query,
		Category: f.Category,
	})
	if err != nil {
		h.log.Warn().Err(err).Msg("Failed to load videos")
		v.Flashes = append(v.Flashes, session.Flash{Kind: session.FlashError, Message: "Failed to load videos"})
	}

	v.Data = explorePage{
		Query:      f.Query,
		Category:   f.Category,
		Categories: append([]string{model.CategoryAll}, model.VideoCategories...),
		Videos:     videos,
		Liked:      h.likeService.Liked(visitorID, videos),
	}
	h.views.HTML(c, http.StatusOK, "explore", v)
}

// Like godoc
// POST /explore/videos/:id/like
// Toggles the visitor's like. Answers JSON when asked for it, otherwise
// redirects back to the grid.
func (h *ExploreHandler) Like(c *gin.Context) {
	videoID := c.Param("id")
	var f exploreFilter
	_ = validator.Bind(c, &f)

	if videoID == "" {
		if wantsJSON(c) {
			response.Fail(c, http.StatusBadRequest, response.ErrInvalidID)
			return
		}
		redirectWithFlash(c, h.store, session.FlashError, "Failed to toggle like", f.location())
		return
	}

	res, err := h.likeService.Toggle(c.Request.Context(), h.store.ID(c), videoID)
	if err != nil {
		h.log.Warn().Err(err).Str("video_id", videoID).Msg("Like toggle failed")
		if wantsJSON(c) {
			failBackend(c, err)
			return
		}
		redirectWithFlash(c, h.store, session.FlashError, "Failed to toggle like", f.location())
		return
	}

	if wantsJSON(c) {
		response.Success(c, http.StatusOK, res)
		return
	}
	msg := "Video unliked"
	if res.Liked {
		msg = "Video liked!"
	}
	redirectWithFlash(c, h.store, session.FlashSuccess, msg, f.location())
}

// failBackend answers a JSON request whose backend call failed.
func failBackend(c *gin.Context, err error) {
	var apiErr *api.Error
	switch {
	case errors.Is(err, api.ErrUnauthorized):
		response.FailWithMessage(c, http.StatusUnauthorized, response.ErrAuthRequired, api.Message(err, ""))
	case errors.Is(err, api.ErrNotFound):
		response.Fail(c, http.StatusNotFound, response.ErrNotFound)
	case errors.Is(err, api.ErrMalformedResponse):
		response.Fail(c, http.StatusBadGateway, response.ErrMalformedBackend)
	case errors.As(err, &apiErr):
		response.FailWithMessage(c, http.StatusBadGateway, response.ErrBackend, apiErr.Message)
	default:
		response.Fail(c, http.StatusServiceUnavailable, response.ErrBackendUnavailable)
	}
}
