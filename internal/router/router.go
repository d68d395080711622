package router

import (
	"context"
	"net/http"
	"time"

	"github.com/abotl/abotl-web/internal/config"
	"github.com/abotl/abotl-web/internal/guard"
	"github.com/abotl/abotl-web/internal/handler"
	"github.com/abotl/abotl-web/internal/middleware"
	"github.com/abotl/abotl-web/internal/response"
	"github.com/abotl/abotl-web/internal/session"
	"github.com/abotl/abotl-web/internal/web"
	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog"
)

// Uploads are spooled to disk above this.
const maxMultipartMemory = 32 << 20

// Handlers groups all handler instances for route setup.
type Handlers struct {
	Page    *handler.PageHandler
	Auth    *handler.AuthHandler
	Profile *handler.ProfileHandler
	Explore *handler.ExploreHandler
	Upload  *handler.UploadHandler
	WS      *handler.WSHandler
	System  *handler.SystemHandler
}

// SetupRouter configures all Gin routes with their middlewares. ctx bounds
// background work started for the router, such as rate limiter cleanup.
func SetupRouter(
	ctx context.Context,
	store session.Store,
	handlers *Handlers,
	cfg *config.Config,
	log zerolog.Logger,
) *gin.Engine {
	gin.SetMode(cfg.GinMode)
	router := gin.New()
	router.ContextWithFallback = true
	router.MaxMultipartMemory = maxMultipartMemory

	router.Use(gin.Recovery())

	// Apply request ID middleware globally so every response includes metadata.
	router.Use(response.RequestIDMiddleware())
	router.Use(middleware.AccessLog(log))

	// ─── CORS ──────────────────────────────────────────────────────────
	// If AllowedOrigins is set in config, restrict to that list;
	// otherwise allow all (*) so dev works without extra config.
	corsConfig := cors.DefaultConfig()
	if len(cfg.AllowedOrigins) > 0 {
		corsConfig.AllowOrigins = cfg.AllowedOrigins
		corsConfig.AllowCredentials = true
	} else {
		corsConfig.AllowAllOrigins = true
	}
	corsConfig.AllowMethods = []string{"GET", "POST", "OPTIONS"}
	corsConfig.AllowHeaders = []string{"Origin", "Content-Type", "Accept", "X-Request-ID"}
	corsConfig.ExposeHeaders = []string{"X-Request-ID"}
	corsConfig.MaxAge = 12 * time.Hour
	router.Use(cors.New(corsConfig))

	router.Use(middleware.Brotli())

	// Embedded stylesheet and scripts with aggressive caching (1 year).
	staticGroup := router.Group("/static")
	staticGroup.Use(middleware.CacheControl(31536000))
	{
		staticGroup.StaticFS("/", http.FS(web.Static()))
	}

	router.GET("/health", handlers.System.Health)

	// ─── Upload progress stream ────────────────────────────────────────
	ws := router.Group("/ws")
	ws.Use(middleware.RequireSession(store))
	{
		ws.GET("/upload-progress", handlers.WS.UploadProgressStream)
	}

	// ─── Pages (guarded) ───────────────────────────────────────────────
	pages := router.Group("/")
	pages.Use(middleware.NoStore(), middleware.Guard(store))

	authLimiter := middleware.NewRateLimiter(ctx, cfg.AuthRateLimit, time.Minute)

	pages.GET("/", handlers.Page.Home)
	for _, role := range []session.Role{session.RoleStudent, session.RoleTeacher} {
		base := "/" + string(role)
		pages.GET(base+"/login", handlers.Auth.LoginPage(role))
		pages.POST(base+"/login", authLimiter.Middleware(), handlers.Auth.Login(role))
		pages.GET(base+"/register", handlers.Auth.RegisterPage(role))
		pages.POST(base+"/register", authLimiter.Middleware(), handlers.Auth.Register(role))
		pages.GET(base+"/page/:id", handlers.Page.Dashboard)
		pages.POST(base+"/page/:id/logout", handlers.Auth.Logout(role))
	}

	pages.GET("/profile", handlers.Profile.Show)
	pages.POST("/profile", handlers.Profile.Update)
	pages.POST("/profile/delete", handlers.Profile.Delete)
	pages.POST("/profile/videos/:id/delete", handlers.Profile.DeleteVideo)

	pages.GET("/explore", handlers.Explore.List)
	pages.POST("/explore/videos/:id/like", handlers.Explore.Like)

	pages.GET("/video", handlers.Upload.UploadPage)
	pages.POST("/video", handlers.Upload.Upload)

	pages.GET("/chat", handlers.Page.Chat)

	// Anything else goes through the guard too; a path it lets through
	// has no page of its own, so the visitor lands on their start page.
	router.NoRoute(middleware.NoStore(), middleware.Guard(store), func(c *gin.Context) {
		c.Redirect(http.StatusSeeOther, guard.HomePath)
	})

	return router
}
