package main

import (
	"context"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/abotl/abotl-web/internal/api"
	"github.com/abotl/abotl-web/internal/config"
	"github.com/abotl/abotl-web/internal/database"
	"github.com/abotl/abotl-web/internal/handler"
	"github.com/abotl/abotl-web/internal/logger"
	"github.com/abotl/abotl-web/internal/repository"
	"github.com/abotl/abotl-web/internal/router"
	"github.com/abotl/abotl-web/internal/service"
	"github.com/abotl/abotl-web/internal/session"
	"github.com/abotl/abotl-web/internal/validator"
	"github.com/abotl/abotl-web/internal/web"
	"github.com/abotl/abotl-web/internal/worker"
	"github.com/gorilla/securecookie"
	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog"
)

func main() {
	// ─── Load Configuration ────────────────────────────────────────────
	cfg := config.Load()

	// ─── Initialize Logger ─────────────────────────────────────────────
	log := logger.Setup(cfg.LogLevel, cfg.LogFormat)
	log.Info().
		Str("port", cfg.ServerPort).
		Str("mode", cfg.GinMode).
		Str("log_level", cfg.LogLevel).
		Str("backend", cfg.APIBaseURL).
		Msg("Starting abotl web")

	// ─── Initialize Validator ──────────────────────────────────────────
	validator.Setup()

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	// ─── Credential Relay (Redis or in-memory) ─────────────────────────
	var (
		rdb      *redis.Client
		credRepo repository.CredentialRepository
		sweepers = map[string]worker.Sweeper{}
	)
	if cfg.RedisURL != "" {
		var err error
		rdb, err = database.NewRedisClient(ctx, cfg, log)
		if err != nil {
			log.Fatal().Err(err).Msg("Failed to connect to Redis")
		}
		defer rdb.Close()
		credRepo = repository.NewRedisCredentialRepository(rdb)
	} else {
		memRepo := repository.NewMemoryCredentialRepository()
		sweepers["credentials"] = memRepo
		credRepo = memRepo
		log.Warn().Msg("REDIS_URL not set, backend credentials are kept in memory")
	}

	// ─── Session Store ─────────────────────────────────────────────────
	hashKey := []byte(cfg.SessionSecret)
	if len(hashKey) == 0 {
		hashKey = securecookie.GenerateRandomKey(64)
		log.Warn().Msg("SESSION_SECRET not set, sessions will not survive a restart")
	}
	switch len(cfg.SessionEncryptionKey) {
	case 0, 16, 24, 32:
	default:
		log.Fatal().Msg("SESSION_ENCRYPTION_KEY must be 16, 24 or 32 bytes")
	}
	store := session.NewCookieStore(session.CookieOptions{
		HashKey:       hashKey,
		EncryptionKey: []byte(cfg.SessionEncryptionKey),
		Secure:        cfg.CookieSecure,
		MaxAge:        int(cfg.CredentialTTL / time.Second),
	}, log)

	// ─── Initialize Services ──────────────────────────────────────────
	client := api.NewClient(api.Options{
		BaseURL:       cfg.APIBaseURL,
		Timeout:       cfg.APITimeout,
		UploadTimeout: cfg.UploadTimeout,
	}, log)

	credService := service.NewCredentialService(credRepo, cfg.CredentialTTL, log)
	mediaService := service.NewMediaService(cfg)
	likeService := service.NewLikeService(client, credService, cfg.CredentialTTL, log)
	authService := service.NewAuthService(client, store, credService, mediaService, likeService, log)
	profileService := service.NewProfileService(client, store, credService, mediaService, log)
	videoService := service.NewVideoService(client, credService, log)
	progressHub := service.NewProgressHub()
	uploadService := service.NewUploadService(client, credService, mediaService, progressHub, log)
	sweepers["likes"] = likeService
	sweepers["progress"] = progressHub

	// ─── Initialize Handlers ──────────────────────────────────────────
	views, err := handler.NewRenderer(web.Templates())
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to parse templates")
	}

	handlers := &router.Handlers{
		Page:    handler.NewPageHandler(store, views),
		Auth:    handler.NewAuthHandler(authService, store, views, log),
		Profile: handler.NewProfileHandler(profileService, videoService, authService, store, views, log),
		Explore: handler.NewExploreHandler(videoService, likeService, store, views, log),
		Upload:  handler.NewUploadHandler(uploadService, store, views, cfg.MaxVideoBytes, log),
		WS:      handler.NewWSHandler(progressHub, store, log, cfg.AllowedOrigins),
		System:  handler.NewSystemHandler(rdb, log),
	}

	// ─── Start Background Workers ─────────────────────────────────────
	workerCtx, workerCancel := context.WithCancel(context.Background())

	sweepWorker := worker.NewSweepWorker(worker.SweepInterval, sweepers, log)
	go sweepWorker.Start(workerCtx)

	// ─── Setup Router ──────────────────────────────────────────────────
	r := router.SetupRouter(ctx, store, handlers, cfg, log)

	// ─── Create HTTP Server ────────────────────────────────────────────
	srv := &http.Server{
		Addr:              ":" + cfg.ServerPort,
		Handler:           r,
		ReadHeaderTimeout: 10 * time.Second,
	}

	// ─── Start Server in Goroutine ─────────────────────────────────────
	go func() {
		log.Info().Str("addr", ":"+cfg.ServerPort).Msg("Server listening")
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatal().Err(err).Msg("Server error")
		}
	}()

	// ─── Graceful Shutdown ─────────────────────────────────────────────
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	sig := <-quit

	log.Info().Str("signal", sig.String()).Msg("Shutting down gracefully...")

	// 1. Stop accepting new HTTP requests. Running uploads get a little
	// longer than plain page loads.
	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer shutdownCancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		log.Error().Err(err).Msg("HTTP server shutdown error")
	}

	// 2. Stop background workers.
	workerCancel()

	log.Info().Msg("Shutdown complete")
}

// init sets zerolog global defaults before main runs.
func init() {
	zerolog.TimeFieldFormat = time.RFC3339
}
