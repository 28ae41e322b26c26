package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/labstack/echo/v4"
	"gorm.io/gorm"

	"advancedapi/docs"
	"advancedapi/internal/auth"
	"advancedapi/internal/cache"
	"advancedapi/internal/config"
	"advancedapi/internal/db"
	"advancedapi/internal/handler"
	"advancedapi/internal/logging"
	"advancedapi/internal/middleware"
	"advancedapi/internal/repository"
	"advancedapi/internal/router"
	"advancedapi/internal/service"
	"advancedapi/internal/tmdb"
)

const version = "1.0.0"

// @title Advanced API
// @version 1.0.0
// @description API with authentication, movies, developer tools and download info.
// @host localhost:3000
// @BasePath /api
// @schemes http
// @securityDefinitions.apikey BearerAuth
// @in header
// @name Authorization
// @description Type "Bearer" followed by a space and JWT token.
func main() {
	cfg, err := config.Load()
	if err != nil {
		logging.Fatal().Err(err).Msg("load config")
	}
	logging.Init(logging.Config{Level: cfg.Log.Level, Format: cfg.Log.Format})

	gormDB, err := db.NewMySQL(cfg.MySQLDSN)
	if err != nil {
		logging.Fatal().Err(err).Msg("database init")
	}
	if err := db.Migrate(gormDB, cfg.ResetDB); err != nil {
		logging.Fatal().Err(err).Msg("database migrate")
	}

	cacheClient := cache.New(cfg.RedisAddr, cfg.RedisPass, cfg.RedisDB)
	defer cacheClient.Close()

	// Initialize repositories
	userRepo := repository.NewUserRepository(gormDB)
	movieRepo := repository.NewMovieRepository(gormDB)

	// Initialize auth components
	jwtService := auth.NewJWTServiceWithTTL(cfg.JWT.Secret, cfg.JWT.AccessTTL, cfg.JWT.RefreshTTL)
	tokenStore := auth.NewTokenStore(cacheClient)

	provider := tmdb.New(tmdb.Config{
		APIKey:       cfg.TMDB.APIKey,
		BaseURL:      cfg.TMDB.BaseURL,
		ImageBaseURL: cfg.TMDB.ImageBaseURL,
		Language:     cfg.TMDB.Language,
		CacheTTL:     cfg.CacheTTL,
	}, cacheClient)
	if !provider.Enabled() {
		logging.Warn().Msg("TMDB_API_KEY not set, movie endpoints serve the local catalog only")
	}

	// Initialize services
	authService := service.NewAuthService(userRepo, jwtService, tokenStore)
	sessionService := service.NewSessionService(userRepo)
	userService := service.NewUserService(userRepo, cacheClient)
	movieService := service.NewMovieService(movieRepo, provider)
	importService := service.NewImportService(movieRepo, provider)
	toolsService := service.NewToolsService()
	downloadService := service.NewDownloadService(nil, cfg.ProbeTimeout)

	authn := middleware.NewAuthenticator(jwtService, sessionService)

	e := echo.New()
	router.Register(e, cfg, authn, router.Handlers{
		General: handler.NewGeneralHandler(
			func(ctx context.Context) error { return db.Ping(ctx, gormDB) },
			cacheClient.Ping,
			version,
		),
		Auth:     handler.NewAuthHandler(authService),
		User:     handler.NewUserHandler(userService),
		Movie:    handler.NewMovieHandler(movieService),
		Tool:     handler.NewToolHandler(toolsService),
		Download: handler.NewDownloadHandler(downloadService),
		Seed:     handler.NewSeedHandler(importService, provider.Enabled()),
	})

	if cfg.SwaggerHost != "" {
		docs.SwaggerInfo.Host = strings.TrimPrefix(strings.TrimPrefix(cfg.SwaggerHost, "https://"), "http://")
	}
	logging.Info().Str("url", swaggerURL(cfg)).Msg("swagger documentation available")

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	go func() {
		addr := ":" + cfg.ServerPort
		logging.Info().Str("addr", addr).Str("version", version).Msg("server starting")
		if err := e.Start(addr); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logging.Fatal().Err(err).Msg("server start")
		}
	}()

	<-ctx.Done()
	logging.Info().Msg("shutting down")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := e.Shutdown(shutdownCtx); err != nil {
		logging.Error().Err(err).Msg("server shutdown")
	}
	closeDB(gormDB)
}

// swaggerURL builds the docs URL; SwaggerHost may already include a scheme.
func swaggerURL(cfg *config.Config) string {
	host := cfg.SwaggerHost
	if host == "" {
		host = "localhost:" + cfg.ServerPort
	}
	if !strings.HasPrefix(host, "http://") && !strings.HasPrefix(host, "https://") {
		host = "http://" + host
	}
	return host + "/api-docs"
}

func closeDB(gormDB *gorm.DB) {
	sqlDB, err := gormDB.DB()
	if err != nil {
		return
	}
	if err := sqlDB.Close(); err != nil {
		logging.Warn().Err(err).Msg("close database")
	}
}
