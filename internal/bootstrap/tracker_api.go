package bootstrap

import (
	"context"
	"strings"
	"time"

	"tracker_server/adapter/in/http"
	"tracker_server/config"
	"tracker_server/infra/middleware"
	"tracker_server/pkg/logger"

	"github.com/goccy/go-json"
	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/compress"
	"github.com/gofiber/fiber/v2/middleware/cors"
)

// NewAPI builds the fiber app. The returned cleanup cancels background loops
// and closes every store.
func NewAPI(cfg *config.Config) (*fiber.App, func(), error) {
	logger.Init(logger.Config{
		Level:   logger.ParseLevel(cfg.LogLevel),
		Service: "tracker-api",
	})

	if err := cfg.ValidateAPI(); err != nil {
		return nil, nil, err
	}

	ctx, cancel := context.WithCancel(context.Background())
	deps, closeDeps, err := NewDependencies(ctx, cfg)
	if err != nil {
		cancel()
		logger.WithError(err).Error("Failed to initialize dependencies")
		return nil, nil, err
	}
	cleanup := func() {
		cancel()
		closeDeps()
	}

	app := fiber.New(fiber.Config{
		ErrorHandler:          middleware.ErrorHandler(),
		DisableStartupMessage: cfg.IsProduction(),
		AppName:               "tracker",

		// go-json for every request and response body
		JSONEncoder: json.Marshal,
		JSONDecoder: json.Unmarshal,

		BodyLimit:    2 * 1024 * 1024,
		ReadTimeout:  30 * time.Second,
		WriteTimeout: 90 * time.Second, // document generation waits on the LLM
		IdleTimeout:  120 * time.Second,
	})

	// Global middleware stack (order matters)
	app.Use(middleware.Recover())
	app.Use(middleware.RequestID())
	app.Use(middleware.SecurityHeaders())
	app.Use(middleware.NoStore())
	app.Use(middleware.RequestLogger())
	app.Use(middleware.Metrics())
	app.Use(compress.New(compress.Config{
		Level: compress.LevelBestSpeed,
	}))

	allowOrigins := strings.Join(cfg.AllowedOrigins, ",")
	allowCredentials := allowOrigins != "*" && allowOrigins != ""
	if allowOrigins == "" {
		allowOrigins = "http://localhost:3000"
		allowCredentials = true
	}
	app.Use(cors.New(cors.Config{
		AllowOrigins:     allowOrigins,
		AllowMethods:     "GET,POST,OPTIONS",
		AllowHeaders:     "Origin,Content-Type,Accept,Authorization,X-Request-ID",
		ExposeHeaders:    "X-Request-ID,X-RateLimit-Limit,X-RateLimit-Remaining,X-RateLimit-Reset",
		AllowCredentials: allowCredentials,
		MaxAge:           86400,
	}))

	// Health check, readiness and metrics (no auth)
	http.NewHealthHandler(deps.DB, deps.Redis, deps.MongoDB).Register(app)

	// Sign-up, sign-in and password reset (no auth; credential endpoints rate limited)
	limiter := middleware.NewRateLimiter(cfg.RateLimitPerMin, time.Minute)
	go limiter.Run(ctx)
	http.NewAuthHandler(deps.AuthService).Register(app, limiter.Handler())

	// Job search is public, like the boards it proxies
	http.NewSearchHandler(deps.SearchService).Register(app, middleware.PublicCache(cfg.SearchCacheTTL))

	// Account data: token optional unless REQUIRE_AUTH is set
	api := app.Group("/", middleware.Auth(deps.Tokens, cfg.RequireAuth))
	http.NewProfileHandler(deps.ProfileService, deps.Tokens).Register(api)
	http.NewJobHandler(deps.JobService).Register(api)
	http.NewAnalyticsHandler(deps.AnalyticsService).Register(api)
	http.NewDocumentHandler(deps.DocumentService).Register(api)

	logger.Info("API initialized (require_auth=%t, redis=%t, mongodb=%t, mail=%s)",
		cfg.RequireAuth, deps.Redis != nil, deps.MongoDB != nil, cfg.MailProvider)

	return app, cleanup, nil
}
