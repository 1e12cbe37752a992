package http

import (
	"context"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/adaptor"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/redis/go-redis/v9"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/readpref"
)

// HealthCheck probes one dependency. A nil Ping means not configured.
type HealthCheck struct {
	Name string
	Ping func(ctx context.Context) error
}

type HealthHandler struct {
	checks []HealthCheck
}

// NewHealthHandler probes whichever stores are configured. Postgres is
// always required; nil Redis or MongoDB clients are reported as not configured.
func NewHealthHandler(db *pgxpool.Pool, rdb *redis.Client, mongoClient *mongo.Client) *HealthHandler {
	checks := []HealthCheck{{Name: "postgres"}, {Name: "redis"}, {Name: "mongodb"}}
	if db != nil {
		checks[0].Ping = db.Ping
	}
	if rdb != nil {
		checks[1].Ping = func(ctx context.Context) error { return rdb.Ping(ctx).Err() }
	}
	if mongoClient != nil {
		checks[2].Ping = func(ctx context.Context) error { return mongoClient.Ping(ctx, readpref.Primary()) }
	}
	return &HealthHandler{checks: checks}
}

func (h *HealthHandler) Register(app *fiber.App) {
	app.Get("/health", h.Health)
	app.Get("/ready", h.Ready)
	app.Get("/metrics", adaptor.HTTPHandler(promhttp.Handler()))
}

func (h *HealthHandler) Health(c *fiber.Ctx) error {
	return c.JSON(fiber.Map{
		"status":    "ok",
		"timestamp": time.Now().UTC().Format(time.RFC3339),
	})
}

func (h *HealthHandler) Ready(c *fiber.Ctx) error {
	ctx, cancel := context.WithTimeout(c.UserContext(), 5*time.Second)
	defer cancel()

	checks := make(map[string]string, len(h.checks))
	allHealthy := true

	for _, check := range h.checks {
		if check.Ping == nil {
			checks[check.Name] = "not configured"
			continue
		}
		if err := check.Ping(ctx); err != nil {
			checks[check.Name] = "unhealthy: " + err.Error()
			allHealthy = false
			continue
		}
		checks[check.Name] = "healthy"
	}

	status := "ready"
	statusCode := fiber.StatusOK
	if !allHealthy {
		status = "not ready"
		statusCode = fiber.StatusServiceUnavailable
	}

	return c.Status(statusCode).JSON(fiber.Map{
		"status":    status,
		"checks":    checks,
		"timestamp": time.Now().UTC().Format(time.RFC3339),
	})
}
