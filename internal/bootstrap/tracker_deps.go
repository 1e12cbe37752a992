package bootstrap

import (
	"context"
	"fmt"
	"time"

	"tracker_server/adapter/out/credential"
	"tracker_server/adapter/out/llm"
	"tracker_server/adapter/out/mongodb"
	"tracker_server/adapter/out/notify"
	"tracker_server/adapter/out/otp"
	"tracker_server/adapter/out/persistence"
	"tracker_server/adapter/out/provider"
	"tracker_server/config"
	"tracker_server/core/port/in"
	"tracker_server/core/port/out"
	"tracker_server/core/service/analytics"
	"tracker_server/core/service/auth"
	"tracker_server/core/service/document"
	"tracker_server/core/service/job"
	"tracker_server/core/service/profile"
	"tracker_server/core/service/search"
	"tracker_server/infra/database"
	"tracker_server/pkg/cache"
	"tracker_server/pkg/httputil"
	"tracker_server/pkg/logger"
	"tracker_server/pkg/metrics"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/jmoiron/sqlx"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/redis/go-redis/v9"
	"go.mongodb.org/mongo-driver/mongo"
	"golang.org/x/crypto/bcrypt"
)

const otpSweepInterval = time.Minute

type Dependencies struct {
	Config  *config.Config
	DB      *pgxpool.Pool
	SQLDB   *sqlx.DB
	Redis   *redis.Client
	MongoDB *mongo.Client

	// Adapters
	Tokens *credential.JWTManager

	// Services
	AuthService      in.AuthService
	ProfileService   in.ProfileService
	JobService       in.JobService
	AnalyticsService in.AnalyticsService
	SearchService    in.SearchService
	DocumentService  in.DocumentService
}

// NewDependencies opens the stores and builds the service graph. Postgres is
// required; Redis and MongoDB degrade to in-process or disabled features.
// Background loops started here stop when ctx is cancelled.
func NewDependencies(ctx context.Context, cfg *config.Config) (*Dependencies, func(), error) {
	deps := &Dependencies{Config: cfg}
	var cleanups []func()
	cleanup := func() {
		for i := len(cleanups) - 1; i >= 0; i-- {
			cleanups[i]()
		}
	}

	// Database (pgxpool)
	pgCfg := database.DefaultPostgresConfig(cfg.DBMaxOpenConn, cfg.DBMaxIdleConn)
	db, err := database.NewPostgres(ctx, cfg.DatabaseURL, pgCfg)
	if err != nil {
		return nil, nil, fmt.Errorf("connect postgres: %w", err)
	}
	deps.DB = db
	cleanups = append(cleanups, db.Close)

	if err := metrics.RegisterPoolGauges(prometheus.DefaultRegisterer, "pgx", func() metrics.PoolSnapshot {
		stats := database.GetPoolStats(db)
		return metrics.PoolSnapshot{
			Total:    stats.TotalConns,
			Acquired: stats.AcquiredConns,
			Idle:     stats.IdleConns,
			Max:      stats.MaxConns,
		}
	}); err != nil {
		logger.WithError(err).Warn("pool gauges not registered")
	}

	// Database (sqlx for the transactional repositories)
	sqlDB, err := database.NewSQLX(ctx, cfg.DatabaseURL, pgCfg)
	if err != nil {
		cleanup()
		return nil, nil, fmt.Errorf("connect sqlx: %w", err)
	}
	deps.SQLDB = sqlDB
	cleanups = append(cleanups, func() { sqlDB.Close() })
	logger.Info("postgres connected (pool: max=%d, idle=%d)", pgCfg.MaxConns, pgCfg.MinConns)

	if cfg.AutoMigrate {
		if err := persistence.Migrate(ctx, sqlDB); err != nil {
			cleanup()
			return nil, nil, fmt.Errorf("auto migrate: %w", err)
		}
	}

	// Redis
	var (
		otpStore    out.OTPStore
		searchCache out.Cache
	)
	if cfg.RedisURL != "" {
		redisClient, err := database.NewRedis(ctx, cfg.RedisURL)
		if err != nil {
			logger.WithError(err).Warn("Redis connection failed, using in-memory OTP store and no search cache")
		} else {
			deps.Redis = redisClient
			cleanups = append(cleanups, func() { redisClient.Close() })
			otpStore = otp.NewRedisStore(redisClient)
			searchCache = cache.NewRedisCache(redisClient, "tracker:", "search")
		}
	}
	if otpStore == nil {
		mem := otp.NewMemoryStore()
		go mem.RunSweeper(ctx, otpSweepInterval)
		otpStore = mem
	}

	// MongoDB
	var archive out.DocumentArchive
	if cfg.MongoDBURL != "" {
		mongoClient, err := mongodb.Connect(ctx, cfg.MongoDBURL)
		if err != nil {
			logger.WithError(err).Warn("MongoDB connection failed, document archive disabled")
		} else {
			deps.MongoDB = mongoClient
			cleanups = append(cleanups, func() {
				if err := mongoClient.Disconnect(context.Background()); err != nil {
					logger.WithError(err).Warn("MongoDB disconnect failed")
				}
			})
			docs := mongodb.NewDocumentArchive(mongoClient.Database(cfg.MongoDBName))
			if err := docs.EnsureIndexes(ctx); err != nil {
				logger.WithError(err).Warn("document archive indexes not ensured")
			}
			archive = docs
		}
	}

	// Mail
	notifier, err := newNotifier(ctx, cfg)
	if err != nil {
		cleanup()
		return nil, nil, err
	}

	// Repositories
	users := persistence.NewUserAdapter(sqlDB)
	profiles := persistence.NewProfileAdapter(sqlDB)
	jobs := persistence.NewJobAdapter(sqlDB)
	counts := persistence.NewAnalyticsAdapter(db)

	// Outbound providers
	searchClient := httputil.SearchClient()
	adzuna := provider.NewAdzunaAdapter(provider.AdzunaConfig{
		AppID:   cfg.AdzunaAppID,
		AppKey:  cfg.AdzunaAppKey,
		BaseURL: cfg.AdzunaBaseURL,
		Client:  searchClient,
	})
	jooble := provider.NewJoobleAdapter(provider.JoobleConfig{
		APIKey: cfg.JoobleAPIKey,
		Host:   cfg.JoobleHost,
		Client: searchClient,
	})
	generator := llm.NewGenerator(llm.ClientConfig{
		APIKey:      cfg.OpenAIAPIKey,
		Model:       cfg.LLMModel,
		Temperature: cfg.LLMTemperature,
		Timeout:     time.Duration(cfg.LLMTimeoutSec) * time.Second,
		HTTPClient:  httputil.OpenAIClient(),
	})

	deps.Tokens = credential.NewJWTManager(cfg.JWTSecret, cfg.JWTTTL)

	// Services
	deps.AuthService = auth.NewService(users, credential.NewBcryptHasher(bcrypt.DefaultCost), deps.Tokens, otpStore, notifier)
	deps.ProfileService = profile.NewService(profiles)
	deps.JobService = job.NewService(users, jobs)
	deps.AnalyticsService = analytics.NewService(users, counts)
	deps.SearchService = search.NewService(adzuna, jooble, searchCache, cfg.SearchCacheTTL)
	deps.DocumentService = document.NewService(users, deps.ProfileService, generator, archive)

	return deps, cleanup, nil
}

func newNotifier(ctx context.Context, cfg *config.Config) (out.Notifier, error) {
	switch cfg.MailProvider {
	case "smtp":
		logger.Info("OTP mail via SMTP %s:%d", cfg.SMTPHost, cfg.SMTPPort)
		return notify.NewSMTPNotifier(notify.SMTPConfig{
			Host:     cfg.SMTPHost,
			Port:     cfg.SMTPPort,
			Username: cfg.SMTPUsername,
			Password: cfg.SMTPPassword,
			From:     cfg.MailFrom,
		}), nil
	case "gmail":
		logger.Info("OTP mail via Gmail API")
		n, err := notify.NewGmailNotifier(ctx, notify.GmailConfig{
			ClientID:     cfg.GmailClientID,
			ClientSecret: cfg.GmailClientSecret,
			RefreshToken: cfg.GmailRefreshToken,
			From:         cfg.MailFrom,
		})
		if err != nil {
			return nil, fmt.Errorf("gmail notifier: %w", err)
		}
		return n, nil
	case "log", "":
		logger.Warn("MAIL_PROVIDER=log: OTP mails are logged, not delivered")
		return notify.NewLogNotifier(), nil
	default:
		return nil, fmt.Errorf("unknown MAIL_PROVIDER %q", cfg.MailProvider)
	}
}
