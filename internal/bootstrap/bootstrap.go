package bootstrap

import (
	"context"
	"fmt"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog"

	appControllers "github.com/yigit/schoolchat/internal/app/controllers"
	appMigrations "github.com/yigit/schoolchat/internal/app/migrations"
	appRepos "github.com/yigit/schoolchat/internal/app/repositories"
	appRoutes "github.com/yigit/schoolchat/internal/app/routes"
	"github.com/yigit/schoolchat/internal/config"
	"github.com/yigit/schoolchat/internal/db"
	appMiddleware "github.com/yigit/schoolchat/internal/middleware"
	pkgAuth "github.com/yigit/schoolchat/internal/pkg/auth"
	"github.com/yigit/schoolchat/internal/pkg/cache"
	"github.com/yigit/schoolchat/internal/pkg/logger"
	"github.com/yigit/schoolchat/internal/pkg/websocket"
	"github.com/yigit/schoolchat/internal/seed"
)

// Dependencies holds all the application dependencies
type Dependencies struct {
	Repos              *appRepos.Repositories
	JWTService         *pkgAuth.JWTService
	Redis              *redis.Client // nil unless the redis presence backend is selected
	Hub                *websocket.Hub
	WebSocketHandler   *websocket.Handler
	RealtimeController *appControllers.RealtimeController
	AuthMiddleware     *appMiddleware.AuthMiddleware
	Logger             zerolog.Logger
}

// LoadConfigAndSetupLogger loads configuration and initializes the logger.
func LoadConfigAndSetupLogger(configPath string) (*config.Config, zerolog.Logger, error) {
	cfg, err := config.LoadConfig(configPath)
	if err != nil {
		logger.Error().Err(err).Str("path", configPath).Msg("Failed to load configuration")
		return nil, zerolog.Logger{}, err
	}

	logLevel := logger.LogLevel(strings.ToLower(cfg.Logging.Level))
	prettyLog := strings.ToLower(cfg.Logging.Format) == "text"

	lgr := logger.Configure(logger.Config{
		Level:  logLevel,
		Pretty: prettyLog,
	})
	lgr.Info().Str("logLevel", string(logLevel)).Str("logFormat", cfg.Logging.Format).Msg("Logger configured")
	return cfg, lgr, nil
}

// NewJWTService builds the token service from configuration
func NewJWTService(cfg *config.Config) *pkgAuth.JWTService {
	return pkgAuth.NewJWTService(pkgAuth.JWTConfig{
		SecretKey:      cfg.JWT.Secret,
		AccessTokenExp: cfg.AccessTokenTTL(),
		TokenIssuer:    cfg.JWT.Issuer,
	})
}

// SetupDatabase establishes the database connection and runs migrations.
func SetupDatabase(ctx context.Context, cfg *config.Config, lgr zerolog.Logger) (*db.PostgresDB, error) {
	lgr.Info().Msg("Establishing database connection...")
	database, err := db.NewPostgresDB(ctx, cfg)
	if err != nil {
		lgr.Error().Err(err).Msg("Failed to connect to database")
		return nil, err
	}
	lgr.Info().Msg("Database connection successfully established.")

	lgr.Info().Msg("Running database migrations...")
	migrator := appMigrations.NewMigrator(database.Pool, lgr.With().Str("component", "migrator").Logger())
	if err := migrator.Migrate(ctx); err != nil {
		lgr.Error().Err(err).Msg("Database migration error")
		database.Close()
		return nil, fmt.Errorf("database migrations failed: %w", err)
	}
	lgr.Info().Msg("Database migrations successfully applied.")

	if cfg.Database.SeedDemo {
		if err := seed.CreateDemoData(ctx, database.Pool, lgr); err != nil {
			// Log the error but don't fail the startup
			lgr.Error().Err(err).Msg("Failed to create demo data, proceeding anyway...")
		}
	}

	return database, nil
}

// BuildDependencies wires repositories, the presence backend, the realtime hub and the HTTP layer.
func BuildDependencies(ctx context.Context, cfg *config.Config, dbtx appRepos.DBTX, lgr zerolog.Logger) (*Dependencies, error) {
	deps := &Dependencies{Logger: lgr}

	deps.Repos = appRepos.NewRepositories(dbtx)
	deps.JWTService = NewJWTService(cfg)

	var (
		presence websocket.PresenceStore = deps.Repos.PresenceRepository
		online   appControllers.OnlineCounter
	)
	if strings.ToLower(cfg.Realtime.PresenceBackend) == config.PresenceBackendRedis {
		client, err := cache.NewRedisClient(ctx, cfg)
		if err != nil {
			lgr.Error().Err(err).Msg("Failed to connect to redis")
			return nil, err
		}
		deps.Redis = client
		store := cache.NewRedisPresenceStore(client)
		presence, online = store, store
		lgr.Info().Str("addr", cfg.Redis.Addr).Msg("Using redis presence backend")
	}

	deps.Hub = websocket.NewHub(websocket.Config{
		SendBuffer:     cfg.Realtime.SendBuffer,
		MaxMessageSize: cfg.Realtime.MaxMessageSize,
		FanoutWorkers:  cfg.Realtime.FanoutWorkers,
		RateLimit:      cfg.Realtime.RateLimit,
		RateBurst:      cfg.Realtime.RateBurst,
		AllowedOrigins: cfg.Server.AllowedOrigins,
	}, websocket.Dependencies{
		Directory: deps.Repos.MembershipRepository,
		Store:     deps.Repos.MessageRepository,
		Presence:  presence,
	}, logger.Component("realtime"))

	deps.WebSocketHandler = websocket.NewHandler(deps.Hub, deps.JWTService, logger.Component("ws-handler"))
	deps.RealtimeController = appControllers.NewRealtimeController(deps.Hub, online, lgr)
	deps.AuthMiddleware = appMiddleware.NewAuthMiddleware(deps.JWTService)

	return deps, nil
}

// SetupRouter configures the Gin engine with middleware and routes.
func SetupRouter(cfg *config.Config, deps *Dependencies, lgr zerolog.Logger) *gin.Engine {
	if strings.ToLower(cfg.Server.Mode) == "production" {
		gin.SetMode(gin.ReleaseMode)
		lgr.Info().Msg("Setting Gin mode to release")
	} else {
		gin.SetMode(gin.DebugMode)
		lgr.Info().Msg("Setting Gin mode to debug")
	}

	router := gin.New()
	router.Use(gin.Recovery(), appMiddleware.RequestLogger(logger.Component("http")))

	appRoutes.SetupRouter(router,
		deps.WebSocketHandler,
		deps.RealtimeController,
		deps.AuthMiddleware,
	)

	// Test endpoint
	router.GET("/ping", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"message": "pong", "status": "success"})
	})

	return router
}
