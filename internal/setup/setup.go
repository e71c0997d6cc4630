package setup

import (
	"context"
	"fmt"

	"github.com/disgoorg/disgo"
	"github.com/disgoorg/disgo/bot"
	"github.com/redis/rueidis"
	"github.com/wardenlabs/unionwarden/internal/database"
	discordutil "github.com/wardenlabs/unionwarden/internal/discord"
	"github.com/wardenlabs/unionwarden/internal/logging"
	"github.com/wardenlabs/unionwarden/internal/redis"
	"github.com/wardenlabs/unionwarden/internal/setup/config"
	"go.uber.org/zap"
)

// App bundles all core dependencies and services needed by the application.
// Components receive their dependencies explicitly; nothing reaches into
// process-wide state.
type App struct {
	Config       *config.Config           // Application configuration
	Logger       *zap.Logger              // Main application logger
	DBLogger     *zap.Logger              // Database-specific logger
	DB           database.Client          // Database connection pool
	RedisManager *redis.Manager           // Redis connection manager
	StatusClient rueidis.Client           // Redis client for worker status reporting
	Discord      bot.Client               // Discord REST client
	Oracle       *discordutil.GuildOracle // Live guild membership oracle
}

// InitializeApp bootstraps all application dependencies in the correct order,
// ensuring each component has its required dependencies available.
func InitializeApp(ctx context.Context, logDir string) (*App, error) {
	// Load app configuration
	cfg, _, err := config.LoadConfig()
	if err != nil {
		return nil, err
	}

	// Logging system is initialized next to capture setup issues
	logger, dbLogger, err := logging.SetupLogging(
		logDir, cfg.Common.Debug.LogLevel, cfg.Common.Debug.MaxLogsToKeep,
	)
	if err != nil {
		return nil, err
	}

	// Redis manager provides connection pools for various subsystems
	redisManager := redis.NewManager(&cfg.Common.Redis, logger)

	// Initialize database with automatic migrations
	db, err := database.NewConnection(ctx, &cfg.Common.PostgreSQL, dbLogger.Named("database"), true)
	if err != nil {
		return nil, err
	}

	// Get Redis client for worker status reporting
	statusClient, err := redisManager.GetClient(redis.WorkerStatusDBIndex)
	if err != nil {
		return nil, err
	}

	// Base Discord client; the bot entrypoint layers gateway listeners
	// on top of its own client, workers only need REST
	client, err := disgo.New(cfg.Common.Discord.Token)
	if err != nil {
		return nil, fmt.Errorf("failed to create Discord client: %w", err)
	}

	oracle := discordutil.NewGuildOracle(client, cfg.Common.Discord.GuildID, logger)

	// Bundle all initialized components
	return &App{
		Config:       cfg,
		Logger:       logger,
		DBLogger:     dbLogger,
		DB:           db,
		RedisManager: redisManager,
		StatusClient: statusClient,
		Discord:      client,
		Oracle:       oracle,
	}, nil
}

// Cleanup ensures graceful shutdown of all components in reverse initialization order.
// Logs but does not fail on cleanup errors to ensure all components get cleanup attempts.
func (a *App) Cleanup(ctx context.Context) {
	a.Discord.Close(ctx)

	if err := a.DB.Close(); err != nil {
		a.Logger.Error("Failed to close database connection", zap.Error(err))
	}

	a.RedisManager.Close()

	_ = a.Logger.Sync()
	_ = a.DBLogger.Sync()
}
