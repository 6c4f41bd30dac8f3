package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"

	"github.com/tristano-game/tristano-server-go/internal/bot"
	"github.com/tristano-game/tristano-server-go/internal/chat"
	"github.com/tristano-game/tristano-server-go/internal/config"
	"github.com/tristano-game/tristano-server-go/internal/lobby"
	"github.com/tristano-game/tristano-server-go/internal/repository"
	"github.com/tristano-game/tristano-server-go/internal/room"
	"github.com/tristano-game/tristano-server-go/internal/server"
	"github.com/tristano-game/tristano-server-go/internal/session"
)

var (
	configPath = flag.String("config", "config/config.yaml", "path to configuration file")
	version    = "dev" // set via ldflags during build
)

func main() {
	flag.Parse()

	// Load configuration
	cfg, err := config.Load(*configPath)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to load configuration: %v\n", err)
		os.Exit(1)
	}

	// Initialize logger
	logger, err := initLogger(cfg.Logging)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to initialize logger: %v\n", err)
		os.Exit(1)
	}
	defer logger.Sync()

	logger.Info("starting Tristano server",
		zap.String("version", version),
		zap.String("config", *configPath),
	)

	// Create context that listens for termination signals
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, os.Interrupt, syscall.SIGTERM)

	// Initialize match recording when a database is configured
	var matchRepo *repository.MatchRepository
	if cfg.Database.Enabled {
		db, dbErr := repository.NewDB(ctx, cfg.Database, logger)
		if dbErr != nil {
			logger.Fatal("failed to connect to database", zap.Error(dbErr))
		}
		defer db.Close()

		matchRepo = repository.NewMatchRepository(db)
		if schemaErr := matchRepo.EnsureSchema(ctx); schemaErr != nil {
			logger.Fatal("failed to ensure database schema", zap.Error(schemaErr))
		}

		stats := db.Stats()
		logger.Info("database connection pool initialized",
			zap.Int32("total_conns", stats.TotalConns()),
			zap.Int32("idle_conns", stats.IdleConns()),
		)
	} else {
		logger.Info("database disabled; match results will not be recorded")
	}

	// Initialize managers
	sessionMgr := session.NewManager(logger)
	lobbyDir := lobby.NewDirectory(logger)
	roomMgr := room.NewManager(logger)
	chatMgr := chat.NewManager(logger)
	agent := bot.New(logger)
	logger.Info("managers initialized",
		zap.String("bot_name", agent.Name()),
		zap.Duration("ai_move_delay", cfg.Server.AIMoveDelay),
	)

	gameServer := server.New(cfg, sessionMgr, lobbyDir, roomMgr, chatMgr, agent, matchRepo, logger)

	hub := server.NewHub(gameServer, logger)
	go hub.Run(ctx)

	// Start WebSocket server
	wsErrCh := make(chan error, 1)
	go func() {
		if wsErr := server.StartWebSocketServer(ctx, cfg.Server.WebSocket, hub, logger); wsErr != nil {
			wsErrCh <- wsErr
		}
	}()

	// Periodic stats logging
	go logStats(ctx, gameServer, cfg.Server.StatsInterval, logger)

	logger.Info("Tristano server initialized",
		zap.String("websocket_address", cfg.Server.WebSocket.Address),
		zap.Int("max_sessions", cfg.Server.MaxSessions),
	)

	// Wait for termination signal or a fatal listener error
	select {
	case sig := <-sigChan:
		logger.Info("received shutdown signal", zap.String("signal", sig.String()))
	case wsErr := <-wsErrCh:
		logger.Error("WebSocket server error", zap.Error(wsErr))
	}

	logger.Info("shutting down gracefully...")
	cancel()

	logger.Info("Tristano server stopped")
}

func logStats(ctx context.Context, srv *server.GameServer, interval time.Duration, logger *zap.Logger) {
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-ticker.C:
			stats := srv.GetStats()
			logger.Info("server stats",
				zap.Int("connections", stats.ActiveConnections),
				zap.Int("lobby_players", stats.LobbyPlayers),
				zap.Int("open_rooms", stats.OpenRooms),
				zap.Int("running_games", stats.RunningGames),
			)
		case <-ctx.Done():
			return
		}
	}
}

// initLogger initializes the zap logger based on configuration
func initLogger(cfg config.LoggingConfig) (*zap.Logger, error) {
	var level zapcore.Level
	switch cfg.Level {
	case "debug":
		level = zapcore.DebugLevel
	case "info":
		level = zapcore.InfoLevel
	case "warn":
		level = zapcore.WarnLevel
	case "error":
		level = zapcore.ErrorLevel
	default:
		level = zapcore.InfoLevel
	}

	var zapCfg zap.Config
	if cfg.Format == "json" {
		zapCfg = zap.NewProductionConfig()
	} else {
		zapCfg = zap.NewDevelopmentConfig()
		zapCfg.EncoderConfig.EncodeLevel = zapcore.CapitalColorLevelEncoder
	}

	zapCfg.Level = zap.NewAtomicLevelAt(level)

	return zapCfg.Build()
}
