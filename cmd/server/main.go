package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"io/fs"
	"net"
	"os"
	"os/signal"
	"syscall"

	"github.com/joho/godotenv"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"

	"github.com/datadeck/datadeck-server-go/internal/catalog"
	"github.com/datadeck/datadeck-server-go/internal/config"
	"github.com/datadeck/datadeck-server-go/internal/game"
	"github.com/datadeck/datadeck-server-go/internal/repository"
	"github.com/datadeck/datadeck-server-go/internal/server"
)

var (
	configPath = flag.String("config", "config/config.yaml", "path to configuration file")
	version    = "dev" // set via ldflags during build
)

func main() {
	flag.Parse()

	// .env is optional; real environment variables win.
	if err := godotenv.Load(); err != nil && !errors.Is(err, fs.ErrNotExist) {
		fmt.Fprintf(os.Stderr, "Failed to read .env: %v\n", err)
		os.Exit(1)
	}

	cfg, err := config.Load(*configPath)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to load configuration: %v\n", err)
		os.Exit(1)
	}

	logger, err := initLogger(cfg.Logging)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to initialize logger: %v\n", err)
		os.Exit(1)
	}
	defer logger.Sync()

	logger.Info("starting datadeck server",
		zap.String("version", version),
		zap.String("config", *configPath),
	)

	ctx, cancel := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer cancel()

	cat, err := loadCatalog(cfg.Game.CatalogPath, logger)
	if err != nil {
		logger.Fatal("failed to load card catalog", zap.Error(err))
	}

	if cfg.Database.Enabled {
		db, err := repository.NewDB(ctx, cfg.Database, logger)
		if err != nil {
			logger.Fatal("failed to connect to database", zap.Error(err))
		}
		defer db.Close()

		stats := db.Stat()
		logger.Info("database connection pool initialized",
			zap.Int32("total_conns", stats.TotalConns()),
			zap.Int32("idle_conns", stats.IdleConns()),
		)

		stored, err := repository.NewCardRepository(db).Catalog(ctx)
		if err != nil {
			logger.Fatal("failed to load decks from database", zap.Error(err))
		}
		for name, defs := range stored.Decks {
			cat.Decks[name] = defs
		}
		logger.Info("database decks loaded", zap.Int("decks", len(stored.Decks)))
	}

	if _, err := cat.Deck(cfg.Game.DefaultDeck); err != nil {
		logger.Fatal("default deck is not in the catalog",
			zap.String("deck", cfg.Game.DefaultDeck),
			zap.Strings("available", cat.Names()),
		)
	}

	gameMgr := game.NewManager(logger, game.ManagerConfig{
		StartingMana: cfg.Game.StartingMana,
		ReplayDir:    cfg.Game.ReplayDir,
		MaxSessions:  cfg.Server.MaxSessions,
	})
	logger.Info("game manager initialized",
		zap.Int("starting_mana", cfg.Game.StartingMana),
		zap.Bool("replays", cfg.Game.ReplayDir != ""),
	)

	hub := server.NewHub(gameMgr, cat, server.HubSettings{
		DefaultDeck: cfg.Game.DefaultDeck,
		MaxDeckSize: cfg.Game.MaxDeckSize,
		Seed:        cfg.Game.Seed,
	}, logger)
	go hub.Run(ctx)

	wsServer := server.NewWebSocketServer(cfg.Server.WebSocket, hub, logger)
	grpcServer := server.NewGRPCServer(cfg.Server.GRPC, logger)

	lis, err := net.Listen("tcp", cfg.Server.GRPC.Address)
	if err != nil {
		logger.Fatal("failed to listen", zap.Error(err))
	}

	go func() {
		if serveErr := grpcServer.Serve(lis); serveErr != nil {
			logger.Error("gRPC server error", zap.Error(serveErr))
		}
	}()

	go func() {
		if wsErr := wsServer.ListenAndServe(); wsErr != nil {
			logger.Error("WebSocket server error", zap.Error(wsErr))
			cancel()
		}
	}()

	logger.Info("datadeck server initialized",
		zap.String("version", version),
		zap.String("grpc_address", cfg.Server.GRPC.Address),
		zap.String("websocket_address", cfg.Server.WebSocket.Address),
		zap.Strings("decks", cat.Names()),
		zap.Int("max_sessions", cfg.Server.MaxSessions),
	)

	<-ctx.Done()
	logger.Info("shutting down gracefully...")

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), cfg.Server.ShutdownTimeout)
	defer shutdownCancel()

	if err := wsServer.Shutdown(shutdownCtx); err != nil {
		logger.Warn("WebSocket shutdown incomplete", zap.Error(err))
	}
	grpcServer.Shutdown(shutdownCtx)
	gameMgr.Shutdown()

	logger.Info("datadeck server stopped")
}

// loadCatalog reads the deck catalog, falling back to the built-in starter
// deck when the file does not exist.
func loadCatalog(path string, logger *zap.Logger) (*catalog.Catalog, error) {
	if path == "" {
		return catalog.Default(), nil
	}
	cat, err := catalog.LoadFile(path)
	if errors.Is(err, fs.ErrNotExist) {
		logger.Warn("catalog file not found; using starter deck", zap.String("path", path))
		return catalog.Default(), nil
	}
	if err != nil {
		return nil, err
	}
	if cat.Decks == nil {
		cat.Decks = make(map[string][]catalog.Definition)
	}
	logger.Info("catalog loaded", zap.String("path", path), zap.Strings("decks", cat.Names()))
	return cat, nil
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
