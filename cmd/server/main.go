package main

import (
	"context"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"github.com/mcoot/mindroll/internal/config"
	"github.com/mcoot/mindroll/internal/factory"
	"github.com/mcoot/mindroll/internal/ops"
	"github.com/mcoot/mindroll/internal/server"
	"github.com/mcoot/mindroll/internal/services/auth"
	"github.com/mcoot/mindroll/internal/services/room"
	"github.com/mcoot/mindroll/internal/services/users"
	redisstorage "github.com/mcoot/mindroll/internal/storage/redis"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		slog.Error("invalid configuration", slog.String("error", err.Error()))
		os.Exit(1)
	}
	level, _ := cfg.SlogLevel()

	// Set up logging with JSON output
	logger := slog.New(slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{
		Level: level,
	}))
	slog.SetDefault(logger)

	factoryCfg := factory.Config{
		Logger:      logger,
		StorageType: cfg.Storage,
		SQLitePath:  cfg.SQLitePath,
		AuthConfig: auth.Config{
			Secret:     []byte(cfg.TokenSecret),
			DefaultTTL: cfg.TokenTTL,
		},
		UsersConfig: users.Config{
			AdminUsers: cfg.AdminUsers,
		},
		RoomConfig: room.Config{
			ReconnectWindow:   cfg.ReconnectWindow,
			DisconnectTimeout: cfg.DisconnectTimeout,
			ResultDisplay:     cfg.ResultDisplay,
			DrawResultDisplay: cfg.DrawResultDisplay,
		},
	}
	if cfg.Storage == factory.StorageTypeRedis {
		redisCfg := redisstorage.DefaultConfig()
		redisCfg.URL = cfg.RedisURL
		factoryCfg.RedisConfig = &redisCfg
	}

	app, err := factory.New(factoryCfg)
	if err != nil {
		logger.Error("failed to create application", slog.String("error", err.Error()))
		os.Exit(1)
	}
	defer func() { _ = app.Close() }()

	// Handle graceful shutdown
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	go app.AuthService.RunJanitor(ctx, cfg.TokenJanitorInterval)

	rpcCfg := server.DefaultConfig()
	rpcCfg.Addr = cfg.RPCAddr
	rpcServer := server.New(rpcCfg, app.Dispatcher, app.RoomController, logger)
	if err := rpcServer.Listen(); err != nil {
		logger.Error("failed to start RPC server", slog.String("error", err.Error()))
		os.Exit(1)
	}

	errCh := make(chan error, 2)
	go func() {
		errCh <- rpcServer.Serve()
	}()

	var opsServer *ops.Server
	if cfg.OpsEnabled() {
		opsCfg := ops.DefaultConfig()
		opsCfg.Addr = cfg.OpsAddr
		opsServer = ops.NewServer(ops.NewRouter(ops.RouterConfig{
			Logger: logger,
			Rooms:  app.RoomController,
		}), opsCfg, logger)
		if err := opsServer.Listen(); err != nil {
			logger.Error("failed to start ops server", slog.String("error", err.Error()))
			os.Exit(1)
		}
		go func() {
			errCh <- opsServer.Serve()
		}()
	}

	logger.Info("server started",
		slog.String("rpc_addr", rpcServer.Addr()),
		slog.String("storage", factoryCfg.StorageType),
	)

	// Wait for shutdown or error
	exitCode := 0
	select {
	case err := <-errCh:
		if err != nil {
			logger.Error("server error", slog.String("error", err.Error()))
			exitCode = 1
		}
	case <-ctx.Done():
		logger.Info("shutdown signal received")
	}
	stop()

	if opsServer != nil {
		if err := opsServer.Shutdown(context.Background()); err != nil {
			logger.Error("shutdown error", slog.String("error", err.Error()))
			exitCode = 1
		}
	}
	if err := rpcServer.Shutdown(context.Background()); err != nil {
		logger.Error("shutdown error", slog.String("error", err.Error()))
		exitCode = 1
	}

	logger.Info("server stopped")
	if exitCode != 0 {
		_ = app.Close()
		os.Exit(exitCode)
	}
}
