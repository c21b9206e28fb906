package factory

import (
	"errors"
	"fmt"
	"io"
	"log/slog"

	"github.com/mcoot/mindroll/internal/dependencies/clock"
	"github.com/mcoot/mindroll/internal/dependencies/random"
	"github.com/mcoot/mindroll/internal/rpc"
	"github.com/mcoot/mindroll/internal/services/auth"
	"github.com/mcoot/mindroll/internal/services/room"
	"github.com/mcoot/mindroll/internal/services/users"
	"github.com/mcoot/mindroll/internal/storage"
	"github.com/mcoot/mindroll/internal/storage/memory"
	redisstorage "github.com/mcoot/mindroll/internal/storage/redis"
	sqlitestorage "github.com/mcoot/mindroll/internal/storage/sqlite"
)

// Storage type constants
const (
	StorageTypeMemory = "memory"
	StorageTypeRedis  = "redis"
	StorageTypeSQLite = "sqlite"
)

// secretLength is the length of a generated token secret
const secretLength = 48

// App contains all wired application components
type App struct {
	// Storage
	Storage storage.Storage

	// External dependencies
	Clock  clock.Clock
	Random random.Random

	// Services
	UserService    *users.Service
	AuthService    *auth.Service
	RoomController *room.Controller
	Dispatcher     *rpc.Dispatcher
}

// Config holds configuration for the application factory
type Config struct {
	// Logger is the application logger (optional)
	// If nil, a no-op logger is used
	Logger *slog.Logger
	// StorageType selects the storage backend ("memory", "redis" or "sqlite")
	// If empty, defaults to "memory"
	StorageType string
	// RedisConfig holds Redis connection settings (required if StorageType is "redis")
	RedisConfig *redisstorage.Config
	// SQLitePath is the database file (required if StorageType is "sqlite")
	SQLitePath string
	// AuthConfig holds configuration for the auth service (optional)
	// If the secret is empty a random one is generated
	AuthConfig auth.Config
	// UsersConfig holds configuration for the user store (optional)
	UsersConfig users.Config
	// RoomConfig holds room timings (optional); zero fields use room.DefaultConfig()
	RoomConfig room.Config
}

// New creates a new application with all dependencies wired
func New(cfg Config) (*App, error) {
	logger := cfg.Logger
	if logger == nil {
		logger = slog.New(slog.NewJSONHandler(io.Discard, nil))
	}

	store, err := openStorage(cfg)
	if err != nil {
		return nil, err
	}

	clk := clock.New()
	rnd := random.New()

	authCfg := cfg.AuthConfig
	if len(authCfg.Secret) == 0 {
		logger.Warn("no token secret configured; tokens will not survive a restart")
		authCfg.Secret = []byte(rnd.String(secretLength, random.SecretAlphabet))
	}

	return newWithDependencies(store, clk, rnd, authCfg, cfg.UsersConfig, cfg.RoomConfig, logger), nil
}

func openStorage(cfg Config) (storage.Storage, error) {
	storageType := cfg.StorageType
	if storageType == "" {
		storageType = StorageTypeMemory
	}

	switch storageType {
	case StorageTypeMemory:
		return memory.New(), nil
	case StorageTypeRedis:
		if cfg.RedisConfig == nil {
			return nil, errors.New("RedisConfig required when StorageType is redis")
		}
		redisStore, err := redisstorage.New(*cfg.RedisConfig)
		if err != nil {
			return nil, err
		}
		return redisStore, nil
	case StorageTypeSQLite:
		if cfg.SQLitePath == "" {
			return nil, errors.New("SQLitePath required when StorageType is sqlite")
		}
		sqliteStore, err := sqlitestorage.Open(cfg.SQLitePath)
		if err != nil {
			return nil, err
		}
		return sqliteStore, nil
	default:
		return nil, fmt.Errorf("invalid StorageType %q: must be 'memory', 'redis' or 'sqlite'", storageType)
	}
}

// newWithDependencies creates an App with the given dependencies (useful for testing)
func newWithDependencies(
	store storage.Storage,
	clk clock.Clock,
	rnd random.Random,
	authCfg auth.Config,
	usersCfg users.Config,
	roomCfg room.Config,
	logger *slog.Logger,
) *App {
	userService := users.New(store, clk, logger, usersCfg)
	authService := auth.New(store, userService, clk, authCfg, logger)
	roomController := room.NewController(clk, rnd, logger, roomCfg)
	dispatcher := rpc.NewDispatcher(userService, authService, roomController, logger)

	return &App{
		Storage:        store,
		Clock:          clk,
		Random:         rnd,
		UserService:    userService,
		AuthService:    authService,
		RoomController: roomController,
		Dispatcher:     dispatcher,
	}
}

// Close releases the storage backend if it holds resources
func (a *App) Close() error {
	if closer, ok := a.Storage.(io.Closer); ok {
		return closer.Close()
	}
	return nil
}
