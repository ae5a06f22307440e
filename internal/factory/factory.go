package factory

import (
	"fmt"
	"io"
	"log/slog"

	"github.com/mcoot/clubdesk/internal/config"
	"github.com/mcoot/clubdesk/internal/credential"
	"github.com/mcoot/clubdesk/internal/dependencies/clock"
	"github.com/mcoot/clubdesk/internal/services/auth"
	"github.com/mcoot/clubdesk/internal/services/roster"
	"github.com/mcoot/clubdesk/internal/services/schedule"
	"github.com/mcoot/clubdesk/internal/services/seed"
	"github.com/mcoot/clubdesk/internal/services/stats"
	"github.com/mcoot/clubdesk/internal/storage"
	"github.com/mcoot/clubdesk/internal/storage/memory"
	"github.com/mcoot/clubdesk/internal/storage/sqlstore"
)

// App contains all wired application components
type App struct {
	// Storage
	Storage storage.Storage

	// External dependencies
	Clock  clock.Clock
	Hasher credential.Hasher

	// Services
	AuthService     *auth.Service
	RosterService   *roster.Service
	ScheduleService *schedule.Service
	StatsService    *stats.Service
	SeedService     *seed.Service
}

// Config holds configuration for the application factory
type Config struct {
	// StorageType selects the storage backend ("sqlite" or "memory")
	// If empty, defaults to "sqlite"
	StorageType string
	// SQLite holds connection settings for the sqlite backend
	SQLite sqlstore.Config
	// BcryptCost is the bcrypt work factor. Zero means bcrypt.DefaultCost.
	BcryptCost int
	// AuthConfig holds configuration for the auth service (optional)
	AuthConfig auth.Config
	// Logger is the application logger (optional)
	// If nil, a no-op logger is used
	Logger *slog.Logger
}

// ConfigFrom builds a factory Config from loaded settings
func ConfigFrom(c *config.Config, logger *slog.Logger) Config {
	return Config{
		StorageType: c.Storage,
		SQLite: sqlstore.Config{
			Path:        c.DBPath,
			BusyTimeout: c.BusyTimeout,
			Logger:      logger,
		},
		BcryptCost: c.BcryptCost,
		AuthConfig: auth.Config{
			TokenSecret: []byte(c.TokenSecret),
			TokenTTL:    c.TokenTTL,
		},
		Logger: logger,
	}
}

// New creates a new application with all dependencies wired
func New(cfg Config) (*App, error) {
	logger := cfg.Logger
	if logger == nil {
		logger = slog.New(slog.NewJSONHandler(io.Discard, nil))
	}

	hasher, err := credential.NewBcrypt(cfg.BcryptCost)
	if err != nil {
		return nil, err
	}

	var store storage.Storage
	switch cfg.StorageType {
	case config.StorageSQLite, "":
		sqlStore, err := sqlstore.Open(cfg.SQLite)
		if err != nil {
			return nil, err
		}
		store = sqlStore
	case config.StorageMemory:
		store = memory.New()
	default:
		return nil, fmt.Errorf("invalid StorageType %q: must be %q or %q",
			cfg.StorageType, config.StorageSQLite, config.StorageMemory)
	}

	return newWithDependencies(store, clock.New(), hasher, cfg.AuthConfig, logger), nil
}

// newWithDependencies creates an App with the given dependencies (useful for testing)
func newWithDependencies(store storage.Storage, clk clock.Clock, hasher credential.Hasher, authCfg auth.Config, logger *slog.Logger) *App {
	return &App{
		Storage:         store,
		Clock:           clk,
		Hasher:          hasher,
		AuthService:     auth.New(store, hasher, clk, authCfg, logger),
		RosterService:   roster.New(store, clk, logger),
		ScheduleService: schedule.New(store, logger),
		StatsService:    stats.New(store, clk, logger),
		SeedService:     seed.New(store, hasher, clk, logger),
	}
}

// Close releases the storage backend
func (a *App) Close() error {
	return a.Storage.Close()
}
