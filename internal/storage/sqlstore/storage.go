package sqlstore

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"

	// Pure-Go sqlite driver registered as "sqlite"
	_ "modernc.org/sqlite"

	"github.com/mcoot/clubdesk/internal/model"
	"github.com/mcoot/clubdesk/internal/storage"
)

// Config holds sqlite connection settings
type Config struct {
	// Path is the database file. Use InMemory for a throwaway database.
	Path string
	// BusyTimeout is how long a statement waits on a locked database
	BusyTimeout time.Duration
	// Logger receives gorm's slow-query and error logs (optional)
	Logger *slog.Logger
}

// DefaultConfig returns the default sqlite configuration
func DefaultConfig() Config {
	return Config{
		Path:        "clubdesk.db",
		BusyTimeout: 5 * time.Second,
	}
}

// InMemory returns a Path for a private in-memory database named name.
// Databases with different names never share data.
func InMemory(name string) string {
	return "file:" + name + "?mode=memory&cache=shared"
}

// Storage is a gorm-backed sqlite implementation of the storage interface
type Storage struct {
	db *gorm.DB
}

// Ensure Storage implements the interface
var _ storage.Storage = (*Storage)(nil)

// Open connects to the sqlite database and creates the schema if needed
func Open(cfg Config) (*Storage, error) {
	if cfg.Path == "" {
		cfg.Path = DefaultConfig().Path
	}
	if cfg.BusyTimeout == 0 {
		cfg.BusyTimeout = DefaultConfig().BusyTimeout
	}

	gormCfg := &gorm.Config{
		Logger: logger.Discard,
	}
	if cfg.Logger != nil {
		gormCfg.Logger = logger.New(slogWriter{cfg.Logger}, logger.Config{
			SlowThreshold:             200 * time.Millisecond,
			LogLevel:                  logger.Warn,
			IgnoreRecordNotFoundError: true,
		})
	}

	db, err := gorm.Open(sqlite.New(sqlite.Config{
		DSN:        dsn(cfg),
		DriverName: "sqlite",
	}), gormCfg)
	if err != nil {
		return nil, fmt.Errorf("%w: open %s: %w", model.ErrStoreUnavailable, cfg.Path, err)
	}

	sqlDB, err := db.DB()
	if err != nil {
		return nil, fmt.Errorf("%w: %w", model.ErrStoreUnavailable, err)
	}
	// One writer at a time; also keeps an in-memory database alive
	sqlDB.SetMaxOpenConns(1)

	s := &Storage{db: db}
	if err := s.migrate(); err != nil {
		_ = sqlDB.Close()
		return nil, err
	}
	return s, nil
}

// NewWithDB wraps an existing gorm handle (for testing). The schema is
// created if missing.
func NewWithDB(db *gorm.DB) (*Storage, error) {
	s := &Storage{db: db}
	if err := s.migrate(); err != nil {
		return nil, err
	}
	return s, nil
}

// DB exposes the gorm handle (for testing)
func (s *Storage) DB() *gorm.DB {
	return s.db
}

func (s *Storage) migrate() error {
	if err := s.db.AutoMigrate(allTables...); err != nil {
		return fmt.Errorf("%w: create schema: %w", model.ErrStoreUnavailable, err)
	}
	return nil
}

// Close closes the database connection
func (s *Storage) Close() error {
	sqlDB, err := s.db.DB()
	if err != nil {
		return err
	}
	return sqlDB.Close()
}

// Transact runs fn inside a gorm transaction
func (s *Storage) Transact(ctx context.Context, fn func(tx storage.Tx) error) error {
	err := s.db.WithContext(ctx).Transaction(func(db *gorm.DB) error {
		return fn(&tx{db: db})
	})
	if err == nil {
		return nil
	}
	return translate(err)
}

// slogWriter adapts slog to gorm's logger.Writer
type slogWriter struct {
	logger *slog.Logger
}

func (w slogWriter) Printf(format string, args ...any) {
	w.logger.Warn(fmt.Sprintf(format, args...), slog.String("component", "gorm"))
}

func dsn(cfg Config) string {
	sep := "?"
	if strings.Contains(cfg.Path, "?") {
		sep = "&"
	}
	return fmt.Sprintf("%s%s_pragma=foreign_keys(1)&_pragma=busy_timeout(%d)",
		cfg.Path, sep, cfg.BusyTimeout.Milliseconds())
}

// translate maps driver errors onto the model error kinds. Errors that
// already carry a model kind pass through untouched.
func translate(err error) error {
	switch {
	case err == nil:
		return nil
	case errors.Is(err, model.ErrNotFound),
		errors.Is(err, model.ErrInvalidCredentials),
		errors.Is(err, model.ErrValidation),
		errors.Is(err, model.ErrUnauthorized),
		errors.Is(err, model.ErrConstraintViolation),
		errors.Is(err, model.ErrStoreUnavailable),
		errors.Is(err, model.ErrDuplicateUsername),
		errors.Is(err, model.ErrInvalidRole),
		errors.Is(err, model.ErrProfileRequired):
		return err
	}

	msg := err.Error()
	switch {
	case strings.Contains(msg, "UNIQUE constraint failed: users.username"):
		return model.ErrDuplicateUsername
	case strings.Contains(msg, "UNIQUE constraint failed"),
		strings.Contains(msg, "FOREIGN KEY constraint failed"),
		strings.Contains(msg, "CHECK constraint failed"),
		strings.Contains(msg, "NOT NULL constraint failed"):
		return fmt.Errorf("%w: %s", model.ErrConstraintViolation, msg)
	default:
		return fmt.Errorf("%w: %w", model.ErrStoreUnavailable, err)
	}
}
