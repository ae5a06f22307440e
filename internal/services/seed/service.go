// Package seed creates the accounts a fresh database starts with.
package seed

import (
	"context"
	"errors"
	"log/slog"

	"github.com/mcoot/clubdesk/internal/credential"
	"github.com/mcoot/clubdesk/internal/dependencies/clock"
	"github.com/mcoot/clubdesk/internal/model"
	"github.com/mcoot/clubdesk/internal/storage"
)

// Default accounts
const (
	AdminUsername = "admin"
	AdminPassword = "admin123"
	AdminEmail    = "admin@example.com"

	DemoCoachUsername  = "coach"
	DemoCoachPassword  = "coach123"
	DemoPlayerUsername = "player"
	DemoPlayerPassword = "player123"
)

// Config controls what Ensure creates
type Config struct {
	// AdminPassword overrides the default admin password
	AdminPassword string
	// Demo adds a coach and a player account
	Demo bool
}

type account struct {
	username string
	password string
	email    string
	role     model.Role
}

// Service seeds accounts
type Service struct {
	storage storage.Storage
	hasher  credential.Hasher
	clock   clock.Clock
	logger  *slog.Logger
}

// New creates a new seed Service
func New(storage storage.Storage, hasher credential.Hasher, clock clock.Clock, logger *slog.Logger) *Service {
	return &Service{
		storage: storage,
		hasher:  hasher,
		clock:   clock,
		logger:  logger.With(slog.String("component", "seed")),
	}
}

// Ensure creates each default account that does not exist yet and returns
// the usernames it created. Running it again creates nothing.
func (s *Service) Ensure(ctx context.Context, cfg Config) ([]string, error) {
	adminPassword := cfg.AdminPassword
	if adminPassword == "" {
		adminPassword = AdminPassword
	}
	if len(adminPassword) > credential.MaxPasswordBytes {
		return nil, model.NewValidationError("admin_password", "must be at most 72 bytes")
	}
	accounts := []account{
		{username: AdminUsername, password: adminPassword, email: AdminEmail, role: model.RoleAdmin},
	}
	if cfg.Demo {
		accounts = append(accounts,
			account{username: DemoCoachUsername, password: DemoCoachPassword, role: model.RoleCoach},
			account{username: DemoPlayerUsername, password: DemoPlayerPassword, role: model.RolePlayer},
		)
	}

	var created []string
	err := s.storage.Transact(ctx, func(tx storage.Tx) error {
		created = created[:0]
		for _, a := range accounts {
			_, err := tx.GetUserByUsername(ctx, a.username)
			if err == nil {
				continue
			}
			if !errors.Is(err, model.ErrUserNotFound) {
				return err
			}

			hash, err := s.hasher.Hash(a.password)
			if err != nil {
				return err
			}
			user := &model.User{
				Username:     a.username,
				PasswordHash: hash,
				Email:        model.OptionalText(a.email),
				Role:         a.role,
				CreatedAt:    s.clock.Now(),
			}
			if err := tx.CreateUser(ctx, user); err != nil {
				return err
			}
			created = append(created, a.username)
		}
		return nil
	})
	if err != nil {
		s.logger.Error("failed to seed accounts", slog.String("error", err.Error()))
		return nil, err
	}

	for _, username := range created {
		s.logger.Info("account seeded", slog.String("username", username))
	}
	return created, nil
}
