package auth

import (
	"context"
	"errors"
	"log/slog"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/mcoot/clubdesk/internal/credential"
	"github.com/mcoot/clubdesk/internal/dependencies/clock"
	"github.com/mcoot/clubdesk/internal/model"
	"github.com/mcoot/clubdesk/internal/storage"
)

// Session is the result of a successful login. It never carries the
// password hash.
type Session struct {
	ID              uuid.UUID
	Actor           model.Actor
	Username        string
	AuthenticatedAt time.Time
}

// RegisterInput is a self-service sign-up request
type RegisterInput struct {
	Username string
	Email    string // optional
	Password string
	Role     model.Role
}

// Service handles registration, login and session tokens
type Service struct {
	storage storage.Storage
	hasher  credential.Hasher
	clock   clock.Clock
	cfg     Config
	logger  *slog.Logger

	dummyOnce   sync.Once
	dummyDigest string
}

// Config holds configuration for the auth service
type Config struct {
	// TokenSecret signs session tokens. Tokens are not issued when empty.
	TokenSecret []byte
	TokenTTL    time.Duration
}

// DefaultConfig returns default auth configuration
func DefaultConfig() Config {
	return Config{
		TokenTTL: 12 * time.Hour,
	}
}

// New creates a new auth Service
func New(storage storage.Storage, hasher credential.Hasher, clock clock.Clock, cfg Config, logger *slog.Logger) *Service {
	if cfg.TokenTTL == 0 {
		cfg.TokenTTL = DefaultConfig().TokenTTL
	}
	return &Service{
		storage: storage,
		hasher:  hasher,
		clock:   clock,
		cfg:     cfg,
		logger:  logger.With(slog.String("component", "auth")),
	}
}

// Register creates a coach or player account
func (s *Service) Register(ctx context.Context, in RegisterInput) (*model.User, error) {
	username := strings.TrimSpace(in.Username)
	if username == "" {
		return nil, model.NewValidationError("username", "is required")
	}
	if in.Password == "" {
		return nil, model.NewValidationError("password", "is required")
	}
	if len(in.Password) > credential.MaxPasswordBytes {
		return nil, model.NewValidationError("password", "must be at most 72 bytes")
	}
	if !in.Role.SelfRegistrable() {
		return nil, model.ErrInvalidRole
	}
	email := model.OptionalText(in.Email)
	if email != nil && !strings.Contains(*email, "@") {
		return nil, model.NewValidationError("email", "is not an email address")
	}

	hash, err := s.hasher.Hash(in.Password)
	if err != nil {
		return nil, err
	}

	user := &model.User{
		Username:     username,
		PasswordHash: hash,
		Email:        email,
		Role:         in.Role,
		CreatedAt:    s.clock.Now(),
	}

	err = s.storage.Transact(ctx, func(tx storage.Tx) error {
		_, err := tx.GetUserByUsername(ctx, username)
		if err == nil {
			return model.ErrDuplicateUsername
		}
		if !errors.Is(err, model.ErrUserNotFound) {
			return err
		}
		return tx.CreateUser(ctx, user)
	})
	if err != nil {
		if errors.Is(err, model.ErrStoreUnavailable) {
			s.logger.Error("failed to register user",
				slog.String("username", username),
				slog.String("error", err.Error()),
			)
		}
		return nil, err
	}

	s.logger.Info("user registered",
		slog.Uint64("user_id", uint64(user.ID)),
		slog.String("username", user.Username),
		slog.String("role", user.Role.String()),
	)
	return user, nil
}

// Authenticate checks a username and password. An unknown username fails
// with an error matching both model.ErrUserNotFound and
// model.ErrInvalidCredentials; a wrong password fails with
// model.ErrBadCredential.
func (s *Service) Authenticate(ctx context.Context, username, password string) (*Session, error) {
	var session *Session
	err := s.storage.Transact(ctx, func(tx storage.Tx) error {
		user, err := tx.GetUserByUsername(ctx, username)
		if errors.Is(err, model.ErrUserNotFound) {
			// Unknown usernames cost one comparison too
			s.hasher.Verify(password, s.dummy())
			return model.UnknownUser(username)
		}
		if err != nil {
			return err
		}

		if !s.hasher.Verify(password, user.PasswordHash) {
			return model.ErrBadCredential
		}

		if s.hasher.NeedsRehash(user.PasswordHash) {
			s.rehash(ctx, tx, user, password)
		}

		session = &Session{
			ID:              uuid.New(),
			Actor:           user.Actor(),
			Username:        user.Username,
			AuthenticatedAt: s.clock.Now(),
		}
		return nil
	})
	if err != nil {
		if errors.Is(err, model.ErrInvalidCredentials) {
			s.logger.Warn("login failed", slog.String("username", username))
		}
		return nil, err
	}

	s.logger.Info("user authenticated",
		slog.Uint64("user_id", uint64(session.Actor.UserID)),
		slog.String("session_id", session.ID.String()),
	)
	return session, nil
}

// rehash upgrades a stored digest. Failure is logged and the login still
// succeeds with the old digest.
func (s *Service) rehash(ctx context.Context, tx storage.Tx, user *model.User, password string) {
	hash, err := s.hasher.Hash(password)
	if err == nil {
		err = tx.UpdatePasswordHash(ctx, user.ID, hash)
	}
	if err != nil {
		s.logger.Warn("failed to upgrade password hash",
			slog.Uint64("user_id", uint64(user.ID)),
			slog.String("error", err.Error()),
		)
		return
	}
	s.logger.Info("password hash upgraded", slog.Uint64("user_id", uint64(user.ID)))
}

func (s *Service) dummy() string {
	s.dummyOnce.Do(func() {
		s.dummyDigest, _ = s.hasher.Hash("clubdesk-dummy-password")
	})
	return s.dummyDigest
}
