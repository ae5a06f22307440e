package auth

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strconv"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"

	"github.com/mcoot/clubdesk/internal/model"
	"github.com/mcoot/clubdesk/internal/storage"
)

// ErrInvalidToken is returned when a session token cannot be resumed
var ErrInvalidToken = fmt.Errorf("invalid or expired session token: %w", model.ErrInvalidCredentials)

type claims struct {
	Username string `json:"username"`
	Role     string `json:"role"`
	jwt.RegisteredClaims
}

// TokensEnabled reports whether a token secret is configured
func (s *Service) TokensEnabled() bool {
	return len(s.cfg.TokenSecret) > 0
}

// IssueToken signs a token that Resume accepts until it expires. It
// returns an empty string when tokens are not enabled.
func (s *Service) IssueToken(session *Session) (string, error) {
	if !s.TokensEnabled() {
		return "", nil
	}
	c := claims{
		Username: session.Username,
		Role:     session.Actor.Role.String(),
		RegisteredClaims: jwt.RegisteredClaims{
			ID:        session.ID.String(),
			Subject:   strconv.FormatUint(uint64(session.Actor.UserID), 10),
			IssuedAt:  jwt.NewNumericDate(session.AuthenticatedAt),
			ExpiresAt: jwt.NewNumericDate(session.AuthenticatedAt.Add(s.cfg.TokenTTL)),
		},
	}
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, c)
	signed, err := token.SignedString(s.cfg.TokenSecret)
	if err != nil {
		return "", fmt.Errorf("sign session token: %w", err)
	}
	return signed, nil
}

// Resume turns a token back into a session. The account must still exist;
// its current role is used rather than the one in the token.
func (s *Service) Resume(ctx context.Context, token string) (*Session, error) {
	if !s.TokensEnabled() {
		return nil, ErrInvalidToken
	}

	var c claims
	_, err := jwt.ParseWithClaims(token, &c, func(t *jwt.Token) (any, error) {
		return s.cfg.TokenSecret, nil
	},
		jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}),
		jwt.WithTimeFunc(s.clock.Now),
		jwt.WithExpirationRequired(),
	)
	if err != nil {
		s.logger.Warn("session token rejected", slog.String("error", err.Error()))
		return nil, ErrInvalidToken
	}

	sessionID, err := uuid.Parse(c.ID)
	if err != nil {
		return nil, ErrInvalidToken
	}
	userID, err := strconv.ParseUint(c.Subject, 10, 64)
	if err != nil {
		return nil, ErrInvalidToken
	}

	var user *model.User
	err = s.storage.Transact(ctx, func(tx storage.Tx) error {
		var err error
		user, err = tx.GetUser(ctx, model.UserID(userID))
		return err
	})
	if errors.Is(err, model.ErrUserNotFound) {
		return nil, ErrInvalidToken
	}
	if err != nil {
		return nil, err
	}

	session := &Session{
		ID:       sessionID,
		Actor:    user.Actor(),
		Username: user.Username,
	}
	if c.IssuedAt != nil {
		session.AuthenticatedAt = c.IssuedAt.Time
	}
	return session, nil
}
