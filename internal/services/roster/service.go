// Package roster manages user accounts and player profiles.
package roster

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"

	"github.com/mcoot/clubdesk/internal/dependencies/clock"
	"github.com/mcoot/clubdesk/internal/model"
	"github.com/mcoot/clubdesk/internal/services/policy"
	"github.com/mcoot/clubdesk/internal/storage"
)

// ProfileInput is the editable part of a player profile
type ProfileInput struct {
	Name         string
	Position     string
	JerseyNumber int
	// JoinDate is YYYY-MM-DD. Blank means today for a new profile and
	// unchanged for an existing one.
	JoinDate string
}

// Service handles the roster operations
type Service struct {
	storage storage.Storage
	clock   clock.Clock
	logger  *slog.Logger
}

// New creates a new roster Service
func New(storage storage.Storage, clock clock.Clock, logger *slog.Logger) *Service {
	return &Service{
		storage: storage,
		clock:   clock,
		logger:  logger.With(slog.String("component", "roster")),
	}
}

// UpsertProfile creates the actor's player profile, or updates it if one
// exists. Repeating the same input leaves the same profile.
func (s *Service) UpsertProfile(ctx context.Context, actor model.Actor, in ProfileInput) (*model.Player, error) {
	var player *model.Player
	created := false
	err := s.storage.Transact(ctx, func(tx storage.Tx) error {
		existing, err := tx.GetPlayerByUser(ctx, actor.UserID)
		switch {
		case errors.Is(err, model.ErrPlayerNotFound):
			if err := policy.Require(actor, policy.Create, policy.OwnPlayer); err != nil {
				return err
			}
			if _, err := tx.GetUser(ctx, actor.UserID); err != nil {
				return err
			}
			player = &model.Player{UserID: actor.UserID, JoinDate: s.clock.Now()}
			created = true
		case err != nil:
			return err
		default:
			if err := policy.Require(actor, policy.Update, policy.OwnPlayer); err != nil {
				return err
			}
			player = existing
		}

		if err := applyProfile(player, in); err != nil {
			return err
		}
		return tx.SavePlayer(ctx, player)
	})
	if err != nil {
		return nil, s.logFailure("upsert profile", actor, err)
	}

	msg := "player profile updated"
	if created {
		msg = "player profile created"
	}
	s.logger.Info(msg,
		slog.Uint64("player_id", uint64(player.ID)),
		slog.Uint64("user_id", uint64(player.UserID)),
	)
	return player, nil
}

func applyProfile(p *model.Player, in ProfileInput) error {
	name := strings.TrimSpace(in.Name)
	if name == "" {
		return model.NewValidationError("name", "is required")
	}
	position := strings.TrimSpace(in.Position)
	if position == "" {
		return model.NewValidationError("position", "is required")
	}
	if in.JerseyNumber < 0 {
		return model.NewValidationError("jersey_number", "must not be negative")
	}
	if strings.TrimSpace(in.JoinDate) != "" {
		joined, err := model.ParseDate("join_date", in.JoinDate)
		if err != nil {
			return err
		}
		p.JoinDate = joined
	}
	p.Name = name
	p.Position = position
	p.JerseyNumber = in.JerseyNumber
	return nil
}

// GetProfile returns the actor's own player profile
func (s *Service) GetProfile(ctx context.Context, actor model.Actor) (*model.Player, error) {
	if err := policy.Require(actor, policy.Read, policy.OwnPlayer); err != nil {
		return nil, s.logFailure("get profile", actor, err)
	}
	var player *model.Player
	err := s.storage.Transact(ctx, func(tx storage.Tx) error {
		var err error
		player, err = tx.GetPlayerByUser(ctx, actor.UserID)
		if errors.Is(err, model.ErrPlayerNotFound) {
			return model.ErrProfileRequired
		}
		return err
	})
	if err != nil {
		return nil, s.logFailure("get profile", actor, err)
	}
	return player, nil
}

// ListPlayers returns every player profile ordered by name. Players may
// read other profiles; admins see them to pick deletion targets.
func (s *Service) ListPlayers(ctx context.Context, actor model.Actor) ([]model.PlayerListing, error) {
	if !policy.Can(actor.Role, policy.Read, policy.OtherPlayer) && !policy.Can(actor.Role, policy.Delete, policy.OtherPlayer) {
		return nil, s.logFailure("list players", actor, policy.Denied(actor, policy.Read, policy.OtherPlayer))
	}
	var players []model.PlayerListing
	err := s.storage.Transact(ctx, func(tx storage.Tx) error {
		var err error
		players, err = tx.ListPlayers(ctx)
		return err
	})
	if err != nil {
		return nil, s.logFailure("list players", actor, err)
	}
	return players, nil
}

// ListUsers returns accounts ordered by username, optionally only those
// with the given role. Only actors that may delete users can list them.
func (s *Service) ListUsers(ctx context.Context, actor model.Actor, role model.Role) ([]model.User, error) {
	if err := policy.Require(actor, policy.Delete, policy.Users); err != nil {
		return nil, s.logFailure("list users", actor, err)
	}
	if role != "" && !role.Valid() {
		return nil, model.ErrInvalidRole
	}
	var users []model.User
	err := s.storage.Transact(ctx, func(tx storage.Tx) error {
		var err error
		users, err = tx.ListUsers(ctx, role)
		return err
	})
	if err != nil {
		return nil, s.logFailure("list users", actor, err)
	}
	return users, nil
}

// DeleteUser removes another user together with their player profile and
// its stats. Trainings the user ran as coach are kept.
func (s *Service) DeleteUser(ctx context.Context, actor model.Actor, userID model.UserID) error {
	if err := policy.Require(actor, policy.Delete, policy.Users); err != nil {
		return s.logFailure("delete user", actor, err)
	}
	if userID == actor.UserID {
		return s.logFailure("delete user", actor, errSelfDelete)
	}

	var removedStats int
	err := s.storage.Transact(ctx, func(tx storage.Tx) error {
		if _, err := tx.GetUser(ctx, userID); err != nil {
			return err
		}
		if p, err := tx.GetPlayerByUser(ctx, userID); err == nil {
			if removedStats, err = tx.CountPlayerStats(ctx, p.ID); err != nil {
				return err
			}
		} else if !errors.Is(err, model.ErrPlayerNotFound) {
			return err
		}
		return tx.DeleteUser(ctx, userID)
	})
	if err != nil {
		return s.logFailure("delete user", actor, err)
	}

	s.logger.Info("user deleted",
		slog.Uint64("user_id", uint64(userID)),
		slog.Uint64("by_user_id", uint64(actor.UserID)),
		slog.Int("stats_removed", removedStats),
	)
	return nil
}

// DeletePlayer removes a player profile and its stats. Deleting someone
// else's profile also removes the account that owns it; deleting your own
// keeps your account.
func (s *Service) DeletePlayer(ctx context.Context, actor model.Actor, playerID model.PlayerID) error {
	canOwn := policy.Can(actor.Role, policy.Delete, policy.OwnPlayer)
	canOther := policy.Can(actor.Role, policy.Delete, policy.OtherPlayer)
	if !canOwn && !canOther {
		return s.logFailure("delete player", actor, policy.Denied(actor, policy.Delete, policy.OtherPlayer))
	}

	var player *model.Player
	var removedStats int
	err := s.storage.Transact(ctx, func(tx storage.Tx) error {
		if !canOther {
			own, err := tx.GetPlayerByUser(ctx, actor.UserID)
			if errors.Is(err, model.ErrPlayerNotFound) || (err == nil && own.ID != playerID) {
				return policy.Denied(actor, policy.Delete, policy.OtherPlayer)
			}
			if err != nil {
				return err
			}
		}
		var err error
		if player, err = tx.GetPlayer(ctx, playerID); err != nil {
			return err
		}
		if removedStats, err = tx.CountPlayerStats(ctx, playerID); err != nil {
			return err
		}

		if player.UserID == actor.UserID {
			if err := policy.Require(actor, policy.Delete, policy.OwnPlayer); err != nil {
				return err
			}
			return tx.DeletePlayer(ctx, playerID)
		}
		if err := policy.Require(actor, policy.Delete, policy.OtherPlayer); err != nil {
			return err
		}
		return tx.DeleteUser(ctx, player.UserID)
	})
	if err != nil {
		return s.logFailure("delete player", actor, err)
	}

	s.logger.Info("player deleted",
		slog.Uint64("player_id", uint64(playerID)),
		slog.Uint64("user_id", uint64(player.UserID)),
		slog.Bool("account_removed", player.UserID != actor.UserID),
		slog.Int("stats_removed", removedStats),
	)
	return nil
}

var errSelfDelete = fmt.Errorf("%w: may not delete own account", model.ErrUnauthorized)

func (s *Service) logFailure(op string, actor model.Actor, err error) error {
	switch {
	case errors.Is(err, model.ErrUnauthorized):
		s.logger.Warn("operation denied",
			slog.String("op", op),
			slog.Uint64("user_id", uint64(actor.UserID)),
			slog.String("role", actor.Role.String()),
		)
	case errors.Is(err, model.ErrStoreUnavailable):
		s.logger.Error("operation failed",
			slog.String("op", op),
			slog.String("error", err.Error()),
		)
	}
	return err
}
