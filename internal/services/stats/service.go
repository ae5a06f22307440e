// Package stats records per-match player statistics.
package stats

import (
	"context"
	"errors"
	"log/slog"

	"github.com/mcoot/clubdesk/internal/dependencies/clock"
	"github.com/mcoot/clubdesk/internal/model"
	"github.com/mcoot/clubdesk/internal/services/policy"
	"github.com/mcoot/clubdesk/internal/storage"
)

// StatInput is one match's counters for the acting player
type StatInput struct {
	MatchID     model.MatchID
	Goals       int
	Assists     int
	YellowCards int
	RedCards    int
}

// Service handles stat entry and retrieval
type Service struct {
	storage storage.Storage
	clock   clock.Clock
	logger  *slog.Logger
}

// New creates a new stats Service
func New(storage storage.Storage, clock clock.Clock, logger *slog.Logger) *Service {
	return &Service{
		storage: storage,
		clock:   clock,
		logger:  logger.With(slog.String("component", "stats")),
	}
}

func validate(in StatInput) error {
	counters := []struct {
		field string
		value int
	}{
		{"goals", in.Goals},
		{"assists", in.Assists},
		{"yellow_cards", in.YellowCards},
		{"red_cards", in.RedCards},
	}
	for _, c := range counters {
		if c.value < 0 {
			return model.NewValidationError(c.field, "must not be negative")
		}
	}
	return nil
}

// Record stores the actor's stats for a match. Recording again for the
// same match replaces the earlier counters.
func (s *Service) Record(ctx context.Context, actor model.Actor, in StatInput) (*model.PlayerStat, error) {
	if err := policy.Require(actor, policy.Create, policy.OwnStats); err != nil {
		return nil, s.logFailure("record stats", actor, err)
	}
	if err := validate(in); err != nil {
		return nil, err
	}

	var stat *model.PlayerStat
	err := s.storage.Transact(ctx, func(tx storage.Tx) error {
		player, err := tx.GetPlayerByUser(ctx, actor.UserID)
		if errors.Is(err, model.ErrPlayerNotFound) {
			return model.ErrProfileRequired
		}
		if err != nil {
			return err
		}
		if _, err := tx.GetMatch(ctx, in.MatchID); err != nil {
			return err
		}

		stat = &model.PlayerStat{
			PlayerID:    player.ID,
			MatchID:     in.MatchID,
			Goals:       in.Goals,
			Assists:     in.Assists,
			YellowCards: in.YellowCards,
			RedCards:    in.RedCards,
			RecordedAt:  s.clock.Now(),
		}
		return tx.UpsertPlayerStat(ctx, stat)
	})
	if err != nil {
		return nil, s.logFailure("record stats", actor, err)
	}

	s.logger.Info("stats recorded",
		slog.Uint64("stat_id", uint64(stat.ID)),
		slog.Uint64("player_id", uint64(stat.PlayerID)),
		slog.Uint64("match_id", uint64(stat.MatchID)),
	)
	return stat, nil
}

// ListOwn returns the actor's stat lines, newest match first
func (s *Service) ListOwn(ctx context.Context, actor model.Actor) ([]model.StatLine, error) {
	if err := policy.Require(actor, policy.Read, policy.OwnStats); err != nil {
		return nil, s.logFailure("list stats", actor, err)
	}

	var lines []model.StatLine
	err := s.storage.Transact(ctx, func(tx storage.Tx) error {
		player, err := tx.GetPlayerByUser(ctx, actor.UserID)
		if errors.Is(err, model.ErrPlayerNotFound) {
			return model.ErrProfileRequired
		}
		if err != nil {
			return err
		}
		lines, err = tx.ListStatLines(ctx, player.ID)
		return err
	})
	if err != nil {
		return nil, s.logFailure("list stats", actor, err)
	}
	return lines, nil
}

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
