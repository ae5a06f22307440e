// Package schedule manages trainings and matches.
package schedule

import (
	"context"
	"errors"
	"log/slog"
	"strings"

	"github.com/mcoot/clubdesk/internal/model"
	"github.com/mcoot/clubdesk/internal/services/policy"
	"github.com/mcoot/clubdesk/internal/storage"
)

// UnknownCoach labels trainings whose coach account is gone
const UnknownCoach = "unknown"

// TrainingInput is the editable part of a training
type TrainingInput struct {
	Date      string // YYYY-MM-DD
	Duration  int    // minutes
	FocusArea string
	Notes     string // optional
}

// MatchInput is the editable part of a match
type MatchInput struct {
	Opponent string
	Date     string // YYYY-MM-DD
	Location string
	Score    string // optional, stored verbatim
	Notes    string // optional
}

// Service handles the training and match calendars
type Service struct {
	storage storage.Storage
	logger  *slog.Logger
}

// New creates a new schedule Service
func New(storage storage.Storage, logger *slog.Logger) *Service {
	return &Service{
		storage: storage,
		logger:  logger.With(slog.String("component", "schedule")),
	}
}

func applyTraining(t *model.Training, in TrainingInput) error {
	date, err := model.ParseDate("date", in.Date)
	if err != nil {
		return err
	}
	if in.Duration <= 0 {
		return model.NewValidationError("duration", "must be a positive number of minutes")
	}
	focus := strings.TrimSpace(in.FocusArea)
	if focus == "" {
		return model.NewValidationError("focus_area", "is required")
	}
	t.Date = date
	t.Duration = in.Duration
	t.FocusArea = focus
	t.Notes = model.OptionalText(in.Notes)
	return nil
}

func applyMatch(m *model.Match, in MatchInput) error {
	opponent := strings.TrimSpace(in.Opponent)
	if opponent == "" {
		return model.NewValidationError("opponent", "is required")
	}
	date, err := model.ParseDate("date", in.Date)
	if err != nil {
		return err
	}
	location := strings.TrimSpace(in.Location)
	if location == "" {
		return model.NewValidationError("location", "is required")
	}
	m.Opponent = opponent
	m.Date = date
	m.Location = location
	m.Score = model.OptionalText(in.Score)
	m.Notes = model.OptionalText(in.Notes)
	return nil
}

// Training operations

// CreateTraining schedules a training run by the acting coach
func (s *Service) CreateTraining(ctx context.Context, actor model.Actor, in TrainingInput) (*model.Training, error) {
	if err := policy.Require(actor, policy.Create, policy.Trainings); err != nil {
		return nil, s.logFailure("create training", actor, err)
	}
	training := &model.Training{CoachID: actor.UserID}
	if err := applyTraining(training, in); err != nil {
		return nil, err
	}

	err := s.storage.Transact(ctx, func(tx storage.Tx) error {
		return tx.SaveTraining(ctx, training)
	})
	if err != nil {
		return nil, s.logFailure("create training", actor, err)
	}

	s.logger.Info("training created",
		slog.Uint64("training_id", uint64(training.ID)),
		slog.Uint64("coach_id", uint64(training.CoachID)),
		slog.String("date", training.Date.Format(model.DateLayout)),
	)
	return training, nil
}

// UpdateTraining replaces a training's details. The coach is unchanged.
func (s *Service) UpdateTraining(ctx context.Context, actor model.Actor, id model.TrainingID, in TrainingInput) (*model.Training, error) {
	if err := policy.Require(actor, policy.Update, policy.Trainings); err != nil {
		return nil, s.logFailure("update training", actor, err)
	}

	var training *model.Training
	err := s.storage.Transact(ctx, func(tx storage.Tx) error {
		var err error
		if training, err = tx.GetTraining(ctx, id); err != nil {
			return err
		}
		if err := applyTraining(training, in); err != nil {
			return err
		}
		return tx.SaveTraining(ctx, training)
	})
	if err != nil {
		return nil, s.logFailure("update training", actor, err)
	}

	s.logger.Info("training updated", slog.Uint64("training_id", uint64(id)))
	return training, nil
}

// DeleteTraining removes a training
func (s *Service) DeleteTraining(ctx context.Context, actor model.Actor, id model.TrainingID) error {
	if err := policy.Require(actor, policy.Delete, policy.Trainings); err != nil {
		return s.logFailure("delete training", actor, err)
	}
	err := s.storage.Transact(ctx, func(tx storage.Tx) error {
		if _, err := tx.GetTraining(ctx, id); err != nil {
			return err
		}
		return tx.DeleteTraining(ctx, id)
	})
	if err != nil {
		return s.logFailure("delete training", actor, err)
	}

	s.logger.Info("training deleted", slog.Uint64("training_id", uint64(id)))
	return nil
}

// ListTrainings returns every training, newest first, with the coach's
// username or UnknownCoach
func (s *Service) ListTrainings(ctx context.Context, actor model.Actor) ([]model.TrainingListing, error) {
	if err := policy.Require(actor, policy.Read, policy.Trainings); err != nil {
		return nil, s.logFailure("list trainings", actor, err)
	}
	var trainings []model.TrainingListing
	err := s.storage.Transact(ctx, func(tx storage.Tx) error {
		var err error
		trainings, err = tx.ListTrainings(ctx)
		return err
	})
	if err != nil {
		return nil, s.logFailure("list trainings", actor, err)
	}
	for i := range trainings {
		if trainings[i].CoachUsername == "" {
			trainings[i].CoachUsername = UnknownCoach
		}
	}
	return trainings, nil
}

// Match operations

// CreateMatch adds a match to the calendar
func (s *Service) CreateMatch(ctx context.Context, actor model.Actor, in MatchInput) (*model.Match, error) {
	if err := policy.Require(actor, policy.Create, policy.Matches); err != nil {
		return nil, s.logFailure("create match", actor, err)
	}
	match := &model.Match{}
	if err := applyMatch(match, in); err != nil {
		return nil, err
	}

	err := s.storage.Transact(ctx, func(tx storage.Tx) error {
		return tx.SaveMatch(ctx, match)
	})
	if err != nil {
		return nil, s.logFailure("create match", actor, err)
	}

	s.logger.Info("match created",
		slog.Uint64("match_id", uint64(match.ID)),
		slog.String("opponent", match.Opponent),
		slog.String("date", match.Date.Format(model.DateLayout)),
	)
	return match, nil
}

// UpdateMatch replaces a match's details, typically to record the score
func (s *Service) UpdateMatch(ctx context.Context, actor model.Actor, id model.MatchID, in MatchInput) (*model.Match, error) {
	if err := policy.Require(actor, policy.Update, policy.Matches); err != nil {
		return nil, s.logFailure("update match", actor, err)
	}

	var match *model.Match
	err := s.storage.Transact(ctx, func(tx storage.Tx) error {
		var err error
		if match, err = tx.GetMatch(ctx, id); err != nil {
			return err
		}
		if err := applyMatch(match, in); err != nil {
			return err
		}
		return tx.SaveMatch(ctx, match)
	})
	if err != nil {
		return nil, s.logFailure("update match", actor, err)
	}

	s.logger.Info("match updated", slog.Uint64("match_id", uint64(id)))
	return match, nil
}

// DeleteMatch removes a match. It fails with model.ErrMatchHasStats while
// any player has stats recorded against it.
func (s *Service) DeleteMatch(ctx context.Context, actor model.Actor, id model.MatchID) error {
	if err := policy.Require(actor, policy.Delete, policy.Matches); err != nil {
		return s.logFailure("delete match", actor, err)
	}
	err := s.storage.Transact(ctx, func(tx storage.Tx) error {
		if _, err := tx.GetMatch(ctx, id); err != nil {
			return err
		}
		return tx.DeleteMatch(ctx, id)
	})
	if err != nil {
		return s.logFailure("delete match", actor, err)
	}

	s.logger.Info("match deleted", slog.Uint64("match_id", uint64(id)))
	return nil
}

// GetMatch returns a single match
func (s *Service) GetMatch(ctx context.Context, actor model.Actor, id model.MatchID) (*model.Match, error) {
	if err := policy.Require(actor, policy.Read, policy.Matches); err != nil {
		return nil, s.logFailure("get match", actor, err)
	}
	var match *model.Match
	err := s.storage.Transact(ctx, func(tx storage.Tx) error {
		var err error
		match, err = tx.GetMatch(ctx, id)
		return err
	})
	if err != nil {
		return nil, s.logFailure("get match", actor, err)
	}
	return match, nil
}

// ListMatches returns every match, newest first
func (s *Service) ListMatches(ctx context.Context, actor model.Actor) ([]model.Match, error) {
	if err := policy.Require(actor, policy.Read, policy.Matches); err != nil {
		return nil, s.logFailure("list matches", actor, err)
	}
	var matches []model.Match
	err := s.storage.Transact(ctx, func(tx storage.Tx) error {
		var err error
		matches, err = tx.ListMatches(ctx)
		return err
	})
	if err != nil {
		return nil, s.logFailure("list matches", actor, err)
	}
	return matches, nil
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
