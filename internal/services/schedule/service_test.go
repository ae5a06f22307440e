package schedule

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/suite"

	"github.com/mcoot/clubdesk/internal/model"
	"github.com/mcoot/clubdesk/internal/storage"
	"github.com/mcoot/clubdesk/internal/storage/memory"
	"github.com/mcoot/clubdesk/internal/testutil"
)

type ServiceSuite struct {
	suite.Suite
	storage *memory.Storage
	service *Service
	ctx     context.Context

	admin  model.Actor
	coach  model.Actor
	player model.Actor
}

func TestServiceSuite(t *testing.T) {
	suite.Run(t, new(ServiceSuite))
}

func (s *ServiceSuite) SetupTest() {
	s.storage = memory.New()
	s.service = New(s.storage, testutil.NopLogger())
	s.ctx = context.Background()

	s.admin = s.createUser("admin", model.RoleAdmin)
	s.coach = s.createUser("coach", model.RoleCoach)
	s.player = s.createUser("player", model.RolePlayer)
}

func (s *ServiceSuite) createUser(username string, role model.Role) model.Actor {
	u := &model.User{Username: username, PasswordHash: "h", Role: role}
	s.Require().NoError(s.storage.Transact(s.ctx, func(tx storage.Tx) error {
		return tx.CreateUser(s.ctx, u)
	}))
	return u.Actor()
}

func validTraining() TrainingInput {
	return TrainingInput{Date: "2024-03-05", Duration: 90, FocusArea: "Set pieces"}
}

func validMatch() MatchInput {
	return MatchInput{Opponent: "Rovers", Date: "2024-03-09", Location: "Home"}
}

func (s *ServiceSuite) trainingCount() int {
	trainings, err := s.service.ListTrainings(s.ctx, s.coach)
	s.Require().NoError(err)
	return len(trainings)
}

// Training tests

func (s *ServiceSuite) TestCreateTrainingSucceeds() {
	in := validTraining()
	in.Notes = "Bring bibs"
	tr, err := s.service.CreateTraining(s.ctx, s.coach, in)
	s.Require().NoError(err)

	s.NotZero(tr.ID)
	s.Equal(s.coach.UserID, tr.CoachID)
	s.Equal(time.Date(2024, 3, 5, 0, 0, 0, 0, time.UTC), tr.Date)
	s.Require().NotNil(tr.Notes)
	s.Equal("Bring bibs", *tr.Notes)
}

func (s *ServiceSuite) TestCreateTrainingFailsIfDurationNotPositive() {
	for _, d := range []int{0, -15} {
		in := validTraining()
		in.Duration = d
		_, err := s.service.CreateTraining(s.ctx, s.coach, in)

		var verr *model.ValidationError
		s.Require().ErrorAs(err, &verr)
		s.Equal("duration", verr.Field)
	}
	s.Zero(s.trainingCount())
}

func (s *ServiceSuite) TestCreateTrainingFailsIfFocusAreaBlank() {
	in := validTraining()
	in.FocusArea = "  "
	_, err := s.service.CreateTraining(s.ctx, s.coach, in)
	s.ErrorIs(err, model.ErrValidation)
}

func (s *ServiceSuite) TestCreateTrainingFailsIfDateInvalid() {
	for _, date := range []string{"", "2024-02-30", "March 5th"} {
		in := validTraining()
		in.Date = date
		_, err := s.service.CreateTraining(s.ctx, s.coach, in)

		var verr *model.ValidationError
		s.Require().ErrorAs(err, &verr, "date %q", date)
		s.Equal("date", verr.Field)
	}
}

func (s *ServiceSuite) TestCreateTrainingFailsForPlayerAndAdmin() {
	for _, actor := range []model.Actor{s.player, s.admin} {
		_, err := s.service.CreateTraining(s.ctx, actor, validTraining())
		s.ErrorIs(err, model.ErrUnauthorized)
	}
	s.Zero(s.trainingCount())
}

func (s *ServiceSuite) TestUpdateTrainingSucceeds() {
	tr, err := s.service.CreateTraining(s.ctx, s.coach, validTraining())
	s.Require().NoError(err)

	in := validTraining()
	in.Duration = 45
	updated, err := s.service.UpdateTraining(s.ctx, s.coach, tr.ID, in)
	s.Require().NoError(err)
	s.Equal(45, updated.Duration)
	s.Equal(s.coach.UserID, updated.CoachID)
}

func (s *ServiceSuite) TestUpdateTrainingFailsIfMissing() {
	_, err := s.service.UpdateTraining(s.ctx, s.coach, 404, validTraining())
	s.ErrorIs(err, model.ErrTrainingNotFound)
}

func (s *ServiceSuite) TestUpdateTrainingFailsForPlayer() {
	tr, err := s.service.CreateTraining(s.ctx, s.coach, validTraining())
	s.Require().NoError(err)

	_, err = s.service.UpdateTraining(s.ctx, s.player, tr.ID, validTraining())
	s.ErrorIs(err, model.ErrUnauthorized)
}

func (s *ServiceSuite) TestDeleteTrainingSucceeds() {
	tr, err := s.service.CreateTraining(s.ctx, s.coach, validTraining())
	s.Require().NoError(err)

	s.Require().NoError(s.service.DeleteTraining(s.ctx, s.coach, tr.ID))
	s.Zero(s.trainingCount())

	err = s.service.DeleteTraining(s.ctx, s.coach, tr.ID)
	s.ErrorIs(err, model.ErrTrainingNotFound)
}

func (s *ServiceSuite) TestListTrainingsReadableByAllAndNewestFirst() {
	_, err := s.service.CreateTraining(s.ctx, s.coach, validTraining())
	s.Require().NoError(err)
	later := validTraining()
	later.Date = "2024-04-01"
	_, err = s.service.CreateTraining(s.ctx, s.coach, later)
	s.Require().NoError(err)

	for _, actor := range []model.Actor{s.admin, s.coach, s.player} {
		trainings, err := s.service.ListTrainings(s.ctx, actor)
		s.Require().NoError(err)
		s.Require().Len(trainings, 2)
		s.Equal(time.Date(2024, 4, 1, 0, 0, 0, 0, time.UTC), trainings[0].Date)
		s.Equal("coach", trainings[0].CoachUsername)
	}
}

func (s *ServiceSuite) TestListTrainingsLabelsMissingCoach() {
	_, err := s.service.CreateTraining(s.ctx, s.coach, validTraining())
	s.Require().NoError(err)
	s.Require().NoError(s.storage.Transact(s.ctx, func(tx storage.Tx) error {
		return tx.DeleteUser(s.ctx, s.coach.UserID)
	}))

	trainings, err := s.service.ListTrainings(s.ctx, s.player)
	s.Require().NoError(err)
	s.Require().Len(trainings, 1)
	s.Equal(UnknownCoach, trainings[0].CoachUsername)
}

func (s *ServiceSuite) TestListTrainingsFailsForAnonymous() {
	_, err := s.service.ListTrainings(s.ctx, model.Actor{})
	s.ErrorIs(err, model.ErrUnauthorized)
}

// Match tests

func (s *ServiceSuite) TestCreateMatchSucceeds() {
	in := validMatch()
	in.Score = " 2 - 1 "
	m, err := s.service.CreateMatch(s.ctx, s.coach, in)
	s.Require().NoError(err)

	s.NotZero(m.ID)
	s.Require().NotNil(m.Score)
	s.Equal(" 2 - 1 ", *m.Score)
	s.Nil(m.Notes)
}

func (s *ServiceSuite) TestCreateMatchTreatsBlankScoreAsAbsent() {
	in := validMatch()
	in.Score = "   "
	m, err := s.service.CreateMatch(s.ctx, s.coach, in)
	s.Require().NoError(err)
	s.Nil(m.Score)
}

func (s *ServiceSuite) TestCreateMatchFailsIfRequiredFieldBlank() {
	noOpponent := validMatch()
	noOpponent.Opponent = ""
	noLocation := validMatch()
	noLocation.Location = " "

	for field, in := range map[string]MatchInput{"opponent": noOpponent, "location": noLocation} {
		_, err := s.service.CreateMatch(s.ctx, s.coach, in)
		var verr *model.ValidationError
		s.Require().ErrorAs(err, &verr)
		s.Equal(field, verr.Field)
	}
}

func (s *ServiceSuite) TestCreateMatchFailsForPlayer() {
	_, err := s.service.CreateMatch(s.ctx, s.player, validMatch())
	s.ErrorIs(err, model.ErrUnauthorized)

	matches, err := s.service.ListMatches(s.ctx, s.player)
	s.Require().NoError(err)
	s.Empty(matches)
}

func (s *ServiceSuite) TestUpdateMatchRecordsScore() {
	m, err := s.service.CreateMatch(s.ctx, s.coach, validMatch())
	s.Require().NoError(err)

	in := validMatch()
	in.Score = "3-0"
	_, err = s.service.UpdateMatch(s.ctx, s.coach, m.ID, in)
	s.Require().NoError(err)

	got, err := s.service.GetMatch(s.ctx, s.player, m.ID)
	s.Require().NoError(err)
	s.Require().NotNil(got.Score)
	s.Equal("3-0", *got.Score)
}

func (s *ServiceSuite) TestGetMatchFailsIfMissing() {
	_, err := s.service.GetMatch(s.ctx, s.player, 404)
	s.ErrorIs(err, model.ErrMatchNotFound)
}

func (s *ServiceSuite) TestDeleteMatchSucceeds() {
	m, err := s.service.CreateMatch(s.ctx, s.coach, validMatch())
	s.Require().NoError(err)

	s.Require().NoError(s.service.DeleteMatch(s.ctx, s.coach, m.ID))
	_, err = s.service.GetMatch(s.ctx, s.coach, m.ID)
	s.ErrorIs(err, model.ErrMatchNotFound)
}

func (s *ServiceSuite) TestDeleteMatchFailsIfStatsRecorded() {
	m, err := s.service.CreateMatch(s.ctx, s.coach, validMatch())
	s.Require().NoError(err)
	s.Require().NoError(s.storage.Transact(s.ctx, func(tx storage.Tx) error {
		p := &model.Player{UserID: s.player.UserID, Name: "P", Position: "GK"}
		if err := tx.SavePlayer(s.ctx, p); err != nil {
			return err
		}
		return tx.UpsertPlayerStat(s.ctx, &model.PlayerStat{PlayerID: p.ID, MatchID: m.ID})
	}))

	err = s.service.DeleteMatch(s.ctx, s.coach, m.ID)
	s.ErrorIs(err, model.ErrConstraintViolation)

	_, err = s.service.GetMatch(s.ctx, s.coach, m.ID)
	s.NoError(err)
}

func (s *ServiceSuite) TestDeleteMatchFailsForAdmin() {
	m, err := s.service.CreateMatch(s.ctx, s.coach, validMatch())
	s.Require().NoError(err)

	err = s.service.DeleteMatch(s.ctx, s.admin, m.ID)
	s.ErrorIs(err, model.ErrUnauthorized)
}

func (s *ServiceSuite) TestListMatchesNewestFirst() {
	_, err := s.service.CreateMatch(s.ctx, s.coach, validMatch())
	s.Require().NoError(err)
	later := validMatch()
	later.Opponent = "United"
	later.Date = "2024-05-01"
	_, err = s.service.CreateMatch(s.ctx, s.coach, later)
	s.Require().NoError(err)

	matches, err := s.service.ListMatches(s.ctx, s.admin)
	s.Require().NoError(err)
	s.Require().Len(matches, 2)
	s.Equal("United", matches[0].Opponent)
}
