package stats

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/suite"

	"github.com/mcoot/clubdesk/internal/dependencies/mocks"
	"github.com/mcoot/clubdesk/internal/model"
	"github.com/mcoot/clubdesk/internal/storage"
	"github.com/mcoot/clubdesk/internal/storage/memory"
	"github.com/mcoot/clubdesk/internal/testutil"
)

type ServiceSuite struct {
	suite.Suite
	storage *memory.Storage
	clock   *mocks.MockClock
	service *Service
	ctx     context.Context

	admin    model.Actor
	coach    model.Actor
	alice    model.Actor
	playerID model.PlayerID
	match    model.MatchID
}

func TestServiceSuite(t *testing.T) {
	suite.Run(t, new(ServiceSuite))
}

func (s *ServiceSuite) SetupTest() {
	s.storage = memory.New()
	s.clock = mocks.NewMockClock(time.Date(2024, 3, 10, 18, 0, 0, 0, time.UTC))
	s.service = New(s.storage, s.clock, testutil.NopLogger())
	s.ctx = context.Background()

	s.admin = s.createUser("admin", model.RoleAdmin)
	s.coach = s.createUser("coach", model.RoleCoach)
	s.alice = s.createUser("alice", model.RolePlayer)

	p := &model.Player{UserID: s.alice.UserID, Name: "Alice", Position: "Forward"}
	s.Require().NoError(s.storage.Transact(s.ctx, func(tx storage.Tx) error {
		return tx.SavePlayer(s.ctx, p)
	}))
	s.playerID = p.ID
	s.match = s.createMatch("Rovers", time.Date(2024, 3, 9, 0, 0, 0, 0, time.UTC))
}

func (s *ServiceSuite) createUser(username string, role model.Role) model.Actor {
	u := &model.User{Username: username, PasswordHash: "h", Role: role}
	s.Require().NoError(s.storage.Transact(s.ctx, func(tx storage.Tx) error {
		return tx.CreateUser(s.ctx, u)
	}))
	return u.Actor()
}

func (s *ServiceSuite) createMatch(opponent string, date time.Time) model.MatchID {
	m := &model.Match{Opponent: opponent, Date: date, Location: "Home"}
	s.Require().NoError(s.storage.Transact(s.ctx, func(tx storage.Tx) error {
		return tx.SaveMatch(s.ctx, m)
	}))
	return m.ID
}

func (s *ServiceSuite) storedCount() int {
	var n int
	s.Require().NoError(s.storage.Transact(s.ctx, func(tx storage.Tx) error {
		var err error
		n, err = tx.CountPlayerStats(s.ctx, s.playerID)
		return err
	}))
	return n
}

// Record tests

func (s *ServiceSuite) TestRecordSucceeds() {
	stat, err := s.service.Record(s.ctx, s.alice, StatInput{MatchID: s.match, Goals: 2, Assists: 1})
	s.Require().NoError(err)

	s.NotZero(stat.ID)
	s.Equal(s.playerID, stat.PlayerID)
	s.Equal(2, stat.Goals)
	s.Equal(s.clock.Now(), stat.RecordedAt)
}

func (s *ServiceSuite) TestRecordAllZeroCountersSucceeds() {
	_, err := s.service.Record(s.ctx, s.alice, StatInput{MatchID: s.match})
	s.NoError(err)
}

func (s *ServiceSuite) TestRecordAgainReplacesCounters() {
	first, err := s.service.Record(s.ctx, s.alice, StatInput{MatchID: s.match, Goals: 1})
	s.Require().NoError(err)
	second, err := s.service.Record(s.ctx, s.alice, StatInput{MatchID: s.match, Goals: 3, YellowCards: 1})
	s.Require().NoError(err)

	s.Equal(first.ID, second.ID)
	s.Equal(1, s.storedCount())

	lines, err := s.service.ListOwn(s.ctx, s.alice)
	s.Require().NoError(err)
	s.Require().Len(lines, 1)
	s.Equal(3, lines[0].Goals)
	s.Equal(1, lines[0].YellowCards)
}

func (s *ServiceSuite) TestRecordFailsIfCounterNegative() {
	_, err := s.service.Record(s.ctx, s.alice, StatInput{MatchID: s.match, RedCards: -1})

	var verr *model.ValidationError
	s.Require().ErrorAs(err, &verr)
	s.Equal("red_cards", verr.Field)
	s.Zero(s.storedCount())
}

func (s *ServiceSuite) TestRecordFailsIfMatchMissing() {
	_, err := s.service.Record(s.ctx, s.alice, StatInput{MatchID: 404, Goals: 1})
	s.ErrorIs(err, model.ErrMatchNotFound)
	s.Zero(s.storedCount())
}

func (s *ServiceSuite) TestRecordFailsWithoutProfile() {
	bob := s.createUser("bob", model.RolePlayer)

	_, err := s.service.Record(s.ctx, bob, StatInput{MatchID: s.match})
	s.ErrorIs(err, model.ErrProfileRequired)
}

func (s *ServiceSuite) TestRecordFailsForCoachAndAdmin() {
	for _, actor := range []model.Actor{s.coach, s.admin} {
		_, err := s.service.Record(s.ctx, actor, StatInput{MatchID: s.match})
		s.ErrorIs(err, model.ErrUnauthorized)
	}
	s.Zero(s.storedCount())
}

// ListOwn tests

func (s *ServiceSuite) TestListOwnNewestMatchFirst() {
	later := s.createMatch("United", time.Date(2024, 4, 20, 0, 0, 0, 0, time.UTC))
	_, err := s.service.Record(s.ctx, s.alice, StatInput{MatchID: s.match, Goals: 1})
	s.Require().NoError(err)
	_, err = s.service.Record(s.ctx, s.alice, StatInput{MatchID: later, Assists: 2})
	s.Require().NoError(err)

	lines, err := s.service.ListOwn(s.ctx, s.alice)
	s.Require().NoError(err)
	s.Require().Len(lines, 2)
	s.Equal("United", lines[0].Opponent)
	s.Equal("Rovers", lines[1].Opponent)
}

func (s *ServiceSuite) TestListOwnFailsWithoutProfile() {
	bob := s.createUser("bob", model.RolePlayer)
	_, err := s.service.ListOwn(s.ctx, bob)
	s.ErrorIs(err, model.ErrProfileRequired)
}

func (s *ServiceSuite) TestListOwnFailsForCoach() {
	_, err := s.service.ListOwn(s.ctx, s.coach)
	s.ErrorIs(err, model.ErrUnauthorized)
}
