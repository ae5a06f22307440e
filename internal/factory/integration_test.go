package factory

import (
	"context"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/suite"

	"github.com/mcoot/clubdesk/internal/model"
	"github.com/mcoot/clubdesk/internal/outcome"
	"github.com/mcoot/clubdesk/internal/services/auth"
	"github.com/mcoot/clubdesk/internal/services/roster"
	"github.com/mcoot/clubdesk/internal/services/schedule"
	"github.com/mcoot/clubdesk/internal/services/seed"
	"github.com/mcoot/clubdesk/internal/services/stats"
	"github.com/mcoot/clubdesk/internal/storage"
	"github.com/mcoot/clubdesk/internal/storage/memory"
	"github.com/mcoot/clubdesk/internal/storage/sqlstore"
	"github.com/mcoot/clubdesk/internal/testutil"
)

type IntegrationSuite struct {
	suite.Suite
	newStorage func() storage.Storage

	app *TestApp
	ctx context.Context

	admin model.Actor
	coach model.Actor
}

func TestIntegrationMemory(t *testing.T) {
	suite.Run(t, &IntegrationSuite{newStorage: func() storage.Storage { return memory.New() }})
}

func TestIntegrationSQLite(t *testing.T) {
	s := &IntegrationSuite{}
	s.newStorage = func() storage.Storage {
		store, err := sqlstore.Open(sqlstore.Config{Path: sqlstore.InMemory(uuid.NewString())})
		s.Require().NoError(err)
		return store
	}
	suite.Run(t, s)
}

func (s *IntegrationSuite) SetupTest() {
	s.app = NewTestAppWithStorage(s.newStorage())
	s.ctx = context.Background()

	created, err := s.app.SeedService.Ensure(s.ctx, seed.Config{Demo: true})
	s.Require().NoError(err)
	s.Len(created, 3)

	s.admin = s.login(seed.AdminUsername, seed.AdminPassword).Actor
	s.coach = s.login(seed.DemoCoachUsername, seed.DemoCoachPassword).Actor
}

func (s *IntegrationSuite) TearDownTest() {
	s.NoError(s.app.Close())
}

func (s *IntegrationSuite) login(username, password string) *auth.Session {
	session, err := s.app.AuthService.Authenticate(s.ctx, username, password)
	s.Require().NoError(err)
	return session
}

// Test: a player signs up, records stats, and is removed by the admin
func (s *IntegrationSuite) TestPlayerLifecycle() {
	// Step 1: alice registers and logs in
	_, err := s.app.AuthService.Register(s.ctx, auth.RegisterInput{
		Username: "alice",
		Email:    "alice@example.com",
		Password: "pw1",
		Role:     model.RolePlayer,
	})
	s.Require().NoError(err)
	alice := s.login("alice", "pw1").Actor
	s.Equal(model.RolePlayer, alice.Role)

	// Step 2: the coach schedules a match
	match, err := s.app.ScheduleService.CreateMatch(s.ctx, s.coach, schedule.MatchInput{
		Opponent: "Rovers",
		Date:     "2024-05-01",
		Location: "Home",
	})
	s.Require().NoError(err)

	// Step 3: alice creates her profile and records her stats
	profile, err := s.app.RosterService.UpsertProfile(s.ctx, alice, roster.ProfileInput{
		Name:         "Alice",
		Position:     "Forward",
		JerseyNumber: 9,
	})
	s.Require().NoError(err)
	s.Equal("2024-01-01", profile.JoinDate.Format(model.DateLayout))

	_, err = s.app.StatsService.Record(s.ctx, alice, stats.StatInput{MatchID: match.ID, Goals: 2, Assists: 1})
	s.Require().NoError(err)

	lines, err := s.app.StatsService.ListOwn(s.ctx, alice)
	s.Require().NoError(err)
	s.Require().Len(lines, 1)
	s.Equal("Rovers", lines[0].Opponent)
	s.Equal(2, lines[0].Goals)

	// The match cannot go while alice's stats reference it
	err = s.app.ScheduleService.DeleteMatch(s.ctx, s.coach, match.ID)
	s.ErrorIs(err, model.ErrConstraintViolation)

	// Step 4: the admin deletes alice
	s.Require().NoError(s.app.RosterService.DeleteUser(s.ctx, s.admin, alice.UserID))

	players, err := s.app.RosterService.ListPlayers(s.ctx, s.admin)
	s.Require().NoError(err)
	s.Empty(players)

	// Step 5: alice can no longer log in, and looks like any bad login
	_, err = s.app.AuthService.Authenticate(s.ctx, "alice", "pw1")
	s.ErrorIs(err, model.ErrUserNotFound)
	s.ErrorIs(err, model.ErrInvalidCredentials)
	s.Equal(outcome.CodeInvalidCredentials, outcome.FromError(err).Code)

	// Her stats went with her, so the match can now be deleted
	s.NoError(s.app.ScheduleService.DeleteMatch(s.ctx, s.coach, match.ID))
}

// Test: trainings survive the coach who scheduled them
func (s *IntegrationSuite) TestTrainingOutlivesCoach() {
	_, err := s.app.ScheduleService.CreateTraining(s.ctx, s.coach, schedule.TrainingInput{
		Date:      "2024-02-10",
		Duration:  90,
		FocusArea: "Set pieces",
	})
	s.Require().NoError(err)

	s.Require().NoError(s.app.RosterService.DeleteUser(s.ctx, s.admin, s.coach.UserID))

	player := s.login(seed.DemoPlayerUsername, seed.DemoPlayerPassword).Actor
	trainings, err := s.app.ScheduleService.ListTrainings(s.ctx, player)
	s.Require().NoError(err)
	s.Require().Len(trainings, 1)
	s.Equal(schedule.UnknownCoach, trainings[0].CoachUsername)
}

// Test: role boundaries hold across services
func (s *IntegrationSuite) TestRoleBoundaries() {
	player := s.login(seed.DemoPlayerUsername, seed.DemoPlayerPassword).Actor

	_, err := s.app.ScheduleService.CreateMatch(s.ctx, player, schedule.MatchInput{
		Opponent: "City", Date: "2024-03-03", Location: "Away",
	})
	s.ErrorIs(err, model.ErrUnauthorized)

	_, err = s.app.RosterService.ListUsers(s.ctx, s.coach, "")
	s.ErrorIs(err, model.ErrUnauthorized)

	_, err = s.app.StatsService.Record(s.ctx, s.admin, stats.StatInput{MatchID: 1})
	s.ErrorIs(err, model.ErrUnauthorized)

	err = s.app.RosterService.DeleteUser(s.ctx, s.admin, s.admin.UserID)
	s.ErrorIs(err, model.ErrUnauthorized)
}

// Test: a token issued at login resumes the session until it expires
func (s *IntegrationSuite) TestTokenResumesSession() {
	session := s.login(seed.DemoPlayerUsername, seed.DemoPlayerPassword)
	token, err := s.app.AuthService.IssueToken(session)
	s.Require().NoError(err)

	resumed, err := s.app.AuthService.Resume(s.ctx, token)
	s.Require().NoError(err)
	s.Equal(session.Actor, resumed.Actor)

	s.app.MockClock.Advance(2 * time.Hour)
	_, err = s.app.AuthService.Resume(s.ctx, token)
	s.ErrorIs(err, auth.ErrInvalidToken)
}

// Test: seeding an existing database creates nothing
func (s *IntegrationSuite) TestSeedIsIdempotent() {
	created, err := s.app.SeedService.Ensure(s.ctx, seed.Config{Demo: true})
	s.Require().NoError(err)
	s.Empty(created)

	users, err := s.app.RosterService.ListUsers(s.ctx, s.admin, "")
	s.Require().NoError(err)
	s.Len(users, 3)
}

func TestNewRejectsUnknownStorage(t *testing.T) {
	_, err := New(Config{StorageType: "redis", Logger: testutil.NopLogger()})
	if err == nil {
		t.Fatal("expected an error for an unknown storage type")
	}
}

func TestNewMemoryApp(t *testing.T) {
	app, err := New(Config{StorageType: "memory", BcryptCost: 4})
	if err != nil {
		t.Fatal(err)
	}
	defer app.Close()

	if _, err := app.SeedService.Ensure(context.Background(), seed.Config{}); err != nil {
		t.Fatal(err)
	}
	if _, err := app.AuthService.Authenticate(context.Background(), seed.AdminUsername, seed.AdminPassword); err != nil {
		t.Fatal(err)
	}
}
