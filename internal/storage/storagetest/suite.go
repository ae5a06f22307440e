// Package storagetest holds the behaviour every storage implementation
// must share. Backends run it from their own tests.
package storagetest

import (
	"context"
	"errors"
	"time"

	"github.com/stretchr/testify/suite"

	"github.com/mcoot/clubdesk/internal/model"
	"github.com/mcoot/clubdesk/internal/storage"
)

// Suite exercises a storage.Storage. Set NewStorage before running.
type Suite struct {
	suite.Suite
	NewStorage func() storage.Storage

	store storage.Storage
	ctx   context.Context
}

func (s *Suite) SetupTest() {
	s.store = s.NewStorage()
	s.ctx = context.Background()
}

func (s *Suite) TearDownTest() {
	if s.store != nil {
		_ = s.store.Close()
	}
}

// Store returns the storage under test
func (s *Suite) Store() storage.Storage {
	return s.store
}

func day(value string) time.Time {
	t, err := time.Parse(model.DateLayout, value)
	if err != nil {
		panic(err)
	}
	return t
}

func (s *Suite) tx(fn func(tx storage.Tx) error) error {
	return s.store.Transact(s.ctx, fn)
}

// CreateUser creates a user in its own transaction
func (s *Suite) CreateUser(username string, role model.Role) *model.User {
	u := &model.User{
		Username:     username,
		PasswordHash: "hash-" + username,
		Role:         role,
		CreatedAt:    time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC),
	}
	s.Require().NoError(s.tx(func(tx storage.Tx) error {
		return tx.CreateUser(s.ctx, u)
	}))
	return u
}

// CreatePlayer creates a player profile for the user
func (s *Suite) CreatePlayer(userID model.UserID, name string) *model.Player {
	p := &model.Player{
		UserID:       userID,
		Name:         name,
		Position:     "Midfielder",
		JerseyNumber: 8,
		JoinDate:     day("2024-01-15"),
	}
	s.Require().NoError(s.tx(func(tx storage.Tx) error {
		return tx.SavePlayer(s.ctx, p)
	}))
	return p
}

// CreateMatch creates a match on the given date
func (s *Suite) CreateMatch(opponent, date string) *model.Match {
	m := &model.Match{
		Opponent: opponent,
		Date:     day(date),
		Location: "Home",
	}
	s.Require().NoError(s.tx(func(tx storage.Tx) error {
		return tx.SaveMatch(s.ctx, m)
	}))
	return m
}

func (s *Suite) recordGoals(playerID model.PlayerID, matchID model.MatchID, goals int) *model.PlayerStat {
	stat := &model.PlayerStat{
		PlayerID:   playerID,
		MatchID:    matchID,
		Goals:      goals,
		RecordedAt: time.Date(2024, 2, 1, 0, 0, 0, 0, time.UTC),
	}
	s.Require().NoError(s.tx(func(tx storage.Tx) error {
		return tx.UpsertPlayerStat(s.ctx, stat)
	}))
	return stat
}

// User tests

func (s *Suite) TestCreateAndGetUser() {
	email := "alice@example.com"
	u := &model.User{Username: "alice", PasswordHash: "h", Email: &email, Role: model.RolePlayer}
	s.Require().NoError(s.tx(func(tx storage.Tx) error {
		return tx.CreateUser(s.ctx, u)
	}))
	s.NotZero(u.ID)

	var byID, byName *model.User
	s.Require().NoError(s.tx(func(tx storage.Tx) error {
		var err error
		if byID, err = tx.GetUser(s.ctx, u.ID); err != nil {
			return err
		}
		byName, err = tx.GetUserByUsername(s.ctx, "alice")
		return err
	}))
	s.Equal("alice", byID.Username)
	s.Equal(model.RolePlayer, byID.Role)
	s.Require().NotNil(byID.Email)
	s.Equal(email, *byID.Email)
	s.Equal(u.ID, byName.ID)
}

func (s *Suite) TestGetUserNotFound() {
	err := s.tx(func(tx storage.Tx) error {
		_, err := tx.GetUserByUsername(s.ctx, "nobody")
		return err
	})
	s.ErrorIs(err, model.ErrUserNotFound)
	s.ErrorIs(err, model.ErrNotFound)
}

func (s *Suite) TestCreateUserFailsIfUsernameTaken() {
	s.CreateUser("alice", model.RolePlayer)

	err := s.tx(func(tx storage.Tx) error {
		return tx.CreateUser(s.ctx, &model.User{Username: "alice", PasswordHash: "x", Role: model.RoleCoach})
	})
	s.ErrorIs(err, model.ErrDuplicateUsername)
}

func (s *Suite) TestCreateUserFailsIfRoleInvalid() {
	err := s.tx(func(tx storage.Tx) error {
		return tx.CreateUser(s.ctx, &model.User{Username: "bob", PasswordHash: "x", Role: "owner"})
	})
	s.ErrorIs(err, model.ErrConstraintViolation)
}

func (s *Suite) TestListUsersOrdersByUsernameAndFiltersByRole() {
	s.CreateUser("carol", model.RoleCoach)
	s.CreateUser("alice", model.RolePlayer)
	s.CreateUser("bob", model.RolePlayer)

	var all, players []model.User
	s.Require().NoError(s.tx(func(tx storage.Tx) error {
		var err error
		if all, err = tx.ListUsers(s.ctx, ""); err != nil {
			return err
		}
		players, err = tx.ListUsers(s.ctx, model.RolePlayer)
		return err
	}))

	s.Require().Len(all, 3)
	s.Equal("alice", all[0].Username)
	s.Equal("bob", all[1].Username)
	s.Equal("carol", all[2].Username)
	s.Len(players, 2)
}

func (s *Suite) TestUpdatePasswordHash() {
	u := s.CreateUser("alice", model.RolePlayer)

	s.Require().NoError(s.tx(func(tx storage.Tx) error {
		return tx.UpdatePasswordHash(s.ctx, u.ID, "new-hash")
	}))

	var got *model.User
	s.Require().NoError(s.tx(func(tx storage.Tx) error {
		var err error
		got, err = tx.GetUser(s.ctx, u.ID)
		return err
	}))
	s.Equal("new-hash", got.PasswordHash)
}

func (s *Suite) TestUpdatePasswordHashFailsIfUserMissing() {
	err := s.tx(func(tx storage.Tx) error {
		return tx.UpdatePasswordHash(s.ctx, 999, "x")
	})
	s.ErrorIs(err, model.ErrUserNotFound)
}

func (s *Suite) TestDeleteUserCascades() {
	u := s.CreateUser("alice", model.RolePlayer)
	p := s.CreatePlayer(u.ID, "Alice")
	m := s.CreateMatch("Rovers", "2024-03-01")
	s.recordGoals(p.ID, m.ID, 2)

	s.Require().NoError(s.tx(func(tx storage.Tx) error {
		return tx.DeleteUser(s.ctx, u.ID)
	}))

	s.Require().NoError(s.tx(func(tx storage.Tx) error {
		_, err := tx.GetUser(s.ctx, u.ID)
		s.ErrorIs(err, model.ErrUserNotFound)
		_, err = tx.GetPlayer(s.ctx, p.ID)
		s.ErrorIs(err, model.ErrPlayerNotFound)
		n, err := tx.CountPlayerStats(s.ctx, p.ID)
		s.NoError(err)
		s.Zero(n)
		_, err = tx.GetMatch(s.ctx, m.ID)
		s.NoError(err)
		return nil
	}))
}

// Player tests

func (s *Suite) TestSaveAndGetPlayer() {
	u := s.CreateUser("alice", model.RolePlayer)
	p := s.CreatePlayer(u.ID, "Alice")
	s.NotZero(p.ID)

	var byID, byUser *model.Player
	s.Require().NoError(s.tx(func(tx storage.Tx) error {
		var err error
		if byID, err = tx.GetPlayer(s.ctx, p.ID); err != nil {
			return err
		}
		byUser, err = tx.GetPlayerByUser(s.ctx, u.ID)
		return err
	}))
	s.Equal("Alice", byID.Name)
	s.Equal(8, byID.JerseyNumber)
	s.True(byID.JoinDate.Equal(day("2024-01-15")))
	s.Equal(p.ID, byUser.ID)
}

func (s *Suite) TestSavePlayerUpdatesExisting() {
	u := s.CreateUser("alice", model.RolePlayer)
	p := s.CreatePlayer(u.ID, "Alice")

	p.Position = "Forward"
	p.JerseyNumber = 0
	s.Require().NoError(s.tx(func(tx storage.Tx) error {
		return tx.SavePlayer(s.ctx, p)
	}))

	var got *model.Player
	s.Require().NoError(s.tx(func(tx storage.Tx) error {
		var err error
		got, err = tx.GetPlayer(s.ctx, p.ID)
		return err
	}))
	s.Equal("Forward", got.Position)
	s.Equal(0, got.JerseyNumber)
}

func (s *Suite) TestSavePlayerFailsIfUserHasProfile() {
	u := s.CreateUser("alice", model.RolePlayer)
	s.CreatePlayer(u.ID, "Alice")

	err := s.tx(func(tx storage.Tx) error {
		return tx.SavePlayer(s.ctx, &model.Player{UserID: u.ID, Name: "Again", Position: "GK", JoinDate: day("2024-01-01")})
	})
	s.ErrorIs(err, model.ErrConstraintViolation)
}

func (s *Suite) TestSavePlayerFailsIfUserMissing() {
	err := s.tx(func(tx storage.Tx) error {
		return tx.SavePlayer(s.ctx, &model.Player{UserID: 404, Name: "Ghost", Position: "GK", JoinDate: day("2024-01-01")})
	})
	s.ErrorIs(err, model.ErrConstraintViolation)
}

func (s *Suite) TestSavePlayerFailsIfJerseyNegative() {
	u := s.CreateUser("alice", model.RolePlayer)
	err := s.tx(func(tx storage.Tx) error {
		return tx.SavePlayer(s.ctx, &model.Player{UserID: u.ID, Name: "Alice", Position: "GK", JerseyNumber: -1, JoinDate: day("2024-01-01")})
	})
	s.ErrorIs(err, model.ErrConstraintViolation)
}

func (s *Suite) TestListPlayersIncludesUsernames() {
	bob := s.CreateUser("bob", model.RolePlayer)
	alice := s.CreateUser("alice", model.RolePlayer)
	s.CreatePlayer(bob.ID, "Bob")
	s.CreatePlayer(alice.ID, "Alice")

	var listings []model.PlayerListing
	s.Require().NoError(s.tx(func(tx storage.Tx) error {
		var err error
		listings, err = tx.ListPlayers(s.ctx)
		return err
	}))
	s.Require().Len(listings, 2)
	s.Equal("Alice", listings[0].Name)
	s.Equal("alice", listings[0].Username)
	s.Equal("bob", listings[1].Username)
}

func (s *Suite) TestDeletePlayerKeepsUser() {
	u := s.CreateUser("alice", model.RolePlayer)
	p := s.CreatePlayer(u.ID, "Alice")
	m := s.CreateMatch("Rovers", "2024-03-01")
	s.recordGoals(p.ID, m.ID, 1)

	s.Require().NoError(s.tx(func(tx storage.Tx) error {
		return tx.DeletePlayer(s.ctx, p.ID)
	}))

	s.Require().NoError(s.tx(func(tx storage.Tx) error {
		_, err := tx.GetUser(s.ctx, u.ID)
		s.NoError(err)
		_, err = tx.GetPlayerByUser(s.ctx, u.ID)
		s.ErrorIs(err, model.ErrPlayerNotFound)
		n, err := tx.CountPlayerStats(s.ctx, p.ID)
		s.NoError(err)
		s.Zero(n)
		return nil
	}))
}

// Training tests

func (s *Suite) TestSaveAndListTrainings() {
	coach := s.CreateUser("coach", model.RoleCoach)
	notes := "bring cones"
	older := &model.Training{CoachID: coach.ID, Date: day("2024-03-01"), Duration: 60, FocusArea: "Passing"}
	newer := &model.Training{CoachID: coach.ID, Date: day("2024-03-08"), Duration: 90, FocusArea: "Shooting", Notes: &notes}
	s.Require().NoError(s.tx(func(tx storage.Tx) error {
		if err := tx.SaveTraining(s.ctx, older); err != nil {
			return err
		}
		return tx.SaveTraining(s.ctx, newer)
	}))

	var listings []model.TrainingListing
	s.Require().NoError(s.tx(func(tx storage.Tx) error {
		var err error
		listings, err = tx.ListTrainings(s.ctx)
		return err
	}))
	s.Require().Len(listings, 2)
	s.Equal(newer.ID, listings[0].ID)
	s.Equal("coach", listings[0].CoachUsername)
	s.Require().NotNil(listings[0].Notes)
	s.Equal(notes, *listings[0].Notes)
	s.Nil(listings[1].Notes)
}

func (s *Suite) TestSaveTrainingUpdatesExisting() {
	coach := s.CreateUser("coach", model.RoleCoach)
	tr := &model.Training{CoachID: coach.ID, Date: day("2024-03-01"), Duration: 60, FocusArea: "Passing"}
	s.Require().NoError(s.tx(func(tx storage.Tx) error {
		return tx.SaveTraining(s.ctx, tr)
	}))

	tr.Duration = 45
	s.Require().NoError(s.tx(func(tx storage.Tx) error {
		return tx.SaveTraining(s.ctx, tr)
	}))

	var got *model.Training
	s.Require().NoError(s.tx(func(tx storage.Tx) error {
		var err error
		got, err = tx.GetTraining(s.ctx, tr.ID)
		return err
	}))
	s.Equal(45, got.Duration)
}

func (s *Suite) TestSaveTrainingFailsIfMissing() {
	err := s.tx(func(tx storage.Tx) error {
		return tx.SaveTraining(s.ctx, &model.Training{ID: 77, CoachID: 1, Date: day("2024-03-01"), Duration: 60, FocusArea: "x"})
	})
	s.ErrorIs(err, model.ErrTrainingNotFound)
}

func (s *Suite) TestSaveTrainingFailsIfDurationNotPositive() {
	coach := s.CreateUser("coach", model.RoleCoach)
	err := s.tx(func(tx storage.Tx) error {
		return tx.SaveTraining(s.ctx, &model.Training{CoachID: coach.ID, Date: day("2024-03-01"), Duration: 0, FocusArea: "x"})
	})
	s.ErrorIs(err, model.ErrConstraintViolation)
}

func (s *Suite) TestTrainingSurvivesCoachDeletion() {
	coach := s.CreateUser("coach", model.RoleCoach)
	tr := &model.Training{CoachID: coach.ID, Date: day("2024-03-01"), Duration: 60, FocusArea: "Passing"}
	s.Require().NoError(s.tx(func(tx storage.Tx) error {
		return tx.SaveTraining(s.ctx, tr)
	}))
	s.Require().NoError(s.tx(func(tx storage.Tx) error {
		return tx.DeleteUser(s.ctx, coach.ID)
	}))

	var listings []model.TrainingListing
	s.Require().NoError(s.tx(func(tx storage.Tx) error {
		var err error
		listings, err = tx.ListTrainings(s.ctx)
		return err
	}))
	s.Require().Len(listings, 1)
	s.Empty(listings[0].CoachUsername)
}

func (s *Suite) TestDeleteTraining() {
	coach := s.CreateUser("coach", model.RoleCoach)
	tr := &model.Training{CoachID: coach.ID, Date: day("2024-03-01"), Duration: 60, FocusArea: "Passing"}
	s.Require().NoError(s.tx(func(tx storage.Tx) error {
		return tx.SaveTraining(s.ctx, tr)
	}))
	s.Require().NoError(s.tx(func(tx storage.Tx) error {
		return tx.DeleteTraining(s.ctx, tr.ID)
	}))

	err := s.tx(func(tx storage.Tx) error {
		_, err := tx.GetTraining(s.ctx, tr.ID)
		return err
	})
	s.ErrorIs(err, model.ErrTrainingNotFound)
}

// Match tests

func (s *Suite) TestSaveAndListMatches() {
	s.CreateMatch("Rovers", "2024-03-01")
	later := s.CreateMatch("United", "2024-04-01")

	var matches []model.Match
	s.Require().NoError(s.tx(func(tx storage.Tx) error {
		var err error
		matches, err = tx.ListMatches(s.ctx)
		return err
	}))
	s.Require().Len(matches, 2)
	s.Equal(later.ID, matches[0].ID)
	s.Nil(matches[0].Score)
}

func (s *Suite) TestSaveMatchUpdatesScore() {
	m := s.CreateMatch("Rovers", "2024-03-01")
	score := "2-1"
	m.Score = &score
	s.Require().NoError(s.tx(func(tx storage.Tx) error {
		return tx.SaveMatch(s.ctx, m)
	}))

	var got *model.Match
	s.Require().NoError(s.tx(func(tx storage.Tx) error {
		var err error
		got, err = tx.GetMatch(s.ctx, m.ID)
		return err
	}))
	s.Require().NotNil(got.Score)
	s.Equal("2-1", *got.Score)
}

func (s *Suite) TestDeleteMatchFailsIfStatsRecorded() {
	u := s.CreateUser("alice", model.RolePlayer)
	p := s.CreatePlayer(u.ID, "Alice")
	m := s.CreateMatch("Rovers", "2024-03-01")
	s.recordGoals(p.ID, m.ID, 1)

	err := s.tx(func(tx storage.Tx) error {
		return tx.DeleteMatch(s.ctx, m.ID)
	})
	s.ErrorIs(err, model.ErrMatchHasStats)
	s.ErrorIs(err, model.ErrConstraintViolation)
}

func (s *Suite) TestDeleteMatch() {
	m := s.CreateMatch("Rovers", "2024-03-01")
	s.Require().NoError(s.tx(func(tx storage.Tx) error {
		return tx.DeleteMatch(s.ctx, m.ID)
	}))

	err := s.tx(func(tx storage.Tx) error {
		_, err := tx.GetMatch(s.ctx, m.ID)
		return err
	})
	s.ErrorIs(err, model.ErrMatchNotFound)
}

// Player stat tests

func (s *Suite) TestUpsertPlayerStatReplacesExisting() {
	u := s.CreateUser("alice", model.RolePlayer)
	p := s.CreatePlayer(u.ID, "Alice")
	m := s.CreateMatch("Rovers", "2024-03-01")

	first := s.recordGoals(p.ID, m.ID, 1)
	second := s.recordGoals(p.ID, m.ID, 3)
	s.Equal(first.ID, second.ID)

	var lines []model.StatLine
	s.Require().NoError(s.tx(func(tx storage.Tx) error {
		var err error
		lines, err = tx.ListStatLines(s.ctx, p.ID)
		return err
	}))
	s.Require().Len(lines, 1)
	s.Equal(3, lines[0].Goals)
	s.Equal("Rovers", lines[0].Opponent)
	s.True(lines[0].MatchDate.Equal(day("2024-03-01")))
}

func (s *Suite) TestListStatLinesOrdersByMatchDate() {
	u := s.CreateUser("alice", model.RolePlayer)
	p := s.CreatePlayer(u.ID, "Alice")
	early := s.CreateMatch("Rovers", "2024-03-01")
	late := s.CreateMatch("United", "2024-05-01")
	s.recordGoals(p.ID, early.ID, 1)
	s.recordGoals(p.ID, late.ID, 2)

	var lines []model.StatLine
	s.Require().NoError(s.tx(func(tx storage.Tx) error {
		var err error
		lines, err = tx.ListStatLines(s.ctx, p.ID)
		return err
	}))
	s.Require().Len(lines, 2)
	s.Equal("United", lines[0].Opponent)
	s.Equal("Rovers", lines[1].Opponent)
}

func (s *Suite) TestUpsertPlayerStatFailsIfMatchMissing() {
	u := s.CreateUser("alice", model.RolePlayer)
	p := s.CreatePlayer(u.ID, "Alice")

	err := s.tx(func(tx storage.Tx) error {
		return tx.UpsertPlayerStat(s.ctx, &model.PlayerStat{PlayerID: p.ID, MatchID: 999})
	})
	s.ErrorIs(err, model.ErrConstraintViolation)
}

func (s *Suite) TestUpsertPlayerStatFailsIfCounterNegative() {
	u := s.CreateUser("alice", model.RolePlayer)
	p := s.CreatePlayer(u.ID, "Alice")
	m := s.CreateMatch("Rovers", "2024-03-01")

	err := s.tx(func(tx storage.Tx) error {
		return tx.UpsertPlayerStat(s.ctx, &model.PlayerStat{PlayerID: p.ID, MatchID: m.ID, RedCards: -1})
	})
	s.ErrorIs(err, model.ErrConstraintViolation)
}

// Transaction tests

func (s *Suite) TestTransactRollsBackOnError() {
	boom := errors.New("boom")
	err := s.tx(func(tx storage.Tx) error {
		if err := tx.CreateUser(s.ctx, &model.User{Username: "alice", PasswordHash: "h", Role: model.RolePlayer}); err != nil {
			return err
		}
		return boom
	})
	s.ErrorIs(err, boom)

	err = s.tx(func(tx storage.Tx) error {
		_, err := tx.GetUserByUsername(s.ctx, "alice")
		return err
	})
	s.ErrorIs(err, model.ErrUserNotFound)
}

func (s *Suite) TestTransactFailsIfContextCancelled() {
	ctx, cancel := context.WithCancel(s.ctx)
	cancel()

	err := s.store.Transact(ctx, func(tx storage.Tx) error {
		return nil
	})
	s.ErrorIs(err, model.ErrStoreUnavailable)
}
