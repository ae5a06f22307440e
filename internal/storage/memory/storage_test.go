package memory

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/suite"

	"github.com/mcoot/clubdesk/internal/model"
	"github.com/mcoot/clubdesk/internal/storage"
	"github.com/mcoot/clubdesk/internal/storage/storagetest"
)

func TestStorageSuite(t *testing.T) {
	suite.Run(t, &storagetest.Suite{
		NewStorage: func() storage.Storage { return New() },
	})
}

type MemorySuite struct {
	suite.Suite
	storage *Storage
	ctx     context.Context
}

func TestMemorySuite(t *testing.T) {
	suite.Run(t, new(MemorySuite))
}

func (s *MemorySuite) SetupTest() {
	s.storage = New()
	s.ctx = context.Background()
}

func (s *MemorySuite) TestTransactRecoversPanic() {
	err := s.storage.Transact(s.ctx, func(tx storage.Tx) error {
		_ = tx.CreateUser(s.ctx, &model.User{Username: "alice", PasswordHash: "h", Role: model.RolePlayer})
		panic("disk on fire")
	})
	s.ErrorIs(err, model.ErrStoreUnavailable)

	err = s.storage.Transact(s.ctx, func(tx storage.Tx) error {
		_, err := tx.GetUserByUsername(s.ctx, "alice")
		return err
	})
	s.ErrorIs(err, model.ErrUserNotFound)
}

func (s *MemorySuite) TestFailedCascadeLeavesDataIntact() {
	var userID model.UserID
	var playerID model.PlayerID
	s.Require().NoError(s.storage.Transact(s.ctx, func(tx storage.Tx) error {
		u := &model.User{Username: "alice", PasswordHash: "h", Role: model.RolePlayer}
		if err := tx.CreateUser(s.ctx, u); err != nil {
			return err
		}
		p := &model.Player{UserID: u.ID, Name: "Alice", Position: "GK"}
		if err := tx.SavePlayer(s.ctx, p); err != nil {
			return err
		}
		userID, playerID = u.ID, p.ID
		return nil
	}))

	interrupted := errors.New("interrupted")
	err := s.storage.Transact(s.ctx, func(tx storage.Tx) error {
		if err := tx.DeletePlayer(s.ctx, playerID); err != nil {
			return err
		}
		return interrupted
	})
	s.ErrorIs(err, interrupted)

	s.Require().NoError(s.storage.Transact(s.ctx, func(tx storage.Tx) error {
		p, err := tx.GetPlayerByUser(s.ctx, userID)
		if err != nil {
			return err
		}
		s.Equal(playerID, p.ID)
		return nil
	}))
}

func (s *MemorySuite) TestReturnedValuesAreCopies() {
	notes := "original"
	m := &model.Match{Opponent: "Rovers", Location: "Home", Notes: &notes}
	s.Require().NoError(s.storage.Transact(s.ctx, func(tx storage.Tx) error {
		return tx.SaveMatch(s.ctx, m)
	}))
	notes = "changed"

	s.Require().NoError(s.storage.Transact(s.ctx, func(tx storage.Tx) error {
		got, err := tx.GetMatch(s.ctx, m.ID)
		if err != nil {
			return err
		}
		s.Equal("original", *got.Notes)
		return nil
	}))
}
