package memory

import (
	"context"
	"fmt"
	"maps"
	"sync"

	"github.com/mcoot/clubdesk/internal/model"
	"github.com/mcoot/clubdesk/internal/storage"
)

// Storage is an in-memory implementation of the storage interface.
// Transactions are serialised and work on a copy of the dataset that
// replaces the live one only when the transaction succeeds.
type Storage struct {
	mu   sync.Mutex
	data *dataset
}

type statKey struct {
	playerID model.PlayerID
	matchID  model.MatchID
}

type dataset struct {
	users         map[model.UserID]model.User
	usernameIndex map[string]model.UserID
	players       map[model.PlayerID]model.Player
	playerByUser  map[model.UserID]model.PlayerID
	trainings     map[model.TrainingID]model.Training
	matches       map[model.MatchID]model.Match
	stats         map[model.PlayerStatID]model.PlayerStat
	statIndex     map[statKey]model.PlayerStatID

	nextUser     model.UserID
	nextPlayer   model.PlayerID
	nextTraining model.TrainingID
	nextMatch    model.MatchID
	nextStat     model.PlayerStatID
}

// New creates a new in-memory storage instance
func New() *Storage {
	return &Storage{
		data: &dataset{
			users:         make(map[model.UserID]model.User),
			usernameIndex: make(map[string]model.UserID),
			players:       make(map[model.PlayerID]model.Player),
			playerByUser:  make(map[model.UserID]model.PlayerID),
			trainings:     make(map[model.TrainingID]model.Training),
			matches:       make(map[model.MatchID]model.Match),
			stats:         make(map[model.PlayerStatID]model.PlayerStat),
			statIndex:     make(map[statKey]model.PlayerStatID),
		},
	}
}

// Ensure Storage implements the interface
var _ storage.Storage = (*Storage)(nil)

// Transact runs fn against a private copy of the data and publishes the
// copy only if fn succeeds
func (s *Storage) Transact(ctx context.Context, fn func(tx storage.Tx) error) (err error) {
	if err := ctx.Err(); err != nil {
		return fmt.Errorf("%w: %w", model.ErrStoreUnavailable, err)
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	work := s.data.clone()
	defer func() {
		if r := recover(); r != nil {
			err = fmt.Errorf("%w: transaction panicked: %v", model.ErrStoreUnavailable, r)
		}
	}()

	if err := fn(&tx{d: work}); err != nil {
		return err
	}
	s.data = work
	return nil
}

// Close is a no-op for the memory store
func (s *Storage) Close() error {
	return nil
}

func (d *dataset) clone() *dataset {
	c := *d
	c.users = maps.Clone(d.users)
	c.usernameIndex = maps.Clone(d.usernameIndex)
	c.players = maps.Clone(d.players)
	c.playerByUser = maps.Clone(d.playerByUser)
	c.trainings = maps.Clone(d.trainings)
	c.matches = maps.Clone(d.matches)
	c.stats = maps.Clone(d.stats)
	c.statIndex = maps.Clone(d.statIndex)
	return &c
}
