package storage

import (
	"context"

	"github.com/mcoot/clubdesk/internal/model"
)

// Storage is the entity store. All access goes through Transact so every
// operation is all-or-nothing.
type Storage interface {
	// Transact runs fn inside a single transaction. If fn returns an error
	// (or panics) every write made through tx is rolled back.
	Transact(ctx context.Context, fn func(tx Tx) error) error

	// Close releases the underlying store
	Close() error
}

// Tx is the set of operations available inside a transaction.
//
// Lookups return the matching model.Err*NotFound error when nothing exists.
// Writes that break a storage invariant return model.ErrConstraintViolation
// (or model.ErrDuplicateUsername for usernames). Deleting a missing row is
// not an error.
type Tx interface {
	// User operations
	CreateUser(ctx context.Context, user *model.User) error
	GetUser(ctx context.Context, id model.UserID) (*model.User, error)
	GetUserByUsername(ctx context.Context, username string) (*model.User, error)
	ListUsers(ctx context.Context, role model.Role) ([]model.User, error)
	UpdatePasswordHash(ctx context.Context, id model.UserID, hash string) error
	// DeleteUser removes the user and cascades to its player profile and
	// that profile's stats
	DeleteUser(ctx context.Context, id model.UserID) error

	// Player operations
	// SavePlayer inserts when player.ID is zero and updates otherwise
	SavePlayer(ctx context.Context, player *model.Player) error
	GetPlayer(ctx context.Context, id model.PlayerID) (*model.Player, error)
	GetPlayerByUser(ctx context.Context, userID model.UserID) (*model.Player, error)
	ListPlayers(ctx context.Context) ([]model.PlayerListing, error)
	// DeletePlayer removes the player and cascades to its stats
	DeletePlayer(ctx context.Context, id model.PlayerID) error

	// Training operations
	SaveTraining(ctx context.Context, training *model.Training) error
	GetTraining(ctx context.Context, id model.TrainingID) (*model.Training, error)
	ListTrainings(ctx context.Context) ([]model.TrainingListing, error)
	DeleteTraining(ctx context.Context, id model.TrainingID) error

	// Match operations
	SaveMatch(ctx context.Context, match *model.Match) error
	GetMatch(ctx context.Context, id model.MatchID) (*model.Match, error)
	ListMatches(ctx context.Context) ([]model.Match, error)
	// DeleteMatch fails with model.ErrMatchHasStats while stats reference it
	DeleteMatch(ctx context.Context, id model.MatchID) error

	// Player stat operations
	// UpsertPlayerStat inserts or replaces the row for (PlayerID, MatchID)
	// and sets stat.ID to the stored row
	UpsertPlayerStat(ctx context.Context, stat *model.PlayerStat) error
	ListStatLines(ctx context.Context, playerID model.PlayerID) ([]model.StatLine, error)
	CountPlayerStats(ctx context.Context, playerID model.PlayerID) (int, error)
	DeletePlayerStats(ctx context.Context, playerID model.PlayerID) error
}
