package model

import "time"

// PlayerID uniquely identifies a player profile
type PlayerID uint

// Player is the club profile attached to exactly one user
type Player struct {
	ID           PlayerID
	UserID       UserID // unique: a user has at most one profile
	Name         string
	Position     string
	JerseyNumber int
	JoinDate     time.Time
}

// PlayerListing is a player row together with its owner's username
type PlayerListing struct {
	Player
	Username string
}
