package model

import "time"

// PlayerStatID uniquely identifies a stat row
type PlayerStatID uint

// PlayerStat holds one player's counters for one match. There is at most
// one row per (PlayerID, MatchID); recording again replaces the counters.
type PlayerStat struct {
	ID          PlayerStatID
	PlayerID    PlayerID
	MatchID     MatchID
	Goals       int
	Assists     int
	YellowCards int
	RedCards    int
	RecordedAt  time.Time
}

// StatLine is a stat row joined with the match it belongs to
type StatLine struct {
	PlayerStat
	Opponent  string
	MatchDate time.Time
}
