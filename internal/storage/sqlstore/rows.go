package sqlstore

import (
	"time"

	"github.com/mcoot/clubdesk/internal/model"
)

// Table rows. These carry the schema; model types stay free of gorm tags.

type userRow struct {
	ID           uint   `gorm:"primaryKey"`
	Username     string `gorm:"uniqueIndex;not null"`
	PasswordHash string `gorm:"not null"`
	Email        *string
	Role         string `gorm:"not null;default:player;check:chk_users_role,role IN ('admin','coach','player')"`
	CreatedAt    time.Time
}

func (userRow) TableName() string { return "users" }

type playerRow struct {
	ID           uint      `gorm:"primaryKey"`
	UserID       uint      `gorm:"uniqueIndex;not null"`
	User         *userRow  `gorm:"constraint:OnUpdate:CASCADE,OnDelete:CASCADE"`
	Name         string    `gorm:"not null"`
	Position     string    `gorm:"not null"`
	JerseyNumber int       `gorm:"not null;default:0;check:chk_players_jersey,jersey_number >= 0"`
	JoinDate     time.Time `gorm:"not null"`
}

func (playerRow) TableName() string { return "players" }

// coach_id has no foreign key: trainings outlive their coach
type trainingRow struct {
	ID        uint      `gorm:"primaryKey"`
	CoachID   uint      `gorm:"index;not null"`
	Date      time.Time `gorm:"not null"`
	Duration  int       `gorm:"not null;check:chk_trainings_duration,duration > 0"`
	FocusArea string    `gorm:"not null"`
	Notes     *string
}

func (trainingRow) TableName() string { return "trainings" }

type matchRow struct {
	ID       uint      `gorm:"primaryKey"`
	Opponent string    `gorm:"not null"`
	Date     time.Time `gorm:"not null"`
	Location string    `gorm:"not null"`
	Score    *string
	Notes    *string
}

func (matchRow) TableName() string { return "matches" }

type playerStatRow struct {
	ID          uint       `gorm:"primaryKey"`
	PlayerID    uint       `gorm:"not null;uniqueIndex:idx_player_stats_player_match"`
	Player      *playerRow `gorm:"constraint:OnUpdate:CASCADE,OnDelete:CASCADE"`
	MatchID     uint       `gorm:"not null;uniqueIndex:idx_player_stats_player_match;index"`
	Match       *matchRow  `gorm:"constraint:OnUpdate:CASCADE,OnDelete:RESTRICT"`
	Goals       int        `gorm:"not null;default:0;check:chk_stats_goals,goals >= 0"`
	Assists     int        `gorm:"not null;default:0;check:chk_stats_assists,assists >= 0"`
	YellowCards int        `gorm:"not null;default:0;check:chk_stats_yellow,yellow_cards >= 0"`
	RedCards    int        `gorm:"not null;default:0;check:chk_stats_red,red_cards >= 0"`
	RecordedAt  time.Time
}

func (playerStatRow) TableName() string { return "player_stats" }

// allTables lists the row types in dependency order for AutoMigrate
var allTables = []any{
	&userRow{},
	&playerRow{},
	&trainingRow{},
	&matchRow{},
	&playerStatRow{},
}

// Conversions

func toUserRow(u *model.User) userRow {
	return userRow{
		ID:           uint(u.ID),
		Username:     u.Username,
		PasswordHash: u.PasswordHash,
		Email:        u.Email,
		Role:         string(u.Role),
		CreatedAt:    u.CreatedAt,
	}
}

func (r *userRow) toModel() model.User {
	return model.User{
		ID:           model.UserID(r.ID),
		Username:     r.Username,
		PasswordHash: r.PasswordHash,
		Email:        r.Email,
		Role:         model.Role(r.Role),
		CreatedAt:    r.CreatedAt,
	}
}

func toPlayerRow(p *model.Player) playerRow {
	return playerRow{
		ID:           uint(p.ID),
		UserID:       uint(p.UserID),
		Name:         p.Name,
		Position:     p.Position,
		JerseyNumber: p.JerseyNumber,
		JoinDate:     p.JoinDate,
	}
}

func (r *playerRow) toModel() model.Player {
	return model.Player{
		ID:           model.PlayerID(r.ID),
		UserID:       model.UserID(r.UserID),
		Name:         r.Name,
		Position:     r.Position,
		JerseyNumber: r.JerseyNumber,
		JoinDate:     r.JoinDate,
	}
}

func toTrainingRow(t *model.Training) trainingRow {
	return trainingRow{
		ID:        uint(t.ID),
		CoachID:   uint(t.CoachID),
		Date:      t.Date,
		Duration:  t.Duration,
		FocusArea: t.FocusArea,
		Notes:     t.Notes,
	}
}

func (r *trainingRow) toModel() model.Training {
	return model.Training{
		ID:        model.TrainingID(r.ID),
		CoachID:   model.UserID(r.CoachID),
		Date:      r.Date,
		Duration:  r.Duration,
		FocusArea: r.FocusArea,
		Notes:     r.Notes,
	}
}

func toMatchRow(m *model.Match) matchRow {
	return matchRow{
		ID:       uint(m.ID),
		Opponent: m.Opponent,
		Date:     m.Date,
		Location: m.Location,
		Score:    m.Score,
		Notes:    m.Notes,
	}
}

func (r *matchRow) toModel() model.Match {
	return model.Match{
		ID:       model.MatchID(r.ID),
		Opponent: r.Opponent,
		Date:     r.Date,
		Location: r.Location,
		Score:    r.Score,
		Notes:    r.Notes,
	}
}

func toPlayerStatRow(s *model.PlayerStat) playerStatRow {
	return playerStatRow{
		ID:          uint(s.ID),
		PlayerID:    uint(s.PlayerID),
		MatchID:     uint(s.MatchID),
		Goals:       s.Goals,
		Assists:     s.Assists,
		YellowCards: s.YellowCards,
		RedCards:    s.RedCards,
		RecordedAt:  s.RecordedAt,
	}
}

func (r *playerStatRow) toModel() model.PlayerStat {
	return model.PlayerStat{
		ID:          model.PlayerStatID(r.ID),
		PlayerID:    model.PlayerID(r.PlayerID),
		MatchID:     model.MatchID(r.MatchID),
		Goals:       r.Goals,
		Assists:     r.Assists,
		YellowCards: r.YellowCards,
		RedCards:    r.RedCards,
		RecordedAt:  r.RecordedAt,
	}
}
