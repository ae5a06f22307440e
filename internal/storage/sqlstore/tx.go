package sqlstore

import (
	"context"
	"errors"
	"time"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/mcoot/clubdesk/internal/model"
	"github.com/mcoot/clubdesk/internal/storage"
)

type tx struct {
	db *gorm.DB
}

var _ storage.Tx = (*tx)(nil)

func (t *tx) q(ctx context.Context) *gorm.DB {
	return t.db.WithContext(ctx)
}

// notFound converts gorm's missing-row error into the given model error
func notFound(err error, missing error) error {
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return missing
	}
	return translate(err)
}

// User operations

func (t *tx) CreateUser(ctx context.Context, user *model.User) error {
	row := toUserRow(user)
	if err := t.q(ctx).Create(&row).Error; err != nil {
		return translate(err)
	}
	user.ID = model.UserID(row.ID)
	user.CreatedAt = row.CreatedAt
	return nil
}

func (t *tx) GetUser(ctx context.Context, id model.UserID) (*model.User, error) {
	var row userRow
	if err := t.q(ctx).First(&row, uint(id)).Error; err != nil {
		return nil, notFound(err, model.ErrUserNotFound)
	}
	u := row.toModel()
	return &u, nil
}

func (t *tx) GetUserByUsername(ctx context.Context, username string) (*model.User, error) {
	var row userRow
	if err := t.q(ctx).Where("username = ?", username).First(&row).Error; err != nil {
		return nil, notFound(err, model.ErrUserNotFound)
	}
	u := row.toModel()
	return &u, nil
}

func (t *tx) ListUsers(ctx context.Context, role model.Role) ([]model.User, error) {
	q := t.q(ctx).Order("username")
	if role != "" {
		q = q.Where("role = ?", string(role))
	}
	var rows []userRow
	if err := q.Find(&rows).Error; err != nil {
		return nil, translate(err)
	}
	users := make([]model.User, len(rows))
	for i := range rows {
		users[i] = rows[i].toModel()
	}
	return users, nil
}

func (t *tx) UpdatePasswordHash(ctx context.Context, id model.UserID, hash string) error {
	res := t.q(ctx).Model(&userRow{}).Where("id = ?", uint(id)).Update("password_hash", hash)
	if res.Error != nil {
		return translate(res.Error)
	}
	if res.RowsAffected == 0 {
		return model.ErrUserNotFound
	}
	return nil
}

func (t *tx) DeleteUser(ctx context.Context, id model.UserID) error {
	var player playerRow
	err := t.q(ctx).Where("user_id = ?", uint(id)).First(&player).Error
	switch {
	case err == nil:
		if err := t.DeletePlayer(ctx, model.PlayerID(player.ID)); err != nil {
			return err
		}
	case !errors.Is(err, gorm.ErrRecordNotFound):
		return translate(err)
	}
	if err := t.q(ctx).Delete(&userRow{}, uint(id)).Error; err != nil {
		return translate(err)
	}
	return nil
}

// Player operations

func (t *tx) SavePlayer(ctx context.Context, player *model.Player) error {
	row := toPlayerRow(player)
	if row.ID == 0 {
		if err := t.q(ctx).Omit(clause.Associations).Create(&row).Error; err != nil {
			return translate(err)
		}
		player.ID = model.PlayerID(row.ID)
		return nil
	}

	res := t.q(ctx).Model(&playerRow{ID: row.ID}).Omit(clause.Associations).
		Select("user_id", "name", "position", "jersey_number", "join_date").
		Updates(&row)
	if res.Error != nil {
		return translate(res.Error)
	}
	if res.RowsAffected == 0 {
		return model.ErrPlayerNotFound
	}
	return nil
}

func (t *tx) GetPlayer(ctx context.Context, id model.PlayerID) (*model.Player, error) {
	var row playerRow
	if err := t.q(ctx).First(&row, uint(id)).Error; err != nil {
		return nil, notFound(err, model.ErrPlayerNotFound)
	}
	p := row.toModel()
	return &p, nil
}

func (t *tx) GetPlayerByUser(ctx context.Context, userID model.UserID) (*model.Player, error) {
	var row playerRow
	if err := t.q(ctx).Where("user_id = ?", uint(userID)).First(&row).Error; err != nil {
		return nil, notFound(err, model.ErrPlayerNotFound)
	}
	p := row.toModel()
	return &p, nil
}

func (t *tx) ListPlayers(ctx context.Context) ([]model.PlayerListing, error) {
	var rows []playerRow
	if err := t.q(ctx).Preload("User").Order("name, id").Find(&rows).Error; err != nil {
		return nil, translate(err)
	}
	listings := make([]model.PlayerListing, len(rows))
	for i := range rows {
		listings[i].Player = rows[i].toModel()
		if rows[i].User != nil {
			listings[i].Username = rows[i].User.Username
		}
	}
	return listings, nil
}

func (t *tx) DeletePlayer(ctx context.Context, id model.PlayerID) error {
	if err := t.DeletePlayerStats(ctx, id); err != nil {
		return err
	}
	if err := t.q(ctx).Delete(&playerRow{}, uint(id)).Error; err != nil {
		return translate(err)
	}
	return nil
}

// Training operations

func (t *tx) SaveTraining(ctx context.Context, training *model.Training) error {
	row := toTrainingRow(training)
	if row.ID == 0 {
		if err := t.q(ctx).Create(&row).Error; err != nil {
			return translate(err)
		}
		training.ID = model.TrainingID(row.ID)
		return nil
	}

	res := t.q(ctx).Model(&trainingRow{ID: row.ID}).
		Select("coach_id", "date", "duration", "focus_area", "notes").
		Updates(&row)
	if res.Error != nil {
		return translate(res.Error)
	}
	if res.RowsAffected == 0 {
		return model.ErrTrainingNotFound
	}
	return nil
}

func (t *tx) GetTraining(ctx context.Context, id model.TrainingID) (*model.Training, error) {
	var row trainingRow
	if err := t.q(ctx).First(&row, uint(id)).Error; err != nil {
		return nil, notFound(err, model.ErrTrainingNotFound)
	}
	tr := row.toModel()
	return &tr, nil
}

// trainingWithCoach is the scan target for the trainings/users join
type trainingWithCoach struct {
	Training      trainingRow `gorm:"embedded"`
	CoachUsername *string
}

func (t *tx) ListTrainings(ctx context.Context) ([]model.TrainingListing, error) {
	var rows []trainingWithCoach
	err := t.q(ctx).Model(&trainingRow{}).
		Select("trainings.*, users.username AS coach_username").
		Joins("LEFT JOIN users ON users.id = trainings.coach_id").
		Order("trainings.date DESC, trainings.id DESC").
		Scan(&rows).Error
	if err != nil {
		return nil, translate(err)
	}
	listings := make([]model.TrainingListing, len(rows))
	for i := range rows {
		listings[i].Training = rows[i].Training.toModel()
		if rows[i].CoachUsername != nil {
			listings[i].CoachUsername = *rows[i].CoachUsername
		}
	}
	return listings, nil
}

func (t *tx) DeleteTraining(ctx context.Context, id model.TrainingID) error {
	if err := t.q(ctx).Delete(&trainingRow{}, uint(id)).Error; err != nil {
		return translate(err)
	}
	return nil
}

// Match operations

func (t *tx) SaveMatch(ctx context.Context, match *model.Match) error {
	row := toMatchRow(match)
	if row.ID == 0 {
		if err := t.q(ctx).Create(&row).Error; err != nil {
			return translate(err)
		}
		match.ID = model.MatchID(row.ID)
		return nil
	}

	res := t.q(ctx).Model(&matchRow{ID: row.ID}).
		Select("opponent", "date", "location", "score", "notes").
		Updates(&row)
	if res.Error != nil {
		return translate(res.Error)
	}
	if res.RowsAffected == 0 {
		return model.ErrMatchNotFound
	}
	return nil
}

func (t *tx) GetMatch(ctx context.Context, id model.MatchID) (*model.Match, error) {
	var row matchRow
	if err := t.q(ctx).First(&row, uint(id)).Error; err != nil {
		return nil, notFound(err, model.ErrMatchNotFound)
	}
	m := row.toModel()
	return &m, nil
}

func (t *tx) ListMatches(ctx context.Context) ([]model.Match, error) {
	var rows []matchRow
	if err := t.q(ctx).Order("date DESC, id DESC").Find(&rows).Error; err != nil {
		return nil, translate(err)
	}
	matches := make([]model.Match, len(rows))
	for i := range rows {
		matches[i] = rows[i].toModel()
	}
	return matches, nil
}

func (t *tx) DeleteMatch(ctx context.Context, id model.MatchID) error {
	var n int64
	if err := t.q(ctx).Model(&playerStatRow{}).Where("match_id = ?", uint(id)).Count(&n).Error; err != nil {
		return translate(err)
	}
	if n > 0 {
		return model.ErrMatchHasStats
	}
	if err := t.q(ctx).Delete(&matchRow{}, uint(id)).Error; err != nil {
		return translate(err)
	}
	return nil
}

// Player stat operations

func (t *tx) UpsertPlayerStat(ctx context.Context, stat *model.PlayerStat) error {
	row := toPlayerStatRow(stat)
	row.ID = 0
	err := t.q(ctx).Omit(clause.Associations).Clauses(clause.OnConflict{
		Columns: []clause.Column{{Name: "player_id"}, {Name: "match_id"}},
		DoUpdates: clause.AssignmentColumns([]string{
			"goals", "assists", "yellow_cards", "red_cards", "recorded_at",
		}),
	}).Create(&row).Error
	if err != nil {
		return translate(err)
	}

	// The returned id is unreliable on the update path, so look it up
	var stored playerStatRow
	err = t.q(ctx).Where("player_id = ? AND match_id = ?", row.PlayerID, row.MatchID).First(&stored).Error
	if err != nil {
		return translate(err)
	}
	stat.ID = model.PlayerStatID(stored.ID)
	return nil
}

// statWithMatch is the scan target for the player_stats/matches join
type statWithMatch struct {
	Stat      playerStatRow `gorm:"embedded"`
	Opponent  string
	MatchDate time.Time
}

func (t *tx) ListStatLines(ctx context.Context, playerID model.PlayerID) ([]model.StatLine, error) {
	var rows []statWithMatch
	err := t.q(ctx).Model(&playerStatRow{}).
		Select("player_stats.*, matches.opponent AS opponent, matches.date AS match_date").
		Joins("JOIN matches ON matches.id = player_stats.match_id").
		Where("player_stats.player_id = ?", uint(playerID)).
		Order("matches.date DESC, player_stats.id DESC").
		Scan(&rows).Error
	if err != nil {
		return nil, translate(err)
	}
	lines := make([]model.StatLine, len(rows))
	for i := range rows {
		lines[i] = model.StatLine{
			PlayerStat: rows[i].Stat.toModel(),
			Opponent:   rows[i].Opponent,
			MatchDate:  rows[i].MatchDate,
		}
	}
	return lines, nil
}

func (t *tx) CountPlayerStats(ctx context.Context, playerID model.PlayerID) (int, error) {
	var n int64
	if err := t.q(ctx).Model(&playerStatRow{}).Where("player_id = ?", uint(playerID)).Count(&n).Error; err != nil {
		return 0, translate(err)
	}
	return int(n), nil
}

func (t *tx) DeletePlayerStats(ctx context.Context, playerID model.PlayerID) error {
	if err := t.q(ctx).Where("player_id = ?", uint(playerID)).Delete(&playerStatRow{}).Error; err != nil {
		return translate(err)
	}
	return nil
}
