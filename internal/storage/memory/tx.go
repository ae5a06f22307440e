package memory

import (
	"cmp"
	"context"
	"fmt"
	"slices"

	"github.com/mcoot/clubdesk/internal/model"
	"github.com/mcoot/clubdesk/internal/storage"
)

type tx struct {
	d *dataset
}

var _ storage.Tx = (*tx)(nil)

func copyText(s *string) *string {
	if s == nil {
		return nil
	}
	v := *s
	return &v
}

// User operations

func (t *tx) CreateUser(ctx context.Context, user *model.User) error {
	if !user.Role.Valid() {
		return fmt.Errorf("%w: role %q", model.ErrConstraintViolation, user.Role)
	}
	if _, exists := t.d.usernameIndex[user.Username]; exists {
		return model.ErrDuplicateUsername
	}
	t.d.nextUser++
	user.ID = t.d.nextUser

	stored := *user
	stored.Email = copyText(user.Email)
	t.d.users[user.ID] = stored
	t.d.usernameIndex[user.Username] = user.ID
	return nil
}

func (t *tx) GetUser(ctx context.Context, id model.UserID) (*model.User, error) {
	u, ok := t.d.users[id]
	if !ok {
		return nil, model.ErrUserNotFound
	}
	u.Email = copyText(u.Email)
	return &u, nil
}

func (t *tx) GetUserByUsername(ctx context.Context, username string) (*model.User, error) {
	id, ok := t.d.usernameIndex[username]
	if !ok {
		return nil, model.ErrUserNotFound
	}
	return t.GetUser(ctx, id)
}

func (t *tx) ListUsers(ctx context.Context, role model.Role) ([]model.User, error) {
	users := make([]model.User, 0, len(t.d.users))
	for _, u := range t.d.users {
		if role != "" && u.Role != role {
			continue
		}
		u.Email = copyText(u.Email)
		users = append(users, u)
	}
	slices.SortFunc(users, func(a, b model.User) int {
		return cmp.Compare(a.Username, b.Username)
	})
	return users, nil
}

func (t *tx) UpdatePasswordHash(ctx context.Context, id model.UserID, hash string) error {
	u, ok := t.d.users[id]
	if !ok {
		return model.ErrUserNotFound
	}
	u.PasswordHash = hash
	t.d.users[id] = u
	return nil
}

func (t *tx) DeleteUser(ctx context.Context, id model.UserID) error {
	u, ok := t.d.users[id]
	if !ok {
		return nil
	}
	if playerID, ok := t.d.playerByUser[id]; ok {
		if err := t.DeletePlayer(ctx, playerID); err != nil {
			return err
		}
	}
	delete(t.d.usernameIndex, u.Username)
	delete(t.d.users, id)
	return nil
}

// Player operations

func (t *tx) SavePlayer(ctx context.Context, player *model.Player) error {
	if _, ok := t.d.users[player.UserID]; !ok {
		return fmt.Errorf("%w: player references missing user %d", model.ErrConstraintViolation, player.UserID)
	}
	if player.JerseyNumber < 0 {
		return fmt.Errorf("%w: negative jersey number", model.ErrConstraintViolation)
	}
	if owner, ok := t.d.playerByUser[player.UserID]; ok && owner != player.ID {
		return fmt.Errorf("%w: user %d already has a player profile", model.ErrConstraintViolation, player.UserID)
	}

	if player.ID == 0 {
		t.d.nextPlayer++
		player.ID = t.d.nextPlayer
	} else {
		existing, ok := t.d.players[player.ID]
		if !ok {
			return model.ErrPlayerNotFound
		}
		if existing.UserID != player.UserID {
			delete(t.d.playerByUser, existing.UserID)
		}
	}

	t.d.players[player.ID] = *player
	t.d.playerByUser[player.UserID] = player.ID
	return nil
}

func (t *tx) GetPlayer(ctx context.Context, id model.PlayerID) (*model.Player, error) {
	p, ok := t.d.players[id]
	if !ok {
		return nil, model.ErrPlayerNotFound
	}
	return &p, nil
}

func (t *tx) GetPlayerByUser(ctx context.Context, userID model.UserID) (*model.Player, error) {
	id, ok := t.d.playerByUser[userID]
	if !ok {
		return nil, model.ErrPlayerNotFound
	}
	return t.GetPlayer(ctx, id)
}

func (t *tx) ListPlayers(ctx context.Context) ([]model.PlayerListing, error) {
	listings := make([]model.PlayerListing, 0, len(t.d.players))
	for _, p := range t.d.players {
		listings = append(listings, model.PlayerListing{
			Player:   p,
			Username: t.d.users[p.UserID].Username,
		})
	}
	slices.SortFunc(listings, func(a, b model.PlayerListing) int {
		return cmp.Or(cmp.Compare(a.Name, b.Name), cmp.Compare(a.ID, b.ID))
	})
	return listings, nil
}

func (t *tx) DeletePlayer(ctx context.Context, id model.PlayerID) error {
	p, ok := t.d.players[id]
	if !ok {
		return nil
	}
	if err := t.DeletePlayerStats(ctx, id); err != nil {
		return err
	}
	delete(t.d.playerByUser, p.UserID)
	delete(t.d.players, id)
	return nil
}

// Training operations

func (t *tx) SaveTraining(ctx context.Context, training *model.Training) error {
	if training.Duration <= 0 {
		return fmt.Errorf("%w: duration must be positive", model.ErrConstraintViolation)
	}
	if training.ID == 0 {
		t.d.nextTraining++
		training.ID = t.d.nextTraining
	} else if _, ok := t.d.trainings[training.ID]; !ok {
		return model.ErrTrainingNotFound
	}
	stored := *training
	stored.Notes = copyText(training.Notes)
	t.d.trainings[training.ID] = stored
	return nil
}

func (t *tx) GetTraining(ctx context.Context, id model.TrainingID) (*model.Training, error) {
	tr, ok := t.d.trainings[id]
	if !ok {
		return nil, model.ErrTrainingNotFound
	}
	tr.Notes = copyText(tr.Notes)
	return &tr, nil
}

func (t *tx) ListTrainings(ctx context.Context) ([]model.TrainingListing, error) {
	listings := make([]model.TrainingListing, 0, len(t.d.trainings))
	for _, tr := range t.d.trainings {
		tr.Notes = copyText(tr.Notes)
		listings = append(listings, model.TrainingListing{
			Training:      tr,
			CoachUsername: t.d.users[tr.CoachID].Username,
		})
	}
	slices.SortFunc(listings, func(a, b model.TrainingListing) int {
		return cmp.Or(b.Date.Compare(a.Date), cmp.Compare(b.ID, a.ID))
	})
	return listings, nil
}

func (t *tx) DeleteTraining(ctx context.Context, id model.TrainingID) error {
	delete(t.d.trainings, id)
	return nil
}

// Match operations

func (t *tx) SaveMatch(ctx context.Context, match *model.Match) error {
	if match.ID == 0 {
		t.d.nextMatch++
		match.ID = t.d.nextMatch
	} else if _, ok := t.d.matches[match.ID]; !ok {
		return model.ErrMatchNotFound
	}
	stored := *match
	stored.Score = copyText(match.Score)
	stored.Notes = copyText(match.Notes)
	t.d.matches[match.ID] = stored
	return nil
}

func (t *tx) GetMatch(ctx context.Context, id model.MatchID) (*model.Match, error) {
	m, ok := t.d.matches[id]
	if !ok {
		return nil, model.ErrMatchNotFound
	}
	m.Score = copyText(m.Score)
	m.Notes = copyText(m.Notes)
	return &m, nil
}

func (t *tx) ListMatches(ctx context.Context) ([]model.Match, error) {
	matches := make([]model.Match, 0, len(t.d.matches))
	for _, m := range t.d.matches {
		m.Score = copyText(m.Score)
		m.Notes = copyText(m.Notes)
		matches = append(matches, m)
	}
	slices.SortFunc(matches, func(a, b model.Match) int {
		return cmp.Or(b.Date.Compare(a.Date), cmp.Compare(b.ID, a.ID))
	})
	return matches, nil
}

func (t *tx) DeleteMatch(ctx context.Context, id model.MatchID) error {
	for key := range t.d.statIndex {
		if key.matchID == id {
			return model.ErrMatchHasStats
		}
	}
	delete(t.d.matches, id)
	return nil
}

// Player stat operations

func (t *tx) UpsertPlayerStat(ctx context.Context, stat *model.PlayerStat) error {
	if _, ok := t.d.players[stat.PlayerID]; !ok {
		return fmt.Errorf("%w: stat references missing player %d", model.ErrConstraintViolation, stat.PlayerID)
	}
	if _, ok := t.d.matches[stat.MatchID]; !ok {
		return fmt.Errorf("%w: stat references missing match %d", model.ErrConstraintViolation, stat.MatchID)
	}
	if stat.Goals < 0 || stat.Assists < 0 || stat.YellowCards < 0 || stat.RedCards < 0 {
		return fmt.Errorf("%w: negative counter", model.ErrConstraintViolation)
	}

	key := statKey{playerID: stat.PlayerID, matchID: stat.MatchID}
	if id, ok := t.d.statIndex[key]; ok {
		stat.ID = id
	} else {
		t.d.nextStat++
		stat.ID = t.d.nextStat
		t.d.statIndex[key] = stat.ID
	}
	t.d.stats[stat.ID] = *stat
	return nil
}

func (t *tx) ListStatLines(ctx context.Context, playerID model.PlayerID) ([]model.StatLine, error) {
	var lines []model.StatLine
	for _, st := range t.d.stats {
		if st.PlayerID != playerID {
			continue
		}
		m := t.d.matches[st.MatchID]
		lines = append(lines, model.StatLine{
			PlayerStat: st,
			Opponent:   m.Opponent,
			MatchDate:  m.Date,
		})
	}
	slices.SortFunc(lines, func(a, b model.StatLine) int {
		return cmp.Or(b.MatchDate.Compare(a.MatchDate), cmp.Compare(b.ID, a.ID))
	})
	return lines, nil
}

func (t *tx) CountPlayerStats(ctx context.Context, playerID model.PlayerID) (int, error) {
	n := 0
	for key := range t.d.statIndex {
		if key.playerID == playerID {
			n++
		}
	}
	return n, nil
}

func (t *tx) DeletePlayerStats(ctx context.Context, playerID model.PlayerID) error {
	for key, id := range t.d.statIndex {
		if key.playerID == playerID {
			delete(t.d.stats, id)
			delete(t.d.statIndex, key)
		}
	}
	return nil
}
