package cli

import (
	"encoding/json"
	"fmt"
	"io"
	"time"

	"github.com/mcoot/clubdesk/internal/model"
	"github.com/mcoot/clubdesk/internal/outcome"
)

// Output handles formatting output based on the configured format
type Output struct {
	format string
	out    io.Writer
	err    io.Writer
}

// NewOutput creates a new Output formatter
func NewOutput(format string, out, err io.Writer) *Output {
	return &Output{format: format, out: out, err: err}
}

// Print outputs data in the configured format
func (o *Output) Print(data any) {
	if o.format == "json" {
		o.printJSON(o.out, data)
	} else {
		o.printText(data)
	}
}

// PrintResult outputs a failed operation's outcome on stderr
func (o *Output) PrintResult(r outcome.Result) {
	if o.format == "json" {
		o.printJSON(o.err, r)
		return
	}
	fmt.Fprintf(o.err, "Error: %s\n", r.Message)
}

// PrintMessage outputs a successful operation's outcome
func (o *Output) PrintMessage(msg string) {
	if o.format == "json" {
		o.printJSON(o.out, outcome.Success(msg))
	} else {
		fmt.Fprintln(o.out, msg)
	}
}

func (o *Output) printJSON(w io.Writer, data any) {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	_ = enc.Encode(data)
}

func (o *Output) printText(data any) {
	switch v := data.(type) {
	case LoginView:
		o.printLogin(v)
	case UserView:
		o.printUsers([]UserView{v})
	case []UserView:
		o.printUsers(v)
	case PlayerView:
		o.printPlayer(v)
	case []PlayerView:
		o.printPlayers(v)
	case TrainingView:
		o.printTrainings([]TrainingView{v})
	case []TrainingView:
		o.printTrainings(v)
	case MatchView:
		o.printMatch(v)
	case []MatchView:
		o.printMatches(v)
	case StatView:
		o.printStat(v)
	case []StatView:
		o.printStats(v)
	default:
		// Fallback to JSON for unknown types
		o.printJSON(o.out, data)
	}
}

// LoginView is the result of a successful login
type LoginView struct {
	UserID   uint   `json:"user_id"`
	Username string `json:"username"`
	Role     string `json:"role"`
	Token    string `json:"token,omitempty"`
}

// UserView is an account without its password hash
type UserView struct {
	ID        uint      `json:"id"`
	Username  string    `json:"username"`
	Email     *string   `json:"email"`
	Role      string    `json:"role"`
	CreatedAt time.Time `json:"created_at"`
}

func newUserView(u model.User) UserView {
	return UserView{
		ID:        uint(u.ID),
		Username:  u.Username,
		Email:     u.Email,
		Role:      u.Role.String(),
		CreatedAt: u.CreatedAt,
	}
}

// PlayerView is a player profile
type PlayerView struct {
	ID           uint   `json:"id"`
	UserID       uint   `json:"user_id"`
	Username     string `json:"username,omitempty"`
	Name         string `json:"name"`
	Position     string `json:"position"`
	JerseyNumber int    `json:"jersey_number"`
	JoinDate     string `json:"join_date"`
}

func newPlayerView(p model.Player, username string) PlayerView {
	return PlayerView{
		ID:           uint(p.ID),
		UserID:       uint(p.UserID),
		Username:     username,
		Name:         p.Name,
		Position:     p.Position,
		JerseyNumber: p.JerseyNumber,
		JoinDate:     p.JoinDate.Format(model.DateLayout),
	}
}

// TrainingView is a training session
type TrainingView struct {
	ID        uint    `json:"id"`
	CoachID   uint    `json:"coach_id"`
	Coach     string  `json:"coach,omitempty"`
	Date      string  `json:"date"`
	Duration  int     `json:"duration"`
	FocusArea string  `json:"focus_area"`
	Notes     *string `json:"notes"`
}

func newTrainingView(t model.Training, coach string) TrainingView {
	return TrainingView{
		ID:        uint(t.ID),
		CoachID:   uint(t.CoachID),
		Coach:     coach,
		Date:      t.Date.Format(model.DateLayout),
		Duration:  t.Duration,
		FocusArea: t.FocusArea,
		Notes:     t.Notes,
	}
}

// MatchView is a fixture
type MatchView struct {
	ID       uint    `json:"id"`
	Opponent string  `json:"opponent"`
	Date     string  `json:"date"`
	Location string  `json:"location"`
	Score    *string `json:"score"`
	Notes    *string `json:"notes"`
}

func newMatchView(m model.Match) MatchView {
	return MatchView{
		ID:       uint(m.ID),
		Opponent: m.Opponent,
		Date:     m.Date.Format(model.DateLayout),
		Location: m.Location,
		Score:    m.Score,
		Notes:    m.Notes,
	}
}

// StatView is one match's counters for a player
type StatView struct {
	ID          uint   `json:"id"`
	MatchID     uint   `json:"match_id"`
	Opponent    string `json:"opponent,omitempty"`
	MatchDate   string `json:"match_date,omitempty"`
	Goals       int    `json:"goals"`
	Assists     int    `json:"assists"`
	YellowCards int    `json:"yellow_cards"`
	RedCards    int    `json:"red_cards"`
}

func newStatView(s model.PlayerStat) StatView {
	return StatView{
		ID:          uint(s.ID),
		MatchID:     uint(s.MatchID),
		Goals:       s.Goals,
		Assists:     s.Assists,
		YellowCards: s.YellowCards,
		RedCards:    s.RedCards,
	}
}

func newStatLineView(l model.StatLine) StatView {
	v := newStatView(l.PlayerStat)
	v.Opponent = l.Opponent
	v.MatchDate = l.MatchDate.Format(model.DateLayout)
	return v
}

func orDash(s *string) string {
	if s == nil {
		return "-"
	}
	return *s
}

func (o *Output) printLogin(l LoginView) {
	fmt.Fprintf(o.out, "Logged in as %s (%s, id %d)\n", l.Username, l.Role, l.UserID)
	if l.Token != "" {
		fmt.Fprintf(o.out, "Token: %s\n", l.Token)
	}
}

func (o *Output) printUsers(users []UserView) {
	if len(users) == 0 {
		fmt.Fprintln(o.out, "No users")
		return
	}
	for _, u := range users {
		fmt.Fprintf(o.out, "%d\t%s\t%s\t%s\n", u.ID, u.Username, u.Role, orDash(u.Email))
	}
}

func (o *Output) printPlayer(p PlayerView) {
	fmt.Fprintf(o.out, "Player: %s (%d)\n", p.Name, p.ID)
	fmt.Fprintf(o.out, "Position: %s\n", p.Position)
	fmt.Fprintf(o.out, "Jersey: %d\n", p.JerseyNumber)
	fmt.Fprintf(o.out, "Joined: %s\n", p.JoinDate)
}

func (o *Output) printPlayers(players []PlayerView) {
	if len(players) == 0 {
		fmt.Fprintln(o.out, "No players")
		return
	}
	for _, p := range players {
		fmt.Fprintf(o.out, "%d\t#%d\t%s\t%s\t%s\n", p.ID, p.JerseyNumber, p.Name, p.Position, p.Username)
	}
}

func (o *Output) printTrainings(trainings []TrainingView) {
	if len(trainings) == 0 {
		fmt.Fprintln(o.out, "No trainings")
		return
	}
	for _, t := range trainings {
		coach := t.Coach
		if coach == "" {
			coach = fmt.Sprintf("coach %d", t.CoachID)
		}
		fmt.Fprintf(o.out, "%d\t%s\t%d min\t%s\t%s\t%s\n", t.ID, t.Date, t.Duration, t.FocusArea, coach, orDash(t.Notes))
	}
}

func (o *Output) printMatch(m MatchView) {
	fmt.Fprintf(o.out, "Match: vs %s (%d)\n", m.Opponent, m.ID)
	fmt.Fprintf(o.out, "Date: %s\n", m.Date)
	fmt.Fprintf(o.out, "Location: %s\n", m.Location)
	fmt.Fprintf(o.out, "Score: %s\n", orDash(m.Score))
	if m.Notes != nil {
		fmt.Fprintf(o.out, "Notes: %s\n", *m.Notes)
	}
}

func (o *Output) printMatches(matches []MatchView) {
	if len(matches) == 0 {
		fmt.Fprintln(o.out, "No matches")
		return
	}
	for _, m := range matches {
		fmt.Fprintf(o.out, "%d\t%s\tvs %s\t%s\t%s\n", m.ID, m.Date, m.Opponent, m.Location, orDash(m.Score))
	}
}

func (o *Output) printStat(s StatView) {
	fmt.Fprintf(o.out, "Recorded for match %d: %d goals, %d assists, %d yellow, %d red\n",
		s.MatchID, s.Goals, s.Assists, s.YellowCards, s.RedCards)
}

func (o *Output) printStats(stats []StatView) {
	if len(stats) == 0 {
		fmt.Fprintln(o.out, "No stats")
		return
	}
	for _, s := range stats {
		fmt.Fprintf(o.out, "%s\tvs %s\tG %d\tA %d\tY %d\tR %d\n",
			s.MatchDate, s.Opponent, s.Goals, s.Assists, s.YellowCards, s.RedCards)
	}
}
