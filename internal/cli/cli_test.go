package cli

import (
	"bytes"
	"context"
	"encoding/json"
	"path/filepath"
	"strconv"
	"testing"

	"github.com/stretchr/testify/suite"

	"github.com/mcoot/clubdesk/internal/outcome"
)

type CLISuite struct {
	suite.Suite
	db        string
	tokenFile string
}

func TestCLISuite(t *testing.T) {
	suite.Run(t, new(CLISuite))
}

func (s *CLISuite) SetupTest() {
	dir := s.T().TempDir()
	s.db = filepath.Join(dir, "club.db")
	s.tokenFile = filepath.Join(dir, "token")

	s.T().Setenv("CLUB_STORAGE", "sqlite")
	s.T().Setenv("CLUB_BCRYPT_COST", "4")
	s.T().Setenv("CLUB_TOKEN_SECRET", "cli-test-secret")
	s.T().Setenv("CLUB_SEED_DEMO", "false")
	s.T().Setenv("CLUB_LOG_LEVEL", "error")
	s.T().Setenv("CLUB_USER", "")
	s.T().Setenv("CLUB_PASS", "")
	s.T().Setenv("CLUB_TOKEN", "")
}

type result struct {
	stdout string
	stderr string
	code   int
}

func (s *CLISuite) run(args ...string) result {
	var stdout, stderr bytes.Buffer
	args = append(args, "--db", s.db, "--token-file", s.tokenFile)
	code := Run(context.Background(), args, &stdout, &stderr)
	return result{stdout: stdout.String(), stderr: stderr.String(), code: code}
}

func (s *CLISuite) mustRun(args ...string) string {
	r := s.run(args...)
	s.Require().Equal(0, r.code, "stderr: %s", r.stderr)
	return r.stdout
}

func (s *CLISuite) decode(data string, v any) {
	s.Require().NoError(json.Unmarshal([]byte(data), v), data)
}

func as(username, password string) []string {
	return []string{"--user", username, "--pass", password}
}

func (s *CLISuite) TestInitIsIdempotent() {
	first := s.mustRun("init", "--demo")
	s.Contains(first, "created admin, coach, player")

	second := s.mustRun("init", "--demo")
	s.Contains(second, "nothing to create")
}

func (s *CLISuite) TestPlayerLifecycle() {
	s.mustRun("init", "--demo")
	s.mustRun("register", "alice", "pw1", "--role", "player", "--email", "alice@example.com")
	alice := as("alice", "pw1")

	s.mustRun(append([]string{"profile", "set", "--name", "Alice", "--position", "Forward", "--jersey", "9"}, alice...)...)

	var match MatchView
	s.decode(s.mustRun(append([]string{"matches", "add", "-o", "json",
		"--opponent", "Rovers", "--date", "2024-05-01", "--location", "Home"}, as("coach", "coach123")...)...), &match)
	s.Equal("Rovers", match.Opponent)

	s.mustRun(append([]string{"stats", "record", "--match", strconv.Itoa(int(match.ID)), "--goals", "2"}, alice...)...)

	var lines []StatView
	s.decode(s.mustRun(append([]string{"stats", "list", "-o", "json"}, alice...)...), &lines)
	s.Require().Len(lines, 1)
	s.Equal(2, lines[0].Goals)
	s.Equal("Rovers", lines[0].Opponent)

	var users []UserView
	s.decode(s.mustRun(append([]string{"users", "list", "-o", "json", "--role", "player"}, as("admin", "admin123")...)...), &users)
	var aliceID uint
	for _, u := range users {
		if u.Username == "alice" {
			aliceID = u.ID
		}
	}
	s.Require().NotZero(aliceID)

	s.mustRun(append([]string{"users", "delete", strconv.Itoa(int(aliceID))}, as("admin", "admin123")...)...)

	r := s.run(append([]string{"login"}, alice...)...)
	s.Equal(3, r.code)
	s.Contains(r.stderr, "Invalid username or password")
}

func (s *CLISuite) TestLoginSavesTokenForLaterCommands() {
	s.mustRun("init", "--demo")

	var login LoginView
	s.decode(s.mustRun(append([]string{"login", "-o", "json"}, as("player", "player123")...)...), &login)
	s.Equal("player", login.Role)
	s.NotEmpty(login.Token)

	// No --user/--pass: the saved token is used
	r := s.run("profile", "show")
	s.Equal(1, r.code)
	s.Contains(r.stderr, "Create your player profile first")

	s.mustRun("logout")
	r = s.run("profile", "show")
	s.Equal(3, r.code)
}

func (s *CLISuite) TestJSONErrorOutcome() {
	r := s.run("players", "list", "-o", "json")
	s.Equal(3, r.code)

	var res outcome.Result
	s.decode(r.stderr, &res)
	s.False(res.OK)
	s.Equal(outcome.CodeAuthRequired, res.Code)
}

func (s *CLISuite) TestPlayerCannotScheduleMatches() {
	s.mustRun("init", "--demo")

	r := s.run(append([]string{"matches", "add", "--opponent", "City", "--date", "2024-03-03", "--location", "Away"},
		as("player", "player123")...)...)
	s.Equal(3, r.code)
	s.Contains(r.stderr, "not allowed")
}

func (s *CLISuite) TestBadInputExitsWithUsageCode() {
	r := s.run("register", "bob", "pw")
	s.Equal(2, r.code, "missing --role")

	r = s.run(append([]string{"trainings", "add", "--date", "tomorrow", "--duration", "60", "--focus", "Fitness"},
		as("admin", "admin123")...)...)
	s.Equal(3, r.code, "admin may not create trainings")

	s.mustRun("init", "--demo")
	r = s.run(append([]string{"trainings", "add", "--date", "tomorrow", "--duration", "60", "--focus", "Fitness"},
		as("coach", "coach123")...)...)
	s.Equal(2, r.code)
	s.Contains(r.stderr, "date")

	r = s.run(append([]string{"matches", "delete", "abc"}, as("coach", "coach123")...)...)
	s.Equal(2, r.code)
}

func (s *CLISuite) TestMatchWithStatsCannotBeDeleted() {
	s.mustRun("init", "--demo")
	player := as("player", "player123")
	coach := as("coach", "coach123")

	s.mustRun(append([]string{"profile", "set", "--name", "Pat", "--position", "Keeper"}, player...)...)
	var match MatchView
	s.decode(s.mustRun(append([]string{"matches", "add", "-o", "json",
		"--opponent", "United", "--date", "2024-04-04", "--location", "Away", "--score", "1-1"}, coach...)...), &match)
	id := strconv.Itoa(int(match.ID))
	s.mustRun(append([]string{"stats", "record", "--match", id, "--assists", "1"}, player...)...)

	r := s.run(append([]string{"matches", "delete", id}, coach...)...)
	s.Equal(1, r.code)
	s.Contains(r.stderr, "recorded statistics")

	text := s.mustRun(append([]string{"matches", "show", id}, player...)...)
	s.Contains(text, "Score: 1-1")
}
