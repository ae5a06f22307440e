package policy

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/suite"

	"github.com/mcoot/clubdesk/internal/model"
)

type PolicySuite struct {
	suite.Suite
}

func TestPolicySuite(t *testing.T) {
	suite.Run(t, new(PolicySuite))
}

var allResources = []Resource{Users, OwnPlayer, OtherPlayer, Trainings, Matches, OwnStats}

// expected spells out the full permission matrix cell by cell
var expected = map[model.Role]map[Resource]string{
	model.RoleAdmin: {
		Users: "D", OwnPlayer: "CRUD", OtherPlayer: "D", Trainings: "R", Matches: "R", OwnStats: "",
	},
	model.RoleCoach: {
		Users: "", OwnPlayer: "", OtherPlayer: "", Trainings: "CRUD", Matches: "CRUD", OwnStats: "",
	},
	model.RolePlayer: {
		Users: "", OwnPlayer: "CRUD", OtherPlayer: "R", Trainings: "R", Matches: "R", OwnStats: "CR",
	},
}

var opLetters = map[Op]string{Create: "C", Read: "R", Update: "U", Delete: "D"}

func (s *PolicySuite) TestEveryCellOfMatrix() {
	for role, row := range expected {
		for _, res := range allResources {
			for op, letter := range opLetters {
				want := strings.Contains(row[res], letter)
				s.Equal(want, Can(role, op, res), "%s %s %s", role, op, res)
			}
		}
	}
}

func (s *PolicySuite) TestUnknownRoleDeniedEverything() {
	for _, role := range []model.Role{"", "owner", "Admin"} {
		for _, res := range allResources {
			for op := range opLetters {
				s.False(Can(role, op, res), "%q %s %s", role, op, res)
			}
		}
	}
}

func (s *PolicySuite) TestRequireSucceedsWhenGranted() {
	s.NoError(Require(model.Actor{UserID: 1, Role: model.RoleCoach}, Create, Trainings))
}

func (s *PolicySuite) TestRequireFailsWithUnauthorized() {
	err := Require(model.Actor{UserID: 2, Role: model.RolePlayer}, Create, Trainings)
	s.ErrorIs(err, model.ErrUnauthorized)
	s.Contains(err.Error(), "player may not create trainings")
}

func (s *PolicySuite) TestRequireFailsForAnonymous() {
	err := Require(model.Actor{}, Read, Matches)
	s.ErrorIs(err, model.ErrUnauthorized)
	s.Contains(err.Error(), "anonymous")
}
