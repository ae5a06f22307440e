// Package policy decides which role may perform which operation on which
// kind of record. It is pure and holds no state.
package policy

import (
	"fmt"

	"github.com/mcoot/clubdesk/internal/model"
)

// Op is a CRUD operation
type Op string

const (
	Create Op = "create"
	Read   Op = "read"
	Update Op = "update"
	Delete Op = "delete"
)

// Resource is a class of records. Own/Other variants distinguish the
// actor's own records from everyone else's.
type Resource string

const (
	Users       Resource = "users"
	OwnPlayer   Resource = "own player"
	OtherPlayer Resource = "other player"
	Trainings   Resource = "trainings"
	Matches     Resource = "matches"
	OwnStats    Resource = "own stats"
)

type grant map[Resource][]Op

var crud = []Op{Create, Read, Update, Delete}

var grants = map[model.Role]grant{
	model.RoleAdmin: {
		Users:       {Delete},
		OwnPlayer:   crud,
		OtherPlayer: {Delete},
		Trainings:   {Read},
		Matches:     {Read},
	},
	model.RoleCoach: {
		Trainings: crud,
		Matches:   crud,
	},
	model.RolePlayer: {
		OwnPlayer:   crud,
		OtherPlayer: {Read},
		Trainings:   {Read},
		Matches:     {Read},
		OwnStats:    {Create, Read},
	},
}

// Can reports whether role may perform op on resource. Unknown roles may
// do nothing.
func Can(role model.Role, op Op, resource Resource) bool {
	for _, allowed := range grants[role][resource] {
		if allowed == op {
			return true
		}
	}
	return false
}

// Require returns an error wrapping model.ErrUnauthorized unless the actor
// may perform op on resource
func Require(actor model.Actor, op Op, resource Resource) error {
	if Can(actor.Role, op, resource) {
		return nil
	}
	return Denied(actor, op, resource)
}

// Denied builds the error returned when an actor is refused
func Denied(actor model.Actor, op Op, resource Resource) error {
	return fmt.Errorf("%w: %s may not %s %s", model.ErrUnauthorized, roleLabel(actor.Role), op, resource)
}

func roleLabel(r model.Role) string {
	if r == "" {
		return "anonymous"
	}
	return string(r)
}
