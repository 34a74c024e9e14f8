// Package policy holds the authorization predicates. They are pure
// functions over (actor, resource) ids — no store access, no side
// effects — so usecases can evaluate them before touching anything.
package policy

import "github.com/tabletophq/groupfinder/internal/domain"

type Resource string

type Action string

const (
	ResourceUser    Resource = "user"
	ResourceGroup   Resource = "group"
	ResourceRequest Resource = "group_request"

	ActionView         Action = "view"
	ActionUpdate       Action = "update"
	ActionDestroy      Action = "destroy"
	ActionAccept       Action = "accept"
	ActionRemovePlayer Action = "remove_player"
)

// Ref carries whichever ids a predicate needs. OwnerID is the group
// master for group/request rules and the target user id for user rules.
type Ref struct {
	OwnerID int64
}

type predicate func(actorID int64, ref Ref) bool

func ownerOnly(actorID int64, ref Ref) bool { return actorID == ref.OwnerID }

var table = map[Resource]map[Action]predicate{
	ResourceUser: {
		ActionView:   ownerOnly,
		ActionUpdate: ownerOnly,
	},
	ResourceGroup: {
		ActionUpdate:  ownerOnly,
		ActionDestroy: ownerOnly,
		// Consulted only when the actor is not the master: a player
		// may remove themself, nobody else.
		ActionRemovePlayer: ownerOnly,
	},
	ResourceRequest: {
		ActionView:    ownerOnly,
		ActionAccept:  ownerOnly,
		ActionDestroy: ownerOnly,
	},
}

// Allow reports whether actorID may perform action on the resource.
// Unknown (resource, action) pairs are denied.
func Allow(resource Resource, action Action, actorID int64, ref Ref) bool {
	actions, ok := table[resource]
	if !ok {
		return false
	}
	pred, ok := actions[action]
	if !ok {
		return false
	}
	return pred(actorID, ref)
}

// Authorize is Allow returning domain.ErrForbidden on denial, for
// usecases that want the error form.
func Authorize(resource Resource, action Action, actorID int64, ref Ref) error {
	if !Allow(resource, action, actorID, ref) {
		return domain.ErrForbidden
	}
	return nil
}
