package domain

import (
	"errors"
	"time"
)

var (
	ErrGroupNotFound      = errors.New("group not found")
	ErrCannotRemoveMaster = errors.New("cannot remove master from group")
	ErrPlayerNotInGroup   = errors.New("player is not in the group")
)

// Group is an RPG table. Master owns the group, is always a member,
// and never changes after creation.
type Group struct {
	ID          int64
	Name        string
	Description string
	Schedule    string
	Location    string
	Chronic     string
	Master      int64
	Players     []*User
	MasterUser  *User
	CreatedAt   time.Time
	UpdatedAt   time.Time
}

// GroupSummary is the slim shape embedded in group-request listings.
type GroupSummary struct {
	ID     int64
	Name   string
	Master int64
}
