package domain

import (
	"errors"
	"time"
)

var (
	ErrRequestNotFound = errors.New("group request not found")
	ErrRequestExists   = errors.New("group request already exists")
	ErrAlreadyInGroup  = errors.New("user is already in the group")
)

type RequestStatus string

const (
	RequestPending  RequestStatus = "PENDING"
	RequestAccepted RequestStatus = "ACCEPTED"
)

// GroupRequest is a user's ask to join a group. It starts PENDING and
// either becomes ACCEPTED (terminal) or is deleted — rejection and
// withdrawal are both modeled as deletion, distinguished by actor.
type GroupRequest struct {
	ID        int64
	GroupID   int64
	UserID    int64
	Status    RequestStatus
	Group     *GroupSummary
	User      *UserSummary
	CreatedAt time.Time
	UpdatedAt time.Time
}
