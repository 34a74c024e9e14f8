package repository

import (
	"context"

	"github.com/tabletophq/groupfinder/internal/domain"
)

type GroupRequestRepository interface {
	// Create inserts a PENDING request. The (group_id, user_id) unique
	// index is the enforcement point for duplicates — concurrent
	// creates both surface domain.ErrRequestExists regardless of which
	// one wins.
	Create(ctx context.Context, groupID, userID int64) (*domain.GroupRequest, error)
	// FindByGroupAndUser returns the pair's request in any status — an
	// ACCEPTED row still counts as existing.
	FindByGroupAndUser(ctx context.Context, groupID, userID int64) (*domain.GroupRequest, error)
	// GetByID scopes to the group and carries the group summary so
	// callers can authorize against the master.
	GetByID(ctx context.Context, requestID, groupID int64) (*domain.GroupRequest, error)
	// ListPendingByMaster returns PENDING requests across every group
	// the master owns, with group and requester summaries attached.
	ListPendingByMaster(ctx context.Context, masterID int64) ([]*domain.GroupRequest, error)
	// Accept attaches the requester to the group's players and flips
	// the status to ACCEPTED in a single transaction.
	Accept(ctx context.Context, requestID int64) (*domain.GroupRequest, error)
	Delete(ctx context.Context, requestID int64) error
}
