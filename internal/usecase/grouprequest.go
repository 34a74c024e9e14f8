package usecase

import (
	"context"
	"errors"
	"fmt"

	"github.com/tabletophq/groupfinder/internal/domain"
	"github.com/tabletophq/groupfinder/internal/metrics"
	"github.com/tabletophq/groupfinder/internal/policy"
	"github.com/tabletophq/groupfinder/internal/repository"
)

type GroupRequestUsecase struct {
	requests repository.GroupRequestRepository
	groups   repository.GroupRepository
}

func NewGroupRequestUsecase(requests repository.GroupRequestRepository, groups repository.GroupRepository) *GroupRequestUsecase {
	return &GroupRequestUsecase{requests: requests, groups: groups}
}

// ListPending returns every PENDING request across the groups owned by
// masterID. Only that master may ask.
func (u *GroupRequestUsecase) ListPending(ctx context.Context, masterID, actorID int64) ([]*domain.GroupRequest, error) {
	if err := policy.Authorize(policy.ResourceRequest, policy.ActionView, actorID, policy.Ref{OwnerID: masterID}); err != nil {
		return nil, err
	}

	requests, err := u.requests.ListPendingByMaster(ctx, masterID)
	if err != nil {
		return nil, fmt.Errorf("list pending requests: %w", err)
	}
	return requests, nil
}

// CreateRequest files a PENDING join request. The (group, user) pair is
// unique in any status, and the duplicate answer outranks the member
// one: a requester whose request was accepted is also a member, and
// re-requesting must still read as "already exists".
func (u *GroupRequestUsecase) CreateRequest(ctx context.Context, groupID, requesterID int64) (*domain.GroupRequest, error) {
	if _, err := u.groups.GetByID(ctx, groupID); err != nil {
		return nil, fmt.Errorf("get group: %w", err)
	}

	if _, err := u.requests.FindByGroupAndUser(ctx, groupID, requesterID); err == nil {
		metrics.GroupRequestsTotal.WithLabelValues("conflict").Inc()
		return nil, domain.ErrRequestExists
	} else if !errors.Is(err, domain.ErrRequestNotFound) {
		return nil, fmt.Errorf("find request: %w", err)
	}

	member, err := u.groups.IsMember(ctx, groupID, requesterID)
	if err != nil {
		return nil, fmt.Errorf("check membership: %w", err)
	}
	if member {
		metrics.GroupRequestsTotal.WithLabelValues("rejected_member").Inc()
		return nil, domain.ErrAlreadyInGroup
	}

	created, err := u.requests.Create(ctx, groupID, requesterID)
	if err != nil {
		// The unique index reports the duplicate even when two creates
		// race past the read together.
		if errors.Is(err, domain.ErrRequestExists) {
			metrics.GroupRequestsTotal.WithLabelValues("conflict").Inc()
		}
		return nil, err
	}
	metrics.GroupRequestsTotal.WithLabelValues("created").Inc()
	return created, nil
}

// Accept moves PENDING → ACCEPTED and attaches the requester to the
// group in one transaction. Only the group's master may accept; a
// request that is already resolved reads as not found.
func (u *GroupRequestUsecase) Accept(ctx context.Context, groupID, requestID, actorID int64) (*domain.GroupRequest, error) {
	request, err := u.requests.GetByID(ctx, requestID, groupID)
	if err != nil {
		return nil, fmt.Errorf("get request: %w", err)
	}
	if err := policy.Authorize(policy.ResourceRequest, policy.ActionAccept, actorID, policy.Ref{OwnerID: request.Group.Master}); err != nil {
		return nil, err
	}

	accepted, err := u.requests.Accept(ctx, request.ID)
	if err != nil {
		return nil, fmt.Errorf("accept request: %w", err)
	}
	accepted.Group = request.Group
	metrics.GroupRequestsTotal.WithLabelValues("accepted").Inc()
	return accepted, nil
}

// Destroy deletes the request. The master uses it to reject; the policy
// does not let the requester withdraw.
func (u *GroupRequestUsecase) Destroy(ctx context.Context, groupID, requestID, actorID int64) error {
	request, err := u.requests.GetByID(ctx, requestID, groupID)
	if err != nil {
		return fmt.Errorf("get request: %w", err)
	}
	if err := policy.Authorize(policy.ResourceRequest, policy.ActionDestroy, actorID, policy.Ref{OwnerID: request.Group.Master}); err != nil {
		return err
	}

	if err := u.requests.Delete(ctx, request.ID); err != nil {
		return fmt.Errorf("delete request: %w", err)
	}
	metrics.GroupRequestsTotal.WithLabelValues("destroyed").Inc()
	return nil
}
