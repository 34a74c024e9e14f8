package usecase

import (
	"context"
	"fmt"

	"github.com/tabletophq/groupfinder/internal/domain"
	"github.com/tabletophq/groupfinder/internal/policy"
	"github.com/tabletophq/groupfinder/internal/repository"
)

type GroupUsecase struct {
	groups repository.GroupRepository
}

func NewGroupUsecase(groups repository.GroupRepository) *GroupUsecase {
	return &GroupUsecase{groups: groups}
}

type GroupPayload struct {
	Name        string
	Description string
	Schedule    string
	Location    string
	Chronic     string
	Master      int64
}

func (u *GroupUsecase) CreateGroup(ctx context.Context, payload GroupPayload) (*domain.Group, error) {
	g, err := u.groups.Create(ctx, repository.CreateGroupInput{
		Name:        payload.Name,
		Description: payload.Description,
		Schedule:    payload.Schedule,
		Location:    payload.Location,
		Chronic:     payload.Chronic,
		Master:      payload.Master,
	})
	if err != nil {
		return nil, fmt.Errorf("create group: %w", err)
	}
	return g, nil
}

func (u *GroupUsecase) GetGroup(ctx context.Context, id int64) (*domain.Group, error) {
	g, err := u.groups.GetByID(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("get group: %w", err)
	}
	return g, nil
}

type ListGroupsInput struct {
	MemberID *int64
	Text     string
	Page     int
	Limit    int
}

type ListGroupsResult struct {
	Groups []*domain.Group
	Total  int
	Page   int
	Limit  int
}

func (u *GroupUsecase) ListGroups(ctx context.Context, input ListGroupsInput) (ListGroupsResult, error) {
	page := input.Page
	if page <= 0 {
		page = 1
	}
	limit := input.Limit
	if limit <= 0 {
		limit = 20
	}
	if limit > 100 {
		limit = 100
	}

	groups, total, err := u.groups.List(ctx, repository.ListGroupsInput{
		MemberID: input.MemberID,
		Text:     input.Text,
		Page:     page,
		Limit:    limit,
	})
	if err != nil {
		return ListGroupsResult{}, fmt.Errorf("list groups: %w", err)
	}
	return ListGroupsResult{Groups: groups, Total: total, Page: page, Limit: limit}, nil
}

// UpdateGroup applies the payload except for master, which is force-reset
// to the stored value. Ownership transfer is unsupported: a caller that
// sends a different master gets a silent no-op on that field.
func (u *GroupUsecase) UpdateGroup(ctx context.Context, id, actorID int64, payload GroupPayload) (*domain.Group, error) {
	g, err := u.groups.GetByID(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("get group: %w", err)
	}
	if err := policy.Authorize(policy.ResourceGroup, policy.ActionUpdate, actorID, policy.Ref{OwnerID: g.Master}); err != nil {
		return nil, err
	}

	updated, err := u.groups.Update(ctx, id, repository.UpdateGroupInput{
		Name:        payload.Name,
		Description: payload.Description,
		Schedule:    payload.Schedule,
		Location:    payload.Location,
		Chronic:     payload.Chronic,
		Master:      g.Master,
	})
	if err != nil {
		return nil, fmt.Errorf("update group: %w", err)
	}
	return updated, nil
}

// RemovePlayer lets the master remove anyone and a player remove
// themself; the master can never be removed.
func (u *GroupUsecase) RemovePlayer(ctx context.Context, groupID, playerID, actorID int64) error {
	g, err := u.groups.GetByID(ctx, groupID)
	if err != nil {
		return fmt.Errorf("get group: %w", err)
	}

	// The policy is only consulted when the actor is not the master.
	if actorID != g.Master {
		if err := policy.Authorize(policy.ResourceGroup, policy.ActionRemovePlayer, actorID, policy.Ref{OwnerID: playerID}); err != nil {
			return err
		}
	}
	if playerID == g.Master {
		return domain.ErrCannotRemoveMaster
	}

	if err := u.groups.RemovePlayer(ctx, groupID, playerID); err != nil {
		return fmt.Errorf("remove player: %w", err)
	}
	return nil
}

func (u *GroupUsecase) DeleteGroup(ctx context.Context, id, actorID int64) error {
	g, err := u.groups.GetByID(ctx, id)
	if err != nil {
		return fmt.Errorf("get group: %w", err)
	}
	if err := policy.Authorize(policy.ResourceGroup, policy.ActionDestroy, actorID, policy.Ref{OwnerID: g.Master}); err != nil {
		return err
	}

	if err := u.groups.Delete(ctx, id); err != nil {
		return fmt.Errorf("delete group: %w", err)
	}
	return nil
}
