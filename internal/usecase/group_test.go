package usecase_test

import (
	"context"
	"errors"
	"testing"

	"github.com/tabletophq/groupfinder/internal/domain"
	"github.com/tabletophq/groupfinder/internal/repository"
	"github.com/tabletophq/groupfinder/internal/usecase"
)

func TestUpdateGroup_MasterImmutable(t *testing.T) {
	var got repository.UpdateGroupInput
	groups := &fakeGroupRepo{
		getByID: func(_ context.Context, _ int64) (*domain.Group, error) { return testGroup(), nil },
		update: func(_ context.Context, _ int64, input repository.UpdateGroupInput) (*domain.Group, error) {
			got = input
			return testGroup(), nil
		},
	}
	uc := usecase.NewGroupUsecase(groups)

	// The payload claims a new master; the stored one must win.
	_, err := uc.UpdateGroup(context.Background(), groupID, masterID, usecase.GroupPayload{
		Name:   "D&D",
		Master: requesterID,
	})
	if err != nil {
		t.Fatalf("UpdateGroup: %v", err)
	}
	if got.Master != masterID {
		t.Errorf("written master = %d, want the stored master %d", got.Master, masterID)
	}
}

func TestUpdateGroup_NonMasterForbidden(t *testing.T) {
	groups := &fakeGroupRepo{
		getByID: func(_ context.Context, _ int64) (*domain.Group, error) { return testGroup(), nil },
	}
	uc := usecase.NewGroupUsecase(groups)

	_, err := uc.UpdateGroup(context.Background(), groupID, requesterID, usecase.GroupPayload{Name: "D&D"})
	if !errors.Is(err, domain.ErrForbidden) {
		t.Fatalf("err = %v, want ErrForbidden", err)
	}
}

func TestRemovePlayer(t *testing.T) {
	const otherPlayerID = int64(3)

	cases := []struct {
		name     string
		playerID int64
		actorID  int64
		wantErr  error
	}{
		{"master removes a player", otherPlayerID, masterID, nil},
		{"player leaves", otherPlayerID, otherPlayerID, nil},
		{"player cannot remove another player", otherPlayerID, requesterID, domain.ErrForbidden},
		{"master cannot be removed by a player", masterID, requesterID, domain.ErrForbidden},
		{"master cannot remove themself", masterID, masterID, domain.ErrCannotRemoveMaster},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			var removed *int64
			groups := &fakeGroupRepo{
				getByID: func(_ context.Context, _ int64) (*domain.Group, error) { return testGroup(), nil },
				removePlayer: func(_ context.Context, _, playerID int64) error {
					removed = &playerID
					return nil
				},
			}
			uc := usecase.NewGroupUsecase(groups)

			err := uc.RemovePlayer(context.Background(), groupID, tc.playerID, tc.actorID)
			if !errors.Is(err, tc.wantErr) {
				t.Fatalf("err = %v, want %v", err, tc.wantErr)
			}
			if tc.wantErr == nil && (removed == nil || *removed != tc.playerID) {
				t.Errorf("removed = %v, want %d", removed, tc.playerID)
			}
			if tc.wantErr != nil && removed != nil {
				t.Error("no row may be deleted on a rejected removal")
			}
		})
	}
}

func TestDeleteGroup_MasterOnly(t *testing.T) {
	var deleted bool
	groups := &fakeGroupRepo{
		getByID:     func(_ context.Context, _ int64) (*domain.Group, error) { return testGroup(), nil },
		deleteGroup: func(_ context.Context, _ int64) error { deleted = true; return nil },
	}
	uc := usecase.NewGroupUsecase(groups)

	if err := uc.DeleteGroup(context.Background(), groupID, requesterID); !errors.Is(err, domain.ErrForbidden) {
		t.Fatalf("err = %v, want ErrForbidden", err)
	}
	if deleted {
		t.Fatal("delete must not run for a non-master actor")
	}
	if err := uc.DeleteGroup(context.Background(), groupID, masterID); err != nil {
		t.Fatalf("DeleteGroup: %v", err)
	}
	if !deleted {
		t.Error("delete did not run for the master")
	}
}

func TestListGroups_PaginationDefaults(t *testing.T) {
	var got repository.ListGroupsInput
	groups := &fakeGroupRepo{
		list: func(_ context.Context, input repository.ListGroupsInput) ([]*domain.Group, int, error) {
			got = input
			return []*domain.Group{testGroup()}, 1, nil
		},
	}
	uc := usecase.NewGroupUsecase(groups)

	res, err := uc.ListGroups(context.Background(), usecase.ListGroupsInput{Page: 0, Limit: 500})
	if err != nil {
		t.Fatalf("ListGroups: %v", err)
	}
	if got.Page != 1 {
		t.Errorf("page = %d, want default 1", got.Page)
	}
	if got.Limit != 100 {
		t.Errorf("limit = %d, want cap 100", got.Limit)
	}
	if res.Total != 1 || len(res.Groups) != 1 {
		t.Errorf("result = %+v", res)
	}
}
