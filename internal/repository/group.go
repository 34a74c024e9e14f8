package repository

import (
	"context"

	"github.com/tabletophq/groupfinder/internal/domain"
)

type CreateGroupInput struct {
	Name        string
	Description string
	Schedule    string
	Location    string
	Chronic     string
	Master      int64
}

type UpdateGroupInput struct {
	Name        string
	Description string
	Schedule    string
	Location    string
	Chronic     string
	Master      int64 // always the stored master; ownership transfer is unsupported
}

type ListGroupsInput struct {
	MemberID *int64 // only groups this user belongs to
	Text     string // substring match over name and description
	Page     int
	Limit    int
}

type GroupRepository interface {
	// Create inserts the group and attaches the master as its first
	// player in one transaction.
	Create(ctx context.Context, input CreateGroupInput) (*domain.Group, error)
	GetByID(ctx context.Context, id int64) (*domain.Group, error)
	List(ctx context.Context, input ListGroupsInput) ([]*domain.Group, int, error)
	Update(ctx context.Context, id int64, input UpdateGroupInput) (*domain.Group, error)
	Delete(ctx context.Context, id int64) error
	IsMember(ctx context.Context, groupID, userID int64) (bool, error)
	RemovePlayer(ctx context.Context, groupID, playerID int64) error
}
