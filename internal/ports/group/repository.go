package group

import (
	"context"
	"errors"

	"webcourse/internal/admin"
	"webcourse/internal/core/group"
	"webcourse/internal/core/user"
)

var (
	ErrNotFound  = errors.New("group not found")
	ErrDuplicate = errors.New("group name already exists")
)

// GroupRepository is the store port for groups and memberships
type GroupRepository interface {
	Create(ctx context.Context, group *group.Group) (*group.Group, error)
	FindByID(ctx context.Context, id uint) (*group.Group, error)
	FindByName(ctx context.Context, name string) (*group.Group, error)
	List(ctx context.Context) ([]*group.Group, error)
	Delete(ctx context.Context, ids []uint) (int64, error)

	AddMember(ctx context.Context, groupID, userID uint) error
	RemoveMember(ctx context.Context, groupID, userID uint) error
	IsMember(ctx context.Context, groupID, userID uint) (bool, error)
	Members(ctx context.Context, groupID uint) ([]*user.User, error)

	AdminList(ctx context.Context, q admin.Query) ([]*group.Group, int64, error)
	AdminGet(ctx context.Context, id uint) (*group.Group, error)
}
