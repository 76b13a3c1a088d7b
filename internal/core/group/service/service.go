package groupapp

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"go.uber.org/zap"

	"webcourse/internal/admin"
	"webcourse/internal/config"
	groupEntity "webcourse/internal/core/group"
	userEntity "webcourse/internal/core/user"
	groupPort "webcourse/internal/ports/group"
	userPort "webcourse/internal/ports/user"
)

var (
	ErrNotFound      = errors.New("group not found")
	ErrNameTaken     = errors.New("group name already taken")
	ErrEmptyName     = errors.New("group name is empty")
	ErrUserNotFound  = errors.New("no user matches the signed-in account")
	ErrAlreadyMember = errors.New("already a member")
	ErrNotMember     = errors.New("not a member")
)

type GroupService struct {
	GroupRepository groupPort.GroupRepository
	UserRepository  userPort.UserRepository
}

func NewGroupService(groups groupPort.GroupRepository, users userPort.UserRepository) *GroupService {
	return &GroupService{
		GroupRepository: groups,
		UserRepository:  users,
	}
}

func (s *GroupService) CreateGroup(ctx context.Context, name, description string) (*groupEntity.Group, error) {
	name = strings.TrimSpace(name)
	if name == "" {
		return nil, ErrEmptyName
	}
	if _, err := s.GroupRepository.FindByName(ctx, name); err == nil {
		return nil, ErrNameTaken
	} else if !errors.Is(err, groupPort.ErrNotFound) {
		return nil, fmt.Errorf("check group name: %w", err)
	}

	g, err := s.GroupRepository.Create(ctx, &groupEntity.Group{Name: name, Description: description})
	if errors.Is(err, groupPort.ErrDuplicate) {
		return nil, ErrNameTaken
	}
	if err != nil {
		return nil, fmt.Errorf("create group: %w", err)
	}
	config.Logger.Info("Group created", zap.Uint("id", g.ID), zap.String("name", g.Name))
	return g, nil
}

func (s *GroupService) GetGroup(ctx context.Context, id uint) (*groupEntity.Group, error) {
	g, err := s.GroupRepository.FindByID(ctx, id)
	if errors.Is(err, groupPort.ErrNotFound) {
		return nil, ErrNotFound
	}
	return g, err
}

func (s *GroupService) ListGroups(ctx context.Context) ([]*groupEntity.Group, error) {
	return s.GroupRepository.List(ctx)
}

// Members lists the group's users ordered by username.
func (s *GroupService) Members(ctx context.Context, id uint) ([]*userEntity.User, error) {
	if _, err := s.GetGroup(ctx, id); err != nil {
		return nil, err
	}
	return s.GroupRepository.Members(ctx, id)
}

func (s *GroupService) member(ctx context.Context, id uint, username string) (*groupEntity.Group, *userEntity.User, bool, error) {
	g, err := s.GetGroup(ctx, id)
	if err != nil {
		return nil, nil, false, err
	}
	u, err := s.UserRepository.FindByUsername(ctx, username)
	if errors.Is(err, userPort.ErrNotFound) {
		return nil, nil, false, ErrUserNotFound
	}
	if err != nil {
		return nil, nil, false, err
	}
	in, err := s.GroupRepository.IsMember(ctx, g.ID, u.ID)
	if err != nil {
		return nil, nil, false, err
	}
	return g, u, in, nil
}

// Join adds the user named username to the group.
func (s *GroupService) Join(ctx context.Context, id uint, username string) (*groupEntity.Group, error) {
	g, u, in, err := s.member(ctx, id, username)
	if err != nil {
		return nil, err
	}
	if in {
		return g, ErrAlreadyMember
	}
	if err := s.GroupRepository.AddMember(ctx, g.ID, u.ID); err != nil {
		return nil, fmt.Errorf("join group: %w", err)
	}
	return g, nil
}

func (s *GroupService) Leave(ctx context.Context, id uint, username string) (*groupEntity.Group, error) {
	g, u, in, err := s.member(ctx, id, username)
	if err != nil {
		return nil, err
	}
	if !in {
		return g, ErrNotMember
	}
	if err := s.GroupRepository.RemoveMember(ctx, g.ID, u.ID); err != nil {
		return nil, fmt.Errorf("leave group: %w", err)
	}
	return g, nil
}

func (s *GroupService) DeleteGroups(ctx context.Context, ids []uint) (int64, error) {
	return s.GroupRepository.Delete(ctx, ids)
}

func (s *GroupService) AdminList(ctx context.Context, q admin.Query) ([]*groupEntity.Group, int64, error) {
	return s.GroupRepository.AdminList(ctx, q)
}

func (s *GroupService) AdminGet(ctx context.Context, id uint) (*groupEntity.Group, error) {
	g, err := s.GroupRepository.AdminGet(ctx, id)
	if errors.Is(err, groupPort.ErrNotFound) {
		return nil, ErrNotFound
	}
	return g, err
}
