package userapp

import (
	"context"
	"errors"
	"fmt"
	"time"

	"go.uber.org/zap"

	"webcourse/internal/admin"
	"webcourse/internal/config"
	postEntity "webcourse/internal/core/post"
	userEntity "webcourse/internal/core/user"
	postPort "webcourse/internal/ports/post"
	userPort "webcourse/internal/ports/user"
)

var (
	ErrNotFound             = errors.New("user not found")
	ErrUsernameOrEmailTaken = errors.New("username or email already taken")
)

// RecentDays is the window RecentPosts uses when the caller passes zero.
const RecentDays = 7

// UserService is the use-case layer for domain users
type UserService struct {
	UserRepository userPort.UserRepository
	PostRepository postPort.PostRepository
	now            func() time.Time
}

func NewUserService(users userPort.UserRepository, posts postPort.PostRepository) *UserService {
	return &UserService{
		UserRepository: users,
		PostRepository: posts,
		now:            time.Now,
	}
}

// CreateUserInput is the validated create form.
type CreateUserInput struct {
	Username  string
	Email     string
	FirstName string
	LastName  string
	Bio       string
}

// CreateUser registers an active user. Username and email must both be unused.
func (s *UserService) CreateUser(ctx context.Context, in CreateUserInput) (*userEntity.User, error) {
	u := userEntity.New(in.Username, in.Email, in.FirstName, in.LastName, in.Bio)

	existing, err := s.UserRepository.FindByUsernameOrEmail(ctx, u.Username, u.Email)
	if err == nil && existing != nil {
		return nil, ErrUsernameOrEmailTaken
	}
	if err != nil && !errors.Is(err, userPort.ErrNotFound) {
		return nil, fmt.Errorf("check username: %w", err)
	}

	// the unique indexes still decide when two creates race past the check above
	created, err := s.UserRepository.Create(ctx, u)
	if errors.Is(err, userPort.ErrDuplicate) {
		return nil, ErrUsernameOrEmailTaken
	}
	if err != nil {
		return nil, fmt.Errorf("create user: %w", err)
	}
	config.Logger.Info("User created", zap.Uint("id", created.ID), zap.String("username", created.Username))
	return created, nil
}

func (s *UserService) GetUser(ctx context.Context, id uint) (*userEntity.User, error) {
	u, err := s.UserRepository.FindByID(ctx, id)
	return u, mapErr(err)
}

func (s *UserService) GetUserByUsername(ctx context.Context, username string) (*userEntity.User, error) {
	u, err := s.UserRepository.FindByUsername(ctx, username)
	return u, mapErr(err)
}

// GetArchivedUser finds the user only when id and username name the same row.
func (s *UserService) GetArchivedUser(ctx context.Context, username string, id uint) (*userEntity.User, error) {
	u, err := s.GetUser(ctx, id)
	if err != nil {
		return nil, err
	}
	if u.Username != username {
		return nil, ErrNotFound
	}
	return u, nil
}

func (s *UserService) ListActiveUsers(ctx context.Context) ([]*userEntity.User, error) {
	return s.UserRepository.ListActive(ctx)
}

// ListUsersByYear returns everyone, active or not, created during year in local time.
func (s *UserService) ListUsersByYear(ctx context.Context, year int) ([]*userEntity.User, error) {
	from := time.Date(year, time.January, 1, 0, 0, 0, 0, time.Local)
	return s.UserRepository.ListCreatedBetween(ctx, from, from.AddDate(1, 0, 0))
}

func (s *UserService) SearchUsers(ctx context.Context, term string) ([]*userEntity.User, error) {
	return s.UserRepository.Search(ctx, term)
}

// RecentPosts lists the user's posts from the last days days.
func (s *UserService) RecentPosts(ctx context.Context, u *userEntity.User, days int) ([]*postEntity.Post, error) {
	if days <= 0 {
		days = RecentDays
	}
	since := s.now().AddDate(0, 0, -days)
	return s.PostRepository.ListByAuthor(ctx, u.ID, since)
}

func (s *UserService) ActivateUsers(ctx context.Context, ids []uint) (int64, error) {
	return s.UserRepository.SetActive(ctx, ids, true)
}

func (s *UserService) DeactivateUsers(ctx context.Context, ids []uint) (int64, error) {
	return s.UserRepository.SetActive(ctx, ids, false)
}

// DeleteUsers hard-deletes users along with everything they own.
func (s *UserService) DeleteUsers(ctx context.Context, ids []uint) (int64, error) {
	n, err := s.UserRepository.Delete(ctx, ids)
	if err != nil {
		return 0, fmt.Errorf("delete users: %w", err)
	}
	config.Logger.Info("Users deleted", zap.Int64("count", n))
	return n, nil
}

func (s *UserService) AdminList(ctx context.Context, q admin.Query) ([]*userEntity.User, int64, error) {
	return s.UserRepository.AdminList(ctx, q)
}

func (s *UserService) AdminGet(ctx context.Context, id uint) (*userEntity.User, error) {
	u, err := s.UserRepository.AdminGet(ctx, id)
	return u, mapErr(err)
}

func mapErr(err error) error {
	if errors.Is(err, userPort.ErrNotFound) {
		return ErrNotFound
	}
	return err
}
