package postapp

import (
	"context"
	"errors"
	"fmt"
	"strings"
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
	ErrNotFound = errors.New("post not found")
	// ErrDomainUserNotFound means the signed-in account has no user with the same username.
	ErrDomainUserNotFound = errors.New("no user matches the signed-in account")
	ErrEmptyTitle         = errors.New("post title is empty")
)

type PostService struct {
	PostRepository postPort.PostRepository
	UserRepository userPort.UserRepository
	now            func() time.Time
}

func NewPostService(posts postPort.PostRepository, users userPort.UserRepository) *PostService {
	return &PostService{
		PostRepository: posts,
		UserRepository: users,
		now:            time.Now,
	}
}

// author resolves the domain user behind an account username.
func (s *PostService) author(ctx context.Context, username string) (*userEntity.User, error) {
	u, err := s.UserRepository.FindByUsername(ctx, username)
	if errors.Is(err, userPort.ErrNotFound) {
		return nil, ErrDomainUserNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("find author: %w", err)
	}
	return u, nil
}

// CreatePost stores an unpublished post written by the user named authorUsername.
func (s *PostService) CreatePost(ctx context.Context, title, content, authorUsername string) (*postEntity.Post, error) {
	return s.create(ctx, title, content, authorUsername, false)
}

// CreatePublishedPost stores the post already published, in a single insert.
func (s *PostService) CreatePublishedPost(ctx context.Context, title, content, authorUsername string) (*postEntity.Post, error) {
	return s.create(ctx, title, content, authorUsername, true)
}

func (s *PostService) create(ctx context.Context, title, content, authorUsername string, publish bool) (*postEntity.Post, error) {
	title = strings.TrimSpace(title)
	if title == "" {
		return nil, ErrEmptyTitle
	}
	author, err := s.author(ctx, authorUsername)
	if err != nil {
		return nil, err
	}

	p := &postEntity.Post{Title: title, Content: content, AuthorID: author.ID}
	if publish {
		p.Publish(s.now())
	}
	created, err := s.PostRepository.Create(ctx, p)
	if err != nil {
		return nil, fmt.Errorf("create post: %w", err)
	}
	created.Author = *author
	config.Logger.Info("Post created", zap.Uint("id", created.ID), zap.String("author", author.Username),
		zap.Bool("published", publish))
	return created, nil
}

func (s *PostService) GetPost(ctx context.Context, id uint) (*postEntity.Post, error) {
	p, err := s.PostRepository.FindByID(ctx, id)
	if errors.Is(err, postPort.ErrNotFound) {
		return nil, ErrNotFound
	}
	return p, err
}

func (s *PostService) ListPublished(ctx context.Context) ([]*postEntity.Post, error) {
	return s.PostRepository.ListPublished(ctx)
}

// PublishPost publishes now, whatever the current state.
func (s *PostService) PublishPost(ctx context.Context, id uint) (*postEntity.Post, error) {
	p, err := s.GetPost(ctx, id)
	if err != nil {
		return nil, err
	}
	p.Publish(s.now())
	if err := s.PostRepository.Save(ctx, p); err != nil {
		return nil, fmt.Errorf("publish post: %w", err)
	}
	return p, nil
}

func (s *PostService) UnpublishPost(ctx context.Context, id uint) (*postEntity.Post, error) {
	p, err := s.GetPost(ctx, id)
	if err != nil {
		return nil, err
	}
	p.Unpublish()
	if err := s.PostRepository.Save(ctx, p); err != nil {
		return nil, fmt.Errorf("unpublish post: %w", err)
	}
	return p, nil
}

// UpdatePost rewrites title and content; the publication state is left alone.
func (s *PostService) UpdatePost(ctx context.Context, id uint, title, content string) (*postEntity.Post, error) {
	title = strings.TrimSpace(title)
	if title == "" {
		return nil, ErrEmptyTitle
	}
	p, err := s.GetPost(ctx, id)
	if err != nil {
		return nil, err
	}
	p.Title = title
	p.Content = content
	if err := s.PostRepository.Save(ctx, p); err != nil {
		return nil, fmt.Errorf("update post: %w", err)
	}
	return p, nil
}

func (s *PostService) DeletePost(ctx context.Context, id uint) error {
	n, err := s.PostRepository.Delete(ctx, []uint{id})
	if err != nil {
		return fmt.Errorf("delete post: %w", err)
	}
	if n == 0 {
		return ErrNotFound
	}
	return nil
}

// LikePost adds the user named username to the post's likes. Liking twice is a no-op.
func (s *PostService) LikePost(ctx context.Context, id uint, username string) (*postEntity.Post, error) {
	p, err := s.GetPost(ctx, id)
	if err != nil {
		return nil, err
	}
	u, err := s.author(ctx, username)
	if err != nil {
		return nil, err
	}
	if err := s.PostRepository.AddLike(ctx, p.ID, u.ID); err != nil {
		return nil, fmt.Errorf("like post: %w", err)
	}
	return p, nil
}

// UnlikePost removes the like if there is one.
func (s *PostService) UnlikePost(ctx context.Context, id uint, username string) (*postEntity.Post, error) {
	p, err := s.GetPost(ctx, id)
	if err != nil {
		return nil, err
	}
	u, err := s.author(ctx, username)
	if err != nil {
		return nil, err
	}
	if err := s.PostRepository.RemoveLike(ctx, p.ID, u.ID); err != nil {
		return nil, fmt.Errorf("unlike post: %w", err)
	}
	return p, nil
}

func (s *PostService) Likers(ctx context.Context, id uint) ([]*userEntity.User, error) {
	return s.PostRepository.Likers(ctx, id)
}

// PublishPosts bulk-publishes with one shared timestamp.
func (s *PostService) PublishPosts(ctx context.Context, ids []uint) (int64, error) {
	now := s.now()
	return s.PostRepository.SetPublished(ctx, ids, true, &now)
}

func (s *PostService) UnpublishPosts(ctx context.Context, ids []uint) (int64, error) {
	return s.PostRepository.SetPublished(ctx, ids, false, nil)
}

func (s *PostService) DeletePosts(ctx context.Context, ids []uint) (int64, error) {
	return s.PostRepository.Delete(ctx, ids)
}

func (s *PostService) AdminList(ctx context.Context, q admin.Query) ([]*postEntity.Post, int64, error) {
	return s.PostRepository.AdminList(ctx, q)
}

func (s *PostService) AdminGet(ctx context.Context, id uint) (*postEntity.Post, error) {
	p, err := s.PostRepository.AdminGet(ctx, id)
	if errors.Is(err, postPort.ErrNotFound) {
		return nil, ErrNotFound
	}
	return p, err
}
