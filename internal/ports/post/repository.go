package post

import (
	"context"
	"errors"
	"time"

	"webcourse/internal/admin"
	"webcourse/internal/core/post"
	"webcourse/internal/core/user"
)

var ErrNotFound = errors.New("post not found")

// PostRepository is the store port for posts and their likes
type PostRepository interface {
	Create(ctx context.Context, post *post.Post) (*post.Post, error)
	Save(ctx context.Context, post *post.Post) error
	FindByID(ctx context.Context, id uint) (*post.Post, error)
	ListPublished(ctx context.Context) ([]*post.Post, error)
	ListByAuthor(ctx context.Context, authorID uint, since time.Time) ([]*post.Post, error)
	Delete(ctx context.Context, ids []uint) (int64, error)
	SetPublished(ctx context.Context, ids []uint, published bool, at *time.Time) (int64, error)

	AddLike(ctx context.Context, postID, userID uint) error
	RemoveLike(ctx context.Context, postID, userID uint) error
	Likers(ctx context.Context, postID uint) ([]*user.User, error)

	AdminList(ctx context.Context, q admin.Query) ([]*post.Post, int64, error)
	AdminGet(ctx context.Context, id uint) (*post.Post, error)
}
