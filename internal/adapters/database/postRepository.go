package database

import (
	"context"
	"time"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"webcourse/internal/admin"
	"webcourse/internal/core/post"
	"webcourse/internal/core/user"
	postPort "webcourse/internal/ports/post"
)

const postLikesCount = "posts.*, (SELECT COUNT(*) FROM post_likes WHERE post_likes.post_id = posts.id) AS likes_count"

// PostRepositoryDatabase implements PostRepository on gorm
type PostRepositoryDatabase struct {
	db *gorm.DB
}

// NewPostRepositoryDatabase builds a PostRepositoryDatabase
func NewPostRepositoryDatabase(db *gorm.DB) *PostRepositoryDatabase {
	return &PostRepositoryDatabase{db: db}
}

func (repo *PostRepositoryDatabase) Create(ctx context.Context, p *post.Post) (*post.Post, error) {
	if err := repo.db.WithContext(ctx).Omit(clause.Associations).Create(p).Error; err != nil {
		return nil, err
	}
	return p, nil
}

// Save writes the editable columns, zero values included, so an unpublish really clears published_at.
func (repo *PostRepositoryDatabase) Save(ctx context.Context, p *post.Post) error {
	return repo.db.WithContext(ctx).Model(p).
		Select("title", "content", "is_published", "published_at", "updated_at").
		Omit(clause.Associations).
		Updates(p).Error
}

func (repo *PostRepositoryDatabase) FindByID(ctx context.Context, id uint) (*post.Post, error) {
	var p post.Post
	if err := repo.db.WithContext(ctx).
		Select(postLikesCount).
		Preload("Author").
		First(&p, id).Error; err != nil {
		return nil, notFound(err, postPort.ErrNotFound)
	}
	return &p, nil
}

func (repo *PostRepositoryDatabase) ListPublished(ctx context.Context) ([]*post.Post, error) {
	var posts []*post.Post
	if err := repo.db.WithContext(ctx).
		Select(postLikesCount).
		Preload("Author").
		Where("posts.is_published = ?", true).
		Order("posts.created_at DESC").
		Find(&posts).Error; err != nil {
		return nil, err
	}
	return posts, nil
}

// ListByAuthor returns the author's posts created at or after since; a zero since means all of them.
func (repo *PostRepositoryDatabase) ListByAuthor(ctx context.Context, authorID uint, since time.Time) ([]*post.Post, error) {
	q := repo.db.WithContext(ctx).
		Select(postLikesCount).
		Where("posts.author_id = ?", authorID)
	if !since.IsZero() {
		q = q.Where("posts.created_at >= ?", since)
	}
	var posts []*post.Post
	if err := q.Order("posts.created_at DESC").Find(&posts).Error; err != nil {
		return nil, err
	}
	return posts, nil
}

func (repo *PostRepositoryDatabase) Delete(ctx context.Context, ids []uint) (int64, error) {
	var deleted int64
	err := repo.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Where("post_id IN ?", ids).Delete(&post.Like{}).Error; err != nil {
			return err
		}
		res := tx.Where("id IN ?", ids).Delete(&post.Post{})
		deleted = res.RowsAffected
		return res.Error
	})
	return deleted, err
}

// SetPublished flips the flag and its timestamp for many posts in a single UPDATE.
func (repo *PostRepositoryDatabase) SetPublished(ctx context.Context, ids []uint, published bool, at *time.Time) (int64, error) {
	res := repo.db.WithContext(ctx).Model(&post.Post{}).
		Where("id IN ?", ids).
		Updates(map[string]any{"is_published": published, "published_at": at})
	return res.RowsAffected, res.Error
}

func (repo *PostRepositoryDatabase) AddLike(ctx context.Context, postID, userID uint) error {
	return repo.db.WithContext(ctx).
		Clauses(clause.OnConflict{DoNothing: true}).
		Omit(clause.Associations).
		Create(&post.Like{PostID: postID, UserID: userID}).Error
}

func (repo *PostRepositoryDatabase) RemoveLike(ctx context.Context, postID, userID uint) error {
	return repo.db.WithContext(ctx).
		Where("post_id = ? AND user_id = ?", postID, userID).
		Delete(&post.Like{}).Error
}

func (repo *PostRepositoryDatabase) Likers(ctx context.Context, postID uint) ([]*user.User, error) {
	var users []*user.User
	if err := repo.db.WithContext(ctx).
		Joins("JOIN post_likes ON post_likes.user_id = users.id").
		Where("post_likes.post_id = ?", postID).
		Order("users.username").
		Find(&users).Error; err != nil {
		return nil, err
	}
	return users, nil
}

func (repo *PostRepositoryDatabase) AdminList(ctx context.Context, q admin.Query) ([]*post.Post, int64, error) {
	filtered := func(db *gorm.DB) *gorm.DB {
		if q.Search != "" {
			like := likePattern(q.Search)
			authors := repo.db.Model(&user.User{}).Select("id").Where("username LIKE ? ESCAPE '!'", like)
			db = db.Where("posts.title LIKE ? ESCAPE '!' OR posts.content LIKE ? ESCAPE '!' OR posts.author_id IN (?)",
				like, like, authors)
		}
		switch q.Filters["is_published"] {
		case "1":
			db = db.Where("posts.is_published = ?", true)
		case "0":
			db = db.Where("posts.is_published = ?", false)
		}
		if author := q.Filters["author"]; author != "" {
			db = db.Where("posts.author_id = ?", author)
		}
		if q.Year > 0 {
			from, to := yearBounds(q.Year)
			db = db.Where("posts.created_at >= ? AND posts.created_at < ?", from, to)
		}
		return db
	}

	var total int64
	if err := repo.db.WithContext(ctx).Model(&post.Post{}).Scopes(filtered).Count(&total).Error; err != nil {
		return nil, 0, err
	}

	var posts []*post.Post
	if err := repo.db.WithContext(ctx).Model(&post.Post{}).Scopes(filtered).
		Select(postLikesCount).
		Preload("Author").
		Order("posts.created_at DESC").
		Limit(q.PageSize).
		Offset(q.Offset()).
		Find(&posts).Error; err != nil {
		return nil, 0, err
	}
	return posts, total, nil
}

// AdminGet loads one post for the admin change view.
func (repo *PostRepositoryDatabase) AdminGet(ctx context.Context, id uint) (*post.Post, error) {
	return repo.FindByID(ctx, id)
}
