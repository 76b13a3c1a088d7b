package database

import (
	"context"
	"time"

	"gorm.io/gorm"

	"webcourse/internal/admin"
	"webcourse/internal/core/group"
	"webcourse/internal/core/post"
	"webcourse/internal/core/user"
	userPort "webcourse/internal/ports/user"
)

const userPostCount = "users.*, (SELECT COUNT(*) FROM posts WHERE posts.author_id = users.id) AS post_count"

// UserRepositoryDatabase implements UserRepository on gorm
type UserRepositoryDatabase struct {
	db *gorm.DB
}

// NewUserRepositoryDatabase builds a UserRepositoryDatabase
func NewUserRepositoryDatabase(db *gorm.DB) *UserRepositoryDatabase {
	return &UserRepositoryDatabase{db: db}
}

func (repo *UserRepositoryDatabase) Create(ctx context.Context, u *user.User) (*user.User, error) {
	if err := repo.db.WithContext(ctx).Create(u).Error; err != nil {
		return nil, duplicate(err, userPort.ErrDuplicate)
	}
	return u, nil
}

func (repo *UserRepositoryDatabase) FindByID(ctx context.Context, id uint) (*user.User, error) {
	var u user.User
	if err := repo.db.WithContext(ctx).First(&u, id).Error; err != nil {
		return nil, notFound(err, userPort.ErrNotFound)
	}
	return &u, nil
}

func (repo *UserRepositoryDatabase) FindByUsername(ctx context.Context, username string) (*user.User, error) {
	var u user.User
	if err := repo.db.WithContext(ctx).Where("username = ?", username).First(&u).Error; err != nil {
		return nil, notFound(err, userPort.ErrNotFound)
	}
	return &u, nil
}

func (repo *UserRepositoryDatabase) FindByUsernameOrEmail(ctx context.Context, username, email string) (*user.User, error) {
	var u user.User
	if err := repo.db.WithContext(ctx).Where("username = ? OR email = ?", username, email).First(&u).Error; err != nil {
		return nil, notFound(err, userPort.ErrNotFound)
	}
	return &u, nil
}

func (repo *UserRepositoryDatabase) ListActive(ctx context.Context) ([]*user.User, error) {
	var users []*user.User
	if err := repo.db.WithContext(ctx).
		Where("is_active = ?", true).
		Order("created_at DESC").
		Find(&users).Error; err != nil {
		return nil, err
	}
	return users, nil
}

func (repo *UserRepositoryDatabase) ListCreatedBetween(ctx context.Context, from, to time.Time) ([]*user.User, error) {
	var users []*user.User
	if err := repo.db.WithContext(ctx).
		Where("created_at >= ? AND created_at < ?", from, to).
		Order("created_at DESC").
		Find(&users).Error; err != nil {
		return nil, err
	}
	return users, nil
}

func (repo *UserRepositoryDatabase) Search(ctx context.Context, term string) ([]*user.User, error) {
	like := likePattern(term)
	var users []*user.User
	if err := repo.db.WithContext(ctx).
		Where("username LIKE ? ESCAPE '!' OR email LIKE ? ESCAPE '!' OR "+
			"first_name LIKE ? ESCAPE '!' OR last_name LIKE ? ESCAPE '!'", like, like, like, like).
		Order("created_at DESC").
		Find(&users).Error; err != nil {
		return nil, err
	}
	return users, nil
}

func (repo *UserRepositoryDatabase) SetActive(ctx context.Context, ids []uint, active bool) (int64, error) {
	res := repo.db.WithContext(ctx).Model(&user.User{}).
		Where("id IN ?", ids).
		Updates(map[string]any{"is_active": active})
	return res.RowsAffected, res.Error
}

// Delete removes users together with their posts, likes and memberships in one transaction.
func (repo *UserRepositoryDatabase) Delete(ctx context.Context, ids []uint) (int64, error) {
	var deleted int64
	err := repo.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		owned := tx.Model(&post.Post{}).Select("id").Where("author_id IN ?", ids)
		if err := tx.Where("post_id IN (?)", owned).Delete(&post.Like{}).Error; err != nil {
			return err
		}
		if err := tx.Where("user_id IN ?", ids).Delete(&post.Like{}).Error; err != nil {
			return err
		}
		if err := tx.Where("user_id IN ?", ids).Delete(&group.Membership{}).Error; err != nil {
			return err
		}
		if err := tx.Where("author_id IN ?", ids).Delete(&post.Post{}).Error; err != nil {
			return err
		}
		res := tx.Where("id IN ?", ids).Delete(&user.User{})
		deleted = res.RowsAffected
		return res.Error
	})
	return deleted, err
}

func (repo *UserRepositoryDatabase) AdminList(ctx context.Context, q admin.Query) ([]*user.User, int64, error) {
	filtered := func(db *gorm.DB) *gorm.DB {
		if q.Search != "" {
			like := likePattern(q.Search)
			db = db.Where("users.username LIKE ? ESCAPE '!' OR users.email LIKE ? ESCAPE '!' OR "+
				"users.first_name LIKE ? ESCAPE '!' OR users.last_name LIKE ? ESCAPE '!'",
				like, like, like, like)
		}
		switch q.Filters["is_active"] {
		case "1":
			db = db.Where("users.is_active = ?", true)
		case "0":
			db = db.Where("users.is_active = ?", false)
		}
		if q.Year > 0 {
			from, to := yearBounds(q.Year)
			db = db.Where("users.created_at >= ? AND users.created_at < ?", from, to)
		}
		return db
	}

	var total int64
	if err := repo.db.WithContext(ctx).Model(&user.User{}).Scopes(filtered).Count(&total).Error; err != nil {
		return nil, 0, err
	}

	var users []*user.User
	if err := repo.db.WithContext(ctx).Model(&user.User{}).Scopes(filtered).
		Select(userPostCount).
		Order("users.created_at DESC").
		Limit(q.PageSize).
		Offset(q.Offset()).
		Find(&users).Error; err != nil {
		return nil, 0, err
	}
	return users, total, nil
}

// AdminGet loads one user with its post count.
func (repo *UserRepositoryDatabase) AdminGet(ctx context.Context, id uint) (*user.User, error) {
	var u user.User
	if err := repo.db.WithContext(ctx).Select(userPostCount).First(&u, id).Error; err != nil {
		return nil, notFound(err, userPort.ErrNotFound)
	}
	return &u, nil
}
