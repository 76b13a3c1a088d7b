package database

import (
	"context"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"webcourse/internal/admin"
	"webcourse/internal/core/group"
	"webcourse/internal/core/user"
	groupPort "webcourse/internal/ports/group"
)

const groupMemberCount = "user_groups.*, (SELECT COUNT(*) FROM group_members WHERE group_members.group_id = user_groups.id) AS member_count"

// GroupRepositoryDatabase implements GroupRepository on gorm
type GroupRepositoryDatabase struct {
	db *gorm.DB
}

// NewGroupRepositoryDatabase builds a GroupRepositoryDatabase
func NewGroupRepositoryDatabase(db *gorm.DB) *GroupRepositoryDatabase {
	return &GroupRepositoryDatabase{db: db}
}

func (repo *GroupRepositoryDatabase) Create(ctx context.Context, g *group.Group) (*group.Group, error) {
	if err := repo.db.WithContext(ctx).Create(g).Error; err != nil {
		return nil, duplicate(err, groupPort.ErrDuplicate)
	}
	return g, nil
}

func (repo *GroupRepositoryDatabase) FindByID(ctx context.Context, id uint) (*group.Group, error) {
	var g group.Group
	if err := repo.db.WithContext(ctx).Select(groupMemberCount).First(&g, id).Error; err != nil {
		return nil, notFound(err, groupPort.ErrNotFound)
	}
	return &g, nil
}

func (repo *GroupRepositoryDatabase) FindByName(ctx context.Context, name string) (*group.Group, error) {
	var g group.Group
	if err := repo.db.WithContext(ctx).Where("name = ?", name).First(&g).Error; err != nil {
		return nil, notFound(err, groupPort.ErrNotFound)
	}
	return &g, nil
}

func (repo *GroupRepositoryDatabase) List(ctx context.Context) ([]*group.Group, error) {
	var groups []*group.Group
	if err := repo.db.WithContext(ctx).Select(groupMemberCount).Order("user_groups.name").Find(&groups).Error; err != nil {
		return nil, err
	}
	return groups, nil
}

func (repo *GroupRepositoryDatabase) Delete(ctx context.Context, ids []uint) (int64, error) {
	var deleted int64
	err := repo.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Where("group_id IN ?", ids).Delete(&group.Membership{}).Error; err != nil {
			return err
		}
		res := tx.Where("id IN ?", ids).Delete(&group.Group{})
		deleted = res.RowsAffected
		return res.Error
	})
	return deleted, err
}

// AddMember is a no-op when the user already belongs to the group.
func (repo *GroupRepositoryDatabase) AddMember(ctx context.Context, groupID, userID uint) error {
	return repo.db.WithContext(ctx).
		Clauses(clause.OnConflict{DoNothing: true}).
		Omit(clause.Associations).
		Create(&group.Membership{GroupID: groupID, UserID: userID}).Error
}

func (repo *GroupRepositoryDatabase) RemoveMember(ctx context.Context, groupID, userID uint) error {
	return repo.db.WithContext(ctx).
		Where("group_id = ? AND user_id = ?", groupID, userID).
		Delete(&group.Membership{}).Error
}

func (repo *GroupRepositoryDatabase) IsMember(ctx context.Context, groupID, userID uint) (bool, error) {
	var count int64
	if err := repo.db.WithContext(ctx).Model(&group.Membership{}).
		Where("group_id = ? AND user_id = ?", groupID, userID).
		Count(&count).Error; err != nil {
		return false, err
	}
	return count > 0, nil
}

func (repo *GroupRepositoryDatabase) Members(ctx context.Context, groupID uint) ([]*user.User, error) {
	var users []*user.User
	if err := repo.db.WithContext(ctx).
		Joins("JOIN group_members ON group_members.user_id = users.id").
		Where("group_members.group_id = ?", groupID).
		Order("users.username").
		Find(&users).Error; err != nil {
		return nil, err
	}
	return users, nil
}

func (repo *GroupRepositoryDatabase) AdminList(ctx context.Context, q admin.Query) ([]*group.Group, int64, error) {
	filtered := func(db *gorm.DB) *gorm.DB {
		if q.Search != "" {
			like := likePattern(q.Search)
			db = db.Where("user_groups.name LIKE ? ESCAPE '!' OR user_groups.description LIKE ? ESCAPE '!'", like, like)
		}
		return db
	}

	var total int64
	if err := repo.db.WithContext(ctx).Model(&group.Group{}).Scopes(filtered).Count(&total).Error; err != nil {
		return nil, 0, err
	}
	var groups []*group.Group
	if err := repo.db.WithContext(ctx).Model(&group.Group{}).Scopes(filtered).
		Select(groupMemberCount).
		Order("user_groups.name").
		Limit(q.PageSize).
		Offset(q.Offset()).
		Find(&groups).Error; err != nil {
		return nil, 0, err
	}
	return groups, total, nil
}

func (repo *GroupRepositoryDatabase) AdminGet(ctx context.Context, id uint) (*group.Group, error) {
	return repo.FindByID(ctx, id)
}
