package group

import (
	"time"

	"webcourse/internal/core/user"
)

type Group struct {
	ID          uint      `gorm:"primaryKey"`
	Name        string    `gorm:"type:varchar(100);uniqueIndex;not null"`
	Description string    `gorm:"type:text"`
	CreatedAt   time.Time `gorm:"autoCreateTime"`

	MemberCount int64 `gorm:"->;-:migration"`
}

// groups is reserved in MySQL 8
func (Group) TableName() string { return "user_groups" }

// Membership links a user to a group
type Membership struct {
	GroupID   uint      `gorm:"primaryKey"`
	UserID    uint      `gorm:"primaryKey;index"`
	Group     Group     `gorm:"foreignKey:GroupID;constraint:OnDelete:CASCADE"`
	User      user.User `gorm:"foreignKey:UserID;constraint:OnDelete:CASCADE"`
	CreatedAt time.Time `gorm:"autoCreateTime"`
}

func (Membership) TableName() string { return "group_members" }
