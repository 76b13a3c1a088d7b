package post

import (
	"time"

	"webcourse/internal/core/user"
)

type Post struct {
	ID          uint       `gorm:"primaryKey"`
	Title       string     `gorm:"type:varchar(200);not null"`
	Content     string     `gorm:"type:text;not null"`
	AuthorID    uint       `gorm:"not null;index"`
	Author      user.User  `gorm:"foreignKey:AuthorID;constraint:OnUpdate:CASCADE,OnDelete:CASCADE"`
	CreatedAt   time.Time  `gorm:"autoCreateTime;index"`
	UpdatedAt   time.Time  `gorm:"autoUpdateTime"`
	IsPublished bool       `gorm:"not null;default:false;index"`
	PublishedAt *time.Time

	// LikesCount is computed at query time
	LikesCount int64 `gorm:"->;-:migration"`
}

// Like is one row of the post/user likes set. The composite key makes a second like a no-op.
type Like struct {
	PostID    uint      `gorm:"primaryKey"`
	UserID    uint      `gorm:"primaryKey;index"`
	Post      Post      `gorm:"foreignKey:PostID;constraint:OnDelete:CASCADE"`
	User      user.User `gorm:"foreignKey:UserID;constraint:OnDelete:CASCADE"`
	CreatedAt time.Time `gorm:"autoCreateTime"`
}

func (Like) TableName() string { return "post_likes" }

func (p *Post) String() string { return p.Title }

// Publish marks the post published at now. Both fields move together.
func (p *Post) Publish(now time.Time) {
	p.IsPublished = true
	p.PublishedAt = &now
}

// Unpublish clears the published flag and its timestamp.
func (p *Post) Unpublish() {
	p.IsPublished = false
	p.PublishedAt = nil
}
