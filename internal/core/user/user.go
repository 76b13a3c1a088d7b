package user

import (
	"strings"
	"time"
)

type User struct {
	ID        uint      `gorm:"primaryKey"`
	Username  string    `gorm:"type:varchar(100);uniqueIndex;not null"`
	Email     string    `gorm:"type:varchar(254);uniqueIndex;not null"`
	FirstName string    `gorm:"type:varchar(100)"`
	LastName  string    `gorm:"type:varchar(100)"`
	Bio       string    `gorm:"type:text"`
	IsActive  bool      `gorm:"not null"`
	CreatedAt time.Time `gorm:"autoCreateTime;index"`
	UpdatedAt time.Time `gorm:"autoUpdateTime"`

	// PostCount is filled by admin queries only
	PostCount int64 `gorm:"->;-:migration"`
}

// New returns an active user; gorm would skip a false zero value on insert, so activity is set here.
func New(username, email, firstName, lastName, bio string) *User {
	return &User{
		Username:  strings.TrimSpace(username),
		Email:     strings.TrimSpace(email),
		FirstName: strings.TrimSpace(firstName),
		LastName:  strings.TrimSpace(lastName),
		Bio:       bio,
		IsActive:  true,
	}
}

func (u *User) String() string { return u.Username }

// FullName joins first and last name, trimming whatever is blank.
func (u *User) FullName() string {
	return strings.TrimSpace(u.FirstName + " " + u.LastName)
}
