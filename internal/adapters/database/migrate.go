package database

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"gorm.io/gorm"

	"webcourse/internal/core/account"
	"webcourse/internal/core/group"
	"webcourse/internal/core/post"
	"webcourse/internal/core/user"
)

// AutoMigrate creates or updates every table the application owns.
func AutoMigrate(db *gorm.DB) error {
	if err := db.AutoMigrate(
		&user.User{},
		&post.Post{},
		&post.Like{},
		&group.Group{},
		&group.Membership{},
		&account.Account{},
	); err != nil {
		return fmt.Errorf("auto migrate: %w", err)
	}
	return nil
}

// notFound maps gorm's missing-row error onto a port error.
func notFound(err, portErr error) error {
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return portErr
	}
	return err
}

// duplicate maps a unique-index violation onto a port error.
func duplicate(err, portErr error) error {
	if errors.Is(err, gorm.ErrDuplicatedKey) {
		return portErr
	}
	return err
}

// yearBounds is [Jan 1 year, Jan 1 year+1) in local time, matching how gorm stamps created_at.
func yearBounds(year int) (time.Time, time.Time) {
	from := time.Date(year, time.January, 1, 0, 0, 0, 0, time.Local)
	return from, from.AddDate(1, 0, 0)
}

// likeEscaper quotes LIKE wildcards so a search term matches literally. Every LIKE using it needs ESCAPE '!'.
var likeEscaper = strings.NewReplacer("!", "!!", "%", "!%", "_", "!_")

func likePattern(term string) string {
	return "%" + likeEscaper.Replace(term) + "%"
}
