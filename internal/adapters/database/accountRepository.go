package database

import (
	"context"

	"gorm.io/gorm"

	"webcourse/internal/core/account"
	accountPort "webcourse/internal/ports/account"
)

// AccountRepositoryDatabase implements AccountRepository on gorm
type AccountRepositoryDatabase struct {
	db *gorm.DB
}

// NewAccountRepositoryDatabase builds an AccountRepositoryDatabase
func NewAccountRepositoryDatabase(db *gorm.DB) *AccountRepositoryDatabase {
	return &AccountRepositoryDatabase{db: db}
}

func (repo *AccountRepositoryDatabase) Create(ctx context.Context, a *account.Account) (*account.Account, error) {
	if err := repo.db.WithContext(ctx).Create(a).Error; err != nil {
		return nil, err
	}
	return a, nil
}

func (repo *AccountRepositoryDatabase) FindByUsername(ctx context.Context, username string) (*account.Account, error) {
	var a account.Account
	if err := repo.db.WithContext(ctx).Where("username = ?", username).First(&a).Error; err != nil {
		return nil, notFound(err, accountPort.ErrNotFound)
	}
	return &a, nil
}
