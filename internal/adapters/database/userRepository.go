package database

import (
	"context"
	"errors"
	"yatube/internal/core/user"
	userPort "yatube/internal/ports/user"

	"gorm.io/gorm"
)

// UserRepositoryDatabase implements UserRepository on gorm
type UserRepositoryDatabase struct {
	db *gorm.DB
}

func NewUserRepositoryDatabase(db *gorm.DB) *UserRepositoryDatabase {
	return &UserRepositoryDatabase{db: db}
}

func (repo *UserRepositoryDatabase) Create(ctx context.Context, user *user.User) (*user.User, error) {
	if err := repo.db.WithContext(ctx).Create(user).Error; err != nil {
		return nil, err
	}
	return user, nil
}

func (repo *UserRepositoryDatabase) FindByUsernameOrEmail(ctx context.Context, username, email string) (*user.User, error) {
	q := repo.db.WithContext(ctx).Where("username = ?", username)
	if email != "" {
		q = q.Or("email = ?", email)
	}
	return repo.first(q)
}

func (repo *UserRepositoryDatabase) FindByUsername(ctx context.Context, username string) (*user.User, error) {
	return repo.first(repo.db.WithContext(ctx).Where("username = ?", username))
}

func (repo *UserRepositoryDatabase) FindByID(ctx context.Context, id string) (*user.User, error) {
	return repo.first(repo.db.WithContext(ctx).Where("id = ?", id))
}

func (repo *UserRepositoryDatabase) first(q *gorm.DB) (*user.User, error) {
	var u user.User
	if err := q.First(&u).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, userPort.ErrNotFound
		}
		return nil, err
	}
	return &u, nil
}
