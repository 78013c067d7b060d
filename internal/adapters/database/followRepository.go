package database

import (
	"context"
	"yatube/internal/core/follow"

	"github.com/gofrs/uuid"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// FollowRepositoryDatabase implements FollowRepository on gorm
type FollowRepositoryDatabase struct {
	db *gorm.DB
}

func NewFollowRepositoryDatabase(db *gorm.DB) *FollowRepositoryDatabase {
	return &FollowRepositoryDatabase{db: db}
}

func (repo *FollowRepositoryDatabase) Create(ctx context.Context, f *follow.Follow) error {
	return repo.db.WithContext(ctx).
		Omit(clause.Associations).
		Clauses(clause.OnConflict{
			Columns:   []clause.Column{{Name: "user_id"}, {Name: "author_id"}},
			DoNothing: true,
		}).
		Create(f).Error
}

func (repo *FollowRepositoryDatabase) Delete(ctx context.Context, userID, authorID uuid.UUID) error {
	return repo.db.WithContext(ctx).
		Where("user_id = ? AND author_id = ?", userID, authorID).
		Delete(&follow.Follow{}).Error
}

func (repo *FollowRepositoryDatabase) Exists(ctx context.Context, userID, authorID uuid.UUID) (bool, error) {
	var count int64
	if err := repo.db.WithContext(ctx).Model(&follow.Follow{}).
		Where("user_id = ? AND author_id = ?", userID, authorID).
		Count(&count).Error; err != nil {
		return false, err
	}
	return count > 0, nil
}

func (repo *FollowRepositoryDatabase) CountFollowers(ctx context.Context, authorID uuid.UUID) (int64, error) {
	var count int64
	err := repo.db.WithContext(ctx).Model(&follow.Follow{}).Where("author_id = ?", authorID).Count(&count).Error
	return count, err
}

func (repo *FollowRepositoryDatabase) CountFollowing(ctx context.Context, userID uuid.UUID) (int64, error) {
	var count int64
	err := repo.db.WithContext(ctx).Model(&follow.Follow{}).Where("user_id = ?", userID).Count(&count).Error
	return count, err
}
