package database

import (
	"context"
	"errors"
	"yatube/internal/core/paginator"
	"yatube/internal/core/post"
	postPort "yatube/internal/ports/post"

	"github.com/gofrs/uuid"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// PostRepositoryDatabase implements PostRepository on gorm
type PostRepositoryDatabase struct {
	db *gorm.DB
}

func NewPostRepositoryDatabase(db *gorm.DB) *PostRepositoryDatabase {
	return &PostRepositoryDatabase{db: db}
}

func (repo *PostRepositoryDatabase) Create(ctx context.Context, p *post.Post) (*post.Post, error) {
	if err := repo.db.WithContext(ctx).Omit(clause.Associations).Create(p).Error; err != nil {
		return nil, err
	}
	return p, nil
}

// Update writes the editable columns; a nil group is stored as NULL.
func (repo *PostRepositoryDatabase) Update(ctx context.Context, p *post.Post) error {
	return repo.db.WithContext(ctx).Model(&post.Post{}).
		Where("id = ?", p.ID).
		Updates(map[string]any{
			"text":     p.Text,
			"image":    p.Image,
			"group_id": p.GroupID,
		}).Error
}

func (repo *PostRepositoryDatabase) Delete(ctx context.Context, id uuid.UUID) error {
	return repo.db.WithContext(ctx).Where("id = ?", id).Delete(&post.Post{}).Error
}

func (repo *PostRepositoryDatabase) FindByID(ctx context.Context, id string) (*post.Post, error) {
	var p post.Post
	if err := repo.db.WithContext(ctx).
		Preload("Author").
		Preload("Group").
		Where("id = ?", id).
		First(&p).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, postPort.ErrNotFound
		}
		return nil, err
	}
	return &p, nil
}

func (repo *PostRepositoryDatabase) Count(ctx context.Context, filter postPort.Filter) (int64, error) {
	var count int64
	if err := repo.db.WithContext(ctx).
		Model(&post.Post{}).
		Scopes(filterScope(filter)).
		Count(&count).Error; err != nil {
		return 0, err
	}
	return count, nil
}

// List returns one page of posts, newest first.
func (repo *PostRepositoryDatabase) List(ctx context.Context, filter postPort.Filter, page paginator.Page) ([]*post.Post, error) {
	var posts []*post.Post
	if err := repo.db.WithContext(ctx).
		Preload("Author").
		Preload("Group").
		Scopes(filterScope(filter), page.Scope()).
		Order("posts.created_at DESC").
		Order("posts.id DESC").
		Find(&posts).Error; err != nil {
		return nil, err
	}
	return posts, nil
}

func filterScope(filter postPort.Filter) func(*gorm.DB) *gorm.DB {
	return func(db *gorm.DB) *gorm.DB {
		if filter.AuthorID != uuid.Nil {
			db = db.Where("posts.author_id = ?", filter.AuthorID)
		}
		if filter.GroupID != uuid.Nil {
			db = db.Where("posts.group_id = ?", filter.GroupID)
		}
		if filter.FollowerID != uuid.Nil {
			db = db.Joins("JOIN follows ON follows.author_id = posts.author_id").
				Where("follows.user_id = ?", filter.FollowerID)
		}
		return db
	}
}

// ImageInUse reports whether any post still points at the stored image.
func (repo *PostRepositoryDatabase) ImageInUse(ctx context.Context, image string) (bool, error) {
	var count int64
	if err := repo.db.WithContext(ctx).
		Model(&post.Post{}).
		Where("image = ?", image).
		Limit(1).
		Count(&count).Error; err != nil {
		return false, err
	}
	return count > 0, nil
}
