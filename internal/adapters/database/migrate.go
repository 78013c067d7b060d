package database

import (
	"yatube/internal/core/comment"
	"yatube/internal/core/follow"
	"yatube/internal/core/group"
	"yatube/internal/core/post"
	"yatube/internal/core/user"

	"gorm.io/gorm"
)

// Migrate creates or updates the schema. Order matters for the foreign keys.
func Migrate(db *gorm.DB) error {
	return db.AutoMigrate(
		&user.User{},
		&group.Group{},
		&post.Post{},
		&comment.Comment{},
		&follow.Follow{},
	)
}
