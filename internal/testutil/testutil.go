// Package testutil builds throwaway databases and fixtures for tests.
package testutil

import (
	"context"
	"fmt"
	"testing"
	"yatube/internal/adapters/database"
	"yatube/internal/config"
	"yatube/internal/core/group"
	"yatube/internal/core/post"
	"yatube/internal/core/user"

	"github.com/gofrs/uuid"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"
)

// Password is the plain password of every user made by CreateUser.
const Password = "password"

// NewDB returns a migrated in-memory SQLite database private to the test.
func NewDB(t testing.TB) *gorm.DB {
	t.Helper()
	dsn := fmt.Sprintf("file:%s?mode=memory&cache=shared", uuid.Must(uuid.NewV4()))
	db, err := config.OpenDB("sqlite", dsn)
	require.NoError(t, err)
	require.NoError(t, database.Migrate(db))
	t.Cleanup(func() {
		if sqlDB, err := db.DB(); err == nil {
			_ = sqlDB.Close()
		}
	})
	return db
}

func CreateUser(t testing.TB, db *gorm.DB, username string) *user.User {
	t.Helper()
	hash, err := bcrypt.GenerateFromPassword([]byte(Password), bcrypt.MinCost)
	require.NoError(t, err)
	u := &user.User{Name: username, Family: "Test", Username: username, Password: string(hash)}
	require.NoError(t, db.WithContext(context.Background()).Create(u).Error)
	return u
}

func CreateGroup(t testing.TB, db *gorm.DB, slug string) *group.Group {
	t.Helper()
	g := &group.Group{Title: "Group " + slug, Slug: slug, Description: "About " + slug}
	require.NoError(t, db.Create(g).Error)
	return g
}

func CreatePost(t testing.TB, db *gorm.DB, author *user.User, g *group.Group, text string) *post.Post {
	t.Helper()
	p := &post.Post{Text: text, AuthorID: author.ID}
	if g != nil {
		p.GroupID = &g.ID
	}
	require.NoError(t, db.Omit("Author", "Group").Create(p).Error)
	return p
}
