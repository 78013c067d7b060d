package comment

import (
	"time"
	"yatube/internal/core/post"
	"yatube/internal/core/user"

	"github.com/gofrs/uuid"
	"gorm.io/gorm"
)

type Comment struct {
	ID        uuid.UUID `gorm:"primary_key;type:char(36)"`
	PostID    uuid.UUID `gorm:"type:char(36);not null;index"`
	Post      post.Post `gorm:"foreignKey:PostID;constraint:OnDelete:CASCADE"`
	AuthorID  uuid.UUID `gorm:"type:char(36);not null;index"`
	Author    user.User `gorm:"foreignKey:AuthorID;constraint:OnDelete:CASCADE"`
	Text      string    `gorm:"type:text;not null"`
	CreatedAt time.Time `gorm:"autoCreateTime"`
}

func (c *Comment) BeforeCreate(tx *gorm.DB) error {
	if c.ID == uuid.Nil {
		c.ID = uuid.Must(uuid.NewV4())
	}
	return nil
}

func (c Comment) String() string {
	r := []rune(c.Text)
	if len(r) > post.NumberOfChars {
		r = r[:post.NumberOfChars]
	}
	return string(r)
}
