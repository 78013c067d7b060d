package post

import (
	"time"
	"yatube/internal/core/group"
	"yatube/internal/core/user"

	"github.com/gofrs/uuid"
	"gorm.io/gorm"
)

// NumberOfChars is how much of the text String shows.
const NumberOfChars = 15

type Post struct {
	ID        uuid.UUID    `gorm:"primary_key;type:char(36)"`
	Text      string       `gorm:"type:text;not null"`
	CreatedAt time.Time    `gorm:"autoCreateTime;index"`
	UpdatedAt time.Time    `gorm:"autoUpdateTime"`
	Image     string       `gorm:"type:varchar(255)"`
	AuthorID  uuid.UUID    `gorm:"type:char(36);not null;index"`
	Author    user.User    `gorm:"foreignKey:AuthorID;constraint:OnDelete:CASCADE"`
	GroupID   *uuid.UUID   `gorm:"type:char(36);index"`
	Group     *group.Group `gorm:"foreignKey:GroupID;constraint:OnDelete:SET NULL"`
}

func (p *Post) BeforeCreate(tx *gorm.DB) error {
	if p.ID == uuid.Nil {
		p.ID = uuid.Must(uuid.NewV4())
	}
	return nil
}

func (p Post) String() string {
	r := []rune(p.Text)
	if len(r) > NumberOfChars {
		r = r[:NumberOfChars]
	}
	return string(r)
}
