package follow

import (
	"time"
	"yatube/internal/core/user"

	"github.com/gofrs/uuid"
	"gorm.io/gorm"
)

// Follow is a directed edge: User receives Author's posts in the feed.
// The pair is unique and a user cannot follow themself; both rules are
// enforced by the table constraints.
type Follow struct {
	ID        uuid.UUID `gorm:"primary_key;type:char(36)"`
	UserID    uuid.UUID `gorm:"type:char(36);not null;uniqueIndex:unique_followers;check:not_follow_to_self,user_id <> author_id"`
	User      user.User `gorm:"foreignKey:UserID;constraint:OnDelete:CASCADE"`
	AuthorID  uuid.UUID `gorm:"type:char(36);not null;uniqueIndex:unique_followers;index"`
	Author    user.User `gorm:"foreignKey:AuthorID;constraint:OnDelete:CASCADE"`
	CreatedAt time.Time `gorm:"autoCreateTime"`
}

func (f *Follow) BeforeCreate(tx *gorm.DB) error {
	if f.ID == uuid.Nil {
		f.ID = uuid.Must(uuid.NewV4())
	}
	return nil
}
