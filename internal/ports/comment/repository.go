package comment

import (
	"context"
	"time"
	"yatube/internal/core/comment"
	userPort "yatube/internal/ports/user"

	"github.com/gofrs/uuid"
)

type CommentRepository interface {
	Create(ctx context.Context, comment *comment.Comment) (*comment.Comment, error)
	ListByPost(ctx context.Context, postID uuid.UUID) ([]*comment.Comment, error)
}

type CommentDTO struct {
	ID        string            `json:"id"`
	Text      string            `json:"text"`
	CreatedAt string            `json:"created"`
	Author    *userPort.UserDTO `json:"author,omitempty"`
}

func ToCommentDTO(c *comment.Comment) *CommentDTO {
	dto := &CommentDTO{
		ID:        c.ID.String(),
		Text:      c.Text,
		CreatedAt: c.CreatedAt.Format(time.RFC3339),
	}
	if c.Author.ID != uuid.Nil {
		dto.Author = userPort.ToUserDTO(&c.Author)
	}
	return dto
}
