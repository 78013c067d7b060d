package post

import (
	"context"
	"errors"
	"time"
	"yatube/internal/core/paginator"
	"yatube/internal/core/post"
	groupPort "yatube/internal/ports/group"
	userPort "yatube/internal/ports/user"

	"github.com/gofrs/uuid"
)

var ErrNotFound = errors.New("post not found")

// Filter narrows a post listing. Zero fields do not filter.
type Filter struct {
	AuthorID uuid.UUID
	GroupID  uuid.UUID
	// FollowerID selects posts by authors this user follows.
	FollowerID uuid.UUID
}

// PostRepository port for storing and loading posts
type PostRepository interface {
	Create(ctx context.Context, post *post.Post) (*post.Post, error)
	Update(ctx context.Context, post *post.Post) error
	Delete(ctx context.Context, id uuid.UUID) error
	FindByID(ctx context.Context, id string) (*post.Post, error)
	Count(ctx context.Context, filter Filter) (int64, error)
	List(ctx context.Context, filter Filter, page paginator.Page) ([]*post.Post, error)
	ImageInUse(ctx context.Context, image string) (bool, error)
}

type PostDTO struct {
	ID        string              `json:"id"`
	Text      string              `json:"text"`
	Image     string              `json:"image,omitempty"`
	CreatedAt string              `json:"created_at"`
	Author    *userPort.UserDTO   `json:"author,omitempty"`
	Group     *groupPort.GroupDTO `json:"group,omitempty"`
}

type PageDTO struct {
	Number         int        `json:"number"`
	NumPages       int        `json:"num_pages"`
	Count          int64      `json:"count"`
	HasNext        bool       `json:"has_next"`
	HasPrevious    bool       `json:"has_previous"`
	NextNumber     int        `json:"next_page_number,omitempty"`
	PreviousNumber int        `json:"previous_page_number,omitempty"`
	Posts          []*PostDTO `json:"posts"`
}

func ToPostDTO(p *post.Post) *PostDTO {
	dto := &PostDTO{
		ID:        p.ID.String(),
		Text:      p.Text,
		Image:     p.Image,
		CreatedAt: p.CreatedAt.Format(time.RFC3339),
		Group:     groupPort.ToGroupDTO(p.Group),
	}
	if p.Author.ID != uuid.Nil {
		dto.Author = userPort.ToUserDTO(&p.Author)
	}
	return dto
}

func ToPageDTO(page paginator.Page, posts []*post.Post) *PageDTO {
	dto := &PageDTO{
		Number:         page.Number,
		NumPages:       page.NumPages,
		Count:          page.Count,
		HasNext:        page.HasNext(),
		HasPrevious:    page.HasPrevious(),
		NextNumber:     page.NextNumber(),
		PreviousNumber: page.PreviousNumber(),
		Posts:          make([]*PostDTO, 0, len(posts)),
	}
	for _, p := range posts {
		dto.Posts = append(dto.Posts, ToPostDTO(p))
	}
	return dto
}
