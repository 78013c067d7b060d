package group

import (
	"context"
	"errors"
	"yatube/internal/core/group"
)

var ErrNotFound = errors.New("group not found")

type GroupRepository interface {
	Create(ctx context.Context, group *group.Group) (*group.Group, error)
	FindBySlug(ctx context.Context, slug string) (*group.Group, error)
	FindByID(ctx context.Context, id string) (*group.Group, error)
	List(ctx context.Context) ([]*group.Group, error)
}

type GroupDTO struct {
	ID          string `json:"id"`
	Title       string `json:"title"`
	Slug        string `json:"slug"`
	Description string `json:"description"`
}

func ToGroupDTO(g *group.Group) *GroupDTO {
	if g == nil {
		return nil
	}
	return &GroupDTO{
		ID:          g.ID.String(),
		Title:       g.Title,
		Slug:        g.Slug,
		Description: g.Description,
	}
}
