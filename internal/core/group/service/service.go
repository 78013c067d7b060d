package groupapp

import (
	"context"
	"errors"
	"fmt"
	"regexp"
	"strings"
	"yatube/internal/config"
	groupEntity "yatube/internal/core/group"
	groupPort "yatube/internal/ports/group"

	"go.uber.org/zap"
)

var (
	ErrInvalidSlug = errors.New("slug may contain only letters, numbers, underscores or hyphens")
	ErrSlugTaken   = errors.New("group with this slug already exists")
	ErrEmptyTitle  = errors.New("title is required")
)

var slugPattern = regexp.MustCompile(`^[-a-zA-Z0-9_]{1,50}$`)

type GroupService struct {
	GroupRepository groupPort.GroupRepository
}

func NewGroupService(repo groupPort.GroupRepository) *GroupService {
	return &GroupService{GroupRepository: repo}
}

// CreateGroup adds a community. Groups are created by staff, not through the site.
func (s *GroupService) CreateGroup(ctx context.Context, title, slug, description string) (*groupPort.GroupDTO, error) {
	title = strings.TrimSpace(title)
	if title == "" {
		return nil, ErrEmptyTitle
	}
	if !slugPattern.MatchString(slug) {
		return nil, ErrInvalidSlug
	}

	if _, err := s.GroupRepository.FindBySlug(ctx, slug); err == nil {
		return nil, ErrSlugTaken
	} else if !errors.Is(err, groupPort.ErrNotFound) {
		return nil, err
	}

	g, err := s.GroupRepository.Create(ctx, &groupEntity.Group{
		Title:       title,
		Slug:        slug,
		Description: description,
	})
	if err != nil {
		return nil, fmt.Errorf("create group: %w", err)
	}
	config.Logger.Info("Group created", zap.String("slug", g.Slug))
	return groupPort.ToGroupDTO(g), nil
}

func (s *GroupService) GetBySlug(ctx context.Context, slug string) (*groupPort.GroupDTO, error) {
	g, err := s.GroupRepository.FindBySlug(ctx, slug)
	if err != nil {
		return nil, err
	}
	return groupPort.ToGroupDTO(g), nil
}

func (s *GroupService) ListGroups(ctx context.Context) ([]*groupPort.GroupDTO, error) {
	groups, err := s.GroupRepository.List(ctx)
	if err != nil {
		return nil, err
	}
	dtos := make([]*groupPort.GroupDTO, 0, len(groups))
	for _, g := range groups {
		dtos = append(dtos, groupPort.ToGroupDTO(g))
	}
	return dtos, nil
}
