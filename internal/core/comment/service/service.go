package commentapp

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"yatube/internal/config"
	commentEntity "yatube/internal/core/comment"
	commentPort "yatube/internal/ports/comment"
	postPort "yatube/internal/ports/post"

	"github.com/gofrs/uuid"
	"go.uber.org/zap"
)

var ErrEmptyText = errors.New("text is required")

type CommentService struct {
	CommentRepository commentPort.CommentRepository
	PostRepository    postPort.PostRepository
}

func NewCommentService(repo commentPort.CommentRepository, postRepo postPort.PostRepository) *CommentService {
	return &CommentService{
		CommentRepository: repo,
		PostRepository:    postRepo,
	}
}

// AddComment attaches a comment by authorID to the post.
func (s *CommentService) AddComment(ctx context.Context, authorID, postID, text string) (*commentPort.CommentDTO, error) {
	text = strings.TrimSpace(text)
	if text == "" {
		return nil, ErrEmptyText
	}
	aid, err := uuid.FromString(authorID)
	if err != nil {
		return nil, fmt.Errorf("invalid authorID: %w", err)
	}
	post, err := s.findPost(ctx, postID)
	if err != nil {
		return nil, err
	}

	c, err := s.CommentRepository.Create(ctx, &commentEntity.Comment{
		PostID:   post,
		AuthorID: aid,
		Text:     text,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to create comment: %w", err)
	}
	config.Logger.Info("Comment added", zap.String("postID", postID), zap.String("authorID", authorID))
	return commentPort.ToCommentDTO(c), nil
}

// ListComments returns the comments of a post, newest first.
func (s *CommentService) ListComments(ctx context.Context, postID string) ([]*commentPort.CommentDTO, error) {
	pid, err := uuid.FromString(postID)
	if err != nil {
		return nil, postPort.ErrNotFound
	}
	comments, err := s.CommentRepository.ListByPost(ctx, pid)
	if err != nil {
		return nil, err
	}
	dtos := make([]*commentPort.CommentDTO, 0, len(comments))
	for _, c := range comments {
		dtos = append(dtos, commentPort.ToCommentDTO(c))
	}
	return dtos, nil
}

func (s *CommentService) findPost(ctx context.Context, postID string) (uuid.UUID, error) {
	if _, err := uuid.FromString(postID); err != nil {
		return uuid.Nil, postPort.ErrNotFound
	}
	p, err := s.PostRepository.FindByID(ctx, postID)
	if err != nil {
		return uuid.Nil, err
	}
	return p.ID, nil
}
