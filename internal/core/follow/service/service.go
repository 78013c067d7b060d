package followapp

import (
	"context"
	"errors"
	"fmt"
	"yatube/internal/config"
	followEntity "yatube/internal/core/follow"
	followPort "yatube/internal/ports/follow"
	userPort "yatube/internal/ports/user"

	"github.com/gofrs/uuid"
	"go.uber.org/zap"
)

var ErrCannotFollowSelf = errors.New("cannot follow yourself")

type FollowService struct {
	FollowRepository followPort.FollowRepository
	UserRepository   userPort.UserRepository
}

func NewFollowService(repo followPort.FollowRepository, userRepo userPort.UserRepository) *FollowService {
	return &FollowService{
		FollowRepository: repo,
		UserRepository:   userRepo,
	}
}

// FollowAuthor subscribes userID to username. Following twice has no effect.
func (s *FollowService) FollowAuthor(ctx context.Context, userID, username string) error {
	uid, author, err := s.resolve(ctx, userID, username)
	if err != nil {
		return err
	}
	if uid == author {
		config.Logger.Warn("Cannot follow yourself", zap.String("userID", userID))
		return ErrCannotFollowSelf
	}

	if err := s.FollowRepository.Create(ctx, &followEntity.Follow{UserID: uid, AuthorID: author}); err != nil {
		return fmt.Errorf("follow %s: %w", username, err)
	}
	return nil
}

// UnfollowAuthor removes the subscription if there is one.
func (s *FollowService) UnfollowAuthor(ctx context.Context, userID, username string) error {
	uid, author, err := s.resolve(ctx, userID, username)
	if err != nil {
		return err
	}
	if err := s.FollowRepository.Delete(ctx, uid, author); err != nil {
		return fmt.Errorf("unfollow %s: %w", username, err)
	}
	return nil
}

func (s *FollowService) IsFollowing(ctx context.Context, userID, authorID string) (bool, error) {
	uid, err := uuid.FromString(userID)
	if err != nil {
		return false, nil
	}
	aid, err := uuid.FromString(authorID)
	if err != nil {
		return false, nil
	}
	return s.FollowRepository.Exists(ctx, uid, aid)
}

// Stats returns how many users follow authorID and how many authors it follows.
func (s *FollowService) Stats(ctx context.Context, authorID string) (followers, following int64, err error) {
	aid, err := uuid.FromString(authorID)
	if err != nil {
		return 0, 0, fmt.Errorf("invalid authorID: %w", err)
	}
	if followers, err = s.FollowRepository.CountFollowers(ctx, aid); err != nil {
		return 0, 0, err
	}
	if following, err = s.FollowRepository.CountFollowing(ctx, aid); err != nil {
		return 0, 0, err
	}
	return followers, following, nil
}

func (s *FollowService) resolve(ctx context.Context, userID, username string) (uuid.UUID, uuid.UUID, error) {
	uid, err := uuid.FromString(userID)
	if err != nil {
		return uuid.Nil, uuid.Nil, fmt.Errorf("invalid userID: %w", err)
	}
	author, err := s.UserRepository.FindByUsername(ctx, username)
	if err != nil {
		return uuid.Nil, uuid.Nil, err
	}
	return uid, author.ID, nil
}
