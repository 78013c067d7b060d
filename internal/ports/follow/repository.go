package follow

import (
	"context"
	"yatube/internal/core/follow"

	"github.com/gofrs/uuid"
)

// FollowRepository port for follow edges
type FollowRepository interface {
	// Create inserts the edge unless the same (user, author) pair already exists.
	Create(ctx context.Context, follow *follow.Follow) error
	Delete(ctx context.Context, userID, authorID uuid.UUID) error
	Exists(ctx context.Context, userID, authorID uuid.UUID) (bool, error)
	CountFollowers(ctx context.Context, authorID uuid.UUID) (int64, error)
	CountFollowing(ctx context.Context, userID uuid.UUID) (int64, error)
}
