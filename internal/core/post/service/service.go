package postapp

import (
	"context"
	"errors"
	"fmt"
	"mime/multipart"
	"strings"
	"yatube/internal/config"
	"yatube/internal/core/paginator"
	postEntity "yatube/internal/core/post"
	groupPort "yatube/internal/ports/group"
	mediaPort "yatube/internal/ports/media"
	postPort "yatube/internal/ports/post"
	userPort "yatube/internal/ports/user"

	"github.com/gofrs/uuid"
	"go.uber.org/zap"
)

var (
	ErrNotAuthor     = errors.New("only the author may change this post")
	ErrGroupNotFound = errors.New("select a valid choice")
	ErrEmptyText     = errors.New("text is required")
)

// PostInput is the cleaned content of the post form.
type PostInput struct {
	Text    string
	GroupID string
	Image   *multipart.FileHeader
}

type PostService struct {
	PostRepository  postPort.PostRepository
	GroupRepository groupPort.GroupRepository
	UserRepository  userPort.UserRepository
	ImageStorage    mediaPort.ImageStorage
	PerPage         int
}

func NewPostService(
	postRepo postPort.PostRepository,
	groupRepo groupPort.GroupRepository,
	userRepo userPort.UserRepository,
	images mediaPort.ImageStorage,
	perPage int,
) *PostService {
	return &PostService{
		PostRepository:  postRepo,
		GroupRepository: groupRepo,
		UserRepository:  userRepo,
		ImageStorage:    images,
		PerPage:         perPage,
	}
}

// Index lists every post.
func (s *PostService) Index(ctx context.Context, rawPage string) (*postPort.PageDTO, error) {
	return s.page(ctx, postPort.Filter{}, rawPage)
}

// GroupPosts lists the posts of the group with the given slug.
func (s *PostService) GroupPosts(ctx context.Context, slug, rawPage string) (*groupPort.GroupDTO, *postPort.PageDTO, error) {
	g, err := s.GroupRepository.FindBySlug(ctx, slug)
	if err != nil {
		return nil, nil, err
	}
	page, err := s.page(ctx, postPort.Filter{GroupID: g.ID}, rawPage)
	if err != nil {
		return nil, nil, err
	}
	return groupPort.ToGroupDTO(g), page, nil
}

// AuthorPosts lists the posts written by username.
func (s *PostService) AuthorPosts(ctx context.Context, username, rawPage string) (*userPort.UserDTO, *postPort.PageDTO, error) {
	author, err := s.UserRepository.FindByUsername(ctx, username)
	if err != nil {
		return nil, nil, err
	}
	page, err := s.page(ctx, postPort.Filter{AuthorID: author.ID}, rawPage)
	if err != nil {
		return nil, nil, err
	}
	return userPort.ToUserDTO(author), page, nil
}

// Feed lists posts by the authors userID follows. No follows gives an empty page.
func (s *PostService) Feed(ctx context.Context, userID, rawPage string) (*postPort.PageDTO, error) {
	uid, err := uuid.FromString(userID)
	if err != nil {
		return nil, fmt.Errorf("invalid userID: %w", err)
	}
	return s.page(ctx, postPort.Filter{FollowerID: uid}, rawPage)
}

func (s *PostService) page(ctx context.Context, filter postPort.Filter, rawPage string) (*postPort.PageDTO, error) {
	count, err := s.PostRepository.Count(ctx, filter)
	if err != nil {
		return nil, fmt.Errorf("count posts: %w", err)
	}
	page := paginator.New(count, s.PerPage, rawPage)
	posts, err := s.PostRepository.List(ctx, filter, page)
	if err != nil {
		return nil, fmt.Errorf("list posts: %w", err)
	}
	return postPort.ToPageDTO(page, posts), nil
}

func (s *PostService) GetPost(ctx context.Context, postID string) (*postPort.PostDTO, error) {
	p, err := s.findPost(ctx, postID)
	if err != nil {
		return nil, err
	}
	return postPort.ToPostDTO(p), nil
}

// CreatePost publishes a post on behalf of authorID.
func (s *PostService) CreatePost(ctx context.Context, authorID string, in PostInput) (*postPort.PostDTO, error) {
	uid, err := uuid.FromString(authorID)
	if err != nil {
		return nil, fmt.Errorf("invalid authorID: %w", err)
	}

	post := &postEntity.Post{AuthorID: uid}
	if err := s.apply(ctx, post, in); err != nil {
		return nil, err
	}

	created, err := s.PostRepository.Create(ctx, post)
	if err != nil {
		return nil, fmt.Errorf("failed to create post: %w", err)
	}
	config.Logger.Info("Post created", zap.String("postID", created.ID.String()), zap.String("authorID", authorID))
	return s.GetPost(ctx, created.ID.String())
}

// UpdatePost edits a post. Anyone but the author gets ErrNotAuthor and the post is left unchanged.
func (s *PostService) UpdatePost(ctx context.Context, actorID, postID string, in PostInput) (*postPort.PostDTO, error) {
	post, err := s.findPost(ctx, postID)
	if err != nil {
		return nil, err
	}
	if post.AuthorID.String() != actorID {
		config.Logger.Warn("Edit attempt by non-author", zap.String("postID", postID), zap.String("userID", actorID))
		return nil, ErrNotAuthor
	}

	oldImage := post.Image
	if err := s.apply(ctx, post, in); err != nil {
		return nil, err
	}
	if err := s.PostRepository.Update(ctx, post); err != nil {
		return nil, fmt.Errorf("failed to update post: %w", err)
	}
	if oldImage != "" && oldImage != post.Image {
		s.deleteImage(ctx, oldImage)
	}
	return s.GetPost(ctx, postID)
}

// DeletePost removes a post with its comments. Only the author may delete it.
func (s *PostService) DeletePost(ctx context.Context, actorID, postID string) error {
	post, err := s.findPost(ctx, postID)
	if err != nil {
		return err
	}
	if post.AuthorID.String() != actorID {
		return ErrNotAuthor
	}
	if err := s.PostRepository.Delete(ctx, post.ID); err != nil {
		return fmt.Errorf("failed to delete post: %w", err)
	}
	if post.Image != "" {
		s.deleteImage(ctx, post.Image)
	}
	config.Logger.Info("Post deleted", zap.String("postID", postID))
	return nil
}

// apply validates in and copies it onto post. A new image is stored only
// after the other fields passed validation.
func (s *PostService) apply(ctx context.Context, post *postEntity.Post, in PostInput) error {
	text := strings.TrimSpace(in.Text)
	if text == "" {
		return ErrEmptyText
	}

	var groupID *uuid.UUID
	if in.GroupID != "" {
		if _, err := uuid.FromString(in.GroupID); err != nil {
			return ErrGroupNotFound
		}
		g, err := s.GroupRepository.FindByID(ctx, in.GroupID)
		if errors.Is(err, groupPort.ErrNotFound) {
			return ErrGroupNotFound
		}
		if err != nil {
			return err
		}
		groupID = &g.ID
	}

	if in.Image != nil {
		if s.ImageStorage == nil {
			return errors.New("image storage is not configured")
		}
		name, err := s.ImageStorage.Save(ctx, in.Image)
		if err != nil {
			return err
		}
		post.Image = name
	}

	post.Text = text
	post.GroupID = groupID
	post.Group = nil
	return nil
}

func (s *PostService) findPost(ctx context.Context, postID string) (*postEntity.Post, error) {
	if _, err := uuid.FromString(postID); err != nil {
		return nil, postPort.ErrNotFound
	}
	return s.PostRepository.FindByID(ctx, postID)
}

func (s *PostService) deleteImage(ctx context.Context, name string) {
	if s.ImageStorage == nil {
		return
	}
	if err := s.ImageStorage.Delete(ctx, name); err != nil {
		config.Logger.Warn("Could not delete image", zap.String("image", name), zap.Error(err))
	}
}
