package httpapi

import (
	"context"
	"net/http"
	"net/url"
	"time"
	"yatube/internal/adapters/httpapi/middleware"
	"yatube/internal/config"
	postapp "yatube/internal/core/post/service"
	commentPort "yatube/internal/ports/comment"
	groupPort "yatube/internal/ports/group"
	pageCachePort "yatube/internal/ports/pagecache"
	postPort "yatube/internal/ports/post"
	userPort "yatube/internal/ports/user"

	"github.com/gin-gonic/gin"
)

const LoginURL = "/auth/login/"

func profileURL(username string) string {
	return "/profile/" + url.PathEscape(username) + "/"
}

// UserUseCase is what the account pages and auth middleware need (inbound port)
type UserUseCase interface {
	LoginUser(ctx context.Context, username, password string) (*userPort.LoginResponse, error)
	RegisterUser(ctx context.Context, name, family, username, email, password string) (*userPort.UserDTO, error)
	Identify(ctx context.Context, token string) (*userPort.Identity, error)
}

type PostUseCase interface {
	Index(ctx context.Context, rawPage string) (*postPort.PageDTO, error)
	GroupPosts(ctx context.Context, slug, rawPage string) (*groupPort.GroupDTO, *postPort.PageDTO, error)
	AuthorPosts(ctx context.Context, username, rawPage string) (*userPort.UserDTO, *postPort.PageDTO, error)
	Feed(ctx context.Context, userID, rawPage string) (*postPort.PageDTO, error)
	GetPost(ctx context.Context, postID string) (*postPort.PostDTO, error)
	CreatePost(ctx context.Context, authorID string, in postapp.PostInput) (*postPort.PostDTO, error)
	UpdatePost(ctx context.Context, actorID, postID string, in postapp.PostInput) (*postPort.PostDTO, error)
	DeletePost(ctx context.Context, actorID, postID string) error
}

type GroupUseCase interface {
	ListGroups(ctx context.Context) ([]*groupPort.GroupDTO, error)
}

type CommentUseCase interface {
	AddComment(ctx context.Context, authorID, postID, text string) (*commentPort.CommentDTO, error)
	ListComments(ctx context.Context, postID string) ([]*commentPort.CommentDTO, error)
}

type FollowUseCase interface {
	FollowAuthor(ctx context.Context, userID, username string) error
	UnfollowAuthor(ctx context.Context, userID, username string) error
	IsFollowing(ctx context.Context, userID, authorID string) (bool, error)
	Stats(ctx context.Context, authorID string) (followers, following int64, err error)
}

// Options holds the non use-case dependencies of the router.
type Options struct {
	PageCache     pageCachePort.PageCache
	IndexCacheTTL time.Duration
	MediaRoot     string
}

// SetupRoutes only wires routes; use cases are injected from outside.
func SetupRoutes(
	userUC UserUseCase,
	postUC PostUseCase,
	groupUC GroupUseCase,
	commentUC CommentUseCase,
	followUC FollowUseCase,
	opts Options,
) *gin.Engine {
	r := gin.New()
	r.Use(middleware.RequestLogger(config.Logger), gin.Recovery(), middleware.JWTAuthMiddleware(userUC))

	uc := NewUserController(userUC)
	pc := NewPostController(postUC, groupUC, commentUC, followUC)
	cc := NewCommentController(commentUC, postUC)
	fc := NewFollowController(followUC, postUC)
	loginRequired := middleware.LoginRequired(LoginURL)

	r.GET("/", middleware.CachePage(opts.PageCache, opts.IndexCacheTTL, config.Logger), pc.Index)
	r.GET("/group/:slug/", pc.GroupPosts)
	r.GET("/profile/:username/", pc.Profile)
	r.GET("/posts/:id", pc.PostDetail)

	r.GET("/create/", loginRequired, pc.CreateForm)
	r.POST("/create/", loginRequired, pc.CreatePost)
	r.GET("/posts/:id/edit/", loginRequired, pc.EditForm)
	r.POST("/posts/:id/edit/", loginRequired, pc.EditPost)
	r.POST("/posts/:id/delete/", loginRequired, pc.DeletePost)
	r.POST("/posts/:id/comment/", loginRequired, cc.AddComment)

	r.GET("/follow/", loginRequired, fc.FollowIndex)
	r.GET("/profile/:username/follow/", loginRequired, fc.ProfileFollow)
	r.GET("/profile/:username/unfollow/", loginRequired, fc.ProfileUnfollow)

	auth := r.Group("/auth")
	auth.POST("/signup/", uc.RegisterUser)
	auth.GET("/login/", uc.LoginForm)
	auth.POST("/login/", uc.LoginUser)
	auth.GET("/logout/", uc.Logout)

	if opts.MediaRoot != "" {
		r.Static("/media", opts.MediaRoot)
	}

	r.NoRoute(func(c *gin.Context) {
		c.JSON(http.StatusNotFound, gin.H{"error": "page not found"})
	})
	return r
}
