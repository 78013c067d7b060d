package httpapi

import (
	"errors"
	"net/http"
	"yatube/internal/adapters/httpapi/middleware"
	postapp "yatube/internal/core/post/service"
	commentPort "yatube/internal/ports/comment"
	groupPort "yatube/internal/ports/group"
	mediaPort "yatube/internal/ports/media"
	postPort "yatube/internal/ports/post"

	"github.com/gin-gonic/gin"
)

type PostController struct {
	pc PostUseCase
	gc GroupUseCase
	cc CommentUseCase
	fc FollowUseCase
}

func NewPostController(pc PostUseCase, gc GroupUseCase, cc CommentUseCase, fc FollowUseCase) *PostController {
	return &PostController{pc: pc, gc: gc, cc: cc, fc: fc}
}

func (ctl *PostController) Index(c *gin.Context) {
	page, err := ctl.pc.Index(c.Request.Context(), c.Query("page"))
	if err != nil {
		abortWithError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"page_obj": page})
}

func (ctl *PostController) GroupPosts(c *gin.Context) {
	group, page, err := ctl.pc.GroupPosts(c.Request.Context(), c.Param("slug"), c.Query("page"))
	if err != nil {
		abortWithError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"group": group, "page_obj": page})
}

// Profile shows an author's posts. following tells whether the current user
// already follows this author.
func (ctl *PostController) Profile(c *gin.Context) {
	ctx := c.Request.Context()
	author, page, err := ctl.pc.AuthorPosts(ctx, c.Param("username"), c.Query("page"))
	if err != nil {
		abortWithError(c, err)
		return
	}

	following := false
	if me, ok := middleware.CurrentUser(c); ok && me.UserID != author.ID {
		if following, err = ctl.fc.IsFollowing(ctx, me.UserID, author.ID); err != nil {
			abortWithError(c, err)
			return
		}
	}
	followers, follows, err := ctl.fc.Stats(ctx, author.ID)
	if err != nil {
		abortWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"author":          author,
		"page_obj":        page,
		"following":       following,
		"followers_count": followers,
		"following_count": follows,
	})
}

func (ctl *PostController) PostDetail(c *gin.Context) {
	ctx := c.Request.Context()
	post, err := ctl.pc.GetPost(ctx, c.Param("id"))
	if err != nil {
		abortWithError(c, err)
		return
	}
	comments, err := ctl.cc.ListComments(ctx, post.ID)
	if err != nil {
		abortWithError(c, err)
		return
	}
	if comments == nil {
		comments = []*commentPort.CommentDTO{}
	}
	c.JSON(http.StatusOK, gin.H{
		"post":     post,
		"comments": comments,
		"form":     formView{Values: map[string]string{"text": ""}},
	})
}

func (ctl *PostController) CreateForm(c *gin.Context) {
	ctl.renderPostForm(c, http.StatusOK, postForm{}, nil, false)
}

func (ctl *PostController) CreatePost(c *gin.Context) {
	me, _ := middleware.CurrentUser(c)

	var form postForm
	in, errs := bindPostForm(c, &form)
	if errs != nil {
		ctl.renderPostForm(c, http.StatusBadRequest, form, errs, false)
		return
	}
	if _, err := ctl.pc.CreatePost(c.Request.Context(), me.UserID, in); err != nil {
		if errs := postFormErrors(err); errs != nil {
			ctl.renderPostForm(c, http.StatusBadRequest, form, errs, false)
			return
		}
		abortWithError(c, err)
		return
	}
	c.Redirect(http.StatusFound, profileURL(me.Username))
}

// EditForm shows the filled post form to its author. Everyone else is sent
// back to the post.
func (ctl *PostController) EditForm(c *gin.Context) {
	post, ok := ctl.ownPost(c)
	if !ok {
		return
	}
	form := postForm{Text: post.Text}
	if post.Group != nil {
		form.Group = post.Group.ID
	}
	ctl.renderPostForm(c, http.StatusOK, form, nil, true)
}

func (ctl *PostController) EditPost(c *gin.Context) {
	me, _ := middleware.CurrentUser(c)
	post, ok := ctl.ownPost(c)
	if !ok {
		return
	}

	var form postForm
	in, errs := bindPostForm(c, &form)
	if errs != nil {
		ctl.renderPostForm(c, http.StatusBadRequest, form, errs, true)
		return
	}
	_, err := ctl.pc.UpdatePost(c.Request.Context(), me.UserID, post.ID, in)
	switch {
	case err == nil, errors.Is(err, postapp.ErrNotAuthor):
		c.Redirect(http.StatusFound, "/posts/"+post.ID)
	case postFormErrors(err) != nil:
		ctl.renderPostForm(c, http.StatusBadRequest, form, postFormErrors(err), true)
	default:
		abortWithError(c, err)
	}
}

func (ctl *PostController) DeletePost(c *gin.Context) {
	me, _ := middleware.CurrentUser(c)
	id := c.Param("id")
	err := ctl.pc.DeletePost(c.Request.Context(), me.UserID, id)
	switch {
	case err == nil:
		c.Redirect(http.StatusFound, profileURL(me.Username))
	case errors.Is(err, postapp.ErrNotAuthor):
		c.Redirect(http.StatusFound, "/posts/"+id)
	default:
		abortWithError(c, err)
	}
}

// ownPost loads the post named in the path and checks that the current user
// wrote it. It has already answered the request when ok is false.
func (ctl *PostController) ownPost(c *gin.Context) (*postPort.PostDTO, bool) {
	me, _ := middleware.CurrentUser(c)
	post, err := ctl.pc.GetPost(c.Request.Context(), c.Param("id"))
	if err != nil {
		abortWithError(c, err)
		return nil, false
	}
	if post.Author == nil || post.Author.ID != me.UserID {
		c.Redirect(http.StatusFound, "/posts/"+post.ID)
		return nil, false
	}
	return post, true
}

func (ctl *PostController) renderPostForm(c *gin.Context, status int, form postForm, errs map[string]string, isEdit bool) {
	groups, err := ctl.gc.ListGroups(c.Request.Context())
	if err != nil {
		abortWithError(c, err)
		return
	}
	if groups == nil {
		groups = []*groupPort.GroupDTO{}
	}
	c.JSON(status, gin.H{
		"form": formView{
			Values: map[string]string{"text": form.Text, "group": form.Group},
			Errors: errs,
		},
		"groups":  groups,
		"is_edit": isEdit,
	})
}

func bindPostForm(c *gin.Context, form *postForm) (postapp.PostInput, map[string]string) {
	if err := c.ShouldBind(form); err != nil {
		return postapp.PostInput{}, formErrors(err)
	}
	in := postapp.PostInput{Text: form.Text, GroupID: form.Group}
	file, err := c.FormFile("image")
	switch {
	case err == nil:
		in.Image = file
	case !errors.Is(err, http.ErrMissingFile) && !errors.Is(err, http.ErrNotMultipart):
		return postapp.PostInput{}, map[string]string{"image": msgInvalidImage}
	}
	return in, nil
}

// postFormErrors maps validation failures reported by the post service to
// form field messages. It returns nil for any other error.
func postFormErrors(err error) map[string]string {
	switch {
	case errors.Is(err, postapp.ErrEmptyText):
		return map[string]string{"text": msgRequired}
	case errors.Is(err, postapp.ErrGroupNotFound):
		return map[string]string{"group": msgInvalidGroup}
	case errors.Is(err, mediaPort.ErrNotImage):
		return map[string]string{"image": msgInvalidImage}
	}
	return nil
}
