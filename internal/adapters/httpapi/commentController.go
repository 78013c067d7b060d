package httpapi

import (
	"errors"
	"net/http"
	"yatube/internal/adapters/httpapi/middleware"
	"yatube/internal/config"
	commentapp "yatube/internal/core/comment/service"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

type CommentController struct {
	cc CommentUseCase
	pc PostUseCase
}

func NewCommentController(cc CommentUseCase, pc PostUseCase) *CommentController {
	return &CommentController{cc: cc, pc: pc}
}

// AddComment saves a valid comment. The user always lands back on the post.
func (ctl *CommentController) AddComment(c *gin.Context) {
	me, _ := middleware.CurrentUser(c)
	ctx := c.Request.Context()
	post, err := ctl.pc.GetPost(ctx, c.Param("id"))
	if err != nil {
		abortWithError(c, err)
		return
	}

	var form commentForm
	if err := c.ShouldBind(&form); err == nil {
		_, err = ctl.cc.AddComment(ctx, me.UserID, post.ID, form.Text)
		if err != nil && !errors.Is(err, commentapp.ErrEmptyText) {
			abortWithError(c, err)
			return
		}
	} else {
		config.Logger.Debug("Comment form rejected", zap.String("postID", post.ID), zap.Error(err))
	}
	c.Redirect(http.StatusFound, "/posts/"+post.ID)
}
