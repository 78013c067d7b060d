package httpapi

import (
	"errors"
	"net/http"
	"yatube/internal/adapters/httpapi/middleware"
	followapp "yatube/internal/core/follow/service"

	"github.com/gin-gonic/gin"
)

type FollowController struct {
	fc FollowUseCase
	pc PostUseCase
}

func NewFollowController(fc FollowUseCase, pc PostUseCase) *FollowController {
	return &FollowController{fc: fc, pc: pc}
}

// FollowIndex lists the posts of every author the current user follows.
func (ctl *FollowController) FollowIndex(c *gin.Context) {
	me, _ := middleware.CurrentUser(c)
	page, err := ctl.pc.Feed(c.Request.Context(), me.UserID, c.Query("page"))
	if err != nil {
		abortWithError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"page_obj": page})
}

func (ctl *FollowController) ProfileFollow(c *gin.Context) {
	me, _ := middleware.CurrentUser(c)
	username := c.Param("username")
	err := ctl.fc.FollowAuthor(c.Request.Context(), me.UserID, username)
	if err != nil && !errors.Is(err, followapp.ErrCannotFollowSelf) {
		abortWithError(c, err)
		return
	}
	c.Redirect(http.StatusFound, profileURL(username))
}

func (ctl *FollowController) ProfileUnfollow(c *gin.Context) {
	me, _ := middleware.CurrentUser(c)
	username := c.Param("username")
	if err := ctl.fc.UnfollowAuthor(c.Request.Context(), me.UserID, username); err != nil {
		abortWithError(c, err)
		return
	}
	c.Redirect(http.StatusFound, profileURL(username))
}
