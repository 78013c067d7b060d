package httpapi

import (
	"errors"
	"net/http"
	"time"
	"yatube/internal/adapters/httpapi/middleware"
	userapp "yatube/internal/core/user/service"

	"github.com/gin-gonic/gin"
)

type UserController struct{ uc UserUseCase }

func NewUserController(uc UserUseCase) *UserController { return &UserController{uc: uc} }

func (ctl *UserController) LoginForm(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{
		"form": formView{Values: map[string]string{"username": "", "next": c.Query("next")}},
	})
}

// LoginUser issues a token cookie. Browsers coming from a login redirect are
// sent on to next, other clients get the token itself.
func (ctl *UserController) LoginUser(c *gin.Context) {
	var req loginForm
	if err := c.ShouldBind(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"form": formView{
			Values: map[string]string{"username": req.Username, "next": req.Next},
			Errors: formErrors(err),
		}})
		return
	}
	res, err := ctl.uc.LoginUser(c.Request.Context(), req.Username, req.Password)
	if errors.Is(err, userapp.ErrInvalidCredentials) {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "invalid credentials"})
		return
	}
	if err != nil {
		abortWithError(c, err)
		return
	}

	maxAge := int(time.Until(time.Unix(res.ExpiresAt, 0)).Seconds())
	c.SetSameSite(http.SameSiteLaxMode)
	c.SetCookie(middleware.TokenCookie, res.Token, maxAge, "/", "", false, true)
	if safeNext(req.Next) {
		c.Redirect(http.StatusFound, req.Next)
		return
	}
	c.JSON(http.StatusOK, res)
}

func (ctl *UserController) RegisterUser(c *gin.Context) {
	var req signupForm
	if err := c.ShouldBind(&req); err != nil {
		renderSignupForm(c, req, formErrors(err))
		return
	}
	u, err := ctl.uc.RegisterUser(c.Request.Context(), req.Name, req.Family, req.Username, req.Email, req.Password)
	switch {
	case errors.Is(err, userapp.ErrInvalidUsername):
		renderSignupForm(c, req, map[string]string{"username": msgInvalidUsername})
		return
	case errors.Is(err, userapp.ErrUserExists):
		c.JSON(http.StatusConflict, gin.H{"error": "username or email already taken"})
		return
	case err != nil:
		abortWithError(c, err)
		return
	}
	c.JSON(http.StatusCreated, u)
}

func renderSignupForm(c *gin.Context, req signupForm, errs map[string]string) {
	c.JSON(http.StatusBadRequest, gin.H{"form": formView{
		Values: map[string]string{
			"name":     req.Name,
			"family":   req.Family,
			"username": req.Username,
			"email":    req.Email,
		},
		Errors: errs,
	}})
}

func (ctl *UserController) Logout(c *gin.Context) {
	c.SetCookie(middleware.TokenCookie, "", -1, "/", "", false, true)
	c.Redirect(http.StatusFound, "/")
}
