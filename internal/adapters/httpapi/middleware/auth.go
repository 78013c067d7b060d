package middleware

import (
	"context"
	"net/http"
	"net/url"
	"strings"
	userPort "yatube/internal/ports/user"

	"github.com/gin-gonic/gin"
)

const (
	ContextUserID   = "userID"
	ContextUsername = "username"
	TokenCookie     = "token"
)

// Authenticator resolves a login token to a user.
type Authenticator interface {
	Identify(ctx context.Context, token string) (*userPort.Identity, error)
}

// JWTAuthMiddleware puts the user named by a valid token into the context.
// Requests without a valid token, or whose account is gone, continue anonymously.
func JWTAuthMiddleware(auth Authenticator) gin.HandlerFunc {
	return func(c *gin.Context) {
		if token := tokenFromRequest(c); token != "" {
			if id, err := auth.Identify(c.Request.Context(), token); err == nil {
				c.Set(ContextUserID, id.UserID)
				c.Set(ContextUsername, id.Username)
			}
		}
		c.Next()
	}
}

// LoginRequired sends anonymous users to loginURL with a next parameter
// pointing back to the requested page.
func LoginRequired(loginURL string) gin.HandlerFunc {
	return func(c *gin.Context) {
		if _, ok := CurrentUser(c); ok {
			c.Next()
			return
		}
		q := url.Values{"next": {c.Request.URL.RequestURI()}}
		c.Redirect(http.StatusFound, loginURL+"?"+q.Encode())
		c.Abort()
	}
}

// CurrentUser returns the signed-in user, if any.
func CurrentUser(c *gin.Context) (*userPort.Identity, bool) {
	id := c.GetString(ContextUserID)
	if id == "" {
		return nil, false
	}
	return &userPort.Identity{UserID: id, Username: c.GetString(ContextUsername)}, true
}

func tokenFromRequest(c *gin.Context) string {
	if h := c.GetHeader("Authorization"); strings.HasPrefix(h, "Bearer ") {
		return strings.TrimPrefix(h, "Bearer ")
	}
	if token, err := c.Cookie(TokenCookie); err == nil {
		return token
	}
	return ""
}
