package router

import (
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"

	"github.com/adiretotes/store-api/internal/cart"
	"github.com/adiretotes/store-api/pkg/global"
	"github.com/adiretotes/store-api/pkg/models"
)

const (
	ctxSession = "session"
	ctxOwner   = "owner"
)

func bearerToken(c *gin.Context) string {
	header := c.GetHeader("Authorization")
	if after, ok := strings.CutPrefix(header, "Bearer "); ok {
		return after
	}
	return ""
}

// authenticate resolves the bearer token to a session, aborting the
// request with 401 when that fails.
func (a *API) authenticate(c *gin.Context) (*models.Session, bool) {
	token := bearerToken(c)
	if token == "" {
		c.JSON(http.StatusUnauthorized, global.ErrorResponse("Authentication required", nil))
		c.Abort()
		return nil, false
	}
	session, err := a.Sessions.Get(c.Request.Context(), token)
	if err != nil {
		c.JSON(http.StatusUnauthorized, global.ErrorResponse("Invalid or expired session", nil))
		c.Abort()
		return nil, false
	}
	return session, true
}

func (a *API) RequireUser() gin.HandlerFunc {
	return func(c *gin.Context) {
		session, ok := a.authenticate(c)
		if !ok {
			return
		}
		c.Set(ctxSession, session)
		c.Next()
	}
}

// RequireAdmin additionally checks the admin flag stored on the
// session.
func (a *API) RequireAdmin() gin.HandlerFunc {
	return func(c *gin.Context) {
		session, ok := a.authenticate(c)
		if !ok {
			return
		}
		if !session.IsAdmin {
			c.JSON(http.StatusForbidden, global.ErrorResponse("Admin access required", nil))
			c.Abort()
			return
		}
		c.Set(ctxSession, session)
		c.Next()
	}
}

// ResolveOwner identifies who a cart belongs to: a logged-in user via
// bearer token, or a guest via the X-Session-ID header. Requests that
// present neither are rejected.
func (a *API) ResolveOwner() gin.HandlerFunc {
	return func(c *gin.Context) {
		if token := bearerToken(c); token != "" {
			session, err := a.Sessions.Get(c.Request.Context(), token)
			if err != nil {
				c.JSON(http.StatusUnauthorized, global.ErrorResponse("Invalid or expired session", nil))
				c.Abort()
				return
			}
			c.Set(ctxSession, session)
			c.Set(ctxOwner, cart.Owner{ID: session.UserID})
			c.Next()
			return
		}

		if sessionID := c.GetHeader("X-Session-ID"); sessionID != "" {
			c.Set(ctxOwner, cart.Owner{ID: sessionID, Guest: true})
			c.Next()
			return
		}

		c.JSON(http.StatusBadRequest, global.ErrorResponse("Session required", []global.ValidationError{
			{Field: "X-Session-ID", Message: "Provide a bearer token or a guest session header", Code: "required"},
		}))
		c.Abort()
	}
}

func currentSession(c *gin.Context) *models.Session {
	return c.MustGet(ctxSession).(*models.Session)
}

func currentOwner(c *gin.Context) cart.Owner {
	return c.MustGet(ctxOwner).(cart.Owner)
}
