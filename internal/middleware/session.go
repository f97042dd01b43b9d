package middleware

import (
	"context"
	"strings"

	"github.com/gin-gonic/gin"

	"github.com/lkendi/Task-Management-System/internal/access"
	"github.com/lkendi/Task-Management-System/internal/entities"
	"github.com/lkendi/Task-Management-System/internal/jwt"
	"github.com/lkendi/Task-Management-System/internal/logging"
)

// SessionCookie is the cookie carrying the session token.
const SessionCookie = "session"

const actorKey = "actor"

// TokenVerifier checks a session token.
type TokenVerifier interface {
	ValidateToken(token string) (*jwt.Claims, error)
}

// UserFinder loads the user behind a session.
type UserFinder interface {
	FindByID(ctx context.Context, id int64) (*entities.User, error)
}

// Session resolves the request's actor from the session cookie or a Bearer
// token. The user row is reloaded on every request so role changes apply
// immediately. It never rejects; handlers consult the access gate.
func Session(tokens TokenVerifier, users UserFinder) gin.HandlerFunc {
	return func(c *gin.Context) {
		token := sessionToken(c)
		if token == "" {
			c.Next()
			return
		}

		claims, err := tokens.ValidateToken(token)
		if err != nil {
			logging.Logger.WithError(err).Debug("Ignoring invalid session token")
			c.Next()
			return
		}

		user, err := users.FindByID(c.Request.Context(), claims.UserID)
		if err != nil {
			logging.Logger.WithError(err).WithField("user_id", claims.UserID).Debug("Session user unavailable")
			c.Next()
			return
		}

		c.Set(actorKey, access.NewActor(user))
		c.Next()
	}
}

// ActorFrom returns the actor resolved by Session, or nil.
func ActorFrom(c *gin.Context) *access.Actor {
	v, ok := c.Get(actorKey)
	if !ok {
		return nil
	}
	actor, _ := v.(*access.Actor)
	return actor
}

func sessionToken(c *gin.Context) string {
	if header := c.GetHeader("Authorization"); header != "" {
		if token, ok := strings.CutPrefix(header, "Bearer "); ok {
			return strings.TrimSpace(token)
		}
	}
	if cookie, err := c.Cookie(SessionCookie); err == nil {
		return cookie
	}
	return ""
}
