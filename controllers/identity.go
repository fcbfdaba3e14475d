// controllers/identity.go
package controllers

import (
	"instaclean-backend/policy"
	"instaclean-backend/services"
	"instaclean-backend/utils"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
)

const (
	actorKey    = "actor"
	tokenCookie = "token"
)

// IdentityMiddleware resolves the caller once per request. Requests without a
// usable token continue as anonymous; the policy decides what they may do.
func IdentityMiddleware(auth *services.AuthService) gin.HandlerFunc {
	return func(c *gin.Context) {
		token := bearerToken(c)
		actor, err := auth.ResolveActor(c.Request.Context(), token)
		if err != nil {
			utils.Logger.WithError(err).Debug("Ignoring invalid token")
		}
		c.Set(actorKey, actor)
		c.Next()
	}
}

func bearerToken(c *gin.Context) string {
	if header := c.GetHeader("Authorization"); header != "" {
		if token, ok := strings.CutPrefix(header, "Bearer "); ok {
			return strings.TrimSpace(token)
		}
	}
	if cookie, err := c.Cookie(tokenCookie); err == nil {
		return cookie
	}
	return ""
}

func actorFrom(c *gin.Context) policy.Actor {
	if value, ok := c.Get(actorKey); ok {
		if actor, ok := value.(policy.Actor); ok {
			return actor
		}
	}
	return policy.Anonymous()
}

// parseID reads the :id path parameter, responding 400 when it is malformed.
func parseID(c *gin.Context, label string) (uuid.UUID, bool) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		utils.RespondWithError(c, http.StatusBadRequest, "Invalid "+label+" ID format")
		return uuid.Nil, false
	}
	return id, true
}
