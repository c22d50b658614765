package middleware

import (
	"strings"

	"github.com/gin-gonic/gin"

	"github.com/noah-isme/thesis-defense-api/internal/models"
	"github.com/noah-isme/thesis-defense-api/internal/service"
)

// ContextActorKey is the gin context key storing the acting staff claims.
const ContextActorKey = "currentActor"

// Actor attaches the acting staff identity from the Authorization header
// when a valid token is present. Requests without one proceed as the
// anonymous actor; mutations are stamped accordingly.
func Actor(tokens *service.TokenService) gin.HandlerFunc {
	return func(c *gin.Context) {
		header := c.GetHeader("Authorization")
		if header == "" || tokens == nil {
			c.Next()
			return
		}

		parts := strings.SplitN(header, " ", 2)
		if len(parts) != 2 || !strings.EqualFold(parts[0], "Bearer") {
			c.Next()
			return
		}

		claims, err := tokens.ValidateToken(parts[1])
		if err != nil {
			c.Next()
			return
		}

		c.Set(ContextActorKey, claims)
		c.Next()
	}
}

// ActorIdentity resolves the display identity of the current actor.
func ActorIdentity(c *gin.Context) string {
	value, ok := c.Get(ContextActorKey)
	if !ok {
		return models.AnonymousActor
	}
	claims, ok := value.(*models.ActorClaims)
	if !ok {
		return models.AnonymousActor
	}
	return claims.Identity()
}
