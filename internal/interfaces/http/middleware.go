package http

import (
	"strings"

	"github.com/gin-gonic/gin"

	"github.com/garyjia/surat-menyurat/internal/application/service"
	"github.com/garyjia/surat-menyurat/internal/domain/apperr"
	"github.com/garyjia/surat-menyurat/internal/domain/entity"
)

const actorKey = "actor"

var guestActor = entity.Actor{ID: "guest", Name: "Guest", Role: entity.RoleViewer}

// authMiddleware resolves the Bearer token, a Google ID token or a
// password JWT, into an actor. With bypass set, requests without a token
// continue as the guest viewer.
func authMiddleware(auth service.AuthService, bypass bool) gin.HandlerFunc {
	return func(c *gin.Context) {
		header := c.GetHeader("Authorization")
		token, ok := strings.CutPrefix(header, "Bearer ")
		token = strings.TrimSpace(token)

		if !ok || token == "" {
			if bypass {
				c.Set(actorKey, guestActor)
				c.Next()
				return
			}
			abortWithError(c, apperr.Unauthenticatedf("Unauthorized"))
			return
		}

		actor, err := auth.Authenticate(c.Request.Context(), token)
		if err != nil {
			abortWithError(c, err)
			return
		}

		c.Set(actorKey, actor)
		c.Next()
	}
}

// actorFrom returns the authenticated actor placed by authMiddleware
func actorFrom(c *gin.Context) entity.Actor {
	if v, ok := c.Get(actorKey); ok {
		if actor, ok := v.(entity.Actor); ok {
			return actor
		}
	}
	return entity.Actor{}
}
