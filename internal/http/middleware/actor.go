package middleware

import (
	"github.com/gin-gonic/gin"

	"github.com/featuredesk/backend/internal/models"
	"github.com/featuredesk/backend/internal/service"
)

const (
	ActorHeader = "X-User-Id"
	actorKey    = "actor"
)

// Actor resolves the acting user from the X-User-Id header against the user
// directory. Missing or unknown ids leave the actor unset; handlers that
// mutate state reject unauthenticated calls themselves.
func Actor(store service.Store) gin.HandlerFunc {
	return func(c *gin.Context) {
		id := c.GetHeader(ActorHeader)
		if id != "" {
			if user, err := store.GetUser(c.Request.Context(), id); err == nil {
				c.Set(actorKey, &user)
			}
		}
		c.Next()
	}
}

// ActorFrom returns the resolved actor, or nil when the call is anonymous.
func ActorFrom(c *gin.Context) *models.User {
	v, ok := c.Get(actorKey)
	if !ok {
		return nil
	}
	user, _ := v.(*models.User)
	return user
}
