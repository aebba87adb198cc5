package middleware

import "github.com/gin-gonic/gin"

const ActorEmailHeader = "X-User-Email"
const actorEmailKey = "actor_email"

// ActorEmail captures the caller identity resolved by the auth layer in front
// of this service. The router trusts the header as a pass-through concern.
func ActorEmail() gin.HandlerFunc {
	return func(c *gin.Context) {
		if email := c.GetHeader(ActorEmailHeader); email != "" {
			c.Set(actorEmailKey, email)
		}
		c.Next()
	}
}

// GetActorEmail returns the caller email for the request, or "" when the
// header was absent.
func GetActorEmail(c *gin.Context) string {
	if email, exists := c.Get(actorEmailKey); exists {
		return email.(string)
	}
	return ""
}
