package middleware

import (
	"github.com/gin-gonic/gin" // Gin web framework
	"gorm.io/gorm"             // GORM ORM library
)

// OptionalUser resolves the bearer token when present but never rejects the request.
// Anonymous, invalid and expired tokens all proceed without a user attached.
func OptionalUser(db *gorm.DB, secret string) gin.HandlerFunc {
	return func(c *gin.Context) {
		if user, err := resolveUser(c, db, secret); err == nil {
			c.Set(CurrentUserKey, user) // Attach the resolved user to the context
		}
		c.Next() // Always proceed to the next handler
	}
}
