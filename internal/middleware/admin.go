package middleware

import (
	"net/http" // HTTP status codes

	"github.com/gin-gonic/gin" // Gin web framework
	"gorm.io/gorm"             // GORM ORM library
)

// RequireAdmin validates the bearer token, resolves the user and enforces the admin role
func RequireAdmin(db *gorm.DB, secret string) gin.HandlerFunc {
	return func(c *gin.Context) {
		user, err := resolveUser(c, db, secret) // Shared token resolution
		if err != nil {
			// Missing/invalid/expired token or unknown subject
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"message": "Token tidak valid"})
			return
		}
		// Check if user role is admin
		if user.Role != "admin" {
			// If not admin, abort with forbidden status
			c.AbortWithStatusJSON(http.StatusForbidden, gin.H{"message": "Akses ditolak. Hanya admin yang diizinkan."})
			return
		}
		c.Set(CurrentUserKey, user) // Attach the resolved user to the context
		c.Next()                    // Proceed to the next handler
	}
}
