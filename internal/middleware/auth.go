package middleware

import (
	"errors"  // Sentinel errors for token resolution
	"strings" // String manipulation

	"barangapp/internal/domain" // Importing domain models
	"barangapp/internal/utils"  // JWT utility functions

	"github.com/gin-gonic/gin" // Gin web framework
	"gorm.io/gorm"             // GORM ORM library
)

// CurrentUserKey is the context key under which the resolved user is stored
const CurrentUserKey = "currentUser"

// Token resolution errors
var (
	errNoToken      = errors.New("missing bearer token")
	errUserNotFound = errors.New("token subject not found")
)

// resolveUser extracts the bearer token, validates it and loads the subject user.
// Both middleware variants share this resolution and differ only in policy.
func resolveUser(c *gin.Context, db *gorm.DB, secret string) (*domain.User, error) {
	authHeader := c.GetHeader("Authorization") // Get Authorization header
	// Check if the Authorization header is present and properly formatted
	if authHeader == "" || !strings.HasPrefix(authHeader, "Bearer ") {
		return nil, errNoToken
	}
	tokenStr := strings.TrimPrefix(authHeader, "Bearer ") // Extract the token string
	claims, err := utils.ParseJWT(tokenStr, secret)       // Parse the JWT token
	if err != nil {
		return nil, err // Invalid or expired token
	}
	var user domain.User // Resolve the token subject against the database
	if err := db.First(&user, claims.UserID).Error; err != nil {
		return nil, errUserNotFound
	}
	return &user, nil
}

// CurrentUser returns the user attached to the request context, if any
func CurrentUser(c *gin.Context) *domain.User {
	if v, exists := c.Get(CurrentUserKey); exists {
		if user, ok := v.(*domain.User); ok {
			return user
		}
	}
	return nil // Anonymous request
}
