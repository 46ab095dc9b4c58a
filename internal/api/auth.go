package api

import (
	"net/http" // HTTP status codes

	"barangapp/internal/domain" // Importing domain models
	"barangapp/internal/utils"  // Utility functions

	"github.com/gin-gonic/gin"   // Gin web framework
	"github.com/sirupsen/logrus" // Logging library
	"golang.org/x/crypto/bcrypt" // Password hashing
	"gorm.io/gorm"               // GORM ORM library
)

// Request struct for registration
type RegisterRequest struct {
	Email    string `json:"email"`    // Email address
	Password string `json:"password"` // Plain-text password
	Role     string `json:"role"`     // Optional role, defaults to user
}

// Request struct for login
type LoginRequest struct {
	Email    string `json:"email"`    // Email address
	Password string `json:"password"` // Plain-text password
}

// UserSummary is the public view of a user, never including the password hash
type UserSummary struct {
	ID    uint   `json:"id"`    // User ID
	Email string `json:"email"` // Email address
	Role  string `json:"role"`  // User role
}

// RegisterHandler registers a new user with a hashed password
func RegisterHandler(db *gorm.DB) gin.HandlerFunc {
	return func(c *gin.Context) {
		var req RegisterRequest // Bind JSON request to struct
		if err := c.ShouldBindJSON(&req); err != nil {
			// If binding fails, return bad request
			c.JSON(http.StatusBadRequest, gin.H{"message": "Email dan password wajib diisi"})
			return
		}
		// Email and password are mandatory
		if req.Email == "" || req.Password == "" {
			c.JSON(http.StatusBadRequest, gin.H{"message": "Email dan password wajib diisi"})
			return
		}
		// Enforce minimum password length
		if len(req.Password) < 6 {
			c.JSON(http.StatusBadRequest, gin.H{"message": "Password minimal 6 karakter"})
			return
		}
		// Reject duplicate registrations
		var existing domain.User
		if err := db.Where("email = ?", req.Email).First(&existing).Error; err == nil {
			c.JSON(http.StatusBadRequest, gin.H{"message": "Email sudah terdaftar"})
			return
		}
		// Hash the password with a randomized salt
		hash, err := bcrypt.GenerateFromPassword([]byte(req.Password), bcrypt.DefaultCost)
		if err != nil {
			// If hashing fails, return internal server error
			c.JSON(http.StatusInternalServerError, gin.H{"message": "Gagal memproses password"})
			return
		}
		// Role defaults to user when unspecified
		role := req.Role
		if role == "" {
			role = "user"
		}
		user := domain.User{Email: req.Email, Password: string(hash), Role: role}
		// Attempt to create the user in the database
		if err := db.Create(&user).Error; err != nil {
			logrus.WithField("email", req.Email).Errorf("user creation failed: %v", err)
			// Unique index may still trip under concurrent registration
			c.JSON(http.StatusBadRequest, gin.H{"message": "Email sudah terdaftar"})
			return
		}
		// Return the public summary only
		c.JSON(http.StatusCreated, gin.H{
			"message": "Registrasi berhasil",
			"user":    UserSummary{ID: user.ID, Email: user.Email, Role: user.Role},
		})
	}
}

// LoginHandler authenticates a user and returns a JWT token
func LoginHandler(db *gorm.DB, jwtSecret string) gin.HandlerFunc {
	return func(c *gin.Context) {
		var req LoginRequest // Bind JSON request to struct
		if err := c.ShouldBindJSON(&req); err != nil {
			// If binding fails, return bad request
			c.JSON(http.StatusBadRequest, gin.H{"message": "Email dan password wajib diisi"})
			return
		}
		// Email and password are mandatory
		if req.Email == "" || req.Password == "" {
			c.JSON(http.StatusBadRequest, gin.H{"message": "Email dan password wajib diisi"})
			return
		}
		var user domain.User // Fetch user from database
		if err := db.Where("email = ?", req.Email).First(&user).Error; err != nil {
			// Unknown email, identical response to a wrong password
			c.JSON(http.StatusBadRequest, gin.H{"message": "Email atau password salah"})
			return
		}
		// Compare provided password with stored hash
		if err := bcrypt.CompareHashAndPassword([]byte(user.Password), []byte(req.Password)); err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"message": "Email atau password salah"})
			return
		}
		// Generate JWT token
		token, err := utils.GenerateJWT(user.ID, jwtSecret)
		if err != nil {
			// If token generation fails, return internal server error
			c.JSON(http.StatusInternalServerError, gin.H{"message": "Gagal membuat token"})
			return
		}
		// Return the token alongside the public user summary
		c.JSON(http.StatusOK, gin.H{
			"message": "Login berhasil",
			"token":   token,
			"user":    UserSummary{ID: user.ID, Email: user.Email, Role: user.Role},
		})
	}
}
