package api_test

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io"
	"mime/multipart"
	"net/http/httptest"
	"net/textproto"
	"sync/atomic"
	"testing"

	"barangapp/internal/api"
	"barangapp/internal/domain"
	"barangapp/internal/middleware"
	"barangapp/internal/utils"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
)

const testJWTSecret = "test_jwt_secret"

var dbCounter int64

// setupTestEnv builds a Gin router over a fresh in-memory SQLite database,
// wired exactly like the server binary but without redis caching.
func setupTestEnv(t *testing.T) (*gin.Engine, *gorm.DB, string) {
	t.Helper()
	gin.SetMode(gin.TestMode)

	// A uniquely named shared-cache database keeps tests isolated from each other
	dsn := fmt.Sprintf("file:testdb%d?mode=memory&cache=shared", atomic.AddInt64(&dbCounter, 1))
	db, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{})
	require.NoError(t, err, "failed to open in-memory database")

	err = db.AutoMigrate(&domain.User{}, &domain.Barang{})
	require.NoError(t, err, "failed to auto-migrate schema")

	uploadDir := t.TempDir()

	r := gin.New()
	authGroup := r.Group("/api/auth")
	authGroup.POST("/register", api.RegisterHandler(db))
	authGroup.POST("/login", api.LoginHandler(db, testJWTSecret))

	barangGroup := r.Group("/api/barang")
	barangGroup.GET("", middleware.OptionalUser(db, testJWTSecret), api.ListBarangHandler(db, nil))
	barangGroup.GET("/:id", middleware.OptionalUser(db, testJWTSecret), api.GetBarangHandler(db, nil))
	barangGroup.POST("", middleware.RequireAdmin(db, testJWTSecret), api.CreateBarangHandler(db, nil, uploadDir))
	barangGroup.PUT("/:id", middleware.RequireAdmin(db, testJWTSecret), api.UpdateBarangHandler(db, nil, uploadDir))
	barangGroup.DELETE("/:id", middleware.RequireAdmin(db, testJWTSecret), api.DeleteBarangHandler(db, nil))

	return r, db, uploadDir
}

// createUser inserts a user with a bcrypt-hashed password directly into the store
func createUser(t *testing.T, db *gorm.DB, email, password, role string) domain.User {
	t.Helper()
	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.MinCost)
	require.NoError(t, err)
	user := domain.User{Email: email, Password: string(hash), Role: role}
	require.NoError(t, db.Create(&user).Error)
	return user
}

// tokenFor mints a valid session token for the given user
func tokenFor(t *testing.T, user domain.User) string {
	t.Helper()
	token, err := utils.GenerateJWT(user.ID, testJWTSecret)
	require.NoError(t, err)
	return token
}

// doJSON performs a request with a JSON body against the test router
func doJSON(r *gin.Engine, method, path string, body any, token string) *httptest.ResponseRecorder {
	var reader io.Reader
	if body != nil {
		b, _ := json.Marshal(body)
		reader = bytes.NewReader(b)
	}
	req := httptest.NewRequest(method, path, reader)
	req.Header.Set("Content-Type", "application/json")
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	return w
}

// testImage describes an uploaded file in a multipart request
type testImage struct {
	filename    string
	contentType string
	content     []byte
}

// doMultipart performs a multipart form request with optional image against the test router
func doMultipart(t *testing.T, r *gin.Engine, method, path, token string, fields map[string]string, image *testImage) *httptest.ResponseRecorder {
	t.Helper()
	var buf bytes.Buffer
	writer := multipart.NewWriter(&buf)
	for k, v := range fields {
		require.NoError(t, writer.WriteField(k, v))
	}
	if image != nil {
		h := textproto.MIMEHeader{}
		h.Set("Content-Disposition", fmt.Sprintf(`form-data; name="image"; filename="%s"`, image.filename))
		h.Set("Content-Type", image.contentType)
		part, err := writer.CreatePart(h)
		require.NoError(t, err)
		_, err = part.Write(image.content)
		require.NoError(t, err)
	}
	require.NoError(t, writer.Close())

	req := httptest.NewRequest(method, path, &buf)
	req.Header.Set("Content-Type", writer.FormDataContentType())
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	return w
}

// decodeBody unmarshals a JSON response body into a generic map
func decodeBody(t *testing.T, w *httptest.ResponseRecorder) map[string]any {
	t.Helper()
	var body map[string]any
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &body))
	return body
}
