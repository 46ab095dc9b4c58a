package utils

import (
	"errors"         // Sentinel errors for upload validation
	"mime/multipart" // Multipart file headers
	"os"             // Directory creation
	"path/filepath"  // Path and extension handling
	"strconv"        // Timestamp formatting
	"strings"        // String manipulation
	"time"           // Timestamps for filenames

	"github.com/gin-gonic/gin" // Gin web framework
	"github.com/google/uuid"   // Random suffix for filenames
)

// MaxImageSize is the maximum accepted image size (5 MiB)
const MaxImageSize = 5 << 20

// Upload validation errors
var (
	ErrImageType = errors.New("Hanya file gambar yang diizinkan") // Unsupported extension or content type
	ErrImageSize = errors.New("Ukuran gambar maksimal 5MB")       // File exceeds MaxImageSize
)

// Allowed image extensions
var allowedImageExts = map[string]bool{
	".jpeg": true,
	".jpg":  true,
	".png":  true,
	".gif":  true,
	".webp": true,
}

// Allowed declared content types
var allowedImageMimes = map[string]bool{
	"image/jpeg": true,
	"image/jpg":  true,
	"image/png":  true,
	"image/gif":  true,
	"image/webp": true,
}

// ValidateImage checks the extension, declared content type and size of an uploaded image
func ValidateImage(file *multipart.FileHeader) error {
	ext := strings.ToLower(filepath.Ext(file.Filename)) // File extension, lowercased
	// Both the extension and the declared content type must be an accepted image type
	if !allowedImageExts[ext] || !allowedImageMimes[file.Header.Get("Content-Type")] {
		return ErrImageType
	}
	// Reject files over the size limit
	if file.Size > MaxImageSize {
		return ErrImageSize
	}
	return nil
}

// SaveImage stores a validated image under dir with a unique name and returns its public path
func SaveImage(c *gin.Context, file *multipart.FileHeader, dir string) (string, error) {
	// Create the upload directory if it does not exist
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return "", err
	}
	ext := strings.ToLower(filepath.Ext(file.Filename)) // Preserve the original extension
	// Timestamp plus random suffix so concurrent uploads cannot collide
	name := "barang-" + strconv.FormatInt(time.Now().UnixMilli(), 10) + "-" + uuid.New().String()[:8] + ext
	// Save the uploaded file to disk
	if err := c.SaveUploadedFile(file, filepath.Join(dir, name)); err != nil {
		return "", err
	}
	return "/uploads/" + name, nil // Publicly servable path stored on the item
}
