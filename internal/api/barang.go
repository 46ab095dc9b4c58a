package api

import (
	"context"  // Context for Redis operations
	"errors"   // Error matching for upload validation
	"net/http" // HTTP status codes
	"strconv"  // String conversion
	"strings"  // String manipulation
	"time"     // Time durations

	"barangapp/internal/domain"     // Importing domain models
	"barangapp/internal/middleware" // Resolved-user accessor
	"barangapp/internal/utils"      // Utility functions

	"github.com/gin-gonic/gin"     // Gin web framework
	"github.com/redis/go-redis/v9" // Redis client
	"github.com/sirupsen/logrus"   // Logging library
	"gorm.io/gorm"                 // GORM ORM library
)

// maxPriceSentinel is the default upper bound when maxPrice is unspecified
const maxPriceSentinel = 999999999

// listCacheTTL is how long list and detail responses stay cached
const listCacheTTL = 60 * time.Second

// Pagination metadata returned alongside list results
type Pagination struct {
	CurrentPage int   `json:"currentPage"` // Requested page
	TotalPages  int   `json:"totalPages"`  // ceil(totalItems / limit)
	TotalItems  int64 `json:"totalItems"`  // Total rows matching the filters
	Limit       int   `json:"limit"`       // Page size used
}

// ListResponse is the body of the list endpoint
type ListResponse struct {
	Data       []domain.Barang `json:"data"`       // Page of items
	Pagination Pagination      `json:"pagination"` // Pagination metadata
}

// invalidateBarangCache drops every cached barang response after a mutation
func invalidateBarangCache(rdb *redis.Client) {
	if rdb == nil {
		return // Caching disabled
	}
	if err := utils.DeleteCacheByPrefix(context.Background(), rdb, "barang:"); err != nil {
		logrus.Errorf("cache invalidation failed: %v", err) // Stale entries expire via TTL anyway
	}
}

// ListBarangHandler returns items filtered by name search and price range, paginated
func ListBarangHandler(db *gorm.DB, rdb *redis.Client) gin.HandlerFunc {
	return func(c *gin.Context) {
		search := c.DefaultQuery("search", "") // Case-insensitive substring filter on nama
		// Inclusive price range, defaulting to 0 and a large sentinel
		minPrice := 0.0
		if v, err := strconv.ParseFloat(c.Query("minPrice"), 64); err == nil {
			minPrice = v
		}
		maxPrice := float64(maxPriceSentinel)
		if v, err := strconv.ParseFloat(c.Query("maxPrice"), 64); err == nil {
			maxPrice = v
		}
		page := 1 // Default page number
		if v, err := strconv.Atoi(c.Query("page")); err == nil && v > 0 {
			page = v // Set page if valid
		}
		limit := 10 // Default page size
		if v, err := strconv.Atoi(c.Query("limit")); err == nil && v > 0 {
			limit = v // Set limit if valid
		}
		// Create a cache key based on the full filter set
		cacheKey := "barang:list:search=" + search +
			":min=" + strconv.FormatFloat(minPrice, 'f', -1, 64) +
			":max=" + strconv.FormatFloat(maxPrice, 'f', -1, 64) +
			":page=" + strconv.Itoa(page) + ":limit=" + strconv.Itoa(limit)
		ctx := context.Background() // Context for Redis operations
		// Try to get cached response
		if rdb != nil {
			var cached ListResponse
			if found, err := utils.GetCache(ctx, rdb, cacheKey, &cached); err == nil && found {
				c.JSON(http.StatusOK, cached) // Return cached response
				return
			}
		}
		// Filtered query shared by the count and the page fetch
		query := db.Model(&domain.Barang{}).
			Where("LOWER(nama) LIKE ?", "%"+strings.ToLower(search)+"%").
			Where("harga >= ? AND harga <= ?", minPrice, maxPrice)
		var total int64 // Total matching item count
		if err := query.Count(&total).Error; err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"message": "Gagal menghitung barang"})
			return
		}
		offset := (page - 1) * limit // Calculate offset for pagination
		items := []domain.Barang{}   // Page of items, most recent first
		if err := query.Order("created_at DESC").Offset(offset).Limit(limit).Find(&items).Error; err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"message": "Gagal mengambil barang"})
			return
		}
		totalPages := (int(total) + limit - 1) / limit // Calculate total pages
		resp := ListResponse{
			Data: items,
			Pagination: Pagination{
				CurrentPage: page,       // Current page
				TotalPages:  totalPages, // Total pages
				TotalItems:  total,      // Total matching items
				Limit:       limit,      // Page size used
			},
		}
		// Cache the response for future requests
		if rdb != nil {
			_ = utils.SetCache(ctx, rdb, cacheKey, resp, listCacheTTL)
		}
		c.JSON(http.StatusOK, resp) // Return the response
	}
}

// GetBarangHandler returns a single item by ID
func GetBarangHandler(db *gorm.DB, rdb *redis.Client) gin.HandlerFunc {
	return func(c *gin.Context) {
		id := c.Param("id")           // Item ID from the path
		cacheKey := "barang:id:" + id // Cache key for this item
		ctx := context.Background()   // Context for Redis operations
		// Try to get cached response
		if rdb != nil {
			var cached domain.Barang
			if found, err := utils.GetCache(ctx, rdb, cacheKey, &cached); err == nil && found {
				c.JSON(http.StatusOK, cached) // Return cached response
				return
			}
		}
		var barang domain.Barang // Fetch item from database
		if err := db.First(&barang, "id = ?", id).Error; err != nil {
			c.JSON(http.StatusNotFound, gin.H{"message": "Barang tidak ditemukan"})
			return
		}
		// Cache the response for future requests
		if rdb != nil {
			_ = utils.SetCache(ctx, rdb, cacheKey, barang, listCacheTTL)
		}
		c.JSON(http.StatusOK, barang) // Return the item
	}
}

// CreateBarangHandler creates a new item from a multipart form, with an optional image
func CreateBarangHandler(db *gorm.DB, rdb *redis.Client, uploadDir string) gin.HandlerFunc {
	return func(c *gin.Context) {
		nama := c.PostForm("nama")           // Item name, mandatory
		hargaStr := c.PostForm("harga")      // Item price, mandatory
		deskripsi := c.PostForm("deskripsi") // Optional description
		// Name and price are mandatory
		if nama == "" || hargaStr == "" {
			c.JSON(http.StatusBadRequest, gin.H{"message": "Nama dan harga wajib diisi"})
			return
		}
		// Price must be a positive number
		harga, err := strconv.ParseFloat(hargaStr, 64)
		if err != nil || harga <= 0 {
			c.JSON(http.StatusBadRequest, gin.H{"message": "Harga harus berupa angka positif"})
			return
		}
		stok := 0 // Stock defaults to 0 when absent or non-numeric
		if v, convErr := strconv.Atoi(c.PostForm("stok")); convErr == nil {
			stok = v
		}
		// Handle the optional image upload
		var imageURL *string
		if file, fileErr := c.FormFile("image"); fileErr == nil {
			if valErr := utils.ValidateImage(file); valErr != nil {
				c.JSON(uploadErrorStatus(valErr), gin.H{"message": valErr.Error()})
				return
			}
			path, saveErr := utils.SaveImage(c, file, uploadDir)
			if saveErr != nil {
				c.JSON(http.StatusInternalServerError, gin.H{"message": "Gagal menyimpan gambar"})
				return
			}
			imageURL = &path // Attach the stored public path
		}
		barang := domain.Barang{
			Nama:      nama,      // Item name
			Harga:     harga,     // Item price
			Deskripsi: deskripsi, // Description
			Stok:      stok,      // Stock quantity
			ImageURL:  imageURL,  // Image path, nil when no upload
		}
		// Attempt to create the item in the database
		if err := db.Create(&barang).Error; err != nil {
			logrus.WithField("nama", nama).Errorf("barang creation failed: %v", err)
			c.JSON(http.StatusInternalServerError, gin.H{"message": "Gagal menambahkan barang"})
			return
		}
		// Log the mutation with context
		logrus.WithFields(logrus.Fields{
			"barang_id": barang.ID, // New item ID
			"nama":      nama,      // Item name
			"admin":     adminEmail(c),
		}).Info("Barang created")
		invalidateBarangCache(rdb) // Drop cached list and detail responses
		c.JSON(http.StatusCreated, gin.H{"message": "Barang berhasil ditambahkan", "barang": barang})
	}
}

// UpdateBarangHandler updates an existing item, replacing the image only when a new one is supplied
func UpdateBarangHandler(db *gorm.DB, rdb *redis.Client, uploadDir string) gin.HandlerFunc {
	return func(c *gin.Context) {
		var barang domain.Barang // Fetch existing item from database
		if err := db.First(&barang, "id = ?", c.Param("id")).Error; err != nil {
			c.JSON(http.StatusNotFound, gin.H{"message": "Barang tidak ditemukan"})
			return
		}
		nama := c.PostForm("nama")           // Item name, mandatory
		hargaStr := c.PostForm("harga")      // Item price, mandatory
		deskripsi := c.PostForm("deskripsi") // Optional description
		// Name and price are mandatory
		if nama == "" || hargaStr == "" {
			c.JSON(http.StatusBadRequest, gin.H{"message": "Nama dan harga wajib diisi"})
			return
		}
		// Price must be a positive number
		harga, err := strconv.ParseFloat(hargaStr, 64)
		if err != nil || harga <= 0 {
			c.JSON(http.StatusBadRequest, gin.H{"message": "Harga harus berupa angka positif"})
			return
		}
		stok := 0 // Stock defaults to 0 when absent or non-numeric
		if v, convErr := strconv.Atoi(c.PostForm("stok")); convErr == nil {
			stok = v
		}
		// Updated columns; image_url is included only when a new file is uploaded,
		// leaving the previous reference untouched otherwise
		updates := map[string]any{
			"nama":      nama,      // Item name
			"harga":     harga,     // Item price
			"deskripsi": deskripsi, // Description
			"stok":      stok,      // Stock quantity
		}
		if file, fileErr := c.FormFile("image"); fileErr == nil {
			if valErr := utils.ValidateImage(file); valErr != nil {
				c.JSON(uploadErrorStatus(valErr), gin.H{"message": valErr.Error()})
				return
			}
			path, saveErr := utils.SaveImage(c, file, uploadDir)
			if saveErr != nil {
				c.JSON(http.StatusInternalServerError, gin.H{"message": "Gagal menyimpan gambar"})
				return
			}
			// The old file is not removed; only the reference is replaced
			updates["image_url"] = path
		}
		// Apply the update in the database
		if err := db.Model(&barang).Updates(updates).Error; err != nil {
			logrus.WithField("barang_id", barang.ID).Errorf("barang update failed: %v", err)
			c.JSON(http.StatusInternalServerError, gin.H{"message": "Gagal memperbarui barang"})
			return
		}
		// Log the mutation with context
		logrus.WithFields(logrus.Fields{
			"barang_id": barang.ID, // Updated item ID
			"nama":      nama,      // Item name
			"admin":     adminEmail(c),
		}).Info("Barang updated")
		invalidateBarangCache(rdb) // Drop cached list and detail responses
		c.JSON(http.StatusOK, gin.H{"message": "Barang berhasil diperbarui", "barang": barang})
	}
}

// DeleteBarangHandler removes an item by ID
func DeleteBarangHandler(db *gorm.DB, rdb *redis.Client) gin.HandlerFunc {
	return func(c *gin.Context) {
		var barang domain.Barang // Fetch existing item from database
		if err := db.First(&barang, "id = ?", c.Param("id")).Error; err != nil {
			c.JSON(http.StatusNotFound, gin.H{"message": "Barang tidak ditemukan"})
			return
		}
		// Attempt to delete the item; the uploaded image file is left in place
		if err := db.Delete(&barang).Error; err != nil {
			logrus.WithField("barang_id", barang.ID).Errorf("barang deletion failed: %v", err)
			c.JSON(http.StatusInternalServerError, gin.H{"message": "Gagal menghapus barang"})
			return
		}
		// Log the mutation with the prior state
		logrus.WithFields(logrus.Fields{
			"barang_id": barang.ID,   // Deleted item ID
			"nama":      barang.Nama, // Item name before deletion
			"admin":     adminEmail(c),
		}).Info("Barang deleted")
		invalidateBarangCache(rdb) // Drop cached list and detail responses
		c.JSON(http.StatusOK, gin.H{"message": "Barang berhasil dihapus"})
	}
}

// uploadErrorStatus maps upload validation errors to HTTP status codes
func uploadErrorStatus(err error) int {
	if errors.Is(err, utils.ErrImageSize) {
		return http.StatusRequestEntityTooLarge // Oversized file
	}
	return http.StatusBadRequest // Unsupported media type
}

// adminEmail returns the email of the admin attached by the middleware, for log context
func adminEmail(c *gin.Context) string {
	if user := middleware.CurrentUser(c); user != nil {
		return user.Email
	}
	return ""
}
