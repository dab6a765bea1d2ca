package controllers

import (
	"fmt"
	"io"
	"net/http"
	"os"
	"path"
	"path/filepath"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
)

const maxUploadBytes = 10 << 20 // 10 MiB

// objectPath validates and resolves a client-supplied storage path.
// Objects live under UPLOAD_DIR/<ownerID>/... and a user may only touch
// their own prefix.
func objectPath(requesterID, rawPath string) (string, error) {
	cleaned := path.Clean("/" + rawPath)
	cleaned = strings.TrimPrefix(cleaned, "/")
	if cleaned == "" || cleaned == "." {
		return "", fmt.Errorf("empty object path")
	}
	if !strings.HasPrefix(cleaned, requesterID+"/") {
		return "", fmt.Errorf("object path must start with your user ID")
	}

	uploadDir := os.Getenv("UPLOAD_DIR")
	if uploadDir == "" {
		uploadDir = "uploads"
	}
	return filepath.Join(uploadDir, filepath.FromSlash(cleaned)), nil
}

// UploadImage stores a raw image body at the requested path and returns
// its public URL
func UploadImage(c *gin.Context) {
	userID, exists := c.Get("user_id")
	if !exists {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "User not authenticated"})
		return
	}

	rawPath := c.Query("path")
	dst, err := objectPath(userID.(string), rawPath)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	body, err := io.ReadAll(io.LimitReader(c.Request.Body, maxUploadBytes+1))
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to read upload body"})
		return
	}
	if len(body) == 0 {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Empty upload body"})
		return
	}
	if len(body) > maxUploadBytes {
		c.JSON(http.StatusRequestEntityTooLarge, gin.H{"error": "Image exceeds the 10MB limit"})
		return
	}

	if err := os.MkdirAll(filepath.Dir(dst), 0o755); err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to store image"})
		return
	}

	// Write to a temp name first so a failed upload never leaves a
	// half-written object at the public path.
	tmp := dst + "." + uuid.NewString() + ".tmp"
	if err := os.WriteFile(tmp, body, 0o644); err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to store image"})
		return
	}
	if err := os.Rename(tmp, dst); err != nil {
		_ = os.Remove(tmp)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to store image"})
		return
	}

	baseURL := strings.TrimRight(os.Getenv("PUBLIC_BASE_URL"), "/")
	publicURL := fmt.Sprintf("%s/storage/%s", baseURL, strings.TrimPrefix(path.Clean("/"+rawPath), "/"))

	c.JSON(http.StatusCreated, gin.H{"publicUrl": publicURL})
}

// DeleteImage removes a stored object
func DeleteImage(c *gin.Context) {
	userID, exists := c.Get("user_id")
	if !exists {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "User not authenticated"})
		return
	}

	rawPath := c.Query("path")
	dst, err := objectPath(userID.(string), rawPath)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	if err := os.Remove(dst); err != nil {
		if os.IsNotExist(err) {
			c.JSON(http.StatusNotFound, gin.H{"error": "Object not found"})
		} else {
			c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to delete image"})
		}
		return
	}

	c.JSON(http.StatusOK, gin.H{"success": true})
}
