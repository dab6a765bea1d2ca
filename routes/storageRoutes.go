package routes

import (
	"os"

	"smartcite/controllers"
	"smartcite/middlewares"

	"github.com/gin-gonic/gin"
)

// StorageRoutes sets up the object storage routes. Uploaded objects are
// also served statically under /storage.
func StorageRoutes(r *gin.Engine) {
	storage := r.Group("/api/storage", middlewares.AuthMiddleware())
	{
		storage.POST("/upload", controllers.UploadImage)
		storage.DELETE("/", controllers.DeleteImage)
	}

	uploadDir := os.Getenv("UPLOAD_DIR")
	if uploadDir == "" {
		uploadDir = "uploads"
	}
	r.Static("/storage", uploadDir)
}
