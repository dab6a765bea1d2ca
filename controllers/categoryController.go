package controllers

import (
	"context"
	"log"
	"net/http"
	"time"

	"smartcite/config"
	"smartcite/models"

	"github.com/gin-gonic/gin"
	"go.mongodb.org/mongo-driver/bson"
)

// GetAllCategories retrieves the category reference data
func GetAllCategories(c *gin.Context) {
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	cursor, err := config.GetCollection("categories").Find(ctx, bson.M{})
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to retrieve categories"})
		return
	}
	defer cursor.Close(ctx)

	categories := []models.Category{}
	if err := cursor.All(ctx, &categories); err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to decode categories"})
		return
	}

	c.JSON(http.StatusOK, gin.H{"categories": categories})
}

// SeedCategories inserts the default categories when the collection is empty
func SeedCategories() {
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	categoryCollection := config.GetCollection("categories")

	count, err := categoryCollection.CountDocuments(ctx, bson.M{})
	if err != nil {
		log.Println("Error counting categories:", err)
		return
	}
	if count > 0 {
		return
	}

	docs := make([]interface{}, 0, len(models.DefaultCategories()))
	for _, category := range models.DefaultCategories() {
		docs = append(docs, category)
	}

	if _, err := categoryCollection.InsertMany(ctx, docs); err != nil {
		log.Println("Error seeding categories:", err)
		return
	}

	log.Println("Seeded default categories")
}
