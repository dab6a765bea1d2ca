package controllers

import (
	"context"
	"fmt"
	"net/http"
	"time"

	"smartcite/config"
	"smartcite/models"

	"github.com/gin-gonic/gin"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

// notifyReportAction records a notification for the report owner. The
// client reads these back; a failure here must not fail the mutation
// that triggered it.
func notifyReportAction(ctx context.Context, userID primitive.ObjectID, message string) {
	notification := models.Notification{
		ID:        primitive.NewObjectID(),
		UserID:    userID,
		Message:   message,
		Read:      false,
		CreatedAt: time.Now(),
	}
	_, _ = config.GetCollection("notifications").InsertOne(ctx, notification)
}

// CreateReport handles the creation of a new report
func CreateReport(c *gin.Context) {
	userID, exists := c.Get("user_id")
	if !exists {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "User not authenticated"})
		return
	}

	ownerID, err := primitive.ObjectIDFromHex(userID.(string))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid user ID"})
		return
	}

	var input struct {
		Title       string  `json:"title" binding:"required,max=200"`
		Category    string  `json:"category" binding:"required"`
		Description string  `json:"description" binding:"required,max=1000"`
		Location    string  `json:"location" binding:"required,max=200"`
		Image       *string `json:"image,omitempty"`
		Priority    *int    `json:"priority,omitempty"`
	}

	if err := c.ShouldBindJSON(&input); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	categoryID, err := primitive.ObjectIDFromHex(input.Category)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid category"})
		return
	}

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	// Category must reference existing reference data
	count, err := config.GetCollection("categories").CountDocuments(ctx, bson.M{"_id": categoryID})
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to check category"})
		return
	}
	if count == 0 {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid category"})
		return
	}

	priority := models.Low
	if input.Priority != nil {
		priority = models.ReportPriority(*input.Priority)
		if !priority.Valid() {
			c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid priority"})
			return
		}
	}

	report := models.Report{
		ID:          primitive.NewObjectID(),
		Title:       input.Title,
		Category:    categoryID,
		Description: input.Description,
		Location:    input.Location,
		Image:       input.Image,
		Priority:    priority,
		Status:      models.Pending,
		UserID:      ownerID,
		CreatedAt:   time.Now(),
		UpdatedAt:   time.Now(),
	}

	if _, err := config.GetCollection("reports").InsertOne(ctx, report); err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to create report"})
		return
	}

	notifyReportAction(ctx, ownerID, fmt.Sprintf("Votre signalement %q a été enregistré avec succès.", report.Title))

	c.JSON(http.StatusCreated, report)
}

// GetAllReports retrieves every report; reserved for privileged roles
func GetAllReports(c *gin.Context) {
	userID, exists := c.Get("user_id")
	if !exists {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "User not authenticated"})
		return
	}

	requesterID, err := primitive.ObjectIDFromHex(userID.(string))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid user ID"})
		return
	}

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	var profile models.Profile
	if err := config.GetCollection("profiles").FindOne(ctx, bson.M{"_id": requesterID}).Decode(&profile); err != nil {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "Profile not found"})
		return
	}
	if !profile.Role.Privileged() {
		c.JSON(http.StatusForbidden, gin.H{"error": "You are not authorized to list all reports"})
		return
	}

	findOptions := options.Find().SetSort(bson.D{{Key: "createdAt", Value: -1}})
	cursor, err := config.GetCollection("reports").Find(ctx, bson.M{}, findOptions)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to retrieve reports"})
		return
	}
	defer cursor.Close(ctx)

	reports := []models.Report{}
	if err := cursor.All(ctx, &reports); err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to decode reports"})
		return
	}

	c.JSON(http.StatusOK, gin.H{"reports": reports})
}

// GetReportsByUser retrieves the authenticated user's own reports
func GetReportsByUser(c *gin.Context) {
	userID, exists := c.Get("user_id")
	if !exists {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "User not authenticated"})
		return
	}

	ownerID, err := primitive.ObjectIDFromHex(userID.(string))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid user ID"})
		return
	}

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	findOptions := options.Find().SetSort(bson.D{{Key: "createdAt", Value: -1}})
	cursor, err := config.GetCollection("reports").Find(ctx, bson.M{"userId": ownerID}, findOptions)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to retrieve reports"})
		return
	}
	defer cursor.Close(ctx)

	reports := []models.Report{}
	if err := cursor.All(ctx, &reports); err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to decode reports"})
		return
	}

	c.JSON(http.StatusOK, gin.H{"reports": reports})
}

// GetReport retrieves a report by its ID
func GetReport(c *gin.Context) {
	idParam := c.Param("id")
	reportID, err := primitive.ObjectIDFromHex(idParam)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid report ID"})
		return
	}

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	var report models.Report
	err = config.GetCollection("reports").FindOne(ctx, bson.M{"_id": reportID}).Decode(&report)
	if err != nil {
		if err == mongo.ErrNoDocuments {
			c.JSON(http.StatusNotFound, gin.H{"error": "Report not found"})
		} else {
			c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to retrieve report"})
		}
		return
	}

	c.JSON(http.StatusOK, report)
}

// UpdateReport allows the owner of a pending report to update its details
func UpdateReport(c *gin.Context) {
	idParam := c.Param("id")
	reportID, err := primitive.ObjectIDFromHex(idParam)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid report ID"})
		return
	}

	userID, exists := c.Get("user_id")
	if !exists {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "User not authenticated"})
		return
	}

	requesterID, err := primitive.ObjectIDFromHex(userID.(string))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid user ID"})
		return
	}

	var input struct {
		Title       *string `json:"title,omitempty"`
		Category    *string `json:"category,omitempty"`
		Description *string `json:"description,omitempty"`
		Location    *string `json:"location,omitempty"`
		Image       *string `json:"image,omitempty"`
		Priority    *int    `json:"priority,omitempty"`
	}

	if err := c.ShouldBindJSON(&input); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	reportCollection := config.GetCollection("reports")

	var report models.Report
	err = reportCollection.FindOne(ctx, bson.M{"_id": reportID}).Decode(&report)
	if err != nil {
		if err == mongo.ErrNoDocuments {
			c.JSON(http.StatusNotFound, gin.H{"error": "Report not found"})
		} else {
			c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to retrieve report"})
		}
		return
	}

	if report.UserID != requesterID {
		c.JSON(http.StatusForbidden, gin.H{"error": "You are not authorized to update this report"})
		return
	}

	if !report.Editable() {
		c.JSON(http.StatusConflict, gin.H{"error": "Report is no longer pending and cannot be updated"})
		return
	}

	update := bson.M{"updatedAt": time.Now()}
	if input.Title != nil {
		update["title"] = *input.Title
	}
	if input.Category != nil {
		categoryID, err := primitive.ObjectIDFromHex(*input.Category)
		if err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid category"})
			return
		}
		count, err := config.GetCollection("categories").CountDocuments(ctx, bson.M{"_id": categoryID})
		if err != nil || count == 0 {
			c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid category"})
			return
		}
		update["category"] = categoryID
	}
	if input.Description != nil {
		update["description"] = *input.Description
	}
	if input.Location != nil {
		update["location"] = *input.Location
	}
	if input.Image != nil {
		update["image"] = input.Image
	}
	if input.Priority != nil {
		priority := models.ReportPriority(*input.Priority)
		if !priority.Valid() {
			c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid priority"})
			return
		}
		update["priority"] = priority
	}

	if _, err := reportCollection.UpdateOne(ctx, bson.M{"_id": reportID}, bson.M{"$set": update}); err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to update report"})
		return
	}

	notifyReportAction(ctx, requesterID, fmt.Sprintf("Votre signalement %q a été modifié avec succès.", report.Title))

	c.JSON(http.StatusOK, gin.H{"message": "Report updated successfully"})
}

// DeleteReport allows the owner of a pending report to delete it
func DeleteReport(c *gin.Context) {
	idParam := c.Param("id")
	reportID, err := primitive.ObjectIDFromHex(idParam)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid report ID"})
		return
	}

	userID, exists := c.Get("user_id")
	if !exists {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "User not authenticated"})
		return
	}

	requesterID, err := primitive.ObjectIDFromHex(userID.(string))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid user ID"})
		return
	}

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	reportCollection := config.GetCollection("reports")

	var report models.Report
	err = reportCollection.FindOne(ctx, bson.M{"_id": reportID}).Decode(&report)
	if err != nil {
		if err == mongo.ErrNoDocuments {
			c.JSON(http.StatusNotFound, gin.H{"error": "Report not found"})
		} else {
			c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to retrieve report"})
		}
		return
	}

	if report.UserID != requesterID {
		c.JSON(http.StatusForbidden, gin.H{"error": "You are not authorized to delete this report"})
		return
	}

	if !report.Editable() {
		c.JSON(http.StatusConflict, gin.H{"error": "Report is no longer pending and cannot be deleted"})
		return
	}

	if _, err := reportCollection.DeleteOne(ctx, bson.M{"_id": reportID}); err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to delete report"})
		return
	}

	notifyReportAction(ctx, requesterID, fmt.Sprintf("Votre signalement %q a été supprimé.", report.Title))

	c.JSON(http.StatusOK, gin.H{"success": true})
}

// AdvanceReportStatus moves a report one step forward in its lifecycle
// (pending -> in_treatment -> resolved). Privileged roles only; the
// lifecycle never moves backwards.
func AdvanceReportStatus(c *gin.Context) {
	idParam := c.Param("id")
	reportID, err := primitive.ObjectIDFromHex(idParam)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid report ID"})
		return
	}

	userID, exists := c.Get("user_id")
	if !exists {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "User not authenticated"})
		return
	}

	requesterID, err := primitive.ObjectIDFromHex(userID.(string))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid user ID"})
		return
	}

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	var profile models.Profile
	if err := config.GetCollection("profiles").FindOne(ctx, bson.M{"_id": requesterID}).Decode(&profile); err != nil {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "Profile not found"})
		return
	}
	if !profile.Role.Privileged() {
		c.JSON(http.StatusForbidden, gin.H{"error": "You are not authorized to change report status"})
		return
	}

	reportCollection := config.GetCollection("reports")

	var report models.Report
	err = reportCollection.FindOne(ctx, bson.M{"_id": reportID}).Decode(&report)
	if err != nil {
		if err == mongo.ErrNoDocuments {
			c.JSON(http.StatusNotFound, gin.H{"error": "Report not found"})
		} else {
			c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to retrieve report"})
		}
		return
	}

	next, ok := models.NextStatus(report.Status)
	if !ok {
		c.JSON(http.StatusConflict, gin.H{"error": "Report already resolved"})
		return
	}

	update := bson.M{"$set": bson.M{"status": next, "updatedAt": time.Now()}}
	if _, err := reportCollection.UpdateOne(ctx, bson.M{"_id": reportID}, update); err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to update report status"})
		return
	}

	notifyReportAction(ctx, report.UserID, fmt.Sprintf("Le statut de votre signalement %q est passé à %q.", report.Title, next))

	c.JSON(http.StatusOK, gin.H{"status": next})
}
