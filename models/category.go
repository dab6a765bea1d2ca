package models

import (
	"go.mongodb.org/mongo-driver/bson/primitive"
)

// Category is read-only reference data classifying reports
type Category struct {
	ID   primitive.ObjectID `bson:"_id,omitempty" json:"id"`
	Name string             `bson:"name" json:"name"`
	Icon string             `bson:"icon,omitempty" json:"icon,omitempty"`
}

// DefaultCategories seeds the collection on first boot.
func DefaultCategories() []Category {
	return []Category{
		{ID: primitive.NewObjectID(), Name: "Routes", Icon: "road"},
		{ID: primitive.NewObjectID(), Name: "Eau", Icon: "water"},
		{ID: primitive.NewObjectID(), Name: "Assainissement", Icon: "trash"},
		{ID: primitive.NewObjectID(), Name: "Electricité", Icon: "bolt"},
		{ID: primitive.NewObjectID(), Name: "Autre", Icon: "ellipsis"},
	}
}
