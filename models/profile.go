package models

import (
	"context"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

// Role enum
type Role string

const (
	Citizen Role = "citizen"
	Agent   Role = "agent"
	Admin   Role = "admin"
)

// Privileged reports whether the role sees every report, not just its own.
func (r Role) Privileged() bool {
	return r == Agent || r == Admin
}

// Profile is the application-level user record. Its ID matches the
// User (identity) it belongs to.
type Profile struct {
	ID        primitive.ObjectID `bson:"_id,omitempty" json:"id"`
	Username  string             `bson:"username" json:"username"`
	FirstName string             `bson:"firstName,omitempty" json:"first_name,omitempty"`
	LastName  string             `bson:"lastName,omitempty" json:"last_name,omitempty"`
	Email     string             `bson:"email" json:"email"`
	Phone     string             `bson:"phone,omitempty" json:"phone,omitempty"`
	Avatar    *string            `bson:"avatar,omitempty" json:"avatar,omitempty"`
	Role      Role               `bson:"role" json:"role"`
	CreatedAt time.Time          `bson:"createdAt" json:"createdAt"`
	UpdatedAt time.Time          `bson:"updatedAt" json:"updatedAt"`
}

// EnsureProfileIndex creates a unique index on username
func EnsureProfileIndex(collection *mongo.Collection) error {
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	indexModel := mongo.IndexModel{
		Keys:    bson.D{{Key: "username", Value: 1}},
		Options: options.Index().SetUnique(true),
	}

	_, err := collection.Indexes().CreateOne(ctx, indexModel)
	return err
}
