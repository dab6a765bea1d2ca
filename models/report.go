package models

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// ReportStatus enum
type ReportStatus string

const (
	Pending     ReportStatus = "pending"
	InTreatment ReportStatus = "in_treatment"
	Resolved    ReportStatus = "resolved"
)

// ReportPriority enum (ordinal)
type ReportPriority int

const (
	Low    ReportPriority = 1
	Medium ReportPriority = 2
	Urgent ReportPriority = 3
)

func (p ReportPriority) Valid() bool {
	return p >= Low && p <= Urgent
}

// Report represents a civic issue submitted by a citizen
type Report struct {
	ID          primitive.ObjectID `bson:"_id,omitempty" json:"id"`
	Title       string             `bson:"title" json:"title"`
	Category    primitive.ObjectID `bson:"category" json:"category"`
	Description string             `bson:"description" json:"description"`
	Location    string             `bson:"location" json:"location"`
	Image       *string            `bson:"image,omitempty" json:"image,omitempty"`
	Priority    ReportPriority     `bson:"priority" json:"priority"`
	Status      ReportStatus       `bson:"status" json:"status"`
	UserID      primitive.ObjectID `bson:"userId" json:"user_id"`
	CreatedAt   time.Time          `bson:"createdAt" json:"createdAt"`
	UpdatedAt   time.Time          `bson:"updatedAt" json:"updatedAt"`
}

// Editable reports whether the owner may still modify or delete the report.
func (r *Report) Editable() bool {
	return r.Status == Pending
}

// NextStatus returns the successor in the pending -> in_treatment ->
// resolved lifecycle. ok is false when s is terminal or unknown; the
// lifecycle never moves backwards.
func NextStatus(s ReportStatus) (ReportStatus, bool) {
	switch s {
	case Pending:
		return InTreatment, true
	case InTreatment:
		return Resolved, true
	default:
		return s, false
	}
}

// ValidTransition reports whether moving from -> to follows the
// one-directional lifecycle.
func ValidTransition(from, to ReportStatus) bool {
	next, ok := NextStatus(from)
	return ok && next == to
}
