// Package client implements the SmartCité data-synchronization layer:
// the remote gateway contract, the durable local cache, the session
// state and the collection providers the screens consume, plus the
// report submission and profile update workflows.
package client

import (
	"context"
	"errors"
	"fmt"

	"smartcite/models"
)

// ErrNotAuthenticated is returned when an operation requires a live
// session and none exists.
var ErrNotAuthenticated = errors.New("user not authenticated")

// DomainError is a structured rejection from the gateway: the transport
// round-trip succeeded but the server refused the operation. It is
// surfaced to the user verbatim and never retried.
type DomainError struct {
	Status  int
	Message string
}

func (e *DomainError) Error() string {
	return e.Message
}

// Identity is the authenticated principal, distinct from the Profile.
type Identity struct {
	ID    string `json:"id"`
	Email string `json:"email"`
}

// ReportFields is the validated field set sent to the create/update
// report operations.
type ReportFields struct {
	Title       string  `json:"title"`
	Category    string  `json:"category"`
	Description string  `json:"description"`
	Location    string  `json:"location"`
	Image       *string `json:"image,omitempty"`
	Priority    int     `json:"priority"`
}

// ProfileFields is a partial profile update; nil fields are untouched.
type ProfileFields struct {
	Username  *string `json:"username,omitempty"`
	FirstName *string `json:"first_name,omitempty"`
	LastName  *string `json:"last_name,omitempty"`
	Email     *string `json:"email,omitempty"`
	Phone     *string `json:"phone,omitempty"`
	Avatar    *string `json:"avatar,omitempty"`
}

// Gateway is the remote backend boundary: authentication, remote
// procedures and object storage. HTTPGateway is the live
// implementation; tests substitute their own.
type Gateway interface {
	SignUp(ctx context.Context, email, password, username string) (Identity, error)
	SignIn(ctx context.Context, username, password string) (Identity, error)
	SignOut(ctx context.Context) error
	CurrentIdentity(ctx context.Context) (Identity, error)

	FetchProfile(ctx context.Context, username string) (models.Profile, error)
	UpdateProfile(ctx context.Context, fields ProfileFields) (models.Profile, error)
	UpdateAuthEmail(ctx context.Context, email string) error

	ListCategories(ctx context.Context) ([]models.Category, error)

	ListReports(ctx context.Context) ([]models.Report, error)
	ListReportsByOwner(ctx context.Context, ownerID string) ([]models.Report, error)
	CreateReport(ctx context.Context, fields ReportFields) (models.Report, error)
	UpdateReport(ctx context.Context, id string, fields ReportFields) error
	DeleteReport(ctx context.Context, id string) error

	ListNotifications(ctx context.Context) ([]models.Notification, error)
	ListNotificationsByOwner(ctx context.Context, ownerID string) ([]models.Notification, error)
	MarkNotificationsRead(ctx context.Context) error

	UploadImage(ctx context.Context, data []byte, path, mimeType string) (string, error)
	DeleteImage(ctx context.Context, path string) error
}

// domainErrorf builds a DomainError in one line.
func domainErrorf(status int, format string, args ...interface{}) *DomainError {
	return &DomainError{Status: status, Message: fmt.Sprintf(format, args...)}
}
