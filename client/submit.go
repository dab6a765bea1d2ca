package client

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"smartcite/models"

	"github.com/go-playground/validator/v10"
)

// ErrNotPending is returned when an update or delete is attempted on a
// report that has left the pending state.
var ErrNotPending = errors.New("report is no longer pending")

// ValidationErrors maps invalid form fields to messages. Submission is
// blocked while any field is invalid; no network call happens.
type ValidationErrors map[string]string

func (v ValidationErrors) Error() string {
	parts := make([]string, 0, len(v))
	for field, message := range v {
		parts = append(parts, field+": "+message)
	}
	return "invalid form: " + strings.Join(parts, "; ")
}

// ReportForm holds the submission form fields. Image is optional;
// Priority defaults to low when unset.
type ReportForm struct {
	Title       string  `validate:"required,max=200"`
	Category    string  `validate:"required"`
	Description string  `validate:"required,max=1000"`
	Location    string  `validate:"required,max=200"`
	Image       *string `validate:"-"`
	Priority    int     `validate:"omitempty,min=1,max=3"`

	// storage path of an image uploaded by this workflow instance,
	// kept so a failed submission can compensate by deleting it
	uploadedPath string
}

// Submitter drives the report submission workflow: validate, upload,
// submit, then invalidate and re-fetch the affected collections.
type Submitter struct {
	gw            Gateway
	session       *Session
	cache         Cache
	categories    *CategoryProvider
	reports       *ReportProvider
	notifications *NotificationProvider
	validate      *validator.Validate
}

func NewSubmitter(gw Gateway, session *Session, cache Cache, categories *CategoryProvider, reports *ReportProvider, notifications *NotificationProvider) *Submitter {
	return &Submitter{
		gw:            gw,
		session:       session,
		cache:         cache,
		categories:    categories,
		reports:       reports,
		notifications: notifications,
		validate:      validator.New(),
	}
}

// Validate applies the field-level rules. The category must reference
// existing reference data.
func (s *Submitter) Validate(form *ReportForm) error {
	fieldErrors := ValidationErrors{}

	if err := s.validate.Struct(form); err != nil {
		var verrs validator.ValidationErrors
		if !errors.As(err, &verrs) {
			return err
		}
		for _, fe := range verrs {
			switch fe.Field() {
			case "Title":
				fieldErrors["title"] = "title is required"
			case "Category":
				fieldErrors["category"] = "category is required"
			case "Description":
				fieldErrors["description"] = "description is required"
			case "Location":
				fieldErrors["location"] = "location is required"
			case "Priority":
				fieldErrors["priority"] = "priority must be 1, 2 or 3"
			}
		}
	}

	if form.Category != "" {
		if _, ok := s.categories.Find(form.Category); !ok {
			fieldErrors["category"] = "unknown category"
		}
	}

	if len(fieldErrors) > 0 {
		return fieldErrors
	}
	return nil
}

// AttachImage uploads picked image bytes and stores the resulting
// public URL into the form. When the form already carries an image, the
// old object is deleted first; a failed deletion aborts the whole
// attachment and no upload is attempted.
func (s *Submitter) AttachImage(ctx context.Context, form *ReportForm, filename string, data []byte) error {
	identity, ok := s.session.Identity()
	if !ok {
		return ErrNotAuthenticated
	}

	publicURL, objectPath, err := replaceImage(ctx, s.gw, identity.ID, filename, data, form.Image)
	if err != nil {
		return err
	}

	form.Image = &publicURL
	form.uploadedPath = objectPath
	return nil
}

// fields builds the remote field set from a validated form.
func (s *Submitter) fields(form *ReportForm) ReportFields {
	priority := form.Priority
	if priority == 0 {
		priority = int(models.Low)
	}
	return ReportFields{
		Title:       form.Title,
		Category:    form.Category,
		Description: form.Description,
		Location:    form.Location,
		Image:       form.Image,
		Priority:    priority,
	}
}

// requireSession re-checks for a live authenticated session right
// before a mutation, not just at screen entry.
func (s *Submitter) requireSession(ctx context.Context) error {
	if _, ok := s.session.Identity(); !ok {
		return ErrNotAuthenticated
	}
	if _, err := s.gw.CurrentIdentity(ctx); err != nil {
		return fmt.Errorf("%w: %v", ErrNotAuthenticated, err)
	}
	return nil
}

// refresh invalidates the reports and notifications cache entries and
// re-fetches both providers after a successful mutation.
func (s *Submitter) refresh(ctx context.Context) {
	_ = s.cache.Remove(ReportsKey)
	_ = s.cache.Remove(NotificationsKey)
	_ = s.reports.Fetch(ctx)
	_ = s.notifications.Fetch(ctx)
}

// Create validates the form and creates the report. If the form carries
// an image uploaded by this workflow and the create is rejected, the
// fresh object is deleted again so no orphan is left in storage.
func (s *Submitter) Create(ctx context.Context, form *ReportForm) (models.Report, error) {
	if err := s.Validate(form); err != nil {
		return models.Report{}, err
	}
	if err := s.requireSession(ctx); err != nil {
		return models.Report{}, err
	}

	report, err := s.gw.CreateReport(ctx, s.fields(form))
	if err != nil {
		if form.uploadedPath != "" {
			_ = s.gw.DeleteImage(ctx, form.uploadedPath)
			form.uploadedPath = ""
			form.Image = nil
		}
		return models.Report{}, err
	}

	s.refresh(ctx)
	return report, nil
}

// Update validates the form and updates a pending report. The pending
// gate runs before any remote call.
func (s *Submitter) Update(ctx context.Context, report models.Report, form *ReportForm) error {
	if !report.Editable() {
		return ErrNotPending
	}
	if err := s.Validate(form); err != nil {
		return err
	}
	if err := s.requireSession(ctx); err != nil {
		return err
	}

	if err := s.gw.UpdateReport(ctx, report.ID.Hex(), s.fields(form)); err != nil {
		return err
	}

	s.refresh(ctx)
	return nil
}

// Delete removes a pending report and, best-effort, its stored image.
func (s *Submitter) Delete(ctx context.Context, report models.Report) error {
	if !report.Editable() {
		return ErrNotPending
	}
	if err := s.requireSession(ctx); err != nil {
		return err
	}

	if err := s.gw.DeleteReport(ctx, report.ID.Hex()); err != nil {
		return err
	}

	if report.Image != nil {
		if objectPath, ok := storagePath(*report.Image); ok {
			_ = s.gw.DeleteImage(ctx, objectPath)
		}
	}

	s.refresh(ctx)
	return nil
}
