package client

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"smartcite/models"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// fakeGateway is an in-memory Gateway recording every remote call, so
// tests can assert which operations ran and with what arguments.
type fakeGateway struct {
	mu sync.Mutex

	identity      *Identity
	profiles      map[string]models.Profile
	categories    []models.Category
	reports       []models.Report
	notifications []models.Notification
	objects       map[string][]byte

	calls      map[string]int
	lastCreate ReportFields

	failList        error
	failCreate      error
	failDeleteImage error
	failUpload      error
	failAuthEmail   error
}

func newFakeGateway() *fakeGateway {
	return &fakeGateway{
		profiles: map[string]models.Profile{},
		objects:  map[string][]byte{},
		calls:    map[string]int{},
	}
}

func (f *fakeGateway) record(op string) {
	f.mu.Lock()
	f.calls[op]++
	f.mu.Unlock()
}

func (f *fakeGateway) callCount(op string) int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.calls[op]
}

func (f *fakeGateway) notify(userID primitive.ObjectID, message string) {
	f.notifications = append(f.notifications, models.Notification{
		ID:        primitive.NewObjectID(),
		UserID:    userID,
		Message:   message,
		CreatedAt: time.Now(),
	})
}

func (f *fakeGateway) SignUp(ctx context.Context, email, password, username string) (Identity, error) {
	f.record("SignUp")
	return Identity{ID: primitive.NewObjectID().Hex(), Email: email}, nil
}

func (f *fakeGateway) SignIn(ctx context.Context, username, password string) (Identity, error) {
	f.record("SignIn")
	if f.identity == nil {
		return Identity{}, errors.New("invalid credentials")
	}
	return *f.identity, nil
}

func (f *fakeGateway) SignOut(ctx context.Context) error {
	f.record("SignOut")
	return nil
}

func (f *fakeGateway) CurrentIdentity(ctx context.Context) (Identity, error) {
	f.record("CurrentIdentity")
	if f.identity == nil {
		return Identity{}, ErrNotAuthenticated
	}
	return *f.identity, nil
}

func (f *fakeGateway) FetchProfile(ctx context.Context, username string) (models.Profile, error) {
	f.record("FetchProfile")
	profile, ok := f.profiles[username]
	if !ok {
		return models.Profile{}, &DomainError{Status: 404, Message: "Profile not found"}
	}
	return profile, nil
}

func (f *fakeGateway) UpdateProfile(ctx context.Context, fields ProfileFields) (models.Profile, error) {
	f.record("UpdateProfile")
	var current models.Profile
	for _, profile := range f.profiles {
		current = profile
		break
	}
	if fields.Username != nil {
		current.Username = *fields.Username
	}
	if fields.FirstName != nil {
		current.FirstName = *fields.FirstName
	}
	if fields.LastName != nil {
		current.LastName = *fields.LastName
	}
	if fields.Email != nil {
		current.Email = *fields.Email
	}
	if fields.Phone != nil {
		current.Phone = *fields.Phone
	}
	if fields.Avatar != nil {
		current.Avatar = fields.Avatar
	}
	f.profiles[current.Username] = current
	return current, nil
}

func (f *fakeGateway) UpdateAuthEmail(ctx context.Context, email string) error {
	f.record("UpdateAuthEmail")
	return f.failAuthEmail
}

func (f *fakeGateway) ListCategories(ctx context.Context) ([]models.Category, error) {
	f.record("ListCategories")
	return append([]models.Category{}, f.categories...), nil
}

func (f *fakeGateway) ListReports(ctx context.Context) ([]models.Report, error) {
	f.record("ListReports")
	if f.failList != nil {
		return nil, f.failList
	}
	return append([]models.Report{}, f.reports...), nil
}

func (f *fakeGateway) ListReportsByOwner(ctx context.Context, ownerID string) ([]models.Report, error) {
	f.record("ListReportsByOwner")
	if f.failList != nil {
		return nil, f.failList
	}
	owned := []models.Report{}
	for _, report := range f.reports {
		if report.UserID.Hex() == ownerID {
			owned = append(owned, report)
		}
	}
	return owned, nil
}

func (f *fakeGateway) CreateReport(ctx context.Context, fields ReportFields) (models.Report, error) {
	f.record("CreateReport")
	f.lastCreate = fields
	if f.failCreate != nil {
		return models.Report{}, f.failCreate
	}

	categoryID, err := primitive.ObjectIDFromHex(fields.Category)
	if err != nil {
		return models.Report{}, &DomainError{Status: 400, Message: "Invalid category"}
	}
	ownerID, _ := primitive.ObjectIDFromHex(f.identity.ID)

	report := models.Report{
		ID:          primitive.NewObjectID(),
		Title:       fields.Title,
		Category:    categoryID,
		Description: fields.Description,
		Location:    fields.Location,
		Image:       fields.Image,
		Priority:    models.ReportPriority(fields.Priority),
		Status:      models.Pending,
		UserID:      ownerID,
		CreatedAt:   time.Now(),
	}
	f.reports = append(f.reports, report)
	f.notify(ownerID, fmt.Sprintf("Votre signalement %q a été enregistré avec succès.", report.Title))
	return report, nil
}

func (f *fakeGateway) UpdateReport(ctx context.Context, id string, fields ReportFields) error {
	f.record("UpdateReport")
	for i, report := range f.reports {
		if report.ID.Hex() != id {
			continue
		}
		if report.Status != models.Pending {
			return &DomainError{Status: 409, Message: "Report is no longer pending and cannot be updated"}
		}
		f.reports[i].Title = fields.Title
		f.reports[i].Description = fields.Description
		f.reports[i].Location = fields.Location
		f.reports[i].Image = fields.Image
		f.reports[i].Priority = models.ReportPriority(fields.Priority)
		f.notify(report.UserID, fmt.Sprintf("Votre signalement %q a été modifié avec succès.", report.Title))
		return nil
	}
	return &DomainError{Status: 404, Message: "Report not found"}
}

func (f *fakeGateway) DeleteReport(ctx context.Context, id string) error {
	f.record("DeleteReport")
	for i, report := range f.reports {
		if report.ID.Hex() != id {
			continue
		}
		if report.Status != models.Pending {
			return &DomainError{Status: 409, Message: "Report is no longer pending and cannot be deleted"}
		}
		f.reports = append(f.reports[:i], f.reports[i+1:]...)
		f.notify(report.UserID, fmt.Sprintf("Votre signalement %q a été supprimé.", report.Title))
		return nil
	}
	return &DomainError{Status: 404, Message: "Report not found"}
}

func (f *fakeGateway) ListNotifications(ctx context.Context) ([]models.Notification, error) {
	f.record("ListNotifications")
	return append([]models.Notification{}, f.notifications...), nil
}

func (f *fakeGateway) ListNotificationsByOwner(ctx context.Context, ownerID string) ([]models.Notification, error) {
	f.record("ListNotificationsByOwner")
	owned := []models.Notification{}
	for _, notification := range f.notifications {
		if notification.UserID.Hex() == ownerID {
			owned = append(owned, notification)
		}
	}
	return owned, nil
}

func (f *fakeGateway) MarkNotificationsRead(ctx context.Context) error {
	f.record("MarkNotificationsRead")
	for i := range f.notifications {
		f.notifications[i].Read = true
	}
	return nil
}

func (f *fakeGateway) UploadImage(ctx context.Context, data []byte, path, mimeType string) (string, error) {
	f.record("UploadImage")
	if f.failUpload != nil {
		return "", f.failUpload
	}
	f.objects[path] = data
	return "https://storage.test/storage/" + path, nil
}

func (f *fakeGateway) DeleteImage(ctx context.Context, path string) error {
	f.record("DeleteImage")
	if f.failDeleteImage != nil {
		return f.failDeleteImage
	}
	if _, ok := f.objects[path]; !ok {
		return &DomainError{Status: 404, Message: "Object not found"}
	}
	delete(f.objects, path)
	return nil
}

var _ Gateway = (*fakeGateway)(nil)

// testHarness wires an App over the fake gateway and a memory cache,
// logged in as the given role.
type testHarness struct {
	app      *App
	gw       *fakeGateway
	cache    *MemoryCache
	identity Identity
	profile  models.Profile
	category models.Category
}

func newTestHarness(role models.Role) *testHarness {
	gw := newFakeGateway()
	cache := NewMemoryCache()

	userID := primitive.NewObjectID()
	identity := Identity{ID: userID.Hex(), Email: "ada@example.test"}
	profile := models.Profile{
		ID:       userID,
		Username: "ada",
		Email:    identity.Email,
		Role:     role,
	}
	category := models.Category{ID: primitive.NewObjectID(), Name: "Routes", Icon: "road"}

	gw.identity = &identity
	gw.profiles[profile.Username] = profile
	gw.categories = []models.Category{category}

	return &testHarness{
		app:      NewApp(gw, cache),
		gw:       gw,
		cache:    cache,
		identity: identity,
		profile:  profile,
		category: category,
	}
}

func (h *testHarness) login() {
	h.app.Session.Login(h.identity, h.profile)
}
