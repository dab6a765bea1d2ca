package client

import (
	"context"
	"errors"
	"strings"
	"testing"

	"smartcite/models"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

func TestCreateReport(t *testing.T) {
	h := newTestHarness(models.Citizen)
	h.login()

	form := &ReportForm{
		Title:       "Pothole",
		Category:    h.category.ID.Hex(),
		Description: "Deep hole",
		Location:    "Main St",
		Priority:    2,
	}

	report, err := h.app.Submitter.Create(context.Background(), form)
	require.NoError(t, err)

	// exactly the validated fields went over the wire; image stayed
	// optional and empty
	assert.Equal(t, "Pothole", h.gw.lastCreate.Title)
	assert.Equal(t, h.category.ID.Hex(), h.gw.lastCreate.Category)
	assert.Equal(t, "Deep hole", h.gw.lastCreate.Description)
	assert.Equal(t, "Main St", h.gw.lastCreate.Location)
	assert.Equal(t, 2, h.gw.lastCreate.Priority)
	assert.Nil(t, h.gw.lastCreate.Image)

	assert.Equal(t, models.Pending, report.Status)

	// the reports provider was re-fetched and now publishes the new report
	require.Len(t, h.app.Reports.Items(), 1)
	assert.Equal(t, report.ID, h.app.Reports.Items()[0].ID)

	// the mutation produced a notification naming the report
	found := false
	for _, notification := range h.app.Notifications.Items() {
		if strings.Contains(notification.Message, "Pothole") {
			found = true
		}
	}
	assert.True(t, found, "expected a notification mentioning the new report")
}

func TestValidationBlocksNetwork(t *testing.T) {
	h := newTestHarness(models.Citizen)
	h.login()

	form := &ReportForm{
		Title:       "",
		Category:    h.category.ID.Hex(),
		Description: "Deep hole",
		Location:    "Main St",
	}

	_, err := h.app.Submitter.Create(context.Background(), form)

	var fieldErrors ValidationErrors
	require.ErrorAs(t, err, &fieldErrors)
	assert.Contains(t, fieldErrors, "title")
	assert.Equal(t, 0, h.gw.callCount("CreateReport"))
}

func TestUnknownCategoryRejected(t *testing.T) {
	h := newTestHarness(models.Citizen)
	h.login()

	form := &ReportForm{
		Title:       "Pothole",
		Category:    primitive.NewObjectID().Hex(),
		Description: "Deep hole",
		Location:    "Main St",
	}

	_, err := h.app.Submitter.Create(context.Background(), form)

	var fieldErrors ValidationErrors
	require.ErrorAs(t, err, &fieldErrors)
	assert.Contains(t, fieldErrors, "category")
	assert.Equal(t, 0, h.gw.callCount("CreateReport"))
}

func TestPriorityDefaultsToLow(t *testing.T) {
	h := newTestHarness(models.Citizen)
	h.login()

	form := &ReportForm{
		Title:       "Fuite d'eau",
		Category:    h.category.ID.Hex(),
		Description: "Fuite devant le marché",
		Location:    "Mvog-Ada",
	}

	_, err := h.app.Submitter.Create(context.Background(), form)
	require.NoError(t, err)
	assert.Equal(t, int(models.Low), h.gw.lastCreate.Priority)
}

func TestCreateRequiresLiveSession(t *testing.T) {
	h := newTestHarness(models.Citizen)
	h.login()

	// the local session still holds an identity, but the remote
	// session has expired
	h.gw.identity = nil

	form := &ReportForm{
		Title:       "Pothole",
		Category:    h.category.ID.Hex(),
		Description: "Deep hole",
		Location:    "Main St",
	}

	_, err := h.app.Submitter.Create(context.Background(), form)
	assert.ErrorIs(t, err, ErrNotAuthenticated)
	assert.Equal(t, 0, h.gw.callCount("CreateReport"))
}

func TestPostMutationRefresh(t *testing.T) {
	h := newTestHarness(models.Citizen)
	h.login()

	before := h.gw.callCount("ListReportsByOwner")

	form := &ReportForm{
		Title:       "Pothole",
		Category:    h.category.ID.Hex(),
		Description: "Deep hole",
		Location:    "Main St",
	}
	_, err := h.app.Submitter.Create(context.Background(), form)
	require.NoError(t, err)

	// fresh remote fetch after the mutation, cache rewritten
	assert.Equal(t, before+1, h.gw.callCount("ListReportsByOwner"))
	cached, hit, err := h.cache.Get(ReportsKey)
	require.NoError(t, err)
	require.True(t, hit)
	assert.Contains(t, cached, "Pothole")
	assert.Equal(t, Ready, h.app.Reports.State())
}

func TestDeleteRejectedWhenNotPending(t *testing.T) {
	h := newTestHarness(models.Citizen)
	h.login()

	report := models.Report{
		ID:     primitive.NewObjectID(),
		Title:  "Déjà pris en charge",
		UserID: h.profile.ID,
		Status: models.InTreatment,
	}
	h.gw.reports = []models.Report{report}
	require.NoError(t, h.cache.Set(ReportsKey, "sentinel"))

	err := h.app.Submitter.Delete(context.Background(), report)

	assert.ErrorIs(t, err, ErrNotPending)
	// the precondition fired before any remote call; nothing was
	// invalidated and no notification appeared
	assert.Equal(t, 0, h.gw.callCount("DeleteReport"))
	cached, hit, cerr := h.cache.Get(ReportsKey)
	require.NoError(t, cerr)
	require.True(t, hit)
	assert.Equal(t, "sentinel", cached)
	assert.Empty(t, h.gw.notifications)
}

func TestUpdateRejectedWhenNotPending(t *testing.T) {
	h := newTestHarness(models.Citizen)
	h.login()

	report := models.Report{
		ID:     primitive.NewObjectID(),
		Title:  "Résolu",
		UserID: h.profile.ID,
		Status: models.Resolved,
	}

	form := &ReportForm{
		Title:       "Résolu",
		Category:    h.category.ID.Hex(),
		Description: "Mise à jour tardive",
		Location:    "Bastos",
	}

	err := h.app.Submitter.Update(context.Background(), report, form)
	assert.ErrorIs(t, err, ErrNotPending)
	assert.Equal(t, 0, h.gw.callCount("UpdateReport"))
}

func TestUpdatePendingReport(t *testing.T) {
	h := newTestHarness(models.Citizen)
	h.login()

	form := &ReportForm{
		Title:       "Pothole",
		Category:    h.category.ID.Hex(),
		Description: "Deep hole",
		Location:    "Main St",
	}
	report, err := h.app.Submitter.Create(context.Background(), form)
	require.NoError(t, err)

	form.Description = "Trou encore plus profond"
	require.NoError(t, h.app.Submitter.Update(context.Background(), report, form))

	require.Len(t, h.app.Reports.Items(), 1)
	assert.Equal(t, "Trou encore plus profond", h.app.Reports.Items()[0].Description)
}

func TestAttachImageUploads(t *testing.T) {
	h := newTestHarness(models.Citizen)
	h.login()

	form := &ReportForm{}
	err := h.app.Submitter.AttachImage(context.Background(), form, "photo.PNG", []byte("fake-png"))
	require.NoError(t, err)

	require.NotNil(t, form.Image)
	assert.True(t, strings.HasPrefix(*form.Image, "https://storage.test/storage/"+h.identity.ID+"/"))
	assert.True(t, strings.HasSuffix(*form.Image, ".png"))
	assert.Equal(t, 1, h.gw.callCount("UploadImage"))
	assert.Equal(t, 0, h.gw.callCount("DeleteImage"))
}

func TestAttachImageReplaceDeletesOldFirst(t *testing.T) {
	h := newTestHarness(models.Citizen)
	h.login()

	oldPath := h.identity.ID + "/100.jpg"
	h.gw.objects[oldPath] = []byte("old")
	oldURL := "https://storage.test/storage/" + oldPath

	form := &ReportForm{Image: &oldURL}
	err := h.app.Submitter.AttachImage(context.Background(), form, "new.jpg", []byte("new"))
	require.NoError(t, err)

	_, stillThere := h.gw.objects[oldPath]
	assert.False(t, stillThere, "old object should be deleted")
	require.NotNil(t, form.Image)
	assert.NotEqual(t, oldURL, *form.Image)
}

func TestAttachImageAbortsWhenDeleteFails(t *testing.T) {
	h := newTestHarness(models.Citizen)
	h.login()

	oldURL := "https://storage.test/storage/" + h.identity.ID + "/100.jpg"
	h.gw.failDeleteImage = errors.New("storage error")

	form := &ReportForm{Image: &oldURL}
	err := h.app.Submitter.AttachImage(context.Background(), form, "new.jpg", []byte("new"))

	require.Error(t, err)
	// the deletion failure aborted the whole attachment: no upload was
	// attempted and the form still points at the old image
	assert.Equal(t, 0, h.gw.callCount("UploadImage"))
	require.NotNil(t, form.Image)
	assert.Equal(t, oldURL, *form.Image)
}

func TestCreateFailureCleansUpUploadedImage(t *testing.T) {
	h := newTestHarness(models.Citizen)
	h.login()

	form := &ReportForm{
		Title:       "Pothole",
		Category:    h.category.ID.Hex(),
		Description: "Deep hole",
		Location:    "Main St",
	}
	require.NoError(t, h.app.Submitter.AttachImage(context.Background(), form, "photo.jpg", []byte("img")))
	require.Len(t, h.gw.objects, 1)

	h.gw.failCreate = &DomainError{Status: 400, Message: "rejected"}

	_, err := h.app.Submitter.Create(context.Background(), form)
	require.Error(t, err)

	// the freshly uploaded object was compensated away
	assert.Empty(t, h.gw.objects)
	assert.Nil(t, form.Image)
}

func TestDeleteRemovesReportAndImage(t *testing.T) {
	h := newTestHarness(models.Citizen)
	h.login()

	form := &ReportForm{
		Title:       "Pothole",
		Category:    h.category.ID.Hex(),
		Description: "Deep hole",
		Location:    "Main St",
	}
	require.NoError(t, h.app.Submitter.AttachImage(context.Background(), form, "photo.jpg", []byte("img")))
	report, err := h.app.Submitter.Create(context.Background(), form)
	require.NoError(t, err)

	require.NoError(t, h.app.Submitter.Delete(context.Background(), report))

	assert.Empty(t, h.gw.reports)
	assert.Empty(t, h.gw.objects, "stored image should be removed with the report")
	assert.Empty(t, h.app.Reports.Items())
}
