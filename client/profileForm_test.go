package client

import (
	"context"
	"errors"
	"testing"

	"smartcite/models"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestProfileFormValidation(t *testing.T) {
	h := newTestHarness(models.Citizen)
	h.login()

	form := &ProfileForm{Username: "", Email: "not-an-email", Phone: "699112233"}
	_, err := h.app.Profile.Update(context.Background(), form)

	var fieldErrors ValidationErrors
	require.ErrorAs(t, err, &fieldErrors)
	assert.Contains(t, fieldErrors, "username")
	assert.Contains(t, fieldErrors, "email")
	assert.Contains(t, fieldErrors, "phone")
	assert.Equal(t, 0, h.gw.callCount("UpdateProfile"))
}

func TestProfileUpdateWithoutEmailChange(t *testing.T) {
	h := newTestHarness(models.Citizen)
	h.login()

	form := FormFromProfile(h.profile)
	form.FirstName = "Ada"
	form.LastName = "Lovelace"
	form.Phone = "+237699112233"

	updated, err := h.app.Profile.Update(context.Background(), &form)
	require.NoError(t, err)

	assert.Equal(t, "Ada", updated.FirstName)
	assert.Equal(t, 1, h.gw.callCount("UpdateProfile"))
	// unchanged email never touches the auth record
	assert.Equal(t, 0, h.gw.callCount("UpdateAuthEmail"))

	sessionProfile, ok := h.app.Session.Profile()
	require.True(t, ok)
	assert.Equal(t, "Ada", sessionProfile.FirstName)
}

func TestProfileUpdateWithEmailChange(t *testing.T) {
	h := newTestHarness(models.Citizen)
	h.login()

	form := FormFromProfile(h.profile)
	form.Email = "ada.new@example.test"

	updated, err := h.app.Profile.Update(context.Background(), &form)
	require.NoError(t, err)

	assert.Equal(t, "ada.new@example.test", updated.Email)
	assert.Equal(t, 1, h.gw.callCount("UpdateProfile"))
	assert.Equal(t, 1, h.gw.callCount("UpdateAuthEmail"))
}

func TestProfileUpdateRollsBackOnAuthEmailFailure(t *testing.T) {
	h := newTestHarness(models.Citizen)
	h.login()

	h.gw.failAuthEmail = errors.New("duplicate email")

	form := FormFromProfile(h.profile)
	form.Email = "taken@example.test"

	_, err := h.app.Profile.Update(context.Background(), &form)
	require.Error(t, err)

	// profile update, failed auth email update, compensating revert
	assert.Equal(t, 2, h.gw.callCount("UpdateProfile"))
	assert.Equal(t, 1, h.gw.callCount("UpdateAuthEmail"))

	sessionProfile, ok := h.app.Session.Profile()
	require.True(t, ok)
	assert.Equal(t, h.profile.Email, sessionProfile.Email, "profile email should be rolled back")
}

func TestAttachAvatarReplacesPrevious(t *testing.T) {
	h := newTestHarness(models.Citizen)
	h.login()

	oldPath := h.identity.ID + "/100.jpg"
	h.gw.objects[oldPath] = []byte("old-avatar")
	oldURL := "https://storage.test/storage/" + oldPath

	form := FormFromProfile(h.profile)
	form.Avatar = &oldURL

	err := h.app.Profile.AttachAvatar(context.Background(), &form, "selfie.heic", []byte("new-avatar"))
	require.NoError(t, err)

	_, stillThere := h.gw.objects[oldPath]
	assert.False(t, stillThere)
	require.NotNil(t, form.Avatar)
	assert.NotEqual(t, oldURL, *form.Avatar)
}
