package client

import (
	"context"
	"errors"
	"fmt"

	"smartcite/models"

	"github.com/go-playground/validator/v10"
)

// ProfileForm holds the profile edit fields. Phone, when present, must
// carry its country calling code (E.164).
type ProfileForm struct {
	Username  string  `validate:"required,max=50"`
	FirstName string  `validate:"omitempty,max=50"`
	LastName  string  `validate:"omitempty,max=50"`
	Email     string  `validate:"required,email"`
	Phone     string  `validate:"omitempty,e164"`
	Avatar    *string `validate:"-"`
}

// FormFromProfile pre-fills the form from the current profile.
func FormFromProfile(profile models.Profile) ProfileForm {
	return ProfileForm{
		Username:  profile.Username,
		FirstName: profile.FirstName,
		LastName:  profile.LastName,
		Email:     profile.Email,
		Phone:     profile.Phone,
		Avatar:    profile.Avatar,
	}
}

// ProfileUpdater drives the profile update workflow. Changing the email
// takes two remote calls (profile fields, then the auth email); when
// the second fails the first is rolled back so the two records never
// drift apart.
type ProfileUpdater struct {
	gw       Gateway
	session  *Session
	validate *validator.Validate
}

func NewProfileUpdater(gw Gateway, session *Session) *ProfileUpdater {
	return &ProfileUpdater{
		gw:       gw,
		session:  session,
		validate: validator.New(),
	}
}

// Validate applies the field-level rules.
func (u *ProfileUpdater) Validate(form *ProfileForm) error {
	if err := u.validate.Struct(form); err != nil {
		var verrs validator.ValidationErrors
		if !errors.As(err, &verrs) {
			return err
		}
		fieldErrors := ValidationErrors{}
		for _, fe := range verrs {
			switch fe.Field() {
			case "Username":
				fieldErrors["username"] = "username is required"
			case "Email":
				fieldErrors["email"] = "a valid email is required"
			case "Phone":
				fieldErrors["phone"] = "phone must include its country calling code"
			default:
				fieldErrors[fe.Field()] = "invalid value"
			}
		}
		return fieldErrors
	}
	return nil
}

// AttachAvatar uploads a picked avatar image, deleting the previous
// object first, and stores the public URL into the form.
func (u *ProfileUpdater) AttachAvatar(ctx context.Context, form *ProfileForm, filename string, data []byte) error {
	identity, ok := u.session.Identity()
	if !ok {
		return ErrNotAuthenticated
	}

	publicURL, _, err := replaceImage(ctx, u.gw, identity.ID, filename, data, form.Avatar)
	if err != nil {
		return err
	}

	form.Avatar = &publicURL
	return nil
}

// Update pushes the profile fields and, iff the email changed relative
// to the session's value, the auth email as well. Both calls must
// succeed; a second-call failure rolls the profile email back.
func (u *ProfileUpdater) Update(ctx context.Context, form *ProfileForm) (models.Profile, error) {
	if err := u.Validate(form); err != nil {
		return models.Profile{}, err
	}

	previous, ok := u.session.Profile()
	if !ok {
		return models.Profile{}, ErrNotAuthenticated
	}
	if _, err := u.gw.CurrentIdentity(ctx); err != nil {
		return models.Profile{}, fmt.Errorf("%w: %v", ErrNotAuthenticated, err)
	}

	fields := ProfileFields{
		Username:  &form.Username,
		FirstName: &form.FirstName,
		LastName:  &form.LastName,
		Email:     &form.Email,
		Phone:     &form.Phone,
		Avatar:    form.Avatar,
	}

	updated, err := u.gw.UpdateProfile(ctx, fields)
	if err != nil {
		return models.Profile{}, err
	}

	if form.Email != previous.Email {
		if err := u.gw.UpdateAuthEmail(ctx, form.Email); err != nil {
			// roll the profile email back rather than leaving the two
			// records inconsistent
			revert := ProfileFields{Email: &previous.Email}
			if reverted, revertErr := u.gw.UpdateProfile(ctx, revert); revertErr == nil {
				updated = reverted
			}
			u.session.SetProfile(updated)
			return updated, fmt.Errorf("update auth email: %w", err)
		}
	}

	u.session.SetProfile(updated)
	return updated, nil
}
