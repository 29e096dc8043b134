package user

import (
	"fmt"
	"regexp"
	"strings"

	validation "github.com/go-ozzo/ozzo-validation/v4"
	"github.com/go-ozzo/ozzo-validation/v4/is"

	"contact-agenda/internal/shared"
	"contact-agenda/internal/shared/form"
)

const (
	MaxUsernameLength = 150
	MaxNameLength     = 150
	MaxEmailLength    = 254

	MinProfileNameLength = 2
	MaxProfileNameLength = 30
)

var usernamePattern = regexp.MustCompile(`^[\w.@+-]+$`)

// RegisterForm is the input of the registration view.
type RegisterForm struct {
	Username  string `form:"username" json:"username"`
	FirstName string `form:"first_name" json:"first_name"`
	LastName  string `form:"last_name" json:"last_name"`
	Email     string `form:"email" json:"email"`
	Password1 string `form:"password1" json:"password1"`
	Password2 string `form:"password2" json:"password2"`
}

func (f *RegisterForm) Normalize() {
	f.Username = strings.TrimSpace(f.Username)
	f.FirstName = strings.TrimSpace(f.FirstName)
	f.LastName = strings.TrimSpace(f.LastName)
	f.Email = strings.TrimSpace(f.Email)
}

// Validate checks formats and the password pair. Uniqueness and the
// password policy need collaborators and are checked by the service.
func (f *RegisterForm) Validate() form.Errors {
	err := validation.ValidateStruct(f,
		validation.Field(&f.Username, usernameRules()...),
		validation.Field(&f.FirstName, validation.Required.Error(MsgRequired), maxLength(MaxNameLength)),
		validation.Field(&f.LastName, validation.Required.Error(MsgRequired), maxLength(MaxNameLength)),
		validation.Field(&f.Email, emailRules()...),
		validation.Field(&f.Password1, validation.Required.Error(MsgRequired)),
		validation.Field(&f.Password2, validation.Required.Error(MsgRequired)),
	)
	errs := collect(err)

	if f.Password1 != "" && f.Password2 != "" && f.Password1 != f.Password2 {
		errs.Add("password2", MsgPasswordMismatch)
	}
	return errs
}

// ProfileForm is the input of the profile view. Empty passwords mean
// "keep the current one".
type ProfileForm struct {
	Username  string `form:"username" json:"username"`
	FirstName string `form:"first_name" json:"first_name"`
	LastName  string `form:"last_name" json:"last_name"`
	Email     string `form:"email" json:"email"`
	Password1 string `form:"password1" json:"password1"`
	Password2 string `form:"password2" json:"password2"`
}

// ProfileFormFromUser pre-fills the profile form; passwords stay empty.
func ProfileFormFromUser(u *User) ProfileForm {
	return ProfileForm{
		Username:  u.Username,
		FirstName: u.FirstName,
		LastName:  u.LastName,
		Email:     u.Email,
	}
}

func (f *ProfileForm) Normalize() {
	f.Username = strings.TrimSpace(f.Username)
	f.FirstName = strings.TrimSpace(f.FirstName)
	f.LastName = strings.TrimSpace(f.LastName)
	f.Email = strings.TrimSpace(f.Email)
}

// ChangesPassword reports whether a new password was submitted.
func (f *ProfileForm) ChangesPassword() bool {
	return f.Password1 != "" || f.Password2 != ""
}

func (f *ProfileForm) Validate() form.Errors {
	nameRules := []validation.Rule{
		validation.Required.Error(MsgRequired),
		validation.RuneLength(MinProfileNameLength, MaxProfileNameLength).Error(
			fmt.Sprintf("Ensure this value has between %d and %d characters.", MinProfileNameLength, MaxProfileNameLength)),
	}
	err := validation.ValidateStruct(f,
		validation.Field(&f.Username, usernameRules()...),
		validation.Field(&f.FirstName, nameRules...),
		validation.Field(&f.LastName, nameRules...),
		validation.Field(&f.Email, emailRules()...),
	)
	errs := collect(err)

	if f.ChangesPassword() && (f.Password1 == "" || f.Password2 == "" || f.Password1 != f.Password2) {
		errs.Add("password2", MsgPasswordMismatch)
	}
	return errs
}

// LoginForm carries credentials; it is never rendered back.
type LoginForm struct {
	Username string `form:"username" json:"username"`
	Password string `form:"password" json:"password"`
}

func usernameRules() []validation.Rule {
	return []validation.Rule{
		validation.Required.Error(MsgRequired),
		maxLength(MaxUsernameLength),
		validation.Match(usernamePattern).Error(MsgInvalidUsername),
	}
}

func emailRules() []validation.Rule {
	return []validation.Rule{
		validation.Required.Error(MsgRequired),
		maxLength(MaxEmailLength),
		is.EmailFormat.Error(MsgInvalidEmail),
	}
}

func maxLength(n int) validation.Rule {
	return validation.RuneLength(0, n).Error(fmt.Sprintf("Ensure this value has at most %d characters.", n))
}

func collect(err error) form.Errors {
	errs, internal := form.FromValidation(err)
	if internal != nil {
		errs.Add(shared.NonFieldErrors, internal.Error())
	}
	return errs
}
