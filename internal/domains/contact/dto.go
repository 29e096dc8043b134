package contact

import (
	"errors"
	"fmt"
	"strconv"
	"strings"

	validation "github.com/go-ozzo/ozzo-validation/v4"
	"github.com/go-ozzo/ozzo-validation/v4/is"

	"contact-agenda/internal/shared"
	"contact-agenda/internal/shared/form"
)

const (
	MaxNameLength  = 50
	MaxPhoneLength = 50
	MaxEmailLength = 250
)

// Upload is an image submitted with the contact form.
type Upload struct {
	Filename    string
	ContentType string
	Data        []byte
}

// ContactForm is the untrusted input of the create and update views.
// Category carries the raw select value; empty means no category.
type ContactForm struct {
	FirstName   string  `form:"first_name" json:"first_name"`
	LastName    string  `form:"last_name" json:"last_name"`
	Phone       string  `form:"phone" json:"phone"`
	Email       string  `form:"email" json:"email"`
	Description string  `form:"description" json:"description"`
	Category    string  `form:"category" json:"category"`
	Picture     *Upload `form:"-" json:"picture"`
}

// FormFromContact pre-fills a form with the stored values.
func FormFromContact(c *Contact) ContactForm {
	f := ContactForm{
		FirstName:   c.FirstName,
		LastName:    c.LastName,
		Phone:       c.Phone,
		Email:       c.Email,
		Description: c.Description,
	}
	if c.CategoryID != nil {
		f.Category = strconv.FormatInt(*c.CategoryID, 10)
	}
	return f
}

// Normalize strips surrounding whitespace from every text input.
func (f *ContactForm) Normalize() {
	f.FirstName = strings.TrimSpace(f.FirstName)
	f.LastName = strings.TrimSpace(f.LastName)
	f.Phone = strings.TrimSpace(f.Phone)
	f.Email = strings.TrimSpace(f.Email)
	f.Description = strings.TrimSpace(f.Description)
	f.Category = strings.TrimSpace(f.Category)
}

// Validate applies the field rules and the first/last name rule.
// It does not touch storage; category existence is checked by the service.
func (f *ContactForm) Validate() form.Errors {
	err := validation.ValidateStruct(f,
		validation.Field(&f.FirstName,
			validation.Required.Error(MsgRequired),
			maxLength(MaxNameLength),
		),
		validation.Field(&f.LastName, maxLength(MaxNameLength)),
		validation.Field(&f.Phone,
			validation.Required.Error(MsgRequired),
			maxLength(MaxPhoneLength),
		),
		validation.Field(&f.Email,
			maxLength(MaxEmailLength),
			is.EmailFormat.Error(MsgInvalidEmail),
		),
		validation.Field(&f.Category, validation.By(validCategoryChoice)),
		validation.Field(&f.Picture, validation.By(validPictureUpload)),
	)

	errs, internal := form.FromValidation(err)
	if internal != nil {
		errs.Add(shared.NonFieldErrors, internal.Error())
	}

	if f.FirstName != "" && f.FirstName == f.LastName {
		errs.Add("first_name", MsgSameNames)
		errs.Add("last_name", MsgSameNames)
	}

	return errs
}

// CategoryID returns the selected category, nil when none or unparsable.
func (f *ContactForm) CategoryID() *int64 {
	if f.Category == "" {
		return nil
	}
	id, err := strconv.ParseInt(f.Category, 10, 64)
	if err != nil || id <= 0 {
		return nil
	}
	return &id
}

func maxLength(n int) validation.Rule {
	return validation.RuneLength(0, n).Error(fmt.Sprintf("Ensure this value has at most %d characters.", n))
}

func validCategoryChoice(value interface{}) error {
	s, _ := value.(string)
	if s == "" {
		return nil
	}
	if id, err := strconv.ParseInt(s, 10, 64); err != nil || id <= 0 {
		return errors.New(MsgInvalidChoice)
	}
	return nil
}

func validPictureUpload(value interface{}) error {
	u, _ := value.(*Upload)
	if u == nil {
		return nil
	}
	if len(u.Data) == 0 || !strings.HasPrefix(strings.ToLower(u.ContentType), "image/") {
		return errors.New(MsgInvalidImage)
	}
	return nil
}
