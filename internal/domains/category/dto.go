package category

import (
	"strings"

	validation "github.com/go-ozzo/ozzo-validation/v4"
)

// MaxNameLength bounds Category.Name.
const MaxNameLength = 50

// CategoryRequest is the admin payload for create and update.
type CategoryRequest struct {
	Name string `json:"name" form:"name"`
}

func (r *CategoryRequest) Normalize() {
	r.Name = strings.TrimSpace(r.Name)
}

func (r CategoryRequest) Validate() error {
	return validation.ValidateStruct(&r,
		validation.Field(&r.Name,
			validation.Required.Error("This field is required."),
			validation.RuneLength(0, MaxNameLength).Error("Ensure this value has at most 50 characters."),
		),
	)
}
