package contact

import "errors"

var (
	// ErrContactNotFound covers both "does not exist" and "not yours".
	ErrContactNotFound = errors.New("contact not found")
)

// Field level messages.
const (
	MsgRequired      = "This field is required."
	MsgSameNames     = "First name cannot be equal to last name."
	MsgInvalidEmail  = "Enter a valid email address."
	MsgInvalidChoice = "Select a valid choice. That choice is not one of the available choices."
	MsgInvalidImage  = "Upload a valid image. The file you uploaded was either not an image or a corrupted image."
	MsgImageTooLarge = "The uploaded image is too large."
)
