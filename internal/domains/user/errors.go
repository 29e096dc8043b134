package user

import "errors"

// Repository-level errors
var (
	ErrUserNotFound          = errors.New("user not found")
	ErrEmailAlreadyExists    = errors.New("email already exists")
	ErrUsernameAlreadyExists = errors.New("username already exists")
)

// Service-level errors
var (
	ErrInvalidCredentials = errors.New("invalid username or password")
	ErrUserInactive       = errors.New("user account is inactive")
)

// Field level messages.
const (
	MsgRequired         = "This field is required."
	MsgEmailTaken       = "An account with this email already exists."
	MsgUsernameTaken    = "A user with that username already exists."
	MsgInvalidEmail     = "Enter a valid email address."
	MsgInvalidUsername  = "Enter a valid username. This value may contain only letters, numbers, and @/./+/-/_ characters."
	MsgPasswordMismatch = "Passwords do not match."
	MsgInvalidLogin     = "Invalid login."
)
