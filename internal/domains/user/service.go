package user

import (
	"context"

	"github.com/google/uuid"
)

// Service is the identity contract used by the handlers and the auth middleware.
// Validation failures come back as form.Errors.
type Service interface {
	Register(ctx context.Context, f RegisterForm) (*User, error)

	// Authenticate returns ErrInvalidCredentials for unknown users, wrong
	// passwords and inactive accounts alike.
	Authenticate(ctx context.Context, f LoginForm) (*User, error)

	GetByID(ctx context.Context, id uuid.UUID) (*User, error)
	UpdateProfile(ctx context.Context, id uuid.UUID, f ProfileForm) (*User, error)
}
