package user

import (
	"context"

	"github.com/google/uuid"
)

// Repository is the data access contract for users.
type Repository interface {
	// Create inserts u, filling ID and DateJoined.
	// Returns ErrEmailAlreadyExists / ErrUsernameAlreadyExists on a unique violation.
	Create(ctx context.Context, u *User) error

	FindByID(ctx context.Context, id uuid.UUID) (*User, error)
	FindByUsername(ctx context.Context, username string) (*User, error)

	// Update writes the profile columns and, when passwordHash is not
	// empty, the new hash, in one transaction.
	Update(ctx context.Context, u *User, passwordHash string) error
	UpdateLastLogin(ctx context.Context, id uuid.UUID) error

	// ExistsByEmail compares case-insensitively. exclude, when set, is ignored.
	ExistsByEmail(ctx context.Context, email string, exclude *uuid.UUID) (bool, error)
	ExistsByUsername(ctx context.Context, username string, exclude *uuid.UUID) (bool, error)
}
