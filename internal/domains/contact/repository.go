package contact

import (
	"context"

	"github.com/google/uuid"
)

// ListFilter selects a page of an owner's visible contacts.
type ListFilter struct {
	OwnerID uuid.UUID
	Query   string
	Limit   int
	Offset  int
}

// AdminFilter selects a page of all contacts for the admin surface.
// OrderBy must already be whitelisted by the caller.
type AdminFilter struct {
	Query   string
	OrderBy string
	Desc    bool
	Limit   int
	Offset  int
}

// Repository is the data access contract for contacts.
//
// Owner scoped lookups are the access-control boundary: FindOwned matches
// (id, show = true, owner) and reports ErrContactNotFound for any miss.
type Repository interface {
	// Create inserts c, filling ID and CreatedDate.
	Create(ctx context.Context, c *Contact) error

	FindOwned(ctx context.Context, id int64, ownerID uuid.UUID) (*Contact, error)

	// FindByID ignores ownership and visibility. Admin only.
	FindByID(ctx context.Context, id int64) (*Contact, error)

	// Update writes the editable columns. Last write wins.
	Update(ctx context.Context, c *Contact) error

	// Delete hard-deletes the row.
	Delete(ctx context.Context, id int64) error

	ListOwned(ctx context.Context, f ListFilter) ([]Contact, int, error)

	ListAll(ctx context.Context, f AdminFilter) ([]Contact, int, error)
}
