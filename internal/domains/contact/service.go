package contact

import (
	"context"
	"io"

	"github.com/google/uuid"

	"contact-agenda/internal/shared"
)

// ListRequest is the query of the index view.
type ListRequest struct {
	Query string `form:"q"`
	Page  int    `form:"page"`
}

// AdminListRequest is the query of the admin contact list.
type AdminListRequest struct {
	Query    string `form:"q"`
	Ordering string `form:"o"`
	Page     int    `form:"page"`
	All      bool   `form:"all"`
}

type ListResult struct {
	Contacts   []Contact         `json:"contacts"`
	Pagination shared.Pagination `json:"pagination"`
}

// Service is the contact business contract.
// Every owner-facing method is scoped to ownerID; a scope miss is ErrContactNotFound.
// Validation failures come back as form.Errors.
type Service interface {
	Create(ctx context.Context, ownerID uuid.UUID, f ContactForm) (*Contact, error)
	GetOwned(ctx context.Context, ownerID uuid.UUID, id int64) (*Contact, error)
	Update(ctx context.Context, ownerID uuid.UUID, id int64, f ContactForm) (*Contact, error)
	Delete(ctx context.Context, ownerID uuid.UUID, id int64) error
	List(ctx context.Context, ownerID uuid.UUID, req ListRequest) (*ListResult, error)

	// Admin surface, no ownership scope.
	AdminList(ctx context.Context, req AdminListRequest) (*ListResult, error)
	AdminGet(ctx context.Context, id int64) (*Contact, error)
	AdminUpdate(ctx context.Context, id int64, f ContactForm) (*Contact, error)
	AdminDelete(ctx context.Context, id int64) error
	Export(ctx context.Context, req AdminListRequest, w io.Writer) error
}

// PictureStore persists picture bytes under a key.
type PictureStore interface {
	Upload(ctx context.Context, key string, data []byte, contentType string) (string, error)
	Delete(ctx context.Context, key string) error
}
