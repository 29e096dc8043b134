package category

import "context"

// Service is the business contract used by the admin surface and the contact form.
type Service interface {
	List(ctx context.Context) ([]Category, error)
	Get(ctx context.Context, id int64) (*Category, error)
	Exists(ctx context.Context, id int64) (bool, error)

	Create(ctx context.Context, req CategoryRequest) (*Category, error)
	Update(ctx context.Context, id int64, req CategoryRequest) (*Category, error)
	Delete(ctx context.Context, id int64) error
}
