package category

import "context"

// Repository is the data access contract for categories.
type Repository interface {
	Create(ctx context.Context, c *Category) error

	// FindByID returns ErrCategoryNotFound on a miss.
	FindByID(ctx context.Context, id int64) (*Category, error)

	// List returns every category, newest first.
	List(ctx context.Context) ([]Category, error)

	Update(ctx context.Context, c *Category) error

	// Delete removes the category after detaching it from its contacts.
	// It returns how many contacts lost their category.
	Delete(ctx context.Context, id int64) (int64, error)

	Exists(ctx context.Context, id int64) (bool, error)
}
