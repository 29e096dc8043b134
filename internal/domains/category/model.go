package category

// Category is an administrative label contacts may point at.
// Deleting a category clears the reference on its contacts, it never deletes them.
type Category struct {
	ID   int64  `db:"id" json:"id"`
	Name string `db:"name" json:"name"`
}

func (c Category) String() string {
	return c.Name
}
