package contact

import (
	"strings"
	"time"

	"github.com/google/uuid"
)

// Contact is one entry of a user's agenda.
//
// Show is a visibility flag: hidden contacts drop out of every owner scoped
// lookup without being erased. Picture holds the media storage key
// (pictures/YYYY/MM/<name>), empty when there is none.
type Contact struct {
	ID          int64      `db:"id" json:"id"`
	FirstName   string     `db:"first_name" json:"first_name"`
	LastName    string     `db:"last_name" json:"last_name"`
	Phone       string     `db:"phone" json:"phone"`
	Email       string     `db:"email" json:"email"`
	Description string     `db:"description" json:"description"`
	CreatedDate time.Time  `db:"created_date" json:"created_date"`
	Show        bool       `db:"show" json:"show"`
	Picture     string     `db:"picture" json:"picture,omitempty"`
	CategoryID  *int64     `db:"category_id" json:"category_id,omitempty"`
	OwnerID     *uuid.UUID `db:"owner_id" json:"owner_id,omitempty"`

	// Read-only, filled by joins.
	CategoryName string `db:"category_name" json:"category_name,omitempty"`
}

func (c *Contact) FullName() string {
	return strings.TrimSpace(c.FirstName + " " + c.LastName)
}

func (c *Contact) String() string {
	return c.FullName()
}

// OwnedBy reports whether userID is the contact's owner.
func (c *Contact) OwnedBy(userID uuid.UUID) bool {
	return c.OwnerID != nil && *c.OwnerID == userID
}

// Apply copies validated form values onto c. Identity, owner, visibility and
// creation date are never touched; Picture is replaced only when key is non-empty.
func (c *Contact) Apply(f *ContactForm, categoryID *int64, pictureKey string) {
	c.FirstName = f.FirstName
	c.LastName = f.LastName
	c.Phone = f.Phone
	c.Email = f.Email
	c.Description = f.Description
	c.CategoryID = categoryID
	if pictureKey != "" {
		c.Picture = pictureKey
	}
}
