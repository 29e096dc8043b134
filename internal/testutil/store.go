package testutil

import (
	"context"
	"sort"
	"strconv"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"

	"contact-agenda/internal/domains/category"
	"contact-agenda/internal/domains/contact"
	"contact-agenda/internal/domains/user"
)

// Store is an in-memory database shared by the fake repositories, so that
// deleting a category clears it on the contacts like ON DELETE SET NULL.
type Store struct {
	mu         sync.Mutex
	users      map[uuid.UUID]user.User
	categories map[int64]category.Category
	contacts   map[int64]contact.Contact
	nextCatID  int64
	nextID     int64
	clock      func() time.Time
}

func NewStore() *Store {
	return &Store{
		users:      make(map[uuid.UUID]user.User),
		categories: make(map[int64]category.Category),
		contacts:   make(map[int64]contact.Contact),
		clock:      time.Now,
	}
}

func (s *Store) Users() user.Repository { return &userRepo{s} }
func (s *Store) Categories() category.Repository { return &categoryRepo{s} }
func (s *Store) Contacts() contact.Repository { return &contactRepo{s} }

// ContactCount is the number of stored contacts, hidden ones included.
func (s *Store) ContactCount() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.contacts)
}

func (s *Store) UserCount() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.users)
}

// Contact returns a copy of the stored row.
func (s *Store) Contact(id int64) (contact.Contact, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	c, ok := s.contacts[id]
	return c, ok
}

func (s *Store) User(id uuid.UUID) (user.User, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	u, ok := s.users[id]
	return u, ok
}

// PutContact inserts c as-is (visibility and owner included) and returns its id.
func (s *Store) PutContact(c contact.Contact) int64 {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.nextID++
	c.ID = s.nextID
	if c.CreatedDate.IsZero() {
		c.CreatedDate = s.clock()
	}
	s.contacts[c.ID] = c
	return c.ID
}

// ---- users ----

type userRepo struct{ s *Store }

func (r *userRepo) Create(_ context.Context, u *user.User) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	for _, other := range r.s.users {
		if other.Username == u.Username {
			return user.ErrUsernameAlreadyExists
		}
		if strings.EqualFold(other.Email, u.Email) {
			return user.ErrEmailAlreadyExists
		}
	}
	u.ID = uuid.New()
	u.DateJoined = r.s.clock()
	r.s.users[u.ID] = *u
	return nil
}

func (r *userRepo) FindByID(_ context.Context, id uuid.UUID) (*user.User, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	u, ok := r.s.users[id]
	if !ok {
		return nil, user.ErrUserNotFound
	}
	return &u, nil
}

func (r *userRepo) FindByUsername(_ context.Context, username string) (*user.User, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	for _, u := range r.s.users {
		if u.Username == username {
			return &u, nil
		}
	}
	return nil, user.ErrUserNotFound
}

func (r *userRepo) Update(_ context.Context, u *user.User, passwordHash string) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	stored, ok := r.s.users[u.ID]
	if !ok {
		return user.ErrUserNotFound
	}
	stored.Username = u.Username
	stored.FirstName = u.FirstName
	stored.LastName = u.LastName
	stored.Email = u.Email
	if passwordHash != "" {
		stored.PasswordHash = passwordHash
		u.PasswordHash = passwordHash
	}
	r.s.users[u.ID] = stored
	return nil
}

func (r *userRepo) UpdateLastLogin(_ context.Context, id uuid.UUID) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	u, ok := r.s.users[id]
	if !ok {
		return user.ErrUserNotFound
	}
	now := r.s.clock()
	u.LastLogin = &now
	r.s.users[id] = u
	return nil
}

func (r *userRepo) ExistsByEmail(_ context.Context, email string, exclude *uuid.UUID) (bool, error) {
	return r.exists(func(u user.User) bool { return strings.EqualFold(u.Email, email) }, exclude), nil
}

func (r *userRepo) ExistsByUsername(_ context.Context, username string, exclude *uuid.UUID) (bool, error) {
	return r.exists(func(u user.User) bool { return u.Username == username }, exclude), nil
}

func (r *userRepo) exists(match func(user.User) bool, exclude *uuid.UUID) bool {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	for id, u := range r.s.users {
		if exclude != nil && id == *exclude {
			continue
		}
		if match(u) {
			return true
		}
	}
	return false
}

// ---- categories ----

type categoryRepo struct{ s *Store }

func (r *categoryRepo) Create(_ context.Context, c *category.Category) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	r.s.nextCatID++
	c.ID = r.s.nextCatID
	r.s.categories[c.ID] = *c
	return nil
}

func (r *categoryRepo) FindByID(_ context.Context, id int64) (*category.Category, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	c, ok := r.s.categories[id]
	if !ok {
		return nil, category.ErrCategoryNotFound
	}
	return &c, nil
}

func (r *categoryRepo) List(_ context.Context) ([]category.Category, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	out := make([]category.Category, 0, len(r.s.categories))
	for _, c := range r.s.categories {
		out = append(out, c)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID > out[j].ID })
	return out, nil
}

func (r *categoryRepo) Update(_ context.Context, c *category.Category) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	if _, ok := r.s.categories[c.ID]; !ok {
		return category.ErrCategoryNotFound
	}
	r.s.categories[c.ID] = *c
	return nil
}

func (r *categoryRepo) Delete(_ context.Context, id int64) (int64, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	if _, ok := r.s.categories[id]; !ok {
		return 0, category.ErrCategoryNotFound
	}
	var detached int64
	for cid, c := range r.s.contacts {
		if c.CategoryID != nil && *c.CategoryID == id {
			c.CategoryID = nil
			r.s.contacts[cid] = c
			detached++
		}
	}
	delete(r.s.categories, id)
	return detached, nil
}

func (r *categoryRepo) Exists(_ context.Context, id int64) (bool, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	_, ok := r.s.categories[id]
	return ok, nil
}

// ---- contacts ----

type contactRepo struct{ s *Store }

func (r *contactRepo) Create(_ context.Context, c *contact.Contact) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	r.s.nextID++
	c.ID = r.s.nextID
	c.CreatedDate = r.s.clock()
	r.s.contacts[c.ID] = *c
	return nil
}

func (r *contactRepo) FindOwned(_ context.Context, id int64, ownerID uuid.UUID) (*contact.Contact, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	c, ok := r.s.contacts[id]
	if !ok || !c.Show || !c.OwnedBy(ownerID) {
		return nil, contact.ErrContactNotFound
	}
	return r.s.withCategory(c), nil
}

func (r *contactRepo) FindByID(_ context.Context, id int64) (*contact.Contact, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	c, ok := r.s.contacts[id]
	if !ok {
		return nil, contact.ErrContactNotFound
	}
	return r.s.withCategory(c), nil
}

func (r *contactRepo) Update(_ context.Context, c *contact.Contact) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	stored, ok := r.s.contacts[c.ID]
	if !ok {
		return contact.ErrContactNotFound
	}
	stored.FirstName = c.FirstName
	stored.LastName = c.LastName
	stored.Phone = c.Phone
	stored.Email = c.Email
	stored.Description = c.Description
	stored.Picture = c.Picture
	stored.CategoryID = c.CategoryID
	r.s.contacts[c.ID] = stored
	return nil
}

func (r *contactRepo) Delete(_ context.Context, id int64) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	if _, ok := r.s.contacts[id]; !ok {
		return contact.ErrContactNotFound
	}
	delete(r.s.contacts, id)
	return nil
}

func (r *contactRepo) ListOwned(_ context.Context, f contact.ListFilter) ([]contact.Contact, int, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	var rows []contact.Contact
	for _, c := range r.s.contacts {
		if !c.Show || !c.OwnedBy(f.OwnerID) {
			continue
		}
		if f.Query != "" && !matches(f.Query, strconv.FormatInt(c.ID, 10), c.FirstName, c.LastName, c.Phone, c.Email) {
			continue
		}
		rows = append(rows, *r.s.withCategory(c))
	}
	sort.Slice(rows, func(i, j int) bool { return rows[i].ID > rows[j].ID })
	return page(rows, f.Limit, f.Offset), len(rows), nil
}

func (r *contactRepo) ListAll(_ context.Context, f contact.AdminFilter) ([]contact.Contact, int, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	var rows []contact.Contact
	for _, c := range r.s.contacts {
		if f.Query != "" && !matches(f.Query, strconv.FormatInt(c.ID, 10), c.FirstName, c.LastName) {
			continue
		}
		rows = append(rows, *r.s.withCategory(c))
	}

	key := func(c contact.Contact) string {
		switch f.OrderBy {
		case "first_name":
			return c.FirstName
		case "last_name":
			return c.LastName
		case "phone":
			return c.Phone
		}
		return ""
	}
	sort.Slice(rows, func(i, j int) bool {
		a, b := key(rows[i]), key(rows[j])
		if a == b {
			if f.OrderBy == "id" && !f.Desc {
				return rows[i].ID < rows[j].ID
			}
			return rows[i].ID > rows[j].ID
		}
		if f.Desc {
			return a > b
		}
		return a < b
	})
	return page(rows, f.Limit, f.Offset), len(rows), nil
}

func (s *Store) withCategory(c contact.Contact) *contact.Contact {
	c.CategoryName = ""
	if c.CategoryID != nil {
		c.CategoryName = s.categories[*c.CategoryID].Name
	}
	return &c
}

func matches(query string, values ...string) bool {
	q := strings.ToLower(query)
	for _, v := range values {
		if strings.Contains(strings.ToLower(v), q) {
			return true
		}
	}
	return false
}

func page(rows []contact.Contact, limit, offset int) []contact.Contact {
	if offset >= len(rows) {
		return []contact.Contact{}
	}
	end := len(rows)
	if limit > 0 && offset+limit < end {
		end = offset + limit
	}
	return rows[offset:end]
}
