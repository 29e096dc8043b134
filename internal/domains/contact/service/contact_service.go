package service

import (
	"context"
	"errors"
	"fmt"
	"io"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/xuri/excelize/v2"

	"contact-agenda/internal/domains/category"
	"contact-agenda/internal/domains/contact"
	"contact-agenda/internal/infrastructure/storage"
	"contact-agenda/internal/shared"
	"contact-agenda/pkg/logger"
)

const (
	perPage      = 10
	maxAdminPage = 100
	exportBatch  = 500
)

type contactService struct {
	repo       contact.Repository
	categories category.Service
	pictures   contact.PictureStore
	images     *storage.ImageProcessor
	now        func() time.Time
}

func NewContactService(
	repo contact.Repository,
	categories category.Service,
	pictures contact.PictureStore,
	images *storage.ImageProcessor,
) contact.Service {
	return &contactService{
		repo:       repo,
		categories: categories,
		pictures:   pictures,
		images:     images,
		now:        time.Now,
	}
}

// Create validates f and stores a visible contact owned by ownerID.
func (s *contactService) Create(ctx context.Context, ownerID uuid.UUID, f contact.ContactForm) (*contact.Contact, error) {
	pic, err := s.clean(ctx, &f)
	if err != nil {
		return nil, err
	}

	key, err := s.store(ctx, pic)
	if err != nil {
		return nil, err
	}

	c := &contact.Contact{OwnerID: &ownerID, Show: true}
	c.Apply(&f, f.CategoryID(), key)

	if err := s.repo.Create(ctx, c); err != nil {
		s.discard(ctx, key)
		return nil, fmt.Errorf("create contact: %w", err)
	}

	logger.Info("contact created", map[string]interface{}{
		"contact_id": c.ID,
		"owner_id":   ownerID.String(),
	})
	return c, nil
}

func (s *contactService) GetOwned(ctx context.Context, ownerID uuid.UUID, id int64) (*contact.Contact, error) {
	return s.repo.FindOwned(ctx, id, ownerID)
}

// Update edits a contact inside the owner scope. The scope is resolved
// before anything else, so a miss never reports validation errors.
func (s *contactService) Update(ctx context.Context, ownerID uuid.UUID, id int64, f contact.ContactForm) (*contact.Contact, error) {
	existing, err := s.repo.FindOwned(ctx, id, ownerID)
	if err != nil {
		return nil, err
	}
	return s.update(ctx, existing, f)
}

func (s *contactService) Delete(ctx context.Context, ownerID uuid.UUID, id int64) error {
	existing, err := s.repo.FindOwned(ctx, id, ownerID)
	if err != nil {
		return err
	}
	return s.delete(ctx, existing)
}

func (s *contactService) List(ctx context.Context, ownerID uuid.UUID, req contact.ListRequest) (*contact.ListResult, error) {
	page := max(req.Page, 1)
	contacts, total, err := s.repo.ListOwned(ctx, contact.ListFilter{
		OwnerID: ownerID,
		Query:   strings.TrimSpace(req.Query),
		Limit:   perPage,
		Offset:  (page - 1) * perPage,
	})
	if err != nil {
		return nil, fmt.Errorf("list contacts: %w", err)
	}
	return &contact.ListResult{
		Contacts:   contacts,
		Pagination: shared.NewPagination(page, perPage, total),
	}, nil
}

func (s *contactService) AdminList(ctx context.Context, req contact.AdminListRequest) (*contact.ListResult, error) {
	page, size := max(req.Page, 1), perPage
	if req.All {
		page, size = 1, maxAdminPage
	}

	filter := adminFilter(req)
	filter.Limit = size
	filter.Offset = (page - 1) * size

	contacts, total, err := s.repo.ListAll(ctx, filter)
	if err != nil {
		return nil, fmt.Errorf("admin list contacts: %w", err)
	}
	return &contact.ListResult{
		Contacts:   contacts,
		Pagination: shared.NewPagination(page, size, total),
	}, nil
}

func (s *contactService) AdminGet(ctx context.Context, id int64) (*contact.Contact, error) {
	return s.repo.FindByID(ctx, id)
}

func (s *contactService) AdminUpdate(ctx context.Context, id int64, f contact.ContactForm) (*contact.Contact, error) {
	existing, err := s.repo.FindByID(ctx, id)
	if err != nil {
		return nil, err
	}
	return s.update(ctx, existing, f)
}

func (s *contactService) AdminDelete(ctx context.Context, id int64) error {
	existing, err := s.repo.FindByID(ctx, id)
	if err != nil {
		return err
	}
	return s.delete(ctx, existing)
}

// Export writes every contact matching req as an XLSX workbook.
// Paging fields of req are ignored.
func (s *contactService) Export(ctx context.Context, req contact.AdminListRequest, w io.Writer) error {
	book := excelize.NewFile()
	defer book.Close()

	const sheet = "Contacts"
	if err := book.SetSheetName("Sheet1", sheet); err != nil {
		return fmt.Errorf("export: %w", err)
	}
	header := []interface{}{"ID", "First name", "Last name", "Phone", "Email", "Category", "Created", "Visible"}
	if err := book.SetSheetRow(sheet, "A1", &header); err != nil {
		return fmt.Errorf("export: %w", err)
	}

	filter := adminFilter(req)
	filter.Limit = exportBatch
	row := 2
	for {
		contacts, total, err := s.repo.ListAll(ctx, filter)
		if err != nil {
			return fmt.Errorf("export: %w", err)
		}
		for _, c := range contacts {
			cell, _ := excelize.CoordinatesToCellName(1, row)
			values := []interface{}{
				c.ID, c.FirstName, c.LastName, c.Phone, c.Email,
				c.CategoryName, c.CreatedDate.Format(time.DateTime), c.Show,
			}
			if err := book.SetSheetRow(sheet, cell, &values); err != nil {
				return fmt.Errorf("export: %w", err)
			}
			row++
		}
		filter.Offset += len(contacts)
		if len(contacts) == 0 || filter.Offset >= total {
			break
		}
	}

	if err := book.Write(w); err != nil {
		return fmt.Errorf("export: write workbook: %w", err)
	}
	return nil
}

func (s *contactService) update(ctx context.Context, existing *contact.Contact, f contact.ContactForm) (*contact.Contact, error) {
	pic, err := s.clean(ctx, &f)
	if err != nil {
		return nil, err
	}

	key, err := s.store(ctx, pic)
	if err != nil {
		return nil, err
	}

	previous := existing.Picture
	existing.Apply(&f, f.CategoryID(), key)

	if err := s.repo.Update(ctx, existing); err != nil {
		s.discard(ctx, key)
		return nil, fmt.Errorf("update contact: %w", err)
	}
	if key != "" && previous != "" && previous != key {
		s.discard(ctx, previous)
	}
	return existing, nil
}

func (s *contactService) delete(ctx context.Context, c *contact.Contact) error {
	if err := s.repo.Delete(ctx, c.ID); err != nil {
		return err
	}
	s.discard(ctx, c.Picture)

	logger.Info("contact deleted", map[string]interface{}{"contact_id": c.ID})
	return nil
}

// clean normalizes and validates f. On success it returns the prepared
// picture, nil when none was uploaded.
func (s *contactService) clean(ctx context.Context, f *contact.ContactForm) (*storage.Picture, error) {
	f.Normalize()
	errs := f.Validate()

	if id := f.CategoryID(); id != nil && !errs.Has("category") {
		ok, err := s.categories.Exists(ctx, *id)
		if err != nil {
			return nil, fmt.Errorf("check category: %w", err)
		}
		if !ok {
			errs.Add("category", contact.MsgInvalidChoice)
		}
	}

	var pic *storage.Picture
	if f.Picture != nil && !errs.Has("picture") {
		var err error
		pic, err = s.images.Prepare(f.Picture.Data)
		switch {
		case errors.Is(err, storage.ErrImageTooLarge):
			errs.Add("picture", contact.MsgImageTooLarge)
		case err != nil:
			errs.Add("picture", contact.MsgInvalidImage)
		}
	}

	if len(errs) > 0 {
		return nil, errs
	}
	return pic, nil
}

func (s *contactService) store(ctx context.Context, pic *storage.Picture) (string, error) {
	if pic == nil {
		return "", nil
	}
	key, err := s.pictures.Upload(ctx, storage.PictureKey(s.now(), pic.Ext), pic.Data, pic.ContentType)
	if err != nil {
		return "", fmt.Errorf("store picture: %w", err)
	}
	return key, nil
}

// discard removes a picture; failures are logged only.
func (s *contactService) discard(ctx context.Context, key string) {
	if key == "" {
		return
	}
	if err := s.pictures.Delete(ctx, key); err != nil {
		logger.Warn("failed to remove picture", map[string]interface{}{
			"key":   key,
			"error": err.Error(),
		})
	}
}

// adminFilter turns the ?o= ordering ("-first_name") into a filter.
func adminFilter(req contact.AdminListRequest) contact.AdminFilter {
	f := contact.AdminFilter{Query: strings.TrimSpace(req.Query), OrderBy: "id", Desc: true}
	if o := strings.TrimSpace(req.Ordering); o != "" {
		f.Desc = strings.HasPrefix(o, "-")
		f.OrderBy = strings.TrimPrefix(o, "-")
	}
	return f
}
