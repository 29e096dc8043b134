package handler

import (
	"errors"
	"io"
	"net/http"

	"github.com/gin-gonic/gin"

	"contact-agenda/internal/domains/category"
	"contact-agenda/internal/domains/contact"
	"contact-agenda/internal/shared/flash"
	"contact-agenda/internal/shared/form"
	"contact-agenda/internal/shared/middleware"
	"contact-agenda/internal/shared/response"
	"contact-agenda/internal/shared/urls"
	"contact-agenda/internal/shared/utils"
	"contact-agenda/pkg/logger"
)

const confirmYes = "yes"

// ContactHandler serves the owner-facing contact pages. Every route sits
// behind middleware.RequireLogin.
type ContactHandler struct {
	service    contact.Service
	categories category.Service
	mediaURL   string
	maxUpload  int64
}

func NewContactHandler(service contact.Service, categories category.Service, mediaURL string, maxUpload int64) *ContactHandler {
	return &ContactHandler{
		service:    service,
		categories: categories,
		mediaURL:   mediaURL,
		maxUpload:  maxUpload,
	}
}

// Index - GET /
func (h *ContactHandler) Index(c *gin.Context) {
	u, _ := middleware.CurrentUser(c)

	var req contact.ListRequest
	_ = c.ShouldBindQuery(&req)

	result, err := h.service.List(c.Request.Context(), u.ID, req)
	if err != nil {
		h.fail(c, "list contacts", err)
		return
	}

	response.Page(c, http.StatusOK, "index.html", gin.H{
		"contacts":   result.Contacts,
		"pagination": result.Pagination,
		"query":      req.Query,
		"media_url":  h.mediaURL,
	})
}

// Detail - GET /contact/:id/
func (h *ContactHandler) Detail(c *gin.Context) {
	u, _ := middleware.CurrentUser(c)

	id, ok := utils.ParseID(c.Param("id"))
	if !ok {
		response.PageNotFound(c)
		return
	}

	ct, err := h.service.GetOwned(c.Request.Context(), u.ID, id)
	if err != nil {
		h.fail(c, "get contact", err)
		return
	}

	response.Page(c, http.StatusOK, "contact.html", gin.H{
		"contact":   ct,
		"media_url": h.mediaURL,
	})
}

// Create - GET, POST /contact/create/
func (h *ContactHandler) Create(c *gin.Context) {
	u, _ := middleware.CurrentUser(c)

	if c.Request.Method != http.MethodPost {
		h.renderForm(c, http.StatusOK, urls.Create, contact.ContactForm{}, nil, nil)
		return
	}

	f, errs := h.bindForm(c)
	if errs != nil {
		h.renderForm(c, http.StatusOK, urls.Create, f, errs, nil)
		return
	}

	ct, err := h.service.Create(c.Request.Context(), u.ID, f)
	if err != nil {
		if ferrs, ok := form.As(err); ok {
			h.renderForm(c, http.StatusOK, urls.Create, f, ferrs, nil)
			return
		}
		h.fail(c, "create contact", err)
		return
	}

	flash.Success(c, "Contact saved.")
	c.Redirect(http.StatusFound, urls.Update(ct.ID))
}

// Update - GET, POST /contact/:id/update/
func (h *ContactHandler) Update(c *gin.Context) {
	u, _ := middleware.CurrentUser(c)

	id, ok := utils.ParseID(c.Param("id"))
	if !ok {
		response.PageNotFound(c)
		return
	}
	ctx := c.Request.Context()

	existing, err := h.service.GetOwned(ctx, u.ID, id)
	if err != nil {
		h.fail(c, "get contact", err)
		return
	}

	if c.Request.Method != http.MethodPost {
		h.renderForm(c, http.StatusOK, urls.Update(id), contact.FormFromContact(existing), nil, existing)
		return
	}

	f, errs := h.bindForm(c)
	if errs != nil {
		h.renderForm(c, http.StatusOK, urls.Update(id), f, errs, existing)
		return
	}

	if _, err := h.service.Update(ctx, u.ID, id, f); err != nil {
		if ferrs, ok := form.As(err); ok {
			h.renderForm(c, http.StatusOK, urls.Update(id), f, ferrs, existing)
			return
		}
		h.fail(c, "update contact", err)
		return
	}

	flash.Success(c, "Contact saved.")
	c.Redirect(http.StatusFound, urls.Update(id))
}

// Delete - GET, POST /contact/:id/delete/
// Only a POSTed confirmation=yes deletes; anything else shows the prompt.
func (h *ContactHandler) Delete(c *gin.Context) {
	u, _ := middleware.CurrentUser(c)

	id, ok := utils.ParseID(c.Param("id"))
	if !ok {
		response.PageNotFound(c)
		return
	}
	ctx := c.Request.Context()

	ct, err := h.service.GetOwned(ctx, u.ID, id)
	if err != nil {
		h.fail(c, "get contact", err)
		return
	}

	if c.PostForm("confirmation") != confirmYes {
		response.Page(c, http.StatusOK, "contact.html", gin.H{
			"contact":   ct,
			"confirm":   true,
			"media_url": h.mediaURL,
		})
		return
	}

	if err := h.service.Delete(ctx, u.ID, id); err != nil {
		h.fail(c, "delete contact", err)
		return
	}

	flash.Success(c, "Contact deleted.")
	c.Redirect(http.StatusFound, urls.Index)
}

// bindForm reads the text fields and the optional picture. A broken upload
// is reported together with the other field errors.
func (h *ContactHandler) bindForm(c *gin.Context) (contact.ContactForm, form.Errors) {
	var f contact.ContactForm
	if err := c.ShouldBind(&f); err != nil {
		logger.Debug("contact form bind failed: " + err.Error())
	}

	upload, msg := h.readUpload(c)
	if msg != "" {
		f.Normalize()
		errs := f.Validate()
		errs.Add("picture", msg)
		return f, errs
	}
	f.Picture = upload
	return f, nil
}

// readUpload returns the submitted picture, nil when none was sent, or the
// message describing why it cannot be used.
func (h *ContactHandler) readUpload(c *gin.Context) (*contact.Upload, string) {
	fh, err := c.FormFile("picture")
	if errors.Is(err, http.ErrMissingFile) || errors.Is(err, http.ErrNotMultipart) ||
		(err == nil && fh.Filename == "" && fh.Size == 0) {
		return nil, ""
	}
	if err != nil {
		return nil, contact.MsgInvalidImage
	}
	if fh.Size > h.maxUpload {
		return nil, contact.MsgImageTooLarge
	}

	file, err := fh.Open()
	if err != nil {
		return nil, contact.MsgInvalidImage
	}
	defer file.Close()

	data, err := io.ReadAll(io.LimitReader(file, h.maxUpload+1))
	if err != nil {
		return nil, contact.MsgInvalidImage
	}

	return &contact.Upload{
		Filename:    fh.Filename,
		ContentType: fh.Header.Get("Content-Type"),
		Data:        data,
	}, ""
}

func (h *ContactHandler) renderForm(c *gin.Context, status int, action string, f contact.ContactForm, errs form.Errors, existing *contact.Contact) {
	categories, err := h.categories.List(c.Request.Context())
	if err != nil {
		h.fail(c, "list categories", err)
		return
	}

	response.Page(c, status, "create.html", gin.H{
		"form":        f,
		"errors":      errs,
		"categories":  categories,
		"form_action": action,
		"contact":     existing,
		"media_url":   h.mediaURL,
	})
}

// fail maps a service error to the terminal page.
func (h *ContactHandler) fail(c *gin.Context, op string, err error) {
	if errors.Is(err, contact.ErrContactNotFound) {
		response.PageNotFound(c)
		return
	}
	logger.Error(op, err)
	response.PageError(c)
}
