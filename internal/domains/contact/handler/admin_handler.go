package handler

import (
	"bytes"
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"contact-agenda/internal/domains/contact"
	"contact-agenda/internal/shared/form"
	"contact-agenda/internal/shared/response"
	"contact-agenda/internal/shared/utils"
	"contact-agenda/pkg/logger"
)

const xlsxContentType = "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet"

// AdminHandler is the staff JSON surface over every contact.
type AdminHandler struct {
	service contact.Service
}

func NewAdminHandler(service contact.Service) *AdminHandler {
	return &AdminHandler{service: service}
}

// List - GET /admin/api/contacts?q=&o=&page=&all=
func (h *AdminHandler) List(c *gin.Context) {
	var req contact.AdminListRequest
	if err := c.ShouldBindQuery(&req); err != nil {
		response.BadRequest(c, err.Error())
		return
	}

	result, err := h.service.AdminList(c.Request.Context(), req)
	if err != nil {
		h.fail(c, err)
		return
	}
	response.SuccessWithMeta(c, http.StatusOK, result.Contacts, result.Pagination)
}

// Get - GET /admin/api/contacts/:id
func (h *AdminHandler) Get(c *gin.Context) {
	id, ok := utils.ParseID(c.Param("id"))
	if !ok {
		response.BadRequest(c, "invalid contact id")
		return
	}

	ct, err := h.service.AdminGet(c.Request.Context(), id)
	if err != nil {
		h.fail(c, err)
		return
	}
	response.Success(c, http.StatusOK, ct)
}

// Update - PUT /admin/api/contacts/:id
func (h *AdminHandler) Update(c *gin.Context) {
	id, ok := utils.ParseID(c.Param("id"))
	if !ok {
		response.BadRequest(c, "invalid contact id")
		return
	}

	var f contact.ContactForm
	if err := c.ShouldBindJSON(&f); err != nil {
		response.BadRequest(c, err.Error())
		return
	}
	// Pictures are only uploaded through the contact form.
	f.Picture = nil

	ct, err := h.service.AdminUpdate(c.Request.Context(), id, f)
	if err != nil {
		h.fail(c, err)
		return
	}
	response.Success(c, http.StatusOK, ct)
}

// Delete - DELETE /admin/api/contacts/:id
func (h *AdminHandler) Delete(c *gin.Context) {
	id, ok := utils.ParseID(c.Param("id"))
	if !ok {
		response.BadRequest(c, "invalid contact id")
		return
	}

	if err := h.service.AdminDelete(c.Request.Context(), id); err != nil {
		h.fail(c, err)
		return
	}
	c.Status(http.StatusNoContent)
}

// Export - GET /admin/api/contacts/export?q=&o=
func (h *AdminHandler) Export(c *gin.Context) {
	var req contact.AdminListRequest
	if err := c.ShouldBindQuery(&req); err != nil {
		response.BadRequest(c, err.Error())
		return
	}

	var buf bytes.Buffer
	if err := h.service.Export(c.Request.Context(), req, &buf); err != nil {
		h.fail(c, err)
		return
	}

	filename := fmt.Sprintf("contacts-%s.xlsx", time.Now().Format("20060102-150405"))
	c.Header("Content-Disposition", fmt.Sprintf(`attachment; filename="%s"`, filename))
	c.Data(http.StatusOK, xlsxContentType, buf.Bytes())
}

func (h *AdminHandler) fail(c *gin.Context, err error) {
	if errs, ok := form.As(err); ok {
		response.ValidationFailed(c, errs)
		return
	}
	if errors.Is(err, contact.ErrContactNotFound) {
		response.NotFound(c, "contact not found")
		return
	}
	logger.Error("admin contacts", err)
	response.InternalServerError(c, "Internal server error")
}
