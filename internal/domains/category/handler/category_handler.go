package handler

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	"contact-agenda/internal/domains/category"
	"contact-agenda/internal/shared/form"
	"contact-agenda/internal/shared/response"
	"contact-agenda/internal/shared/utils"
	"contact-agenda/pkg/logger"
)

// CategoryHandler is the staff JSON surface over categories.
type CategoryHandler struct {
	service category.Service
}

func NewCategoryHandler(svc category.Service) *CategoryHandler {
	return &CategoryHandler{service: svc}
}

// List - GET /admin/api/categories
func (h *CategoryHandler) List(c *gin.Context) {
	categories, err := h.service.List(c.Request.Context())
	if err != nil {
		h.fail(c, err)
		return
	}
	response.Success(c, http.StatusOK, categories)
}

// Get - GET /admin/api/categories/:id
func (h *CategoryHandler) Get(c *gin.Context) {
	id, ok := utils.ParseID(c.Param("id"))
	if !ok {
		response.BadRequest(c, "invalid category id")
		return
	}

	cat, err := h.service.Get(c.Request.Context(), id)
	if err != nil {
		h.fail(c, err)
		return
	}
	response.Success(c, http.StatusOK, cat)
}

// Create - POST /admin/api/categories
func (h *CategoryHandler) Create(c *gin.Context) {
	var req category.CategoryRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, err.Error())
		return
	}

	cat, err := h.service.Create(c.Request.Context(), req)
	if err != nil {
		h.fail(c, err)
		return
	}
	response.Success(c, http.StatusCreated, cat)
}

// Update - PUT /admin/api/categories/:id
func (h *CategoryHandler) Update(c *gin.Context) {
	id, ok := utils.ParseID(c.Param("id"))
	if !ok {
		response.BadRequest(c, "invalid category id")
		return
	}

	var req category.CategoryRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, err.Error())
		return
	}

	cat, err := h.service.Update(c.Request.Context(), id, req)
	if err != nil {
		h.fail(c, err)
		return
	}
	response.Success(c, http.StatusOK, cat)
}

// Delete - DELETE /admin/api/categories/:id
// Contacts in the category are kept, with the category cleared.
func (h *CategoryHandler) Delete(c *gin.Context) {
	id, ok := utils.ParseID(c.Param("id"))
	if !ok {
		response.BadRequest(c, "invalid category id")
		return
	}

	if err := h.service.Delete(c.Request.Context(), id); err != nil {
		h.fail(c, err)
		return
	}
	c.Status(http.StatusNoContent)
}

func (h *CategoryHandler) fail(c *gin.Context, err error) {
	if errs, ok := form.As(err); ok {
		response.ValidationFailed(c, errs)
		return
	}
	if errors.Is(err, category.ErrCategoryNotFound) {
		response.NotFound(c, "category not found")
		return
	}
	logger.Error("admin categories", err)
	response.InternalServerError(c, "Internal server error")
}
