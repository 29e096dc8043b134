package response

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"contact-agenda/internal/shared"
	"contact-agenda/internal/shared/flash"
)

// ========================================
// JSON ENVELOPE (admin API)
// ========================================

type Response struct {
	Success bool        `json:"success"`
	Data    interface{} `json:"data,omitempty"`
	Error   *Error      `json:"error,omitempty"`
	Meta    interface{} `json:"meta,omitempty"`
}

type Error struct {
	Code    string      `json:"code"`
	Message string      `json:"message"`
	Details interface{} `json:"details,omitempty"`
}

func Success(c *gin.Context, statusCode int, data interface{}) {
	c.JSON(statusCode, Response{
		Success: true,
		Data:    data,
	})
}

func SuccessWithMeta(c *gin.Context, statusCode int, data interface{}, meta interface{}) {
	c.JSON(statusCode, Response{
		Success: true,
		Data:    data,
		Meta:    meta,
	})
}

func ErrorResponse(c *gin.Context, statusCode int, code, message string) {
	c.JSON(statusCode, Response{
		Success: false,
		Error: &Error{
			Code:    code,
			Message: message,
		},
	})
}

func ErrorWithDetails(c *gin.Context, statusCode int, code, message string, details interface{}) {
	c.JSON(statusCode, Response{
		Success: false,
		Error: &Error{
			Code:    code,
			Message: message,
			Details: details,
		},
	})
}

func BadRequest(c *gin.Context, message string) {
	ErrorResponse(c, http.StatusBadRequest, "BAD_REQUEST", message)
}

// ValidationFailed reports per-field messages under details.
func ValidationFailed(c *gin.Context, details interface{}) {
	ErrorWithDetails(c, http.StatusUnprocessableEntity, "VALIDATION_FAILED", "Validation failed", details)
}

func Unauthorized(c *gin.Context, message string) {
	ErrorResponse(c, http.StatusUnauthorized, "UNAUTHORIZED", message)
}

func Forbidden(c *gin.Context, message string) {
	ErrorResponse(c, http.StatusForbidden, "FORBIDDEN", message)
}

func NotFound(c *gin.Context, message string) {
	ErrorResponse(c, http.StatusNotFound, "NOT_FOUND", message)
}

func InternalServerError(c *gin.Context, message string) {
	ErrorResponse(c, http.StatusInternalServerError, "INTERNAL_SERVER_ERROR", message)
}

// ========================================
// HTML PAGES
// ========================================

// Page renders template name with data, adding the queued flash messages and
// the current user (when logged in) under "messages" and "user".
func Page(c *gin.Context, statusCode int, name string, data gin.H) {
	if data == nil {
		data = gin.H{}
	}
	data["messages"] = flash.Pop(c)
	if u, ok := c.Get(shared.ContextKeyUser); ok {
		data["user"] = u
	}
	c.HTML(statusCode, name, data)
}

// PageNotFound is the terminal outcome for lookups outside the visitor's scope.
func PageNotFound(c *gin.Context) {
	Page(c, http.StatusNotFound, "404.html", nil)
}

// PageError is the terminal outcome for unexpected failures.
func PageError(c *gin.Context) {
	Page(c, http.StatusInternalServerError, "500.html", nil)
}
