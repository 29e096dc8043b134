package handler

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	"contact-agenda/internal/domains/user"
	"contact-agenda/internal/shared/flash"
	"contact-agenda/internal/shared/form"
	"contact-agenda/internal/shared/middleware"
	"contact-agenda/internal/shared/response"
	"contact-agenda/internal/shared/urls"
	"contact-agenda/pkg/logger"
)

// UserHandler serves registration, login, logout and the profile page.
type UserHandler struct {
	service user.Service
	auth    *middleware.Auth
}

func NewUserHandler(service user.Service, auth *middleware.Auth) *UserHandler {
	return &UserHandler{service: service, auth: auth}
}

// Register - GET, POST /user/create/
func (h *UserHandler) Register(c *gin.Context) {
	if c.Request.Method != http.MethodPost {
		response.Page(c, http.StatusOK, "register.html", gin.H{"form": user.RegisterForm{}})
		return
	}

	var f user.RegisterForm
	_ = c.ShouldBind(&f)

	if _, err := h.service.Register(c.Request.Context(), f); err != nil {
		errs, ok := form.As(err)
		if !ok {
			logger.Error("register", err)
			response.PageError(c)
			return
		}
		f.Password1, f.Password2 = "", ""
		response.Page(c, http.StatusOK, "register.html", gin.H{"form": f, "errors": errs})
		return
	}

	flash.Success(c, "User registered successfully!")
	c.Redirect(http.StatusFound, urls.Login)
}

// Login - GET, POST /user/login/
func (h *UserHandler) Login(c *gin.Context) {
	next := urls.SafeNext(c.Query("next"), urls.Index)

	if c.Request.Method != http.MethodPost {
		response.Page(c, http.StatusOK, "login.html", gin.H{"next": next})
		return
	}

	var f user.LoginForm
	_ = c.ShouldBind(&f)
	if v := c.PostForm("next"); v != "" {
		next = urls.SafeNext(v, urls.Index)
	}

	u, err := h.service.Authenticate(c.Request.Context(), f)
	if err != nil {
		if !errors.Is(err, user.ErrInvalidCredentials) {
			logger.Error("authenticate", err)
			response.PageError(c)
			return
		}
		flash.Error(c, user.MsgInvalidLogin)
		response.Page(c, http.StatusOK, "login.html", gin.H{"next": next})
		return
	}

	if err := h.auth.Login(c, u); err != nil {
		logger.Error("open session", err)
		response.PageError(c)
		return
	}

	flash.Success(c, "Logged in successfully!")
	c.Redirect(http.StatusFound, next)
}

// Logout - GET, POST /user/logout/
func (h *UserHandler) Logout(c *gin.Context) {
	if err := h.auth.Logout(c); err != nil {
		logger.Warn("failed to destroy session", map[string]interface{}{"error": err.Error()})
	}
	c.Redirect(http.StatusFound, urls.Login)
}

// Update - GET, POST /user/update/
func (h *UserHandler) Update(c *gin.Context) {
	u, _ := middleware.CurrentUser(c)

	if c.Request.Method != http.MethodPost {
		response.Page(c, http.StatusOK, "user_update.html", gin.H{"form": user.ProfileFormFromUser(u)})
		return
	}

	var f user.ProfileForm
	_ = c.ShouldBind(&f)

	updated, err := h.service.UpdateProfile(c.Request.Context(), u.ID, f)
	if err != nil {
		errs, ok := form.As(err)
		if !ok {
			logger.Error("update profile", err)
			response.PageError(c)
			return
		}
		f.Password1, f.Password2 = "", ""
		response.Page(c, http.StatusOK, "user_update.html", gin.H{"form": f, "errors": errs})
		return
	}

	if f.ChangesPassword() {
		if err := h.auth.Refresh(c, updated); err != nil {
			logger.Error("refresh session", err)
			response.PageError(c)
			return
		}
	}
	c.Redirect(http.StatusFound, urls.UserUpdate)
}
