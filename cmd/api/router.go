package main

import (
	"context"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"contact-agenda/internal/shared/middleware"
	"contact-agenda/internal/shared/response"
	"contact-agenda/internal/shared/urls"
	"contact-agenda/pkg/container"
	"contact-agenda/web"
)

func SetupRouter(c *container.Container) (*gin.Engine, error) {
	router := gin.New()

	tmpl, err := web.Templates()
	if err != nil {
		return nil, err
	}
	router.SetHTMLTemplate(tmpl)
	router.MaxMultipartMemory = c.Config.Upload.MaxPictureBytes + 1<<20

	router.Use(
		middleware.RequestID(),
		middleware.Logger(),
		c.Flash.Middleware(),
		middleware.Recovery(),
		c.Auth.LoadSession(),
	)
	router.NoRoute(func(ctx *gin.Context) {
		response.PageNotFound(ctx)
	})

	router.GET(urls.Health, healthCheckHandler(c))

	setupUserRoutes(router, c)
	setupContactRoutes(router, c)
	setupAdminRoutes(router, c)

	return router, nil
}

func setupUserRoutes(r *gin.Engine, c *container.Container) {
	h := c.UserHandler

	r.Match([]string{http.MethodGet, http.MethodPost}, urls.Register, h.Register)
	r.Match([]string{http.MethodGet, http.MethodPost}, urls.Login, h.Login)

	auth := r.Group("", middleware.RequireLogin())
	auth.Match([]string{http.MethodGet, http.MethodPost}, urls.Logout, h.Logout)
	auth.Match([]string{http.MethodGet, http.MethodPost}, urls.UserUpdate, h.Update)
}

func setupContactRoutes(r *gin.Engine, c *container.Container) {
	h := c.ContactHandler
	methods := []string{http.MethodGet, http.MethodPost}

	contacts := r.Group("", middleware.RequireLogin())
	contacts.GET(urls.Index, h.Index)
	contacts.Match(methods, urls.Create, h.Create)
	contacts.GET("/contact/:id/", h.Detail)
	contacts.Match(methods, "/contact/:id/update/", h.Update)
	contacts.Match(methods, "/contact/:id/delete/", h.Delete)
}

func setupAdminRoutes(r *gin.Engine, c *container.Container) {
	admin := r.Group(urls.AdminAPI, middleware.RequireStaff())

	categories := admin.Group("/categories")
	{
		categories.GET("", c.CategoryHandler.List)
		categories.POST("", c.CategoryHandler.Create)
		categories.GET("/:id", c.CategoryHandler.Get)
		categories.PUT("/:id", c.CategoryHandler.Update)
		categories.DELETE("/:id", c.CategoryHandler.Delete)
	}

	contacts := admin.Group("/contacts")
	{
		contacts.GET("", c.ContactAdminHandler.List)
		contacts.GET("/export", c.ContactAdminHandler.Export)
		contacts.GET("/:id", c.ContactAdminHandler.Get)
		contacts.PUT("/:id", c.ContactAdminHandler.Update)
		contacts.DELETE("/:id", c.ContactAdminHandler.Delete)
	}
}

// healthCheckHandler reports database and redis status; the database is
// the only hard dependency for a 200.
func healthCheckHandler(appCtx *container.Container) gin.HandlerFunc {
	return func(c *gin.Context) {
		ctx, cancel := context.WithTimeout(c.Request.Context(), 2*time.Second)
		defer cancel()

		status := "ok"
		dbStatus := "ok"
		if err := appCtx.DB.HealthCheck(ctx); err != nil {
			dbStatus = "error: " + err.Error()
			status = "degraded"
		}

		redisStatus := "ok"
		if err := appCtx.Redis.Ping(ctx); err != nil {
			redisStatus = "error: " + err.Error()
			status = "degraded"
		}

		code := http.StatusOK
		if dbStatus != "ok" {
			code = http.StatusServiceUnavailable
		}

		c.JSON(code, gin.H{
			"status":    status,
			"timestamp": time.Now().Format(time.RFC3339),
			"version":   appCtx.Config.App.Version,
			"services": gin.H{
				"database": dbStatus,
				"redis":    redisStatus,
			},
		})
	}
}
