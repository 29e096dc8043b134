package container

import (
	"context"
	"fmt"
	"time"

	"contact-agenda/internal/config"
	infraCache "contact-agenda/internal/infrastructure/cache"
	"contact-agenda/internal/infrastructure/database"
	"contact-agenda/internal/infrastructure/storage"
	"contact-agenda/internal/shared/flash"
	"contact-agenda/internal/shared/middleware"
	"contact-agenda/pkg/jwt"
	"contact-agenda/pkg/logger"
	"contact-agenda/pkg/password"
	"contact-agenda/pkg/session"

	"contact-agenda/internal/domains/category"
	categoryHandler "contact-agenda/internal/domains/category/handler"
	categoryRepo "contact-agenda/internal/domains/category/repository"
	categoryService "contact-agenda/internal/domains/category/service"

	"contact-agenda/internal/domains/contact"
	contactHandler "contact-agenda/internal/domains/contact/handler"
	contactRepo "contact-agenda/internal/domains/contact/repository"
	contactService "contact-agenda/internal/domains/contact/service"

	"contact-agenda/internal/domains/user"
	userHandler "contact-agenda/internal/domains/user/handler"
	userRepo "contact-agenda/internal/domains/user/repository"
	userService "contact-agenda/internal/domains/user/service"
)

// Container holds every long-lived dependency of the application.
type Container struct {
	// Infrastructure
	Config   *config.Config
	DB       *database.PostgresDB
	Redis    *infraCache.RedisClient
	Storage  *storage.MinIOStorage
	Images   *storage.ImageProcessor
	Pictures contact.PictureStore
	MediaURL string
	Hasher   *password.Hasher
	Sessions *session.Manager
	Flash    *flash.Store
	Auth     *middleware.Auth

	// Repositories
	UserRepo     user.Repository
	CategoryRepo category.Repository
	ContactRepo  contact.Repository

	// Services
	UserService     user.Service
	CategoryService category.Service
	ContactService  contact.Service

	// Handlers
	UserHandler         *userHandler.UserHandler
	CategoryHandler     *categoryHandler.CategoryHandler
	ContactHandler      *contactHandler.ContactHandler
	ContactAdminHandler *contactHandler.AdminHandler
}

// NewContainer connects the backing services and wires the layers.
func NewContainer(cfg *config.Config) (*Container, error) {
	c := &Container{Config: cfg}

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	if err := c.initInfrastructure(ctx); err != nil {
		c.Cleanup()
		return nil, err
	}

	c.initRepositories()
	c.Wire()

	logger.Info("container initialized", map[string]interface{}{"env": cfg.App.Environment})
	return c, nil
}

func (c *Container) initInfrastructure(ctx context.Context) error {
	cfg := c.Config

	c.DB = database.NewPostgresDB(cfg.Database)
	if err := c.DB.Connect(ctx); err != nil {
		return fmt.Errorf("failed to connect to database: %w", err)
	}

	// Sessions and flash messages live in Redis, so it is required.
	c.Redis = infraCache.NewRedisClient(cfg.Redis.Addr, cfg.Redis.Password, cfg.Redis.DB)
	if err := c.Redis.Connect(ctx); err != nil {
		return fmt.Errorf("failed to connect to redis: %w", err)
	}

	store, err := storage.NewMinIOStorage(ctx, cfg.MinIO)
	if err != nil {
		return fmt.Errorf("failed to init media storage: %w", err)
	}
	c.Storage = store
	c.Pictures = store
	c.MediaURL = store.URL("")
	c.Hasher = password.NewHasher(password.DefaultCost)
	c.Images = storage.NewImageProcessor(
		cfg.Upload.MaxPictureBytes,
		cfg.Upload.MaxPictureDimension,
		cfg.Upload.MaxPicturePixels,
	)

	c.Sessions = session.NewManager(jwt.NewManager(cfg.Session.Secret), c.Redis, cfg.Session.TTL, cfg.Session.Secret)
	c.Flash = flash.NewStore(c.Redis, cfg.Session.FlashCookie, cfg.Session.FlashTTL, cfg.Session.Secure)
	return nil
}

func (c *Container) initRepositories() {
	pool := c.DB.Pool

	c.UserRepo = userRepo.NewPostgresRepository(pool, c.Redis)
	c.CategoryRepo = categoryRepo.NewPostgresRepository(pool)
	c.ContactRepo = contactRepo.NewPostgresRepository(pool)
}

// Wire builds the services and handlers on top of the repositories and
// infrastructure already set on c.
func (c *Container) Wire() {
	c.initServices()
	c.initHandlers()
}

func (c *Container) initServices() {
	c.UserService = userService.NewUserService(c.UserRepo, c.Hasher, password.NewPolicy())
	c.CategoryService = categoryService.NewCategoryService(c.CategoryRepo)
	c.ContactService = contactService.NewContactService(
		c.ContactRepo,
		c.CategoryService,
		c.Pictures,
		c.Images,
	)

	c.Auth = middleware.NewAuth(c.Sessions, c.UserService, c.Config.Session.CookieName, c.Config.Session.Secure)
}

func (c *Container) initHandlers() {
	c.UserHandler = userHandler.NewUserHandler(c.UserService, c.Auth)
	c.CategoryHandler = categoryHandler.NewCategoryHandler(c.CategoryService)
	c.ContactHandler = contactHandler.NewContactHandler(
		c.ContactService,
		c.CategoryService,
		c.MediaURL,
		c.Config.Upload.MaxPictureBytes,
	)
	c.ContactAdminHandler = contactHandler.NewAdminHandler(c.ContactService)
}

// Cleanup releases connections. Safe on a partially built container.
func (c *Container) Cleanup() {
	if c.DB != nil {
		c.DB.Close()
	}
	if c.Redis != nil {
		if err := c.Redis.Close(); err != nil {
			logger.Error("failed to close redis", err)
		}
	}
	logger.Info("container cleanup completed", nil)
}
