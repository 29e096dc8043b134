package service

import (
	"context"
	"fmt"

	"contact-agenda/internal/domains/category"
	"contact-agenda/internal/shared/form"
	"contact-agenda/pkg/logger"
)

type categoryService struct {
	repo category.Repository
}

func NewCategoryService(repo category.Repository) category.Service {
	return &categoryService{repo: repo}
}

func (s *categoryService) List(ctx context.Context) ([]category.Category, error) {
	return s.repo.List(ctx)
}

func (s *categoryService) Get(ctx context.Context, id int64) (*category.Category, error) {
	return s.repo.FindByID(ctx, id)
}

func (s *categoryService) Exists(ctx context.Context, id int64) (bool, error) {
	return s.repo.Exists(ctx, id)
}

func (s *categoryService) Create(ctx context.Context, req category.CategoryRequest) (*category.Category, error) {
	req.Normalize()
	if err := validate(req); err != nil {
		return nil, err
	}

	c := &category.Category{Name: req.Name}
	if err := s.repo.Create(ctx, c); err != nil {
		return nil, err
	}
	return c, nil
}

func (s *categoryService) Update(ctx context.Context, id int64, req category.CategoryRequest) (*category.Category, error) {
	req.Normalize()
	if err := validate(req); err != nil {
		return nil, err
	}

	c := &category.Category{ID: id, Name: req.Name}
	if err := s.repo.Update(ctx, c); err != nil {
		return nil, err
	}
	return c, nil
}

func (s *categoryService) Delete(ctx context.Context, id int64) error {
	detached, err := s.repo.Delete(ctx, id)
	if err != nil {
		return err
	}

	logger.Info("category deleted", map[string]interface{}{
		"category_id":       id,
		"contacts_detached": detached,
	})
	return nil
}

func validate(req category.CategoryRequest) error {
	errs, err := form.FromValidation(req.Validate())
	if err != nil {
		return fmt.Errorf("validate category: %w", err)
	}
	return errs.Err()
}
