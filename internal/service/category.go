package service

import (
	"context"
	"fmt"

	"go.uber.org/zap"

	"go-community-hub/internal/core/apperr"
	"go-community-hub/internal/core/auth"
	"go-community-hub/internal/domain"
)

const msgCategoryNotFound = "Category not found."

type CategoryService struct {
	categories domain.CategoryRepository
	log        *zap.Logger
}

func NewCategoryService(categories domain.CategoryRepository, l *zap.Logger) *CategoryService {
	return &CategoryService{categories: categories, log: l}
}

func (s *CategoryService) List(ctx context.Context) ([]domain.Category, error) {
	cs, err := s.categories.List(ctx)
	if err != nil {
		return nil, fmt.Errorf("list categories: %w", err)
	}
	return cs, nil
}

func (s *CategoryService) Create(ctx context.Context, caller *auth.Claims, in CategoryInput) (*domain.Category, error) {
	if err := auth.Authorize(caller, auth.AnyRole(domain.RoleAdmin)); err != nil {
		return nil, err
	}
	if err := in.Validate(); err != nil {
		return nil, err
	}
	c := &domain.Category{Name: in.Name, Description: in.Description}
	if err := s.categories.Create(ctx, c); err != nil {
		return nil, fmt.Errorf("create category: %w", err)
	}
	s.log.Info("category created", zap.Uint("category_id", c.ID), zap.String("name", c.Name))
	return c, nil
}

func (s *CategoryService) Update(ctx context.Context, caller *auth.Claims, id uint, in CategoryInput) (*domain.Category, error) {
	if err := auth.Authorize(caller, auth.AnyRole(domain.RoleAdmin)); err != nil {
		return nil, err
	}
	if err := in.Validate(); err != nil {
		return nil, err
	}
	c, err := s.categories.FindByID(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("find category: %w", err)
	}
	if c == nil {
		return nil, apperr.NotFound(msgCategoryNotFound)
	}
	c.Name, c.Description = in.Name, in.Description
	if err := s.categories.Update(ctx, c); err != nil {
		return nil, fmt.Errorf("update category: %w", err)
	}
	return c, nil
}

// Delete 引用该分类的请求会被置为无分类
func (s *CategoryService) Delete(ctx context.Context, caller *auth.Claims, id uint) error {
	if err := auth.Authorize(caller, auth.AnyRole(domain.RoleAdmin)); err != nil {
		return err
	}
	ok, err := s.categories.Delete(ctx, id)
	if err != nil {
		return fmt.Errorf("delete category: %w", err)
	}
	if !ok {
		return apperr.NotFound(msgCategoryNotFound)
	}
	s.log.Info("category deleted", zap.Uint("category_id", id))
	return nil
}
