package service

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/rs/zerolog"

	"github.com/prn-tf/storefront/internal/domain"
	"github.com/prn-tf/storefront/internal/repository"
)

// CategoryService manages product categories.
type CategoryService struct {
	categoryRepo repository.CategoryRepository
	paginator    Paginator
	logger       zerolog.Logger
}

// NewCategoryService creates a new CategoryService.
func NewCategoryService(categoryRepo repository.CategoryRepository, paginator Paginator, logger zerolog.Logger) *CategoryService {
	return &CategoryService{
		categoryRepo: categoryRepo,
		paginator:    paginator,
		logger:       logger.With().Str("service", "category").Logger(),
	}
}

// Create creates a category with a unique name.
func (s *CategoryService) Create(ctx context.Context, name string) (*domain.Category, error) {
	category := &domain.Category{Name: strings.TrimSpace(name)}
	if err := category.Validate(); err != nil {
		return nil, err
	}

	if err := s.categoryRepo.Create(ctx, category); err != nil {
		if errors.Is(err, domain.ErrAlreadyExists) {
			return nil, err
		}
		s.logger.Error().Err(err).Str("name", category.Name).Msg("failed to create category")
		return nil, fmt.Errorf("%w: %v", ErrInternalError, err)
	}

	s.logger.Info().Int64("category_id", category.ID).Str("name", category.Name).Msg("category created")
	return category, nil
}

// GetByID retrieves a category by ID.
func (s *CategoryService) GetByID(ctx context.Context, id int64) (*domain.Category, error) {
	category, err := s.categoryRepo.GetByID(ctx, id)
	if err != nil {
		if domain.IsNotFound(err, "") {
			return nil, err
		}
		s.logger.Error().Err(err).Int64("category_id", id).Msg("failed to get category")
		return nil, fmt.Errorf("%w: %v", ErrInternalError, err)
	}
	return category, nil
}

// ListInput contains parameters for catalog list operations.
type ListInput struct {
	Page   int
	Limit  int
	Search string
}

// List retrieves a page of categories.
func (s *CategoryService) List(ctx context.Context, input ListInput) (*ListOutput[*domain.Category], error) {
	page := s.paginator.Normalize(input.Page, input.Limit)

	result, err := s.categoryRepo.List(ctx, page.Options(strings.TrimSpace(input.Search)))
	if err != nil {
		s.logger.Error().Err(err).Msg("failed to list categories")
		return nil, fmt.Errorf("%w: %v", ErrInternalError, err)
	}

	return &ListOutput[*domain.Category]{Items: result.Items, Total: result.Total, Page: page}, nil
}

// Update renames a category. A nil name leaves it unchanged.
func (s *CategoryService) Update(ctx context.Context, id int64, name *string) (*domain.Category, error) {
	category, err := s.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if name == nil {
		return category, nil
	}

	category.Name = strings.TrimSpace(*name)
	if err := category.Validate(); err != nil {
		return nil, err
	}

	if err := s.categoryRepo.Update(ctx, category); err != nil {
		if isDomainError(err) {
			return nil, err
		}
		s.logger.Error().Err(err).Int64("category_id", id).Msg("failed to update category")
		return nil, fmt.Errorf("%w: %v", ErrInternalError, err)
	}

	s.logger.Info().Int64("category_id", id).Msg("category updated")
	return category, nil
}

// Delete removes a category together with its products.
func (s *CategoryService) Delete(ctx context.Context, id int64) error {
	if err := s.categoryRepo.Delete(ctx, id); err != nil {
		if domain.IsNotFound(err, "") {
			return err
		}
		s.logger.Error().Err(err).Int64("category_id", id).Msg("failed to delete category")
		return fmt.Errorf("%w: %v", ErrInternalError, err)
	}

	s.logger.Info().Int64("category_id", id).Msg("category deleted")
	return nil
}
