package service

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/rs/zerolog"

	"github.com/prn-tf/storefront/internal/domain"
	"github.com/prn-tf/storefront/internal/repository"
)

// ProductService manages the product catalog.
type ProductService struct {
	productRepo  repository.ProductRepository
	categoryRepo repository.CategoryRepository
	paginator    Paginator
	logger       zerolog.Logger
}

// NewProductService creates a new ProductService.
func NewProductService(
	productRepo repository.ProductRepository,
	categoryRepo repository.CategoryRepository,
	paginator Paginator,
	logger zerolog.Logger,
) *ProductService {
	return &ProductService{
		productRepo:  productRepo,
		categoryRepo: categoryRepo,
		paginator:    paginator,
		logger:       logger.With().Str("service", "product").Logger(),
	}
}

// CreateProductInput contains the fields of a new product.
type CreateProductInput struct {
	Title              string
	Description        string
	Price              float64
	DiscountPercentage float64
	Rating             float64
	Stock              int
	Brand              string
	Thumbnail          string
	Images             []string
	IsPublished        bool
	CategoryID         int64
}

// Create validates and stores a product. The category must exist.
func (s *ProductService) Create(ctx context.Context, input CreateProductInput) (*domain.Product, error) {
	images := input.Images
	if images == nil {
		images = []string{}
	}

	product := &domain.Product{
		Title:              strings.TrimSpace(input.Title),
		Description:        input.Description,
		Price:              input.Price,
		DiscountPercentage: input.DiscountPercentage,
		Rating:             input.Rating,
		Stock:              input.Stock,
		Brand:              strings.TrimSpace(input.Brand),
		Thumbnail:          input.Thumbnail,
		Images:             images,
		IsPublished:        input.IsPublished,
		CategoryID:         input.CategoryID,
		CreatedAt:          time.Now().UTC(),
	}
	if err := product.Validate(); err != nil {
		return nil, err
	}
	if err := s.ensureCategory(ctx, product.CategoryID); err != nil {
		return nil, err
	}

	if err := s.productRepo.Create(ctx, product); err != nil {
		s.logger.Error().Err(err).Str("title", product.Title).Msg("failed to create product")
		return nil, internal(err)
	}

	s.logger.Info().
		Int64("product_id", product.ID).
		Int64("category_id", product.CategoryID).
		Msg("product created")

	return product, nil
}

// GetByID retrieves a product by ID.
func (s *ProductService) GetByID(ctx context.Context, id int64) (*domain.Product, error) {
	product, err := s.productRepo.GetByID(ctx, id)
	if err != nil {
		if domain.IsNotFound(err, "") {
			return nil, err
		}
		s.logger.Error().Err(err).Int64("product_id", id).Msg("failed to get product")
		return nil, fmt.Errorf("%w: %v", ErrInternalError, err)
	}
	return product, nil
}

// List retrieves a page of products.
func (s *ProductService) List(ctx context.Context, input ListInput) (*ListOutput[*domain.Product], error) {
	page := s.paginator.Normalize(input.Page, input.Limit)

	result, err := s.productRepo.List(ctx, page.Options(strings.TrimSpace(input.Search)))
	if err != nil {
		s.logger.Error().Err(err).Msg("failed to list products")
		return nil, fmt.Errorf("%w: %v", ErrInternalError, err)
	}

	return &ListOutput[*domain.Product]{Items: result.Items, Total: result.Total, Page: page}, nil
}

// UpdateProductInput holds the changeable product fields. Nil fields are left unchanged.
type UpdateProductInput struct {
	Title              *string
	Description        *string
	Price              *float64
	DiscountPercentage *float64
	Rating             *float64
	Stock              *int
	Brand              *string
	Thumbnail          *string
	Images             *[]string
	IsPublished        *bool
	CategoryID         *int64
}

// Update applies the allow-listed fields of input to a product.
func (s *ProductService) Update(ctx context.Context, id int64, input UpdateProductInput) (*domain.Product, error) {
	product, err := s.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}

	if input.Title != nil {
		product.Title = strings.TrimSpace(*input.Title)
	}
	if input.Description != nil {
		product.Description = *input.Description
	}
	if input.Price != nil {
		product.Price = *input.Price
	}
	if input.DiscountPercentage != nil {
		product.DiscountPercentage = *input.DiscountPercentage
	}
	if input.Rating != nil {
		product.Rating = *input.Rating
	}
	if input.Stock != nil {
		product.Stock = *input.Stock
	}
	if input.Brand != nil {
		product.Brand = strings.TrimSpace(*input.Brand)
	}
	if input.Thumbnail != nil {
		product.Thumbnail = *input.Thumbnail
	}
	if input.Images != nil {
		product.Images = *input.Images
		if product.Images == nil {
			product.Images = []string{}
		}
	}
	if input.IsPublished != nil {
		product.IsPublished = *input.IsPublished
	}
	categoryChanged := input.CategoryID != nil && *input.CategoryID != product.CategoryID
	if input.CategoryID != nil {
		product.CategoryID = *input.CategoryID
	}

	if err := product.Validate(); err != nil {
		return nil, err
	}
	if categoryChanged {
		if err := s.ensureCategory(ctx, product.CategoryID); err != nil {
			return nil, err
		}
	}

	if err := s.productRepo.Update(ctx, product); err != nil {
		s.logger.Error().Err(err).Int64("product_id", id).Msg("failed to update product")
		return nil, internal(err)
	}

	s.logger.Info().Int64("product_id", id).Msg("product updated")
	return product, nil
}

// Delete removes a product. Cart items referencing it keep their stored subtotals.
func (s *ProductService) Delete(ctx context.Context, id int64) error {
	if err := s.productRepo.Delete(ctx, id); err != nil {
		if domain.IsNotFound(err, "") {
			return err
		}
		s.logger.Error().Err(err).Int64("product_id", id).Msg("failed to delete product")
		return fmt.Errorf("%w: %v", ErrInternalError, err)
	}

	s.logger.Info().Int64("product_id", id).Msg("product deleted")
	return nil
}

func (s *ProductService) ensureCategory(ctx context.Context, categoryID int64) error {
	if _, err := s.categoryRepo.GetByID(ctx, categoryID); err != nil {
		if domain.IsNotFound(err, "") {
			return domain.NewNotFoundError(domain.EntityCategory, categoryID)
		}
		s.logger.Error().Err(err).Int64("category_id", categoryID).Msg("failed to check category")
		return fmt.Errorf("%w: %v", ErrInternalError, err)
	}
	return nil
}
