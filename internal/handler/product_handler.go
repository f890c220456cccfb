package handler

import (
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/rs/zerolog"

	"github.com/prn-tf/storefront/internal/domain"
	"github.com/prn-tf/storefront/internal/service"
)

// ProductHandler serves the product catalog and image upload URLs.
type ProductHandler struct {
	productService *service.ProductService
	imageService   *service.ImageService
	logger         zerolog.Logger
}

// NewProductHandler creates a new ProductHandler.
func NewProductHandler(productService *service.ProductService, imageService *service.ImageService, logger zerolog.Logger) *ProductHandler {
	return &ProductHandler{
		productService: productService,
		imageService:   imageService,
		logger:         logger.With().Str("handler", "product").Logger(),
	}
}

// RegisterPublicRoutes registers the read-only routes.
func (h *ProductHandler) RegisterPublicRoutes(r chi.Router) {
	r.Get("/products", h.handleList)
	r.Get("/products/{id}", h.handleGet)
}

// RegisterAdminRoutes registers the write routes. They must be behind the admin check.
func (h *ProductHandler) RegisterAdminRoutes(r chi.Router) {
	r.Post("/products", h.handleCreate)
	r.Put("/products/{id}", h.handleUpdate)
	r.Delete("/products/{id}", h.handleDelete)
	r.Post("/products/{id}/images/upload-url", h.handleUploadURL)
}

type productRequest struct {
	Title              *string   `json:"title"`
	Description        *string   `json:"description"`
	Price              *float64  `json:"price"`
	DiscountPercentage *float64  `json:"discount_percentage"`
	Rating             *float64  `json:"rating"`
	Stock              *int      `json:"stock"`
	Brand              *string   `json:"brand"`
	Thumbnail          *string   `json:"thumbnail"`
	Images             *[]string `json:"images"`
	IsPublished        *bool     `json:"is_published"`
	CategoryID         *int64    `json:"category_id"`
}

func (req productRequest) toCreateInput() service.CreateProductInput {
	input := service.CreateProductInput{
		Title:              deref(req.Title),
		Description:        deref(req.Description),
		Price:              deref(req.Price),
		DiscountPercentage: deref(req.DiscountPercentage),
		Rating:             deref(req.Rating),
		Stock:              deref(req.Stock),
		Brand:              deref(req.Brand),
		Thumbnail:          deref(req.Thumbnail),
		IsPublished:        deref(req.IsPublished),
		CategoryID:         deref(req.CategoryID),
	}
	if req.Images != nil {
		input.Images = *req.Images
	}
	return input
}

func (req productRequest) toUpdateInput() service.UpdateProductInput {
	return service.UpdateProductInput{
		Title:              req.Title,
		Description:        req.Description,
		Price:              req.Price,
		DiscountPercentage: req.DiscountPercentage,
		Rating:             req.Rating,
		Stock:              req.Stock,
		Brand:              req.Brand,
		Thumbnail:          req.Thumbnail,
		Images:             req.Images,
		IsPublished:        req.IsPublished,
		CategoryID:         req.CategoryID,
	}
}

func deref[T any](p *T) T {
	var zero T
	if p == nil {
		return zero
	}
	return *p
}

func (h *ProductHandler) handleList(w http.ResponseWriter, r *http.Request) {
	page, limit, err := pageParams(r)
	if err != nil {
		writeServiceError(w, r, err)
		return
	}

	out, err := h.productService.List(r.Context(), service.ListInput{
		Page:   page,
		Limit:  limit,
		Search: r.URL.Query().Get("search"),
	})
	if err != nil {
		writeServiceError(w, r, err)
		return
	}

	writeList(w, pageMessage(out.Page.Page, out.Page.Limit, "products"), out.Total, out.Items)
}

func (h *ProductHandler) handleGet(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r, "id")
	if err != nil {
		writeServiceError(w, r, err)
		return
	}

	product, err := h.productService.GetByID(r.Context(), id)
	if err != nil {
		writeServiceError(w, r, err)
		return
	}
	writeData(w, http.StatusOK, detailsMessage(domain.EntityProduct, id), product)
}

func (h *ProductHandler) handleCreate(w http.ResponseWriter, r *http.Request) {
	var req productRequest
	if err := decodeJSON(w, r, &req); err != nil {
		writeServiceError(w, r, err)
		return
	}
	if req.Price == nil {
		writeServiceError(w, r, domain.NewValidationError("price", "is required"))
		return
	}

	product, err := h.productService.Create(r.Context(), req.toCreateInput())
	if err != nil {
		writeServiceError(w, r, err)
		return
	}
	writeData(w, http.StatusCreated, createdMessage(domain.EntityProduct, product.ID), product)
}

func (h *ProductHandler) handleUpdate(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r, "id")
	if err != nil {
		writeServiceError(w, r, err)
		return
	}

	var req productRequest
	if err := decodeJSON(w, r, &req); err != nil {
		writeServiceError(w, r, err)
		return
	}

	product, err := h.productService.Update(r.Context(), id, req.toUpdateInput())
	if err != nil {
		writeServiceError(w, r, err)
		return
	}
	writeData(w, http.StatusOK, updatedMessage(domain.EntityProduct, id), product)
}

func (h *ProductHandler) handleDelete(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r, "id")
	if err != nil {
		writeServiceError(w, r, err)
		return
	}

	product, err := h.productService.GetByID(r.Context(), id)
	if err != nil {
		writeServiceError(w, r, err)
		return
	}
	if err := h.productService.Delete(r.Context(), id); err != nil {
		writeServiceError(w, r, err)
		return
	}
	writeData(w, http.StatusOK, deletedMessage(domain.EntityProduct, id), product)
}

type uploadURLRequest struct {
	Filename    string `json:"filename"`
	ContentType string `json:"content_type"`

	// ExpiresIn is the URL lifetime in seconds.
	ExpiresIn int `json:"expires_in"`
}

func (h *ProductHandler) handleUploadURL(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r, "id")
	if err != nil {
		writeServiceError(w, r, err)
		return
	}

	var req uploadURLRequest
	if err := decodeJSON(w, r, &req); err != nil {
		writeServiceError(w, r, err)
		return
	}

	upload, err := h.imageService.PresignUpload(r.Context(), service.UploadInput{
		ProductID:   id,
		Filename:    req.Filename,
		ContentType: req.ContentType,
		Expiry:      time.Duration(req.ExpiresIn) * time.Second,
	})
	if err != nil {
		writeServiceError(w, r, err)
		return
	}
	writeData(w, http.StatusOK, uploadMessage(domain.EntityProduct, id), upload)
}
