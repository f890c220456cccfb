package handler

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/rs/zerolog"

	"github.com/prn-tf/storefront/internal/domain"
	"github.com/prn-tf/storefront/internal/service"
)

// CategoryHandler serves the category catalog.
type CategoryHandler struct {
	categoryService *service.CategoryService
	logger          zerolog.Logger
}

// NewCategoryHandler creates a new CategoryHandler.
func NewCategoryHandler(categoryService *service.CategoryService, logger zerolog.Logger) *CategoryHandler {
	return &CategoryHandler{
		categoryService: categoryService,
		logger:          logger.With().Str("handler", "category").Logger(),
	}
}

// RegisterPublicRoutes registers the read-only routes.
func (h *CategoryHandler) RegisterPublicRoutes(r chi.Router) {
	r.Get("/categories", h.handleList)
	r.Get("/categories/{id}", h.handleGet)
}

// RegisterAdminRoutes registers the write routes. They must be behind the admin check.
func (h *CategoryHandler) RegisterAdminRoutes(r chi.Router) {
	r.Post("/categories", h.handleCreate)
	r.Put("/categories/{id}", h.handleUpdate)
	r.Delete("/categories/{id}", h.handleDelete)
}

type categoryRequest struct {
	Name *string `json:"name"`
}

func (h *CategoryHandler) handleList(w http.ResponseWriter, r *http.Request) {
	page, limit, err := pageParams(r)
	if err != nil {
		writeServiceError(w, r, err)
		return
	}

	out, err := h.categoryService.List(r.Context(), service.ListInput{
		Page:   page,
		Limit:  limit,
		Search: r.URL.Query().Get("search"),
	})
	if err != nil {
		writeServiceError(w, r, err)
		return
	}

	writeList(w, pageMessage(out.Page.Page, out.Page.Limit, "categories"), out.Total, out.Items)
}

func (h *CategoryHandler) handleGet(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r, "id")
	if err != nil {
		writeServiceError(w, r, err)
		return
	}

	category, err := h.categoryService.GetByID(r.Context(), id)
	if err != nil {
		writeServiceError(w, r, err)
		return
	}
	writeData(w, http.StatusOK, detailsMessage(domain.EntityCategory, id), category)
}

func (h *CategoryHandler) handleCreate(w http.ResponseWriter, r *http.Request) {
	var req categoryRequest
	if err := decodeJSON(w, r, &req); err != nil {
		writeServiceError(w, r, err)
		return
	}
	if req.Name == nil {
		writeServiceError(w, r, domain.NewValidationError("name", "is required"))
		return
	}

	category, err := h.categoryService.Create(r.Context(), *req.Name)
	if err != nil {
		writeServiceError(w, r, err)
		return
	}
	writeData(w, http.StatusCreated, createdMessage(domain.EntityCategory, category.ID), category)
}

func (h *CategoryHandler) handleUpdate(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r, "id")
	if err != nil {
		writeServiceError(w, r, err)
		return
	}

	var req categoryRequest
	if err := decodeJSON(w, r, &req); err != nil {
		writeServiceError(w, r, err)
		return
	}

	category, err := h.categoryService.Update(r.Context(), id, req.Name)
	if err != nil {
		writeServiceError(w, r, err)
		return
	}
	writeData(w, http.StatusOK, updatedMessage(domain.EntityCategory, id), category)
}

func (h *CategoryHandler) handleDelete(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r, "id")
	if err != nil {
		writeServiceError(w, r, err)
		return
	}

	category, err := h.categoryService.GetByID(r.Context(), id)
	if err != nil {
		writeServiceError(w, r, err)
		return
	}
	if err := h.categoryService.Delete(r.Context(), id); err != nil {
		writeServiceError(w, r, err)
		return
	}
	writeData(w, http.StatusOK, deletedMessage(domain.EntityCategory, id), category)
}
