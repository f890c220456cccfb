package handler

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/rs/zerolog"

	"github.com/prn-tf/storefront/internal/domain"
	"github.com/prn-tf/storefront/internal/service"
)

// CartHandler serves the authenticated user's carts.
type CartHandler struct {
	cartService *service.CartService
	logger      zerolog.Logger
}

// NewCartHandler creates a new CartHandler.
func NewCartHandler(cartService *service.CartService, logger zerolog.Logger) *CartHandler {
	return &CartHandler{
		cartService: cartService,
		logger:      logger.With().Str("handler", "cart").Logger(),
	}
}

// RegisterRoutes registers the cart routes. They must be behind the auth middleware.
func (h *CartHandler) RegisterRoutes(r chi.Router) {
	r.Get("/cart", h.handleList)
	r.Post("/cart", h.handleCreate)
	r.Get("/cart/{id}", h.handleGet)
	r.Put("/cart/{id}", h.handleUpdate)
	r.Delete("/cart/{id}", h.handleDelete)
}

type cartRequest struct {
	Items []domain.CartItemRequest `json:"cart_items"`
}

func (h *CartHandler) handleList(w http.ResponseWriter, r *http.Request) {
	user, err := principal(r)
	if err != nil {
		writeServiceError(w, r, err)
		return
	}
	page, limit, err := pageParams(r)
	if err != nil {
		writeServiceError(w, r, err)
		return
	}

	out, err := h.cartService.List(r.Context(), user, page, limit)
	if err != nil {
		writeServiceError(w, r, err)
		return
	}

	writeList(w, cartPageMessage(len(out.Items), out.Page.Page, out.Page.Limit), out.Total, out.Items)
}

func (h *CartHandler) handleGet(w http.ResponseWriter, r *http.Request) {
	user, id, ok := h.principalAndID(w, r)
	if !ok {
		return
	}

	cart, err := h.cartService.Get(r.Context(), user, id)
	if err != nil {
		writeServiceError(w, r, err)
		return
	}
	writeData(w, http.StatusOK, detailsMessage(domain.EntityCart, id), cart)
}

func (h *CartHandler) handleCreate(w http.ResponseWriter, r *http.Request) {
	user, err := principal(r)
	if err != nil {
		writeServiceError(w, r, err)
		return
	}

	var req cartRequest
	if err := decodeJSON(w, r, &req); err != nil {
		writeServiceError(w, r, err)
		return
	}

	cart, err := h.cartService.Create(r.Context(), user, req.Items)
	if err != nil {
		writeServiceError(w, r, err)
		return
	}
	writeData(w, http.StatusCreated, createdMessage(domain.EntityCart, cart.ID), cart)
}

func (h *CartHandler) handleUpdate(w http.ResponseWriter, r *http.Request) {
	user, id, ok := h.principalAndID(w, r)
	if !ok {
		return
	}

	var req cartRequest
	if err := decodeJSON(w, r, &req); err != nil {
		writeServiceError(w, r, err)
		return
	}

	cart, err := h.cartService.Update(r.Context(), user, id, req.Items)
	if err != nil {
		writeServiceError(w, r, err)
		return
	}
	writeData(w, http.StatusOK, updatedMessage(domain.EntityCart, id), cart)
}

func (h *CartHandler) handleDelete(w http.ResponseWriter, r *http.Request) {
	user, id, ok := h.principalAndID(w, r)
	if !ok {
		return
	}

	cart, err := h.cartService.Delete(r.Context(), user, id)
	if err != nil {
		writeServiceError(w, r, err)
		return
	}
	writeData(w, http.StatusOK, deletedMessage(domain.EntityCart, id), cart)
}

func (h *CartHandler) principalAndID(w http.ResponseWriter, r *http.Request) (*domain.User, int64, bool) {
	user, err := principal(r)
	if err != nil {
		writeServiceError(w, r, err)
		return nil, 0, false
	}
	id, err := pathID(r, "id")
	if err != nil {
		writeServiceError(w, r, err)
		return nil, 0, false
	}
	return user, id, true
}
