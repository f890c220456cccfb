package service

import (
	"context"
	"time"

	"github.com/rs/zerolog"

	"github.com/prn-tf/storefront/internal/domain"
	"github.com/prn-tf/storefront/internal/events"
	"github.com/prn-tf/storefront/internal/metrics"
	"github.com/prn-tf/storefront/internal/repository"
)

// Cart operation names used for metrics and logs.
const (
	CartOpCreate = "create"
	CartOpGet    = "get"
	CartOpList   = "list"
	CartOpUpdate = "update"
	CartOpDelete = "delete"
)

// DefaultPublishTimeout bounds how long a cart write waits on its event.
const DefaultPublishTimeout = 5 * time.Second

// CartService prices and persists carts. Every operation is scoped to the
// calling principal; carts owned by other users are reported as not found.
type CartService struct {
	cartRepo  repository.CartRepository
	products  repository.ProductLookup
	publisher      events.Publisher
	publishTimeout time.Duration
	metrics        *metrics.Metrics
	paginator      Paginator
	now            func() time.Time
	logger         zerolog.Logger
}

// CartServiceOption configures optional CartService collaborators.
type CartServiceOption func(*CartService)

// WithPublisher sets the publisher cart events are sent to.
func WithPublisher(p events.Publisher) CartServiceOption {
	return func(s *CartService) {
		if p != nil {
			s.publisher = p
		}
	}
}

// WithPublishTimeout bounds each event publish. Non-positive values keep the default.
func WithPublishTimeout(d time.Duration) CartServiceOption {
	return func(s *CartService) {
		if d > 0 {
			s.publishTimeout = d
		}
	}
}

// WithMetrics records cart operation outcomes.
func WithMetrics(m *metrics.Metrics) CartServiceOption {
	return func(s *CartService) { s.metrics = m }
}

// WithClock overrides the clock used for event timestamps.
func WithClock(now func() time.Time) CartServiceOption {
	return func(s *CartService) { s.now = now }
}

// NewCartService creates a new CartService.
func NewCartService(
	cartRepo repository.CartRepository,
	products repository.ProductLookup,
	paginator Paginator,
	logger zerolog.Logger,
	opts ...CartServiceOption,
) *CartService {
	s := &CartService{
		cartRepo:       cartRepo,
		products:       products,
		publisher:      events.NoopPublisher{},
		publishTimeout: DefaultPublishTimeout,
		paginator:      paginator,
		now:            time.Now,
		logger:         logger.With().Str("service", "cart").Logger(),
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Create prices items and stores a new cart owned by principal.
// An unknown product aborts before anything is written.
func (s *CartService) Create(ctx context.Context, principal *domain.User, items []domain.CartItemRequest) (cart *domain.Cart, err error) {
	defer func() { s.metrics.CartOperation(CartOpCreate, err) }()

	priced, err := s.priceItems(ctx, items)
	if err != nil {
		return nil, err
	}

	cart = domain.NewCart(principal.ID)
	cart.SetItems(priced)

	if err := s.cartRepo.Create(ctx, cart); err != nil {
		s.logger.Error().Err(err).Int64("user_id", principal.ID).Msg("failed to create cart")
		return nil, internal(err)
	}

	s.logger.Info().
		Int64("cart_id", cart.ID).
		Int64("user_id", cart.UserID).
		Int("items", len(cart.Items)).
		Float64("total_amount", cart.TotalAmount).
		Msg("cart created")

	s.publish(ctx, events.TypeCartCreated, cart)
	return cart, nil
}

// Get retrieves one of principal's carts.
func (s *CartService) Get(ctx context.Context, principal *domain.User, cartID int64) (cart *domain.Cart, err error) {
	defer func() { s.metrics.CartOperation(CartOpGet, err) }()

	return s.get(ctx, principal, cartID)
}

// List retrieves a page of principal's carts.
func (s *CartService) List(ctx context.Context, principal *domain.User, page, limit int) (out *ListOutput[*domain.Cart], err error) {
	defer func() { s.metrics.CartOperation(CartOpList, err) }()

	p := s.paginator.Normalize(page, limit)
	result, err := s.cartRepo.ListByOwner(ctx, principal.ID, p.Options(""))
	if err != nil {
		s.logger.Error().Err(err).Int64("user_id", principal.ID).Msg("failed to list carts")
		return nil, internal(err)
	}

	return &ListOutput[*domain.Cart]{Items: result.Items, Total: result.Total, Page: p}, nil
}

// Update replaces the item set of one of principal's carts and recomputes its total.
func (s *CartService) Update(ctx context.Context, principal *domain.User, cartID int64, items []domain.CartItemRequest) (cart *domain.Cart, err error) {
	defer func() { s.metrics.CartOperation(CartOpUpdate, err) }()

	cart, err = s.get(ctx, principal, cartID)
	if err != nil {
		return nil, err
	}

	priced, err := s.priceItems(ctx, items)
	if err != nil {
		return nil, err
	}
	cart.SetItems(priced)

	if err := s.cartRepo.ReplaceItems(ctx, cart); err != nil {
		if domain.IsNotFound(err, "") {
			return nil, err
		}
		s.logger.Error().Err(err).Int64("cart_id", cartID).Msg("failed to replace cart items")
		return nil, internal(err)
	}

	s.logger.Info().
		Int64("cart_id", cart.ID).
		Int("items", len(cart.Items)).
		Float64("total_amount", cart.TotalAmount).
		Msg("cart updated")

	s.publish(ctx, events.TypeCartUpdated, cart)
	return cart, nil
}

// Delete removes one of principal's carts and returns it as it was before deletion.
func (s *CartService) Delete(ctx context.Context, principal *domain.User, cartID int64) (cart *domain.Cart, err error) {
	defer func() { s.metrics.CartOperation(CartOpDelete, err) }()

	cart, err = s.cartRepo.DeleteForOwner(ctx, cartID, principal.ID)
	if err != nil {
		if domain.IsNotFound(err, "") {
			return nil, err
		}
		s.logger.Error().Err(err).Int64("cart_id", cartID).Msg("failed to delete cart")
		return nil, internal(err)
	}

	s.logger.Info().Int64("cart_id", cart.ID).Int64("user_id", cart.UserID).Msg("cart deleted")

	s.publish(ctx, events.TypeCartDeleted, cart)
	return cart, nil
}

func (s *CartService) get(ctx context.Context, principal *domain.User, cartID int64) (*domain.Cart, error) {
	cart, err := s.cartRepo.GetByIDForOwner(ctx, cartID, principal.ID)
	if err != nil {
		if domain.IsNotFound(err, "") {
			return nil, err
		}
		s.logger.Error().Err(err).Int64("cart_id", cartID).Msg("failed to get cart")
		return nil, internal(err)
	}
	return cart, nil
}

// priceItems validates every requested line and prices it against the current product.
func (s *CartService) priceItems(ctx context.Context, items []domain.CartItemRequest) ([]domain.CartItem, error) {
	priced := make([]domain.CartItem, 0, len(items))
	for _, item := range items {
		if err := item.Validate(); err != nil {
			return nil, err
		}

		product, err := s.products.GetByID(ctx, item.ProductID)
		if err != nil {
			if domain.IsNotFound(err, "") {
				return nil, domain.NewNotFoundError(domain.EntityProduct, item.ProductID)
			}
			s.logger.Error().Err(err).Int64("product_id", item.ProductID).Msg("failed to look up product")
			return nil, internal(err)
		}

		priced = append(priced, domain.NewCartItem(product, item.Quantity))
	}
	return priced, nil
}

// publish sends a cart event. Failures are logged and never fail the operation.
// The publish outlives a cancelled request but not the publish timeout.
func (s *CartService) publish(ctx context.Context, eventType string, cart *domain.Cart) {
	ctx, cancel := context.WithTimeout(context.WithoutCancel(ctx), s.publishTimeout)
	defer cancel()

	event := events.NewCartEvent(eventType, cart, s.now())
	if err := s.publisher.Publish(ctx, event); err != nil {
		s.logger.Warn().
			Err(err).
			Str("event_type", eventType).
			Int64("cart_id", cart.ID).
			Msg("failed to publish cart event")
	}
}
