// Package repository defines data access interfaces for Storefront.
// Implementations live in the postgres and sqlite subpackages.
package repository

import (
	"context"

	"github.com/prn-tf/storefront/internal/domain"
)

// =============================================================================
// Common Types
// =============================================================================

// ListOptions contains common pagination and filtering options.
type ListOptions struct {
	// Limit is the maximum number of items to return.
	Limit int

	// Offset is the number of items to skip.
	Offset int

	// Search filters by a case-insensitive substring of the entity's display fields.
	Search string

	// Role filters users by role (users only).
	Role domain.Role
}

// ListResult is a generic container for list results.
type ListResult[T any] struct {
	// Items contains the result items.
	Items []T

	// Total is the total number of matching items (ignoring Limit and Offset).
	Total int64
}

// =============================================================================
// User Repository
// =============================================================================

// UserRepository defines operations for user persistence.
type UserRepository interface {
	// Create creates a new user.
	// Returns domain.ErrAlreadyExists if the username or email is taken.
	Create(ctx context.Context, user *domain.User) error

	// GetByID retrieves a user by ID.
	// Returns a domain.NotFoundError if the user doesn't exist.
	GetByID(ctx context.Context, id int64) (*domain.User, error)

	// GetByUsername retrieves a user by username.
	GetByUsername(ctx context.Context, username string) (*domain.User, error)

	// GetByEmail retrieves a user by email.
	GetByEmail(ctx context.Context, email string) (*domain.User, error)

	// List returns users matching opts.Search (username, email, full name) and opts.Role.
	List(ctx context.Context, opts ListOptions) (*ListResult[*domain.User], error)

	// Update updates an existing user.
	Update(ctx context.Context, user *domain.User) error

	// Delete deletes a user by ID. The user's carts are removed with it.
	Delete(ctx context.Context, id int64) error

	// ExistsByUsername checks if a username is already taken.
	ExistsByUsername(ctx context.Context, username string) (bool, error)

	// ExistsByEmail checks if an email is already registered.
	ExistsByEmail(ctx context.Context, email string) (bool, error)
}

// =============================================================================
// Category Repository
// =============================================================================

// CategoryRepository defines operations for category persistence.
type CategoryRepository interface {
	// Create creates a new category.
	// Returns domain.ErrAlreadyExists if the name is taken.
	Create(ctx context.Context, category *domain.Category) error

	// GetByID retrieves a category by ID.
	GetByID(ctx context.Context, id int64) (*domain.Category, error)

	// List returns categories whose name contains opts.Search.
	List(ctx context.Context, opts ListOptions) (*ListResult[*domain.Category], error)

	// Update updates an existing category.
	Update(ctx context.Context, category *domain.Category) error

	// Delete deletes a category by ID.
	Delete(ctx context.Context, id int64) error
}

// =============================================================================
// Product Repository
// =============================================================================

// ProductLookup is the read-only product view the cart engine depends on.
type ProductLookup interface {
	// GetByID retrieves a product by ID.
	// Returns a domain.NotFoundError for EntityProduct if it doesn't exist.
	GetByID(ctx context.Context, id int64) (*domain.Product, error)
}

// ProductRepository defines operations for product persistence.
type ProductRepository interface {
	ProductLookup

	// Create creates a new product.
	Create(ctx context.Context, product *domain.Product) error

	// List returns products whose title, brand or description contains opts.Search.
	List(ctx context.Context, opts ListOptions) (*ListResult[*domain.Product], error)

	// Update updates an existing product.
	Update(ctx context.Context, product *domain.Product) error

	// Delete deletes a product by ID.
	Delete(ctx context.Context, id int64) error
}

// =============================================================================
// Cart Repository
// =============================================================================

// CartRepository persists cart aggregates. Every read and write is scoped to
// the owning user; a cart owned by someone else is reported as not found.
type CartRepository interface {
	// Create inserts the cart and all of its items in one transaction,
	// setting cart.ID, item IDs and item CartIDs.
	Create(ctx context.Context, cart *domain.Cart) error

	// GetByIDForOwner retrieves a cart with its items.
	// Returns a domain.NotFoundError for EntityCart if it doesn't exist or belongs to another user.
	GetByIDForOwner(ctx context.Context, id, ownerID int64) (*domain.Cart, error)

	// ListByOwner returns the owner's carts, with items, ordered by ID.
	ListByOwner(ctx context.Context, ownerID int64, opts ListOptions) (*ListResult[*domain.Cart], error)

	// ReplaceItems atomically deletes every item of the cart, inserts cart.Items
	// and stores cart.TotalAmount. The cart is matched on (cart.ID, cart.UserID).
	ReplaceItems(ctx context.Context, cart *domain.Cart) error

	// DeleteForOwner deletes the cart and its items in one transaction and
	// returns the cart as it was before deletion.
	DeleteForOwner(ctx context.Context, id, ownerID int64) (*domain.Cart, error)
}

// =============================================================================
// Health
// =============================================================================

// DatabaseHealth is an interface for database health checks.
type DatabaseHealth interface {
	Ping(ctx context.Context) error
	Health(ctx context.Context) error
	Close() error
}
