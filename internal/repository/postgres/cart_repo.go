package postgres

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5"

	"github.com/prn-tf/storefront/internal/domain"
	"github.com/prn-tf/storefront/internal/repository"
)

// cartRepository implements repository.CartRepository for PostgreSQL.
type cartRepository struct {
	db *DB
}

// NewCartRepository creates a new PostgreSQL cart repository.
func NewCartRepository(db *DB) repository.CartRepository {
	return &cartRepository{db: db}
}

// Create inserts the cart and its items.
func (r *cartRepository) Create(ctx context.Context, cart *domain.Cart) error {
	return r.db.WithTx(ctx, pgx.TxOptions{}, func(tx pgx.Tx) error {
		err := tx.QueryRow(ctx,
			`INSERT INTO carts (user_id, total_amount, created_at) VALUES ($1, $2, $3) RETURNING id`,
			cart.UserID, cart.TotalAmount, cart.CreatedAt,
		).Scan(&cart.ID)
		if err != nil {
			if isForeignKeyViolation(err) {
				return domain.NewNotFoundError(domain.EntityUser, cart.UserID)
			}
			return fmt.Errorf("failed to create cart: %w", err)
		}
		return insertItems(ctx, tx, cart)
	})
}

// GetByIDForOwner retrieves a cart with its items.
func (r *cartRepository) GetByIDForOwner(ctx context.Context, id, ownerID int64) (*domain.Cart, error) {
	var cart *domain.Cart
	err := r.db.WithTx(ctx, pgx.TxOptions{AccessMode: pgx.ReadOnly}, func(tx pgx.Tx) error {
		var err error
		cart, err = getCart(ctx, tx, id, ownerID, false)
		return err
	})
	if err != nil {
		return nil, err
	}
	return cart, nil
}

// ListByOwner returns a page of the owner's carts.
func (r *cartRepository) ListByOwner(ctx context.Context, ownerID int64, opts repository.ListOptions) (*repository.ListResult[*domain.Cart], error) {
	result := &repository.ListResult[*domain.Cart]{Items: make([]*domain.Cart, 0)}

	err := r.db.WithTx(ctx, pgx.TxOptions{AccessMode: pgx.ReadOnly}, func(tx pgx.Tx) error {
		if err := tx.QueryRow(ctx, `SELECT COUNT(*) FROM carts WHERE user_id = $1`, ownerID).Scan(&result.Total); err != nil {
			return fmt.Errorf("failed to count carts: %w", err)
		}

		rows, err := tx.Query(ctx, `
			SELECT id, user_id, total_amount, created_at
			FROM carts
			WHERE user_id = $1
			ORDER BY id
			LIMIT $2 OFFSET $3
		`, ownerID, opts.Limit, opts.Offset)
		if err != nil {
			return fmt.Errorf("failed to list carts: %w", err)
		}

		carts, err := pgx.CollectRows(rows, func(row pgx.CollectableRow) (*domain.Cart, error) {
			return scanCart(row)
		})
		if err != nil {
			return fmt.Errorf("failed to scan carts: %w", err)
		}

		for _, cart := range carts {
			if cart.Items, err = loadItems(ctx, tx, cart.ID); err != nil {
				return err
			}
		}
		result.Items = carts
		return nil
	})
	if err != nil {
		return nil, err
	}
	return result, nil
}

// ReplaceItems swaps the cart's item set and stores the new total.
func (r *cartRepository) ReplaceItems(ctx context.Context, cart *domain.Cart) error {
	return r.db.WithTx(ctx, pgx.TxOptions{}, func(tx pgx.Tx) error {
		result, err := tx.Exec(ctx,
			`UPDATE carts SET total_amount = $1 WHERE id = $2 AND user_id = $3`,
			cart.TotalAmount, cart.ID, cart.UserID,
		)
		if err != nil {
			return fmt.Errorf("failed to update cart: %w", err)
		}
		if result.RowsAffected() == 0 {
			return domain.NewNotFoundError(domain.EntityCart, cart.ID)
		}

		if _, err := tx.Exec(ctx, `DELETE FROM cart_items WHERE cart_id = $1`, cart.ID); err != nil {
			return fmt.Errorf("failed to delete cart items: %w", err)
		}

		return insertItems(ctx, tx, cart)
	})
}

// DeleteForOwner removes the cart and returns its last state.
func (r *cartRepository) DeleteForOwner(ctx context.Context, id, ownerID int64) (*domain.Cart, error) {
	var cart *domain.Cart
	err := r.db.WithTx(ctx, pgx.TxOptions{}, func(tx pgx.Tx) error {
		var err error
		cart, err = getCart(ctx, tx, id, ownerID, true)
		if err != nil {
			return err
		}

		if _, err := tx.Exec(ctx, `DELETE FROM cart_items WHERE cart_id = $1`, id); err != nil {
			return fmt.Errorf("failed to delete cart items: %w", err)
		}
		if _, err := tx.Exec(ctx, `DELETE FROM carts WHERE id = $1 AND user_id = $2`, id, ownerID); err != nil {
			return fmt.Errorf("failed to delete cart: %w", err)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return cart, nil
}

// getCart loads an owned cart. forUpdate locks the cart row for the rest of the transaction.
func getCart(ctx context.Context, q Querier, id, ownerID int64, forUpdate bool) (*domain.Cart, error) {
	query := `SELECT id, user_id, total_amount, created_at FROM carts WHERE id = $1 AND user_id = $2`
	if forUpdate {
		query += ` FOR UPDATE`
	}

	cart, err := scanCart(q.QueryRow(ctx, query, id, ownerID))
	if err != nil {
		if isNoRows(err) {
			return nil, domain.NewNotFoundError(domain.EntityCart, id)
		}
		return nil, fmt.Errorf("failed to get cart: %w", err)
	}

	if cart.Items, err = loadItems(ctx, q, cart.ID); err != nil {
		return nil, err
	}
	return cart, nil
}

func insertItems(ctx context.Context, q Querier, cart *domain.Cart) error {
	for i := range cart.Items {
		item := &cart.Items[i]
		err := q.QueryRow(ctx,
			`INSERT INTO cart_items (cart_id, product_id, quantity, subtotal) VALUES ($1, $2, $3, $4) RETURNING id`,
			cart.ID, item.ProductID, item.Quantity, item.Subtotal,
		).Scan(&item.ID)
		if err != nil {
			return fmt.Errorf("failed to insert cart item: %w", err)
		}
		item.CartID = cart.ID
	}
	return nil
}

// loadItems reads a cart's items with a summary of each referenced product.
func loadItems(ctx context.Context, q Querier, cartID int64) ([]domain.CartItem, error) {
	rows, err := q.Query(ctx, `
		SELECT ci.id, ci.cart_id, ci.product_id, ci.quantity, ci.subtotal,
			p.id, p.title, p.brand, p.price, p.discount_percentage, p.thumbnail
		FROM cart_items ci
		LEFT JOIN products p ON p.id = ci.product_id
		WHERE ci.cart_id = $1
		ORDER BY ci.id
	`, cartID)
	if err != nil {
		return nil, fmt.Errorf("failed to load cart items: %w", err)
	}
	defer rows.Close()

	items := make([]domain.CartItem, 0)
	for rows.Next() {
		var item domain.CartItem
		var (
			productID           *int64
			title, brand, thumb *string
			price, discount     *float64
		)
		if err := rows.Scan(
			&item.ID, &item.CartID, &item.ProductID, &item.Quantity, &item.Subtotal,
			&productID, &title, &brand, &price, &discount, &thumb,
		); err != nil {
			return nil, fmt.Errorf("failed to scan cart item: %w", err)
		}
		if productID != nil {
			item.Product = &domain.ProductSummary{
				ID:                 *productID,
				Title:              *title,
				Brand:              *brand,
				Price:              *price,
				DiscountPercentage: *discount,
				Thumbnail:          *thumb,
			}
		}
		items = append(items, item)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate cart items: %w", err)
	}
	return items, nil
}

func scanCart(row pgx.Row) (*domain.Cart, error) {
	cart := &domain.Cart{}
	if err := row.Scan(&cart.ID, &cart.UserID, &cart.TotalAmount, &cart.CreatedAt); err != nil {
		return nil, err
	}
	return cart, nil
}
