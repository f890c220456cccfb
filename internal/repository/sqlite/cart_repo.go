package sqlite

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/prn-tf/storefront/internal/domain"
	"github.com/prn-tf/storefront/internal/repository"
)

// cartRepository implements repository.CartRepository for SQLite.
// Multi-statement operations run inside a single transaction and issue every
// statement on that transaction; the pool holds one connection.
type cartRepository struct {
	db *DB
}

// NewCartRepository creates a new SQLite cart repository.
func NewCartRepository(db *DB) repository.CartRepository {
	return &cartRepository{db: db}
}

// Create inserts the cart and its items.
func (r *cartRepository) Create(ctx context.Context, cart *domain.Cart) error {
	return r.db.WithTx(ctx, func(tx *sql.Tx) error {
		result, err := tx.ExecContext(ctx,
			`INSERT INTO carts (user_id, total_amount, created_at) VALUES (?, ?, ?)`,
			cart.UserID, cart.TotalAmount, formatTime(cart.CreatedAt),
		)
		if err != nil {
			if isForeignKeyViolation(err) {
				return domain.NewNotFoundError(domain.EntityUser, cart.UserID)
			}
			return fmt.Errorf("failed to create cart: %w", err)
		}

		id, err := result.LastInsertId()
		if err != nil {
			return fmt.Errorf("failed to get last insert ID: %w", err)
		}
		cart.ID = id

		return insertItems(ctx, tx, cart)
	})
}

// GetByIDForOwner retrieves a cart with its items.
func (r *cartRepository) GetByIDForOwner(ctx context.Context, id, ownerID int64) (*domain.Cart, error) {
	var cart *domain.Cart
	err := r.db.WithTx(ctx, func(tx *sql.Tx) error {
		var err error
		cart, err = getCart(ctx, tx, id, ownerID)
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

	err := r.db.WithTx(ctx, func(tx *sql.Tx) error {
		if err := tx.QueryRowContext(ctx, `SELECT COUNT(*) FROM carts WHERE user_id = ?`, ownerID).Scan(&result.Total); err != nil {
			return fmt.Errorf("failed to count carts: %w", err)
		}

		rows, err := tx.QueryContext(ctx, `
			SELECT id, user_id, total_amount, created_at
			FROM carts
			WHERE user_id = ?
			ORDER BY id
			LIMIT ? OFFSET ?
		`, ownerID, opts.Limit, opts.Offset)
		if err != nil {
			return fmt.Errorf("failed to list carts: %w", err)
		}

		for rows.Next() {
			cart, err := scanCart(rows)
			if err != nil {
				rows.Close()
				return fmt.Errorf("failed to scan cart: %w", err)
			}
			result.Items = append(result.Items, cart)
		}
		if err := rows.Err(); err != nil {
			rows.Close()
			return fmt.Errorf("failed to iterate carts: %w", err)
		}
		rows.Close()

		for _, cart := range result.Items {
			if cart.Items, err = loadItems(ctx, tx, cart.ID); err != nil {
				return err
			}
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return result, nil
}

// ReplaceItems swaps the cart's item set and stores the new total.
func (r *cartRepository) ReplaceItems(ctx context.Context, cart *domain.Cart) error {
	return r.db.WithTx(ctx, func(tx *sql.Tx) error {
		result, err := tx.ExecContext(ctx,
			`UPDATE carts SET total_amount = ? WHERE id = ? AND user_id = ?`,
			cart.TotalAmount, cart.ID, cart.UserID,
		)
		if err != nil {
			return fmt.Errorf("failed to update cart: %w", err)
		}
		rowsAffected, _ := result.RowsAffected()
		if rowsAffected == 0 {
			return domain.NewNotFoundError(domain.EntityCart, cart.ID)
		}

		if _, err := tx.ExecContext(ctx, `DELETE FROM cart_items WHERE cart_id = ?`, cart.ID); err != nil {
			return fmt.Errorf("failed to delete cart items: %w", err)
		}

		return insertItems(ctx, tx, cart)
	})
}

// DeleteForOwner removes the cart and returns its last state.
func (r *cartRepository) DeleteForOwner(ctx context.Context, id, ownerID int64) (*domain.Cart, error) {
	var cart *domain.Cart
	err := r.db.WithTx(ctx, func(tx *sql.Tx) error {
		var err error
		cart, err = getCart(ctx, tx, id, ownerID)
		if err != nil {
			return err
		}

		if _, err := tx.ExecContext(ctx, `DELETE FROM cart_items WHERE cart_id = ?`, id); err != nil {
			return fmt.Errorf("failed to delete cart items: %w", err)
		}
		if _, err := tx.ExecContext(ctx, `DELETE FROM carts WHERE id = ? AND user_id = ?`, id, ownerID); err != nil {
			return fmt.Errorf("failed to delete cart: %w", err)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return cart, nil
}

func getCart(ctx context.Context, q querier, id, ownerID int64) (*domain.Cart, error) {
	row := q.QueryRowContext(ctx,
		`SELECT id, user_id, total_amount, created_at FROM carts WHERE id = ? AND user_id = ?`,
		id, ownerID,
	)
	cart, err := scanCart(row)
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

func insertItems(ctx context.Context, q querier, cart *domain.Cart) error {
	for i := range cart.Items {
		item := &cart.Items[i]
		result, err := q.ExecContext(ctx,
			`INSERT INTO cart_items (cart_id, product_id, quantity, subtotal) VALUES (?, ?, ?, ?)`,
			cart.ID, item.ProductID, item.Quantity, item.Subtotal,
		)
		if err != nil {
			return fmt.Errorf("failed to insert cart item: %w", err)
		}
		id, err := result.LastInsertId()
		if err != nil {
			return fmt.Errorf("failed to get last insert ID: %w", err)
		}
		item.ID = id
		item.CartID = cart.ID
	}
	return nil
}

// loadItems reads a cart's items with a summary of each referenced product.
// Items whose product has since been deleted keep a nil summary.
func loadItems(ctx context.Context, q querier, cartID int64) ([]domain.CartItem, error) {
	rows, err := q.QueryContext(ctx, `
		SELECT ci.id, ci.cart_id, ci.product_id, ci.quantity, ci.subtotal,
			p.id, p.title, p.brand, p.price, p.discount_percentage, p.thumbnail
		FROM cart_items ci
		LEFT JOIN products p ON p.id = ci.product_id
		WHERE ci.cart_id = ?
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
			productID           sql.NullInt64
			title, brand, thumb sql.NullString
			price, discount     sql.NullFloat64
		)
		if err := rows.Scan(
			&item.ID, &item.CartID, &item.ProductID, &item.Quantity, &item.Subtotal,
			&productID, &title, &brand, &price, &discount, &thumb,
		); err != nil {
			return nil, fmt.Errorf("failed to scan cart item: %w", err)
		}
		if productID.Valid {
			item.Product = &domain.ProductSummary{
				ID:                 productID.Int64,
				Title:              title.String,
				Brand:              brand.String,
				Price:              price.Float64,
				DiscountPercentage: discount.Float64,
				Thumbnail:          thumb.String,
			}
		}
		items = append(items, item)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate cart items: %w", err)
	}
	return items, nil
}

func scanCart(row rowScanner) (*domain.Cart, error) {
	cart := &domain.Cart{}
	var createdAt string
	if err := row.Scan(&cart.ID, &cart.UserID, &cart.TotalAmount, &createdAt); err != nil {
		return nil, err
	}
	cart.CreatedAt = parseTime(createdAt)
	return cart, nil
}
