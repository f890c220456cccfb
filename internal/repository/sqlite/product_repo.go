package sqlite

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/prn-tf/storefront/internal/domain"
	"github.com/prn-tf/storefront/internal/repository"
)

// productRepository implements repository.ProductRepository for SQLite.
type productRepository struct {
	db *DB
}

// NewProductRepository creates a new SQLite product repository.
func NewProductRepository(db *DB) repository.ProductRepository {
	return &productRepository{db: db}
}

const productColumns = `id, title, description, price, discount_percentage, rating, stock, brand,
	thumbnail, images, is_published, category_id, created_at`

// Create creates a new product.
func (r *productRepository) Create(ctx context.Context, product *domain.Product) error {
	images, err := encodeImages(product.Images)
	if err != nil {
		return err
	}

	query := `
		INSERT INTO products (title, description, price, discount_percentage, rating, stock, brand,
			thumbnail, images, is_published, category_id, created_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
	`

	result, err := r.db.ExecContext(ctx, query,
		product.Title,
		product.Description,
		product.Price,
		product.DiscountPercentage,
		product.Rating,
		product.Stock,
		product.Brand,
		product.Thumbnail,
		images,
		boolToInt(product.IsPublished),
		product.CategoryID,
		formatTime(product.CreatedAt),
	)
	if err != nil {
		if isForeignKeyViolation(err) {
			return domain.NewNotFoundError(domain.EntityCategory, product.CategoryID)
		}
		return fmt.Errorf("failed to create product: %w", err)
	}

	id, err := result.LastInsertId()
	if err != nil {
		return fmt.Errorf("failed to get last insert ID: %w", err)
	}
	product.ID = id

	return nil
}

// GetByID retrieves a product by ID.
func (r *productRepository) GetByID(ctx context.Context, id int64) (*domain.Product, error) {
	query := `SELECT ` + productColumns + ` FROM products WHERE id = ?`

	product, err := scanProduct(r.db.QueryRowContext(ctx, query, id))
	if err != nil {
		if isNoRows(err) {
			return nil, domain.NewNotFoundError(domain.EntityProduct, id)
		}
		return nil, fmt.Errorf("failed to get product: %w", err)
	}
	return product, nil
}

// List returns products matching the search term.
func (r *productRepository) List(ctx context.Context, opts repository.ListOptions) (*repository.ListResult[*domain.Product], error) {
	where := ""
	var args []any
	if opts.Search != "" {
		pattern := likePattern(opts.Search)
		where = `WHERE title LIKE ? ESCAPE '\' OR brand LIKE ? ESCAPE '\' OR description LIKE ? ESCAPE '\'`
		args = append(args, pattern, pattern, pattern)
	}

	var total int64
	if err := r.db.QueryRowContext(ctx, `SELECT COUNT(*) FROM products `+where, args...).Scan(&total); err != nil {
		return nil, fmt.Errorf("failed to count products: %w", err)
	}

	query := `SELECT ` + productColumns + ` FROM products ` + where + ` ORDER BY id LIMIT ? OFFSET ?`
	rows, err := r.db.QueryContext(ctx, query, append(args, opts.Limit, opts.Offset)...)
	if err != nil {
		return nil, fmt.Errorf("failed to list products: %w", err)
	}
	defer rows.Close()

	products := make([]*domain.Product, 0)
	for rows.Next() {
		product, err := scanProduct(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan product: %w", err)
		}
		products = append(products, product)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate products: %w", err)
	}

	return &repository.ListResult[*domain.Product]{Items: products, Total: total}, nil
}

// Update updates an existing product.
func (r *productRepository) Update(ctx context.Context, product *domain.Product) error {
	images, err := encodeImages(product.Images)
	if err != nil {
		return err
	}

	query := `
		UPDATE products
		SET title = ?, description = ?, price = ?, discount_percentage = ?, rating = ?, stock = ?,
			brand = ?, thumbnail = ?, images = ?, is_published = ?, category_id = ?
		WHERE id = ?
	`

	result, err := r.db.ExecContext(ctx, query,
		product.Title,
		product.Description,
		product.Price,
		product.DiscountPercentage,
		product.Rating,
		product.Stock,
		product.Brand,
		product.Thumbnail,
		images,
		boolToInt(product.IsPublished),
		product.CategoryID,
		product.ID,
	)
	if err != nil {
		if isForeignKeyViolation(err) {
			return domain.NewNotFoundError(domain.EntityCategory, product.CategoryID)
		}
		return fmt.Errorf("failed to update product: %w", err)
	}

	rowsAffected, _ := result.RowsAffected()
	if rowsAffected == 0 {
		return domain.NewNotFoundError(domain.EntityProduct, product.ID)
	}
	return nil
}

// Delete deletes a product by ID.
func (r *productRepository) Delete(ctx context.Context, id int64) error {
	result, err := r.db.ExecContext(ctx, `DELETE FROM products WHERE id = ?`, id)
	if err != nil {
		return fmt.Errorf("failed to delete product: %w", err)
	}

	rowsAffected, _ := result.RowsAffected()
	if rowsAffected == 0 {
		return domain.NewNotFoundError(domain.EntityProduct, id)
	}
	return nil
}

func scanProduct(row rowScanner) (*domain.Product, error) {
	product := &domain.Product{}
	var images string
	var isPublished int
	var createdAt string

	err := row.Scan(
		&product.ID,
		&product.Title,
		&product.Description,
		&product.Price,
		&product.DiscountPercentage,
		&product.Rating,
		&product.Stock,
		&product.Brand,
		&product.Thumbnail,
		&images,
		&isPublished,
		&product.CategoryID,
		&createdAt,
	)
	if err != nil {
		return nil, err
	}

	product.Images = []string{}
	if images != "" {
		if err := json.Unmarshal([]byte(images), &product.Images); err != nil {
			return nil, fmt.Errorf("failed to decode product images: %w", err)
		}
	}
	product.IsPublished = isPublished != 0
	product.CreatedAt = parseTime(createdAt)

	return product, nil
}

func encodeImages(images []string) (string, error) {
	if images == nil {
		images = []string{}
	}
	b, err := json.Marshal(images)
	if err != nil {
		return "", fmt.Errorf("failed to encode product images: %w", err)
	}
	return string(b), nil
}
