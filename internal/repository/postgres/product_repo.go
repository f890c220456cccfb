package postgres

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5"

	"github.com/prn-tf/storefront/internal/domain"
	"github.com/prn-tf/storefront/internal/repository"
)

// productRepository implements repository.ProductRepository for PostgreSQL.
type productRepository struct {
	db *DB
}

// NewProductRepository creates a new PostgreSQL product repository.
func NewProductRepository(db *DB) repository.ProductRepository {
	return &productRepository{db: db}
}

const productColumns = `id, title, description, price, discount_percentage, rating, stock, brand,
	thumbnail, images, is_published, category_id, created_at`

// Create creates a new product.
func (r *productRepository) Create(ctx context.Context, product *domain.Product) error {
	query := `
		INSERT INTO products (title, description, price, discount_percentage, rating, stock, brand,
			thumbnail, images, is_published, category_id, created_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12)
		RETURNING id
	`

	err := r.db.Pool.QueryRow(ctx, query,
		product.Title,
		product.Description,
		product.Price,
		product.DiscountPercentage,
		product.Rating,
		product.Stock,
		product.Brand,
		product.Thumbnail,
		nonNilImages(product.Images),
		product.IsPublished,
		product.CategoryID,
		product.CreatedAt,
	).Scan(&product.ID)
	if err != nil {
		if isForeignKeyViolation(err) {
			return domain.NewNotFoundError(domain.EntityCategory, product.CategoryID)
		}
		return fmt.Errorf("failed to create product: %w", err)
	}
	return nil
}

// GetByID retrieves a product by ID.
func (r *productRepository) GetByID(ctx context.Context, id int64) (*domain.Product, error) {
	product, err := scanProduct(r.db.Pool.QueryRow(ctx, `SELECT `+productColumns+` FROM products WHERE id = $1`, id))
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
	var p placeholders
	where := ""
	if opts.Search != "" {
		pattern := p.add(likePattern(opts.Search))
		where = fmt.Sprintf("WHERE title ILIKE %[1]s OR brand ILIKE %[1]s OR description ILIKE %[1]s", pattern)
	}

	var total int64
	if err := r.db.Pool.QueryRow(ctx, `SELECT COUNT(*) FROM products `+where, p.args...).Scan(&total); err != nil {
		return nil, fmt.Errorf("failed to count products: %w", err)
	}

	query := fmt.Sprintf(`SELECT %s FROM products %s ORDER BY id LIMIT %s OFFSET %s`,
		productColumns, where, p.add(opts.Limit), p.add(opts.Offset))

	rows, err := r.db.Pool.Query(ctx, query, p.args...)
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
	query := `
		UPDATE products
		SET title = $1, description = $2, price = $3, discount_percentage = $4, rating = $5, stock = $6,
			brand = $7, thumbnail = $8, images = $9, is_published = $10, category_id = $11
		WHERE id = $12
	`

	result, err := r.db.Pool.Exec(ctx, query,
		product.Title,
		product.Description,
		product.Price,
		product.DiscountPercentage,
		product.Rating,
		product.Stock,
		product.Brand,
		product.Thumbnail,
		nonNilImages(product.Images),
		product.IsPublished,
		product.CategoryID,
		product.ID,
	)
	if err != nil {
		if isForeignKeyViolation(err) {
			return domain.NewNotFoundError(domain.EntityCategory, product.CategoryID)
		}
		return fmt.Errorf("failed to update product: %w", err)
	}
	if result.RowsAffected() == 0 {
		return domain.NewNotFoundError(domain.EntityProduct, product.ID)
	}
	return nil
}

// Delete deletes a product by ID.
func (r *productRepository) Delete(ctx context.Context, id int64) error {
	result, err := r.db.Pool.Exec(ctx, `DELETE FROM products WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("failed to delete product: %w", err)
	}
	if result.RowsAffected() == 0 {
		return domain.NewNotFoundError(domain.EntityProduct, id)
	}
	return nil
}

func scanProduct(row pgx.Row) (*domain.Product, error) {
	product := &domain.Product{}
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
		&product.Images,
		&product.IsPublished,
		&product.CategoryID,
		&product.CreatedAt,
	)
	if err != nil {
		return nil, err
	}
	product.Images = nonNilImages(product.Images)
	return product, nil
}

func nonNilImages(images []string) []string {
	if images == nil {
		return []string{}
	}
	return images
}
