package postgres

import (
	"context"
	"fmt"

	"github.com/prn-tf/storefront/internal/domain"
	"github.com/prn-tf/storefront/internal/repository"
)

// categoryRepository implements repository.CategoryRepository for PostgreSQL.
type categoryRepository struct {
	db *DB
}

// NewCategoryRepository creates a new PostgreSQL category repository.
func NewCategoryRepository(db *DB) repository.CategoryRepository {
	return &categoryRepository{db: db}
}

// Create creates a new category.
func (r *categoryRepository) Create(ctx context.Context, category *domain.Category) error {
	err := r.db.Pool.QueryRow(ctx, `INSERT INTO categories (name) VALUES ($1) RETURNING id`, category.Name).Scan(&category.ID)
	if err != nil {
		if isUniqueViolation(err) {
			return fmt.Errorf("%w: category %q", domain.ErrAlreadyExists, category.Name)
		}
		return fmt.Errorf("failed to create category: %w", err)
	}
	return nil
}

// GetByID retrieves a category by ID.
func (r *categoryRepository) GetByID(ctx context.Context, id int64) (*domain.Category, error) {
	category := &domain.Category{}
	err := r.db.Pool.QueryRow(ctx, `SELECT id, name FROM categories WHERE id = $1`, id).Scan(&category.ID, &category.Name)
	if err != nil {
		if isNoRows(err) {
			return nil, domain.NewNotFoundError(domain.EntityCategory, id)
		}
		return nil, fmt.Errorf("failed to get category: %w", err)
	}
	return category, nil
}

// List returns categories whose name contains the search term.
func (r *categoryRepository) List(ctx context.Context, opts repository.ListOptions) (*repository.ListResult[*domain.Category], error) {
	var p placeholders
	where := ""
	if opts.Search != "" {
		where = "WHERE name ILIKE " + p.add(likePattern(opts.Search))
	}

	var total int64
	if err := r.db.Pool.QueryRow(ctx, `SELECT COUNT(*) FROM categories `+where, p.args...).Scan(&total); err != nil {
		return nil, fmt.Errorf("failed to count categories: %w", err)
	}

	query := fmt.Sprintf(`SELECT id, name FROM categories %s ORDER BY id LIMIT %s OFFSET %s`,
		where, p.add(opts.Limit), p.add(opts.Offset))

	rows, err := r.db.Pool.Query(ctx, query, p.args...)
	if err != nil {
		return nil, fmt.Errorf("failed to list categories: %w", err)
	}
	defer rows.Close()

	categories := make([]*domain.Category, 0)
	for rows.Next() {
		category := &domain.Category{}
		if err := rows.Scan(&category.ID, &category.Name); err != nil {
			return nil, fmt.Errorf("failed to scan category: %w", err)
		}
		categories = append(categories, category)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate categories: %w", err)
	}

	return &repository.ListResult[*domain.Category]{Items: categories, Total: total}, nil
}

// Update updates an existing category.
func (r *categoryRepository) Update(ctx context.Context, category *domain.Category) error {
	result, err := r.db.Pool.Exec(ctx, `UPDATE categories SET name = $1 WHERE id = $2`, category.Name, category.ID)
	if err != nil {
		if isUniqueViolation(err) {
			return fmt.Errorf("%w: category %q", domain.ErrAlreadyExists, category.Name)
		}
		return fmt.Errorf("failed to update category: %w", err)
	}
	if result.RowsAffected() == 0 {
		return domain.NewNotFoundError(domain.EntityCategory, category.ID)
	}
	return nil
}

// Delete deletes a category by ID.
func (r *categoryRepository) Delete(ctx context.Context, id int64) error {
	result, err := r.db.Pool.Exec(ctx, `DELETE FROM categories WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("failed to delete category: %w", err)
	}
	if result.RowsAffected() == 0 {
		return domain.NewNotFoundError(domain.EntityCategory, id)
	}
	return nil
}
