package postgres

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/jackc/pgx/v5"

	"github.com/prn-tf/storefront/internal/domain"
	"github.com/prn-tf/storefront/internal/repository"
)

// userRepository implements repository.UserRepository for PostgreSQL.
type userRepository struct {
	db *DB
}

// NewUserRepository creates a new PostgreSQL user repository.
func NewUserRepository(db *DB) repository.UserRepository {
	return &userRepository{db: db}
}

const userColumns = `id, username, email, full_name, password_hash, role, is_active, created_at, updated_at`

// Create creates a new user.
func (r *userRepository) Create(ctx context.Context, user *domain.User) error {
	query := `
		INSERT INTO users (username, email, full_name, password_hash, role, is_active, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
		RETURNING id
	`

	err := r.db.Pool.QueryRow(ctx, query,
		user.Username,
		user.Email,
		user.FullName,
		user.PasswordHash,
		string(user.Role),
		user.IsActive,
		user.CreatedAt,
		user.UpdatedAt,
	).Scan(&user.ID)

	if err != nil {
		if isUniqueViolation(err) {
			return fmt.Errorf("%w: username or email already exists", domain.ErrAlreadyExists)
		}
		return fmt.Errorf("failed to create user: %w", err)
	}

	return nil
}

// GetByID retrieves a user by ID.
func (r *userRepository) GetByID(ctx context.Context, id int64) (*domain.User, error) {
	return r.getOne(ctx, `WHERE id = $1`, id)
}

// GetByUsername retrieves a user by username.
func (r *userRepository) GetByUsername(ctx context.Context, username string) (*domain.User, error) {
	return r.getOne(ctx, `WHERE username = $1`, username)
}

// GetByEmail retrieves a user by email.
func (r *userRepository) GetByEmail(ctx context.Context, email string) (*domain.User, error) {
	return r.getOne(ctx, `WHERE email = $1`, email)
}

func (r *userRepository) getOne(ctx context.Context, where string, arg any) (*domain.User, error) {
	user, err := scanUser(r.db.Pool.QueryRow(ctx, `SELECT `+userColumns+` FROM users `+where, arg))
	if err != nil {
		if isNoRows(err) {
			return nil, domain.NewNotFoundError(domain.EntityUser, arg)
		}
		return nil, fmt.Errorf("failed to get user: %w", err)
	}
	return user, nil
}

// List returns users matching the search and role filters.
func (r *userRepository) List(ctx context.Context, opts repository.ListOptions) (*repository.ListResult[*domain.User], error) {
	var p placeholders
	var conditions []string

	if opts.Search != "" {
		pattern := p.add(likePattern(opts.Search))
		conditions = append(conditions, fmt.Sprintf("(username ILIKE %[1]s OR email ILIKE %[1]s OR full_name ILIKE %[1]s)", pattern))
	}
	if opts.Role != "" {
		conditions = append(conditions, "role = "+p.add(string(opts.Role)))
	}

	where := ""
	if len(conditions) > 0 {
		where = "WHERE " + strings.Join(conditions, " AND ")
	}

	var total int64
	if err := r.db.Pool.QueryRow(ctx, `SELECT COUNT(*) FROM users `+where, p.args...).Scan(&total); err != nil {
		return nil, fmt.Errorf("failed to count users: %w", err)
	}

	query := fmt.Sprintf(`SELECT %s FROM users %s ORDER BY id LIMIT %s OFFSET %s`,
		userColumns, where, p.add(opts.Limit), p.add(opts.Offset))

	rows, err := r.db.Pool.Query(ctx, query, p.args...)
	if err != nil {
		return nil, fmt.Errorf("failed to list users: %w", err)
	}
	defer rows.Close()

	users := make([]*domain.User, 0)
	for rows.Next() {
		user, err := scanUser(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan user: %w", err)
		}
		users = append(users, user)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate users: %w", err)
	}

	return &repository.ListResult[*domain.User]{Items: users, Total: total}, nil
}

// Update updates an existing user.
func (r *userRepository) Update(ctx context.Context, user *domain.User) error {
	user.UpdatedAt = time.Now().UTC()

	query := `
		UPDATE users
		SET username = $1, email = $2, full_name = $3, password_hash = $4, role = $5, is_active = $6, updated_at = $7
		WHERE id = $8
	`

	result, err := r.db.Pool.Exec(ctx, query,
		user.Username,
		user.Email,
		user.FullName,
		user.PasswordHash,
		string(user.Role),
		user.IsActive,
		user.UpdatedAt,
		user.ID,
	)
	if err != nil {
		if isUniqueViolation(err) {
			return fmt.Errorf("%w: username or email already exists", domain.ErrAlreadyExists)
		}
		return fmt.Errorf("failed to update user: %w", err)
	}

	if result.RowsAffected() == 0 {
		return domain.NewNotFoundError(domain.EntityUser, user.ID)
	}
	return nil
}

// Delete deletes a user by ID.
func (r *userRepository) Delete(ctx context.Context, id int64) error {
	result, err := r.db.Pool.Exec(ctx, `DELETE FROM users WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("failed to delete user: %w", err)
	}

	if result.RowsAffected() == 0 {
		return domain.NewNotFoundError(domain.EntityUser, id)
	}
	return nil
}

// ExistsByUsername checks if a username is already taken.
func (r *userRepository) ExistsByUsername(ctx context.Context, username string) (bool, error) {
	var exists bool
	err := r.db.Pool.QueryRow(ctx, `SELECT EXISTS(SELECT 1 FROM users WHERE username = $1)`, username).Scan(&exists)
	if err != nil {
		return false, fmt.Errorf("failed to check username existence: %w", err)
	}
	return exists, nil
}

// ExistsByEmail checks if an email is already registered.
func (r *userRepository) ExistsByEmail(ctx context.Context, email string) (bool, error) {
	var exists bool
	err := r.db.Pool.QueryRow(ctx, `SELECT EXISTS(SELECT 1 FROM users WHERE email = $1)`, email).Scan(&exists)
	if err != nil {
		return false, fmt.Errorf("failed to check email existence: %w", err)
	}
	return exists, nil
}

func scanUser(row pgx.Row) (*domain.User, error) {
	user := &domain.User{}
	var role string

	err := row.Scan(
		&user.ID,
		&user.Username,
		&user.Email,
		&user.FullName,
		&user.PasswordHash,
		&role,
		&user.IsActive,
		&user.CreatedAt,
		&user.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}

	user.Role = domain.Role(role)
	return user, nil
}
