package service

import (
	"context"
	"errors"
	"fmt"
	"net/mail"
	"strings"
	"time"

	"github.com/rs/zerolog"

	"github.com/prn-tf/storefront/internal/domain"
	"github.com/prn-tf/storefront/internal/pkg/crypto"
	"github.com/prn-tf/storefront/internal/repository"
)

// UserService handles user management operations.
type UserService struct {
	userRepo  repository.UserRepository
	hasher    *crypto.PasswordHasher
	paginator Paginator
	logger    zerolog.Logger
}

// NewUserService creates a new UserService.
func NewUserService(userRepo repository.UserRepository, hasher *crypto.PasswordHasher, paginator Paginator, logger zerolog.Logger) *UserService {
	return &UserService{
		userRepo:  userRepo,
		hasher:    hasher,
		paginator: paginator,
		logger:    logger.With().Str("service", "user").Logger(),
	}
}

// CreateUserInput contains the data needed to create a new user.
type CreateUserInput struct {
	Username string
	Email    string
	FullName string
	Password string

	// Role defaults to domain.RoleUser.
	Role domain.Role

	// IsActive defaults to true.
	IsActive *bool
}

// Create creates a new user account.
func (s *UserService) Create(ctx context.Context, input CreateUserInput) (*domain.User, error) {
	input.Username = strings.TrimSpace(input.Username)
	input.Email = strings.TrimSpace(input.Email)
	if input.Role == "" {
		input.Role = domain.RoleUser
	}

	if err := validateCreateInput(input); err != nil {
		return nil, err
	}
	if err := s.ensureUnique(ctx, input.Username, input.Email); err != nil {
		return nil, err
	}

	passwordHash, err := s.hashPassword(input.Password)
	if err != nil {
		return nil, err
	}

	user := domain.NewUser(input.Username, input.Email, strings.TrimSpace(input.FullName), passwordHash)
	user.Role = input.Role
	if input.IsActive != nil {
		user.IsActive = *input.IsActive
	}

	if err := s.userRepo.Create(ctx, user); err != nil {
		if errors.Is(err, domain.ErrAlreadyExists) {
			return nil, err
		}
		s.logger.Error().Err(err).Str("username", input.Username).Msg("failed to create user")
		return nil, fmt.Errorf("%w: %v", ErrInternalError, err)
	}

	s.logger.Info().
		Int64("user_id", user.ID).
		Str("username", user.Username).
		Str("role", string(user.Role)).
		Msg("user created")

	return user, nil
}

// GetByID retrieves a user by ID.
func (s *UserService) GetByID(ctx context.Context, id int64) (*domain.User, error) {
	user, err := s.userRepo.GetByID(ctx, id)
	if err != nil {
		if domain.IsNotFound(err, "") {
			return nil, err
		}
		s.logger.Error().Err(err).Int64("user_id", id).Msg("failed to get user")
		return nil, fmt.Errorf("%w: %v", ErrInternalError, err)
	}
	return user, nil
}

// ListUsersInput contains parameters for listing users.
type ListUsersInput struct {
	Page   int
	Limit  int
	Search string
	Role   domain.Role
}

// ListOutput is one page of a list operation.
type ListOutput[T any] struct {
	Items []T
	Total int64
	Page  Page
}

// List retrieves a page of users, optionally filtered by search text and role.
func (s *UserService) List(ctx context.Context, input ListUsersInput) (*ListOutput[*domain.User], error) {
	if input.Role != "" && !input.Role.Valid() {
		return nil, domain.NewValidationError("role", "must be one of: user, admin")
	}

	page := s.paginator.Normalize(input.Page, input.Limit)
	opts := page.Options(strings.TrimSpace(input.Search))
	opts.Role = input.Role

	result, err := s.userRepo.List(ctx, opts)
	if err != nil {
		s.logger.Error().Err(err).Msg("failed to list users")
		return nil, fmt.Errorf("%w: %v", ErrInternalError, err)
	}

	return &ListOutput[*domain.User]{Items: result.Items, Total: result.Total, Page: page}, nil
}

// ProfileUpdate holds the fields a user may change on their own account.
// Nil fields are left unchanged.
type ProfileUpdate struct {
	FullName *string
	Username *string
	Email    *string
	Password *string
}

// UpdateUserInput holds the fields an administrator may change.
type UpdateUserInput struct {
	ProfileUpdate
	Role     *domain.Role
	IsActive *bool
}

// Update applies an administrative update to a user.
func (s *UserService) Update(ctx context.Context, id int64, input UpdateUserInput) (*domain.User, error) {
	user, err := s.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}

	if err := s.applyProfile(ctx, user, input.ProfileUpdate); err != nil {
		return nil, err
	}
	if input.Role != nil {
		if !input.Role.Valid() {
			return nil, domain.NewValidationError("role", "must be one of: user, admin")
		}
		user.Role = *input.Role
	}
	if input.IsActive != nil {
		user.IsActive = *input.IsActive
	}

	return s.save(ctx, user)
}

// UpdateProfile applies a self-service update. Role and activation cannot be changed here.
func (s *UserService) UpdateProfile(ctx context.Context, id int64, input ProfileUpdate) (*domain.User, error) {
	return s.Update(ctx, id, UpdateUserInput{ProfileUpdate: input})
}

// Delete removes a user. Their carts are removed with them.
func (s *UserService) Delete(ctx context.Context, id int64) error {
	if err := s.userRepo.Delete(ctx, id); err != nil {
		if domain.IsNotFound(err, "") {
			return err
		}
		s.logger.Error().Err(err).Int64("user_id", id).Msg("failed to delete user")
		return fmt.Errorf("%w: %v", ErrInternalError, err)
	}

	s.logger.Info().Int64("user_id", id).Msg("user deleted")
	return nil
}

// applyProfile copies the allow-listed profile fields onto user.
func (s *UserService) applyProfile(ctx context.Context, user *domain.User, input ProfileUpdate) error {
	var newUsername, newEmail string

	if input.Username != nil {
		username := strings.TrimSpace(*input.Username)
		if err := validateUsername(username); err != nil {
			return err
		}
		if username != user.Username {
			newUsername = username
		}
	}
	if input.Email != nil {
		email := strings.TrimSpace(*input.Email)
		if err := validateEmail(email); err != nil {
			return err
		}
		if email != user.Email {
			newEmail = email
		}
	}
	if input.Password != nil {
		if err := validatePassword(*input.Password); err != nil {
			return err
		}
	}

	if err := s.ensureUnique(ctx, newUsername, newEmail); err != nil {
		return err
	}

	if input.Password != nil {
		passwordHash, err := s.hashPassword(*input.Password)
		if err != nil {
			return err
		}
		user.PasswordHash = passwordHash
	}
	if newUsername != "" {
		user.Username = newUsername
	}
	if newEmail != "" {
		user.Email = newEmail
	}
	if input.FullName != nil {
		user.FullName = strings.TrimSpace(*input.FullName)
	}
	return nil
}

func (s *UserService) save(ctx context.Context, user *domain.User) (*domain.User, error) {
	user.UpdatedAt = time.Now().UTC()
	if err := s.userRepo.Update(ctx, user); err != nil {
		if domain.IsNotFound(err, "") || errors.Is(err, domain.ErrAlreadyExists) {
			return nil, err
		}
		s.logger.Error().Err(err).Int64("user_id", user.ID).Msg("failed to update user")
		return nil, fmt.Errorf("%w: %v", ErrInternalError, err)
	}

	s.logger.Info().Int64("user_id", user.ID).Msg("user updated")
	return user, nil
}

// ensureUnique checks the username and email, skipping empty values.
func (s *UserService) ensureUnique(ctx context.Context, username, email string) error {
	if username != "" {
		exists, err := s.userRepo.ExistsByUsername(ctx, username)
		if err != nil {
			s.logger.Error().Err(err).Str("username", username).Msg("failed to check username existence")
			return fmt.Errorf("%w: %v", ErrInternalError, err)
		}
		if exists {
			return fmt.Errorf("%w: username '%s'", domain.ErrAlreadyExists, username)
		}
	}

	if email != "" {
		exists, err := s.userRepo.ExistsByEmail(ctx, email)
		if err != nil {
			s.logger.Error().Err(err).Str("email", email).Msg("failed to check email existence")
			return fmt.Errorf("%w: %v", ErrInternalError, err)
		}
		if exists {
			return fmt.Errorf("%w: email '%s'", domain.ErrAlreadyExists, email)
		}
	}
	return nil
}

func (s *UserService) hashPassword(password string) (string, error) {
	digest, err := s.hasher.Hash(password)
	if err != nil {
		if errors.Is(err, crypto.ErrPasswordTooLong) {
			return "", domain.NewValidationError("password", "must be at most 72 bytes")
		}
		s.logger.Error().Err(err).Msg("failed to hash password")
		return "", fmt.Errorf("%w: failed to hash password", ErrInternalError)
	}
	return digest, nil
}

// validateCreateInput validates the input for creating a user.
func validateCreateInput(input CreateUserInput) error {
	if err := validateUsername(input.Username); err != nil {
		return err
	}
	if err := validateEmail(input.Email); err != nil {
		return err
	}
	if err := validatePassword(input.Password); err != nil {
		return err
	}
	if !input.Role.Valid() {
		return domain.NewValidationError("role", "must be one of: user, admin")
	}
	return nil
}

func validateUsername(username string) error {
	if len(username) < 3 || len(username) > 255 {
		return errInvalidUsername
	}
	return nil
}

func validateEmail(email string) error {
	addr, err := mail.ParseAddress(email)
	if err != nil || addr.Address != email {
		return errInvalidEmail
	}
	return nil
}

func validatePassword(password string) error {
	if len(password) < 8 {
		return errInvalidPassword
	}
	return nil
}
