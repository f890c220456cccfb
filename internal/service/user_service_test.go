package service

import (
	"context"
	"errors"
	"strings"
	"testing"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"github.com/prn-tf/storefront/internal/domain"
	"github.com/prn-tf/storefront/internal/pkg/crypto"
	"github.com/prn-tf/storefront/internal/repository"
)

const testBcryptCost = 4

func newTestUserService(repo *mockUserRepository) *UserService {
	return NewUserService(repo, crypto.NewPasswordHasher(testBcryptCost), testPaginator, zerolog.Nop())
}

func ptr[T any](v T) *T { return &v }

func TestUserService_Create(t *testing.T) {
	tests := []struct {
		name    string
		input   CreateUserInput
		setup   func(*mockUserRepository)
		wantErr error
	}{
		{
			name:  "valid user",
			input: CreateUserInput{Username: "alice", Email: "alice@example.com", FullName: "Alice", Password: "s3cret-pass"},
			setup: func(m *mockUserRepository) {
				m.On("ExistsByUsername", mock.Anything, "alice").Return(false, nil)
				m.On("ExistsByEmail", mock.Anything, "alice@example.com").Return(false, nil)
				m.On("Create", mock.Anything, mock.AnythingOfType("*domain.User")).Return(nil)
			},
		},
		{
			name:    "short username",
			input:   CreateUserInput{Username: "al", Email: "alice@example.com", Password: "s3cret-pass"},
			wantErr: domain.ErrValidation,
		},
		{
			name:    "invalid email",
			input:   CreateUserInput{Username: "alice", Email: "not-an-email", Password: "s3cret-pass"},
			wantErr: domain.ErrValidation,
		},
		{
			name:    "display-name email",
			input:   CreateUserInput{Username: "alice", Email: "Alice <alice@example.com>", Password: "s3cret-pass"},
			wantErr: domain.ErrValidation,
		},
		{
			name:    "short password",
			input:   CreateUserInput{Username: "alice", Email: "alice@example.com", Password: "short"},
			wantErr: domain.ErrValidation,
		},
		{
			name:    "unknown role",
			input:   CreateUserInput{Username: "alice", Email: "alice@example.com", Password: "s3cret-pass", Role: "root"},
			wantErr: domain.ErrValidation,
		},
		{
			name:  "password too long for bcrypt",
			input: CreateUserInput{Username: "alice", Email: "alice@example.com", Password: strings.Repeat("x", 80)},
			setup: func(m *mockUserRepository) {
				m.On("ExistsByUsername", mock.Anything, "alice").Return(false, nil)
				m.On("ExistsByEmail", mock.Anything, "alice@example.com").Return(false, nil)
			},
			wantErr: domain.ErrValidation,
		},
		{
			name:  "duplicate username",
			input: CreateUserInput{Username: "alice", Email: "alice@example.com", Password: "s3cret-pass"},
			setup: func(m *mockUserRepository) {
				m.On("ExistsByUsername", mock.Anything, "alice").Return(true, nil)
			},
			wantErr: domain.ErrAlreadyExists,
		},
		{
			name:  "duplicate email",
			input: CreateUserInput{Username: "alice", Email: "alice@example.com", Password: "s3cret-pass"},
			setup: func(m *mockUserRepository) {
				m.On("ExistsByUsername", mock.Anything, "alice").Return(false, nil)
				m.On("ExistsByEmail", mock.Anything, "alice@example.com").Return(true, nil)
			},
			wantErr: domain.ErrAlreadyExists,
		},
		{
			name:  "repository failure",
			input: CreateUserInput{Username: "alice", Email: "alice@example.com", Password: "s3cret-pass"},
			setup: func(m *mockUserRepository) {
				m.On("ExistsByUsername", mock.Anything, "alice").Return(false, errors.New("connection reset"))
			},
			wantErr: ErrInternalError,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			repo := new(mockUserRepository)
			if tt.setup != nil {
				tt.setup(repo)
			}

			user, err := newTestUserService(repo).Create(context.Background(), tt.input)
			if tt.wantErr != nil {
				require.ErrorIs(t, err, tt.wantErr)
				repo.AssertNotCalled(t, "Create", mock.Anything, mock.Anything)
				return
			}

			require.NoError(t, err)
			require.Equal(t, domain.RoleUser, user.Role)
			require.True(t, user.IsActive)
			require.NotEqual(t, tt.input.Password, user.PasswordHash)
			require.True(t, crypto.VerifyPassword(tt.input.Password, user.PasswordHash))
			repo.AssertExpectations(t)
		})
	}
}

func TestUserService_Update_AllowList(t *testing.T) {
	ctx := context.Background()
	repo := new(mockUserRepository)
	existing := &domain.User{ID: 5, Username: "alice", Email: "alice@example.com", FullName: "Alice", Role: domain.RoleUser, IsActive: true, PasswordHash: "old"}

	repo.On("GetByID", mock.Anything, int64(5)).Return(existing, nil)
	repo.On("ExistsByUsername", mock.Anything, "alice2").Return(false, nil)
	repo.On("Update", mock.Anything, existing).Return(nil)

	svc := newTestUserService(repo)

	user, err := svc.UpdateProfile(ctx, 5, ProfileUpdate{Username: ptr("alice2"), FullName: ptr("Alice Doe")})
	require.NoError(t, err)
	require.Equal(t, "alice2", user.Username)
	require.Equal(t, "Alice Doe", user.FullName)
	require.Equal(t, "alice@example.com", user.Email)
	require.Equal(t, "old", user.PasswordHash)
	require.Equal(t, domain.RoleUser, user.Role)

	user, err = svc.Update(ctx, 5, UpdateUserInput{Role: ptr(domain.RoleAdmin), IsActive: ptr(false)})
	require.NoError(t, err)
	require.Equal(t, domain.RoleAdmin, user.Role)
	require.False(t, user.IsActive)
}

func TestUserService_Update_Password(t *testing.T) {
	repo := new(mockUserRepository)
	existing := &domain.User{ID: 5, Username: "alice", Email: "alice@example.com", PasswordHash: "old"}
	repo.On("GetByID", mock.Anything, int64(5)).Return(existing, nil)
	repo.On("Update", mock.Anything, existing).Return(nil)

	user, err := newTestUserService(repo).UpdateProfile(context.Background(), 5, ProfileUpdate{Password: ptr("new-password")})
	require.NoError(t, err)
	require.True(t, crypto.VerifyPassword("new-password", user.PasswordHash))
}

func TestUserService_Update_Rejected(t *testing.T) {
	tests := []struct {
		name    string
		input   UpdateUserInput
		setup   func(*mockUserRepository)
		wantErr error
	}{
		{
			name:    "invalid role",
			input:   UpdateUserInput{Role: ptr(domain.Role("owner"))},
			wantErr: domain.ErrValidation,
		},
		{
			name:    "invalid email",
			input:   UpdateUserInput{ProfileUpdate: ProfileUpdate{Email: ptr("nope")}},
			wantErr: domain.ErrValidation,
		},
		{
			name:  "email taken",
			input: UpdateUserInput{ProfileUpdate: ProfileUpdate{Email: ptr("bob@example.com")}},
			setup: func(m *mockUserRepository) {
				m.On("ExistsByEmail", mock.Anything, "bob@example.com").Return(true, nil)
			},
			wantErr: domain.ErrAlreadyExists,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			repo := new(mockUserRepository)
			repo.On("GetByID", mock.Anything, int64(5)).
				Return(&domain.User{ID: 5, Username: "alice", Email: "alice@example.com", Role: domain.RoleUser}, nil)
			if tt.setup != nil {
				tt.setup(repo)
			}

			_, err := newTestUserService(repo).Update(context.Background(), 5, tt.input)
			require.ErrorIs(t, err, tt.wantErr)
			repo.AssertNotCalled(t, "Update", mock.Anything, mock.Anything)
		})
	}
}

func TestUserService_Update_UnchangedUsernameSkipsUniquenessCheck(t *testing.T) {
	repo := new(mockUserRepository)
	existing := &domain.User{ID: 5, Username: "alice", Email: "alice@example.com"}
	repo.On("GetByID", mock.Anything, int64(5)).Return(existing, nil)
	repo.On("Update", mock.Anything, existing).Return(nil)

	_, err := newTestUserService(repo).UpdateProfile(context.Background(), 5, ProfileUpdate{Username: ptr("alice")})
	require.NoError(t, err)
	repo.AssertNotCalled(t, "ExistsByUsername", mock.Anything, mock.Anything)
}

func TestUserService_GetAndDelete_NotFound(t *testing.T) {
	repo := new(mockUserRepository)
	repo.On("GetByID", mock.Anything, int64(9)).Return(nil, domain.NewNotFoundError(domain.EntityUser, 9))
	repo.On("Delete", mock.Anything, int64(9)).Return(domain.NewNotFoundError(domain.EntityUser, 9))

	svc := newTestUserService(repo)

	_, err := svc.GetByID(context.Background(), 9)
	require.True(t, domain.IsNotFound(err, domain.EntityUser))

	err = svc.Delete(context.Background(), 9)
	require.True(t, domain.IsNotFound(err, domain.EntityUser))
}

func TestUserService_List(t *testing.T) {
	repo := new(mockUserRepository)
	repo.On("List", mock.Anything, repository.ListOptions{Limit: 100, Offset: 100, Search: "ali", Role: domain.RoleAdmin}).
		Return(&repository.ListResult[*domain.User]{Items: []*domain.User{{ID: 1}}, Total: 101}, nil)

	svc := newTestUserService(repo)

	out, err := svc.List(context.Background(), ListUsersInput{Page: 2, Limit: 500, Search: "  ali ", Role: domain.RoleAdmin})
	require.NoError(t, err)
	require.Equal(t, int64(101), out.Total)
	require.Equal(t, Page{Page: 2, Limit: 100}, out.Page)

	_, err = svc.List(context.Background(), ListUsersInput{Role: "superuser"})
	require.ErrorIs(t, err, domain.ErrValidation)
}
