package identity

import (
	"context"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/gridledger/billing/internal/domain/identity"
	"github.com/gridledger/billing/internal/domain/shared"
	"github.com/gridledger/billing/internal/infrastructure/auth"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

func newUserService(repo *MockUserRepository, blacklist auth.TokenBlacklist) *UserService {
	return NewUserService(repo, NewAccessGuard(zap.NewNop(), nil), blacklist, time.Hour, zap.NewNop())
}

func TestUserService_Create(t *testing.T) {
	admin := actorWith(identity.RoleAdmin)

	t.Run("admin creates user", func(t *testing.T) {
		repo := new(MockUserRepository)
		repo.On("ExistsByUsername", mock.Anything, "field.tech").Return(false, nil)
		repo.On("Save", mock.Anything, mock.AnythingOfType("*identity.User")).Return(nil)

		svc := newUserService(repo, auth.NewInMemoryTokenBlacklist())
		resp, err := svc.Create(context.Background(), admin, CreateUserRequest{
			Username: "field.tech",
			Password: testPassword,
			Email:    "tech@grid.example",
			Role:     "electrical",
		})

		require.NoError(t, err)
		assert.Equal(t, identity.RoleElectrical, resp.Role)
		assert.Equal(t, "tech@grid.example", resp.Email)
		repo.AssertExpectations(t)
	})

	t.Run("finance cannot manage users", func(t *testing.T) {
		repo := new(MockUserRepository)
		svc := newUserService(repo, auth.NewInMemoryTokenBlacklist())

		_, err := svc.Create(context.Background(), actorWith(identity.RoleFinance), CreateUserRequest{
			Username: "x.user", Password: testPassword, Role: "FINANCE",
		})

		assert.ErrorIs(t, err, shared.ErrPermissionDenied)
		repo.AssertNotCalled(t, "Save", mock.Anything, mock.Anything)
	})

	t.Run("duplicate username", func(t *testing.T) {
		repo := new(MockUserRepository)
		repo.On("ExistsByUsername", mock.Anything, "taken").Return(true, nil)
		svc := newUserService(repo, auth.NewInMemoryTokenBlacklist())

		_, err := svc.Create(context.Background(), admin, CreateUserRequest{
			Username: "taken", Password: testPassword, Role: "ADMIN",
		})
		assert.ErrorIs(t, err, shared.ErrAlreadyExists)
	})

	t.Run("unknown role", func(t *testing.T) {
		svc := newUserService(new(MockUserRepository), auth.NewInMemoryTokenBlacklist())
		_, err := svc.Create(context.Background(), admin, CreateUserRequest{
			Username: "someone", Password: testPassword, Role: "GUEST",
		})
		assert.ErrorIs(t, err, shared.ErrValidation)
	})
}

func TestUserService_Update_RoleChangeRevokesSessions(t *testing.T) {
	repo := new(MockUserRepository)
	user := createTestUser(t, identity.RoleElectrical)
	repo.On("FindByID", mock.Anything, user.ID).Return(user, nil)
	repo.On("Save", mock.Anything, user).Return(nil)
	blacklist := auth.NewInMemoryTokenBlacklist()
	svc := newUserService(repo, blacklist)
	ctx := context.Background()

	issuedBefore := time.Now().Add(-time.Minute)
	role := "FINANCE"
	resp, err := svc.Update(ctx, actorWith(identity.RoleAdmin), user.ID, UpdateUserRequest{Role: &role})

	require.NoError(t, err)
	assert.Equal(t, identity.RoleFinance, resp.Role)
	revoked, err := blacklist.IsUserRevoked(ctx, user.ID.String(), issuedBefore)
	require.NoError(t, err)
	assert.True(t, revoked)
}

func TestUserService_Update_ContactOnlyKeepsSessions(t *testing.T) {
	repo := new(MockUserRepository)
	user := createTestUser(t, identity.RoleElectrical)
	repo.On("FindByID", mock.Anything, user.ID).Return(user, nil)
	repo.On("Save", mock.Anything, user).Return(nil)
	blacklist := auth.NewInMemoryTokenBlacklist()
	svc := newUserService(repo, blacklist)
	ctx := context.Background()

	phone := "5550100"
	_, err := svc.Update(ctx, actorWith(identity.RoleAdmin), user.ID, UpdateUserRequest{Phone: &phone})

	require.NoError(t, err)
	revoked, err := blacklist.IsUserRevoked(ctx, user.ID.String(), time.Now().Add(-time.Minute))
	require.NoError(t, err)
	assert.False(t, revoked)
}

func TestUserService_Delete(t *testing.T) {
	admin := actorWith(identity.RoleAdmin)

	t.Run("deletes and revokes", func(t *testing.T) {
		repo := new(MockUserRepository)
		target := uuid.New()
		repo.On("Delete", mock.Anything, target).Return(nil)
		blacklist := auth.NewInMemoryTokenBlacklist()
		svc := newUserService(repo, blacklist)

		require.NoError(t, svc.Delete(context.Background(), admin, target))

		revoked, err := blacklist.IsUserRevoked(context.Background(), target.String(), time.Now().Add(-time.Second))
		require.NoError(t, err)
		assert.True(t, revoked)
	})

	t.Run("cannot delete self", func(t *testing.T) {
		repo := new(MockUserRepository)
		svc := newUserService(repo, auth.NewInMemoryTokenBlacklist())

		err := svc.Delete(context.Background(), admin, admin.UserID)
		assert.ErrorIs(t, err, shared.ErrInvariantViolation)
		repo.AssertNotCalled(t, "Delete", mock.Anything, mock.Anything)
	})

	t.Run("missing user", func(t *testing.T) {
		repo := new(MockUserRepository)
		target := uuid.New()
		repo.On("Delete", mock.Anything, target).Return(shared.NewNotFoundError("user"))
		svc := newUserService(repo, auth.NewInMemoryTokenBlacklist())

		assert.ErrorIs(t, svc.Delete(context.Background(), admin, target), shared.ErrNotFound)
	})
}

func TestUserService_List(t *testing.T) {
	repo := new(MockUserRepository)
	user := createTestUser(t, identity.RoleFinance)
	repo.On("FindAll", mock.Anything, mock.MatchedBy(func(f shared.Filter) bool {
		return f.Filters["role"] == "FINANCE" && f.Page == 2
	})).Return([]identity.User{*user}, nil)
	repo.On("Count", mock.Anything, mock.Anything).Return(int64(21), nil)
	svc := newUserService(repo, auth.NewInMemoryTokenBlacklist())

	users, total, err := svc.List(context.Background(), actorWith(identity.RoleAdmin), UserListFilter{Role: "FINANCE", Page: 2})

	require.NoError(t, err)
	assert.Len(t, users, 1)
	assert.Equal(t, int64(21), total)
}
