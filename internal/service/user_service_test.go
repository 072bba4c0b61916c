package service_test

import (
	"context"
	"testing"

	"github.com/jackc/pgx/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"github.com/spec-kit/ticketing-api/internal/auth"
	"github.com/spec-kit/ticketing-api/internal/domain"
	"github.com/spec-kit/ticketing-api/internal/service"
	apperrors "github.com/spec-kit/ticketing-api/pkg/util"
)

func TestUserCreateDefaultsRole(t *testing.T) {
	users := new(mockUserRepo)
	users.On("GetByEmail", mock.Anything, "bob@example.com").Return(nil, pgx.ErrNoRows)
	users.On("Create", mock.Anything, mock.AnythingOfType("*domain.User")).Return(nil)

	svc := service.NewUserService(testConfig(), users)
	user, err := svc.Create(context.Background(), service.UserCreateInput{
		GivenName:  "Bob",
		FamilyName: "Durand",
		Email:      "bob@example.com",
		Password:   "pw",
	})

	require.NoError(t, err)
	assert.Equal(t, domain.RoleUser, user.Role)
}

func TestUserCreateRejectsUnknownRole(t *testing.T) {
	users := new(mockUserRepo)
	users.On("GetByEmail", mock.Anything, "bob@example.com").Return(nil, pgx.ErrNoRows)

	svc := service.NewUserService(testConfig(), users)
	_, err := svc.Create(context.Background(), service.UserCreateInput{
		Email:    "bob@example.com",
		Password: "pw",
		Role:     domain.Role("superuser"),
	})

	require.Error(t, err)
	assert.Equal(t, 400, apperrors.ToDomainError(err).HTTPStatus)
	users.AssertNotCalled(t, "Create", mock.Anything, mock.Anything)
}

func TestUserGetMissingIsNotFound(t *testing.T) {
	users := new(mockUserRepo)
	users.On("GetByID", mock.Anything, "ghost").Return(nil, pgx.ErrNoRows)

	svc := service.NewUserService(testConfig(), users)
	_, err := svc.Get(context.Background(), "ghost")

	require.Error(t, err)
	assert.Equal(t, 404, apperrors.ToDomainError(err).HTTPStatus)
}

func TestUserUpdateRehashesPasswordAndKeepsOtherFields(t *testing.T) {
	stored := &domain.User{
		ID:           "user-1",
		GivenName:    "Bob",
		FamilyName:   "Durand",
		Email:        "bob@example.com",
		PasswordHash: "old-hash",
		Role:         domain.RoleUser,
	}
	users := new(mockUserRepo)
	users.On("GetByID", mock.Anything, "user-1").Return(stored, nil)
	users.On("Update", mock.Anything, mock.AnythingOfType("*domain.User")).Return(nil)

	newPassword := "NewSecret2!"
	svc := service.NewUserService(testConfig(), users)
	updated, err := svc.Update(context.Background(), "user-1", service.UserUpdateInput{Password: &newPassword})

	require.NoError(t, err)
	assert.Equal(t, "Bob", updated.GivenName)
	assert.NotEqual(t, "old-hash", updated.PasswordHash)
	assert.NotEqual(t, newPassword, updated.PasswordHash)
	assert.NoError(t, auth.ComparePassword(updated.PasswordHash, newPassword))
}

func TestChangeRoleValidatesRole(t *testing.T) {
	users := new(mockUserRepo)

	svc := service.NewUserService(testConfig(), users)
	_, err := svc.ChangeRole(context.Background(), "user-1", domain.Role("root"))

	require.Error(t, err)
	assert.Equal(t, 400, apperrors.ToDomainError(err).HTTPStatus)
	users.AssertNotCalled(t, "Update", mock.Anything, mock.Anything)
}

func TestChangeRolePromotesUser(t *testing.T) {
	stored := &domain.User{ID: "user-1", Role: domain.RoleUser}
	users := new(mockUserRepo)
	users.On("GetByID", mock.Anything, "user-1").Return(stored, nil)
	users.On("Update", mock.Anything, mock.MatchedBy(func(u *domain.User) bool {
		return u.Role == domain.RoleAdmin
	})).Return(nil)

	svc := service.NewUserService(testConfig(), users)
	updated, err := svc.ChangeRole(context.Background(), "user-1", domain.RoleAdmin)

	require.NoError(t, err)
	assert.Equal(t, domain.RoleAdmin, updated.Role)
	users.AssertExpectations(t)
}

func TestUserRemoveMissingIsNotFound(t *testing.T) {
	users := new(mockUserRepo)
	users.On("Delete", mock.Anything, "ghost").Return(pgx.ErrNoRows)

	svc := service.NewUserService(testConfig(), users)
	err := svc.Remove(context.Background(), "ghost")

	require.Error(t, err)
	assert.Equal(t, 404, apperrors.ToDomainError(err).HTTPStatus)
}
