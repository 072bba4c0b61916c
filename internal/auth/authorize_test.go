package auth

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/spec-kit/ticketing-api/internal/domain"
	apperrors "github.com/spec-kit/ticketing-api/pkg/util"
)

func strPtr(s string) *string { return &s }

func TestAuthorize(t *testing.T) {
	tests := []struct {
		name       string
		callerRole domain.Role
		callerID   string
		owner      *string
		allowed    []domain.Role
		wantErr    bool
	}{
		{
			name:       "admin bypasses ownership",
			callerRole: domain.RoleAdmin,
			callerID:   "admin-1",
			owner:      strPtr("someone-else"),
			allowed:    []domain.Role{domain.RoleAdmin, domain.RoleUser},
		},
		{
			name:       "owner allowed",
			callerRole: domain.RoleUser,
			callerID:   "user-1",
			owner:      strPtr("user-1"),
			allowed:    []domain.Role{domain.RoleAdmin, domain.RoleUser},
		},
		{
			name:       "non-owner denied",
			callerRole: domain.RoleUser,
			callerID:   "user-1",
			owner:      strPtr("user-2"),
			allowed:    []domain.Role{domain.RoleAdmin, domain.RoleUser},
			wantErr:    true,
		},
		{
			name:       "nil owner denies non-admin",
			callerRole: domain.RoleUser,
			callerID:   "user-1",
			owner:      nil,
			allowed:    []domain.Role{domain.RoleAdmin, domain.RoleUser},
			wantErr:    true,
		},
		{
			name:       "role outside allowed set denied even for owner",
			callerRole: domain.RoleUser,
			callerID:   "user-1",
			owner:      strPtr("user-1"),
			allowed:    []domain.Role{domain.RoleAdmin},
			wantErr:    true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := Authorize(tt.callerRole, tt.callerID, tt.owner, "denied", tt.allowed...)
			if tt.wantErr {
				assert.Error(t, err)
				assert.Equal(t, 403, apperrors.ToDomainError(err).HTTPStatus)
			} else {
				assert.NoError(t, err)
			}
		})
	}
}

func TestAuthorizeOwnershipMessage(t *testing.T) {
	err := Authorize(domain.RoleUser, "user-1", strPtr("user-2"),
		"you can only view your own tickets", domain.RoleAdmin, domain.RoleUser)
	assert.EqualError(t, err, "you can only view your own tickets")
}

func TestAuthorizeRole(t *testing.T) {
	assert.NoError(t, AuthorizeRole(domain.RoleAdmin, domain.RoleAdmin))
	assert.NoError(t, AuthorizeRole(domain.RoleUser, domain.RoleAdmin, domain.RoleUser))
	assert.Error(t, AuthorizeRole(domain.RoleUser, domain.RoleAdmin))
}
