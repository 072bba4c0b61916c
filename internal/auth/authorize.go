package auth

import (
	"github.com/spec-kit/ticketing-api/internal/domain"
	apperrors "github.com/spec-kit/ticketing-api/pkg/util"
)

// Authorize is the single authorization predicate applied per operation:
// the caller's role must be in the allowed set, and when the caller is not
// an admin the resource's owning-user id must equal the caller's id. A nil
// owner (reference nulled after user deletion, or no ownership proof
// available) denies non-admins. message is the resource-specific Forbidden
// text surfaced on the ownership failure.
func Authorize(callerRole domain.Role, callerID string, owner *string, message string, allowed ...domain.Role) error {
	permitted := false
	for _, role := range allowed {
		if role == callerRole {
			permitted = true
			break
		}
	}
	if !permitted {
		return apperrors.NewForbidden("insufficient role")
	}
	if callerRole == domain.RoleAdmin {
		return nil
	}
	if owner == nil || *owner != callerID {
		return apperrors.NewForbidden(message)
	}
	return nil
}

// AuthorizeRole applies only the role gate, for operations without
// ownership semantics.
func AuthorizeRole(callerRole domain.Role, allowed ...domain.Role) error {
	for _, role := range allowed {
		if role == callerRole {
			return nil
		}
	}
	return apperrors.NewForbidden("insufficient role")
}
