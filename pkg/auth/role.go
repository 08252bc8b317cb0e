// Package auth carries the caller's role through the request context and maps
// identity-provider role claims onto dashboard roles.
package auth

import (
	"context"
	"strings"

	"github.com/Ramsey-B/sage/pkg/models"
)

type roleKey struct{}

// Role claim values recognized from the identity provider.
const (
	claimMaster  = "sage-master"
	claimManager = "sage-manager"
)

// SetRole stores the caller's role on the context
func SetRole(ctx context.Context, role models.Role) context.Context {
	return context.WithValue(ctx, roleKey{}, role)
}

// GetRole returns the caller's role, or empty when unauthenticated
func GetRole(ctx context.Context) models.Role {
	if role, ok := ctx.Value(roleKey{}).(models.Role); ok {
		return role
	}
	return ""
}

// RoleFromClaims maps identity-provider role claims onto a dashboard role.
// Master wins when a user carries both.
func RoleFromClaims(roles []string) models.Role {
	var role models.Role
	for _, r := range roles {
		switch r {
		case claimMaster:
			return models.RoleMaster
		case claimManager:
			role = models.RoleManager
		}
	}
	return role
}

// ParseRole resolves a single role string, accepting both dashboard roles
// ("MASTER", case-insensitive) and identity-provider claims ("sage-master").
// Unknown values resolve to empty.
func ParseRole(s string) models.Role {
	switch models.Role(strings.ToUpper(s)) {
	case models.RoleMaster:
		return models.RoleMaster
	case models.RoleManager:
		return models.RoleManager
	}
	return RoleFromClaims([]string{s})
}
