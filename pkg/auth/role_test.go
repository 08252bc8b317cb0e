package auth

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/Ramsey-B/sage/pkg/models"
)

func TestRoleContext(t *testing.T) {
	t.Run("should round-trip a role through the context", func(t *testing.T) {
		ctx := SetRole(context.Background(), models.RoleManager)
		assert.Equal(t, models.RoleManager, GetRole(ctx))
	})

	t.Run("should return empty for an unauthenticated context", func(t *testing.T) {
		assert.Equal(t, models.Role(""), GetRole(context.Background()))
	})
}

func TestRoleFromClaims(t *testing.T) {
	t.Run("should map claims onto dashboard roles", func(t *testing.T) {
		assert.Equal(t, models.RoleMaster, RoleFromClaims([]string{"sage-master"}))
		assert.Equal(t, models.RoleManager, RoleFromClaims([]string{"sage-manager"}))
	})

	t.Run("should let master win over manager", func(t *testing.T) {
		assert.Equal(t, models.RoleMaster, RoleFromClaims([]string{"sage-manager", "sage-master"}))
	})

	t.Run("should ignore unrelated claims", func(t *testing.T) {
		assert.Equal(t, models.Role(""), RoleFromClaims([]string{"offline_access", "uma_authorization"}))
		assert.Equal(t, models.Role(""), RoleFromClaims(nil))
	})
}

func TestParseRole(t *testing.T) {
	t.Run("should accept dashboard roles in any case", func(t *testing.T) {
		assert.Equal(t, models.RoleMaster, ParseRole("MASTER"))
		assert.Equal(t, models.RoleMaster, ParseRole("master"))
		assert.Equal(t, models.RoleManager, ParseRole("Manager"))
	})

	t.Run("should accept identity-provider claims", func(t *testing.T) {
		assert.Equal(t, models.RoleMaster, ParseRole("sage-master"))
		assert.Equal(t, models.RoleManager, ParseRole("sage-manager"))
	})

	t.Run("should return empty for unknown values", func(t *testing.T) {
		assert.Equal(t, models.Role(""), ParseRole("intern"))
		assert.Equal(t, models.Role(""), ParseRole(""))
	})
}
