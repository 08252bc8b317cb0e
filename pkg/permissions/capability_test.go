package permissions

import (
	"net/http"
	"testing"

	"github.com/Gobusters/ectoerror/httperror"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Ramsey-B/sage/pkg/models"
)

func TestForRole(t *testing.T) {
	t.Run("master mutates directly and resolves requests", func(t *testing.T) {
		cap := ForRole(models.RoleMaster, Config{ManagerApprovalRequired: true})

		assert.True(t, cap.DirectMutate)
		assert.False(t, cap.RequiresApproval)
		assert.False(t, cap.ManagerScoped)
		assert.True(t, cap.ResolveRequests)
		assert.True(t, cap.CanMutate())
	})

	t.Run("manager routes through approval when policy requires it", func(t *testing.T) {
		cap := ForRole(models.RoleManager, Config{ManagerApprovalRequired: true})

		assert.False(t, cap.DirectMutate)
		assert.True(t, cap.RequiresApproval)
		assert.True(t, cap.ManagerScoped)
		assert.False(t, cap.ResolveRequests)
		assert.True(t, cap.CanMutate())
	})

	t.Run("manager mutates directly when policy allows it", func(t *testing.T) {
		cap := ForRole(models.RoleManager, Config{ManagerApprovalRequired: false})

		assert.True(t, cap.DirectMutate)
		assert.False(t, cap.RequiresApproval)
		assert.True(t, cap.ManagerScoped)
	})

	t.Run("unknown role can do nothing", func(t *testing.T) {
		cap := ForRole("", Config{})

		assert.False(t, cap.CanMutate())
		assert.False(t, cap.ResolveRequests)
		assert.False(t, cap.ManagerScoped)
	})
}

func TestCapability_RequireSellerScope(t *testing.T) {
	t.Run("should pass any seller for an unscoped capability", func(t *testing.T) {
		cap := Capability{ManagerScoped: false}
		assert.NoError(t, cap.RequireSellerScope("s1", nil))
	})

	t.Run("should pass a managed seller", func(t *testing.T) {
		cap := Capability{ManagerScoped: true}
		assert.NoError(t, cap.RequireSellerScope("s2", []string{"s1", "s2"}))
	})

	t.Run("should reject an unmanaged seller with 403", func(t *testing.T) {
		cap := Capability{ManagerScoped: true}
		err := cap.RequireSellerScope("s3", []string{"s1", "s2"})

		require.Error(t, err)
		assert.Equal(t, http.StatusForbidden, httperror.GetStatusCode(err))
	})

	t.Run("should reject when the manager owns no sellers", func(t *testing.T) {
		cap := Capability{ManagerScoped: true}
		err := cap.RequireSellerScope("s1", nil)

		require.Error(t, err)
		assert.Equal(t, http.StatusForbidden, httperror.GetStatusCode(err))
	})
}
