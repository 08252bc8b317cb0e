// Package permissions maps a role onto the capability set consulted once per
// operation, instead of branching on the role at every call site.
package permissions

import (
	"net/http"

	"github.com/Gobusters/ectoerror/httperror"

	"github.com/Ramsey-B/sage/pkg/models"
)

// Capability is what a role is allowed to do with relationships.
type Capability struct {
	// DirectMutate allows applying status changes without an approval hop.
	DirectMutate bool
	// RequiresApproval routes status changes through a pending Request.
	RequiresApproval bool
	// ManagerScoped restricts operations to sellers owned by the caller's
	// manager record.
	ManagerScoped bool
	// ResolveRequests allows approving and rejecting pending requests.
	ResolveRequests bool
}

// Config holds the deployment-level workflow policy.
type Config struct {
	// ManagerApprovalRequired routes all manager-initiated status changes
	// through the approval workflow. Applied uniformly; there is no
	// per-endpoint override.
	ManagerApprovalRequired bool
}

// ForRole returns the capability set for a role.
func ForRole(role models.Role, cfg Config) Capability {
	switch role {
	case models.RoleMaster:
		return Capability{
			DirectMutate:    true,
			ResolveRequests: true,
		}
	case models.RoleManager:
		return Capability{
			DirectMutate:     !cfg.ManagerApprovalRequired,
			RequiresApproval: cfg.ManagerApprovalRequired,
			ManagerScoped:    true,
		}
	}
	return Capability{}
}

// CanMutate reports whether the role may initiate a status change at all,
// directly or via approval.
func (c Capability) CanMutate() bool {
	return c.DirectMutate || c.RequiresApproval
}

// RequireSellerScope rejects the operation when the capability is
// manager-scoped and the target seller is not one of the caller's.
func (c Capability) RequireSellerScope(sellerID string, managedSellerIDs []string) error {
	if !c.ManagerScoped {
		return nil
	}
	for _, id := range managedSellerIDs {
		if id == sellerID {
			return nil
		}
	}
	return httperror.NewHTTPError(http.StatusForbidden, "seller is not managed by the requesting user")
}
