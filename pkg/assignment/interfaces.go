package assignment

import (
	"context"

	"github.com/Ramsey-B/sage/pkg/models"
	"github.com/Ramsey-B/sage/pkg/status"
)

// RelationshipRepo defines the relationship persistence the service needs
type RelationshipRepo interface {
	Get(ctx context.Context, tenantID, id string) (*models.Relationship, error)
	FindProtector(ctx context.Context, tenantID, accountID string) (string, error)
	Create(ctx context.Context, tenantID string, req models.CreateRelationshipRequest) (*models.Relationship, error)
	UpdateStatus(ctx context.Context, tenantID, id string, to status.Status) (*models.Relationship, error)
	Delete(ctx context.Context, tenantID, id string) error
}

// OriginalRepo defines the import-snapshot reads the service needs
type OriginalRepo interface {
	IsOriginalOnly(ctx context.Context, tenantID, sellerID, accountID string) (bool, error)
}

// RequestRepo defines the approval request persistence the service needs
type RequestRepo interface {
	Create(ctx context.Context, req models.Request) (*models.Request, error)
	Resolve(ctx context.Context, tenantID, id, resolution, resolvedBy string) (*models.Request, error)
	MarkApplyFailed(ctx context.Context, tenantID, id, reason string) (*models.Request, error)
}

// SellerRepo defines the seller reads the service needs
type SellerRepo interface {
	Get(ctx context.Context, tenantID, id string) (*models.Seller, error)
	ListIDsByManager(ctx context.Context, tenantID, managerID string) ([]string, error)
	SetFinalized(ctx context.Context, tenantID, id string, finalized bool) error
}

// ManagerRepo defines the manager reads the service needs
type ManagerRepo interface {
	GetByUser(ctx context.Context, tenantID, userID string) (*models.Manager, error)
}

// Auditor records mutations on the audit trail, best-effort
type Auditor interface {
	Record(ctx context.Context, tenantID, userID, action, entity, entityID string, before, after any)
}

// EventSink publishes book lifecycle events
type EventSink interface {
	EmitRelationshipCreated(ctx context.Context, actorID string, rel *models.Relationship) error
	EmitStatusChanged(ctx context.Context, actorID string, rel *models.Relationship, from, to string) error
	EmitRelationshipRemoved(ctx context.Context, actorID string, rel *models.Relationship) error
	EmitBookFinalized(ctx context.Context, tenantID, sellerID, actorID string, finalized bool) error
	EmitRequestResolved(ctx context.Context, req *models.Request) error
}

// Cache holds the ephemeral board state the service refreshes on mutation
type Cache interface {
	MarkRecentlyMoved(ctx context.Context, tenantID, relationshipID string)
	InvalidateSellerKPIs(ctx context.Context, tenantID string, sellerIDs ...string)
}
