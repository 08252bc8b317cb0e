package assignment

import (
	"context"
	"net/http"
	"testing"

	"github.com/Gobusters/ectoerror/httperror"
	"github.com/Gobusters/ectologger"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Ramsey-B/sage/pkg/models"
	"github.com/Ramsey-B/sage/pkg/permissions"
	"github.com/Ramsey-B/sage/pkg/status"
)

type fakeRelationships struct {
	byID      map[string]*models.Relationship
	protector string

	created []models.CreateRelationshipRequest
	updated map[string]status.Status
	deleted []string
}

func newFakeRelationships() *fakeRelationships {
	return &fakeRelationships{
		byID:    map[string]*models.Relationship{},
		updated: map[string]status.Status{},
	}
}

func (f *fakeRelationships) Get(ctx context.Context, tenantID, id string) (*models.Relationship, error) {
	rel, ok := f.byID[id]
	if !ok {
		return nil, httperror.NewHTTPErrorf(http.StatusNotFound, "relationship %s not found", id)
	}
	return rel, nil
}

func (f *fakeRelationships) FindProtector(ctx context.Context, tenantID, accountID string) (string, error) {
	return f.protector, nil
}

func (f *fakeRelationships) Create(ctx context.Context, tenantID string, req models.CreateRelationshipRequest) (*models.Relationship, error) {
	f.created = append(f.created, req)
	return &models.Relationship{
		ID:        "rel-new",
		TenantID:  tenantID,
		SellerID:  req.SellerID,
		AccountID: req.AccountID,
		Status:    req.Status,
		PctESG:    req.PctESG,
		PctGDT:    req.PctGDT,
		PctGVC:    req.PctGVC,
		PctMSGUS:  req.PctMSGUS,
	}, nil
}

func (f *fakeRelationships) UpdateStatus(ctx context.Context, tenantID, id string, to status.Status) (*models.Relationship, error) {
	rel, ok := f.byID[id]
	if !ok {
		return nil, httperror.NewHTTPErrorf(http.StatusNotFound, "relationship %s not found", id)
	}
	f.updated[id] = to
	updated := *rel
	updated.Status = to
	return &updated, nil
}

func (f *fakeRelationships) Delete(ctx context.Context, tenantID, id string) error {
	f.deleted = append(f.deleted, id)
	return nil
}

type fakeOriginals struct {
	originalOnly bool
}

func (f *fakeOriginals) IsOriginalOnly(ctx context.Context, tenantID, sellerID, accountID string) (bool, error) {
	return f.originalOnly, nil
}

type fakeRequests struct {
	created  []models.Request
	resolved *models.Request
}

func (f *fakeRequests) Create(ctx context.Context, req models.Request) (*models.Request, error) {
	req.ID = "req-1"
	req.Status = models.RequestStatusPending
	f.created = append(f.created, req)
	return &req, nil
}

func (f *fakeRequests) Resolve(ctx context.Context, tenantID, id, resolution, resolvedBy string) (*models.Request, error) {
	if f.resolved == nil || f.resolved.ID != id {
		return nil, httperror.NewHTTPErrorf(http.StatusNotFound, "no pending request %s", id)
	}
	if f.resolved.Status != models.RequestStatusPending {
		return nil, httperror.NewHTTPErrorf(http.StatusConflict, "request %s is not pending", id)
	}
	f.resolved.Status = resolution
	f.resolved.ResolvedBy = &resolvedBy
	out := *f.resolved
	return &out, nil
}

func (f *fakeRequests) MarkApplyFailed(ctx context.Context, tenantID, id, reason string) (*models.Request, error) {
	if f.resolved == nil || f.resolved.ID != id || f.resolved.Status != models.RequestStatusApproved {
		return nil, httperror.NewHTTPErrorf(http.StatusConflict, "request %s is not approved", id)
	}
	f.resolved.Status = models.RequestStatusRejected
	f.resolved.Reason = &reason
	out := *f.resolved
	return &out, nil
}

type fakeSellers struct {
	sellers   map[string]*models.Seller
	managed   []string
	finalized map[string]bool
}

func newFakeSellers(ids ...string) *fakeSellers {
	f := &fakeSellers{sellers: map[string]*models.Seller{}, finalized: map[string]bool{}}
	for _, id := range ids {
		f.sellers[id] = &models.Seller{ID: id, TenantID: "t1", Name: "Seller " + id}
	}
	return f
}

func (f *fakeSellers) Get(ctx context.Context, tenantID, id string) (*models.Seller, error) {
	seller, ok := f.sellers[id]
	if !ok {
		return nil, httperror.NewHTTPErrorf(http.StatusNotFound, "seller %s not found", id)
	}
	return seller, nil
}

func (f *fakeSellers) ListIDsByManager(ctx context.Context, tenantID, managerID string) ([]string, error) {
	return f.managed, nil
}

func (f *fakeSellers) SetFinalized(ctx context.Context, tenantID, id string, finalized bool) error {
	f.finalized[id] = finalized
	return nil
}

type fakeManagers struct {
	mgr *models.Manager
}

func (f *fakeManagers) GetByUser(ctx context.Context, tenantID, userID string) (*models.Manager, error) {
	return f.mgr, nil
}

type fakeAuditor struct {
	actions []string
}

func (f *fakeAuditor) Record(ctx context.Context, tenantID, userID, action, entity, entityID string, before, after any) {
	f.actions = append(f.actions, action)
}

type fakeEvents struct {
	emitted []string
}

func (f *fakeEvents) EmitRelationshipCreated(ctx context.Context, actorID string, rel *models.Relationship) error {
	f.emitted = append(f.emitted, "relationship.created")
	return nil
}

func (f *fakeEvents) EmitStatusChanged(ctx context.Context, actorID string, rel *models.Relationship, from, to string) error {
	f.emitted = append(f.emitted, "relationship.status_changed")
	return nil
}

func (f *fakeEvents) EmitRelationshipRemoved(ctx context.Context, actorID string, rel *models.Relationship) error {
	f.emitted = append(f.emitted, "relationship.removed")
	return nil
}

func (f *fakeEvents) EmitBookFinalized(ctx context.Context, tenantID, sellerID, actorID string, finalized bool) error {
	f.emitted = append(f.emitted, "seller.book_finalized")
	return nil
}

func (f *fakeEvents) EmitRequestResolved(ctx context.Context, req *models.Request) error {
	f.emitted = append(f.emitted, "request.resolved")
	return nil
}

type fakeCache struct {
	moved       []string
	invalidated []string
}

func (f *fakeCache) MarkRecentlyMoved(ctx context.Context, tenantID, relationshipID string) {
	f.moved = append(f.moved, relationshipID)
}

func (f *fakeCache) InvalidateSellerKPIs(ctx context.Context, tenantID string, sellerIDs ...string) {
	f.invalidated = append(f.invalidated, sellerIDs...)
}

type fixture struct {
	svc           *Service
	relationships *fakeRelationships
	originals     *fakeOriginals
	requests      *fakeRequests
	sellers       *fakeSellers
	managers      *fakeManagers
	auditor       *fakeAuditor
	events        *fakeEvents
	cache         *fakeCache
}

func newFixture(cfg permissions.Config) *fixture {
	f := &fixture{
		relationships: newFakeRelationships(),
		originals:     &fakeOriginals{},
		requests:      &fakeRequests{},
		sellers:       newFakeSellers("s1", "s2"),
		managers:      &fakeManagers{},
		auditor:       &fakeAuditor{},
		events:        &fakeEvents{},
		cache:         &fakeCache{},
	}
	logger := ectologger.NewEctoLogger(func(_ ectologger.EctoLogMessage) {})
	f.svc = NewService(cfg, f.relationships, f.originals, f.requests, f.sellers, f.managers, f.auditor, f.events, f.cache, logger)
	return f
}

var (
	master  = Actor{UserID: "u-master", Role: models.RoleMaster}
	manager = Actor{UserID: "u-manager", Role: models.RoleManager}
)

func TestService_Assign(t *testing.T) {
	ctx := context.Background()

	t.Run("master assigns directly", func(t *testing.T) {
		f := newFixture(permissions.Config{ManagerApprovalRequired: true})

		result, err := f.svc.Assign(ctx, "t1", master, models.CreateRelationshipRequest{
			SellerID:  "s1",
			AccountID: "a1",
			Status:    status.MustKeep,
		})

		require.NoError(t, err)
		require.NotNil(t, result.Relationship)
		assert.Nil(t, result.Request)
		assert.Equal(t, status.MustKeep, result.Relationship.Status)
		assert.Len(t, f.relationships.created, 1)
		assert.Contains(t, f.auditor.actions, "relationship.created")
		assert.Contains(t, f.events.emitted, "relationship.created")
		assert.Contains(t, f.cache.moved, "rel-new")
		assert.Contains(t, f.cache.invalidated, "s1")
	})

	t.Run("manager assign routes through approval", func(t *testing.T) {
		f := newFixture(permissions.Config{ManagerApprovalRequired: true})
		f.managers.mgr = &models.Manager{ID: "m1", UserID: "u-manager"}
		f.sellers.managed = []string{"s1"}

		result, err := f.svc.Assign(ctx, "t1", manager, models.CreateRelationshipRequest{
			SellerID:  "s1",
			AccountID: "a1",
			Status:    status.Pinned, // legacy vocabulary on the wire
		})

		require.NoError(t, err)
		require.NotNil(t, result.Request)
		assert.Nil(t, result.Relationship)
		assert.Empty(t, f.relationships.created)
		assert.Equal(t, models.RequestActionAssign, result.Request.Action)
		assert.Equal(t, status.MustKeep, result.Request.TargetStatus)
		assert.Contains(t, f.auditor.actions, "request.created")
	})

	t.Run("manager assigns directly when approval is not required", func(t *testing.T) {
		f := newFixture(permissions.Config{ManagerApprovalRequired: false})
		f.managers.mgr = &models.Manager{ID: "m1", UserID: "u-manager"}
		f.sellers.managed = []string{"s1"}

		result, err := f.svc.Assign(ctx, "t1", manager, models.CreateRelationshipRequest{
			SellerID:  "s1",
			AccountID: "a1",
			Status:    status.ForDiscussion,
		})

		require.NoError(t, err)
		require.NotNil(t, result.Relationship)
		assert.Nil(t, result.Request)
	})

	t.Run("rejects an unknown role", func(t *testing.T) {
		f := newFixture(permissions.Config{})

		_, err := f.svc.Assign(ctx, "t1", Actor{UserID: "u", Role: "VIEWER"}, models.CreateRelationshipRequest{
			SellerID: "s1", AccountID: "a1", Status: status.MustKeep,
		})

		require.Error(t, err)
		assert.Equal(t, http.StatusForbidden, httperror.GetStatusCode(err))
	})

	t.Run("rejects a manager outside their seller scope", func(t *testing.T) {
		f := newFixture(permissions.Config{ManagerApprovalRequired: true})
		f.managers.mgr = &models.Manager{ID: "m1", UserID: "u-manager"}
		f.sellers.managed = []string{"s2"}

		_, err := f.svc.Assign(ctx, "t1", manager, models.CreateRelationshipRequest{
			SellerID: "s1", AccountID: "a1", Status: status.MustKeep,
		})

		require.Error(t, err)
		assert.Equal(t, http.StatusForbidden, httperror.GetStatusCode(err))
	})

	t.Run("rejects a manager without a profile", func(t *testing.T) {
		f := newFixture(permissions.Config{ManagerApprovalRequired: true})

		_, err := f.svc.Assign(ctx, "t1", manager, models.CreateRelationshipRequest{
			SellerID: "s1", AccountID: "a1", Status: status.MustKeep,
		})

		require.Error(t, err)
		assert.Equal(t, http.StatusForbidden, httperror.GetStatusCode(err))
	})

	t.Run("rejects an unknown status", func(t *testing.T) {
		f := newFixture(permissions.Config{})

		_, err := f.svc.Assign(ctx, "t1", master, models.CreateRelationshipRequest{
			SellerID: "s1", AccountID: "a1", Status: "bogus",
		})

		require.Error(t, err)
		assert.Equal(t, http.StatusBadRequest, httperror.GetStatusCode(err))
	})

	t.Run("rejects an account held by another seller", func(t *testing.T) {
		f := newFixture(permissions.Config{})
		f.relationships.protector = "s2"

		_, err := f.svc.Assign(ctx, "t1", master, models.CreateRelationshipRequest{
			SellerID: "s1", AccountID: "a1", Status: status.MustKeep,
		})

		require.Error(t, err)
		assert.Equal(t, http.StatusConflict, httperror.GetStatusCode(err))
	})

	t.Run("allows the protecting seller itself", func(t *testing.T) {
		f := newFixture(permissions.Config{})
		f.relationships.protector = "s1"

		_, err := f.svc.Assign(ctx, "t1", master, models.CreateRelationshipRequest{
			SellerID: "s1", AccountID: "a1", Status: status.MustKeep,
		})

		assert.NoError(t, err)
	})

	t.Run("warns when division weights do not sum to 100", func(t *testing.T) {
		f := newFixture(permissions.Config{})
		esg, gdt := 30.0, 50.0

		result, err := f.svc.Assign(ctx, "t1", master, models.CreateRelationshipRequest{
			SellerID: "s1", AccountID: "a1", Status: status.MustKeep,
			PctESG: &esg, PctGDT: &gdt,
		})

		require.NoError(t, err)
		require.Len(t, result.Warnings, 1)
		assert.Contains(t, result.Warnings[0], "sum to 80")
		require.NotNil(t, result.Relationship, "warnings are advisory, not blocking")
	})
}

func TestService_Move(t *testing.T) {
	ctx := context.Background()

	seed := func(f *fixture, rel models.Relationship) {
		f.relationships.byID[rel.ID] = &rel
	}

	t.Run("master moves directly", func(t *testing.T) {
		f := newFixture(permissions.Config{ManagerApprovalRequired: true})
		seed(f, models.Relationship{ID: "r1", TenantID: "t1", SellerID: "s1", AccountID: "a1", Status: status.MustKeep})
		f.relationships.protector = "s1"

		result, err := f.svc.Move(ctx, "t1", master, "r1", status.ToBePeeled)

		require.NoError(t, err)
		require.NotNil(t, result.Relationship)
		assert.Equal(t, status.ToBePeeled, result.Relationship.Status)
		assert.Equal(t, status.ToBePeeled, f.relationships.updated["r1"])
		assert.Contains(t, f.auditor.actions, "relationship.status_changed")
		assert.Contains(t, f.events.emitted, "relationship.status_changed")
		assert.Contains(t, f.cache.moved, "r1")
	})

	t.Run("manager move routes through approval with the relationship pinned", func(t *testing.T) {
		f := newFixture(permissions.Config{ManagerApprovalRequired: true})
		seed(f, models.Relationship{ID: "r1", TenantID: "t1", SellerID: "s1", AccountID: "a1", Status: status.MustKeep})
		f.relationships.protector = "s1"
		f.managers.mgr = &models.Manager{ID: "m1", UserID: "u-manager"}
		f.sellers.managed = []string{"s1"}

		result, err := f.svc.Move(ctx, "t1", manager, "r1", status.ForDiscussion)

		require.NoError(t, err)
		require.NotNil(t, result.Request)
		require.NotNil(t, result.Request.RelationshipID)
		assert.Equal(t, "r1", *result.Request.RelationshipID)
		assert.Equal(t, models.RequestActionMove, result.Request.Action)
		assert.Empty(t, f.relationships.updated)
	})

	t.Run("rejects a move to the same status", func(t *testing.T) {
		f := newFixture(permissions.Config{})
		seed(f, models.Relationship{ID: "r1", TenantID: "t1", SellerID: "s1", AccountID: "a1", Status: status.Pinned})
		f.relationships.protector = "s1"

		_, err := f.svc.Move(ctx, "t1", master, "r1", status.MustKeep)

		require.Error(t, err)
		assert.Equal(t, http.StatusBadRequest, httperror.GetStatusCode(err))
	})

	t.Run("rejects moving an original account to available", func(t *testing.T) {
		f := newFixture(permissions.Config{})
		seed(f, models.Relationship{ID: "r1", TenantID: "t1", SellerID: "s1", AccountID: "a1", Status: status.ToBePeeled})
		f.relationships.protector = "s1"
		f.originals.originalOnly = true

		_, err := f.svc.Move(ctx, "t1", master, "r1", status.Available)

		require.Error(t, err)
		assert.Equal(t, http.StatusConflict, httperror.GetStatusCode(err))
	})

	t.Run("returns 404 for a missing relationship", func(t *testing.T) {
		f := newFixture(permissions.Config{})

		_, err := f.svc.Move(ctx, "t1", master, "nope", status.MustKeep)

		require.Error(t, err)
		assert.Equal(t, http.StatusNotFound, httperror.GetStatusCode(err))
	})
}

func TestService_Unassign(t *testing.T) {
	ctx := context.Background()

	t.Run("master unassigns directly", func(t *testing.T) {
		f := newFixture(permissions.Config{ManagerApprovalRequired: true})
		f.relationships.byID["r1"] = &models.Relationship{ID: "r1", TenantID: "t1", SellerID: "s1", AccountID: "a1", Status: status.ToBePeeled}

		result, err := f.svc.Unassign(ctx, "t1", master, "r1")

		require.NoError(t, err)
		assert.Nil(t, result.Request)
		assert.Contains(t, f.relationships.deleted, "r1")
		assert.Contains(t, f.auditor.actions, "relationship.removed")
		assert.Contains(t, f.events.emitted, "relationship.removed")
		assert.Contains(t, f.cache.invalidated, "s1")
	})

	t.Run("rejects unassigning an original account", func(t *testing.T) {
		f := newFixture(permissions.Config{})
		f.relationships.byID["r1"] = &models.Relationship{ID: "r1", TenantID: "t1", SellerID: "s1", AccountID: "a1", Status: status.MustKeep}
		f.originals.originalOnly = true

		_, err := f.svc.Unassign(ctx, "t1", master, "r1")

		require.Error(t, err)
		assert.Equal(t, http.StatusConflict, httperror.GetStatusCode(err))
		assert.Empty(t, f.relationships.deleted)
	})

	t.Run("manager unassign routes through approval", func(t *testing.T) {
		f := newFixture(permissions.Config{ManagerApprovalRequired: true})
		f.relationships.byID["r1"] = &models.Relationship{ID: "r1", TenantID: "t1", SellerID: "s1", AccountID: "a1", Status: status.ToBePeeled}
		f.managers.mgr = &models.Manager{ID: "m1", UserID: "u-manager"}
		f.sellers.managed = []string{"s1"}

		result, err := f.svc.Unassign(ctx, "t1", manager, "r1")

		require.NoError(t, err)
		require.NotNil(t, result.Request)
		assert.Equal(t, models.RequestActionUnassign, result.Request.Action)
		assert.Equal(t, status.Available, result.Request.TargetStatus)
		assert.Empty(t, f.relationships.deleted)
	})
}

func TestService_ResolveRequest(t *testing.T) {
	ctx := context.Background()

	t.Run("manager cannot resolve requests", func(t *testing.T) {
		f := newFixture(permissions.Config{ManagerApprovalRequired: true})

		_, err := f.svc.ResolveRequest(ctx, "t1", manager, "req-1", true)

		require.Error(t, err)
		assert.Equal(t, http.StatusForbidden, httperror.GetStatusCode(err))
	})

	t.Run("approving an assign request creates the relationship", func(t *testing.T) {
		f := newFixture(permissions.Config{})
		f.requests.resolved = &models.Request{
			ID: "req-1", TenantID: "t1", RequestedBy: "u-manager",
			SellerID: "s1", AccountID: "a1",
			Action: models.RequestActionAssign, TargetStatus: status.MustKeep,
			Status: models.RequestStatusPending,
		}

		resolved, err := f.svc.ResolveRequest(ctx, "t1", master, "req-1", true)

		require.NoError(t, err)
		assert.Equal(t, models.RequestStatusApproved, resolved.Status)
		require.Len(t, f.relationships.created, 1)
		assert.Equal(t, "s1", f.relationships.created[0].SellerID)
		assert.Equal(t, status.MustKeep, f.relationships.created[0].Status)
		assert.Contains(t, f.auditor.actions, "request.approved")
		assert.Contains(t, f.events.emitted, "request.resolved")
	})

	t.Run("rejecting leaves the book untouched", func(t *testing.T) {
		f := newFixture(permissions.Config{})
		f.requests.resolved = &models.Request{
			ID: "req-1", TenantID: "t1", SellerID: "s1", AccountID: "a1",
			Action: models.RequestActionAssign, TargetStatus: status.MustKeep,
			Status: models.RequestStatusPending,
		}

		resolved, err := f.svc.ResolveRequest(ctx, "t1", master, "req-1", false)

		require.NoError(t, err)
		assert.Equal(t, models.RequestStatusRejected, resolved.Status)
		assert.Empty(t, f.relationships.created)
		assert.Contains(t, f.auditor.actions, "request.rejected")
	})

	t.Run("approving a move request applies the held transition", func(t *testing.T) {
		relID := "r1"
		f := newFixture(permissions.Config{})
		f.relationships.byID[relID] = &models.Relationship{ID: relID, TenantID: "t1", SellerID: "s1", AccountID: "a1", Status: status.MustKeep}
		f.relationships.protector = "s1"
		f.requests.resolved = &models.Request{
			ID: "req-1", TenantID: "t1", SellerID: "s1", AccountID: "a1",
			RelationshipID: &relID,
			Action:         models.RequestActionMove, TargetStatus: status.ToBePeeled,
			Status: models.RequestStatusPending,
		}

		_, err := f.svc.ResolveRequest(ctx, "t1", master, "req-1", true)

		require.NoError(t, err)
		assert.Equal(t, status.ToBePeeled, f.relationships.updated[relID])
	})

	t.Run("approval revalidates against current state", func(t *testing.T) {
		// another seller protected the account after the request was filed
		f := newFixture(permissions.Config{})
		f.relationships.protector = "s2"
		f.requests.resolved = &models.Request{
			ID: "req-1", TenantID: "t1", SellerID: "s1", AccountID: "a1",
			Action: models.RequestActionAssign, TargetStatus: status.MustKeep,
			Status: models.RequestStatusPending,
		}

		_, err := f.svc.ResolveRequest(ctx, "t1", master, "req-1", true)

		require.Error(t, err)
		assert.Equal(t, http.StatusConflict, httperror.GetStatusCode(err))
		assert.Empty(t, f.relationships.created)
	})

	t.Run("a failed apply leaves the request rejected, not approved", func(t *testing.T) {
		f := newFixture(permissions.Config{})
		f.relationships.protector = "s2"
		f.requests.resolved = &models.Request{
			ID: "req-1", TenantID: "t1", SellerID: "s1", AccountID: "a1",
			Action: models.RequestActionAssign, TargetStatus: status.MustKeep,
			Status: models.RequestStatusPending,
		}

		_, err := f.svc.ResolveRequest(ctx, "t1", master, "req-1", true)

		require.Error(t, err)
		assert.Equal(t, models.RequestStatusRejected, f.requests.resolved.Status)
		require.NotNil(t, f.requests.resolved.Reason)
		assert.Contains(t, *f.requests.resolved.Reason, "held by another seller")
		assert.Contains(t, f.auditor.actions, "request.rejected")
		assert.NotContains(t, f.auditor.actions, "request.approved")
		assert.Contains(t, f.events.emitted, "request.resolved")
	})

	t.Run("resolving an unknown request fails", func(t *testing.T) {
		f := newFixture(permissions.Config{})

		_, err := f.svc.ResolveRequest(ctx, "t1", master, "nope", true)

		require.Error(t, err)
		assert.Equal(t, http.StatusNotFound, httperror.GetStatusCode(err))
	})
}

func TestService_FinalizeBook(t *testing.T) {
	ctx := context.Background()

	t.Run("master finalizes a book", func(t *testing.T) {
		f := newFixture(permissions.Config{})

		err := f.svc.FinalizeBook(ctx, "t1", master, "s1", true)

		require.NoError(t, err)
		assert.True(t, f.sellers.finalized["s1"])
		assert.Contains(t, f.auditor.actions, "seller.book_finalized")
		assert.Contains(t, f.events.emitted, "seller.book_finalized")
	})

	t.Run("manager finalizes only their own sellers", func(t *testing.T) {
		f := newFixture(permissions.Config{ManagerApprovalRequired: true})
		f.managers.mgr = &models.Manager{ID: "m1", UserID: "u-manager"}
		f.sellers.managed = []string{"s2"}

		err := f.svc.FinalizeBook(ctx, "t1", manager, "s1", true)

		require.Error(t, err)
		assert.Equal(t, http.StatusForbidden, httperror.GetStatusCode(err))
	})

	t.Run("reopening clears the flag", func(t *testing.T) {
		f := newFixture(permissions.Config{})

		require.NoError(t, f.svc.FinalizeBook(ctx, "t1", master, "s1", true))
		require.NoError(t, f.svc.FinalizeBook(ctx, "t1", master, "s1", false))
		assert.False(t, f.sellers.finalized["s1"])
	})

	t.Run("unknown role cannot finalize", func(t *testing.T) {
		f := newFixture(permissions.Config{})

		err := f.svc.FinalizeBook(ctx, "t1", Actor{UserID: "u", Role: "VIEWER"}, "s1", true)

		require.Error(t, err)
		assert.Equal(t, http.StatusForbidden, httperror.GetStatusCode(err))
	})
}
