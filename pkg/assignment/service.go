// Package assignment orchestrates changes to seller books: assigning accounts,
// moving them through the status pipeline, and the approval workflow that
// manager-initiated changes route through.
package assignment

import (
	"context"
	"fmt"
	"net/http"

	"github.com/Gobusters/ectoerror/httperror"
	"github.com/Gobusters/ectologger"
	"github.com/Ramsey-B/stem/pkg/tracing"

	"github.com/Ramsey-B/sage/pkg/metrics"
	"github.com/Ramsey-B/sage/pkg/models"
	"github.com/Ramsey-B/sage/pkg/permissions"
	"github.com/Ramsey-B/sage/pkg/revenue"
	"github.com/Ramsey-B/sage/pkg/status"
)

// Actor identifies the user performing an operation and the role they carry.
type Actor struct {
	UserID string
	Role   models.Role
}

// Service applies book mutations end to end: capability check, scope check,
// status machine validation, then either a direct mutation or a pending
// approval request. Audit, cache refresh, and event emission ride along
// best-effort and never fail the operation.
type Service struct {
	cfg           permissions.Config
	relationships RelationshipRepo
	originals     OriginalRepo
	requests      RequestRepo
	sellers       SellerRepo
	managers      ManagerRepo
	auditor       Auditor
	events        EventSink
	cache         Cache
	logger        ectologger.Logger
}

// NewService creates a new assignment service
func NewService(
	cfg permissions.Config,
	relationships RelationshipRepo,
	originals OriginalRepo,
	requests RequestRepo,
	sellers SellerRepo,
	managers ManagerRepo,
	auditor Auditor,
	events EventSink,
	cache Cache,
	logger ectologger.Logger,
) *Service {
	return &Service{
		cfg:           cfg,
		relationships: relationships,
		originals:     originals,
		requests:      requests,
		sellers:       sellers,
		managers:      managers,
		auditor:       auditor,
		events:        events,
		cache:         cache,
		logger:        logger,
	}
}

// Assign adds an account to a seller's book at a target status.
func (s *Service) Assign(ctx context.Context, tenantID string, actor Actor, req models.CreateRelationshipRequest) (*models.TransitionResult, error) {
	ctx, span := tracing.StartSpan(ctx, "assignment.Service.Assign")
	defer span.End()

	cap := permissions.ForRole(actor.Role, s.cfg)
	if !cap.CanMutate() {
		return nil, httperror.NewHTTPError(http.StatusForbidden, "role is not allowed to change seller books")
	}
	if err := s.checkSellerScope(ctx, tenantID, actor, cap, req.SellerID); err != nil {
		return nil, err
	}

	if !status.IsValid(req.Status) {
		return nil, httperror.NewHTTPErrorf(http.StatusBadRequest, "unknown status %q", string(req.Status))
	}

	if _, err := s.sellers.Get(ctx, tenantID, req.SellerID); err != nil {
		return nil, err
	}

	protector, err := s.relationships.FindProtector(ctx, tenantID, req.AccountID)
	if err != nil {
		return nil, err
	}
	if protector != "" && protector != req.SellerID {
		return nil, httperror.NewHTTPError(http.StatusConflict, "account is held by another seller's book")
	}

	warnings := weightWarnings(req)

	if cap.RequiresApproval {
		pending, err := s.requests.Create(ctx, models.Request{
			TenantID:     tenantID,
			RequestedBy:  actor.UserID,
			SellerID:     req.SellerID,
			AccountID:    req.AccountID,
			Action:       models.RequestActionAssign,
			TargetStatus: status.Normalize(req.Status),
		})
		if err != nil {
			return nil, err
		}
		metrics.RecordRequestCreated(tenantID, string(models.RequestActionAssign))
		s.auditor.Record(ctx, tenantID, actor.UserID, "request.created", "request", pending.ID, nil, pending)
		return &models.TransitionResult{Request: pending, Warnings: warnings}, nil
	}

	rel, err := s.relationships.Create(ctx, tenantID, req)
	if err != nil {
		metrics.RecordTransition(tenantID, string(status.Normalize(req.Status)), "rejected")
		return nil, err
	}

	metrics.RecordTransition(tenantID, string(rel.CanonicalStatus()), "applied")
	s.auditor.Record(ctx, tenantID, actor.UserID, "relationship.created", "relationship", rel.ID, nil, rel)
	s.cache.MarkRecentlyMoved(ctx, tenantID, rel.ID)
	s.cache.InvalidateSellerKPIs(ctx, tenantID, rel.SellerID)
	_ = s.events.EmitRelationshipCreated(ctx, actor.UserID, rel)

	return &models.TransitionResult{Relationship: rel, Warnings: warnings}, nil
}

// Move transitions an existing relationship to a new status.
func (s *Service) Move(ctx context.Context, tenantID string, actor Actor, relationshipID string, to status.Status) (*models.TransitionResult, error) {
	ctx, span := tracing.StartSpan(ctx, "assignment.Service.Move")
	defer span.End()

	cap := permissions.ForRole(actor.Role, s.cfg)
	if !cap.CanMutate() {
		return nil, httperror.NewHTTPError(http.StatusForbidden, "role is not allowed to change seller books")
	}

	rel, err := s.relationships.Get(ctx, tenantID, relationshipID)
	if err != nil {
		return nil, err
	}
	if err := s.checkSellerScope(ctx, tenantID, actor, cap, rel.SellerID); err != nil {
		return nil, err
	}

	t, err := s.buildTransition(ctx, tenantID, rel, to)
	if err != nil {
		return nil, err
	}
	if err := status.Validate(t); err != nil {
		metrics.RecordTransition(tenantID, string(status.Normalize(to)), "rejected")
		return nil, err
	}

	if cap.RequiresApproval {
		pending, err := s.requests.Create(ctx, models.Request{
			TenantID:       tenantID,
			RequestedBy:    actor.UserID,
			SellerID:       rel.SellerID,
			AccountID:      rel.AccountID,
			RelationshipID: &rel.ID,
			Action:         models.RequestActionMove,
			TargetStatus:   status.Normalize(to),
		})
		if err != nil {
			return nil, err
		}
		metrics.RecordRequestCreated(tenantID, string(models.RequestActionMove))
		s.auditor.Record(ctx, tenantID, actor.UserID, "request.created", "request", pending.ID, nil, pending)
		return &models.TransitionResult{Request: pending}, nil
	}

	before := *rel
	updated, err := s.relationships.UpdateStatus(ctx, tenantID, relationshipID, to)
	if err != nil {
		return nil, err
	}

	metrics.RecordTransition(tenantID, string(updated.CanonicalStatus()), "applied")
	s.auditor.Record(ctx, tenantID, actor.UserID, "relationship.status_changed", "relationship", updated.ID, &before, updated)
	s.cache.MarkRecentlyMoved(ctx, tenantID, updated.ID)
	s.cache.InvalidateSellerKPIs(ctx, tenantID, updated.SellerID)
	_ = s.events.EmitStatusChanged(ctx, actor.UserID, updated, string(before.CanonicalStatus()), string(updated.CanonicalStatus()))

	return &models.TransitionResult{Relationship: updated}, nil
}

// Unassign removes a relationship, dropping the account back to available.
func (s *Service) Unassign(ctx context.Context, tenantID string, actor Actor, relationshipID string) (*models.TransitionResult, error) {
	ctx, span := tracing.StartSpan(ctx, "assignment.Service.Unassign")
	defer span.End()

	cap := permissions.ForRole(actor.Role, s.cfg)
	if !cap.CanMutate() {
		return nil, httperror.NewHTTPError(http.StatusForbidden, "role is not allowed to change seller books")
	}

	rel, err := s.relationships.Get(ctx, tenantID, relationshipID)
	if err != nil {
		return nil, err
	}
	if err := s.checkSellerScope(ctx, tenantID, actor, cap, rel.SellerID); err != nil {
		return nil, err
	}

	originalOnly, err := s.originals.IsOriginalOnly(ctx, tenantID, rel.SellerID, rel.AccountID)
	if err != nil {
		return nil, err
	}
	if err := status.CanUnassign(originalOnly); err != nil {
		metrics.RecordTransition(tenantID, string(status.Available), "rejected")
		return nil, err
	}

	if cap.RequiresApproval {
		pending, err := s.requests.Create(ctx, models.Request{
			TenantID:       tenantID,
			RequestedBy:    actor.UserID,
			SellerID:       rel.SellerID,
			AccountID:      rel.AccountID,
			RelationshipID: &rel.ID,
			Action:         models.RequestActionUnassign,
			TargetStatus:   status.Available,
		})
		if err != nil {
			return nil, err
		}
		metrics.RecordRequestCreated(tenantID, string(models.RequestActionUnassign))
		s.auditor.Record(ctx, tenantID, actor.UserID, "request.created", "request", pending.ID, nil, pending)
		return &models.TransitionResult{Request: pending}, nil
	}

	if err := s.relationships.Delete(ctx, tenantID, relationshipID); err != nil {
		return nil, err
	}

	metrics.RecordTransition(tenantID, string(status.Available), "applied")
	s.auditor.Record(ctx, tenantID, actor.UserID, "relationship.removed", "relationship", rel.ID, rel, nil)
	s.cache.InvalidateSellerKPIs(ctx, tenantID, rel.SellerID)
	_ = s.events.EmitRelationshipRemoved(ctx, actor.UserID, rel)

	return &models.TransitionResult{}, nil
}

// ResolveRequest approves or rejects a pending request. Approving applies the
// held change; the pending-state guard in the store ensures a request is
// applied at most once even with concurrent reviewers. An approval whose held
// change no longer applies lands the request in rejected with the conflict
// recorded, never in approved with nothing applied.
func (s *Service) ResolveRequest(ctx context.Context, tenantID string, actor Actor, requestID string, approve bool) (*models.Request, error) {
	ctx, span := tracing.StartSpan(ctx, "assignment.Service.ResolveRequest")
	defer span.End()

	cap := permissions.ForRole(actor.Role, s.cfg)
	if !cap.ResolveRequests {
		return nil, httperror.NewHTTPError(http.StatusForbidden, "role is not allowed to resolve requests")
	}

	resolution := models.RequestStatusRejected
	if approve {
		resolution = models.RequestStatusApproved
	}

	resolved, err := s.requests.Resolve(ctx, tenantID, requestID, resolution, actor.UserID)
	if err != nil {
		return nil, err
	}

	if approve {
		if applyErr := s.applyRequest(ctx, tenantID, actor, resolved); applyErr != nil {
			resolution = models.RequestStatusRejected
			reverted, revertErr := s.requests.MarkApplyFailed(ctx, tenantID, resolved.ID, applyErr.Error())
			if revertErr != nil {
				s.logger.WithContext(ctx).WithError(revertErr).WithFields(map[string]any{"request_id": resolved.ID}).Error("Failed to reject request after apply failure")
			} else {
				resolved = reverted
			}
			metrics.RecordRequestResolved(tenantID, resolution)
			s.auditor.Record(ctx, tenantID, actor.UserID, "request."+resolution, "request", resolved.ID, nil, resolved)
			_ = s.events.EmitRequestResolved(ctx, resolved)
			return nil, applyErr
		}
	}

	metrics.RecordRequestResolved(tenantID, resolution)
	s.auditor.Record(ctx, tenantID, actor.UserID, "request."+resolution, "request", resolved.ID, nil, resolved)
	_ = s.events.EmitRequestResolved(ctx, resolved)

	return resolved, nil
}

// FinalizeBook marks a seller's book as finalized or reopens it.
func (s *Service) FinalizeBook(ctx context.Context, tenantID string, actor Actor, sellerID string, finalized bool) error {
	ctx, span := tracing.StartSpan(ctx, "assignment.Service.FinalizeBook")
	defer span.End()

	cap := permissions.ForRole(actor.Role, s.cfg)
	if !cap.DirectMutate && !cap.ManagerScoped {
		return httperror.NewHTTPError(http.StatusForbidden, "role is not allowed to finalize books")
	}
	if err := s.checkSellerScope(ctx, tenantID, actor, cap, sellerID); err != nil {
		return err
	}

	if err := s.sellers.SetFinalized(ctx, tenantID, sellerID, finalized); err != nil {
		return err
	}

	s.auditor.Record(ctx, tenantID, actor.UserID, "seller.book_finalized", "seller", sellerID, nil, map[string]bool{"finalized": finalized})
	_ = s.events.EmitBookFinalized(ctx, tenantID, sellerID, actor.UserID, finalized)
	return nil
}

// applyRequest performs the mutation a just-approved request holds. The
// request's transition is revalidated against current state; the book may have
// changed since the request was filed.
func (s *Service) applyRequest(ctx context.Context, tenantID string, actor Actor, req *models.Request) error {
	switch req.Action {
	case models.RequestActionAssign:
		protector, err := s.relationships.FindProtector(ctx, tenantID, req.AccountID)
		if err != nil {
			return err
		}
		if protector != "" && protector != req.SellerID {
			return httperror.NewHTTPError(http.StatusConflict, "account is held by another seller's book")
		}
		rel, err := s.relationships.Create(ctx, tenantID, models.CreateRelationshipRequest{
			SellerID:  req.SellerID,
			AccountID: req.AccountID,
			Status:    req.TargetStatus,
		})
		if err != nil {
			return err
		}
		metrics.RecordTransition(tenantID, string(rel.CanonicalStatus()), "applied")
		s.auditor.Record(ctx, tenantID, actor.UserID, "relationship.created", "relationship", rel.ID, nil, rel)
		s.cache.MarkRecentlyMoved(ctx, tenantID, rel.ID)
		s.cache.InvalidateSellerKPIs(ctx, tenantID, rel.SellerID)
		_ = s.events.EmitRelationshipCreated(ctx, actor.UserID, rel)
		return nil

	case models.RequestActionMove:
		if req.RelationshipID == nil {
			return httperror.NewHTTPErrorf(http.StatusConflict, "request %s has no relationship", req.ID)
		}
		rel, err := s.relationships.Get(ctx, tenantID, *req.RelationshipID)
		if err != nil {
			return err
		}
		t, err := s.buildTransition(ctx, tenantID, rel, req.TargetStatus)
		if err != nil {
			return err
		}
		if err := status.Validate(t); err != nil {
			return err
		}
		before := *rel
		updated, err := s.relationships.UpdateStatus(ctx, tenantID, rel.ID, req.TargetStatus)
		if err != nil {
			return err
		}
		metrics.RecordTransition(tenantID, string(updated.CanonicalStatus()), "applied")
		s.auditor.Record(ctx, tenantID, actor.UserID, "relationship.status_changed", "relationship", updated.ID, &before, updated)
		s.cache.MarkRecentlyMoved(ctx, tenantID, updated.ID)
		s.cache.InvalidateSellerKPIs(ctx, tenantID, updated.SellerID)
		_ = s.events.EmitStatusChanged(ctx, actor.UserID, updated, string(before.CanonicalStatus()), string(updated.CanonicalStatus()))
		return nil

	case models.RequestActionUnassign:
		if req.RelationshipID == nil {
			return httperror.NewHTTPErrorf(http.StatusConflict, "request %s has no relationship", req.ID)
		}
		rel, err := s.relationships.Get(ctx, tenantID, *req.RelationshipID)
		if err != nil {
			return err
		}
		originalOnly, err := s.originals.IsOriginalOnly(ctx, tenantID, rel.SellerID, rel.AccountID)
		if err != nil {
			return err
		}
		if err := status.CanUnassign(originalOnly); err != nil {
			return err
		}
		if err := s.relationships.Delete(ctx, tenantID, rel.ID); err != nil {
			return err
		}
		metrics.RecordTransition(tenantID, string(status.Available), "applied")
		s.auditor.Record(ctx, tenantID, actor.UserID, "relationship.removed", "relationship", rel.ID, rel, nil)
		s.cache.InvalidateSellerKPIs(ctx, tenantID, rel.SellerID)
		_ = s.events.EmitRelationshipRemoved(ctx, actor.UserID, rel)
		return nil
	}

	return httperror.NewHTTPErrorf(http.StatusConflict, "request %s has unknown action %q", req.ID, string(req.Action))
}

func (s *Service) buildTransition(ctx context.Context, tenantID string, rel *models.Relationship, to status.Status) (status.Transition, error) {
	originalOnly, err := s.originals.IsOriginalOnly(ctx, tenantID, rel.SellerID, rel.AccountID)
	if err != nil {
		return status.Transition{}, err
	}
	protector, err := s.relationships.FindProtector(ctx, tenantID, rel.AccountID)
	if err != nil {
		return status.Transition{}, err
	}

	return status.Transition{
		From:              rel.Status,
		To:                to,
		OriginalOnly:      originalOnly,
		ProtectedBySeller: protector,
		ActingSeller:      rel.SellerID,
	}, nil
}

// checkSellerScope rejects manager-scoped operations on sellers the acting
// manager does not own.
func (s *Service) checkSellerScope(ctx context.Context, tenantID string, actor Actor, cap permissions.Capability, sellerID string) error {
	if !cap.ManagerScoped {
		return nil
	}

	mgr, err := s.managers.GetByUser(ctx, tenantID, actor.UserID)
	if err != nil {
		return err
	}
	if mgr == nil {
		return httperror.NewHTTPError(http.StatusForbidden, "no manager profile for the requesting user")
	}

	managed, err := s.sellers.ListIDsByManager(ctx, tenantID, mgr.ID)
	if err != nil {
		return err
	}
	return cap.RequireSellerScope(sellerID, managed)
}

// weightWarnings returns advisory notes about division weights. Weights that
// do not sum to 100 are allowed; the UI surfaces the warning.
func weightWarnings(req models.CreateRelationshipRequest) []string {
	rel := models.Relationship{
		PctESG:   req.PctESG,
		PctGDT:   req.PctGDT,
		PctGVC:   req.PctGVC,
		PctMSGUS: req.PctMSGUS,
	}
	if !rel.HasWeights() {
		return nil
	}
	if sum := revenue.SumPercentages(&rel); sum != 100 {
		return []string{fmt.Sprintf("division percentages sum to %g, not 100", sum)}
	}
	return nil
}
