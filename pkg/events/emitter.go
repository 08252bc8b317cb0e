// Package events handles event emission for book lifecycle changes
package events

import (
	"context"
	"encoding/json"

	"github.com/Gobusters/ectologger"
	"github.com/Ramsey-B/stem/pkg/tracing"

	"github.com/Ramsey-B/sage/pkg/kafka"
	"github.com/Ramsey-B/sage/pkg/models"
)

// Emitter publishes book events for Sage
type Emitter struct {
	producer *kafka.Producer
	logger   ectologger.Logger
}

// NewEmitter creates a new event emitter
func NewEmitter(producer *kafka.Producer, logger ectologger.Logger) *Emitter {
	return &Emitter{
		producer: producer,
		logger:   logger,
	}
}

// EmitRelationshipCreated emits a relationship created event
func (e *Emitter) EmitRelationshipCreated(ctx context.Context, actorID string, rel *models.Relationship) error {
	ctx, span := tracing.StartSpan(ctx, "events.Emitter.EmitRelationshipCreated")
	defer span.End()

	data, _ := json.Marshal(rel)
	event := &kafka.BookEvent{
		EventType:      "relationship.created",
		TenantID:       rel.TenantID,
		SellerID:       rel.SellerID,
		AccountID:      rel.AccountID,
		RelationshipID: rel.ID,
		ActorID:        actorID,
		ToStatus:       string(rel.CanonicalStatus()),
		Data:           data,
	}

	if err := e.producer.PublishBookEvent(ctx, event); err != nil {
		e.logger.WithContext(ctx).WithError(err).Error("Failed to emit relationship.created event")
		return err
	}
	return nil
}

// EmitStatusChanged emits a relationship status change event
func (e *Emitter) EmitStatusChanged(ctx context.Context, actorID string, rel *models.Relationship, from, to string) error {
	ctx, span := tracing.StartSpan(ctx, "events.Emitter.EmitStatusChanged")
	defer span.End()

	event := &kafka.BookEvent{
		EventType:      "relationship.status_changed",
		TenantID:       rel.TenantID,
		SellerID:       rel.SellerID,
		AccountID:      rel.AccountID,
		RelationshipID: rel.ID,
		ActorID:        actorID,
		FromStatus:     from,
		ToStatus:       to,
	}

	if err := e.producer.PublishBookEvent(ctx, event); err != nil {
		e.logger.WithContext(ctx).WithError(err).Error("Failed to emit relationship.status_changed event")
		return err
	}
	return nil
}

// EmitRelationshipRemoved emits a relationship removed event
func (e *Emitter) EmitRelationshipRemoved(ctx context.Context, actorID string, rel *models.Relationship) error {
	ctx, span := tracing.StartSpan(ctx, "events.Emitter.EmitRelationshipRemoved")
	defer span.End()

	event := &kafka.BookEvent{
		EventType:      "relationship.removed",
		TenantID:       rel.TenantID,
		SellerID:       rel.SellerID,
		AccountID:      rel.AccountID,
		RelationshipID: rel.ID,
		ActorID:        actorID,
		FromStatus:     string(rel.CanonicalStatus()),
	}

	if err := e.producer.PublishBookEvent(ctx, event); err != nil {
		e.logger.WithContext(ctx).WithError(err).Error("Failed to emit relationship.removed event")
		return err
	}
	return nil
}

// EmitBookFinalized emits a seller book finalized event
func (e *Emitter) EmitBookFinalized(ctx context.Context, tenantID, sellerID, actorID string, finalized bool) error {
	ctx, span := tracing.StartSpan(ctx, "events.Emitter.EmitBookFinalized")
	defer span.End()

	data, _ := json.Marshal(map[string]any{"finalized": finalized})
	event := &kafka.BookEvent{
		EventType: "seller.book_finalized",
		TenantID:  tenantID,
		SellerID:  sellerID,
		ActorID:   actorID,
		Data:      data,
	}

	if err := e.producer.PublishBookEvent(ctx, event); err != nil {
		e.logger.WithContext(ctx).WithError(err).Error("Failed to emit seller.book_finalized event")
		return err
	}
	return nil
}

// EmitRequestResolved emits a request resolution event
func (e *Emitter) EmitRequestResolved(ctx context.Context, req *models.Request) error {
	ctx, span := tracing.StartSpan(ctx, "events.Emitter.EmitRequestResolved")
	defer span.End()

	data, _ := json.Marshal(req)
	event := &kafka.BookEvent{
		EventType: "request.resolved",
		TenantID:  req.TenantID,
		SellerID:  req.SellerID,
		AccountID: req.AccountID,
		RequestID: req.ID,
		ToStatus:  req.Status,
		Data:      data,
	}
	if req.ResolvedBy != nil {
		event.ActorID = *req.ResolvedBy
	}

	if err := e.producer.PublishBookEvent(ctx, event); err != nil {
		e.logger.WithContext(ctx).WithError(err).Error("Failed to emit request.resolved event")
		return err
	}
	return nil
}
