// Package importer materializes parsed seed rows from the import feed into the
// database. Rows are upserts keyed on their natural identifiers, so replaying
// a batch is harmless; relationship rows additionally snapshot into the
// immutable original set exactly once.
package importer

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/Gobusters/ectologger"
	"github.com/Ramsey-B/stem/pkg/tracing"

	"github.com/Ramsey-B/sage/pkg/kafka"
	"github.com/Ramsey-B/sage/pkg/metrics"
	"github.com/Ramsey-B/sage/pkg/models"
	"github.com/Ramsey-B/sage/pkg/status"
)

// AccountRepo defines the account writes the importer needs
type AccountRepo interface {
	Upsert(ctx context.Context, tenantID string, account models.Account) (*models.Account, error)
}

// SellerRepo defines the seller writes the importer needs
type SellerRepo interface {
	Upsert(ctx context.Context, tenantID string, seller models.Seller) (*models.Seller, error)
}

// ManagerRepo defines the manager writes the importer needs
type ManagerRepo interface {
	Upsert(ctx context.Context, tenantID string, mgr models.Manager) (*models.Manager, error)
}

// RelationshipRepo defines the relationship writes the importer needs
type RelationshipRepo interface {
	Upsert(ctx context.Context, tenantID string, rel models.Relationship) (*models.Relationship, error)
}

// OriginalRepo defines the snapshot writes the importer needs
type OriginalRepo interface {
	Snapshot(ctx context.Context, tenantID string, rel models.Relationship) error
}

// RevenueRepo defines the revenue writes the importer needs
type RevenueRepo interface {
	Upsert(ctx context.Context, tenantID string, rev models.AccountRevenue) error
}

// RelationshipRow is a parsed seed row mapping a seller to an account
type RelationshipRow struct {
	SellerID  string   `json:"seller_id"`
	AccountID string   `json:"account_id"`
	Status    string   `json:"status"`
	PctESG    *float64 `json:"pct_esg,omitempty"`
	PctGDT    *float64 `json:"pct_gdt,omitempty"`
	PctGVC    *float64 `json:"pct_gvc,omitempty"`
	PctMSGUS  *float64 `json:"pct_msg_us,omitempty"`
}

// Processor applies import batches
type Processor struct {
	accounts      AccountRepo
	sellers       SellerRepo
	managers      ManagerRepo
	relationships RelationshipRepo
	originals     OriginalRepo
	revenues      RevenueRepo
	logger        ectologger.Logger
}

// NewProcessor creates a new import processor
func NewProcessor(
	accounts AccountRepo,
	sellers SellerRepo,
	managers ManagerRepo,
	relationships RelationshipRepo,
	originals OriginalRepo,
	revenues RevenueRepo,
	logger ectologger.Logger,
) *Processor {
	return &Processor{
		accounts:      accounts,
		sellers:       sellers,
		managers:      managers,
		relationships: relationships,
		originals:     originals,
		revenues:      revenues,
		logger:        logger,
	}
}

// HandleMessage processes one import batch. It is the consumer's handler;
// returning an error leaves the message uncommitted for redelivery.
func (p *Processor) HandleMessage(ctx context.Context, msg *kafka.IncomingMessage) error {
	ctx, span := tracing.StartSpan(ctx, "importer.Processor.HandleMessage")
	defer span.End()

	if msg.Import == nil {
		return fmt.Errorf("message is not an import batch")
	}

	batch := msg.Import
	start := time.Now()
	processed := 0

	log := p.logger.WithContext(ctx).WithFields(map[string]any{
		"tenant_id": batch.TenantID,
		"row_type":  batch.Type,
		"batch_id":  batch.BatchID,
		"rows":      len(batch.Rows),
	})

	for _, raw := range batch.Rows {
		if err := p.applyRow(ctx, batch.TenantID, batch.Type, raw); err != nil {
			metrics.RecordImportRows(batch.TenantID, batch.Type, "failed", 1)
			log.WithError(err).Error("Failed to apply import row")
			return err
		}
		processed++
	}

	metrics.RecordImportRows(batch.TenantID, batch.Type, "applied", processed)
	metrics.ImportBatchDuration.WithLabelValues(batch.Type).Observe(time.Since(start).Seconds())
	log.Info("Applied import batch")
	return nil
}

func (p *Processor) applyRow(ctx context.Context, tenantID, rowType string, raw json.RawMessage) error {
	switch rowType {
	case kafka.RowTypeAccount:
		var account models.Account
		if err := json.Unmarshal(raw, &account); err != nil {
			return fmt.Errorf("invalid account row: %w", err)
		}
		_, err := p.accounts.Upsert(ctx, tenantID, account)
		return err

	case kafka.RowTypeSeller:
		var seller models.Seller
		if err := json.Unmarshal(raw, &seller); err != nil {
			return fmt.Errorf("invalid seller row: %w", err)
		}
		_, err := p.sellers.Upsert(ctx, tenantID, seller)
		return err

	case kafka.RowTypeManager:
		var mgr models.Manager
		if err := json.Unmarshal(raw, &mgr); err != nil {
			return fmt.Errorf("invalid manager row: %w", err)
		}
		_, err := p.managers.Upsert(ctx, tenantID, mgr)
		return err

	case kafka.RowTypeRelationship:
		var row RelationshipRow
		if err := json.Unmarshal(raw, &row); err != nil {
			return fmt.Errorf("invalid relationship row: %w", err)
		}
		return p.applyRelationship(ctx, tenantID, row)

	case kafka.RowTypeRevenue:
		var rev models.AccountRevenue
		if err := json.Unmarshal(raw, &rev); err != nil {
			return fmt.Errorf("invalid revenue row: %w", err)
		}
		return p.revenues.Upsert(ctx, tenantID, rev)
	}

	return fmt.Errorf("unknown row type %q", rowType)
}

// applyRelationship upserts the live row and snapshots the original. Seed
// feeds may carry the legacy status vocabulary; rows are stored as received
// and normalized on read.
func (p *Processor) applyRelationship(ctx context.Context, tenantID string, row RelationshipRow) error {
	st := status.Status(row.Status)
	if !status.IsValid(st) {
		return fmt.Errorf("unknown status %q for seller %s account %s", row.Status, row.SellerID, row.AccountID)
	}

	rel := models.Relationship{
		TenantID:  tenantID,
		SellerID:  row.SellerID,
		AccountID: row.AccountID,
		Status:    st,
		PctESG:    row.PctESG,
		PctGDT:    row.PctGDT,
		PctGVC:    row.PctGVC,
		PctMSGUS:  row.PctMSGUS,
	}

	if _, err := p.relationships.Upsert(ctx, tenantID, rel); err != nil {
		return err
	}
	return p.originals.Snapshot(ctx, tenantID, rel)
}
