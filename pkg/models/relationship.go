package models

import (
	"time"

	"github.com/Ramsey-B/sage/pkg/status"
)

// Relationship is the single row linking a seller and an account. Status
// changes mutate this row; there is never more than one row per pair.
type Relationship struct {
	ID        string        `json:"id" db:"id"`
	TenantID  string        `json:"tenant_id" db:"tenant_id"`
	SellerID  string        `json:"seller_id" db:"seller_id"`
	AccountID string        `json:"account_id" db:"account_id"`
	Status    status.Status `json:"status" db:"status"`
	PctESG    *float64      `json:"pct_esg,omitempty" db:"pct_esg"`
	PctGDT    *float64      `json:"pct_gdt,omitempty" db:"pct_gdt"`
	PctGVC    *float64      `json:"pct_gvc,omitempty" db:"pct_gvc"`
	PctMSGUS  *float64      `json:"pct_msg_us,omitempty" db:"pct_msg_us"`
	CreatedAt time.Time     `json:"created_at" db:"created_at"`
	UpdatedAt time.Time     `json:"updated_at" db:"updated_at"`
}

// CanonicalStatus returns the relationship's status in the canonical
// vocabulary, regardless of which vocabulary the stored row uses.
func (r *Relationship) CanonicalStatus() status.Status {
	return status.Normalize(r.Status)
}

// HasWeights reports whether any per-division percentage is set. A
// relationship without weights is aggregated at full value.
func (r *Relationship) HasWeights() bool {
	return r.PctESG != nil || r.PctGDT != nil || r.PctGVC != nil || r.PctMSGUS != nil
}

// Weight returns the percentage weight for a division, or 0 when unset.
func (r *Relationship) Weight(d Division) float64 {
	var p *float64
	switch d {
	case DivisionESG:
		p = r.PctESG
	case DivisionGDT:
		p = r.PctGDT
	case DivisionGVC:
		p = r.PctGVC
	case DivisionMSGUS:
		p = r.PctMSGUS
	}
	if p == nil {
		return 0
	}
	return *p
}

// OriginalRelationship is the immutable snapshot of a relationship taken at
// import time. Rows are written once by the importer and never touched again;
// they back the "Original Accounts" column that cannot be unassigned.
type OriginalRelationship struct {
	ID         string        `json:"id" db:"id"`
	TenantID   string        `json:"tenant_id" db:"tenant_id"`
	SellerID   string        `json:"seller_id" db:"seller_id"`
	AccountID  string        `json:"account_id" db:"account_id"`
	Status     status.Status `json:"status" db:"status"`
	PctESG     *float64      `json:"pct_esg,omitempty" db:"pct_esg"`
	PctGDT     *float64      `json:"pct_gdt,omitempty" db:"pct_gdt"`
	PctGVC     *float64      `json:"pct_gvc,omitempty" db:"pct_gvc"`
	PctMSGUS   *float64      `json:"pct_msg_us,omitempty" db:"pct_msg_us"`
	ImportedAt time.Time     `json:"imported_at" db:"imported_at"`
}

// RelationshipRow is a relationship joined with its account, as listed on a
// seller's book page.
type RelationshipRow struct {
	Relationship
	AccountName     string   `json:"account_name" db:"account_name"`
	AccountDivision Division `json:"account_division" db:"account_division"`
	RevenueESG      float64  `json:"revenue_esg" db:"revenue_esg"`
	RevenueGDT      float64  `json:"revenue_gdt" db:"revenue_gdt"`
	RevenueGVC      float64  `json:"revenue_gvc" db:"revenue_gvc"`
	RevenueMSGUS    float64  `json:"revenue_msg_us" db:"revenue_msg_us"`
	RecentlyMoved   bool     `json:"recently_moved" db:"-"`
}

// CreateRelationshipRequest creates a relationship at a target status.
type CreateRelationshipRequest struct {
	SellerID  string        `json:"seller_id" validate:"required"`
	AccountID string        `json:"account_id" validate:"required"`
	Status    status.Status `json:"status" validate:"required"`
	PctESG    *float64      `json:"pct_esg,omitempty" validate:"omitempty,gte=0,lte=100"`
	PctGDT    *float64      `json:"pct_gdt,omitempty" validate:"omitempty,gte=0,lte=100"`
	PctGVC    *float64      `json:"pct_gvc,omitempty" validate:"omitempty,gte=0,lte=100"`
	PctMSGUS  *float64      `json:"pct_msg_us,omitempty" validate:"omitempty,gte=0,lte=100"`
}

// UpdateStatusRequest moves a relationship to a new status.
type UpdateStatusRequest struct {
	Status status.Status `json:"status" validate:"required"`
}

// TransitionResult is returned by the assignment service. Exactly one of
// Relationship and Request is set: a direct mutation returns the updated row,
// an approval-routed change returns the pending request.
type TransitionResult struct {
	Relationship *Relationship `json:"relationship,omitempty"`
	Request      *Request      `json:"request,omitempty"`

	// Warnings carries advisory validation notes, e.g. division percentages
	// that do not sum to 100.
	Warnings []string `json:"warnings,omitempty"`
}
