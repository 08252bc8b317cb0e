package models

import (
	"time"

	"github.com/Ramsey-B/sage/pkg/status"
)

// RequestStatus is the lifecycle of an approval request.
const (
	RequestStatusPending  = "pending"
	RequestStatusApproved = "approved"
	RequestStatusRejected = "rejected"
)

// RequestAction is the operation a request asks approval for.
type RequestAction string

const (
	RequestActionAssign   RequestAction = "assign"
	RequestActionUnassign RequestAction = "unassign"
	RequestActionMove     RequestAction = "move"
)

// Request is a manager-initiated change held for MASTER approval. Approving a
// request applies the held transition; rejecting it leaves the relationship
// untouched.
type Request struct {
	ID             string        `json:"id" db:"id"`
	TenantID       string        `json:"tenant_id" db:"tenant_id"`
	RequestedBy    string        `json:"requested_by" db:"requested_by"`
	SellerID       string        `json:"seller_id" db:"seller_id"`
	AccountID      string        `json:"account_id" db:"account_id"`
	RelationshipID *string       `json:"relationship_id,omitempty" db:"relationship_id"`
	Action         RequestAction `json:"action" db:"action"`
	TargetStatus   status.Status `json:"target_status" db:"target_status"`
	Status         string        `json:"status" db:"status"`
	Reason         *string       `json:"reason,omitempty" db:"reason"`
	ResolvedBy     *string       `json:"resolved_by,omitempty" db:"resolved_by"`
	ResolvedAt     *time.Time    `json:"resolved_at,omitempty" db:"resolved_at"`
	CreatedAt      time.Time     `json:"created_at" db:"created_at"`
	UpdatedAt      time.Time     `json:"updated_at" db:"updated_at"`
}

// RequestListResponse is the response for listing requests.
type RequestListResponse struct {
	Items      []Request `json:"items"`
	TotalCount int       `json:"total_count"`
	Page       int       `json:"page"`
	PageSize   int       `json:"page_size"`
}
