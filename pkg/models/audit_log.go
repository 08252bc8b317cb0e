package models

import (
	"encoding/json"
	"time"
)

// AuditLogEntry is an append-only record of a user-visible mutation. Rows are
// written once and never updated or deleted.
type AuditLogEntry struct {
	ID        string          `json:"id" db:"id"`
	TenantID  string          `json:"tenant_id" db:"tenant_id"`
	UserID    string          `json:"user_id" db:"user_id"`
	Action    string          `json:"action" db:"action"`
	Entity    string          `json:"entity" db:"entity"`
	EntityID  string          `json:"entity_id" db:"entity_id"`
	Before    json.RawMessage `json:"before,omitempty" db:"before"`
	After     json.RawMessage `json:"after,omitempty" db:"after"`
	CreatedAt time.Time       `json:"created_at" db:"created_at"`
}

// AuditLogFilter is the explicit view state for the audit trail listing.
type AuditLogFilter struct {
	Entity   string `query:"entity"`
	EntityID string `query:"entity_id"`
	UserID   string `query:"user_id"`
	Page     int    `query:"page"`
	PageSize int    `query:"page_size"`
}

// AuditLogListResponse is the response for listing audit log entries.
type AuditLogListResponse struct {
	Items      []AuditLogEntry `json:"items"`
	TotalCount int             `json:"total_count"`
	Page       int             `json:"page"`
	PageSize   int             `json:"page_size"`
}
