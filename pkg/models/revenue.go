package models

import "time"

// AccountRevenue holds the four fixed per-division revenue figures for an
// account. Rows come from the import feed; a missing row means zero revenue.
type AccountRevenue struct {
	AccountID string    `json:"account_id" db:"account_id"`
	TenantID  string    `json:"tenant_id" db:"tenant_id"`
	ESG       float64   `json:"esg" db:"esg"`
	GDT       float64   `json:"gdt" db:"gdt"`
	GVC       float64   `json:"gvc" db:"gvc"`
	MSGUS     float64   `json:"msg_us" db:"msg_us"`
	UpdatedAt time.Time `json:"updated_at" db:"updated_at"`
}

// ByDivision returns the revenue figure for a division.
func (r *AccountRevenue) ByDivision(d Division) float64 {
	switch d {
	case DivisionESG:
		return r.ESG
	case DivisionGDT:
		return r.GDT
	case DivisionGVC:
		return r.GVC
	case DivisionMSGUS:
		return r.MSGUS
	}
	return 0
}

// Total returns the unweighted sum across all divisions.
func (r *AccountRevenue) Total() float64 {
	return r.ESG + r.GDT + r.GVC + r.MSGUS
}

// CompanyKPIs are the tenant-wide aggregates shown on the dashboard header.
type CompanyKPIs struct {
	TotalRevenue float64 `json:"total_revenue"`
}
