package models

import "time"

// SeniorTenureMonths is the tenure boundary above which a seller is senior.
const SeniorTenureMonths = 12

// Seller represents a seller and the attributes the fit scorer reads.
type Seller struct {
	ID                string     `json:"id" db:"id"`
	TenantID          string     `json:"tenant_id" db:"tenant_id"`
	ManagerID         *string    `json:"manager_id,omitempty" db:"manager_id"`
	Name              string     `json:"name" db:"name"`
	Division          Division   `json:"division" db:"division"`
	Size              SizeClass  `json:"size" db:"size"`
	IndustrySpecialty *string    `json:"industry_specialty,omitempty" db:"industry_specialty"`
	City              *string    `json:"city,omitempty" db:"city"`
	State             *string    `json:"state,omitempty" db:"state"`
	Country           *string    `json:"country,omitempty" db:"country"`
	TenureMonths      int        `json:"tenure_months" db:"tenure_months"`
	Finalized         bool       `json:"finalized" db:"finalized"`
	CreatedAt         time.Time  `json:"created_at" db:"created_at"`
	UpdatedAt         time.Time  `json:"updated_at" db:"updated_at"`
	DeletedAt         *time.Time `json:"deleted_at,omitempty" db:"deleted_at"`
}

// IsSenior reports whether the seller's tenure crosses the seniority boundary.
func (s *Seller) IsSenior() bool {
	return s.TenureMonths > SeniorTenureMonths
}

// SellerFilter is the explicit view state for the seller listing.
type SellerFilter struct {
	ManagerID string   `query:"manager_id"`
	Division  Division `query:"division"`
	Search    string   `query:"search"`
	Page      int      `query:"page"`
	PageSize  int      `query:"page_size"`
}

// SellerListResponse is the response for listing sellers.
type SellerListResponse struct {
	Items      []Seller `json:"items"`
	TotalCount int      `json:"total_count"`
	Page       int      `json:"page"`
	PageSize   int      `json:"page_size"`
}

// SellerBook is a seller's full book: relationships with their accounts plus
// the revenue KPIs computed over them.
type SellerBook struct {
	Seller        Seller            `json:"seller"`
	Relationships []RelationshipRow `json:"relationships"`
	Originals     []RelationshipRow `json:"originals"`
	KPIs          SellerKPIs        `json:"kpis"`
}

// SellerKPIs are the revenue aggregates shown on the dashboard.
type SellerKPIs struct {
	BookValue     float64 `json:"book_value"`     // weighted by assignment pct
	FullValue     float64 `json:"full_value"`     // unweighted
	OriginalValue float64 `json:"original_value"` // full value of the import snapshot
	AccountCount  int     `json:"account_count"`
	MustKeepCount int     `json:"must_keep_count"`
}
