package models

import "time"

// Account is reference data imported from the seed feed. Everything except the
// current division tag is immutable after import.
type Account struct {
	ID              string     `json:"id" db:"id"`
	TenantID        string     `json:"tenant_id" db:"tenant_id"`
	Name            string     `json:"name" db:"name"`
	City            *string    `json:"city,omitempty" db:"city"`
	State           *string    `json:"state,omitempty" db:"state"`
	Country         *string    `json:"country,omitempty" db:"country"`
	Lat             *float64   `json:"lat,omitempty" db:"lat"`
	Lng             *float64   `json:"lng,omitempty" db:"lng"`
	Industry        *string    `json:"industry,omitempty" db:"industry"`
	Size            SizeClass  `json:"size" db:"size"`
	Tier            *string    `json:"tier,omitempty" db:"tier"`
	CurrentDivision Division   `json:"current_division" db:"current_division"`
	CreatedAt       time.Time  `json:"created_at" db:"created_at"`
	UpdatedAt       time.Time  `json:"updated_at" db:"updated_at"`
	DeletedAt       *time.Time `json:"deleted_at,omitempty" db:"deleted_at"`
}

// AccountRow is an account as returned by the paginated listing, carrying the
// fields the query computes alongside the base columns.
type AccountRow struct {
	Account
	FitScore          *int    `json:"fit_score,omitempty" db:"fit_score"`
	TotalRevenue      float64 `json:"total_revenue" db:"total_revenue"`
	ProtectedBySeller *string `json:"protected_by_seller,omitempty" db:"protected_by_seller"`
}

// AccountFilter is the explicit view state for the account listing. Handlers
// build it from query parameters and pass it down; nothing about the listing
// is ambient.
type AccountFilter struct {
	Division Division  `query:"division"`
	Size     SizeClass `query:"size"`
	Tier     string    `query:"tier"`
	Industry string    `query:"industry"`
	Country  string    `query:"country"`
	State    string    `query:"state"`
	Search   string    `query:"search"`

	// SellerID switches the listing into candidate mode: fit scores are
	// computed against this seller and accounts protected by other sellers
	// are excluded.
	SellerID string `query:"seller_id"`

	SortBy   string `query:"sort_by"` // name, revenue, fit
	SortDesc bool   `query:"sort_desc"`
	Page     int    `query:"page"`
	PageSize int    `query:"page_size"`
}

// AccountListResponse is the response for listing accounts.
type AccountListResponse struct {
	Items      []AccountRow `json:"items"`
	TotalCount int          `json:"total_count"`
	Page       int          `json:"page"`
	PageSize   int          `json:"page_size"`
}
