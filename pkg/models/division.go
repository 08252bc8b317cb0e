package models

// Division identifies one of the four revenue divisions.
type Division string

const (
	DivisionESG   Division = "ESG"
	DivisionGDT   Division = "GDT"
	DivisionGVC   Division = "GVC"
	DivisionMSGUS Division = "MSG_US"

	// DivisionMixed marks an account that is not committed to a single
	// division yet. It satisfies any seller's division criterion.
	DivisionMixed Division = "MIXED"
)

// Divisions returns the four revenue divisions in display order.
func Divisions() []Division {
	return []Division{DivisionESG, DivisionGDT, DivisionGVC, DivisionMSGUS}
}

// SizeClass classifies an account or seller book by deal size.
type SizeClass string

const (
	SizeEnterprise SizeClass = "enterprise"
	SizeMidmarket  SizeClass = "midmarket"
)
