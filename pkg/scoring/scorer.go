// Package scoring computes the seller/account fit score shown on the
// dashboard. The score is a pure function of the two records: identical
// inputs always produce identical scores, and missing fields never credit
// a criterion.
package scoring

import (
	"strings"

	"github.com/Ramsey-B/sage/pkg/models"
)

// Point values per criterion. Four equal-weighted criteria sum to 100.
const (
	DivisionPoints  = 25
	GeographyPoints = 25
	IndustryPoints  = 25
	SizePoints      = 25

	// CountryPoints is the partial credit when only the country matches.
	CountryPoints = GeographyPoints / 2
)

// Breakdown itemizes a fit score by criterion.
type Breakdown struct {
	Division  int `json:"division"`
	Geography int `json:"geography"`
	Industry  int `json:"industry"`
	Size      int `json:"size"`
}

// Total returns the summed fit score.
func (b Breakdown) Total() int {
	return b.Division + b.Geography + b.Industry + b.Size
}

// Scorer computes fit scores between sellers and accounts.
type Scorer struct{}

// NewScorer creates a new Scorer.
func NewScorer() *Scorer {
	return &Scorer{}
}

// Score returns the fit between a seller and an account as an integer in
// [0,100].
func (s *Scorer) Score(seller *models.Seller, account *models.Account) int {
	return s.Explain(seller, account).Total()
}

// Explain returns the per-criterion breakdown behind a fit score.
func (s *Scorer) Explain(seller *models.Seller, account *models.Account) Breakdown {
	var b Breakdown
	if seller == nil || account == nil {
		return b
	}

	if s.divisionMatch(seller, account) {
		b.Division = DivisionPoints
	}
	b.Geography = s.geographyPoints(seller, account)
	if s.industryMatch(seller, account) {
		b.Industry = IndustryPoints
	}
	if seller.Size != "" && seller.Size == account.Size {
		b.Size = SizePoints
	}
	return b
}

// divisionMatch credits the criterion when the seller's home division equals
// the account's current division, or when the account is still MIXED.
func (s *Scorer) divisionMatch(seller *models.Seller, account *models.Account) bool {
	if account.CurrentDivision == models.DivisionMixed {
		return seller.Division != ""
	}
	return seller.Division != "" && seller.Division == account.CurrentDivision
}

// geographyPoints gives full credit for a state match (including both states
// absent), partial credit for a country-only match, and zero otherwise.
func (s *Scorer) geographyPoints(seller *models.Seller, account *models.Account) int {
	sellerState, sellerHasState := Normalized(seller.State)
	accountState, accountHasState := Normalized(account.State)

	if !sellerHasState && !accountHasState {
		return GeographyPoints
	}
	if sellerHasState && accountHasState && sellerState == accountState {
		return GeographyPoints
	}

	sellerCountry, ok1 := Normalized(seller.Country)
	accountCountry, ok2 := Normalized(account.Country)
	if ok1 && ok2 && sellerCountry == accountCountry {
		return CountryPoints
	}
	return 0
}

func (s *Scorer) industryMatch(seller *models.Seller, account *models.Account) bool {
	specialty, ok := Normalized(seller.IndustrySpecialty)
	if !ok {
		return false
	}
	industry, ok := Normalized(account.Industry)
	if !ok {
		return false
	}
	return specialty == industry
}

// Normalized trims and lowercases an optional string, reporting whether it
// carries a value. Exposed so SQL mirrors of the scorer normalize seller
// inputs the same way.
func Normalized(p *string) (string, bool) {
	if p == nil {
		return "", false
	}
	v := strings.ToLower(strings.TrimSpace(*p))
	if v == "" {
		return "", false
	}
	return v, true
}
