// Package revenue computes the revenue aggregates behind seller, manager, and
// company KPIs.
package revenue

import "github.com/Ramsey-B/sage/pkg/models"

// Mode selects how a relationship's account revenue is counted.
type Mode int

const (
	// ModeWeighted multiplies each division figure by the relationship's
	// percentage weight. Used for dashboard book-value KPIs.
	ModeWeighted Mode = iota
	// ModeFull sums the raw division figures, ignoring weights. Used for the
	// original-account display.
	ModeFull
)

// Aggregate sums account revenue over a set of relationships. Relationships
// whose account has no revenue row contribute zero. The sum is over an
// unordered collection; callers may pass relationships in any order.
func Aggregate(relationships []models.Relationship, revenueByAccount map[string]models.AccountRevenue, mode Mode) float64 {
	var total float64
	for i := range relationships {
		total += Contribution(&relationships[i], revenueByAccount, mode)
	}
	return total
}

// Contribution returns a single relationship's share of the aggregate.
func Contribution(rel *models.Relationship, revenueByAccount map[string]models.AccountRevenue, mode Mode) float64 {
	rev, ok := revenueByAccount[rel.AccountID]
	if !ok {
		return 0
	}

	if mode == ModeFull || !rel.HasWeights() {
		return rev.Total()
	}

	var sum float64
	for _, d := range models.Divisions() {
		sum += rev.ByDivision(d) * rel.Weight(d) / 100
	}
	return sum
}

// SumPercentages returns the total of the set division weights. The system
// does not require weights to sum to 100; callers use this for advisory
// validation only.
func SumPercentages(rel *models.Relationship) float64 {
	var sum float64
	for _, d := range models.Divisions() {
		sum += rel.Weight(d)
	}
	return sum
}
