package revenue

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/Ramsey-B/sage/pkg/models"
)

func pct(v float64) *float64 {
	return &v
}

func TestContribution(t *testing.T) {
	revByAccount := map[string]models.AccountRevenue{
		"a1": {AccountID: "a1", ESG: 1_000_000, GDT: 500_000},
	}

	t.Run("should count full revenue for an unweighted relationship", func(t *testing.T) {
		rel := models.Relationship{AccountID: "a1"}
		assert.Equal(t, 1_500_000.0, Contribution(&rel, revByAccount, ModeWeighted))
	})

	t.Run("should weight each division by its percentage", func(t *testing.T) {
		rel := models.Relationship{AccountID: "a1", PctESG: pct(50)}
		// 50% of ESG, 0% of everything else
		assert.Equal(t, 500_000.0, Contribution(&rel, revByAccount, ModeWeighted))
	})

	t.Run("should ignore weights in full mode", func(t *testing.T) {
		rel := models.Relationship{AccountID: "a1", PctESG: pct(50)}
		assert.Equal(t, 1_500_000.0, Contribution(&rel, revByAccount, ModeFull))
	})

	t.Run("should count zero weights as zero contribution", func(t *testing.T) {
		rel := models.Relationship{
			AccountID: "a1",
			PctESG:    pct(0), PctGDT: pct(0), PctGVC: pct(0), PctMSGUS: pct(0),
		}
		assert.Equal(t, 0.0, Contribution(&rel, revByAccount, ModeWeighted))
	})

	t.Run("should equal full value when weights are all 100", func(t *testing.T) {
		rel := models.Relationship{
			AccountID: "a1",
			PctESG:    pct(100), PctGDT: pct(100), PctGVC: pct(100), PctMSGUS: pct(100),
		}
		assert.Equal(t, 1_500_000.0, Contribution(&rel, revByAccount, ModeWeighted))
	})

	t.Run("should contribute zero when the account has no revenue row", func(t *testing.T) {
		rel := models.Relationship{AccountID: "missing"}
		assert.Equal(t, 0.0, Contribution(&rel, revByAccount, ModeWeighted))
		assert.Equal(t, 0.0, Contribution(&rel, revByAccount, ModeFull))
	})
}

func TestAggregate(t *testing.T) {
	revByAccount := map[string]models.AccountRevenue{
		"a1": {AccountID: "a1", ESG: 100, GDT: 200},
		"a2": {AccountID: "a2", GVC: 400},
	}
	rels := []models.Relationship{
		{AccountID: "a1", PctESG: pct(50)}, // 50
		{AccountID: "a2"},                  // 400
		{AccountID: "a3"},                  // no revenue row
	}

	t.Run("should sum weighted contributions", func(t *testing.T) {
		assert.Equal(t, 450.0, Aggregate(rels, revByAccount, ModeWeighted))
	})

	t.Run("should sum full contributions", func(t *testing.T) {
		assert.Equal(t, 700.0, Aggregate(rels, revByAccount, ModeFull))
	})

	t.Run("should not depend on relationship order", func(t *testing.T) {
		reversed := []models.Relationship{rels[2], rels[1], rels[0]}
		assert.Equal(t, Aggregate(rels, revByAccount, ModeWeighted), Aggregate(reversed, revByAccount, ModeWeighted))
	})

	t.Run("should return zero for an empty book", func(t *testing.T) {
		assert.Equal(t, 0.0, Aggregate(nil, revByAccount, ModeWeighted))
	})
}

func TestSumPercentages(t *testing.T) {
	t.Run("should sum the set weights", func(t *testing.T) {
		rel := models.Relationship{PctESG: pct(30), PctGDT: pct(50)}
		assert.Equal(t, 80.0, SumPercentages(&rel))
	})

	t.Run("should treat unset weights as zero", func(t *testing.T) {
		rel := models.Relationship{}
		assert.Equal(t, 0.0, SumPercentages(&rel))
	})
}
