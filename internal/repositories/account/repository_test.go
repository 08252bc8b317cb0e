package account

import (
	"testing"

	"github.com/huandu/go-sqlbuilder"
	"github.com/stretchr/testify/assert"

	"github.com/Ramsey-B/sage/pkg/models"
)

func strPtr(s string) *string {
	return &s
}

func buildFitQuery(seller *models.Seller) (string, []interface{}) {
	r := &Repository{}
	sb := sqlbuilder.PostgreSQL.NewSelectBuilder()
	sb.Select(r.fitScoreExpr(sb, seller))
	sb.From("accounts a")
	return sb.Build()
}

func TestFitScoreExpr(t *testing.T) {
	t.Run("should not credit MIXED when the seller has no division", func(t *testing.T) {
		query, _ := buildFitQuery(&models.Seller{})
		assert.NotContains(t, query, "MIXED")
	})

	t.Run("should credit MIXED when the seller has a division", func(t *testing.T) {
		query, args := buildFitQuery(&models.Seller{Division: models.DivisionESG})
		assert.Contains(t, query, "MIXED")
		assert.Contains(t, args, "ESG")
	})

	t.Run("should treat empty-string account state as absent", func(t *testing.T) {
		// '' and NULL both mean no state, matching the Go scorer
		query, _ := buildFitQuery(&models.Seller{})
		assert.Contains(t, query, "NULLIF(TRIM(LOWER(a.state)), '') IS NULL THEN 25")
	})

	t.Run("should treat whitespace seller state as absent", func(t *testing.T) {
		query, _ := buildFitQuery(&models.Seller{State: strPtr("  ")})
		assert.Contains(t, query, "NULLIF(TRIM(LOWER(a.state)), '') IS NULL THEN 25")
	})

	t.Run("should compare normalized seller values", func(t *testing.T) {
		seller := &models.Seller{
			State:             strPtr(" NY "),
			Country:           strPtr("US"),
			IndustrySpecialty: strPtr("Fintech"),
		}
		query, args := buildFitQuery(seller)

		assert.Contains(t, query, "THEN 12")
		assert.Contains(t, args, "ny")
		assert.Contains(t, args, "us")
		assert.Contains(t, args, "fintech")
	})

	t.Run("should skip the country partial when the seller has no country", func(t *testing.T) {
		query, _ := buildFitQuery(&models.Seller{State: strPtr("NY")})
		assert.NotContains(t, query, "THEN 12")
	})
}
