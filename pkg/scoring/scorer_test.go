package scoring

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/Ramsey-B/sage/pkg/models"
)

func strPtr(s string) *string {
	return &s
}

func TestScorer_Score(t *testing.T) {
	scorer := NewScorer()

	t.Run("should return 100 when every criterion matches", func(t *testing.T) {
		seller := &models.Seller{
			Division:          models.DivisionESG,
			Size:              models.SizeEnterprise,
			IndustrySpecialty: strPtr("Healthcare"),
			State:             strPtr("NY"),
			Country:           strPtr("US"),
		}
		account := &models.Account{
			CurrentDivision: models.DivisionESG,
			Size:            models.SizeEnterprise,
			Industry:        strPtr("Healthcare"),
			State:           strPtr("NY"),
			Country:         strPtr("US"),
		}

		assert.Equal(t, 100, scorer.Score(seller, account))
	})

	t.Run("should return 0 when nothing matches", func(t *testing.T) {
		seller := &models.Seller{
			Division:          models.DivisionESG,
			Size:              models.SizeEnterprise,
			IndustrySpecialty: strPtr("Healthcare"),
			State:             strPtr("NY"),
			Country:           strPtr("US"),
		}
		account := &models.Account{
			CurrentDivision: models.DivisionGDT,
			Size:            models.SizeMidmarket,
			Industry:        strPtr("Retail"),
			State:           strPtr("TX"),
			Country:         strPtr("CA"),
		}

		assert.Equal(t, 0, scorer.Score(seller, account))
	})

	t.Run("should return 0 when seller or account is nil", func(t *testing.T) {
		assert.Equal(t, 0, scorer.Score(nil, &models.Account{}))
		assert.Equal(t, 0, scorer.Score(&models.Seller{}, nil))
	})

	t.Run("should be deterministic for identical inputs", func(t *testing.T) {
		seller := &models.Seller{Division: models.DivisionGVC, State: strPtr("WA")}
		account := &models.Account{CurrentDivision: models.DivisionGVC, State: strPtr("WA")}

		first := scorer.Score(seller, account)
		for i := 0; i < 10; i++ {
			assert.Equal(t, first, scorer.Score(seller, account))
		}
	})
}

func TestScorer_Explain_Division(t *testing.T) {
	scorer := NewScorer()

	t.Run("should credit a direct division match", func(t *testing.T) {
		b := scorer.Explain(
			&models.Seller{Division: models.DivisionGDT},
			&models.Account{CurrentDivision: models.DivisionGDT, State: strPtr("TX")},
		)
		assert.Equal(t, DivisionPoints, b.Division)
	})

	t.Run("should credit any division against a MIXED account", func(t *testing.T) {
		for _, d := range models.Divisions() {
			b := scorer.Explain(
				&models.Seller{Division: d},
				&models.Account{CurrentDivision: models.DivisionMixed, State: strPtr("TX")},
			)
			assert.Equal(t, DivisionPoints, b.Division, "division %s", d)
		}
	})

	t.Run("should not credit a seller with no division against MIXED", func(t *testing.T) {
		b := scorer.Explain(
			&models.Seller{},
			&models.Account{CurrentDivision: models.DivisionMixed, State: strPtr("TX")},
		)
		assert.Equal(t, 0, b.Division)
	})
}

func TestScorer_Explain_Geography(t *testing.T) {
	scorer := NewScorer()

	t.Run("should give full credit for a state match", func(t *testing.T) {
		b := scorer.Explain(
			&models.Seller{State: strPtr("NY"), Country: strPtr("US")},
			&models.Account{State: strPtr("NY"), Country: strPtr("CA")},
		)
		assert.Equal(t, GeographyPoints, b.Geography)
	})

	t.Run("should give full credit when both states are absent", func(t *testing.T) {
		b := scorer.Explain(&models.Seller{}, &models.Account{State: strPtr("  ")})
		assert.Equal(t, GeographyPoints, b.Geography)
	})

	t.Run("should give partial credit for a country-only match", func(t *testing.T) {
		b := scorer.Explain(
			&models.Seller{State: strPtr("NY"), Country: strPtr("US")},
			&models.Account{State: strPtr("TX"), Country: strPtr("US")},
		)
		assert.Equal(t, CountryPoints, b.Geography)
	})

	t.Run("should give zero when one state is absent and countries differ", func(t *testing.T) {
		b := scorer.Explain(
			&models.Seller{State: strPtr("NY"), Country: strPtr("US")},
			&models.Account{Country: strPtr("CA")},
		)
		assert.Equal(t, 0, b.Geography)
	})

	t.Run("should ignore case and whitespace", func(t *testing.T) {
		b := scorer.Explain(
			&models.Seller{State: strPtr(" ny ")},
			&models.Account{State: strPtr("NY")},
		)
		assert.Equal(t, GeographyPoints, b.Geography)
	})
}

func TestScorer_Explain_Industry(t *testing.T) {
	scorer := NewScorer()

	t.Run("should credit a case-insensitive industry match", func(t *testing.T) {
		b := scorer.Explain(
			&models.Seller{IndustrySpecialty: strPtr("FINTECH"), State: strPtr("TX")},
			&models.Account{Industry: strPtr("fintech")},
		)
		assert.Equal(t, IndustryPoints, b.Industry)
	})

	t.Run("should never credit missing fields", func(t *testing.T) {
		b := scorer.Explain(
			&models.Seller{State: strPtr("TX")},
			&models.Account{},
		)
		assert.Equal(t, 0, b.Industry)
	})
}

func TestBreakdown_Total(t *testing.T) {
	b := Breakdown{Division: 25, Geography: 12, Industry: 0, Size: 25}
	assert.Equal(t, 62, b.Total())
}
