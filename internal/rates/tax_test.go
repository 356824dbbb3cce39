package rates

import (
	"testing"

	"github.com/linksclub/teesheet-service/internal/models"
	"github.com/stretchr/testify/assert"
)

func TestCalculateTax_Add(t *testing.T) {
	b := CalculateTax(100, models.TaxAdd, 7)

	assert.Equal(t, 100.0, b.Net)
	assert.Equal(t, 7.0, b.Tax)
	assert.Equal(t, 107.0, b.Total)
}

func TestCalculateTax_Include(t *testing.T) {
	b := CalculateTax(107, models.TaxInclude, 7)

	assert.Equal(t, 100.0, b.Net)
	assert.Equal(t, 7.0, b.Tax)
	assert.Equal(t, 107.0, b.Total)
}

func TestCalculateTax_None_IgnoresRate(t *testing.T) {
	b := CalculateTax(100, models.TaxNone, 7)

	assert.Equal(t, 100.0, b.Net)
	assert.Equal(t, 0.0, b.Tax)
	assert.Equal(t, 100.0, b.Total)
}

func TestCalculateTax_IncludeWithZeroRate(t *testing.T) {
	b := CalculateTax(107, models.TaxInclude, 0)

	assert.Equal(t, 107.0, b.Net)
	assert.Equal(t, 0.0, b.Tax)
	assert.Equal(t, 107.0, b.Total)
}

func TestCalculateTax_AddWithZeroRate(t *testing.T) {
	b := CalculateTax(55.5, models.TaxAdd, 0)

	assert.Equal(t, 55.5, b.Net)
	assert.Equal(t, 0.0, b.Tax)
	assert.Equal(t, 55.5, b.Total)
}

func TestCalculateTax_AddRoundsToCents(t *testing.T) {
	// 33.33 * 7% = 2.3331 -> 2.33
	b := CalculateTax(33.33, models.TaxAdd, 7)
	assert.Equal(t, 2.33, b.Tax)
	assert.Equal(t, 35.66, b.Total)

	// 20.19 * 7% = 1.4133 -> 1.41
	b = CalculateTax(20.19, models.TaxAdd, 7)
	assert.Equal(t, 1.41, b.Tax)
	assert.Equal(t, 21.60, b.Total)
}

func TestCalculateTax_IncludeBreakdownSumsToTotal(t *testing.T) {
	// Awkward divisions must still satisfy net + tax == total.
	for _, base := range []float64{99.99, 123.45, 0.01, 1000} {
		b := CalculateTax(base, models.TaxInclude, 7)
		assert.Equal(t, b.Total, RoundCents(b.Net+b.Tax), "base %v", base)
		assert.Equal(t, RoundCents(base), b.Total)
	}
}

func TestRoundCents(t *testing.T) {
	assert.Equal(t, 1.0, RoundCents(1.004))
	assert.Equal(t, 1.01, RoundCents(1.006))
	assert.Equal(t, 0.0, RoundCents(0))
	assert.Equal(t, 2.34, RoundCents(2.336))
	assert.Equal(t, 99.99, RoundCents(99.994))
}
