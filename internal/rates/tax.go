package rates

import (
	"math"

	"github.com/linksclub/teesheet-service/internal/models"
)

// TaxBreakdown is the result of the tax-aware fee calculator. Every amount
// is already rounded to cents.
type TaxBreakdown struct {
	Net   float64 `json:"net_amount"`
	Tax   float64 `json:"tax_amount"`
	Total float64 `json:"total_amount"`
}

// CalculateTax applies a tax mode to a base amount.
//
//	ADD:     tax goes on top of base.
//	INCLUDE: base already contains tax; net is backed out.
//	NONE:    tax is always zero regardless of rate.
//
// INCLUDE with rate <= 0 is an explicit policy: net = total, tax = 0.
func CalculateTax(base float64, mode models.TaxMode, ratePct float64) TaxBreakdown {
	switch mode {
	case models.TaxAdd:
		if ratePct <= 0 {
			return TaxBreakdown{Net: RoundCents(base), Tax: 0, Total: RoundCents(base)}
		}
		net := RoundCents(base)
		tax := RoundCents(base * ratePct / 100)
		return TaxBreakdown{Net: net, Tax: tax, Total: RoundCents(net + tax)}

	case models.TaxInclude:
		if ratePct <= 0 {
			return TaxBreakdown{Net: RoundCents(base), Tax: 0, Total: RoundCents(base)}
		}
		total := RoundCents(base)
		net := RoundCents(base / (1 + ratePct/100))
		return TaxBreakdown{Net: net, Tax: RoundCents(total - net), Total: total}

	default: // NONE
		return TaxBreakdown{Net: RoundCents(base), Tax: 0, Total: RoundCents(base)}
	}
}

// RoundCents rounds half-up at the cent boundary.
func RoundCents(v float64) float64 {
	return math.Floor(v*100+0.5) / 100
}
