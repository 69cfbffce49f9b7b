package services

import (
	"time"

	"github.com/markmiedema/nexuscheck-sub005/internal/logger"
	"github.com/markmiedema/nexuscheck-sub005/internal/types/business"
	"go.uber.org/zap"
)

// LiabilityCalculator turns a jurisdiction-year's exposure into an estimated
// liability: base tax at the blended rate, plus interest and penalties
// accrued from the obligation start to the analysis as-of date.
type LiabilityCalculator struct {
	penalties *PenaltyInterestEngine
	logger    *zap.Logger
}

// NewLiabilityCalculator creates a new liability calculator.
func NewLiabilityCalculator(penalties *PenaltyInterestEngine) *LiabilityCalculator {
	return &LiabilityCalculator{
		penalties: penalties,
		logger:    logger.Log,
	}
}

// Calculate resolves the jurisdiction's rate, marketplace and penalty
// configuration from the snapshot and computes the liability breakdown on the
// year's exposure. Missing reference data returns a jurisdiction-scoped
// *MissingReferenceDataError.
func (c *LiabilityCalculator) Calculate(
	snap *ReferenceSnapshot,
	jurisdiction string,
	totals YearTotals,
	obligationStart time.Time,
	asOf time.Time,
) (business.LiabilityBreakdown, error) {
	rate, ok := snap.TaxRate(jurisdiction, asOf)
	if !ok {
		return business.LiabilityBreakdown{}, &MissingReferenceDataError{
			Jurisdiction: jurisdiction,
			Kind:         RefTaxRate,
			AsOf:         asOf,
		}
	}

	base := totals.ExposureCents
	if mkt, ok := snap.MarketplaceRule(jurisdiction, asOf); ok && mkt.ExcludedFromLiability {
		base -= totals.MarketplaceExposureCents
	}
	if base < 0 {
		base = 0
	}

	baseTax := roundCents(float64(base) * rate.CombinedRate())

	breakdown := business.LiabilityBreakdown{
		BaseTaxCents: baseTax,
	}

	cfg, ok := snap.PenaltyInterestConfig(jurisdiction, asOf)
	if !ok {
		return business.LiabilityBreakdown{}, &MissingReferenceDataError{
			Jurisdiction: jurisdiction,
			Kind:         RefPenaltyInterest,
			AsOf:         asOf,
		}
	}

	pi := c.penalties.Compute(cfg, baseTax, obligationStart, asOf)
	breakdown.InterestCents = pi.InterestCents
	breakdown.PenaltyCents = pi.PenaltyCents
	breakdown.PenaltyTotalCents = pi.PenaltyTotalCents
	breakdown.TotalCents = baseTax + pi.InterestCents + pi.PenaltyTotalCents

	if pi.WaiverApplied {
		c.logger.Debug("penalty waiver applied",
			zap.String("jurisdiction", jurisdiction),
			zap.Int64("base_tax_cents", baseTax))
	}

	return breakdown, nil
}
