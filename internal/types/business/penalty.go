package business

import (
	"fmt"
	"time"
)

// CompoundingMethod controls how interest compounds over elapsed time.
type CompoundingMethod string

const (
	CompoundNone    CompoundingMethod = "none" // simple interest
	CompoundDaily   CompoundingMethod = "daily"
	CompoundMonthly CompoundingMethod = "monthly"
	CompoundAnnual  CompoundingMethod = "annual"
)

// InterestPeriod is one date-bounded interest rate, supporting mid-year rate
// changes. To == nil means open-ended.
type InterestPeriod struct {
	From       time.Time  `json:"from"`
	To         *time.Time `json:"to,omitempty"`
	AnnualRate float64    `json:"annual_rate"` // e.g., 0.08 for 8% per annum
}

// InterestSpec is either a single annual rate or a list of date-bounded
// sub-periods, plus a compounding method.
type InterestSpec struct {
	AnnualRate  float64           `json:"annual_rate"`
	Periods     []InterestPeriod  `json:"periods,omitempty"`
	Compounding CompoundingMethod `json:"compounding"`
}

// Validate checks rates and sub-period ordering.
func (s InterestSpec) Validate() error {
	switch s.Compounding {
	case CompoundNone, CompoundDaily, CompoundMonthly, CompoundAnnual:
	default:
		return fmt.Errorf("unknown compounding method %q", s.Compounding)
	}
	if s.AnnualRate < 0 {
		return fmt.Errorf("negative interest rate")
	}
	for i, p := range s.Periods {
		if p.AnnualRate < 0 {
			return fmt.Errorf("negative interest rate in sub-period %d", i)
		}
		if p.To != nil && p.To.Before(p.From) {
			return fmt.Errorf("sub-period %d ends before it starts", i)
		}
	}
	return nil
}

// PenaltyCategory names one penalty regime within a jurisdiction.
type PenaltyCategory string

const (
	PenaltyLateFiling   PenaltyCategory = "late_filing"
	PenaltyLatePayment  PenaltyCategory = "late_payment"
	PenaltyNegligence   PenaltyCategory = "negligence"
	PenaltyEFileFailure PenaltyCategory = "efile_failure"
	PenaltyFraud        PenaltyCategory = "fraud"
	PenaltyNoPermit     PenaltyCategory = "operating_without_permit"
)

// PenaltyRuleType discriminates the closed set of penalty rule shapes.
type PenaltyRuleType string

const (
	PenaltyShapeFlat              PenaltyRuleType = "flat"
	PenaltyShapePerPeriod         PenaltyRuleType = "per_period"
	PenaltyShapeTiered            PenaltyRuleType = "tiered"
	PenaltyShapeBasePlusPerPeriod PenaltyRuleType = "base_plus_per_period"
	PenaltyShapePerDay            PenaltyRuleType = "per_day"
)

// AccrualPeriod is the time unit for per-period penalty accrual.
type AccrualPeriod string

const (
	AccrualDay        AccrualPeriod = "day"
	Accrual30DayBlock AccrualPeriod = "30_day_block"
	AccrualMonth      AccrualPeriod = "month"
)

// FlatPenalty is a fixed percentage of the base amount with optional dollar
// bounds, a pure flat dollar fee instead of a percentage, or "greater of"
// semantics between the two.
type FlatPenalty struct {
	Rate        *float64 `json:"rate,omitempty"`         // fraction of base, e.g. 0.05
	AmountCents *int64   `json:"amount_cents,omitempty"` // pure flat dollar fee
	MinCents    *int64   `json:"min_cents,omitempty"`
	MaxCents    *int64   `json:"max_cents,omitempty"`
	// GreaterOf applies whichever of the flat dollar fee or the computed
	// percentage is larger, rather than treating the fee as a replacement.
	GreaterOf bool `json:"greater_of,omitempty"`
}

// PerPeriodPenalty accrues a rate once per elapsed time unit, capped at a
// maximum total rate.
type PerPeriodPenalty struct {
	Rate         float64       `json:"rate"` // fraction of base per period
	Period       AccrualPeriod `json:"period"`
	MaxTotalRate float64       `json:"max_total_rate"` // 0 = uncapped
}

// TierBracket is one elapsed-days bracket of a tiered penalty.
// ThroughDays == 0 marks the open-ended final bracket.
type TierBracket struct {
	ThroughDays int32   `json:"through_days"`
	Rate        float64 `json:"rate"`
}

// TieredPenalty applies a rate that changes by elapsed-days bracket.
type TieredPenalty struct {
	Brackets []TierBracket `json:"brackets"`
}

// BasePlusPerPeriodPenalty is an upfront flat rate plus per-period accrual,
// capped at a maximum total rate.
type BasePlusPerPeriodPenalty struct {
	BaseRate      float64       `json:"base_rate"`
	PerPeriodRate float64       `json:"per_period_rate"`
	Period        AccrualPeriod `json:"period"`
	MaxTotalRate  float64       `json:"max_total_rate"` // 0 = uncapped
}

// PerDayPenalty is a fixed dollar amount per day late, capped at a maximum
// dollar amount.
type PerDayPenalty struct {
	AmountCentsPerDay int64 `json:"amount_cents_per_day"`
	MaxCents          int64 `json:"max_cents"` // 0 = uncapped
}

// PenaltyRule is the closed tagged-variant penalty shape. Exactly one variant
// field matching Type must be populated; this is validated at load time so
// compute never does ad hoc key lookups.
type PenaltyRule struct {
	Type      PenaltyRuleType           `json:"type"`
	Flat      *FlatPenalty              `json:"flat,omitempty"`
	PerPeriod *PerPeriodPenalty         `json:"per_period,omitempty"`
	Tiered    *TieredPenalty            `json:"tiered,omitempty"`
	BasePlus  *BasePlusPerPeriodPenalty `json:"base_plus_per_period,omitempty"`
	PerDay    *PerDayPenalty            `json:"per_day,omitempty"`
}

// Validate checks the tag/variant pairing and variant-specific constraints.
func (r PenaltyRule) Validate() error {
	populated := 0
	if r.Flat != nil {
		populated++
	}
	if r.PerPeriod != nil {
		populated++
	}
	if r.Tiered != nil {
		populated++
	}
	if r.BasePlus != nil {
		populated++
	}
	if r.PerDay != nil {
		populated++
	}
	if populated != 1 {
		return fmt.Errorf("penalty rule must populate exactly one variant, got %d", populated)
	}

	switch r.Type {
	case PenaltyShapeFlat:
		if r.Flat == nil {
			return fmt.Errorf("penalty rule tagged %q without flat variant", r.Type)
		}
		if r.Flat.Rate == nil && r.Flat.AmountCents == nil && r.Flat.MinCents == nil {
			return fmt.Errorf("flat penalty configures neither a rate nor a dollar amount")
		}
		if r.Flat.MinCents != nil && r.Flat.MaxCents != nil && *r.Flat.MinCents > *r.Flat.MaxCents {
			return fmt.Errorf("flat penalty min bound exceeds max bound")
		}
	case PenaltyShapePerPeriod:
		if r.PerPeriod == nil {
			return fmt.Errorf("penalty rule tagged %q without per_period variant", r.Type)
		}
		if err := validateAccrualPeriod(r.PerPeriod.Period); err != nil {
			return err
		}
	case PenaltyShapeTiered:
		if r.Tiered == nil {
			return fmt.Errorf("penalty rule tagged %q without tiered variant", r.Type)
		}
		if len(r.Tiered.Brackets) == 0 {
			return fmt.Errorf("tiered penalty has no brackets")
		}
		var prev int32
		for i, b := range r.Tiered.Brackets {
			if b.ThroughDays == 0 && i != len(r.Tiered.Brackets)-1 {
				return fmt.Errorf("open-ended bracket must be last")
			}
			if b.ThroughDays != 0 && i > 0 && b.ThroughDays <= prev {
				return fmt.Errorf("tiered penalty brackets out of order")
			}
			prev = b.ThroughDays
		}
	case PenaltyShapeBasePlusPerPeriod:
		if r.BasePlus == nil {
			return fmt.Errorf("penalty rule tagged %q without base_plus_per_period variant", r.Type)
		}
		if err := validateAccrualPeriod(r.BasePlus.Period); err != nil {
			return err
		}
	case PenaltyShapePerDay:
		if r.PerDay == nil {
			return fmt.Errorf("penalty rule tagged %q without per_day variant", r.Type)
		}
		if r.PerDay.AmountCentsPerDay < 0 {
			return fmt.Errorf("per-day penalty amount is negative")
		}
	default:
		return fmt.Errorf("unknown penalty rule type %q", r.Type)
	}

	return nil
}

func validateAccrualPeriod(p AccrualPeriod) error {
	switch p {
	case AccrualDay, Accrual30DayBlock, AccrualMonth:
		return nil
	default:
		return fmt.Errorf("unknown accrual period %q", p)
	}
}

// PenaltyInterestConfig is the date-versioned penalty/interest rule set for
// one jurisdiction. The version effective at an as-of date is the one with the
// latest EffectiveFrom not after that date.
type PenaltyInterestConfig struct {
	Jurisdiction  string    `json:"jurisdiction"`
	EffectiveFrom time.Time `json:"effective_from"`

	Interest  InterestSpec                    `json:"interest"`
	Penalties map[PenaltyCategory]PenaltyRule `json:"penalties"`

	// CombinedMaxRate caps the summed penalties at a fraction of the base
	// amount. Per-category amounts are reported uncapped for transparency.
	CombinedMaxRate *float64 `json:"combined_max_rate,omitempty"`

	// PenaltyWaiver records whether the jurisdiction offers a first-time
	// penalty waiver; Unknown is resolved conservatively by the consumer.
	PenaltyWaiver TriState `json:"penalty_waiver"`
}

// Validate validates the interest spec and every penalty rule.
func (c PenaltyInterestConfig) Validate() error {
	if err := c.Interest.Validate(); err != nil {
		return fmt.Errorf("interest spec for %s: %w", c.Jurisdiction, err)
	}
	for cat, rule := range c.Penalties {
		if err := rule.Validate(); err != nil {
			return fmt.Errorf("penalty %s for %s: %w", cat, c.Jurisdiction, err)
		}
	}
	if c.CombinedMaxRate != nil && *c.CombinedMaxRate < 0 {
		return fmt.Errorf("combined penalty cap for %s is negative", c.Jurisdiction)
	}
	switch c.PenaltyWaiver {
	case TriStateUnknown, TriStateYes, TriStateNo, "":
	default:
		return fmt.Errorf("penalty waiver flag for %s is %q", c.Jurisdiction, c.PenaltyWaiver)
	}
	return nil
}
