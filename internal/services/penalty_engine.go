package services

import (
	"math"
	"time"

	"github.com/markmiedema/nexuscheck-sub005/internal/constants"
	"github.com/markmiedema/nexuscheck-sub005/internal/logger"
	"github.com/markmiedema/nexuscheck-sub005/internal/types/business"
	"go.uber.org/zap"
)

// PenaltyInterestEngine interprets a jurisdiction's date-versioned penalty and
// interest rule set. It is pure computation: config resolution against the
// snapshot happens in the caller so missing reference data can be scoped to
// the jurisdiction.
type PenaltyInterestEngine struct {
	logger *zap.Logger
}

// NewPenaltyInterestEngine creates a new penalty/interest engine.
func NewPenaltyInterestEngine() *PenaltyInterestEngine {
	return &PenaltyInterestEngine{logger: logger.Log}
}

// PenaltyInterestResult is the engine's liability contribution for one
// jurisdiction-year.
type PenaltyInterestResult struct {
	InterestCents int64
	// PenaltyCents holds each category's computed amount before the combined
	// cap, for transparency.
	PenaltyCents map[business.PenaltyCategory]int64
	// PenaltyTotalCents is the summed penalties after the combined cap.
	PenaltyTotalCents int64
	// WaiverApplied reports that the jurisdiction's penalty waiver zeroed the
	// total; categories are still reported.
	WaiverApplied bool
}

// Compute calculates interest and every configured penalty category on the
// base amount, from the obligation start date to the as-of date. Categories
// absent from the configuration contribute zero.
func (e *PenaltyInterestEngine) Compute(
	cfg business.PenaltyInterestConfig,
	baseCents int64,
	obligationStart, asOf time.Time,
) PenaltyInterestResult {
	result := PenaltyInterestResult{
		PenaltyCents: make(map[business.PenaltyCategory]int64),
	}
	if baseCents <= 0 || !obligationStart.Before(asOf) {
		return result
	}

	result.InterestCents = e.computeInterest(cfg.Interest, baseCents, obligationStart, asOf)

	daysLate := daysBetween(obligationStart, asOf)
	var total int64
	for category, rule := range cfg.Penalties {
		amount := applyPenaltyRule(rule, baseCents, daysLate)
		result.PenaltyCents[category] = amount
		total += amount
	}

	if cfg.CombinedMaxRate != nil {
		cap := roundCents(float64(baseCents) * *cfg.CombinedMaxRate)
		if total > cap {
			e.logger.Debug("combined penalty cap applied",
				zap.String("jurisdiction", cfg.Jurisdiction),
				zap.Int64("uncapped_cents", total),
				zap.Int64("cap_cents", cap))
			total = cap
		}
	}

	// The waiver flag is tri-state in the source data; Unknown resolves
	// conservatively to "no waiver" so the estimate stays on the safe side.
	if cfg.PenaltyWaiver == business.TriStateYes {
		result.WaiverApplied = true
		total = 0
	}

	result.PenaltyTotalCents = total
	return result
}

// computeInterest accrues interest on the base over [from, to). A config with
// date-bounded sub-periods applies each sub-period's rate to the elapsed time
// inside that sub-period; compounding carries the principal across
// sub-periods in order.
func (e *PenaltyInterestEngine) computeInterest(
	spec business.InterestSpec,
	baseCents int64,
	from, to time.Time,
) int64 {
	if len(spec.Periods) == 0 {
		return accrueInterest(baseCents, spec.AnnualRate, daysBetween(from, to), spec.Compounding)
	}

	if spec.Compounding == business.CompoundNone || spec.Compounding == "" {
		var total int64
		for _, p := range spec.Periods {
			days := overlapDays(from, to, p.From, p.To)
			total += accrueInterest(baseCents, p.AnnualRate, days, business.CompoundNone)
		}
		return total
	}

	// Compounded: grow the principal through each sub-period in sequence.
	principal := float64(baseCents)
	for _, p := range spec.Periods {
		days := overlapDays(from, to, p.From, p.To)
		if days <= 0 {
			continue
		}
		principal *= growthFactor(p.AnnualRate, days, spec.Compounding)
	}
	return roundCents(principal - float64(baseCents))
}

// accrueInterest computes interest for a flat annual rate over a number of
// days with the given compounding method.
func accrueInterest(baseCents int64, annualRate float64, days int, method business.CompoundingMethod) int64 {
	if days <= 0 || annualRate <= 0 {
		return 0
	}
	switch method {
	case business.CompoundNone, "":
		return roundCents(float64(baseCents) * annualRate * float64(days) / constants.DaysPerYear)
	default:
		return roundCents(float64(baseCents) * (growthFactor(annualRate, days, method) - 1))
	}
}

// growthFactor returns (1 + r/n)^(n*t) for the compounding granularity.
func growthFactor(annualRate float64, days int, method business.CompoundingMethod) float64 {
	years := float64(days) / constants.DaysPerYear
	var n float64
	switch method {
	case business.CompoundDaily:
		n = constants.DaysPerYear
	case business.CompoundMonthly:
		n = 12
	case business.CompoundAnnual:
		n = 1
	default:
		// Simple interest expressed as a factor.
		return 1 + annualRate*years
	}
	return math.Pow(1+annualRate/n, n*years)
}

// overlapDays measures the whole days of [from, to) covered by the sub-period
// [pFrom, pTo]; a nil pTo is open-ended.
func overlapDays(from, to, pFrom time.Time, pTo *time.Time) int {
	start := from
	if pFrom.After(start) {
		start = pFrom
	}
	end := to
	if pTo != nil && pTo.Before(end) {
		end = *pTo
	}
	return daysBetween(start, end)
}

// applyPenaltyRule evaluates one closed-variant penalty rule against the base
// amount and days late. Validation at load time guarantees the variant
// matching the tag is populated.
func applyPenaltyRule(rule business.PenaltyRule, baseCents int64, daysLate int) int64 {
	switch rule.Type {
	case business.PenaltyShapeFlat:
		return applyFlatPenalty(*rule.Flat, baseCents)
	case business.PenaltyShapePerPeriod:
		p := *rule.PerPeriod
		rate := p.Rate * float64(elapsedPeriods(daysLate, p.Period))
		if p.MaxTotalRate > 0 && rate > p.MaxTotalRate {
			rate = p.MaxTotalRate
		}
		return roundCents(float64(baseCents) * rate)
	case business.PenaltyShapeTiered:
		return roundCents(float64(baseCents) * tieredRate(rule.Tiered.Brackets, daysLate))
	case business.PenaltyShapeBasePlusPerPeriod:
		p := *rule.BasePlus
		rate := p.BaseRate + p.PerPeriodRate*float64(elapsedPeriods(daysLate, p.Period))
		if p.MaxTotalRate > 0 && rate > p.MaxTotalRate {
			rate = p.MaxTotalRate
		}
		return roundCents(float64(baseCents) * rate)
	case business.PenaltyShapePerDay:
		p := *rule.PerDay
		amount := p.AmountCentsPerDay * int64(daysLate)
		if p.MaxCents > 0 && amount > p.MaxCents {
			amount = p.MaxCents
		}
		return amount
	default:
		return 0
	}
}

func applyFlatPenalty(p business.FlatPenalty, baseCents int64) int64 {
	var amount int64
	switch {
	case p.Rate != nil && p.AmountCents != nil && p.GreaterOf:
		pct := roundCents(float64(baseCents) * *p.Rate)
		amount = pct
		if *p.AmountCents > amount {
			amount = *p.AmountCents
		}
	case p.Rate != nil:
		amount = roundCents(float64(baseCents) * *p.Rate)
	case p.AmountCents != nil:
		amount = *p.AmountCents
	}

	if p.MinCents != nil && amount < *p.MinCents {
		amount = *p.MinCents
	}
	if p.MaxCents != nil && amount > *p.MaxCents {
		amount = *p.MaxCents
	}
	return amount
}

// tieredRate picks the rate for the elapsed-days bracket. The open-ended
// final bracket has ThroughDays == 0.
func tieredRate(brackets []business.TierBracket, daysLate int) float64 {
	for _, b := range brackets {
		if b.ThroughDays == 0 || int32(daysLate) <= b.ThroughDays {
			return b.Rate
		}
	}
	return 0
}

// elapsedPeriods counts accrual units, rounding any partial unit up (a
// fraction of a period accrues the full period, matching how late charges
// are assessed).
func elapsedPeriods(daysLate int, period business.AccrualPeriod) int {
	if daysLate <= 0 {
		return 0
	}
	switch period {
	case business.AccrualDay:
		return daysLate
	case business.Accrual30DayBlock, business.AccrualMonth:
		return (daysLate + 29) / 30
	default:
		return 0
	}
}

// daysBetween counts whole days between two dates, normalized to midnight for
// consistent calculation.
func daysBetween(start, end time.Time) int {
	start = time.Date(start.Year(), start.Month(), start.Day(), 0, 0, 0, 0, time.UTC)
	end = time.Date(end.Year(), end.Month(), end.Day(), 0, 0, 0, 0, time.UTC)
	if end.Before(start) {
		return 0
	}
	return int(end.Sub(start).Hours() / 24)
}

func roundCents(v float64) int64 {
	return int64(math.Round(v))
}
