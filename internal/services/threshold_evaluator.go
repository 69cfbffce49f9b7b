package services

import (
	"time"

	"github.com/markmiedema/nexuscheck-sub005/internal/logger"
	"github.com/markmiedema/nexuscheck-sub005/internal/types/business"
	"go.uber.org/zap"
)

// approachingFraction is the informational "approaching threshold" cutoff:
// a window that reaches this share of the governing component without
// crossing reports StatusApproaching.
const approachingFraction = 0.8

// ThresholdEvaluator decides whether and when a jurisdiction's economic
// threshold was crossed within the lookback windows for a given year.
type ThresholdEvaluator struct {
	logger *zap.Logger
}

// NewThresholdEvaluator creates a new threshold evaluator.
func NewThresholdEvaluator() *ThresholdEvaluator {
	return &ThresholdEvaluator{logger: logger.Log}
}

// ThresholdOutcome is the threshold test result for one jurisdiction-year.
type ThresholdOutcome struct {
	Met          bool
	CrossingDate time.Time
	Approaching  bool
}

// measurementWindow is one inclusive date range over which running totals are
// accumulated.
type measurementWindow struct {
	start time.Time
	end   time.Time
}

func (w measurementWindow) contains(t time.Time) bool {
	return !t.Before(w.start) && !t.After(w.end)
}

// Evaluate runs the crossing algorithm over every measurement window the
// rule's lookback strategy produces for the year. Transactions must already
// be in ascending date order (the partitioner's contract). The earliest
// crossing across windows wins.
func (e *ThresholdEvaluator) Evaluate(
	rule business.ThresholdRule,
	marketplaceRule *business.MarketplaceRule,
	txns []business.Transaction,
	year int,
) (ThresholdOutcome, error) {
	if !rule.HasRevenueComponent() && !rule.HasCountComponent() {
		return ThresholdOutcome{}, &InvalidThresholdConfigError{
			Jurisdiction: rule.Jurisdiction,
			Reason:       "no threshold components configured",
		}
	}

	excludeMarketplace := rule.ExcludeMarketplace ||
		(marketplaceRule != nil && !marketplaceRule.CountsTowardThreshold)

	var outcome ThresholdOutcome
	for _, w := range e.windowsForYear(rule, txns, year) {
		met, crossing, approaching := e.walkWindow(rule, excludeMarketplace, txns, w)
		if approaching {
			outcome.Approaching = true
		}
		if met && (!outcome.Met || crossing.Before(outcome.CrossingDate)) {
			outcome.Met = true
			outcome.CrossingDate = crossing
		}
	}
	if outcome.Met {
		outcome.Approaching = false
	}
	return outcome, nil
}

// windowsForYear derives the measurement windows ending in the given year for
// the rule's lookback strategy.
func (e *ThresholdEvaluator) windowsForYear(
	rule business.ThresholdRule,
	txns []business.Transaction,
	year int,
) []measurementWindow {
	switch rule.Lookback {
	case business.LookbackCalendarPriorYear:
		return []measurementWindow{calendarYearWindow(year - 1)}

	case business.LookbackRolling12Months:
		// One trailing window per transaction date in the year, re-evaluated
		// as dates advance.
		var windows []measurementWindow
		var lastEnd time.Time
		for _, t := range txns {
			if t.Date.Year() != year {
				continue
			}
			if !lastEnd.IsZero() && t.Date.Equal(lastEnd) {
				continue
			}
			lastEnd = t.Date
			start := t.Date.AddDate(-1, 0, 1)
			windows = append(windows, measurementWindow{start: start, end: t.Date})
		}
		return windows

	case business.LookbackQuarterly:
		// For each analysis quarter, the four most-recently-completed
		// calendar quarters.
		windows := make([]measurementWindow, 0, 4)
		for q := 0; q < 4; q++ {
			quarterStart := time.Date(year, time.Month(1+3*q), 1, 0, 0, 0, 0, time.UTC)
			windows = append(windows, measurementWindow{
				start: quarterStart.AddDate(-1, 0, 0),
				end:   quarterStart.AddDate(0, 0, -1),
			})
		}
		return windows

	case business.LookbackFixedAnnual:
		endMonth, endDay := rule.WindowEndMonth, rule.WindowEndDay
		if endMonth == 0 {
			// Default to the common prior-October-through-September window.
			endMonth, endDay = time.September, 30
		}
		end := time.Date(year, endMonth, endDay, 0, 0, 0, 0, time.UTC)
		return []measurementWindow{{start: end.AddDate(-1, 0, 1), end: end}}

	default:
		// Calendar current-or-prior: check both years and report the crossing
		// within whichever window is relevant.
		return []measurementWindow{
			calendarYearWindow(year - 1),
			calendarYearWindow(year),
		}
	}
}

func calendarYearWindow(year int) measurementWindow {
	return measurementWindow{
		start: time.Date(year, time.January, 1, 0, 0, 0, 0, time.UTC),
		end:   time.Date(year, time.December, 31, 0, 0, 0, 0, time.UTC),
	}
}

// walkWindow walks qualifying transactions within the window in chronological
// order, maintaining running revenue and count with the jurisdiction's
// exclusion rules applied to both. The date of the transaction that first
// satisfies the combined condition is the crossing date.
func (e *ThresholdEvaluator) walkWindow(
	rule business.ThresholdRule,
	excludeMarketplace bool,
	txns []business.Transaction,
	w measurementWindow,
) (met bool, crossing time.Time, approaching bool) {
	var revenue int64
	var count int32

	for _, t := range txns {
		if t.Date.After(w.end) {
			break
		}
		if !w.contains(t.Date) {
			continue
		}
		if excludeMarketplace && t.Channel == business.ChannelMarketplace {
			continue
		}
		if rule.ExcludeResale && t.IsResale() {
			continue
		}

		amount := t.GrossCents
		if rule.ExcludeNonTaxable {
			amount = t.TaxableCents
			if amount == 0 {
				// Fully exempt sale: excluded from the count as well.
				continue
			}
		}

		revenue += amount
		count++

		if thresholdMet(rule, revenue, count) {
			return true, t.Date, false
		}
	}

	return false, time.Time{}, progress(rule, revenue, count) >= approachingFraction
}

// thresholdMet applies the combination operator. A single configured
// component governs alone regardless of the operator value.
func thresholdMet(rule business.ThresholdRule, revenue int64, count int32) bool {
	revenueOK := rule.HasRevenueComponent() && revenue >= *rule.RevenueThresholdCents
	countOK := rule.HasCountComponent() && count >= *rule.TransactionThreshold

	switch {
	case !rule.HasRevenueComponent():
		return countOK
	case !rule.HasCountComponent():
		return revenueOK
	case rule.Operator == business.OperatorAND:
		return revenueOK && countOK
	default:
		return revenueOK || countOK
	}
}

// progress measures how close the running totals came to crossing, using the
// same combination semantics as the test itself: for OR the nearest
// component, for AND the furthest (both must be near).
func progress(rule business.ThresholdRule, revenue int64, count int32) float64 {
	var revenueFrac, countFrac float64
	if rule.HasRevenueComponent() && *rule.RevenueThresholdCents > 0 {
		revenueFrac = float64(revenue) / float64(*rule.RevenueThresholdCents)
	}
	if rule.HasCountComponent() && *rule.TransactionThreshold > 0 {
		countFrac = float64(count) / float64(*rule.TransactionThreshold)
	}

	switch {
	case !rule.HasRevenueComponent():
		return countFrac
	case !rule.HasCountComponent():
		return revenueFrac
	case rule.Operator == business.OperatorAND:
		if revenueFrac < countFrac {
			return revenueFrac
		}
		return countFrac
	default:
		if revenueFrac > countFrac {
			return revenueFrac
		}
		return countFrac
	}
}
