package services

import (
	"time"

	"github.com/markmiedema/nexuscheck-sub005/internal/types/business"
)

// ObligationStart returns the date collection duty begins for a year.
// Newly established nexus owes from the first day of the month following the
// trigger date; nexus carried from a prior year (or triggered before the year
// began) owes for the full year with no partial-year grace.
func ObligationStart(trigger time.Time, year int) time.Time {
	if trigger.Year() < year {
		return time.Date(year, time.January, 1, 0, 0, 0, 0, time.UTC)
	}
	// time.Date normalizes December+1 into January of the next year.
	return time.Date(trigger.Year(), trigger.Month()+1, 1, 0, 0, 0, 0, time.UTC)
}

// YearTotals accumulates one jurisdiction-year's sales figures, split around
// the obligation start date.
type YearTotals struct {
	GrossCents               int64
	TaxableCents             int64
	ExemptCents              int64
	DirectCents              int64
	MarketplaceCents         int64
	ExposureCents            int64
	MarketplaceExposureCents int64
	Count                    int32
}

// AccumulateYear totals the year's transactions. Exposure is the taxable
// amount of transactions dated on or after the obligation start; taxable
// sales used for the threshold test itself may include pre-obligation
// amounts, so the full-year totals are kept alongside.
func AccumulateYear(txns []business.Transaction, year int, obligationStart *time.Time) YearTotals {
	var totals YearTotals
	for _, t := range txns {
		if t.Date.Year() != year {
			continue
		}

		totals.GrossCents += t.GrossCents
		totals.TaxableCents += t.TaxableCents
		totals.ExemptCents += t.ExemptCents
		totals.Count++

		if t.Channel == business.ChannelMarketplace {
			totals.MarketplaceCents += t.GrossCents
		} else {
			totals.DirectCents += t.GrossCents
		}

		if obligationStart != nil && !t.Date.Before(*obligationStart) {
			totals.ExposureCents += t.TaxableCents
			if t.Channel == business.ChannelMarketplace {
				totals.MarketplaceExposureCents += t.TaxableCents
			}
		}
	}
	return totals
}
