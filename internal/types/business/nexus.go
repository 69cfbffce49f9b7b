package business

import (
	"fmt"
	"time"

	"github.com/google/uuid"
)

// NexusClassification records which trigger kinds apply to a jurisdiction-year.
type NexusClassification string

const (
	NexusNone     NexusClassification = "none"
	NexusPhysical NexusClassification = "physical"
	NexusEconomic NexusClassification = "economic"
	NexusBoth     NexusClassification = "both"
)

// NexusStatus is the per-year state-machine position. Approaching is
// informational only and never creates an obligation.
type NexusStatus string

const (
	StatusNoNexus     NexusStatus = "none"
	StatusApproaching NexusStatus = "approaching"
	StatusEstablished NexusStatus = "established"
)

// LiabilityBreakdown itemizes the estimated liability for one
// jurisdiction-year.
type LiabilityBreakdown struct {
	BaseTaxCents  int64                     `json:"base_tax_cents"`
	InterestCents int64                     `json:"interest_cents"`
	PenaltyCents  map[PenaltyCategory]int64 `json:"penalty_cents,omitempty"`
	// PenaltyTotalCents is the summed penalties after the jurisdiction-wide
	// combined cap; the per-category map is reported uncapped.
	PenaltyTotalCents int64 `json:"penalty_total_cents"`
	TotalCents        int64 `json:"total_cents"`
}

// NexusYearResult is the engine's output unit: one jurisdiction, one year.
// A computation run fully supersedes the prior result set for the same
// analysis (replace-all keyed by analysis+jurisdiction+year).
type NexusYearResult struct {
	ID           uuid.UUID `json:"id"`
	AnalysisID   uuid.UUID `json:"analysis_id"`
	Jurisdiction string    `json:"jurisdiction"`
	Year         int       `json:"year"`

	Classification  NexusClassification `json:"classification"`
	Status          NexusStatus         `json:"status"`
	TriggerDate     *time.Time          `json:"trigger_date,omitempty"`
	ObligationStart *time.Time          `json:"obligation_start,omitempty"`
	// FirstYear marks the establishing year; carried years report false and a
	// full-year obligation.
	FirstYear bool `json:"first_year_of_nexus"`

	GrossCents               int64 `json:"gross_sales_cents"`
	TaxableCents             int64 `json:"taxable_sales_cents"`
	ExemptCents              int64 `json:"exempt_sales_cents"`
	DirectCents              int64 `json:"direct_sales_cents"`
	MarketplaceCents         int64 `json:"marketplace_sales_cents"`
	ExposureCents            int64 `json:"exposure_sales_cents"`
	MarketplaceExposureCents int64 `json:"marketplace_exposure_cents"`
	TransactionCount         int32 `json:"transaction_count"`

	Liability LiabilityBreakdown `json:"liability"`

	// Indeterminate marks jurisdiction-years whose reference data could not
	// be resolved; the liability figures are not meaningful when set.
	Indeterminate       bool   `json:"indeterminate,omitempty"`
	IndeterminateReason string `json:"indeterminate_reason,omitempty"`
}

// CheckBounds enforces exposure ≤ taxable ≤ gross (absolute values; returns
// make the raw totals signed).
func (r NexusYearResult) CheckBounds() error {
	if abs64(r.ExposureCents) > abs64(r.TaxableCents) {
		return fmt.Errorf("%s %d: exposure %d exceeds taxable %d",
			r.Jurisdiction, r.Year, r.ExposureCents, r.TaxableCents)
	}
	if abs64(r.TaxableCents) > abs64(r.GrossCents)+amountToleranceCents {
		return fmt.Errorf("%s %d: taxable %d exceeds gross %d",
			r.Jurisdiction, r.Year, r.TaxableCents, r.GrossCents)
	}
	return nil
}

// AnalysisSummary aggregates one computation run.
type AnalysisSummary struct {
	TotalLiabilityCents        int64 `json:"total_liability_cents"`
	JurisdictionsEvaluated     int   `json:"jurisdictions_evaluated"`
	JurisdictionsWithNexus     int   `json:"jurisdictions_with_nexus"`
	IndeterminateJurisdictions int   `json:"indeterminate_jurisdictions"`
}
