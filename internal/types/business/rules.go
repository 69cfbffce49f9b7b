package business

import (
	"fmt"
	"time"

	"github.com/google/uuid"
)

// CombinationOperator joins the revenue and transaction-count threshold
// components. When only one component is configured, the configured component
// governs alone regardless of the stored operator.
type CombinationOperator string

const (
	OperatorAND CombinationOperator = "AND"
	OperatorOR  CombinationOperator = "OR"
)

// LookbackStrategy selects how measurement windows ending in a given year are
// derived for the threshold test.
type LookbackStrategy string

const (
	// LookbackCalendarCurrentOrPrior checks both the prior and the current
	// calendar year. This is also the fallback for jurisdictions whose
	// lookback description could not be mapped; see ThresholdRule.LookbackSource.
	LookbackCalendarCurrentOrPrior LookbackStrategy = "calendar_current_or_prior"

	// LookbackCalendarPriorYear checks the prior calendar year only.
	LookbackCalendarPriorYear LookbackStrategy = "calendar_prior_year"

	// LookbackRolling12Months uses a trailing 12-month window ending at each
	// transaction date, re-evaluated as dates advance.
	LookbackRolling12Months LookbackStrategy = "rolling_12_months"

	// LookbackQuarterly uses the four most-recently-completed calendar
	// quarters as of each analysis quarter.
	LookbackQuarterly LookbackStrategy = "quarterly"

	// LookbackFixedAnnual uses a jurisdiction-specific fixed start/end pair
	// (for example prior October 1 through current September 30).
	LookbackFixedAnnual LookbackStrategy = "fixed_annual"
)

// ThresholdRule is the versioned economic-nexus test for one jurisdiction.
type ThresholdRule struct {
	ID            uuid.UUID  `json:"id"`
	Jurisdiction  string     `json:"jurisdiction"`
	EffectiveFrom time.Time  `json:"effective_from"`
	EffectiveTo   *time.Time `json:"effective_to,omitempty"` // nil = currently active

	RevenueThresholdCents *int64              `json:"revenue_threshold_cents,omitempty"`
	TransactionThreshold  *int32              `json:"transaction_threshold,omitempty"`
	Operator              CombinationOperator `json:"operator"`

	Lookback LookbackStrategy `json:"lookback"`
	// LookbackSource keeps the raw lookback description from the rule feed so
	// fallback resolutions remain auditable.
	LookbackSource string `json:"lookback_source,omitempty"`

	// Fixed-annual window end (month/day within the result year); the window
	// start is the following day one year earlier. Zero values default to
	// September 30.
	WindowEndMonth time.Month `json:"window_end_month,omitempty"`
	WindowEndDay   int        `json:"window_end_day,omitempty"`

	ExcludeMarketplace bool `json:"exclude_marketplace"`
	ExcludeNonTaxable  bool `json:"exclude_non_taxable"`
	ExcludeResale      bool `json:"exclude_resale"`
}

// HasRevenueComponent reports whether a revenue threshold is configured.
func (r ThresholdRule) HasRevenueComponent() bool {
	return r.RevenueThresholdCents != nil
}

// HasCountComponent reports whether a transaction-count threshold is configured.
func (r ThresholdRule) HasCountComponent() bool {
	return r.TransactionThreshold != nil
}

// Validate checks that the rule carries at least one threshold component.
func (r ThresholdRule) Validate() error {
	if !r.HasRevenueComponent() && !r.HasCountComponent() {
		return fmt.Errorf("threshold rule for %s has no configured components", r.Jurisdiction)
	}
	if r.Operator != OperatorAND && r.Operator != OperatorOR {
		return fmt.Errorf("threshold rule for %s has unknown operator %q", r.Jurisdiction, r.Operator)
	}
	return nil
}

// MarketplaceRule carries the two independent marketplace-facilitator
// booleans. CountsTowardThreshold and ExcludedFromLiability are orthogonal:
// a jurisdiction may count marketplace sales toward the threshold while still
// excluding them from the seller's own liability.
type MarketplaceRule struct {
	Jurisdiction  string     `json:"jurisdiction"`
	EffectiveFrom time.Time  `json:"effective_from"`
	EffectiveTo   *time.Time `json:"effective_to,omitempty"`

	CountsTowardThreshold bool `json:"counts_toward_threshold"`
	ExcludedFromLiability bool `json:"excluded_from_liability"`
}

// TaxRateConfig is the blended rate configuration for one jurisdiction.
type TaxRateConfig struct {
	Jurisdiction  string    `json:"jurisdiction"`
	EffectiveFrom time.Time `json:"effective_from"`

	BaseRate float64 `json:"base_rate"` // e.g., 0.0625 for 6.25%
	// AvgLocalRate is the blended average local rate; may be negative in net
	// tax-reduction zones.
	AvgLocalRate float64 `json:"avg_local_rate"`
}

// CombinedRate is the rate applied to exposure sales.
func (c TaxRateConfig) CombinedRate() float64 {
	return c.BaseRate + c.AvgLocalRate
}

// PhysicalPresenceCategory classifies a user-declared physical-presence record.
type PhysicalPresenceCategory string

const (
	PresenceRemoteEmployee PhysicalPresenceCategory = "remote_employee"
	PresenceInventory3PL   PhysicalPresenceCategory = "inventory_3pl"
	PresenceOffice         PhysicalPresenceCategory = "office"
	PresenceOther          PhysicalPresenceCategory = "other"
)

// PhysicalNexusRecord is a user-supplied declaration of physical presence.
type PhysicalNexusRecord struct {
	ID            uuid.UUID                `json:"id"`
	AnalysisID    uuid.UUID                `json:"analysis_id"`
	Jurisdiction  string                   `json:"jurisdiction"`
	EstablishedOn time.Time                `json:"established_on"`
	Category      PhysicalPresenceCategory `json:"category"`
}

// TriState models flags whose source data distinguishes "unknown" from
// true/false. The policy for resolving Unknown lives in the consuming layer.
type TriState string

const (
	TriStateUnknown TriState = "unknown"
	TriStateYes     TriState = "yes"
	TriStateNo      TriState = "no"
)

// Analysis identifies one computation run's input set.
type Analysis struct {
	ID   uuid.UUID `json:"id"`
	Name string    `json:"name"`
	// AsOf is the liability measurement date: interest and penalties accrue
	// from each obligation start date up to this date.
	AsOf time.Time `json:"as_of"`
}
