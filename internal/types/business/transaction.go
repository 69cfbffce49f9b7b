package business

import (
	"fmt"
	"time"

	"github.com/google/uuid"
)

// SalesChannel identifies how a sale reached the buyer.
type SalesChannel string

const (
	ChannelDirect      SalesChannel = "direct"
	ChannelMarketplace SalesChannel = "marketplace"
)

// Taxability codes recognized by the threshold exclusion rules.
const (
	TaxabilityTaxable   = "taxable"
	TaxabilityExempt    = "exempt"
	TaxabilityResale    = "resale"
	TaxabilityWholesale = "wholesale"
)

// amountToleranceCents absorbs upstream per-line rounding: gross may differ
// from taxable+exempt by a cent or two without being a data error.
const amountToleranceCents = 2

// Transaction is a single sale as ingested upstream. The engine treats it as
// read-only; negative amounts represent returns.
type Transaction struct {
	ID             uuid.UUID    `json:"id"`
	AnalysisID     uuid.UUID    `json:"analysis_id"`
	Date           time.Time    `json:"date"`
	Jurisdiction   string       `json:"jurisdiction"`
	GrossCents     int64        `json:"gross_amount_cents"`
	TaxableCents   int64        `json:"taxable_amount_cents"`
	ExemptCents    int64        `json:"exempt_amount_cents"`
	Channel        SalesChannel `json:"channel"`
	TaxabilityCode string       `json:"taxability_code"`
}

// IsResale reports whether the transaction carries a resale/wholesale
// taxability code for threshold exclusion purposes.
func (t Transaction) IsResale() bool {
	return t.TaxabilityCode == TaxabilityResale || t.TaxabilityCode == TaxabilityWholesale
}

// CheckIntegrity verifies the gross/taxable/exempt relationship:
// taxable + exempt must equal |gross| within tolerance, and the signs of the
// component amounts must match the sign of gross (returns carry negatives all
// the way through).
func (t Transaction) CheckIntegrity() error {
	sum := t.TaxableCents + t.ExemptCents
	diff := abs64(sum) - abs64(t.GrossCents)
	if diff > amountToleranceCents || diff < -amountToleranceCents {
		return fmt.Errorf("taxable (%d) + exempt (%d) does not reconcile with gross (%d)",
			t.TaxableCents, t.ExemptCents, t.GrossCents)
	}

	if t.GrossCents > 0 && (t.TaxableCents < 0 || t.ExemptCents < 0) {
		return fmt.Errorf("negative component amount on a positive-gross transaction")
	}
	if t.GrossCents < 0 && (t.TaxableCents > 0 || t.ExemptCents > 0) {
		return fmt.Errorf("positive component amount on a negative-gross transaction")
	}

	return nil
}

func abs64(v int64) int64 {
	if v < 0 {
		return -v
	}
	return v
}
