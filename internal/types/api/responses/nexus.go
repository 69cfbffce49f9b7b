package responses

import (
	"github.com/markmiedema/nexuscheck-sub005/internal/types/business"
)

// HealthResponse is the health check payload.
type HealthResponse struct {
	Status string `json:"status"`
}

// ComputeResponse is the payload returned by the compute endpoint and by the
// results read endpoint.
type ComputeResponse struct {
	Object     string                     `json:"object"`
	AnalysisID string                     `json:"analysis_id"`
	Results    []business.NexusYearResult `json:"results"`
	Summary    business.AnalysisSummary   `json:"summary"`
}

// JurisdictionRulesResponse reports the reference configuration effective for
// one jurisdiction at a given date.
type JurisdictionRulesResponse struct {
	Jurisdiction    string                          `json:"jurisdiction"`
	AsOf            string                          `json:"as_of"`
	ThresholdRule   *business.ThresholdRule         `json:"threshold_rule,omitempty"`
	MarketplaceRule *business.MarketplaceRule       `json:"marketplace_rule,omitempty"`
	TaxRate         *business.TaxRateConfig         `json:"tax_rate,omitempty"`
	PenaltyInterest *business.PenaltyInterestConfig `json:"penalty_interest,omitempty"`
}
