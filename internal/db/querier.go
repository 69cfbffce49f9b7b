package db

import (
	"context"

	"github.com/google/uuid"
	"github.com/markmiedema/nexuscheck-sub005/internal/types/business"
)

// Querier is the data-access contract the nexus engine consumes. The engine
// reads everything up front, computes in memory, and writes the full result
// set back in one transactional replace.
type Querier interface {
	// GetAnalysis returns the analysis run metadata.
	GetAnalysis(ctx context.Context, id uuid.UUID) (business.Analysis, error)

	// ListTransactions returns the unordered transaction set for an analysis.
	// Ordering is the engine's responsibility.
	ListTransactions(ctx context.Context, analysisID uuid.UUID) ([]business.Transaction, error)

	// ListPhysicalNexusRecords returns user-declared physical presence records.
	ListPhysicalNexusRecords(ctx context.Context, analysisID uuid.UUID) ([]business.PhysicalNexusRecord, error)

	// ListThresholdRules returns every threshold rule version for every
	// jurisdiction; the snapshot resolves effective versions per date.
	ListThresholdRules(ctx context.Context) ([]business.ThresholdRule, error)

	// ListMarketplaceRules returns every marketplace rule version.
	ListMarketplaceRules(ctx context.Context) ([]business.MarketplaceRule, error)

	// ListTaxRateConfigs returns every tax rate configuration version.
	ListTaxRateConfigs(ctx context.Context) ([]business.TaxRateConfig, error)

	// ListPenaltyInterestConfigs returns every penalty/interest configuration
	// version, parsed and validated.
	ListPenaltyInterestConfigs(ctx context.Context) ([]business.PenaltyInterestConfig, error)

	// ReplaceNexusResults atomically replaces the full result set for an
	// analysis (delete + insert in one transaction), so reruns are idempotent.
	ReplaceNexusResults(ctx context.Context, analysisID uuid.UUID, results []business.NexusYearResult) error

	// ListNexusResults returns the persisted result set for an analysis.
	ListNexusResults(ctx context.Context, analysisID uuid.UUID) ([]business.NexusYearResult, error)
}
