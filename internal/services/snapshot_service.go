package services

import (
	"context"
	"fmt"
	"sort"
	"time"

	"github.com/google/uuid"
	"github.com/markmiedema/nexuscheck-sub005/internal/db"
	"github.com/markmiedema/nexuscheck-sub005/internal/logger"
	"github.com/markmiedema/nexuscheck-sub005/internal/types/business"
	"go.uber.org/zap"
)

// ReferenceSnapshot is the immutable per-run view of all jurisdiction
// configuration plus the user's physical-presence declarations. It is built
// once per computation and shared by reference across the parallel
// jurisdiction computations; nothing mutates it after Load returns, so no
// locking is needed.
type ReferenceSnapshot struct {
	thresholdRules   map[string][]business.ThresholdRule
	marketplaceRules map[string][]business.MarketplaceRule
	taxRates         map[string][]business.TaxRateConfig
	penaltyConfigs   map[string][]business.PenaltyInterestConfig
	physicalRecords  map[string][]business.PhysicalNexusRecord
}

// ThresholdRule returns the rule version effective at asOf, if any.
func (s *ReferenceSnapshot) ThresholdRule(jurisdiction string, asOf time.Time) (business.ThresholdRule, bool) {
	var found business.ThresholdRule
	ok := false
	for _, r := range s.thresholdRules[jurisdiction] {
		if r.EffectiveFrom.After(asOf) {
			break
		}
		if r.EffectiveTo != nil && r.EffectiveTo.Before(asOf) {
			continue
		}
		found = r
		ok = true
	}
	return found, ok
}

// MarketplaceRule returns the marketplace rule effective at asOf, if any.
func (s *ReferenceSnapshot) MarketplaceRule(jurisdiction string, asOf time.Time) (business.MarketplaceRule, bool) {
	var found business.MarketplaceRule
	ok := false
	for _, r := range s.marketplaceRules[jurisdiction] {
		if r.EffectiveFrom.After(asOf) {
			break
		}
		if r.EffectiveTo != nil && r.EffectiveTo.Before(asOf) {
			continue
		}
		found = r
		ok = true
	}
	return found, ok
}

// TaxRate returns the tax rate configuration effective at asOf, if any.
func (s *ReferenceSnapshot) TaxRate(jurisdiction string, asOf time.Time) (business.TaxRateConfig, bool) {
	var found business.TaxRateConfig
	ok := false
	for _, c := range s.taxRates[jurisdiction] {
		if c.EffectiveFrom.After(asOf) {
			break
		}
		found = c
		ok = true
	}
	return found, ok
}

// PenaltyInterestConfig returns the config version with the latest effective
// date not after asOf, if any.
func (s *ReferenceSnapshot) PenaltyInterestConfig(jurisdiction string, asOf time.Time) (business.PenaltyInterestConfig, bool) {
	var found business.PenaltyInterestConfig
	ok := false
	for _, c := range s.penaltyConfigs[jurisdiction] {
		if c.EffectiveFrom.After(asOf) {
			break
		}
		found = c
		ok = true
	}
	return found, ok
}

// PhysicalRecords returns the physical-presence declarations for a
// jurisdiction, earliest first.
func (s *ReferenceSnapshot) PhysicalRecords(jurisdiction string) []business.PhysicalNexusRecord {
	return s.physicalRecords[jurisdiction]
}

// Jurisdictions returns every jurisdiction that has any reference data or
// physical-presence declaration.
func (s *ReferenceSnapshot) Jurisdictions() []string {
	seen := make(map[string]bool)
	for j := range s.thresholdRules {
		seen[j] = true
	}
	for j := range s.physicalRecords {
		seen[j] = true
	}
	out := make([]string, 0, len(seen))
	for j := range seen {
		out = append(out, j)
	}
	sort.Strings(out)
	return out
}

// SnapshotService builds reference snapshots from the store.
type SnapshotService struct {
	queries db.Querier
	logger  *zap.Logger
}

// NewSnapshotService creates a new snapshot service.
func NewSnapshotService(queries db.Querier) *SnapshotService {
	return &SnapshotService{
		queries: queries,
		logger:  logger.Log,
	}
}

// Load reads every reference table once and assembles the immutable snapshot
// for a run. Threshold rules with unknown lookback strategies fall back to
// the current-or-prior calendar year; the raw source text is preserved for
// audit. Rules that fail structural validation are dropped with a warning and
// surface later as missing reference data for their jurisdiction.
func (s *SnapshotService) Load(ctx context.Context, analysisID uuid.UUID) (*ReferenceSnapshot, error) {
	snap := &ReferenceSnapshot{
		thresholdRules:   make(map[string][]business.ThresholdRule),
		marketplaceRules: make(map[string][]business.MarketplaceRule),
		taxRates:         make(map[string][]business.TaxRateConfig),
		penaltyConfigs:   make(map[string][]business.PenaltyInterestConfig),
		physicalRecords:  make(map[string][]business.PhysicalNexusRecord),
	}

	thresholds, err := s.queries.ListThresholdRules(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to load threshold rules: %w", err)
	}
	for _, r := range thresholds {
		r = normalizeLookback(r, s.logger)
		if err := r.Validate(); err != nil {
			s.logger.Warn("dropping threshold rule that failed validation",
				zap.String("jurisdiction", r.Jurisdiction),
				zap.Error(err))
			continue
		}
		snap.thresholdRules[r.Jurisdiction] = append(snap.thresholdRules[r.Jurisdiction], r)
	}

	marketplace, err := s.queries.ListMarketplaceRules(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to load marketplace rules: %w", err)
	}
	for _, r := range marketplace {
		snap.marketplaceRules[r.Jurisdiction] = append(snap.marketplaceRules[r.Jurisdiction], r)
	}

	rates, err := s.queries.ListTaxRateConfigs(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to load tax rate configs: %w", err)
	}
	for _, c := range rates {
		snap.taxRates[c.Jurisdiction] = append(snap.taxRates[c.Jurisdiction], c)
	}

	penalties, err := s.queries.ListPenaltyInterestConfigs(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to load penalty interest configs: %w", err)
	}
	for _, c := range penalties {
		snap.penaltyConfigs[c.Jurisdiction] = append(snap.penaltyConfigs[c.Jurisdiction], c)
	}

	physical, err := s.queries.ListPhysicalNexusRecords(ctx, analysisID)
	if err != nil {
		return nil, fmt.Errorf("failed to load physical nexus records: %w", err)
	}
	for _, r := range physical {
		snap.physicalRecords[r.Jurisdiction] = append(snap.physicalRecords[r.Jurisdiction], r)
	}

	sortSnapshot(snap)

	s.logger.Info("loaded reference snapshot",
		zap.Int("threshold_jurisdictions", len(snap.thresholdRules)),
		zap.Int("marketplace_jurisdictions", len(snap.marketplaceRules)),
		zap.Int("rate_jurisdictions", len(snap.taxRates)),
		zap.Int("penalty_jurisdictions", len(snap.penaltyConfigs)),
		zap.Int("physical_jurisdictions", len(snap.physicalRecords)))

	return snap, nil
}

// normalizeLookback maps unrecognized lookback strategies to the
// current-or-prior calendar year. This is a deliberate approximation for
// rule feeds describing fiscal-year or otherwise unmapped lookbacks, not a
// verified business rule.
func normalizeLookback(r business.ThresholdRule, log *zap.Logger) business.ThresholdRule {
	switch r.Lookback {
	case business.LookbackCalendarCurrentOrPrior,
		business.LookbackCalendarPriorYear,
		business.LookbackRolling12Months,
		business.LookbackQuarterly,
		business.LookbackFixedAnnual:
		return r
	default:
		log.Warn("unresolved lookback strategy, falling back to calendar year",
			zap.String("jurisdiction", r.Jurisdiction),
			zap.String("lookback", string(r.Lookback)),
			zap.String("source", r.LookbackSource))
		if r.LookbackSource == "" {
			r.LookbackSource = string(r.Lookback)
		}
		r.Lookback = business.LookbackCalendarCurrentOrPrior
		return r
	}
}

func sortSnapshot(snap *ReferenceSnapshot) {
	for j := range snap.thresholdRules {
		rs := snap.thresholdRules[j]
		sort.Slice(rs, func(a, b int) bool { return rs[a].EffectiveFrom.Before(rs[b].EffectiveFrom) })
	}
	for j := range snap.marketplaceRules {
		rs := snap.marketplaceRules[j]
		sort.Slice(rs, func(a, b int) bool { return rs[a].EffectiveFrom.Before(rs[b].EffectiveFrom) })
	}
	for j := range snap.taxRates {
		rs := snap.taxRates[j]
		sort.Slice(rs, func(a, b int) bool { return rs[a].EffectiveFrom.Before(rs[b].EffectiveFrom) })
	}
	for j := range snap.penaltyConfigs {
		rs := snap.penaltyConfigs[j]
		sort.Slice(rs, func(a, b int) bool { return rs[a].EffectiveFrom.Before(rs[b].EffectiveFrom) })
	}
	for j := range snap.physicalRecords {
		rs := snap.physicalRecords[j]
		sort.Slice(rs, func(a, b int) bool { return rs[a].EstablishedOn.Before(rs[b].EstablishedOn) })
	}
}

// NewSnapshot assembles a snapshot directly from in-memory rule sets, for
// callers that already hold the reference data. Unlike Load it performs no
// validation or lookback normalization.
func NewSnapshot(
	thresholds []business.ThresholdRule,
	marketplace []business.MarketplaceRule,
	rates []business.TaxRateConfig,
	penalties []business.PenaltyInterestConfig,
	physical []business.PhysicalNexusRecord,
) *ReferenceSnapshot {
	snap := &ReferenceSnapshot{
		thresholdRules:   make(map[string][]business.ThresholdRule),
		marketplaceRules: make(map[string][]business.MarketplaceRule),
		taxRates:         make(map[string][]business.TaxRateConfig),
		penaltyConfigs:   make(map[string][]business.PenaltyInterestConfig),
		physicalRecords:  make(map[string][]business.PhysicalNexusRecord),
	}
	for _, r := range thresholds {
		snap.thresholdRules[r.Jurisdiction] = append(snap.thresholdRules[r.Jurisdiction], r)
	}
	for _, r := range marketplace {
		snap.marketplaceRules[r.Jurisdiction] = append(snap.marketplaceRules[r.Jurisdiction], r)
	}
	for _, c := range rates {
		snap.taxRates[c.Jurisdiction] = append(snap.taxRates[c.Jurisdiction], c)
	}
	for _, c := range penalties {
		snap.penaltyConfigs[c.Jurisdiction] = append(snap.penaltyConfigs[c.Jurisdiction], c)
	}
	for _, r := range physical {
		snap.physicalRecords[r.Jurisdiction] = append(snap.physicalRecords[r.Jurisdiction], r)
	}
	sortSnapshot(snap)
	return snap
}
