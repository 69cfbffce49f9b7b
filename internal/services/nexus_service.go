package services

import (
	"context"
	"fmt"
	"sort"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/markmiedema/nexuscheck-sub005/internal/db"
	"github.com/markmiedema/nexuscheck-sub005/internal/logger"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"github.com/markmiedema/nexuscheck-sub005/internal/types/business"
)

// NexusService orchestrates a full computation run: load, validate,
// partition, evaluate each jurisdiction's year timeline, and persist the
// replacement result set.
type NexusService struct {
	queries     db.Querier
	snapshots   *SnapshotService
	evaluator   *ThresholdEvaluator
	liability   *LiabilityCalculator
	logger      *zap.Logger
	parallelism int
}

// NewNexusService creates a new nexus computation service.
func NewNexusService(queries db.Querier, parallelism int) *NexusService {
	if parallelism < 1 {
		parallelism = 1
	}
	return &NexusService{
		queries:     queries,
		snapshots:   NewSnapshotService(queries),
		evaluator:   NewThresholdEvaluator(),
		liability:   NewLiabilityCalculator(NewPenaltyInterestEngine()),
		logger:      logger.Log,
		parallelism: parallelism,
	}
}

// ComputeResult is the outcome of one computation run.
type ComputeResult struct {
	Results []business.NexusYearResult `json:"results"`
	Summary business.AnalysisSummary   `json:"summary"`
}

// ComputeAnalysis runs the full pipeline for one analysis. Jurisdictions are
// computed in parallel; a jurisdiction whose reference data cannot be
// resolved yields indeterminate rows without failing the run, while a
// transaction integrity violation aborts before any computation starts.
func (s *NexusService) ComputeAnalysis(ctx context.Context, analysisID uuid.UUID) (*ComputeResult, error) {
	start := time.Now()

	analysis, err := s.queries.GetAnalysis(ctx, analysisID)
	if err != nil {
		return nil, err
	}

	txns, err := s.queries.ListTransactions(ctx, analysisID)
	if err != nil {
		return nil, fmt.Errorf("failed to load transactions: %w", err)
	}
	if err := ValidateTransactions(txns); err != nil {
		return nil, err
	}

	snap, err := s.snapshots.Load(ctx, analysisID)
	if err != nil {
		return nil, err
	}

	partitions := PartitionTransactions(txns)
	jurisdictions := activeJurisdictions(partitions, snap)

	var (
		mu      sync.Mutex
		results []business.NexusYearResult
	)

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(s.parallelism)
	for _, jurisdiction := range jurisdictions {
		g.Go(func() error {
			if err := gctx.Err(); err != nil {
				return err
			}
			rows := s.computeJurisdiction(analysis, snap, jurisdiction, partitions[jurisdiction])
			mu.Lock()
			results = append(results, rows...)
			mu.Unlock()
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}

	sort.Slice(results, func(a, b int) bool {
		if results[a].Jurisdiction != results[b].Jurisdiction {
			return results[a].Jurisdiction < results[b].Jurisdiction
		}
		return results[a].Year < results[b].Year
	})

	if err := s.queries.ReplaceNexusResults(ctx, analysisID, results); err != nil {
		return nil, fmt.Errorf("failed to persist results: %w", err)
	}

	summary := summarize(results)
	s.logger.Info("computation run complete",
		zap.String("analysis_id", analysisID.String()),
		zap.Int("jurisdictions", len(jurisdictions)),
		zap.Int("result_rows", len(results)),
		zap.Int64("total_liability_cents", summary.TotalLiabilityCents),
		zap.Duration("elapsed", time.Since(start)))

	return &ComputeResult{Results: results, Summary: summary}, nil
}

// GetResults returns the persisted result set with its summary.
func (s *NexusService) GetResults(ctx context.Context, analysisID uuid.UUID) (*ComputeResult, error) {
	results, err := s.queries.ListNexusResults(ctx, analysisID)
	if err != nil {
		return nil, err
	}
	return &ComputeResult{Results: results, Summary: summarize(results)}, nil
}

// activeJurisdictions is the union of jurisdictions with transactions and
// jurisdictions with physical-presence declarations, sorted for determinism.
func activeJurisdictions(partitions map[string][]business.Transaction, snap *ReferenceSnapshot) []string {
	seen := make(map[string]bool, len(partitions))
	for j := range partitions {
		seen[j] = true
	}
	for _, j := range snap.Jurisdictions() {
		if len(snap.PhysicalRecords(j)) > 0 {
			seen[j] = true
		}
	}
	out := make([]string, 0, len(seen))
	for j := range seen {
		out = append(out, j)
	}
	sort.Strings(out)
	return out
}

// computeJurisdiction walks the jurisdiction's year timeline in order,
// carrying established nexus forward. Scoped reference-data failures produce
// indeterminate rows for the affected years and the walk continues.
func (s *NexusService) computeJurisdiction(
	analysis business.Analysis,
	snap *ReferenceSnapshot,
	jurisdiction string,
	txns []business.Transaction,
) []business.NexusYearResult {
	physical := snap.PhysicalRecords(jurisdiction)
	firstYear, lastYear, ok := yearHorizon(txns, physical, analysis.AsOf)
	if !ok {
		return nil
	}

	var (
		results []business.NexusYearResult
		// Once established, nexus persists for the rest of the horizon.
		established      bool
		establishedOn    time.Time
		establishedClass business.NexusClassification
	)

	for year := firstYear; year <= lastYear; year++ {
		row := business.NexusYearResult{
			ID:             uuid.New(),
			AnalysisID:     analysis.ID,
			Jurisdiction:   jurisdiction,
			Year:           year,
			Classification: business.NexusNone,
			Status:         business.StatusNoNexus,
		}

		physicalTrigger, hasPhysical := physicalTriggerForYear(physical, year)

		var economicTrigger time.Time
		hasEconomic := false
		approaching := false

		rule, hasRule := snap.ThresholdRule(jurisdiction, endOfYear(year))
		if hasRule {
			var mktPtr *business.MarketplaceRule
			if mkt, ok := snap.MarketplaceRule(jurisdiction, endOfYear(year)); ok {
				mktPtr = &mkt
			}
			outcome, err := s.evaluator.Evaluate(rule, mktPtr, txns, year)
			if err != nil {
				s.logger.Warn("threshold evaluation failed",
					zap.String("jurisdiction", jurisdiction),
					zap.Int("year", year),
					zap.Error(err))
				row.Indeterminate = true
				row.IndeterminateReason = err.Error()
				results = append(results, row)
				continue
			}
			if outcome.Met {
				// The crossing keeps its real date even when it falls in a
				// prior-year window; ObligationStart maps such triggers to
				// Jan 1 of the result year.
				hasEconomic = true
				economicTrigger = outcome.CrossingDate
			}
			approaching = outcome.Approaching
		} else if len(txns) > 0 && !established {
			// Sales into a jurisdiction with no resolvable threshold rule
			// cannot be classified.
			row.Indeterminate = true
			row.IndeterminateReason = (&MissingReferenceDataError{
				Jurisdiction: jurisdiction,
				Kind:         RefThresholdRule,
				AsOf:         endOfYear(year),
			}).Error()
			results = append(results, row)
			continue
		}

		switch {
		case hasPhysical && hasEconomic:
			row.Classification = business.NexusBoth
		case hasPhysical:
			row.Classification = business.NexusPhysical
		case hasEconomic:
			row.Classification = business.NexusEconomic
		}

		trigger, triggered := earliestTrigger(physicalTrigger, hasPhysical, economicTrigger, hasEconomic)

		switch {
		case established:
			// Carried forward from a prior year. The original establishment
			// date stays on the row; the obligation covers the full year.
			row.Status = business.StatusEstablished
			row.FirstYear = false
			if row.Classification == business.NexusNone {
				row.Classification = establishedClass
			}
			t := establishedOn
			row.TriggerDate = &t
			obligation := time.Date(year, time.January, 1, 0, 0, 0, 0, time.UTC)
			row.ObligationStart = &obligation
			s.fillYearTotals(&row, snap, txns, year, &obligation, analysis.AsOf)

		case triggered:
			established = true
			establishedOn = trigger
			establishedClass = row.Classification
			row.Status = business.StatusEstablished
			row.FirstYear = true
			t := trigger
			row.TriggerDate = &t
			obligation := ObligationStart(trigger, year)
			row.ObligationStart = &obligation
			s.fillYearTotals(&row, snap, txns, year, &obligation, analysis.AsOf)

		default:
			if approaching {
				row.Status = business.StatusApproaching
			}
			s.fillYearTotals(&row, snap, txns, year, nil, analysis.AsOf)
		}

		results = append(results, row)
	}

	return results
}

// fillYearTotals accumulates the year's sales figures and, when an obligation
// exists, the liability breakdown. Missing reference data during liability
// calculation marks the row indeterminate rather than failing the run.
func (s *NexusService) fillYearTotals(
	row *business.NexusYearResult,
	snap *ReferenceSnapshot,
	txns []business.Transaction,
	year int,
	obligationStart *time.Time,
	asOf time.Time,
) {
	totals := AccumulateYear(txns, year, obligationStart)
	row.GrossCents = totals.GrossCents
	row.TaxableCents = totals.TaxableCents
	row.ExemptCents = totals.ExemptCents
	row.DirectCents = totals.DirectCents
	row.MarketplaceCents = totals.MarketplaceCents
	row.ExposureCents = totals.ExposureCents
	row.MarketplaceExposureCents = totals.MarketplaceExposureCents
	row.TransactionCount = totals.Count

	if obligationStart == nil {
		return
	}

	breakdown, err := s.liability.Calculate(snap, row.Jurisdiction, totals, *obligationStart, asOf)
	if err != nil {
		s.logger.Warn("liability calculation failed",
			zap.String("jurisdiction", row.Jurisdiction),
			zap.Int("year", year),
			zap.Error(err))
		row.Indeterminate = true
		row.IndeterminateReason = err.Error()
		return
	}
	row.Liability = breakdown

	if err := row.CheckBounds(); err != nil {
		s.logger.Error("result row failed bounds check",
			zap.String("jurisdiction", row.Jurisdiction),
			zap.Int("year", year),
			zap.Error(err))
	}
}

// yearHorizon is the inclusive year range a jurisdiction timeline covers:
// from the earliest transaction or physical-presence date through the
// analysis as-of year.
func yearHorizon(txns []business.Transaction, physical []business.PhysicalNexusRecord, asOf time.Time) (int, int, bool) {
	first := 0
	for _, t := range txns {
		if first == 0 || t.Date.Year() < first {
			first = t.Date.Year()
		}
	}
	for _, p := range physical {
		if first == 0 || p.EstablishedOn.Year() < first {
			first = p.EstablishedOn.Year()
		}
	}
	if first == 0 {
		return 0, 0, false
	}
	last := asOf.Year()
	if last < first {
		last = first
	}
	return first, last, true
}

// physicalTriggerForYear returns the earliest physical-presence date active in
// or before the year. Records are sorted by EstablishedOn ascending.
func physicalTriggerForYear(records []business.PhysicalNexusRecord, year int) (time.Time, bool) {
	for _, r := range records {
		if r.EstablishedOn.Year() <= year {
			return r.EstablishedOn, true
		}
	}
	return time.Time{}, false
}

func earliestTrigger(physical time.Time, hasPhysical bool, economic time.Time, hasEconomic bool) (time.Time, bool) {
	switch {
	case hasPhysical && hasEconomic:
		if physical.Before(economic) {
			return physical, true
		}
		return economic, true
	case hasPhysical:
		return physical, true
	case hasEconomic:
		return economic, true
	default:
		return time.Time{}, false
	}
}

func endOfYear(year int) time.Time {
	return time.Date(year, time.December, 31, 0, 0, 0, 0, time.UTC)
}

func summarize(results []business.NexusYearResult) business.AnalysisSummary {
	var summary business.AnalysisSummary
	jurisdictions := make(map[string]bool)
	withNexus := make(map[string]bool)
	indeterminate := make(map[string]bool)

	for _, r := range results {
		jurisdictions[r.Jurisdiction] = true
		if r.Status == business.StatusEstablished {
			withNexus[r.Jurisdiction] = true
		}
		if r.Indeterminate {
			indeterminate[r.Jurisdiction] = true
		}
		summary.TotalLiabilityCents += r.Liability.TotalCents
	}

	summary.JurisdictionsEvaluated = len(jurisdictions)
	summary.JurisdictionsWithNexus = len(withNexus)
	summary.IndeterminateJurisdictions = len(indeterminate)
	return summary
}
