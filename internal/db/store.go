package db

import (
	"context"
	"encoding/json"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgtype"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/markmiedema/nexuscheck-sub005/internal/logger"
	"github.com/markmiedema/nexuscheck-sub005/internal/types/business"
	"github.com/pkg/errors"
	"go.uber.org/zap"
)

// Store implements Querier against PostgreSQL.
type Store struct {
	pool   *pgxpool.Pool
	logger *zap.Logger
}

// NewStore creates a new Store backed by the given pool.
func NewStore(pool *pgxpool.Pool) *Store {
	return &Store{
		pool:   pool,
		logger: logger.Log,
	}
}

func (s *Store) GetAnalysis(ctx context.Context, id uuid.UUID) (business.Analysis, error) {
	var a business.Analysis
	row := s.pool.QueryRow(ctx,
		`SELECT id, name, as_of FROM analyses WHERE id = $1`, id)
	if err := row.Scan(&a.ID, &a.Name, &a.AsOf); err != nil {
		return business.Analysis{}, errors.Wrap(err, "get analysis")
	}
	return a, nil
}

func (s *Store) ListTransactions(ctx context.Context, analysisID uuid.UUID) ([]business.Transaction, error) {
	rows, err := s.pool.Query(ctx,
		`SELECT id, analysis_id, transaction_date, jurisdiction,
		        gross_cents, taxable_cents, exempt_cents, channel, taxability_code
		 FROM transactions
		 WHERE analysis_id = $1`, analysisID)
	if err != nil {
		return nil, errors.Wrap(err, "list transactions")
	}
	defer rows.Close()

	var txns []business.Transaction
	for rows.Next() {
		var t business.Transaction
		var date pgtype.Date
		if err := rows.Scan(&t.ID, &t.AnalysisID, &date, &t.Jurisdiction,
			&t.GrossCents, &t.TaxableCents, &t.ExemptCents, &t.Channel, &t.TaxabilityCode); err != nil {
			return nil, errors.Wrap(err, "scan transaction")
		}
		t.Date = date.Time
		txns = append(txns, t)
	}
	return txns, errors.Wrap(rows.Err(), "list transactions")
}

func (s *Store) ListPhysicalNexusRecords(ctx context.Context, analysisID uuid.UUID) ([]business.PhysicalNexusRecord, error) {
	rows, err := s.pool.Query(ctx,
		`SELECT id, analysis_id, jurisdiction, established_on, category
		 FROM physical_nexus_records
		 WHERE analysis_id = $1`, analysisID)
	if err != nil {
		return nil, errors.Wrap(err, "list physical nexus records")
	}
	defer rows.Close()

	var recs []business.PhysicalNexusRecord
	for rows.Next() {
		var r business.PhysicalNexusRecord
		var established pgtype.Date
		if err := rows.Scan(&r.ID, &r.AnalysisID, &r.Jurisdiction, &established, &r.Category); err != nil {
			return nil, errors.Wrap(err, "scan physical nexus record")
		}
		r.EstablishedOn = established.Time
		recs = append(recs, r)
	}
	return recs, errors.Wrap(rows.Err(), "list physical nexus records")
}

func (s *Store) ListThresholdRules(ctx context.Context) ([]business.ThresholdRule, error) {
	rows, err := s.pool.Query(ctx,
		`SELECT id, jurisdiction, effective_from, effective_to,
		        revenue_threshold_cents, transaction_threshold, operator,
		        lookback, lookback_source, window_end_month, window_end_day,
		        exclude_marketplace, exclude_non_taxable, exclude_resale
		 FROM threshold_rules`)
	if err != nil {
		return nil, errors.Wrap(err, "list threshold rules")
	}
	defer rows.Close()

	var rules []business.ThresholdRule
	for rows.Next() {
		var r business.ThresholdRule
		var from pgtype.Date
		var to pgtype.Date
		var revenue pgtype.Int8
		var count pgtype.Int4
		var source pgtype.Text
		var endMonth pgtype.Int4
		var endDay pgtype.Int4
		if err := rows.Scan(&r.ID, &r.Jurisdiction, &from, &to,
			&revenue, &count, &r.Operator,
			&r.Lookback, &source, &endMonth, &endDay,
			&r.ExcludeMarketplace, &r.ExcludeNonTaxable, &r.ExcludeResale); err != nil {
			return nil, errors.Wrap(err, "scan threshold rule")
		}
		r.EffectiveFrom = from.Time
		if to.Valid {
			t := to.Time
			r.EffectiveTo = &t
		}
		if revenue.Valid {
			v := revenue.Int64
			r.RevenueThresholdCents = &v
		}
		if count.Valid {
			v := count.Int32
			r.TransactionThreshold = &v
		}
		r.LookbackSource = source.String
		r.WindowEndMonth = time.Month(endMonth.Int32)
		r.WindowEndDay = int(endDay.Int32)
		rules = append(rules, r)
	}
	return rules, errors.Wrap(rows.Err(), "list threshold rules")
}

func (s *Store) ListMarketplaceRules(ctx context.Context) ([]business.MarketplaceRule, error) {
	rows, err := s.pool.Query(ctx,
		`SELECT jurisdiction, effective_from, effective_to,
		        counts_toward_threshold, excluded_from_liability
		 FROM marketplace_rules`)
	if err != nil {
		return nil, errors.Wrap(err, "list marketplace rules")
	}
	defer rows.Close()

	var rules []business.MarketplaceRule
	for rows.Next() {
		var r business.MarketplaceRule
		var from pgtype.Date
		var to pgtype.Date
		if err := rows.Scan(&r.Jurisdiction, &from, &to,
			&r.CountsTowardThreshold, &r.ExcludedFromLiability); err != nil {
			return nil, errors.Wrap(err, "scan marketplace rule")
		}
		r.EffectiveFrom = from.Time
		if to.Valid {
			t := to.Time
			r.EffectiveTo = &t
		}
		rules = append(rules, r)
	}
	return rules, errors.Wrap(rows.Err(), "list marketplace rules")
}

func (s *Store) ListTaxRateConfigs(ctx context.Context) ([]business.TaxRateConfig, error) {
	rows, err := s.pool.Query(ctx,
		`SELECT jurisdiction, effective_from, base_rate, avg_local_rate
		 FROM tax_rate_configs`)
	if err != nil {
		return nil, errors.Wrap(err, "list tax rate configs")
	}
	defer rows.Close()

	var configs []business.TaxRateConfig
	for rows.Next() {
		var c business.TaxRateConfig
		var from pgtype.Date
		if err := rows.Scan(&c.Jurisdiction, &from, &c.BaseRate, &c.AvgLocalRate); err != nil {
			return nil, errors.Wrap(err, "scan tax rate config")
		}
		c.EffectiveFrom = from.Time
		configs = append(configs, c)
	}
	return configs, errors.Wrap(rows.Err(), "list tax rate configs")
}

// ListPenaltyInterestConfigs loads the penalty/interest rule documents. Each
// row stores the interest spec and penalty map as JSON; parsing and
// validation happen here so compute code only ever sees typed variants.
// Versions that fail validation are skipped with a warning and surface later
// as missing reference data for their jurisdiction.
func (s *Store) ListPenaltyInterestConfigs(ctx context.Context) ([]business.PenaltyInterestConfig, error) {
	rows, err := s.pool.Query(ctx,
		`SELECT jurisdiction, effective_from, interest, penalties,
		        combined_max_rate, penalty_waiver
		 FROM penalty_interest_configs`)
	if err != nil {
		return nil, errors.Wrap(err, "list penalty interest configs")
	}
	defer rows.Close()

	var configs []business.PenaltyInterestConfig
	for rows.Next() {
		var c business.PenaltyInterestConfig
		var from pgtype.Date
		var interestJSON []byte
		var penaltiesJSON []byte
		var combinedMax pgtype.Float8
		var waiver pgtype.Text
		if err := rows.Scan(&c.Jurisdiction, &from, &interestJSON, &penaltiesJSON,
			&combinedMax, &waiver); err != nil {
			return nil, errors.Wrap(err, "scan penalty interest config")
		}
		c.EffectiveFrom = from.Time
		if combinedMax.Valid {
			v := combinedMax.Float64
			c.CombinedMaxRate = &v
		}
		c.PenaltyWaiver = business.TriState(waiver.String)
		if c.PenaltyWaiver == "" {
			c.PenaltyWaiver = business.TriStateUnknown
		}

		if err := json.Unmarshal(interestJSON, &c.Interest); err != nil {
			s.logger.Warn("skipping penalty config with malformed interest spec",
				zap.String("jurisdiction", c.Jurisdiction),
				zap.Time("effective_from", c.EffectiveFrom),
				zap.Error(err))
			continue
		}
		if err := json.Unmarshal(penaltiesJSON, &c.Penalties); err != nil {
			s.logger.Warn("skipping penalty config with malformed penalty map",
				zap.String("jurisdiction", c.Jurisdiction),
				zap.Time("effective_from", c.EffectiveFrom),
				zap.Error(err))
			continue
		}
		if err := c.Validate(); err != nil {
			s.logger.Warn("skipping penalty config that failed validation",
				zap.String("jurisdiction", c.Jurisdiction),
				zap.Time("effective_from", c.EffectiveFrom),
				zap.Error(err))
			continue
		}
		configs = append(configs, c)
	}
	return configs, errors.Wrap(rows.Err(), "list penalty interest configs")
}

// ReplaceNexusResults deletes the previous result set for the analysis and
// inserts the new one in a single transaction. A rerun on unchanged inputs
// therefore leaves exactly one row per jurisdiction-year.
func (s *Store) ReplaceNexusResults(ctx context.Context, analysisID uuid.UUID, results []business.NexusYearResult) error {
	tx, err := s.pool.Begin(ctx)
	if err != nil {
		return errors.Wrap(err, "begin replace results")
	}
	defer func() {
		_ = tx.Rollback(ctx)
	}()

	if _, err := tx.Exec(ctx,
		`DELETE FROM nexus_year_results WHERE analysis_id = $1`, analysisID); err != nil {
		return errors.Wrap(err, "delete previous results")
	}

	for _, r := range results {
		liabilityJSON, err := json.Marshal(r.Liability)
		if err != nil {
			return errors.Wrap(err, "marshal liability breakdown")
		}
		if _, err := tx.Exec(ctx,
			`INSERT INTO nexus_year_results (
			    id, analysis_id, jurisdiction, year,
			    classification, status, trigger_date, obligation_start, first_year,
			    gross_cents, taxable_cents, exempt_cents, direct_cents,
			    marketplace_cents, exposure_cents, marketplace_exposure_cents,
			    transaction_count, liability, indeterminate, indeterminate_reason
			 ) VALUES ($1,$2,$3,$4,$5,$6,$7,$8,$9,$10,$11,$12,$13,$14,$15,$16,$17,$18,$19,$20)`,
			r.ID, r.AnalysisID, r.Jurisdiction, r.Year,
			r.Classification, r.Status, timeToNullableDate(r.TriggerDate), timeToNullableDate(r.ObligationStart), r.FirstYear,
			r.GrossCents, r.TaxableCents, r.ExemptCents, r.DirectCents,
			r.MarketplaceCents, r.ExposureCents, r.MarketplaceExposureCents,
			r.TransactionCount, liabilityJSON, r.Indeterminate, r.IndeterminateReason); err != nil {
			return errors.Wrapf(err, "insert result %s %d", r.Jurisdiction, r.Year)
		}
	}

	if err := tx.Commit(ctx); err != nil {
		return errors.Wrap(err, "commit replace results")
	}

	s.logger.Info("replaced nexus results",
		zap.String("analysis_id", analysisID.String()),
		zap.Int("count", len(results)))
	return nil
}

func (s *Store) ListNexusResults(ctx context.Context, analysisID uuid.UUID) ([]business.NexusYearResult, error) {
	rows, err := s.pool.Query(ctx,
		`SELECT id, analysis_id, jurisdiction, year,
		        classification, status, trigger_date, obligation_start, first_year,
		        gross_cents, taxable_cents, exempt_cents, direct_cents,
		        marketplace_cents, exposure_cents, marketplace_exposure_cents,
		        transaction_count, liability, indeterminate, indeterminate_reason
		 FROM nexus_year_results
		 WHERE analysis_id = $1
		 ORDER BY jurisdiction, year`, analysisID)
	if err != nil {
		return nil, errors.Wrap(err, "list nexus results")
	}
	defer rows.Close()

	var results []business.NexusYearResult
	for rows.Next() {
		var r business.NexusYearResult
		var trigger pgtype.Date
		var obligation pgtype.Date
		var liabilityJSON []byte
		var reason pgtype.Text
		if err := rows.Scan(&r.ID, &r.AnalysisID, &r.Jurisdiction, &r.Year,
			&r.Classification, &r.Status, &trigger, &obligation, &r.FirstYear,
			&r.GrossCents, &r.TaxableCents, &r.ExemptCents, &r.DirectCents,
			&r.MarketplaceCents, &r.ExposureCents, &r.MarketplaceExposureCents,
			&r.TransactionCount, &liabilityJSON, &r.Indeterminate, &reason); err != nil {
			return nil, errors.Wrap(err, "scan nexus result")
		}
		if trigger.Valid {
			t := trigger.Time
			r.TriggerDate = &t
		}
		if obligation.Valid {
			t := obligation.Time
			r.ObligationStart = &t
		}
		if err := json.Unmarshal(liabilityJSON, &r.Liability); err != nil {
			return nil, errors.Wrap(err, "unmarshal liability breakdown")
		}
		r.IndeterminateReason = reason.String
		results = append(results, r)
	}
	return results, errors.Wrap(rows.Err(), "list nexus results")
}

// IsNotFound reports whether an error is the pgx no-rows sentinel.
func IsNotFound(err error) bool {
	return errors.Is(err, pgx.ErrNoRows)
}

func timeToNullableDate(t *time.Time) pgtype.Date {
	if t == nil {
		return pgtype.Date{Valid: false}
	}
	return pgtype.Date{Time: *t, Valid: true}
}
