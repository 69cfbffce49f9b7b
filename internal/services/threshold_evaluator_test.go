package services

import (
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/markmiedema/nexuscheck-sub005/internal/types/business"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func date(y int, m time.Month, d int) time.Time {
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}

func testTxn(day time.Time, grossCents int64, channel business.SalesChannel) business.Transaction {
	return business.Transaction{
		ID:             uuid.New(),
		Date:           day,
		Jurisdiction:   "CA",
		GrossCents:     grossCents,
		TaxableCents:   grossCents,
		ExemptCents:    0,
		Channel:        channel,
		TaxabilityCode: business.TaxabilityTaxable,
	}
}

func int64Ptr(v int64) *int64 { return &v }
func int32Ptr(v int32) *int32 { return &v }

func TestEvaluate_ORCrossesOnTransactionCount(t *testing.T) {
	rule := business.ThresholdRule{
		Jurisdiction:          "CA",
		EffectiveFrom:         date(2018, time.January, 1),
		RevenueThresholdCents: int64Ptr(10_000_000), // $100k
		TransactionThreshold:  int32Ptr(200),
		Operator:              business.OperatorOR,
		Lookback:              business.LookbackCalendarCurrentOrPrior,
	}

	// 250 sales of $300 each: revenue stays at $75k, but the count crosses.
	base := date(2023, time.January, 1)
	var txns []business.Transaction
	for i := 0; i < 250; i++ {
		txns = append(txns, testTxn(base.AddDate(0, 0, i), 30_000, business.ChannelDirect))
	}

	evaluator := NewThresholdEvaluator()
	outcome, err := evaluator.Evaluate(rule, nil, txns, 2023)
	require.NoError(t, err)

	assert.True(t, outcome.Met)
	assert.True(t, outcome.CrossingDate.Equal(base.AddDate(0, 0, 199)),
		"crossing should land on the 200th transaction, got %s", outcome.CrossingDate)
	assert.False(t, outcome.Approaching)
}

func TestEvaluate_SingleComponentGovernsAlone(t *testing.T) {
	// AND operator with only a revenue component configured: the revenue
	// component governs by itself.
	rule := business.ThresholdRule{
		Jurisdiction:          "CA",
		EffectiveFrom:         date(2018, time.January, 1),
		RevenueThresholdCents: int64Ptr(5_000_000), // $50k
		Operator:              business.OperatorAND,
		Lookback:              business.LookbackCalendarCurrentOrPrior,
	}

	base := date(2023, time.February, 1)
	var txns []business.Transaction
	for i := 0; i < 60; i++ {
		txns = append(txns, testTxn(base.AddDate(0, 0, i), 100_000, business.ChannelDirect))
	}

	evaluator := NewThresholdEvaluator()
	outcome, err := evaluator.Evaluate(rule, nil, txns, 2023)
	require.NoError(t, err)

	assert.True(t, outcome.Met)
	assert.True(t, outcome.CrossingDate.Equal(base.AddDate(0, 0, 49)),
		"revenue crosses $50k on the 50th $1000 sale")
}

func TestEvaluate_QuarterlyANDBothComponentsRequired(t *testing.T) {
	rule := business.ThresholdRule{
		Jurisdiction:          "TX",
		EffectiveFrom:         date(2018, time.January, 1),
		RevenueThresholdCents: int64Ptr(48_000_000), // $480k
		TransactionThreshold:  int32Ptr(90),
		Operator:              business.OperatorAND,
		Lookback:              business.LookbackQuarterly,
	}

	// $100k in 10 sales per quarter of 2022, $50k in 5 sales in Q1 2023.
	// Every trailing four-quarter window tops out at $400k with 40 sales, so
	// neither component reaches its threshold in any window.
	var txns []business.Transaction
	for q := 0; q < 4; q++ {
		start := date(2022, time.Month(1+3*q), 5)
		for i := 0; i < 10; i++ {
			txns = append(txns, testTxn(start.AddDate(0, 0, i), 1_000_000, business.ChannelDirect))
		}
	}
	for i := 0; i < 5; i++ {
		txns = append(txns, testTxn(date(2023, time.January, 10+i), 1_000_000, business.ChannelDirect))
	}

	evaluator := NewThresholdEvaluator()
	outcome, err := evaluator.Evaluate(rule, nil, txns, 2023)
	require.NoError(t, err)

	assert.False(t, outcome.Met)
	// Revenue came close in the calendar-2022 window but the count did not,
	// and AND approaching tracks the furthest component.
	assert.False(t, outcome.Approaching)
}

func TestEvaluate_FixedAnnualWindowExcludesDayAfterEnd(t *testing.T) {
	rule := business.ThresholdRule{
		Jurisdiction:          "NY",
		EffectiveFrom:         date(2018, time.January, 1),
		RevenueThresholdCents: int64Ptr(12_000_000), // $120k
		TransactionThreshold:  int32Ptr(200),
		Operator:              business.OperatorAND,
		Lookback:              business.LookbackFixedAnnual,
		WindowEndMonth:        time.September,
		WindowEndDay:          30,
	}

	// 199 sales of $600 inside the Oct 1 2022 - Sep 30 2023 window, one more
	// on Oct 1 2023. The extra sale falls a day past the window end, so both
	// components stop one short.
	base := date(2022, time.October, 1)
	var txns []business.Transaction
	for i := 0; i < 199; i++ {
		txns = append(txns, testTxn(base.AddDate(0, 0, i), 60_000, business.ChannelDirect))
	}
	txns = append(txns, testTxn(date(2023, time.October, 1), 60_000, business.ChannelDirect))

	evaluator := NewThresholdEvaluator()
	outcome, err := evaluator.Evaluate(rule, nil, txns, 2023)
	require.NoError(t, err)

	assert.False(t, outcome.Met)
	assert.True(t, outcome.Approaching, "199/200 sales and $119.4k/$120k should report approaching")
}

func TestEvaluate_Rolling12MonthWindow(t *testing.T) {
	rule := business.ThresholdRule{
		Jurisdiction:          "WA",
		EffectiveFrom:         date(2018, time.January, 1),
		RevenueThresholdCents: int64Ptr(12_000_000), // $120k
		Operator:              business.OperatorOR,
		Lookback:              business.LookbackRolling12Months,
	}

	// $10k on the 15th of each month from March 2022 through February 2023.
	// The trailing window ending February 15 2023 holds all twelve sales.
	var txns []business.Transaction
	for i := 0; i < 12; i++ {
		txns = append(txns, testTxn(date(2022, time.March, 15).AddDate(0, i, 0), 1_000_000, business.ChannelDirect))
	}

	evaluator := NewThresholdEvaluator()
	outcome, err := evaluator.Evaluate(rule, nil, txns, 2023)
	require.NoError(t, err)

	assert.True(t, outcome.Met)
	assert.True(t, outcome.CrossingDate.Equal(date(2023, time.February, 15)))
}

func TestEvaluate_MarketplaceCountingRule(t *testing.T) {
	rule := business.ThresholdRule{
		Jurisdiction:          "FL",
		EffectiveFrom:         date(2018, time.January, 1),
		RevenueThresholdCents: int64Ptr(10_000_000), // $100k
		Operator:              business.OperatorOR,
		Lookback:              business.LookbackCalendarCurrentOrPrior,
	}

	txns := []business.Transaction{
		testTxn(date(2023, time.March, 1), 6_000_000, business.ChannelDirect),
		testTxn(date(2023, time.April, 1), 5_000_000, business.ChannelMarketplace),
	}

	tests := []struct {
		name        string
		marketplace *business.MarketplaceRule
		wantMet     bool
	}{
		{
			name:        "marketplace counts toward threshold",
			marketplace: &business.MarketplaceRule{Jurisdiction: "FL", CountsTowardThreshold: true},
			wantMet:     true,
		},
		{
			name:        "marketplace excluded from threshold",
			marketplace: &business.MarketplaceRule{Jurisdiction: "FL", CountsTowardThreshold: false},
			wantMet:     false,
		},
		{
			name:        "no marketplace rule counts everything",
			marketplace: nil,
			wantMet:     true,
		},
	}

	evaluator := NewThresholdEvaluator()
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			outcome, err := evaluator.Evaluate(rule, tt.marketplace, txns, 2023)
			require.NoError(t, err)
			assert.Equal(t, tt.wantMet, outcome.Met)
		})
	}
}

func TestEvaluate_ResaleAndNonTaxableExclusions(t *testing.T) {
	rule := business.ThresholdRule{
		Jurisdiction:         "OH",
		EffectiveFrom:        date(2018, time.January, 1),
		TransactionThreshold: int32Ptr(2),
		Operator:             business.OperatorOR,
		Lookback:             business.LookbackCalendarCurrentOrPrior,
		ExcludeResale:        true,
		ExcludeNonTaxable:    true,
	}

	resale := testTxn(date(2023, time.January, 5), 600_000, business.ChannelDirect)
	resale.TaxabilityCode = business.TaxabilityResale

	exempt := business.Transaction{
		ID:             uuid.New(),
		Date:           date(2023, time.January, 6),
		Jurisdiction:   "OH",
		GrossCents:     500_000,
		TaxableCents:   0,
		ExemptCents:    500_000,
		Channel:        business.ChannelDirect,
		TaxabilityCode: business.TaxabilityExempt,
	}

	taxable1 := testTxn(date(2023, time.January, 7), 100_000, business.ChannelDirect)
	taxable2 := testTxn(date(2023, time.January, 8), 100_000, business.ChannelDirect)

	evaluator := NewThresholdEvaluator()
	outcome, err := evaluator.Evaluate(rule, nil, []business.Transaction{resale, exempt, taxable1, taxable2}, 2023)
	require.NoError(t, err)

	assert.True(t, outcome.Met)
	// Resale and fully-exempt sales do not count, so the second taxable sale
	// is the second qualifying transaction.
	assert.True(t, outcome.CrossingDate.Equal(taxable2.Date))
}

func TestEvaluate_PriorYearCrossingReportedForCurrentYear(t *testing.T) {
	rule := business.ThresholdRule{
		Jurisdiction:          "CO",
		EffectiveFrom:         date(2018, time.January, 1),
		RevenueThresholdCents: int64Ptr(1_000_000), // $10k
		Operator:              business.OperatorOR,
		Lookback:              business.LookbackCalendarPriorYear,
	}

	txns := []business.Transaction{
		testTxn(date(2022, time.June, 1), 600_000, business.ChannelDirect),
		testTxn(date(2022, time.July, 1), 600_000, business.ChannelDirect),
	}

	evaluator := NewThresholdEvaluator()
	outcome, err := evaluator.Evaluate(rule, nil, txns, 2023)
	require.NoError(t, err)

	assert.True(t, outcome.Met)
	assert.True(t, outcome.CrossingDate.Equal(date(2022, time.July, 1)))
}

func TestEvaluate_NoComponentsIsInvalidConfig(t *testing.T) {
	rule := business.ThresholdRule{
		Jurisdiction:  "NV",
		EffectiveFrom: date(2018, time.January, 1),
		Operator:      business.OperatorOR,
		Lookback:      business.LookbackCalendarCurrentOrPrior,
	}

	evaluator := NewThresholdEvaluator()
	_, err := evaluator.Evaluate(rule, nil, nil, 2023)

	var cfgErr *InvalidThresholdConfigError
	require.ErrorAs(t, err, &cfgErr)
	assert.Equal(t, "NV", cfgErr.Jurisdiction)
}
