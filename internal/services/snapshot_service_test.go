package services

import (
	"context"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/markmiedema/nexuscheck-sub005/internal/mocks"
	"github.com/markmiedema/nexuscheck-sub005/internal/types/business"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/mock/gomock"
)

func TestSnapshot_ResolvesLatestEffectiveVersion(t *testing.T) {
	v2020 := business.ThresholdRule{
		Jurisdiction:          "CA",
		EffectiveFrom:         date(2020, time.January, 1),
		RevenueThresholdCents: int64Ptr(10_000_000),
		Operator:              business.OperatorOR,
		Lookback:              business.LookbackCalendarCurrentOrPrior,
	}
	v2022 := business.ThresholdRule{
		Jurisdiction:          "CA",
		EffectiveFrom:         date(2022, time.January, 1),
		RevenueThresholdCents: int64Ptr(50_000_000),
		Operator:              business.OperatorOR,
		Lookback:              business.LookbackCalendarCurrentOrPrior,
	}

	// Input order is deliberately newest-first; the snapshot sorts.
	snap := NewSnapshot([]business.ThresholdRule{v2022, v2020}, nil, nil, nil, nil)

	rule, ok := snap.ThresholdRule("CA", date(2021, time.June, 1))
	require.True(t, ok)
	assert.Equal(t, int64(10_000_000), *rule.RevenueThresholdCents)

	rule, ok = snap.ThresholdRule("CA", date(2022, time.June, 1))
	require.True(t, ok)
	assert.Equal(t, int64(50_000_000), *rule.RevenueThresholdCents)

	_, ok = snap.ThresholdRule("CA", date(2019, time.June, 1))
	assert.False(t, ok, "no version effective before the first EffectiveFrom")

	_, ok = snap.ThresholdRule("NV", date(2022, time.June, 1))
	assert.False(t, ok, "unknown jurisdiction resolves nothing")
}

func TestSnapshot_HonorsEffectiveTo(t *testing.T) {
	retired := date(2021, time.December, 31)
	rule := business.ThresholdRule{
		Jurisdiction:          "CA",
		EffectiveFrom:         date(2020, time.January, 1),
		EffectiveTo:           &retired,
		RevenueThresholdCents: int64Ptr(10_000_000),
		Operator:              business.OperatorOR,
		Lookback:              business.LookbackCalendarCurrentOrPrior,
	}

	snap := NewSnapshot([]business.ThresholdRule{rule}, nil, nil, nil, nil)

	_, ok := snap.ThresholdRule("CA", date(2021, time.June, 1))
	assert.True(t, ok)

	_, ok = snap.ThresholdRule("CA", date(2022, time.June, 1))
	assert.False(t, ok, "retired versions do not resolve past their end date")
}

func TestLoad_UnknownLookbackFallsBackToCalendarYear(t *testing.T) {
	ctrl := gomock.NewController(t)
	querier := mocks.NewMockQuerier(ctrl)
	analysisID := uuid.New()

	odd := business.ThresholdRule{
		Jurisdiction:          "PA",
		EffectiveFrom:         date(2019, time.July, 1),
		RevenueThresholdCents: int64Ptr(10_000_000),
		Operator:              business.OperatorOR,
		Lookback:              business.LookbackStrategy("fiscal_year_ending_june"),
	}

	querier.EXPECT().ListThresholdRules(gomock.Any()).Return([]business.ThresholdRule{odd}, nil)
	querier.EXPECT().ListMarketplaceRules(gomock.Any()).Return(nil, nil)
	querier.EXPECT().ListTaxRateConfigs(gomock.Any()).Return(nil, nil)
	querier.EXPECT().ListPenaltyInterestConfigs(gomock.Any()).Return(nil, nil)
	querier.EXPECT().ListPhysicalNexusRecords(gomock.Any(), analysisID).Return(nil, nil)

	snap, err := NewSnapshotService(querier).Load(context.Background(), analysisID)
	require.NoError(t, err)

	rule, ok := snap.ThresholdRule("PA", date(2020, time.June, 1))
	require.True(t, ok)
	assert.Equal(t, business.LookbackCalendarCurrentOrPrior, rule.Lookback)
	assert.Equal(t, "fiscal_year_ending_june", rule.LookbackSource,
		"the raw strategy text survives for audit")
}

func TestLoad_DropsRulesThatFailValidation(t *testing.T) {
	ctrl := gomock.NewController(t)
	querier := mocks.NewMockQuerier(ctrl)
	analysisID := uuid.New()

	empty := business.ThresholdRule{
		Jurisdiction:  "WY",
		EffectiveFrom: date(2019, time.July, 1),
		Operator:      business.OperatorOR,
		Lookback:      business.LookbackCalendarCurrentOrPrior,
	}

	querier.EXPECT().ListThresholdRules(gomock.Any()).Return([]business.ThresholdRule{empty}, nil)
	querier.EXPECT().ListMarketplaceRules(gomock.Any()).Return(nil, nil)
	querier.EXPECT().ListTaxRateConfigs(gomock.Any()).Return(nil, nil)
	querier.EXPECT().ListPenaltyInterestConfigs(gomock.Any()).Return(nil, nil)
	querier.EXPECT().ListPhysicalNexusRecords(gomock.Any(), analysisID).Return(nil, nil)

	snap, err := NewSnapshotService(querier).Load(context.Background(), analysisID)
	require.NoError(t, err)

	_, ok := snap.ThresholdRule("WY", date(2022, time.June, 1))
	assert.False(t, ok, "a rule with no components never resolves")
}

func TestSnapshot_JurisdictionsUnion(t *testing.T) {
	snap := NewSnapshot(
		[]business.ThresholdRule{{
			Jurisdiction:          "CA",
			EffectiveFrom:         date(2020, time.January, 1),
			RevenueThresholdCents: int64Ptr(1),
			Operator:              business.OperatorOR,
			Lookback:              business.LookbackCalendarCurrentOrPrior,
		}},
		nil, nil, nil,
		[]business.PhysicalNexusRecord{{
			Jurisdiction:  "TX",
			EstablishedOn: date(2021, time.May, 1),
			Category:      business.PresenceOffice,
		}})

	assert.Equal(t, []string{"CA", "TX"}, snap.Jurisdictions())
}
