package business

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func ratePtr(v float64) *float64 { return &v }

func TestPenaltyRuleValidate(t *testing.T) {
	tests := []struct {
		name    string
		rule    PenaltyRule
		wantErr string
	}{
		{
			name: "valid flat rate",
			rule: PenaltyRule{Type: PenaltyShapeFlat, Flat: &FlatPenalty{Rate: ratePtr(0.05)}},
		},
		{
			name:    "no variant populated",
			rule:    PenaltyRule{Type: PenaltyShapeFlat},
			wantErr: "exactly one variant",
		},
		{
			name: "two variants populated",
			rule: PenaltyRule{
				Type:   PenaltyShapeFlat,
				Flat:   &FlatPenalty{Rate: ratePtr(0.05)},
				PerDay: &PerDayPenalty{AmountCentsPerDay: 100},
			},
			wantErr: "exactly one variant",
		},
		{
			name:    "tag does not match variant",
			rule:    PenaltyRule{Type: PenaltyShapeTiered, Flat: &FlatPenalty{Rate: ratePtr(0.05)}},
			wantErr: "without tiered variant",
		},
		{
			name:    "flat with nothing configured",
			rule:    PenaltyRule{Type: PenaltyShapeFlat, Flat: &FlatPenalty{}},
			wantErr: "neither a rate nor a dollar amount",
		},
		{
			name: "tiered open-ended bracket not last",
			rule: PenaltyRule{
				Type: PenaltyShapeTiered,
				Tiered: &TieredPenalty{Brackets: []TierBracket{
					{ThroughDays: 0, Rate: 0.10},
					{ThroughDays: 30, Rate: 0.02},
				}},
			},
			wantErr: "must be last",
		},
		{
			name: "tiered brackets out of order",
			rule: PenaltyRule{
				Type: PenaltyShapeTiered,
				Tiered: &TieredPenalty{Brackets: []TierBracket{
					{ThroughDays: 60, Rate: 0.02},
					{ThroughDays: 30, Rate: 0.05},
				}},
			},
			wantErr: "out of order",
		},
		{
			name: "per period with bad accrual unit",
			rule: PenaltyRule{
				Type:      PenaltyShapePerPeriod,
				PerPeriod: &PerPeriodPenalty{Rate: 0.005, Period: AccrualPeriod("fortnight")},
			},
			wantErr: "unknown accrual period",
		},
		{
			name:    "unknown type",
			rule:    PenaltyRule{Type: PenaltyRuleType("bogus"), Flat: &FlatPenalty{Rate: ratePtr(0.05)}},
			wantErr: "unknown penalty rule type",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := tt.rule.Validate()
			if tt.wantErr == "" {
				assert.NoError(t, err)
			} else {
				assert.ErrorContains(t, err, tt.wantErr)
			}
		})
	}
}

func TestInterestSpecValidate(t *testing.T) {
	valid := InterestSpec{AnnualRate: 0.08, Compounding: CompoundNone}
	assert.NoError(t, valid.Validate())

	badCompounding := InterestSpec{AnnualRate: 0.08, Compounding: CompoundingMethod("hourly")}
	assert.ErrorContains(t, badCompounding.Validate(), "unknown compounding method")

	end := time.Date(2022, time.January, 1, 0, 0, 0, 0, time.UTC)
	inverted := InterestSpec{
		Compounding: CompoundNone,
		Periods: []InterestPeriod{
			{From: time.Date(2022, time.June, 1, 0, 0, 0, 0, time.UTC), To: &end, AnnualRate: 0.08},
		},
	}
	assert.ErrorContains(t, inverted.Validate(), "ends before it starts")
}

func TestPenaltyInterestConfigValidate(t *testing.T) {
	cfg := PenaltyInterestConfig{
		Jurisdiction:  "CA",
		EffectiveFrom: time.Date(2020, time.January, 1, 0, 0, 0, 0, time.UTC),
		Interest:      InterestSpec{AnnualRate: 0.08, Compounding: CompoundNone},
		Penalties: map[PenaltyCategory]PenaltyRule{
			PenaltyLateFiling: {Type: PenaltyShapeFlat, Flat: &FlatPenalty{Rate: ratePtr(0.05)}},
		},
		PenaltyWaiver: TriStateUnknown,
	}
	assert.NoError(t, cfg.Validate())

	cfg.CombinedMaxRate = ratePtr(-0.1)
	assert.ErrorContains(t, cfg.Validate(), "negative")
}

func TestThresholdRuleValidate(t *testing.T) {
	revenue := int64(10_000_000)
	valid := ThresholdRule{
		Jurisdiction:          "CA",
		RevenueThresholdCents: &revenue,
		Operator:              OperatorOR,
	}
	assert.NoError(t, valid.Validate())

	empty := ThresholdRule{Jurisdiction: "CA", Operator: OperatorAND}
	assert.ErrorContains(t, empty.Validate(), "no configured components")

	badOp := ThresholdRule{
		Jurisdiction:          "CA",
		RevenueThresholdCents: &revenue,
		Operator:              CombinationOperator("XOR"),
	}
	assert.ErrorContains(t, badOp.Validate(), "unknown operator")
}
