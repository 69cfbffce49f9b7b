package services

import (
	"testing"
	"time"

	"github.com/markmiedema/nexuscheck-sub005/internal/types/business"
	"github.com/stretchr/testify/assert"
)

func TestObligationStart(t *testing.T) {
	tests := []struct {
		name     string
		trigger  time.Time
		year     int
		expected time.Time
	}{
		{
			name:     "mid-year trigger starts the following month",
			trigger:  date(2022, time.June, 15),
			year:     2022,
			expected: date(2022, time.July, 1),
		},
		{
			name:     "december trigger rolls into january",
			trigger:  date(2022, time.December, 5),
			year:     2022,
			expected: date(2023, time.January, 1),
		},
		{
			name:     "carried nexus owes the full year",
			trigger:  date(2021, time.April, 10),
			year:     2022,
			expected: date(2022, time.January, 1),
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := ObligationStart(tt.trigger, tt.year)
			assert.True(t, got.Equal(tt.expected), "got %s, want %s", got, tt.expected)
		})
	}
}

func TestAccumulateYear(t *testing.T) {
	txns := []business.Transaction{
		testTxn(date(2022, time.February, 1), 100_000, business.ChannelDirect),
		testTxn(date(2022, time.May, 1), 200_000, business.ChannelMarketplace),
		testTxn(date(2022, time.August, 1), 300_000, business.ChannelDirect),
		// Outside the year.
		testTxn(date(2023, time.January, 5), 999_999, business.ChannelDirect),
	}
	// Partially exempt sale.
	txns[2].TaxableCents = 250_000
	txns[2].ExemptCents = 50_000

	obligation := date(2022, time.April, 1)
	totals := AccumulateYear(txns, 2022, &obligation)

	assert.Equal(t, int64(600_000), totals.GrossCents)
	assert.Equal(t, int64(550_000), totals.TaxableCents)
	assert.Equal(t, int64(50_000), totals.ExemptCents)
	assert.Equal(t, int64(400_000), totals.DirectCents)
	assert.Equal(t, int64(200_000), totals.MarketplaceCents)
	assert.Equal(t, int32(3), totals.Count)

	// Only the May and August sales postdate the obligation start.
	assert.Equal(t, int64(450_000), totals.ExposureCents)
	assert.Equal(t, int64(200_000), totals.MarketplaceExposureCents)
}

func TestAccumulateYear_NoObligation(t *testing.T) {
	txns := []business.Transaction{
		testTxn(date(2022, time.February, 1), 100_000, business.ChannelDirect),
	}

	totals := AccumulateYear(txns, 2022, nil)

	assert.Equal(t, int64(100_000), totals.GrossCents)
	assert.Equal(t, int64(0), totals.ExposureCents)
}
