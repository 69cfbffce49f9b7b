package services

import (
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/markmiedema/nexuscheck-sub005/internal/types/business"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestPartitionTransactions_GroupsAndSorts(t *testing.T) {
	ca1 := testTxn(date(2022, time.March, 10), 100, business.ChannelDirect)
	ca2 := testTxn(date(2022, time.January, 5), 200, business.ChannelDirect)
	tx1 := testTxn(date(2022, time.June, 1), 300, business.ChannelDirect)
	tx1.Jurisdiction = "TX"

	partitions := PartitionTransactions([]business.Transaction{ca1, ca2, tx1})

	require.Len(t, partitions, 2)
	require.Len(t, partitions["CA"], 2)
	require.Len(t, partitions["TX"], 1)

	assert.Equal(t, ca2.ID, partitions["CA"][0].ID, "earlier date sorts first")
	assert.Equal(t, ca1.ID, partitions["CA"][1].ID)
}

func TestPartitionTransactions_EqualDatesKeepInputOrder(t *testing.T) {
	day := date(2022, time.March, 10)
	first := testTxn(day, 100, business.ChannelDirect)
	second := testTxn(day, 200, business.ChannelDirect)
	third := testTxn(day, 300, business.ChannelDirect)

	partitions := PartitionTransactions([]business.Transaction{first, second, third})

	require.Len(t, partitions["CA"], 3)
	assert.Equal(t, first.ID, partitions["CA"][0].ID)
	assert.Equal(t, second.ID, partitions["CA"][1].ID)
	assert.Equal(t, third.ID, partitions["CA"][2].ID)
}

func TestValidateTransactions(t *testing.T) {
	good := testTxn(date(2022, time.March, 10), 100_000, business.ChannelDirect)

	bad := business.Transaction{
		ID:           uuid.New(),
		Date:         date(2022, time.April, 1),
		Jurisdiction: "CA",
		GrossCents:   100_000,
		TaxableCents: 40_000,
		ExemptCents:  10_000, // does not reconcile with gross
		Channel:      business.ChannelDirect,
	}

	assert.NoError(t, ValidateTransactions([]business.Transaction{good}))

	err := ValidateTransactions([]business.Transaction{good, bad})
	var integrityErr *DataIntegrityError
	require.ErrorAs(t, err, &integrityErr)
	assert.Equal(t, bad.ID, integrityErr.TransactionID)
}
