package services

import (
	"sort"

	"github.com/markmiedema/nexuscheck-sub005/internal/types/business"
)

// PartitionTransactions groups the unordered transaction set by jurisdiction
// and returns each partition in ascending date order. Equal dates keep their
// original input order (stable sort), so running totals downstream are
// deterministic. Every downstream component assumes this ordering and none of
// them may assume it of data they did not receive from here.
func PartitionTransactions(txns []business.Transaction) map[string][]business.Transaction {
	partitions := make(map[string][]business.Transaction)
	for _, t := range txns {
		partitions[t.Jurisdiction] = append(partitions[t.Jurisdiction], t)
	}

	for j := range partitions {
		p := partitions[j]
		sort.SliceStable(p, func(a, b int) bool {
			return p[a].Date.Before(p[b].Date)
		})
	}

	return partitions
}

// ValidateTransactions enforces the gross/taxable/exempt invariant across the
// whole input set before any computation starts. The first violation aborts
// the run.
func ValidateTransactions(txns []business.Transaction) error {
	for _, t := range txns {
		if err := t.CheckIntegrity(); err != nil {
			return &DataIntegrityError{TransactionID: t.ID, Reason: err.Error()}
		}
	}
	return nil
}
