package services

import (
	"fmt"
	"time"

	"github.com/google/uuid"
)

// Reference-data kinds used in MissingReferenceDataError.
const (
	RefThresholdRule   = "threshold_rule"
	RefMarketplaceRule = "marketplace_rule"
	RefTaxRate         = "tax_rate"
	RefPenaltyInterest = "penalty_interest"
)

// MissingReferenceDataError means no configuration version exists at or
// before the requested date for a jurisdiction. It is scoped to that
// jurisdiction: the result row is marked indeterminate and the batch
// continues.
type MissingReferenceDataError struct {
	Jurisdiction string
	Kind         string
	AsOf         time.Time
}

func (e *MissingReferenceDataError) Error() string {
	return fmt.Sprintf("no %s configuration for %s effective at %s",
		e.Kind, e.Jurisdiction, e.AsOf.Format("2006-01-02"))
}

// InvalidThresholdConfigError means a jurisdiction's threshold rule cannot be
// evaluated (for example an operator with no configured components). Scoped
// to that jurisdiction; reported as indeterminate.
type InvalidThresholdConfigError struct {
	Jurisdiction string
	Reason       string
}

func (e *InvalidThresholdConfigError) Error() string {
	return fmt.Sprintf("invalid threshold config for %s: %s", e.Jurisdiction, e.Reason)
}

// DataIntegrityError means a transaction violates the gross/taxable/exempt
// invariant. A materially wrong liability figure could mislead a compliance
// decision, so this aborts the whole run; the caller must re-ingest clean
// data.
type DataIntegrityError struct {
	TransactionID uuid.UUID
	Reason        string
}

func (e *DataIntegrityError) Error() string {
	return fmt.Sprintf("transaction %s failed integrity check: %s", e.TransactionID, e.Reason)
}
