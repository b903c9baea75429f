package domain

import "github.com/shopspring/decimal"

// BatchSummary aggregates the outcome of one side of a reconciliation
type BatchSummary struct {
	Source          string          `json:"source"`
	Total           int             `json:"total"`
	Found           int             `json:"found"`
	Missing         int             `json:"missing"`
	FoundAmount     decimal.Decimal `json:"found_amount"`
	MissingAmount   decimal.Decimal `json:"missing_amount"`
	UnparsedAmounts int             `json:"unparsed_amounts"` // Amounts left out of the totals
}

// ReconciliationResult containts the result of a reconciliation run
type ReconciliationResult struct {
	RunID         string
	ToleranceDays int
	Left          []TaggedRecord
	Right         []TaggedRecord
	LeftSummary   BatchSummary
	RightSummary  BatchSummary
}
