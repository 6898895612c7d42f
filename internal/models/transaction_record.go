package models

import (
	"time"

	"github.com/shopspring/decimal"
)

// TransactionRecord is one persisted account transaction value.
// Records are never mutated after they are saved.
type TransactionRecord struct {
	ID         string          `json:"id"`
	AccountID  string          `json:"account_id"`
	Date       time.Time       `json:"date"`
	Debit      decimal.Decimal `json:"debit"`
	Credit     decimal.Decimal `json:"credit"`
	Name       string          `json:"name"`
	DocumentID string          `json:"document_id,omitempty"` // empty when the value has no transaction document
}

// Net returns debit minus credit.
func (r TransactionRecord) Net() decimal.Decimal {
	return r.Debit.Sub(r.Credit)
}

// Field names a summable column of a transaction record.
type Field string

const (
	FieldDebit  Field = "debit"
	FieldCredit Field = "credit"
)

// TransactionFilter is the predicate handed to the query collaborator.
// A nil bound is not applied.
type TransactionFilter struct {
	AccountID string
	From      *time.Time // date >= From
	Before    *time.Time // date < Before
}

// Matches reports whether the record satisfies the filter.
func (f TransactionFilter) Matches(r TransactionRecord) bool {
	if r.AccountID != f.AccountID {
		return false
	}
	if f.From != nil && r.Date.Before(*f.From) {
		return false
	}
	if f.Before != nil && !r.Date.Before(*f.Before) {
		return false
	}
	return true
}
