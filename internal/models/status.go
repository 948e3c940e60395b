package models

import "fmt"

// TransactionStatus is the resolution state of a bank transaction.
type TransactionStatus string

const (
	StatusPending TransactionStatus = "pending"
	StatusMatched TransactionStatus = "matched"
	StatusManual  TransactionStatus = "manual"
	StatusIgnored TransactionStatus = "ignored"
)

// IsValid reports whether s is one of the four known statuses.
func (s TransactionStatus) IsValid() bool {
	switch s {
	case StatusPending, StatusMatched, StatusManual, StatusIgnored:
		return true
	}
	return false
}

// IsTerminal reports whether s can no longer change.
func (s TransactionStatus) IsTerminal() bool {
	return s.IsValid() && s != StatusPending
}

// TransitionTo validates a status change. Only pending transactions move, and
// only into one of the terminal statuses.
func (s TransactionStatus) TransitionTo(next TransactionStatus) error {
	if !next.IsValid() {
		return fmt.Errorf("unknown transaction status %q", next)
	}
	if s != StatusPending {
		return fmt.Errorf("transaction is %s, only pending transactions can be resolved", s)
	}
	if next == StatusPending {
		return fmt.Errorf("transaction is already pending")
	}
	return nil
}

// ParseTransactionStatus converts a query or flag value into a status.
func ParseTransactionStatus(v string) (TransactionStatus, error) {
	s := TransactionStatus(v)
	if !s.IsValid() {
		return "", fmt.Errorf("unknown transaction status %q", v)
	}
	return s, nil
}

// TransactionType tags a transaction as money in or money out.
type TransactionType string

const (
	TypeCredit TransactionType = "credit"
	TypeDebit  TransactionType = "debit"
)

// IsValid reports whether t is credit or debit.
func (t TransactionType) IsValid() bool {
	return t == TypeCredit || t == TypeDebit
}

// BatchStatus is the lifecycle state of an import batch.
type BatchStatus string

const (
	BatchProcessing BatchStatus = "processing"
	BatchCompleted  BatchStatus = "completed"
	BatchFailed     BatchStatus = "failed"
)

// StatusCounts is a per-status tally of the transactions in one import batch.
type StatusCounts struct {
	Pending int `json:"pending"`
	Matched int `json:"matched"`
	Manual  int `json:"manual"`
	Ignored int `json:"ignored"`
}

// Total is the number of transactions counted.
func (c StatusCounts) Total() int {
	return c.Pending + c.Matched + c.Manual + c.Ignored
}

// Reconciled counts transactions linked to a journal entry, automatically or by hand.
func (c StatusCounts) Reconciled() int {
	return c.Matched + c.Manual
}

// Add increments the bucket for s by n. Unknown statuses are ignored.
func (c *StatusCounts) Add(s TransactionStatus, n int) {
	switch s {
	case StatusPending:
		c.Pending += n
	case StatusMatched:
		c.Matched += n
	case StatusManual:
		c.Manual += n
	case StatusIgnored:
		c.Ignored += n
	}
}
