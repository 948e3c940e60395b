package matching

import (
	"time"

	"github.com/shopspring/decimal"

	"bank-reconciliation-service/internal/models"
)

const (
	// Amount difference tolerance, relative to the bank transaction amount
	DefaultAmountTolerance = "0.01"

	// Date difference tolerance (in calendar days)
	DefaultDateWindowDays = 3

	// Journal entries considered per run, most recent first
	DefaultCandidatePoolSize = 200
)

// Policy holds the tolerance window used to pair bank transactions with
// journal entries.
type Policy struct {
	AmountTolerance   decimal.Decimal
	DateWindowDays    int
	CandidatePoolSize int
	// ExclusiveEntries removes a journal entry from the pool once it has been
	// claimed in a run. Off by default: one entry may satisfy several transactions.
	ExclusiveEntries bool
}

// DefaultPolicy returns the 1% / 3 day policy.
func DefaultPolicy() Policy {
	return Policy{
		AmountTolerance:   decimal.RequireFromString(DefaultAmountTolerance),
		DateWindowDays:    DefaultDateWindowDays,
		CandidatePoolSize: DefaultCandidatePoolSize,
	}
}

// MatchCandidate is a proposed pairing. It is never stored; only the status
// change it leads to is.
type MatchCandidate struct {
	Transaction      *models.BankTransaction
	Entry            *models.JournalEntry
	AmountDifference decimal.Decimal
	DayDifference    int
}

// AmountMatches reports whether |entryAmount - |txAmount|| <= |txAmount| * tolerance.
func (p Policy) AmountMatches(txAmount, entryAmount decimal.Decimal) bool {
	abs := txAmount.Abs()
	diff := entryAmount.Sub(abs).Abs()
	return diff.LessThanOrEqual(abs.Mul(p.AmountTolerance))
}

// DateMatches reports whether two dates are at most DateWindowDays calendar days apart.
func (p Policy) DateMatches(a, b time.Time) bool {
	return dayDifference(a, b) <= p.DateWindowDays
}

func dayDifference(a, b time.Time) int {
	da := time.Date(a.Year(), a.Month(), a.Day(), 0, 0, 0, 0, time.UTC)
	db := time.Date(b.Year(), b.Month(), b.Day(), 0, 0, 0, 0, time.UTC)
	days := int(da.Sub(db).Hours() / 24)
	if days < 0 {
		days = -days
	}
	return days
}

type MatchEngine struct {
	policy Policy
}

func NewMatchEngine(policy Policy) *MatchEngine {
	return &MatchEngine{policy: policy}
}

// Policy returns the engine's tolerance policy.
func (m *MatchEngine) Policy() Policy {
	return m.policy
}

// FindCandidate returns the first entry, in pool order, that satisfies both the
// amount and the date predicate, or nil.
func (m *MatchEngine) FindCandidate(bt *models.BankTransaction, entries []*models.JournalEntry) *MatchCandidate {
	for _, je := range entries {
		if c := m.check(bt, je); c != nil {
			return c
		}
	}
	return nil
}

func (m *MatchEngine) check(bt *models.BankTransaction, je *models.JournalEntry) *MatchCandidate {
	entryAmount := je.ComparableAmount()
	if !m.policy.AmountMatches(bt.Amount, entryAmount) {
		return nil
	}
	if !m.policy.DateMatches(bt.TransactionDate, je.EntryDate) {
		return nil
	}
	return &MatchCandidate{
		Transaction:      bt,
		Entry:            je,
		AmountDifference: entryAmount.Sub(bt.AbsAmount()).Abs(),
		DayDifference:    dayDifference(bt.TransactionDate, je.EntryDate),
	}
}

// Pool is the set of journal entries one matching run draws from. Claimed
// entries are skipped only when the policy asks for exclusive entries.
type Pool struct {
	entries   []*models.JournalEntry
	claimed   map[int64]bool
	exclusive bool
}

// NewPool creates a run-scoped pool, trimmed to the policy's pool size.
func (m *MatchEngine) NewPool(entries []*models.JournalEntry) *Pool {
	if size := m.policy.CandidatePoolSize; size > 0 && len(entries) > size {
		entries = entries[:size]
	}
	return &Pool{
		entries:   entries,
		claimed:   make(map[int64]bool),
		exclusive: m.policy.ExclusiveEntries,
	}
}

// Available returns the entries still eligible in this run.
func (p *Pool) Available() []*models.JournalEntry {
	if !p.exclusive || len(p.claimed) == 0 {
		return p.entries
	}
	out := make([]*models.JournalEntry, 0, len(p.entries))
	for _, je := range p.entries {
		if !p.claimed[je.ID] {
			out = append(out, je)
		}
	}
	return out
}

// Claim marks an entry as used by a committed match.
func (p *Pool) Claim(entryID int64) {
	p.claimed[entryID] = true
}

// Propose pairs each transaction with its first matching entry without
// committing anything. Proposals claim entries as if each were accepted.
func (m *MatchEngine) Propose(transactions []*models.BankTransaction, entries []*models.JournalEntry) []*MatchCandidate {
	pool := m.NewPool(entries)
	var out []*MatchCandidate
	for _, bt := range transactions {
		if bt.Status != models.StatusPending {
			continue
		}
		c := m.FindCandidate(bt, pool.Available())
		if c == nil {
			continue
		}
		pool.Claim(c.Entry.ID)
		out = append(out, c)
	}
	return out
}
