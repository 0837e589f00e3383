package bank

import (
	"sort"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// MatchTolerance configures how close a bank line and a book payment must
// be to pair automatically.
type MatchTolerance struct {
	AmountCents int // max absolute amount difference, in cents
	DateDays    int // max absolute date difference, in days
}

// DefaultMatchTolerance matches to the cent within a 3-day window
func DefaultMatchTolerance() MatchTolerance {
	return MatchTolerance{AmountCents: 0, DateDays: 3}
}

func (t MatchTolerance) amountLimit() decimal.Decimal {
	return decimal.New(int64(t.AmountCents), -2)
}

// MatchPair links one bank transaction to one book payment
type MatchPair struct {
	TransactionID uuid.UUID
	PaymentID     uuid.UUID
}

// Matcher pairs imported bank-statement lines against book payments. The
// pass is greedy: the closest acceptable candidate wins, already-matched
// rows are never revisited, and ambiguous ties are left for manual review.
type Matcher struct {
	tolerance MatchTolerance
}

// NewMatcher creates a matcher with the given tolerance
func NewMatcher(tolerance MatchTolerance) *Matcher {
	if tolerance.AmountCents < 0 || tolerance.DateDays < 0 {
		tolerance = DefaultMatchTolerance()
	}
	return &Matcher{tolerance: tolerance}
}

// Match scans unmatched transactions in date order and pairs each with the
// closest unmatched payment of the same direction inside the tolerance.
// Each payment is used at most once per run. Both sides are mutated in
// place (Matched flags and payment links).
func (m *Matcher) Match(txns []*Transaction, payments []*BookPayment) []MatchPair {
	ordered := make([]*Transaction, 0, len(txns))
	for _, t := range txns {
		if !t.Matched {
			ordered = append(ordered, t)
		}
	}
	sort.Slice(ordered, func(i, j int) bool {
		return ordered[i].TransactionDate.Before(ordered[j].TransactionDate)
	})

	var pairs []MatchPair
	for _, txn := range ordered {
		payment := m.pickCandidate(txn, payments)
		if payment == nil {
			continue
		}
		if err := txn.MarkMatched(payment.ID); err != nil {
			continue
		}
		if err := payment.MarkMatched(); err != nil {
			continue
		}
		pairs = append(pairs, MatchPair{TransactionID: txn.ID, PaymentID: payment.ID})
	}
	return pairs
}

// pickCandidate returns the single best unmatched payment for the line, or
// nil when there is none or the best two candidates are indistinguishable.
func (m *Matcher) pickCandidate(txn *Transaction, payments []*BookPayment) *BookPayment {
	wantDirection := PaymentOut
	if txn.IsInflow() {
		wantDirection = PaymentIn
	}

	type scored struct {
		payment    *BookPayment
		amountDiff decimal.Decimal
		dateDiff   int
	}
	var candidates []scored

	for _, p := range payments {
		if p.Matched || p.Direction != wantDirection || p.BankAccountID != txn.BankAccountID {
			continue
		}
		amountDiff := txn.Amount().Sub(p.Amount).Abs()
		if amountDiff.GreaterThan(m.tolerance.amountLimit()) {
			continue
		}
		dateDiff := daysBetween(txn.TransactionDate, p.PaymentDate)
		if dateDiff > m.tolerance.DateDays {
			continue
		}
		candidates = append(candidates, scored{payment: p, amountDiff: amountDiff, dateDiff: dateDiff})
	}
	if len(candidates) == 0 {
		return nil
	}

	sort.SliceStable(candidates, func(i, j int) bool {
		if !candidates[i].amountDiff.Equal(candidates[j].amountDiff) {
			return candidates[i].amountDiff.LessThan(candidates[j].amountDiff)
		}
		return candidates[i].dateDiff < candidates[j].dateDiff
	})

	// an exact tie between distinct payments is ambiguous: leave it to a human
	if len(candidates) > 1 &&
		candidates[0].amountDiff.Equal(candidates[1].amountDiff) &&
		candidates[0].dateDiff == candidates[1].dateDiff {
		return nil
	}
	return candidates[0].payment
}

// daysBetween counts whole calendar days, so a 3-day window means the
// dates at most 3 calendar days apart regardless of time of day.
func daysBetween(a, b time.Time) int {
	days := int(midnightUTC(a).Sub(midnightUTC(b)).Hours() / 24)
	if days < 0 {
		days = -days
	}
	return days
}

func midnightUTC(t time.Time) time.Time {
	u := t.UTC()
	return time.Date(u.Year(), u.Month(), u.Day(), 0, 0, 0, 0, time.UTC)
}
