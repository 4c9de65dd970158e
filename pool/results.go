package pool

import "iter"

// ResultSequence is the ordered, append-only record of every outcome an
// Engine collected. Entries are in ascending submission-index order no matter
// in which order tasks finished. Only the owning Engine appends to it; read
// it once Iterate has returned.
type ResultSequence[R any] struct {
	entries []Outcome[R]
}

func newResultSequence[R any](capacity int) *ResultSequence[R] {
	return &ResultSequence[R]{entries: make([]Outcome[R], 0, capacity)}
}

func (rs *ResultSequence[R]) append(o Outcome[R]) {
	rs.entries = append(rs.entries, o)
}

// Len returns the number of recorded outcomes.
func (rs *ResultSequence[R]) Len() int {
	return len(rs.entries)
}

// At returns the i-th outcome. It panics if i is out of range.
func (rs *ResultSequence[R]) At(i int) Outcome[R] {
	return rs.entries[i]
}

// Last returns the most recent outcome, if any.
func (rs *ResultSequence[R]) Last() (Outcome[R], bool) {
	if len(rs.entries) == 0 {
		var zero Outcome[R]
		return zero, false
	}
	return rs.entries[len(rs.entries)-1], true
}

// All iterates over position and outcome in recorded order.
func (rs *ResultSequence[R]) All() iter.Seq2[int, Outcome[R]] {
	return func(yield func(int, Outcome[R]) bool) {
		for i, o := range rs.entries {
			if !yield(i, o) {
				return
			}
		}
	}
}

// Values returns the values of successful outcomes, in order.
func (rs *ResultSequence[R]) Values() []R {
	values := make([]R, 0, len(rs.entries))
	for _, o := range rs.entries {
		if o.Err == nil {
			values = append(values, o.Value)
		}
	}
	return values
}

// Failures returns the failed outcomes, in order.
func (rs *ResultSequence[R]) Failures() []Outcome[R] {
	var failed []Outcome[R]
	for _, o := range rs.entries {
		if o.Err != nil {
			failed = append(failed, o)
		}
	}
	return failed
}
