package symsearch

import (
	"time"
)

// Term is one summand of a ValueFunction: every state of Set contributes Value.
type Term[S any] struct {
	Set   S
	Value int
}

// ValueFunction maps states to numbers as a sum of set-indicator terms.
//
// Values use a +1 encoding: 0 means no information, v+1 encodes the
// estimate v.
type ValueFunction[S any] struct {
	space Space[S]
	terms []Term[S]
}

// NewValueFunction returns the constant-zero function.
func NewValueFunction[S any](space Space[S]) *ValueFunction[S] {
	return &ValueFunction[S]{space: space}
}

// Add adds value on every state of set. Empty sets are ignored.
func (f *ValueFunction[S]) Add(set S, value int) {
	if f.space.IsEmpty(set) {
		return
	}
	f.terms = append(f.terms, Term[S]{Set: set, Value: value})
}

// Terms returns the terms of the function.
func (f *ValueFunction[S]) Terms() []Term[S] { return f.terms }

// Value returns the raw value of state.
func (f *ValueFunction[S]) Value(state []int) int {
	v := 0
	for _, t := range f.terms {
		if f.space.Contains(t.Set, state) {
			v += t.Value
		}
	}
	return v
}

// Estimate decodes the value of state. ok is false when the function holds
// no information about it.
func (f *ValueFunction[S]) Estimate(state []int) (estimate int, ok bool) {
	v := f.Value(state)
	if v <= 0 {
		return 0, false
	}
	return v - 1, true
}

// NodeCount returns the total node count of the terms.
func (f *ValueFunction[S]) NodeCount() int {
	n := 0
	for _, t := range f.terms {
		n += f.space.NodeCount(t.Set)
	}
	return n
}

// BuildHeuristic turns the closed list into a heuristic function. It returns
// false, and no function, when there is nothing new to contribute: at most
// one bucket and a not-closed bound that has not passed previousMax, the
// bound reached by the previous call.
func (c *ClosedList[S]) BuildHeuristic(previousMax int) (*ValueFunction[S], bool) {
	if len(c.costs) <= 1 && c.hNotClosed <= previousMax {
		c.logger.LogHeuristic(false, c.hNotClosed, len(c.costs), 0)
		return nil, false
	}
	start := time.Now()
	f := c.Heuristic(previousMax)
	c.opts.Metrics.RecordExtraction("heuristic", time.Since(start), nil)
	c.logger.LogHeuristic(true, c.hNotClosed, len(c.costs), len(f.terms))
	return f, true
}

// Heuristic builds the heuristic function unconditionally. Every bucket h
// contributes h+1. Buckets below previousMax are raised to it while
// previousMax is below the not-closed bound. States at the not-closed bound,
// including the ones never closed, get the bound plus one.
func (c *ClosedList[S]) Heuristic(previousMax int) *ValueFunction[S] {
	f := NewValueFunction[S](c.model)
	atBound := c.NotClosed()
	for _, h := range c.costs {
		value := h
		if h < previousMax && previousMax < c.hNotClosed {
			value = previousMax
		}
		if value == c.hNotClosed {
			atBound = c.model.Union(atBound, c.closed[h])
			continue
		}
		f.Add(c.closed[h], value+1)
	}
	if c.boundIsFinite() && !c.model.IsEmpty(atBound) {
		f.Add(atBound, c.hNotClosed+1)
	}
	return f
}

// HeuristicSeries accumulates the heuristics built by successive searches,
// together with the not-closed bound reached by each.
type HeuristicSeries[S any] struct {
	Functions []*ValueFunction[S]
	MaxValues []int
}

// Collect builds the heuristic of c against the last recorded bound and
// appends it. It reports whether a function was added.
func (hs *HeuristicSeries[S]) Collect(c *ClosedList[S]) bool {
	previousMax := 0
	if len(hs.MaxValues) > 0 {
		previousMax = hs.MaxValues[len(hs.MaxValues)-1]
	}
	f, ok := c.BuildHeuristic(previousMax)
	if !ok {
		return false
	}
	hs.Functions = append(hs.Functions, f)
	hs.MaxValues = append(hs.MaxValues, c.hNotClosed)
	return true
}

// Estimate returns the largest estimate any function of the series gives
// state.
func (hs *HeuristicSeries[S]) Estimate(state []int) (int, bool) {
	best, found := 0, false
	for _, f := range hs.Functions {
		if v, ok := f.Estimate(state); ok && (!found || v > best) {
			best, found = v, true
		}
	}
	return best, found
}
