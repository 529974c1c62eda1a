package symsearch

import (
	"math"
	"slices"
	"time"
)

// ClosedList records, for one search direction, the sets of states that have
// been closed at each path cost.
//
// A ClosedList grows monotonically for the life of a search and is not safe
// for concurrent use. Extraction re-reads the buckets over many steps, so it
// must not run while the list is being mutated.
type ClosedList[S any] struct {
	model     Model[S]
	direction Direction
	opts      Options
	logger    *Logger

	// closed holds the bucket union per cost; costs keeps its keys sorted.
	closed map[int]S
	costs  []int

	// zeroCost holds, per cost, the sets reached by 0, 1, 2, ... zero-cost
	// transitions inside that bucket, in discovery order.
	zeroCost map[int][]S

	closedTotal S

	// closedUpTo caches prefix unions: closedUpTo[k] is the union of all
	// buckets with cost <= k.
	closedUpTo map[int]S

	hValues map[int]struct{}

	hNotClosed int
	fNotClosed int
}

// NewClosedList creates an empty closed list for a search direction.
func NewClosedList[S any](model Model[S], direction Direction, opts ...Option) *ClosedList[S] {
	options := buildOptions(opts)
	return &ClosedList[S]{
		model:       model,
		direction:   direction,
		opts:        options,
		logger:      options.Logger.WithDirection(direction),
		closed:      make(map[int]S),
		zeroCost:    make(map[int][]S),
		closedTotal: model.Empty(),
		closedUpTo:  make(map[int]S),
		hValues:     make(map[int]struct{}),
	}
}

// NewClosedListFrom creates a closed list whose bucket 0 holds the states of
// sibling projected onto model with ShrinkForall.
func NewClosedListFrom[S any](model Model[S], direction Direction, sibling *ClosedList[S], opts ...Option) *ClosedList[S] {
	c := NewClosedList(model, direction, opts...)
	c.closedTotal = model.ShrinkForall(sibling.closedTotal)
	c.closed[0] = c.closedTotal
	c.costs = []int{0}
	if model.HasZeroCost() {
		c.zeroCost[0] = []S{c.closedTotal}
	}
	c.newHValue(0)
	return c
}

func (c *ClosedList[S]) newHValue(h int) {
	c.hValues[h] = struct{}{}
}

// Insert unions states into the bucket at cost. It may be called repeatedly
// for the same cost; each call also appends a zero-cost slice when the model
// has zero-cost transitions.
//
// A state must only ever be inserted at one cost.
func (c *ClosedList[S]) Insert(cost int, states S) {
	c.logger.LogInsert(cost, c.model.NodeCount(states), c.model.StateCount(states))
	c.opts.Metrics.RecordInsert(c.direction, cost, c.model.StateCount(states))

	if bucket, ok := c.closed[cost]; ok {
		c.closed[cost] = c.model.Union(bucket, states)
	} else {
		c.closed[cost] = states
		i, _ := slices.BinarySearch(c.costs, cost)
		c.costs = slices.Insert(c.costs, i, cost)
		c.newHValue(cost)
	}

	if c.model.HasZeroCost() {
		c.zeroCost[cost] = append(c.zeroCost[cost], states)
	}
	c.closedTotal = c.model.Union(c.closedTotal, states)

	for k, upTo := range c.closedUpTo {
		if k >= cost {
			c.closedUpTo[k] = c.model.Union(upTo, states)
		}
	}
}

// SetNotClosedBound raises the lower bound on the cost of any state not yet
// closed. Smaller values are ignored.
func (c *ClosedList[S]) SetNotClosedBound(bound int) {
	if bound > c.hNotClosed {
		c.hNotClosed = bound
		c.newHValue(bound)
	}
}

// SetNotClosedFBound raises the lower bound on the total estimate of any
// state not yet closed. Smaller values are ignored.
func (c *ClosedList[S]) SetNotClosedFBound(f int) {
	if f > c.fNotClosed {
		c.fNotClosed = f
	}
}

// NotClosedBound returns the lower bound on the cost of unclosed states.
func (c *ClosedList[S]) NotClosedBound() int { return c.hNotClosed }

// NotClosedFBound returns the lower bound on the total estimate of unclosed states.
func (c *ClosedList[S]) NotClosedFBound() int { return c.fNotClosed }

// CheckCut intersects states, reached at cost g by the opposite direction,
// with the closed states of this list. It returns nil when they do not meet.
//
// When they meet, the cheapest bucket h touching states is chosen, so the
// solution costs g+h. other is the closed list of the opposite direction
// and may be nil for a unidirectional search.
func (c *ClosedList[S]) CheckCut(states S, g int, other *ClosedList[S]) (*Solution[S], error) {
	start := time.Now()
	candidate := c.model.Intersect(states, c.closedTotal)
	if c.model.IsEmpty(candidate) {
		c.opts.Metrics.RecordCutCheck(false, time.Since(start))
		return nil, nil
	}

	for _, h := range c.costs {
		cut := c.model.Intersect(c.closed[h], candidate)
		if c.model.IsEmpty(cut) {
			continue
		}
		c.opts.Metrics.RecordCutCheck(true, time.Since(start))
		c.logger.LogCut(g, h, true, nil)
		if c.direction == Backward {
			return &Solution[S]{fw: other, bw: c, g: g, h: h, cut: cut}, nil
		}
		return &Solution[S]{fw: c, bw: other, g: h, h: g, cut: cut}, nil
	}

	err := &InconsistencyError{
		Op:        "check cut",
		Direction: c.direction,
		Cost:      g,
		Detail:    "candidate meets the closed total but no bucket",
	}
	c.opts.Metrics.RecordCutCheck(false, time.Since(start))
	c.logger.LogCut(g, 0, false, err)
	return nil, err
}

// Direction returns the search direction of the list.
func (c *ClosedList[S]) Direction() Direction { return c.direction }

// Model returns the state-space model of the list.
func (c *ClosedList[S]) Model() Model[S] { return c.model }

// Total returns the union of all closed states.
func (c *ClosedList[S]) Total() S { return c.closedTotal }

// NotClosed returns the states never closed in this direction.
func (c *ClosedList[S]) NotClosed() S { return c.model.Complement(c.closedTotal) }

// ClosedAt returns the bucket at cost h.
func (c *ClosedList[S]) ClosedAt(h int) (S, bool) {
	s, ok := c.closed[h]
	return s, ok
}

// Buckets returns the costs with a bucket, in ascending order.
func (c *ClosedList[S]) Buckets() []int { return slices.Clone(c.costs) }

// ZeroCostSlices returns the zero-cost slices of the bucket at cost h.
func (c *ClosedList[S]) ZeroCostSlices(h int) []S { return slices.Clone(c.zeroCost[h]) }

// HValues returns every cost used as a bucket key or a not-closed bound, in
// ascending order.
func (c *ClosedList[S]) HValues() []int {
	values := make([]int, 0, len(c.hValues))
	for h := range c.hValues {
		values = append(values, h)
	}
	slices.Sort(values)
	return values
}

// IsKnownCost reports whether h was ever used as a bucket key or bound.
func (c *ClosedList[S]) IsKnownCost(h int) bool {
	_, ok := c.hValues[h]
	return ok
}

// ClosedUpTo returns the union of all buckets with cost <= h. The result is
// cached and kept current by later inserts.
func (c *ClosedList[S]) ClosedUpTo(h int) S {
	if upTo, ok := c.closedUpTo[h]; ok {
		return upTo
	}
	upTo := c.model.Empty()
	for _, cost := range c.costs {
		if cost > h {
			break
		}
		upTo = c.model.Union(upTo, c.closed[cost])
	}
	c.closedUpTo[h] = upTo
	return upTo
}

// AverageHValue returns the state-weighted average bucket cost. States never
// closed are counted at the highest closed cost.
func (c *ClosedList[S]) AverageHValue() float64 {
	var sum, size float64
	for _, h := range c.costs {
		n := c.model.StateCount(c.closed[h])
		sum += n * float64(h)
		size += n
	}
	notClosed := c.model.StateCount(c.NotClosed())
	size += notClosed
	if len(c.costs) > 0 {
		sum += notClosed * float64(c.costs[len(c.costs)-1])
	}
	if size == 0 {
		return 0
	}
	return sum / size
}

// ClosedStats summarises a closed list.
type ClosedStats struct {
	Buckets    int
	Nodes      int
	States     float64
	MaxCost    int
	NotClosed  int
	FNotClosed int
}

// Stats returns a summary of the closed list.
func (c *ClosedList[S]) Stats() ClosedStats {
	stats := ClosedStats{
		Buckets:    len(c.costs),
		Nodes:      c.model.NodeCount(c.closedTotal),
		States:     c.model.StateCount(c.closedTotal),
		NotClosed:  c.hNotClosed,
		FNotClosed: c.fNotClosed,
	}
	if len(c.costs) > 0 {
		stats.MaxCost = c.costs[len(c.costs)-1]
	}
	return stats
}

// boundIsFinite reports whether the not-closed bound carries information.
func (c *ClosedList[S]) boundIsFinite() bool {
	return c.hNotClosed != math.MaxInt && c.hNotClosed >= 0
}
