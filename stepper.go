package symsearch

import (
	"context"
	"math"
	"time"
)

// StepSnapshot exposes the per-step state of the search.
type StepSnapshot struct {
	Direction Direction
	// Cost of the bucket expanded by the step.
	Cost int
	// Nodes of the bucket after removing states closed earlier.
	Nodes int
	// Best is the cost of the cheapest solution so far, -1 if none.
	Best      int
	Done      bool
	Found     bool
	StepIndex int
}

// frontier is the state of one search direction.
type frontier[S any] struct {
	direction Direction
	closed    *ClosedList[S]
	open      *BucketQueue[S]
	started   bool
}

// minOpen returns the cheapest queued cost, or math.MaxInt.
func (f *frontier[S]) minOpen() int {
	if cost, _, ok := f.open.Peek(); ok {
		return cost
	}
	return math.MaxInt
}

func (f *frontier[S]) exhausted() bool { return f.started && f.open.Len() == 0 }

// Stepper runs a uniform-cost bidirectional symbolic search one bucket
// expansion at a time.
type Stepper[S any] struct {
	ctx     context.Context
	problem Problem[S]
	opts    Options
	logger  *Logger

	fw, bw *frontier[S]
	best   *Solution[S]

	stepCount int
	done      bool
	found     bool
}

// NewStepper creates a stepper. Nothing is expanded until Step is called.
func NewStepper[S any](ctx context.Context, problem Problem[S], options ...Option) *Stepper[S] {
	opts := buildOptions(options)
	// closed lists share the run id and collectors of the stepper
	shared := []Option{
		WithLogger(opts.Logger.WithRun(opts.RunID)),
		WithMetrics(opts.Metrics),
		WithMergeLimits(opts.MergeMaxSets, opts.MergeMaxNodes),
		WithRunID(opts.RunID),
	}
	s := &Stepper[S]{
		ctx:     ctx,
		problem: problem,
		opts:    opts,
		logger:  opts.Logger.WithRun(opts.RunID),
		fw: &frontier[S]{
			direction: Forward,
			closed:    NewClosedList[S](problem, Forward, shared...),
			open:      NewBucketQueue[S](false),
		},
		bw: &frontier[S]{
			direction: Backward,
			closed:    NewClosedList[S](problem, Backward, shared...),
			open:      NewBucketQueue[S](false),
		},
	}
	s.fw.open.Push(0, problem.StateSetOf(problem.Initial()))
	s.bw.open.Push(0, problem.Goal())
	return s
}

// Closed returns the closed list of a direction.
func (s *Stepper[S]) Closed(d Direction) *ClosedList[S] {
	if d == Forward {
		return s.fw.closed
	}
	return s.bw.closed
}

// Solution returns the cheapest solution found so far, or nil.
func (s *Stepper[S]) Solution() *Solution[S] { return s.best }

// RunID returns the id attached to the run's log lines.
func (s *Stepper[S]) RunID() string { return s.opts.RunID }

func (s *Stepper[S]) bestCost() int {
	if s.best == nil {
		return -1
	}
	return s.best.Cost()
}

func (s *Stepper[S]) snapshot() StepSnapshot {
	return StepSnapshot{
		Best:      s.bestCost(),
		Done:      s.done,
		Found:     s.found,
		StepIndex: s.stepCount,
	}
}

// finished reports whether no further expansion can improve on the best
// solution, or no solution can appear any more.
func (s *Stepper[S]) finished() bool {
	if s.best != nil {
		bound := math.MaxInt
		if a, b := s.fw.minOpen(), s.bw.minOpen(); a != math.MaxInt && b != math.MaxInt {
			bound = a + b
		}
		return s.best.Cost() <= bound
	}
	if !s.fw.started || !s.bw.started {
		return false
	}
	return s.fw.exhausted() || s.bw.exhausted()
}

// pick chooses the direction to expand: a direction that has not started
// yet, otherwise the one whose next bucket has fewer nodes.
func (s *Stepper[S]) pick() (*frontier[S], *frontier[S]) {
	switch {
	case !s.fw.started:
		return s.fw, s.bw
	case !s.bw.started:
		return s.bw, s.fw
	case s.fw.open.Len() == 0:
		return s.bw, s.fw
	case s.bw.open.Len() == 0:
		return s.fw, s.bw
	}
	_, fwSets, _ := s.fw.open.Peek()
	_, bwSets, _ := s.bw.open.Peek()
	if s.nodes(bwSets) < s.nodes(fwSets) {
		return s.bw, s.fw
	}
	return s.fw, s.bw
}

func (s *Stepper[S]) nodes(sets []S) int {
	n := 0
	for _, set := range sets {
		n += s.problem.NodeCount(set)
	}
	return n
}

// Step advances the search by one bucket expansion and returns a snapshot.
// Once the search is done, Step returns ErrNoSolution if the directions
// never met.
func (s *Stepper[S]) Step() (StepSnapshot, error) {
	if s.done {
		return s.snapshot(), s.doneErr()
	}
	if err := s.ctx.Err(); err != nil {
		s.done = true
		return s.snapshot(), err
	}
	if s.finished() {
		s.done = true
		s.found = s.best != nil
		return s.snapshot(), s.doneErr()
	}

	s.stepCount++
	f, other := s.pick()
	start := time.Now()
	cost, nodes, err := s.expand(f, other)
	s.opts.Metrics.RecordStep(f.direction, cost, time.Since(start))
	s.logger.LogStep(s.stepCount, cost, nodes, s.bestCost())

	snap := s.snapshot()
	snap.Direction = f.direction
	snap.Cost = cost
	snap.Nodes = nodes
	if err != nil {
		s.done = true
		snap.Done = true
		return snap, err
	}
	return snap, nil
}

func (s *Stepper[S]) doneErr() error {
	if s.found {
		return nil
	}
	return ErrNoSolution
}

// expand closes the cheapest bucket of f, including its zero-cost layers,
// and queues its successors.
func (s *Stepper[S]) expand(f, other *frontier[S]) (int, int, error) {
	m := s.problem
	f.started = true
	cost, sets := f.open.Pop()

	layer := m.Empty()
	for _, set := range sets {
		layer = m.Union(layer, set)
	}
	layer = m.Intersect(layer, m.Complement(f.closed.Total()))
	nodes := m.NodeCount(layer)

	if !m.IsEmpty(layer) {
		bucket := layer
		for {
			f.closed.Insert(cost, layer)
			if err := s.meet(f, other, layer, cost); err != nil {
				return cost, nodes, err
			}
			if !m.HasZeroCost() {
				break
			}
			layer = zeroCostLayer(m, f.direction, layer, f.closed.Total())
			if m.IsEmpty(layer) {
				break
			}
			bucket = m.Union(bucket, layer)
		}

		for _, proposal := range expandBucket(m, f.direction, bucket, cost, f.closed.Total()) {
			f.open.Push(proposal.Cost(), proposal.States)
			if err := s.meet(f, other, proposal.States, proposal.Cost()); err != nil {
				return cost, nodes, err
			}
		}
	}

	next := f.minOpen()
	f.closed.SetNotClosedBound(next)
	f.closed.SetNotClosedFBound(next)
	return cost, nodes, nil
}

// meet checks states, reached by f at cost g, against the closed list of
// the other direction and keeps the cheapest solution.
func (s *Stepper[S]) meet(f, other *frontier[S], states S, g int) error {
	sol, err := other.closed.CheckCut(states, g, f.closed)
	if err != nil {
		return err
	}
	if sol != nil && (s.best == nil || sol.Cost() < s.best.Cost()) {
		s.best = sol
	}
	return nil
}
