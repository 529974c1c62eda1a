package symsearch

import (
	"errors"
	"slices"
	"strings"
)

// ActionSet is a set of actions.
type ActionSet map[Action]struct{}

// Add inserts a into the set.
func (s ActionSet) Add(a Action) { s[a] = struct{}{} }

// Has reports whether a is in the set.
func (s ActionSet) Has(a Action) bool {
	_, ok := s[a]
	return ok
}

// Sorted returns the actions ordered by name.
func (s ActionSet) Sorted() []Action {
	actions := make([]Action, 0, len(s))
	for a := range s {
		actions = append(actions, a)
	}
	slices.SortFunc(actions, func(a, b Action) int { return strings.Compare(a.Name(), b.Name()) })
	return actions
}

// Solution is a meeting point of the forward and backward searches: the
// states cut are closed at cost g forward and at cost h backward. Either
// list may be nil when only one direction took part.
type Solution[S any] struct {
	fw, bw *ClosedList[S]
	g, h   int
	cut    S
}

// G returns the forward cost of the cut.
func (s *Solution[S]) G() int { return s.g }

// H returns the backward cost of the cut.
func (s *Solution[S]) H() int { return s.h }

// Cost returns the cost of the plans crossing the cut.
func (s *Solution[S]) Cost() int { return s.g + s.h }

// Cut returns the meeting states.
func (s *Solution[S]) Cut() S { return s.cut }

// Forward returns the forward closed list, or nil.
func (s *Solution[S]) Forward() *ClosedList[S] { return s.fw }

// Backward returns the backward closed list, or nil.
func (s *Solution[S]) Backward() *ClosedList[S] { return s.bw }

func (s *Solution[S]) model() Model[S] {
	if s.fw != nil {
		return s.fw.model
	}
	return s.bw.model
}

// Plan returns a cheapest plan through the cut: the forward part from the
// initial state to the cut, followed by the backward part from the state the
// forward part reaches to the goal. The backward part starts from the whole
// cut only when no forward list took part.
func (s *Solution[S]) Plan() ([]Action, error) {
	if s.fw == nil && s.bw == nil {
		return nil, errors.New("solution has no search direction")
	}
	var path []Action
	if s.fw != nil {
		forward, err := s.fw.ExtractPath(s.cut, s.g)
		if err != nil {
			return nil, err
		}
		path = append(path, forward...)
	}
	if s.bw != nil {
		cut := s.cut
		if s.fw != nil {
			m := s.model()
			cut = m.StateSetOf(replay(m.Initial(), path))
		}
		backward, err := s.bw.ExtractPath(cut, s.h)
		if err != nil {
			return nil, err
		}
		path = append(path, backward...)
	}
	return path, nil
}

// OptimalOperators adds to dst every action used by some cheapest plan
// crossing the cut.
func (s *Solution[S]) OptimalOperators(dst ActionSet) error {
	if s.fw != nil {
		if err := s.fw.OptimalOperators(s.cut, s.g, dst); err != nil {
			return err
		}
	}
	if s.bw != nil {
		if err := s.bw.OptimalOperators(s.cut, s.h, dst); err != nil {
			return err
		}
	}
	return nil
}

// OptimalOperatorStates is OptimalOperators that also records the states in
// which each action is applied on a cheapest plan. Unit-cost models only.
func (s *Solution[S]) OptimalOperatorStates(dst map[Action]S) error {
	if s.fw != nil {
		if err := s.fw.OptimalOperatorStates(s.cut, s.g, dst); err != nil {
			return err
		}
	}
	if s.bw != nil {
		if err := s.bw.OptimalOperatorStates(s.cut, s.h, dst); err != nil {
			return err
		}
	}
	return nil
}

// ValueFunction replays the plan from the initial state and assigns every
// visited state its remaining plan cost.
func (s *Solution[S]) ValueFunction() (*ValueFunction[S], error) {
	path, err := s.Plan()
	if err != nil {
		return nil, err
	}
	m := s.model()
	f := NewValueFunction[S](m)
	seen := m.Empty()
	stamp := func(state []int, value int) {
		if m.Contains(seen, state) {
			return
		}
		single := m.StateSetOf(state)
		seen = m.Union(seen, single)
		f.Add(single, value+1)
	}

	value := s.g + s.h
	state := slices.Clone(m.Initial())
	stamp(state, value)
	for _, a := range path {
		value -= a.Cost()
		state = a.Apply(state)
		stamp(state, value)
	}
	return f, nil
}

func replay(initial []int, path []Action) []int {
	state := slices.Clone(initial)
	for _, a := range path {
		state = a.Apply(state)
	}
	return state
}
