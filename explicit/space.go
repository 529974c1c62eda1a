// Package explicit implements the symbolic state-space interfaces with
// explicit state sets: every state is encoded as an integer and sets are
// roaring bitmaps.
package explicit

import (
	"fmt"
	"math"

	"github.com/RoaringBitmap/roaring/v2"

	"github.com/pdrpinto/symsearch"
	"github.com/pdrpinto/symsearch/internal"
	"github.com/pdrpinto/symsearch/task"
)

// Model is a symsearch.Problem over *roaring.Bitmap state sets.
// Sets returned by the model are never modified afterwards.
type Model struct {
	task  *task.Task
	radix *internal.Radix
	trs   map[int][]symsearch.Transition[*roaring.Bitmap]
	goal  *roaring.Bitmap
}

var _ symsearch.Problem[*roaring.Bitmap] = (*Model)(nil)

// New builds the explicit model of t. The state space must fit in 32-bit
// state codes.
func New(t *task.Task) (*Model, error) {
	radix, err := internal.NewRadix(t.DomainSizes())
	if err != nil {
		return nil, err
	}
	if radix.Total() > math.MaxUint32 {
		return nil, fmt.Errorf("explicit model: %d states exceed 32-bit codes", radix.Total())
	}
	m := &Model{
		task:  t,
		radix: radix,
		trs:   make(map[int][]symsearch.Transition[*roaring.Bitmap]),
	}
	for _, op := range t.Operators {
		m.trs[op.Cost()] = append(m.trs[op.Cost()], &relation{model: m, op: op})
	}
	m.goal = m.goalSet()
	return m, nil
}

func (m *Model) goalSet() *roaring.Bitmap {
	goal := roaring.New()
	state := make([]int, len(m.task.Variables))
	for code := uint64(0); code < m.radix.Total(); code++ {
		state = m.radix.Decode(code, state)
		if m.task.IsGoal(state) {
			goal.Add(uint32(code))
		}
	}
	return goal
}

// Task returns the task of the model.
func (m *Model) Task() *task.Task { return m.task }

func (m *Model) Empty() *roaring.Bitmap { return roaring.New() }

func (m *Model) Union(a, b *roaring.Bitmap) *roaring.Bitmap { return roaring.Or(a, b) }

func (m *Model) Intersect(a, b *roaring.Bitmap) *roaring.Bitmap { return roaring.And(a, b) }

func (m *Model) Complement(a *roaring.Bitmap) *roaring.Bitmap {
	return roaring.Flip(a, 0, m.radix.Total())
}

func (m *Model) IsEmpty(a *roaring.Bitmap) bool { return a.IsEmpty() }

// NodeCount counts states: an explicit set has one node per state.
func (m *Model) NodeCount(a *roaring.Bitmap) int { return int(a.GetCardinality()) }

func (m *Model) StateCount(a *roaring.Bitmap) float64 { return float64(a.GetCardinality()) }

func (m *Model) StateSetOf(state []int) *roaring.Bitmap {
	return roaring.BitmapOf(uint32(m.radix.Encode(state)))
}

func (m *Model) Contains(a *roaring.Bitmap, state []int) bool {
	return a.Contains(uint32(m.radix.Encode(state)))
}

// States decodes the states of a.
func (m *Model) States(a *roaring.Bitmap) [][]int {
	states := make([][]int, 0, a.GetCardinality())
	it := a.Iterator()
	for it.HasNext() {
		states = append(states, m.radix.Decode(uint64(it.Next()), nil))
	}
	return states
}

func (m *Model) Transitions() map[int][]symsearch.Transition[*roaring.Bitmap] { return m.trs }

func (m *Model) HasZeroCost() bool { return len(m.trs[0]) > 0 }

func (m *Model) Initial() []int { return m.task.Initial }

// ShrinkForall is the identity: the explicit model does not abstract variables.
func (m *Model) ShrinkForall(a *roaring.Bitmap) *roaring.Bitmap { return a }

func (m *Model) Goal() *roaring.Bitmap { return m.goal }

// relation is the transition relation of a single operator.
type relation struct {
	model *Model
	op    *task.Operator
}

func (r *relation) Cost() int { return r.op.Cost() }

func (r *relation) Actions() []symsearch.Action { return []symsearch.Action{r.op} }

func (r *relation) Image(from *roaring.Bitmap) *roaring.Bitmap {
	out := roaring.New()
	state := make([]int, len(r.model.task.Variables))
	it := from.Iterator()
	for it.HasNext() {
		state = r.model.radix.Decode(uint64(it.Next()), state)
		if r.op.Applicable(state) {
			out.Add(uint32(r.model.radix.Encode(r.op.Apply(state))))
		}
	}
	return out
}

func (r *relation) Preimage(to *roaring.Bitmap) *roaring.Bitmap {
	out := roaring.New()
	target := make([]int, len(r.model.task.Variables))
	it := to.Iterator()
	for it.HasNext() {
		target = r.model.radix.Decode(uint64(it.Next()), target)
		r.predecessors(target, func(pred []int) {
			out.Add(uint32(r.model.radix.Encode(pred)))
		})
	}
	return out
}

// predecessors calls fn with every state s such that the operator applies
// in s and leads to target.
func (r *relation) predecessors(target []int, fn func([]int)) {
	for _, e := range r.op.Eff {
		if target[e.Var] != e.Value {
			return
		}
	}
	pred := append([]int(nil), target...)
	var free []int
	for v := range pred {
		pre := r.op.PreValue(v)
		if r.op.EffValue(v) < 0 {
			if pre >= 0 && pred[v] != pre {
				return
			}
			continue
		}
		if pre >= 0 {
			pred[v] = pre
			continue
		}
		free = append(free, v)
	}

	sizes := r.model.task.DomainSizes()
	var walk func(i int)
	walk = func(i int) {
		if i == len(free) {
			fn(pred)
			return
		}
		for value := 0; value < sizes[free[i]]; value++ {
			pred[free[i]] = value
			walk(i + 1)
		}
	}
	walk(0)
}
