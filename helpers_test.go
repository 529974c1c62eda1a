package symsearch_test

import (
	"testing"

	"github.com/RoaringBitmap/roaring/v2"
	"github.com/stretchr/testify/require"

	"github.com/pdrpinto/symsearch"
	"github.com/pdrpinto/symsearch/explicit"
	"github.com/pdrpinto/symsearch/task"
)

// chainTask is s0 -a-> s1 -b-> s2.
const chainTask = `
name: chain
variables:
  - name: pos
    values: [s0, s1, s2]
actions:
  - name: a
    pre: {pos: s0}
    eff: {pos: s1}
  - name: b
    pre: {pos: s1}
    eff: {pos: s2}
initial: {pos: s0}
goal: {pos: s2}
`

// costlyTask reaches s2 either by a (2) then b (3), or directly by c (5).
const costlyTask = `
name: costly
variables:
  - name: pos
    values: [s0, s1, s2]
actions:
  - name: a
    cost: 2
    pre: {pos: s0}
    eff: {pos: s1}
  - name: b
    cost: 3
    pre: {pos: s1}
    eff: {pos: s2}
  - name: c
    cost: 5
    pre: {pos: s0}
    eff: {pos: s2}
initial: {pos: s0}
goal: {pos: s2}
`

// diamondTask has two cheapest plans through l and r, and a way back.
const diamondTask = `
name: diamond
variables:
  - name: pos
    values: [s, l, r, g]
actions:
  - name: left
    pre: {pos: s}
    eff: {pos: l}
  - name: right
    pre: {pos: s}
    eff: {pos: r}
  - name: up-l
    pre: {pos: l}
    eff: {pos: g}
  - name: up-r
    pre: {pos: r}
    eff: {pos: g}
  - name: back
    pre: {pos: g}
    eff: {pos: s}
initial: {pos: s}
goal: {pos: g}
`

// zeroTask has a free step z between the two unit-cost ones.
const zeroTask = `
name: zero
variables:
  - name: pos
    values: [s0, s1, s2, s3]
actions:
  - name: a
    pre: {pos: s0}
    eff: {pos: s1}
  - name: z
    cost: 0
    pre: {pos: s1}
    eff: {pos: s2}
  - name: b
    pre: {pos: s2}
    eff: {pos: s3}
initial: {pos: s0}
goal: {pos: s3}
`

// zeroForkTask reaches g from s0 directly by c, or from t by b after the
// free step z. Both s0 and t close at forward cost 0 and sit one step from
// the goal, so the meeting cut spans two zero-cost slices.
const zeroForkTask = `
name: zero-fork
variables:
  - name: pos
    values: [s0, t, g]
actions:
  - name: z
    cost: 0
    pre: {pos: s0}
    eff: {pos: t}
  - name: b
    pre: {pos: t}
    eff: {pos: g}
  - name: c
    pre: {pos: s0}
    eff: {pos: g}
initial: {pos: s0}
goal: {pos: g}
`

// deadEndTask cannot reach its goal.
const deadEndTask = `
name: dead-end
variables:
  - name: pos
    values: [s0, s1, s2]
actions:
  - name: a
    pre: {pos: s0}
    eff: {pos: s1}
initial: {pos: s0}
goal: {pos: s2}
`

func newModel(t *testing.T, src string) *explicit.Model {
	t.Helper()
	tk, err := task.Parse([]byte(src))
	require.NoError(t, err)
	m, err := explicit.New(tk)
	require.NoError(t, err)
	return m
}

// states returns the set of single-variable states with the given values.
func states(values ...uint32) *roaring.Bitmap {
	return roaring.BitmapOf(values...)
}

func closedList(m *explicit.Model, d symsearch.Direction, buckets map[int]*roaring.Bitmap) *symsearch.ClosedList[*roaring.Bitmap] {
	c := symsearch.NewClosedList[*roaring.Bitmap](m, d)
	for cost, set := range buckets {
		c.Insert(cost, set)
	}
	return c
}

func actionNames(actions []symsearch.Action) []string {
	names := make([]string, len(actions))
	for i, a := range actions {
		names[i] = a.Name()
	}
	return names
}

// requireValidPlan replays plan from the initial state, checking every
// precondition, and requires it to end in a goal state.
func requireValidPlan(t *testing.T, m *explicit.Model, plan []symsearch.Action) {
	t.Helper()
	state := m.Initial()
	for i, a := range plan {
		op, ok := a.(*task.Operator)
		require.True(t, ok)
		require.True(t, op.Applicable(state), "step %d: %s is not applicable in %s", i, op.Name(), m.Task().Format(state))
		state = op.Apply(state)
	}
	require.True(t, m.Contains(m.Goal(), state), "plan ends in %s", m.Task().Format(state))
}

func planCost(actions []symsearch.Action) int {
	cost := 0
	for _, a := range actions {
		cost += a.Cost()
	}
	return cost
}
