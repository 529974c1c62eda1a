package symsearch_test

import (
	"bytes"
	"context"
	"testing"

	"github.com/RoaringBitmap/roaring/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/pdrpinto/symsearch"
)

func TestSearch(t *testing.T) {
	tests := []struct {
		name string
		task string
		plan []string
		cost int
	}{
		{"chain", chainTask, []string{"a", "b"}, 2},
		{"zero cost", zeroTask, []string{"a", "z", "b"}, 2},
		{"mixed costs", costlyTask, nil, 5},
		{"diamond", diamondTask, nil, 2},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			m := newModel(t, tc.task)
			result, err := symsearch.Search[*roaring.Bitmap](context.Background(), m, symsearch.WithRunID(tc.name))
			require.NoError(t, err)

			assert.True(t, result.Found)
			assert.Equal(t, tc.cost, result.Cost)
			assert.Equal(t, tc.cost, planCost(result.Plan))
			assert.Equal(t, tc.name, result.RunID)
			assert.Positive(t, result.Expansions)
			if tc.plan != nil {
				assert.Equal(t, tc.plan, actionNames(result.Plan))
			}

			requireValidPlan(t, m, result.Plan)
		})
	}
}

func TestSearchCutAcrossZeroCostSlices(t *testing.T) {
	m := newModel(t, zeroForkTask)
	result, err := symsearch.Search[*roaring.Bitmap](context.Background(), m)
	require.NoError(t, err)

	sol := result.Solution
	require.NotNil(t, sol)
	assert.Zero(t, sol.G())
	assert.Equal(t, 1, sol.H())
	assert.Equal(t, uint64(2), sol.Cut().GetCardinality())
	require.Len(t, sol.Forward().ZeroCostSlices(0), 2)

	assert.Equal(t, 1, result.Cost)
	assert.Equal(t, 1, planCost(result.Plan))
	requireValidPlan(t, m, result.Plan)

	f, err := sol.ValueFunction()
	require.NoError(t, err)
	v, ok := f.Estimate(m.Initial())
	require.True(t, ok)
	assert.Equal(t, 1, v)
}

func TestSearchInitialIsGoal(t *testing.T) {
	m := newModel(t, `
variables:
  - name: pos
    values: [s0, s1]
actions:
  - name: a
    pre: {pos: s0}
    eff: {pos: s1}
initial: {pos: s0}
goal: {pos: s0}
`)
	result, err := symsearch.Search[*roaring.Bitmap](context.Background(), m)
	require.NoError(t, err)
	assert.True(t, result.Found)
	assert.Zero(t, result.Cost)
	assert.Empty(t, result.Plan)
}

func TestSearchNoSolution(t *testing.T) {
	m := newModel(t, deadEndTask)
	result, err := symsearch.Search[*roaring.Bitmap](context.Background(), m)
	assert.ErrorIs(t, err, symsearch.ErrNoSolution)
	assert.False(t, symsearch.IsFatal(err))
	assert.False(t, result.Found)
	assert.Nil(t, result.Solution)
}

func TestSearchCancelled(t *testing.T) {
	m := newModel(t, chainTask)
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := symsearch.Search[*roaring.Bitmap](ctx, m)
	assert.ErrorIs(t, err, context.Canceled)
}

func TestSearchMetricsAndLogs(t *testing.T) {
	m := newModel(t, chainTask)
	metrics := &symsearch.BasicMetricsCollector{}
	var buf bytes.Buffer
	logger := symsearch.NewJSONLogger(&buf, -4)

	_, err := symsearch.Search[*roaring.Bitmap](context.Background(), m,
		symsearch.WithMetrics(metrics),
		symsearch.WithLogger(logger),
		symsearch.WithRunID("run-1"),
	)
	require.NoError(t, err)

	assert.Positive(t, metrics.Steps.Load())
	assert.Positive(t, metrics.Inserts.Load())
	assert.Positive(t, metrics.CutsFound.Load())
	assert.GreaterOrEqual(t, metrics.CutChecks.Load(), metrics.CutsFound.Load())
	assert.Equal(t, int64(2), metrics.Extractions.Load())
	assert.Zero(t, metrics.ExtractionErrors.Load())

	assert.Contains(t, buf.String(), `"run":"run-1"`)
	assert.Contains(t, buf.String(), `"msg":"cut found"`)
}

func TestStepper(t *testing.T) {
	m := newModel(t, chainTask)
	s := symsearch.NewStepper[*roaring.Bitmap](context.Background(), m)

	snap, err := s.Step()
	require.NoError(t, err)
	assert.Equal(t, symsearch.Forward, snap.Direction)
	assert.Equal(t, 0, snap.Cost)
	assert.Equal(t, -1, snap.Best)

	snap, err = s.Step()
	require.NoError(t, err)
	assert.Equal(t, symsearch.Backward, snap.Direction)

	for !snap.Done {
		snap, err = s.Step()
		require.NoError(t, err)
	}
	assert.True(t, snap.Found)
	assert.Equal(t, 2, snap.Best)
	require.NotNil(t, s.Solution())

	fw := s.Closed(symsearch.Forward)
	bw := s.Closed(symsearch.Backward)
	assert.True(t, fw.Total().Contains(0))
	assert.True(t, bw.Total().Contains(2))

	// finished steppers keep reporting done
	snap, err = s.Step()
	require.NoError(t, err)
	assert.True(t, snap.Done)
}

func TestSolutionValueFunction(t *testing.T) {
	m := newModel(t, chainTask)
	result, err := symsearch.Search[*roaring.Bitmap](context.Background(), m)
	require.NoError(t, err)

	f, err := result.Solution.ValueFunction()
	require.NoError(t, err)
	assert.Equal(t, []int{2, 1, 0}, estimates(f, s0, s1, s2))
}

func TestSolutionOptimalOperators(t *testing.T) {
	m := newModel(t, diamondTask)
	result, err := symsearch.Search[*roaring.Bitmap](context.Background(), m)
	require.NoError(t, err)

	ops := make(symsearch.ActionSet)
	require.NoError(t, result.Solution.OptimalOperators(ops))
	for _, a := range result.Plan {
		assert.True(t, ops.Has(a), a.Name())
	}
	for _, a := range ops.Sorted() {
		assert.NotEqual(t, "back", a.Name())
	}

	dst := make(map[symsearch.Action]*roaring.Bitmap)
	require.NoError(t, result.Solution.OptimalOperatorStates(dst))
	for _, a := range result.Plan {
		assert.Contains(t, dst, a)
	}
}
