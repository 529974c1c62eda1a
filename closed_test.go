package symsearch_test

import (
	"testing"

	"github.com/RoaringBitmap/roaring/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/pdrpinto/symsearch"
)

func TestClosedListInsert(t *testing.T) {
	m := newModel(t, chainTask)

	t.Run("buckets stay sorted", func(t *testing.T) {
		c := symsearch.NewClosedList[*roaring.Bitmap](m, symsearch.Forward)
		c.Insert(2, states(2))
		c.Insert(0, states(0))
		c.Insert(1, states(1))

		assert.Equal(t, []int{0, 1, 2}, c.Buckets())
		assert.Equal(t, []int{0, 1, 2}, c.HValues())
		assert.True(t, c.Total().Equals(states(0, 1, 2)))
	})

	t.Run("re-insert is idempotent", func(t *testing.T) {
		c := symsearch.NewClosedList[*roaring.Bitmap](m, symsearch.Forward)
		c.Insert(1, states(1))
		c.Insert(1, states(1))

		bucket, ok := c.ClosedAt(1)
		require.True(t, ok)
		assert.True(t, bucket.Equals(states(1)))
		assert.Equal(t, []int{1}, c.Buckets())
		assert.True(t, c.Total().Equals(states(1)))
	})

	t.Run("closed up to follows later inserts", func(t *testing.T) {
		c := symsearch.NewClosedList[*roaring.Bitmap](m, symsearch.Forward)
		c.Insert(0, states(0))
		assert.True(t, c.ClosedUpTo(0).Equals(states(0)))
		assert.True(t, c.ClosedUpTo(2).Equals(states(0)))

		c.Insert(2, states(2))
		assert.True(t, c.ClosedUpTo(0).Equals(states(0)))
		assert.True(t, c.ClosedUpTo(2).Equals(states(0, 2)))

		c.Insert(1, states(1))
		assert.True(t, c.ClosedUpTo(1).Equals(states(0, 1)))
		assert.True(t, c.ClosedUpTo(2).Equals(states(0, 1, 2)))
	})

	t.Run("not closed is the complement", func(t *testing.T) {
		c := closedList(m, symsearch.Forward, map[int]*roaring.Bitmap{0: states(0)})
		assert.True(t, c.NotClosed().Equals(states(1, 2)))

		_, ok := c.ClosedAt(1)
		assert.False(t, ok)
	})

	t.Run("no zero-cost slices without zero-cost actions", func(t *testing.T) {
		c := closedList(m, symsearch.Forward, map[int]*roaring.Bitmap{0: states(0)})
		assert.Empty(t, c.ZeroCostSlices(0))
	})
}

func TestClosedListBounds(t *testing.T) {
	m := newModel(t, chainTask)
	c := closedList(m, symsearch.Backward, map[int]*roaring.Bitmap{0: states(2)})

	c.SetNotClosedBound(3)
	c.SetNotClosedBound(2)
	assert.Equal(t, 3, c.NotClosedBound())
	assert.True(t, c.IsKnownCost(3))
	assert.False(t, c.IsKnownCost(2))

	c.SetNotClosedFBound(5)
	c.SetNotClosedFBound(4)
	assert.Equal(t, 5, c.NotClosedFBound())

	assert.Equal(t, []int{0, 3}, c.HValues())
}

func TestCheckCut(t *testing.T) {
	m := newModel(t, chainTask)

	t.Run("no meeting", func(t *testing.T) {
		bw := closedList(m, symsearch.Backward, map[int]*roaring.Bitmap{0: states(2)})
		sol, err := bw.CheckCut(states(0), 0, nil)
		require.NoError(t, err)
		assert.Nil(t, sol)
	})

	t.Run("backward list", func(t *testing.T) {
		bw := closedList(m, symsearch.Backward, map[int]*roaring.Bitmap{0: states(2), 1: states(1)})
		fw := closedList(m, symsearch.Forward, map[int]*roaring.Bitmap{0: states(0), 1: states(1)})

		sol, err := bw.CheckCut(states(1), 1, fw)
		require.NoError(t, err)
		require.NotNil(t, sol)
		assert.Equal(t, 1, sol.G())
		assert.Equal(t, 1, sol.H())
		assert.Equal(t, 2, sol.Cost())
		assert.True(t, sol.Cut().Equals(states(1)))
		assert.Same(t, fw, sol.Forward())
		assert.Same(t, bw, sol.Backward())
	})

	t.Run("forward list swaps costs", func(t *testing.T) {
		fw := closedList(m, symsearch.Forward, map[int]*roaring.Bitmap{0: states(0), 1: states(1)})

		sol, err := fw.CheckCut(states(1, 2), 1, nil)
		require.NoError(t, err)
		require.NotNil(t, sol)
		assert.Equal(t, 1, sol.G())
		assert.Equal(t, 1, sol.H())
		assert.Same(t, fw, sol.Forward())
		assert.Nil(t, sol.Backward())
		assert.True(t, sol.Cut().Equals(states(1)))
	})

	t.Run("cheapest bucket wins", func(t *testing.T) {
		bw := closedList(m, symsearch.Backward, map[int]*roaring.Bitmap{0: states(0), 2: states(1, 2)})

		sol, err := bw.CheckCut(states(0, 1), 4, nil)
		require.NoError(t, err)
		require.NotNil(t, sol)
		assert.Equal(t, 0, sol.H())
		assert.Equal(t, 4, sol.Cost())
		assert.True(t, sol.Cut().Equals(states(0)))
	})
}

func TestClosedListStats(t *testing.T) {
	m := newModel(t, chainTask)
	c := closedList(m, symsearch.Forward, map[int]*roaring.Bitmap{0: states(0), 1: states(1)})
	c.SetNotClosedBound(2)

	stats := c.Stats()
	assert.Equal(t, symsearch.ClosedStats{
		Buckets:   2,
		Nodes:     2,
		States:    2,
		MaxCost:   1,
		NotClosed: 2,
	}, stats)

	// s2 is never closed and counts at the highest closed cost.
	assert.InDelta(t, 2.0/3.0, c.AverageHValue(), 1e-9)

	empty := symsearch.NewClosedList[*roaring.Bitmap](m, symsearch.Forward)
	assert.Zero(t, empty.AverageHValue())
}

func TestNewClosedListFrom(t *testing.T) {
	m := newModel(t, chainTask)
	sibling := closedList(m, symsearch.Backward, map[int]*roaring.Bitmap{0: states(2), 1: states(1)})

	c := symsearch.NewClosedListFrom[*roaring.Bitmap](m, symsearch.Backward, sibling)

	assert.Equal(t, []int{0}, c.Buckets())
	bucket, ok := c.ClosedAt(0)
	require.True(t, ok)
	assert.True(t, bucket.Equals(states(1, 2)))
	assert.Equal(t, symsearch.Backward, c.Direction())
}

func TestNewClosedListFromZeroCost(t *testing.T) {
	m := newModel(t, zeroTask)
	sibling := closedList(m, symsearch.Forward, map[int]*roaring.Bitmap{0: states(0), 1: states(1)})

	c := symsearch.NewClosedListFrom[*roaring.Bitmap](m, symsearch.Forward, sibling)
	ladder := c.ZeroCostSlices(0)
	require.Len(t, ladder, 1)
	assert.True(t, ladder[0].Equals(states(0, 1)))

	path, err := c.ExtractPath(states(1), 0)
	require.NoError(t, err)
	assert.Empty(t, path)

	plain := newModel(t, chainTask)
	c = symsearch.NewClosedListFrom[*roaring.Bitmap](plain, symsearch.Forward, closedList(plain, symsearch.Forward, map[int]*roaring.Bitmap{0: states(0)}))
	assert.Empty(t, c.ZeroCostSlices(0))
}
