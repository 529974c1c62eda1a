package symsearch

import (
	"slices"
	"time"
)

// sortedCosts returns the costs with at least one transition, ascending.
func sortedCosts[S any](trs map[int][]Transition[S]) []int {
	costs := make([]int, 0, len(trs))
	for k, group := range trs {
		if len(group) > 0 {
			costs = append(costs, k)
		}
	}
	slices.Sort(costs)
	return costs
}

// firstSlice returns the smallest index i < limit such that states meets
// ladder[i].
func (c *ClosedList[S]) firstSlice(ladder []S, states S, limit int) (int, bool) {
	for i := 0; i < limit && i < len(ladder); i++ {
		if !c.model.IsEmpty(c.model.Intersect(states, ladder[i])) {
			return i, true
		}
	}
	return 0, false
}

// zeroStep tries each zero-cost relation on cut and returns the first step
// that reaches a slice of ladder below limit.
func (c *ClosedList[S]) zeroStep(zero []Transition[S], ladder []S, cut S, limit int) (S, int, Action, bool) {
	for _, tr := range zero {
		succ := step(tr, c.direction, cut)
		if c.model.IsEmpty(succ) {
			continue
		}
		if j, ok := c.firstSlice(ladder, succ, limit); ok {
			return c.model.Intersect(succ, ladder[j]), j, representative(tr), true
		}
	}
	var none S
	return none, 0, nil, false
}

// ExtractPath reconstructs one cheapest action sequence between the root of
// this direction and cut, which lies at cost h. The actions are returned in
// execution order: from the initial state to cut for a forward list, from
// cut to the goal for a backward list.
//
// Relations are tried in ascending cost order and the first one reaching a
// closed bucket is kept; there is no backtracking.
func (c *ClosedList[S]) ExtractPath(cut S, h int) ([]Action, error) {
	start := time.Now()
	path, err := c.extractPath(cut, h)
	c.opts.Metrics.RecordExtraction("path", time.Since(start), err)
	c.logger.LogExtract("path", h, len(path), err)
	return path, err
}

func (c *ClosedList[S]) extractPath(cut S, h int) ([]Action, error) {
	trs := c.model.Transitions()
	costs := sortedCosts(trs)
	zero := trs[0]

	var path []Action
	steps0 := 0
	if ladder := c.zeroCost[h]; c.model.HasZeroCost() && len(ladder) > 0 {
		if i, ok := c.firstSlice(ladder, cut, len(ladder)); ok {
			cut = c.model.Intersect(cut, ladder[i])
			steps0 = i
		} else if next, j, action, ok := c.zeroStep(zero, ladder, cut, len(ladder)); ok {
			cut, steps0 = next, j
			path = append(path, action)
		} else {
			c.logger.LogDegraded(h, 0, "cut is in no zero-cost slice")
		}
	}

	for h > 0 || steps0 > 0 {
		if steps0 > 0 {
			next, j, action, ok := c.zeroStep(zero, c.zeroCost[h], cut, steps0)
			if !ok {
				c.logger.LogDegraded(h, steps0, "no zero-cost relation reaches an earlier slice")
				steps0 = 0
				continue
			}
			cut, steps0 = next, j
			path = append(path, action)
			continue
		}

		found := false
	scan:
		for _, k := range costs {
			if k == 0 {
				continue
			}
			bucket, ok := c.closed[h-k]
			if !ok {
				continue
			}
			for _, tr := range trs[k] {
				inter := c.model.Intersect(step(tr, c.direction, cut), bucket)
				if c.model.IsEmpty(inter) {
					continue
				}
				h -= k
				cut = inter
				steps0 = 0
				if ladder := c.zeroCost[h]; len(ladder) > 0 {
					if i, ok := c.firstSlice(ladder, cut, len(ladder)); ok {
						cut = c.model.Intersect(cut, ladder[i])
						steps0 = i
					} else {
						c.logger.LogDegraded(h, 0, "predecessor is in no zero-cost slice")
					}
				}
				path = append(path, representative(tr))
				found = true
				break scan
			}
		}
		if !found {
			return nil, &InconsistencyError{
				Op:        "extract path",
				Direction: c.direction,
				Cost:      h,
				Detail:    "no transition reaches a closed bucket",
			}
		}
	}

	if c.direction == Forward {
		slices.Reverse(path)
	}
	return path, nil
}

// OptimalOperators adds to dst every action used by some cheapest path
// between the root of this direction and cut at cost h. Unit-cost models use
// the level-by-level extraction, models without zero-cost actions the
// cost-ordered one; models mixing zero-cost actions with other costs are
// not supported.
func (c *ClosedList[S]) OptimalOperators(cut S, h int, dst ActionSet) error {
	costs := sortedCosts(c.model.Transitions())
	if len(costs) == 1 && costs[0] == 1 {
		return c.OptimalOperatorsUnitCost(cut, h, dst)
	}
	return c.OptimalOperatorsGeneral(cut, h, dst)
}

// OptimalOperatorsGeneral is the optimal-operator extraction for arbitrary
// positive action costs. Frontier costs are processed in decreasing order.
func (c *ClosedList[S]) OptimalOperatorsGeneral(cut S, h int, dst ActionSet) error {
	start := time.Now()
	trs := c.model.Transitions()
	costs := sortedCosts(trs)
	if len(costs) > 0 && costs[0] == 0 {
		err := unsupportedCosts(costs, "zero-cost actions are not allowed")
		c.opts.Metrics.RecordExtraction("operators", time.Since(start), err)
		return err
	}

	frontier := NewBucketQueue[S](true)
	if h > 0 {
		frontier.Push(h, cut)
	}
	for frontier.Len() > 0 {
		cost, bucket := frontier.Pop()
		bucket = mergeBucket(c.model, bucket, c.opts.MergeMaxSets, c.opts.MergeMaxNodes)
		for _, k := range costs {
			closedAt, ok := c.closed[cost-k]
			if !ok {
				continue
			}
			for _, tr := range trs[k] {
				for _, s := range bucket {
					inter := c.model.Intersect(step(tr, c.direction, s), closedAt)
					if c.model.IsEmpty(inter) {
						continue
					}
					dst.Add(representative(tr))
					frontier.Push(cost-k, inter)
				}
			}
		}
	}

	c.opts.Metrics.RecordExtraction("operators", time.Since(start), nil)
	c.logger.LogExtract("operators", h, len(dst), nil)
	return nil
}

// OptimalOperatorsUnitCost is the optimal-operator extraction for models
// where every action costs 1.
func (c *ClosedList[S]) OptimalOperatorsUnitCost(cut S, h int, dst ActionSet) error {
	return c.unitCostLevels(cut, h, func(tr Transition[S], _, _ S) {
		dst.Add(representative(tr))
	})
}

// OptimalOperatorStates is OptimalOperatorsUnitCost that also records, per
// action, the states in which applying it stays on a cheapest path. Sets
// found for the same action are unioned into dst.
func (c *ClosedList[S]) OptimalOperatorStates(cut S, h int, dst map[Action]S) error {
	return c.unitCostLevels(cut, h, func(tr Transition[S], from, inter S) {
		preds := inter
		if c.direction == Backward {
			preds = c.model.Intersect(tr.Preimage(inter), from)
		}
		action := representative(tr)
		if prev, ok := dst[action]; ok {
			preds = c.model.Union(prev, preds)
		}
		dst[action] = preds
	})
}

func (c *ClosedList[S]) unitCostLevels(cut S, h int, record func(tr Transition[S], from, inter S)) error {
	start := time.Now()
	trs := c.model.Transitions()
	costs := sortedCosts(trs)
	if len(costs) != 1 || costs[0] != 1 {
		err := unsupportedCosts(costs, "every action must cost 1")
		c.opts.Metrics.RecordExtraction("operators", time.Since(start), err)
		return err
	}

	found := make(ActionSet)
	bucket := []S{cut}
	for level := h; level > 0; level-- {
		bucket = mergeBucket(c.model, bucket, c.opts.MergeMaxSets, c.opts.MergeMaxNodes)
		closedAt, ok := c.closed[level-1]
		if !ok {
			bucket = nil
			continue
		}
		var next []S
		for _, tr := range trs[1] {
			for _, s := range bucket {
				inter := c.model.Intersect(step(tr, c.direction, s), closedAt)
				if c.model.IsEmpty(inter) {
					continue
				}
				record(tr, s, inter)
				found.Add(representative(tr))
				next = append(next, inter)
			}
		}
		bucket = next
	}

	c.opts.Metrics.RecordExtraction("operators", time.Since(start), nil)
	c.logger.LogExtract("operators", h, len(found), nil)
	return nil
}
