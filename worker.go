package symsearch

// SuccessorSet is what expanding a closed bucket proposes for one action
// cost: the new states, queued at FromCost+ActionCost.
type SuccessorSet[S any] struct {
	Direction  Direction
	FromCost   int
	ActionCost int
	States     S
}

// Cost returns the cost at which the successors are queued.
func (p SuccessorSet[S]) Cost() int { return p.FromCost + p.ActionCost }

// expandBucket applies every positive-cost relation to bucket along d and
// returns one proposal per cost, leaving out states in closed.
func expandBucket[S any](m Model[S], d Direction, bucket S, fromCost int, closed S) []SuccessorSet[S] {
	trs := m.Transitions()
	notClosed := m.Complement(closed)
	var proposals []SuccessorSet[S]
	for _, k := range sortedCosts(trs) {
		if k == 0 {
			continue
		}
		succ := m.Empty()
		for _, tr := range trs[k] {
			succ = m.Union(succ, expand(tr, d, bucket))
		}
		succ = m.Intersect(succ, notClosed)
		if m.IsEmpty(succ) {
			continue
		}
		proposals = append(proposals, SuccessorSet[S]{
			Direction:  d,
			FromCost:   fromCost,
			ActionCost: k,
			States:     succ,
		})
	}
	return proposals
}

// zeroCostLayer returns the states reached from layer by one zero-cost
// transition along d that are not in closed.
func zeroCostLayer[S any](m Model[S], d Direction, layer S, closed S) S {
	next := m.Empty()
	for _, tr := range m.Transitions()[0] {
		next = m.Union(next, expand(tr, d, layer))
	}
	return m.Intersect(next, m.Complement(closed))
}
