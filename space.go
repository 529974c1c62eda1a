package symsearch

// Space is the set algebra of a symbolic state space.
// S is an opaque handle to a canonical set of states (a BDD node, a bitmap, ...).
// Values of S are never mutated in place: every operation returns a new handle.
type Space[S any] interface {
	Empty() S
	Union(a, b S) S
	Intersect(a, b S) S
	// Complement is taken relative to the set of valid states.
	Complement(a S) S
	IsEmpty(a S) bool
	NodeCount(a S) int
	StateCount(a S) float64
	// StateSetOf returns the singleton set of a concrete assignment.
	StateSetOf(state []int) S
	Contains(a S, state []int) bool
}

// Action is a ground action that can be replayed on a concrete state.
// Actions are used as map keys, so implementations should be pointer types.
type Action interface {
	Name() string
	Cost() int
	// Apply returns the successor of state. The action is assumed applicable.
	Apply(state []int) []int
}

// Transition groups one or more actions that share cost and transition structure.
type Transition[S any] interface {
	Image(from S) S
	Preimage(to S) S
	Cost() int
	// Actions returns the represented actions. The first one is used when a
	// single representative is needed.
	Actions() []Action
}

// Model is the state-space model consumed by the closed lists and extractors.
type Model[S any] interface {
	Space[S]
	// Transitions groups the transition relations by action cost.
	Transitions() map[int][]Transition[S]
	HasZeroCost() bool
	Initial() []int
	// ShrinkForall projects a set onto this model's (possibly abstracted)
	// variables, keeping only states whose every refinement is in the set.
	ShrinkForall(a S) S
}

// Problem is a Model with a goal, as needed by the bidirectional driver.
type Problem[S any] interface {
	Model[S]
	Goal() S
}

// BucketMerger is implemented by models that coalesce buckets of sets
// themselves. Models without it use MergeBucket.
type BucketMerger[S any] interface {
	MergeBucket(bucket []S, maxSets, maxNodes int) []S
}

// Direction of a unidirectional search.
type Direction int

const (
	Forward Direction = iota
	Backward
)

func (d Direction) String() string {
	if d == Forward {
		return "forward"
	}
	return "backward"
}

// Opposite returns the other direction.
func (d Direction) Opposite() Direction {
	if d == Forward {
		return Backward
	}
	return Forward
}

// step applies t against the direction: preimage for a forward archive,
// image for a backward one. Reconstruction walks from a cut back to the
// direction's root.
func step[S any](t Transition[S], d Direction, from S) S {
	if d == Forward {
		return t.Preimage(from)
	}
	return t.Image(from)
}

// expand applies t along the direction: image forward, preimage backward.
func expand[S any](t Transition[S], d Direction, from S) S {
	if d == Forward {
		return t.Image(from)
	}
	return t.Preimage(from)
}

// representative returns the action reported for t on a path.
func representative[S any](t Transition[S]) Action {
	actions := t.Actions()
	if len(actions) == 0 {
		return nil
	}
	return actions[0]
}

// MergeBucket coalesces a bucket of sets. Neighbouring sets are merged in
// rounds while their union stays within maxNodes; rounds keep going
// regardless of size while more than maxSets sets remain. Empty sets are
// dropped.
func MergeBucket[S any](space Space[S], bucket []S, maxSets, maxNodes int) []S {
	merged := make([]S, 0, len(bucket))
	for _, s := range bucket {
		if !space.IsEmpty(s) {
			merged = append(merged, s)
		}
	}
	for len(merged) > 1 {
		force := maxSets > 0 && len(merged) > maxSets
		next := make([]S, 0, (len(merged)+1)/2)
		changed := false
		for i := 0; i < len(merged); i += 2 {
			if i+1 == len(merged) {
				next = append(next, merged[i])
				break
			}
			u := space.Union(merged[i], merged[i+1])
			if force || maxNodes <= 0 || space.NodeCount(u) <= maxNodes {
				next = append(next, u)
				changed = true
				continue
			}
			next = append(next, merged[i], merged[i+1])
		}
		merged = next
		if !changed {
			break
		}
	}
	return merged
}

func mergeBucket[S any](m Model[S], bucket []S, maxSets, maxNodes int) []S {
	if bm, ok := m.(BucketMerger[S]); ok {
		return bm.MergeBucket(bucket, maxSets, maxNodes)
	}
	return MergeBucket[S](m, bucket, maxSets, maxNodes)
}
