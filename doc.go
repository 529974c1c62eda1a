// Package symsearch provides the archival and reconstruction core of a
// bidirectional symbolic state-space search.
//
// States are handled in sets through a Space (BDDs in package bdd, bitmaps in
// package explicit). The core exposes:
//
//   - ClosedList: per-direction archive of the sets closed at each path cost,
//     with cut detection against the opposite direction.
//   - Solution: a meeting point of the two directions, from which a plan, the
//     operators usable in some optimal plan, or a value function is extracted.
//   - ValueFunction and HeuristicSeries: heuristics built from a closed list.
//   - Search and Stepper: a uniform-cost bidirectional driver built on the above.
//
// Everything is single-threaded: a closed list must not be mutated while a
// cut check or an extraction reads it.
package symsearch
