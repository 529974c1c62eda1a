package symsearch

import (
	"errors"
	"fmt"
)

var (
	// ErrNoSolution is returned when the search exhausts a direction without
	// the two directions meeting.
	ErrNoSolution = errors.New("no solution")

	// ErrInconsistent marks an archive or model inconsistency. Results built
	// after such an error would be wrong, so callers must abort the search.
	ErrInconsistent = errors.New("closed list inconsistency")

	// ErrUnsupportedCosts is returned when an optimal-operator extraction is
	// requested for action costs it does not handle.
	ErrUnsupportedCosts = errors.New("unsupported action costs")
)

// InconsistencyError reports where an archive inconsistency was detected.
//
// It unwraps to ErrInconsistent.
type InconsistencyError struct {
	Op        string
	Direction Direction
	Cost      int
	Detail    string
}

func (e *InconsistencyError) Error() string {
	return fmt.Sprintf("%s (%s, cost %d): %s", e.Op, e.Direction, e.Cost, e.Detail)
}

func (e *InconsistencyError) Unwrap() error { return ErrInconsistent }

// IsFatal reports whether err leaves the search in a state that must not be
// continued.
func IsFatal(err error) bool {
	return errors.Is(err, ErrInconsistent)
}

func unsupportedCosts(costs []int, want string) error {
	return fmt.Errorf("%w: transition costs %v, %s", ErrUnsupportedCosts, costs, want)
}
