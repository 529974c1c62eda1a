package symsearch

import (
	"context"
)

// Result contains the outcome of a search.
type Result[S any] struct {
	Plan       []Action
	Cost       int
	Found      bool
	Solution   *Solution[S]
	Expansions int
	RunID      string

	// Forward and Backward are the closed lists of the two directions.
	Forward  *ClosedList[S]
	Backward *ClosedList[S]
}

// Search runs the bidirectional search to completion and extracts a plan
// from the cheapest meeting point. It returns ErrNoSolution when the goal is
// unreachable and an error wrapping ErrInconsistent when the closed lists
// contradict the model.
func Search[S any](ctx context.Context, problem Problem[S], options ...Option) (Result[S], error) {
	stepper := NewStepper(ctx, problem, options...)
	result := Result[S]{
		RunID:    stepper.RunID(),
		Forward:  stepper.Closed(Forward),
		Backward: stepper.Closed(Backward),
	}

	for {
		snapshot, err := stepper.Step()
		result.Expansions = snapshot.StepIndex
		if err != nil {
			return result, err
		}
		if snapshot.Done {
			break
		}
	}

	solution := stepper.Solution()
	plan, err := solution.Plan()
	if err != nil {
		return result, err
	}
	result.Plan = plan
	result.Cost = solution.Cost()
	result.Found = true
	result.Solution = solution
	return result, nil
}
