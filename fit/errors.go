package fit

import (
	"fmt"

	"github.com/rotisserie/eris"
)

var (
	// ErrFitConvergence is wrapped by every *ConvergenceError.
	ErrFitConvergence = eris.New("fit: no convergence")

	// ErrInvalidGuess is returned for non-positive or non-finite starting
	// values.
	ErrInvalidGuess = eris.New("fit: invalid initial guess")

	// ErrUnknownBackend is returned by ParseBackend and New.
	ErrUnknownBackend = eris.New("fit: unknown backend")

	// errEvalLimit signals that the solver ran out of evaluations.
	errEvalLimit = eris.New("fit: evaluation limit reached")
)

// ConvergenceError reports a fit that did not converge even after the retry
// with the enlarged evaluation cap.
type ConvergenceError struct {
	FrequencyGuess float64 // c/d; the first component for joint fits
	Components     int
	Evaluations    int
}

func (e *ConvergenceError) Error() string {
	if e.Components > 1 {
		return fmt.Sprintf("fit: joint fit of %d components did not converge after %d evaluations",
			e.Components, e.Evaluations)
	}
	return fmt.Sprintf("fit: failed to find a good fit for frequency %.6f c/d after %d evaluations",
		e.FrequencyGuess, e.Evaluations)
}

// Unwrap returns ErrFitConvergence.
func (e *ConvergenceError) Unwrap() error {
	return ErrFitConvergence
}
