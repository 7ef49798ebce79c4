package prewhiten

import (
	"context"

	"github.com/rotisserie/eris"
)

// CombinationInput lists the significant components for a
// combination-frequency solver.
type CombinationInput struct {
	IDs         []int
	Frequencies []float64
	Amplitudes  []float64
}

// Combination classifies one component.
type Combination struct {
	ID          int
	Independent bool
	// Match describes the combination, for example "2F0+F1"; empty for
	// independent components.
	Match    string
	Residual float64 // c/d between the component and its match
}

// CombinationSolver classifies components as independent or combinations of
// others.
type CombinationSolver interface {
	Solve(ctx context.Context, in CombinationInput) ([]Combination, error)
}

// CombinationInput returns ids, frequencies and amplitudes of the significant
// components.
func (r *Result) CombinationInput() CombinationInput {
	sig := r.Significant()
	in := CombinationInput{
		IDs:         make([]int, len(sig)),
		Frequencies: make([]float64, len(sig)),
		Amplitudes:  make([]float64, len(sig)),
	}
	for i, f := range sig {
		in.IDs[i] = f.Index
		in.Frequencies[i] = f.Frequency.Value
		in.Amplitudes[i] = f.Amplitude.Value
	}
	return in
}

// Combinations runs solver over the significant components and checks that
// every classification refers to one of them.
func (r *Result) Combinations(ctx context.Context, solver CombinationSolver) ([]Combination, error) {
	in := r.CombinationInput()
	if len(in.IDs) == 0 {
		return nil, nil
	}
	out, err := solver.Solve(ctx, in)
	if err != nil {
		return nil, eris.Wrap(err, "prewhiten: combination solver")
	}

	known := make(map[int]bool, len(in.IDs))
	for _, id := range in.IDs {
		known[id] = true
	}
	for _, c := range out {
		if !known[c.ID] {
			return nil, eris.Errorf("prewhiten: combination solver returned unknown id %d", c.ID)
		}
	}
	return out, nil
}
