// Package fit estimates sinusoid parameters from light curves.
//
// A [Fitter] fits one sinusoid around a periodogram peak and refines a set of
// previously found components jointly. Two backends implement it:
//
//   - [LeastSquares]: bounded Levenberg-Marquardt on all three parameters,
//     uncertainties from the covariance matrix.
//   - [Staged]: a free fit followed by phase-only fits from several seed
//     phases, uncertainties from Montgomery & O'Donoghue (1999).
//
// Phases are in cycles and wrapped into [0, 1) on return.
package fit
