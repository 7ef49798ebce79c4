// Package prewhiten extracts sinusoidal components from a light curve by
// iterative pre-whitening.
//
// Every iteration computes the periodogram of the current residual, measures
// the signal to noise ratio of its highest peak, fits a sinusoid there and
// subtracts it. Optionally all components found so far are refined jointly
// against the original light curve after each step. The loop stops at the
// first insignificant peak once the extension budget is used up, when the
// last ten frequencies collapse onto one value, or when the context is
// canceled; in every case the components found so far are returned.
//
// All state of one extraction lives in a [RunContext]; a [Runner] is
// stateless and may be shared between goroutines.
package prewhiten
