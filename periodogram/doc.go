// Package periodogram computes amplitude spectra of irregularly sampled light
// curves and analyses their dominant peak.
//
// The estimator is the generalised Lomb-Scargle periodogram with a floating
// mean. Power is reported as amplitude in the units of the input flux:
//
//	amplitude = sqrt(4/N) * sqrt(psd)
//
// so a pure sinusoid of amplitude A produces a peak of height close to A.
//
// Two evaluation methods are available. [MethodDirect] sums the trigonometric
// terms exactly and is data-parallel over frequency chunks. [MethodFast]
// extirpolates the samples onto a regular grid and evaluates all sums with one
// FFT per sum (Press & Rybicki 1989), trading a small approximation error for
// O(N log N) cost.
package periodogram
