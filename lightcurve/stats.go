package lightcurve

import (
	"math"

	"gonum.org/v1/gonum/stat"
)

// Stats summarises a light curve.
type Stats struct {
	Length    int
	Mean      float64
	Median    float64
	Std       float64 // population standard deviation of the flux
	Min       float64
	Max       float64
	Range     float64
	Baseline  float64 // days
	Nyquist   float64 // c/d
	DutyCycle float64 // 0..1
}

// Calculate computes flux and sampling statistics of lc.
func Calculate(lc *LightCurve) Stats {
	n := lc.Len()
	if n == 0 {
		return Stats{}
	}

	mean, std := meanStd(lc.Flux)
	minVal, maxVal := lc.Flux[0], lc.Flux[0]
	for _, v := range lc.Flux[1:] {
		minVal = math.Min(minVal, v)
		maxVal = math.Max(maxVal, v)
	}

	return Stats{
		Length:    n,
		Mean:      mean,
		Median:    median(lc.Flux),
		Std:       std,
		Min:       minVal,
		Max:       maxVal,
		Range:     maxVal - minVal,
		Baseline:  lc.Baseline(),
		Nyquist:   lc.Nyquist(),
		DutyCycle: lc.DutyCycle(),
	}
}

// Mean returns the mean flux.
func (lc *LightCurve) Mean() float64 {
	if lc.Len() == 0 {
		return 0
	}
	return stat.Mean(lc.Flux, nil)
}

// Std returns the population standard deviation of the flux.
func (lc *LightCurve) Std() float64 {
	_, std := meanStd(lc.Flux)
	return std
}

func meanStd(x []float64) (mean, std float64) {
	if len(x) == 0 {
		return 0, 0
	}
	mean, variance := stat.PopMeanVariance(x, nil)
	return mean, math.Sqrt(variance)
}
