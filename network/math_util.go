package network

import (
	"math"

	"gonum.org/v1/gonum/floats"
)

// clamp restricts a value to a given range [minVal, maxVal].
func clamp(value, minVal, maxVal float64) float64 {
	return math.Max(minVal, math.Min(value, maxVal))
}

// weightedSum returns Σ inputs[i]*weights[i].
func weightedSum(inputs, weights []float64) float64 {
	if len(inputs) == 0 {
		return 0.0
	}
	return floats.Dot(inputs, weights)
}

// MeanSquaredError returns the mean of (targets[i]-outputs[i])² over all
// positions. The slices must have equal length; empty input yields 0.
func MeanSquaredError(targets, outputs []float64) float64 {
	if len(targets) == 0 {
		return 0.0
	}
	diff := make([]float64, len(targets))
	floats.SubTo(diff, targets, outputs)
	return floats.Dot(diff, diff) / float64(len(diff))
}

// Mean calculates the average of a slice of float64 values.
func Mean(values []float64) float64 {
	if len(values) == 0 {
		return 0.0
	}
	return floats.Sum(values) / float64(len(values))
}
