package segmentation

import (
	"math"
	"sort"

	"gonum.org/v1/gonum/floats"
	"gonum.org/v1/gonum/stat"
)

// Properties are the measurements of one segment on one image plane.
type Properties struct {
	// MaxValue is the peak of the unfiltered data inside the segment
	MaxValue float64

	// XCentroid and YCentroid are 0-relative pixel coordinates; NaN when the
	// plane has no positive filtered signal inside the segment
	XCentroid float64
	YCentroid float64
}

// Measure computes the properties of seg on one plane. The peak comes from
// data; the centroid is weighted by filtered with negative values set to zero.
// Pass data as filtered when no filtering was applied.
func Measure(data, filtered []float64, seg Segment) Properties {
	values := make([]float64, len(seg.Pixels))
	weights := make([]float64, len(seg.Pixels))
	for i, idx := range seg.Pixels {
		values[i] = data[idx]
		weights[i] = math.Max(filtered[idx], 0)
	}

	props := Properties{
		MaxValue:  math.NaN(),
		XCentroid: math.NaN(),
		YCentroid: math.NaN(),
	}
	if len(values) == 0 {
		return props
	}
	props.MaxValue = floats.Max(values)
	if floats.Sum(weights) > 0 {
		props.XCentroid = stat.Mean(seg.X, weights)
		props.YCentroid = stat.Mean(seg.Y, weights)
	}
	return props
}

// SigmaThreshold returns median + nsigma*stddev of the finite values in data,
// the usual "N standard deviations over the median" detection level.
func SigmaThreshold(data []float64, nsigma float64) float64 {
	finite := make([]float64, 0, len(data))
	for _, v := range data {
		if !math.IsNaN(v) && !math.IsInf(v, 0) {
			finite = append(finite, v)
		}
	}
	if len(finite) == 0 {
		return math.NaN()
	}
	sort.Float64s(finite)
	median := stat.Quantile(0.5, stat.Empirical, finite, nil)
	if len(finite) < 2 {
		return median
	}
	return median + nsigma*stat.StdDev(finite, nil)
}
