// Package kernel builds the smoothing kernels used to pre-filter images
// before source detection.
package kernel

import (
	"errors"
	"fmt"
	"math"

	"gonum.org/v1/gonum/mat"
)

// FWHMToSigma converts a Gaussian full width at half maximum to a standard
// deviation: 1 / (2 sqrt(2 ln 2)).
var FWHMToSigma = 1 / (2 * math.Sqrt(2*math.Ln2))

// ErrDegenerateKernel is returned when the parameters cannot produce a kernel.
var ErrDegenerateKernel = errors.New("degenerate kernel")

// Size returns the odd side length of the kernel built for fwhm:
// round(1.5*fwhm), bumped to the next odd number so the kernel has a centre.
func Size(fwhm float64) int {
	n := int(math.Round(1.5 * fwhm))
	if n < 1 {
		n = 1
	}
	if n%2 == 0 {
		n++
	}
	return n
}

// Gaussian2D returns a normalized circular Gaussian kernel for the given
// FWHM in pixels, sampled at pixel centres.
func Gaussian2D(fwhm float64) (*mat.Dense, error) {
	if !(fwhm > 0) || math.IsInf(fwhm, 0) {
		return nil, fmt.Errorf("%w: fwhm must be positive and finite, got %g", ErrDegenerateKernel, fwhm)
	}
	sigma := fwhm * FWHMToSigma
	n := Size(fwhm)
	half := n / 2

	k := mat.NewDense(n, n, nil)
	for i := 0; i < n; i++ {
		dy := float64(i - half)
		for j := 0; j < n; j++ {
			dx := float64(j - half)
			k.Set(i, j, math.Exp(-(dx*dx+dy*dy)/(2*sigma*sigma)))
		}
	}

	sum := mat.Sum(k)
	if !(sum > 0) {
		return nil, fmt.Errorf("%w: kernel sum %g for fwhm %g", ErrDegenerateKernel, sum, fwhm)
	}
	k.Scale(1/sum, k)
	return k, nil
}
