package kernel

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gonum.org/v1/gonum/mat"
)

// TestGaussian2DNormalized verifies unit sum, odd size and symmetry over a range of widths.
func TestGaussian2DNormalized(t *testing.T) {
	for _, fwhm := range []float64{0.1, 0.5, 1.0, 2.0, 3.0, 4.5, 7.3, 12.0} {
		k, err := Gaussian2D(fwhm)
		require.NoError(t, err, "fwhm %g", fwhm)

		r, c := k.Dims()
		assert.Equal(t, r, c)
		assert.Equal(t, 1, r%2, "size must be odd for fwhm %g", fwhm)
		assert.Equal(t, Size(fwhm), r)
		assert.InDelta(t, 1.0, mat.Sum(k), 1e-12, "fwhm %g", fwhm)

		half := r / 2
		for i := 0; i < r; i++ {
			for j := 0; j < c; j++ {
				assert.InDelta(t, k.At(i, j), k.At(r-1-i, c-1-j), 1e-15)
				assert.InDelta(t, k.At(i, j), k.At(j, i), 1e-15)
				assert.LessOrEqual(t, k.At(i, j), k.At(half, half))
			}
		}
	}
}

func TestSize(t *testing.T) {
	assert.Equal(t, 3, Size(1.0)) // round(1.5) = 2, bumped to 3
	assert.Equal(t, 3, Size(2.0))
	assert.Equal(t, 5, Size(3.0)) // round(4.5) = 5
	assert.Equal(t, 1, Size(0.1))
	assert.Equal(t, 7, Size(4.0)) // 6 -> 7
}

func TestGaussian2DDegenerate(t *testing.T) {
	for _, fwhm := range []float64{0, -1, math.NaN(), math.Inf(1)} {
		_, err := Gaussian2D(fwhm)
		assert.ErrorIs(t, err, ErrDegenerateKernel, "fwhm %g", fwhm)
	}
}

func TestFWHMToSigma(t *testing.T) {
	assert.InDelta(t, 0.42466, FWHMToSigma, 1e-5)
}
