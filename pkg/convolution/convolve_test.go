package convolution

import (
	"math/rand"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gonum.org/v1/gonum/floats"
	"gonum.org/v1/gonum/mat"
)

// TestDeltaResponse verifies that convolving a unit impulse reproduces the
// kernel centred on the impulse.
func TestDeltaResponse(t *testing.T) {
	nx, ny := 9, 7
	data := make([]float64, nx*ny)
	data[3*nx+4] = 1

	k := mat.NewDense(3, 3, []float64{
		1, 2, 3,
		4, 5, 6,
		7, 8, 9,
	})

	for name, fn := range map[string]func([]float64, int, int, mat.Matrix, int, int) []float64{
		"direct": convolveDirect,
		"fft":    convolveFFT,
	} {
		t.Run(name, func(t *testing.T) {
			out := fn(data, nx, ny, k, 3, 3)
			for u := -1; u <= 1; u++ {
				for v := -1; v <= 1; v++ {
					assert.InDelta(t, k.At(1+u, 1+v), out[(3+u)*nx+4+v], 1e-12)
				}
			}
			assert.InDelta(t, 45.0, floats.Sum(out), 1e-10)
		})
	}
}

// TestDirectMatchesFFT compares both algorithms on random data, including
// pixels near the border where zero padding matters.
func TestDirectMatchesFFT(t *testing.T) {
	rng := rand.New(rand.NewSource(42))
	nx, ny := 23, 17
	data := make([]float64, nx*ny)
	for i := range data {
		data[i] = rng.NormFloat64()
	}
	kv := make([]float64, 13*13)
	for i := range kv {
		kv[i] = rng.Float64()
	}
	k := mat.NewDense(13, 13, kv)

	direct := convolveDirect(data, nx, ny, k, 13, 13)
	viaFFT := convolveFFT(data, nx, ny, k, 13, 13)
	auto, err := Convolve2D(data, nx, ny, k)
	require.NoError(t, err)

	for i := range direct {
		assert.InDelta(t, direct[i], viaFFT[i], 1e-9, "pixel %d", i)
		assert.InDelta(t, viaFFT[i], auto[i], 1e-12)
	}
}

func TestConvolveArgs(t *testing.T) {
	_, err := Convolve2D(make([]float64, 10), 3, 3, mat.NewDense(3, 3, nil))
	assert.Error(t, err)

	_, err = Convolve2D(make([]float64, 9), 3, 3, mat.NewDense(2, 2, nil))
	assert.Error(t, err)

	_, err = Convolve2D(make([]float64, 9), 3, 3, nil)
	assert.Error(t, err)
}

// TestFFTRoundTrip checks that the inverse transform undoes the forward one.
func TestFFTRoundTrip(t *testing.T) {
	rows, cols := 6, 10
	data := make([]complex128, rows*cols)
	for i := range data {
		data[i] = complex(float64(i%7), float64(i%3))
	}
	orig := append([]complex128(nil), data...)

	fft2D(data, rows, cols, false)
	fft2D(data, rows, cols, true)
	for i := range data {
		assert.InDelta(t, real(orig[i]), real(data[i]), 1e-12)
		assert.InDelta(t, imag(orig[i]), imag(data[i]), 1e-12)
	}
}
