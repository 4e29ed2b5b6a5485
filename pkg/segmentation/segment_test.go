package segmentation

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"radiosky/pkg/kernel"
)

type blob struct {
	x, y, amp, sigma float64
}

// gaussianField renders noiseless circular Gaussians on an nx x ny grid.
func gaussianField(nx, ny int, blobs []blob) []float64 {
	data := make([]float64, nx*ny)
	for y := 0; y < ny; y++ {
		for x := 0; x < nx; x++ {
			for _, b := range blobs {
				dx, dy := float64(x)-b.x, float64(y)-b.y
				data[y*nx+x] += b.amp * math.Exp(-(dx*dx+dy*dy)/(2*b.sigma*b.sigma))
			}
		}
	}
	return data
}

// TestDetectThreeBlobs verifies that three separated sources give three
// segments whose centroids land on the injected positions.
func TestDetectThreeBlobs(t *testing.T) {
	nx, ny := 64, 64
	blobs := []blob{
		{x: 12.3, y: 15.6, amp: 10, sigma: 1.5},
		{x: 40.0, y: 20.2, amp: 5, sigma: 1.5},
		{x: 25.7, y: 48.1, amp: 8, sigma: 1.5},
	}
	data := gaussianField(nx, ny, blobs)

	k, err := kernel.Gaussian2D(2.0)
	require.NoError(t, err)

	seg, err := DetectSources(data, nx, ny, 1.0, 5, k)
	require.NoError(t, err)
	require.Equal(t, 3, seg.NLabels)
	require.Len(t, seg.Segments(), 3)

	for _, b := range blobs {
		label := seg.Labels[int(math.Round(b.y))*nx+int(math.Round(b.x))]
		require.NotZero(t, label, "blob at (%g, %g) not segmented", b.x, b.y)

		s := seg.Segments()[label-1]
		assert.Equal(t, label, s.Label)
		assert.GreaterOrEqual(t, s.Area(), 5)

		props := Measure(data, data, s)
		assert.InDelta(t, b.x, props.XCentroid, 0.5)
		assert.InDelta(t, b.y, props.YCentroid, 0.5)
		assert.LessOrEqual(t, props.MaxValue, b.amp)
		assert.Greater(t, props.MaxValue, 0.5*b.amp)
	}
}

// TestDetectLabelsAreConsecutive checks labels 1..K in raster order and that
// background stays zero.
func TestDetectLabelsAreConsecutive(t *testing.T) {
	nx, ny := 10, 6
	data := make([]float64, nx*ny)
	// Two 2x2 squares; the upper-right one starts first in raster order.
	for _, p := range [][2]int{{6, 1}, {7, 1}, {6, 2}, {7, 2}, {1, 3}, {2, 3}, {1, 4}, {2, 4}} {
		data[p[1]*nx+p[0]] = 1
	}

	seg, err := DetectSources(data, nx, ny, 0.5, 4, nil)
	require.NoError(t, err)
	require.Equal(t, 2, seg.NLabels)
	assert.Equal(t, 1, seg.Labels[1*nx+6])
	assert.Equal(t, 2, seg.Labels[3*nx+1])
	assert.Equal(t, 0, seg.Labels[0])

	count := 0
	for _, l := range seg.Labels {
		if l != 0 {
			count++
		}
	}
	assert.Equal(t, 8, count)

	first := seg.Segments()[0]
	assert.Equal(t, 6, first.Bounds.Min.X)
	assert.Equal(t, 8, first.Bounds.Max.X)
	assert.Equal(t, 1, first.Bounds.Min.Y)
	assert.Equal(t, 3, first.Bounds.Max.Y)
}

// TestDetectNPixels verifies that small regions are rejected and diagonal
// neighbours join one region.
func TestDetectNPixels(t *testing.T) {
	nx, ny := 8, 8
	data := make([]float64, nx*ny)
	// isolated spike plus a diagonal line of 5 pixels
	data[0] = 5
	for i := 2; i < 7; i++ {
		data[i*nx+i] = 5
	}

	seg, err := DetectSources(data, nx, ny, 1, 5, nil)
	require.NoError(t, err)
	assert.Equal(t, 1, seg.NLabels)
	assert.Equal(t, 0, seg.Labels[0])
	assert.Equal(t, 5, seg.Segments()[0].Area())

	seg, err = DetectSources(data, nx, ny, 1, 1, nil)
	require.NoError(t, err)
	assert.Equal(t, 2, seg.NLabels)

	seg, err = DetectSources(data, nx, ny, 5, 1, nil)
	require.NoError(t, err)
	assert.Equal(t, 0, seg.NLabels, "threshold is strict")
}

func TestDetectSourcesArgs(t *testing.T) {
	_, err := DetectSources(make([]float64, 5), 2, 2, 0, 5, nil)
	assert.Error(t, err)

	_, err = DetectSources(make([]float64, 4), 2, 2, 0, 0, nil)
	assert.Error(t, err)
}

// TestMeasureWithoutSignal checks that an all-negative plane yields NaN
// centroids rather than a made-up position.
func TestMeasureWithoutSignal(t *testing.T) {
	s := Segment{Label: 1, Pixels: []int{0, 1}, X: []float64{0, 1}, Y: []float64{0, 0}}
	data := []float64{-1, -2}

	props := Measure(data, data, s)
	assert.Equal(t, -1.0, props.MaxValue)
	assert.True(t, math.IsNaN(props.XCentroid))
	assert.True(t, math.IsNaN(props.YCentroid))
}

func TestSigmaThreshold(t *testing.T) {
	data := []float64{1, 2, 3, 4, 5, math.NaN()}
	// median 3, sample stddev sqrt(2.5)
	assert.InDelta(t, 3+2*math.Sqrt(2.5), SigmaThreshold(data, 2), 1e-12)
	assert.True(t, math.IsNaN(SigmaThreshold([]float64{math.NaN()}, 3)))
	assert.Equal(t, 7.0, SigmaThreshold([]float64{7}, 3))
}
