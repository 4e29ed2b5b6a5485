package interpolation

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gonum.org/v1/gonum/floats"
	"gonum.org/v1/gonum/mat"
)

func boxKernel() *mat.Dense {
	return mat.NewDense(3, 3, []float64{
		1, 1, 1,
		1, 1, 1,
		1, 1, 1,
	})
}

// TestPlaceBoundaries exercises the three boundary policies on a corner pixel.
func TestPlaceBoundaries(t *testing.T) {
	const nx, ny = 4, 3

	t.Run("clip", func(t *testing.T) {
		fp, err := Place(boxKernel(), 0, 0, nx, ny, BoundaryClip)
		require.NoError(t, err)
		assert.Len(t, fp.Pixels, 4)
		assert.Equal(t, 5.0, fp.Dropped)

		plane := make([]float64, nx*ny)
		fp.Apply(plane, 2)
		assert.Equal(t, 8.0, floats.Sum(plane))
		assert.Equal(t, 2.0, plane[1*nx+1])
	})

	t.Run("wrap", func(t *testing.T) {
		fp, err := Place(boxKernel(), 0, 0, nx, ny, BoundaryWrap)
		require.NoError(t, err)
		assert.Len(t, fp.Pixels, 9)
		assert.Zero(t, fp.Dropped)

		plane := make([]float64, nx*ny)
		fp.Apply(plane, 1)
		assert.Equal(t, 9.0, floats.Sum(plane))
		assert.Equal(t, 1.0, plane[(ny-1)*nx+(nx-1)])
	})

	t.Run("reject", func(t *testing.T) {
		_, err := Place(boxKernel(), 0, 0, nx, ny, BoundaryReject)
		assert.ErrorIs(t, err, ErrOutOfBounds)

		fp, err := Place(boxKernel(), 1, 1, nx, ny, BoundaryReject)
		require.NoError(t, err)
		assert.Len(t, fp.Pixels, 9)
	})
}

func TestPlacePoint(t *testing.T) {
	fp, err := PlacePoint(2, 1, 4, 3, BoundaryReject)
	require.NoError(t, err)
	assert.Equal(t, []int{6}, fp.Pixels)

	fp, err = PlacePoint(-1, 1, 4, 3, BoundaryClip)
	require.NoError(t, err)
	assert.Empty(t, fp.Pixels)
	assert.Equal(t, 1.0, fp.Dropped)

	fp, err = PlacePoint(-1, 1, 4, 3, BoundaryWrap)
	require.NoError(t, err)
	assert.Equal(t, []int{7}, fp.Pixels)

	_, err = PlacePoint(4, 0, 4, 3, BoundaryReject)
	assert.ErrorIs(t, err, ErrOutOfBounds)
}

func TestParseBoundary(t *testing.T) {
	for name, want := range map[string]Boundary{"": BoundaryClip, "Clip": BoundaryClip, "wrap": BoundaryWrap, "REJECT": BoundaryReject} {
		got, err := ParseBoundary(name)
		require.NoError(t, err)
		assert.Equal(t, want, got)
		assert.NotEmpty(t, got.String())
	}
	_, err := ParseBoundary("mirror")
	assert.Error(t, err)
}
