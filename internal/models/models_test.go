package models

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gonum.org/v1/gonum/mat"

	"radiosky/pkg/wcs"
)

func testWCS(t *testing.T) *wcs.WCS {
	t.Helper()
	w, err := wcs.NewImageWCS(16, 0.01, wcs.NewDirectionDeg(15, -45), wcs.ProjectionSIN)
	require.NoError(t, err)
	return w
}

// TestNewImage verifies shape bookkeeping and metadata validation.
func TestNewImage(t *testing.T) {
	w := testWCS(t)

	im, err := NewImage(2, 4, 8, 16, w, []float64{1e8, 1.1e8}, StokesIQUV)
	require.NoError(t, err)
	assert.Equal(t, 2, im.NChan())
	assert.Equal(t, 4, im.NPol())
	assert.Equal(t, 8, im.NY())
	assert.Equal(t, 16, im.NX())
	assert.Len(t, im.Data, 2*4*8*16)
	require.NoError(t, im.Validate())

	_, err = NewImage(2, 1, 8, 8, w, []float64{1e8}, StokesI)
	assert.ErrorIs(t, err, ErrShapeMismatch)

	_, err = NewImage(1, 2, 8, 8, w, []float64{1e8}, StokesI)
	assert.ErrorIs(t, err, ErrShapeMismatch)

	_, err = NewImage(1, 1, 0, 8, w, []float64{1e8}, StokesI)
	assert.ErrorIs(t, err, ErrShapeMismatch)

	_, err = NewImage(1, 1, 8, 8, nil, []float64{1e8}, StokesI)
	assert.Error(t, err)
}

// TestPlaneSharesStorage verifies that Plane is a view and SumPlanes adds all planes.
func TestPlaneSharesStorage(t *testing.T) {
	im, err := NewImage(2, 2, 4, 4, testWCS(t), []float64{1, 2}, StokesIV)
	require.NoError(t, err)

	im.Plane(1, 1)[5] = 3
	assert.Equal(t, 3.0, im.At(1, 1, 1, 1))

	im.Add(0, 1, 1, 1, 2)
	sum := im.SumPlanes()
	assert.Equal(t, 5.0, sum[5])
	assert.Equal(t, 0.0, sum[0])
}

func TestPolarisationFrame(t *testing.T) {
	f, err := ParsePolarisationFrame("STOKESI")
	require.NoError(t, err)
	assert.Equal(t, StokesI, f)
	assert.Equal(t, 4, Linear.NPol())

	_, err = ParsePolarisationFrame("bogus")
	assert.Error(t, err)
}

// TestSkycomponentIsImmutable checks that callers cannot mutate a component
// through its inputs or accessors.
func TestSkycomponentIsImmutable(t *testing.T) {
	flux := mat.NewDense(2, 1, []float64{1, 2})
	freq := []float64{1e8, 2e8}
	params := map[string]float64{"xpixel": 3}

	c, err := NewSkycomponent(wcs.NewDirectionDeg(10, 10), flux, freq, ShapePoint, params, "src")
	require.NoError(t, err)

	flux.Set(0, 0, 100)
	freq[0] = 0
	params["xpixel"] = 0
	c.Flux().Set(1, 0, 100)
	c.Frequency()[1] = 0
	c.Params()["xpixel"] = 0

	assert.Equal(t, 1.0, c.FluxAt(0, 0))
	assert.Equal(t, 2.0, c.FluxAt(1, 0))
	assert.Equal(t, []float64{1e8, 2e8}, c.Frequency())
	x, ok := c.Param("xpixel")
	assert.True(t, ok)
	assert.Equal(t, 3.0, x)
	assert.Equal(t, 3.0, c.TotalFlux())
	assert.Equal(t, 2, c.NChan())
	assert.Equal(t, 1, c.NPol())
}

func TestNewSkycomponentValidation(t *testing.T) {
	_, err := NewSkycomponent(wcs.Direction{}, mat.NewDense(2, 1, nil), []float64{1}, ShapePoint, nil, "bad")
	assert.ErrorIs(t, err, ErrShapeMismatch)

	_, err = NewSkycomponent(wcs.Direction{}, nil, []float64{1}, ShapePoint, nil, "nil")
	assert.Error(t, err)
}

func TestShapeText(t *testing.T) {
	s, err := ParseShape("gaussian")
	require.NoError(t, err)
	assert.Equal(t, ShapeGaussian, s)

	_, err = ParseShape("Disk")
	assert.ErrorContains(t, err, "Disk")

	text, err := ShapePoint.MarshalText()
	require.NoError(t, err)
	assert.Equal(t, "Point", string(text))

	var back Shape
	require.NoError(t, back.UnmarshalText([]byte("Gaussian")))
	assert.Equal(t, ShapeGaussian, back)
}

func TestSkymodel(t *testing.T) {
	sm := NewSkymodel()
	im, err := NewImage(1, 1, 4, 4, testWCS(t), []float64{1}, StokesI)
	require.NoError(t, err)
	sm.AddImage(im)
	assert.Len(t, sm.Images, 1)
	assert.Same(t, im, sm.Images[0])
	assert.Empty(t, sm.Components)
}
