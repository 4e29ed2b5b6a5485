package models

import (
	"errors"
	"fmt"
	"strings"

	"gonum.org/v1/gonum/floats"

	"radiosky/pkg/wcs"
)

// ErrShapeMismatch is returned when array dimensions disagree with their metadata.
var ErrShapeMismatch = errors.New("shape mismatch")

// PolarisationFrame names the polarisation basis of an image's pol axis.
type PolarisationFrame string

const (
	StokesI    PolarisationFrame = "stokesI"
	StokesIQUV PolarisationFrame = "stokesIQUV"
	StokesIV   PolarisationFrame = "stokesIV"
	Linear     PolarisationFrame = "linear"
	Circular   PolarisationFrame = "circular"
)

// NPol returns the number of polarisation products in the frame, or 0 for
// an unknown frame.
func (f PolarisationFrame) NPol() int {
	switch f {
	case StokesI:
		return 1
	case StokesIV:
		return 2
	case StokesIQUV, Linear, Circular:
		return 4
	default:
		return 0
	}
}

// ParsePolarisationFrame resolves a frame name, ignoring case.
func ParsePolarisationFrame(name string) (PolarisationFrame, error) {
	for _, f := range []PolarisationFrame{StokesI, StokesIQUV, StokesIV, Linear, Circular} {
		if strings.EqualFold(name, string(f)) {
			return f, nil
		}
	}
	return "", fmt.Errorf("unknown polarisation frame %q", name)
}

// Image is a spectral-polarisation image cube.
type Image struct {
	// Data holds the cube in row-major (chan, pol, y, x) order
	Data []float64

	// Shape is (nchan, npol, ny, nx)
	Shape [4]int

	// WCS maps the (x, y) pixel axes onto the sky
	WCS *wcs.WCS

	// Frequency holds one value per channel, in Hz
	Frequency []float64

	// PolarisationFrame describes the pol axis
	PolarisationFrame PolarisationFrame
}

// NewImage allocates a zero-filled cube and checks that the metadata agrees
// with the requested shape.
func NewImage(nchan, npol, ny, nx int, w *wcs.WCS, frequency []float64, frame PolarisationFrame) (*Image, error) {
	if nchan <= 0 || npol <= 0 || ny <= 0 || nx <= 0 {
		return nil, fmt.Errorf("%w: image axes must be positive, got [%d %d %d %d]",
			ErrShapeMismatch, nchan, npol, ny, nx)
	}
	if w == nil {
		return nil, errors.New("image requires a WCS")
	}
	if err := w.Validate(); err != nil {
		return nil, err
	}
	if len(frequency) != nchan {
		return nil, fmt.Errorf("%w: %d frequencies for %d channels", ErrShapeMismatch, len(frequency), nchan)
	}
	if frame.NPol() != npol {
		return nil, fmt.Errorf("%w: frame %q has %d polarisations, image has %d",
			ErrShapeMismatch, frame, frame.NPol(), npol)
	}

	freq := make([]float64, nchan)
	copy(freq, frequency)
	wc := *w
	return &Image{
		Data:              make([]float64, nchan*npol*ny*nx),
		Shape:             [4]int{nchan, npol, ny, nx},
		WCS:               &wc,
		Frequency:         freq,
		PolarisationFrame: frame,
	}, nil
}

// NChan returns the number of frequency channels.
func (im *Image) NChan() int { return im.Shape[0] }

// NPol returns the number of polarisations.
func (im *Image) NPol() int { return im.Shape[1] }

// NY returns the number of pixel rows.
func (im *Image) NY() int { return im.Shape[2] }

// NX returns the number of pixel columns.
func (im *Image) NX() int { return im.Shape[3] }

// Index returns the offset of (ch, pol, y, x) in Data.
func (im *Image) Index(ch, pol, y, x int) int {
	return ((ch*im.Shape[1]+pol)*im.Shape[2]+y)*im.Shape[3] + x
}

// At returns the value at (ch, pol, y, x).
func (im *Image) At(ch, pol, y, x int) float64 {
	return im.Data[im.Index(ch, pol, y, x)]
}

// Add accumulates v into (ch, pol, y, x).
func (im *Image) Add(ch, pol, y, x int, v float64) {
	im.Data[im.Index(ch, pol, y, x)] += v
}

// Plane returns the ny*nx plane of one channel and polarisation. The slice
// shares storage with the image.
func (im *Image) Plane(ch, pol int) []float64 {
	size := im.Shape[2] * im.Shape[3]
	start := im.Index(ch, pol, 0, 0)
	return im.Data[start : start+size : start+size]
}

// SumPlanes returns the sum of all channel and polarisation planes.
func (im *Image) SumPlanes() []float64 {
	sum := make([]float64, im.Shape[2]*im.Shape[3])
	for c := 0; c < im.NChan(); c++ {
		for p := 0; p < im.NPol(); p++ {
			floats.Add(sum, im.Plane(c, p))
		}
	}
	return sum
}

// Validate checks the invariants NewImage establishes, for images built by hand.
func (im *Image) Validate() error {
	for i, n := range im.Shape {
		if n <= 0 {
			return fmt.Errorf("%w: axis %d has length %d", ErrShapeMismatch, i, n)
		}
	}
	if want := im.Shape[0] * im.Shape[1] * im.Shape[2] * im.Shape[3]; len(im.Data) != want {
		return fmt.Errorf("%w: data has %d values, shape %v needs %d", ErrShapeMismatch, len(im.Data), im.Shape, want)
	}
	if len(im.Frequency) != im.NChan() {
		return fmt.Errorf("%w: %d frequencies for %d channels", ErrShapeMismatch, len(im.Frequency), im.NChan())
	}
	if im.PolarisationFrame.NPol() != im.NPol() {
		return fmt.Errorf("%w: frame %q does not describe %d polarisations", ErrShapeMismatch, im.PolarisationFrame, im.NPol())
	}
	if im.WCS == nil {
		return errors.New("image has no WCS")
	}
	return im.WCS.Validate()
}
