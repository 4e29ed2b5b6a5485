package models

import (
	"errors"
	"fmt"
	"strings"

	"gonum.org/v1/gonum/mat"

	"radiosky/pkg/wcs"
)

// Shape is the brightness distribution of a Skycomponent.
type Shape int

const (
	// ShapePoint is an unresolved source.
	ShapePoint Shape = iota
	// ShapeGaussian is an elliptical Gaussian source.
	ShapeGaussian
)

func (s Shape) String() string {
	switch s {
	case ShapePoint:
		return "Point"
	case ShapeGaussian:
		return "Gaussian"
	default:
		return fmt.Sprintf("Shape(%d)", int(s))
	}
}

// ParseShape resolves a shape name such as "Point", ignoring case.
func ParseShape(name string) (Shape, error) {
	for _, s := range []Shape{ShapePoint, ShapeGaussian} {
		if strings.EqualFold(name, s.String()) {
			return s, nil
		}
	}
	return 0, fmt.Errorf("unknown component shape %q", name)
}

// MarshalText implements encoding.TextMarshaler.
func (s Shape) MarshalText() ([]byte, error) {
	if s != ShapePoint && s != ShapeGaussian {
		return nil, fmt.Errorf("unknown component shape %d", int(s))
	}
	return []byte(s.String()), nil
}

// UnmarshalText implements encoding.TextUnmarshaler.
func (s *Shape) UnmarshalText(text []byte) error {
	parsed, err := ParseShape(string(text))
	if err != nil {
		return err
	}
	*s = parsed
	return nil
}

// Skycomponent is a discrete source on the sky. It is immutable once built:
// accessors hand out copies.
type Skycomponent struct {
	direction wcs.Direction
	frequency []float64
	flux      *mat.Dense
	shape     Shape
	params    map[string]float64
	name      string
}

// NewSkycomponent builds a component. flux is nchan x npol and must have one
// row per frequency. The inputs are copied.
func NewSkycomponent(direction wcs.Direction, flux mat.Matrix, frequency []float64, shape Shape,
	params map[string]float64, name string) (*Skycomponent, error) {
	if flux == nil {
		return nil, errors.New("skycomponent requires a flux matrix")
	}
	if !direction.IsFinite() {
		return nil, fmt.Errorf("skycomponent %q: non-finite direction %s", name, direction)
	}
	rows, _ := flux.Dims()
	if rows != len(frequency) {
		return nil, fmt.Errorf("%w: skycomponent %q has %d flux rows and %d frequencies",
			ErrShapeMismatch, name, rows, len(frequency))
	}

	p := make(map[string]float64, len(params))
	for k, v := range params {
		p[k] = v
	}
	return &Skycomponent{
		direction: direction,
		frequency: append([]float64(nil), frequency...),
		flux:      mat.DenseCopyOf(flux),
		shape:     shape,
		params:    p,
		name:      name,
	}, nil
}

// Direction returns the sky position.
func (c *Skycomponent) Direction() wcs.Direction { return c.direction }

// Frequency returns a copy of the per-channel frequencies.
func (c *Skycomponent) Frequency() []float64 { return append([]float64(nil), c.frequency...) }

// Flux returns a copy of the nchan x npol flux matrix.
func (c *Skycomponent) Flux() *mat.Dense { return mat.DenseCopyOf(c.flux) }

// FluxAt returns the flux of one channel and polarisation.
func (c *Skycomponent) FluxAt(ch, pol int) float64 { return c.flux.At(ch, pol) }

// NChan returns the number of channels.
func (c *Skycomponent) NChan() int {
	r, _ := c.flux.Dims()
	return r
}

// NPol returns the number of polarisations.
func (c *Skycomponent) NPol() int {
	_, p := c.flux.Dims()
	return p
}

// Shape returns the shape tag.
func (c *Skycomponent) Shape() Shape { return c.shape }

// Params returns a copy of the shape parameters.
func (c *Skycomponent) Params() map[string]float64 {
	p := make(map[string]float64, len(c.params))
	for k, v := range c.params {
		p[k] = v
	}
	return p
}

// Param returns a single shape parameter.
func (c *Skycomponent) Param(key string) (float64, bool) {
	v, ok := c.params[key]
	return v, ok
}

// Name returns the human-readable name.
func (c *Skycomponent) Name() string { return c.name }

// TotalFlux sums the flux matrix; mainly useful for logs.
func (c *Skycomponent) TotalFlux() float64 { return mat.Sum(c.flux) }

func (c *Skycomponent) String() string {
	return fmt.Sprintf("Skycomponent %q: %s at %s, %d channels x %d pols, total flux %.6g",
		c.name, c.shape, c.direction, c.NChan(), c.NPol(), c.TotalFlux())
}
