// Package wcs converts between image pixel coordinates and celestial
// directions for the zenithal projections used by radio images (SIN and TAN),
// following the FITS WCS conventions (Greisen & Calabretta 2002, Paper II).
package wcs

import (
	"errors"
	"fmt"
	"math"
)

// Projection names a FITS celestial projection code.
type Projection string

const (
	// ProjectionSIN is the orthographic projection used by synthesis imaging.
	ProjectionSIN Projection = "SIN"
	// ProjectionTAN is the gnomonic projection.
	ProjectionTAN Projection = "TAN"
)

// Origin selects the pixel indexing convention of a coordinate.
type Origin int

const (
	// OriginZero counts pixels from 0; array indices use this convention.
	OriginZero Origin = 0
	// OriginOne counts pixels from 1, as FITS headers do.
	OriginOne Origin = 1
)

var (
	// ErrInvalidWCS is returned for descriptors that cannot define a transform.
	ErrInvalidWCS = errors.New("wcs: invalid descriptor")

	// ErrOutsideProjection is returned when a coordinate has no image under the projection.
	ErrOutsideProjection = errors.New("wcs: coordinate outside projection domain")
)

// WCS holds the celestial part of a FITS world coordinate system.
// CRPIX is 1-relative, CRVAL and CDELT are in degrees.
type WCS struct {
	CRPIX      [2]float64 `yaml:"crpix" json:"crpix"`
	CRVAL      [2]float64 `yaml:"crval" json:"crval"`
	CDELT      [2]float64 `yaml:"cdelt" json:"cdelt"`
	Projection Projection `yaml:"projection" json:"projection"`
}

// New builds and validates a WCS descriptor.
func New(crpix, crval, cdelt [2]float64, projection Projection) (*WCS, error) {
	w := &WCS{CRPIX: crpix, CRVAL: crval, CDELT: cdelt, Projection: projection}
	if err := w.Validate(); err != nil {
		return nil, err
	}
	return w, nil
}

// NewImageWCS returns the descriptor of a square npixel image centred on
// centre, with RA increasing to the left. Pixel npixel/2 (0-relative) is the
// reference pixel.
func NewImageWCS(npixel int, cellsizeDeg float64, centre Direction, projection Projection) (*WCS, error) {
	if npixel <= 0 {
		return nil, fmt.Errorf("%w: npixel must be positive, got %d", ErrInvalidWCS, npixel)
	}
	ref := float64(npixel/2 + 1)
	return New(
		[2]float64{ref, ref},
		[2]float64{centre.RADeg(), centre.DecDeg()},
		[2]float64{-cellsizeDeg, cellsizeDeg},
		projection,
	)
}

// Validate checks that the descriptor defines an invertible transform.
func (w *WCS) Validate() error {
	if w.CDELT[0] == 0 || w.CDELT[1] == 0 || math.IsNaN(w.CDELT[0]) || math.IsNaN(w.CDELT[1]) {
		return fmt.Errorf("%w: cdelt must be non-zero, got %v", ErrInvalidWCS, w.CDELT)
	}
	switch w.Projection {
	case ProjectionSIN, ProjectionTAN:
	default:
		return fmt.Errorf("%w: unsupported projection %q", ErrInvalidWCS, w.Projection)
	}
	return nil
}

// Reference returns the direction of the reference pixel.
func (w *WCS) Reference() Direction {
	return NewDirectionDeg(w.CRVAL[0], w.CRVAL[1])
}

// PixelToSky converts a pixel position, counted with the given origin, to a
// celestial direction.
func (w *WCS) PixelToSky(x, y float64, origin Origin) (Direction, error) {
	shift := 1 - float64(origin)
	ix := deg2rad(w.CDELT[0] * (x + shift - w.CRPIX[0]))
	iy := deg2rad(w.CDELT[1] * (y + shift - w.CRPIX[1]))

	phi, theta, err := w.deproject(ix, iy)
	if err != nil {
		return Direction{}, fmt.Errorf("pixel (%g, %g): %w", x, y, err)
	}

	ref := w.Reference()
	sinT, cosT := math.Sincos(theta)
	sinD0, cosD0 := math.Sincos(ref.Dec)
	sinP, cosP := math.Sincos(phi - math.Pi)

	ra := ref.RA + math.Atan2(-cosT*sinP, sinT*cosD0-cosT*sinD0*cosP)
	dec := math.Asin(clampUnit(sinT*sinD0 + cosT*cosD0*cosP))
	return Direction{RA: wrapAngle(ra), Dec: dec}, nil
}

// SkyToPixel converts a celestial direction to a fractional pixel position
// counted with the given origin.
func (w *WCS) SkyToPixel(d Direction, origin Origin) (float64, float64, error) {
	ref := w.Reference()
	sinD, cosD := math.Sincos(d.Dec)
	sinD0, cosD0 := math.Sincos(ref.Dec)
	sinA, cosA := math.Sincos(d.RA - ref.RA)

	// (a, b) has length cos(theta); atan2 keeps theta accurate near the reference point
	a := -cosD * sinA
	b := sinD*cosD0 - cosD*sinD0*cosA
	phi := math.Pi + math.Atan2(a, b)
	theta := math.Atan2(sinD*sinD0+cosD*cosD0*cosA, math.Hypot(a, b))

	ix, iy, err := w.project(phi, theta)
	if err != nil {
		return 0, 0, fmt.Errorf("direction %s: %w", d, err)
	}

	shift := 1 - float64(origin)
	x := rad2deg(ix)/w.CDELT[0] + w.CRPIX[0] - shift
	y := rad2deg(iy)/w.CDELT[1] + w.CRPIX[1] - shift
	return x, y, nil
}

// deproject maps intermediate world coordinates (radians) to native
// spherical coordinates.
func (w *WCS) deproject(ix, iy float64) (phi, theta float64, err error) {
	r := math.Hypot(ix, iy)
	if r == 0 {
		phi = 0
	} else {
		phi = math.Atan2(ix, -iy)
	}
	switch w.Projection {
	case ProjectionSIN:
		if r > 1 {
			return 0, 0, ErrOutsideProjection
		}
		theta = math.Acos(r)
	case ProjectionTAN:
		theta = math.Atan2(1, r)
	default:
		return 0, 0, fmt.Errorf("%w: unsupported projection %q", ErrInvalidWCS, w.Projection)
	}
	return phi, theta, nil
}

// project maps native spherical coordinates to intermediate world
// coordinates (radians).
func (w *WCS) project(phi, theta float64) (ix, iy float64, err error) {
	var r float64
	switch w.Projection {
	case ProjectionSIN:
		if theta < 0 {
			return 0, 0, ErrOutsideProjection
		}
		r = math.Cos(theta)
	case ProjectionTAN:
		if theta <= 0 {
			return 0, 0, ErrOutsideProjection
		}
		r = math.Cos(theta) / math.Sin(theta)
	default:
		return 0, 0, fmt.Errorf("%w: unsupported projection %q", ErrInvalidWCS, w.Projection)
	}
	sinP, cosP := math.Sincos(phi)
	return r * sinP, -r * cosP, nil
}

func deg2rad(v float64) float64 { return v * math.Pi / 180 }

func rad2deg(v float64) float64 { return v * 180 / math.Pi }

func clampUnit(v float64) float64 {
	return math.Max(-1, math.Min(1, v))
}
