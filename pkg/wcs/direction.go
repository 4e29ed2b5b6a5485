package wcs

import (
	"fmt"
	"math"
)

// Direction is a point on the celestial sphere (ICRS), in radians.
type Direction struct {
	RA  float64
	Dec float64
}

// NewDirectionDeg builds a Direction from right ascension and declination in degrees.
func NewDirectionDeg(raDeg, decDeg float64) Direction {
	return Direction{RA: raDeg * math.Pi / 180, Dec: decDeg * math.Pi / 180}
}

// RADeg returns the right ascension in degrees.
func (d Direction) RADeg() float64 { return d.RA * 180 / math.Pi }

// DecDeg returns the declination in degrees.
func (d Direction) DecDeg() float64 { return d.Dec * 180 / math.Pi }

// Separation returns the great-circle distance to other in radians.
// Uses the Vincenty formula, which stays accurate for both tiny and
// antipodal separations.
func (d Direction) Separation(other Direction) float64 {
	sinD1, cosD1 := math.Sincos(d.Dec)
	sinD2, cosD2 := math.Sincos(other.Dec)
	sinDL, cosDL := math.Sincos(other.RA - d.RA)

	num := math.Hypot(cosD2*sinDL, cosD1*sinD2-sinD1*cosD2*cosDL)
	den := sinD1*sinD2 + cosD1*cosD2*cosDL
	return math.Atan2(num, den)
}

// UnitVector returns the Cartesian unit vector pointing at d.
func (d Direction) UnitVector() [3]float64 {
	sinD, cosD := math.Sincos(d.Dec)
	sinA, cosA := math.Sincos(d.RA)
	return [3]float64{cosD * cosA, cosD * sinA, sinD}
}

// IsFinite reports whether both angles are finite numbers.
func (d Direction) IsFinite() bool {
	return !math.IsNaN(d.RA) && !math.IsInf(d.RA, 0) && !math.IsNaN(d.Dec) && !math.IsInf(d.Dec, 0)
}

func (d Direction) String() string {
	return fmt.Sprintf("(ra=%.6fdeg, dec=%.6fdeg)", d.RADeg(), d.DecDeg())
}

// wrapAngle maps an angle into [0, 2π).
func wrapAngle(a float64) float64 {
	a = math.Mod(a, 2*math.Pi)
	if a < 0 {
		a += 2 * math.Pi
	}
	// Tiny negative inputs round up to exactly 2π.
	if a >= 2*math.Pi {
		a = 0
	}
	return a
}

// WrapRA maps a right ascension into [0, 2π).
func WrapRA(ra float64) float64 { return wrapAngle(ra) }
