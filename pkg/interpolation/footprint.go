package interpolation

import (
	"errors"
	"fmt"
	"strings"

	"gonum.org/v1/gonum/mat"
)

// ErrOutOfBounds is returned when BoundaryReject meets an off-image pixel.
var ErrOutOfBounds = errors.New("insertion outside image")

// Boundary decides what happens to weight that lands outside the image.
type Boundary int

const (
	// BoundaryClip drops off-image weight.
	BoundaryClip Boundary = iota
	// BoundaryWrap folds off-image weight back periodically.
	BoundaryWrap
	// BoundaryReject fails the insertion.
	BoundaryReject
)

func (b Boundary) String() string {
	switch b {
	case BoundaryClip:
		return "clip"
	case BoundaryWrap:
		return "wrap"
	case BoundaryReject:
		return "reject"
	default:
		return fmt.Sprintf("Boundary(%d)", int(b))
	}
}

// ParseBoundary resolves "clip", "wrap" or "reject"; the empty string means clip.
func ParseBoundary(name string) (Boundary, error) {
	switch strings.ToLower(name) {
	case "", "clip":
		return BoundaryClip, nil
	case "wrap":
		return BoundaryWrap, nil
	case "reject":
		return BoundaryReject, nil
	default:
		return 0, fmt.Errorf("unknown boundary policy %q", name)
	}
}

// Footprint is the set of plane pixels a kernel writes to.
type Footprint struct {
	// Pixels holds row-major plane indices; repeats are possible when wrapping
	Pixels []int

	// Weights holds the kernel weight for each entry of Pixels
	Weights []float64

	// Dropped is the total weight clipped off the image
	Dropped float64
}

// Place lays kernel k over an nx x ny plane with its centre on pixel (x0, y0)
// and resolves off-image cells with policy b. Zero-weight cells are skipped.
func Place(k mat.Matrix, x0, y0, nx, ny int, b Boundary) (Footprint, error) {
	rows, cols := k.Dims()
	hr, hc := rows/2, cols/2
	fp := Footprint{
		Pixels:  make([]int, 0, rows*cols),
		Weights: make([]float64, 0, rows*cols),
	}
	for i := 0; i < rows; i++ {
		for j := 0; j < cols; j++ {
			w := k.At(i, j)
			if w == 0 {
				continue
			}
			x, y := x0+j-hc, y0+i-hr
			idx, ok, err := resolve(x, y, nx, ny, b)
			if err != nil {
				return Footprint{}, err
			}
			if !ok {
				fp.Dropped += w
				continue
			}
			fp.Pixels = append(fp.Pixels, idx)
			fp.Weights = append(fp.Weights, w)
		}
	}
	return fp, nil
}

// PlacePoint is Place for a single unit-weight pixel.
func PlacePoint(x, y, nx, ny int, b Boundary) (Footprint, error) {
	idx, ok, err := resolve(x, y, nx, ny, b)
	if err != nil {
		return Footprint{}, err
	}
	if !ok {
		return Footprint{Dropped: 1}, nil
	}
	return Footprint{Pixels: []int{idx}, Weights: []float64{1}}, nil
}

// Apply accumulates scale times the footprint into plane.
func (fp Footprint) Apply(plane []float64, scale float64) {
	for i, idx := range fp.Pixels {
		plane[idx] += scale * fp.Weights[i]
	}
}

func resolve(x, y, nx, ny int, b Boundary) (int, bool, error) {
	if x >= 0 && x < nx && y >= 0 && y < ny {
		return y*nx + x, true, nil
	}
	switch b {
	case BoundaryWrap:
		x = ((x % nx) + nx) % nx
		y = ((y % ny) + ny) % ny
		return y*nx + x, true, nil
	case BoundaryReject:
		return 0, false, fmt.Errorf("%w: pixel (%d, %d) on %dx%d grid", ErrOutOfBounds, x, y, nx, ny)
	default:
		return 0, false, nil
	}
}
