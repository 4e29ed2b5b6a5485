// Package interpolation spreads point values over pixel grids with Lanczos
// kernels and resolves where the weights land on a finite image.
package interpolation

import (
	"errors"
	"fmt"
	"math"

	"gonum.org/v1/gonum/mat"
)

// DefaultWindow is the Lanczos half-width used when none is given.
const DefaultWindow = 7

// ErrDegenerateKernel is matched by every DegenerateKernelError.
var ErrDegenerateKernel = errors.New("degenerate interpolation kernel")

// DegenerateKernelError reports a kernel whose coefficients do not sum to a
// positive number, so it cannot be normalized.
type DegenerateKernelError struct {
	Sum    float64
	X, Y   float64
	Window int
}

func (e *DegenerateKernelError) Error() string {
	return fmt.Sprintf("degenerate Lanczos kernel at fractional offset (%.6f, %.6f), window %d: coefficient sum %g",
		e.X, e.Y, e.Window, e.Sum)
}

// Is makes errors.Is(err, ErrDegenerateKernel) match.
func (e *DegenerateKernelError) Is(target error) bool { return target == ErrDegenerateKernel }

// Sinc is the normalized sinc, sin(πv)/(πv), with Sinc(0) = 1.
func Sinc(v float64) float64 {
	if v == 0 {
		return 1
	}
	pv := math.Pi * v
	return math.Sin(pv) / pv
}

// Lanczos evaluates the window-a Lanczos kernel sinc(v)·sinc(v/a). It is
// zero for |v| >= a.
func Lanczos(v float64, a int) float64 {
	if math.Abs(v) >= float64(a) {
		return 0
	}
	return Sinc(v) * Sinc(v/float64(a))
}

// Split returns the integer and fractional parts of a pixel coordinate, with
// the fraction in [0, 1).
func Split(v float64) (int, float64) {
	f := math.Floor(v)
	return int(f), v - f
}

// LanczosKernel returns the (2a+1)x(2a+1) kernel that spreads a point lying
// fracX, fracY past the central pixel. Entry [dy+a][dx+a] weights the pixel
// at offset (dx, dy): L(dx-fracX)·L(dy-fracY). The kernel is normalized to a
// unit sum.
func LanczosKernel(fracX, fracY float64, a int) (*mat.Dense, error) {
	if a < 1 {
		return nil, fmt.Errorf("lanczos window must be a positive integer, got %d", a)
	}
	n := 2*a + 1
	lx := make([]float64, n)
	ly := make([]float64, n)
	for i := 0; i < n; i++ {
		d := float64(i - a)
		lx[i] = Lanczos(d-fracX, a)
		ly[i] = Lanczos(d-fracY, a)
	}

	k := mat.NewDense(n, n, nil)
	k.Outer(1, mat.NewVecDense(n, ly), mat.NewVecDense(n, lx))

	sum := mat.Sum(k)
	if !(sum > 0) {
		return nil, &DegenerateKernelError{Sum: sum, X: fracX, Y: fracY, Window: a}
	}
	k.Scale(1/sum, k)
	return k, nil
}
