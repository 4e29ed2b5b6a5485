// Package convolution filters image planes with small 2D kernels.
package convolution

import (
	"fmt"

	"gonum.org/v1/gonum/mat"
)

// DirectLimit is the largest kernel area convolved with the direct
// algorithm; larger kernels go through the FFT.
const DirectLimit = 121

// Convolve2D convolves the ny x nx row-major plane data with kernel k,
// centred on each pixel. Values outside the plane are taken as zero.
// Kernel dimensions must be odd.
func Convolve2D(data []float64, nx, ny int, k mat.Matrix) ([]float64, error) {
	kr, kc, err := checkArgs(data, nx, ny, k)
	if err != nil {
		return nil, err
	}
	if kr*kc <= DirectLimit {
		return convolveDirect(data, nx, ny, k, kr, kc), nil
	}
	return convolveFFT(data, nx, ny, k, kr, kc), nil
}

func checkArgs(data []float64, nx, ny int, k mat.Matrix) (int, int, error) {
	if nx <= 0 || ny <= 0 || len(data) != nx*ny {
		return 0, 0, fmt.Errorf("plane of %d values does not match %dx%d", len(data), nx, ny)
	}
	if k == nil {
		return 0, 0, fmt.Errorf("nil kernel")
	}
	kr, kc := k.Dims()
	if kr%2 == 0 || kc%2 == 0 {
		return 0, 0, fmt.Errorf("kernel dimensions must be odd, got %dx%d", kr, kc)
	}
	return kr, kc, nil
}

func convolveDirect(data []float64, nx, ny int, k mat.Matrix, kr, kc int) []float64 {
	hr, hc := kr/2, kc/2
	out := make([]float64, nx*ny)
	for y := 0; y < ny; y++ {
		for x := 0; x < nx; x++ {
			var sum float64
			for u := 0; u < kr; u++ {
				sy := y + hr - u
				if sy < 0 || sy >= ny {
					continue
				}
				for v := 0; v < kc; v++ {
					sx := x + hc - v
					if sx < 0 || sx >= nx {
						continue
					}
					sum += k.At(u, v) * data[sy*nx+sx]
				}
			}
			out[y*nx+x] = sum
		}
	}
	return out
}

// convolveFFT zero-pads both operands to the full linear convolution size,
// multiplies their spectra and crops the centred window.
func convolveFFT(data []float64, nx, ny int, k mat.Matrix, kr, kc int) []float64 {
	rows, cols := ny+kr-1, nx+kc-1

	a := make([]complex128, rows*cols)
	for y := 0; y < ny; y++ {
		for x := 0; x < nx; x++ {
			a[y*cols+x] = complex(data[y*nx+x], 0)
		}
	}
	b := make([]complex128, rows*cols)
	for u := 0; u < kr; u++ {
		for v := 0; v < kc; v++ {
			b[u*cols+v] = complex(k.At(u, v), 0)
		}
	}

	fft2D(a, rows, cols, false)
	fft2D(b, rows, cols, false)
	for i := range a {
		a[i] *= b[i]
	}
	fft2D(a, rows, cols, true)

	hr, hc := kr/2, kc/2
	out := make([]float64, nx*ny)
	for y := 0; y < ny; y++ {
		for x := 0; x < nx; x++ {
			out[y*nx+x] = real(a[(y+hr)*cols+x+hc])
		}
	}
	return out
}
