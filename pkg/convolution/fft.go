package convolution

import (
	"gonum.org/v1/gonum/dsp/fourier"
)

// fft2D performs an in-place 2D Fast Fourier Transform on a rows x cols
// row-major complex array. The transform is separable: every row is
// transformed first, then every column.
//
// With inverse set the result is normalized, so a forward transform followed
// by an inverse one reproduces the input.
func fft2D(data []complex128, rows, cols int, inverse bool) {
	rowFFT := fourier.NewCmplxFFT(cols)
	row := make([]complex128, cols)
	for i := 0; i < rows; i++ {
		copy(row, data[i*cols:(i+1)*cols])
		if inverse {
			rowFFT.Sequence(row, row)
		} else {
			rowFFT.Coefficients(row, row)
		}
		copy(data[i*cols:(i+1)*cols], row)
	}

	colFFT := fourier.NewCmplxFFT(rows)
	col := make([]complex128, rows)
	for j := 0; j < cols; j++ {
		for i := 0; i < rows; i++ {
			col[i] = data[i*cols+j]
		}
		if inverse {
			colFFT.Sequence(col, col)
		} else {
			colFFT.Coefficients(col, col)
		}
		for i := 0; i < rows; i++ {
			data[i*cols+j] = col[i]
		}
	}

	if inverse {
		scale := complex(1/float64(rows*cols), 0)
		for i := range data {
			data[i] *= scale
		}
	}
}
