// Package visualization renders image cube planes as grayscale pictures for
// quick inspection.
package visualization

import (
	"fmt"
	"image"
	"image/color"
	"image/png"
	"math"
	"os"
	"path/filepath"

	"gonum.org/v1/gonum/floats"

	"radiosky/internal/models"
)

// Viewer renders the planes of one image cube.
type Viewer struct {
	// im holds the cube being displayed
	im *models.Image

	// clip bounds the display range; zero values mean the plane's own range
	clipLow  float64
	clipHigh float64
}

// NewViewer creates a viewer for im with automatic scaling.
func NewViewer(im *models.Image) *Viewer {
	return &Viewer{im: im}
}

// SetRange fixes the display range. Values outside are saturated.
func (v *Viewer) SetRange(low, high float64) error {
	if !(high > low) {
		return fmt.Errorf("display range [%g, %g] is empty", low, high)
	}
	v.clipLow, v.clipHigh = low, high
	return nil
}

// ExtractPlane renders plane (ch, pol). Row 0 of the picture is the top row
// of the sky, so y increases upward as in the image's WCS.
func (v *Viewer) ExtractPlane(ch, pol int) (image.Image, error) {
	if ch < 0 || ch >= v.im.NChan() {
		return nil, fmt.Errorf("channel %d outside [0, %d)", ch, v.im.NChan())
	}
	if pol < 0 || pol >= v.im.NPol() {
		return nil, fmt.Errorf("polarisation %d outside [0, %d)", pol, v.im.NPol())
	}
	return v.render(v.im.Plane(ch, pol)), nil
}

// ExtractSum renders the sum over channels and polarisations.
func (v *Viewer) ExtractSum() image.Image {
	return v.render(v.im.SumPlanes())
}

func (v *Viewer) render(plane []float64) *image.Gray16 {
	nx, ny := v.im.NX(), v.im.NY()
	low, high := v.clipLow, v.clipHigh
	if !(high > low) {
		low, high = floats.Min(plane), floats.Max(plane)
	}
	scale := 0.0
	if high > low {
		scale = 65535 / (high - low)
	}

	img := image.NewGray16(image.Rect(0, 0, nx, ny))
	for y := 0; y < ny; y++ {
		for x := 0; x < nx; x++ {
			value := uint16(math.Max(0, math.Min(65535, (plane[y*nx+x]-low)*scale)))
			img.SetGray16(x, ny-1-y, color.Gray16{Y: value})
		}
	}
	return img
}

// SavePNG writes a rendered plane as a 16-bit PNG.
func (v *Viewer) SavePNG(img image.Image, filename string) error {
	file, err := os.Create(filename)
	if err != nil {
		return err
	}
	defer file.Close()

	if err := png.Encode(file, img); err != nil {
		return fmt.Errorf("encoding %s: %w", filename, err)
	}
	return nil
}

// SavePlaneSequence writes every plane to outputDir as plane_cCCC_pP.png.
func (v *Viewer) SavePlaneSequence(outputDir string) error {
	if err := os.MkdirAll(outputDir, 0755); err != nil {
		return err
	}

	for ch := 0; ch < v.im.NChan(); ch++ {
		for pol := 0; pol < v.im.NPol(); pol++ {
			img, err := v.ExtractPlane(ch, pol)
			if err != nil {
				return err
			}

			filename := filepath.Join(outputDir, fmt.Sprintf("plane_c%03d_p%d.png", ch, pol))
			if err := v.SavePNG(img, filename); err != nil {
				return err
			}
		}
	}

	return nil
}
