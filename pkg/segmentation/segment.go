// Package segmentation partitions an intensity map into connected regions
// above a detection threshold and measures the regions on image planes.
package segmentation

import (
	"fmt"
	"image"
	"sort"

	"gonum.org/v1/gonum/mat"

	"radiosky/pkg/convolution"
)

// SegmentationImage is a label map: 0 is background, 1..NLabels are segments.
type SegmentationImage struct {
	// Labels holds one label per pixel in row-major order
	Labels []int

	// NX and NY are the map dimensions
	NX, NY int

	// NLabels is the number of segments
	NLabels int

	segments []Segment
}

// Segment is one labelled region.
type Segment struct {
	// Label is the segment's value in the label map
	Label int

	// Pixels holds the row-major indices of the segment's pixels in raster order
	Pixels []int

	// X and Y hold the 0-relative pixel coordinates matching Pixels
	X, Y []float64

	// Bounds is the bounding box in pixel coordinates
	Bounds image.Rectangle
}

// Area returns the number of pixels in the segment.
func (s Segment) Area() int { return len(s.Pixels) }

// neighbours8 lists the 8-connected offsets.
var neighbours8 = [8][2]int{
	{-1, -1}, {0, -1}, {1, -1},
	{-1, 0}, {1, 0},
	{-1, 1}, {0, 1}, {1, 1},
}

// DetectSources filters data with k (when non-nil), keeps the pixels strictly
// above threshold and labels their 8-connected regions. Regions with fewer
// than npixels pixels are discarded. Labels follow raster order of each
// region's first pixel.
func DetectSources(data []float64, nx, ny int, threshold float64, npixels int, k mat.Matrix) (*SegmentationImage, error) {
	if nx <= 0 || ny <= 0 || len(data) != nx*ny {
		return nil, fmt.Errorf("intensity map of %d values does not match %dx%d", len(data), nx, ny)
	}
	if npixels < 1 {
		return nil, fmt.Errorf("npixels must be at least 1, got %d", npixels)
	}

	filtered := data
	if k != nil {
		var err error
		filtered, err = convolution.Convolve2D(data, nx, ny, k)
		if err != nil {
			return nil, fmt.Errorf("failed to filter intensity map: %w", err)
		}
	}

	mask := make([]bool, len(filtered))
	for i, v := range filtered {
		mask[i] = v > threshold
	}

	seg := &SegmentationImage{
		Labels:   make([]int, nx*ny),
		NX:       nx,
		NY:       ny,
		segments: make([]Segment, 0),
	}
	visited := make([]bool, len(mask))
	queue := make([]int, 0, 64)

	for start := range mask {
		if !mask[start] || visited[start] {
			continue
		}

		// Breadth-first flood fill of one region.
		queue = append(queue[:0], start)
		visited[start] = true
		for head := 0; head < len(queue); head++ {
			idx := queue[head]
			x, y := idx%nx, idx/nx
			for _, d := range neighbours8 {
				xn, yn := x+d[0], y+d[1]
				if xn < 0 || xn >= nx || yn < 0 || yn >= ny {
					continue
				}
				n := yn*nx + xn
				if mask[n] && !visited[n] {
					visited[n] = true
					queue = append(queue, n)
				}
			}
		}

		if len(queue) < npixels {
			continue
		}
		seg.NLabels++
		seg.segments = append(seg.segments, newSegment(seg.NLabels, queue, nx))
		for _, idx := range queue {
			seg.Labels[idx] = seg.NLabels
		}
	}

	return seg, nil
}

func newSegment(label int, region []int, nx int) Segment {
	pixels := append([]int(nil), region...)
	sort.Ints(pixels)

	s := Segment{
		Label:  label,
		Pixels: pixels,
		X:      make([]float64, len(pixels)),
		Y:      make([]float64, len(pixels)),
	}
	for i, idx := range pixels {
		x, y := idx%nx, idx/nx
		s.X[i], s.Y[i] = float64(x), float64(y)
		r := image.Rect(x, y, x+1, y+1)
		if i == 0 {
			s.Bounds = r
		} else {
			s.Bounds = s.Bounds.Union(r)
		}
	}
	return s
}

// Segments returns the segments ordered by label.
func (s *SegmentationImage) Segments() []Segment {
	return s.segments
}
