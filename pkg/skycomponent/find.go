package skycomponent

import (
	"errors"
	"fmt"
	"math"

	"gonum.org/v1/gonum/floats"
	"gonum.org/v1/gonum/mat"
	"gonum.org/v1/gonum/stat"

	"radiosky/internal/models"
	"radiosky/pkg/convolution"
	"radiosky/pkg/kernel"
	"radiosky/pkg/segmentation"
	"radiosky/pkg/wcs"
)

// FindOptions controls source extraction.
type FindOptions struct {
	// FWHM of the Gaussian smoothing kernel, in pixels
	FWHM float64 `yaml:"fwhm"`

	// Threshold is the absolute detection level on the filtered summed image
	Threshold float64 `yaml:"threshold"`

	// NPixels is the smallest accepted segment
	NPixels int `yaml:"npixels"`
}

// DefaultFindOptions returns fwhm 1, threshold 10 and 5 pixels.
func DefaultFindOptions() FindOptions {
	return FindOptions{FWHM: 1.0, Threshold: 10.0, NPixels: 5}
}

// segmentTable holds the per-channel, per-polarisation measurements of one segment.
type segmentTable struct {
	label int
	flux  *mat.Dense
	x     *mat.Dense
	y     *mat.Dense
}

// FindSkycomponents segments the channel and polarisation sum of im and
// returns one Point component per segment. Positions are flux-weighted over
// all planes; the flux is the per-plane peak. Segments whose flux weights sum
// to zero are skipped with a warning.
func FindSkycomponents(im *models.Image, opts FindOptions) ([]*models.Skycomponent, error) {
	if im == nil {
		return nil, errors.New("find skycomponents: nil image")
	}
	if err := im.Validate(); err != nil {
		return nil, fmt.Errorf("find skycomponents: %w", err)
	}
	log := logger()
	log.Info("Finding components in image by segmentation",
		"fwhm", opts.FWHM, "threshold", opts.Threshold, "npixels", opts.NPixels)

	k, err := kernel.Gaussian2D(opts.FWHM)
	if err != nil {
		return nil, fmt.Errorf("find skycomponents: %w", err)
	}

	nx, ny := im.NX(), im.NY()
	segm, err := segmentation.DetectSources(im.SumPlanes(), nx, ny, opts.Threshold, opts.NPixels, k)
	if err != nil {
		return nil, fmt.Errorf("find skycomponents: %w", err)
	}
	log.Info("Identified segments", "count", segm.NLabels)

	segments := segm.Segments()
	tables := make([]segmentTable, len(segments))
	for i, s := range segments {
		tables[i] = segmentTable{
			label: s.Label,
			flux:  mat.NewDense(im.NChan(), im.NPol(), nil),
			x:     mat.NewDense(im.NChan(), im.NPol(), nil),
			y:     mat.NewDense(im.NChan(), im.NPol(), nil),
		}
	}

	// One pass per plane fills every segment's matrices.
	for c := 0; c < im.NChan(); c++ {
		for p := 0; p < im.NPol(); p++ {
			plane := im.Plane(c, p)
			filtered, err := convolution.Convolve2D(plane, nx, ny, k)
			if err != nil {
				return nil, fmt.Errorf("find skycomponents: channel %d pol %d: %w", c, p, err)
			}
			for i, s := range segments {
				props := segmentation.Measure(plane, filtered, s)
				tables[i].flux.Set(c, p, props.MaxValue)
				tables[i].x.Set(c, p, props.XCentroid)
				tables[i].y.Set(c, p, props.YCentroid)
			}
		}
	}

	comps := make([]*models.Skycomponent, 0, len(tables))
	for _, tbl := range tables {
		comp, err := consolidate(im, tbl)
		if errors.Is(err, ErrZeroFlux) {
			log.Warn("Skipping segment without usable flux", "error", err)
			continue
		}
		if err != nil {
			return nil, fmt.Errorf("find skycomponents: %w", err)
		}
		comps = append(comps, comp)
	}
	return comps, nil
}

// consolidate turns a segment's per-plane measurements into one component at
// the flux-weighted position. Planes without a centroid carry no weight.
func consolidate(im *models.Image, tbl segmentTable) (*models.Skycomponent, error) {
	nchan, npol := tbl.flux.Dims()
	weights := make([]float64, 0, nchan*npol)
	ras := make([]float64, 0, nchan*npol)
	decs := make([]float64, 0, nchan*npol)
	xs := make([]float64, 0, nchan*npol)
	ys := make([]float64, 0, nchan*npol)

	for c := 0; c < nchan; c++ {
		for p := 0; p < npol; p++ {
			f, x, y := tbl.flux.At(c, p), tbl.x.At(c, p), tbl.y.At(c, p)
			if math.IsNaN(f) || math.IsNaN(x) || math.IsNaN(y) {
				continue
			}
			d, err := im.WCS.PixelToSky(x, y, wcs.OriginZero)
			if err != nil {
				return nil, fmt.Errorf("segment %d: %w", tbl.label, err)
			}
			ra := d.RA
			if len(ras) > 0 {
				// keep RA continuous across the 0/2π cut
				ra = ras[0] + math.Remainder(ra-ras[0], 2*math.Pi)
			}
			weights = append(weights, f)
			ras = append(ras, ra)
			decs = append(decs, d.Dec)
			xs = append(xs, x)
			ys = append(ys, y)
		}
	}

	sum := floats.Sum(weights)
	if len(weights) == 0 || sum == 0 || math.IsNaN(sum) || math.IsInf(sum, 0) {
		return nil, &ZeroFluxError{Label: tbl.label, Sum: sum}
	}

	direction := wcs.Direction{
		RA:  wcs.WrapRA(stat.Mean(ras, weights)),
		Dec: stat.Mean(decs, weights),
	}
	params := map[string]float64{
		"xpixel": stat.Mean(xs, weights),
		"ypixel": stat.Mean(ys, weights),
	}
	return models.NewSkycomponent(direction, tbl.flux, im.Frequency, models.ShapePoint, params,
		fmt.Sprintf("Segment %d", tbl.label))
}
