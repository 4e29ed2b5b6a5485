package skycomponent

import (
	"errors"
	"fmt"
	"math"
	"strings"

	"radiosky/internal/models"
	"radiosky/pkg/interpolation"
	"radiosky/pkg/wcs"
)

// InsertMethod selects how a point's flux is laid onto the pixel grid.
type InsertMethod int

const (
	// MethodNearest adds the whole flux to the nearest pixel.
	MethodNearest InsertMethod = iota
	// MethodLanczos spreads the flux with a Lanczos kernel.
	MethodLanczos
)

func (m InsertMethod) String() string {
	switch m {
	case MethodNearest:
		return "Nearest"
	case MethodLanczos:
		return "Lanczos"
	default:
		return fmt.Sprintf("InsertMethod(%d)", int(m))
	}
}

// ParseInsertMethod resolves "Nearest" or "Lanczos", ignoring case. The empty
// string means Nearest.
func ParseInsertMethod(name string) (InsertMethod, error) {
	switch strings.ToLower(name) {
	case "", "nearest":
		return MethodNearest, nil
	case "lanczos":
		return MethodLanczos, nil
	default:
		return 0, fmt.Errorf("unknown insertion method %q", name)
	}
}

// InsertOptions controls InsertSkycomponent.
type InsertOptions struct {
	Method InsertMethod

	// Window is the Lanczos half-width a; 0 means interpolation.DefaultWindow
	Window int

	Boundary interpolation.Boundary
}

// DefaultInsertOptions returns nearest-pixel insertion with clipping.
func DefaultInsertOptions() InsertOptions {
	return InsertOptions{
		Method:   MethodNearest,
		Window:   interpolation.DefaultWindow,
		Boundary: interpolation.BoundaryClip,
	}
}

// inserter computes where one component's flux goes.
type inserter func(im *models.Image, comp *models.Skycomponent, opts InsertOptions) (interpolation.Footprint, error)

type insertion struct {
	comp      *models.Skycomponent
	footprint interpolation.Footprint
}

// InsertSkycomponent adds comps into im in place and returns im. Every
// component is checked and placed before any pixel is written, so on error
// the image is left untouched.
func InsertSkycomponent(im *models.Image, comps []*models.Skycomponent, opts InsertOptions) (*models.Image, error) {
	if im == nil {
		return nil, errors.New("insert skycomponent: nil image")
	}
	if err := im.Validate(); err != nil {
		return im, fmt.Errorf("insert skycomponent: %w", err)
	}
	if opts.Window == 0 {
		opts.Window = interpolation.DefaultWindow
	}

	plan := make([]insertion, 0, len(comps))
	for _, comp := range comps {
		fp, err := planInsertion(im, comp, opts)
		if err != nil {
			return im, fmt.Errorf("insert skycomponent: %w", err)
		}
		plan = append(plan, insertion{comp: comp, footprint: fp})
	}

	log := logger()
	for _, ins := range plan {
		if ins.footprint.Dropped != 0 {
			log.Warn("Component partly outside image, clipped",
				"component", ins.comp.Name(), "dropped_weight", ins.footprint.Dropped)
		}
		for c := 0; c < im.NChan(); c++ {
			for p := 0; p < im.NPol(); p++ {
				ins.footprint.Apply(im.Plane(c, p), ins.comp.FluxAt(c, p))
			}
		}
	}
	return im, nil
}

func planInsertion(im *models.Image, comp *models.Skycomponent, opts InsertOptions) (interpolation.Footprint, error) {
	if comp == nil {
		return interpolation.Footprint{}, errors.New("nil component")
	}
	insert, err := inserterFor(comp, opts.Method)
	if err != nil {
		return interpolation.Footprint{}, err
	}
	if comp.NChan() != im.NChan() || comp.NPol() != im.NPol() {
		return interpolation.Footprint{}, fmt.Errorf("%w: component %q flux is %dx%d, image has %d channels and %d polarisations",
			models.ErrShapeMismatch, comp.Name(), comp.NChan(), comp.NPol(), im.NChan(), im.NPol())
	}
	return insert(im, comp, opts)
}

// inserterFor dispatches on the component shape. Only points can be inserted.
func inserterFor(comp *models.Skycomponent, method InsertMethod) (inserter, error) {
	switch comp.Shape() {
	case models.ShapePoint:
		switch method {
		case MethodNearest:
			return insertPointNearest, nil
		case MethodLanczos:
			return insertPointLanczos, nil
		default:
			return nil, fmt.Errorf("unknown insertion method %s", method)
		}
	default:
		return nil, &UnsupportedShapeError{Shape: comp.Shape(), Name: comp.Name()}
	}
}

func pixelOf(im *models.Image, comp *models.Skycomponent) (float64, float64, error) {
	x, y, err := im.WCS.SkyToPixel(comp.Direction(), wcs.OriginZero)
	if err != nil {
		return 0, 0, fmt.Errorf("component %q: %w", comp.Name(), err)
	}
	if math.IsNaN(x) || math.IsNaN(y) || math.IsInf(x, 0) || math.IsInf(y, 0) {
		return 0, 0, fmt.Errorf("component %q: invalid pixel position (%g, %g)", comp.Name(), x, y)
	}
	return x, y, nil
}

func insertPointNearest(im *models.Image, comp *models.Skycomponent, opts InsertOptions) (interpolation.Footprint, error) {
	x, y, err := pixelOf(im, comp)
	if err != nil {
		return interpolation.Footprint{}, err
	}
	ix, iy := int(math.Round(x)), int(math.Round(y))
	logger().Debug("Inserting point flux", "component", comp.Name(), "x", ix, "y", iy,
		"total_flux", comp.TotalFlux())

	fp, err := interpolation.PlacePoint(ix, iy, im.NX(), im.NY(), opts.Boundary)
	if err != nil {
		return interpolation.Footprint{}, fmt.Errorf("component %q at pixel (%d, %d): %w", comp.Name(), ix, iy, err)
	}
	return fp, nil
}

func insertPointLanczos(im *models.Image, comp *models.Skycomponent, opts InsertOptions) (interpolation.Footprint, error) {
	x, y, err := pixelOf(im, comp)
	if err != nil {
		return interpolation.Footprint{}, err
	}
	logger().Debug("Performing Lanczos interpolation of flux", "component", comp.Name(),
		"x", x, "y", y, "window", opts.Window, "total_flux", comp.TotalFlux())

	ix, fx := interpolation.Split(x)
	iy, fy := interpolation.Split(y)
	k, err := interpolation.LanczosKernel(fx, fy, opts.Window)
	if err != nil {
		return interpolation.Footprint{}, fmt.Errorf("component %q at pixel (%.4f, %.4f): %w", comp.Name(), x, y, err)
	}
	fp, err := interpolation.Place(k, ix, iy, im.NX(), im.NY(), opts.Boundary)
	if err != nil {
		return interpolation.Footprint{}, fmt.Errorf("component %q at pixel (%.4f, %.4f): %w", comp.Name(), x, y, err)
	}
	return fp, nil
}
