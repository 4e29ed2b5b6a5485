package skycomponent

import (
	"errors"
	"fmt"

	"radiosky/internal/models"
)

var (
	// ErrUnsupportedShape is matched by every UnsupportedShapeError.
	ErrUnsupportedShape = errors.New("unsupported component shape")

	// ErrZeroFlux is matched by every ZeroFluxError.
	ErrZeroFlux = errors.New("zero total flux")
)

// UnsupportedShapeError reports a component whose shape has no insertion
// implementation.
type UnsupportedShapeError struct {
	Shape models.Shape
	Name  string
}

func (e *UnsupportedShapeError) Error() string {
	return fmt.Sprintf("cannot insert component %q: unsupported shape %s", e.Name, e.Shape)
}

// Is makes errors.Is(err, ErrUnsupportedShape) match.
func (e *UnsupportedShapeError) Is(target error) bool { return target == ErrUnsupportedShape }

// ZeroFluxError reports a segment whose flux weights cannot locate it.
type ZeroFluxError struct {
	Label int
	Sum   float64
}

func (e *ZeroFluxError) Error() string {
	return fmt.Sprintf("segment %d: flux weights sum to %g, position undefined", e.Label, e.Sum)
}

// Is makes errors.Is(err, ErrZeroFlux) match.
func (e *ZeroFluxError) Is(target error) bool { return target == ErrZeroFlux }
