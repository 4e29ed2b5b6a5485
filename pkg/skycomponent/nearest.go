package skycomponent

import (
	"math"

	"radiosky/internal/models"
	"radiosky/pkg/wcs"
)

// FindNearestComponent returns the component closest to home and its
// separation in radians. Ties keep the earlier component. With no components
// it returns nil and +Inf.
func FindNearestComponent(home wcs.Direction, comps []*models.Skycomponent) (*models.Skycomponent, float64) {
	var best *models.Skycomponent
	sep := math.Inf(1)
	for _, comp := range comps {
		if comp == nil {
			continue
		}
		if s := comp.Direction().Separation(home); s < sep {
			sep = s
			best = comp
		}
	}
	return best, sep
}
