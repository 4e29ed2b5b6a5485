// Package skycomponent finds discrete sources in image cubes, inserts them
// back into images, and looks components up by position.
//
// Every function works on values passed in by the caller and keeps no
// package state, so calls on distinct images may run concurrently. Insertion
// mutates its target image and must be serialized per image.
package skycomponent

import (
	"log/slog"

	"gonum.org/v1/gonum/mat"

	"radiosky/internal/models"
	"radiosky/pkg/wcs"
)

// CreateSkycomponent builds a component from its parts; see models.NewSkycomponent.
func CreateSkycomponent(direction wcs.Direction, flux mat.Matrix, frequency []float64, shape models.Shape,
	params map[string]float64, name string) (*models.Skycomponent, error) {
	return models.NewSkycomponent(direction, flux, frequency, shape, params, name)
}

// CreateSkymodelFromImage wraps a single image in a Skymodel.
func CreateSkymodelFromImage(im *models.Image) *models.Skymodel {
	sm := models.NewSkymodel()
	sm.AddImage(im)
	return sm
}

func logger() *slog.Logger {
	return slog.Default().With("module", "skycomponent")
}
