package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"radiosky/internal/models"
	"radiosky/pkg/interpolation"
	"radiosky/pkg/skycomponent"
)

// TestDefaultConfigIsValid verifies the defaults pass validation.
func TestDefaultConfigIsValid(t *testing.T) {
	cfg := DefaultConfig()
	require.NoError(t, cfg.Validate())
	assert.Equal(t, skycomponent.DefaultFindOptions(), cfg.FindOptions())

	opts, err := cfg.InsertOptions()
	require.NoError(t, err)
	assert.Equal(t, skycomponent.DefaultInsertOptions(), opts)
}

// TestLoadMissingFile verifies a missing file yields the defaults.
func TestLoadMissingFile(t *testing.T) {
	cfg, err := LoadConfig(filepath.Join(t.TempDir(), "absent.yaml"))
	require.NoError(t, err)
	assert.Equal(t, DefaultConfig().Image, cfg.Image)
}

// TestSaveAndLoad verifies a saved file reads back with overrides applied.
func TestSaveAndLoad(t *testing.T) {
	path := filepath.Join(t.TempDir(), "nested", "radiosky.yaml")
	cfg := DefaultConfig()
	cfg.Processing.NumCores = 3
	cfg.Insert.Method = "Lanczos"
	cfg.Insert.Boundary = "wrap"
	cfg.Image.Frequencies = []float64{1e8, 1.5e8}
	require.NoError(t, SaveConfig(cfg, path))

	loaded, err := LoadConfig(path)
	require.NoError(t, err)
	assert.Equal(t, 3, loaded.Processing.NumCores)
	assert.Equal(t, []float64{1e8, 1.5e8}, loaded.Image.Frequencies)

	opts, err := loaded.InsertOptions()
	require.NoError(t, err)
	assert.Equal(t, skycomponent.MethodLanczos, opts.Method)
	assert.Equal(t, interpolation.BoundaryWrap, opts.Boundary)
}

// TestLoadPartialFile verifies unset keys keep their defaults.
func TestLoadPartialFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "partial.yaml")
	require.NoError(t, os.WriteFile(path, []byte("find:\n  threshold: 2.5\n"), 0644))

	cfg, err := LoadConfig(path)
	require.NoError(t, err)
	assert.Equal(t, 2.5, cfg.Find.Threshold)
	assert.Equal(t, DefaultConfig().Find.NPixels, cfg.Find.NPixels)
}

// TestLoadInvalidFile verifies parse and validation failures are reported.
func TestLoadInvalidFile(t *testing.T) {
	dir := t.TempDir()

	garbled := filepath.Join(dir, "garbled.yaml")
	require.NoError(t, os.WriteFile(garbled, []byte("find: [unclosed"), 0644))
	_, err := LoadConfig(garbled)
	assert.Error(t, err)

	bad := filepath.Join(dir, "bad.yaml")
	require.NoError(t, os.WriteFile(bad, []byte("insert:\n  method: cubic\nimage:\n  projection: AIT\n"), 0644))
	_, err = LoadConfig(bad)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "insert.method")
	assert.Contains(t, err.Error(), "image.projection")
}

// TestNewImage verifies the configured geometry.
func TestNewImage(t *testing.T) {
	cfg := DefaultConfig()
	cfg.Image.NPixel = 32
	cfg.Image.Polarisation = "stokesIQUV"
	cfg.Image.Projection = "tan"
	cfg.Image.Frequencies = []float64{1e8, 1.1e8, 1.2e8}

	im, err := cfg.NewImage()
	require.NoError(t, err)
	assert.Equal(t, [4]int{3, 4, 32, 32}, im.Shape)
	assert.Equal(t, models.StokesIQUV, im.PolarisationFrame)
	assert.Equal(t, 17.0, im.WCS.CRPIX[0])
	assert.InDelta(t, -45.0, im.WCS.Reference().DecDeg(), 1e-12)
}

// TestCreateDefaultConfigFile verifies the written file parses.
func TestCreateDefaultConfigFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "radiosky.yaml")
	require.NoError(t, CreateDefaultConfigFile(path))

	cfg, err := LoadConfig(path)
	require.NoError(t, err)
	assert.Equal(t, DefaultConfig().Insert, cfg.Insert)
}

// TestPreviewRange verifies the optional display range and its validation.
func TestPreviewRange(t *testing.T) {
	cfg := DefaultConfig()
	_, _, ok := cfg.PreviewRange()
	assert.False(t, ok)
	assert.NoError(t, cfg.Validate())

	cfg.Output.PreviewMin = -0.5
	cfg.Output.PreviewMax = 2
	low, high, ok := cfg.PreviewRange()
	assert.True(t, ok)
	assert.Equal(t, -0.5, low)
	assert.Equal(t, 2.0, high)
	assert.NoError(t, cfg.Validate())

	cfg.Output.PreviewMax = -1
	err := cfg.Validate()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "output.previewMax")
}
