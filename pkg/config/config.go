// Package config provides configuration loading and management for radiosky.
// It handles loading configuration from YAML files and provides default values.
package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"runtime"
	"strings"

	"gopkg.in/yaml.v3"

	"radiosky/internal/models"
	"radiosky/pkg/interpolation"
	"radiosky/pkg/skycomponent"
	"radiosky/pkg/wcs"
)

// EnvConfigPath names the environment variable that may point at a config file.
const EnvConfigPath = "RADIOSKY_CONFIG"

// Config represents the application configuration loaded from YAML
type Config struct {
	// Processing parameters
	Processing struct {
		// NumCores specifies how many image files are processed at once
		NumCores int `yaml:"numCores"`
	} `yaml:"processing"`

	// Image geometry used when simulating
	Image struct {
		// NPixel is the side of the square image
		NPixel int `yaml:"npixel"`

		// CellSize is the pixel size in degrees
		CellSize float64 `yaml:"cellsize"`

		// PhaseCentre is the image centre in degrees
		PhaseCentre struct {
			RA  float64 `yaml:"ra"`
			Dec float64 `yaml:"dec"`
		} `yaml:"phasecentre"`

		// Frequencies holds one entry per channel, in Hz
		Frequencies []float64 `yaml:"frequencies"`

		// Polarisation is the polarisation frame name, e.g. stokesI
		Polarisation string `yaml:"polarisation"`

		// Projection is SIN or TAN
		Projection string `yaml:"projection"`
	} `yaml:"image"`

	// Source finding parameters
	Find struct {
		// FWHM of the smoothing kernel in pixels
		FWHM float64 `yaml:"fwhm"`

		// Threshold is the absolute detection level
		Threshold float64 `yaml:"threshold"`

		// ThresholdSigma, when positive, replaces Threshold with
		// median + ThresholdSigma standard deviations of the summed image
		ThresholdSigma float64 `yaml:"thresholdSigma"`

		// NPixels is the minimum segment size
		NPixels int `yaml:"npixels"`
	} `yaml:"find"`

	// Insertion parameters
	Insert struct {
		// Method is Nearest or Lanczos
		Method string `yaml:"method"`

		// Window is the Lanczos half-width
		Window int `yaml:"window"`

		// Boundary is clip, wrap or reject
		Boundary string `yaml:"boundary"`
	} `yaml:"insert"`

	// Output parameters
	Output struct {
		// Verbose enables debug logging
		Verbose bool `yaml:"verbose"`

		// Preview writes a PNG of the summed plane next to simulated images
		Preview bool `yaml:"preview"`

		// PreviewMin and PreviewMax fix the display range of PNG output.
		// Both zero means each picture is scaled to its own range.
		PreviewMin float64 `yaml:"previewMin"`
		PreviewMax float64 `yaml:"previewMax"`
	} `yaml:"output"`
}

// DefaultConfig returns a configuration with default values
func DefaultConfig() *Config {
	cfg := &Config{}

	cfg.Processing.NumCores = runtime.NumCPU()

	cfg.Image.NPixel = 256
	cfg.Image.CellSize = 0.001
	cfg.Image.PhaseCentre.RA = 15.0
	cfg.Image.PhaseCentre.Dec = -45.0
	cfg.Image.Frequencies = []float64{1e8}
	cfg.Image.Polarisation = string(models.StokesI)
	cfg.Image.Projection = string(wcs.ProjectionSIN)

	find := skycomponent.DefaultFindOptions()
	cfg.Find.FWHM = find.FWHM
	cfg.Find.Threshold = find.Threshold
	cfg.Find.NPixels = find.NPixels

	cfg.Insert.Method = skycomponent.MethodNearest.String()
	cfg.Insert.Window = interpolation.DefaultWindow
	cfg.Insert.Boundary = interpolation.BoundaryClip.String()

	cfg.Output.Verbose = false
	cfg.Output.Preview = true

	return cfg
}

// LoadConfig loads configuration from a YAML file
// If the file doesn't exist, it returns the default configuration
func LoadConfig(configPath string) (*Config, error) {
	cfg := DefaultConfig()

	// Check if config file exists
	if _, err := os.Stat(configPath); os.IsNotExist(err) {
		return cfg, nil
	}

	// Read config file
	data, err := os.ReadFile(configPath)
	if err != nil {
		return nil, fmt.Errorf("error reading config file: %w", err)
	}

	// Parse YAML
	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("error parsing config file: %w", err)
	}

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid config file %s: %w", configPath, err)
	}
	return cfg, nil
}

// SaveConfig saves the configuration to a YAML file
func SaveConfig(cfg *Config, configPath string) error {
	// Create directory if it doesn't exist
	dir := filepath.Dir(configPath)
	if err := os.MkdirAll(dir, 0755); err != nil {
		return fmt.Errorf("error creating config directory: %w", err)
	}

	// Marshal config to YAML
	data, err := yaml.Marshal(cfg)
	if err != nil {
		return fmt.Errorf("error marshaling config: %w", err)
	}

	// Write to file
	if err := os.WriteFile(configPath, data, 0644); err != nil {
		return fmt.Errorf("error writing config file: %w", err)
	}

	return nil
}

// CreateDefaultConfigFile creates a default configuration file at the specified path
func CreateDefaultConfigFile(configPath string) error {
	cfg := DefaultConfig()
	return SaveConfig(cfg, configPath)
}

// Validate reports every inconsistent setting at once.
func (c *Config) Validate() error {
	var errs []error
	if c.Processing.NumCores < 1 {
		errs = append(errs, fmt.Errorf("processing.numCores must be at least 1, got %d", c.Processing.NumCores))
	}
	if c.Image.NPixel < 1 {
		errs = append(errs, fmt.Errorf("image.npixel must be positive, got %d", c.Image.NPixel))
	}
	if !(c.Image.CellSize > 0) {
		errs = append(errs, fmt.Errorf("image.cellsize must be positive, got %g", c.Image.CellSize))
	}
	if len(c.Image.Frequencies) == 0 {
		errs = append(errs, errors.New("image.frequencies must list at least one channel"))
	}
	if _, err := models.ParsePolarisationFrame(c.Image.Polarisation); err != nil {
		errs = append(errs, fmt.Errorf("image.polarisation: %w", err))
	}
	if _, err := c.projection(); err != nil {
		errs = append(errs, err)
	}
	if !(c.Find.FWHM > 0) {
		errs = append(errs, fmt.Errorf("find.fwhm must be positive, got %g", c.Find.FWHM))
	}
	if c.Find.NPixels < 1 {
		errs = append(errs, fmt.Errorf("find.npixels must be at least 1, got %d", c.Find.NPixels))
	}
	if c.Find.ThresholdSigma < 0 {
		errs = append(errs, fmt.Errorf("find.thresholdSigma must not be negative, got %g", c.Find.ThresholdSigma))
	}
	if c.Insert.Window < 0 {
		errs = append(errs, fmt.Errorf("insert.window must not be negative, got %d", c.Insert.Window))
	}
	if _, err := c.InsertOptions(); err != nil {
		errs = append(errs, err)
	}
	if _, _, ok := c.PreviewRange(); !ok && (c.Output.PreviewMin != 0 || c.Output.PreviewMax != 0) {
		errs = append(errs, fmt.Errorf("output.previewMax must exceed output.previewMin, got [%g, %g]",
			c.Output.PreviewMin, c.Output.PreviewMax))
	}
	return errors.Join(errs...)
}

func (c *Config) projection() (wcs.Projection, error) {
	p := wcs.Projection(strings.ToUpper(c.Image.Projection))
	switch p {
	case wcs.ProjectionSIN, wcs.ProjectionTAN:
		return p, nil
	default:
		return "", fmt.Errorf("image.projection: unsupported projection %q", c.Image.Projection)
	}
}

// FindOptions returns the source finding settings. ThresholdSigma is applied
// by the caller, which has the image.
func (c *Config) FindOptions() skycomponent.FindOptions {
	return skycomponent.FindOptions{
		FWHM:      c.Find.FWHM,
		Threshold: c.Find.Threshold,
		NPixels:   c.Find.NPixels,
	}
}

// InsertOptions parses the insertion settings.
func (c *Config) InsertOptions() (skycomponent.InsertOptions, error) {
	method, err := skycomponent.ParseInsertMethod(c.Insert.Method)
	if err != nil {
		return skycomponent.InsertOptions{}, fmt.Errorf("insert.method: %w", err)
	}
	boundary, err := interpolation.ParseBoundary(c.Insert.Boundary)
	if err != nil {
		return skycomponent.InsertOptions{}, fmt.Errorf("insert.boundary: %w", err)
	}
	return skycomponent.InsertOptions{
		Method:   method,
		Window:   c.Insert.Window,
		Boundary: boundary,
	}, nil
}

// PreviewRange returns the fixed display range for PNG output. ok is false
// when the range is unset or empty.
func (c *Config) PreviewRange() (low, high float64, ok bool) {
	low, high = c.Output.PreviewMin, c.Output.PreviewMax
	return low, high, high > low
}

// NewImage allocates an empty image with the configured geometry.
func (c *Config) NewImage() (*models.Image, error) {
	proj, err := c.projection()
	if err != nil {
		return nil, err
	}
	frame, err := models.ParsePolarisationFrame(c.Image.Polarisation)
	if err != nil {
		return nil, err
	}
	centre := wcs.NewDirectionDeg(c.Image.PhaseCentre.RA, c.Image.PhaseCentre.Dec)
	w, err := wcs.NewImageWCS(c.Image.NPixel, c.Image.CellSize, centre, proj)
	if err != nil {
		return nil, err
	}
	return models.NewImage(len(c.Image.Frequencies), frame.NPol(), c.Image.NPixel, c.Image.NPixel,
		w, c.Image.Frequencies, frame)
}
