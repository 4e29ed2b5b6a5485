// Package pipeline runs simulation and source finding over image files.
package pipeline

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"path/filepath"
	"strings"
	"time"

	"golang.org/x/sync/errgroup"

	"radiosky/internal/models"
	"radiosky/pkg/config"
	"radiosky/pkg/imagestore"
	"radiosky/pkg/segmentation"
	"radiosky/pkg/skycomponent"
	"radiosky/pkg/visualization"
)

// ErrNoInput is returned when a run has nothing to process.
var ErrNoInput = errors.New("no input files")

// Params holds the pipeline configuration.
type Params struct {
	// Config supplies image geometry, finding and insertion settings
	Config *config.Config

	// NumCores bounds how many image files are processed at once.
	// Zero means Config.Processing.NumCores.
	NumCores int
}

// FileResult is the outcome of source finding on one image file.
type FileResult struct {
	Path       string
	Threshold  float64
	Components []*models.Skycomponent
}

// Summary reports what a run did.
type Summary struct {
	Files      int
	Components int
	Duration   time.Duration
}

// Pipeline ties the configuration to the skycomponent operations.
type Pipeline struct {
	params *Params
	log    *slog.Logger
}

// NewPipeline creates a pipeline. A nil Config means config.DefaultConfig.
func NewPipeline(params *Params) *Pipeline {
	p := *params
	if p.Config == nil {
		p.Config = config.DefaultConfig()
	}
	if p.NumCores <= 0 {
		p.NumCores = p.Config.Processing.NumCores
	}
	if p.NumCores <= 0 {
		p.NumCores = 1
	}
	return &Pipeline{
		params: &p,
		log:    slog.Default().With("module", "pipeline"),
	}
}

// Simulate builds an empty image from the configuration, inserts comps into
// it and returns the resulting skymodel. When outputPath is not empty the
// image is saved there, with a PNG preview if the configuration asks for one.
func (p *Pipeline) Simulate(comps []*models.Skycomponent, outputPath string) (*models.Skymodel, error) {
	cfg := p.params.Config
	im, err := cfg.NewImage()
	if err != nil {
		return nil, fmt.Errorf("failed to create image: %w", err)
	}
	opts, err := cfg.InsertOptions()
	if err != nil {
		return nil, err
	}

	p.log.Info("Inserting components", "count", len(comps), "method", opts.Method.String(),
		"boundary", opts.Boundary.String(), "npixel", im.NX())
	if _, err := skycomponent.InsertSkycomponent(im, comps, opts); err != nil {
		return nil, fmt.Errorf("failed to insert components: %w", err)
	}

	sm := skycomponent.CreateSkymodelFromImage(im)
	sm.AddComponents(comps...)

	if outputPath == "" {
		return sm, nil
	}
	if err := imagestore.Save(outputPath, im); err != nil {
		return nil, err
	}
	p.log.Info("Saved image", "path", outputPath)

	if cfg.Output.Preview {
		preview := strings.TrimSuffix(outputPath, filepath.Ext(outputPath)) + ".png"
		viewer := p.newViewer(im)
		if err := viewer.SavePNG(viewer.ExtractSum(), preview); err != nil {
			p.log.Warn("Failed to save preview", "path", preview, "error", err)
		} else {
			p.log.Info("Saved preview", "path", preview)
		}
	}
	return sm, nil
}

// SavePlanes writes one PNG per channel and polarisation of im to dir.
func (p *Pipeline) SavePlanes(im *models.Image, dir string) error {
	if err := p.newViewer(im).SavePlaneSequence(dir); err != nil {
		return fmt.Errorf("failed to save planes: %w", err)
	}
	p.log.Info("Saved planes", "dir", dir, "count", im.NChan()*im.NPol())
	return nil
}

// newViewer applies the configured display range, if any.
func (p *Pipeline) newViewer(im *models.Image) *visualization.Viewer {
	viewer := visualization.NewViewer(im)
	if low, high, ok := p.params.Config.PreviewRange(); ok {
		// PreviewRange only reports ok for a non-empty range
		_ = viewer.SetRange(low, high)
	}
	return viewer
}

// Find runs source finding on one image.
func (p *Pipeline) Find(im *models.Image) ([]*models.Skycomponent, float64, error) {
	cfg := p.params.Config
	opts := cfg.FindOptions()
	if cfg.Find.ThresholdSigma > 0 {
		opts.Threshold = segmentation.SigmaThreshold(im.SumPlanes(), cfg.Find.ThresholdSigma)
		p.log.Debug("Using noise-based threshold", "nsigma", cfg.Find.ThresholdSigma, "threshold", opts.Threshold)
	}
	comps, err := skycomponent.FindSkycomponents(im, opts)
	return comps, opts.Threshold, err
}

// FindInFiles loads each stored image and finds its components. Files are
// processed concurrently, each by its own goroutine with its own image.
// Results keep the order of paths. The first failure cancels the rest.
func (p *Pipeline) FindInFiles(ctx context.Context, paths []string) ([]FileResult, Summary, error) {
	if len(paths) == 0 {
		return nil, Summary{}, ErrNoInput
	}
	start := time.Now()
	results := make([]FileResult, len(paths))

	g, ctx := errgroup.WithContext(ctx)
	g.SetLimit(p.params.NumCores)
	for i, path := range paths {
		g.Go(func() error {
			if err := ctx.Err(); err != nil {
				return err
			}
			im, err := imagestore.Load(path)
			if err != nil {
				return fmt.Errorf("failed to load %s: %w", path, err)
			}
			comps, threshold, err := p.Find(im)
			if err != nil {
				return fmt.Errorf("failed to find components in %s: %w", path, err)
			}
			p.log.Info("Processed image", "path", path, "components", len(comps))
			results[i] = FileResult{Path: path, Threshold: threshold, Components: comps}
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, Summary{}, err
	}

	summary := Summary{Files: len(paths), Duration: time.Since(start)}
	for _, r := range results {
		summary.Components += len(r.Components)
	}
	return results, summary, nil
}

// Collect flattens file results into one list. Component names are prefixed
// with the file name so they stay unique across files.
func Collect(results []FileResult) ([]*models.Skycomponent, error) {
	var out []*models.Skycomponent
	for _, r := range results {
		prefix := strings.TrimSuffix(filepath.Base(r.Path), filepath.Ext(r.Path))
		for _, c := range r.Components {
			renamed, err := skycomponent.CreateSkycomponent(c.Direction(), c.Flux(), c.Frequency(), c.Shape(),
				c.Params(), prefix+": "+c.Name())
			if err != nil {
				return nil, err
			}
			out = append(out, renamed)
		}
	}
	return out, nil
}
