// Package catalog reads and writes skycomponent lists as YAML or JSON.
// Directions are stored in degrees.
package catalog

import (
	"encoding/json"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"gonum.org/v1/gonum/mat"
	"gopkg.in/yaml.v3"

	"radiosky/internal/models"
	"radiosky/pkg/wcs"
)

// Format is a catalogue encoding.
type Format int

const (
	FormatYAML Format = iota
	FormatJSON
)

// FormatFor picks the encoding from a file extension.
func FormatFor(path string) (Format, error) {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".yaml", ".yml":
		return FormatYAML, nil
	case ".json":
		return FormatJSON, nil
	default:
		return 0, fmt.Errorf("unknown catalogue extension %q (want .yaml, .yml or .json)", filepath.Ext(path))
	}
}

// Entry is the serialized form of one component.
type Entry struct {
	Name      string             `yaml:"name" json:"name"`
	RA        float64            `yaml:"ra" json:"ra"`
	Dec       float64            `yaml:"dec" json:"dec"`
	Shape     models.Shape       `yaml:"shape" json:"shape"`
	Frequency []float64          `yaml:"frequency" json:"frequency"`
	Flux      [][]float64        `yaml:"flux" json:"flux"`
	Params    map[string]float64 `yaml:"params,omitempty" json:"params,omitempty"`
}

// Catalogue is the document root.
type Catalogue struct {
	Components []Entry `yaml:"components" json:"components"`
}

// NewEntry converts a component.
func NewEntry(c *models.Skycomponent) Entry {
	flux := c.Flux()
	rows, cols := flux.Dims()
	table := make([][]float64, rows)
	for i := range table {
		table[i] = mat.Row(make([]float64, cols), i, flux)
	}
	return Entry{
		Name:      c.Name(),
		RA:        c.Direction().RADeg(),
		Dec:       c.Direction().DecDeg(),
		Shape:     c.Shape(),
		Frequency: c.Frequency(),
		Flux:      table,
		Params:    c.Params(),
	}
}

// Component builds the component an entry describes.
func (e Entry) Component() (*models.Skycomponent, error) {
	if len(e.Flux) == 0 {
		return nil, fmt.Errorf("catalogue entry %q has no flux", e.Name)
	}
	npol := len(e.Flux[0])
	if npol == 0 {
		return nil, fmt.Errorf("catalogue entry %q has empty flux rows", e.Name)
	}
	flux := mat.NewDense(len(e.Flux), npol, nil)
	for i, row := range e.Flux {
		if len(row) != npol {
			return nil, fmt.Errorf("%w: catalogue entry %q flux row %d has %d values, want %d",
				models.ErrShapeMismatch, e.Name, i, len(row), npol)
		}
		flux.SetRow(i, row)
	}
	return models.NewSkycomponent(wcs.NewDirectionDeg(e.RA, e.Dec), flux, e.Frequency, e.Shape, e.Params, e.Name)
}

// Encode writes comps to w.
func Encode(w io.Writer, comps []*models.Skycomponent, format Format) error {
	cat := Catalogue{Components: make([]Entry, 0, len(comps))}
	for _, c := range comps {
		cat.Components = append(cat.Components, NewEntry(c))
	}

	switch format {
	case FormatJSON:
		enc := json.NewEncoder(w)
		enc.SetIndent("", "  ")
		return enc.Encode(cat)
	default:
		enc := yaml.NewEncoder(w)
		enc.SetIndent(2)
		if err := enc.Encode(cat); err != nil {
			return err
		}
		return enc.Close()
	}
}

// Decode reads a catalogue from r.
func Decode(r io.Reader, format Format) ([]*models.Skycomponent, error) {
	var cat Catalogue
	var err error
	switch format {
	case FormatJSON:
		err = json.NewDecoder(r).Decode(&cat)
	default:
		err = yaml.NewDecoder(r).Decode(&cat)
		if err == io.EOF {
			err = nil
		}
	}
	if err != nil {
		return nil, fmt.Errorf("error parsing catalogue: %w", err)
	}

	comps := make([]*models.Skycomponent, 0, len(cat.Components))
	for i, e := range cat.Components {
		c, err := e.Component()
		if err != nil {
			return nil, fmt.Errorf("entry %d: %w", i, err)
		}
		comps = append(comps, c)
	}
	return comps, nil
}

// Save writes comps to path in the format its extension names.
func Save(path string, comps []*models.Skycomponent) error {
	format, err := FormatFor(path)
	if err != nil {
		return err
	}
	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return fmt.Errorf("error creating catalogue directory: %w", err)
	}
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("error creating catalogue: %w", err)
	}
	if err := Encode(f, comps, format); err != nil {
		f.Close()
		return fmt.Errorf("error writing catalogue %s: %w", path, err)
	}
	return f.Close()
}

// Load reads the catalogue at path.
func Load(path string) ([]*models.Skycomponent, error) {
	format, err := FormatFor(path)
	if err != nil {
		return nil, err
	}
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("error reading catalogue: %w", err)
	}
	defer f.Close()

	comps, err := Decode(f, format)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	return comps, nil
}
