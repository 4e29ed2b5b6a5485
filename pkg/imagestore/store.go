// Package imagestore saves image cubes as a YAML header plus a raw
// little-endian float64 payload in (chan, pol, y, x) order.
package imagestore

import (
	"bufio"
	"encoding/binary"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"gopkg.in/yaml.v3"

	"radiosky/internal/models"
	"radiosky/pkg/wcs"
)

// ErrCorruptPayload is returned when the payload size disagrees with the header.
var ErrCorruptPayload = errors.New("image payload does not match header")

// Header describes a stored cube.
type Header struct {
	// Shape is (nchan, npol, ny, nx)
	Shape [4]int `yaml:"shape"`

	WCS wcs.WCS `yaml:"wcs"`

	// Frequency holds one value per channel, in Hz
	Frequency []float64 `yaml:"frequency"`

	Polarisation models.PolarisationFrame `yaml:"polarisation"`

	// Data is the payload file, relative to the header
	Data string `yaml:"data"`
}

// PayloadPath returns the payload file paired with a header path.
func PayloadPath(headerPath string) string {
	return strings.TrimSuffix(headerPath, filepath.Ext(headerPath)) + ".bin"
}

// Save writes im to headerPath and its payload next to it.
func Save(headerPath string, im *models.Image) error {
	if err := im.Validate(); err != nil {
		return fmt.Errorf("refusing to save invalid image: %w", err)
	}
	if err := os.MkdirAll(filepath.Dir(headerPath), 0755); err != nil {
		return fmt.Errorf("failed to create image directory: %w", err)
	}

	payload := PayloadPath(headerPath)
	hdr := Header{
		Shape:        im.Shape,
		WCS:          *im.WCS,
		Frequency:    im.Frequency,
		Polarisation: im.PolarisationFrame,
		Data:         filepath.Base(payload),
	}
	data, err := yaml.Marshal(&hdr)
	if err != nil {
		return fmt.Errorf("failed to marshal image header: %w", err)
	}
	if err := os.WriteFile(headerPath, data, 0644); err != nil {
		return fmt.Errorf("failed to write image header: %w", err)
	}

	file, err := os.Create(payload)
	if err != nil {
		return fmt.Errorf("failed to create binary file: %w", err)
	}
	w := bufio.NewWriter(file)
	if err := binary.Write(w, binary.LittleEndian, im.Data); err != nil {
		file.Close()
		return fmt.Errorf("failed to write binary data: %w", err)
	}
	if err := w.Flush(); err != nil {
		file.Close()
		return fmt.Errorf("failed to write binary data: %w", err)
	}
	return file.Close()
}

// Load reads the cube described by headerPath.
func Load(headerPath string) (*models.Image, error) {
	data, err := os.ReadFile(headerPath)
	if err != nil {
		return nil, fmt.Errorf("failed to read image header: %w", err)
	}
	var hdr Header
	if err := yaml.Unmarshal(data, &hdr); err != nil {
		return nil, fmt.Errorf("failed to parse image header %s: %w", headerPath, err)
	}
	if err := hdr.WCS.Validate(); err != nil {
		return nil, fmt.Errorf("%s: %w", headerPath, err)
	}

	w := hdr.WCS
	im, err := models.NewImage(hdr.Shape[0], hdr.Shape[1], hdr.Shape[2], hdr.Shape[3], &w, hdr.Frequency, hdr.Polarisation)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", headerPath, err)
	}

	payload := hdr.Data
	if payload == "" {
		payload = PayloadPath(headerPath)
	} else if !filepath.IsAbs(payload) {
		payload = filepath.Join(filepath.Dir(headerPath), payload)
	}
	file, err := os.Open(payload)
	if err != nil {
		return nil, fmt.Errorf("failed to open binary file: %w", err)
	}
	defer file.Close()

	if err := binary.Read(bufio.NewReader(file), binary.LittleEndian, im.Data); err != nil {
		if errors.Is(err, io.EOF) || errors.Is(err, io.ErrUnexpectedEOF) {
			return nil, fmt.Errorf("%w: %s holds fewer than %d values", ErrCorruptPayload, payload, len(im.Data))
		}
		return nil, fmt.Errorf("failed to read binary data: %w", err)
	}
	if info, err := file.Stat(); err == nil && info.Size() != int64(8*len(im.Data)) {
		return nil, fmt.Errorf("%w: %s is %d bytes, want %d", ErrCorruptPayload, payload, info.Size(), 8*len(im.Data))
	}
	return im, nil
}
