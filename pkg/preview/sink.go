// Package preview contains sinks that receive the pixels of completed
// selections.
package preview

import (
	"fmt"
	"path/filepath"

	"github.com/menta2k/image-selector/internal/utils"
	"github.com/menta2k/image-selector/pkg/imageio"
	"github.com/menta2k/image-selector/pkg/selection"
)

// Collector keeps every region it receives
type Collector struct {
	regions []selection.Region
}

// NewCollector creates an empty collector
func NewCollector() *Collector {
	return &Collector{}
}

// Preview records region
func (c *Collector) Preview(region selection.Region) {
	c.regions = append(c.regions, region)
}

// Regions returns the received regions in order
func (c *Collector) Regions() []selection.Region {
	return c.regions
}

// Last returns the most recent region
func (c *Collector) Last() (selection.Region, bool) {
	if len(c.regions) == 0 {
		return selection.Region{}, false
	}
	return c.regions[len(c.regions)-1], true
}

// FileConfig holds configuration for a FileSink
type FileConfig struct {
	OutputDir string
	Prefix    string
	Format    string
	Quality   int
	Lossless  bool
}

// FileSink writes every region to a numbered image file
type FileSink struct {
	codec   *imageio.Codec
	config  FileConfig
	count   int
	paths   []string
	err     error
	OnError func(err error)
	OnSaved func(path string)
}

// NewFileSink creates a sink writing into config.OutputDir
func NewFileSink(codec *imageio.Codec, config FileConfig) *FileSink {
	if config.Format == "" {
		config.Format = "png"
	}
	if config.Quality < 1 || config.Quality > 100 {
		config.Quality = 90
	}
	if config.Prefix == "" {
		config.Prefix = "selection"
	}
	return &FileSink{codec: codec, config: config}
}

// Preview saves region to the next numbered file
func (s *FileSink) Preview(region selection.Region) {
	if err := utils.EnsureDir(s.config.OutputDir); err != nil {
		s.fail(fmt.Errorf("failed to create output directory: %w", err))
		return
	}

	s.count++
	r := region.Rect
	name := fmt.Sprintf("%s_%03d_%dx%d@%d,%d.%s", s.config.Prefix, s.count,
		int(r.Width), int(r.Height), int(r.X), int(r.Y), imageio.NormalizeFormat(s.config.Format))
	path := filepath.Join(s.config.OutputDir, utils.SanitizeFilename(name))

	if err := s.codec.SaveImage(region.Image, path, s.config.Format, s.config.Quality, s.config.Lossless); err != nil {
		s.fail(fmt.Errorf("failed to save preview %s: %w", path, err))
		return
	}
	s.paths = append(s.paths, path)
	if s.OnSaved != nil {
		s.OnSaved(path)
	}
}

// Paths returns the files written so far
func (s *FileSink) Paths() []string {
	return s.paths
}

// Err returns the last save error
func (s *FileSink) Err() error {
	return s.err
}

func (s *FileSink) fail(err error) {
	s.err = err
	if s.OnError != nil {
		s.OnError(err)
	}
}

// DataURLSink converts every region into a data: URL
type DataURLSink struct {
	codec    *imageio.Codec
	format   string
	quality  int
	last     string
	err      error
	OnUpdate func(dataURL string)
}

// NewDataURLSink creates a sink encoding previews as format
func NewDataURLSink(codec *imageio.Codec, format string, quality int) *DataURLSink {
	return &DataURLSink{codec: codec, format: imageio.NormalizeFormat(format), quality: quality}
}

// Preview encodes region
func (s *DataURLSink) Preview(region selection.Region) {
	uri, err := s.codec.EncodeDataURL(region.Image, s.format, s.quality)
	if err != nil {
		s.err = fmt.Errorf("failed to encode preview: %w", err)
		return
	}
	s.last = uri
	s.err = nil
	if s.OnUpdate != nil {
		s.OnUpdate(uri)
	}
}

// Last returns the most recent data URL
func (s *DataURLSink) Last() string {
	return s.last
}

// CSSBackground returns the last preview as a CSS background-image value
func (s *DataURLSink) CSSBackground() string {
	if s.last == "" {
		return ""
	}
	return `url("` + s.last + `")`
}

// Err returns the last encoding error
func (s *DataURLSink) Err() error {
	return s.err
}
