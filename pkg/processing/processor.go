package processing

import (
	"errors"
	"fmt"
	"image"
	"image/png"
	"os"
	"path/filepath"
	"time"

	"github.com/disintegration/imaging"

	"github.com/txk/image-augmentor/pkg/types"
)

// ErrUnsupportedFormat is returned when an output path has no known image extension
var ErrUnsupportedFormat = errors.New("unsupported image format")

// StepSave tags notices raised after the output file was written.
const StepSave = "save"

var statFile = os.Stat

// Config holds encoder options used when saving images
type Config struct {
	JPEGQuality    int
	PNGCompression png.CompressionLevel
}

// DefaultConfig returns the stock encoder defaults (JPEG quality 75)
func DefaultConfig() Config {
	return Config{
		JPEGQuality:    75,
		PNGCompression: png.DefaultCompression,
	}
}

// Processor handles loading, enhancing and saving single images
type Processor struct {
	config Config
}

// NewProcessor creates a new image processor with default encoder options
func NewProcessor() *Processor {
	return &Processor{config: DefaultConfig()}
}

// NewProcessorWithConfig creates a processor with custom encoder options
func NewProcessorWithConfig(config Config) *Processor {
	if config.JPEGQuality < 1 || config.JPEGQuality > 100 {
		config.JPEGQuality = DefaultConfig().JPEGQuality
	}
	return &Processor{config: config}
}

// LoadImage decodes an image from a file path
func (p *Processor) LoadImage(path string) (image.Image, error) {
	img, err := imaging.Open(path)
	if err != nil {
		return nil, fmt.Errorf("failed to load image %s: %w", path, err)
	}
	return img, nil
}

// SaveImage encodes img to path, choosing the format from the file extension
func (p *Processor) SaveImage(img image.Image, path string) error {
	if _, err := imaging.FormatFromFilename(path); err != nil {
		return fmt.Errorf("%w: %s", ErrUnsupportedFormat, filepath.Ext(path))
	}
	err := imaging.Save(img, path,
		imaging.JPEGQuality(p.config.JPEGQuality),
		imaging.PNGCompressionLevel(p.config.PNGCompression),
	)
	if err != nil {
		return fmt.Errorf("failed to save image %s: %w", path, err)
	}
	return nil
}

// Process loads src, runs the pipeline and writes the result to dst.
// The returned result always carries the paths; Err is set on failure.
func (p *Processor) Process(src, dst string, s types.EnhancementSettings) types.FileResult {
	start := time.Now()
	res := types.FileResult{
		Name:       filepath.Base(src),
		SourcePath: src,
		DestPath:   dst,
	}

	img, err := p.LoadImage(src)
	if err != nil {
		res.Err = err
		res.Duration = time.Since(start)
		return res
	}
	b := img.Bounds()
	res.SourceWidth, res.SourceHeight = b.Dx(), b.Dy()

	out, notices := Apply(img, s)
	res.Notices = notices
	ob := out.Bounds()
	res.Width, res.Height = ob.Dx(), ob.Dy()

	if err := p.SaveImage(out, dst); err != nil {
		res.Err = err
		res.Duration = time.Since(start)
		return res
	}

	// The file is already written; a failed stat only loses the size.
	info, err := statFile(dst)
	if err != nil {
		res.Notices = append(res.Notices, types.StepNotice{
			Step:    StepSave,
			Message: fmt.Sprintf("could not read size of %s: %v", dst, err),
		})
	} else {
		res.Bytes = info.Size()
	}
	res.Duration = time.Since(start)
	return res
}
