// Package imageaugmentor provides batch image enhancement.
//
// A run takes one EnhancementSettings snapshot and applies the same fixed
// pipeline to every png, jpg and jpeg file of a source folder, writing the
// results under the same names to a destination folder.
//
// Basic usage:
//
//	package main
//
//	import (
//		"context"
//		"log"
//
//		imageaugmentor "github.com/txk/image-augmentor"
//		"github.com/txk/image-augmentor/pkg/types"
//	)
//
//	func main() {
//		aug := imageaugmentor.New()
//
//		report, err := aug.Run(context.Background(), types.EnhancementSettings{
//			ScalePercent:     50,
//			BrightnessOffset: 20,
//			RotateLeft:       true,
//			SourceDir:        "photos",
//			DestDir:          "photos/enhanced",
//		})
//		if err != nil {
//			log.Fatal(err)
//		}
//		log.Printf("enhanced %d of %d files", report.Succeeded(), report.Processed())
//	}
//
// The pipeline runs in a fixed order:
//
//  1. Scale (Lanczos; 0% disables resizing)
//  2. Brightness, contrast, sharpness and saturation, each with factor (offset+100)/100
//  3. Gaussian blur
//  4. Horizontal flip
//  5. 90 degree rotation, where left and right together cancel out
//
// The components are:
//
//   - Enhance (pkg/enhance): tone and detail enhancers
//   - Processing (pkg/processing): the pure pipeline plus image load and save
//   - Batch (pkg/batch): folder traversal, failure policy, logging and tracing
package imageaugmentor

import (
	"context"
	"image"

	"github.com/txk/image-augmentor/pkg/batch"
	"github.com/txk/image-augmentor/pkg/processing"
	"github.com/txk/image-augmentor/pkg/types"
)

// Version of the image augmentor library
const Version = "1.0.0"

// Augmentor provides a high-level interface for single-image and folder enhancement
type Augmentor struct {
	processor *processing.Processor
	enhancer  *batch.Enhancer
}

// New creates a new Augmentor with default encoder options and fail-fast batches
func New() *Augmentor {
	return NewWithConfig(processing.DefaultConfig(), batch.Options{})
}

// NewWithConfig creates a new Augmentor with custom encoder and batch options
func NewWithConfig(processorConfig processing.Config, batchOptions batch.Options) *Augmentor {
	processor := processing.NewProcessorWithConfig(processorConfig)
	return &Augmentor{
		processor: processor,
		enhancer:  batch.New(processor, batchOptions),
	}
}

// LoadImage loads an image from file
func (a *Augmentor) LoadImage(path string) (image.Image, error) {
	return a.processor.LoadImage(path)
}

// SaveImage saves an image to file, choosing the format from its extension
func (a *Augmentor) SaveImage(img image.Image, path string) error {
	return a.processor.SaveImage(img, path)
}

// Enhance applies the pipeline to an in-memory image
func (a *Augmentor) Enhance(img image.Image, settings types.EnhancementSettings) (image.Image, []types.StepNotice) {
	return processing.Apply(img, settings)
}

// EnhanceFile loads, enhances and saves a single file
func (a *Augmentor) EnhanceFile(src, dst string, settings types.EnhancementSettings) types.FileResult {
	return a.processor.Process(src, dst, settings)
}

// Run enhances every qualifying image of settings.SourceDir into settings.DestDir
func (a *Augmentor) Run(ctx context.Context, settings types.EnhancementSettings) (types.Report, error) {
	return a.enhancer.Run(ctx, settings)
}

// GetVersion returns the library version
func GetVersion() string {
	return Version
}
