package processing

import (
	"fmt"
	"image"

	"github.com/disintegration/imaging"

	"github.com/txk/image-augmentor/pkg/enhance"
	"github.com/txk/image-augmentor/pkg/types"
)

// Step names, in pipeline order.
const (
	StepScale      = "scale"
	StepBrightness = "brightness"
	StepContrast   = "contrast"
	StepSharpness  = "sharpness"
	StepSaturation = "saturation"
	StepBlur       = "blur"
	StepFlip       = "flip"
	StepRotate     = "rotate"
)

// Apply runs the full enhancement pipeline on img and returns the result along
// with a notice for every step that was skipped for a reportable reason.
// The input image is never modified.
func Apply(img image.Image, s types.EnhancementSettings) (image.Image, []types.StepNotice) {
	var notices []types.StepNotice

	img, notice := Scale(img, s.ScalePercent)
	if notice != nil {
		notices = append(notices, *notice)
	}

	img = enhance.Brightness(img, types.Factor(s.BrightnessOffset))
	img = enhance.Contrast(img, types.Factor(s.ContrastOffset))
	img = enhance.Sharpness(img, types.Factor(s.SharpenOffset))
	img = enhance.Color(img, types.Factor(s.SaturationOffset))

	if s.BlurRadius > 0 {
		img = imaging.Blur(img, float64(s.BlurRadius))
	}

	if s.FlipHorizontal {
		img = imaging.FlipH(img)
	}

	return Rotate(img, s.RotateLeft, s.RotateRight), notices
}

// Scale resizes img to percent of its size with a Lanczos filter.
// A zero percent, or a target size that collapses to nothing, leaves the image
// untouched and returns a notice explaining why.
func Scale(img image.Image, percent int) (image.Image, *types.StepNotice) {
	if percent <= 0 {
		return img, &types.StepNotice{
			Step:    StepScale,
			Message: "scale factor is zero, skipping resize",
		}
	}

	b := img.Bounds()
	w := b.Dx() * percent / 100
	h := b.Dy() * percent / 100
	if w <= 0 || h <= 0 {
		return img, &types.StepNotice{
			Step:    StepScale,
			Message: fmt.Sprintf("scaled size %dx%d is empty, skipping resize", w, h),
		}
	}
	if w == b.Dx() && h == b.Dy() {
		return img, nil
	}

	return imaging.Resize(img, w, h, imaging.Lanczos), nil
}

// Rotate turns img by 90 degrees, expanding the canvas. Requesting both
// directions at once cancels out and applies no rotation.
func Rotate(img image.Image, left, right bool) image.Image {
	switch {
	case left && right:
		return img
	case left:
		return imaging.Rotate90(img)
	case right:
		return imaging.Rotate270(img)
	default:
		return img
	}
}
