// Package enhance implements tone and detail enhancers that blend an image
// with a "degenerate" version of itself.
//
// Every enhancer computes, per RGB channel,
//
//	out = degenerate + factor*(image - degenerate)
//
// clamped to [0, 255]. A factor of 0 yields the degenerate image, 1 returns the
// input and values above 1 push the image away from the degenerate one.
// Alpha is always carried over from the source.
package enhance

import (
	"image"
	"image/color"
	"math"

	"github.com/disintegration/imaging"
)

// smoothKernel is the 3x3 smoothing filter used as the sharpness baseline.
var smoothKernel = [9]float64{
	1, 1, 1,
	1, 5, 1,
	1, 1, 1,
}

// Brightness scales pixel intensity. The degenerate image is black.
func Brightness(img image.Image, factor float64) image.Image {
	if factor == 1 {
		return img
	}
	src := imaging.Clone(img)
	b := src.Bounds()
	return blend(src, imaging.New(b.Dx(), b.Dy(), color.NRGBA{0, 0, 0, 255}), factor)
}

// Contrast scales the distance of each pixel from the mean gray level.
func Contrast(img image.Image, factor float64) image.Image {
	if factor == 1 {
		return img
	}
	src := imaging.Clone(img)
	b := src.Bounds()
	mean := uint8(math.Floor(meanLuminance(src) + 0.5))
	return blend(src, imaging.New(b.Dx(), b.Dy(), color.NRGBA{mean, mean, mean, 255}), factor)
}

// Sharpness blends with a smoothed copy; factors below 1 soften, above 1 sharpen.
func Sharpness(img image.Image, factor float64) image.Image {
	if factor == 1 {
		return img
	}
	src := imaging.Clone(img)
	smooth := imaging.Convolve3x3(src, smoothKernel, &imaging.ConvolveOptions{Normalize: true})
	copyBorder(smooth, src)
	return blend(src, smooth, factor)
}

// Color scales saturation. The degenerate image is the grayscale version.
func Color(img image.Image, factor float64) image.Image {
	if factor == 1 {
		return img
	}
	src := imaging.Clone(img)
	return blend(src, imaging.Grayscale(src), factor)
}

// blend interpolates src away from degenerate. Both images share the same
// zero-origin bounds and stride, as produced by imaging.
func blend(src, degenerate *image.NRGBA, factor float64) *image.NRGBA {
	dst := image.NewNRGBA(src.Rect)
	for i := 0; i+3 < len(src.Pix); i += 4 {
		for c := 0; c < 3; c++ {
			d := float64(degenerate.Pix[i+c])
			dst.Pix[i+c] = clamp(d + factor*(float64(src.Pix[i+c])-d))
		}
		dst.Pix[i+3] = src.Pix[i+3]
	}
	return dst
}

// meanLuminance returns the average ITU-R 601 luma of img.
func meanLuminance(img *image.NRGBA) float64 {
	n := len(img.Pix) / 4
	if n == 0 {
		return 0
	}
	var sum float64
	for i := 0; i+3 < len(img.Pix); i += 4 {
		sum += 0.299*float64(img.Pix[i]) + 0.587*float64(img.Pix[i+1]) + 0.114*float64(img.Pix[i+2])
	}
	return sum / float64(n)
}

// copyBorder restores the outermost ring of pixels in dst from src.
func copyBorder(dst, src *image.NRGBA) {
	w, h := src.Rect.Dx(), src.Rect.Dy()
	for y := 0; y < h; y++ {
		for x := 0; x < w; x++ {
			if y != 0 && y != h-1 && x != 0 && x != w-1 {
				continue
			}
			i := y*src.Stride + x*4
			j := y*dst.Stride + x*4
			copy(dst.Pix[j:j+4], src.Pix[i:i+4])
		}
	}
}

func clamp(v float64) uint8 {
	v = math.Round(v)
	if v < 0 {
		return 0
	}
	if v > 255 {
		return 255
	}
	return uint8(v)
}
