package imaging

import (
	"image"

	"github.com/anthonynsimon/bild/adjust"
	"github.com/anthonynsimon/bild/blur"
)

// maxDenoiseRadius is the gaussian radius applied at sensitivity 100.
const maxDenoiseRadius = 2.0

// Preprocess applies the brightness, contrast and denoise adjustments of an
// analysis run.
//
// Parameters:
//   - brightness: -100 to 100, percentage change in lightness.
//   - contrast: -100 to 100, percentage change in contrast.
//   - sensitivity: 0 to 100, strength of the gaussian denoise. Higher values
//     smooth agar texture that would otherwise fragment faint colonies.
//
// Adjustments run in that order: brightness, contrast, blur. A zero value
// skips its step; when all are zero img is returned unchanged. The result is
// deterministic for a given input.
func Preprocess(img image.Image, brightness, contrast, sensitivity float64) image.Image {
	out := img

	if brightness != 0 {
		out = adjust.Brightness(out, clampUnit(brightness/100))
	}
	if contrast != 0 {
		out = adjust.Contrast(out, clampUnit(contrast/100))
	}
	if sensitivity > 0 {
		radius := sensitivity / 100 * maxDenoiseRadius
		out = blur.Gaussian(out, radius)
	}

	return out
}

func clampUnit(v float64) float64 {
	if v < -1 {
		return -1
	}
	if v > 1 {
		return 1
	}
	return v
}
