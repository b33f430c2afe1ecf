package imaging

import (
	"image"
	"math"
)

// BrightnessProfile summarizes the brightness distribution of a plate
// image. Brightness is the plain average of R, G and B, the same measure the
// colony detector thresholds on.
type BrightnessProfile struct {
	Width  int `json:"width"`
	Height int `json:"height"`

	Mean float64 `json:"mean"`
	Min  uint8   `json:"min"`
	Max  uint8   `json:"max"`

	// DarkFraction is the fraction of pixels below the given threshold.
	DarkFraction float64 `json:"dark_fraction"`

	// OtsuLevel is the 0-255 brightness separating background from
	// foreground with maximum between-class variance.
	OtsuLevel int `json:"otsu_level"`

	// SuggestedThreshold is OtsuLevel expressed as a percentage, ready to
	// pass as an analysis threshold.
	SuggestedThreshold float64 `json:"suggested_threshold"`

	// Histogram has 256 bins of pixel counts by brightness.
	Histogram []int `json:"histogram,omitempty"`
}

// Profile computes a BrightnessProfile. threshold is a percentage (0-100)
// used for DarkFraction. When withHistogram is false the bins are omitted
// from the result.
func Profile(img image.Image, threshold float64, withHistogram bool) *BrightnessProfile {
	bounds := img.Bounds()
	cutoff := threshold / 100 * 255

	hist := make([]int, 256)
	var sum float64
	dark := 0
	minB, maxB := uint8(255), uint8(0)

	for y := bounds.Min.Y; y < bounds.Max.Y; y++ {
		for x := bounds.Min.X; x < bounds.Max.X; x++ {
			r, g, b, _ := img.At(x, y).RGBA()
			avg := float64((r>>8)+(g>>8)+(b>>8)) / 3
			if avg < cutoff {
				dark++
			}
			bin := uint8(avg)
			hist[bin]++
			sum += avg
			if bin < minB {
				minB = bin
			}
			if bin > maxB {
				maxB = bin
			}
		}
	}

	total := bounds.Dx() * bounds.Dy()
	p := &BrightnessProfile{
		Width:  bounds.Dx(),
		Height: bounds.Dy(),
	}
	if total == 0 {
		return p
	}

	level := otsuLevel(hist, total)
	p.Mean = math.Round(sum/float64(total)*100) / 100
	p.Min = minB
	p.Max = maxB
	p.DarkFraction = float64(dark) / float64(total)
	p.OtsuLevel = level
	// Detection keeps pixels strictly below the cutoff; aim for the upper
	// edge of the Otsu bin so the dark class is included.
	p.SuggestedThreshold = math.Round(float64(level+1)/255*1000) / 10
	if p.SuggestedThreshold > 100 {
		p.SuggestedThreshold = 100
	}
	if withHistogram {
		p.Histogram = hist
	}
	return p
}

// otsuLevel returns the last bin of the darker class under Otsu's method.
func otsuLevel(hist []int, total int) int {
	sum := 0.0
	for i, count := range hist {
		sum += float64(i) * float64(count)
	}

	sumB := 0.0
	wB := 0
	maxVariance := 0.0
	best := 127

	for i := 0; i < len(hist); i++ {
		wB += hist[i]
		if wB == 0 {
			continue
		}
		wF := total - wB
		if wF == 0 {
			break
		}

		sumB += float64(i) * float64(hist[i])
		mB := sumB / float64(wB)
		mF := (sum - sumB) / float64(wF)

		between := float64(wB) * float64(wF) * (mB - mF) * (mB - mF)
		if between > maxVariance {
			maxVariance = between
			best = i
		}
	}

	return best
}
