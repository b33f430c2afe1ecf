package colony

import (
	"errors"
	"fmt"
)

// ErrInvalidParams is returned by Params.Validate.
var ErrInvalidParams = errors.New("invalid analysis parameters")

// Params controls a colony analysis run.
type Params struct {
	// Threshold is the brightness cutoff as a percentage (0-100) of full
	// scale. Pixels darker than Threshold/100*255 are colony candidates.
	// Raising it accepts fainter pixels.
	Threshold float64 `json:"threshold" yaml:"threshold"`

	// MinSize and MaxSize bound the colony diameter in pixels. A blob is
	// kept when MinSize/2 <= radius <= MaxSize/2.
	MinSize float64 `json:"min_size" yaml:"min_size"`
	MaxSize float64 `json:"max_size" yaml:"max_size"`

	// Sensitivity (0-100) sets the strength of the denoising blur applied
	// before detection. 0 disables it.
	Sensitivity float64 `json:"sensitivity" yaml:"sensitivity"`

	// Contrast and Brightness (-100 to 100) adjust the image before
	// detection. 0 leaves pixels untouched.
	Contrast   float64 `json:"contrast" yaml:"contrast"`
	Brightness float64 `json:"brightness" yaml:"brightness"`

	// MicronsPerPixel calibrates exported diameters.
	MicronsPerPixel float64 `json:"microns_per_pixel" yaml:"microns_per_pixel"`
}

// DefaultParams returns parameters suited to typical agar plate photos.
func DefaultParams() Params {
	return Params{
		Threshold:       50,
		MinSize:         5,
		MaxSize:         100,
		Sensitivity:     0,
		Contrast:        0,
		Brightness:      0,
		MicronsPerPixel: 1.0,
	}
}

// Validate reports the first out-of-range field.
func (p Params) Validate() error {
	switch {
	case p.Threshold < 0 || p.Threshold > 100:
		return fmt.Errorf("%w: threshold %.1f outside 0-100", ErrInvalidParams, p.Threshold)
	case p.MinSize < 0:
		return fmt.Errorf("%w: min_size %.1f is negative", ErrInvalidParams, p.MinSize)
	case p.MaxSize <= 0:
		return fmt.Errorf("%w: max_size %.1f must be positive", ErrInvalidParams, p.MaxSize)
	case p.MinSize > p.MaxSize:
		return fmt.Errorf("%w: min_size %.1f exceeds max_size %.1f", ErrInvalidParams, p.MinSize, p.MaxSize)
	case p.Sensitivity < 0 || p.Sensitivity > 100:
		return fmt.Errorf("%w: sensitivity %.1f outside 0-100", ErrInvalidParams, p.Sensitivity)
	case p.Contrast < -100 || p.Contrast > 100:
		return fmt.Errorf("%w: contrast %.1f outside -100-100", ErrInvalidParams, p.Contrast)
	case p.Brightness < -100 || p.Brightness > 100:
		return fmt.Errorf("%w: brightness %.1f outside -100-100", ErrInvalidParams, p.Brightness)
	case p.MicronsPerPixel <= 0:
		return fmt.Errorf("%w: microns_per_pixel %.3f must be positive", ErrInvalidParams, p.MicronsPerPixel)
	}
	return nil
}

// NeedsPreprocessing reports whether any image adjustment is requested.
func (p Params) NeedsPreprocessing() bool {
	return p.Sensitivity != 0 || p.Contrast != 0 || p.Brightness != 0
}

// cutoff converts Threshold to an absolute 0-255 brightness.
func (p Params) cutoff() float64 {
	return p.Threshold / 100 * 255
}
