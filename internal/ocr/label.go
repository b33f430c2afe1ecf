package ocr

import (
	"bytes"
	"fmt"
	"image"
	"image/png"
	"strings"

	"github.com/disintegration/imaging"
	"github.com/otiai10/gosseract/v2"
)

// minLabelHeight is the height labels are upscaled to before OCR. Tesseract
// struggles with glyphs under about 20 px.
const minLabelHeight = 64

// LabelResult is the text read from a plate label.
type LabelResult struct {
	// Text is the recognized label with whitespace collapsed to single spaces.
	Text string `json:"text"`

	// Raw is the unmodified Tesseract output.
	Raw string `json:"raw"`

	// Confidence is the mean word confidence (0.0 to 1.0). Zero when no
	// words were found.
	Confidence float64 `json:"confidence"`

	// Words is the number of words recognized.
	Words int `json:"words"`
}

// ReadLabel runs OCR on region of img.
//
// The region is cropped, converted to grayscale and upscaled to at least
// minLabelHeight before recognition. Tesseract is told to expect a single
// block of text, which suits handwritten plate IDs better than full-page
// layout analysis.
func ReadLabel(img image.Image, region image.Rectangle, language string) (*LabelResult, error) {
	if language == "" {
		language = "eng"
	}
	if region.Empty() || !region.In(img.Bounds()) {
		return nil, fmt.Errorf("label region %v outside image bounds %v", region, img.Bounds())
	}

	prepared := prepareLabel(img, region)

	var buf bytes.Buffer
	if err := png.Encode(&buf, prepared); err != nil {
		return nil, fmt.Errorf("failed to encode label image: %w", err)
	}

	client := gosseract.NewClient()
	defer client.Close()

	if err := client.SetLanguage(language); err != nil {
		return nil, fmt.Errorf("failed to set language: %w", err)
	}
	if err := client.SetPageSegMode(gosseract.PSM_SINGLE_BLOCK); err != nil {
		return nil, fmt.Errorf("failed to set page segmentation mode: %w", err)
	}
	if err := client.SetImageFromBytes(buf.Bytes()); err != nil {
		return nil, fmt.Errorf("failed to set image: %w", err)
	}

	raw, err := client.Text()
	if err != nil {
		return nil, fmt.Errorf("tesseract OCR failed: %w", err)
	}

	result := &LabelResult{
		Text: normalizeLabel(raw),
		Raw:  raw,
	}

	// Confidence is best effort; the text alone is still useful.
	boxes, err := client.GetBoundingBoxes(gosseract.RIL_WORD)
	if err != nil {
		return result, nil
	}
	var sum float64
	for _, box := range boxes {
		if strings.TrimSpace(box.Word) == "" {
			continue
		}
		sum += box.Confidence / 100.0
		result.Words++
	}
	if result.Words > 0 {
		result.Confidence = sum / float64(result.Words)
	}

	return result, nil
}

// prepareLabel crops, grayscales and upscales the label region.
func prepareLabel(img image.Image, region image.Rectangle) image.Image {
	out := imaging.Grayscale(imaging.Crop(img, region))
	if h := out.Bounds().Dy(); h < minLabelHeight {
		out = imaging.Resize(out, 0, minLabelHeight, imaging.Lanczos)
	}
	return out
}

// normalizeLabel collapses all whitespace runs to single spaces.
func normalizeLabel(s string) string {
	return strings.Join(strings.Fields(s), " ")
}

// Info reports whether Tesseract can be used.
type Info struct {
	Available bool   `json:"available"`
	Version   string `json:"version,omitempty"`
	Backend   string `json:"backend"`
}

// GetInfo returns the Tesseract version linked into the binary.
func GetInfo() Info {
	client := gosseract.NewClient()
	defer client.Close()

	version := client.Version()
	return Info{
		Available: version != "",
		Version:   version,
		Backend:   "gosseract",
	}
}
