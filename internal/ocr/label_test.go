package ocr

import (
	"image"
	"image/color"
	"image/draw"
	"strings"
	"testing"

	"golang.org/x/image/font"
	"golang.org/x/image/font/basicfont"
	"golang.org/x/image/math/fixed"
)

// createLabelImage renders text in black on a white plate-lid background.
func createLabelImage(width, height int, text string) *image.RGBA {
	img := image.NewRGBA(image.Rect(0, 0, width, height))
	draw.Draw(img, img.Bounds(), image.NewUniform(color.White), image.Point{}, draw.Src)

	d := &font.Drawer{
		Dst:  img,
		Src:  image.NewUniform(color.Black),
		Face: basicfont.Face7x13,
		Dot:  fixed.Point26_6{X: fixed.I(10), Y: fixed.I(25)},
	}
	d.DrawString(text)
	return img
}

func tesseractMissing(err error) bool {
	msg := strings.ToLower(err.Error())
	return strings.Contains(msg, "tesseract") || strings.Contains(msg, "library") || strings.Contains(msg, "language")
}

func TestNormalizeLabel(t *testing.T) {
	tests := []struct {
		in   string
		want string
	}{
		{"P07\n", "P07"},
		{"  E. coli   1:100 \n\n", "E. coli 1:100"},
		{"", ""},
		{"\t\n", ""},
	}
	for _, tt := range tests {
		if got := normalizeLabel(tt.in); got != tt.want {
			t.Errorf("normalizeLabel(%q) = %q, want %q", tt.in, got, tt.want)
		}
	}
}

func TestPrepareLabel_Upscales(t *testing.T) {
	img := createLabelImage(120, 40, "P07")
	out := prepareLabel(img, image.Rect(0, 10, 60, 30))

	if out.Bounds().Dy() != minLabelHeight {
		t.Errorf("height: got %d, want %d", out.Bounds().Dy(), minLabelHeight)
	}
	// Aspect ratio is preserved (60x20 -> 192x64).
	if out.Bounds().Dx() != 192 {
		t.Errorf("width: got %d, want 192", out.Bounds().Dx())
	}
}

func TestReadLabel_InvalidRegion(t *testing.T) {
	img := createLabelImage(100, 40, "P07")

	for _, r := range []image.Rectangle{
		image.Rect(0, 0, 0, 0),
		image.Rect(-5, 0, 50, 20),
		image.Rect(50, 10, 150, 30),
	} {
		if _, err := ReadLabel(img, r, "eng"); err == nil {
			t.Errorf("ReadLabel should reject region %v", r)
		}
	}
}

func TestReadLabel(t *testing.T) {
	img := createLabelImage(200, 40, "PLATE 42")

	result, err := ReadLabel(img, img.Bounds(), "")
	if err != nil {
		if tesseractMissing(err) {
			t.Skip("Tesseract not available")
		}
		t.Fatalf("ReadLabel failed: %v", err)
	}

	if !strings.Contains(result.Text, "42") {
		t.Logf("OCR text %q did not contain 42 (font rendering is tiny)", result.Text)
	}
	if result.Confidence < 0 || result.Confidence > 1 {
		t.Errorf("Confidence out of range: %f", result.Confidence)
	}
}
