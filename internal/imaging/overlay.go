package imaging

import (
	"bytes"
	"encoding/base64"
	"fmt"
	"image"
	"image/color"
	"image/draw"
	"image/png"
	"math"
	"strconv"

	"github.com/disintegration/imaging"
	"github.com/lucasb-eyer/go-colorful"

	"github.com/ironsheep/colony-vision-mcp/internal/colony"
)

var (
	// Outline colours at the low and high ends of colony intensity.
	faintColor = colorful.Color{R: 0.10, G: 0.80, B: 0.25}
	denseColor = colorful.Color{R: 0.90, G: 0.10, B: 0.10}
)

// OverlayOptions controls overlay rendering.
type OverlayOptions struct {
	// Offset is added to every colony centre. Use the region origin when the
	// analysis ran on a crop.
	Offset image.Point

	// Scale resizes the output. 0 or 1 keeps the original size.
	Scale float64

	// Color forces a single "#RRGGBB" outline colour. Empty means outline
	// colour follows colony intensity.
	Color string

	// HideLabels suppresses the index labels.
	HideLabels bool
}

// OverlayResult contains the annotated image.
type OverlayResult struct {
	Width       int    `json:"width"`
	Height      int    `json:"height"`
	ImageBase64 string `json:"image_base64"`
	MimeType    string `json:"mime_type"`
	Count       int    `json:"count"`
}

// Overlay draws a circle and its 1-based index label for each colony on a
// copy of img and returns it as base64 PNG.
func Overlay(img image.Image, colonies []colony.Colony, opts OverlayOptions) (*OverlayResult, error) {
	bounds := img.Bounds()

	var fixed *colorful.Color
	if opts.Color != "" {
		c, err := colorful.Hex(opts.Color)
		if err != nil {
			return nil, fmt.Errorf("invalid overlay color %q: %w", opts.Color, err)
		}
		fixed = &c
	}

	canvas := image.NewRGBA(image.Rect(0, 0, bounds.Dx(), bounds.Dy()))
	draw.Draw(canvas, canvas.Bounds(), img, bounds.Min, draw.Src)

	labelColor := color.RGBA{255, 255, 255, 255}
	labelBg := color.RGBA{0, 0, 0, 180}

	for _, c := range colonies {
		stroke := intensityColor(c.Intensity)
		if fixed != nil {
			stroke = toRGBA(*fixed)
		}

		cx := int(math.Round(c.X)) + opts.Offset.X
		cy := int(math.Round(c.Y)) + opts.Offset.Y
		r := int(math.Round(c.Radius))
		if r < 1 {
			r = 1
		}
		drawCircle(canvas, cx, cy, r, stroke)

		if !opts.HideLabels {
			drawLabel(canvas, cx+r+2, cy-3, strconv.Itoa(c.ID), labelColor, labelBg)
		}
	}

	var out image.Image = canvas
	if opts.Scale > 0 && opts.Scale != 1.0 {
		w := int(float64(bounds.Dx()) * opts.Scale)
		h := int(float64(bounds.Dy()) * opts.Scale)
		if w < 1 || h < 1 {
			return nil, fmt.Errorf("scale %.3f produces an empty image", opts.Scale)
		}
		out = imaging.Resize(canvas, w, h, imaging.Lanczos)
	}

	var buf bytes.Buffer
	if err := png.Encode(&buf, out); err != nil {
		return nil, fmt.Errorf("failed to encode overlay: %w", err)
	}

	return &OverlayResult{
		Width:       out.Bounds().Dx(),
		Height:      out.Bounds().Dy(),
		ImageBase64: base64.StdEncoding.EncodeToString(buf.Bytes()),
		MimeType:    "image/png",
		Count:       len(colonies),
	}, nil
}

// intensityColor blends from green (faint) to red (dense) in HCL space.
func intensityColor(intensity float64) color.RGBA {
	t := intensity / 255
	if t < 0 {
		t = 0
	}
	if t > 1 {
		t = 1
	}
	return toRGBA(faintColor.BlendHcl(denseColor, t).Clamped())
}

func toRGBA(c colorful.Color) color.RGBA {
	r, g, b := c.RGB255()
	return color.RGBA{R: r, G: g, B: b, A: 255}
}

// drawCircle draws a 1-pixel outline using the midpoint algorithm.
func drawCircle(img *image.RGBA, cx, cy, radius int, c color.RGBA) {
	x := radius
	y := 0
	err := 0

	for x >= y {
		setClipped(img, cx+x, cy+y, c)
		setClipped(img, cx+y, cy+x, c)
		setClipped(img, cx-y, cy+x, c)
		setClipped(img, cx-x, cy+y, c)
		setClipped(img, cx-x, cy-y, c)
		setClipped(img, cx-y, cy-x, c)
		setClipped(img, cx+y, cy-x, c)
		setClipped(img, cx+x, cy-y, c)

		if err <= 0 {
			y++
			err += 2*y + 1
		}
		if err > 0 {
			x--
			err -= 2*x + 1
		}
	}
}

func setClipped(img *image.RGBA, x, y int, c color.RGBA) {
	if image.Pt(x, y).In(img.Bounds()) {
		img.SetRGBA(x, y, c)
	}
}

// digitGlyphs is a 3x5 pixel font for colony indices.
var digitGlyphs = map[rune][]string{
	'0': {"111", "101", "101", "101", "111"},
	'1': {"010", "110", "010", "010", "111"},
	'2': {"111", "001", "111", "100", "111"},
	'3': {"111", "001", "111", "001", "111"},
	'4': {"101", "101", "111", "001", "001"},
	'5': {"111", "100", "111", "001", "111"},
	'6': {"111", "100", "111", "101", "111"},
	'7': {"111", "001", "001", "001", "001"},
	'8': {"111", "101", "111", "101", "111"},
	'9': {"111", "101", "111", "001", "111"},
}

// drawLabel draws text on a filled background box at (x, y).
func drawLabel(img *image.RGBA, x, y int, text string, fg, bg color.RGBA) {
	const charWidth = 4
	const labelHeight = 6
	labelWidth := len(text) * charWidth

	for dy := -1; dy < labelHeight; dy++ {
		for dx := -1; dx < labelWidth; dx++ {
			setClipped(img, x+dx, y+dy, bg)
		}
	}

	cx := x
	for _, ch := range text {
		glyph, ok := digitGlyphs[ch]
		if !ok {
			cx += charWidth
			continue
		}
		for row, line := range glyph {
			for col, pixel := range line {
				if pixel == '1' {
					setClipped(img, cx+col, y+row, fg)
				}
			}
		}
		cx += charWidth
	}
}
