package colony

import (
	"fmt"
	"image"
	"image/color"
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// newPlate creates a uniform buffer of the given gray level.
func newPlate(width, height int, gray uint8) Buffer {
	pix := make([]uint8, width*height*4)
	for i := 0; i < len(pix); i += 4 {
		pix[i], pix[i+1], pix[i+2], pix[i+3] = gray, gray, gray, 255
	}
	return Buffer{Width: width, Height: height, Pix: pix}
}

// drawDisk fills every pixel with (x-cx)²+(y-cy)² <= r² with gray.
func drawDisk(b Buffer, cx, cy, r int, gray uint8) {
	for y := cy - r; y <= cy+r; y++ {
		for x := cx - r; x <= cx+r; x++ {
			if x < 0 || y < 0 || x >= b.Width || y >= b.Height {
				continue
			}
			dx, dy := x-cx, y-cy
			if dx*dx+dy*dy <= r*r {
				i := (y*b.Width + x) * 4
				b.Pix[i], b.Pix[i+1], b.Pix[i+2] = gray, gray, gray
			}
		}
	}
}

func TestNewBuffer(t *testing.T) {
	tests := []struct {
		name    string
		w, h    int
		pixLen  int
		wantErr bool
	}{
		{"1x1", 1, 1, 4, false},
		{"10x5", 10, 5, 200, false},
		{"zero width", 0, 5, 0, true},
		{"zero height", 5, 0, 0, true},
		{"short pix", 2, 2, 12, true},
		{"rgb only", 2, 2, 12, true},
		{"long pix", 2, 2, 20, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := NewBuffer(tt.w, tt.h, make([]uint8, tt.pixLen))
			if tt.wantErr {
				assert.ErrorIs(t, err, ErrInvalidBuffer)
				return
			}
			assert.NoError(t, err)
		})
	}
}

func TestBufferFromImage(t *testing.T) {
	img := image.NewRGBA(image.Rect(10, 20, 14, 23))
	img.Set(10, 20, color.RGBA{30, 60, 90, 255})

	buf, err := BufferFromImage(img)
	require.NoError(t, err)
	assert.Equal(t, 4, buf.Width)
	assert.Equal(t, 3, buf.Height)
	assert.Len(t, buf.Pix, 4*3*4)
	assert.InDelta(t, 60.0, buf.Brightness(0, 0), 0.001)
	assert.InDelta(t, 0.0, buf.Brightness(1, 0), 0.001)
}

func TestBufferFromImage_Nil(t *testing.T) {
	_, err := BufferFromImage(nil)
	assert.ErrorIs(t, err, ErrInvalidBuffer)
}

func TestDetect_AllWhite(t *testing.T) {
	buf := newPlate(120, 80, 255)
	colonies := Detect(buf, DefaultParams())
	assert.Empty(t, colonies)
	assert.NotNil(t, colonies)
}

func TestDetect_EmptyBuffer(t *testing.T) {
	assert.Empty(t, Detect(Buffer{}, DefaultParams()))
}

func TestDetect_SingleDisk(t *testing.T) {
	for _, r := range []int{4, 8, 12, 17} {
		t.Run(fmt.Sprintf("r=%d", r), func(t *testing.T) {
			buf := newPlate(100, 100, 230)
			drawDisk(buf, 50, 47, r, 20)

			colonies := Detect(buf, DefaultParams())
			require.Len(t, colonies, 1)

			c := colonies[0]
			assert.Equal(t, 1, c.ID)
			assert.InDelta(t, 50.0, c.X, 1.0)
			assert.InDelta(t, 47.0, c.Y, 1.0)
			assert.InEpsilon(t, float64(r), c.Radius, 0.15)
			assert.InDelta(t, 235.0, c.Intensity, 0.001)
		})
	}
}

func TestDetect_SizeBand(t *testing.T) {
	buf := newPlate(200, 100, 240)
	drawDisk(buf, 30, 50, 3, 0)   // radius ~3
	drawDisk(buf, 100, 50, 10, 0) // radius ~10
	drawDisk(buf, 165, 50, 16, 0) // radius ~16, fill stays under the cap

	p := DefaultParams()
	p.MinSize = 12 // radius >= 6
	p.MaxSize = 26 // radius <= 13

	colonies := Detect(buf, p)
	require.Len(t, colonies, 1)
	assert.InDelta(t, 100.0, colonies[0].X, 1.0)

	for _, c := range colonies {
		assert.GreaterOrEqual(t, c.Radius, p.MinSize/2)
		assert.LessOrEqual(t, c.Radius, p.MaxSize/2)
	}
}

func TestDetect_NoiseRejected(t *testing.T) {
	buf := newPlate(30, 30, 255)
	// Four dark pixels in a row: one short of the noise floor.
	for x := 9; x < 13; x++ {
		i := (9*buf.Width + x) * 4
		buf.Pix[i], buf.Pix[i+1], buf.Pix[i+2] = 0, 0, 0
	}

	p := DefaultParams()
	p.MinSize = 0
	assert.Empty(t, Detect(buf, p))
}

func TestDetect_FillCap(t *testing.T) {
	// A 60x60 dark square is far larger than one fill can take.
	buf := newPlate(60, 60, 0)

	p := DefaultParams()
	p.MinSize = 0
	p.MaxSize = 1000

	colonies := Detect(buf, p)
	require.NotEmpty(t, colonies)
	for _, c := range colonies {
		assert.LessOrEqual(t, c.Pixels, maxFillPixels)
	}
	assert.Equal(t, maxFillPixels, colonies[0].Pixels)
}

func TestDetect_Deterministic(t *testing.T) {
	buf := newPlate(160, 120, 220)
	drawDisk(buf, 20, 20, 6, 40)
	drawDisk(buf, 70, 40, 9, 10)
	drawDisk(buf, 120, 90, 12, 90)
	drawDisk(buf, 40, 95, 5, 60)

	p := DefaultParams()
	first := Detect(buf, p)
	second := Detect(buf, p)

	require.Len(t, first, 4)
	assert.Equal(t, first, second)
	for i := range first {
		assert.Equal(t, math.Float64bits(first[i].X), math.Float64bits(second[i].X))
		assert.Equal(t, math.Float64bits(first[i].Radius), math.Float64bits(second[i].Radius))
	}
}

func TestDetect_EqualDisks(t *testing.T) {
	const n = 12
	buf := newPlate(240, 120, 250)
	for i := 0; i < n; i++ {
		cx := 20 + (i%6)*40
		cy := 30 + (i/6)*60
		drawDisk(buf, cx, cy, 7, 15)
	}

	colonies := Detect(buf, DefaultParams())
	assert.Len(t, colonies, n)

	stats := Summarize(colonies, buf.Width, buf.Height)
	assert.Equal(t, n, stats.Count)
	total := 0
	for _, b := range stats.Distribution {
		total += b.Count
	}
	assert.Equal(t, n, total)
}

func TestDetect_ThresholdMonotonic(t *testing.T) {
	buf := newPlate(200, 60, 255)
	grays := []uint8{10, 60, 110, 160, 210}
	for i, g := range grays {
		drawDisk(buf, 20+i*40, 30, 8, g)
	}

	p := DefaultParams()
	prev := -1
	for th := 0.0; th <= 100; th += 5 {
		p.Threshold = th
		got := len(Detect(buf, p))
		assert.GreaterOrEqual(t, got, prev, "threshold %.0f", th)
		prev = got
	}
	assert.Equal(t, len(grays), prev)
}

func TestDetect_ThresholdCutoffIsStrict(t *testing.T) {
	p := DefaultParams() // cutoff 127.5

	above := newPlate(40, 40, 255)
	drawDisk(above, 20, 20, 6, 128)
	assert.Empty(t, Detect(above, p))

	below := newPlate(40, 40, 255)
	drawDisk(below, 20, 20, 6, 127)
	assert.Len(t, Detect(below, p), 1)
}

func TestParamsValidate(t *testing.T) {
	tests := []struct {
		name   string
		modify func(*Params)
		ok     bool
	}{
		{"defaults", func(*Params) {}, true},
		{"threshold high", func(p *Params) { p.Threshold = 101 }, false},
		{"threshold negative", func(p *Params) { p.Threshold = -1 }, false},
		{"min above max", func(p *Params) { p.MinSize = 50; p.MaxSize = 40 }, false},
		{"zero max", func(p *Params) { p.MinSize = 0; p.MaxSize = 0 }, false},
		{"sensitivity", func(p *Params) { p.Sensitivity = 150 }, false},
		{"contrast", func(p *Params) { p.Contrast = -101 }, false},
		{"brightness", func(p *Params) { p.Brightness = 100 }, true},
		{"calibration", func(p *Params) { p.MicronsPerPixel = 0 }, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			p := DefaultParams()
			tt.modify(&p)
			err := p.Validate()
			if tt.ok {
				assert.NoError(t, err)
			} else {
				assert.ErrorIs(t, err, ErrInvalidParams)
			}
		})
	}
}
