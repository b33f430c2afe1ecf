package colony

import (
	"math"
	"time"
)

// SizeBand is one bucket of the colony size histogram.
type SizeBand struct {
	// Label names the band: "small", "medium", "large" or "xlarge".
	Label string `json:"label"`

	// MinDiameter is inclusive, MaxDiameter exclusive. The last band has
	// MaxDiameter 0, meaning unbounded.
	MinDiameter float64 `json:"min_diameter"`
	MaxDiameter float64 `json:"max_diameter,omitempty"`

	Count int `json:"count"`
}

// sizeBands are the fixed diameter bands, in pixels.
var sizeBands = []SizeBand{
	{Label: "small", MinDiameter: 0, MaxDiameter: 10},
	{Label: "medium", MinDiameter: 10, MaxDiameter: 20},
	{Label: "large", MinDiameter: 20, MaxDiameter: 40},
	{Label: "xlarge", MinDiameter: 40},
}

// Stats holds whole-image reductions over a colony list.
type Stats struct {
	Count int `json:"count"`

	// AverageDiameter is the mean colony diameter in pixels.
	AverageDiameter float64 `json:"average_diameter"`

	// Coverage is the summed colony disk area as a fraction of image area.
	Coverage float64 `json:"coverage"`

	// Density is colonies per pixel of image area, scaled by 10^6.
	Density float64 `json:"density"`

	Distribution []SizeBand `json:"distribution"`
}

// Summarize reduces colonies over a width×height image. Empty input gives
// zeroes everywhere, never NaN.
func Summarize(colonies []Colony, width, height int) Stats {
	dist := make([]SizeBand, len(sizeBands))
	copy(dist, sizeBands)

	stats := Stats{
		Count:        len(colonies),
		Distribution: dist,
	}
	if len(colonies) == 0 {
		return stats
	}

	var sumDiameter, sumArea float64
	for _, c := range colonies {
		d := c.Diameter()
		sumDiameter += d
		sumArea += c.Area()
		dist[bandIndex(d)].Count++
	}

	stats.AverageDiameter = sumDiameter / float64(len(colonies))

	imageArea := float64(width * height)
	if imageArea > 0 {
		stats.Coverage = sumArea / imageArea
		stats.Density = float64(len(colonies)) / imageArea * 1e6
	}

	return stats
}

func bandIndex(diameter float64) int {
	for i, b := range sizeBands {
		if b.MaxDiameter == 0 || diameter < b.MaxDiameter {
			return i
		}
	}
	return len(sizeBands) - 1
}

// Result is the outcome of one analysis run. It is never modified after
// the analyzer hands it out.
type Result struct {
	ID        string    `json:"id"`
	Source    string    `json:"source"`
	Timestamp time.Time `json:"timestamp"`

	Width  int    `json:"width"`
	Height int    `json:"height"`
	Params Params `json:"params"`

	Colonies []Colony `json:"colonies"`
	Stats
}

// NewResult bundles colonies with their statistics.
func NewResult(id, source string, ts time.Time, width, height int, p Params, colonies []Colony) *Result {
	if colonies == nil {
		colonies = []Colony{}
	}
	return &Result{
		ID:        id,
		Source:    source,
		Timestamp: ts,
		Width:     width,
		Height:    height,
		Params:    p,
		Colonies:  colonies,
		Stats:     Summarize(colonies, width, height),
	}
}

// CoveragePercent returns Coverage as a percentage rounded to two places.
func (r *Result) CoveragePercent() float64 {
	return math.Round(r.Coverage*10000) / 100
}

// Summary is a compact view of a Result without the colony list.
type Summary struct {
	ID              string    `json:"id"`
	Source          string    `json:"source"`
	Timestamp       time.Time `json:"timestamp"`
	Count           int       `json:"count"`
	AverageDiameter float64   `json:"average_diameter"`
	Coverage        float64   `json:"coverage"`
	Density         float64   `json:"density"`
}

// Summary returns the compact view of r.
func (r *Result) Summary() Summary {
	return Summary{
		ID:              r.ID,
		Source:          r.Source,
		Timestamp:       r.Timestamp,
		Count:           r.Count,
		AverageDiameter: r.AverageDiameter,
		Coverage:        r.Coverage,
		Density:         r.Density,
	}
}
