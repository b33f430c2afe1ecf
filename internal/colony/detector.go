package colony

import (
	"math"
)

const (
	// seedStride is the spacing of the sparse seed scan in both axes.
	seedStride = 3

	// maxFillPixels caps a single flood fill so large uniform dark regions
	// stay cheap.
	maxFillPixels = 1000

	// minFillPixels discards fills that are almost certainly noise.
	minFillPixels = 5
)

// Colony is one accepted blob.
type Colony struct {
	// ID is the 1-based position of the colony in detection order.
	ID int `json:"id"`

	// X and Y are the centroid in pixel coordinates.
	X float64 `json:"x"`
	Y float64 `json:"y"`

	// Radius is the radius of a disk with the same pixel area as the blob.
	Radius float64 `json:"radius"`

	// Intensity is the mean inverted brightness (255 - brightness) of the
	// blob's pixels, 0-255. Darker colonies score higher.
	Intensity float64 `json:"intensity"`

	// Pixels is the number of pixels in the blob.
	Pixels int `json:"pixels"`
}

// Diameter returns 2 × Radius.
func (c Colony) Diameter() float64 {
	return 2 * c.Radius
}

// Area returns the area of the colony's equal-area disk.
func (c Colony) Area() float64 {
	return math.Pi * c.Radius * c.Radius
}

type point struct {
	x, y int
}

// Detect finds colonies in buf.
//
// # Algorithm
//
//  1. The Threshold percentage becomes an absolute cutoff (0-255).
//  2. The image is scanned every third pixel in x and y for an unvisited
//     seed darker than the cutoff.
//  3. Each seed grows by breadth-first, 4-connected flood fill over pixels
//     that are also darker than the cutoff. Every pixel reached is marked
//     visited whether or not its blob is accepted, so the scan stays linear
//     in image size.
//  4. A fill stops after 1000 pixels.
//  5. Fills under 5 pixels are dropped as noise.
//  6. Centroid is the mean pixel coordinate, radius is sqrt(n/π) and
//     intensity is the mean of 255 - brightness.
//  7. The blob is kept only if MinSize/2 <= radius <= MaxSize/2.
//
// An empty or entirely bright buffer yields no colonies. Detect never
// fails; parameter validation is the caller's job.
func Detect(buf Buffer, p Params) []Colony {
	if buf.Width < 1 || buf.Height < 1 {
		return []Colony{}
	}

	cutoff := p.cutoff()
	minRadius := p.MinSize / 2
	maxRadius := p.MaxSize / 2

	visited := make([]bool, buf.Area())
	colonies := make([]Colony, 0)

	// Reused across fills.
	queue := make([]point, 0, maxFillPixels)
	blob := make([]point, 0, maxFillPixels)

	for y := 0; y < buf.Height; y += seedStride {
		for x := 0; x < buf.Width; x += seedStride {
			if visited[y*buf.Width+x] || buf.Brightness(x, y) >= cutoff {
				continue
			}

			blob = floodFill(buf, visited, cutoff, x, y, queue[:0], blob[:0])
			if len(blob) < minFillPixels {
				continue
			}

			c := measure(buf, blob)
			if c.Radius < minRadius || c.Radius > maxRadius {
				continue
			}
			c.ID = len(colonies) + 1
			colonies = append(colonies, c)
		}
	}

	return colonies
}

// floodFill grows a blob from (startX, startY) and returns its pixels in
// visit order.
//
// Pixels are marked visited when first examined, so a pixel is never queued
// twice and never reconsidered by a later seed. When the fill reaches
// maxFillPixels the remaining queue is abandoned; those pixels stay marked.
func floodFill(buf Buffer, visited []bool, cutoff float64, startX, startY int, queue, blob []point) []point {
	w := buf.Width
	visited[startY*w+startX] = true
	queue = append(queue, point{startX, startY})

	for head := 0; head < len(queue) && len(blob) < maxFillPixels; head++ {
		p := queue[head]
		if buf.Brightness(p.x, p.y) >= cutoff {
			continue
		}
		blob = append(blob, p)

		// 4-connected neighbors: up, down, left, right
		neighbors := [4]point{{p.x, p.y - 1}, {p.x, p.y + 1}, {p.x - 1, p.y}, {p.x + 1, p.y}}
		for _, n := range neighbors {
			if n.x < 0 || n.x >= w || n.y < 0 || n.y >= buf.Height {
				continue
			}
			idx := n.y*w + n.x
			if visited[idx] {
				continue
			}
			visited[idx] = true
			queue = append(queue, n)
		}
	}

	return blob
}

// measure computes centroid, equal-area radius and mean inverted intensity.
func measure(buf Buffer, blob []point) Colony {
	var sumX, sumY, sumIntensity float64
	for _, p := range blob {
		sumX += float64(p.x)
		sumY += float64(p.y)
		sumIntensity += 255 - buf.Brightness(p.x, p.y)
	}
	n := float64(len(blob))

	return Colony{
		X:         sumX / n,
		Y:         sumY / n,
		Radius:    math.Sqrt(n / math.Pi),
		Intensity: sumIntensity / n,
		Pixels:    len(blob),
	}
}
