package colony

import (
	"encoding/csv"
	"fmt"
	"io"
	"strconv"
	"strings"
	"time"
)

// csvHeader is the column layout expected by the lab spreadsheets.
var csvHeader = []string{"ID", "X", "Y", "Diameter(µm)", "Intensity"}

// WriteCSV writes one row per colony. Diameters are converted to
// micrometres with the run's MicronsPerPixel.
func WriteCSV(w io.Writer, r *Result) error {
	scale := r.Params.MicronsPerPixel
	if scale <= 0 {
		scale = 1
	}

	cw := csv.NewWriter(w)
	if err := cw.Write(csvHeader); err != nil {
		return fmt.Errorf("failed to write csv header: %w", err)
	}
	for _, c := range r.Colonies {
		row := []string{
			strconv.Itoa(c.ID),
			strconv.FormatFloat(c.X, 'f', 1, 64),
			strconv.FormatFloat(c.Y, 'f', 1, 64),
			strconv.FormatFloat(c.Diameter()*scale, 'f', 2, 64),
			strconv.FormatFloat(c.Intensity, 'f', 1, 64),
		}
		if err := cw.Write(row); err != nil {
			return fmt.Errorf("failed to write colony %d: %w", c.ID, err)
		}
	}
	cw.Flush()
	if err := cw.Error(); err != nil {
		return fmt.Errorf("failed to flush csv: %w", err)
	}
	return nil
}

// CSV returns the CSV export as a string.
func CSV(r *Result) (string, error) {
	var sb strings.Builder
	if err := WriteCSV(&sb, r); err != nil {
		return "", err
	}
	return sb.String(), nil
}

// Report renders a plaintext analysis report.
func Report(r *Result) string {
	var sb strings.Builder
	p := r.Params

	sb.WriteString("COLONY ANALYSIS REPORT\n")
	sb.WriteString("======================\n\n")
	fmt.Fprintf(&sb, "Image:      %s\n", r.Source)
	fmt.Fprintf(&sb, "Analyzed:   %s\n", r.Timestamp.UTC().Format(time.RFC3339))
	fmt.Fprintf(&sb, "Result ID:  %s\n", r.ID)
	fmt.Fprintf(&sb, "Dimensions: %dx%d px\n\n", r.Width, r.Height)

	sb.WriteString("Parameters\n")
	fmt.Fprintf(&sb, "  Threshold:    %.0f%%\n", p.Threshold)
	fmt.Fprintf(&sb, "  Size range:   %.0f-%.0f px\n", p.MinSize, p.MaxSize)
	fmt.Fprintf(&sb, "  Sensitivity:  %.0f\n", p.Sensitivity)
	fmt.Fprintf(&sb, "  Contrast:     %+.0f\n", p.Contrast)
	fmt.Fprintf(&sb, "  Brightness:   %+.0f\n", p.Brightness)
	fmt.Fprintf(&sb, "  Calibration:  %.3f µm/px\n\n", p.MicronsPerPixel)

	sb.WriteString("Summary\n")
	fmt.Fprintf(&sb, "  Colonies:          %d\n", r.Count)
	fmt.Fprintf(&sb, "  Average diameter:  %.2f px\n", r.AverageDiameter)
	fmt.Fprintf(&sb, "  Coverage:          %.2f%%\n", r.CoveragePercent())
	fmt.Fprintf(&sb, "  Density:           %.2f per Mpx\n\n", r.Density)

	sb.WriteString("Size distribution\n")
	for _, b := range r.Distribution {
		if b.MaxDiameter == 0 {
			fmt.Fprintf(&sb, "  %-7s >=%.0f px:    %d\n", b.Label, b.MinDiameter, b.Count)
			continue
		}
		fmt.Fprintf(&sb, "  %-7s %.0f-%.0f px:  %d\n", b.Label, b.MinDiameter, b.MaxDiameter, b.Count)
	}

	if len(r.Colonies) > 0 {
		sb.WriteString("\nColonies\n")
		sb.WriteString("  ID      X        Y        Diameter(px)  Intensity\n")
		for _, c := range r.Colonies {
			fmt.Fprintf(&sb, "  %-6d  %-7.1f  %-7.1f  %-12.2f  %.1f\n", c.ID, c.X, c.Y, c.Diameter(), c.Intensity)
		}
	}

	return sb.String()
}
