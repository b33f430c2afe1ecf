package server

// Tool represents an MCP tool definition
type Tool struct {
	Name        string                 `json:"name"`
	Description string                 `json:"description"`
	InputSchema map[string]interface{} `json:"inputSchema"`
}

// pathProperty is the schema of the image path argument shared by most tools.
var pathProperty = map[string]interface{}{
	"type":        "string",
	"description": "Absolute path to the plate image file",
}

// idProperty selects a history entry.
var idProperty = map[string]interface{}{
	"type":        "string",
	"description": "Result ID from colony_analyze. Defaults to the most recent result.",
}

// regionSchema describes an optional rectangular region.
func regionSchema(description string) map[string]interface{} {
	return map[string]interface{}{
		"type": "object",
		"properties": map[string]interface{}{
			"x1": map[string]interface{}{"type": "integer", "description": "Left edge X (inclusive)"},
			"y1": map[string]interface{}{"type": "integer", "description": "Top edge Y (inclusive)"},
			"x2": map[string]interface{}{"type": "integer", "description": "Right edge X (exclusive)"},
			"y2": map[string]interface{}{"type": "integer", "description": "Bottom edge Y (exclusive)"},
		},
		"required":    []string{"x1", "y1", "x2", "y2"},
		"description": description,
	}
}

// paramsSchema describes analysis parameter overrides. Omitted fields use
// the server defaults (see colony_default_params).
func paramsSchema() map[string]interface{} {
	return map[string]interface{}{
		"type": "object",
		"properties": map[string]interface{}{
			"threshold": map[string]interface{}{
				"type":        "number",
				"description": "Brightness cutoff as a percentage 0-100. Pixels darker than threshold/100*255 are colony candidates. Higher accepts fainter colonies.",
			},
			"min_size": map[string]interface{}{
				"type":        "number",
				"description": "Minimum colony diameter in pixels",
			},
			"max_size": map[string]interface{}{
				"type":        "number",
				"description": "Maximum colony diameter in pixels",
			},
			"sensitivity": map[string]interface{}{
				"type":        "number",
				"description": "Denoise strength 0-100 applied before detection (0 = off)",
			},
			"contrast": map[string]interface{}{
				"type":        "number",
				"description": "Contrast adjustment -100 to 100 (0 = unchanged)",
			},
			"brightness": map[string]interface{}{
				"type":        "number",
				"description": "Brightness adjustment -100 to 100 (0 = unchanged)",
			},
			"microns_per_pixel": map[string]interface{}{
				"type":        "number",
				"description": "Calibration used for diameters in exports",
			},
		},
		"description": "Analysis parameter overrides. Omitted fields use the server defaults.",
	}
}

// GetToolDefinitions returns all available tools
func GetToolDefinitions() []Tool {
	return []Tool{
		// Plate Information
		{
			Name:        "colony_load",
			Description: "Load a plate image and return its dimensions and format. The image is cached for later analysis.",
			InputSchema: map[string]interface{}{
				"type": "object",
				"properties": map[string]interface{}{
					"path": pathProperty,
				},
				"required": []string{"path"},
			},
		},
		{
			Name:        "colony_default_params",
			Description: "Return the default colony analysis parameters used when a request omits them.",
			InputSchema: map[string]interface{}{
				"type":       "object",
				"properties": map[string]interface{}{},
			},
		},
		{
			Name:        "colony_brightness_profile",
			Description: "Summarize plate brightness (mean, range, fraction below threshold) and suggest an analysis threshold using Otsu's method.",
			InputSchema: map[string]interface{}{
				"type": "object",
				"properties": map[string]interface{}{
					"path":   pathProperty,
					"region": regionSchema("Optional region to profile. If omitted, profiles the whole image."),
					"threshold": map[string]interface{}{
						"type":        "number",
						"description": "Threshold percentage used for dark_fraction (default: server default threshold)",
					},
					"histogram": map[string]interface{}{
						"type":        "boolean",
						"description": "Include the 256-bin brightness histogram",
						"default":     false,
					},
				},
				"required": []string{"path"},
			},
		},

		// Analysis
		{
			Name:        "colony_analyze",
			Description: "Count colonies on a plate image. Returns colony centres, radii and intensities plus count, average diameter, coverage, density and a size distribution. The result is stored in history for overlay and export.",
			InputSchema: map[string]interface{}{
				"type": "object",
				"properties": map[string]interface{}{
					"path":   pathProperty,
					"name":   map[string]interface{}{"type": "string", "description": "Name recorded in the result (default: file name)"},
					"region": regionSchema("Optional region of interest, e.g. the dish interior. Colony coordinates are relative to the region."),
					"params": paramsSchema(),
					"include_colonies": map[string]interface{}{
						"type":        "boolean",
						"description": "Include the per-colony list in the response",
						"default":     true,
					},
				},
				"required": []string{"path"},
			},
		},
		{
			Name:        "colony_analyze_batch",
			Description: "Count colonies on several plate images concurrently with the same parameters. Returns one summary per image in input order.",
			InputSchema: map[string]interface{}{
				"type": "object",
				"properties": map[string]interface{}{
					"paths": map[string]interface{}{
						"type":        "array",
						"items":       map[string]interface{}{"type": "string"},
						"description": "Absolute paths to the plate images",
					},
					"region": regionSchema("Optional region of interest applied to every image"),
					"params": paramsSchema(),
				},
				"required": []string{"paths"},
			},
		},

		// Results
		{
			Name:        "colony_overlay",
			Description: "Render a result onto its source image: a circle and index label per colony. Uses a stored result by id, or analyzes path first when given. Returns base64-encoded PNG.",
			InputSchema: map[string]interface{}{
				"type": "object",
				"properties": map[string]interface{}{
					"id":     idProperty,
					"path":   map[string]interface{}{"type": "string", "description": "Analyze this image and overlay the new result instead of a stored one"},
					"region": regionSchema("Optional region of interest when path is given"),
					"params": paramsSchema(),
					"scale": map[string]interface{}{
						"type":        "number",
						"description": "Optional scale factor. Default 1.0",
						"default":     1.0,
					},
					"color": map[string]interface{}{
						"type":        "string",
						"description": "Outline colour as #RRGGBB. Default: green (faint) to red (dense) by intensity",
					},
					"hide_labels": map[string]interface{}{
						"type":        "boolean",
						"description": "Omit colony index labels",
						"default":     false,
					},
				},
			},
		},
		{
			Name:        "colony_export_csv",
			Description: "Export a stored result as CSV with columns ID,X,Y,Diameter(µm),Intensity.",
			InputSchema: map[string]interface{}{
				"type": "object",
				"properties": map[string]interface{}{
					"id": idProperty,
				},
			},
		},
		{
			Name:        "colony_report",
			Description: "Export a stored result as a plaintext report.",
			InputSchema: map[string]interface{}{
				"type": "object",
				"properties": map[string]interface{}{
					"id": idProperty,
				},
			},
		},
		{
			Name:        "colony_history",
			Description: "List recent analysis results (newest first) without per-colony detail.",
			InputSchema: map[string]interface{}{
				"type":       "object",
				"properties": map[string]interface{}{},
			},
		},
		{
			Name:        "colony_history_clear",
			Description: "Discard all stored analysis results.",
			InputSchema: map[string]interface{}{
				"type":       "object",
				"properties": map[string]interface{}{},
			},
		},

		// Labels
		{
			Name:        "colony_read_label",
			Description: "Read a handwritten or printed plate label from a region using OCR.",
			InputSchema: map[string]interface{}{
				"type": "object",
				"properties": map[string]interface{}{
					"path":   pathProperty,
					"region": regionSchema("Region containing the label"),
					"language": map[string]interface{}{
						"type":        "string",
						"description": "Tesseract language code (default from server config, usually 'eng')",
					},
					"expected": map[string]interface{}{
						"type":        "array",
						"items":       map[string]interface{}{"type": "string"},
						"description": "Known plate IDs. The closest one by edit distance is returned as match.",
					},
					"min_similarity": map[string]interface{}{
						"type":        "number",
						"description": "Minimum similarity 0-1 for a match (default 0.6)",
						"default":     0.6,
					},
				},
				"required": []string{"path", "region"},
			},
		},
	}
}
