package server

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"image"
	"path/filepath"

	"github.com/ironsheep/colony-vision-mcp/internal/colony"
	"github.com/ironsheep/colony-vision-mcp/internal/imaging"
	"github.com/ironsheep/colony-vision-mcp/internal/ocr"
)

// errInvalidArguments marks argument decoding and validation failures so
// they are reported as -32602 rather than a tool failure.
var errInvalidArguments = errors.New("invalid arguments")

// ToolCallParams represents the parameters for a tools/call MCP request.
type ToolCallParams struct {
	// Name is the tool to invoke (e.g., "colony_analyze").
	Name string `json:"name"`

	// Arguments contains the tool-specific parameters as JSON.
	Arguments json.RawMessage `json:"arguments"`
}

// handleToolsCall processes a tools/call request and executes the specified tool.
//
// The response wraps the tool result in MCP's content format:
//
//	{
//	  "content": [{"type": "text", "text": "<JSON result>"}]
//	}
//
// Malformed arguments return -32602. Other tool errors return -32000.
func (s *Server) handleToolsCall(ctx context.Context, req *MCPRequest) *MCPResponse {
	var params ToolCallParams
	if err := json.Unmarshal(req.Params, &params); err != nil {
		return s.errorResponse(req.ID, -32602, "Invalid params", err.Error())
	}

	result, err := s.executeTool(ctx, params.Name, params.Arguments)
	if err != nil {
		s.log.Warn().Err(err).Str("tool", params.Name).Msg("tool call failed")
		if errors.Is(err, errInvalidArguments) {
			return s.errorResponse(req.ID, -32602, "Invalid params", err.Error())
		}
		return s.errorResponse(req.ID, -32000, "Tool execution failed", err.Error())
	}

	return &MCPResponse{
		JSONRPC: "2.0",
		ID:      req.ID,
		Result: map[string]interface{}{
			"content": []map[string]interface{}{
				{
					"type": "text",
					"text": mustMarshalJSON(result),
				},
			},
		},
	}
}

// executeTool dispatches tool execution to the appropriate handler function.
func (s *Server) executeTool(ctx context.Context, name string, args json.RawMessage) (interface{}, error) {
	switch name {
	// Plate Information
	case "colony_load":
		return s.handleLoad(args)
	case "colony_default_params":
		return s.cfg.Defaults, nil
	case "colony_brightness_profile":
		return s.handleBrightnessProfile(args)

	// Analysis
	case "colony_analyze":
		return s.handleAnalyze(ctx, args)
	case "colony_analyze_batch":
		return s.handleAnalyzeBatch(ctx, args)

	// Results
	case "colony_overlay":
		return s.handleOverlay(ctx, args)
	case "colony_export_csv":
		return s.handleExportCSV(args)
	case "colony_report":
		return s.handleReport(args)
	case "colony_history":
		return s.handleHistory()
	case "colony_history_clear":
		return s.handleHistoryClear()

	// Labels
	case "colony_read_label":
		return s.handleReadLabel(args)

	default:
		return nil, fmt.Errorf("unknown tool: %s", name)
	}
}

// errorResponse creates a JSON-RPC error response with the given details.
func (s *Server) errorResponse(id interface{}, code int, message, data string) *MCPResponse {
	return &MCPResponse{
		JSONRPC: "2.0",
		ID:      id,
		Error: &MCPError{
			Code:    code,
			Message: message,
			Data:    data,
		},
	}
}

// mustMarshalJSON converts a value to pretty-printed JSON string.
// On marshal failure it returns an empty string.
func mustMarshalJSON(v interface{}) string {
	b, _ := json.MarshalIndent(v, "", "  ")
	return string(b)
}

// decodeArgs unmarshals tool arguments. An empty argument object is allowed.
func decodeArgs(args json.RawMessage, v interface{}) error {
	if len(args) == 0 || string(args) == "null" {
		return nil
	}
	if err := json.Unmarshal(args, v); err != nil {
		return fmt.Errorf("%w: %v", errInvalidArguments, err)
	}
	return nil
}

// paramOverrides carries optional analysis parameters. Nil fields keep the
// configured default.
type paramOverrides struct {
	Threshold       *float64 `json:"threshold"`
	MinSize         *float64 `json:"min_size"`
	MaxSize         *float64 `json:"max_size"`
	Sensitivity     *float64 `json:"sensitivity"`
	Contrast        *float64 `json:"contrast"`
	Brightness      *float64 `json:"brightness"`
	MicronsPerPixel *float64 `json:"microns_per_pixel"`
}

// resolveParams applies o over the server defaults and validates the result.
func (s *Server) resolveParams(o *paramOverrides) (colony.Params, error) {
	p := s.cfg.Defaults
	if o != nil {
		set := func(dst *float64, src *float64) {
			if src != nil {
				*dst = *src
			}
		}
		set(&p.Threshold, o.Threshold)
		set(&p.MinSize, o.MinSize)
		set(&p.MaxSize, o.MaxSize)
		set(&p.Sensitivity, o.Sensitivity)
		set(&p.Contrast, o.Contrast)
		set(&p.Brightness, o.Brightness)
		set(&p.MicronsPerPixel, o.MicronsPerPixel)
	}
	if err := p.Validate(); err != nil {
		return p, fmt.Errorf("%w: %v", errInvalidArguments, err)
	}
	return p, nil
}

// loadRegion loads path from the cache and crops it to region when given.
func (s *Server) loadRegion(path string, region *imaging.Region) (image.Image, error) {
	if path == "" {
		return nil, fmt.Errorf("%w: path is required", errInvalidArguments)
	}
	img, err := s.cache.Load(path)
	if err != nil {
		return nil, err
	}
	if region == nil {
		return img, nil
	}
	return imaging.CropRegion(img, *region)
}

// lookup returns the history entry with id, or the newest one when id is
// empty.
func (s *Server) lookup(id string) (*colony.Result, error) {
	h := s.analyzer.History()
	if id == "" {
		r, err := h.Latest()
		if err != nil {
			return nil, fmt.Errorf("no analysis results yet: %w", err)
		}
		return r, nil
	}
	return h.Get(id)
}

// === Plate Information Handlers ===

type loadArgs struct {
	Path string `json:"path"`
}

func (s *Server) handleLoad(args json.RawMessage) (interface{}, error) {
	var a loadArgs
	if err := decodeArgs(args, &a); err != nil {
		return nil, err
	}
	if a.Path == "" {
		return nil, fmt.Errorf("%w: path is required", errInvalidArguments)
	}
	return imaging.LoadImageInfo(s.cache, a.Path)
}

type brightnessProfileArgs struct {
	Path      string          `json:"path"`
	Region    *imaging.Region `json:"region"`
	Threshold *float64        `json:"threshold"`
	Histogram bool            `json:"histogram"`
}

func (s *Server) handleBrightnessProfile(args json.RawMessage) (interface{}, error) {
	var a brightnessProfileArgs
	if err := decodeArgs(args, &a); err != nil {
		return nil, err
	}
	threshold := s.cfg.Defaults.Threshold
	if a.Threshold != nil {
		threshold = *a.Threshold
	}
	if threshold < 0 || threshold > 100 {
		return nil, fmt.Errorf("%w: threshold %.1f outside 0-100", errInvalidArguments, threshold)
	}
	img, err := s.loadRegion(a.Path, a.Region)
	if err != nil {
		return nil, err
	}
	return imaging.Profile(img, threshold, a.Histogram), nil
}

// === Analysis Handlers ===

type analyzeArgs struct {
	Path            string          `json:"path"`
	Name            string          `json:"name"`
	Region          *imaging.Region `json:"region"`
	Params          *paramOverrides `json:"params"`
	IncludeColonies *bool           `json:"include_colonies"`
}

// analyzeResponse is a Result with the colony list optionally dropped.
type analyzeResponse struct {
	*colony.Result
	CoveragePercent float64          `json:"coverage_percent"`
	Region          *imaging.Region  `json:"region,omitempty"`
	Colonies        *[]colony.Colony `json:"colonies,omitempty"`
}

func (s *Server) handleAnalyze(ctx context.Context, args json.RawMessage) (interface{}, error) {
	var a analyzeArgs
	if err := decodeArgs(args, &a); err != nil {
		return nil, err
	}
	r, err := s.analyze(ctx, a.Path, a.Name, a.Region, a.Params)
	if err != nil {
		return nil, err
	}

	resp := analyzeResponse{
		Result:          r,
		CoveragePercent: r.CoveragePercent(),
		Region:          a.Region,
	}
	if a.IncludeColonies == nil || *a.IncludeColonies {
		resp.Colonies = &r.Colonies
	}
	return resp, nil
}

// analyze runs one analysis and records its origin for later overlays.
func (s *Server) analyze(ctx context.Context, path, name string, region *imaging.Region, o *paramOverrides) (*colony.Result, error) {
	p, err := s.resolveParams(o)
	if err != nil {
		return nil, err
	}
	img, err := s.loadRegion(path, region)
	if err != nil {
		return nil, err
	}
	if name == "" {
		name = filepath.Base(path)
	}

	r, err := s.analyzer.Analyze(ctx, colony.Job{Source: name, Image: img, Params: p})
	if err != nil {
		return nil, err
	}
	s.remember(r.ID, resultOrigin{path: path, region: region})
	return r, nil
}

type analyzeBatchArgs struct {
	Paths  []string        `json:"paths"`
	Region *imaging.Region `json:"region"`
	Params *paramOverrides `json:"params"`
}

func (s *Server) handleAnalyzeBatch(ctx context.Context, args json.RawMessage) (interface{}, error) {
	var a analyzeBatchArgs
	if err := decodeArgs(args, &a); err != nil {
		return nil, err
	}
	if len(a.Paths) == 0 {
		return nil, fmt.Errorf("%w: paths must not be empty", errInvalidArguments)
	}
	p, err := s.resolveParams(a.Params)
	if err != nil {
		return nil, err
	}

	jobs := make([]colony.Job, len(a.Paths))
	for i, path := range a.Paths {
		img, err := s.loadRegion(path, a.Region)
		if err != nil {
			return nil, fmt.Errorf("%s: %w", path, err)
		}
		jobs[i] = colony.Job{Source: filepath.Base(path), Image: img, Params: p}
	}

	results, err := s.analyzer.AnalyzeBatch(ctx, jobs)
	if err != nil {
		return nil, err
	}

	summaries := make([]colony.Summary, len(results))
	total := 0
	for i, r := range results {
		s.remember(r.ID, resultOrigin{path: a.Paths[i], region: a.Region})
		summaries[i] = r.Summary()
		total += r.Count
	}
	return map[string]interface{}{
		"results":      summaries,
		"total_count":  total,
		"plates":       len(results),
		"params":       p,
		"workers_used": s.cfg.Workers,
	}, nil
}

// === Result Handlers ===

type overlayArgs struct {
	ID         string          `json:"id"`
	Path       string          `json:"path"`
	Region     *imaging.Region `json:"region"`
	Params     *paramOverrides `json:"params"`
	Scale      float64         `json:"scale"`
	Color      string          `json:"color"`
	HideLabels bool            `json:"hide_labels"`
}

func (s *Server) handleOverlay(ctx context.Context, args json.RawMessage) (interface{}, error) {
	var a overlayArgs
	if err := decodeArgs(args, &a); err != nil {
		return nil, err
	}
	if a.Scale == 0 {
		a.Scale = 1.0
	}
	if a.Scale < 0 {
		return nil, fmt.Errorf("%w: scale must be positive", errInvalidArguments)
	}

	var (
		r   *colony.Result
		src resultOrigin
		err error
	)
	if a.Path != "" && a.ID == "" {
		r, err = s.analyze(ctx, a.Path, "", a.Region, a.Params)
		if err != nil {
			return nil, err
		}
		src = resultOrigin{path: a.Path, region: a.Region}
	} else {
		r, err = s.lookup(a.ID)
		if err != nil {
			return nil, err
		}
		var ok bool
		src, ok = s.origin(r.ID)
		if !ok {
			return nil, fmt.Errorf("source image for result %s is no longer known", r.ID)
		}
	}

	img, err := s.cache.Load(src.path)
	if err != nil {
		return nil, err
	}
	opts := imaging.OverlayOptions{
		Scale:      a.Scale,
		Color:      a.Color,
		HideLabels: a.HideLabels,
	}
	if src.region != nil {
		opts.Offset = image.Pt(src.region.X1, src.region.Y1)
	}
	out, err := imaging.Overlay(img, r.Colonies, opts)
	if err != nil {
		return nil, err
	}
	return map[string]interface{}{
		"id":           r.ID,
		"width":        out.Width,
		"height":       out.Height,
		"image_base64": out.ImageBase64,
		"mime_type":    out.MimeType,
		"count":        out.Count,
	}, nil
}

type resultIDArgs struct {
	ID string `json:"id"`
}

func (s *Server) handleExportCSV(args json.RawMessage) (interface{}, error) {
	var a resultIDArgs
	if err := decodeArgs(args, &a); err != nil {
		return nil, err
	}
	r, err := s.lookup(a.ID)
	if err != nil {
		return nil, err
	}
	csv, err := colony.CSV(r)
	if err != nil {
		return nil, err
	}
	return map[string]interface{}{
		"id":   r.ID,
		"rows": len(r.Colonies),
		"csv":  csv,
	}, nil
}

func (s *Server) handleReport(args json.RawMessage) (interface{}, error) {
	var a resultIDArgs
	if err := decodeArgs(args, &a); err != nil {
		return nil, err
	}
	r, err := s.lookup(a.ID)
	if err != nil {
		return nil, err
	}
	return map[string]interface{}{
		"id":     r.ID,
		"report": colony.Report(r),
	}, nil
}

func (s *Server) handleHistory() (interface{}, error) {
	results := s.analyzer.History().List()
	summaries := make([]colony.Summary, len(results))
	for i, r := range results {
		summaries[i] = r.Summary()
	}
	return map[string]interface{}{
		"results": summaries,
		"count":   len(summaries),
	}, nil
}

func (s *Server) handleHistoryClear() (interface{}, error) {
	h := s.analyzer.History()
	n := h.Len()
	h.Clear()
	s.forgetAll()
	s.log.Info().Int("removed", n).Msg("history cleared")
	return map[string]interface{}{
		"removed": n,
	}, nil
}

// === Label Handlers ===

type readLabelArgs struct {
	Path          string          `json:"path"`
	Region        *imaging.Region `json:"region"`
	Language      string          `json:"language"`
	Expected      []string        `json:"expected"`
	MinSimilarity *float64        `json:"min_similarity"`
}

// readLabelResponse adds the closest known plate ID to an OCR reading.
type readLabelResponse struct {
	*ocr.LabelResult
	Match *ocr.LabelMatch `json:"match,omitempty"`
}

const defaultMinSimilarity = 0.6

func (s *Server) handleReadLabel(args json.RawMessage) (interface{}, error) {
	var a readLabelArgs
	if err := decodeArgs(args, &a); err != nil {
		return nil, err
	}
	if a.Path == "" {
		return nil, fmt.Errorf("%w: path is required", errInvalidArguments)
	}
	if a.Region == nil {
		return nil, fmt.Errorf("%w: region is required", errInvalidArguments)
	}
	if a.Language == "" {
		a.Language = s.cfg.OCRLanguage
	}
	minSimilarity := defaultMinSimilarity
	if a.MinSimilarity != nil {
		minSimilarity = *a.MinSimilarity
	}
	if minSimilarity < 0 || minSimilarity > 1 {
		return nil, fmt.Errorf("%w: min_similarity must be between 0 and 1", errInvalidArguments)
	}

	img, err := s.cache.Load(a.Path)
	if err != nil {
		return nil, err
	}
	label, err := ocr.ReadLabel(img, a.Region.Rect(), a.Language)
	if err != nil {
		return nil, err
	}

	resp := readLabelResponse{LabelResult: label}
	if m, ok := ocr.MatchLabel(label.Text, a.Expected, minSimilarity); ok {
		resp.Match = &m
	}
	return resp, nil
}
